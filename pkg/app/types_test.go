package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deploymenttheory/go-ntfs/internal/types"
)

func TestImageTarget(t *testing.T) {
	tests := []struct {
		name    string
		target  ImageTarget
		want    string
		wantErr bool
	}{
		{name: "path only", target: ImageTarget{Path: "disk.raw"}, want: "disk.raw"},
		{name: "with offset", target: ImageTarget{Path: "disk.raw", PartitionOffset: 1048576}, want: "disk.raw @ 1048576"},
		{name: "empty", target: ImageTarget{}, wantErr: true},
		{name: "unaligned", target: ImageTarget{Path: "disk.raw", PartitionOffset: 513}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, tt.target.String())
		})
	}
}

func TestCommonError(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(ErrCodeImageAccess, "failed to open image", cause)
	assert.Equal(t, "failed to open image: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bare", NewError(ErrCodeInvalidInput, "bare", nil).Error())
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "io", err: &types.IOError{Offset: 4096, Length: 1024, Err: errors.New("eio")}, want: ErrCodeImageAccess},
		{name: "not ntfs", err: fmt.Errorf("boot: %w", types.ErrNotNTFS), want: ErrCodeNotNTFS},
		{name: "bad boot sector", err: types.ErrInvalidBootSector, want: ErrCodeNotNTFS},
		{name: "out of range", err: types.ErrOutOfRange, want: ErrCodeRecordNotFound},
		{name: "missing attribute", err: types.ErrAttributeNotFound, want: ErrCodeRecordNotFound},
		{name: "corrupt", err: types.ErrCorrupt, want: ErrCodeCorrupt},
		{name: "bad fixup", err: types.ErrBadFixup, want: ErrCodeCorrupt},
		{name: "deadline", err: fmt.Errorf("open: %w", context.DeadlineExceeded), want: ErrCodeTimeout},
		{name: "other", err: errors.New("unknown"), want: ErrCodeImageAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError("msg", tt.err)
			assert.Equal(t, tt.want, got.Code)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
