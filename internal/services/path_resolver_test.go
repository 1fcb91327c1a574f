package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-ntfs/internal/testutil"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

func TestPathResolver(t *testing.T) {
	vol := testutil.DefaultVolume()
	root := types.NewFileReference(types.RecordRoot, 5)

	vol.PutFile(testutil.FileSpec{Number: 24, Parent: root, Name: "Users", Directory: true})
	vol.PutFile(testutil.FileSpec{Number: 25, Parent: types.NewFileReference(24, 1), Name: "alice", Directory: true})
	vol.PutFile(testutil.FileSpec{Number: 26, Parent: types.NewFileReference(25, 1), Name: "notes.txt"})
	// Parent 25 has since been reused: its sequence is 1, not 9.
	vol.PutFile(testutil.FileSpec{Number: 27, Parent: types.NewFileReference(25, 9), Name: "lost.txt"})
	// 28 and 29 name each other as parent.
	vol.PutFile(testutil.FileSpec{Number: 28, Parent: types.NewFileReference(29, 1), Name: "a", Directory: true})
	vol.PutFile(testutil.FileSpec{Number: 29, Parent: types.NewFileReference(28, 1), Name: "b", Directory: true})
	vol.PutFile(testutil.FileSpec{Number: 30, Parent: types.NewFileReference(28, 1), Name: "loop.txt"})
	// Parent 40 was never written.
	vol.PutFile(testutil.FileSpec{Number: 31, Parent: types.NewFileReference(40, 1), Name: "stray.txt"})

	resolver := NewPathResolver(newIndex(t, vol), nil)
	ctx := context.Background()

	tests := []struct {
		record uint64
		want   string
	}{
		{record: types.RecordRoot, want: "/"},
		{record: types.RecordMFT, want: "/$MFT"},
		{record: 24, want: "/Users"},
		{record: 26, want: "/Users/alice/notes.txt"},
		{record: 27, want: OrphanPrefix + "/lost.txt"},
		{record: 31, want: OrphanPrefix + "/stray.txt"},
	}

	for _, tc := range tests {
		got, err := resolver.Path(ctx, tc.record)
		require.NoError(t, err, "record %d", tc.record)
		assert.Equal(t, tc.want, got, "record %d", tc.record)
	}

	looped, err := resolver.Path(ctx, 30)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(looped, OrphanPrefix+"/"), looped)
	assert.True(t, strings.HasSuffix(looped, "/loop.txt"), looped)

	// A record without $FILE_NAME cannot be named.
	_, err = resolver.Path(ctx, 1)
	assert.Error(t, err)
}
