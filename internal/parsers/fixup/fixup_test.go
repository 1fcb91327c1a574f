package fixup

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/deploymenttheory/go-ntfs/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeRecord returns a buffer of size bytes filled with a position-dependent pattern
// and an array sized to protect every sector
func makeRecord(size int) ([]byte, Array) {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(i*7 + 3)
	}
	return buf, Array{Offset: 0x30, Count: uint16(size/types.FixupStride + 1)}
}

func TestStampApplyRoundTrip(t *testing.T) {
	for _, size := range []int{512, 1024, 2048, 4096} {
		t.Run(fmt.Sprintf("%d bytes", size), func(t *testing.T) {
			original, arr := makeRecord(size)

			stamped := append([]byte(nil), original...)
			require.NoError(t, Stamp(stamped, arr, 0x0042, types.FixupStride))

			for i := 0; i < arr.Sectors(); i++ {
				tail := (i+1)*types.FixupStride - 2
				assert.Equal(t, []byte{0x42, 0x00}, stamped[tail:tail+2], "sector %d tail", i)
			}

			restored := append([]byte(nil), stamped...)
			require.NoError(t, Apply(restored, arr, types.FixupStride))

			// Outside the array every byte must match the original exactly
			usaEnd := int(arr.Offset) + 2*int(arr.Count)
			assert.True(t, bytes.Equal(original[:arr.Offset], restored[:arr.Offset]))
			assert.True(t, bytes.Equal(original[usaEnd:], restored[usaEnd:]))
		})
	}
}

func TestApplyRestoresSavedTails(t *testing.T) {
	buf := make([]byte, 1024)
	arr := Array{Offset: 0x30, Count: 3}

	// USN 0x0007, saved tails AABB and CCDD
	copy(buf[0x30:], []byte{0x07, 0x00, 0xAA, 0xBB, 0xCC, 0xDD})
	copy(buf[510:], []byte{0x07, 0x00})
	copy(buf[1022:], []byte{0x07, 0x00})
	before := append([]byte(nil), buf...)

	require.NoError(t, Apply(buf, arr, types.FixupStride))

	assert.Equal(t, []byte{0xAA, 0xBB}, buf[510:512])
	assert.Equal(t, []byte{0xCC, 0xDD}, buf[1022:1024])

	changed := 0
	for i := range buf {
		if buf[i] != before[i] {
			changed++
		}
	}
	assert.Equal(t, 4, changed, "only the two sector tails may change")
}

func TestApplyDetectsTornWrite(t *testing.T) {
	for _, size := range []int{512, 1024, 2048, 4096} {
		sectors := size / types.FixupStride
		for bad := 0; bad < sectors; bad++ {
			buf, arr := makeRecord(size)
			require.NoError(t, Stamp(buf, arr, 0x1234, types.FixupStride))

			tail := (bad+1)*types.FixupStride - 2
			buf[tail] ^= 0xFF

			err := Apply(buf, arr, types.FixupStride)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrBadFixup), "size %d sector %d: %v", size, bad, err)
		}
	}
}

func TestApplyValidation(t *testing.T) {
	testCases := []struct {
		name string
		size int
		arr  Array
		want error
	}{
		{"no entries", 1024, Array{Offset: 0x30, Count: 0}, types.ErrBadFixup},
		{"usn only", 1024, Array{Offset: 0x30, Count: 1}, types.ErrBadFixup},
		{"too few sectors covered", 1024, Array{Offset: 0x30, Count: 2}, types.ErrBadFixup},
		{"too many sectors covered", 1024, Array{Offset: 0x30, Count: 4}, types.ErrTruncated},
		{"array past end", 512, Array{Offset: 510, Count: 2}, types.ErrTruncated},
		{"partial sector", 1000, Array{Offset: 0x30, Count: 3}, types.ErrTruncated},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, tc.size)
			err := Apply(buf, tc.arr, types.FixupStride)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestReadArray(t *testing.T) {
	buf := []byte{'F', 'I', 'L', 'E', 0x30, 0x00, 0x03, 0x00}
	arr, err := ReadArray(buf)
	require.NoError(t, err)
	assert.Equal(t, Array{Offset: 0x30, Count: 3}, arr)
	assert.Equal(t, 2, arr.Sectors())

	_, err = ReadArray(buf[:6])
	assert.True(t, errors.Is(err, types.ErrTruncated))
}
