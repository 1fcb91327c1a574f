package services

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-ntfs/internal/testutil"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i%251) + 1
	}
	return b
}

func TestAttributeDataReaderNonResident(t *testing.T) {
	vol := testutil.DefaultVolume()
	runs := []types.DataRun{
		{StartVCN: 0, Length: 2, LCN: 100},
		{StartVCN: 2, Length: 2, Sparse: true},
		{StartVCN: 4, Length: 1, LCN: 110},
	}
	const (
		realSize        = 5*4096 - 100
		initializedSize = 4*4096 + 10
	)

	content := pattern(5 * 4096)
	vol.PutStream(runs, 0, content)

	attr := &types.NonResidentAttribute{
		AttributeHeader: types.AttributeHeader{Type: types.AttributeData, Flags: types.AttributeFlagSparse},
		LastVCN:         4,
		AllocatedSize:   5 * 4096,
		RealSize:        realSize,
		InitializedSize: initializedSize,
		Runs:            runs,
	}

	r, err := NewAttributeDataReader(vol, geometryOf(t, vol), attr)
	require.NoError(t, err)
	assert.Equal(t, int64(realSize), r.Size())

	got, err := io.ReadAll(io.NewSectionReader(r, 0, r.Size()))
	require.NoError(t, err)
	require.Len(t, got, realSize)

	want := make([]byte, realSize)
	copy(want[:8192], content[:8192])
	copy(want[16384:initializedSize], content[16384:initializedSize])
	assert.Equal(t, want, got)

	t.Run("read spanning the hole", func(t *testing.T) {
		buf := make([]byte, 200)
		n, err := r.ReadAt(buf, 8192-100)
		require.NoError(t, err)
		assert.Equal(t, 200, n)
		assert.Equal(t, content[8092:8192], buf[:100])
		assert.Equal(t, make([]byte, 100), buf[100:])
	})

	t.Run("read past the end", func(t *testing.T) {
		buf := make([]byte, 200)
		n, err := r.ReadAt(buf, realSize-50)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, 50, n)

		_, err = r.ReadAt(buf, realSize)
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestAttributeDataReaderResident(t *testing.T) {
	attr := &types.ResidentAttribute{
		AttributeHeader: types.AttributeHeader{Type: types.AttributeData},
		Data:            []byte("resident payload"),
	}

	r, err := NewAttributeDataReader(nil, types.VolumeGeometry{}, attr)
	require.NoError(t, err)

	got, err := io.ReadAll(io.NewSectionReader(r, 0, r.Size()))
	require.NoError(t, err)
	assert.Equal(t, []byte("resident payload"), got)

	buf := make([]byte, 7)
	_, err = r.ReadAt(buf, 9)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), buf)
}

func TestAttributeDataReaderRejects(t *testing.T) {
	t.Run("compressed", func(t *testing.T) {
		attr := &types.NonResidentAttribute{
			AttributeHeader: types.AttributeHeader{Type: types.AttributeData, Flags: types.AttributeFlagCompressed},
			CompressionUnit: 4,
		}
		_, err := NewAttributeDataReader(nil, types.VolumeGeometry{}, attr)
		assert.ErrorIs(t, err, types.ErrCompressed)
	})

	t.Run("initialized beyond real size", func(t *testing.T) {
		attr := &types.NonResidentAttribute{RealSize: 10, InitializedSize: 20}
		_, err := NewAttributeDataReader(nil, types.VolumeGeometry{}, attr)
		assert.ErrorIs(t, err, types.ErrCorrupt)
	})
}

func TestAttributeDataReaderMissingRun(t *testing.T) {
	vol := testutil.DefaultVolume()
	attr := &types.NonResidentAttribute{
		RealSize:        3 * 4096,
		InitializedSize: 3 * 4096,
		Runs:            []types.DataRun{{StartVCN: 0, Length: 1, LCN: 100}},
	}

	r, err := NewAttributeDataReader(vol, geometryOf(t, vol), attr)
	require.NoError(t, err)

	_, err = io.Copy(io.Discard, io.NewSectionReader(r, 0, r.Size()))
	assert.ErrorIs(t, err, types.ErrOutOfRange)

	buf := make([]byte, 16)
	_, err = r.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(make([]byte, 16), buf))
}

func TestAttributeDataReaderRunLongerThanAddressSpace(t *testing.T) {
	vol := testutil.DefaultVolume()
	attr := &types.NonResidentAttribute{
		AttributeHeader: types.AttributeHeader{Type: types.AttributeData},
		RealSize:        1 << 20,
		InitializedSize: 1 << 20,
		Runs:            []types.DataRun{{StartVCN: 0, Length: 1 << 52, LCN: 4}},
	}

	r, err := NewAttributeDataReader(vol, geometryOf(t, vol), attr)
	require.NoError(t, err)

	buf := make([]byte, 1024)
	n, err := r.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 1024, n)
	assert.Equal(t, vol.Bytes()[4*4096:4*4096+1024], buf)
}
