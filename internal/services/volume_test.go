package services

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-ntfs/internal/disk"
	"github.com/deploymenttheory/go-ntfs/internal/helpers"
	"github.com/deploymenttheory/go-ntfs/internal/testutil"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

func volumeWithMetadata(t *testing.T) *testutil.Volume {
	t.Helper()
	vol := testutil.DefaultVolume()
	root := types.NewFileReference(types.RecordRoot, 5)

	label, err := helpers.EncodeUTF16LE("DATA")
	require.NoError(t, err)
	info := make([]byte, 12)
	info[0x08], info[0x09] = 3, 1
	binary.LittleEndian.PutUint16(info[0x0A:], uint16(types.VolumeFlagDirty))

	vol.PutFile(testutil.FileSpec{
		Number: types.RecordVolume, Parent: root, Name: "$Volume",
		Extra: [][]byte{
			testutil.ResidentAttr(types.AttributeVolumeName, "", 2, label),
			testutil.ResidentAttr(types.AttributeVolumeInformation, "", 3, info),
		},
	})
	vol.PutFile(testutil.FileSpec{
		Number: 26, Parent: root, Name: "hello.txt",
		Extra: [][]byte{
			testutil.ResidentAttr(types.AttributeData, "", 2, []byte("hello, ntfs")),
			testutil.ResidentAttr(types.AttributeData, "Zone.Identifier", 3, []byte("[ZoneTransfer]")),
		},
	})
	return vol
}

func TestOpenVolume(t *testing.T) {
	vol := volumeWithMetadata(t)
	ctx := context.Background()

	v, err := OpenVolume(ctx, vol, VolumeOptions{})
	require.NoError(t, err)

	assert.Equal(t, uint32(4096), v.Geometry().ClusterSize())
	assert.Equal(t, types.NTFSOEMID, v.BootSector().OEMID())
	assert.Equal(t, uint64(64), v.Index().RecordCount())

	info, err := v.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, VolumeInfo{Label: "DATA", MajorVersion: 3, MinorVersion: 1, Flags: types.VolumeFlagDirty, Dirty: true}, info)

	r, err := v.OpenData(ctx, 26, "")
	require.NoError(t, err)
	data, err := io.ReadAll(io.NewSectionReader(r, 0, r.Size()))
	require.NoError(t, err)
	assert.Equal(t, "hello, ntfs", string(data))

	r, err = v.OpenData(ctx, 26, "Zone.Identifier")
	require.NoError(t, err)
	assert.Equal(t, int64(len("[ZoneTransfer]")), r.Size())

	_, err = v.OpenData(ctx, 26, "missing")
	assert.ErrorIs(t, err, types.ErrAttributeNotFound)

	path, err := v.Resolver().Path(ctx, 26)
	require.NoError(t, err)
	assert.Equal(t, "/hello.txt", path)
}

func TestOpenVolumeErrors(t *testing.T) {
	t.Run("not NTFS", func(t *testing.T) {
		vol := testutil.DefaultVolume()
		copy(vol.Bytes()[3:], "EXFAT   ")

		_, err := OpenVolume(context.Background(), vol, VolumeOptions{})
		assert.ErrorIs(t, err, types.ErrNotNTFS)
	})

	t.Run("unreadable boot sector", func(t *testing.T) {
		src := &failingSource{Volume: testutil.DefaultVolume(), from: 0, to: 512}

		_, err := OpenVolume(context.Background(), src, VolumeOptions{})
		var ioErr *types.IOError
		assert.ErrorAs(t, err, &ioErr)
	})
}

func TestOpenVolumeFromImageFile(t *testing.T) {
	vol := volumeWithMetadata(t)
	path := filepath.Join(t.TempDir(), "ntfs.img")
	require.NoError(t, os.WriteFile(path, vol.Bytes(), 0o600))

	img, err := disk.OpenImage(path, disk.DefaultImageConfig(), nil)
	require.NoError(t, err)
	defer img.Close()

	v, err := OpenVolume(context.Background(), img, VolumeOptions{ScanWorkers: 2})
	require.NoError(t, err)

	summary, err := v.Scanner().Scan(context.Background(), ScanOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.InUse)
}
