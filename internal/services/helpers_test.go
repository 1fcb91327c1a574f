package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	bootsector "github.com/deploymenttheory/go-ntfs/internal/parsers/boot_sector"
	"github.com/deploymenttheory/go-ntfs/internal/testutil"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

var errDevice = errors.New("device failure")

// failingSource fails every read that touches [from, to)
type failingSource struct {
	*testutil.Volume
	from, to uint64
}

func (s *failingSource) ReadAt(offset uint64, length uint32) ([]byte, error) {
	if offset < s.to && offset+uint64(length) > s.from {
		return nil, errDevice
	}
	return s.Volume.ReadAt(offset, length)
}

func geometryOf(t *testing.T, vol *testutil.Volume) types.VolumeGeometry {
	t.Helper()
	g, err := bootsector.Decode(vol.Bytes()[:types.BootSectorSize])
	require.NoError(t, err)
	return g
}

func newIndex(t *testing.T, vol *testutil.Volume) *MftIndex {
	t.Helper()
	index, err := NewMftIndex(vol, geometryOf(t, vol), MftIndexOptions{})
	require.NoError(t, err)
	return index
}

// fragmentedVolume has 512-byte clusters and an MFT split over three runs, so
// 1 KiB records can straddle run boundaries
func fragmentedVolume() *testutil.Volume {
	boot := testutil.DefaultBootSector()
	boot.SectorsPerCluster = 1
	boot.MftCluster = 32
	boot.MftMirrorCluster = 1000
	return testutil.NewVolume(boot, []types.DataRun{
		{StartVCN: 0, Length: 5, LCN: 32},
		{StartVCN: 5, Length: 3, LCN: 100},
		{StartVCN: 8, Length: 8, LCN: 50},
	})
}
