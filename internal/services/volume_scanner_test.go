package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filerecord "github.com/deploymenttheory/go-ntfs/internal/parsers/file_record"
	"github.com/deploymenttheory/go-ntfs/internal/testutil"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// scanVolume holds record 0, six files at 24-29, a BAAD record at 30, a torn
// record at 31 and an unused record at 32. Every other record is zero-filled.
func scanVolume() *testutil.Volume {
	vol := testutil.DefaultVolume()
	root := types.NewFileReference(types.RecordRoot, 5)

	for n := uint64(24); n < 30; n++ {
		vol.PutFile(testutil.FileSpec{Number: n, Parent: root, Name: "file"})
	}

	baad := vol.FileRecord(testutil.FileSpec{Number: 30, Parent: root, Name: "baad"})
	copy(baad, types.BadFileRecordMagic)
	vol.PutRecord(30, baad)

	torn := vol.FileRecord(testutil.FileSpec{Number: 31, Parent: root, Name: "torn"})
	torn[1022] ^= 0xFF
	vol.PutRecord(31, torn)

	vol.PutFile(testutil.FileSpec{Number: 32, Parent: root, Name: "deleted", Unused: true})
	return vol
}

func collect(t *testing.T, scanner *VolumeScanner, opts ScanOptions) ([]uint64, ScanSummary) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []uint64
	)
	summary, err := scanner.Scan(context.Background(), opts, func(_ context.Context, n uint64, _ *filerecord.Record) error {
		mu.Lock()
		seen = append(seen, n)
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })
	return seen, summary
}

func TestVolumeScannerSkipsAndContinues(t *testing.T) {
	index := newIndex(t, scanVolume())

	for _, workers := range []int{1, 4} {
		scanner := NewVolumeScanner(index, workers, nil)
		seen, summary := collect(t, scanner, ScanOptions{})

		assert.Equal(t, []uint64{0, 24, 25, 26, 27, 28, 29}, seen)
		assert.Equal(t, ScanSummary{
			Visited:  64,
			InUse:    7,
			Unused:   1,
			Corrupt:  1,
			BadFixup: 1,
			Invalid:  54,
		}, summary)
		assert.Equal(t, int64(56), summary.Skipped())
	}
}

func TestVolumeScannerIncludeUnusedAndRange(t *testing.T) {
	scanner := NewVolumeScanner(newIndex(t, scanVolume()), 2, nil)

	seen, summary := collect(t, scanner, ScanOptions{Start: 24, End: 40, IncludeUnused: true})
	assert.Equal(t, []uint64{24, 25, 26, 27, 28, 29, 32}, seen)
	assert.Equal(t, int64(16), summary.Visited)
}

func TestVolumeScannerStops(t *testing.T) {
	t.Run("callback error", func(t *testing.T) {
		scanner := NewVolumeScanner(newIndex(t, scanVolume()), 4, nil)
		stop := errors.New("stop")

		_, err := scanner.Scan(context.Background(), ScanOptions{}, func(_ context.Context, n uint64, _ *filerecord.Record) error {
			if n == 26 {
				return stop
			}
			return nil
		})
		assert.ErrorIs(t, err, stop)
	})

	t.Run("io error", func(t *testing.T) {
		vol := scanVolume()
		src := &failingSource{Volume: vol, from: 16384 + 27*1024, to: 16384 + 28*1024}
		index, err := NewMftIndex(src, geometryOf(t, vol), MftIndexOptions{})
		require.NoError(t, err)

		_, err = NewVolumeScanner(index, 4, nil).Scan(context.Background(), ScanOptions{}, nil)
		assert.ErrorIs(t, err, errDevice)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewVolumeScanner(newIndex(t, scanVolume()), 4, nil).Scan(ctx, ScanOptions{}, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
