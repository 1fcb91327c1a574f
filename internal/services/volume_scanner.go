package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	filerecord "github.com/deploymenttheory/go-ntfs/internal/parsers/file_record"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// DefaultScanWorkers is the scanner concurrency used when none is configured
const DefaultScanWorkers = 8

// scanBatchSize is the number of consecutive records handed to one task
const scanBatchSize = 256

// ScanFunc receives each usable record. It is called concurrently from the
// scanner's workers; returning an error stops the scan.
type ScanFunc func(ctx context.Context, n uint64, rec *filerecord.Record) error

// ScanOptions bounds and tunes a scan
type ScanOptions struct {
	// Start is the first record number visited.
	Start uint64

	// End is one past the last record visited; zero means the whole MFT.
	End uint64

	// IncludeUnused also passes records without the in-use flag to the callback.
	IncludeUnused bool
}

// ScanSummary counts what a scan encountered
type ScanSummary struct {
	Visited  int64 `json:"visited" yaml:"visited"`
	InUse    int64 `json:"in_use" yaml:"in_use"`
	Unused   int64 `json:"unused" yaml:"unused"`
	Corrupt  int64 `json:"corrupt" yaml:"corrupt"`
	BadFixup int64 `json:"bad_fixup" yaml:"bad_fixup"`
	Sparse   int64 `json:"sparse" yaml:"sparse"`
	Unmapped int64 `json:"unmapped" yaml:"unmapped"`
	Invalid  int64 `json:"invalid" yaml:"invalid"`
}

// Skipped returns the number of records that could not be decoded
func (s ScanSummary) Skipped() int64 {
	return s.Corrupt + s.BadFixup + s.Sparse + s.Unmapped + s.Invalid
}

type scanCounters struct {
	visited, inUse, unused                          atomic.Int64
	corrupt, badFixup, sparse, unmapped, invalidRec atomic.Int64
}

func (c *scanCounters) summary() ScanSummary {
	return ScanSummary{
		Visited:  c.visited.Load(),
		InUse:    c.inUse.Load(),
		Unused:   c.unused.Load(),
		Corrupt:  c.corrupt.Load(),
		BadFixup: c.badFixup.Load(),
		Sparse:   c.sparse.Load(),
		Unmapped: c.unmapped.Load(),
		Invalid:  c.invalidRec.Load(),
	}
}

// VolumeScanner walks every File Record of an MFT with a bounded worker pool.
// Unreadable records are counted and skipped; I/O failures, callback errors and
// cancellation end the scan.
type VolumeScanner struct {
	index   *MftIndex
	workers int
	logger  *zap.Logger
}

// NewVolumeScanner creates a scanner over index
func NewVolumeScanner(index *MftIndex, workers int, logger *zap.Logger) *VolumeScanner {
	if workers <= 0 {
		workers = DefaultScanWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VolumeScanner{index: index, workers: workers, logger: logger}
}

// Scan visits the records selected by opts and calls fn for each usable one
func (s *VolumeScanner) Scan(ctx context.Context, opts ScanOptions, fn ScanFunc) (ScanSummary, error) {
	end := opts.End
	if end == 0 || end > s.index.RecordCount() {
		end = s.index.RecordCount()
	}

	var counters scanCounters
	p := pool.New().
		WithMaxGoroutines(s.workers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for batch := opts.Start; batch < end; batch += scanBatchSize {
		first, last := batch, min(batch+scanBatchSize, end)
		p.Go(func(ctx context.Context) error {
			for n := first; n < last; n++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := s.visit(ctx, n, opts, fn, &counters); err != nil {
					return err
				}
			}
			return nil
		})
	}

	err := p.Wait()
	summary := counters.summary()

	s.logger.Debug("scan finished",
		zap.Int64("visited", summary.Visited),
		zap.Int64("in_use", summary.InUse),
		zap.Int64("skipped", summary.Skipped()),
		zap.Error(err))

	if err != nil {
		return summary, fmt.Errorf("scan stopped: %w", err)
	}
	return summary, nil
}

func (s *VolumeScanner) visit(ctx context.Context, n uint64, opts ScanOptions, fn ScanFunc, c *scanCounters) error {
	c.visited.Add(1)

	rec, err := s.index.Record(ctx, n)
	if err != nil {
		if !s.skip(n, err, c) {
			return err
		}
		return nil
	}

	if !rec.IsInUse() {
		c.unused.Add(1)
		if !opts.IncludeUnused {
			return nil
		}
	} else {
		c.inUse.Add(1)
	}

	if fn == nil {
		return nil
	}
	return fn(ctx, n, rec)
}

// skip classifies a per-record failure and reports whether the scan may continue
func (s *VolumeScanner) skip(n uint64, err error, c *scanCounters) bool {
	switch {
	case errors.Is(err, types.ErrCorrupt):
		c.corrupt.Add(1)
	case errors.Is(err, types.ErrBadFixup):
		c.badFixup.Add(1)
	case errors.Is(err, types.ErrSparse):
		c.sparse.Add(1)
	case errors.Is(err, types.ErrOutOfRange):
		c.unmapped.Add(1)
	case types.IsSkippable(err):
		c.invalidRec.Add(1)
	default:
		return false
	}

	s.logger.Debug("skipping record", zap.Uint64("record", n), zap.Error(err))
	return true
}
