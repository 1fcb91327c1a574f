package services

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/arc/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/deploymenttheory/go-ntfs/internal/interfaces"
	filerecord "github.com/deploymenttheory/go-ntfs/internal/parsers/file_record"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// DefaultRecordCacheSize is the number of decoded records kept by default
const DefaultRecordCacheSize = 4096

// MftIndexOptions configures an MftIndex
type MftIndexOptions struct {
	// CacheSize is the number of decoded records to keep; zero selects the default.
	CacheSize int

	// SectorSize is the update sequence stride; zero selects 512.
	SectorSize int

	Logger *zap.Logger
}

// CacheStats reports record cache effectiveness
type CacheStats struct {
	Hits    int64
	Misses  int64
	Decodes int64
	Entries int
}

// MftIndex locates and decodes File Records through the $MFT's own run list
type MftIndex struct {
	src        interfaces.ByteSource
	geometry   types.VolumeGeometry
	recordSize uint32
	runs       []types.DataRun
	mftSize    uint64
	decodeOpts filerecord.Options

	cache  *arc.ARCCache[uint64, *filerecord.Record]
	group  singleflight.Group
	logger *zap.Logger

	hits    atomic.Int64
	misses  atomic.Int64
	decodes atomic.Int64
}

// NewMftIndex bootstraps the index from record 0, which always sits at the
// advertised MFT cluster, and keeps the run list of its unnamed $DATA attribute
func NewMftIndex(src interfaces.ByteSource, geometry types.VolumeGeometry, opts MftIndexOptions) (*MftIndex, error) {
	if src == nil {
		return nil, fmt.Errorf("byte source cannot be nil")
	}

	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultRecordCacheSize
	}
	cache, err := arc.NewARC[uint64, *filerecord.Record](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create record cache: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &MftIndex{
		src:        src,
		geometry:   geometry,
		recordSize: geometry.FileRecordSize(),
		decodeOpts: filerecord.Options{SectorSize: opts.SectorSize},
		cache:      cache,
		logger:     logger,
	}

	if err := m.bootstrap(); err != nil {
		return nil, err
	}
	return m, nil
}

// bootstrap decodes record 0 directly; the general lookup path needs its run list
func (m *MftIndex) bootstrap() error {
	offset := m.geometry.MftOffset()

	buf, err := readAt(m.src, offset, m.recordSize)
	if err != nil {
		return fmt.Errorf("failed to read $MFT record 0: %w", err)
	}

	rec, err := filerecord.DecodeWithOptions(buf, m.decodeOpts)
	if err != nil {
		return fmt.Errorf("failed to decode $MFT record 0 at offset %d: %w", offset, err)
	}
	m.decodes.Add(1)

	attr, ok := rec.Data("")
	if !ok {
		return types.NewFormatError(types.KindCorrupt, "$MFT record has no unnamed $DATA attribute")
	}
	data, ok := attr.(*types.NonResidentAttribute)
	if !ok {
		return types.NewFormatError(types.KindCorrupt, "$MFT $DATA attribute is resident")
	}
	if data.StartVCN != 0 {
		return types.NewFormatError(types.KindCorrupt, "$MFT $DATA attribute starts at VCN %d", data.StartVCN)
	}

	m.runs = data.Runs
	m.mftSize = data.RealSize
	m.cache.Add(types.RecordMFT, rec)

	m.logger.Debug("bootstrapped MFT",
		zap.Uint64("offset", offset),
		zap.Uint64("size", m.mftSize),
		zap.Int("runs", len(m.runs)),
		zap.Uint64("records", m.RecordCount()))

	return nil
}

// RecordSize returns the File Record segment size in bytes
func (m *MftIndex) RecordSize() uint32 {
	return m.recordSize
}

// RecordCount returns the number of records the $MFT data stream holds
func (m *MftIndex) RecordCount() uint64 {
	return m.mftSize / uint64(m.recordSize)
}

// Runs returns the $MFT run list
func (m *MftIndex) Runs() []types.DataRun {
	return m.runs
}

// RecordOffset returns the volume byte offset of record n. A record that
// straddles two runs is reported at the offset of its first byte.
func (m *MftIndex) RecordOffset(n uint64) (uint64, error) {
	extents, err := m.recordExtents(n)
	if err != nil {
		return 0, err
	}
	return extents[0].offset, nil
}

func (m *MftIndex) recordExtents(n uint64) ([]extent, error) {
	if n >= m.RecordCount() {
		return nil, types.NewFormatError(types.KindOutOfRange,
			"record %d is beyond the %d records of the MFT", n, m.RecordCount())
	}

	logical := n * uint64(m.recordSize)
	extents, err := mapExtents(m.runs, m.geometry.ClusterSize(), logical, m.recordSize)
	if err != nil {
		return nil, fmt.Errorf("failed to map record %d: %w", n, err)
	}

	for _, e := range extents {
		if e.sparse {
			return nil, types.NewFormatError(types.KindSparse, "record %d lies in a sparse run of the MFT", n)
		}
	}
	return extents, nil
}

// Record returns the decoded File Record n. Concurrent calls for the same
// uncached record share a single read and decode.
func (m *MftIndex) Record(ctx context.Context, n uint64) (*filerecord.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rec, ok := m.cache.Get(n); ok {
		m.hits.Add(1)
		return rec, nil
	}
	m.misses.Add(1)

	ch := m.group.DoChan(strconv.FormatUint(n, 10), func() (interface{}, error) {
		if rec, ok := m.cache.Get(n); ok {
			return rec, nil
		}
		rec, err := m.decode(n)
		if err != nil {
			return nil, err
		}
		m.cache.Add(n, rec)
		return rec, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*filerecord.Record), nil
	}
}

// decode reads and decodes record n, stitching extents when it straddles runs
func (m *MftIndex) decode(n uint64) (*filerecord.Record, error) {
	extents, err := m.recordExtents(n)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, m.recordSize)
	for _, e := range extents {
		data, err := readAt(m.src, e.offset, e.length)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", n, err)
		}
		buf = append(buf, data...)
	}

	rec, err := filerecord.DecodeWithOptions(buf, m.decodeOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record %d: %w", n, err)
	}
	m.decodes.Add(1)

	if h := rec.Header(); h.HasRecordNumber && uint64(h.RecordNumber) != n && rec.IsInUse() {
		m.logger.Debug("record number field disagrees with position",
			zap.Uint64("record", n), zap.Uint32("stored", h.RecordNumber))
	}

	return rec, nil
}

// Evict drops record n from the cache; the next lookup decodes it afresh
func (m *MftIndex) Evict(n uint64) {
	m.cache.Remove(n)
}

// CacheStats returns a snapshot of cache statistics
func (m *MftIndex) CacheStats() CacheStats {
	return CacheStats{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Decodes: m.decodes.Load(),
		Entries: m.cache.Len(),
	}
}
