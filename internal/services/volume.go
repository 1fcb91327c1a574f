package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-ntfs/internal/interfaces"
	bootsector "github.com/deploymenttheory/go-ntfs/internal/parsers/boot_sector"
	filerecord "github.com/deploymenttheory/go-ntfs/internal/parsers/file_record"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// VolumeOptions configures OpenVolume
type VolumeOptions struct {
	CacheSize   int
	ScanWorkers int
	SectorSize  int
	Logger      *zap.Logger
}

// VolumeInfo summarises the $Volume metadata file
type VolumeInfo struct {
	Label        string            `json:"label" yaml:"label"`
	MajorVersion uint8             `json:"major_version" yaml:"major_version"`
	MinorVersion uint8             `json:"minor_version" yaml:"minor_version"`
	Flags        types.VolumeFlags `json:"flags" yaml:"flags"`
	Dirty        bool              `json:"dirty" yaml:"dirty"`
}

// Volume ties the boot sector, MFT index and higher level services together
type Volume struct {
	src      interfaces.ByteSource
	boot     interfaces.BootSectorReader
	index    *MftIndex
	scanner  *VolumeScanner
	resolver *PathResolver
	logger   *zap.Logger
}

// OpenVolume reads the boot sector at offset 0 of src and bootstraps the MFT
func OpenVolume(ctx context.Context, src interfaces.ByteSource, opts VolumeOptions) (*Volume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sector, err := readAt(src, 0, types.BootSectorSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read boot sector: %w", err)
	}

	boot, err := bootsector.NewBootSectorReader(sector)
	if err != nil {
		return nil, fmt.Errorf("failed to decode boot sector: %w", err)
	}

	index, err := NewMftIndex(src, boot.Geometry(), MftIndexOptions{
		CacheSize:  opts.CacheSize,
		SectorSize: opts.SectorSize,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	return &Volume{
		src:      src,
		boot:     boot,
		index:    index,
		scanner:  NewVolumeScanner(index, opts.ScanWorkers, logger),
		resolver: NewPathResolver(index, logger),
		logger:   logger,
	}, nil
}

// Geometry returns the decoded boot sector geometry
func (v *Volume) Geometry() types.VolumeGeometry {
	return v.boot.Geometry()
}

// BootSector returns the boot sector reader
func (v *Volume) BootSector() interfaces.BootSectorReader {
	return v.boot
}

// Index returns the MFT index
func (v *Volume) Index() *MftIndex {
	return v.index
}

// Scanner returns the full-MFT scanner
func (v *Volume) Scanner() *VolumeScanner {
	return v.scanner
}

// Resolver returns the path resolver
func (v *Volume) Resolver() *PathResolver {
	return v.resolver
}

// Record returns decoded File Record n
func (v *Volume) Record(ctx context.Context, n uint64) (*filerecord.Record, error) {
	return v.index.Record(ctx, n)
}

// OpenData returns a reader over the named $DATA stream of record n; "" is the
// unnamed stream
func (v *Volume) OpenData(ctx context.Context, n uint64, stream string) (*AttributeDataReader, error) {
	rec, err := v.index.Record(ctx, n)
	if err != nil {
		return nil, err
	}

	attr, ok := rec.Data(stream)
	if !ok {
		return nil, fmt.Errorf("record %d stream %q: %w", n, stream, types.ErrAttributeNotFound)
	}
	return NewAttributeDataReader(v.src, v.Geometry(), attr)
}

// Info decodes the label and version from the $Volume metadata file
func (v *Volume) Info(ctx context.Context) (VolumeInfo, error) {
	rec, err := v.index.Record(ctx, types.RecordVolume)
	if err != nil {
		return VolumeInfo{}, fmt.Errorf("failed to read $Volume: %w", err)
	}

	var info VolumeInfo

	label, err := rec.VolumeName()
	if err != nil && !errors.Is(err, types.ErrAttributeNotFound) {
		return VolumeInfo{}, fmt.Errorf("failed to decode volume label: %w", err)
	}
	info.Label = label

	vi, err := rec.VolumeInformation()
	if err != nil {
		return VolumeInfo{}, fmt.Errorf("failed to decode volume information: %w", err)
	}
	info.MajorVersion = vi.MajorVersion
	info.MinorVersion = vi.MinorVersion
	info.Flags = vi.Flags
	info.Dirty = vi.IsDirty()

	return info, nil
}
