package bootsector

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/deploymenttheory/go-ntfs/internal/helpers"
	"github.com/deploymenttheory/go-ntfs/internal/interfaces"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// bootSectorReader implements the BootSectorReader interface
type bootSectorReader struct {
	geometry types.VolumeGeometry
	oemID    string
	data     []byte
}

// NewBootSectorReader decodes a partition boot sector into a BootSectorReader
func NewBootSectorReader(data []byte) (interfaces.BootSectorReader, error) {
	geometry, err := Decode(data)
	if err != nil {
		return nil, err
	}

	sector := make([]byte, types.BootSectorSize)
	copy(sector, data)

	return &bootSectorReader{
		geometry: geometry,
		oemID:    string(sector[types.BootOEMIDOffset : types.BootOEMIDOffset+8]),
		data:     sector,
	}, nil
}

// Decode validates and decodes the first 512 bytes of data into a VolumeGeometry.
// The input is never modified.
func Decode(data []byte) (types.VolumeGeometry, error) {
	if len(data) < types.BootSectorSize {
		return types.VolumeGeometry{}, types.NewFormatError(types.KindTruncated,
			"boot sector needs %d bytes, have %d", types.BootSectorSize, len(data))
	}

	if !validJump(data[types.BootJumpOffset : types.BootJumpOffset+3]) {
		return types.VolumeGeometry{}, types.NewFormatError(types.KindNotNTFS,
			"unexpected jump instruction % X", data[0:3])
	}

	if !bytes.Equal(data[types.BootOEMIDOffset:types.BootOEMIDOffset+8], []byte(types.NTFSOEMID)) {
		return types.VolumeGeometry{}, types.NewFormatError(types.KindNotNTFS,
			"OEM ID is %q", data[types.BootOEMIDOffset:types.BootOEMIDOffset+8])
	}

	marker := binary.LittleEndian.Uint16(data[types.BootEndMarkerOffset : types.BootEndMarkerOffset+2])
	if marker != types.BootSectorEndMarker {
		return types.VolumeGeometry{}, types.NewFormatError(types.KindInvalidBootSector,
			"end-of-sector marker is 0x%04X, want 0x%04X", marker, types.BootSectorEndMarker)
	}

	geometry, err := parseGeometry(data)
	if err != nil {
		return types.VolumeGeometry{}, err
	}

	if err := validateGeometry(geometry); err != nil {
		return types.VolumeGeometry{}, err
	}

	return geometry, nil
}

// validJump accepts the short jump (EB xx 90) and near jump (E9 xx xx) forms
func validJump(jump []byte) bool {
	switch jump[0] {
	case 0xEB:
		return jump[2] == 0x90
	case 0xE9:
		return true
	}
	return false
}

// parseGeometry reads the little-endian fields at their fixed offsets
func parseGeometry(data []byte) (types.VolumeGeometry, error) {
	le := binary.LittleEndian

	g := types.VolumeGeometry{
		BytesPerSector:         le.Uint16(data[types.BootBytesPerSectorOffset:]),
		SectorsPerCluster:      data[types.BootSectorsPerClusterOffset],
		MediaDescriptor:        data[types.BootMediaDescriptorOffset],
		SectorsPerTrack:        le.Uint16(data[types.BootSectorsPerTrackOffset:]),
		NumberOfHeads:          le.Uint16(data[types.BootNumberOfHeadsOffset:]),
		HiddenSectors:          le.Uint32(data[types.BootHiddenSectorsOffset:]),
		TotalSectors:           le.Uint64(data[types.BootTotalSectorsOffset:]),
		MftClusterNumber:       le.Uint64(data[types.BootMftClusterOffset:]),
		MftMirrorClusterNumber: le.Uint64(data[types.BootMftMirrorClusterOffset:]),
		VolumeSerialNumber:     le.Uint64(data[types.BootVolumeSerialNumberOffset:]),
	}

	var err error
	g.FileRecordSegmentSize, err = helpers.DecodeSizeUnit(data[types.BootFileRecordSegmentSizeOffset])
	if err != nil {
		return types.VolumeGeometry{}, types.NewFormatError(types.KindInvalidBootSector,
			"file record segment size: %v", err)
	}
	g.IndexBufferSize, err = helpers.DecodeSizeUnit(data[types.BootIndexBufferSizeOffset])
	if err != nil {
		return types.VolumeGeometry{}, types.NewFormatError(types.KindInvalidBootSector,
			"index buffer size: %v", err)
	}

	return g, nil
}

// validateGeometry enforces the invariants every later cluster conversion relies on
func validateGeometry(g types.VolumeGeometry) error {
	if g.BytesPerSector != types.SupportedBytesPerSector {
		return types.NewFormatError(types.KindInvalidBootSector,
			"bytes per sector is %d, want %d", g.BytesPerSector, types.SupportedBytesPerSector)
	}
	if g.SectorsPerCluster == 0 {
		return types.NewFormatError(types.KindInvalidBootSector, "sectors per cluster is zero")
	}
	if n := g.FileRecordSegmentSize.ByteCount(g.ClusterSize()); n > math.MaxUint32 {
		return types.NewFormatError(types.KindInvalidBootSector, "file record segment size %d overflows", n)
	}
	if n := g.IndexBufferSize.ByteCount(g.ClusterSize()); n > math.MaxUint32 {
		return types.NewFormatError(types.KindInvalidBootSector, "index buffer size %d overflows", n)
	}
	if g.FileRecordSize() == 0 {
		return types.NewFormatError(types.KindInvalidBootSector, "file record segment size is zero")
	}
	if g.FileRecordSize()%types.FixupStride != 0 {
		return types.NewFormatError(types.KindInvalidBootSector,
			"file record segment size %d is not a multiple of %d", g.FileRecordSize(), types.FixupStride)
	}
	return nil
}

// Geometry returns the decoded volume geometry
func (r *bootSectorReader) Geometry() types.VolumeGeometry {
	return r.geometry
}

// OEMID returns the 8-byte OEM identifier
func (r *bootSectorReader) OEMID() string {
	return r.oemID
}

// ClusterSize returns the cluster size in bytes
func (r *bootSectorReader) ClusterSize() uint32 {
	return r.geometry.ClusterSize()
}

// FileRecordSize returns the File Record segment size in bytes
func (r *bootSectorReader) FileRecordSize() uint32 {
	return r.geometry.FileRecordSize()
}

// IndexBufferSize returns the Index Buffer size in bytes
func (r *bootSectorReader) IndexBufferSize() uint32 {
	return r.geometry.IndexBufferBytes()
}

// MftOffset returns the volume byte offset of $MFT
func (r *bootSectorReader) MftOffset() uint64 {
	return r.geometry.MftOffset()
}

// MftMirrorOffset returns the volume byte offset of $MFTMirr
func (r *bootSectorReader) MftMirrorOffset() uint64 {
	return r.geometry.MftMirrorOffset()
}

// BootstrapCode returns the opaque bootstrap code region
func (r *bootSectorReader) BootstrapCode() []byte {
	out := make([]byte, types.BootBootstrapCodeSize)
	copy(out, r.data[types.BootBootstrapCodeOffset:types.BootBootstrapCodeOffset+types.BootBootstrapCodeSize])
	return out
}

// String summarises the geometry for diagnostics
func (r *bootSectorReader) String() string {
	g := r.geometry
	return fmt.Sprintf("NTFS volume serial %016X: %d sectors of %d bytes, %d-byte clusters, $MFT at cluster %d",
		g.VolumeSerialNumber, g.TotalSectors, g.BytesPerSector, g.ClusterSize(), g.MftClusterNumber)
}
