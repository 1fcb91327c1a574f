// Package testutil builds synthetic NTFS structures for tests.
package testutil

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// BootSectorSpec describes the fields written by BootSector.
type BootSectorSpec struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	MediaDescriptor   uint8
	TotalSectors      uint64
	MftCluster        uint64
	MftMirrorCluster  uint64
	// RecordSizeByte and IndexSizeByte are stored verbatim; -10 (0xF6) means 1024 bytes.
	RecordSizeByte int8
	IndexSizeByte  int8
	Serial         uint64
}

// DefaultBootSector returns a 4 KiB-cluster volume with 1 KiB File Records and the
// MFT at cluster 4.
func DefaultBootSector() BootSectorSpec {
	return BootSectorSpec{
		BytesPerSector:    512,
		SectorsPerCluster: 8,
		MediaDescriptor:   0xF8,
		TotalSectors:      2048,
		MftCluster:        4,
		MftMirrorCluster:  128,
		RecordSizeByte:    -10,
		IndexSizeByte:     1,
		Serial:            0x1234567890ABCDEF,
	}
}

// BootSector renders spec as a 512-byte boot sector
func BootSector(spec BootSectorSpec) []byte {
	le := binary.LittleEndian
	b := make([]byte, types.BootSectorSize)

	copy(b[types.BootJumpOffset:], []byte{0xEB, 0x52, 0x90})
	copy(b[types.BootOEMIDOffset:], types.NTFSOEMID)
	le.PutUint16(b[types.BootBytesPerSectorOffset:], spec.BytesPerSector)
	b[types.BootSectorsPerClusterOffset] = spec.SectorsPerCluster
	b[types.BootMediaDescriptorOffset] = spec.MediaDescriptor
	le.PutUint16(b[types.BootSectorsPerTrackOffset:], 63)
	le.PutUint16(b[types.BootNumberOfHeadsOffset:], 255)
	le.PutUint64(b[types.BootTotalSectorsOffset:], spec.TotalSectors)
	le.PutUint64(b[types.BootMftClusterOffset:], spec.MftCluster)
	le.PutUint64(b[types.BootMftMirrorClusterOffset:], spec.MftMirrorCluster)
	b[types.BootFileRecordSegmentSizeOffset] = byte(spec.RecordSizeByte)
	b[types.BootIndexBufferSizeOffset] = byte(spec.IndexSizeByte)
	le.PutUint64(b[types.BootVolumeSerialNumberOffset:], spec.Serial)
	le.PutUint16(b[types.BootEndMarkerOffset:], types.BootSectorEndMarker)

	return b
}
