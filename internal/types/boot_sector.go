package types

// Partition Boot Sector
// The first sector of an NTFS volume. It locates the Master File Table and defines the
// volume geometry used for every cluster-to-byte conversion.

// BootSectorSize is the size of the partition boot sector in bytes.
const BootSectorSize = 512

// NTFSOEMID is the OEM ID stored at offset 0x03 of every NTFS boot sector.
const NTFSOEMID = "NTFS    "

// SupportedBytesPerSector is the only sector size accepted by the boot sector decoder.
const SupportedBytesPerSector = 512

// MaxClusterSize is the largest cluster a supported boot sector can declare.
const MaxClusterSize = SupportedBytesPerSector * 255

// BootSectorEndMarker is the end-of-sector marker stored at offset 0x1FE.
const BootSectorEndMarker uint16 = 0xAA55

// Boot sector field offsets.
const (
	BootJumpOffset                  = 0x00
	BootOEMIDOffset                 = 0x03
	BootBytesPerSectorOffset        = 0x0B
	BootSectorsPerClusterOffset     = 0x0D
	BootMediaDescriptorOffset       = 0x15
	BootSectorsPerTrackOffset       = 0x18
	BootNumberOfHeadsOffset         = 0x1A
	BootHiddenSectorsOffset         = 0x1C
	BootTotalSectorsOffset          = 0x28
	BootMftClusterOffset            = 0x30
	BootMftMirrorClusterOffset      = 0x38
	BootFileRecordSegmentSizeOffset = 0x40
	BootIndexBufferSizeOffset       = 0x44
	BootVolumeSerialNumberOffset    = 0x48
	BootChecksumOffset              = 0x50
	BootBootstrapCodeOffset         = 0x54
	BootBootstrapCodeSize           = 426
	BootEndMarkerOffset             = 0x1FE
)

// SizeUnitKind says how a SizeUnit value is counted.
type SizeUnitKind uint8

const (
	// SizeUnitClusters means the value is a number of clusters.
	SizeUnitClusters SizeUnitKind = iota
	// SizeUnitBytes means the value is a number of bytes (a power of two).
	SizeUnitBytes
)

// SizeUnit is the signed "clusters-or-bytes" union used by the File Record segment size
// and Index Buffer size fields. A non-negative stored byte N means N clusters; a negative
// stored byte -k means 2^k bytes.
type SizeUnit struct {
	Kind  SizeUnitKind
	Value uint64
}

// Clusters returns a SizeUnit counting n clusters
func Clusters(n uint64) SizeUnit {
	return SizeUnit{Kind: SizeUnitClusters, Value: n}
}

// Bytes returns a SizeUnit counting n bytes
func Bytes(n uint64) SizeUnit {
	return SizeUnit{Kind: SizeUnitBytes, Value: n}
}

// IsBytes reports whether the value is a byte count
func (s SizeUnit) IsBytes() bool {
	return s.Kind == SizeUnitBytes
}

// ByteCount resolves the size to bytes for the given cluster size
func (s SizeUnit) ByteCount(clusterSize uint32) uint64 {
	if s.Kind == SizeUnitBytes {
		return s.Value
	}
	return s.Value * uint64(clusterSize)
}

// VolumeGeometry is the decoded content of the partition boot sector.
// It is created once per volume and never modified afterwards.
type VolumeGeometry struct {
	// The number of bytes in a disk sector. (offset 0x0B)
	BytesPerSector uint16

	// The number of sectors in a cluster. (offset 0x0D)
	SectorsPerCluster uint8

	// The type of drive; 0xF8 denotes a hard disk. (offset 0x15)
	MediaDescriptor uint8

	// The number of sectors in a drive track. (offset 0x18)
	SectorsPerTrack uint16

	// The number of heads on the drive. (offset 0x1A)
	NumberOfHeads uint16

	// The number of sectors preceding the partition. (offset 0x1C)
	HiddenSectors uint32

	// The partition size in sectors. (offset 0x28)
	TotalSectors uint64

	// The cluster that contains the Master File Table. (offset 0x30)
	MftClusterNumber uint64

	// The cluster that contains the $MFTMirr backup. (offset 0x38)
	MftMirrorClusterNumber uint64

	// Size of one File Record segment. (offset 0x40)
	FileRecordSegmentSize SizeUnit

	// Size of one Index Buffer. (offset 0x44)
	IndexBufferSize SizeUnit

	// A random serial number assigned at format time. (offset 0x48)
	VolumeSerialNumber uint64
}

// ClusterSize returns bytes per sector times sectors per cluster
func (g VolumeGeometry) ClusterSize() uint32 {
	return uint32(g.BytesPerSector) * uint32(g.SectorsPerCluster)
}

// FileRecordSize returns the File Record segment size in bytes.
// A decoded geometry never holds a size above math.MaxUint32.
func (g VolumeGeometry) FileRecordSize() uint32 {
	return uint32(g.FileRecordSegmentSize.ByteCount(g.ClusterSize()))
}

// IndexBufferBytes returns the Index Buffer size in bytes
func (g VolumeGeometry) IndexBufferBytes() uint32 {
	return uint32(g.IndexBufferSize.ByteCount(g.ClusterSize()))
}

// TotalClusters returns the number of whole clusters on the volume
func (g VolumeGeometry) TotalClusters() uint64 {
	if g.SectorsPerCluster == 0 {
		return 0
	}
	return g.TotalSectors / uint64(g.SectorsPerCluster)
}

// VolumeSize returns the volume size in bytes
func (g VolumeGeometry) VolumeSize() uint64 {
	return g.TotalSectors * uint64(g.BytesPerSector)
}

// ClusterOffset converts a logical cluster number to a volume byte offset
func (g VolumeGeometry) ClusterOffset(lcn uint64) uint64 {
	return lcn * uint64(g.ClusterSize())
}

// MftOffset returns the byte offset of the first $MFT cluster
func (g VolumeGeometry) MftOffset() uint64 {
	return g.ClusterOffset(g.MftClusterNumber)
}

// MftMirrorOffset returns the byte offset of the first $MFTMirr cluster
func (g VolumeGeometry) MftMirrorOffset() uint64 {
	return g.ClusterOffset(g.MftMirrorClusterNumber)
}
