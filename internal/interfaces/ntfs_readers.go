// File: internal/interfaces/ntfs_readers.go
package interfaces

import (
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// BootSectorReader provides access to a decoded partition boot sector
type BootSectorReader interface {
	// Geometry returns the decoded volume geometry
	Geometry() types.VolumeGeometry

	// OEMID returns the 8-byte OEM identifier
	OEMID() string

	// ClusterSize returns the cluster size in bytes
	ClusterSize() uint32

	// FileRecordSize returns the File Record segment size in bytes
	FileRecordSize() uint32

	// IndexBufferSize returns the Index Buffer size in bytes
	IndexBufferSize() uint32

	// MftOffset returns the volume byte offset of $MFT
	MftOffset() uint64

	// MftMirrorOffset returns the volume byte offset of $MFTMirr
	MftMirrorOffset() uint64

	// BootstrapCode returns the opaque 426-byte bootstrap code region
	BootstrapCode() []byte
}

// AttributeStreamReader provides access to the attributes decoded from a File Record
type AttributeStreamReader interface {
	// Attributes returns every attribute in on-disk order
	Attributes() []types.Attribute

	// Notes returns soft-validation notes, such as a missing end marker
	Notes() []string

	// Find returns the first attribute with the given type and name
	Find(attrType types.AttributeType, name string) (types.Attribute, bool)

	// FindAll returns every attribute with the given type
	FindAll(attrType types.AttributeType) []types.Attribute
}

// FileRecordReader provides access to a decoded, fixed-up File Record
type FileRecordReader interface {
	AttributeStreamReader

	// Header returns the decoded File Record header
	Header() types.FileRecordHeader

	// IsInUse reports whether the record is allocated
	IsInUse() bool

	// IsDirectory reports whether the record describes a directory
	IsDirectory() bool

	// IsBase reports whether this is a base record
	IsBase() bool

	// Data returns the (unnamed when name is empty) $DATA attribute
	Data(name string) (types.Attribute, bool)

	// FileNames returns every decoded $FILE_NAME value
	FileNames() ([]types.FileName, error)

	// StandardInformation returns the decoded $STANDARD_INFORMATION value
	StandardInformation() (*types.StandardInformation, error)
}
