package types

import (
	"time"

	"github.com/google/uuid"
)

// Resident attribute values with a fixed layout.

// FileAttributes are the DOS-style file attribute bits stored in
// $STANDARD_INFORMATION and $FILE_NAME.
type FileAttributes uint32

const (
	FileAttributeReadOnly          FileAttributes = 0x0001
	FileAttributeHidden            FileAttributes = 0x0002
	FileAttributeSystem            FileAttributes = 0x0004
	FileAttributeArchive           FileAttributes = 0x0020
	FileAttributeDevice            FileAttributes = 0x0040
	FileAttributeNormal            FileAttributes = 0x0080
	FileAttributeTemporary         FileAttributes = 0x0100
	FileAttributeSparseFile        FileAttributes = 0x0200
	FileAttributeReparsePoint      FileAttributes = 0x0400
	FileAttributeCompressed        FileAttributes = 0x0800
	FileAttributeOffline           FileAttributes = 0x1000
	FileAttributeNotContentIndexed FileAttributes = 0x2000
	FileAttributeEncrypted         FileAttributes = 0x4000
	FileAttributeDirectory         FileAttributes = 0x10000000
	FileAttributeIndexView         FileAttributes = 0x20000000
)

// Has reports whether all bits of f are set
func (a FileAttributes) Has(f FileAttributes) bool {
	return a&f == f
}

// Timestamps are the four NTFS file times.
type Timestamps struct {
	Created     time.Time
	Modified    time.Time
	MFTModified time.Time
	Accessed    time.Time
}

// StandardInformation is the value of a $STANDARD_INFORMATION attribute.
type StandardInformation struct {
	Times          Timestamps
	FileAttributes FileAttributes
	MaxVersions    uint32
	VersionNumber  uint32
	ClassID        uint32

	// Only present in the NTFS 3.x layout (72-byte value).
	OwnerID         uint32
	SecurityID      uint32
	QuotaCharged    uint64
	UpdateSequence  uint64
	HasExtendedInfo bool
}

// StandardInformationSizeNT is the value size of the NT 4 layout.
const StandardInformationSizeNT = 48

// StandardInformationSize3x is the value size of the NTFS 3.x layout.
const StandardInformationSize3x = 72

// FileNameNamespace says which naming rules a $FILE_NAME follows.
type FileNameNamespace uint8

const (
	NamespacePOSIX       FileNameNamespace = 0
	NamespaceWin32       FileNameNamespace = 1
	NamespaceDOS         FileNameNamespace = 2
	NamespaceWin32AndDOS FileNameNamespace = 3
)

func (n FileNameNamespace) String() string {
	switch n {
	case NamespacePOSIX:
		return "POSIX"
	case NamespaceWin32:
		return "Win32"
	case NamespaceDOS:
		return "DOS"
	case NamespaceWin32AndDOS:
		return "Win32&DOS"
	}
	return "unknown"
}

// FileName is the value of a $FILE_NAME attribute.
type FileName struct {
	ParentDirectory FileReference
	Times           Timestamps
	AllocatedSize   uint64
	RealSize        uint64
	FileAttributes  FileAttributes
	ReparseValue    uint32
	Namespace       FileNameNamespace
	Name            string
}

// FileNameHeaderSize is the fixed part of a $FILE_NAME value before the name characters.
const FileNameHeaderSize = 0x42

// IsDirectory reports whether the name describes a directory
func (f FileName) IsDirectory() bool {
	return f.FileAttributes.Has(FileAttributeDirectory)
}

// ObjectID is the value of an $OBJECT_ID attribute. Only ObjectID is mandatory.
type ObjectID struct {
	ObjectID      uuid.UUID
	BirthVolumeID uuid.UUID
	BirthObjectID uuid.UUID
	DomainID      uuid.UUID
}

// VolumeFlags are the $VOLUME_INFORMATION flags.
type VolumeFlags uint16

const (
	VolumeFlagDirty            VolumeFlags = 0x0001
	VolumeFlagResizeLogFile    VolumeFlags = 0x0002
	VolumeFlagUpgradeOnMount   VolumeFlags = 0x0004
	VolumeFlagMountedOnNT4     VolumeFlags = 0x0008
	VolumeFlagDeleteUSN        VolumeFlags = 0x0010
	VolumeFlagRepairObjectIDs  VolumeFlags = 0x0020
	VolumeFlagModifiedByChkdsk VolumeFlags = 0x8000
)

// VolumeInformation is the value of a $VOLUME_INFORMATION attribute.
type VolumeInformation struct {
	MajorVersion uint8
	MinorVersion uint8
	Flags        VolumeFlags
}

// IsDirty reports whether the volume is marked dirty
func (v VolumeInformation) IsDirty() bool {
	return v.Flags&VolumeFlagDirty != 0
}
