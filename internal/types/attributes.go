package types

import "fmt"

// Attributes
// A File Record holds a sequence of self-length-prefixed attributes. Each attribute has a
// common header followed by either its value (resident) or a run list locating the value
// on the volume (non-resident).

// AttributeType is the attribute type code.
type AttributeType uint32

// Well-known attribute type codes. These identify decoded attributes; attributes are
// packed contiguously, so the codes say nothing about where an attribute sits in a record.
const (
	AttributeStandardInformation AttributeType = 0x10
	AttributeAttributeList       AttributeType = 0x20
	AttributeFileName            AttributeType = 0x30
	AttributeObjectID            AttributeType = 0x40 // $VOLUME_VERSION on NT
	AttributeSecurityDescriptor  AttributeType = 0x50
	AttributeVolumeName          AttributeType = 0x60
	AttributeVolumeInformation   AttributeType = 0x70
	AttributeData                AttributeType = 0x80
	AttributeIndexRoot           AttributeType = 0x90
	AttributeIndexAllocation     AttributeType = 0xA0
	AttributeBitmap              AttributeType = 0xB0
	AttributeReparsePoint        AttributeType = 0xC0 // $SYMBOLIC_LINK on NT
	AttributeEAInformation       AttributeType = 0xD0
	AttributeEA                  AttributeType = 0xE0
	AttributePropertySet         AttributeType = 0xF0
	AttributeLoggedUtilityStream AttributeType = 0x100

	// AttributeEnd is the end-of-attributes marker stored in place of a type code.
	AttributeEnd AttributeType = 0xFFFFFFFF
)

var attributeTypeNames = map[AttributeType]string{
	AttributeStandardInformation: "$STANDARD_INFORMATION",
	AttributeAttributeList:       "$ATTRIBUTE_LIST",
	AttributeFileName:            "$FILE_NAME",
	AttributeObjectID:            "$OBJECT_ID",
	AttributeSecurityDescriptor:  "$SECURITY_DESCRIPTOR",
	AttributeVolumeName:          "$VOLUME_NAME",
	AttributeVolumeInformation:   "$VOLUME_INFORMATION",
	AttributeData:                "$DATA",
	AttributeIndexRoot:           "$INDEX_ROOT",
	AttributeIndexAllocation:     "$INDEX_ALLOCATION",
	AttributeBitmap:              "$BITMAP",
	AttributeReparsePoint:        "$REPARSE_POINT",
	AttributeEAInformation:       "$EA_INFORMATION",
	AttributeEA:                  "$EA",
	AttributePropertySet:         "$PROPERTY_SET",
	AttributeLoggedUtilityStream: "$LOGGED_UTILITY_STREAM",
}

// Known reports whether the type code is one of the well-known attribute types
func (t AttributeType) Known() bool {
	_, ok := attributeTypeNames[t]
	return ok
}

func (t AttributeType) String() string {
	if name, ok := attributeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%X", uint32(t))
}

// AttributeFlags is the attribute header flag set.
type AttributeFlags uint16

const (
	AttributeFlagCompressed AttributeFlags = 0x0001
	AttributeFlagEncrypted  AttributeFlags = 0x4000
	AttributeFlagSparse     AttributeFlags = 0x8000

	attributeFlagCompressionMask AttributeFlags = 0x00FF
)

// IsCompressed reports whether the attribute data is compressed
func (f AttributeFlags) IsCompressed() bool {
	return f&attributeFlagCompressionMask != 0
}

// IsEncrypted reports whether the attribute data is encrypted
func (f AttributeFlags) IsEncrypted() bool {
	return f&AttributeFlagEncrypted != 0
}

// IsSparse reports whether the attribute may contain sparse runs
func (f AttributeFlags) IsSparse() bool {
	return f&AttributeFlagSparse != 0
}

// Attribute header field offsets, relative to the start of the attribute.
const (
	AttrTypeOffset        = 0x00
	AttrLengthOffset      = 0x04
	AttrNonResidentOffset = 0x08
	AttrNameLengthOffset  = 0x09
	AttrNameOffsetOffset  = 0x0A
	AttrFlagsOffset       = 0x0C
	AttrIDOffset          = 0x0E
	AttrCommonHeaderSize  = 0x10

	// Resident form
	AttrValueLengthOffset  = 0x10
	AttrValueOffsetOffset  = 0x14
	AttrIndexedFlagOffset  = 0x16
	AttrResidentHeaderSize = 0x18

	// Non-resident form
	AttrStartVCNOffset        = 0x10
	AttrLastVCNOffset         = 0x18
	AttrRunListOffsetOffset   = 0x20
	AttrCompressionUnitOffset = 0x22
	AttrAllocatedSizeOffset   = 0x28
	AttrRealSizeOffset        = 0x30
	AttrInitializedSizeOffset = 0x38
	AttrCompressedSizeOffset  = 0x40
	AttrNonResidentHeaderSize = 0x40
	AttrCompressedHeaderSize  = 0x48
)

// AttributeHeader holds the fields common to both attribute forms.
type AttributeHeader struct {
	// Type code of the attribute.
	Type AttributeType

	// Name of the attribute; empty for unnamed attributes.
	Name string

	// Compressed, encrypted and sparse flags.
	Flags AttributeFlags

	// Identifier unique within the record.
	ID uint16

	// Raw is the complete on-disk attribute, header included. Kept so attribute
	// types this package does not model remain available to callers.
	Raw []byte
}

// Attribute is either a *ResidentAttribute or a *NonResidentAttribute.
type Attribute interface {
	// Header returns the common attribute header
	Header() *AttributeHeader

	// IsResident reports whether the value is stored inside the record
	IsResident() bool

	attribute()
}

// ResidentAttribute carries its value inline in the File Record.
type ResidentAttribute struct {
	AttributeHeader

	// Data is the attribute value.
	Data []byte

	// Indexed is set when the attribute is referenced by an index (e.g. $FILE_NAME).
	Indexed bool
}

// Header returns the common attribute header
func (a *ResidentAttribute) Header() *AttributeHeader { return &a.AttributeHeader }

// IsResident always returns true
func (a *ResidentAttribute) IsResident() bool { return true }

func (a *ResidentAttribute) attribute() {}

// NonResidentAttribute stores its value in clusters elsewhere on the volume.
type NonResidentAttribute struct {
	AttributeHeader

	// First and last VCN covered by this attribute instance.
	StartVCN uint64
	LastVCN  uint64

	// Compression unit size as a power of two in clusters; zero when uncompressed.
	CompressionUnit uint16

	// Bytes allocated on disk for the value.
	AllocatedSize uint64

	// Logical size of the value.
	RealSize uint64

	// Bytes of the value that have been written; the rest reads as zero.
	InitializedSize uint64

	// Compressed size; only present when CompressionUnit is non-zero.
	CompressedSize uint64

	// Runs locating the value on disk.
	Runs []DataRun
}

// Header returns the common attribute header
func (a *NonResidentAttribute) Header() *AttributeHeader { return &a.AttributeHeader }

// IsResident always returns false
func (a *NonResidentAttribute) IsResident() bool { return false }

func (a *NonResidentAttribute) attribute() {}

// ClusterCount returns the number of clusters described by the run list
func (a *NonResidentAttribute) ClusterCount() uint64 {
	var n uint64
	for _, r := range a.Runs {
		n += r.Length
	}
	return n
}
