package types

import "fmt"

// File Records
// Every file and directory on an NTFS volume is described by one or more fixed-size
// File Records in the Master File Table. The first record for a file is the base record;
// any others are extension records that point back to it.

// File Record magic values.
const (
	FileRecordMagic    = "FILE"
	BadFileRecordMagic = "BAAD"
)

// File Record header field offsets.
const (
	RecordMagicOffset                = 0x00
	RecordUpdateSequenceOffsetOffset = 0x04
	RecordUpdateSequenceCountOffset  = 0x06
	RecordLogFileSequenceOffset      = 0x08
	RecordSequenceNumberOffset       = 0x10
	RecordHardLinkCountOffset        = 0x12
	RecordFirstAttributeOffset       = 0x14
	RecordFlagsOffset                = 0x16
	RecordRealSizeOffset             = 0x18
	RecordAllocatedSizeOffset        = 0x1C
	RecordBaseReferenceOffset        = 0x20
	RecordNextAttributeIDOffset      = 0x28
	RecordNumberOffset               = 0x2C

	// RecordHeaderSizeNT is the header length of the NT 4 layout.
	RecordHeaderSizeNT = 0x2A

	// RecordHeaderSizeXP is the header length of the layout that adds the record number.
	RecordHeaderSizeXP = 0x30
)

// FixupStride is the size of each sector protected by the update sequence array.
const FixupStride = 512

// RecordFlags is the File Record header flag set.
type RecordFlags uint16

const (
	// RecordFlagInUse marks an allocated record.
	RecordFlagInUse RecordFlags = 0x0001
	// RecordFlagDirectory marks a directory (the record has a $I30 index).
	RecordFlagDirectory RecordFlags = 0x0002
	// RecordFlagInExtend marks records of files under $Extend.
	RecordFlagInExtend RecordFlags = 0x0004
	// RecordFlagIsViewIndex marks records holding a non-filename view index.
	RecordFlagIsViewIndex RecordFlags = 0x0008
)

// Has reports whether all bits of f are set
func (r RecordFlags) Has(f RecordFlags) bool {
	return r&f == f
}

// FileReference packs a 48-bit MFT entry number with a 16-bit sequence number.
// Two references are equal only when both parts match.
type FileReference uint64

const fileReferenceEntryMask = 0x0000FFFFFFFFFFFF

// NewFileReference packs an entry number and sequence number
func NewFileReference(entry uint64, sequence uint16) FileReference {
	return FileReference(entry&fileReferenceEntryMask | uint64(sequence)<<48)
}

// Entry returns the MFT entry index
func (f FileReference) Entry() uint64 {
	return uint64(f) & fileReferenceEntryMask
}

// Sequence returns the sequence number
func (f FileReference) Sequence() uint16 {
	return uint16(uint64(f) >> 48)
}

// IsZero reports whether the reference is empty
func (f FileReference) IsZero() bool {
	return f == 0
}

// Stale reports whether the referenced record has been reused: the record's
// current sequence number no longer matches the one captured in the reference.
// A zero sequence in the reference is treated as "don't care".
func (f FileReference) Stale(currentSequence uint16) bool {
	return f.Sequence() != 0 && f.Sequence() != currentSequence
}

func (f FileReference) String() string {
	return fmt.Sprintf("%d-%d", f.Entry(), f.Sequence())
}

// FileRecordHeader is the fixed-offset header at the start of every File Record.
type FileRecordHeader struct {
	// Magic number 'FILE'. (offset 0x00)
	Magic [4]byte

	// Offset to the Update Sequence Array. (offset 0x04)
	UpdateSequenceOffset uint16

	// Size in words of the Update Sequence Array, including the USN. (offset 0x06)
	UpdateSequenceCount uint16

	// $LogFile Sequence Number. (offset 0x08)
	LogFileSequenceNumber uint64

	// Incremented each time the record is reused. (offset 0x10)
	SequenceNumber uint16

	// Number of directory entries referencing this record. (offset 0x12)
	HardLinkCount uint16

	// Offset to the first attribute. (offset 0x14)
	FirstAttributeOffset uint16

	// In-use and directory flags. (offset 0x16)
	Flags RecordFlags

	// Bytes of the record actually used. (offset 0x18)
	RealSize uint32

	// Bytes allocated for the record. (offset 0x1C)
	AllocatedSize uint32

	// Reference to the base record; zero for base records. (offset 0x20)
	BaseFileReference FileReference

	// Next attribute identifier to be assigned. (offset 0x28)
	NextAttributeID uint16

	// Number of this MFT record; only on the XP layout. (offset 0x2C)
	RecordNumber uint32

	// HasRecordNumber is set when the header is long enough to carry RecordNumber.
	HasRecordNumber bool
}

// IsInUse reports whether the record is allocated
func (h FileRecordHeader) IsInUse() bool {
	return h.Flags.Has(RecordFlagInUse)
}

// IsDirectory reports whether the record describes a directory
func (h FileRecordHeader) IsDirectory() bool {
	return h.Flags.Has(RecordFlagDirectory)
}

// IsBase reports whether this is a base record rather than an extension record
func (h FileRecordHeader) IsBase() bool {
	return h.BaseFileReference.IsZero()
}

// Reference returns a FileReference naming this record at its current sequence
func (h FileRecordHeader) Reference(recordNumber uint64) FileReference {
	return NewFileReference(recordNumber, h.SequenceNumber)
}
