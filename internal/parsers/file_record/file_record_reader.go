package filerecord

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-ntfs/internal/interfaces"
	"github.com/deploymenttheory/go-ntfs/internal/parsers/attributes"
	"github.com/deploymenttheory/go-ntfs/internal/parsers/fixup"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// Options tunes File Record decoding
type Options struct {
	// SectorSize is the fixup stride. Zero means types.FixupStride.
	SectorSize int
}

// Record is a decoded, fixed-up File Record. It implements interfaces.FileRecordReader
// and is immutable once returned.
type Record struct {
	header     types.FileRecordHeader
	attributes []types.Attribute
	notes      []string
}

// NewFileRecordReader decodes buf into a FileRecordReader
func NewFileRecordReader(buf []byte, opts Options) (interfaces.FileRecordReader, error) {
	return DecodeWithOptions(buf, opts)
}

// Decode decodes one File Record segment using the default sector size
func Decode(buf []byte) (*Record, error) {
	return DecodeWithOptions(buf, Options{})
}

// DecodeWithOptions checks the magic, applies the update sequence fixup to a private
// copy of buf, decodes the header and walks the attribute stream. buf is never modified.
func DecodeWithOptions(buf []byte, opts Options) (*Record, error) {
	stride := opts.SectorSize
	if stride == 0 {
		stride = types.FixupStride
	}

	if len(buf) < types.RecordHeaderSizeNT {
		return nil, types.NewFormatError(types.KindTruncated,
			"file record needs at least %d bytes, have %d", types.RecordHeaderSizeNT, len(buf))
	}

	if err := checkMagic(buf[types.RecordMagicOffset : types.RecordMagicOffset+4]); err != nil {
		return nil, err
	}

	work := bytes.Clone(buf)

	usa, err := fixup.ReadArray(work)
	if err != nil {
		return nil, err
	}
	if err := fixup.Apply(work, usa, stride); err != nil {
		return nil, fmt.Errorf("failed to apply update sequence fixup: %w", err)
	}

	header := parseHeader(work)
	if err := validateHeader(header, len(work)); err != nil {
		return nil, err
	}

	first := uint32(header.FirstAttributeOffset)
	attrs, notes, err := attributes.Decode(work[first:header.RealSize], header.RealSize-first)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}

	return &Record{
		header:     header,
		attributes: attrs,
		notes:      notes,
	}, nil
}

// checkMagic separates the BAAD sentinel from an unrecognized signature
func checkMagic(magic []byte) error {
	switch string(magic) {
	case types.FileRecordMagic:
		return nil
	case types.BadFileRecordMagic:
		return types.NewFormatError(types.KindCorrupt, "record is marked BAAD by a failed multi-sector transfer")
	}
	return types.NewFormatError(types.KindBadMagic, "record magic is %q", magic)
}

// parseHeader reads the header fields from a fixed-up record
func parseHeader(buf []byte) types.FileRecordHeader {
	le := binary.LittleEndian

	h := types.FileRecordHeader{
		UpdateSequenceOffset:  le.Uint16(buf[types.RecordUpdateSequenceOffsetOffset:]),
		UpdateSequenceCount:   le.Uint16(buf[types.RecordUpdateSequenceCountOffset:]),
		LogFileSequenceNumber: le.Uint64(buf[types.RecordLogFileSequenceOffset:]),
		SequenceNumber:        le.Uint16(buf[types.RecordSequenceNumberOffset:]),
		HardLinkCount:         le.Uint16(buf[types.RecordHardLinkCountOffset:]),
		FirstAttributeOffset:  le.Uint16(buf[types.RecordFirstAttributeOffset:]),
		Flags:                 types.RecordFlags(le.Uint16(buf[types.RecordFlagsOffset:])),
		RealSize:              le.Uint32(buf[types.RecordRealSizeOffset:]),
		AllocatedSize:         le.Uint32(buf[types.RecordAllocatedSizeOffset:]),
		BaseFileReference:     types.FileReference(le.Uint64(buf[types.RecordBaseReferenceOffset:])),
		NextAttributeID:       le.Uint16(buf[types.RecordNextAttributeIDOffset:]),
	}
	copy(h.Magic[:], buf[types.RecordMagicOffset:])

	// The XP layout pads the header to 0x30 and stores the record number at 0x2C.
	// The NT layout puts the update sequence array at 0x2A, over the same bytes.
	if h.FirstAttributeOffset >= types.RecordHeaderSizeXP &&
		h.UpdateSequenceOffset >= types.RecordHeaderSizeXP &&
		len(buf) >= types.RecordHeaderSizeXP {
		h.RecordNumber = le.Uint32(buf[types.RecordNumberOffset:])
		h.HasRecordNumber = true
	}

	return h
}

// validateHeader enforces RealSize <= AllocatedSize <= len(buf) and that the
// attribute stream starts inside the used part of the record
func validateHeader(h types.FileRecordHeader, bufLen int) error {
	if uint64(h.AllocatedSize) > uint64(bufLen) {
		return types.NewFormatError(types.KindTruncated,
			"allocated size %d exceeds the %d-byte buffer", h.AllocatedSize, bufLen)
	}
	if h.RealSize > h.AllocatedSize {
		return types.NewFormatError(types.KindTruncated,
			"real size %d exceeds allocated size %d", h.RealSize, h.AllocatedSize)
	}
	if uint32(h.FirstAttributeOffset) >= h.RealSize {
		return types.NewFormatError(types.KindTruncated,
			"first attribute offset %d is not below real size %d", h.FirstAttributeOffset, h.RealSize)
	}
	if h.FirstAttributeOffset < types.RecordHeaderSizeNT {
		return types.NewFormatError(types.KindCorrupt,
			"first attribute offset %d lies inside the header", h.FirstAttributeOffset)
	}
	return nil
}

// Header returns the decoded File Record header
func (r *Record) Header() types.FileRecordHeader {
	return r.header
}

// IsInUse reports whether the record is allocated
func (r *Record) IsInUse() bool {
	return r.header.IsInUse()
}

// IsDirectory reports whether the record describes a directory
func (r *Record) IsDirectory() bool {
	return r.header.IsDirectory()
}

// IsBase reports whether this is a base record
func (r *Record) IsBase() bool {
	return r.header.IsBase()
}

// Attributes returns every attribute in on-disk order
func (r *Record) Attributes() []types.Attribute {
	return r.attributes
}

// Notes returns soft-validation notes from the attribute walk
func (r *Record) Notes() []string {
	return r.notes
}

// Find returns the first attribute with the given type and name
func (r *Record) Find(attrType types.AttributeType, name string) (types.Attribute, bool) {
	return attributes.Find(r.attributes, attrType, name)
}

// FindAll returns every attribute with the given type
func (r *Record) FindAll(attrType types.AttributeType) []types.Attribute {
	return attributes.FindAll(r.attributes, attrType)
}

// Data returns the $DATA attribute with the given stream name; "" is the unnamed stream
func (r *Record) Data(name string) (types.Attribute, bool) {
	return r.Find(types.AttributeData, name)
}

// FileNames returns every decoded $FILE_NAME value
func (r *Record) FileNames() ([]types.FileName, error) {
	return attributes.FileNames(r.attributes)
}

// FileName returns the preferred display name of the record
func (r *Record) FileName() (types.FileName, bool) {
	names, err := r.FileNames()
	if err != nil {
		return types.FileName{}, false
	}
	return attributes.PreferredFileName(names)
}

// StandardInformation returns the decoded $STANDARD_INFORMATION value
func (r *Record) StandardInformation() (*types.StandardInformation, error) {
	value, err := r.residentValue(types.AttributeStandardInformation)
	if err != nil {
		return nil, err
	}
	return attributes.ParseStandardInformation(value)
}

// ObjectID returns the decoded $OBJECT_ID value
func (r *Record) ObjectID() (*types.ObjectID, error) {
	value, err := r.residentValue(types.AttributeObjectID)
	if err != nil {
		return nil, err
	}
	return attributes.ParseObjectID(value)
}

// VolumeName returns the $VOLUME_NAME label; only the $Volume record carries one
func (r *Record) VolumeName() (string, error) {
	value, err := r.residentValue(types.AttributeVolumeName)
	if err != nil {
		return "", err
	}
	return attributes.ParseVolumeName(value)
}

// VolumeInformation returns the $VOLUME_INFORMATION value; only the $Volume record carries one
func (r *Record) VolumeInformation() (*types.VolumeInformation, error) {
	value, err := r.residentValue(types.AttributeVolumeInformation)
	if err != nil {
		return nil, err
	}
	return attributes.ParseVolumeInformation(value)
}

func (r *Record) residentValue(attrType types.AttributeType) ([]byte, error) {
	attr, ok := r.Find(attrType, "")
	if !ok {
		return nil, fmt.Errorf("%s: %w", attrType, types.ErrAttributeNotFound)
	}
	return attributes.ResidentValue(attr)
}
