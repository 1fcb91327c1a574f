package attributes

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-ntfs/internal/helpers"
	"github.com/deploymenttheory/go-ntfs/internal/interfaces"
	"github.com/deploymenttheory/go-ntfs/internal/parsers/runlist"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// attributeStreamReader implements the AttributeStreamReader interface
type attributeStreamReader struct {
	attributes []types.Attribute
	notes      []string
}

// NewAttributeStreamReader decodes an attribute stream into an AttributeStreamReader
func NewAttributeStreamReader(data []byte, realSize uint32) (interfaces.AttributeStreamReader, error) {
	attrs, notes, err := Decode(data, realSize)
	if err != nil {
		return nil, err
	}
	return &attributeStreamReader{attributes: attrs, notes: notes}, nil
}

// Decode walks the attribute stream in data, which starts at the first attribute.
// realSize is the number of bytes of data in use; the walk stops at the end marker
// or when the cursor reaches realSize. Reaching realSize without the marker is not
// an error but is reported in the returned notes.
//
// The returned attributes never alias data.
func Decode(data []byte, realSize uint32) ([]types.Attribute, []string, error) {
	limit := len(data)
	if int(realSize) < limit {
		limit = int(realSize)
	}

	var (
		attrs []types.Attribute
		notes []string
		pos   int
	)

	for {
		if pos+4 > limit {
			notes = append(notes, fmt.Sprintf("attribute stream ended at byte %d of %d without an end marker", pos, limit))
			break
		}

		attrType := types.AttributeType(binary.LittleEndian.Uint32(data[pos:]))
		if attrType == types.AttributeEnd {
			break
		}

		if pos+types.AttrCommonHeaderSize > limit {
			return nil, nil, types.NewFormatError(types.KindTruncated,
				"attribute header at %d needs %d bytes, %d remain", pos, types.AttrCommonHeaderSize, limit-pos)
		}

		length := binary.LittleEndian.Uint32(data[pos+types.AttrLengthOffset:])
		if length < types.AttrCommonHeaderSize {
			return nil, nil, types.NewFormatError(types.KindTruncated,
				"attribute %s at %d declares length %d", attrType, pos, length)
		}
		if uint64(pos)+uint64(length) > uint64(limit) {
			return nil, nil, types.NewFormatError(types.KindTruncated,
				"attribute %s at %d with length %d overruns the %d-byte stream", attrType, pos, length, limit)
		}

		raw := make([]byte, length)
		copy(raw, data[pos:pos+int(length)])

		attr, err := decodeAttribute(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode attribute %s at offset %d: %w", attrType, pos, err)
		}

		attrs = append(attrs, attr)
		pos += int(length)
	}

	return attrs, notes, nil
}

// decodeAttribute decodes one complete attribute. raw is owned by the result.
func decodeAttribute(raw []byte) (types.Attribute, error) {
	header, err := parseHeader(raw)
	if err != nil {
		return nil, err
	}

	if raw[types.AttrNonResidentOffset] == 0 {
		return parseResident(raw, header)
	}
	return parseNonResident(raw, header)
}

// parseHeader reads the fields shared by both attribute forms
func parseHeader(raw []byte) (types.AttributeHeader, error) {
	le := binary.LittleEndian

	h := types.AttributeHeader{
		Type:  types.AttributeType(le.Uint32(raw[types.AttrTypeOffset:])),
		Flags: types.AttributeFlags(le.Uint16(raw[types.AttrFlagsOffset:])),
		ID:    le.Uint16(raw[types.AttrIDOffset:]),
		Raw:   raw,
	}

	nameLength := int(raw[types.AttrNameLengthOffset])
	if nameLength > 0 {
		nameOffset := int(le.Uint16(raw[types.AttrNameOffsetOffset:]))
		end := nameOffset + 2*nameLength
		if end > len(raw) {
			return types.AttributeHeader{}, types.NewFormatError(types.KindTruncated,
				"name of %d characters at %d overruns %d-byte attribute", nameLength, nameOffset, len(raw))
		}
		name, err := helpers.DecodeUTF16LE(raw[nameOffset:end])
		if err != nil {
			return types.AttributeHeader{}, types.NewFormatError(types.KindTruncated, "attribute name: %v", err)
		}
		h.Name = name
	}

	return h, nil
}

// parseResident slices the value out of a resident attribute
func parseResident(raw []byte, header types.AttributeHeader) (*types.ResidentAttribute, error) {
	if len(raw) < types.AttrResidentHeaderSize {
		return nil, types.NewFormatError(types.KindTruncated,
			"resident header needs %d bytes, attribute has %d", types.AttrResidentHeaderSize, len(raw))
	}

	valueLength := binary.LittleEndian.Uint32(raw[types.AttrValueLengthOffset:])
	valueOffset := binary.LittleEndian.Uint16(raw[types.AttrValueOffsetOffset:])

	end := uint64(valueOffset) + uint64(valueLength)
	if end > uint64(len(raw)) {
		return nil, types.NewFormatError(types.KindTruncated,
			"value of %d bytes at %d overruns %d-byte attribute", valueLength, valueOffset, len(raw))
	}

	return &types.ResidentAttribute{
		AttributeHeader: header,
		Data:            raw[valueOffset:end:end],
		Indexed:         raw[types.AttrIndexedFlagOffset]&0x01 != 0,
	}, nil
}

// parseNonResident reads the size fields and decodes the embedded run list
func parseNonResident(raw []byte, header types.AttributeHeader) (*types.NonResidentAttribute, error) {
	if len(raw) < types.AttrNonResidentHeaderSize {
		return nil, types.NewFormatError(types.KindTruncated,
			"non-resident header needs %d bytes, attribute has %d", types.AttrNonResidentHeaderSize, len(raw))
	}

	le := binary.LittleEndian
	attr := &types.NonResidentAttribute{
		AttributeHeader: header,
		StartVCN:        le.Uint64(raw[types.AttrStartVCNOffset:]),
		LastVCN:         le.Uint64(raw[types.AttrLastVCNOffset:]),
		CompressionUnit: le.Uint16(raw[types.AttrCompressionUnitOffset:]),
		AllocatedSize:   le.Uint64(raw[types.AttrAllocatedSizeOffset:]),
		RealSize:        le.Uint64(raw[types.AttrRealSizeOffset:]),
		InitializedSize: le.Uint64(raw[types.AttrInitializedSizeOffset:]),
	}

	if attr.CompressionUnit != 0 && len(raw) >= types.AttrCompressedHeaderSize {
		attr.CompressedSize = le.Uint64(raw[types.AttrCompressedSizeOffset:])
	}

	runListOffset := int(le.Uint16(raw[types.AttrRunListOffsetOffset:]))
	if runListOffset > len(raw) {
		return nil, types.NewFormatError(types.KindTruncated,
			"run list offset %d is past the %d-byte attribute", runListOffset, len(raw))
	}

	runs, err := runlist.Decode(raw[runListOffset:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode run list: %w", err)
	}
	for i := range runs {
		runs[i].StartVCN += attr.StartVCN
	}
	attr.Runs = runs

	return attr, nil
}

// Attributes returns every attribute in on-disk order
func (r *attributeStreamReader) Attributes() []types.Attribute {
	return r.attributes
}

// Notes returns soft-validation notes
func (r *attributeStreamReader) Notes() []string {
	return r.notes
}

// Find returns the first attribute with the given type and name
func (r *attributeStreamReader) Find(attrType types.AttributeType, name string) (types.Attribute, bool) {
	return Find(r.attributes, attrType, name)
}

// FindAll returns every attribute with the given type
func (r *attributeStreamReader) FindAll(attrType types.AttributeType) []types.Attribute {
	return FindAll(r.attributes, attrType)
}

// Find returns the first attribute in attrs with the given type and name
func Find(attrs []types.Attribute, attrType types.AttributeType, name string) (types.Attribute, bool) {
	for _, a := range attrs {
		h := a.Header()
		if h.Type == attrType && h.Name == name {
			return a, true
		}
	}
	return nil, false
}

// FindAll returns every attribute in attrs with the given type
func FindAll(attrs []types.Attribute, attrType types.AttributeType) []types.Attribute {
	var out []types.Attribute
	for _, a := range attrs {
		if a.Header().Type == attrType {
			out = append(out, a)
		}
	}
	return out
}
