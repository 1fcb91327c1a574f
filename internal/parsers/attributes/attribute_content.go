package attributes

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-ntfs/internal/helpers"
	"github.com/deploymenttheory/go-ntfs/internal/types"
	"github.com/google/uuid"
)

// ResidentValue returns the value of attr, which must be resident
func ResidentValue(attr types.Attribute) ([]byte, error) {
	r, ok := attr.(*types.ResidentAttribute)
	if !ok {
		return nil, types.NewFormatError(types.KindCorrupt,
			"%s attribute is non-resident, expected resident", attr.Header().Type)
	}
	return r.Data, nil
}

// ParseStandardInformation decodes a $STANDARD_INFORMATION value in either the
// 48-byte NT layout or the 72-byte NTFS 3.x layout.
func ParseStandardInformation(data []byte) (*types.StandardInformation, error) {
	if len(data) < types.StandardInformationSizeNT {
		return nil, types.NewFormatError(types.KindTruncated,
			"$STANDARD_INFORMATION needs %d bytes, have %d", types.StandardInformationSizeNT, len(data))
	}

	le := binary.LittleEndian
	si := &types.StandardInformation{
		Times:          parseTimestamps(data[0x00:0x20]),
		FileAttributes: types.FileAttributes(le.Uint32(data[0x20:])),
		MaxVersions:    le.Uint32(data[0x24:]),
		VersionNumber:  le.Uint32(data[0x28:]),
		ClassID:        le.Uint32(data[0x2C:]),
	}

	if len(data) >= types.StandardInformationSize3x {
		si.OwnerID = le.Uint32(data[0x30:])
		si.SecurityID = le.Uint32(data[0x34:])
		si.QuotaCharged = le.Uint64(data[0x38:])
		si.UpdateSequence = le.Uint64(data[0x40:])
		si.HasExtendedInfo = true
	}

	return si, nil
}

// ParseFileName decodes a $FILE_NAME value
func ParseFileName(data []byte) (*types.FileName, error) {
	if len(data) < types.FileNameHeaderSize {
		return nil, types.NewFormatError(types.KindTruncated,
			"$FILE_NAME needs %d bytes, have %d", types.FileNameHeaderSize, len(data))
	}

	le := binary.LittleEndian
	nameLength := int(data[0x40])
	end := types.FileNameHeaderSize + 2*nameLength
	if end > len(data) {
		return nil, types.NewFormatError(types.KindTruncated,
			"$FILE_NAME name of %d characters overruns %d-byte value", nameLength, len(data))
	}

	name, err := helpers.DecodeUTF16LE(data[types.FileNameHeaderSize:end])
	if err != nil {
		return nil, fmt.Errorf("failed to decode file name: %w", err)
	}

	return &types.FileName{
		ParentDirectory: types.FileReference(le.Uint64(data[0x00:])),
		Times:           parseTimestamps(data[0x08:0x28]),
		AllocatedSize:   le.Uint64(data[0x28:]),
		RealSize:        le.Uint64(data[0x30:]),
		FileAttributes:  types.FileAttributes(le.Uint32(data[0x38:])),
		ReparseValue:    le.Uint32(data[0x3C:]),
		Namespace:       types.FileNameNamespace(data[0x41]),
		Name:            name,
	}, nil
}

// ParseObjectID decodes an $OBJECT_ID value. Only the first GUID is mandatory;
// the birth and domain GUIDs are filled in when present.
func ParseObjectID(data []byte) (*types.ObjectID, error) {
	if len(data) < 16 {
		return nil, types.NewFormatError(types.KindTruncated, "$OBJECT_ID needs 16 bytes, have %d", len(data))
	}

	oid := &types.ObjectID{}
	targets := []*uuid.UUID{&oid.ObjectID, &oid.BirthVolumeID, &oid.BirthObjectID, &oid.DomainID}
	for i, dst := range targets {
		off := i * 16
		if off+16 > len(data) {
			break
		}
		u, err := helpers.GUIDToUUID(data[off : off+16])
		if err != nil {
			return nil, fmt.Errorf("failed to decode object id GUID %d: %w", i, err)
		}
		*dst = u
	}

	return oid, nil
}

// ParseVolumeName decodes a $VOLUME_NAME value
func ParseVolumeName(data []byte) (string, error) {
	if len(data)%2 != 0 {
		return "", types.NewFormatError(types.KindTruncated, "$VOLUME_NAME has odd length %d", len(data))
	}
	return helpers.DecodeUTF16LE(data)
}

// ParseVolumeInformation decodes a $VOLUME_INFORMATION value
func ParseVolumeInformation(data []byte) (*types.VolumeInformation, error) {
	if len(data) < 12 {
		return nil, types.NewFormatError(types.KindTruncated, "$VOLUME_INFORMATION needs 12 bytes, have %d", len(data))
	}
	return &types.VolumeInformation{
		MajorVersion: data[0x08],
		MinorVersion: data[0x09],
		Flags:        types.VolumeFlags(binary.LittleEndian.Uint16(data[0x0A:])),
	}, nil
}

// FileNames decodes every resident $FILE_NAME attribute in attrs
func FileNames(attrs []types.Attribute) ([]types.FileName, error) {
	var names []types.FileName
	for _, a := range FindAll(attrs, types.AttributeFileName) {
		value, err := ResidentValue(a)
		if err != nil {
			return nil, err
		}
		fn, err := ParseFileName(value)
		if err != nil {
			return nil, err
		}
		names = append(names, *fn)
	}
	return names, nil
}

// PreferredFileName picks the name to display: Win32 or Win32&DOS first, then
// POSIX, and the DOS short name only when nothing else exists.
func PreferredFileName(names []types.FileName) (types.FileName, bool) {
	if len(names) == 0 {
		return types.FileName{}, false
	}
	rank := func(ns types.FileNameNamespace) int {
		switch ns {
		case types.NamespaceWin32, types.NamespaceWin32AndDOS:
			return 0
		case types.NamespacePOSIX:
			return 1
		}
		return 2
	}
	best := names[0]
	for _, n := range names[1:] {
		if rank(n.Namespace) < rank(best.Namespace) {
			best = n
		}
	}
	return best, true
}

func parseTimestamps(b []byte) types.Timestamps {
	le := binary.LittleEndian
	return types.Timestamps{
		Created:     helpers.FiletimeToTime(le.Uint64(b[0x00:])),
		Modified:    helpers.FiletimeToTime(le.Uint64(b[0x08:])),
		MFTModified: helpers.FiletimeToTime(le.Uint64(b[0x10:])),
		Accessed:    helpers.FiletimeToTime(le.Uint64(b[0x18:])),
	}
}
