package testutil

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-ntfs/internal/parsers/fixup"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// RecordSpec describes the header of a File Record built by Record.
type RecordSpec struct {
	Size           int
	Number         uint32
	Sequence       uint16
	Flags          types.RecordFlags
	LinkCount      uint16
	BaseReference  types.FileReference
	UpdateSequence uint16
	// UpdateSequenceOffset defaults to the XP header size. Offsets below it
	// leave the record number field unset.
	UpdateSequenceOffset uint16
	// Magic defaults to "FILE".
	Magic string
}

// InUseRecord returns a spec for an allocated 1 KiB base record
func InUseRecord(number uint32) RecordSpec {
	return RecordSpec{
		Size:           1024,
		Number:         number,
		Sequence:       1,
		Flags:          types.RecordFlagInUse,
		LinkCount:      1,
		UpdateSequence: 0x0001,
	}
}

// Record renders a fixup-protected File Record holding attrs followed by the end marker
func Record(spec RecordSpec, attrs ...[]byte) []byte {
	if spec.Size == 0 {
		spec.Size = 1024
	}
	magic := spec.Magic
	if magic == "" {
		magic = types.FileRecordMagic
	}

	le := binary.LittleEndian
	buf := make([]byte, spec.Size)
	sectors := spec.Size / types.FixupStride
	usaOffset := spec.UpdateSequenceOffset
	if usaOffset == 0 {
		usaOffset = types.RecordHeaderSizeXP
	}
	usa := fixup.Array{Offset: usaOffset, Count: uint16(sectors + 1)}
	firstAttr := align8(int(usa.Offset) + 2*int(usa.Count))

	copy(buf[types.RecordMagicOffset:], magic)
	le.PutUint16(buf[types.RecordUpdateSequenceOffsetOffset:], usa.Offset)
	le.PutUint16(buf[types.RecordUpdateSequenceCountOffset:], usa.Count)
	le.PutUint16(buf[types.RecordSequenceNumberOffset:], spec.Sequence)
	le.PutUint16(buf[types.RecordHardLinkCountOffset:], spec.LinkCount)
	le.PutUint16(buf[types.RecordFirstAttributeOffset:], uint16(firstAttr))
	le.PutUint16(buf[types.RecordFlagsOffset:], uint16(spec.Flags))
	le.PutUint32(buf[types.RecordAllocatedSizeOffset:], uint32(spec.Size))
	le.PutUint64(buf[types.RecordBaseReferenceOffset:], uint64(spec.BaseReference))
	le.PutUint16(buf[types.RecordNextAttributeIDOffset:], uint16(len(attrs)))
	if usaOffset >= types.RecordHeaderSizeXP {
		le.PutUint32(buf[types.RecordNumberOffset:], spec.Number)
	}

	pos := firstAttr
	for _, a := range attrs {
		copy(buf[pos:], a)
		pos += len(a)
	}
	le.PutUint32(buf[pos:], uint32(types.AttributeEnd))
	pos += 8
	le.PutUint32(buf[types.RecordRealSizeOffset:], uint32(pos))

	if err := fixup.Stamp(buf, usa, spec.UpdateSequence, types.FixupStride); err != nil {
		panic(err)
	}
	return buf
}

// FirstAttributeOffset returns where Record places the first attribute for a record of size bytes
func FirstAttributeOffset(size int) int {
	return align8(types.RecordHeaderSizeXP + 2*(size/types.FixupStride+1))
}
