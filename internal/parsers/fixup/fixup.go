// Package fixup verifies and removes the update sequence protection NTFS applies to
// multi-sector structures such as File Records.
//
// When a structure is written, the last two bytes of every sector are saved into the
// Update Sequence Array and replaced by the Update Sequence Number. A sector whose tail
// does not hold the USN on read was not fully written.
package fixup

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// Array locates an Update Sequence Array inside a structure.
type Array struct {
	// Offset of the array from the start of the structure.
	Offset uint16

	// Count of 16-bit words in the array: the USN followed by one saved tail per sector.
	Count uint16
}

// Sectors returns the number of sectors the array protects
func (a Array) Sectors() int {
	if a.Count == 0 {
		return 0
	}
	return int(a.Count) - 1
}

// ReadArray reads the array location from the standard header offsets 0x04 and 0x06
func ReadArray(buf []byte) (Array, error) {
	if len(buf) < 8 {
		return Array{}, types.NewFormatError(types.KindTruncated, "header needs 8 bytes, have %d", len(buf))
	}
	return Array{
		Offset: binary.LittleEndian.Uint16(buf[types.RecordUpdateSequenceOffsetOffset:]),
		Count:  binary.LittleEndian.Uint16(buf[types.RecordUpdateSequenceCountOffset:]),
	}, nil
}

// validate checks that the array and the sectors it protects fit buf
func (a Array) validate(buf []byte, stride int) error {
	if stride < 2 || len(buf)%stride != 0 {
		return types.NewFormatError(types.KindTruncated,
			"buffer of %d bytes is not a whole number of %d-byte sectors", len(buf), stride)
	}
	if a.Count < 2 {
		return types.NewFormatError(types.KindBadFixup, "update sequence array has %d entries", a.Count)
	}
	if int(a.Offset)+2*int(a.Count) > len(buf) {
		return types.NewFormatError(types.KindTruncated,
			"update sequence array at %d with %d entries overruns %d-byte buffer", a.Offset, a.Count, len(buf))
	}

	sectors := len(buf) / stride
	switch {
	case a.Sectors() < sectors:
		return types.NewFormatError(types.KindBadFixup,
			"update sequence array covers %d of %d sectors", a.Sectors(), sectors)
	case a.Sectors() > sectors:
		return types.NewFormatError(types.KindTruncated,
			"update sequence array covers %d sectors, buffer holds %d", a.Sectors(), sectors)
	}
	return nil
}

// Apply verifies every sector tail of buf against the USN and restores the saved
// original bytes. buf is modified in place; on error its contents are unspecified,
// so callers pass a private copy.
func Apply(buf []byte, a Array, stride int) error {
	if err := a.validate(buf, stride); err != nil {
		return err
	}

	usa := buf[a.Offset : int(a.Offset)+2*int(a.Count)]
	usn := binary.LittleEndian.Uint16(usa[0:2])

	// Verify every sector before restoring any, so a torn record is rejected as a whole.
	for i := 0; i < a.Sectors(); i++ {
		tail := (i+1)*stride - 2
		if got := binary.LittleEndian.Uint16(buf[tail:]); got != usn {
			return types.NewFormatError(types.KindBadFixup,
				"sector %d ends with 0x%04X, update sequence number is 0x%04X", i, got, usn)
		}
	}

	// Copy the saved tails out first: the array itself may sit in a protected tail.
	saved := make([]byte, len(usa)-2)
	copy(saved, usa[2:])

	for i := 0; i < a.Sectors(); i++ {
		tail := (i+1)*stride - 2
		copy(buf[tail:tail+2], saved[2*i:2*i+2])
	}

	return nil
}

// Stamp is the write-side inverse of Apply: it saves each sector tail into the array
// and overwrites the tail with usn.
func Stamp(buf []byte, a Array, usn uint16, stride int) error {
	if err := a.validate(buf, stride); err != nil {
		return err
	}

	saved := make([]byte, 2*a.Sectors())
	for i := 0; i < a.Sectors(); i++ {
		tail := (i+1)*stride - 2
		copy(saved[2*i:], buf[tail:tail+2])
	}

	binary.LittleEndian.PutUint16(buf[a.Offset:], usn)
	copy(buf[int(a.Offset)+2:], saved)

	for i := 0; i < a.Sectors(); i++ {
		tail := (i+1)*stride - 2
		binary.LittleEndian.PutUint16(buf[tail:], usn)
	}

	return nil
}
