// Package helpers holds small decoding routines shared by the NTFS parsers.
package helpers

import (
	"fmt"

	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// SignExtend widens the low width*8 bits of v to a full int64, propagating the sign bit.
// A width of 0 yields 0; widths of 8 or more return v unchanged.
func SignExtend(v uint64, width int) int64 {
	if width <= 0 {
		return 0
	}
	if width >= 8 {
		return int64(v)
	}
	shift := uint(64 - width*8)
	return int64(v<<shift) >> shift
}

// Uint reads an unsigned little-endian integer of width bytes (0..8) from data
func Uint(data []byte, width int) (uint64, error) {
	if width < 0 || width > 8 {
		return 0, fmt.Errorf("invalid integer width %d", width)
	}
	if len(data) < width {
		return 0, fmt.Errorf("need %d bytes, have %d", width, len(data))
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(data[i])
	}
	return v, nil
}

// Int reads a signed two's-complement little-endian integer of width bytes (0..8) from data
func Int(data []byte, width int) (int64, error) {
	v, err := Uint(data, width)
	if err != nil {
		return 0, err
	}
	return SignExtend(v, width), nil
}

// PutUint writes the low width bytes of v little-endian into dst
func PutUint(dst []byte, v uint64, width int) {
	for i := 0; i < width; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

// UintWidth returns the smallest number of bytes that holds v (at least 1)
func UintWidth(v uint64) int {
	n := 1
	for v > 0xFF {
		v >>= 8
		n++
	}
	return n
}

// IntWidth returns the smallest number of bytes that holds v in two's complement (at least 1)
func IntWidth(v int64) int {
	for n := 1; n < 8; n++ {
		if SignExtend(uint64(v), n) == v {
			return n
		}
	}
	return 8
}

// DecodeSizeUnit decodes a signed clusters-or-bytes byte: a non-negative value N is
// N clusters, a negative value -k is 2^k bytes.
func DecodeSizeUnit(b byte) (types.SizeUnit, error) {
	v := SignExtend(uint64(b), 1)
	if v >= 0 {
		return types.Clusters(uint64(v)), nil
	}
	k := -v
	if k > 63 {
		return types.SizeUnit{}, fmt.Errorf("size exponent %d overflows", k)
	}
	return types.Bytes(uint64(1) << uint(k)), nil
}

// EncodeSizeUnit is the inverse of DecodeSizeUnit
func EncodeSizeUnit(s types.SizeUnit) (byte, error) {
	if !s.IsBytes() {
		if s.Value > 127 {
			return 0, fmt.Errorf("cluster count %d does not fit a signed byte", s.Value)
		}
		return byte(s.Value), nil
	}
	if s.Value == 0 || s.Value&(s.Value-1) != 0 {
		return 0, fmt.Errorf("byte size %d is not a power of two", s.Value)
	}
	k := 0
	for v := s.Value; v > 1; v >>= 1 {
		k++
	}
	return byte(int8(-k)), nil
}
