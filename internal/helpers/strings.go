package helpers

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// DecodeUTF16LE decodes a little-endian UTF-16 byte sequence. Unpaired surrogates
// become U+FFFD rather than failing the decode.
func DecodeUTF16LE(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("odd UTF-16 byte length %d", len(b))
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("failed to decode UTF-16 name: %w", err)
	}
	return string(out), nil
}

// EncodeUTF16LE encodes s as little-endian UTF-16 without a byte order mark
func EncodeUTF16LE(s string) ([]byte, error) {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode UTF-16 name: %w", err)
	}
	return out, nil
}
