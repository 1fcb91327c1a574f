package types

import (
	"errors"
	"fmt"
)

// FormatErrorKind classifies a structural validation failure.
type FormatErrorKind int

const (
	// KindNotNTFS means the jump instruction or OEM ID does not identify an NTFS volume.
	KindNotNTFS FormatErrorKind = iota + 1

	// KindInvalidBootSector means the boot sector end marker or geometry fields are invalid.
	KindInvalidBootSector

	// KindBadMagic means a File Record does not start with 'FILE' or 'BAAD'.
	KindBadMagic

	// KindCorrupt means a File Record carries the 'BAAD' multi-sector transfer sentinel.
	KindCorrupt

	// KindBadFixup means a sector tail did not match the Update Sequence Number (torn write).
	KindBadFixup

	// KindTruncated means a declared length or offset points past the end of the available bytes.
	KindTruncated

	// KindInvalidRunHeader means a run-list header declares an impossible field width.
	KindInvalidRunHeader

	// KindOutOfRange means a record number or offset lies outside the $MFT data stream.
	KindOutOfRange

	// KindSparse means a record number maps into a sparse run with no backing clusters.
	KindSparse
)

var kindNames = map[FormatErrorKind]string{
	KindNotNTFS:           "not an NTFS volume",
	KindInvalidBootSector: "invalid boot sector",
	KindBadMagic:          "bad file record magic",
	KindCorrupt:           "corrupt file record",
	KindBadFixup:          "update sequence mismatch",
	KindTruncated:         "truncated structure",
	KindInvalidRunHeader:  "invalid run header",
	KindOutOfRange:        "out of range",
	KindSparse:            "sparse run",
}

// String returns a human readable name for the kind
func (k FormatErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("format error %d", int(k))
}

// FormatError is a structural validation failure. Decoding never recovers from one.
type FormatError struct {
	Kind   FormatErrorKind
	Detail string
}

// NewFormatError creates a FormatError with a formatted detail message
func NewFormatError(kind FormatErrorKind, format string, args ...interface{}) *FormatError {
	return &FormatError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return "ntfs: " + e.Kind.String()
	}
	return "ntfs: " + e.Kind.String() + ": " + e.Detail
}

// Is matches any FormatError of the same kind. A sparse failure also matches KindOutOfRange.
func (e *FormatError) Is(target error) bool {
	var t *FormatError
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return e.Kind == KindSparse && t.Kind == KindOutOfRange
}

// Sentinels for errors.Is
var (
	ErrNotNTFS           = &FormatError{Kind: KindNotNTFS}
	ErrInvalidBootSector = &FormatError{Kind: KindInvalidBootSector}
	ErrBadMagic          = &FormatError{Kind: KindBadMagic}
	ErrCorrupt           = &FormatError{Kind: KindCorrupt}
	ErrBadFixup          = &FormatError{Kind: KindBadFixup}
	ErrTruncated         = &FormatError{Kind: KindTruncated}
	ErrInvalidRunHeader  = &FormatError{Kind: KindInvalidRunHeader}
	ErrOutOfRange        = &FormatError{Kind: KindOutOfRange}
	ErrSparse            = &FormatError{Kind: KindSparse}
)

// ErrCompressed is returned when reading data of a compressed attribute
var ErrCompressed = errors.New("ntfs: compressed attribute data is not supported")

// ErrAttributeNotFound is returned when a record lacks a requested attribute
var ErrAttributeNotFound = errors.New("ntfs: attribute not found")

// IOError wraps a failure reported by a ByteSource. The source error is kept verbatim.
type IOError struct {
	Offset uint64
	Length uint32
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("ntfs: read %d bytes at offset %d: %v", e.Length, e.Offset, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsSkippable reports whether err describes a single unusable record that a
// full-volume scan should step over rather than abort on.
func IsSkippable(err error) bool {
	var fe *FormatError
	if !errors.As(err, &fe) {
		return false
	}
	switch fe.Kind {
	case KindCorrupt, KindBadFixup, KindBadMagic, KindSparse, KindTruncated, KindInvalidRunHeader:
		return true
	}
	return false
}
