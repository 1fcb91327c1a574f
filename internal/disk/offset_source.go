package disk

import (
	"fmt"

	"github.com/deploymenttheory/go-ntfs/internal/interfaces"
)

// OffsetSource exposes a partition inside a larger source, so volume offsets start at zero
type OffsetSource struct {
	src    interfaces.ByteSource
	offset uint64
	size   uint64
}

// NewOffsetSource returns a view of src starting at offset and spanning size bytes.
// A size of zero leaves the end unbounded.
func NewOffsetSource(src interfaces.ByteSource, offset, size uint64) *OffsetSource {
	return &OffsetSource{src: src, offset: offset, size: size}
}

// ReadAt reads length bytes at the partition-relative offset
func (s *OffsetSource) ReadAt(offset uint64, length uint32) ([]byte, error) {
	if s.size != 0 && offset+uint64(length) > s.size {
		return nil, fmt.Errorf("read of %d bytes at %d past end of %d-byte partition: %w",
			length, offset, s.size, errShortRead)
	}
	return s.src.ReadAt(s.offset+offset, length)
}

// Size returns the partition size, or zero when unbounded
func (s *OffsetSource) Size() uint64 {
	return s.size
}

// Offset returns the partition start within the underlying source
func (s *OffsetSource) Offset() uint64 {
	return s.offset
}
