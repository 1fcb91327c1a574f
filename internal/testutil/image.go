package testutil

import (
	"fmt"
	"sync/atomic"
)

// Image is an in-memory volume that satisfies interfaces.SizedByteSource.
type Image struct {
	data  []byte
	reads atomic.Int64
}

// NewImage returns a zero-filled image of size bytes
func NewImage(size int) *Image {
	return &Image{data: make([]byte, size)}
}

// WriteAt copies b into the image at offset
func (m *Image) WriteAt(offset uint64, b []byte) {
	copy(m.data[offset:], b)
}

// WriteCluster copies b into the image at cluster lcn
func (m *Image) WriteCluster(lcn uint64, clusterSize uint32, b []byte) {
	m.WriteAt(lcn*uint64(clusterSize), b)
}

// ReadAt returns a copy of length bytes at offset
func (m *Image) ReadAt(offset uint64, length uint32) ([]byte, error) {
	m.reads.Add(1)
	end := offset + uint64(length)
	if end > uint64(len(m.data)) || end < offset {
		return nil, fmt.Errorf("read of %d bytes at %d past end of %d-byte image", length, offset, len(m.data))
	}
	out := make([]byte, length)
	copy(out, m.data[offset:end])
	return out, nil
}

// Size returns the image size in bytes
func (m *Image) Size() uint64 {
	return uint64(len(m.data))
}

// Bytes returns the underlying image buffer
func (m *Image) Bytes() []byte {
	return m.data
}

// Reads returns the number of ReadAt calls made so far
func (m *Image) Reads() int64 {
	return m.reads.Load()
}
