package disk

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// errShortRead is returned when a source ends before the requested range
var errShortRead = errors.New("short read")

// FileSource reads volume bytes from an image file or block device
type FileSource struct {
	file *os.File
	size uint64
}

// OpenFile opens path read-only as a FileSource
func OpenFile(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to determine image size: %w", err)
	}

	return &FileSource{file: file, size: uint64(size)}, nil
}

// ReadAt returns exactly length bytes at offset
func (s *FileSource) ReadAt(offset uint64, length uint32) ([]byte, error) {
	return readFull(s.file, offset, length)
}

// Size returns the image size in bytes
func (s *FileSource) Size() uint64 {
	return s.size
}

// Close closes the underlying file
func (s *FileSource) Close() error {
	return s.file.Close()
}

// MmapSource reads volume bytes from a memory-mapped image file
type MmapSource struct {
	r *mmap.ReaderAt
}

// OpenMmap maps path read-only as an MmapSource
func OpenMmap(path string) (*MmapSource, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to map image: %w", err)
	}
	return &MmapSource{r: r}, nil
}

// ReadAt returns exactly length bytes at offset
func (s *MmapSource) ReadAt(offset uint64, length uint32) ([]byte, error) {
	return readFull(s.r, offset, length)
}

// Size returns the mapped length in bytes
func (s *MmapSource) Size() uint64 {
	return uint64(s.r.Len())
}

// Close unmaps the image
func (s *MmapSource) Close() error {
	return s.r.Close()
}

// ReaderAtSource adapts any io.ReaderAt of known size
type ReaderAtSource struct {
	r    io.ReaderAt
	size uint64
}

// NewReaderAtSource wraps r, which holds size readable bytes
func NewReaderAtSource(r io.ReaderAt, size uint64) *ReaderAtSource {
	return &ReaderAtSource{r: r, size: size}
}

// ReadAt returns exactly length bytes at offset
func (s *ReaderAtSource) ReadAt(offset uint64, length uint32) ([]byte, error) {
	if offset+uint64(length) > s.size {
		return nil, fmt.Errorf("read of %d bytes at %d past end of %d-byte source: %w",
			length, offset, s.size, errShortRead)
	}
	return readFull(s.r, offset, length)
}

// Size returns the readable length in bytes
func (s *ReaderAtSource) Size() uint64 {
	return s.size
}

// readFull reads exactly length bytes. An io.EOF at the exact end of the range is
// accepted, as io.ReaderAt allows.
func readFull(r io.ReaderAt, offset uint64, length uint32) ([]byte, error) {
	if offset > uint64(1<<63-1) {
		return nil, fmt.Errorf("offset %d out of range", offset)
	}

	buf := make([]byte, length)
	n, err := r.ReadAt(buf, int64(offset))
	if n == len(buf) {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = errShortRead
	}
	return nil, fmt.Errorf("read %d of %d bytes at offset %d: %w", n, length, offset, err)
}
