package services

import (
	"fmt"
	"io"

	"github.com/deploymenttheory/go-ntfs/internal/interfaces"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// AttributeDataReader reads the value of an attribute. It implements io.ReaderAt.
// Sparse runs and bytes at or past InitializedSize read as zero.
type AttributeDataReader struct {
	src         interfaces.ByteSource
	clusterSize uint32
	resident    []byte
	nonResident *types.NonResidentAttribute
	size        int64
}

// NewAttributeDataReader returns a reader over attr's value. Compressed
// non-resident attributes fail with types.ErrCompressed.
func NewAttributeDataReader(src interfaces.ByteSource, geometry types.VolumeGeometry, attr types.Attribute) (*AttributeDataReader, error) {
	switch a := attr.(type) {
	case *types.ResidentAttribute:
		return &AttributeDataReader{resident: a.Data, size: int64(len(a.Data))}, nil

	case *types.NonResidentAttribute:
		if a.Flags.IsCompressed() || a.CompressionUnit != 0 {
			return nil, fmt.Errorf("%s attribute %q: %w", a.Type, a.Name, types.ErrCompressed)
		}
		if a.InitializedSize > a.RealSize {
			return nil, types.NewFormatError(types.KindCorrupt,
				"initialized size %d exceeds real size %d", a.InitializedSize, a.RealSize)
		}
		return &AttributeDataReader{
			src:         src,
			clusterSize: geometry.ClusterSize(),
			nonResident: a,
			size:        int64(a.RealSize),
		}, nil
	}

	return nil, fmt.Errorf("unsupported attribute variant %T", attr)
}

// Size returns the logical size of the value
func (r *AttributeDataReader) Size() int64 {
	return r.size
}

// ReadAt implements io.ReaderAt
func (r *AttributeDataReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= r.size {
		return 0, io.EOF
	}

	n := len(p)
	if remaining := r.size - off; int64(n) > remaining {
		n = int(remaining)
	}

	if r.resident != nil || r.nonResident == nil {
		copy(p[:n], r.resident[off:])
	} else if err := r.readNonResident(p[:n], uint64(off)); err != nil {
		return 0, err
	}

	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *AttributeDataReader) readNonResident(p []byte, off uint64) error {
	initialized := r.nonResident.InitializedSize

	// Everything at or past the initialized size reads as zero.
	backed := uint64(0)
	if off < initialized {
		backed = min(uint64(len(p)), initialized-off)
	}
	clear(p[backed:])
	if backed == 0 {
		return nil
	}

	for pos := uint64(0); pos < backed; {
		chunk := min(backed-pos, maxExtentRead)
		if err := r.readMapped(p[pos:pos+chunk], off+pos); err != nil {
			return err
		}
		pos += chunk
	}
	return nil
}

// maxExtentRead bounds a single mapped read
const maxExtentRead = 64 << 20

// readMapped fills p from the run list starting at logical offset off
func (r *AttributeDataReader) readMapped(p []byte, off uint64) error {
	extents, err := mapExtents(r.nonResident.Runs, r.clusterSize, off, uint32(len(p)))
	if err != nil {
		return fmt.Errorf("failed to map %d bytes at %d: %w", len(p), off, err)
	}

	pos := 0
	for _, e := range extents {
		dst := p[pos : pos+int(e.length)]
		if e.sparse {
			clear(dst)
		} else {
			data, err := readAt(r.src, e.offset, e.length)
			if err != nil {
				return err
			}
			copy(dst, data)
		}
		pos += int(e.length)
	}
	return nil
}
