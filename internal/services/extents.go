package services

import (
	"io"
	"math"
	"math/bits"

	"github.com/deploymenttheory/go-ntfs/internal/interfaces"
	"github.com/deploymenttheory/go-ntfs/internal/parsers/runlist"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// extent is a contiguous piece of a logical byte range
type extent struct {
	// Volume byte offset; unused when sparse.
	offset uint64
	length uint32
	sparse bool
}

// mapExtents splits the logical range [logical, logical+length) of a run-list
// described stream into volume extents, one per run touched
func mapExtents(runs []types.DataRun, clusterSize uint32, logical uint64, length uint32) ([]extent, error) {
	if clusterSize == 0 {
		return nil, types.NewFormatError(types.KindInvalidBootSector, "cluster size is zero")
	}
	cs := uint64(clusterSize)
	var out []extent
	for left := uint64(length); left > 0; {
		m, err := runlist.Resolve(runs, logical/cs)
		if err != nil {
			return nil, err
		}
		within := logical % cs
		// A run longer than the byte address space saturates.
		hi, span := bits.Mul64(m.Remaining, cs)
		if hi != 0 {
			span = math.MaxUint64
		}
		n := min(span-within, left)
		if n == 0 {
			return nil, types.NewFormatError(types.KindOutOfRange,
				"run at VCN %d maps no bytes", logical/cs)
		}
		e := extent{length: uint32(n), sparse: m.Sparse}
		if !m.Sparse {
			hi, base := bits.Mul64(m.LCN, cs)
			if hi != 0 || base+within < base {
				return nil, types.NewFormatError(types.KindOutOfRange,
					"LCN %d lies past the addressable volume", m.LCN)
			}
			e.offset = base + within
		}
		out = append(out, e)
		logical += n
		left -= n
	}
	return out, nil
}

// readAt reads from src, wrapping any failure in a *types.IOError
func readAt(src interfaces.ByteSource, offset uint64, length uint32) ([]byte, error) {
	data, err := src.ReadAt(offset, length)
	if err != nil {
		return nil, &types.IOError{Offset: offset, Length: length, Err: err}
	}
	if len(data) != int(length) {
		return nil, &types.IOError{Offset: offset, Length: length, Err: io.ErrUnexpectedEOF}
	}
	return data, nil
}
