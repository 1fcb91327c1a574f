// Package runlist decodes and encodes the compressed run lists that locate the
// clusters of non-resident attribute data.
//
// Each entry starts with a header byte. The low nibble is the width in bytes of the
// unsigned run length that follows; the high nibble is the width of the signed LCN
// delta after it. A zero header byte ends the list. An entry with no offset field is a
// sparse run: it has no clusters on disk and does not move the running LCN.
package runlist

import (
	"math"

	"github.com/deploymenttheory/go-ntfs/internal/helpers"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// maxFieldWidth is the widest length or offset field an entry may declare.
const maxFieldWidth = 8

// MaxClusters bounds every VCN and LCN a run list may reach so that a cluster
// number times the largest cluster size still fits in a byte offset.
const MaxClusters = math.MaxUint64 / types.MaxClusterSize

// Decode decodes a run list into data runs with absolute LCNs.
// Decoding stops at the terminating zero header or at the end of data.
func Decode(data []byte) ([]types.DataRun, error) {
	runs := make([]types.DataRun, 0, 4)

	var (
		pos int
		lcn int64
		vcn uint64
	)

	for pos < len(data) {
		header := data[pos]
		if header == 0 {
			break
		}

		lengthWidth := int(header & 0x0F)
		offsetWidth := int(header >> 4)

		if lengthWidth > maxFieldWidth || offsetWidth > maxFieldWidth {
			return nil, types.NewFormatError(types.KindInvalidRunHeader,
				"header 0x%02X at offset %d declares a field wider than %d bytes", header, pos, maxFieldWidth)
		}
		if lengthWidth == 0 {
			return nil, types.NewFormatError(types.KindInvalidRunHeader,
				"header 0x%02X at offset %d has no length field", header, pos)
		}

		end := pos + 1 + lengthWidth + offsetWidth
		if end > len(data) {
			return nil, types.NewFormatError(types.KindTruncated,
				"run at offset %d needs %d bytes, %d remain", pos, end-pos, len(data)-pos)
		}

		length, err := helpers.Uint(data[pos+1:], lengthWidth)
		if err != nil {
			return nil, types.NewFormatError(types.KindTruncated, "run length at offset %d: %v", pos, err)
		}
		if length > MaxClusters-vcn {
			return nil, types.NewFormatError(types.KindInvalidRunHeader,
				"run at offset %d extends the list past %d clusters", pos, uint64(MaxClusters))
		}

		run := types.DataRun{
			StartVCN: vcn,
			Length:   length,
		}

		if offsetWidth == 0 {
			run.Sparse = true
		} else {
			delta, err := helpers.Int(data[pos+1+lengthWidth:], offsetWidth)
			if err != nil {
				return nil, types.NewFormatError(types.KindTruncated, "run offset at offset %d: %v", pos, err)
			}
			next, overflow := addLCN(lcn, delta)
			if overflow || next < 0 {
				return nil, types.NewFormatError(types.KindInvalidRunHeader,
					"run at offset %d moves the LCN below zero", pos)
			}
			if uint64(next) > MaxClusters-length {
				return nil, types.NewFormatError(types.KindInvalidRunHeader,
					"run at offset %d ends past LCN %d", pos, uint64(MaxClusters))
			}
			lcn = next
			run.Offset = delta
			run.LCN = lcn
		}

		runs = append(runs, run)
		vcn += length
		pos = end
	}

	return runs, nil
}

// addLCN adds a signed delta to the running LCN and reports int64 overflow
func addLCN(lcn, delta int64) (int64, bool) {
	sum := lcn + delta
	return sum, (delta > 0 && sum < lcn) || (delta < 0 && sum > lcn)
}

// TotalClusters returns the number of clusters covered by runs, sparse runs included
func TotalClusters(runs []types.DataRun) uint64 {
	var n uint64
	for _, r := range runs {
		n += r.Length
	}
	return n
}

// Mapping is the result of resolving a VCN through a run list.
type Mapping struct {
	// LCN is the absolute cluster holding the VCN; meaningless when Sparse is set.
	LCN uint64

	// Remaining is the number of clusters from the VCN to the end of its run.
	Remaining uint64

	// Sparse is set when the VCN falls inside a sparse run.
	Sparse bool
}

// Resolve maps a virtual cluster number to its logical cluster.
// It fails with KindOutOfRange when vcn lies past the last run.
func Resolve(runs []types.DataRun, vcn uint64) (Mapping, error) {
	for _, r := range runs {
		if !r.ContainsVCN(vcn) {
			continue
		}
		delta := vcn - r.StartVCN
		m := Mapping{Remaining: r.Length - delta, Sparse: r.Sparse}
		if !r.Sparse {
			m.LCN = uint64(r.LCN) + delta
		}
		return m, nil
	}
	return Mapping{}, types.NewFormatError(types.KindOutOfRange,
		"VCN %d is beyond the %d clusters of the run list", vcn, TotalClusters(runs))
}
