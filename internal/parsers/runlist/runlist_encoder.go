package runlist

import (
	"fmt"

	"github.com/deploymenttheory/go-ntfs/internal/helpers"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// Encode produces the on-disk run list for runs, terminated by a zero byte.
// Offsets are recomputed from each run's absolute LCN, so only Length, LCN and
// Sparse are read. Fields use the narrowest width that holds their value.
func Encode(runs []types.DataRun) ([]byte, error) {
	return encode(runs, 0)
}

// EncodeWidth is like Encode but pads length and offset fields to at least minWidth bytes.
func EncodeWidth(runs []types.DataRun, minWidth int) ([]byte, error) {
	if minWidth < 0 || minWidth > maxFieldWidth {
		return nil, fmt.Errorf("invalid field width %d", minWidth)
	}
	return encode(runs, minWidth)
}

func encode(runs []types.DataRun, minWidth int) ([]byte, error) {
	out := make([]byte, 0, len(runs)*4+1)
	var prev int64

	for i, r := range runs {
		if r.Length == 0 {
			return nil, fmt.Errorf("run %d has zero length", i)
		}

		lengthWidth := max(helpers.UintWidth(r.Length), minWidth)

		offsetWidth := 0
		var delta int64
		if !r.Sparse {
			if r.LCN < 0 {
				return nil, fmt.Errorf("run %d has negative LCN %d", i, r.LCN)
			}
			delta = r.LCN - prev
			offsetWidth = max(helpers.IntWidth(delta), minWidth)
			prev = r.LCN
		}

		entry := make([]byte, 1+lengthWidth+offsetWidth)
		entry[0] = byte(offsetWidth<<4 | lengthWidth)
		helpers.PutUint(entry[1:], r.Length, lengthWidth)
		if offsetWidth > 0 {
			helpers.PutUint(entry[1+lengthWidth:], uint64(delta), offsetWidth)
		}
		out = append(out, entry...)
	}

	return append(out, 0), nil
}
