package types

// DataRun is one decoded entry of a non-resident attribute's run list.
type DataRun struct {
	// StartVCN is the first virtual cluster number of the attribute covered by this run.
	StartVCN uint64

	// Length is the run length in clusters.
	Length uint64

	// Offset is the signed LCN delta stored on disk, relative to the previous
	// non-sparse run. Zero and meaningless for sparse runs.
	Offset int64

	// LCN is the absolute logical cluster number of the first cluster. Zero for sparse runs.
	LCN int64

	// Sparse marks a run with no backing clusters (a hole of zeros).
	Sparse bool
}

// EndVCN returns the first VCN after this run
func (r DataRun) EndVCN() uint64 {
	return r.StartVCN + r.Length
}

// ContainsVCN reports whether vcn falls inside this run
func (r DataRun) ContainsVCN(vcn uint64) bool {
	return vcn >= r.StartVCN && vcn < r.EndVCN()
}
