package testutil

import (
	"time"

	"github.com/deploymenttheory/go-ntfs/internal/parsers/runlist"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// Epoch is the timestamp written into fixture records.
var Epoch = time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

// Volume is an in-memory NTFS volume with a synthetic MFT.
type Volume struct {
	*Image

	Boot        BootSectorSpec
	ClusterSize uint32
	RecordSize  int
	MftRuns     []types.DataRun
}

// NewVolume writes a boot sector and an $MFT record 0 whose $DATA attribute
// describes mftRuns. The first run must start at boot.MftCluster.
func NewVolume(boot BootSectorSpec, mftRuns []types.DataRun) *Volume {
	clusterSize := uint32(boot.BytesPerSector) * uint32(boot.SectorsPerCluster)
	var recordSize int
	if boot.RecordSizeByte < 0 {
		recordSize = 1 << uint(-boot.RecordSizeByte)
	} else {
		recordSize = int(boot.RecordSizeByte) * int(clusterSize)
	}

	v := &Volume{
		Image:       NewImage(int(boot.TotalSectors) * int(boot.BytesPerSector)),
		Boot:        boot,
		ClusterSize: clusterSize,
		RecordSize:  recordSize,
		MftRuns:     mftRuns,
	}
	v.WriteAt(0, BootSector(boot))
	v.PutRecord(types.RecordMFT, v.mftRecord())
	return v
}

// DefaultVolume returns a 1 MiB volume with 4 KiB clusters and a contiguous
// 16-cluster MFT at cluster 4
func DefaultVolume() *Volume {
	boot := DefaultBootSector()
	return NewVolume(boot, []types.DataRun{{StartVCN: 0, Length: 16, LCN: int64(boot.MftCluster)}})
}

// MftSize returns the byte size of the $MFT data stream
func (v *Volume) MftSize() uint64 {
	return runlist.TotalClusters(v.MftRuns) * uint64(v.ClusterSize)
}

func (v *Volume) mftRecord() []byte {
	spec := InUseRecord(uint32(types.RecordMFT))
	spec.Size = v.RecordSize
	return Record(spec,
		ResidentAttr(types.AttributeStandardInformation, "", 0,
			StandardInformationValue(Epoch, types.FileAttributeHidden|types.FileAttributeSystem)),
		ResidentAttr(types.AttributeFileName, "", 1,
			FileNameValue(types.NewFileReference(types.RecordRoot, uint16(types.RecordRoot)), "$MFT", types.NamespaceWin32AndDOS, types.FileAttributeHidden)),
		NonResidentAttr(NonResidentSpec{
			Type:            types.AttributeData,
			ID:              2,
			Runs:            v.MftRuns,
			RealSize:        v.MftSize(),
			InitializedSize: v.MftSize(),
			ClusterSize:     uint64(v.ClusterSize),
		}),
	)
}

// PutRecord writes a rendered record at MFT position n, splitting it across runs
// when it straddles a run boundary
func (v *Volume) PutRecord(n uint64, rec []byte) {
	v.PutStream(v.MftRuns, n*uint64(v.RecordSize), rec)
}

// PutStream writes data at logical offset off of the stream described by runs
func (v *Volume) PutStream(runs []types.DataRun, off uint64, data []byte) {
	cs := uint64(v.ClusterSize)
	for len(data) > 0 {
		m, err := runlist.Resolve(runs, off/cs)
		if err != nil {
			panic(err)
		}
		within := off % cs
		n := min(m.Remaining*cs-within, uint64(len(data)))
		if !m.Sparse {
			v.WriteAt(m.LCN*cs+within, data[:n])
		}
		data = data[n:]
		off += n
	}
}

// FileSpec describes a file or directory record for FileRecord.
type FileSpec struct {
	Number    uint64
	Sequence  uint16
	Parent    types.FileReference
	Name      string
	Directory bool
	Unused    bool
	// Extra attributes appended after $STANDARD_INFORMATION and $FILE_NAME.
	Extra [][]byte
}

// FileRecord renders a record of the volume's record size for spec
func (v *Volume) FileRecord(spec FileSpec) []byte {
	rs := InUseRecord(uint32(spec.Number))
	rs.Size = v.RecordSize
	if spec.Sequence != 0 {
		rs.Sequence = spec.Sequence
	}
	if spec.Unused {
		rs.Flags = 0
	}

	var attrs types.FileAttributes = types.FileAttributeArchive
	if spec.Directory {
		rs.Flags |= types.RecordFlagDirectory
		attrs = types.FileAttributeDirectory
	}

	all := [][]byte{
		ResidentAttr(types.AttributeStandardInformation, "", 0, StandardInformationValue(Epoch, attrs)),
		ResidentAttr(types.AttributeFileName, "", 1, FileNameValue(spec.Parent, spec.Name, types.NamespaceWin32, attrs)),
	}
	return Record(rs, append(all, spec.Extra...)...)
}

// PutFile renders spec and writes it at its record number
func (v *Volume) PutFile(spec FileSpec) {
	v.PutRecord(spec.Number, v.FileRecord(spec))
}
