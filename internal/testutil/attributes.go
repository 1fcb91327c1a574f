package testutil

import (
	"encoding/binary"
	"time"

	"github.com/deploymenttheory/go-ntfs/internal/helpers"
	"github.com/deploymenttheory/go-ntfs/internal/parsers/runlist"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// ResidentAttr renders a resident attribute with an optional name
func ResidentAttr(attrType types.AttributeType, name string, id uint16, value []byte) []byte {
	nameBytes := mustUTF16(name)
	nameOffset := types.AttrResidentHeaderSize
	valueOffset := align8(nameOffset + len(nameBytes))
	length := align8(valueOffset + len(value))

	b := make([]byte, length)
	writeCommonHeader(b, attrType, false, nameBytes, nameOffset, id)
	le := binary.LittleEndian
	le.PutUint32(b[types.AttrValueLengthOffset:], uint32(len(value)))
	le.PutUint16(b[types.AttrValueOffsetOffset:], uint16(valueOffset))
	copy(b[nameOffset:], nameBytes)
	copy(b[valueOffset:], value)
	return b
}

// NonResidentSpec describes a non-resident attribute for NonResidentAttr.
type NonResidentSpec struct {
	Type            types.AttributeType
	Name            string
	ID              uint16
	Flags           types.AttributeFlags
	StartVCN        uint64
	Runs            []types.DataRun
	RealSize        uint64
	InitializedSize uint64
	// AllocatedSize defaults to the run clusters times ClusterSize.
	AllocatedSize uint64
	ClusterSize   uint64
}

// NonResidentAttr renders a non-resident attribute with an encoded run list
func NonResidentAttr(spec NonResidentSpec) []byte {
	runs, err := runlist.Encode(spec.Runs)
	if err != nil {
		panic(err)
	}

	nameBytes := mustUTF16(spec.Name)
	nameOffset := types.AttrNonResidentHeaderSize
	runOffset := align8(nameOffset + len(nameBytes))
	length := align8(runOffset + len(runs))

	clusters := runlist.TotalClusters(spec.Runs)
	allocated := spec.AllocatedSize
	if allocated == 0 {
		allocated = clusters * spec.ClusterSize
	}
	lastVCN := spec.StartVCN
	if clusters > 0 {
		lastVCN = spec.StartVCN + clusters - 1
	}

	b := make([]byte, length)
	writeCommonHeader(b, spec.Type, true, nameBytes, nameOffset, spec.ID)
	le := binary.LittleEndian
	le.PutUint16(b[types.AttrFlagsOffset:], uint16(spec.Flags))
	le.PutUint64(b[types.AttrStartVCNOffset:], spec.StartVCN)
	le.PutUint64(b[types.AttrLastVCNOffset:], lastVCN)
	le.PutUint16(b[types.AttrRunListOffsetOffset:], uint16(runOffset))
	le.PutUint64(b[types.AttrAllocatedSizeOffset:], allocated)
	le.PutUint64(b[types.AttrRealSizeOffset:], spec.RealSize)
	le.PutUint64(b[types.AttrInitializedSizeOffset:], spec.InitializedSize)
	copy(b[nameOffset:], nameBytes)
	copy(b[runOffset:], runs)
	return b
}

// StandardInformationValue renders a 48-byte $STANDARD_INFORMATION value
func StandardInformationValue(t time.Time, attrs types.FileAttributes) []byte {
	b := make([]byte, types.StandardInformationSizeNT)
	ft := helpers.TimeToFiletime(t)
	le := binary.LittleEndian
	for i := 0; i < 4; i++ {
		le.PutUint64(b[i*8:], ft)
	}
	le.PutUint32(b[0x20:], uint32(attrs))
	return b
}

// FileNameValue renders a $FILE_NAME value
func FileNameValue(parent types.FileReference, name string, ns types.FileNameNamespace, attrs types.FileAttributes) []byte {
	nameBytes := mustUTF16(name)
	b := make([]byte, types.FileNameHeaderSize+len(nameBytes))
	le := binary.LittleEndian
	le.PutUint64(b[0x00:], uint64(parent))
	le.PutUint32(b[0x38:], uint32(attrs))
	b[0x40] = byte(len(nameBytes) / 2)
	b[0x41] = byte(ns)
	copy(b[types.FileNameHeaderSize:], nameBytes)
	return b
}

func writeCommonHeader(b []byte, attrType types.AttributeType, nonResident bool, name []byte, nameOffset int, id uint16) {
	le := binary.LittleEndian
	le.PutUint32(b[types.AttrTypeOffset:], uint32(attrType))
	le.PutUint32(b[types.AttrLengthOffset:], uint32(len(b)))
	if nonResident {
		b[types.AttrNonResidentOffset] = 1
	}
	b[types.AttrNameLengthOffset] = byte(len(name) / 2)
	if len(name) > 0 {
		le.PutUint16(b[types.AttrNameOffsetOffset:], uint16(nameOffset))
	}
	le.PutUint16(b[types.AttrIDOffset:], id)
}

func mustUTF16(s string) []byte {
	if s == "" {
		return nil
	}
	b, err := helpers.EncodeUTF16LE(s)
	if err != nil {
		panic(err)
	}
	return b
}

func align8(n int) int {
	return (n + 7) &^ 7
}
