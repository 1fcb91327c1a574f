package disk

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-ntfs/internal/helpers"
	"github.com/deploymenttheory/go-ntfs/internal/interfaces"
	"github.com/deploymenttheory/go-ntfs/internal/types"
)

// Partition table layout
const (
	lbaSize = 512

	mbrPartitionTableOffset = 0x1BE
	mbrPartitionEntrySize   = 16
	mbrPartitionTypeOffset  = 4
	mbrPartitionLBAOffset   = 8
	mbrTypeNTFS             = 0x07

	gptHeaderOffset       = lbaSize
	gptSignature          = "EFI PART"
	gptEntriesLBAOffset   = 0x48
	gptEntryCountOffset   = 0x50
	gptEntrySizeOffset    = 0x54
	gptStartLBAOffset     = 32
	gptMaxEntriesExamined = 128
)

// BasicDataPartitionGUID is the GPT partition type used for NTFS volumes
var BasicDataPartitionGUID = uuid.MustParse("EBD0A0A2-B9E5-4433-87C0-68B6B72699C7")

// Detection methods reported by DetectPartition
const (
	MethodRaw        = "raw"
	MethodGPT        = "gpt"
	MethodMBR        = "mbr"
	MethodConfigured = "configured"
)

// DetectPartition finds the first NTFS volume in src. An unpartitioned volume is
// reported at offset 0; otherwise the GPT and then the MBR partition tables are
// searched for a partition whose first sector carries the NTFS OEM ID.
func DetectPartition(src interfaces.ByteSource) (uint64, string, error) {
	sector0, err := src.ReadAt(0, lbaSize)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read sector 0: %w", err)
	}
	if hasNTFSOEMID(sector0) {
		return 0, MethodRaw, nil
	}

	if offset, err := detectGPT(src); err == nil {
		return offset, MethodGPT, nil
	}

	if offset, err := detectMBR(src, sector0); err == nil {
		return offset, MethodMBR, nil
	}

	return 0, "", fmt.Errorf("no NTFS partition found")
}

func detectGPT(src interfaces.ByteSource) (uint64, error) {
	header, err := src.ReadAt(gptHeaderOffset, lbaSize)
	if err != nil {
		return 0, err
	}
	if string(header[:8]) != gptSignature {
		return 0, fmt.Errorf("no valid GPT signature found")
	}

	le := binary.LittleEndian
	entriesLBA := le.Uint64(header[gptEntriesLBAOffset:])
	count := le.Uint32(header[gptEntryCountOffset:])
	entrySize := le.Uint32(header[gptEntrySizeOffset:])
	if entrySize < 128 || count == 0 {
		return 0, fmt.Errorf("GPT declares %d entries of %d bytes", count, entrySize)
	}
	count = min(count, gptMaxEntriesExamined)

	entries, err := src.ReadAt(entriesLBA*lbaSize, count*entrySize)
	if err != nil {
		return 0, err
	}

	for i := uint32(0); i < count; i++ {
		entry := entries[i*entrySize : (i+1)*entrySize]
		partType, err := helpers.GUIDToUUID(entry[:16])
		if err != nil || partType != BasicDataPartitionGUID {
			continue
		}
		offset := le.Uint64(entry[gptStartLBAOffset:]) * lbaSize
		if isNTFSAt(src, offset) {
			return offset, nil
		}
	}
	return 0, fmt.Errorf("no NTFS partition found in GPT table")
}

func detectMBR(src interfaces.ByteSource, sector0 []byte) (uint64, error) {
	if binary.LittleEndian.Uint16(sector0[types.BootEndMarkerOffset:]) != types.BootSectorEndMarker {
		return 0, fmt.Errorf("no MBR signature")
	}

	for i := 0; i < 4; i++ {
		entry := sector0[mbrPartitionTableOffset+i*mbrPartitionEntrySize:]
		if entry[mbrPartitionTypeOffset] != mbrTypeNTFS {
			continue
		}
		offset := uint64(binary.LittleEndian.Uint32(entry[mbrPartitionLBAOffset:])) * lbaSize
		if isNTFSAt(src, offset) {
			return offset, nil
		}
	}
	return 0, fmt.Errorf("no NTFS partition found in MBR table")
}

func isNTFSAt(src interfaces.ByteSource, offset uint64) bool {
	sector, err := src.ReadAt(offset, lbaSize)
	return err == nil && hasNTFSOEMID(sector)
}

func hasNTFSOEMID(sector []byte) bool {
	return len(sector) >= types.BootOEMIDOffset+8 &&
		bytes.Equal(sector[types.BootOEMIDOffset:types.BootOEMIDOffset+8], []byte(types.NTFSOEMID))
}
