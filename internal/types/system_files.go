package types

// Reserved MFT record numbers for the NTFS metadata files.
const (
	RecordMFT       uint64 = 0
	RecordMFTMirr   uint64 = 1
	RecordLogFile   uint64 = 2
	RecordVolume    uint64 = 3
	RecordAttrDef   uint64 = 4
	RecordRoot      uint64 = 5
	RecordBitmap    uint64 = 6
	RecordBoot      uint64 = 7
	RecordBadClus   uint64 = 8
	RecordSecure    uint64 = 9
	RecordUpCase    uint64 = 10
	RecordExtend    uint64 = 11
	FirstUserRecord uint64 = 24
)

var systemFileNames = map[uint64]string{
	RecordMFT:     "$MFT",
	RecordMFTMirr: "$MFTMirr",
	RecordLogFile: "$LogFile",
	RecordVolume:  "$Volume",
	RecordAttrDef: "$AttrDef",
	RecordRoot:    ".",
	RecordBitmap:  "$Bitmap",
	RecordBoot:    "$Boot",
	RecordBadClus: "$BadClus",
	RecordSecure:  "$Secure",
	RecordUpCase:  "$UpCase",
	RecordExtend:  "$Extend",
}

// SystemFileName returns the metadata file name for a reserved record number
func SystemFileName(record uint64) (string, bool) {
	name, ok := systemFileNames[record]
	return name, ok
}
