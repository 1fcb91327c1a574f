package helpers

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// filetimeEpochDelta is the number of 100ns intervals between 1601-01-01 and 1970-01-01.
const filetimeEpochDelta = 116444736000000000

// FiletimeToTime converts a Windows FILETIME (100ns intervals since 1601) to UTC.
// Zero stays the zero time.
func FiletimeToTime(ft uint64) time.Time {
	if ft == 0 {
		return time.Time{}
	}
	d := int64(ft) - filetimeEpochDelta
	return time.Unix(d/10000000, (d%10000000)*100).UTC()
}

// TimeToFiletime is the inverse of FiletimeToTime
func TimeToFiletime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.UnixNano()/100 + filetimeEpochDelta)
}

// GUIDToUUID converts a 16-byte Windows GUID, whose first three fields are stored
// little-endian, into an RFC 4122 ordered uuid.UUID.
func GUIDToUUID(b []byte) (uuid.UUID, error) {
	if len(b) < 16 {
		return uuid.UUID{}, fmt.Errorf("GUID needs 16 bytes, have %d", len(b))
	}
	var be [16]byte
	binary.BigEndian.PutUint32(be[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(be[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(be[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(be[8:16], b[8:16])
	return uuid.FromBytes(be[:])
}

// UUIDToGUID is the inverse of GUIDToUUID
func UUIDToGUID(u uuid.UUID) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(b[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(b[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(b[8:16], u[8:16])
	return b
}
