package helpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUTF16LE(t *testing.T) {
	got, err := DecodeUTF16LE([]byte{'$', 0, 'M', 0, 'F', 0, 'T', 0})
	require.NoError(t, err)
	assert.Equal(t, "$MFT", got)

	_, err = DecodeUTF16LE([]byte{'a', 0, 'b'})
	assert.Error(t, err)

	encoded, err := EncodeUTF16LE("résumé.txt")
	require.NoError(t, err)
	decoded, err := DecodeUTF16LE(encoded)
	require.NoError(t, err)
	assert.Equal(t, "résumé.txt", decoded)
}

func TestFiletime(t *testing.T) {
	assert.True(t, FiletimeToTime(0).IsZero())

	// 2000-01-01T00:00:00Z
	got := FiletimeToTime(125911584000000000)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), got)

	now := time.Date(2024, 3, 15, 12, 30, 45, 123456700, time.UTC)
	assert.Equal(t, now, FiletimeToTime(TimeToFiletime(now)))
}

func TestGUIDToUUIDRoundTrip(t *testing.T) {
	want := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	guid := []byte{0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}

	got, err := GUIDToUUID(guid)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, guid, UUIDToGUID(want))

	_, err = GUIDToUUID(guid[:8])
	assert.Error(t, err)
}
