package helpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiletimeToTime(t *testing.T) {
	tests := []struct {
		name     string
		filetime uint64
		expected time.Time
	}{
		{"zero", 0, time.Time{}},
		{"unix epoch", 116444736000000000, time.Unix(0, 0).UTC()},
		{"whole seconds", 132224078450000000, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"sub-second", 132224078450000001, time.Date(2020, 1, 2, 3, 4, 5, 100, time.UTC)},
		{"before 1970", 116444735990000000, time.Date(1969, 12, 31, 23, 59, 59, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FiletimeToTime(tc.filetime)
			assert.True(t, tc.expected.Equal(got), "got %v", got)
			assert.Equal(t, tc.filetime, TimeToFiletime(got))
		})
	}
}

func TestGUIDToUUID(t *testing.T) {
	guid := []byte{0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66, 0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

	u, err := GUIDToUUID(guid)
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff"), u)
	assert.Equal(t, guid, UUIDToGUID(u))

	_, err = GUIDToUUID(guid[:15])
	assert.Error(t, err)
}
