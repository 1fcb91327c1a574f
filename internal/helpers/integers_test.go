package helpers

import (
	"testing"

	"github.com/deploymenttheory/go-ntfs/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignExtend(t *testing.T) {
	tests := []struct {
		name     string
		value    uint64
		width    int
		expected int64
	}{
		{"zero width", 0xFF, 0, 0},
		{"positive one byte", 0x7F, 1, 127},
		{"negative one byte", 0xFF, 1, -1},
		{"negative one byte min", 0x80, 1, -128},
		{"positive two bytes", 0x7FFF, 2, 32767},
		{"negative two bytes", 0xFFFE, 2, -2},
		{"negative three bytes", 0xF00000, 3, -1048576},
		{"positive four bytes", 0x12345678, 4, 0x12345678},
		{"negative four bytes", 0xFFFFFFFF, 4, -1},
		{"full width", 0xFFFFFFFFFFFFFFFF, 8, -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SignExtend(tc.value, tc.width))
		})
	}
}

func TestIntRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 127, -128, 128, -129, 32767, -32768, 1 << 40, -(1 << 40)}
	for _, v := range values {
		width := IntWidth(v)
		buf := make([]byte, width)
		PutUint(buf, uint64(v), width)

		got, err := Int(buf, width)
		require.NoError(t, err)
		assert.Equal(t, v, got, "width %d", width)
	}
}

func TestUintErrors(t *testing.T) {
	_, err := Uint([]byte{1, 2}, 3)
	assert.Error(t, err)

	_, err = Uint(make([]byte, 16), 9)
	assert.Error(t, err)

	v, err := Uint([]byte{0x34, 0x12}, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1234), v)
}

func TestUintWidth(t *testing.T) {
	assert.Equal(t, 1, UintWidth(0))
	assert.Equal(t, 1, UintWidth(0xFF))
	assert.Equal(t, 2, UintWidth(0x100))
	assert.Equal(t, 8, UintWidth(1<<63))
}

func TestDecodeSizeUnit(t *testing.T) {
	t.Run("documented values", func(t *testing.T) {
		s, err := DecodeSizeUnit(0xF6)
		require.NoError(t, err)
		assert.Equal(t, types.Bytes(1024), s)

		s, err = DecodeSizeUnit(0x01)
		require.NoError(t, err)
		assert.Equal(t, types.Clusters(1), s)
	})

	t.Run("positive bytes are clusters", func(t *testing.T) {
		for b := 1; b <= 127; b++ {
			s, err := DecodeSizeUnit(byte(b))
			require.NoError(t, err)
			assert.Equal(t, types.Clusters(uint64(b)), s)
		}
	})

	t.Run("negative bytes are powers of two", func(t *testing.T) {
		for b := 129; b <= 255; b++ {
			k := -int(int8(byte(b)))
			s, err := DecodeSizeUnit(byte(b))
			if k > 63 {
				assert.Error(t, err, "byte 0x%02X", b)
				continue
			}
			require.NoError(t, err, "byte 0x%02X", b)
			assert.Equal(t, types.Bytes(uint64(1)<<uint(k)), s)
		}
	})

	t.Run("exponents up to 63 decode", func(t *testing.T) {
		s, err := DecodeSizeUnit(0xE0)
		require.NoError(t, err)
		assert.Equal(t, types.Bytes(1<<32), s)

		s, err = DecodeSizeUnit(0xC1)
		require.NoError(t, err)
		assert.Equal(t, types.Bytes(1<<63), s)

		_, err = DecodeSizeUnit(0xC0)
		assert.Error(t, err)
		_, err = DecodeSizeUnit(0x80)
		assert.Error(t, err)
	})

	t.Run("encode inverts decode", func(t *testing.T) {
		for _, b := range []byte{0x01, 0x02, 0x7F, 0xF6, 0xF4, 0xE1, 0xE0, 0xC1} {
			s, err := DecodeSizeUnit(b)
			require.NoError(t, err)
			back, err := EncodeSizeUnit(s)
			require.NoError(t, err)
			assert.Equal(t, b, back)
		}
	})
}
