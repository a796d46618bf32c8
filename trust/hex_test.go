package trust

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeHex(t *testing.T) {
	for _, tt := range []struct {
		name string
		bin  []byte
		hex  string
	}{
		{"empty", []byte{}, ""},
		{"zero", []byte{0x00}, "00"},
		{"all nibbles", []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}, "0123456789abcdef"},
		{"high bytes", []byte{0xff, 0xf0, 0x0f}, "fff00f"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hex, EncodeHex(tt.bin))
		})
	}
}

func TestEncodeHexBufCapacity(t *testing.T) {
	dst := make([]byte, 3)
	_, err := EncodeHexBuf(dst, []byte{0x01, 0x02})
	assert.Error(t, err)

	dst = make([]byte, 4)
	n, err := EncodeHexBuf(dst, []byte{0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "0102", string(dst))
}

func TestDecodeHex(t *testing.T) {
	for _, tt := range []struct {
		name string
		hex  string
		bin  []byte
	}{
		{"empty", "", []byte{}},
		{"lowercase", "deadbeef", []byte{0xde, 0xad, 0xbe, 0xef}},
		{"uppercase", "DEADBEEF", []byte{0xde, 0xad, 0xbe, 0xef}},
		{"mixed case", "DeAdBeEf", []byte{0xde, 0xad, 0xbe, 0xef}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			bin, err := DecodeHex(tt.hex)
			require.NoError(t, err)
			assert.Equal(t, tt.bin, bin)
		})
	}
}

func TestDecodeHexErrors(t *testing.T) {
	// odd number of nibbles
	_, err := DecodeHex("abc")
	assert.Error(t, err)

	// non-hex character
	_, err = DecodeHex("zz")
	assert.Error(t, err)

	// trailing content after valid bytes
	_, err = DecodeHex("abcdg")
	assert.Error(t, err)

	// output capacity exhausted
	dst := make([]byte, 1)
	_, err = DecodeHexBuf(dst, "abcd", "")
	assert.Error(t, err)
}

func TestDecodeHexIgnore(t *testing.T) {
	// separators are skippable between byte boundaries
	dst := make([]byte, 4)
	n, err := DecodeHexBuf(dst, "de:ad be:ef", ": ")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, dst[:n])

	// but never between the two nibbles of one byte
	_, _, err = DecodeHexPartial(dst, "d:e", ":")
	assert.Error(t, err)
}

func TestDecodeHexPartial(t *testing.T) {
	dst := make([]byte, 4)
	n, end, err := DecodeHexPartial(dst, "beef,trailer", "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 4, end)
	assert.Equal(t, []byte{0xbe, 0xef}, dst[:n])
}

func TestHexRoundTrip(t *testing.T) {
	// bin -> hex -> bin is the identity
	bufs := [][]byte{
		{},
		{0x00},
		{0x00, 0xff, 0x7f, 0x80},
		bytes.Repeat([]byte{0xa5}, 64),
	}
	for _, bin := range bufs {
		out, err := DecodeHex(EncodeHex(bin))
		require.NoError(t, err)
		assert.Equal(t, bin, out)
	}

	// hex -> bin -> hex lowercases
	in := "0123456789ABCDEFabcdef"
	bin, err := DecodeHex(in)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(in), EncodeHex(bin))
}
