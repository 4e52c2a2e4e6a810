package codec

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func repeatedAlphabet(n int) []byte {
	var b strings.Builder
	for b.Len() < n {
		for c := 'A'; c <= 'Z'; c++ {
			b.WriteString(strings.Repeat(string(c), 3))
		}
	}
	return []byte(b.String()[:n])
}

func TestCompressRoundTripAllKinds(t *testing.T) {
	var input = repeatedAlphabet(10000)

	for _, kind := range []Kind{RLE, GZIP, SNAPPY, ZSTD} {
		var framed, err = Compress(kind, input)
		require.NoError(t, err)

		require.Equal(t, magic, binary.BigEndian.Uint32(framed[0:4]))
		require.Equal(t, version, binary.BigEndian.Uint16(framed[4:6]))

		var out, derr = Decompress(framed)
		require.NoError(t, derr)
		require.True(t, bytes.Equal(input, out))
	}
}

func TestDecompressDoesNotNeedKindHint(t *testing.T) {
	var input = []byte("some data compressed with snappy")
	var framed, err = Compress(SNAPPY, input)
	require.NoError(t, err)

	var out, derr = Decompress(framed)
	require.NoError(t, derr)
	require.Equal(t, input, out)
}

func TestIsCompressed(t *testing.T) {
	var framed, err = Compress(RLE, []byte("x"))
	require.NoError(t, err)
	require.True(t, IsCompressed(framed))
	require.False(t, IsCompressed([]byte("plain text")))
}

func TestDecompressRejectsBadMagic(t *testing.T) {
	var _, err = Decompress([]byte("not a framed buffer at all"))
	require.Error(t, err)
}

func TestRLEEmptyInput(t *testing.T) {
	var framed, err = Compress(RLE, nil)
	require.NoError(t, err)
	var out, derr = Decompress(framed)
	require.NoError(t, derr)
	require.Empty(t, out)
}
