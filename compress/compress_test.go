package compress

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func compressors() []Compressor {
	return []Compressor{Zstd{}, LZ4{}}
}

func TestCompressor_RoundTrip(t *testing.T) {
	// Encoded tables are highly repetitive, so mimic that shape.
	compressible := bytes.Repeat([]byte(`{"name":{"k":4,"s":"Ann"},"age":{"k":2,"i":30}},`), 100)

	incompressible := make([]byte, 4096)
	_, err := rand.Read(incompressible)
	require.NoError(t, err)

	inputs := map[string][]byte{
		"compressible":   compressible,
		"incompressible": incompressible,
		"tiny":           []byte("x"),
	}

	for _, c := range compressors() {
		for label, input := range inputs {
			t.Run(c.Name()+"/"+label, func(t *testing.T) {
				framed, err := c.Compress(input)
				require.NoError(t, err)

				got, err := c.Decompress(framed)
				require.NoError(t, err)
				require.Equal(t, input, got)
			})
		}
	}
}

func TestCompressor_CompressibleInputShrinks(t *testing.T) {
	input := bytes.Repeat([]byte(`{"dept":{"k":4,"s":"X"}},`), 200)
	for _, c := range compressors() {
		t.Run(c.Name(), func(t *testing.T) {
			framed, err := c.Compress(input)
			require.NoError(t, err)
			require.Less(t, len(framed), len(input))

			compressedSize := binary.LittleEndian.Uint32(framed[4:])
			require.NotZero(t, compressedSize, "repetitive input must actually be compressed")
		})
	}
}

func TestCompressor_IncompressibleInputStoredRaw(t *testing.T) {
	input := make([]byte, 4096)
	_, err := rand.Read(input)
	require.NoError(t, err)

	for _, c := range compressors() {
		t.Run(c.Name(), func(t *testing.T) {
			framed, err := c.Compress(input)
			require.NoError(t, err)

			// Raw storage costs exactly the 8-byte header.
			require.Len(t, framed, len(input)+8)
			compressedSize := binary.LittleEndian.Uint32(framed[4:])
			require.Zero(t, compressedSize)
		})
	}
}

func TestCompressor_EmptyBlob(t *testing.T) {
	for _, c := range compressors() {
		t.Run(c.Name(), func(t *testing.T) {
			framed, err := c.Compress(nil)
			require.NoError(t, err)
			require.Empty(t, framed)

			got, err := c.Decompress(framed)
			require.NoError(t, err)
			require.Empty(t, got)
		})
	}
}

func TestCompressor_CorruptFrames(t *testing.T) {
	input := bytes.Repeat([]byte("condense"), 512)
	for _, c := range compressors() {
		t.Run(c.Name(), func(t *testing.T) {
			framed, err := c.Compress(input)
			require.NoError(t, err)

			// Truncated header
			_, err = c.Decompress(framed[:4])
			require.ErrorIs(t, err, ErrCorrupt)

			// Truncated payload
			_, err = c.Decompress(framed[:len(framed)-3])
			require.ErrorIs(t, err, ErrCorrupt)

			// Header promises the wrong uncompressed size
			lying := bytes.Clone(framed)
			binary.LittleEndian.PutUint32(lying[0:], uint32(len(input))+1)
			_, err = c.Decompress(lying)
			require.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestByName(t *testing.T) {
	for _, c := range compressors() {
		got, ok := ByName(c.Name())
		require.True(t, ok)
		require.Equal(t, c.Name(), got.Name())
	}
	_, ok := ByName("gzip")
	require.False(t, ok)
}
