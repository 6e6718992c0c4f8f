package compress

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4 compresses blobs with LZ4 block compression: a worse ratio than Zstd
// but very cheap to decompress, which suits hot tables reloaded on every
// operation.
type LZ4 struct{}

// Compress frames data compressed with LZ4, or raw if that is smaller.
func (LZ4) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	if err := checkFrameable(data); err != nil {
		return nil, err
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}

	// n == 0 means incompressible; frame falls back to storing raw.
	return frame(data, compressed[:n]), nil
}

// Decompress reverses Compress.
func (LZ4) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	payload, size, stored, err := unframe(data)
	if err != nil {
		return nil, err
	}
	if stored {
		return payload, nil
	}

	result := make([]byte, size)
	n, err := lz4.UncompressBlock(payload, result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if uint32(n) != size {
		return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
	}
	return result[:n], nil
}

// Name returns the unique name of the compressor ("lz4").
func (LZ4) Name() string { return "lz4" }
