// Package compress shrinks table blobs before they reach storage.
//
// Every compressor emits the same frame:
//
//	[UncompressedSize uint32][CompressedSize uint32][Payload...]
//
// both sizes little-endian. CompressedSize == 0 means the payload is stored
// raw; compressors fall back to raw storage when compression gains less than
// 10%, so pathological inputs never grow by more than the 8-byte header. The
// uint32 sizes cap a single blob at 4GiB, far beyond what a whole-blob
// rewrite-per-operation store is sensible for.
package compress

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrCorrupt is returned when a frame is truncated or its payload does not
// decompress to the promised size.
var ErrCorrupt = errors.New("corrupt compressed blob")

const frameHeaderSize = 8

// Compressor compresses and decompresses whole table blobs.
// Implementations must be safe for concurrent use.
type Compressor interface {
	// Compress frames data, compressed or raw, whichever is smaller.
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress. It returns ErrCorrupt for truncated or
	// tampered frames.
	Decompress(data []byte) ([]byte, error)

	// Name returns the unique name of the compressor.
	Name() string
}

// ByName returns a built-in compressor by its stable name.
func ByName(name string) (Compressor, bool) {
	switch name {
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

func checkFrameable(data []byte) error {
	if int64(len(data)) > math.MaxUint32 {
		return errors.New("compress: blob exceeds 4GiB frame limit")
	}
	return nil
}

// frame prepends the header, storing the payload raw when compression gained
// less than 10% or produced nothing.
func frame(raw, compressed []byte) []byte {
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(raw))*0.9 {
		result := make([]byte, frameHeaderSize+len(raw))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(raw)))
		binary.LittleEndian.PutUint32(result[4:], 0) // 0 = stored raw
		copy(result[frameHeaderSize:], raw)
		return result
	}
	result := make([]byte, frameHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(raw)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[frameHeaderSize:], compressed)
	return result
}

// unframe validates the header and returns the payload. stored reports that
// the payload is raw data rather than compressed.
func unframe(data []byte) (payload []byte, uncompressedSize uint32, stored bool, err error) {
	if len(data) < frameHeaderSize {
		return nil, 0, false, ErrCorrupt
	}
	uncompressedSize = binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if compressedSize == 0 {
		if uint64(len(data)) < frameHeaderSize+uint64(uncompressedSize) {
			return nil, 0, false, ErrCorrupt
		}
		return data[frameHeaderSize : frameHeaderSize+int(uncompressedSize)], uncompressedSize, true, nil
	}

	if uint64(len(data)) < frameHeaderSize+uint64(compressedSize) {
		return nil, 0, false, ErrCorrupt
	}
	return data[frameHeaderSize : frameHeaderSize+int(compressedSize)], uncompressedSize, false, nil
}
