package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Encoder/decoder pools: zstd contexts are expensive to build and safe to
// reuse sequentially.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Zstd compresses blobs with Zstandard at the default level. It gets the
// better ratio on the repetitive field names of encoded rows and is the
// compressor to reach for first.
type Zstd struct{}

// Compress frames data compressed with zstd, or raw if that is smaller.
func (Zstd) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	if err := checkFrameable(data); err != nil {
		return nil, err
	}

	enc := getZstdEncoder()
	compressed := enc.EncodeAll(data, nil)
	putZstdEncoder(enc)

	return frame(data, compressed), nil
}

// Decompress reverses Compress.
func (Zstd) Decompress(data []byte) ([]byte, error) {
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

	dec := getZstdDecoder()
	defer putZstdDecoder(dec)

	decoded, err := dec.DecodeAll(payload, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if uint32(len(decoded)) != size {
		return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
	}
	return decoded, nil
}

// Name returns the unique name of the compressor ("zstd").
func (Zstd) Name() string { return "zstd" }
