//go:build !cgo || !gozstd

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation overhead.
// The klauspost/compress/zstd decoder operates without allocations after a warmup.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPools holds one encoder pool per klauspost speed level.
// Several Zstandard levels collapse onto the same speed level.
var zstdEncoderPools = func() map[zstd.EncoderLevel]*sync.Pool {
	levels := []zstd.EncoderLevel{
		zstd.SpeedFastest,
		zstd.SpeedDefault,
		zstd.SpeedBetterCompression,
		zstd.SpeedBestCompression,
	}

	pools := make(map[zstd.EncoderLevel]*sync.Pool, len(levels))
	for _, lvl := range levels {
		pools[lvl] = &sync.Pool{
			New: func() any {
				encoder, err := zstd.NewWriter(nil,
					zstd.WithEncoderLevel(lvl),
					zstd.WithEncoderCRC(false),
					zstd.WithEncoderConcurrency(1),
				)
				if err != nil {
					panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
				}

				return encoder
			},
		}
	}

	return pools
}()

func zstdEncoderPool(level int) *sync.Pool {
	return zstdEncoderPools[zstd.EncoderLevelFromZstd(level)]
}

// Compress compresses the input data using Zstandard compression.
// Uses a pooled encoder for the configured level.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	pool := zstdEncoderPool(c.level)
	encoder, _ := pool.Get().(*zstd.Encoder)
	defer pool.Put(encoder)

	// EncodeAll is stateless - safe to use with pooled encoder
	return encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses Zstd-compressed data.
//
// This method validates the input data format and returns an error if the
// data is corrupted or was not compressed with Zstd.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	return c.DecompressSized(data, 0)
}

// DecompressSized decompresses into a buffer pre-sized by sizeHint.
func (c ZstdCompressor) DecompressSized(data []byte, sizeHint int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	var dst []byte
	if sizeHint > 0 {
		dst = make([]byte, 0, min(sizeHint, zstdMaxPrealloc))
	}

	// Even if this call fails, the decoder can be reused for next call
	decompressed, err := decoder.DecodeAll(data, dst)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
