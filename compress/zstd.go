package compress

import "github.com/fzstream/fzstream/format"

// zstdMaxPrealloc caps the output buffer reserved from a size hint. Larger
// outputs grow while decoding.
const zstdMaxPrealloc = 8 << 20

// ZstdCompressor provides Zstandard compression at a fixed level.
//
// The four Zstd codec variants map onto levels 1, 6, 15 and 22. Two backends exist:
// the default pure-Go backend (klauspost/compress/zstd) and a cgo backend
// (valyala/gozstd) selected with the "gozstd" build tag. Both produce standard
// Zstandard frames, so data compressed by one decodes with the other.
//
// Performance characteristics:
//   - Level 1: fastest, suited to the hot producer path
//   - Level 22: best ratio, only worth it for large, repetitive payloads
//   - Decompression speed is largely independent of the level
type ZstdCompressor struct {
	level int
}

var (
	_ Codec             = (*ZstdCompressor)(nil)
	_ SizedDecompressor = (*ZstdCompressor)(nil)
)

// NewZstdCompressor creates a new Zstd compressor at the medium level.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{level: format.ZstdLevelMedium}
}

// NewZstdCompressorLevel creates a new Zstd compressor at the given Zstandard level.
// Levels are clamped to the 1..22 range.
func NewZstdCompressorLevel(level int) ZstdCompressor {
	switch {
	case level < format.ZstdLevelFast:
		level = format.ZstdLevelFast
	case level > format.ZstdLevelMax:
		level = format.ZstdLevelMax
	}

	return ZstdCompressor{level: level}
}

// Level returns the Zstandard level used for compression.
func (c ZstdCompressor) Level() int {
	return c.level
}
