package compress

import (
	"fmt"
	"time"

	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/format"
)

// Compressor compresses event payloads before they are placed into an envelope.
//
// Payloads are already-serialized event records (JSON or binary), typically a few
// hundred bytes to a few kilobytes, produced at high frequency.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	//   - Internal encoders may be pooled and reused
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// Thread Safety: Decompressor implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original bytes.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns error if data was compressed with an incompatible algorithm
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// SizedDecompressor is implemented by codecs that can use the expected original
// size to allocate the output buffer exactly once.
type SizedDecompressor interface {
	// DecompressSized decompresses data into a buffer sized by sizeHint.
	// A non-positive sizeHint falls back to Decompress.
	DecompressSized(data []byte, sizeHint int) ([]byte, error)
}

// CompressionStats describes a single compress/decompress measurement.
//
// It is the raw material for trial results: producers measure several candidate
// codecs, pick one, and report what they saw to the statistics aggregator.
type CompressionStats struct {
	// Codec identifies the codec that was measured.
	Codec format.CompressionCodec

	// OriginalSize is the size of input data before compression.
	OriginalSize int64

	// CompressedSize is the size of data after compression.
	CompressedSize int64

	// CompressionTime is the time taken to compress the data.
	CompressionTime time.Duration

	// DecompressionTime is the time taken to decompress the data (zero if not measured).
	DecompressionTime time.Duration
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
// Values equal to 1.0 indicate no compression benefit.
// Values greater than 1.0 indicate compression overhead (common for small event payloads).
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
//
// Negative values mean the codec made the payload larger.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec is a factory function that creates a new Codec for the specified codec variant.
//
// Parameters:
//   - codec: Codec variant (None, LZ4Fast, LZ4High, Zstd*, S2)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Codec instance for the specified variant
//   - error: ErrUnknownCodec for variants outside the catalog
func CreateCodec(codec format.CompressionCodec, target string) (Codec, error) {
	switch codec {
	case format.CodecNone:
		return NewNoOpCompressor(), nil
	case format.CodecLZ4Fast:
		return NewLZ4Compressor(), nil
	case format.CodecLZ4High:
		return NewLZ4HighCompressor(), nil
	case format.CodecZstdFast, format.CodecZstdMedium, format.CodecZstdHigh, format.CodecZstdMax:
		level, _ := codec.ZstdLevel()
		return NewZstdCompressorLevel(level), nil
	case format.CodecS2:
		return NewS2Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression %s: %w", target, codec, errs.ErrUnknownCodec)
	}
}

var builtinCodecs = map[format.CompressionCodec]Codec{
	format.CodecNone:       NewNoOpCompressor(),
	format.CodecLZ4Fast:    NewLZ4Compressor(),
	format.CodecLZ4High:    NewLZ4HighCompressor(),
	format.CodecZstdFast:   NewZstdCompressorLevel(format.ZstdLevelFast),
	format.CodecZstdMedium: NewZstdCompressorLevel(format.ZstdLevelMedium),
	format.CodecZstdHigh:   NewZstdCompressorLevel(format.ZstdLevelHigh),
	format.CodecZstdMax:    NewZstdCompressorLevel(format.ZstdLevelMax),
	format.CodecS2:         NewS2Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified codec variant.
func GetCodec(codec format.CompressionCodec) (Codec, error) {
	if c, ok := builtinCodecs[codec]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("unsupported compression codec %s: %w", codec, errs.ErrUnknownCodec)
}

// Compress applies codec to data.
//
// CodecNone is the identity transform. Any failure of the underlying algorithm is
// reported as errs.ErrCodecFailure so callers can fall back to the raw bytes.
func Compress(data []byte, codec format.CompressionCodec) ([]byte, error) {
	if codec == format.CodecNone {
		return data, nil
	}

	c, err := GetCodec(codec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCodecFailure, err)
	}

	out, err := c.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrCodecFailure, codec, err)
	}

	return out, nil
}

// Decompress reverses Compress.
//
// sizeHint is the expected original size; when positive the output must match it
// exactly. Every failure is reported as errs.ErrCorruptEnvelope because the original
// bytes cannot be reconstructed any other way.
func Decompress(data []byte, codec format.CompressionCodec, sizeHint int) ([]byte, error) {
	var (
		out []byte
		err error
	)

	if codec == format.CodecNone {
		out = data
	} else {
		var c Codec
		c, err = GetCodec(codec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrCorruptEnvelope, err)
		}

		if sd, ok := c.(SizedDecompressor); ok {
			out, err = sd.DecompressSized(data, sizeHint)
		} else {
			out, err = c.Decompress(data)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errs.ErrCorruptEnvelope, codec, err)
		}
	}

	if sizeHint > 0 && len(out) != sizeHint {
		return nil, fmt.Errorf("%w: %s produced %d bytes, expected %d",
			errs.ErrCorruptEnvelope, codec, len(out), sizeHint)
	}

	return out, nil
}
