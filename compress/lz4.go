package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/fzstream/fzstream/errs"
)

// lz4MaxExpansion bounds the decompressed/compressed size ratio of an LZ4 block.
const lz4MaxExpansion = 255

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains a hash table that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4HCCompressorPool pools high-compression compressors at the strongest level.
var lz4HCCompressorPool = sync.Pool{
	New: func() any {
		return &lz4.CompressorHC{Level: lz4.Level9}
	},
}

// LZ4Compressor implements the LZ4 block format.
//
// The same block format is produced in both modes, so either mode can decode
// the output of the other; high mode only spends more CPU to find better matches.
type LZ4Compressor struct {
	high bool
}

var (
	_ Codec             = (*LZ4Compressor)(nil)
	_ SizedDecompressor = (*LZ4Compressor)(nil)
)

// NewLZ4Compressor creates a new LZ4 compressor in fast mode.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// NewLZ4HighCompressor creates a new LZ4 compressor in high-compression mode.
func NewLZ4HighCompressor() LZ4Compressor {
	return LZ4Compressor{high: true}
}

// IsHighCompression reports whether the compressor runs in high-compression mode.
func (c LZ4Compressor) IsHighCompression() bool {
	return c.high
}

// Compress compresses the input data using LZ4 block compression.
//
// Uses a pooled lz4.Compressor (or lz4.CompressorHC in high mode).
//
// Returns:
//   - []byte: Compressed data (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	var (
		n   int
		err error
	)
	if c.high {
		hc, _ := lz4HCCompressorPool.Get().(*lz4.CompressorHC)
		defer lz4HCCompressorPool.Put(hc)
		n, err = hc.CompressBlock(data, dst)
	} else {
		lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
		defer lz4CompressorPool.Put(lc)
		n, err = lc.CompressBlock(data, dst)
	}
	if err != nil {
		return nil, err
	}
	// lz4 reports incompressible input with n == 0
	if n == 0 {
		return nil, errs.ErrIncompressible
	}

	return dst[:n], nil
}

// Decompress decompresses the input data using LZ4 decompression.
//
// The LZ4 block format does not store the decompressed size, so this method uses
// an adaptive buffer sizing strategy:
//  1. Start with a buffer 4x the compressed size (common expansion ratio)
//  2. On ErrInvalidSourceShortBuffer, double the buffer size (up to maxSize)
//  3. Return error if buffer exceeds reasonable limits (prevents memory exhaustion)
//
// Returns:
//   - []byte: Decompressed data (nil if input is empty)
//   - error: ErrInvalidSourceShortBuffer if buffer exceeded 128MB limit, or other decompression errors
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 4
	const maxSize = 128 * 1024 * 1024 // 128MB safety limit

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}

// DecompressSized decompresses into a buffer of exactly sizeHint bytes.
//
// Envelopes always carry the original size, so the consumer path never needs the
// adaptive retry loop of Decompress.
func (c LZ4Compressor) DecompressSized(data []byte, sizeHint int) ([]byte, error) {
	if sizeHint <= 0 || len(data) == 0 {
		return c.Decompress(data)
	}

	if sizeHint/lz4MaxExpansion > len(data) {
		return nil, fmt.Errorf("lz4: size hint %d exceeds the bound for %d input bytes", sizeHint, len(data))
	}

	buf := make([]byte, sizeHint)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, err
	}

	return buf[:n], nil
}
