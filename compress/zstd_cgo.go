//go:build cgo && gozstd

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"
)

// Compress compresses the input data using the cgo Zstandard backend.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, c.level), nil
}

// Decompress decompresses Zstd-compressed data using the cgo backend.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	return c.DecompressSized(data, 0)
}

// DecompressSized decompresses into a buffer pre-sized by sizeHint.
func (c ZstdCompressor) DecompressSized(data []byte, sizeHint int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var dst []byte
	if sizeHint > 0 {
		dst = make([]byte, 0, min(sizeHint, zstdMaxPrealloc))
	}

	decompressed, err := gozstd.Decompress(dst, data)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
