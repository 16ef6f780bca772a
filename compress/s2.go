package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

type S2Compressor struct{}

var (
	_ Codec             = (*S2Compressor)(nil)
	_ SizedDecompressor = (*S2Compressor)(nil)
)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses the input data using S2 decompression.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}

// DecompressSized validates the encoded length against sizeHint before decoding.
func (c S2Compressor) DecompressSized(data []byte, sizeHint int) ([]byte, error) {
	if sizeHint <= 0 || len(data) == 0 {
		return c.Decompress(data)
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, err
	}
	if n != sizeHint {
		return nil, fmt.Errorf("s2 decoded length %d does not match expected %d", n, sizeHint)
	}

	return s2.Decode(make([]byte, n), data)
}
