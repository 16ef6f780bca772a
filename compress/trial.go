package compress

import (
	"bytes"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/format"
)

// Measure compresses data with codec, decompresses the result, and reports sizes and timings.
//
// The round trip is verified; a codec that fails either direction or does not
// reproduce the input returns an error wrapping errs.ErrCodecFailure.
func Measure(data []byte, codec format.CompressionCodec) (CompressionStats, error) {
	stats := CompressionStats{
		Codec:        codec,
		OriginalSize: int64(len(data)),
	}

	start := time.Now()
	compressed, err := Compress(data, codec)
	stats.CompressionTime = time.Since(start)
	if err != nil {
		return stats, err
	}
	stats.CompressedSize = int64(len(compressed))

	start = time.Now()
	out, err := Decompress(compressed, codec, len(data))
	stats.DecompressionTime = time.Since(start)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", errs.ErrCodecFailure, err)
	}
	if !bytes.Equal(out, data) {
		return stats, fmt.Errorf("%w: %s did not reproduce its input", errs.ErrCodecFailure, codec)
	}

	return stats, nil
}

// Trial measures every candidate codec against data.
//
// Candidates are evaluated concurrently, bounded by GOMAXPROCS. Results keep the
// order of codecs; candidates that fail are omitted, so the result may be shorter
// than the input list.
func Trial(data []byte, codecs ...format.CompressionCodec) []CompressionStats {
	results := make([]CompressionStats, len(codecs))
	ok := make([]bool, len(codecs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, codec := range codecs {
		i, codec := i, codec
		g.Go(func() error {
			stats, err := Measure(data, codec)
			if err != nil {
				return nil //nolint:nilerr // a failed candidate is simply not a result
			}
			results[i] = stats
			ok[i] = true

			return nil
		})
	}
	_ = g.Wait()

	out := results[:0]
	for i := range results {
		if ok[i] {
			out = append(out, results[i])
		}
	}

	return out
}
