package compress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/format"
)

func TestMeasure(t *testing.T) {
	data := bytes.Repeat([]byte(`{"event":"RaydiumCpmmSwap","amount":12345}`), 40)

	stats, err := Measure(data, format.CodecZstdFast)
	require.NoError(t, err)
	require.Equal(t, format.CodecZstdFast, stats.Codec)
	require.Equal(t, int64(len(data)), stats.OriginalSize)
	require.Less(t, stats.CompressedSize, stats.OriginalSize)
	require.Greater(t, stats.SpaceSavings(), 0.0)
}

func TestMeasure_Failure(t *testing.T) {
	withBuiltinCodec(t, format.CodecS2, failingCodec{})

	_, err := Measure([]byte("payload"), format.CodecS2)
	require.ErrorIs(t, err, errs.ErrCodecFailure)
}

// lossyCodec decodes to bytes of the right length but the wrong content.
type lossyCodec struct{}

func (lossyCodec) Compress(data []byte) ([]byte, error) { return bytes.Clone(data), nil }
func (lossyCodec) Decompress(data []byte) ([]byte, error) {
	return bytes.Repeat([]byte{'?'}, len(data)), nil
}

func TestMeasure_ContentMismatch(t *testing.T) {
	withBuiltinCodec(t, format.CodecZstdMedium, lossyCodec{})

	stats, err := Measure([]byte("swap payload"), format.CodecZstdMedium)
	require.ErrorIs(t, err, errs.ErrCodecFailure)
	require.Contains(t, err.Error(), "did not reproduce its input")
	require.Equal(t, int64(len("swap payload")), stats.CompressedSize)

	require.Empty(t, Trial([]byte("swap payload"), format.CodecZstdMedium))
}

func TestMeasure_DecodeFailureIsCodecFailure(t *testing.T) {
	withBuiltinCodec(t, format.CodecS2, decodeFailingCodec{})

	_, err := Measure([]byte("payload"), format.CodecS2)
	require.ErrorIs(t, err, errs.ErrCodecFailure)
	require.ErrorIs(t, err, errs.ErrCorruptEnvelope)
}

// decodeFailingCodec compresses as identity and never decodes.
type decodeFailingCodec struct{}

func (decodeFailingCodec) Compress(data []byte) ([]byte, error) { return bytes.Clone(data), nil }
func (decodeFailingCodec) Decompress([]byte) ([]byte, error) {
	return nil, errors.New("bad frame")
}

func TestTrial_KeepsOrderAndSkipsFailures(t *testing.T) {
	withBuiltinCodec(t, format.CodecLZ4High, failingCodec{})
	data := bytes.Repeat([]byte("trial payload "), 100)

	candidates := []format.CompressionCodec{
		format.CodecNone,
		format.CodecLZ4Fast,
		format.CodecLZ4High,
		format.CodecZstdFast,
		format.CodecZstdMax,
		format.CodecS2,
	}

	results := Trial(data, candidates...)
	require.Len(t, results, len(candidates)-1)

	got := make([]format.CompressionCodec, 0, len(results))
	for _, r := range results {
		got = append(got, r.Codec)
		require.Equal(t, int64(len(data)), r.OriginalSize)
	}
	require.Equal(t, []format.CompressionCodec{
		format.CodecNone,
		format.CodecLZ4Fast,
		format.CodecZstdFast,
		format.CodecZstdMax,
		format.CodecS2,
	}, got)

	require.Equal(t, int64(len(data)), results[0].CompressedSize, "None keeps the original size")
}

func TestTrial_NoCandidates(t *testing.T) {
	require.Empty(t, Trial([]byte("x")))
}
