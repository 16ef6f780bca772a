package envelope

import (
	"bytes"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/event"
	"github.com/fzstream/fzstream/format"
)

var swapJSON = []byte(`{"pool":"58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2","amount_in":1000000,"amount_out":2000}`)

func compressiblePayload(size int) []byte {
	return bytes.Repeat(swapJSON, size/len(swapJSON)+1)[:size]
}

func randomPayload(t *testing.T, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)

	return data
}

func TestNew_CompressesWhenStrictlySmaller(t *testing.T) {
	raw := compressiblePayload(1000)

	env, err := New(event.Of(event.KindRaydiumCpmmSwap), raw, WithCompression(format.CodecZstdHigh))
	require.NoError(t, err)

	require.True(t, env.IsCompressed())
	require.Equal(t, format.CodecZstdHigh, env.Codec())
	size, ok := env.OriginalSize()
	require.True(t, ok)
	require.Equal(t, 1000, size)
	require.Less(t, len(env.Payload()), 1000)

	ratio, ok := env.CompressionRatio()
	require.True(t, ok)
	require.InDelta(t, float64(len(env.Payload()))/1000, ratio, 1e-9)

	out, err := env.DecompressedData()
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

func TestNew_StoresRawWhenCompressionDoesNotHelp(t *testing.T) {
	raw := randomPayload(t, 64)

	for _, codec := range format.AllCodecs {
		t.Run(codec.String(), func(t *testing.T) {
			env, err := New(event.Of(event.KindPumpFunTrade), raw, WithCompression(codec))
			require.NoError(t, err)

			require.False(t, env.IsCompressed())
			require.Equal(t, format.CodecNone, env.Codec(), "codec records what was applied")
			require.Equal(t, raw, env.Payload())
			_, ok := env.OriginalSize()
			require.False(t, ok)
			_, ok = env.CompressionRatio()
			require.False(t, ok)

			out, err := env.DecompressedData()
			require.NoError(t, err)
			require.Equal(t, raw, out)
		})
	}
}

func TestNew_NeverGrowsPayload(t *testing.T) {
	inputs := map[string][]byte{
		"empty":        {},
		"single_byte":  {0x42},
		"short_text":   []byte("swap"),
		"random_4k":    randomPayload(t, 4096),
		"json_1k":      compressiblePayload(1024),
		"zeros_64k":    make([]byte, 64*1024),
		"random_small": randomPayload(t, 17),
	}

	for name, raw := range inputs {
		for _, codec := range format.AllCodecs {
			t.Run(name+"/"+codec.String(), func(t *testing.T) {
				env, err := New(event.Custom("Probe"), raw, WithCompression(codec))
				require.NoError(t, err)
				require.LessOrEqual(t, len(env.Payload()), len(raw))

				if env.IsCompressed() {
					size, ok := env.OriginalSize()
					require.True(t, ok)
					require.Equal(t, len(raw), size)
					require.Less(t, len(env.Payload()), size)
				}

				out, err := env.DecompressedData()
				require.NoError(t, err)
				require.True(t, bytes.Equal(raw, out))
			})
		}
	}
}

func TestNew_CodecNoneAndMinSize(t *testing.T) {
	raw := compressiblePayload(512)

	env, err := New(event.Of(event.KindBonkTrade), raw, WithCompression(format.CodecNone))
	require.NoError(t, err)
	require.False(t, env.IsCompressed())
	require.Equal(t, raw, env.Payload())

	env, err = New(event.Of(event.KindBonkTrade), raw, WithMinCompressSize(1024))
	require.NoError(t, err)
	require.False(t, env.IsCompressed(), "payload below the threshold is not compressed")

	env, err = New(event.Of(event.KindBonkTrade), raw, WithMinCompressSize(512))
	require.NoError(t, err)
	require.True(t, env.IsCompressed())
	require.Equal(t, DefaultCodec, env.Codec())
}

func TestNew_Defaults(t *testing.T) {
	before := time.Now().UnixMicro()
	env, err := New(event.Of(event.KindBlockMeta), []byte("meta"))
	require.NoError(t, err)
	after := time.Now().UnixMicro()

	require.NotEmpty(t, env.ID())
	require.Equal(t, DefaultSerialization, env.Serialization())
	require.Equal(t, event.Of(event.KindBlockMeta), env.EventType())
	require.GreaterOrEqual(t, env.CreatedAt().UnixMicro(), before)
	require.LessOrEqual(t, env.CreatedAt().UnixMicro(), after)
	require.GreaterOrEqual(t, env.ArrivalTime(), before)
	require.LessOrEqual(t, env.CompletionTime(), after)

	other, err := New(event.Of(event.KindBlockMeta), []byte("meta"))
	require.NoError(t, err)
	require.NotEqual(t, env.ID(), other.ID())
}

func TestNew_CompletionCapturedAfterCompression(t *testing.T) {
	base := time.UnixMicro(1_700_000_000_000_000)
	const step = 750 * time.Microsecond
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * step)
	}

	env, err := New(event.Of(event.KindRaydiumClmmSwapV2), compressiblePayload(4096),
		WithCompression(format.CodecZstdMax),
		WithClock(clock),
	)
	require.NoError(t, err)
	require.True(t, env.IsCompressed())
	require.Equal(t, 2, calls)

	require.Equal(t, env.ArrivalTime(), env.ParsingTime())
	require.Greater(t, env.CompletionTime(), env.ParsingTime())
	require.Equal(t, step, env.ServerProcessingTime())
}

func TestNew_ExplicitCompletionSkipsClock(t *testing.T) {
	calls := 0
	clock := func() time.Time {
		calls++
		return time.UnixMicro(1_700_000_000_000_000)
	}

	env, err := New(event.Custom("x"), []byte("x"), WithCompletionTime(42), WithClock(clock))
	require.NoError(t, err)
	require.Equal(t, int64(42), env.CompletionTime())
	require.Equal(t, 1, calls)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(event.Custom("x"), nil, WithCompression(format.CompressionCodec(0)))
	require.ErrorIs(t, err, errs.ErrUnknownCodec)

	_, err = New(event.Custom("x"), nil, WithSerialization(format.SerializationFormat(42)))
	require.ErrorIs(t, err, errs.ErrUnknownSerialization)
}

func TestEnvelope_Timings(t *testing.T) {
	base := time.UnixMicro(1_700_000_000_000_000)
	env, err := New(event.Of(event.KindPumpSwapBuy), []byte("buy"),
		WithID("evt-1"),
		WithCreatedAt(base),
		WithTimestamps(base, base.Add(200*time.Microsecond), base.Add(1500*time.Microsecond)),
	)
	require.NoError(t, err)

	require.Equal(t, "evt-1", env.ID())
	require.Equal(t, base, env.CreatedAt())
	require.Equal(t, base.UnixMicro()+200, env.ParsingTime())
	require.Equal(t, 1500*time.Microsecond, env.ServerProcessingTime())

	_, ok := env.ClientProcessingTime()
	require.False(t, ok)
	_, ok = env.EndToEndLatency()
	require.False(t, ok)

	require.NoError(t, env.MarkClientProcessingStart(base.Add(3*time.Millisecond)))
	_, ok = env.ClientProcessingTime()
	require.False(t, ok, "start alone yields no client time")

	require.NoError(t, env.MarkClientProcessingEnd(base.Add(8*time.Millisecond)))
	client, ok := env.ClientProcessingTime()
	require.True(t, ok)
	require.Equal(t, 5*time.Millisecond, client)

	e2e, ok := env.EndToEndLatency()
	require.True(t, ok)
	require.Equal(t, 1500*time.Microsecond+5*time.Millisecond, e2e)
}

func TestEnvelope_ServerProcessingTimeUnset(t *testing.T) {
	env, err := New(event.Custom("x"), nil, WithArrivalTime(0), WithCompletionTime(100))
	require.NoError(t, err)
	require.Zero(t, env.ServerProcessingTime())
}

func TestEnvelope_ClientMarkRules(t *testing.T) {
	now := time.Now()

	env, err := New(event.Custom("x"), nil)
	require.NoError(t, err)

	require.ErrorIs(t, env.MarkClientProcessingEnd(now), errs.ErrClientStartMissing)
	require.ErrorIs(t, env.MarkClientProcessingStart(time.UnixMicro(0)), errs.ErrInvalidTimestamp)

	require.NoError(t, env.MarkClientProcessingStart(now))
	require.ErrorIs(t, env.MarkClientProcessingStart(now), errs.ErrClientTimestampSet)
	require.ErrorIs(t, env.MarkClientProcessingEnd(now.Add(-time.Second)), errs.ErrClientTimestampOrder)

	require.NoError(t, env.MarkClientProcessingEnd(now))
	require.ErrorIs(t, env.MarkClientProcessingEnd(now.Add(time.Second)), errs.ErrClientTimestampSet)

	d, ok := env.ClientProcessingTime()
	require.True(t, ok)
	require.Zero(t, d)
}

func TestDecompressedData_DoesNotAlias(t *testing.T) {
	raw := []byte("tiny")
	env, err := New(event.Custom("x"), raw)
	require.NoError(t, err)

	out, err := env.DecompressedData()
	require.NoError(t, err)
	out[0] = 'T'
	require.Equal(t, []byte("tiny"), env.Payload())
}

func TestDecompressedData_Corrupt(t *testing.T) {
	raw := compressiblePayload(2048)
	good, err := New(event.Custom("x"), raw, WithCompression(format.CodecZstdFast))
	require.NoError(t, err)
	require.True(t, good.IsCompressed())

	tests := []struct {
		name   string
		mutate func(e *Envelope)
	}{
		{name: "garbage payload", mutate: func(e *Envelope) { e.payload = []byte("definitely not zstd") }},
		{name: "codec mismatch", mutate: func(e *Envelope) { e.codec = format.CodecLZ4Fast }},
		{name: "size mismatch", mutate: func(e *Envelope) { e.originalSize = 2047 }},
		{name: "compressed with none", mutate: func(e *Envelope) { e.codec = format.CodecNone }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := *good
			tt.mutate(&env)

			_, err := env.DecompressedData()
			require.ErrorIs(t, err, errs.ErrCorruptEnvelope)
		})
	}
}

func TestEnvelope_String(t *testing.T) {
	env, err := New(event.Of(event.KindBonkTrade), compressiblePayload(1000), WithID("a"), WithCompression(format.CodecLZ4High))
	require.NoError(t, err)
	require.Contains(t, env.String(), "LZ4High")
	require.Contains(t, env.String(), "BonkTrade")

	env, err = New(event.Of(event.KindBonkTrade), []byte("x"), WithID("b"))
	require.NoError(t, err)
	require.Contains(t, env.String(), "uncompressed 1 bytes")
}
