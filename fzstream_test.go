package fzstream

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fzstream/fzstream/envelope"
	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/event"
	"github.com/fzstream/fzstream/format"
	"github.com/fzstream/fzstream/serialize"
	"github.com/fzstream/fzstream/stats"
)

type swapEvent struct {
	Pool      string `json:"pool"`
	User      string `json:"user"`
	AmountIn  uint64 `json:"amount_in"`
	AmountOut uint64 `json:"amount_out"`
	Slot      uint64 `json:"slot"`
}

func testSwaps(n int) []swapEvent {
	out := make([]swapEvent, n)
	for i := range out {
		out[i] = swapEvent{
			Pool:      "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2",
			User:      "7YttLkHDoNj9wyDur5pM1ejNaAvT9X4eqaYcHQqtj2G5",
			AmountIn:  uint64(1_000_000 + i),
			AmountOut: uint64(2_000 + i),
			Slot:      uint64(250_000_000 + i),
		}
	}

	return out
}

func TestEncodeOpen_RoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte(`{"slot":250000000,"parent":249999999}`), 40)

	env, err := Encode(event.Of(event.KindBlockMeta), raw, envelope.WithCompression(format.CodecZstdFast))
	require.NoError(t, err)
	require.True(t, env.IsCompressed())

	data, err := env.MarshalBinary()
	require.NoError(t, err)

	got, payload, err := Open(data)
	require.NoError(t, err)
	require.Equal(t, raw, payload)
	require.Equal(t, env.ID(), got.ID())

	_, ok := got.ClientProcessingStart()
	require.True(t, ok)
	require.NoError(t, got.MarkClientProcessingEnd(time.Now()))
	_, ok = got.EndToEndLatency()
	require.True(t, ok)
}

func TestOpen_Corrupt(t *testing.T) {
	env, err := Encode(event.Custom("x"), []byte("payload"))
	require.NoError(t, err)
	data, err := env.MarshalBinary()
	require.NoError(t, err)

	_, _, err = Open(data[:len(data)-1])
	require.ErrorIs(t, err, errs.ErrCorruptEnvelope)
}

func TestNewProducer_InvalidOptions(t *testing.T) {
	_, err := NewProducer(WithCodec(format.CompressionCodec(0)))
	require.ErrorIs(t, err, errs.ErrUnknownCodec)

	_, err = NewProducer(WithSerialization(format.SerializationFormat(9)))
	require.ErrorIs(t, err, errs.ErrUnknownSerialization)

	_, err = NewProducer(WithCandidates(format.CodecLZ4Fast, format.CompressionCodec(99)))
	require.ErrorIs(t, err, errs.ErrUnknownCodec)
}

func TestProducer_ProduceWithoutStats(t *testing.T) {
	p, err := NewProducer(WithSerialization(format.SerializationJSON), WithCodec(format.CodecLZ4High))
	require.NoError(t, err)

	swaps := testSwaps(20)
	env, err := p.Produce(event.Of(event.KindRaydiumCpmmSwap), swaps)
	require.NoError(t, err)

	require.Equal(t, format.SerializationJSON, env.Serialization())
	require.True(t, env.IsCompressed())
	require.Equal(t, format.CodecLZ4High, env.Codec())
	require.LessOrEqual(t, env.ArrivalTime(), env.ParsingTime())
	require.LessOrEqual(t, env.ParsingTime(), env.CompletionTime())

	payload, err := env.DecompressedData()
	require.NoError(t, err)
	var got []swapEvent
	require.NoError(t, serialize.Unmarshal(payload, env.Serialization(), &got))
	require.Equal(t, swaps, got)
}

func TestProducer_RecordsStats(t *testing.T) {
	agg, err := stats.NewAggregator(stats.Config{Enabled: true})
	require.NoError(t, err)

	p, err := NewProducer(
		WithSerialization(format.SerializationAuto),
		WithCodec(format.CodecZstdFast),
		WithCandidates(format.CodecLZ4Fast, format.CodecZstdFast, format.CodecZstdMax),
		WithStats(agg),
	)
	require.NoError(t, err)

	et := event.Of(event.KindPumpFunTrade)
	for i := 0; i < 3; i++ {
		_, err := p.Produce(et, testSwaps(10))
		require.NoError(t, err)
	}

	snap := agg.Snapshot()
	require.Contains(t, snap, et)
	require.Equal(t, uint64(3), snap[et].TotalEvents)
	require.Equal(t, et, snap[et].EventType)

	recs := agg.Recent(et, 1)
	require.Len(t, recs, 1)
	rec := recs[0]
	require.Len(t, rec.Trials, 3)
	require.Equal(t, "LZ4Fast", rec.Trials[0].Name)
	require.Equal(t, "ZstdFast", rec.Trials[1].Name)
	require.Equal(t, "ZstdMax", rec.Trials[2].Name)
	require.Equal(t, "ZstdFast", rec.Codec)
	require.Less(t, rec.FinalSize, rec.SerializedSize)
	require.Positive(t, rec.JSONSize)
	require.Equal(t, rec.JSONSize, rec.SerializedSize, "slices have no binary form, so Auto picks JSON")
}

func TestProducer_StatsDisabledSkipsTrials(t *testing.T) {
	agg, err := stats.NewAggregator(stats.DefaultConfig())
	require.NoError(t, err)

	p, err := NewProducer(WithStats(agg))
	require.NoError(t, err)

	_, err = p.Produce(event.Of(event.KindBonkTrade), testSwaps(1))
	require.NoError(t, err)
	require.Empty(t, agg.Snapshot())
}

func TestProducer_SerializeFailure(t *testing.T) {
	p, err := NewProducer(WithSerialization(format.SerializationBinary))
	require.NoError(t, err)

	_, err = p.Produce(event.Of(event.KindBonkTrade), testSwaps(1))
	require.ErrorIs(t, err, errs.ErrUnsupportedBinary)
}

func TestProducer_VerboseStatsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	agg, err := stats.NewAggregator(stats.Config{Enabled: true, Verbose: true}, stats.WithLogger(logger))
	require.NoError(t, err)

	p, err := NewProducer(WithStats(agg), WithLogger(logger), WithMinCompressSize(1<<20))
	require.NoError(t, err)

	env, err := p.Produce(event.Of(event.KindPumpSwapSell), testSwaps(5))
	require.NoError(t, err)
	require.False(t, env.IsCompressed(), "below the minimum size")

	entries := logs.FilterMessage("compression statistics").All()
	require.Len(t, entries, 1)
	require.Equal(t, "PumpSwapSell", entries[0].ContextMap()["event_type"])
	require.Equal(t, "None", entries[0].ContextMap()["codec"])
}
