// Package fzstream provides self-describing event envelopes for streaming
// high-frequency events between a producer and its consumers.
//
// An envelope couples an opaque payload with the serialization and compression
// actually applied to it and with latency timestamps. Compression is kept only when
// it makes the payload strictly smaller, so a consumer never pays to decompress a
// payload that grew.
//
// # Core Features
//
//   - LZ4 (fast and high-compression) and Zstd (levels 1, 6, 15, 22) codecs, plus S2
//   - Compact binary wire form with a 72-byte header and xxHash64 checksum
//   - Producer and consumer timestamps with derived latency metrics
//   - Optional per-event-type compression statistics with bounded retention
//
// # Basic Usage
//
// Producing an envelope from already-serialized bytes:
//
//	env, _ := fzstream.Encode(event.Of(event.KindPumpFunTrade), raw,
//	    envelope.WithCompression(format.CodecZstdFast),
//	)
//	data, _ := env.MarshalBinary()
//
// Consuming it on the other side:
//
//	env, payload, err := fzstream.Open(data)
//	if err != nil {
//	    // errors.Is(err, errs.ErrCorruptEnvelope)
//	}
//	handle(payload)
//	_ = env.MarkClientProcessingEnd(time.Now())
//
// Producing from domain objects with statistics:
//
//	agg, _ := stats.NewAggregator(stats.Config{Enabled: true})
//	producer, _ := fzstream.NewProducer(
//	    fzstream.WithSerialization(format.SerializationAuto),
//	    fzstream.WithCandidates(format.CodecLZ4Fast, format.CodecZstdFast, format.CodecZstdHigh),
//	    fzstream.WithStats(agg),
//	)
//	env, _ := producer.Produce(event.Of(event.KindRaydiumCpmmSwap), swap)
//
// # Package Structure
//
// This package wraps the envelope, serialize, compress and stats packages for the
// common producer and consumer paths. Use those packages directly for finer control.
package fzstream

import (
	"time"

	"github.com/fzstream/fzstream/envelope"
	"github.com/fzstream/fzstream/event"
)

// Encode builds an envelope from raw payload bytes.
//
// Parameters:
//   - eventType: The event type carried by the envelope
//   - raw: Serialized payload; the envelope takes ownership of it
//   - opts: envelope options (codec, serialization, timestamps, ...)
//
// Returns:
//   - *envelope.Envelope: The constructed envelope
//   - error: An error if an option is invalid
func Encode(eventType event.Type, raw []byte, opts ...envelope.Option) (*envelope.Envelope, error) {
	return envelope.New(eventType, raw, opts...)
}

// Open decodes an envelope from its wire form, marks the client processing start
// and returns the original payload bytes.
//
// Every decoding or decompression failure wraps errs.ErrCorruptEnvelope.
func Open(data []byte) (*envelope.Envelope, []byte, error) {
	env, err := envelope.Unmarshal(data)
	if err != nil {
		return nil, nil, err
	}

	// forwarded envelopes may already carry a client start
	if _, ok := env.ClientProcessingStart(); !ok {
		if err := env.MarkClientProcessingStart(time.Now()); err != nil {
			return nil, nil, err
		}
	}

	payload, err := env.DecompressedData()
	if err != nil {
		return env, nil, err
	}

	return env, payload, nil
}
