// Package envelope implements the self-describing unit exchanged between an event
// producer and its consumers.
//
// An Envelope couples a serialized event payload with the serialization format and
// compression codec that were actually applied, plus five lifecycle timestamps used
// for latency instrumentation.
//
// # Construction
//
// New makes a single compress-or-not decision:
//
//	env, err := envelope.New(event.Of(event.KindRaydiumCpmmSwap), raw,
//	    envelope.WithSerialization(format.SerializationBinary),
//	    envelope.WithCompression(format.CodecZstdHigh),
//	)
//
// The payload is stored compressed only when the codec succeeds and its output is
// strictly smaller than raw. Otherwise the raw bytes are stored and the envelope
// declares format.CodecNone. A consumer therefore never receives a payload larger
// than the uncompressed form.
//
// # Decoding
//
//	original, err := env.DecompressedData()
//	if errors.Is(err, errs.ErrCorruptEnvelope) {
//	    // discard and report upstream
//	}
//
// # Wire Form
//
// MarshalBinary / UnmarshalBinary produce and parse a 72-byte header followed by the
// envelope id, the event type name and the payload. An xxHash64 over the header and
// body guards every field. Decoders reject declared sizes above DefaultMaxPayloadSize
// unless WithMaxPayloadSize raises or lowers the limit. Framing between envelopes is
// the transport's job.
//
// # Thread Safety
//
// Construction and decoding are pure functions. An Envelope may be read from many
// goroutines, but the client timestamp setters must not race with each other or with
// readers.
package envelope
