package envelope

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fzstream/fzstream/compress"
	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/event"
	"github.com/fzstream/fzstream/format"
)

// Envelope is the unit handed to the transport by a producer and back to a consumer.
//
// Invariant: IsCompressed implies OriginalSize is present and larger than the
// payload; otherwise OriginalSize is absent and the payload is the raw bytes.
type Envelope struct {
	id            string
	eventType     event.Type
	payload       []byte
	createdAt     int64 // unix micros
	serialization format.SerializationFormat
	codec         format.CompressionCodec
	compressed    bool
	originalSize  int

	// producer-side timestamps, unix micros
	arrivalTime    int64
	parsingTime    int64
	completionTime int64

	// consumer-side timestamps, unix micros, zero when unset
	clientStart int64
	clientEnd   int64
}

// New builds an envelope for raw with a single compress-or-not decision.
//
// The envelope takes ownership of raw; callers must not modify it afterwards.
// A failed compression attempt is not an error: the raw bytes are stored instead.
// Errors are returned only for invalid options.
func New(eventType event.Type, raw []byte, opts ...Option) (*Envelope, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	env := &Envelope{
		id:             cfg.ID,
		eventType:      eventType,
		createdAt:      cfg.CreatedAt.UnixMicro(),
		serialization:  cfg.Serialization,
		codec:          format.CodecNone,
		arrivalTime:    cfg.arrival,
		parsingTime:    cfg.parsing,
		completionTime: cfg.completion,
	}
	env.payload, env.compressed = encodePayload(raw, cfg.Codec, cfg.MinCompressSize)
	if env.compressed {
		env.codec = cfg.Codec
		env.originalSize = len(raw)
	}
	if !cfg.hasCompletion {
		env.completionTime = cfg.now().UnixMicro()
	}

	return env, nil
}

// encodePayload applies codec to raw and keeps the result only if it is strictly smaller.
func encodePayload(raw []byte, codec format.CompressionCodec, minSize int) ([]byte, bool) {
	if codec == format.CodecNone || len(raw) == 0 || len(raw) < minSize {
		return raw, false
	}

	compressed, err := compress.Compress(raw, codec)
	if err != nil || len(compressed) >= len(raw) {
		return raw, false
	}

	return compressed, true
}

// ID returns the envelope id.
func (e *Envelope) ID() string { return e.id }

// EventType returns the event type identifier.
func (e *Envelope) EventType() event.Type { return e.eventType }

// Payload returns the stored payload bytes. The slice must not be modified.
func (e *Envelope) Payload() []byte { return e.payload }

// CreatedAt returns the creation time at microsecond resolution.
func (e *Envelope) CreatedAt() time.Time { return time.UnixMicro(e.createdAt) }

// Serialization returns the declared serialization format of the payload.
func (e *Envelope) Serialization() format.SerializationFormat { return e.serialization }

// Codec returns the codec applied to the payload, format.CodecNone when uncompressed.
func (e *Envelope) Codec() format.CompressionCodec { return e.codec }

// IsCompressed reports whether the payload is stored compressed.
func (e *Envelope) IsCompressed() bool { return e.compressed }

// OriginalSize returns the pre-compression size. ok is false for uncompressed envelopes.
func (e *Envelope) OriginalSize() (size int, ok bool) {
	return e.originalSize, e.compressed
}

// ArrivalTime returns the producer arrival timestamp in Unix microseconds.
func (e *Envelope) ArrivalTime() int64 { return e.arrivalTime }

// ParsingTime returns the producer parsing timestamp in Unix microseconds.
func (e *Envelope) ParsingTime() int64 { return e.parsingTime }

// CompletionTime returns the producer completion timestamp in Unix microseconds.
func (e *Envelope) CompletionTime() int64 { return e.completionTime }

// ClientProcessingStart returns the consumer start timestamp in Unix microseconds.
func (e *Envelope) ClientProcessingStart() (int64, bool) {
	return e.clientStart, e.clientStart != 0
}

// ClientProcessingEnd returns the consumer end timestamp in Unix microseconds.
func (e *Envelope) ClientProcessingEnd() (int64, bool) {
	return e.clientEnd, e.clientEnd != 0
}

// CompressionRatio returns payload size / original size. ok is false when uncompressed.
func (e *Envelope) CompressionRatio() (ratio float64, ok bool) {
	if !e.compressed || e.originalSize == 0 {
		return 0, false
	}

	return float64(len(e.payload)) / float64(e.originalSize), true
}

// ServerProcessingTime returns completion - arrival, or 0 when either is unset.
func (e *Envelope) ServerProcessingTime() time.Duration {
	if e.arrivalTime <= 0 || e.completionTime <= 0 {
		return 0
	}

	return time.Duration(e.completionTime-e.arrivalTime) * time.Microsecond
}

// ClientProcessingTime returns end - start once both client timestamps are set.
func (e *Envelope) ClientProcessingTime() (time.Duration, bool) {
	if e.clientStart == 0 || e.clientEnd == 0 {
		return 0, false
	}

	return time.Duration(e.clientEnd-e.clientStart) * time.Microsecond, true
}

// EndToEndLatency returns server plus client processing time once the client side is known.
func (e *Envelope) EndToEndLatency() (time.Duration, bool) {
	client, ok := e.ClientProcessingTime()
	if !ok {
		return 0, false
	}

	return e.ServerProcessingTime() + client, true
}

// MarkClientProcessingStart records when the consumer started processing.
// It may be called once.
func (e *Envelope) MarkClientProcessingStart(at time.Time) error {
	micros := at.UnixMicro()
	if micros <= 0 {
		return errs.ErrInvalidTimestamp
	}
	if e.clientStart != 0 {
		return fmt.Errorf("processing start: %w", errs.ErrClientTimestampSet)
	}
	e.clientStart = micros

	return nil
}

// MarkClientProcessingEnd records when the consumer finished processing.
// It may be called once, after MarkClientProcessingStart, with a time not before the start.
func (e *Envelope) MarkClientProcessingEnd(at time.Time) error {
	micros := at.UnixMicro()
	if micros <= 0 {
		return errs.ErrInvalidTimestamp
	}
	if e.clientStart == 0 {
		return errs.ErrClientStartMissing
	}
	if e.clientEnd != 0 {
		return fmt.Errorf("processing end: %w", errs.ErrClientTimestampSet)
	}
	if micros < e.clientStart {
		return errs.ErrClientTimestampOrder
	}
	e.clientEnd = micros

	return nil
}

// DecompressedData returns the original payload bytes.
//
// The result never aliases the envelope. A payload that does not decode under the
// declared codec yields an error wrapping errs.ErrCorruptEnvelope.
func (e *Envelope) DecompressedData() ([]byte, error) {
	if !e.compressed {
		return bytes.Clone(e.payload), nil
	}
	if e.codec == format.CodecNone {
		return nil, fmt.Errorf("%w: compressed payload declares codec None", errs.ErrCorruptEnvelope)
	}

	out, err := compress.Decompress(e.payload, e.codec, e.originalSize)
	if err != nil {
		return nil, fmt.Errorf("envelope %s: %w", e.id, err)
	}

	return out, nil
}

// String returns a one-line summary for logs.
func (e *Envelope) String() string {
	if e.compressed {
		return fmt.Sprintf("envelope{id=%s type=%s %s %s %d->%d bytes}",
			e.id, e.eventType, e.serialization, e.codec, e.originalSize, len(e.payload))
	}

	return fmt.Sprintf("envelope{id=%s type=%s %s uncompressed %d bytes}",
		e.id, e.eventType, e.serialization, len(e.payload))
}
