// Package errs defines the sentinel errors shared by the fzstream packages.
//
// Callers match them with errors.Is; every layer wraps them with context.
package errs

import "errors"

// Codec errors.
var (
	// ErrCodecFailure indicates a compression attempt failed. Envelope construction
	// treats it as "compression unavailable" and stores the payload uncompressed.
	ErrCodecFailure = errors.New("codec failure")
	// ErrCorruptEnvelope indicates the original bytes cannot be reconstructed: the
	// payload does not decode under the declared codec, or its size disagrees with
	// the declared original size.
	ErrCorruptEnvelope = errors.New("corrupt envelope")
	// ErrUnknownCodec indicates a codec identifier outside the known catalog.
	ErrUnknownCodec = errors.New("unknown compression codec")
	// ErrUnknownSerialization indicates a serialization identifier outside the known catalog.
	ErrUnknownSerialization = errors.New("unknown serialization format")
	// ErrIncompressible indicates the codec produced no usable output for the input.
	ErrIncompressible = errors.New("input is not compressible")
)

// Envelope wire errors.
var (
	ErrInvalidHeaderSize  = errors.New("invalid envelope header size")
	ErrInvalidHeaderFlags = errors.New("invalid envelope header flags")
	ErrTruncatedEnvelope  = errors.New("truncated envelope")
	ErrChecksumMismatch   = errors.New("envelope checksum mismatch")
	ErrFieldTooLong       = errors.New("envelope field too long")
	ErrEnvelopeTooLarge   = errors.New("envelope exceeds maximum payload size")
)

// Envelope lifecycle errors.
var (
	ErrClientTimestampSet   = errors.New("client timestamp already set")
	ErrClientStartMissing   = errors.New("client processing start not set")
	ErrClientTimestampOrder = errors.New("client processing end precedes start")
	ErrInvalidTimestamp     = errors.New("timestamp must be positive")
)

// Serialization errors.
var (
	ErrUnsupportedBinary = errors.New("value does not support binary serialization")
)

// Statistics errors.
var (
	ErrInvalidRetention = errors.New("retention must not be negative")
)
