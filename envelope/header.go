package envelope

import (
	"fmt"

	"github.com/fzstream/fzstream/endian"
	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/format"
	"github.com/fzstream/fzstream/internal/hash"
)

const (
	// Bit masks of the packed options word
	CompressedMask  = 0x0001 // Mask for compressed payload bit (bit 0)
	EndiannessMask  = 0x0002 // Mask for endianness bit (bit 1), 0=little, 1=big
	ClientStartMask = 0x0004 // Mask for client processing start presence (bit 2)
	ClientEndMask   = 0x0008 // Mask for client processing end presence (bit 3)
	MagicNumberMask = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicEnvelopeV1Opt identifies envelope wire format v1.
	MagicEnvelopeV1Opt = 0xEB10
)

// HeaderSize is the fixed size of the envelope wire header in bytes.
const HeaderSize = 72

// maxFieldLen is the largest id or event type name the header can describe.
const maxFieldLen = 1<<16 - 1

// DefaultMaxPayloadSize is the largest payload or original size a decoder accepts
// unless WithMaxPayloadSize says otherwise.
const DefaultMaxPayloadSize = 64 << 20

// Flag is the packed flag field at the start of the header.
type Flag struct {
	// Options holds the flag bits and the magic number.
	// It is always stored little-endian so the byte order can be read before anything else.
	Options uint16
	// Serialization is the format.SerializationFormat of the payload.
	Serialization uint8
	// Codec is the format.CompressionCodec applied to the payload.
	Codec uint8
}

// NewFlag creates a little-endian v1 flag.
func NewFlag() Flag {
	return Flag{Options: MagicEnvelopeV1Opt}
}

// IsCompressed reports whether the payload is compressed.
func (f Flag) IsCompressed() bool {
	return f.Options&CompressedMask != 0
}

// HasClientStart reports whether the client processing start timestamp is present.
func (f Flag) HasClientStart() bool {
	return f.Options&ClientStartMask != 0
}

// HasClientEnd reports whether the client processing end timestamp is present.
func (f Flag) HasClientEnd() bool {
	return f.Options&ClientEndMask != 0
}

// IsBigEndian reports whether the header fields after the options word are big-endian.
func (f Flag) IsBigEndian() bool {
	return f.Options&EndiannessMask != 0
}

func (f *Flag) set(mask uint16, on bool) {
	if on {
		f.Options |= mask
	} else {
		f.Options &^= mask
	}
}

// WithBigEndian switches the header to big-endian.
func (f *Flag) WithBigEndian() { f.set(EndiannessMask, true) }

// WithLittleEndian switches the header to little-endian.
func (f *Flag) WithLittleEndian() { f.set(EndiannessMask, false) }

// GetEndianEngine returns the engine matching the endianness bit.
func (f Flag) GetEndianEngine() endian.EndianEngine {
	if f.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// Validate checks the magic number, the enum fields and the flag combinations.
func (f Flag) Validate() error {
	if f.Options&MagicNumberMask != MagicEnvelopeV1Opt {
		return fmt.Errorf("%w: magic 0x%04x", errs.ErrInvalidHeaderFlags, f.Options&MagicNumberMask)
	}
	if !format.SerializationFormat(f.Serialization).IsValid() {
		return fmt.Errorf("%w: %w: %d", errs.ErrInvalidHeaderFlags, errs.ErrUnknownSerialization, f.Serialization)
	}
	codec := format.CompressionCodec(f.Codec)
	if !codec.IsValid() {
		return fmt.Errorf("%w: %w: %d", errs.ErrInvalidHeaderFlags, errs.ErrUnknownCodec, f.Codec)
	}
	if f.IsCompressed() == (codec == format.CodecNone) {
		return fmt.Errorf("%w: compressed=%t with codec %s", errs.ErrInvalidHeaderFlags, f.IsCompressed(), codec)
	}
	if f.HasClientEnd() && !f.HasClientStart() {
		return fmt.Errorf("%w: client end without client start", errs.ErrInvalidHeaderFlags)
	}

	return nil
}

// Header is the fixed-size header preceding the variable fields of an encoded envelope.
//
// The variable fields follow the header in order: id, event type name, payload.
type Header struct {
	Flag Flag // byte offset 0-3

	CreatedAt      int64 // byte offset 4-11, unix micros
	ArrivalTime    int64 // byte offset 12-19
	ParsingTime    int64 // byte offset 20-27
	CompletionTime int64 // byte offset 28-35
	ClientStart    int64 // byte offset 36-43, zero unless HasClientStart
	ClientEnd      int64 // byte offset 44-51, zero unless HasClientEnd

	// OriginalSize is the pre-compression payload size, zero when uncompressed.
	OriginalSize uint32 // byte offset 52-55
	PayloadLen   uint32 // byte offset 56-59
	// Checksum is the xxHash64 of the header with this field zeroed, followed by
	// id, event type name and payload.
	Checksum     uint64 // byte offset 60-67
	IDLen        uint16 // byte offset 68-69
	EventTypeLen uint16 // byte offset 70-71
}

// BodySize returns the number of bytes following the header.
func (h *Header) BodySize() int {
	return int(h.IDLen) + int(h.EventTypeLen) + int(h.PayloadLen)
}

// Parse parses the header from a byte slice, accepting sizes up to DefaultMaxPayloadSize.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly HeaderSize bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not HeaderSize bytes, ErrEnvelopeTooLarge
//     if a declared size exceeds the limit, or flag validation errors
func (h *Header) Parse(data []byte) error {
	return h.parse(data, DefaultMaxPayloadSize)
}

func (h *Header) parse(data []byte, maxPayload int) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	// options word is always little-endian
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.Serialization = data[2]
	h.Flag.Codec = data[3]
	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()

	h.CreatedAt = int64(engine.Uint64(data[4:12]))
	h.ArrivalTime = int64(engine.Uint64(data[12:20]))
	h.ParsingTime = int64(engine.Uint64(data[20:28]))
	h.CompletionTime = int64(engine.Uint64(data[28:36]))
	h.ClientStart = int64(engine.Uint64(data[36:44]))
	h.ClientEnd = int64(engine.Uint64(data[44:52]))
	h.OriginalSize = engine.Uint32(data[52:56])
	h.PayloadLen = engine.Uint32(data[56:60])
	h.Checksum = engine.Uint64(data[60:68])
	h.IDLen = engine.Uint16(data[68:70])
	h.EventTypeLen = engine.Uint16(data[70:72])

	if int64(h.PayloadLen) > int64(maxPayload) || int64(h.OriginalSize) > int64(maxPayload) {
		return fmt.Errorf("%w: payload %d, original %d, limit %d",
			errs.ErrEnvelopeTooLarge, h.PayloadLen, h.OriginalSize, maxPayload)
	}
	if h.Flag.IsCompressed() && h.OriginalSize <= h.PayloadLen {
		return fmt.Errorf("%w: original size %d not larger than payload %d",
			errs.ErrInvalidHeaderFlags, h.OriginalSize, h.PayloadLen)
	}
	if !h.Flag.IsCompressed() && h.OriginalSize != 0 {
		return fmt.Errorf("%w: original size on uncompressed payload", errs.ErrInvalidHeaderFlags)
	}

	return nil
}

// AppendBytes appends the encoded header to dst.
func (h *Header) AppendBytes(dst []byte) []byte {
	engine := h.Flag.GetEndianEngine()

	dst = append(dst, byte(h.Flag.Options), byte(h.Flag.Options>>8), h.Flag.Serialization, h.Flag.Codec)
	dst = engine.AppendUint64(dst, uint64(h.CreatedAt))
	dst = engine.AppendUint64(dst, uint64(h.ArrivalTime))
	dst = engine.AppendUint64(dst, uint64(h.ParsingTime))
	dst = engine.AppendUint64(dst, uint64(h.CompletionTime))
	dst = engine.AppendUint64(dst, uint64(h.ClientStart))
	dst = engine.AppendUint64(dst, uint64(h.ClientEnd))
	dst = engine.AppendUint32(dst, h.OriginalSize)
	dst = engine.AppendUint32(dst, h.PayloadLen)
	dst = engine.AppendUint64(dst, h.Checksum)
	dst = engine.AppendUint16(dst, h.IDLen)
	dst = engine.AppendUint16(dst, h.EventTypeLen)

	return dst
}

// Bytes serializes the header into a new HeaderSize byte slice.
func (h *Header) Bytes() []byte {
	return h.AppendBytes(make([]byte, 0, HeaderSize))
}

// ParseHeader parses a Header from the start of data with the default size limit.
//
// Returns ErrInvalidHeaderSize when data is shorter than HeaderSize.
func ParseHeader(data []byte) (Header, error) {
	return parseHeader(data, DefaultMaxPayloadSize)
}

func parseHeader(data []byte, maxPayload int) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	h := Header{}
	if err := h.parse(data[:HeaderSize], maxPayload); err != nil {
		return Header{}, err
	}

	return h, nil
}

// checksum computes the Checksum field for the given variable fields.
func (h *Header) checksum(id, name, payload []byte) uint64 {
	zeroed := *h
	zeroed.Checksum = 0

	var buf [HeaderSize]byte

	return hash.ChecksumParts(zeroed.AppendBytes(buf[:0]), id, name, payload)
}
