package envelope

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fzstream/fzstream/endian"
	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/event"
	"github.com/fzstream/fzstream/format"
	"github.com/fzstream/fzstream/internal/pool"
)

// EncodedSize returns the number of bytes MarshalBinary produces.
func (e *Envelope) EncodedSize() int {
	return HeaderSize + len(e.id) + len(e.eventType.String()) + len(e.payload)
}

func (e *Envelope) header(engine endian.EndianEngine) (Header, error) {
	name := e.eventType.String()
	if len(e.id) > maxFieldLen {
		return Header{}, fmt.Errorf("%w: id is %d bytes", errs.ErrFieldTooLong, len(e.id))
	}
	if len(name) > maxFieldLen {
		return Header{}, fmt.Errorf("%w: event type is %d bytes", errs.ErrFieldTooLong, len(name))
	}
	if uint64(len(e.payload)) > uint64(^uint32(0)) {
		return Header{}, fmt.Errorf("%w: payload is %d bytes", errs.ErrFieldTooLong, len(e.payload))
	}

	flag := NewFlag()
	flag.Serialization = uint8(e.serialization)
	flag.Codec = uint8(e.codec)
	flag.set(CompressedMask, e.compressed)
	flag.set(ClientStartMask, e.clientStart != 0)
	flag.set(ClientEndMask, e.clientEnd != 0)
	if endian.IsBigEndian(engine) {
		flag.WithBigEndian()
	}

	h := Header{
		Flag:           flag,
		CreatedAt:      e.createdAt,
		ArrivalTime:    e.arrivalTime,
		ParsingTime:    e.parsingTime,
		CompletionTime: e.completionTime,
		ClientStart:    e.clientStart,
		ClientEnd:      e.clientEnd,
		PayloadLen:     uint32(len(e.payload)),
		IDLen:          uint16(len(e.id)),
		EventTypeLen:   uint16(len(name)),
	}
	if e.compressed {
		h.OriginalSize = uint32(e.originalSize)
	}
	h.Checksum = h.checksum([]byte(e.id), []byte(name), e.payload)

	return h, nil
}

// AppendBinaryWithEngine appends the wire form of the envelope to dst using the given byte order.
func (e *Envelope) AppendBinaryWithEngine(dst []byte, engine endian.EndianEngine) ([]byte, error) {
	h, err := e.header(engine)
	if err != nil {
		return dst, err
	}

	dst = h.AppendBytes(dst)
	dst = append(dst, e.id...)
	dst = append(dst, e.eventType.String()...)
	dst = append(dst, e.payload...)

	return dst, nil
}

// AppendBinary appends the little-endian wire form of the envelope to dst.
func (e *Envelope) AppendBinary(dst []byte) ([]byte, error) {
	return e.AppendBinaryWithEngine(dst, endian.GetLittleEndianEngine())
}

// MarshalBinary returns the little-endian wire form of the envelope.
func (e *Envelope) MarshalBinary() ([]byte, error) {
	return e.AppendBinary(make([]byte, 0, e.EncodedSize()))
}

// WriteTo writes the wire form of the envelope to w.
func (e *Envelope) WriteTo(w io.Writer) (int64, error) {
	buf := pool.GetEnvelopeBuffer()
	defer pool.PutEnvelopeBuffer(buf)

	buf.Grow(e.EncodedSize())
	data, err := e.AppendBinary(buf.Bytes())
	if err != nil {
		return 0, err
	}
	buf.B = data

	n, err := w.Write(buf.B)

	return int64(n), err
}

// Unmarshal decodes an envelope from its wire form.
//
// The payload is copied, so data may be reused after Unmarshal returns.
// Every decoding failure wraps errs.ErrCorruptEnvelope.
func Unmarshal(data []byte, opts ...DecodeOption) (*Envelope, error) {
	cfg, err := newDecodeConfig(opts)
	if err != nil {
		return nil, err
	}

	e := &Envelope{}
	if err := e.unmarshal(data, cfg.MaxPayloadSize); err != nil {
		return nil, err
	}

	return e, nil
}

// UnmarshalBinary decodes the wire form into e, replacing its contents.
// Declared sizes are limited to DefaultMaxPayloadSize.
func (e *Envelope) UnmarshalBinary(data []byte) error {
	return e.unmarshal(data, DefaultMaxPayloadSize)
}

func (e *Envelope) unmarshal(data []byte, maxPayload int) error {
	h, err := parseHeader(data, maxPayload)
	if err != nil {
		return corrupt(err)
	}

	body := data[HeaderSize:]
	if len(body) != h.BodySize() {
		return corrupt(fmt.Errorf("%w: body is %d bytes, header declares %d",
			errs.ErrTruncatedEnvelope, len(body), h.BodySize()))
	}

	return e.fromParts(&h, body)
}

// decodeChunk caps the body buffer Decode reserves before any bytes arrive.
const decodeChunk = 64 << 10

// Decode reads one envelope from r.
//
// The body buffer grows with the bytes actually read, so a header that declares
// more than the stream holds fails with errs.ErrTruncatedEnvelope.
func Decode(r io.Reader, opts ...DecodeOption) (*Envelope, error) {
	cfg, err := newDecodeConfig(opts)
	if err != nil {
		return nil, err
	}

	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	h, err := parseHeader(hdr[:], cfg.MaxPayloadSize)
	if err != nil {
		return nil, corrupt(err)
	}

	size := h.BodySize()
	var body bytes.Buffer
	body.Grow(min(size, decodeChunk))
	if n, err := io.CopyN(&body, r, int64(size)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return nil, corrupt(fmt.Errorf("%w: read %d of %d body bytes: %w",
			errs.ErrTruncatedEnvelope, n, size, err))
	}

	e := &Envelope{}
	if err := e.fromParts(&h, body.Bytes()); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Envelope) fromParts(h *Header, body []byte) error {
	idEnd := int(h.IDLen)
	nameEnd := idEnd + int(h.EventTypeLen)
	id, name, payload := body[:idEnd], body[idEnd:nameEnd], body[nameEnd:]

	if sum := h.checksum(id, name, payload); sum != h.Checksum {
		return corrupt(fmt.Errorf("%w: got 0x%016x, header declares 0x%016x",
			errs.ErrChecksumMismatch, sum, h.Checksum))
	}

	var et event.Type
	if err := et.UnmarshalText(name); err != nil {
		return corrupt(err)
	}

	*e = Envelope{
		id:             string(id),
		eventType:      et,
		payload:        bytes.Clone(payload),
		createdAt:      h.CreatedAt,
		serialization:  format.SerializationFormat(h.Flag.Serialization),
		codec:          format.CompressionCodec(h.Flag.Codec),
		compressed:     h.Flag.IsCompressed(),
		originalSize:   int(h.OriginalSize),
		arrivalTime:    h.ArrivalTime,
		parsingTime:    h.ParsingTime,
		completionTime: h.CompletionTime,
	}
	if e.payload == nil {
		e.payload = []byte{}
	}
	if h.Flag.HasClientStart() {
		e.clientStart = h.ClientStart
	}
	if h.Flag.HasClientEnd() {
		e.clientEnd = h.ClientEnd
	}

	return nil
}

func corrupt(err error) error {
	return fmt.Errorf("%w: %w", errs.ErrCorruptEnvelope, err)
}
