// Package compress provides the codecs used to shrink event payloads before they
// are placed into an envelope.
//
// # Overview
//
// A producer serializes an event record to bytes and then applies one of the
// codec variants declared in the format package:
//   - None: identity transform
//   - LZ4Fast / LZ4High: LZ4 block format, fast or high-compression mode
//   - ZstdFast / ZstdMedium / ZstdHigh / ZstdMax: Zstandard at levels 1, 6, 15, 22
//   - S2: Snappy-compatible S2 block format
//
// The package performs the transform only. Deciding whether a compressed result is
// worth keeping is the envelope's job.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Codecs that can exploit the known original size implement SizedDecompressor.
//
// The package-level Compress and Decompress functions dispatch on a
// format.CompressionCodec and translate failures into the shared error taxonomy:
//
//	compressed, err := compress.Compress(raw, format.CodecZstdHigh)
//	if errors.Is(err, errs.ErrCodecFailure) {
//	    // store raw bytes instead
//	}
//
//	original, err := compress.Decompress(compressed, format.CodecZstdHigh, len(raw))
//	if errors.Is(err, errs.ErrCorruptEnvelope) {
//	    // discard the envelope
//	}
//
// # Trials
//
// Measure runs one round trip and reports sizes and timings as CompressionStats.
// Trial measures several candidates concurrently and keeps their input order, which
// is what the statistics aggregator expects for its stable "best codec" choice.
//
// # Zstd Backends
//
// The pure-Go klauspost/compress/zstd backend is the default. Building with
// "-tags gozstd" and cgo enabled switches to valyala/gozstd.
//
// # Thread Safety
//
// All codec implementations are stateless values backed by sync.Pool encoders and
// decoders, and can be shared across goroutines.
package compress
