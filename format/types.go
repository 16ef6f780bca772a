package format

import (
	"fmt"

	"github.com/fzstream/fzstream/errs"
)

type (
	SerializationFormat uint8
	CompressionCodec    uint8
	CompressionFamily   uint8
)

const (
	SerializationJSON   SerializationFormat = 0x1 // SerializationJSON represents a JSON encoded payload.
	SerializationBinary SerializationFormat = 0x2 // SerializationBinary represents a compact binary payload.
	SerializationAuto   SerializationFormat = 0x3 // SerializationAuto lets the producer pick the smaller encoding.

	CodecNone       CompressionCodec = 0x1 // CodecNone represents no compression.
	CodecLZ4Fast    CompressionCodec = 0x2 // CodecLZ4Fast represents LZ4 block compression in fast mode.
	CodecLZ4High    CompressionCodec = 0x3 // CodecLZ4High represents LZ4 block compression in high-compression mode.
	CodecZstdFast   CompressionCodec = 0x4 // CodecZstdFast represents Zstandard at level 1.
	CodecZstdMedium CompressionCodec = 0x5 // CodecZstdMedium represents Zstandard at level 6.
	CodecZstdHigh   CompressionCodec = 0x6 // CodecZstdHigh represents Zstandard at level 15.
	CodecZstdMax    CompressionCodec = 0x7 // CodecZstdMax represents Zstandard at level 22.
	CodecS2         CompressionCodec = 0x8 // CodecS2 represents S2 block compression.

	FamilyNone CompressionFamily = 0x1 // FamilyNone represents the identity transform.
	FamilyLZ4  CompressionFamily = 0x2 // FamilyLZ4 represents the LZ4 block format.
	FamilyZstd CompressionFamily = 0x3 // FamilyZstd represents the Zstandard frame format.
	FamilyS2   CompressionFamily = 0x4 // FamilyS2 represents the S2 block format.
)

// Zstd levels used by the Zstd codec variants.
const (
	ZstdLevelFast   = 1
	ZstdLevelMedium = 6
	ZstdLevelHigh   = 15
	ZstdLevelMax    = 22
)

// AllCodecs lists every codec variant in declaration order.
var AllCodecs = []CompressionCodec{
	CodecNone,
	CodecLZ4Fast,
	CodecLZ4High,
	CodecZstdFast,
	CodecZstdMedium,
	CodecZstdHigh,
	CodecZstdMax,
	CodecS2,
}

func (s SerializationFormat) String() string {
	switch s {
	case SerializationJSON:
		return "JSON"
	case SerializationBinary:
		return "Binary"
	case SerializationAuto:
		return "Auto"
	default:
		return "Unknown"
	}
}

// IsValid reports whether s is a known serialization format.
func (s SerializationFormat) IsValid() bool {
	return s >= SerializationJSON && s <= SerializationAuto
}

// ParseSerialization converts a serialization name into a SerializationFormat.
func ParseSerialization(name string) (SerializationFormat, error) {
	switch name {
	case "JSON", "json":
		return SerializationJSON, nil
	case "Binary", "binary", "bincode":
		return SerializationBinary, nil
	case "Auto", "auto":
		return SerializationAuto, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownSerialization, name)
	}
}

func (c CompressionCodec) String() string {
	switch c {
	case CodecNone:
		return "None"
	case CodecLZ4Fast:
		return "LZ4Fast"
	case CodecLZ4High:
		return "LZ4High"
	case CodecZstdFast:
		return "ZstdFast"
	case CodecZstdMedium:
		return "ZstdMedium"
	case CodecZstdHigh:
		return "ZstdHigh"
	case CodecZstdMax:
		return "ZstdMax"
	case CodecS2:
		return "S2"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is a known codec variant.
func (c CompressionCodec) IsValid() bool {
	return c >= CodecNone && c <= CodecS2
}

// Family returns the algorithm family the codec belongs to.
func (c CompressionCodec) Family() CompressionFamily {
	switch c {
	case CodecNone:
		return FamilyNone
	case CodecLZ4Fast, CodecLZ4High:
		return FamilyLZ4
	case CodecZstdFast, CodecZstdMedium, CodecZstdHigh, CodecZstdMax:
		return FamilyZstd
	case CodecS2:
		return FamilyS2
	default:
		return 0
	}
}

// ZstdLevel returns the numeric Zstandard level for Zstd variants.
// The second result is false for codecs outside the Zstd family.
func (c CompressionCodec) ZstdLevel() (int, bool) {
	switch c {
	case CodecZstdFast:
		return ZstdLevelFast, true
	case CodecZstdMedium:
		return ZstdLevelMedium, true
	case CodecZstdHigh:
		return ZstdLevelHigh, true
	case CodecZstdMax:
		return ZstdLevelMax, true
	default:
		return 0, false
	}
}

// LZ4HighCompression reports whether the codec selects LZ4 high-compression mode.
func (c CompressionCodec) LZ4HighCompression() bool {
	return c == CodecLZ4High
}

// ParseCodec converts a codec name into a CompressionCodec.
func ParseCodec(name string) (CompressionCodec, error) {
	for _, c := range AllCodecs {
		if c.String() == name {
			return c, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", errs.ErrUnknownCodec, name)
}

func (f CompressionFamily) String() string {
	switch f {
	case FamilyNone:
		return "None"
	case FamilyLZ4:
		return "LZ4"
	case FamilyZstd:
		return "Zstd"
	case FamilyS2:
		return "S2"
	default:
		return "Unknown"
	}
}
