package format

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fzstream/fzstream/errs"
)

func TestCompressionCodec_FamilyAndLevel(t *testing.T) {
	tests := []struct {
		codec  CompressionCodec
		family CompressionFamily
		level  int
		hasLvl bool
		lz4HC  bool
	}{
		{CodecNone, FamilyNone, 0, false, false},
		{CodecLZ4Fast, FamilyLZ4, 0, false, false},
		{CodecLZ4High, FamilyLZ4, 0, false, true},
		{CodecZstdFast, FamilyZstd, 1, true, false},
		{CodecZstdMedium, FamilyZstd, 6, true, false},
		{CodecZstdHigh, FamilyZstd, 15, true, false},
		{CodecZstdMax, FamilyZstd, 22, true, false},
		{CodecS2, FamilyS2, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.codec.String(), func(t *testing.T) {
			require.True(t, tt.codec.IsValid())
			require.Equal(t, tt.family, tt.codec.Family())

			level, ok := tt.codec.ZstdLevel()
			require.Equal(t, tt.hasLvl, ok)
			require.Equal(t, tt.level, level)
			require.Equal(t, tt.lz4HC, tt.codec.LZ4HighCompression())
		})
	}
}

func TestCompressionCodec_Invalid(t *testing.T) {
	for _, c := range []CompressionCodec{0, 0x9, 0xFF} {
		require.False(t, c.IsValid())
		require.Equal(t, "Unknown", c.String())
		require.Equal(t, "Unknown", c.Family().String())
	}
}

func TestParseCodec(t *testing.T) {
	for _, c := range AllCodecs {
		parsed, err := ParseCodec(c.String())
		require.NoError(t, err)
		require.Equal(t, c, parsed)
	}

	_, err := ParseCodec("brotli")
	require.ErrorIs(t, err, errs.ErrUnknownCodec)
}

func TestParseSerialization(t *testing.T) {
	tests := []struct {
		in   string
		want SerializationFormat
	}{
		{"JSON", SerializationJSON},
		{"json", SerializationJSON},
		{"Binary", SerializationBinary},
		{"bincode", SerializationBinary},
		{"Auto", SerializationAuto},
	}
	for _, tt := range tests {
		got, err := ParseSerialization(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
		require.True(t, got.IsValid())
	}

	_, err := ParseSerialization("xml")
	require.ErrorIs(t, err, errs.ErrUnknownSerialization)
	require.False(t, SerializationFormat(0).IsValid())
	require.Equal(t, "Unknown", SerializationFormat(9).String())
}
