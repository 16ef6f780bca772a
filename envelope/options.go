package envelope

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/format"
	"github.com/fzstream/fzstream/internal/options"
)

// DefaultCodec is the codec requested when WithCompression is not given.
const DefaultCodec = format.CodecLZ4Fast

// DefaultSerialization is the serialization declared when WithSerialization is not given.
const DefaultSerialization = format.SerializationBinary

// Config holds the producer-side inputs of envelope construction.
type Config struct {
	ID              string
	CreatedAt       time.Time
	Serialization   format.SerializationFormat
	Codec           format.CompressionCodec
	MinCompressSize int

	arrival, parsing, completion int64
	hasArrival                   bool
	hasParsing                   bool
	hasCompletion                bool

	now func() time.Time
}

// Option configures envelope construction.
type Option = options.Option[*Config]

// WithID sets the envelope id. The default is a random UUID.
func WithID(id string) Option {
	return options.NoError(func(c *Config) {
		c.ID = id
	})
}

// WithCreatedAt sets the creation time. The default is the construction time.
func WithCreatedAt(t time.Time) Option {
	return options.NoError(func(c *Config) {
		c.CreatedAt = t
	})
}

// WithSerialization declares how the payload was serialized.
func WithSerialization(s format.SerializationFormat) Option {
	return options.New(func(c *Config) error {
		if !s.IsValid() {
			return fmt.Errorf("%w: %d", errs.ErrUnknownSerialization, s)
		}
		c.Serialization = s

		return nil
	})
}

// WithCompression sets the requested codec. format.CodecNone disables compression.
func WithCompression(codec format.CompressionCodec) Option {
	return options.New(func(c *Config) error {
		if !codec.IsValid() {
			return fmt.Errorf("%w: %d", errs.ErrUnknownCodec, codec)
		}
		c.Codec = codec

		return nil
	})
}

// WithMinCompressSize skips the compression attempt for payloads shorter than n bytes.
func WithMinCompressSize(n int) Option {
	return options.NoError(func(c *Config) {
		c.MinCompressSize = n
	})
}

// WithTimestamps sets the three producer-side timestamps.
func WithTimestamps(arrival, parsing, completion time.Time) Option {
	return options.NoError(func(c *Config) {
		c.setArrival(arrival.UnixMicro())
		c.setParsing(parsing.UnixMicro())
		c.setCompletion(completion.UnixMicro())
	})
}

// WithArrivalTime sets the time the raw event reached the producer, in Unix microseconds.
func WithArrivalTime(micros int64) Option {
	return options.NoError(func(c *Config) { c.setArrival(micros) })
}

// WithParsingTime sets the time the producer finished parsing the event, in Unix microseconds.
func WithParsingTime(micros int64) Option {
	return options.NoError(func(c *Config) { c.setParsing(micros) })
}

// WithCompletionTime sets the time the producer finished building the envelope, in Unix microseconds.
func WithCompletionTime(micros int64) Option {
	return options.NoError(func(c *Config) { c.setCompletion(micros) })
}

// WithClock replaces time.Now as the source of default timestamps.
// The completion default is read after the payload has been compressed.
func WithClock(now func() time.Time) Option {
	return options.NoError(func(c *Config) {
		if now != nil {
			c.now = now
		}
	})
}

func (c *Config) setArrival(v int64)    { c.arrival, c.hasArrival = v, true }
func (c *Config) setParsing(v int64)    { c.parsing, c.hasParsing = v, true }
func (c *Config) setCompletion(v int64) { c.completion, c.hasCompletion = v, true }

func newConfig(opts []Option) (*Config, error) {
	cfg := &Config{
		Serialization: DefaultSerialization,
		Codec:         DefaultCodec,
		now:           time.Now,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	now := cfg.now()
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	// unspecified arrival and parsing are captured now, completion once the payload is final
	if !cfg.hasArrival {
		cfg.arrival = now.UnixMicro()
	}
	if !cfg.hasParsing {
		cfg.parsing = now.UnixMicro()
	}

	return cfg, nil
}

// DecodeConfig bounds what Unmarshal and Decode accept.
type DecodeConfig struct {
	MaxPayloadSize int
}

// DecodeOption configures envelope decoding.
type DecodeOption = options.Option[*DecodeConfig]

// WithMaxPayloadSize rejects envelopes whose declared payload or original size exceeds n bytes.
func WithMaxPayloadSize(n int) DecodeOption {
	return options.New(func(c *DecodeConfig) error {
		if n <= 0 {
			return fmt.Errorf("max payload size must be positive, got %d", n)
		}
		c.MaxPayloadSize = n

		return nil
	})
}

func newDecodeConfig(opts []DecodeOption) (*DecodeConfig, error) {
	cfg := &DecodeConfig{MaxPayloadSize: DefaultMaxPayloadSize}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}
