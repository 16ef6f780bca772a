package fzstream

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/fzstream/fzstream/compress"
	"github.com/fzstream/fzstream/envelope"
	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/event"
	"github.com/fzstream/fzstream/format"
	"github.com/fzstream/fzstream/internal/options"
	"github.com/fzstream/fzstream/serialize"
	"github.com/fzstream/fzstream/stats"
)

// Producer serializes domain objects into envelopes and reports each encode
// decision to an optional stats.Aggregator. It is safe for concurrent use.
type Producer struct {
	serialization   format.SerializationFormat
	codec           format.CompressionCodec
	candidates      []format.CompressionCodec
	minCompressSize int
	stats           *stats.Aggregator
	logger          *zap.Logger
}

// ProducerOption configures a Producer.
type ProducerOption = options.Option[*Producer]

// WithSerialization sets the serialization format. The default is format.SerializationAuto.
func WithSerialization(f format.SerializationFormat) ProducerOption {
	return options.New(func(p *Producer) error {
		if !f.IsValid() {
			return fmt.Errorf("%w: %d", errs.ErrUnknownSerialization, f)
		}
		p.serialization = f

		return nil
	})
}

// WithCodec sets the codec applied to payloads. The default is envelope.DefaultCodec.
func WithCodec(codec format.CompressionCodec) ProducerOption {
	return options.New(func(p *Producer) error {
		if !codec.IsValid() {
			return fmt.Errorf("%w: %d", errs.ErrUnknownCodec, codec)
		}
		p.codec = codec

		return nil
	})
}

// WithCandidates sets the codecs trialled for statistics. Trials run only while
// the aggregator is enabled. The default is format.AllCodecs.
func WithCandidates(codecs ...format.CompressionCodec) ProducerOption {
	return options.New(func(p *Producer) error {
		for _, c := range codecs {
			if !c.IsValid() {
				return fmt.Errorf("%w: %d", errs.ErrUnknownCodec, c)
			}
		}
		p.candidates = slices.Clone(codecs)

		return nil
	})
}

// WithMinCompressSize skips compression for payloads shorter than n bytes.
func WithMinCompressSize(n int) ProducerOption {
	return options.NoError(func(p *Producer) {
		p.minCompressSize = n
	})
}

// WithStats sets the aggregator that receives an observation per produced envelope.
func WithStats(agg *stats.Aggregator) ProducerOption {
	return options.NoError(func(p *Producer) {
		p.stats = agg
	})
}

// WithLogger sets the producer logger.
func WithLogger(logger *zap.Logger) ProducerOption {
	return options.NoError(func(p *Producer) {
		if logger != nil {
			p.logger = logger
		}
	})
}

// NewProducer creates a producer.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	p := &Producer{
		serialization: format.SerializationAuto,
		codec:         envelope.DefaultCodec,
		candidates:    slices.Clone(format.AllCodecs),
		logger:        zap.NewNop(),
	}
	if err := options.Apply(p, opts...); err != nil {
		return nil, err
	}

	return p, nil
}

// Produce serializes v and wraps it in an envelope of the given event type.
//
// The arrival time is the call time and the parsing time is when serialization
// finished, unless opts override them. Statistics failures are logged, never returned.
func (p *Producer) Produce(eventType event.Type, v any, opts ...envelope.Option) (*envelope.Envelope, error) {
	arrival := time.Now().UnixMicro()

	raw, used, err := serialize.Marshal(v, p.serialization)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", eventType, err)
	}
	parsed := time.Now().UnixMicro()

	envOpts := make([]envelope.Option, 0, 5+len(opts))
	envOpts = append(envOpts,
		envelope.WithSerialization(used),
		envelope.WithCompression(p.codec),
		envelope.WithMinCompressSize(p.minCompressSize),
		envelope.WithArrivalTime(arrival),
		envelope.WithParsingTime(parsed),
	)
	envOpts = append(envOpts, opts...)

	env, err := envelope.New(eventType, raw, envOpts...)
	if err != nil {
		return nil, err
	}

	if p.stats != nil && p.stats.Enabled() {
		p.observe(eventType, v, raw, env)
	}

	return env, nil
}

func (p *Producer) observe(eventType event.Type, v any, raw []byte, env *envelope.Envelope) {
	sizes, err := serialize.Measure(v)
	if err != nil {
		p.logger.Warn("skipping compression statistics",
			zap.Stringer("event_type", eventType),
			zap.Error(err))

		return
	}

	results := compress.Trial(raw, p.candidates...)
	trials := make([]stats.TrialResult, 0, len(results))
	for _, r := range results {
		trials = append(trials, stats.TrialResult{
			Name:         r.Codec.String(),
			Size:         int(r.CompressedSize),
			SavedPercent: r.SpaceSavings(),
		})
	}

	p.stats.Record(stats.Observation{
		EventType:      eventType,
		StructSize:     sizes.Struct,
		BinarySize:     sizes.Binary,
		JSONSize:       sizes.JSON,
		SerializedSize: len(raw),
		Trials:         trials,
		FinalSize:      len(env.Payload()),
		Codec:          env.Codec().String(),
	})
}
