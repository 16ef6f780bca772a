package stats

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/internal/options"
)

// DefaultRetention is the retention window used when Config.Retention is zero.
const DefaultRetention = time.Hour

// Config controls an Aggregator.
type Config struct {
	// Enabled turns recording on. A disabled aggregator ignores every call.
	Enabled bool
	// Verbose logs a structured report for each recorded observation.
	Verbose bool
	// Retention bounds the age of detailed records. Zero means DefaultRetention.
	Retention time.Duration
}

// DefaultConfig returns a disabled, non-verbose configuration with DefaultRetention.
func DefaultConfig() Config {
	return Config{Retention: DefaultRetention}
}

func (c Config) normalize() (Config, error) {
	if c.Retention < 0 {
		return c, fmt.Errorf("%w: %s", errs.ErrInvalidRetention, c.Retention)
	}
	if c.Retention == 0 {
		c.Retention = DefaultRetention
	}

	return c, nil
}

// Option configures an Aggregator at construction.
type Option = options.Option[*Aggregator]

// WithLogger sets the logger for verbose reports and recovered panics.
// A nil logger keeps the no-op default.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	})
}

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return options.New(func(a *Aggregator) error {
		if now == nil {
			return errors.New("stats: nil clock")
		}
		a.now = now

		return nil
	})
}
