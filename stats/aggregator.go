package stats

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fzstream/fzstream/event"
	"github.com/fzstream/fzstream/internal/options"
)

// Aggregator collects Observations into a retention-bounded log and per-event-type
// AggregatedStats. It is safe for concurrent use.
type Aggregator struct {
	cfg    atomic.Pointer[Config]
	logger *zap.Logger
	now    func() time.Time

	logMu sync.Mutex
	log   []Record

	aggMu      sync.Mutex
	aggregated map[event.Type]*AggregatedStats
}

// NewAggregator creates an aggregator with the given configuration.
//
// Returns errs.ErrInvalidRetention when cfg.Retention is negative.
func NewAggregator(cfg Config, opts ...Option) (*Aggregator, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	a := &Aggregator{
		logger:     zap.NewNop(),
		now:        time.Now,
		aggregated: make(map[event.Type]*AggregatedStats),
	}
	a.cfg.Store(&cfg)

	if err := options.Apply(a, opts...); err != nil {
		return nil, err
	}

	return a, nil
}

// Config returns the current configuration.
func (a *Aggregator) Config() Config {
	return *a.cfg.Load()
}

// Enabled reports whether the aggregator is recording.
func (a *Aggregator) Enabled() bool {
	return a.cfg.Load().Enabled
}

// SetConfig replaces the configuration. Recorded data is kept; a shorter
// retention takes effect on the next insert or CleanupExpired.
func (a *Aggregator) SetConfig(cfg Config) error {
	cfg, err := cfg.normalize()
	if err != nil {
		return err
	}
	a.cfg.Store(&cfg)

	return nil
}

// Record adds one observation. It is a no-op when the aggregator is disabled.
func (a *Aggregator) Record(obs Observation) {
	cfg := a.cfg.Load()
	if !cfg.Enabled {
		return
	}

	now := a.now()
	rec := newRecord(obs, now)

	a.withLock(&a.logMu, "log", func() {
		a.log = append(a.log, rec)
		a.pruneLocked(now, cfg.Retention)
	})

	a.withLock(&a.aggMu, "aggregate", func() {
		entry, ok := a.aggregated[rec.EventType]
		if !ok {
			entry = &AggregatedStats{
				EventType:             rec.EventType,
				BestCompressionMethod: rec.Codec,
			}
			a.aggregated[rec.EventType] = entry
		}
		entry.add(&rec)
	})

	if cfg.Verbose {
		a.logReport(&rec)
	}
}

// Snapshot returns a copy of the per-event-type statistics, keyed by event type.
func (a *Aggregator) Snapshot() map[event.Type]AggregatedStats {
	if !a.Enabled() {
		return map[event.Type]AggregatedStats{}
	}

	var out map[event.Type]AggregatedStats
	a.withLock(&a.aggMu, "snapshot", func() {
		out = make(map[event.Type]AggregatedStats, len(a.aggregated))
		for k, v := range a.aggregated {
			out[k] = *v
		}
	})

	if out == nil {
		out = map[event.Type]AggregatedStats{}
	}

	return out
}

// Recent returns up to limit detailed records for eventType, newest first.
func (a *Aggregator) Recent(eventType event.Type, limit int) []Record {
	if limit <= 0 || !a.Enabled() {
		return nil
	}

	var out []Record
	a.withLock(&a.logMu, "recent", func() {
		for i := len(a.log) - 1; i >= 0 && len(out) < limit; i-- {
			if a.log[i].EventType == eventType {
				out = append(out, a.log[i].clone())
			}
		}
	})

	return out
}

// CleanupExpired drops detailed records older than the retention window.
// Intended to be called periodically by the owner of the aggregator.
func (a *Aggregator) CleanupExpired() {
	cfg := a.cfg.Load()
	if !cfg.Enabled {
		return
	}

	now := a.now()
	a.withLock(&a.logMu, "cleanup", func() {
		a.pruneLocked(now, cfg.Retention)
	})
}

// pruneLocked keeps records with now - timestamp < retention. Callers hold logMu.
func (a *Aggregator) pruneLocked(now time.Time, retention time.Duration) {
	a.log = slices.DeleteFunc(a.log, func(r Record) bool {
		return now.Sub(r.Timestamp) >= retention
	})
}

// withLock runs fn holding mu. A panic in fn is recovered and logged so the lock
// is released and later callers proceed with the last committed state.
func (a *Aggregator) withLock(mu *sync.Mutex, section string, fn func()) {
	mu.Lock()
	defer func() {
		mu.Unlock()
		if r := recover(); r != nil {
			a.logger.Warn("recovered panic in statistics critical section",
				zap.String("section", section),
				zap.Any("panic", r))
		}
	}()

	fn()
}
