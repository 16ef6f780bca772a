package stats

import (
	"slices"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/fzstream/fzstream/event"
)

// TrialResult is the outcome of evaluating one candidate codec.
type TrialResult struct {
	// Name is the codec name, e.g. "ZstdHigh".
	Name string
	// Size is the compressed size in bytes.
	Size int
	// SavedPercent is the space saved relative to the serialized input, in percent.
	SavedPercent float64
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r TrialResult) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("name", r.Name)
	enc.AddInt("size", r.Size)
	enc.AddFloat64("saved_percent", r.SavedPercent)

	return nil
}

// Observation is what a producer reports about one encode decision.
type Observation struct {
	EventType event.Type
	// StructSize is the in-memory size of the domain object.
	StructSize int
	// BinarySize and JSONSize are the sizes of the two serialization candidates.
	BinarySize int
	JSONSize   int
	// SerializedSize is the size of the serialization actually chosen.
	SerializedSize int
	// Trials lists the evaluated codecs in evaluation order.
	Trials []TrialResult
	// FinalSize is the payload size stored in the envelope.
	FinalSize int
	// Codec names the codec actually applied.
	Codec string
}

// Record is a detailed log entry derived from an Observation.
type Record struct {
	Observation

	// TotalSaving is StructSize - FinalSize; negative when encoding grew the data.
	TotalSaving int
	// TotalRatio is TotalSaving / StructSize in percent, 0 when StructSize is 0.
	TotalRatio float64
	Timestamp  time.Time
}

func newRecord(obs Observation, now time.Time) Record {
	rec := Record{
		Observation: obs,
		TotalSaving: obs.StructSize - obs.FinalSize,
		Timestamp:   now,
	}
	rec.Trials = slices.Clone(obs.Trials)
	if obs.StructSize > 0 {
		rec.TotalRatio = float64(rec.TotalSaving) / float64(obs.StructSize) * 100
	}

	return rec
}

func (r Record) clone() Record {
	r.Trials = slices.Clone(r.Trials)
	return r
}

// BestTrial returns the trial with the smallest size. Ties go to the earliest trial.
func (r Record) BestTrial() (TrialResult, bool) {
	if len(r.Trials) == 0 {
		return TrialResult{}, false
	}

	best := r.Trials[0]
	for _, t := range r.Trials[1:] {
		if t.Size < best.Size {
			best = t
		}
	}

	return best, true
}

// BestSerialization names the smaller serialization candidate, Binary on ties.
func (r Record) BestSerialization() string {
	if r.BinarySize <= r.JSONSize {
		return "Binary"
	}

	return "JSON"
}

// AggregatedStats is the rolling summary for one event type.
type AggregatedStats struct {
	EventType   event.Type
	TotalEvents uint64
	// AvgStructSize is the running mean of Observation.StructSize.
	AvgStructSize float64
	// AvgCompressionRatio is the running mean of Record.TotalRatio, in percent.
	AvgCompressionRatio float64
	// BestCompressionMethod is the best trial of the latest observation that had trials.
	BestCompressionMethod string
	// TotalBytesSaved sums the positive savings only.
	TotalBytesSaved uint64
	LastUpdated     time.Time
}

func (s *AggregatedStats) add(rec *Record) {
	s.TotalEvents++
	n := float64(s.TotalEvents)
	s.AvgStructSize = (s.AvgStructSize*(n-1) + float64(rec.StructSize)) / n
	s.AvgCompressionRatio = (s.AvgCompressionRatio*(n-1) + rec.TotalRatio) / n

	if rec.TotalSaving > 0 {
		s.TotalBytesSaved += uint64(rec.TotalSaving)
	}
	if best, ok := rec.BestTrial(); ok {
		s.BestCompressionMethod = best.Name
	}
	s.LastUpdated = rec.Timestamp
}
