package stats

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/fzstream/fzstream/event"
)

func (a *Aggregator) logReport(rec *Record) {
	fields := []zap.Field{
		zap.Stringer("event_type", rec.EventType),
		zap.Int("struct_size", rec.StructSize),
		zap.Int("binary_size", rec.BinarySize),
		zap.Int("json_size", rec.JSONSize),
		zap.String("best_serialization", rec.BestSerialization()),
		zap.Int("serialized_size", rec.SerializedSize),
		zap.Objects("trials", rec.Trials),
		zap.String("codec", rec.Codec),
		zap.Int("final_size", rec.FinalSize),
		zap.Int("total_saving", rec.TotalSaving),
		zap.Float64("total_ratio", rec.TotalRatio),
	}
	if best, ok := rec.BestTrial(); ok && best.Name != rec.Codec {
		fields = append(fields,
			zap.String("best_trial", best.Name),
			zap.Int("potential_saving", rec.FinalSize-best.Size))
	}

	a.logger.Info("compression statistics", fields...)
}

// WriteReport writes a human-readable report of one record to w.
func WriteReport(w io.Writer, rec Record) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s compression report:\n", rec.EventType)
	fmt.Fprintf(&b, "  struct size: %d bytes (in memory)\n", rec.StructSize)
	fmt.Fprintf(&b, "  serialization: Binary %d bytes, JSON %d bytes, chose %s (%d bytes)\n",
		rec.BinarySize, rec.JSONSize, rec.BestSerialization(), rec.SerializedSize)

	switch {
	case rec.SerializedSize == rec.StructSize || rec.StructSize == 0:
		fmt.Fprintf(&b, "  serialized: %d bytes (unchanged)\n", rec.SerializedSize)
	case rec.SerializedSize > rec.StructSize:
		d := rec.SerializedSize - rec.StructSize
		fmt.Fprintf(&b, "  serialized: %d bytes (+%d bytes, +%.1f%%)\n",
			rec.SerializedSize, d, float64(d)/float64(rec.StructSize)*100)
	default:
		d := rec.StructSize - rec.SerializedSize
		fmt.Fprintf(&b, "  serialized: %d bytes (-%d bytes, -%.1f%%)\n",
			rec.SerializedSize, d, float64(d)/float64(rec.StructSize)*100)
	}

	fmt.Fprintf(&b, "  codecs (input %d bytes):\n", rec.SerializedSize)
	for _, t := range rec.Trials {
		if t.Size == rec.SerializedSize {
			fmt.Fprintf(&b, "    %s: %d bytes (no gain)\n", t.Name, t.Size)
			continue
		}
		fmt.Fprintf(&b, "    %s: %d bytes (saved %d bytes, %.1f%%)\n",
			t.Name, t.Size, rec.SerializedSize-t.Size, t.SavedPercent)
	}

	fmt.Fprintf(&b, "  applied: %s (%d bytes)\n", rec.Codec, rec.FinalSize)
	if rec.TotalSaving > 0 {
		fmt.Fprintf(&b, "  total saved: %d bytes (%.1f%%)\n", rec.TotalSaving, rec.TotalRatio)
	} else {
		fmt.Fprintf(&b, "  total added: %d bytes (%.1f%%)\n", -rec.TotalSaving, -rec.TotalRatio)
	}

	if best, ok := rec.BestTrial(); ok {
		if best.Name == rec.Codec {
			fmt.Fprintf(&b, "  %s is the smallest option for this event\n", rec.Codec)
		} else if extra := rec.FinalSize - best.Size; extra > 0 {
			fmt.Fprintf(&b, "  %s would save %d more bytes\n", best.Name, extra)
		}
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// WriteSummary writes the per-event-type statistics to w, sorted by event type.
// It writes nothing when the aggregator is disabled.
func (a *Aggregator) WriteSummary(w io.Writer) error {
	if !a.Enabled() {
		return nil
	}

	snapshot := a.Snapshot()
	if len(snapshot) == 0 {
		_, err := io.WriteString(w, "compression summary: no data\n")
		return err
	}

	keys := make([]event.Type, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(x, y event.Type) int {
		return strings.Compare(x.String(), y.String())
	})

	var b strings.Builder
	b.WriteString("compression summary\n")
	b.WriteString("==========================================\n")
	for _, k := range keys {
		s := snapshot[k]
		fmt.Fprintf(&b, "event type: %s\n", k)
		fmt.Fprintf(&b, "  events: %d\n", s.TotalEvents)
		fmt.Fprintf(&b, "  avg struct size: %.1f bytes\n", s.AvgStructSize)
		fmt.Fprintf(&b, "  avg saving: %.1f%%\n", s.AvgCompressionRatio)
		fmt.Fprintf(&b, "  best codec: %s\n", s.BestCompressionMethod)
		fmt.Fprintf(&b, "  bytes saved: %d\n", s.TotalBytesSaved)
		b.WriteString("  ------------------------------------------\n")
	}

	_, err := io.WriteString(w, b.String())

	return err
}
