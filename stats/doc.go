// Package stats aggregates compression observations per event type.
//
// Producers call Aggregator.Record each time they make an encode decision. The
// aggregator keeps a detailed log bounded by a retention window and a rolling
// AggregatedStats entry per event type:
//
//	agg, err := stats.NewAggregator(stats.Config{Enabled: true, Retention: time.Hour},
//		stats.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	agg.Record(stats.Observation{EventType: event.Of(event.KindPumpFunTrade), StructSize: 312, FinalSize: 141, Codec: "LZ4Fast"})
//	snapshot := agg.Snapshot()
//
// A disabled aggregator returns from every method before taking a lock or
// allocating, so it can stay wired into hot paths.
//
// The detailed log and the aggregate table are guarded by separate mutexes. A panic
// inside either critical section releases the lock and is logged; later calls see
// the last committed state.
package stats
