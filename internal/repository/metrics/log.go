package metrics

import (
	"context"
	"maps"
	"slices"

	"github.com/oshokin/room-control/internal/logger"
)

// LogSink writes samples to the service log at debug level.
type LogSink struct{}

// NewLogSink returns a sink that only logs.
func NewLogSink() *LogSink {
	return new(LogSink)
}

// Write logs the sample with its fields in a stable order.
func (*LogSink) Write(ctx context.Context, s Sample) error {
	kvs := make([]any, 0, 2*(len(s.Fields)+1))
	kvs = append(kvs, TagRoomNumber, s.RoomNumber())

	for _, name := range slices.Sorted(maps.Keys(s.Fields)) {
		kvs = append(kvs, name, s.Fields[name])
	}

	logger.DebugKV(ctx, "Sample "+s.Measurement, kvs...)

	return nil
}

// Close is a no-op.
func (*LogSink) Close() error {
	return nil
}
