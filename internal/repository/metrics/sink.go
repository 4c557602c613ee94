package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/room-control/internal/config"
)

// Sink persists samples.
type Sink interface {
	// Write persists one sample.
	Write(ctx context.Context, s Sample) error
	// Close releases the underlying connection.
	Close() error
}

// errUnknownDriver is returned for a driver New does not know.
var errUnknownDriver = errors.New("unknown metrics driver")

// New builds the sink selected by cfg.Driver.
//
//nolint:ireturn // The driver is chosen at runtime.
func New(ctx context.Context, cfg config.MetricsConfig) (Sink, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	switch cfg.Driver {
	case "", config.MetricsDriverLog:
		return NewLogSink(), nil
	case config.MetricsDriverPostgres:
		table := cfg.Table
		if table == "" {
			table = config.DefaultMetricsTable
		}

		return OpenPostgres(ctx, cfg.DSN, table, timeout)
	case config.MetricsDriverRedis:
		prefix := cfg.StreamPrefix
		if prefix == "" {
			prefix = config.DefaultStreamPrefix
		}

		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   prefix,
			Timeout:  timeout,
		})
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownDriver, cfg.Driver)
	}
}
