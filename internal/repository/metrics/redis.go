package metrics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// errRedisAddrRequired is returned when no Redis address is configured.
var errRedisAddrRequired = errors.New("redis address must be provided")

// RedisOptions configures OpenRedis.
type RedisOptions struct {
	// Addr is host:port.
	Addr string
	// Password is optional.
	Password string
	// DB selects the database.
	DB int
	// Prefix is prepended to the measurement to name the stream.
	Prefix string
	// Timeout bounds every write.
	Timeout time.Duration
}

// RedisSink appends samples to one Redis stream per measurement.
type RedisSink struct {
	// client is the Redis connection.
	client *redis.Client
	// prefix names the streams.
	prefix string
	// timeout bounds every write.
	timeout time.Duration
}

// OpenRedis connects and checks the connection.
func OpenRedis(ctx context.Context, opts RedisOptions) (*RedisSink, error) {
	if opts.Addr == "" {
		return nil, errRedisAddrRequired
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	sink := NewRedisSink(client, opts.Prefix, opts.Timeout)

	pingCtx, cancel := sink.callContext(ctx)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	return sink, nil
}

// NewRedisSink wraps an existing client.
func NewRedisSink(client *redis.Client, prefix string, timeout time.Duration) *RedisSink {
	return &RedisSink{
		client:  client,
		prefix:  prefix,
		timeout: timeout,
	}
}

// Stream returns the stream name of a measurement.
func (r *RedisSink) Stream(measurement string) string {
	if r.prefix == "" {
		return measurement
	}

	return r.prefix + ":" + measurement
}

// Write appends the sample; tags, fields and the timestamp become stream entry values.
func (r *RedisSink) Write(ctx context.Context, s Sample) error {
	values := make(map[string]any, len(s.Tags)+len(s.Fields)+1)

	for name, value := range s.Tags {
		values[name] = value
	}

	for name, value := range s.Fields {
		values[name] = formatField(value)
	}

	values["time"] = s.Time.UTC().Format(time.RFC3339Nano)

	ctx, cancel := r.callContext(ctx)
	defer cancel()

	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.Stream(s.Measurement),
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("append %s sample: %w", s.Measurement, err)
	}

	return nil
}

// Close closes the client.
func (r *RedisSink) Close() error {
	return r.client.Close()
}

func (r *RedisSink) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, r.timeout)
}

// formatField renders a field value the way stream consumers parse it back.
func formatField(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
