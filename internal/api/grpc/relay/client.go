package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/oshokin/room-control/internal/api/message"
	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/domain/room"
	"github.com/oshokin/room-control/internal/logger"
)

// Client sends directives to the control central.
type Client struct {
	// conn is the underlying gRPC connection to the control central.
	conn *grpc.ClientConn

	// callTimeout bounds a single attempt.
	callTimeout time.Duration
	// attempts is the maximum number of tries per directive.
	attempts int
	// backoff is the pause between attempts.
	backoff time.Duration
	// userAgent is announced to the server.
	userAgent string
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets the timeout of a single attempt.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithRetry sets the attempt budget and the pause between attempts.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}

		if backoff >= 0 {
			c.backoff = backoff
		}
	}
}

// WithUserAgent sets the gRPC user agent.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial prepares a connection to the control central. The connection is
// established lazily, so an unreachable peer surfaces on the first Send.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: config.DefaultTimeout,
		attempts:    config.DefaultRelayAttempts,
		backoff:     config.DefaultRelayBackoff,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialOpts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if client.userAgent != "" {
		dialOpts = append(dialOpts, grpc.WithUserAgent(client.userAgent))
	}

	conn, err := grpc.NewClient(address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial control central: %w", err)
	}

	client.conn = conn

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Send encodes the directive and delivers it, retrying transient failures.
// Every failure is returned as *Error.
func (c *Client) Send(ctx context.Context, d room.Directive) error {
	control, err := message.EncodeDirective(d)
	if err != nil {
		return &Error{Kind: KindSerialization, Err: err}
	}

	request, err := toStruct(control)
	if err != nil {
		return &Error{Kind: KindSerialization, Err: err}
	}

	var (
		lastErr  error
		lastKind ErrorKind
		attempt  int
	)

	for attempt = 1; attempt <= c.attempts; attempt++ {
		lastErr = c.invoke(ctx, request)
		if lastErr == nil {
			return nil
		}

		lastKind = classify(lastErr)
		if !lastKind.retryable() || attempt == c.attempts {
			break
		}

		logger.DebugKV(ctx, "Relay attempt failed, retrying",
			"directive", d.String(),
			"attempt", attempt,
			"kind", lastKind.String(),
			"error", lastErr)

		if err := sleep(ctx, c.backoff); err != nil {
			break
		}
	}

	return &Error{
		Kind:     lastKind,
		Attempts: min(attempt, c.attempts),
		Err:      lastErr,
	}
}

// invoke performs one bounded attempt.
func (c *Client) invoke(ctx context.Context, request any) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.conn.Invoke(callCtx, sendMethod, request, new(emptypb.Empty)); err != nil {
		return fmt.Errorf("send directive: %w", err)
	}

	return nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
