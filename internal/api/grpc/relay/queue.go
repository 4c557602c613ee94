package relay

import (
	"context"
	"errors"
	"time"

	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/domain/room"
	"github.com/oshokin/room-control/internal/logger"
)

// Sender delivers one directive to the control central.
type Sender interface {
	Send(ctx context.Context, d room.Directive) error
}

// errQueueFull is wrapped in the KindQueueFull error.
var errQueueFull = errors.New("relay queue is full")

// Queue buffers directives in front of a Sender so callers never wait on the
// control central. Directives are delivered one at a time in submission order.
type Queue struct {
	// sender performs the delivery.
	sender Sender
	// queue holds directives not yet delivered.
	queue chan room.Directive
	// drainTimeout bounds the delivery of leftovers after Run's context ends.
	drainTimeout time.Duration
}

// NewQueue creates a queue of the given capacity in front of sender.
func NewQueue(sender Sender, size int) *Queue {
	if size <= 0 {
		size = config.DefaultRelayQueueSize
	}

	return &Queue{
		sender:       sender,
		queue:        make(chan room.Directive, size),
		drainTimeout: config.DefaultTimeout,
	}
}

// Send queues d without blocking. A full queue returns a KindQueueFull error.
func (q *Queue) Send(_ context.Context, d room.Directive) error {
	select {
	case q.queue <- d:
		return nil
	default:
		return &Error{Kind: KindQueueFull, Err: errQueueFull}
	}
}

// Len returns the number of directives waiting.
func (q *Queue) Len() int {
	return len(q.queue)
}

// Run delivers queued directives until ctx is done, then tries the leftovers
// within the drain timeout and returns.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case d := <-q.queue:
			q.deliver(ctx, d)
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.drainTimeout)
			q.drain(drainCtx)
			cancel()

			return
		}
	}
}

func (q *Queue) drain(ctx context.Context) {
	for {
		select {
		case d := <-q.queue:
			q.deliver(ctx, d)
		default:
			return
		}
	}
}

func (q *Queue) deliver(ctx context.Context, d room.Directive) {
	if err := q.sender.Send(ctx, d); err != nil {
		logger.ErrorKV(ctx, "Failed to relay directive",
			"room_number", d.RoomKey,
			"directive", d.String(),
			"error", err)
	}
}
