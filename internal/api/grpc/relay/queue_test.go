package relay

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/room-control/internal/domain/room"
)

// slowSender blocks every delivery until release is closed.
type slowSender struct {
	release chan struct{}

	mu        sync.Mutex
	delivered []room.Key
}

func (s *slowSender) Send(ctx context.Context, d room.Directive) error {
	select {
	case <-s.release:
	default:
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.delivered = append(s.delivered, d.RoomKey)

	return nil
}

func (s *slowSender) keys() []room.Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]room.Key(nil), s.delivered...)
}

// TestQueue_SendDoesNotWaitForCentral checks a stalled central never blocks the caller.
func TestQueue_SendDoesNotWaitForCentral(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		sender := &slowSender{release: make(chan struct{})}
		q := NewQueue(sender, 2)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		go func() {
			defer close(done)

			q.Run(ctx)
		}()

		// The worker holds the first directive, the next two fill the queue.
		require.NoError(t, q.Send(ctx, room.Disconnect("1")))
		synctest.Wait()
		require.NoError(t, q.Send(ctx, room.Disconnect("2")))
		require.NoError(t, q.Send(ctx, room.Disconnect("3")))

		err := q.Send(ctx, room.Disconnect("4"))
		require.True(t, IsKind(err, KindQueueFull))
		require.Equal(t, 2, q.Len())

		close(sender.release)
		synctest.Wait()
		require.Equal(t, []room.Key{"1", "2", "3"}, sender.keys())

		cancel()
		<-done
	})
}

// TestQueue_DrainIsBounded checks leftovers are attempted on shutdown without hanging on a dead central.
func TestQueue_DrainIsBounded(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		sender := &slowSender{release: make(chan struct{})}
		q := NewQueue(sender, 4)

		require.NoError(t, q.Send(context.Background(), room.Disconnect("1")))
		require.NoError(t, q.Send(context.Background(), room.Disconnect("2")))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		q.Run(ctx)

		require.LessOrEqual(t, time.Since(start), q.drainTimeout)
		require.Empty(t, sender.keys())
		require.Zero(t, q.Len())
	})
}

// TestQueue_DeliversLeftoversOnShutdown checks queued directives still reach a live central after cancellation.
func TestQueue_DeliversLeftoversOnShutdown(t *testing.T) {
	t.Parallel()

	sender := &slowSender{release: make(chan struct{})}
	close(sender.release)

	q := NewQueue(sender, 4)

	require.NoError(t, q.Send(context.Background(), room.Disconnect("1")))
	require.NoError(t, q.Send(context.Background(), room.Disconnect("2")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q.Run(ctx)

	require.Equal(t, []room.Key{"1", "2"}, sender.keys())
}
