package coordinator

import (
	"time"

	"github.com/oshokin/room-control/internal/domain/policy"
	"github.com/oshokin/room-control/internal/domain/room"
	"github.com/oshokin/room-control/internal/repository/state"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBands sets the comfort bands used by the policy evaluator.
func WithBands(bands policy.Bands) Option {
	return func(c *Coordinator) {
		c.bands = bands
	}
}

// WithPricing sets the actuator ratings and tariff.
func WithPricing(pricing room.Pricing) Option {
	return func(c *Coordinator) {
		c.pricing = pricing
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithEvaluateRejected controls whether rejected readings still go through
// intrusion detection. Enabled by default.
func WithEvaluateRejected(enabled bool) Option {
	return func(c *Coordinator) {
		c.evaluateRejected = enabled
	}
}

// WithStateRepository persists the alarm switch and restores it on start.
func WithStateRepository(repo state.Repository) Option {
	return func(c *Coordinator) {
		c.store = repo
	}
}

// WithDisconnectChannel sets the reply channel stamped on DISCONNECT directives.
func WithDisconnectChannel(channel string) Option {
	return func(c *Coordinator) {
		c.disconnectChannel = channel
	}
}
