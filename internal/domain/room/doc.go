// Package room holds the value types exchanged with rooms (Telemetry, Directive)
// and the mutable per-room Record with its cost and energy accumulators.
package room
