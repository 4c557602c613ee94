package simulator

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oshokin/room-control/internal/domain/room"
)

const (
	// acStep is the temperature change per tick of a running air conditioner.
	acStep = 0.5
	// hcStep is the humidity change per tick of a running humidity controller.
	hcStep = 5
)

// Room is the simulated state of one room.
type Room struct {
	key  room.Key
	kind room.SensorKind
	rnd  *rand.Rand

	mu          sync.Mutex
	temperature float64
	humidity    float64
	motion      bool
	acAction    room.Action
	hcAction    room.Action
}

// NewRoom starts a room at a random comfortable climate.
func NewRoom(key room.Key, kind room.SensorKind, rnd *rand.Rand) *Room {
	return &Room{
		key:         key,
		kind:        kind,
		rnd:         rnd,
		temperature: 20 + rnd.Float64()*5,
		humidity:    40 + rnd.Float64()*20,
		acAction:    room.ActionOff,
		hcAction:    room.ActionOff,
	}
}

// Step advances the climate by one tick.
func (r *Room) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.acAction {
	case room.ActionLower:
		r.temperature -= acStep
	case room.ActionRaise:
		r.temperature += acStep
	default:
		r.temperature += r.uniform(-0.1, 0.5)
	}

	switch r.hcAction {
	case room.ActionLower:
		r.humidity -= hcStep
	case room.ActionRaise:
		r.humidity += hcStep
	default:
		r.humidity += r.uniform(-5, 10)
	}

	r.humidity = min(max(r.humidity, 0), 100)
}

// ToggleMotion flips the motion sensor.
func (r *Room) ToggleMotion() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.motion = !r.motion
}

// Apply follows an actuator command. Commands for other rooms are ignored.
// It reports whether the command was for this room.
func (r *Room) Apply(d room.Directive) bool {
	if d.RoomKey != r.key || d.Kind != room.KindClimateAdjust {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch d.Axis {
	case room.AxisAC:
		r.acAction = d.Action
	case room.AxisHumidity:
		r.hcAction = d.Action
	default:
		return false
	}

	return true
}

// Reading renders the current state as telemetry in the room's sensor unit.
func (r *Room) Reading(at time.Time) room.Telemetry {
	r.mu.Lock()
	defer r.mu.Unlock()

	temperature := r.temperature
	if r.kind == room.SensorFahrenheit {
		temperature = temperature*9/5 + 32
	}

	return room.Telemetry{
		RoomKey:            r.key,
		Temperature:        round2(temperature),
		Humidity:           round2(r.humidity),
		SensorKind:         r.kind,
		ACActive:           r.acAction != room.ActionOff,
		HumidityCtrlActive: r.hcAction != room.ActionOff,
		MotionDetected:     r.motion,
		ObservedAt:         at.Truncate(time.Second),
	}
}

func (r *Room) uniform(lo, hi float64) float64 {
	return lo + r.rnd.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	const scale = 100

	if v < 0 {
		return -round2(-v)
	}

	return float64(int64(v*scale+0.5)) / scale
}
