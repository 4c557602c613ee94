package coordinator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/oshokin/room-control/internal/domain/alarm"
	"github.com/oshokin/room-control/internal/domain/policy"
	"github.com/oshokin/room-control/internal/domain/room"
	"github.com/oshokin/room-control/internal/logger"
	"github.com/oshokin/room-control/internal/repository/metrics"
	"github.com/oshokin/room-control/internal/repository/state"
)

// Relay delivers directives to the control central.
type Relay interface {
	Send(ctx context.Context, d room.Directive) error
}

// Sink persists metric samples.
type Sink interface {
	Write(ctx context.Context, s metrics.Sample) error
}

// entry guards one room record.
type entry struct {
	mu  sync.Mutex
	rec *room.Record
}

// Coordinator owns the room map and the alarm switch.
type Coordinator struct {
	// relay receives every directive.
	relay Relay
	// sink receives every sample.
	sink Sink
	// store persists the alarm switch, nil when persistence is off.
	store state.Repository

	// bands feed the policy evaluator.
	bands policy.Bands
	// pricing feeds the accrual.
	pricing room.Pricing
	// evaluateRejected runs intrusion detection on rejected readings too.
	evaluateRejected bool
	// disconnectChannel is the reply channel of DISCONNECT directives.
	disconnectChannel string
	// now is the clock.
	now func() time.Time

	// mu guards rooms; each entry has its own lock.
	mu    sync.RWMutex
	rooms map[room.Key]*entry

	// alarmMu guards alarm.
	alarmMu sync.RWMutex
	alarm   *alarm.State
	// persistMu serialises writes of the alarm switch.
	persistMu sync.Mutex
}

// New creates a coordinator. The alarm switch starts armed unless the state
// repository holds a saved value.
func New(ctx context.Context, relay Relay, sink Sink, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		relay:   relay,
		sink:    sink,
		bands:            policy.DefaultBands(),
		pricing:          room.DefaultPricing(),
		now:              time.Now,
		evaluateRejected: true,
		rooms:            make(map[room.Key]*entry),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.sink == nil {
		c.sink = metrics.NewLogSink()
	}

	c.alarm = alarm.Initial(c.now())

	if c.store == nil {
		return c, nil
	}

	saved, err := c.store.Load(ctx)

	switch {
	case err == nil:
		if saved != nil {
			c.alarm = saved
		}
	case errors.Is(err, state.ErrNotFound):
		// Keep default state.
	default:
		return nil, fmt.Errorf("load alarm state: %w", err)
	}

	logger.InfoKV(ctx, "Alarm switch restored", "is_armed", c.alarm.IsArmed, "actor", c.alarm.LastActor)

	return c, nil
}

// Ingest applies one reading and returns the directives it produced, already
// stamped with replyTo. Relay and sink failures are joined into the returned
// error; the directives are returned either way.
func (c *Coordinator) Ingest(ctx context.Context, t room.Telemetry, replyTo string) ([]room.Directive, error) {
	now := c.now()
	if t.ObservedAt.IsZero() {
		t.ObservedAt = now
	}

	sw := c.AlarmState()
	armed := sw.IsArmed

	var (
		directives []room.Directive
		samples    []metrics.Sample
	)

	if !t.SensorKind.Valid() {
		if c.evaluateRejected {
			directives, samples = c.intrusion(t, sw, now, directives, samples)
		}

		logger.WarnKV(ctx, "Reading rejected", "room_number", t.RoomKey, "sensor_kind", int(t.SensorKind))

		directives = append(directives, room.DataRejected(t.RoomKey))
		samples = append(samples, metrics.InvalidData(t.RoomKey, now))

		return c.dispatch(ctx, directives, samples, replyTo, now)
	}

	directives, samples = c.intrusion(t, sw, now, directives, samples)

	e := c.entry(t.RoomKey)

	e.mu.Lock()

	var (
		created     = e.rec == nil
		reconnected bool
		elapsed     time.Duration
	)

	if created {
		e.rec = room.NewRecord(t)
	} else {
		reconnected = !e.rec.Connected
		elapsed = e.rec.Apply(t, c.pricing)
	}

	snapshot := e.rec.Clone()

	e.mu.Unlock()

	if created || reconnected {
		logger.InfoKV(ctx, "Room connected", "room_number", t.RoomKey, "new", created)

		samples = append(samples, metrics.RoomStatus(t.RoomKey, true, now))
	}

	logger.DebugKV(ctx, "Reading applied",
		"room_number", t.RoomKey,
		"temperature", snapshot.LastTemperature,
		"humidity", snapshot.LastHumidity,
		"elapsed", elapsed)

	directives = append(directives, policy.EvaluateReading(t, c.bands)...)
	samples = append(samples, metrics.RoomData(snapshot, armed, now))

	return c.dispatch(ctx, directives, samples, replyTo, now)
}

// intrusion appends the alarm outcome of the reading.
func (c *Coordinator) intrusion(
	t room.Telemetry,
	sw *alarm.State,
	now time.Time,
	directives []room.Directive,
	samples []metrics.Sample,
) ([]room.Directive, []metrics.Sample) {
	intrusion := sw.Triggers(t.MotionDetected)
	if intrusion {
		directives = append(directives, room.AlarmEvent(t.RoomKey, room.ActionMotion))
	}

	return directives, append(samples, metrics.AlarmData(t.RoomKey, intrusion, now))
}

// SetAlarmArmed flips the alarm switch and sends ALARM_EVENT(OFF) to every
// connected room. The OFF event goes out on arming as well as on disarming.
func (c *Coordinator) SetAlarmArmed(
	ctx context.Context,
	armed bool,
	actor *alarm.Actor,
	replyTo string,
) ([]room.Directive, error) {
	now := c.now()

	c.alarmMu.Lock()
	next, changed := c.alarm.Switch(armed, actor, now)
	c.alarm = next
	c.alarmMu.Unlock()

	logger.InfoKV(ctx, "Alarm switch set", "is_armed", armed, "changed", changed, "actor", actor)

	var errs []error

	if err := c.persistAlarm(ctx); err != nil {
		errs = append(errs, err)
	}

	var directives []room.Directive

	for _, rec := range c.Rooms() {
		if rec.Connected {
			directives = append(directives, room.AlarmEvent(rec.Key, room.ActionOff))
		}
	}

	directives, err := c.dispatch(ctx, directives, nil, replyTo, now)
	if err != nil {
		errs = append(errs, err)
	}

	return directives, errors.Join(errs...)
}

// persistAlarm saves the latest switch value.
func (c *Coordinator) persistAlarm(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	if err := c.store.Save(ctx, c.AlarmState()); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarm state", "error", err)

		return fmt.Errorf("persist alarm state: %w", err)
	}

	return nil
}

// ApplyFeedback records the actuator state echoed by the control central.
// Only climate directives carry feedback; unknown rooms are ignored.
// It reports whether the record changed.
func (c *Coordinator) ApplyFeedback(ctx context.Context, d room.Directive) bool {
	if d.Kind != room.KindClimateAdjust {
		return false
	}

	c.mu.RLock()
	e, ok := c.rooms[d.RoomKey]
	c.mu.RUnlock()

	if !ok {
		logger.DebugKV(ctx, "Feedback for unknown room ignored", "room_number", d.RoomKey)

		return false
	}

	e.mu.Lock()
	changed := e.rec.SetActuator(d.Axis, d.Action != room.ActionOff)
	e.mu.Unlock()

	if changed {
		logger.InfoKV(ctx, "Actuator state updated",
			"room_number", d.RoomKey,
			"axis", d.Axis.String(),
			"active", d.Action != room.ActionOff)
	}

	return changed
}

// Sweep marks rooms silent for at least window as disconnected and sends one
// DISCONNECT per disconnected room. Rooms are handled one at a time; a done
// context stops the sweep between rooms.
func (c *Coordinator) Sweep(ctx context.Context, window time.Duration) ([]room.Directive, error) {
	now := c.now()

	var (
		directives []room.Directive
		errs       []error
	)

	for _, key := range c.keys() {
		if ctx.Err() != nil {
			break
		}

		e := c.lookup(key)

		e.mu.Lock()
		expired := e.rec.Expire(now, window)
		connected := e.rec.Connected
		e.mu.Unlock()

		if connected {
			continue
		}

		if expired {
			logger.WarnKV(ctx, "Room disconnected", "room_number", key, "window", window)
		}

		sent, err := c.dispatch(
			ctx,
			[]room.Directive{room.Disconnect(key)},
			[]metrics.Sample{metrics.RoomStatus(key, false, now)},
			c.disconnectChannel,
			now)
		if err != nil {
			errs = append(errs, err)
		}

		directives = append(directives, sent...)
	}

	return directives, errors.Join(errs...)
}

// AlarmState returns a copy of the alarm switch.
func (c *Coordinator) AlarmState() *alarm.State {
	c.alarmMu.RLock()
	defer c.alarmMu.RUnlock()

	return c.alarm.Clone()
}

// Snapshot returns a copy of one room record.
func (c *Coordinator) Snapshot(key room.Key) (*room.Record, bool) {
	e := c.lookup(key)
	if e == nil {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.rec.Clone(), true
}

// Rooms returns copies of every record, ordered by key.
func (c *Coordinator) Rooms() []*room.Record {
	keys := c.keys()
	result := make([]*room.Record, 0, len(keys))

	for _, key := range keys {
		if rec, ok := c.Snapshot(key); ok {
			result = append(result, rec)
		}
	}

	return result
}

// entry returns the room's entry, creating an empty one on first sight.
func (c *Coordinator) entry(key room.Key) *entry {
	if e := c.lookup(key); e != nil {
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.rooms[key]
	if !ok {
		e = new(entry)
		c.rooms[key] = e
	}

	return e
}

// lookup returns the entry of a room holding a record, or nil.
func (c *Coordinator) lookup(key room.Key) *entry {
	c.mu.RLock()
	e, ok := c.rooms[key]
	c.mu.RUnlock()

	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec == nil {
		return nil
	}

	return e
}

// keys lists the rooms holding a record, ordered.
func (c *Coordinator) keys() []room.Key {
	c.mu.RLock()
	keys := make([]room.Key, 0, len(c.rooms))

	for key := range c.rooms {
		keys = append(keys, key)
	}
	c.mu.RUnlock()

	slices.SortFunc(keys, cmp.Compare[room.Key])

	return slices.DeleteFunc(keys, func(key room.Key) bool {
		return c.lookup(key) == nil
	})
}

// dispatch stamps and relays the directives, then writes the samples.
func (c *Coordinator) dispatch(
	ctx context.Context,
	directives []room.Directive,
	samples []metrics.Sample,
	replyTo string,
	now time.Time,
) ([]room.Directive, error) {
	var errs []error

	for i := range directives {
		directives[i] = directives[i].Routed(replyTo, now)

		logger.InfoKV(ctx, "Directive issued", "directive", directives[i].String(), "response_topic", replyTo)

		if err := c.relay.Send(ctx, directives[i]); err != nil {
			logger.WarnKV(ctx, "Failed to relay directive", "directive", directives[i].String(), "error", err)

			errs = append(errs, fmt.Errorf("relay %s: %w", directives[i], err))
		}
	}

	for _, s := range samples {
		if err := c.sink.Write(ctx, s); err != nil {
			logger.WarnKV(ctx, "Failed to write sample", "measurement", s.Measurement, "error", err)

			errs = append(errs, fmt.Errorf("write %s sample: %w", s.Measurement, err))
		}
	}

	return directives, errors.Join(errs...)
}
