package room

import "time"

// Pricing holds the fixed power ratings and tariff used for accrual.
type Pricing struct {
	// UnitCost is the price of one kilowatt-hour.
	UnitCost float64
	// ACWatts is the air conditioner power rating.
	ACWatts float64
	// HumidityCtrlWatts is the humidity controller power rating.
	HumidityCtrlWatts float64
}

// DefaultPricing returns the ratings the rooms were sized with.
func DefaultPricing() Pricing {
	return Pricing{
		UnitCost:          0.15,
		ACWatts:           3000,
		HumidityCtrlWatts: 1000,
	}
}

// Record is the coordinator's view of one room.
type Record struct {
	// Key identifies the room.
	Key Key
	// LastTemperature is the latest accepted temperature in °C.
	LastTemperature float64
	// LastHumidity is the latest accepted humidity.
	LastHumidity float64
	// LastSeenAt is the latest accepted observation time.
	LastSeenAt time.Time
	// Connected is reconciled against LastSeenAt by the liveness sweep only.
	Connected bool

	// ACCostAccum and HumidityCtrlCostAccum never decrease.
	ACCostAccum           float64
	HumidityCtrlCostAccum float64
	// ACEnergyAccum and HumidityCtrlEnergyAccum are watt-hours and never decrease.
	ACEnergyAccum           float64
	HumidityCtrlEnergyAccum float64

	// ACActive, HumidityCtrlActive and MotionDetected are the latest flags.
	ACActive           bool
	HumidityCtrlActive bool
	MotionDetected     bool
}

// NewRecord creates a connected record with zeroed accumulators from the first valid reading.
func NewRecord(t Telemetry) *Record {
	r := &Record{Key: t.RoomKey}
	r.update(t)

	return r
}

// Apply accrues cost and energy for the time elapsed since the last reading
// and then takes over the reading's values. Elapsed time is clamped at zero so
// replayed or skewed readings accrue nothing, and LastSeenAt never moves back.
// It returns the elapsed time that was accrued.
func (r *Record) Apply(t Telemetry, p Pricing) time.Duration {
	elapsed := t.ObservedAt.Sub(r.LastSeenAt)
	if elapsed < 0 {
		elapsed = 0
	}

	hours := elapsed.Hours()

	if t.ACActive {
		r.ACCostAccum += hours * p.ACWatts / 1000 * p.UnitCost
		r.ACEnergyAccum += hours * p.ACWatts
	}

	if t.HumidityCtrlActive {
		r.HumidityCtrlCostAccum += hours * p.HumidityCtrlWatts / 1000 * p.UnitCost
		r.HumidityCtrlEnergyAccum += hours * p.HumidityCtrlWatts
	}

	r.update(t)

	return elapsed
}

func (r *Record) update(t Telemetry) {
	r.LastTemperature = t.Celsius()
	r.LastHumidity = t.Humidity

	if t.ObservedAt.After(r.LastSeenAt) {
		r.LastSeenAt = t.ObservedAt
	}

	r.Connected = true
	r.ACActive = t.ACActive
	r.HumidityCtrlActive = t.HumidityCtrlActive
	r.MotionDetected = t.MotionDetected
}

// Expire flips Connected to false when the room has been silent for at least window.
// It reports whether the record changed.
func (r *Record) Expire(now time.Time, window time.Duration) bool {
	if !r.Connected || now.Sub(r.LastSeenAt) < window {
		return false
	}

	r.Connected = false

	return true
}

// SetActuator records an acknowledged actuator state and reports whether it changed.
func (r *Record) SetActuator(axis Axis, active bool) bool {
	var flag *bool

	switch axis {
	case AxisAC:
		flag = &r.ACActive
	case AxisHumidity:
		flag = &r.HumidityCtrlActive
	default:
		return false
	}

	if *flag == active {
		return false
	}

	*flag = active

	return true
}

// Clone returns a copy safe to hand out after the room lock is released.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	cloned := *r

	return &cloned
}
