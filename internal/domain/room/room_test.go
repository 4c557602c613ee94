package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func reading(at time.Time, ac, hc bool) Telemetry {
	return Telemetry{
		RoomKey:            "101",
		Temperature:        22,
		Humidity:           50,
		SensorKind:         SensorCelsius,
		ACActive:           ac,
		HumidityCtrlActive: hc,
		ObservedAt:         at,
	}
}

// TestFahrenheitToCelsius checks the body temperature reference point.
func TestFahrenheitToCelsius(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 37.0, FahrenheitToCelsius(98.6), 1e-9)

	r := Telemetry{Temperature: 98.6, SensorKind: SensorFahrenheit}
	require.InDelta(t, 37.0, r.Celsius(), 1e-9)

	r.SensorKind = SensorCelsius
	require.InDelta(t, 98.6, r.Celsius(), 1e-9)
}

// TestSensorKindValid ensures only Celsius and Fahrenheit sensors are accepted.
func TestSensorKindValid(t *testing.T) {
	t.Parallel()

	require.True(t, SensorCelsius.Valid())
	require.True(t, SensorFahrenheit.Valid())
	require.False(t, SensorOther.Valid())
	require.False(t, SensorKind(7).Valid())
}

// TestNewRecord verifies a fresh record is connected with zeroed accumulators.
func TestNewRecord(t *testing.T) {
	t.Parallel()

	r := NewRecord(reading(baseTime, true, false))

	require.True(t, r.Connected)
	require.True(t, r.ACActive)
	require.Equal(t, baseTime, r.LastSeenAt)
	require.Zero(t, r.ACCostAccum)
	require.Zero(t, r.ACEnergyAccum)
}

// TestRecordApply_Accrual checks one hour of AC and humidity control at default pricing.
func TestRecordApply_Accrual(t *testing.T) {
	t.Parallel()

	r := NewRecord(reading(baseTime, true, true))

	elapsed := r.Apply(reading(baseTime.Add(time.Hour), true, true), DefaultPricing())

	require.Equal(t, time.Hour, elapsed)
	require.InDelta(t, 3*0.15, r.ACCostAccum, 1e-9)
	require.InDelta(t, 3000, r.ACEnergyAccum, 1e-9)
	require.InDelta(t, 0.15, r.HumidityCtrlCostAccum, 1e-9)
	require.InDelta(t, 1000, r.HumidityCtrlEnergyAccum, 1e-9)
}

// TestRecordApply_InactiveActuatorsDoNotAccrue ensures accrual follows the reported flags.
func TestRecordApply_InactiveActuatorsDoNotAccrue(t *testing.T) {
	t.Parallel()

	r := NewRecord(reading(baseTime, true, true))
	r.Apply(reading(baseTime.Add(30*time.Minute), false, false), DefaultPricing())

	require.Zero(t, r.ACEnergyAccum)
	require.Zero(t, r.HumidityCtrlEnergyAccum)
	require.False(t, r.ACActive)
}

// TestRecordApply_ClockSkew verifies a reading from the past accrues nothing and keeps LastSeenAt.
func TestRecordApply_ClockSkew(t *testing.T) {
	t.Parallel()

	r := NewRecord(reading(baseTime, true, false))
	r.Apply(reading(baseTime.Add(10*time.Second), true, false), DefaultPricing())

	before := *r

	elapsed := r.Apply(reading(baseTime.Add(-time.Minute), true, false), DefaultPricing())

	require.Zero(t, elapsed)
	require.Equal(t, before.ACCostAccum, r.ACCostAccum)
	require.Equal(t, before.ACEnergyAccum, r.ACEnergyAccum)
	require.Equal(t, before.LastSeenAt, r.LastSeenAt)
}

// TestRecordApply_Monotonic feeds an irregular sequence and asserts counters never decrease.
func TestRecordApply_Monotonic(t *testing.T) {
	t.Parallel()

	offsets := []time.Duration{5, 3, 20, 20, -40, 61, 62, 1, 300}
	r := NewRecord(reading(baseTime, true, true))

	for i, off := range offsets {
		prevCost, prevEnergy := r.ACCostAccum, r.ACEnergyAccum
		prevHCCost, prevHCEnergy := r.HumidityCtrlCostAccum, r.HumidityCtrlEnergyAccum

		r.Apply(reading(baseTime.Add(off*time.Second), i%2 == 0, i%3 == 0), DefaultPricing())

		require.GreaterOrEqual(t, r.ACCostAccum, prevCost)
		require.GreaterOrEqual(t, r.ACEnergyAccum, prevEnergy)
		require.GreaterOrEqual(t, r.HumidityCtrlCostAccum, prevHCCost)
		require.GreaterOrEqual(t, r.HumidityCtrlEnergyAccum, prevHCEnergy)
	}
}

// TestRecordExpire covers the liveness window boundary.
func TestRecordExpire(t *testing.T) {
	t.Parallel()

	r := NewRecord(reading(baseTime, false, false))

	require.False(t, r.Expire(baseTime.Add(14*time.Second), 15*time.Second))
	require.True(t, r.Connected)

	require.True(t, r.Expire(baseTime.Add(15*time.Second), 15*time.Second))
	require.False(t, r.Connected)

	// Already disconnected records do not change again.
	require.False(t, r.Expire(baseTime.Add(time.Minute), 15*time.Second))
}

// TestRecordSetActuator ensures actuator acknowledgements are idempotent.
func TestRecordSetActuator(t *testing.T) {
	t.Parallel()

	r := NewRecord(reading(baseTime, false, false))

	require.True(t, r.SetActuator(AxisAC, true))
	require.False(t, r.SetActuator(AxisAC, true))
	require.True(t, r.ACActive)

	require.True(t, r.SetActuator(AxisHumidity, true))
	require.False(t, r.SetActuator(Axis(0), true))
}

// TestDirectiveRouted verifies routing returns a stamped copy.
func TestDirectiveRouted(t *testing.T) {
	t.Parallel()

	d := ClimateAdjust("101", AxisAC, ActionLower, 22)
	routed := d.Routed("1_ACT", baseTime)

	require.Empty(t, d.ResponseChannel)
	require.Equal(t, "1_ACT", routed.ResponseChannel)
	require.Equal(t, baseTime, routed.IssuedAt)
	require.Equal(t, "climate_adjust(101, ac, lower, 22.00)", routed.String())
	require.Equal(t, "disconnect(101)", Disconnect("101").String())
	require.Equal(t, "alarm_event(101, motion)", AlarmEvent("101", ActionMotion).String())
}
