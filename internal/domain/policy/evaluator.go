package policy

import "github.com/oshokin/room-control/internal/domain/room"

// Evaluate returns at most one directive per axis for the reading.
// The reading's temperature must already be in °C, and the actuator flags are
// the ones the room reported alongside it.
func Evaluate(key room.Key, celsius, humidity float64, acActive, hcActive bool, bands Bands) []room.Directive {
	var directives []room.Directive

	if d, ok := evaluateAxis(key, room.AxisAC, celsius, acActive, bands.Temperature); ok {
		directives = append(directives, d)
	}

	if d, ok := evaluateAxis(key, room.AxisHumidity, humidity, hcActive, bands.Humidity); ok {
		directives = append(directives, d)
	}

	return directives
}

// EvaluateReading is Evaluate applied to a telemetry message.
func EvaluateReading(t room.Telemetry, bands Bands) []room.Directive {
	return Evaluate(t.RoomKey, t.Celsius(), t.Humidity, t.ACActive, t.HumidityCtrlActive, bands)
}

func evaluateAxis(key room.Key, axis room.Axis, value float64, active bool, band Band) (room.Directive, bool) {
	switch {
	case value > band.High && !active:
		return room.ClimateAdjust(key, axis, room.ActionLower, band.Ideal), true
	case value < band.Low && !active:
		return room.ClimateAdjust(key, axis, room.ActionRaise, band.Ideal), true
	case band.wantsOff(value) && active:
		return room.ClimateAdjust(key, axis, room.ActionOff, band.Ideal), true
	default:
		return room.Directive{}, false
	}
}
