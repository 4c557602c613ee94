package room

import "time"

// Key identifies a room for its whole lifetime.
type Key string

// SensorKind tells which unit a room reports temperature in.
type SensorKind int

const (
	// SensorOther marks an unsupported sensor; its readings are rejected.
	SensorOther SensorKind = 0
	// SensorCelsius reports temperature in degrees Celsius.
	SensorCelsius SensorKind = 1
	// SensorFahrenheit reports temperature in degrees Fahrenheit.
	SensorFahrenheit SensorKind = 2
)

// Valid reports whether readings from this sensor kind are accepted.
func (k SensorKind) Valid() bool {
	return k == SensorCelsius || k == SensorFahrenheit
}

// String returns a short name for logs.
func (k SensorKind) String() string {
	switch k {
	case SensorCelsius:
		return "celsius"
	case SensorFahrenheit:
		return "fahrenheit"
	default:
		return "other"
	}
}

// Telemetry is a single reading published by a room.
type Telemetry struct {
	// RoomKey identifies the publishing room.
	RoomKey Key
	// Temperature is expressed in the unit given by SensorKind.
	Temperature float64
	// Humidity is a relative humidity percentage; the range is not enforced.
	Humidity float64
	// SensorKind selects the temperature unit.
	SensorKind SensorKind
	// ACActive is the air conditioner state as reported by the room.
	ACActive bool
	// HumidityCtrlActive is the humidity controller state as reported by the room.
	HumidityCtrlActive bool
	// MotionDetected reports the intrusion sensor.
	MotionDetected bool
	// ObservedAt is the room's clock at the time of the reading.
	ObservedAt time.Time
}

// Celsius returns the reading's temperature converted to degrees Celsius.
func (t Telemetry) Celsius() float64 {
	if t.SensorKind == SensorFahrenheit {
		return FahrenheitToCelsius(t.Temperature)
	}

	return t.Temperature
}

// FahrenheitToCelsius converts °F to °C.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}
