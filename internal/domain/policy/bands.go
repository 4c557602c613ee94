package policy

import (
	"errors"
	"fmt"
)

// Band is the comfort interval of one physical axis.
type Band struct {
	// Low is the lowest comfortable value.
	Low float64
	// High is the highest comfortable value.
	High float64
	// Ideal is the target sent along with actuator directives.
	Ideal float64
	// Margin is how far inside the band a value must be before the actuator is turned off.
	Margin float64
}

// Bands groups the comfort intervals evaluated per reading.
type Bands struct {
	// Temperature is expressed in °C.
	Temperature Band
	// Humidity is expressed in percent.
	Humidity Band
}

const (
	// DefaultTemperatureMargin is the temperature dead-band.
	DefaultTemperatureMargin = 3
	// DefaultHumidityMargin is the humidity dead-band.
	DefaultHumidityMargin = 5
)

var errInvertedBand = errors.New("low must not exceed high")

// DefaultBands returns the bands used when no comfort-band file is loaded.
func DefaultBands() Bands {
	return Bands{
		Temperature: Band{Low: 18, High: 26, Ideal: 22, Margin: DefaultTemperatureMargin},
		Humidity:    Band{Low: 30, High: 60, Ideal: 45, Margin: DefaultHumidityMargin},
	}
}

// Validate checks that every band is well-formed.
func (b Bands) Validate() error {
	if err := b.Temperature.validate(); err != nil {
		return fmt.Errorf("temperature band: %w", err)
	}

	if err := b.Humidity.validate(); err != nil {
		return fmt.Errorf("humidity band: %w", err)
	}

	return nil
}

func (b Band) validate() error {
	if b.Low > b.High {
		return fmt.Errorf("%w: low=%v high=%v", errInvertedBand, b.Low, b.High)
	}

	return nil
}

// wantsOff reports whether value sits strictly inside the dead-band.
func (b Band) wantsOff(value float64) bool {
	return value > b.Low+b.Margin && value < b.High-b.Margin
}
