package room

import (
	"fmt"
	"time"
)

// Kind discriminates the Directive variants.
type Kind int

const (
	// KindClimateAdjust asks the authority to drive an actuator.
	KindClimateAdjust Kind = iota + 1
	// KindAlarmEvent reports an intrusion or acknowledges an alarm switch change.
	KindAlarmEvent
	// KindDisconnect reports a room that went silent.
	KindDisconnect
	// KindDataRejected reports a reading that was discarded.
	KindDataRejected
)

// String returns a short name for logs.
func (k Kind) String() string {
	switch k {
	case KindClimateAdjust:
		return "climate_adjust"
	case KindAlarmEvent:
		return "alarm_event"
	case KindDisconnect:
		return "disconnect"
	case KindDataRejected:
		return "data_rejected"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Axis is the actuator a climate directive addresses.
type Axis int

const (
	// AxisAC is the air conditioner (temperature).
	AxisAC Axis = iota + 1
	// AxisHumidity is the humidity controller.
	AxisHumidity
)

// String returns a short name for logs.
func (a Axis) String() string {
	switch a {
	case AxisAC:
		return "ac"
	case AxisHumidity:
		return "humidity"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Action is what a directive asks for.
type Action int

const (
	// ActionRaise turns an actuator on to increase the measured value.
	ActionRaise Action = iota + 1
	// ActionLower turns an actuator on to decrease the measured value.
	ActionLower
	// ActionOff turns an actuator (or the alarm siren) off.
	ActionOff
	// ActionMotion signals detected motion while the alarm is armed.
	ActionMotion
)

// String returns a short name for logs.
func (a Action) String() string {
	switch a {
	case ActionRaise:
		return "raise"
	case ActionLower:
		return "lower"
	case ActionOff:
		return "off"
	case ActionMotion:
		return "motion"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Directive is one instruction or event sent to the decision authority.
// Axis, Action and TargetValue are only meaningful for the variants that use them.
type Directive struct {
	// Kind selects the variant.
	Kind Kind
	// RoomKey is the room the directive concerns.
	RoomKey Key
	// Axis is set for KindClimateAdjust.
	Axis Axis
	// Action is set for KindClimateAdjust and KindAlarmEvent.
	Action Action
	// TargetValue is the ideal value from the comfort band, KindClimateAdjust only.
	TargetValue float64
	// ResponseChannel is the bus topic the authority should answer on.
	ResponseChannel string
	// IssuedAt is when the directive was produced.
	IssuedAt time.Time
}

// ClimateAdjust builds an actuator directive.
func ClimateAdjust(key Key, axis Axis, action Action, target float64) Directive {
	return Directive{
		Kind:        KindClimateAdjust,
		RoomKey:     key,
		Axis:        axis,
		Action:      action,
		TargetValue: target,
	}
}

// AlarmEvent builds an intrusion directive.
func AlarmEvent(key Key, action Action) Directive {
	return Directive{
		Kind:    KindAlarmEvent,
		RoomKey: key,
		Action:  action,
	}
}

// Disconnect builds a liveness directive.
func Disconnect(key Key) Directive {
	return Directive{
		Kind:    KindDisconnect,
		RoomKey: key,
	}
}

// DataRejected builds a rejection directive.
func DataRejected(key Key) Directive {
	return Directive{
		Kind:    KindDataRejected,
		RoomKey: key,
	}
}

// Routed returns a copy stamped with the reply channel and issue time.
func (d Directive) Routed(channel string, at time.Time) Directive {
	d.ResponseChannel = channel
	d.IssuedAt = at

	return d
}

// String renders the directive for logs.
func (d Directive) String() string {
	switch d.Kind {
	case KindClimateAdjust:
		return fmt.Sprintf("%s(%s, %s, %s, %.2f)", d.Kind, d.RoomKey, d.Axis, d.Action, d.TargetValue)
	case KindAlarmEvent:
		return fmt.Sprintf("%s(%s, %s)", d.Kind, d.RoomKey, d.Action)
	default:
		return fmt.Sprintf("%s(%s)", d.Kind, d.RoomKey)
	}
}
