package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/room-control/internal/domain/room"
)

// Control types on the wire.
const (
	ControlAC         = "AC"
	ControlHC         = "HC"
	ControlAlarm      = "ALARM"
	ControlDisconnect = "DISCONNECT"
	ControlData       = "DATA"
)

// Actions on the wire.
const (
	ActionUp         = "UP"
	ActionDown       = "DOWN"
	ActionOff        = "OFF"
	ActionMovement   = "MOVEMENT"
	ActionDisconnect = "DISCONNECT"
	ActionDiscard    = "DESCART"
)

var (
	errUnknownKind    = errors.New("unknown directive kind")
	errUnknownAxis    = errors.New("unknown actuator axis")
	errUnknownAction  = errors.New("unknown action")
	errUnknownControl = errors.New("unknown control type")
	errMissingField   = errors.New("missing field")
)

// Control is the directive envelope relayed to the control central.
type Control struct {
	RoomNumber    string   `json:"room_number"`
	ControlType   string   `json:"tipo_controle"`
	Action        string   `json:"acao"`
	IdealValue    *float64 `json:"valor_ideal,omitempty"`
	ResponseTopic string   `json:"response_topic"`
	Timestamp     string   `json:"timestamp"`
}

// EncodeDirective maps a directive onto its wire envelope.
func EncodeDirective(d room.Directive) (Control, error) {
	c := Control{
		RoomNumber:    string(d.RoomKey),
		ResponseTopic: d.ResponseChannel,
		Timestamp:     d.IssuedAt.Format(time.RFC3339),
	}

	switch d.Kind {
	case room.KindClimateAdjust:
		controlType, err := axisToWire(d.Axis)
		if err != nil {
			return Control{}, err
		}

		action, err := climateActionToWire(d.Action)
		if err != nil {
			return Control{}, err
		}

		target := d.TargetValue
		c.ControlType, c.Action, c.IdealValue = controlType, action, &target
	case room.KindAlarmEvent:
		c.ControlType = ControlAlarm

		switch d.Action {
		case room.ActionMotion:
			c.Action = ActionMovement
		case room.ActionOff:
			c.Action = ActionOff
		default:
			return Control{}, fmt.Errorf("%w: %s for alarm", errUnknownAction, d.Action)
		}
	case room.KindDisconnect:
		c.ControlType, c.Action = ControlDisconnect, ActionDisconnect
	case room.KindDataRejected:
		c.ControlType, c.Action = ControlData, ActionDiscard
	default:
		return Control{}, fmt.Errorf("%w: %s", errUnknownKind, d.Kind)
	}

	return c, nil
}

// Validate checks the fields the control central relies on.
func (c Control) Validate() error {
	switch {
	case c.RoomNumber == "":
		return fmt.Errorf("%w: room_number", errMissingField)
	case c.ControlType == "":
		return fmt.Errorf("%w: tipo_controle", errMissingField)
	case c.Action == "":
		return fmt.Errorf("%w: acao", errMissingField)
	}

	switch c.ControlType {
	case ControlAC, ControlHC, ControlAlarm, ControlDisconnect, ControlData:
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownControl, c.ControlType)
	}
}

// Actuation is what the control central republishes on the bus. Rooms match
// commands on numero_sala.
type Actuation struct {
	RoomNumber  RoomNumber `json:"numero_sala"`
	ControlType string     `json:"tipo_controle"`
	Action      string     `json:"acao"`
	Timestamp   string     `json:"timestamp"`
}

// NewActuation derives the bus command from a relayed control message.
func NewActuation(c Control, at time.Time) Actuation {
	return Actuation{
		RoomNumber:  RoomNumber(c.RoomNumber),
		ControlType: c.ControlType,
		Action:      c.Action,
		Timestamp:   at.Format(time.RFC3339),
	}
}

// ParseActuation decodes an actuation command. Only AC and HC commands carry
// actuator feedback; ok is false for every other control type.
// The room may also be given as room_number.
func ParseActuation(payload []byte) (d room.Directive, ok bool, err error) {
	var in struct {
		Actuation

		AltRoomNumber RoomNumber `json:"room_number"`
	}

	if err = json.Unmarshal(payload, &in); err != nil {
		return room.Directive{}, false, fmt.Errorf("decode actuation: %w", err)
	}

	a := in.Actuation
	if a.RoomNumber == "" {
		a.RoomNumber = in.AltRoomNumber
	}

	key, err := a.RoomNumber.Key()
	if err != nil {
		return room.Directive{}, false, fmt.Errorf("decode actuation: %w", err)
	}

	var axis room.Axis

	switch a.ControlType {
	case ControlAC:
		axis = room.AxisAC
	case ControlHC:
		axis = room.AxisHumidity
	default:
		return room.Directive{}, false, nil
	}

	action, err := climateActionFromWire(a.Action)
	if err != nil {
		return room.Directive{}, false, err
	}

	d = room.ClimateAdjust(key, axis, action, 0)

	if a.Timestamp != "" {
		if at, tsErr := ParseTimestamp(a.Timestamp); tsErr == nil {
			d.IssuedAt = at
		}
	}

	return d, true, nil
}

func axisToWire(axis room.Axis) (string, error) {
	switch axis {
	case room.AxisAC:
		return ControlAC, nil
	case room.AxisHumidity:
		return ControlHC, nil
	default:
		return "", fmt.Errorf("%w: %s", errUnknownAxis, axis)
	}
}

func climateActionToWire(a room.Action) (string, error) {
	switch a {
	case room.ActionRaise:
		return ActionUp, nil
	case room.ActionLower:
		return ActionDown, nil
	case room.ActionOff:
		return ActionOff, nil
	default:
		return "", fmt.Errorf("%w: %s for climate", errUnknownAction, a)
	}
}

func climateActionFromWire(s string) (room.Action, error) {
	switch s {
	case ActionUp:
		return room.ActionRaise, nil
	case ActionDown:
		return room.ActionLower, nil
	case ActionOff:
		return room.ActionOff, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownAction, s)
	}
}
