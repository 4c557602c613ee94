package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/room-control/internal/domain/alarm"
)

// Alarm switch commands.
const (
	CommandOn  = "ON"
	CommandOff = "OFF"
)

var errUnknownCommand = errors.New("unknown alarm command")

// AlarmCommand is published by the alarm console.
type AlarmCommand struct {
	Command string       `json:"command"`
	Actor   *CommandUser `json:"actor,omitempty"`
}

// CommandUser identifies the operator behind an alarm command.
type CommandUser struct {
	Hostname string `json:"hostname"`
	Username string `json:"username"`
}

// NewAlarmCommand builds the payload for arming (true) or disarming (false).
func NewAlarmCommand(armed bool, actor *alarm.Actor) AlarmCommand {
	cmd := AlarmCommand{Command: CommandOff}
	if armed {
		cmd.Command = CommandOn
	}

	if actor != nil {
		cmd.Actor = &CommandUser{
			Hostname: actor.Hostname,
			Username: actor.Username,
		}
	}

	return cmd
}

// ParseAlarmCommand decodes an alarm command into the requested switch state.
func ParseAlarmCommand(payload []byte) (armed bool, actor *alarm.Actor, err error) {
	var cmd AlarmCommand
	if err = json.Unmarshal(payload, &cmd); err != nil {
		return false, nil, fmt.Errorf("decode alarm command: %w", err)
	}

	switch strings.ToUpper(strings.TrimSpace(cmd.Command)) {
	case CommandOn:
		armed = true
	case CommandOff:
		armed = false
	default:
		return false, nil, fmt.Errorf("%w: %q", errUnknownCommand, cmd.Command)
	}

	if cmd.Actor != nil {
		actor = &alarm.Actor{
			Hostname: cmd.Actor.Hostname,
			Username: cmd.Actor.Username,
		}
	}

	return armed, actor, nil
}
