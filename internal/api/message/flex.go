package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/room-control/internal/domain/room"
)

// TelemetryTimeLayout is the second-resolution timestamp layout rooms publish.
const TelemetryTimeLayout = "2006-01-02 15:04:05"

var (
	errEmptyRoomKey = errors.New("room number is empty")
	errBadBool      = errors.New("not a boolean")
	errBadTime      = errors.New("unsupported timestamp format")
)

// Flag decodes true/false, 0/1 and their string forms.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)

	switch strings.ToLower(s) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("%w: %s", errBadBool, s)
	}

	return nil
}

// RoomNumber decodes a room identifier sent either as a JSON string or number.
type RoomNumber string

// UnmarshalJSON implements json.Unmarshaler.
func (n *RoomNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*n = RoomNumber(strings.TrimSpace(s))

		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("room number: %w", err)
	}

	*n = RoomNumber(num.String())

	return nil
}

// Key converts the number into a room key.
func (n RoomNumber) Key() (room.Key, error) {
	if n == "" {
		return "", errEmptyRoomKey
	}

	return room.Key(n), nil
}

// ParseTimestamp accepts RFC 3339 and the room layout, the latter in local time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation(TelemetryTimeLayout, s, time.Local); err == nil {
		return t, nil
	}

	// Naive ISO-8601 with fractional seconds, as produced by datetime.isoformat().
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.Local); err == nil {
		return t, nil
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", errBadTime, s)
}
