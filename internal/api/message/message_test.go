package message

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/room-control/internal/domain/alarm"
	"github.com/oshokin/room-control/internal/domain/room"
)

// TestParseRoomData_RoomFirmwarePayload decodes the payload shape rooms publish, ints for booleans included.
func TestParseRoomData_RoomFirmwarePayload(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"temperatura": 23.41, "umidade": 55.2, "movimento": 1, "ac_funcionando": 0,
		"hc_funcionando": 1, "tipo_sensor": 2, "numero_sala": 12, "timestamp": "2024-05-10 12:00:05"}`)

	got, err := ParseRoomData(payload)
	require.NoError(t, err)

	want := room.Telemetry{
		RoomKey:            "12",
		Temperature:        23.41,
		Humidity:           55.2,
		SensorKind:         room.SensorFahrenheit,
		ACActive:           false,
		HumidityCtrlActive: true,
		MotionDetected:     true,
		ObservedAt:         time.Date(2024, 5, 10, 12, 0, 5, 0, time.Local),
	}
	require.Equal(t, want, got)
}

// TestParseRoomData_Errors rejects malformed payloads.
func TestParseRoomData_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseRoomData([]byte(`not json`))
	require.Error(t, err)

	_, err = ParseRoomData([]byte(`{"numero_sala": ""}`))
	require.ErrorIs(t, err, errEmptyRoomKey)

	_, err = ParseRoomData([]byte(`{"numero_sala": 1, "movimento": "maybe"}`))
	require.ErrorIs(t, err, errBadBool)

	_, err = ParseRoomData([]byte(`{"numero_sala": 1, "timestamp": "yesterday"}`))
	require.ErrorIs(t, err, errBadTime)
}

// TestNewRoomData_RoundTrip renders and parses a reading back.
func TestNewRoomData_RoundTrip(t *testing.T) {
	t.Parallel()

	in := room.Telemetry{
		RoomKey:        "a-1",
		Temperature:    21,
		Humidity:       40,
		SensorKind:     room.SensorCelsius,
		ACActive:       true,
		MotionDetected: true,
		ObservedAt:     time.Date(2024, 5, 10, 8, 30, 0, 0, time.Local),
	}

	payload, err := json.Marshal(NewRoomData(in))
	require.NoError(t, err)

	out, err := ParseRoomData(payload)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

// TestParseTimestamp accepts every layout seen on the bus.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"2024-05-10T12:00:05Z",
		"2024-05-10T12:00:05.123456",
		"2024-05-10 12:00:05",
		"1715342405",
	} {
		_, err := ParseTimestamp(s)
		require.NoError(t, err, s)
	}
}

// TestEncodeDirective covers every directive variant.
func TestEncodeDirective(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		directive   room.Directive
		controlType string
		action      string
		ideal       *float64
	}{
		{room.ClimateAdjust("1", room.AxisAC, room.ActionLower, 22), ControlAC, ActionDown, ptr(22)},
		{room.ClimateAdjust("1", room.AxisAC, room.ActionRaise, 22), ControlAC, ActionUp, ptr(22)},
		{room.ClimateAdjust("1", room.AxisHumidity, room.ActionOff, 50), ControlHC, ActionOff, ptr(50)},
		{room.AlarmEvent("1", room.ActionMotion), ControlAlarm, ActionMovement, nil},
		{room.AlarmEvent("1", room.ActionOff), ControlAlarm, ActionOff, nil},
		{room.Disconnect("1"), ControlDisconnect, ActionDisconnect, nil},
		{room.DataRejected("1"), ControlData, ActionDiscard, nil},
	}

	for _, tc := range cases {
		c, err := EncodeDirective(tc.directive.Routed("1_ACT", at))
		require.NoError(t, err, tc.directive.String())

		require.Equal(t, "1", c.RoomNumber)
		require.Equal(t, tc.controlType, c.ControlType)
		require.Equal(t, tc.action, c.Action)
		require.Equal(t, tc.ideal, c.IdealValue)
		require.Equal(t, "1_ACT", c.ResponseTopic)
		require.Equal(t, "2024-05-10T12:00:00Z", c.Timestamp)
		require.NoError(t, c.Validate())
	}

	_, err := EncodeDirective(room.Directive{Kind: room.Kind(99), RoomKey: "1"})
	require.ErrorIs(t, err, errUnknownKind)

	_, err = EncodeDirective(room.AlarmEvent("1", room.ActionRaise))
	require.ErrorIs(t, err, errUnknownAction)
}

// TestControlJSON checks the wire field names and omission of valor_ideal.
func TestControlJSON(t *testing.T) {
	t.Parallel()

	c, err := EncodeDirective(room.Disconnect("9").Routed("1_ACT", time.Unix(0, 0).UTC()))
	require.NoError(t, err)

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	require.JSONEq(t, `{"room_number":"9","tipo_controle":"DISCONNECT","acao":"DISCONNECT",
		"response_topic":"1_ACT","timestamp":"1970-01-01T00:00:00Z"}`, string(raw))

	require.ErrorIs(t, Control{ControlType: ControlAC, Action: ActionUp}.Validate(), errMissingField)
	require.ErrorIs(t, Control{RoomNumber: "1", ControlType: "FAN", Action: ActionUp}.Validate(), errUnknownControl)
}

// TestParseActuation turns AC/HC commands into feedback and ignores the rest.
func TestParseActuation(t *testing.T) {
	t.Parallel()

	d, ok, err := ParseActuation([]byte(`{"room_number": 3, "tipo_controle": "HC", "acao": "UP"}`))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, room.Key("3"), d.RoomKey)
	require.Equal(t, room.AxisHumidity, d.Axis)
	require.Equal(t, room.ActionRaise, d.Action)

	_, ok, err = ParseActuation([]byte(`{"room_number": "3", "tipo_controle": "ALARM", "acao": "MOVEMENT"}`))
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = ParseActuation([]byte(`{"room_number": "3", "tipo_controle": "AC", "acao": "SIDEWAYS"}`))
	require.ErrorIs(t, err, errUnknownAction)

	raw, err := json.Marshal(NewActuation(Control{RoomNumber: "3", ControlType: ControlAC, Action: ActionOff}, time.Now()))
	require.NoError(t, err)

	d, ok, err = ParseActuation(raw)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, room.ActionOff, d.Action)
}

// TestParseActuation_RoomFirmwareFields decodes the command shape rooms filter on.
func TestParseActuation_RoomFirmwareFields(t *testing.T) {
	t.Parallel()

	d, ok, err := ParseActuation([]byte(
		`{"numero_sala": 3, "tipo_controle": "AC", "acao": "DOWN", "timestamp": "2024-05-01T10:00:00.123456"}`))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, room.Key("3"), d.RoomKey)
	require.Equal(t, room.AxisAC, d.Axis)
	require.Equal(t, room.ActionLower, d.Action)
	require.True(t, time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.Local).Equal(d.IssuedAt))

	raw, err := json.Marshal(NewActuation(Control{RoomNumber: "3", ControlType: ControlHC, Action: ActionUp},
		time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.JSONEq(t, `{"numero_sala":"3","tipo_controle":"HC","acao":"UP","timestamp":"2024-05-01T10:00:00Z"}`,
		string(raw))

	_, _, err = ParseActuation([]byte(`{"tipo_controle": "AC", "acao": "DOWN"}`))
	require.ErrorIs(t, err, errEmptyRoomKey)
}

// TestAlarmCommand round-trips arm and disarm commands with the operator.
func TestAlarmCommand(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(NewAlarmCommand(true, &alarm.Actor{Hostname: "desk", Username: "guard"}))
	require.NoError(t, err)

	armed, actor, err := ParseAlarmCommand(raw)
	require.NoError(t, err)
	require.True(t, armed)
	require.Equal(t, &alarm.Actor{Hostname: "desk", Username: "guard"}, actor)

	// Consoles may send only the command.
	armed, actor, err = ParseAlarmCommand([]byte(`{"command": "off"}`))
	require.NoError(t, err)
	require.False(t, armed)
	require.Nil(t, actor)

	_, _, err = ParseAlarmCommand([]byte(`{"command": "TOGGLE"}`))
	require.ErrorIs(t, err, errUnknownCommand)
}

func ptr(v float64) *float64 { return &v }
