package message

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oshokin/room-control/internal/domain/room"
)

// RoomData is the telemetry payload published by rooms.
type RoomData struct {
	RoomNumber  RoomNumber `json:"numero_sala"`
	Temperature float64    `json:"temperatura"`
	Humidity    float64    `json:"umidade"`
	SensorType  int        `json:"tipo_sensor"`
	ACActive    Flag       `json:"ac_funcionando"`
	HCActive    Flag       `json:"hc_funcionando"`
	Movement    Flag       `json:"movimento"`
	Timestamp   string     `json:"timestamp"`
}

// NewRoomData renders a reading the way rooms publish it.
func NewRoomData(t room.Telemetry) RoomData {
	return RoomData{
		RoomNumber:  RoomNumber(t.RoomKey),
		Temperature: t.Temperature,
		Humidity:    t.Humidity,
		SensorType:  int(t.SensorKind),
		ACActive:    Flag(t.ACActive),
		HCActive:    Flag(t.HumidityCtrlActive),
		Movement:    Flag(t.MotionDetected),
		Timestamp:   t.ObservedAt.Format(TelemetryTimeLayout),
	}
}

// ParseRoomData decodes a telemetry payload. The sensor kind is not validated
// here; rejecting unsupported sensors is the coordinator's decision.
func ParseRoomData(payload []byte) (room.Telemetry, error) {
	var data RoomData
	if err := json.Unmarshal(payload, &data); err != nil {
		return room.Telemetry{}, fmt.Errorf("decode room data: %w", err)
	}

	key, err := data.RoomNumber.Key()
	if err != nil {
		return room.Telemetry{}, fmt.Errorf("decode room data: %w", err)
	}

	var observedAt time.Time
	if data.Timestamp != "" {
		observedAt, err = ParseTimestamp(data.Timestamp)
		if err != nil {
			return room.Telemetry{}, fmt.Errorf("decode room data: %w", err)
		}
	}

	return room.Telemetry{
		RoomKey:            key,
		Temperature:        data.Temperature,
		Humidity:           data.Humidity,
		SensorKind:         room.SensorKind(data.SensorType),
		ACActive:           bool(data.ACActive),
		HumidityCtrlActive: bool(data.HCActive),
		MotionDetected:     bool(data.Movement),
		ObservedAt:         observedAt,
	}, nil
}
