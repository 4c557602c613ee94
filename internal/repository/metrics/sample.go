package metrics

import (
	"time"

	"github.com/oshokin/room-control/internal/domain/room"
)

// Measurement names.
const (
	MeasurementRoomStatus  = "room_status"
	MeasurementAlarmData   = "alarm_data"
	MeasurementInvalidData = "invalid_data"
	MeasurementRoomData    = "room_data"
)

// TagRoomNumber is the tag every sample carries.
const TagRoomNumber = "room_number"

// Sample is one time-series point.
type Sample struct {
	// Measurement names the series.
	Measurement string
	// Tags are indexed string attributes.
	Tags map[string]string
	// Fields are the measured values, float64 or bool.
	Fields map[string]any
	// Time is when the sample was taken.
	Time time.Time
}

// RoomNumber returns the room tag.
func (s Sample) RoomNumber() string {
	return s.Tags[TagRoomNumber]
}

func newSample(measurement string, key room.Key, at time.Time, fields map[string]any) Sample {
	return Sample{
		Measurement: measurement,
		Tags:        map[string]string{TagRoomNumber: string(key)},
		Fields:      fields,
		Time:        at,
	}
}

// RoomStatus reports a connectivity change.
func RoomStatus(key room.Key, connected bool, at time.Time) Sample {
	return newSample(MeasurementRoomStatus, key, at, map[string]any{
		"connected": connected,
	})
}

// AlarmData reports the intrusion evaluation of one reading.
func AlarmData(key room.Key, intrusion bool, at time.Time) Sample {
	return newSample(MeasurementAlarmData, key, at, map[string]any{
		"intrusion": intrusion,
	})
}

// InvalidData reports a rejected reading.
func InvalidData(key room.Key, at time.Time) Sample {
	return newSample(MeasurementInvalidData, key, at, map[string]any{
		"invalid_data": true,
	})
}

// RoomData reports the full state of a room after an accepted reading.
// alarmArmed is the process-wide switch, not a per-room value.
func RoomData(r *room.Record, alarmArmed bool, at time.Time) Sample {
	return newSample(MeasurementRoomData, r.Key, at, map[string]any{
		"temperature":          r.LastTemperature,
		"humidity":             r.LastHumidity,
		"ac_cost":              r.ACCostAccum,
		"hc_cost":              r.HumidityCtrlCostAccum,
		"ac_power_consumption": r.ACEnergyAccum,
		"hc_power_consumption": r.HumidityCtrlEnergyAccum,
		"ac_funcionando":       r.ACActive,
		"hc_funcionando":       r.HumidityCtrlActive,
		"connected":            r.Connected,
		"movement":             r.MotionDetected,
		"alarm":                alarmArmed,
	})
}
