package bus

// OtherRoomsTopic is shared by every installation on the broker.
const OtherRoomsTopic = "OTHER_ROOMS"

// Topics holds the topic names of one installation.
type Topics struct {
	// RoomData receives telemetry from the rooms of this group.
	RoomData string
	// OtherRooms receives telemetry from foreign rooms.
	OtherRooms string
	// AlarmControl receives arm and disarm commands.
	AlarmControl string
	// Actuation carries commands for the rooms of this group.
	Actuation string
	// OtherRoomsActuation carries commands for foreign rooms.
	OtherRoomsActuation string
	// AlarmActuation carries alarm commands triggered by arming or disarming.
	AlarmActuation string
}

// NewTopics derives the topic names from the group id.
func NewTopics(groupID string) Topics {
	return Topics{
		RoomData:            groupID + "_ROOM_DATA",
		OtherRooms:          OtherRoomsTopic,
		AlarmControl:        groupID + "_ALARM_CONTROL",
		Actuation:           groupID + "_ACT",
		OtherRoomsActuation: groupID + "_OTHER_ROOMS_ACT",
		AlarmActuation:      groupID + "_ALARM_ACT",
	}
}

// ReplyTo returns the topic that commands triggered by a message on inbound
// should be published to, and false for topics that are not inbound.
func (t Topics) ReplyTo(inbound string) (string, bool) {
	switch inbound {
	case t.RoomData:
		return t.Actuation, true
	case t.OtherRooms:
		return t.OtherRoomsActuation, true
	case t.AlarmControl:
		return t.AlarmActuation, true
	default:
		return "", false
	}
}

// Feedback returns the topics that carry actuator feedback.
func (t Topics) Feedback() []string {
	return []string{t.Actuation, t.OtherRoomsActuation}
}
