package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/room-control/internal/config"
)

// TestNewTopics verifies the topic layout of a group.
func TestNewTopics(t *testing.T) {
	t.Parallel()

	topics := NewTopics("G3")

	require.Equal(t, "G3_ROOM_DATA", topics.RoomData)
	require.Equal(t, "OTHER_ROOMS", topics.OtherRooms)
	require.Equal(t, "G3_ALARM_CONTROL", topics.AlarmControl)
	require.Equal(t, "G3_ACT", topics.Actuation)
	require.Equal(t, "G3_OTHER_ROOMS_ACT", topics.OtherRoomsActuation)
	require.Equal(t, "G3_ALARM_ACT", topics.AlarmActuation)
	require.Equal(t, []string{"G3_ACT", "G3_OTHER_ROOMS_ACT"}, topics.Feedback())
}

// TestTopics_ReplyTo verifies the reply routing of every inbound topic.
func TestTopics_ReplyTo(t *testing.T) {
	t.Parallel()

	topics := NewTopics("G")

	tests := []struct {
		inbound string
		want    string
		ok      bool
	}{
		{inbound: "G_ROOM_DATA", want: "G_ACT", ok: true},
		{inbound: "OTHER_ROOMS", want: "G_OTHER_ROOMS_ACT", ok: true},
		{inbound: "G_ALARM_CONTROL", want: "G_ALARM_ACT", ok: true},
		{inbound: "G_ACT", want: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := topics.ReplyTo(tt.inbound)
		require.Equal(t, tt.ok, ok, tt.inbound)
		require.Equal(t, tt.want, got, tt.inbound)
	}
}

// TestMemory_PublishSubscribe checks delivery, isolation between topics and reentrant publishing.
func TestMemory_PublishSubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	var got []string

	require.NoError(t, m.Subscribe(ctx, "in", func(ctx context.Context, msg Message) {
		got = append(got, string(msg.Payload))
		require.NoError(t, m.Publish(ctx, "out", msg.Payload))
	}))

	require.NoError(t, m.Publish(ctx, "in", []byte("a")))
	require.NoError(t, m.Publish(ctx, "in", []byte("b")))
	require.NoError(t, m.Publish(ctx, "other", []byte("c")))

	require.Equal(t, []string{"a", "b"}, got)
	require.Len(t, m.Published("out"), 2)
	require.Len(t, m.Published("other"), 1)

	m.Close()
	require.NoError(t, m.Publish(ctx, "in", []byte("d")))
	require.Equal(t, []string{"a", "b"}, got)
}

// TestConnect_Validation covers the checks done before dialing.
func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), Options{})
	require.ErrorIs(t, err, errBrokerURLRequired)
}

// TestOptionsFromConfig maps the broker settings.
func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	opts := OptionsFromConfig(config.BrokerConfig{
		URL:            "tcp://127.0.0.1:1883",
		Username:       "u",
		Password:       "p",
		QoS:            1,
		ConnectTimeout: time.Second,
	}, "room-processor")

	require.Equal(t, Options{
		URL:          "tcp://127.0.0.1:1883",
		ClientPrefix: "room-processor",
		Username:     "u",
		Password:     "p",
		QoS:          1,
		Timeout:      time.Second,
	}, opts)
}
