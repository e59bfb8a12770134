package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/gpio2uinput/internal/engine"
	"github.com/sweeney/gpio2uinput/internal/status"
)

func decodeEvent(t *testing.T, payload []byte) map[string]any {
	t.Helper()
	var parsed map[string]map[string]any
	require.NoError(t, json.Unmarshal(payload, &parsed), "payload %s", payload)
	require.Contains(t, parsed, "event")
	return parsed["event"]
}

func TestFormatPayload(t *testing.T) {
	rec := engine.Record{
		Time:      time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Timestamp: 1500 * time.Nanosecond,
		Kind:      engine.KindButton,
		Source:    "gpio",
		Channel:   "offset=21",
		Token:     "BTN_SOUTH",
		Device:    "gamepad",
		Code:      304,
		Pressed:   true,
	}

	payload, err := FormatPayload(rec)
	require.NoError(t, err)

	ev := decodeEvent(t, payload)
	assert.Equal(t, "button", ev["kind"])
	assert.Equal(t, float64(1500), ev["t_ns"])
	assert.Equal(t, "BTN_SOUTH", ev["token"])
	assert.Equal(t, float64(304), ev["code"])
	assert.Equal(t, true, ev["pressed"])
	assert.Equal(t, "2026-02-02T22:18:12Z", ev["time"])
	assert.NotContains(t, ev, "error", "empty error is omitted")
}

func TestFormatPayloadKinds(t *testing.T) {
	tests := []struct {
		rec      engine.Record
		wantKind string
		wantKey  string
	}{
		{engine.Record{Kind: engine.KindHat, Token: "HAT_UP", HatY: -1}, "hat", "hat_y"},
		{engine.Record{Kind: engine.KindAxis, Label: "A0", Raw: 600, Value: 50}, "axis", "label"},
		{engine.Record{Kind: engine.KindUnmapped, Channel: "pin=D9"}, "unmapped", "channel"},
		{engine.Record{Kind: engine.KindBusFault, Err: "short read"}, "bus_fault", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.wantKind, func(t *testing.T) {
			payload, err := FormatPayload(tt.rec)
			require.NoError(t, err)
			ev := decodeEvent(t, payload)
			assert.Equal(t, tt.wantKind, ev["kind"])
			assert.Contains(t, ev, tt.wantKey)
		})
	}
}

func TestFormatPayloadKeepsZeroAxisValue(t *testing.T) {
	payload, err := FormatPayload(engine.Record{Kind: engine.KindAxis, Label: "A0", Code: 0, Raw: 0, Value: 0})
	require.NoError(t, err)

	ev := decodeEvent(t, payload)
	assert.Equal(t, float64(0), ev["value"], "a stick at the minimum reports value 0")
	assert.Equal(t, float64(0), ev["raw"])
	assert.Equal(t, float64(0), ev["code"], "ABS_X is code 0")
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "gpio2uinput/events", TopicEvents)
	assert.Equal(t, "gpio2uinput/system", TopicSystem)
}

func TestFormatSystemPayload(t *testing.T) {
	tests := []struct {
		name  string
		event SystemEvent
		want  string
	}{
		{
			"shutdown",
			SystemEvent{Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC), Event: "SHUTDOWN", Reason: "SIGTERM"},
			`{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGTERM"}}`,
		},
		{
			"reconnected",
			SystemEvent{Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC), Event: "RECONNECTED"},
			`{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`,
		},
		{
			"converted to UTC",
			SystemEvent{Timestamp: time.Date(2026, 2, 3, 15, 30, 45, 0, time.FixedZone("UTC+5", 5*60*60)), Event: "STARTUP"},
			`{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"STARTUP"}}`,
		},
		{
			"status snapshot",
			SystemEvent{Event: "HEARTBEAT", Status: []byte(`{"status":{"event":"HEARTBEAT"}}`)},
			`{"status":{"event":"HEARTBEAT"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := FormatSystemPayload(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(payload))
		})
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	require.NoError(t, f.Publish(engine.Record{Kind: engine.KindButton, Token: "KEY_A"}))

	require.Len(t, f.Records, 1)
	assert.Equal(t, "KEY_A", f.Records[0].Token)
	assert.Len(t, f.Payloads, 1)
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")
	f.PublishSystemError = errors.New("broker down")

	assert.Error(t, f.Publish(engine.Record{}))
	assert.Error(t, f.PublishSystem(SystemEvent{Event: "STARTUP"}))
	assert.Empty(t, f.Records, "nothing recorded on error")
	assert.Empty(t, f.SystemEvents, "nothing recorded on error")
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(engine.Record{})
	f.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true})
	f.Close()
	f.Connected = true

	f.Reset()

	assert.Empty(t, f.Records)
	assert.Empty(t, f.Payloads)
	assert.Empty(t, f.SystemEvents)
	assert.Empty(t, f.SystemPayloads)
	assert.False(t, f.Closed)
	assert.False(t, f.Connected)
}

func TestFakePublisherRecordsRetainedFlag(t *testing.T) {
	f := NewFakePublisher()
	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true})
	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "HEARTBEAT"})

	events := f.System()
	require.Len(t, events, 2)
	assert.True(t, events[0].Retained)
	assert.False(t, events[1].Retained)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// drainForwarder runs fw with an already cancelled context, which
// publishes whatever is queued and returns.
func drainForwarder(fw *Forwarder) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fw.Run(ctx)
}

func TestForwarderPublishesQueuedRecords(t *testing.T) {
	pub := NewFakePublisher()
	fw := NewForwarder(pub, nil, 0, quietLogger())

	fw.Observe(engine.Record{Kind: engine.KindButton, Token: "KEY_A"})
	fw.Observe(engine.Record{Kind: engine.KindHat, Token: "HAT_UP"})
	drainForwarder(fw)

	got := pub.Published()
	require.Len(t, got, 2)
	assert.Equal(t, "KEY_A", got[0].Token)
	assert.Equal(t, "HAT_UP", got[1].Token)
}

func TestForwarderDropsWhenFull(t *testing.T) {
	pub := NewFakePublisher()
	fw := NewForwarder(pub, nil, 0, quietLogger())

	for i := 0; i < QueueSize+10; i++ {
		fw.Observe(engine.Record{Kind: engine.KindAxis, Value: i % 101})
	}
	assert.Equal(t, int64(10), fw.Dropped())
}

func TestForwarderPublishErrorIsNotFatal(t *testing.T) {
	pub := NewFakePublisher()
	pub.PublishError = errors.New("broker down")
	fw := NewForwarder(pub, nil, 0, quietLogger())

	fw.Observe(engine.Record{Kind: engine.KindButton})
	drainForwarder(fw)

	assert.Empty(t, pub.Published())
}

func TestForwarderLifecycleWithStatus(t *testing.T) {
	pub := NewFakePublisher()
	pub.Connected = true
	tracker := status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{Broker: "tcp://localhost:1883"})
	fw := NewForwarder(pub, tracker, 0, quietLogger())

	fw.Startup()
	fw.Shutdown("SIGTERM")

	events := pub.System()
	require.Len(t, events, 2)
	assert.Equal(t, "STARTUP", events[0].Event)
	assert.True(t, events[0].Retained)

	var parsed status.StatusJSON
	require.NoError(t, json.Unmarshal(pub.SystemPayloads[1], &parsed))
	assert.Equal(t, "SHUTDOWN", parsed.Status.Event)
	assert.Equal(t, "SIGTERM", parsed.Status.Reason)
	assert.True(t, parsed.Status.MQTT.Connected, "connection state copied into the snapshot")
	assert.True(t, tracker.Snapshot().MQTTConnected, "tracker updated with connection state")
}

func TestForwarderLifecycleWithoutStatus(t *testing.T) {
	pub := NewFakePublisher()
	fw := NewForwarder(pub, nil, 0, quietLogger())
	fw.now = func() time.Time { return time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC) }

	fw.Shutdown("SIGINT")

	require.Len(t, pub.SystemPayloads, 1)
	assert.Equal(t, `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGINT"}}`,
		string(pub.SystemPayloads[0]))
}

func TestForwarderHeartbeat(t *testing.T) {
	pub := NewFakePublisher()
	tracker := status.NewTracker(time.Now(), status.Config{})
	fw := NewForwarder(pub, tracker, 10*time.Millisecond, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		fw.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(pub.System()) > 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	events := pub.System()
	assert.Equal(t, "HEARTBEAT", events[0].Event)
	assert.False(t, events[0].Retained)
}
