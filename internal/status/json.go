package status

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/gpio2uinput/internal/engine"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Hat           HatJSON        `json:"hat"`
	Axes          map[string]int `json:"axes"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Bus           *BusJSON       `json:"bus,omitempty"`
	Counts        CountsJSON     `json:"event_counts"`
	Lines         []LineJSON     `json:"lines"`
	Last          *engine.Record `json:"last,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// HatJSON is the current hat position.
type HatJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// BusJSON reports expander bus health.
type BusJSON struct {
	Dev     string `json:"dev"`
	Addr    string `json:"addr"`
	Healthy bool   `json:"healthy"`
	Faults  int    `json:"faults"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	GamepadPress    int `json:"gamepad_press"`
	GamepadRelease  int `json:"gamepad_release"`
	KeyboardPress   int `json:"keyboard_press"`
	KeyboardRelease int `json:"keyboard_release"`
	HatMoves        int `json:"hat_moves"`
	Unmapped        int `json:"unmapped"`
}

// LineJSON is one watched GPIO line.
type LineJSON struct {
	Offset int    `json:"offset"`
	Name   string `json:"name,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip        string `json:"chip"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	DebounceUs  int64  `json:"debounce_us"`
	ActiveHigh  bool   `json:"active_high"`
	Auto        string `json:"auto"`
	MapFile     string `json:"map,omitempty"`
	PollMs      int64  `json:"poll_ms,omitempty"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	Gamepad     bool   `json:"gamepad"`
	Keyboard    bool   `json:"keyboard"`
}

func buildInner(snap Snapshot) StatusInner {
	axes := snap.Axes
	if axes == nil {
		axes = map[string]int{}
	}
	lines := make([]LineJSON, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		lines = append(lines, LineJSON{Offset: l.Offset, Name: l.Name})
	}

	inner := StatusInner{
		Hat:           HatJSON{X: snap.HatX, Y: snap.HatY},
		Axes:          axes,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			GamepadPress:    snap.Counts.GamepadPress,
			GamepadRelease:  snap.Counts.GamepadRelease,
			KeyboardPress:   snap.Counts.KeyboardPress,
			KeyboardRelease: snap.Counts.KeyboardRelease,
			HatMoves:        snap.Counts.HatMoves,
			Unmapped:        snap.Counts.Unmapped,
		},
		Lines: lines,
		Last:  snap.Last,
		Config: ConfigJSON{
			Chip:        snap.Config.Chip,
			Start:       snap.Config.Start,
			End:         snap.Config.End,
			DebounceUs:  snap.Config.DebounceUs,
			ActiveHigh:  snap.Config.ActiveHigh,
			Auto:        snap.Config.Auto,
			MapFile:     snap.Config.MapFile,
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Gamepad:     snap.Config.Gamepad,
			Keyboard:    snap.Config.Keyboard,
		},
	}
	if snap.Config.BusDev != "" {
		inner.Bus = &BusJSON{
			Dev:     snap.Config.BusDev,
			Addr:    fmt.Sprintf("0x%02x", snap.Config.BusAddr),
			Healthy: snap.BusHealthy,
			Faults:  snap.BusFaults,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
