// Package status provides a thread-safe status tracker for the gpio2uinput
// daemon. It is fed dispatch records by the engine and read by the HTTP
// server and the MQTT heartbeat.
package status

import (
	"maps"
	"sync"
	"time"

	"github.com/sweeney/gpio2uinput/internal/engine"
	"github.com/sweeney/gpio2uinput/internal/gpio"
)

// Config contains daemon configuration for display.
type Config struct {
	Chip        string
	Start       int
	End         int
	DebounceUs  int64
	ActiveHigh  bool
	Auto        string
	MapFile     string
	BusDev      string
	BusAddr     uint16
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	Gamepad     bool
	Keyboard    bool
}

// Counts holds press/release totals per device.
type Counts struct {
	GamepadPress    int
	GamepadRelease  int
	KeyboardPress   int
	KeyboardRelease int
	HatMoves        int
	Unmapped        int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type; the Axes map is a copy.
type Snapshot struct {
	HatX, HatY    int
	Axes          map[string]int
	Counts        Counts
	Lines         []gpio.Line
	BusHealthy    bool
	BusFaults     int
	Last          *engine.Record
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Axes:       map[string]int{},
			BusHealthy: cfg.BusDev != "",
			StartTime:  startTime,
			Config:     cfg,
		},
	}
}

// Observe folds a dispatch record into the tracked state.
func (t *Tracker) Observe(r engine.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch r.Kind {
	case engine.KindHat:
		t.snap.HatX, t.snap.HatY = r.HatX, r.HatY
		t.snap.Counts.HatMoves++
	case engine.KindButton:
		c := &t.snap.Counts
		switch {
		case r.Device == "keyboard" && r.Pressed:
			c.KeyboardPress++
		case r.Device == "keyboard":
			c.KeyboardRelease++
		case r.Pressed:
			c.GamepadPress++
		default:
			c.GamepadRelease++
		}
	case engine.KindAxis:
		t.snap.Axes[r.Label] = r.Value
	case engine.KindUnmapped:
		t.snap.Counts.Unmapped++
	case engine.KindBusFault:
		t.snap.BusHealthy = false
		t.snap.BusFaults++
	case engine.KindBusOK:
		t.snap.BusHealthy = true
	}

	last := r
	t.snap.Last = &last
}

// SetLines records the watched GPIO lines.
func (t *Tracker) SetLines(lines []gpio.Line) {
	t.mu.Lock()
	t.snap.Lines = append([]gpio.Line(nil), lines...)
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Axes = maps.Clone(t.snap.Axes)
	s.Lines = append([]gpio.Line(nil), t.snap.Lines...)
	if t.snap.Last != nil {
		last := *t.snap.Last
		s.Last = &last
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

var _ engine.Observer = (*Tracker)(nil)
