package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Kind classifies a diagnostic record.
type Kind string

const (
	KindButton   Kind = "button"
	KindHat      Kind = "hat"
	KindAxis     Kind = "axis"
	KindUnmapped Kind = "unmapped"
	KindBusFault Kind = "bus_fault"
	KindBusOK    Kind = "bus_ok"
)

// Record describes one dispatched action or bus health change.
type Record struct {
	Time time.Time `json:"time"`
	// Timestamp is the kernel edge timestamp for GPIO edges and the
	// engine's monotonic clock for bus events.
	Timestamp time.Duration `json:"t_ns"`
	Kind      Kind          `json:"kind"`
	Source    string        `json:"source,omitempty"`
	Channel   string        `json:"channel,omitempty"`
	Name      string        `json:"name,omitempty"`
	Token     string        `json:"token,omitempty"`
	Device    string        `json:"device,omitempty"`
	Code      int           `json:"code"`
	Pressed   bool          `json:"pressed"`
	HatX      int           `json:"hat_x"`
	HatY      int           `json:"hat_y"`
	Label     string        `json:"label,omitempty"`
	Raw       int           `json:"raw"`
	Value     int           `json:"value"`
	Err       string        `json:"error,omitempty"`
}

func pressWord(p bool) string {
	if p {
		return "DOWN"
	}
	return "UP"
}

// String formats the record as a single log line.
func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "t_ns=%d", r.Timestamp.Nanoseconds())
	if r.Channel != "" {
		fmt.Fprintf(&b, " %s", r.Channel)
	}
	if r.Source == "gpio" {
		name := r.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(&b, " name=%s", name)
	}

	switch r.Kind {
	case KindHat:
		fmt.Fprintf(&b, " token=%s -> %s (hat x=%d y=%d)", r.Token, pressWord(r.Pressed), r.HatX, r.HatY)
	case KindButton:
		fmt.Fprintf(&b, " token=%s -> %s (dev=%s code=%d)", r.Token, pressWord(r.Pressed), r.Device, r.Code)
	case KindUnmapped:
		fmt.Fprintf(&b, " (unmapped) -> %s", pressWord(r.Pressed))
	case KindAxis:
		fmt.Fprintf(&b, " axis=%s raw=%d value=%d", r.Label, r.Raw, r.Value)
	case KindBusFault:
		fmt.Fprintf(&b, " bus fault: %s", r.Err)
	case KindBusOK:
		b.WriteString(" bus ok")
	}
	return b.String()
}

// LogValue renders the record as structured attributes.
func (r Record) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", string(r.Kind)),
		slog.Int64("t_ns", r.Timestamp.Nanoseconds()),
	}
	if r.Channel != "" {
		attrs = append(attrs, slog.String("channel", r.Channel))
	}
	if r.Name != "" {
		attrs = append(attrs, slog.String("name", r.Name))
	}
	switch r.Kind {
	case KindHat:
		attrs = append(attrs, slog.String("token", r.Token), slog.String("state", pressWord(r.Pressed)),
			slog.Int("x", r.HatX), slog.Int("y", r.HatY))
	case KindButton:
		attrs = append(attrs, slog.String("token", r.Token), slog.String("state", pressWord(r.Pressed)),
			slog.String("device", r.Device), slog.Int("code", r.Code))
	case KindUnmapped:
		attrs = append(attrs, slog.String("state", pressWord(r.Pressed)))
	case KindAxis:
		attrs = append(attrs, slog.String("axis", r.Label), slog.Int("raw", r.Raw), slog.Int("value", r.Value))
	case KindBusFault:
		attrs = append(attrs, slog.String("error", r.Err))
	}
	return slog.GroupValue(attrs...)
}

// Observer receives diagnostic records. Observe is called on the dispatch
// path and must not block.
type Observer interface {
	Observe(Record)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Record)

// Observe calls f(r).
func (f ObserverFunc) Observe(r Record) { f(r) }

// Observers fans a record out to each non-nil observer in order.
type Observers []Observer

// Observe forwards r to every observer.
func (obs Observers) Observe(r Record) {
	for _, o := range obs {
		if o != nil {
			o.Observe(r)
		}
	}
}
