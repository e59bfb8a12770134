package uinput

import (
	"sync"

	"github.com/holoplot/go-evdev"
)

// FakeDevice is a test double that records emitted events.
type FakeDevice struct {
	mu sync.Mutex

	// Spec is the spec the device was created with, if any.
	Spec Spec

	// Events holds every emitted event in order, SYN included.
	Events []Event

	// WriteError, if set, is returned by every emit and Sync.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDevice creates a FakeDevice for spec.
func NewFakeDevice(spec Spec) *FakeDevice {
	return &FakeDevice{Spec: spec}
}

// EmitButton records an EV_KEY event.
func (f *FakeDevice) EmitButton(code int, pressed bool) error {
	return f.record(int(evdev.EV_KEY), code, boolValue(pressed))
}

// EmitAxis records an EV_ABS event.
func (f *FakeDevice) EmitAxis(code int, value int) error {
	return f.record(int(evdev.EV_ABS), code, value)
}

// Sync records a SYN_REPORT.
func (f *FakeDevice) Sync() error {
	return f.record(int(evdev.EV_SYN), int(evdev.SYN_REPORT), 0)
}

func (f *FakeDevice) record(typ, code, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Events = append(f.Events, Event{Type: typ, Code: code, Value: value})
	return nil
}

// Close marks the device as closed.
func (f *FakeDevice) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Recorded returns a copy of the recorded events.
func (f *FakeDevice) Recorded() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.Events...)
}

// Frames splits the recorded events at each SYN. Events after the last
// SYN are returned as a final, unterminated frame.
func (f *FakeDevice) Frames() [][]Event {
	var frames [][]Event
	var cur []Event
	for _, e := range f.Recorded() {
		if e.Type == int(evdev.EV_SYN) {
			frames = append(frames, cur)
			cur = nil
			continue
		}
		cur = append(cur, e)
	}
	if len(cur) > 0 {
		frames = append(frames, cur)
	}
	return frames
}

// Reset clears recorded events.
func (f *FakeDevice) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = nil
	f.Closed = false
}
