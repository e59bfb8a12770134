package logic

import "time"

// Debouncer gates edges per line by their kernel timestamps. Each line
// remembers the timestamp of its last accepted edge; history is never
// pruned.
type Debouncer struct {
	window time.Duration
	last   map[int]time.Duration
}

// NewDebouncer creates a debouncer with the given window. A zero window
// accepts every edge.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		last:   make(map[int]time.Duration),
	}
}

// Window returns the configured window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Accept reports whether an edge on line at ts passes the gate, and if so
// records ts as the line's last accepted edge.
//
// The first edge on a line is always accepted. Later edges are rejected
// when ts is not before the last accepted timestamp and closer to it than
// the window. An edge timestamped before the last accepted one is
// accepted.
func (d *Debouncer) Accept(line int, ts time.Duration) bool {
	if prev, seen := d.last[line]; seen && d.window > 0 {
		if ts >= prev && ts-prev < d.window {
			return false
		}
	}
	d.last[line] = ts
	return true
}

// Last returns the last accepted timestamp for line.
func (d *Debouncer) Last(line int) (time.Duration, bool) {
	ts, ok := d.last[line]
	return ts, ok
}
