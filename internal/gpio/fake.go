package gpio

import (
	"sort"
	"sync"
	"time"
)

// FakeSource is a test double that delivers scripted edges and simulates
// a chip's line table.
type FakeSource struct {
	// Lines is the number of lines on the simulated chip.
	Lines int

	// Names holds line names by offset.
	Names map[int]string

	// Busy marks offsets that are claimed by another consumer.
	Busy map[int]bool

	// Refuse marks offsets whose request fails.
	Refuse map[int]bool

	// Debounce records the debounce requested by the last Watch call.
	Debounce time.Duration

	mu      sync.Mutex
	watched []Line
	edges   chan Edge
	Closed  bool
}

// NewFakeSource creates a FakeSource with lines lines.
func NewFakeSource(lines int) *FakeSource {
	return &FakeSource{
		Lines:  lines,
		Names:  map[int]string{},
		Busy:   map[int]bool{},
		Refuse: map[int]bool{},
		edges:  make(chan Edge, 256),
	}
}

// NumLines returns the simulated line count.
func (f *FakeSource) NumLines() int {
	return f.Lines
}

// Watch applies the same eligibility rules as the real source.
func (f *FakeSource) Watch(offsets []int, debounce time.Duration) []Line {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Debounce = debounce
	var added []Line
	for _, off := range offsets {
		if off == ExcludedLine || off < 0 || off >= f.Lines || f.Busy[off] || f.Refuse[off] {
			continue
		}
		l := Line{Offset: off, Name: f.Names[off]}
		f.watched = append(f.watched, l)
		added = append(added, l)
	}
	return added
}

// Watched returns the watched lines sorted by offset.
func (f *FakeSource) Watched() []Line {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]Line(nil), f.watched...)
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// Push delivers an edge as if the kernel had reported it.
func (f *FakeSource) Push(e Edge) {
	f.edges <- e
}

// Edges returns the edge channel.
func (f *FakeSource) Edges() <-chan Edge {
	return f.edges
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Reset forgets watched lines and the closed flag.
func (f *FakeSource) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watched = nil
	f.Closed = false
}
