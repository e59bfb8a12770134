package bus

import "sync"

// FakeReader is a test double that returns scripted frames.
type FakeReader struct {
	mu sync.Mutex

	// Frames contains scripted results. Each ReadFrame consumes the next
	// entry; once exhausted the last entry repeats.
	Frames []FakeResult

	index int

	// Reads counts ReadFrame calls.
	Reads int

	// Closed tracks if Close was called.
	Closed bool
}

// FakeResult is one scripted read.
type FakeResult struct {
	Frame Frame
	Err   error
}

// NewFakeReader creates a FakeReader returning frames in order.
func NewFakeReader(frames ...Frame) *FakeReader {
	f := &FakeReader{}
	for _, fr := range frames {
		f.Frames = append(f.Frames, FakeResult{Frame: fr})
	}
	return f
}

// ReadFrame returns the next scripted result.
func (f *FakeReader) ReadFrame() (Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Reads++
	if len(f.Frames) == 0 {
		return Frame{}, ErrShortRead
	}
	r := f.Frames[f.index]
	if f.index < len(f.Frames)-1 {
		f.index++
	}
	return r.Frame, r.Err
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
