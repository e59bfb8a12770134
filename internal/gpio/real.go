//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealSource watches lines on a GPIO chip using the Linux GPIO character
// device. Edge handlers run on gpiocdev's watcher goroutine and hand
// events over on a buffered channel.
type RealSource struct {
	chip     *gpiocdev.Chip
	logger   *slog.Logger
	eventBuf int

	edges chan Edge
	done  chan struct{}

	mu      sync.Mutex
	lines   []*gpiocdev.Line
	watched []Line
	closed  sync.Once
}

// NewRealSource opens the chip at path ("/dev/gpiochip0" or "gpiochip0").
// eventBuf sizes the kernel event buffer of every requested line.
func NewRealSource(path string, eventBuf int, logger *slog.Logger) (*RealSource, error) {
	chip, err := gpiocdev.NewChip(path, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", path, err)
	}
	return &RealSource{
		chip:     chip,
		logger:   logger,
		eventBuf: eventBuf,
		edges:    make(chan Edge, max(eventBuf, 64)),
		done:     make(chan struct{}),
	}, nil
}

// NumLines returns the number of lines on the chip.
func (s *RealSource) NumLines() int {
	return s.chip.Lines()
}

// Watch requests each offset as a pulled-up input reporting both edges.
// Lines that are already in use, have a consumer, are outputs, or are
// refused by the kernel are skipped. When debounce is non-zero it is
// requested as the kernel debounce period, and a line that rejects it is
// requested again without. Watch returns the lines now being watched.
func (s *RealSource) Watch(offsets []int, debounce time.Duration) []Line {
	var added []Line
	for _, off := range offsets {
		if off == ExcludedLine || off < 0 || off >= s.chip.Lines() {
			continue
		}

		info, err := s.chip.LineInfo(off)
		if err != nil {
			s.logger.Debug("line info failed", "offset", off, "err", err)
			continue
		}
		if info.Used || info.Consumer != "" || info.Config.Direction == gpiocdev.LineDirectionOutput {
			s.logger.Debug("line busy, skipping", "offset", off, "consumer", info.Consumer)
			continue
		}

		l, err := s.request(off, debounce)
		if err != nil {
			s.logger.Warn("request line failed", "offset", off, "err", err)
			continue
		}

		line := Line{Offset: off, Name: info.Name}
		s.mu.Lock()
		s.lines = append(s.lines, l)
		s.watched = append(s.watched, line)
		s.mu.Unlock()
		added = append(added, line)
	}
	return added
}

func (s *RealSource) request(off int, debounce time.Duration) (*gpiocdev.Line, error) {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithConsumer(Consumer),
		gpiocdev.WithEventHandler(s.handle),
	}
	if s.eventBuf > 0 {
		opts = append(opts, gpiocdev.WithEventBufferSize(s.eventBuf))
	}

	if debounce > 0 {
		l, err := s.chip.RequestLine(off, append(opts, gpiocdev.WithDebounce(debounce))...)
		if err == nil {
			return l, nil
		}
		s.logger.Debug("kernel debounce refused, retrying without", "offset", off, "err", err)
	}
	return s.chip.RequestLine(off, opts...)
}

func (s *RealSource) handle(evt gpiocdev.LineEvent) {
	e := Edge{Offset: evt.Offset, Timestamp: evt.Timestamp}
	switch evt.Type {
	case gpiocdev.LineEventRisingEdge:
		e.Type = Rising
	case gpiocdev.LineEventFallingEdge:
		e.Type = Falling
	default:
		return
	}
	select {
	case s.edges <- e:
	case <-s.done:
	}
}

// Watched returns the lines being watched, in request order.
func (s *RealSource) Watched() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.watched...)
}

// Edges returns the edge channel.
func (s *RealSource) Edges() <-chan Edge {
	return s.edges
}

// Close releases every requested line and the chip.
func (s *RealSource) Close() error {
	var errs []error
	s.closed.Do(func() {
		close(s.done)

		s.mu.Lock()
		lines := s.lines
		s.lines = nil
		s.mu.Unlock()

		for _, l := range lines {
			if err := l.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close line: %w", err))
			}
		}
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	})
	return errors.Join(errs...)
}
