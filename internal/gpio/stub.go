//go:build !linux

package gpio

import (
	"errors"
	"log/slog"
	"time"
)

// RealSource is not available on non-Linux platforms.
type RealSource struct{}

// NewRealSource returns an error on non-Linux platforms.
func NewRealSource(path string, eventBuf int, logger *slog.Logger) (*RealSource, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// NumLines is not implemented on non-Linux platforms.
func (s *RealSource) NumLines() int { return 0 }

// Watch is not implemented on non-Linux platforms.
func (s *RealSource) Watch(offsets []int, debounce time.Duration) []Line { return nil }

// Watched is not implemented on non-Linux platforms.
func (s *RealSource) Watched() []Line { return nil }

// Edges is not implemented on non-Linux platforms.
func (s *RealSource) Edges() <-chan Edge { return nil }

// Close is not implemented on non-Linux platforms.
func (s *RealSource) Close() error { return nil }
