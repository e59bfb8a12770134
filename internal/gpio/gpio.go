// Package gpio provides edge-event sources for GPIO lines.
// The real implementation uses the Linux GPIO character device (v2 uAPI).
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"
	"time"
)

// EdgeType is the electrical direction of an edge.
type EdgeType int

const (
	Rising EdgeType = iota + 1
	Falling
)

func (e EdgeType) String() string {
	switch e {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	default:
		return fmt.Sprintf("edge(%d)", int(e))
	}
}

// Edge is one edge event as reported by the kernel.
type Edge struct {
	Offset int
	Type   EdgeType
	// Timestamp is the kernel's monotonic timestamp of the edge.
	Timestamp time.Duration
}

// Line describes a watched line.
type Line struct {
	Offset int
	Name   string
}

// Source delivers edges from the watched lines. Edges from one line
// arrive in kernel order; edges from different lines may interleave in
// any order.
type Source interface {
	// Edges returns the channel edges are delivered on.
	Edges() <-chan Edge

	// Close releases the lines and stops delivery.
	Close() error
}

// ExcludedLine is never watched. On the Raspberry Pi 5 it is the PCIe
// clock-request line, which produces a constant stream of edges.
const ExcludedLine = 36

// Consumer is the label the kernel shows for lines held by this process.
const Consumer = "gpio2uinput"

// Candidates returns the offsets in [start, end] that may be watched.
func Candidates(start, end int) []int {
	var out []int
	for off := max(start, 0); off <= end; off++ {
		if off == ExcludedLine {
			continue
		}
		out = append(out, off)
	}
	return out
}
