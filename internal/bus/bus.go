// Package bus reads sample frames from the I/O expander on the I2C bus.
//
// A frame is AnalogCount little-endian uint16 analog samples followed by a
// little-endian uint16 digital mask, where bit n is the level of pin D(n+2).
package bus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/holoplot/go-evdev"
)

const (
	// AnalogCount is the number of analog samples in a frame.
	AnalogCount = 5
	// FrameSize is the size of a frame in bytes.
	FrameSize = (AnalogCount + 1) * 2
	// DigitalBits is the number of meaningful bits in the mask.
	DigitalBits = 12
)

// ErrShortRead is returned when a read yields anything but a full frame.
var ErrShortRead = errors.New("short bus read")

// Frame is one decoded poll.
type Frame struct {
	Analog [AnalogCount]uint16
	Mask   uint16
}

// Decode parses a raw frame.
func Decode(buf []byte) (Frame, error) {
	var f Frame
	if len(buf) != FrameSize {
		return f, fmt.Errorf("%w: got %d bytes, want %d", ErrShortRead, len(buf), FrameSize)
	}
	for i := range f.Analog {
		f.Analog[i] = binary.LittleEndian.Uint16(buf[i*2:])
	}
	f.Mask = binary.LittleEndian.Uint16(buf[AnalogCount*2:])
	return f, nil
}

// Encode is the inverse of Decode.
func (f Frame) Encode() []byte {
	buf := make([]byte, FrameSize)
	for i, v := range f.Analog {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	binary.LittleEndian.PutUint16(buf[AnalogCount*2:], f.Mask)
	return buf
}

// Reader reads frames from the expander.
type Reader interface {
	// ReadFrame performs one synchronous read.
	ReadFrame() (Frame, error)

	// Close releases the bus.
	Close() error
}

// AnalogChannel binds a frame sample to an absolute axis.
type AnalogChannel struct {
	Label string
	Index int
	Code  int
}

// DefaultAnalogs are the expander's analog inputs and the axes they drive.
var DefaultAnalogs = []AnalogChannel{
	{"A0", 0, int(evdev.ABS_X)},
	{"A1", 1, int(evdev.ABS_Y)},
	{"A2", 2, int(evdev.ABS_RX)},
	{"A3", 3, int(evdev.ABS_RY)},
	{"A6", 4, int(evdev.ABS_Z)},
}

// ParseAddr parses a 7-bit device address written in decimal, 0x hex or
// 0 octal.
func ParseAddr(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 16)
	if err != nil {
		return 0, fmt.Errorf("bad i2c address %q: %w", s, err)
	}
	if v > 0x7f {
		return 0, fmt.Errorf("bad i2c address %q: above 0x7f", s)
	}
	return uint16(v), nil
}
