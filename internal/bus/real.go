package bus

import (
	"fmt"
	"strings"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// RealReader reads frames from an I2C device through periph.io.
type RealReader struct {
	bus i2c.BusCloser
	dev *i2c.Dev
	buf []byte
}

// NewRealReader opens the bus at path ("/dev/i2c-1", "1" or "I2C1") and
// addresses the device at addr.
func NewRealReader(path string, addr uint16) (*RealReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	b, err := i2creg.Open(busName(path))
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", path, err)
	}

	return &RealReader{
		bus: b,
		dev: &i2c.Dev{Bus: b, Addr: addr},
		buf: make([]byte, FrameSize),
	}, nil
}

func busName(path string) string {
	return strings.TrimPrefix(path, "/dev/i2c-")
}

// ReadFrame reads and decodes one frame.
func (r *RealReader) ReadFrame() (Frame, error) {
	if err := r.dev.Tx(nil, r.buf); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	return Decode(r.buf)
}

// Close releases the bus.
func (r *RealReader) Close() error {
	if err := r.bus.Close(); err != nil {
		return fmt.Errorf("close i2c bus: %w", err)
	}
	return nil
}

func (r *RealReader) String() string {
	return r.dev.String()
}
