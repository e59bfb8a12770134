package action

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadTarget is returned when a mapping target names no channel.
var ErrBadTarget = errors.New("bad mapping target")

// Source distinguishes edge-triggered GPIO lines from expander bus pins.
type Source int

const (
	Edge Source = iota
	Bus
)

func (s Source) String() string {
	if s == Bus {
		return "bus"
	}
	return "gpio"
}

// Bus pins are numbered like the expander's digital header. Pin p is bit
// p-MinPin of the digital mask.
const (
	MinPin = 2
	MaxPin = 13
)

// Channel identifies a physical input. For Edge channels ID is the line
// offset, for Bus channels it is the pin number.
type Channel struct {
	Source Source
	ID     int
}

// Line returns the Edge channel for a GPIO line offset.
func Line(offset int) Channel { return Channel{Source: Edge, ID: offset} }

// Pin returns the Bus channel for an expander pin.
func Pin(pin int) Channel { return Channel{Source: Bus, ID: pin} }

// PinForBit returns the Bus channel for bit index bit of the digital mask.
func PinForBit(bit int) Channel { return Pin(bit + MinPin) }

// Bit returns the digital mask bit of a Bus channel.
func (c Channel) Bit() int { return c.ID - MinPin }

func (c Channel) String() string {
	if c.Source == Bus {
		return fmt.Sprintf("pin=D%d", c.ID)
	}
	return fmt.Sprintf("offset=%d", c.ID)
}

// ParseTarget resolves the first column of a mapping line. A bare integer
// is a GPIO line offset; D<n>, I2C:D<n> and I2C:<n> name expander pins in
// [MinPin, MaxPin].
func ParseTarget(token string) (Channel, error) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if t == "" {
		return Channel{}, fmt.Errorf("%w: empty target", ErrBadTarget)
	}

	if isDigits(t) {
		n, err := strconv.Atoi(t)
		if err != nil {
			return Channel{}, fmt.Errorf("%w: %q: %v", ErrBadTarget, token, err)
		}
		return Line(n), nil
	}

	var digits string
	if rest, ok := strings.CutPrefix(t, "I2C:"); ok {
		digits = strings.TrimPrefix(rest, "D")
	} else if len(t) > 1 && t[0] == 'D' {
		digits = t[1:]
	} else {
		return Channel{}, fmt.Errorf("%w: %q", ErrBadTarget, token)
	}

	if !isDigits(digits) {
		return Channel{}, fmt.Errorf("%w: %q", ErrBadTarget, token)
	}
	pin, err := strconv.Atoi(digits)
	if err != nil || pin < MinPin || pin > MaxPin {
		return Channel{}, fmt.Errorf("%w: pin %q outside D%d..D%d", ErrBadTarget, token, MinPin, MaxPin)
	}
	return Pin(pin), nil
}
