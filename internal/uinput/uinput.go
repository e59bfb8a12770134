// Package uinput creates virtual input devices through /dev/uinput and
// writes key, absolute-axis and synchronisation events to them.
package uinput

import (
	"fmt"

	"github.com/holoplot/go-evdev"
)

// Device is one virtual input device. Emitted events take effect when
// Sync is called.
type Device interface {
	// EmitButton reports a key or button press (true) or release.
	EmitButton(code int, pressed bool) error

	// EmitAxis reports an absolute axis value.
	EmitAxis(code int, value int) error

	// Sync ends the current frame of events.
	Sync() error

	// Close destroys the device.
	Close() error
}

// AbsAxis declares an absolute axis and its range.
type AbsAxis struct {
	Code int
	Min  int
	Max  int
}

// Spec describes a device to create.
type Spec struct {
	Name    string
	Product uint16
	Keys    []int
	Axes    []AbsAxis
}

// Identity shared by the devices this package creates.
const (
	Vendor  = 0x18D1
	Version = 1
)

// Device names and product ids.
const (
	GamepadName     = "gpio-virtual-gamepad"
	GamepadProduct  = 0x0001
	KeyboardName    = "gpio-virtual-keyboard"
	KeyboardProduct = 0x0002
)

// DefaultPath is the uinput control device.
const DefaultPath = "/dev/uinput"

// Event is a single input event, as recorded by FakeDevice.
type Event struct {
	Type  int
	Code  int
	Value int
}

func (e Event) String() string {
	switch e.Type {
	case int(evdev.EV_SYN):
		return "SYN"
	case int(evdev.EV_KEY):
		return fmt.Sprintf("%s=%d", evdev.CodeName(evdev.EV_KEY, evdev.EvCode(e.Code)), e.Value)
	case int(evdev.EV_ABS):
		return fmt.Sprintf("%s=%d", evdev.CodeName(evdev.EV_ABS, evdev.EvCode(e.Code)), e.Value)
	default:
		return fmt.Sprintf("type%d/%d=%d", e.Type, e.Code, e.Value)
	}
}

// HatAxes returns the two hat axes declared with range -1..1.
func HatAxes() []AbsAxis {
	return []AbsAxis{
		{Code: int(evdev.ABS_HAT0X), Min: -1, Max: 1},
		{Code: int(evdev.ABS_HAT0Y), Min: -1, Max: 1},
	}
}

// Hat axis codes.
const (
	HatX = int(evdev.ABS_HAT0X)
	HatY = int(evdev.ABS_HAT0Y)
)

// BtnGamepad is advertised on every gamepad so it is classified as one.
const BtnGamepad = int(evdev.BTN_GAMEPAD)

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}
