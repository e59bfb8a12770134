//go:build linux

package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

// ioctl requests from linux/uinput.h.
const (
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetAbsBit  = 0x40045567

	busUSB      = 0x03
	maxNameSize = 80
	absCnt      = 0x40
)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// userDev is struct uinput_user_dev, written to the device before
// UI_DEV_CREATE.
type userDev struct {
	Name       [maxNameSize]byte
	ID         inputID
	EffectsMax uint32
	Absmax     [absCnt]int32
	Absmin     [absCnt]int32
	Absfuzz    [absCnt]int32
	Absflat    [absCnt]int32
}

// settleDelay gives udev time to publish the new device node.
const settleDelay = 100 * time.Millisecond

// RealDevice is a device created through /dev/uinput.
type RealDevice struct {
	f    *os.File
	name string
	buf  bytes.Buffer
}

// Create opens path (normally DefaultPath) and creates a device as
// described by spec. Keys the kernel refuses are logged and skipped.
func Create(path string, spec Spec, logger *slog.Logger) (*RealDevice, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	fd := int(f.Fd())

	fail := func(what string, err error) (*RealDevice, error) {
		f.Close()
		return nil, fmt.Errorf("%s (%s): %w", what, spec.Name, err)
	}

	if err := unix.IoctlSetInt(fd, uiSetEvBit, int(evdev.EV_KEY)); err != nil {
		return fail("UI_SET_EVBIT EV_KEY", err)
	}
	if err := unix.IoctlSetInt(fd, uiSetEvBit, int(evdev.EV_SYN)); err != nil {
		return fail("UI_SET_EVBIT EV_SYN", err)
	}
	if len(spec.Axes) > 0 {
		if err := unix.IoctlSetInt(fd, uiSetEvBit, int(evdev.EV_ABS)); err != nil {
			return fail("UI_SET_EVBIT EV_ABS", err)
		}
	}

	dev := userDev{
		ID: inputID{Bustype: busUSB, Vendor: Vendor, Product: spec.Product, Version: Version},
	}
	copy(dev.Name[:maxNameSize-1], spec.Name)

	for _, ax := range spec.Axes {
		if ax.Code < 0 || ax.Code >= absCnt {
			return fail("abs axis", fmt.Errorf("code %d out of range", ax.Code))
		}
		if err := unix.IoctlSetInt(fd, uiSetAbsBit, ax.Code); err != nil {
			return fail("UI_SET_ABSBIT", err)
		}
		dev.Absmin[ax.Code] = int32(ax.Min)
		dev.Absmax[ax.Code] = int32(ax.Max)
	}

	for _, code := range spec.Keys {
		if err := unix.IoctlSetInt(fd, uiSetKeyBit, code); err != nil {
			logger.Warn("UI_SET_KEYBIT failed", "device", spec.Name, "code", code, "err", err)
		}
	}

	var setup bytes.Buffer
	if err := binary.Write(&setup, binary.NativeEndian, dev); err != nil {
		return fail("encode uinput_user_dev", err)
	}
	if _, err := f.Write(setup.Bytes()); err != nil {
		return fail("write uinput_user_dev", err)
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		return fail("UI_DEV_CREATE", err)
	}

	time.Sleep(settleDelay)
	return &RealDevice{f: f, name: spec.Name}, nil
}

// EmitButton writes an EV_KEY event.
func (d *RealDevice) EmitButton(code int, pressed bool) error {
	return d.write(int(evdev.EV_KEY), code, boolValue(pressed))
}

// EmitAxis writes an EV_ABS event.
func (d *RealDevice) EmitAxis(code int, value int) error {
	return d.write(int(evdev.EV_ABS), code, value)
}

// Sync writes SYN_REPORT.
func (d *RealDevice) Sync() error {
	return d.write(int(evdev.EV_SYN), int(evdev.SYN_REPORT), 0)
}

func (d *RealDevice) write(typ, code, value int) error {
	var tv syscall.Timeval
	if err := syscall.Gettimeofday(&tv); err != nil {
		return fmt.Errorf("gettimeofday: %w", err)
	}
	ev := evdev.InputEvent{
		Time:  tv,
		Type:  evdev.EvType(typ),
		Code:  evdev.EvCode(code),
		Value: int32(value),
	}

	d.buf.Reset()
	if err := binary.Write(&d.buf, binary.NativeEndian, ev); err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := d.f.Write(d.buf.Bytes()); err != nil {
		return fmt.Errorf("write %s event: %w", d.name, err)
	}
	return nil
}

// Close destroys the device and closes the control file.
func (d *RealDevice) Close() error {
	destroyErr := unix.IoctlSetInt(int(d.f.Fd()), uiDevDestroy, 0)
	closeErr := d.f.Close()
	if destroyErr != nil {
		return fmt.Errorf("UI_DEV_DESTROY (%s): %w", d.name, destroyErr)
	}
	return closeErr
}
