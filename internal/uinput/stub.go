//go:build !linux

package uinput

import (
	"errors"
	"log/slog"
)

// RealDevice is not available on non-Linux platforms.
type RealDevice struct{}

// Create returns an error on non-Linux platforms.
func Create(path string, spec Spec, logger *slog.Logger) (*RealDevice, error) {
	return nil, errors.New("uinput: not supported on this platform (requires Linux)")
}

// EmitButton is not implemented on non-Linux platforms.
func (d *RealDevice) EmitButton(code int, pressed bool) error {
	return errors.New("uinput: not supported")
}

// EmitAxis is not implemented on non-Linux platforms.
func (d *RealDevice) EmitAxis(code int, value int) error {
	return errors.New("uinput: not supported")
}

// Sync is not implemented on non-Linux platforms.
func (d *RealDevice) Sync() error {
	return errors.New("uinput: not supported")
}

// Close is not implemented on non-Linux platforms.
func (d *RealDevice) Close() error {
	return nil
}
