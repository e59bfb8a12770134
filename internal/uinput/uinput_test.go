package uinput

import (
	"errors"
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeDeviceFrames(t *testing.T) {
	d := NewFakeDevice(Spec{Name: GamepadName})

	require.NoError(t, d.EmitButton(int(evdev.BTN_SOUTH), true))
	require.NoError(t, d.Sync())
	require.NoError(t, d.EmitAxis(HatX, -1))
	require.NoError(t, d.EmitAxis(HatY, 0))
	require.NoError(t, d.Sync())
	require.NoError(t, d.EmitButton(int(evdev.BTN_SOUTH), false))

	frames := d.Frames()
	require.Len(t, frames, 3)
	assert.Equal(t, []Event{{Type: int(evdev.EV_KEY), Code: int(evdev.BTN_SOUTH), Value: 1}}, frames[0])
	assert.Len(t, frames[1], 2)
	assert.Equal(t, 0, frames[2][0].Value)
}

func TestFakeDeviceWriteError(t *testing.T) {
	d := NewFakeDevice(Spec{})
	d.WriteError = errors.New("boom")

	assert.Error(t, d.EmitButton(1, true))
	assert.Error(t, d.Sync())
	assert.Empty(t, d.Recorded())
}

func TestFakeDeviceClose(t *testing.T) {
	d := NewFakeDevice(Spec{})
	require.NoError(t, d.Close())
	assert.True(t, d.Closed)
	d.Reset()
	assert.False(t, d.Closed)
}

func TestHatAxes(t *testing.T) {
	axes := HatAxes()
	require.Len(t, axes, 2)
	assert.Equal(t, AbsAxis{Code: HatX, Min: -1, Max: 1}, axes[0])
	assert.Equal(t, AbsAxis{Code: HatY, Min: -1, Max: 1}, axes[1])
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "SYN", Event{Type: int(evdev.EV_SYN)}.String())
	assert.Contains(t, Event{Type: int(evdev.EV_KEY), Code: int(evdev.KEY_A), Value: 1}.String(), "=1")
}
