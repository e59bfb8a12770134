package logic

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_FirstEdgeAccepted(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	assert.True(t, d.Accept(5, 123), "first edge on a line")
	ts, ok := d.Last(5)
	assert.True(t, ok)
	assert.Equal(t, time.Duration(123), ts)
}

func TestDebouncer_RejectsWithinWindow(t *testing.T) {
	d := NewDebouncer(1000 * time.Microsecond)

	// Falling at 0, rising at 0.5ms: the release is bounce.
	require.True(t, d.Accept(5, 0))
	assert.False(t, d.Accept(5, 500*time.Microsecond))
	ts, _ := d.Last(5)
	assert.Zero(t, ts, "rejected edge leaves history alone")
}

func TestDebouncer_AcceptsAtWindow(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	d.Accept(5, 10*time.Millisecond)
	assert.True(t, d.Accept(5, 11*time.Millisecond), "exactly one window later")
	assert.False(t, d.Accept(5, 11*time.Millisecond+999*time.Microsecond), "inside the new edge's window")
}

func TestDebouncer_LinesAreIndependent(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	d.Accept(5, 0)
	assert.True(t, d.Accept(6, 100))
}

func TestDebouncer_TimestampRegressionAccepted(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	d.Accept(5, 10*time.Millisecond)

	back := 9*time.Millisecond + 500*time.Microsecond
	assert.True(t, d.Accept(5, back), "edge timestamped before the last accepted one")
	ts, _ := d.Last(5)
	assert.Equal(t, back, ts, "history follows the regressed edge")
}

func TestDebouncer_ZeroWindow(t *testing.T) {
	d := NewDebouncer(0)
	for i := 0; i < 5; i++ {
		require.True(t, d.Accept(5, 100), "iteration %d", i)
	}
}

func TestDebouncer_AcceptedEdgesRespectWindow(t *testing.T) {
	const window = 2 * time.Millisecond
	d := NewDebouncer(window)
	rng := rand.New(rand.NewSource(1))

	var ts time.Duration
	var last time.Duration
	have := false
	for i := 0; i < 5000; i++ {
		ts += time.Duration(rng.Intn(1500)) * time.Microsecond
		if d.Accept(3, ts) {
			if have {
				require.GreaterOrEqual(t, ts-last, window, "accepted edges too close")
			}
			last, have = ts, true
		}
	}
}

func TestHat_Directions(t *testing.T) {
	tests := []struct {
		dir  HatDir
		x, y int
	}{
		{HatUp, 0, -1},
		{HatDown, 0, 1},
		{HatLeft, -1, 0},
		{HatRight, 1, 0},
	}
	for _, tt := range tests {
		var h Hat
		h.Set(tt.dir, true)
		x, y, changed := h.Recompute()
		assert.Equal(t, [3]any{tt.x, tt.y, true}, [3]any{x, y, changed}, "dir %d press", tt.dir)

		h.Set(tt.dir, false)
		x, y, changed = h.Recompute()
		assert.Equal(t, [3]any{0, 0, true}, [3]any{x, y, changed}, "dir %d release", tt.dir)
	}
}

func TestHat_OpposingCancel(t *testing.T) {
	for _, order := range [][2]HatDir{{HatUp, HatDown}, {HatDown, HatUp}} {
		var h Hat
		h.Set(order[0], true)
		h.Recompute()
		h.Set(order[1], true)
		x, y, changed := h.Recompute()
		assert.Equal(t, 0, x, "order %v", order)
		assert.Equal(t, 0, y, "order %v", order)
		assert.True(t, changed, "order %v: y moved back to 0", order)
	}

	var h Hat
	h.Set(HatLeft, true)
	h.Set(HatRight, true)
	h.Set(HatUp, true)
	x, y, _ := h.Recompute()
	assert.Equal(t, 0, x, "left+right+up")
	assert.Equal(t, -1, y, "left+right+up")
}

func TestHat_NoChangeNoEmission(t *testing.T) {
	var h Hat
	_, _, changed := h.Recompute()
	assert.False(t, changed, "idle hat")

	// Both vertical directions held: pressing left only moves x.
	h.Set(HatUp, true)
	h.Set(HatDown, true)
	_, _, changed = h.Recompute()
	assert.False(t, changed, "up+down from centre")

	h.Set(HatLeft, true)
	x, y, changed := h.Recompute()
	assert.True(t, changed)
	assert.Equal(t, -1, x)
	assert.Equal(t, 0, y)
	assert.True(t, h.Pressed(HatLeft))
	assert.False(t, h.Pressed(HatRight))

	px, py := h.Position()
	assert.Equal(t, -1, px)
	assert.Equal(t, 0, py)
}

func TestAxis_Seed(t *testing.T) {
	tests := []struct {
		first          uint16
		wantLo, wantHi int
	}{
		{600, 344, 856},
		{100, 0, 512},
		{256, 0, 512},
		{257, 1, 513},
		{1000, 511, 1023},
		{1023, 511, 1023},
		{0, 0, 512},
	}
	for _, tt := range tests {
		a := NewAxis(0, "A0", 0)
		a.Update(tt.first)
		lo, hi, _, ok := a.Bounds()
		require.True(t, ok, "first=%d", tt.first)
		assert.Equal(t, tt.wantLo, lo, "first=%d lo", tt.first)
		assert.Equal(t, tt.wantHi, hi, "first=%d hi", tt.first)
	}
}

func TestAxis_ScalesToFull(t *testing.T) {
	a := NewAxis(0, "A0", 0)
	v, changed := a.Update(600)
	assert.Equal(t, 50, v, "first sample sits at centre")
	assert.True(t, changed)

	v, _ = a.Update(856)
	assert.Equal(t, 100, v, "sample at max")
	v, _ = a.Update(344)
	assert.Equal(t, 0, v, "sample at min")
}

func TestAxis_EmitsOnlyOnChange(t *testing.T) {
	a := NewAxis(0, "A0", 0)
	_, changed := a.Update(512)
	assert.True(t, changed, "first sample is always a change")
	_, changed = a.Update(512)
	assert.False(t, changed, "repeated sample")
	// 1 count moves the scaled value by less than one step.
	_, changed = a.Update(513)
	assert.False(t, changed, "sub-step movement")
	assert.Equal(t, 50, a.Last())
}

func TestAxis_ExtendsBounds(t *testing.T) {
	a := NewAxis(0, "A0", 0)
	a.Update(600)
	a.Update(1000)
	a.Update(10)
	lo, hi, span, _ := a.Bounds()
	assert.Equal(t, [3]int{10, 1000, 990}, [3]int{lo, hi, span})

	// Bounds never shrink.
	a.Update(500)
	lo2, hi2, _, _ := a.Bounds()
	assert.Equal(t, lo, lo2)
	assert.Equal(t, hi, hi2)
}

func TestAxis_BoundsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		a := NewAxis(0, "A0", 0)
		for i := 0; i < 100; i++ {
			s := uint16(rng.Intn(ADCMax + 1))
			v, _ := a.Update(s)
			require.True(t, v >= 0 && v <= ScaledMax, "trial %d: scaled %d out of range for sample %d", trial, v, s)
			lo, hi, _, _ := a.Bounds()
			require.GreaterOrEqual(t, hi-lo, MinSpan, "trial %d", trial)
		}
	}
}

func TestAxis_Monotonic(t *testing.T) {
	a := NewAxis(0, "A0", 0)
	a.Update(300)
	prev := -1
	for s := 301; s <= ADCMax; s += 3 {
		v, _ := a.Update(uint16(s))
		require.GreaterOrEqual(t, v, prev, "sample %d", s)
		prev = v
	}
}

func TestAxis_Uninitialised(t *testing.T) {
	a := NewAxis(2, "A2", 3)
	_, _, _, ok := a.Bounds()
	assert.False(t, ok, "no bounds before the first sample")
	assert.Equal(t, -1, a.Last())
}
