package logic

// Axis calibrates one analog channel of the expander frame into the range
// 0..ScaledMax. The observed min/max only ever widen.
type Axis struct {
	// Index is the sample's position in the frame.
	Index int
	// Label names the expander input, e.g. "A0".
	Label string
	// Code is the ABS_* code the axis is reported as.
	Code int

	initialized bool
	min, max    int
	last        int
}

// NewAxis returns an uncalibrated axis.
func NewAxis(index int, label string, code int) *Axis {
	return &Axis{Index: index, Label: label, Code: code, last: -1}
}

// Update feeds one raw sample and returns the scaled value. changed is
// false when the scaled value equals the last one returned.
//
// The first sample seeds a window of InitialSpan counts starting
// InitialSpan/2 below it, capped at ADCMax, so output is usable without a
// calibration phase.
func (a *Axis) Update(sample uint16) (scaled int, changed bool) {
	s := int(sample)
	if !a.initialized {
		a.seed(s)
	}
	if s < a.min {
		a.min = s
	}
	if s > a.max {
		a.max = s
	}

	span := max(a.max-a.min, MinSpan)
	clamped := min(max(s, a.min), a.max)
	scaled = min(max((clamped-a.min)*ScaledMax/span, 0), ScaledMax)

	changed = scaled != a.last
	a.last = scaled
	return scaled, changed
}

func (a *Axis) seed(s int) {
	a.initialized = true

	lo := 0
	if s > InitialSpan/2 {
		lo = s - InitialSpan/2
	}
	hi := lo + InitialSpan
	if hi > ADCMax {
		hi = ADCMax
		lo = ADCMax - InitialSpan
	}
	if hi < s {
		hi = s
	}

	a.min = lo
	a.max = max(lo+MinSpan, hi)
}

// Bounds returns the observed range and effective span. ok is false
// before the first sample.
func (a *Axis) Bounds() (lo, hi, span int, ok bool) {
	if !a.initialized {
		return 0, 0, 0, false
	}
	return a.min, a.max, max(a.max-a.min, MinSpan), true
}

// Last returns the last scaled value, or -1 before the first sample.
func (a *Axis) Last() int {
	return a.last
}

// Center returns the midpoint of the reported range.
func Center() int {
	return ScaledMax / 2
}
