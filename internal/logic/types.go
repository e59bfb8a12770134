// Package logic contains the pure state machines of the translation engine:
// the per-line debounce gate, the hat aggregator and the analog axis
// calibrator. This package has NO external dependencies (no GPIO, uinput,
// OS, or clocks). Timestamps are always passed in by the caller.
package logic

// Calibration constants for 10-bit expander samples.
const (
	ADCMax      = 1023
	InitialSpan = 512
	MinSpan     = 32

	// ScaledMax is the top of the normalised axis range.
	ScaledMax = 100
)
