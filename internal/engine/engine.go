// Package engine translates GPIO edges and expander bus polls into virtual
// gamepad and keyboard events.
//
// One goroutine runs the dispatch loop and owns all per-line and per-axis
// state; nothing in this package is safe for concurrent use except through
// Run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sweeney/gpio2uinput/internal/bus"
	"github.com/sweeney/gpio2uinput/internal/gpio"
	"github.com/sweeney/gpio2uinput/internal/logic"
	"github.com/sweeney/gpio2uinput/internal/mapping"
	"github.com/sweeney/gpio2uinput/internal/uinput"
)

// ErrNothingToWatch is returned by New when there are no watched lines
// and no bus inputs.
var ErrNothingToWatch = errors.New("no lines could be requested and no bus inputs configured")

// Default and minimum bus poll interval.
const (
	DefaultPollInterval = 5 * time.Millisecond
	MinPollInterval     = time.Millisecond
)

// Options tune the engine.
type Options struct {
	// Debounce is the per-line software debounce window.
	Debounce time.Duration

	// ActiveHigh makes a rising edge (or a set mask bit) a press. The
	// default is active-low: falling edge, or a cleared bit, is a press.
	ActiveHigh bool

	// PollInterval is the bus poll period. Zero means DefaultPollInterval.
	PollInterval time.Duration

	// LogSamples logs every raw bus frame and the per-axis calibration.
	LogSamples bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Config wires an engine to its sources and sinks. Edges, Bus, Gamepad,
// Keyboard and Observer may be nil.
type Config struct {
	Table *mapping.Table

	Edges gpio.Source
	// Lines are the watched lines; their names are copied into records.
	Lines []gpio.Line

	Bus     bus.Reader
	Analogs []bus.AnalogChannel

	Gamepad  uinput.Device
	Keyboard uinput.Device

	Observer Observer
	Logger   *slog.Logger

	Options
}

// Engine is the event dispatch loop and its state.
type Engine struct {
	table    *mapping.Table
	edges    gpio.Source
	names    map[int]string
	bus      bus.Reader
	gamepad  uinput.Device
	keyboard uinput.Device
	observer Observer
	logger   *slog.Logger

	activeHigh bool
	logSamples bool
	interval   time.Duration
	now        func() time.Time
	start      time.Time

	debounce *logic.Debouncer
	hat      logic.Hat
	axes     []*logic.Axis

	next        time.Time
	mask        uint16
	haveMask    bool
	faultLogged bool
}

// New validates cfg and builds an engine. It returns ErrNothingToWatch
// when cfg has no lines and no bus inputs (mapped bus pins or analog
// axes).
func New(cfg Config) (*Engine, error) {
	if cfg.Table == nil {
		cfg.Table = mapping.NewTable()
	}
	busInputs := cfg.Bus != nil && (len(cfg.Table.Bus) > 0 || len(cfg.Analogs) > 0)
	if len(cfg.Lines) == 0 && !busInputs {
		return nil, ErrNothingToWatch
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	interval := cfg.PollInterval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	interval = max(interval, MinPollInterval)

	e := &Engine{
		table:      cfg.Table,
		edges:      cfg.Edges,
		names:      make(map[int]string, len(cfg.Lines)),
		bus:        cfg.Bus,
		gamepad:    cfg.Gamepad,
		keyboard:   cfg.Keyboard,
		observer:   cfg.Observer,
		logger:     logger,
		activeHigh: cfg.ActiveHigh,
		logSamples: cfg.LogSamples,
		interval:   interval,
		now:        now,
		start:      now(),
		debounce:   logic.NewDebouncer(cfg.Debounce),
	}
	for _, l := range cfg.Lines {
		e.names[l.Offset] = l.Name
	}
	if cfg.Bus != nil {
		for _, a := range cfg.Analogs {
			if a.Index < 0 || a.Index >= bus.AnalogCount {
				return nil, fmt.Errorf("analog %s: frame index %d out of range", a.Label, a.Index)
			}
			e.axes = append(e.axes, logic.NewAxis(a.Index, a.Label, a.Code))
		}
	}
	return e, nil
}

// Prime puts the gamepad's hat and analog axes in their rest positions.
func (e *Engine) Prime() error {
	if e.gamepad == nil {
		return nil
	}
	if e.table.Capabilities().Hat {
		if err := e.emitHat(0, 0); err != nil {
			return err
		}
	}
	if len(e.axes) > 0 {
		for _, ax := range e.axes {
			if err := e.gamepad.EmitAxis(ax.Code, logic.Center()); err != nil {
				return fmt.Errorf("prime axis %s: %w", ax.Label, err)
			}
		}
		if err := e.gamepad.Sync(); err != nil {
			return fmt.Errorf("prime axes: %w", err)
		}
	}
	return nil
}

// Run dispatches edges and polls the bus until ctx is cancelled. It
// returns nil on cancellation and an error only if a virtual device write
// fails.
func (e *Engine) Run(ctx context.Context) error {
	var edges <-chan gpio.Edge
	if e.edges != nil {
		edges = e.edges.Edges()
	}

	var timer *time.Timer
	if e.bus != nil {
		e.next = e.now()
		timer = time.NewTimer(0)
		defer timer.Stop()
	}

	for {
		var pollDue <-chan time.Time
		if timer != nil {
			timer.Reset(max(e.next.Sub(e.now()), 0))
			pollDue = timer.C
		}

		select {
		case <-ctx.Done():
			return nil
		case ev := <-edges:
			if err := e.HandleEdge(ev); err != nil {
				return err
			}
			if err := e.drain(edges); err != nil {
				return err
			}
		case <-pollDue:
		}

		if e.bus != nil {
			if now := e.now(); !now.Before(e.next) {
				if err := e.Poll(now); err != nil {
					return err
				}
			}
		}
	}
}

// drain handles edges already queued without waiting for more.
func (e *Engine) drain(edges <-chan gpio.Edge) error {
	for {
		select {
		case ev := <-edges:
			if err := e.HandleEdge(ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// NextPoll returns when the next bus poll is due.
func (e *Engine) NextPoll() time.Time {
	return e.next
}

// HatPosition returns the last computed hat position.
func (e *Engine) HatPosition() (x, y int) {
	return e.hat.Position()
}
