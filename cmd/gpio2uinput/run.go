package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/sweeney/gpio2uinput/internal/bus"
	"github.com/sweeney/gpio2uinput/internal/engine"
	"github.com/sweeney/gpio2uinput/internal/gpio"
	"github.com/sweeney/gpio2uinput/internal/mapping"
	"github.com/sweeney/gpio2uinput/internal/mqtt"
	"github.com/sweeney/gpio2uinput/internal/status"
	"github.com/sweeney/gpio2uinput/internal/uinput"
	"github.com/sweeney/gpio2uinput/internal/web"
)

// chip is what the daemon needs from a GPIO chip.
type chip interface {
	gpio.Source
	NumLines() int
	Watch(offsets []int, debounce time.Duration) []gpio.Line
}

// backends open hardware and network clients.
type backends struct {
	openChip     func(path string, eventBuf int, logger *slog.Logger) (chip, error)
	openBus      func(path string, addr uint16) (bus.Reader, error)
	createDevice func(path string, spec uinput.Spec, logger *slog.Logger) (uinput.Device, error)
	newPublisher func(broker string, logger *slog.Logger) mqtt.Publisher
	now          func() time.Time
}

var hardware = backends{
	openChip: func(path string, eventBuf int, logger *slog.Logger) (chip, error) {
		src, err := gpio.NewRealSource(path, eventBuf, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	},
	openBus: func(path string, addr uint16) (bus.Reader, error) {
		r, err := bus.NewRealReader(path, addr)
		if err != nil {
			return nil, err
		}
		return r, nil
	},
	createDevice: func(path string, spec uinput.Spec, logger *slog.Logger) (uinput.Device, error) {
		d, err := uinput.Create(path, spec, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	},
	newPublisher: func(broker string, logger *slog.Logger) mqtt.Publisher {
		return mqtt.NewRealPublisher(broker, logger)
	},
	now: time.Now,
}

// Run is called by kong when the run command is executed.
func (r *RunCmd) Run(logger *slog.Logger) error {
	if r.Realtime {
		if err := setRealtime(); err != nil {
			logger.Warn("could not set realtime priority; continuing", "err", err)
		} else {
			logger.Debug("realtime priority set", "policy", "SCHED_FIFO")
		}
	}

	d, err := r.setup(hardware, logger)
	if err != nil {
		return err
	}
	defer d.close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return d.run(context.Background(), sigCh)
}

// daemon is a fully wired translator ready to run.
type daemon struct {
	logger *slog.Logger

	engine  *engine.Engine
	tracker *status.Tracker

	source   chip
	reader   bus.Reader
	gamepad  uinput.Device
	keyboard uinput.Device

	publisher mqtt.Publisher
	forwarder *mqtt.Forwarder
	web       *web.Server
}

// setup opens the chip, watches the mapped lines, opens the bus, creates
// the virtual devices and builds the engine. On error everything opened
// so far is released.
func (r *RunCmd) setup(be backends, logger *slog.Logger) (_ *daemon, err error) {
	mode, err := mapping.ParseAutoMode(r.Auto)
	if err != nil {
		return nil, err
	}
	if r.Start < 0 {
		return nil, fmt.Errorf("start must be >= 0, got %d", r.Start)
	}

	table := mapping.Default()
	if r.Map != "" {
		table, err = mapping.LoadFile(r.Map, logger.With("component", "mapping"))
		if err != nil {
			return nil, fmt.Errorf("load map: %w", err)
		}
	}

	d := &daemon{logger: logger}
	defer func() {
		if err != nil {
			d.close()
		}
	}()

	src, err := be.openChip(r.Chip, r.EventBuf, logger.With("component", "gpio"))
	if err != nil {
		return nil, fmt.Errorf("init gpio: %w", err)
	}
	d.source = src

	end := min(r.End, src.NumLines()-1)
	if end < r.End {
		logger.Debug("end clamped to chip", "end", end, "lines", src.NumLines())
	}

	candidates := gpio.Candidates(r.Start, end)
	if filled := mapping.NewAllocator(mode, table).Fill(table, candidates); len(filled) > 0 {
		logger.Debug("auto-assigned lines", "mode", mode, "offsets", filled)
	}

	var offsets []int
	for _, off := range table.EdgeOffsets() {
		if slices.Contains(candidates, off) {
			offsets = append(offsets, off)
		}
	}
	debounce := time.Duration(r.DebounceUs) * time.Microsecond
	lines := src.Watch(offsets, debounce)

	var addr uint16
	var analogs []bus.AnalogChannel
	if r.Bus.Dev != "" {
		addr, err = bus.ParseAddr(r.Bus.Addr)
		if err != nil {
			return nil, err
		}
		d.reader, err = be.openBus(r.Bus.Dev, addr)
		if err != nil {
			return nil, fmt.Errorf("init i2c: %w", err)
		}
		if !r.Bus.NoAxes {
			analogs = bus.DefaultAnalogs
		}
	}

	busInputs := d.reader != nil && (len(table.Bus) > 0 || len(analogs) > 0)
	if len(lines) == 0 {
		if !busInputs {
			return nil, engine.ErrNothingToWatch
		}
		logger.Warn("no GPIO lines requested; running with I2C inputs only")
	}

	caps := table.Capabilities()
	if caps.Gamepad || len(analogs) > 0 {
		d.gamepad, err = be.createDevice(r.Uinput, gamepadSpec(caps, analogs), logger.With("component", "uinput"))
		if err != nil {
			return nil, fmt.Errorf("create gamepad: %w", err)
		}
	}
	if caps.Keyboard {
		d.keyboard, err = be.createDevice(r.Uinput, uinput.Spec{
			Name:    uinput.KeyboardName,
			Product: uinput.KeyboardProduct,
			Keys:    caps.Keys,
		}, logger.With("component", "uinput"))
		if err != nil {
			return nil, fmt.Errorf("create keyboard: %w", err)
		}
	}

	interval := time.Duration(max(r.Bus.IntervalMs, 1)) * time.Millisecond
	d.tracker = status.NewTracker(be.now(), status.Config{
		Chip:        r.Chip,
		Start:       r.Start,
		End:         end,
		DebounceUs:  int64(r.DebounceUs),
		ActiveHigh:  r.ActiveHigh,
		Auto:        mode.String(),
		MapFile:     r.Map,
		BusDev:      r.Bus.Dev,
		BusAddr:     addr,
		PollMs:      interval.Milliseconds(),
		HeartbeatMs: r.MQTT.Heartbeat.Milliseconds(),
		Broker:      r.MQTT.Broker,
		HTTPAddr:    r.HTTP,
		Gamepad:     d.gamepad != nil,
		Keyboard:    d.keyboard != nil,
	})
	d.tracker.SetLines(lines)

	observers := engine.Observers{d.tracker}
	if r.HTTP != "" {
		d.web = web.New(r.HTTP, d.tracker, logger.With("component", "web"))
		observers = append(observers, d.web)
	}
	if r.MQTT.Broker != "" {
		mlog := logger.With("component", "mqtt")
		d.publisher = be.newPublisher(r.MQTT.Broker, mlog)
		d.forwarder = mqtt.NewForwarder(d.publisher, d.tracker, r.MQTT.Heartbeat, mlog)
		observers = append(observers, d.forwarder)
	}

	d.engine, err = engine.New(engine.Config{
		Table:    table,
		Edges:    d.source,
		Lines:    lines,
		Bus:      d.reader,
		Analogs:  analogs,
		Gamepad:  d.gamepad,
		Keyboard: d.keyboard,
		Observer: observers,
		Logger:   logger.With("component", "engine"),
		Options: engine.Options{
			Debounce:     debounce,
			ActiveHigh:   r.ActiveHigh,
			PollInterval: interval,
			LogSamples:   r.Bus.Log,
			Now:          be.now,
		},
	})
	if err != nil {
		return nil, err
	}
	if err = d.engine.Prime(); err != nil {
		return nil, err
	}

	r.logSummary(logger, len(lines), caps.Hat, d, addr, len(analogs), len(table.Bus))
	return d, nil
}

func gamepadSpec(caps mapping.Capabilities, analogs []bus.AnalogChannel) uinput.Spec {
	keys := slices.Clone(caps.Buttons)
	if !slices.Contains(keys, uinput.BtnGamepad) {
		keys = append(keys, uinput.BtnGamepad)
	}
	var axes []uinput.AbsAxis
	if caps.Hat {
		axes = append(axes, uinput.HatAxes()...)
	}
	for _, a := range analogs {
		axes = append(axes, uinput.AbsAxis{Code: a.Code, Min: 0, Max: 100})
	}
	return uinput.Spec{
		Name:    uinput.GamepadName,
		Product: uinput.GamepadProduct,
		Keys:    keys,
		Axes:    axes,
	}
}

func (r *RunCmd) logSummary(logger *slog.Logger, lines int, hat bool, d *daemon, addr uint16, analogs, digital int) {
	logger.Info(fmt.Sprintf("Watching %d GPIO lines", lines))
	if r.ActiveHigh {
		logger.Info("Active HIGH (RISING=press)")
	} else {
		logger.Info("Active LOW (FALLING=press)")
	}
	logger.Info(fmt.Sprintf("Debounce: %d us", r.DebounceUs))
	if d.gamepad != nil {
		logger.Info(fmt.Sprintf("Gamepad device: enabled (hat=%s)", yesNo(hat)))
	}
	if d.keyboard != nil {
		logger.Info("Keyboard device: enabled")
	}
	if d.reader != nil {
		logger.Info(fmt.Sprintf("I2C device: %s addr=0x%02x interval=%dms analog_axes=%d digital_mapped=%d",
			r.Bus.Dev, addr, max(r.Bus.IntervalMs, 1), analogs, digital))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// run starts the optional publishers and the engine, and blocks until a
// signal arrives, ctx is cancelled or the engine fails.
func (d *daemon) run(ctx context.Context, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if d.web != nil {
		go func() {
			if err := d.web.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				d.logger.Error("http server error", "err", err)
			}
		}()
		d.logger.Info("http status server listening", "addr", d.tracker.Snapshot().Config.HTTPAddr)
	}

	fwdDone := make(chan struct{})
	fwdCtx, fwdCancel := context.WithCancel(context.Background())
	defer fwdCancel()
	if d.forwarder != nil {
		d.forwarder.Startup()
		go func() {
			defer close(fwdDone)
			d.forwarder.Run(fwdCtx)
		}()
	} else {
		close(fwdDone)
	}

	engDone := make(chan error, 1)
	go func() { engDone <- d.engine.Run(ctx) }()

	var err error
	reason := "CONTEXT"
	select {
	case s := <-sig:
		reason = signalName(s)
		d.logger.Info("received signal, shutting down", "signal", reason)
		cancel()
		err = <-engDone
	case err = <-engDone:
		if err != nil {
			reason = "ERROR"
		}
	case <-ctx.Done():
		err = <-engDone
	}

	fwdCancel()
	<-fwdDone
	if d.forwarder != nil {
		d.forwarder.Shutdown(reason)
		if dropped := d.forwarder.Dropped(); dropped > 0 {
			d.logger.Warn("mqtt records dropped", "count", dropped)
		}
	}

	if d.web != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
		defer stop()
		if serr := d.web.Shutdown(shutdownCtx); serr != nil {
			d.logger.Warn("http shutdown", "err", serr)
		}
	}
	return err
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

// close releases devices, the bus, the chip and the publisher.
func (d *daemon) close() {
	for _, c := range []interface{ Close() error }{d.gamepad, d.keyboard, d.reader, d.source, d.publisher} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			d.logger.Warn("close", "err", err)
		}
	}
}
