package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sweeney/gpio2uinput/internal/action"
	"github.com/sweeney/gpio2uinput/internal/bus"
	"github.com/sweeney/gpio2uinput/internal/gpio"
	"github.com/sweeney/gpio2uinput/internal/logic"
	"github.com/sweeney/gpio2uinput/internal/uinput"
)

// HandleEdge processes one edge. Edges on unmapped lines and edges inside
// the debounce window are dropped.
func (e *Engine) HandleEdge(ev gpio.Edge) error {
	ch := action.Line(ev.Offset)
	act, ok := e.table.Lookup(ch)
	if !ok {
		return nil
	}
	if ev.Type != gpio.Rising && ev.Type != gpio.Falling {
		return nil
	}
	if !e.debounce.Accept(ev.Offset, ev.Timestamp) {
		return nil
	}

	press := ev.Type == gpio.Falling
	if e.activeHigh {
		press = ev.Type == gpio.Rising
	}

	rec := Record{
		Time:      e.now(),
		Timestamp: ev.Timestamp,
		Source:    action.Edge.String(),
		Channel:   ch.String(),
		Name:      e.names[ev.Offset],
	}
	return e.dispatch(act, press, rec)
}

// Poll reads one frame from the bus and processes it, then schedules the
// next poll one interval after now. A failed read is logged once and
// suppressed until a read succeeds again; nothing from that cycle is
// applied.
func (e *Engine) Poll(now time.Time) error {
	if e.bus == nil {
		return nil
	}
	defer func() { e.next = now.Add(e.interval) }()

	frame, err := e.bus.ReadFrame()
	if err != nil {
		if !e.faultLogged {
			e.faultLogged = true
			e.logger.Warn("bus read failed", "err", err)
			e.observe(Record{Time: now, Timestamp: now.Sub(e.start), Kind: KindBusFault, Source: action.Bus.String(), Err: err.Error()})
		}
		return nil
	}
	if e.faultLogged {
		e.faultLogged = false
		e.logger.Info("bus read recovered")
		e.observe(Record{Time: now, Timestamp: now.Sub(e.start), Kind: KindBusOK, Source: action.Bus.String()})
	}

	if e.logSamples {
		e.logger.Debug("bus sample", "raw", frame.Analog[:], "dmask", fmt.Sprintf("0x%x", frame.Mask))
	}

	if err := e.applyAnalog(now, frame); err != nil {
		return err
	}
	return e.applyDigital(now, frame.Mask)
}

func (e *Engine) applyAnalog(now time.Time, frame bus.Frame) error {
	if len(e.axes) == 0 {
		return nil
	}

	var (
		changed bool
		axisLog strings.Builder
	)
	for _, ax := range e.axes {
		sample := frame.Analog[ax.Index]
		scaled, moved := ax.Update(sample)

		if e.logSamples {
			lo, hi, span, _ := ax.Bounds()
			fmt.Fprintf(&axisLog, " %s raw=%d min=%d max=%d span=%d scaled=%d", ax.Label, sample, lo, hi, span, scaled)
		}
		if !moved || e.gamepad == nil {
			continue
		}
		if err := e.gamepad.EmitAxis(ax.Code, scaled); err != nil {
			return fmt.Errorf("emit axis %s: %w", ax.Label, err)
		}
		changed = true
		e.observe(Record{
			Time:      now,
			Timestamp: now.Sub(e.start),
			Kind:      KindAxis,
			Source:    action.Bus.String(),
			Label:     ax.Label,
			Device:    action.Gamepad.String(),
			Code:      ax.Code,
			Raw:       int(sample),
			Value:     scaled,
		})
	}

	if e.logSamples && axisLog.Len() > 0 {
		e.logger.Debug("bus axes", "axes", strings.TrimSpace(axisLog.String()))
	}
	if changed {
		if err := e.gamepad.Sync(); err != nil {
			return fmt.Errorf("sync axes: %w", err)
		}
	}
	return nil
}

func (e *Engine) applyDigital(now time.Time, mask uint16) error {
	var changed uint16
	if e.haveMask {
		changed = mask ^ e.mask
	}
	e.mask = mask
	e.haveMask = true

	for bit := 0; bit < bus.DigitalBits; bit++ {
		if changed&(1<<bit) == 0 {
			continue
		}
		high := mask&(1<<bit) != 0
		press := !high
		if e.activeHigh {
			press = high
		}

		ch := action.PinForBit(bit)
		rec := Record{
			Time:      now,
			Timestamp: now.Sub(e.start),
			Source:    action.Bus.String(),
			Channel:   ch.String(),
			Pressed:   press,
		}

		act, ok := e.table.Lookup(ch)
		if !ok {
			rec.Kind = KindUnmapped
			e.logger.Info("dispatch", "record", rec)
			e.observe(rec)
			continue
		}
		if err := e.dispatch(act, press, rec); err != nil {
			return err
		}
	}
	return nil
}

// dispatch delivers one press or release and reports it. rec carries the
// origin fields; dispatch fills in the rest.
func (e *Engine) dispatch(act action.Action, press bool, rec Record) error {
	rec.Token = act.Token()
	rec.Pressed = press

	switch a := act.(type) {
	case action.Hat:
		rec.Kind = KindHat
		rec.Device = action.Gamepad.String()
		e.hat.Set(hatDir(a.Dir), press)
		if x, y, changed := e.hat.Recompute(); changed && e.gamepad != nil {
			if err := e.emitHat(x, y); err != nil {
				return err
			}
		}
		rec.HatX, rec.HatY = e.hat.Position()

	case action.Input:
		rec.Kind = KindButton
		rec.Device = a.Device.String()
		rec.Code = a.Code
		if dev := e.device(a.Device); dev != nil {
			if err := dev.EmitButton(a.Code, press); err != nil {
				return fmt.Errorf("emit %s code %d: %w", a.Device, a.Code, err)
			}
			if err := dev.Sync(); err != nil {
				return fmt.Errorf("sync %s: %w", a.Device, err)
			}
		}
	}

	e.logger.Info("dispatch", "record", rec)
	e.observe(rec)
	return nil
}

func (e *Engine) emitHat(x, y int) error {
	if err := e.gamepad.EmitAxis(uinput.HatX, x); err != nil {
		return fmt.Errorf("emit hat x: %w", err)
	}
	if err := e.gamepad.EmitAxis(uinput.HatY, y); err != nil {
		return fmt.Errorf("emit hat y: %w", err)
	}
	if err := e.gamepad.Sync(); err != nil {
		return fmt.Errorf("sync hat: %w", err)
	}
	return nil
}

func (e *Engine) device(d action.Device) uinput.Device {
	if d == action.Gamepad {
		return e.gamepad
	}
	return e.keyboard
}

func (e *Engine) observe(r Record) {
	if e.observer != nil {
		e.observer.Observe(r)
	}
}

func hatDir(d action.Direction) logic.HatDir {
	switch d {
	case action.Up:
		return logic.HatUp
	case action.Down:
		return logic.HatDown
	case action.Left:
		return logic.HatLeft
	default:
		return logic.HatRight
	}
}

var _ slog.LogValuer = Record{}
