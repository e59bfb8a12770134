package mqtt

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sweeney/gpio2uinput/internal/engine"
	"github.com/sweeney/gpio2uinput/internal/status"
)

// QueueSize is the forwarder's record queue depth.
const QueueSize = 1024

// Forwarder moves dispatch records off the dispatch path and publishes
// them, along with lifecycle events and periodic heartbeats.
type Forwarder struct {
	pub       Publisher
	tracker   *status.Tracker
	heartbeat time.Duration
	logger    *slog.Logger
	now       func() time.Time

	queue   chan engine.Record
	dropped atomic.Int64
}

// NewForwarder creates a Forwarder. tracker may be nil, in which case
// lifecycle events carry no status snapshot. A heartbeat of zero disables
// heartbeats.
func NewForwarder(pub Publisher, tracker *status.Tracker, heartbeat time.Duration, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{
		pub:       pub,
		tracker:   tracker,
		heartbeat: heartbeat,
		logger:    logger,
		now:       time.Now,
		queue:     make(chan engine.Record, QueueSize),
	}
}

// Observe queues r for publishing. It never blocks; when the queue is
// full the record is dropped and counted.
func (f *Forwarder) Observe(r engine.Record) {
	select {
	case f.queue <- r:
	default:
		f.dropped.Add(1)
	}
}

// Dropped returns how many records were dropped because the queue was full.
func (f *Forwarder) Dropped() int64 {
	return f.dropped.Load()
}

// Startup publishes the retained STARTUP event.
func (f *Forwarder) Startup() {
	f.system("STARTUP", "", true)
}

// Shutdown publishes the retained SHUTDOWN event with reason.
func (f *Forwarder) Shutdown(reason string) {
	f.system("SHUTDOWN", reason, true)
}

// Run publishes queued records and heartbeats until ctx is cancelled.
// Records still queued at cancellation are published before it returns.
func (f *Forwarder) Run(ctx context.Context) {
	var tick <-chan time.Time
	if f.heartbeat > 0 {
		ticker := time.NewTicker(f.heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			f.flush()
			return
		case r := <-f.queue:
			f.publish(r)
		case <-tick:
			f.system("HEARTBEAT", "", false)
		}
	}
}

func (f *Forwarder) flush() {
	for {
		select {
		case r := <-f.queue:
			f.publish(r)
		default:
			return
		}
	}
}

func (f *Forwarder) publish(r engine.Record) {
	if err := f.pub.Publish(r); err != nil {
		f.logger.Warn("publish error", "err", err, "kind", r.Kind)
	}
}

func (f *Forwarder) system(event, reason string, retained bool) {
	ev := SystemEvent{
		Timestamp: f.now(),
		Event:     event,
		Reason:    reason,
		Retained:  retained,
	}
	if f.tracker != nil {
		if cs, ok := f.pub.(ConnectionStatus); ok {
			f.tracker.SetMQTTConnected(cs.IsConnected())
		}
		snap := f.tracker.Snapshot()
		ev.Status = status.FormatStatusEvent(snap, event, reason)
		if event == "HEARTBEAT" {
			f.logger.Info("heartbeat",
				"uptime", snap.Uptime().Truncate(time.Second),
				"gamepad_press", snap.Counts.GamepadPress,
				"keyboard_press", snap.Counts.KeyboardPress,
				"dropped", f.Dropped())
		}
	}
	if err := f.pub.PublishSystem(ev); err != nil {
		f.logger.Warn("failed to publish system event", "event", event, "err", err)
		return
	}
	f.logger.Debug("published system event", "event", event)
}

var _ engine.Observer = (*Forwarder)(nil)
