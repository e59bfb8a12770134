// Package mqtt forwards dispatch records and lifecycle notices to a broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/gpio2uinput/internal/engine"
)

const (
	// TopicEvents carries one message per dispatch record.
	TopicEvents = "gpio2uinput/events"
	// TopicSystem carries STARTUP, SHUTDOWN, HEARTBEAT and RECONNECTED.
	TopicSystem = "gpio2uinput/system"
)

// Publisher delivers records and lifecycle notices. Errors are reported
// to the caller and never stop dispatch.
type Publisher interface {
	Publish(rec engine.Record) error
	PublishSystem(event SystemEvent) error
	Close() error
}

// ConnectionStatus is implemented by publishers that know whether the
// broker is reachable.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle notice.
type SystemEvent struct {
	Timestamp time.Time
	Event     string
	Reason    string // shutdown only
	Retained  bool

	// Status replaces the short notice body when set; the forwarder puts
	// a full status snapshot here.
	Status []byte
}

type recordBody struct {
	Event engine.Record `json:"event"`
}

type systemBody struct {
	System struct {
		Timestamp string `json:"timestamp"`
		Event     string `json:"event"`
		Reason    string `json:"reason,omitempty"`
	} `json:"system"`
}

// FormatPayload renders rec as {"event": {...}}.
func FormatPayload(rec engine.Record) ([]byte, error) {
	return json.Marshal(recordBody{Event: rec})
}

// FormatSystemPayload renders event as {"system": {...}} unless it carries
// a status snapshot, which is returned as is.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.Status != nil {
		return event.Status, nil
	}
	var body systemBody
	body.System.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	body.System.Event = event.Event
	body.System.Reason = event.Reason
	return json.Marshal(body)
}

// recordMessage prepares rec for the events topic. Records are QoS 0 and
// never retained; axis records carry their label so the backlog can
// coalesce them.
func recordMessage(rec engine.Record) (message, error) {
	payload, err := FormatPayload(rec)
	if err != nil {
		return message{}, err
	}
	m := message{topic: TopicEvents, payload: payload}
	if rec.Kind == engine.KindAxis {
		m.axis = rec.Label
	}
	return m, nil
}

// systemMessage prepares event for the system topic at QoS 1.
func systemMessage(event SystemEvent) (message, error) {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return message{}, err
	}
	return message{
		topic:     TopicSystem,
		payload:   payload,
		qos:       1,
		retained:  event.Retained,
		lifecycle: true,
	}, nil
}
