package mqtt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/gpio2uinput/internal/engine"
)

// BacklogSize is how many messages are held while the broker is unreachable.
const BacklogSize = 512

// ClientID is the default MQTT client ID.
const ClientID = "gpio2uinput"

// RealPublisher publishes to an actual MQTT broker. Messages published
// while disconnected wait in a backlog and are replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	logger *slog.Logger

	mu        sync.Mutex
	backlog   *backlog
	connected bool
	connects  int
}

// NewRealPublisher creates a publisher for the given broker. Connecting
// happens in the background; it does not wait for the broker.
func NewRealPublisher(broker string, logger *slog.Logger) *RealPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &RealPublisher{
		logger:  logger,
		backlog: newBacklog(BacklogSize),
	}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	p.connected = true
	p.connects++
	reconnect := p.connects > 1
	pending, evicted := p.backlog.drain()
	p.mu.Unlock()

	p.logger.Info("mqtt connected", "replay", len(pending), "evicted", evicted)

	if reconnect {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		c.Publish(TopicSystem, 1, false, payload)
	}
	for _, m := range pending {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	p.logger.Warn("mqtt connection lost", "err", err)
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *RealPublisher) publish(m message) error {
	p.mu.Lock()
	if !p.connected {
		if p.backlog.add(m) {
			p.logger.Warn("mqtt backlog full, evicting records", "capacity", BacklogSize)
		}
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", m.topic, err)
	}
	return nil
}

// Publish sends a dispatch record to the events topic.
func (p *RealPublisher) Publish(rec engine.Record) error {
	m, err := recordMessage(rec)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.publish(m)
}

// PublishSystem sends a lifecycle notice to the system topic.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	m, err := systemMessage(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(m)
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
