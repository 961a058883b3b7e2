package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/touch-sensor/internal/logic"
)

// BacklogSize is the number of messages held while the broker is unreachable.
const BacklogSize = 256

// RealPublisher publishes to an actual MQTT broker.
// Messages published while disconnected are held and replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	topic  string

	mu      sync.Mutex
	pending *backlog
}

// NewRealPublisher creates a publisher for the given broker. It does not block
// startup on the broker: if the first connection attempt does not complete in
// time, the client keeps retrying in the background.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	p := &RealPublisher{
		topic:   Topic,
		pending: newBacklog(BacklogSize),
	}

	will, err := willPayload()
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(func(paho.Client) {
			log.WithField("broker", broker).Info("mqtt connected")
			go p.flush()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.WithError(err).Warn("mqtt connection lost")
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.WithField("broker", broker).Warn("mqtt connect pending, retrying in background")
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a touch event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	if err := p.send(pendingMsg{topic: p.topic, payload: payload}); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	msg := pendingMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained}
	if err := p.send(msg); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// send publishes msg, or holds it while the connection is down or older
// messages are still waiting for replay. p.mu is held across the publish.
func (p *RealPublisher) send(msg pendingMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.client.IsConnectionOpen() || p.pending.len() > 0 {
		p.pending.push(msg)
		return nil
	}
	return p.publish(msg)
}

func (p *RealPublisher) publish(msg pendingMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timeout on %s", msg.topic)
	}
	return token.Error()
}

// flush replays held messages oldest first until the backlog is empty or
// the connection drops. Each message is popped and published under p.mu, so
// a send that arrives meanwhile queues behind the rest of the backlog.
func (p *RealPublisher) flush() {
	replayed := 0
	for {
		p.mu.Lock()
		if !p.client.IsConnectionOpen() {
			remaining := p.pending.len()
			p.mu.Unlock()
			if remaining > 0 {
				log.WithField("remaining", remaining).Warn("mqtt connection lost during replay")
			}
			return
		}
		msg, ok := p.pending.pop()
		if !ok {
			p.mu.Unlock()
			if replayed > 0 {
				log.WithField("count", replayed).Info("mqtt replayed buffered messages")
			}
			return
		}
		err := p.publish(msg)
		p.mu.Unlock()

		replayed++
		if err != nil {
			log.WithError(err).WithField("topic", msg.topic).Warn("mqtt replay failed")
		}
	}
}

// willPayload is registered with the broker at connect time and sent when
// the connection dies, possibly much later, so it carries no timestamp.
func willPayload() ([]byte, error) {
	return FormatSystemPayload(SystemEvent{Event: "LWT"})
}

// IsConnected reports whether the client currently has an open connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
