package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"ThermalVision/internal/entity"
)

// DetectionEvent is published for every request that saw a person.
type DetectionEvent struct {
	RequestID string                  `json:"request_id"`
	Timestamp time.Time               `json:"timestamp"`
	Outcome   entity.DetectionOutcome `json:"outcome"`
}

type IPublisher interface {
	Publish(event DetectionEvent)
}

type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	// Topic may contain {direction}, replaced by left/centre/right/none.
	Topic      string
	BufferSize int
}

// Publisher drains a buffered channel of events onto MQTT.
type Publisher struct {
	log    *logrus.Logger
	client mqtt.Client
	topic  string
	events chan DetectionEvent
}

// Connect dials the broker. An empty ClientID gets a random one so replicas
// do not evict each other.
func Connect(log *logrus.Logger, cfg Config) (*Publisher, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = "ir-classifier-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	log.Infof("Connected to MQTT broker at %s", cfg.Broker)
	return NewPublisher(log, client, cfg.Topic, cfg.BufferSize), nil
}

func NewPublisher(log *logrus.Logger, client mqtt.Client, topic string, bufferSize int) *Publisher {
	if bufferSize <= 0 {
		bufferSize = 50
	}
	return &Publisher{
		log:    log,
		client: client,
		topic:  topic,
		events: make(chan DetectionEvent, bufferSize),
	}
}

// Publish queues the event without blocking. A full queue drops it.
func (p *Publisher) Publish(event DetectionEvent) {
	select {
	case p.events <- event:
	default:
		p.log.WithField("request_id", event.RequestID).Warn("Detection event queue full, dropping event")
	}
}

// Start publishes queued events until ctx is cancelled.
func (p *Publisher) Start(ctx context.Context) {
	p.log.Info("Detection event publisher started")

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Detection event publisher stopped")
			return
		case event := <-p.events:
			if err := p.send(event); err != nil {
				p.log.WithFields(logrus.Fields{
					"request_id": event.RequestID,
					"error":      err.Error(),
				}).Error("Failed to publish detection event")
			}
		}
	}
}

func (p *Publisher) send(event DetectionEvent) error {
	payload, err := jsoniter.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal detection event: %w", err)
	}

	topic := formatTopic(p.topic, event.Outcome)
	token := p.client.Publish(topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish detection event: %w", token.Error())
	}

	p.log.WithFields(logrus.Fields{
		"request_id": event.RequestID,
		"topic":      topic,
	}).Debug("Published detection event")
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

func formatTopic(pattern string, outcome entity.DetectionOutcome) string {
	direction := entity.DirectionNone
	if outcome.Direction != nil {
		direction = *outcome.Direction
	}
	return strings.ReplaceAll(pattern, "{direction}", direction.String())
}
