// File: internal/events/kafka/producer.go
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event types published on the auth topic.
const (
	EventLoginSucceeded   = "auth.login.succeeded"
	EventLoginFailed      = "auth.login.failed"
	EventTwoFactorEnabled = "auth.2fa.enabled"
	EventDeviceTrusted    = "auth.device.trusted"
	EventDeviceRevoked    = "auth.device.revoked"
)

// Publisher is what services depend on for security event fan-out.
// Publishing is best-effort: failures are logged, never fatal to a login.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{})
}

// envelope is the wire form of a published event.
type envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Producer publishes auth events to a single kafka topic.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer creates a new Producer.
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &Producer{writer: writer, logger: logger}
}

// Close closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Publish marshals and writes one event. Errors are logged and swallowed:
// the authentication flow must not depend on the event bus being up.
func (p *Producer) Publish(ctx context.Context, eventType, key string, payload interface{}) {
	value, err := json.Marshal(envelope{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("type", eventType), zap.Error(err))
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

var _ Publisher = (*Producer)(nil)

// NopPublisher drops events; used when kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) {}

var _ Publisher = NopPublisher{}

// Payload shapes. Kept minimal: identifiers and coarse outcomes only,
// never codes, tokens or secret material.
type LoginEventPayload struct {
	UserID     string `json:"user_id,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Reason     string `json:"reason,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
	Method     string `json:"method,omitempty"`
}

type DeviceEventPayload struct {
	UserID     string `json:"user_id"`
	DeviceID   string `json:"device_id,omitempty"`
	DeviceName string `json:"device_name,omitempty"`
}
