// Package events publishes lookup and auth activity to Kafka
package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Topic keys in the kafka.topics config map
const (
	TopicLookups = "lookups"
	TopicAuth    = "auth"
)

// Event types
const (
	TypeSymbolConfirmed = "symbol_confirmed"
	TypeChartRequested  = "chart_requested"
	TypeQuoteFetched    = "quote_fetched"
	TypeUserSignedUp    = "user_signed_up"
	TypeUserLoggedIn    = "user_logged_in"
	TypeUserLoggedOut   = "user_logged_out"
)

// Event is the JSON value written to Kafka
type Event struct {
	Type        string    `json:"type"`
	Symbol      string    `json:"symbol,omitempty"`
	Granularity string    `json:"granularity,omitempty"`
	Username    string    `json:"username,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher is implemented by Producer and by test doubles
type Publisher interface {
	Publish(ctx context.Context, topicKey string, key string, event Event) error
}

// Producer handles producing messages to Kafka topics
type Producer struct {
	mu       sync.Mutex
	writers  map[string]*kafka.Writer
	brokers  []string
	clientID string
	topics   map[string]string
	logger   *zap.Logger
}

// NewProducer creates a new Kafka producer. brokers is a comma separated list.
func NewProducer(brokers string, clientID string, topics map[string]string, logger *zap.Logger) *Producer {
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	return &Producer{
		writers:  make(map[string]*kafka.Writer),
		brokers:  addrs,
		clientID: clientID,
		topics:   topics,
		logger:   logger,
	}
}

// getWriter returns a Kafka writer for the specified topic
func (p *Producer) getWriter(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Transport: &kafka.Transport{
			ClientID: p.clientID,
		},
	}

	p.writers[topic] = writer
	return writer
}

// Publish sends event to the topic configured under topicKey. Unknown topic
// keys are skipped.
func (p *Producer) Publish(ctx context.Context, topicKey string, key string, event Event) error {
	topic, ok := p.topics[topicKey]
	if !ok || topic == "" {
		p.logger.Debug("No topic configured", zap.String("topic_key", topicKey))
		return nil
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event",
			zap.String("topic", topic),
			zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.getWriter(topic).WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Event published",
		zap.String("topic", topic),
		zap.String("type", event.Type),
		zap.String("key", key))

	return nil
}

// Close closes all Kafka writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			p.logger.Error("Failed to close Kafka writer",
				zap.String("topic", topic),
				zap.Error(err))
		}
	}
	return nil
}

// Nop discards events. It is used when Kafka is disabled.
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, string, string, Event) error { return nil }

// Emit publishes event in the background, logging failures only
func Emit(p Publisher, logger *zap.Logger, topicKey, key string, event Event) {
	if p == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, topicKey, key, event); err != nil {
			logger.Warn("Event not delivered",
				zap.String("type", event.Type),
				zap.Error(err))
		}
	}()
}
