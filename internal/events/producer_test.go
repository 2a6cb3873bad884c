package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
}

func (r *recorder) Publish(ctx context.Context, topicKey, key string, event Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	close(r.done)
	return nil
}

func TestNewProducerSplitsBrokers(t *testing.T) {
	p := NewProducer(" kafka-1:9092, ,kafka-2:9092", "finsight", nil, zap.NewNop())
	if len(p.brokers) != 2 || p.brokers[0] != "kafka-1:9092" || p.brokers[1] != "kafka-2:9092" {
		t.Errorf("brokers = %v", p.brokers)
	}
}

func TestPublishSkipsUnknownTopic(t *testing.T) {
	p := NewProducer("localhost:9092", "finsight", map[string]string{TopicAuth: ""}, zap.NewNop())

	if err := p.Publish(context.Background(), TopicLookups, "AAPL", Event{Type: TypeSymbolConfirmed}); err != nil {
		t.Errorf("unknown topic key: %v", err)
	}
	if err := p.Publish(context.Background(), TopicAuth, "alice", Event{Type: TypeUserLoggedIn}); err != nil {
		t.Errorf("empty topic: %v", err)
	}
	if len(p.writers) != 0 {
		t.Errorf("writers = %d, want none created", len(p.writers))
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestEmitStampsTime(t *testing.T) {
	r := &recorder{done: make(chan struct{})}
	Emit(r, zap.NewNop(), TopicLookups, "AAPL", Event{Type: TypeChartRequested, Symbol: "AAPL"})

	select {
	case <-r.done:
	case <-time.After(time.Second):
		t.Fatal("event was not published")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events[0].OccurredAt.IsZero() {
		t.Error("OccurredAt was not set")
	}
}

func TestEmitNilPublisher(t *testing.T) {
	Emit(nil, zap.NewNop(), TopicAuth, "alice", Event{Type: TypeUserLoggedOut})
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), TopicAuth, "alice", Event{}); err != nil {
		t.Errorf("Nop.Publish: %v", err)
	}
}
