package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicUser    = "user_events"
	TopicCart    = "cart_events"
	TopicProduct = "product_events"
	TopicOrder   = "order_events"
)

func Topics() []string {
	return []string{TopicUser, TopicCart, TopicProduct, TopicOrder}
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

type UserEvent struct {
	Type             string `json:"type"`
	UserID           string `json:"userID"`
	Username         string `json:"username"`
	VerificationCode string `json:"verificationCode,omitempty"`
}

type ProductEvent struct {
	Type      string `json:"type"`
	ProductID string `json:"productID"`
	Name      string `json:"name,omitempty"`
	Price     string `json:"price,omitempty"`
}

type CartEvent struct {
	Type      string `json:"type"`
	Owner     string `json:"owner"`
	ProductID string `json:"productID,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

type OrderEvent struct {
	Type    string `json:"type"`
	OrderID string `json:"orderID"`
	UserID  string `json:"userID"`
	Status  string `json:"status"`
	Total   string `json:"total,omitempty"`
}

// KafkaPublisher writes JSON events keyed by entity id.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.w.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("kafka: write to %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// NopPublisher drops events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                       { return nil }

type Message struct {
	Topic string
	Key   string
	Event any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Publish(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Message{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Messages(topic string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, 0, len(r.msgs))
	for _, m := range r.msgs {
		if topic == "" || m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}
