package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/config"
)

func TestRecorder_FiltersByTopic(t *testing.T) {
	t.Parallel()

	r := &Recorder{}
	ctx := context.Background()
	require.NoError(t, r.Publish(ctx, TopicProduct, "p1", ProductEvent{Type: "product_created", ProductID: "p1"}))
	require.NoError(t, r.Publish(ctx, TopicCart, "guest:g", CartEvent{Type: "cart_item_added"}))

	assert.Len(t, r.Messages(""), 2)
	got := r.Messages(TopicProduct)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].Key)
}

func TestNopPublisher(t *testing.T) {
	t.Parallel()

	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), TopicUser, "k", UserEvent{}))
	assert.NoError(t, p.Close())
}

func TestKafkaPublisher_Integration(t *testing.T) {
	brokers := config.CSV(os.Getenv("KAFKA_BROKERS"))
	if len(brokers) == 0 {
		t.Skip("KAFKA_BROKERS not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	conn, err := kafka.DialLeader(ctx, "tcp", brokers[0], TopicProduct, 0)
	require.NoError(t, err)
	end, err := conn.ReadLastOffset()
	require.NoError(t, err)
	_ = conn.Close()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     TopicProduct,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
		MaxWait:   time.Second,
	})
	defer r.Close()
	require.NoError(t, r.SetOffset(end))

	p := NewKafkaPublisher(brokers)
	defer p.Close()

	id := uuid.NewString()
	require.NoError(t, p.Publish(ctx, TopicProduct, id, ProductEvent{Type: "product_created", ProductID: id, Name: "lamp"}))

	for {
		m, err := r.ReadMessage(ctx)
		require.NoError(t, err)
		if string(m.Key) != id {
			continue
		}
		var event map[string]any
		require.NoError(t, json.Unmarshal(m.Value, &event))
		assert.Equal(t, "product_created", event["type"])
		assert.Equal(t, "lamp", event["name"])
		return
	}
}
