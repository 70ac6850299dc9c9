package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Kafka publishes notifications to the mail topic. The mail service
// consumes the topic and handles rendering, retries, and suppression.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka constructs a Kafka-backed sender.
func NewKafka(brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Kafka{client: client, topic: topic, logger: logger}, nil
}

// Send produces one notification record, keyed by recipient so messages to
// the same address stay ordered.
func (k *Kafka) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(msg.Recipient),
		Value: payload,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce notification: %w", err)
	}

	k.logger.Debug("notification published",
		"template", msg.Template, "recipient", msg.Recipient)
	return nil
}

// Close flushes pending records and releases the client.
func (k *Kafka) Close() {
	k.client.Close()
}
