package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ginjaninja78/sales-batch-processor/internal/config"
	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/logging"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes each event as a JSON message to one topic.
type KafkaPublisher struct {
	writer    messageWriter
	topic     string
	now       func() time.Time
	closeOnce sync.Once
	closeErr  error
}

// NewKafkaPublisher creates a publisher for the configured brokers and topic.
func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.NewInvalidConfig("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.NewInvalidConfig("kafka topic is required")
	}

	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  5,
	}, cfg.Topic), nil
}

func newKafkaPublisher(w messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, now: time.Now}
}

// Publish implements Publisher.
func (k *KafkaPublisher) Publish(ctx context.Context, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  k.now(),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to publish to %s", k.topic)
	}

	logging.Debugw("Published event", "topic", k.topic, "key", key, "bytes", len(data))
	return nil
}

// Close implements Publisher.
func (k *KafkaPublisher) Close() error {
	k.closeOnce.Do(func() {
		k.closeErr = k.writer.Close()
	})
	return k.closeErr
}

// New returns a KafkaPublisher when brokers are configured and a
// NopPublisher otherwise.
func New(cfg config.KafkaConfig) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return NopPublisher{}, nil
	}
	return NewKafkaPublisher(cfg)
}
