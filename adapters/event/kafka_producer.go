package event

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-hub/internal/config"
	"github.com/khoahotran/portfolio-hub/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

const DefaultTopic = "portfolio.events"

// ChangePayload is the wire format of a portfolio change message.
type ChangePayload struct {
	EventType  portfolio.ChangeType `json:"event_type"`
	ItemID     string               `json:"item_id,omitempty"`
	Kind       portfolio.Kind       `json:"kind,omitempty"`
	Origin     string               `json:"origin"`
	OccurredAt time.Time            `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	writer messageWriter
	origin string
	logger logger.Logger
}

// NewKafkaProducerClient returns a ChangeNotifier publishing to the configured topic.
// origin identifies this process so its own listener can skip the echo.
func NewKafkaProducerClient(cfg config.Config, origin string, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka producer successfully", zap.String("topic", topic), zap.String("origin", origin))
	return newProducer(writer, origin, log), nil
}

func newProducer(w messageWriter, origin string, log logger.Logger) *KafkaProducerClient {
	return &KafkaProducerClient{writer: w, origin: origin, logger: log}
}

func (c *KafkaProducerClient) NotifyChange(ctx context.Context, ev portfolio.ChangeEvent) error {
	payload := ChangePayload{
		EventType:  ev.Type,
		ItemID:     ev.ItemID,
		Kind:       ev.Kind,
		Origin:     c.origin,
		OccurredAt: time.Now().UTC(),
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal change payload: %w", err)
	}

	key := ev.ItemID
	if key == "" {
		key = string(ev.Type)
	}

	if err := c.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	c.logger.Debug("Published portfolio change", zap.String("event_type", string(ev.Type)), zap.String("item_id", ev.ItemID))
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.writer != nil {
		if err := c.writer.Close(); err != nil {
			c.logger.Warn("Failed to close Kafka producer", zap.Error(err))
			return
		}
	}
	c.logger.Info("Closed Kafka producer")
}
