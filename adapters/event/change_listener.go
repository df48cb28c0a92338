package event

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-hub/internal/config"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

// Refresher reloads cached content after another process changed it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const defaultRetryDelay = 2 * time.Second

type ChangeListener struct {
	reader     messageReader
	refresher  Refresher
	origin     string
	logger     logger.Logger
	retryDelay time.Duration
}

// NewChangeListener joins a consumer group unique to this instance, so every running
// process sees every change.
func NewChangeListener(cfg config.Config, origin string, refresher Refresher, log logger.Logger) *ChangeListener {
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       topic,
		GroupID:     cfg.Kafka.GroupPrefix + "-" + origin,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return newListener(reader, origin, refresher, log)
}

func newListener(r messageReader, origin string, refresher Refresher, log logger.Logger) *ChangeListener {
	return &ChangeListener{reader: r, refresher: refresher, origin: origin, logger: log, retryDelay: defaultRetryDelay}
}

// Run consumes until ctx is cancelled.
func (l *ChangeListener) Run(ctx context.Context) {
	l.logger.Info("Change listener started", zap.String("origin", l.origin))
	for {
		msg, err := l.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				l.logger.Info("Change listener stopped")
				return
			}
			l.logger.Error("Failed to read message from Kafka", err, zap.Duration("retry_in", l.retryDelay))
			select {
			case <-ctx.Done():
				l.logger.Info("Change listener stopped")
				return
			case <-time.After(l.retryDelay):
			}
			continue
		}

		l.handleMessage(ctx, msg)

		if err := l.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			l.logger.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
		}
	}
}

// handleMessage reports whether a refresh was triggered.
func (l *ChangeListener) handleMessage(ctx context.Context, msg kafka.Message) bool {
	var payload ChangePayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		l.logger.Warn("Skipping malformed change event", zap.Error(err), zap.ByteString("key", msg.Key))
		return false
	}
	if payload.Origin == l.origin {
		return false
	}

	l.logger.Info("Refreshing after remote change",
		zap.String("event_type", string(payload.EventType)),
		zap.String("item_id", payload.ItemID),
		zap.String("origin", payload.Origin),
	)
	if err := l.refresher.Refresh(ctx); err != nil {
		l.logger.Error("Refresh after remote change failed", err)
	}
	return true
}

func (l *ChangeListener) Close() error {
	return l.reader.Close()
}
