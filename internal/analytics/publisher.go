// Package analytics publishes engagement events to Kafka. Publishing is
// best-effort: a broker outage must never affect a content or delivery
// response.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/newsphere/newsletter-bff/internal/models"
	"github.com/newsphere/newsletter-bff/internal/processing"
)

// Publisher writes engagement events to the configured topic.
type Publisher struct {
	writer *kafka.Writer
	log    *slog.Logger
}

// NewPublisher builds a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		MaxAttempts:  3,
		BatchTimeout: 100 * time.Millisecond,
	})
	return &Publisher{writer: writer, log: logger}
}

// Publish sends one event. Missing id and timestamp fields are filled so
// replays dedupe downstream.
func (p *Publisher) Publish(ctx context.Context, event models.EngagementEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.ID == "" {
		event.ID = processing.BuildEventID(event.Kind, event.Channel, event.TargetURL, event.Timestamp)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Kind),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// PublishAsync fires Publish on a detached, bounded context and logs
// failures instead of returning them. For use on the request path.
func (p *Publisher) PublishAsync(event models.EngagementEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, event); err != nil {
			p.log.Warn("drop engagement event", slog.String("kind", event.Kind), slog.Any("err", err))
		}
	}()
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
