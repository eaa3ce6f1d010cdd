package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"account-security-core/internal/audit/domain"
)

// publishTimeout bounds a single async publish so a slow broker cannot pile
// up goroutines indefinitely.
const publishTimeout = 5 * time.Second

// KafkaMirror copies audit entries onto a Kafka topic using segmentio/kafka-go.
type KafkaMirror struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaMirror creates a mirror writing to topic on the given brokers.
// Returns nil when brokers or topic are unset; a nil mirror is a no-op.
// Call Close when shutting down.
func NewKafkaMirror(brokers []string, topic string, logger *slog.Logger) *KafkaMirror {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaMirror{writer: writer, logger: logger}
}

// PublishAsync serializes the entry as JSON and writes it in a goroutine so
// the caller is never blocked. Uses a background context so request
// cancellation does not abort an in-flight publish; errors are logged.
func (m *KafkaMirror) PublishAsync(e *domain.Entry) {
	if m == nil || m.writer == nil || e == nil {
		return
	}
	go func() {
		payload, err := json.Marshal(e)
		if err != nil {
			m.logger.Error("audit mirror marshal failed", "entry_id", e.ID, "error", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := m.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(e.UserID),
			Value: payload,
		}); err != nil {
			m.logger.Error("audit mirror publish failed", "entry_id", e.ID, "error", err)
		}
	}()
}

// Close closes the Kafka writer. Safe to call on a nil mirror.
func (m *KafkaMirror) Close() error {
	if m == nil || m.writer == nil {
		return nil
	}
	return m.writer.Close()
}
