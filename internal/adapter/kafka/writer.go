package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/power-curve-service/internal/config"
	"github.com/couchcryptid/power-curve-service/internal/domain"
)

// Writer publishes archive manifests to a Kafka topic.
// It implements pipeline.ManifestPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured manifest topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaManifestTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishManifest writes one message describing a finished archive.
func (w *Writer) PublishManifest(ctx context.Context, m domain.Manifest) error {
	msg, err := serializeToMessage(m)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish manifest %s: %w", m.Archive, err)
	}
	w.logger.Debug("manifest published", "archive", m.Archive, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Manifest into a Kafka message keyed by archive name.
func serializeToMessage(m domain.Manifest) (kafkago.Message, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize manifest: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(m.Archive),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(m.RunID)},
			{Key: "entries", Value: []byte(strconv.Itoa(len(m.Entries)))},
			{Key: "generated_at", Value: []byte(m.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
