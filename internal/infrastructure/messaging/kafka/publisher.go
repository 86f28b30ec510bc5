// Package kafka publishes curation run lifecycle events.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/chemforge/smiclean/internal/application/curation"
	"github.com/chemforge/smiclean/internal/config"
	"github.com/chemforge/smiclean/internal/infrastructure/monitoring/logging"
	"github.com/chemforge/smiclean/pkg/errors"
)

// Publisher implements curation.EventPublisher on a kafka topic.  Events for
// one run share the run ID as message key, so per-run ordering is preserved
// within a partition.
type Publisher struct {
	writer *kafka.Writer
	log    logging.Logger
}

// NewPublisher builds a publisher from configuration.
func NewPublisher(cfg config.KafkaConfig, log logging.Logger) *Publisher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries,
		BatchSize:    cfg.BatchSize,
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
	}
	return &Publisher{writer: w, log: log.Named("kafka")}
}

// Publish emits one run lifecycle event.
func (p *Publisher) Publish(ctx context.Context, event curation.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "cannot marshal event")
	}
	msg := kafka.Message{
		Key:   []byte(event.RunID.String()),
		Value: payload,
		Time:  time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "cannot publish event")
	}
	p.log.Debug("event published",
		logging.String("type", event.Type),
		logging.String("run_id", event.RunID.String()))
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
