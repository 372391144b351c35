package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/iloc-catalog-etl/internal/config"
	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	maxWriteAttempts = 3
	initialBackoff   = 200 * time.Millisecond
	maxBackoff       = 5 * time.Second
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes enriched events to a Kafka topic, one message per event.
// It implements pipeline.CatalogSink.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	backoff time.Duration
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger, backoff: initialBackoff}
}

// Name implements pipeline.CatalogSink.
func (w *Writer) Name() string { return "kafka" }

// SaveCatalog serializes every enriched event and publishes the batch in a
// single WriteMessages call, retrying with exponential backoff on failure.
// When kafka-go reports per-message errors only the failed messages are
// resent; any other error resends the remaining batch, so delivery is
// at-least-once.
func (w *Writer) SaveCatalog(ctx context.Context, cat domain.EnrichedCatalog) error {
	if len(cat.Events) == 0 {
		return nil
	}

	processedAt := time.Time{}
	if cat.CreationInfo != nil {
		processedAt = cat.CreationInfo.CreationTime
	}

	msgs := make([]kafkago.Message, len(cat.Events))
	for i := range cat.Events {
		msg, err := serializeToMessage(cat.Events[i], processedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	pending := msgs
	backoff := w.backoff
	var err error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		if err = w.writer.WriteMessages(ctx, pending...); err == nil {
			return nil
		}
		pending = failedMessages(pending, err)
		if attempt == maxWriteAttempts || ctx.Err() != nil {
			break
		}
		w.logger.Warn("kafka write failed, retrying",
			"error", err,
			"attempt", attempt,
			"backoff", backoff,
			"messages", len(pending),
		)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("publish %d of %d enriched events: %w", len(pending), len(msgs), err)
}

// failedMessages narrows a batch to the messages a kafkago.WriteErrors marks
// as failed. Other errors leave the batch as it is.
func failedMessages(msgs []kafkago.Message, err error) []kafkago.Message {
	var werrs kafkago.WriteErrors
	if !errors.As(err, &werrs) || len(werrs) != len(msgs) {
		return msgs
	}
	failed := make([]kafkago.Message, 0, werrs.Count())
	for i, e := range werrs {
		if e != nil {
			failed = append(failed, msgs[i])
		}
	}
	return failed
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an EnrichedEvent into a Kafka message keyed by
// event ID.
func serializeToMessage(event domain.EnrichedEvent, processedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize enriched event %s: %w", event.Event.ID, err)
	}

	selected := 0
	if event.Selection != nil {
		selected = len(event.Selection.Stations)
	}

	return kafkago.Message{
		Key:   []byte(event.Event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.Event.ID)},
			{Key: "selected_stations", Value: []byte(strconv.Itoa(selected))},
			{Key: "processed_at", Value: []byte(processedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
