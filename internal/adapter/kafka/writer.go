package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/air-quality-etl/internal/config"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// Record type header value for exceedance records.
const recordTypeExceedance = "pm25_exceedance"

// messageWriter is the subset of *kafkago.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes exceedance records to a Kafka topic.
// It implements pipeline.ReportLoader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
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
	return &Writer{writer: w, logger: logger}
}

// LoadReport serializes one message per (year, station) and publishes them in
// a single WriteMessages call. Records keyed by station and year land on the
// same partition across runs.
func (w *Writer) LoadReport(ctx context.Context, report domain.Report) (int, error) {
	records := report.ExceedanceRecords()
	if len(records) == 0 {
		w.logger.Warn("report has no exceedance records, nothing published")
		return 0, nil
	}

	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return 0, err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish exceedance records: %w", err)
	}

	w.logger.Info("exceedance records published", "count", len(msgs))
	return len(msgs), nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an ExceedanceRecord into a Kafka message.
func serializeToMessage(record domain.ExceedanceRecord) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize exceedance record %s: %w", record.Key(), err)
	}
	return kafkago.Message{
		Key:   []byte(record.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "record_type", Value: []byte(recordTypeExceedance)},
			{Key: "generated_at", Value: []byte(record.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
