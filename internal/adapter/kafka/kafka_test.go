package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-quality-etl/internal/config"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testReport() domain.Report {
	generated := time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC)
	return domain.Report{
		Years:       []int{2014, 2024},
		GeneratedAt: generated,
		Exceedance: domain.ExceedanceResult{
			Norm: 15,
			Table: domain.ExceedanceTable{
				Years:   []int{2014, 2024},
				Columns: []domain.StationKey{{Code: "MpKrakAlKras", Locality: "Kraków"}, {Code: "PmGdaLeczkow", Locality: "Gdańsk"}},
				Counts:  [][]float64{{130, 40}, {26, 12}},
			},
		},
	}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC)
	record := domain.ExceedanceRecord{
		Year:           2024,
		StationCode:    "MpKrakAlKras",
		Locality:       "Kraków",
		ExceedanceDays: 26,
		Norm:           15,
		GeneratedAt:    now,
	}

	msg, err := serializeToMessage(record)
	require.NoError(t, err)

	assert.Equal(t, []byte("MpKrakAlKras|2024"), msg.Key)
	assert.JSONEq(t, `{"year":2024,"station_code":"MpKrakAlKras","locality":"Kraków","exceedance_days":26,"norm":15,"generated_at":"2025-01-15T08:30:00Z"}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "record_type", msg.Headers[0].Key)
	assert.Equal(t, []byte(recordTypeExceedance), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestWriter_LoadReport(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	n, err := w.LoadReport(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.Len(t, fw.msgs, 4)

	keys := make([]string, len(fw.msgs))
	for i, m := range fw.msgs {
		keys[i] = string(m.Key)
	}
	assert.Equal(t, []string{"MpKrakAlKras|2014", "PmGdaLeczkow|2014", "MpKrakAlKras|2024", "PmGdaLeczkow|2024"}, keys)

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestWriter_LoadReport_Empty(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	n, err := w.LoadReport(context.Background(), domain.Report{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, fw.msgs)
}

func TestWriter_LoadReport_PublishError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("leader not available")}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	_, err := w.LoadReport(context.Background(), testReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"b1:9092", "b2:9092"}, KafkaSinkTopic: "pm25-exceedances"}
	w := NewWriter(cfg, slog.Default())

	kw, ok := w.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "pm25-exceedances", kw.Topic)
}
