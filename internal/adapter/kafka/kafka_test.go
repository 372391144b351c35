package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	failures int
	rejects  map[string]int // key -> attempts rejected with a per-message error
	calls    int
	batches  [][]string
	written  []kafkago.Message
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.calls++
	keys := make([]string, len(msgs))
	for i, m := range msgs {
		keys[i] = string(m.Key)
	}
	f.batches = append(f.batches, keys)

	if f.calls <= f.failures {
		return errors.New("leader not available")
	}

	werrs := make(kafkago.WriteErrors, len(msgs))
	for i, m := range msgs {
		if f.rejects[string(m.Key)] > 0 {
			f.rejects[string(m.Key)]--
			werrs[i] = errors.New("message too large")
			continue
		}
		f.written = append(f.written, m)
	}
	if werrs.Count() > 0 {
		return werrs
	}
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestWriter(fw *fakeWriter) *Writer {
	return &Writer{
		writer:  fw,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		backoff: time.Millisecond,
	}
}

var processedAt = time.Date(2024, 3, 1, 4, 30, 0, 0, time.UTC)

func testCatalog() domain.EnrichedCatalog {
	return domain.EnrichedCatalog{
		CatalogMeta: domain.CatalogMeta{
			ID:           "smi:local/catalog/1",
			CreationInfo: &domain.CreationInfo{Author: domain.DefaultAuthor, CreationTime: processedAt},
		},
		Events: []domain.EnrichedEvent{
			{
				Event:    domain.Event{ID: "evt-1"},
				OriginID: "org-1",
				Selection: &domain.Selection{
					OriginID: "org-1",
					Stations: []domain.SelectedStation{
						{Station: domain.Station{Code: "CNB"}, Delta: 1.5, PhaseHint: "P"},
						{Station: domain.Station{Code: "MUN"}, Delta: 2.5},
					},
				},
			},
			{Event: domain.Event{ID: "evt-2"}, Error: "no arrivals"},
		},
	}
}

func TestSerializeToMessage(t *testing.T) {
	cat := testCatalog()

	msg, err := serializeToMessage(cat.Events[0], processedAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("evt-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"phase_hint":"P"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "event_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("evt-1"), msg.Headers[0].Value)
	assert.Equal(t, "selected_stations", msg.Headers[1].Key)
	assert.Equal(t, []byte("2"), msg.Headers[1].Value)
	assert.Equal(t, "processed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-03-01T04:30:00Z"), msg.Headers[2].Value)

	var roundtrip domain.EnrichedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))
	assert.Equal(t, cat.Events[0].Selection.Stations, roundtrip.Selection.Stations)
}

func TestSerializeToMessage_FailedEvent(t *testing.T) {
	msg, err := serializeToMessage(testCatalog().Events[1], processedAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("0"), msg.Headers[1].Value)
	assert.Contains(t, string(msg.Value), `"error":"no arrivals"`)
	assert.NotContains(t, string(msg.Value), `"selection"`)
}

func TestWriter_SaveCatalog(t *testing.T) {
	fw := &fakeWriter{}
	w := newTestWriter(fw)

	require.NoError(t, w.SaveCatalog(context.Background(), testCatalog()))

	assert.Equal(t, 1, fw.calls)
	require.Len(t, fw.written, 2)
	assert.Equal(t, []byte("evt-1"), fw.written[0].Key)
	assert.Equal(t, []byte("evt-2"), fw.written[1].Key)
}

func TestWriter_SaveCatalog_Empty(t *testing.T) {
	fw := &fakeWriter{}
	w := newTestWriter(fw)

	require.NoError(t, w.SaveCatalog(context.Background(), domain.EnrichedCatalog{}))
	assert.Zero(t, fw.calls)
}

func TestWriter_SaveCatalog_RetriesTransientErrors(t *testing.T) {
	fw := &fakeWriter{failures: 2}
	w := newTestWriter(fw)

	require.NoError(t, w.SaveCatalog(context.Background(), testCatalog()))
	assert.Equal(t, 3, fw.calls)
	assert.Len(t, fw.written, 2)
}

func TestWriter_SaveCatalog_GivesUp(t *testing.T) {
	fw := &fakeWriter{failures: maxWriteAttempts}
	w := newTestWriter(fw)

	err := w.SaveCatalog(context.Background(), testCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish 2 of 2 enriched events")
	assert.Contains(t, err.Error(), "leader not available")
	assert.Equal(t, maxWriteAttempts, fw.calls)
	assert.Empty(t, fw.written)
}

func TestWriter_SaveCatalog_ResendsOnlyFailedMessages(t *testing.T) {
	fw := &fakeWriter{rejects: map[string]int{"evt-2": 1}}
	w := newTestWriter(fw)

	require.NoError(t, w.SaveCatalog(context.Background(), testCatalog()))
	assert.Equal(t, [][]string{{"evt-1", "evt-2"}, {"evt-2"}}, fw.batches)

	var keys []string
	for _, m := range fw.written {
		keys = append(keys, string(m.Key))
	}
	assert.Equal(t, []string{"evt-1", "evt-2"}, keys, "each event is delivered once")
}

func TestWriter_SaveCatalog_GivesUpOnRejectedMessages(t *testing.T) {
	fw := &fakeWriter{rejects: map[string]int{"evt-1": maxWriteAttempts}}
	w := newTestWriter(fw)

	err := w.SaveCatalog(context.Background(), testCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish 1 of 2 enriched events")
	assert.Equal(t, maxWriteAttempts, fw.calls)
	require.Len(t, fw.written, 1)
	assert.Equal(t, []byte("evt-2"), fw.written[0].Key)
}

func TestWriter_SaveCatalog_StopsOnCancel(t *testing.T) {
	fw := &fakeWriter{failures: maxWriteAttempts}
	w := newTestWriter(fw)
	w.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := w.SaveCatalog(ctx, testCatalog())
	require.Error(t, err)
	assert.Equal(t, 1, fw.calls)
}

func TestWriter_NameAndClose(t *testing.T) {
	fw := &fakeWriter{}
	w := newTestWriter(fw)

	assert.Equal(t, "kafka", w.Name())
	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}
