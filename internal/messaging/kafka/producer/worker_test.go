package producer_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go-oms/internal/messaging/kafka"
	"go-oms/internal/messaging/kafka/producer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeOutboxRepository struct {
	pending []kafka.OutboxEvent
	listErr error
	sent    []string
	failed  map[string]string
}

func (f *fakeOutboxRepository) WithTx(*sql.Tx) kafka.OutboxRepository           { return f }
func (f *fakeOutboxRepository) Create(context.Context, kafka.OutboxEvent) error { return nil }
func (f *fakeOutboxRepository) ListPending(context.Context, int) ([]kafka.OutboxEvent, error) {
	return f.pending, f.listErr
}
func (f *fakeOutboxRepository) MarkSent(_ context.Context, id string) error {
	f.sent = append(f.sent, id)
	return nil
}
func (f *fakeOutboxRepository) MarkFailed(_ context.Context, id string, reason string) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[id] = reason
	return nil
}

type fakeWriter struct {
	fail     map[string]bool
	messages []kafkago.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if w.fail[string(m.Key)] {
			return errors.New("broker unavailable")
		}
		w.messages = append(w.messages, m)
	}
	return nil
}

func TestProcessPendingEvents(t *testing.T) {
	t.Run("success sends and marks failures for retry", func(t *testing.T) {
		repo := &fakeOutboxRepository{pending: []kafka.OutboxEvent{
			{ID: "e1", AggregateID: "lr-1", EventType: "leave_request_status_changed", Topic: "oms.leave.request.v1", Payload: []byte(`{}`), RequestID: "req-1"},
			{ID: "e2", AggregateID: "lr-2", EventType: "leave_request_status_changed", Topic: "oms.leave.request.v1", Payload: []byte(`{}`)},
		}}
		writer := &fakeWriter{fail: map[string]bool{"lr-2": true}}

		sent, err := producer.ProcessPendingEvents(context.Background(), repo, writer, zap.NewNop())

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, []string{"e1"}, repo.sent)
		assert.Equal(t, "broker unavailable", repo.failed["e2"])

		assert.Len(t, writer.messages, 1)
		msg := writer.messages[0]
		assert.Equal(t, "oms.leave.request.v1", msg.Topic)
		assert.Equal(t, "lr-1", string(msg.Key))
		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "leave_request_status_changed", headers["event_type"])
		assert.Equal(t, "req-1", headers["request_id"])
	})

	t.Run("success nothing pending", func(t *testing.T) {
		sent, err := producer.ProcessPendingEvents(context.Background(), &fakeOutboxRepository{}, &fakeWriter{}, zap.NewNop())
		assert.NoError(t, err)
		assert.Equal(t, 0, sent)
	})

	t.Run("negative list failure", func(t *testing.T) {
		repo := &fakeOutboxRepository{listErr: errors.New("db down")}
		_, err := producer.ProcessPendingEvents(context.Background(), repo, &fakeWriter{}, zap.NewNop())
		assert.EqualError(t, err, "db down")
	})
}
