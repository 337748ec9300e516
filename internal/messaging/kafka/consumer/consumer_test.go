package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-oms/internal/events"
	"go-oms/internal/leavequota"
	"go-oms/internal/messaging/kafka/consumer"
	usererrors "go-oms/internal/user/errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeReader struct {
	messages  []kafkago.Message
	next      int
	cancel    context.CancelFunc
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if r.next >= len(r.messages) {
		r.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.messages[r.next]
	r.next++
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type fakeProvisioner struct {
	calls map[uuid.UUID]int
	// failures is the number of calls that fail before one succeeds.
	failures map[uuid.UUID]int
	missing  map[uuid.UUID]bool
	years    []int
}

func (p *fakeProvisioner) SyncUser(_ context.Context, userID uuid.UUID, year int) (leavequota.BatchResponse, error) {
	if p.calls == nil {
		p.calls = map[uuid.UUID]int{}
	}
	p.calls[userID]++
	p.years = append(p.years, year)
	if p.missing[userID] {
		return leavequota.BatchResponse{}, usererrors.ErrUserNotFound
	}
	if p.calls[userID] <= p.failures[userID] {
		return leavequota.BatchResponse{}, errors.New("db down")
	}
	return leavequota.BatchResponse{Year: year, Created: 2}, nil
}

func userCreated(t *testing.T, offset int64, userID uuid.UUID, at time.Time) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(events.UserCreatedEvent{
		EventType:  events.UserCreatedType,
		UserID:     userID.String(),
		Role:       "Employee",
		OccurredAt: at,
	})
	assert.NoError(t, err)
	return kafkago.Message{Offset: offset, Value: payload}
}

func TestConsumeUserLifecycle(t *testing.T) {
	at := time.Date(2027, 1, 3, 8, 0, 0, 0, time.UTC)
	retry := consumer.RetryPolicy{Attempts: 3, Backoff: time.Millisecond}

	t.Run("success provisions and skips bad messages", func(t *testing.T) {
		ok := uuid.New()
		unknown := uuid.New()
		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{
			cancel: cancel,
			messages: []kafkago.Message{
				userCreated(t, 1, ok, at),
				{Offset: 2, Value: []byte("not json")},
				userCreated(t, 3, unknown, at),
			},
		}
		provisioner := &fakeProvisioner{missing: map[uuid.UUID]bool{unknown: true}}

		consumer.ConsumeUserLifecycle(ctx, reader, provisioner, zap.NewNop(), retry)

		assert.Equal(t, 1, provisioner.calls[ok])
		assert.Equal(t, 1, provisioner.calls[unknown])
		assert.Equal(t, []int{2027, 2027}, provisioner.years)
		assert.Equal(t, []int64{1, 2, 3}, reader.committed)
	})

	t.Run("success transient failure retried before moving on", func(t *testing.T) {
		flaky := uuid.New()
		after := uuid.New()
		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{
			cancel:   cancel,
			messages: []kafkago.Message{userCreated(t, 7, flaky, at), userCreated(t, 8, after, at)},
		}
		provisioner := &fakeProvisioner{failures: map[uuid.UUID]int{flaky: 2}}

		consumer.ConsumeUserLifecycle(ctx, reader, provisioner, zap.NewNop(), retry)

		assert.Equal(t, 3, provisioner.calls[flaky])
		assert.Equal(t, 1, provisioner.calls[after])
		assert.Equal(t, []int64{7, 8}, reader.committed)
	})

	t.Run("negative persistent failure is committed after retries", func(t *testing.T) {
		broken := uuid.New()
		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{cancel: cancel, messages: []kafkago.Message{userCreated(t, 9, broken, at)}}
		provisioner := &fakeProvisioner{failures: map[uuid.UUID]int{broken: 10}}

		consumer.ConsumeUserLifecycle(ctx, reader, provisioner, zap.NewNop(), retry)

		assert.Equal(t, 3, provisioner.calls[broken])
		assert.Equal(t, []int64{9}, reader.committed)
	})
}
