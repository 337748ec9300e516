package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-oms/internal/events"
	"go-oms/internal/leavequota"
	usererrors "go-oms/internal/user/errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// QuotaProvisioner creates the current year's quotas for one user.
type QuotaProvisioner interface {
	SyncUser(ctx context.Context, userID uuid.UUID, year int) (leavequota.BatchResponse, error)
}

// RetryPolicy bounds how often a message is retried in place before the
// consumer moves past it.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 5, Backoff: time.Second}

// ConsumeUserLifecycle provisions leave quotas for every user_created event.
// Provisioning is idempotent, so redelivered messages are harmless.
//
// A group reader commits offsets, so a message left behind would be skipped by the
// next commit. Failures are therefore retried in place with a linear back-off; once
// the attempts run out the offset is committed and the user is left for /quotas/sync.
func ConsumeUserLifecycle(
	ctx context.Context,
	reader MessageReader,
	provisioner QuotaProvisioner,
	logger *zap.Logger,
	retry RetryPolicy,
) {
	log := logger.Named("kafka.consumer.user_lifecycle")
	if retry.Attempts <= 0 {
		retry.Attempts = 1
	}
	log.Info("user lifecycle consumer started", zap.Int("retry_attempts", retry.Attempts))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("user lifecycle consumer stopped")
				return
			}
			log.Error("fetch user lifecycle message failed", zap.Error(err))
			continue
		}

		for attempt := 1; ; attempt++ {
			err = handleUserLifecycle(ctx, msg, provisioner, log)
			if err == nil || attempt >= retry.Attempts {
				break
			}
			log.Warn("retrying user lifecycle message",
				zap.Int64("offset", msg.Offset),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				log.Info("user lifecycle consumer stopped")
				return
			case <-time.After(time.Duration(attempt) * retry.Backoff):
			}
		}
		if err != nil {
			log.Error("user lifecycle message dropped after retries, run quota sync to recover",
				zap.Int64("offset", msg.Offset),
				zap.Int("attempts", retry.Attempts),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit user lifecycle message failed", zap.Error(err))
		}
	}
}

func handleUserLifecycle(ctx context.Context, msg kafkago.Message, provisioner QuotaProvisioner, log *zap.Logger) error {
	var event events.UserCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode user lifecycle event failed", zap.Error(err))
		return nil
	}
	if event.EventType != events.UserCreatedType {
		log.Debug("skipping user lifecycle event", zap.String("event_type", event.EventType))
		return nil
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		log.Error("user_created event has invalid user id", zap.String("user_id", event.UserID))
		return nil
	}

	year := event.OccurredAt.UTC().Year()
	if event.OccurredAt.IsZero() {
		year = time.Now().UTC().Year()
	}

	resp, err := provisioner.SyncUser(ctx, userID, year)
	if errors.Is(err, usererrors.ErrUserNotFound) {
		log.Warn("user_created event for unknown user, skipping", zap.String("user_id", event.UserID))
		return nil
	}
	if err != nil {
		log.Error("provision leave quotas failed",
			zap.String("user_id", event.UserID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return err
	}

	log.Info("leave quotas provisioned from user_created event",
		zap.String("request_id", event.RequestID),
		zap.String("user_id", event.UserID),
		zap.Int("year", year),
		zap.Int("created", resp.Created),
	)
	return nil
}
