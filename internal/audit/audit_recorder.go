package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Entry is one mutation to record. OldValue and NewValue are marshalled to JSON;
// nil stays NULL.
type Entry struct {
	Action    Action
	Entity    EntityRef
	ChangedBy *uuid.UUID
	OldValue  any
	NewValue  any
	Details   string
}

//go:generate mockgen -source=audit_recorder.go -destination=mock/audit_recorder_mock.go -package=mock
type Recorder interface {
	WithTx(tx *sql.Tx) Recorder
	Record(ctx context.Context, entry Entry) (*AuditLog, error)
}

type recorder struct {
	repo Repository
	now  func() time.Time
}

func NewRecorder(repo Repository) Recorder {
	return &recorder{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (r *recorder) WithTx(tx *sql.Tx) Recorder {
	return &recorder{repo: r.repo.WithTx(tx), now: r.now}
}

func (r *recorder) Record(ctx context.Context, entry Entry) (*AuditLog, error) {
	oldValue, err := toJSON(entry.OldValue)
	if err != nil {
		return nil, err
	}
	newValue, err := toJSON(entry.NewValue)
	if err != nil {
		return nil, err
	}

	l := &AuditLog{
		ID:         uuid.New(),
		Action:     entry.Action,
		EntityType: entry.Entity.Kind,
		EntityID:   entry.Entity.ID,
		ChangedBy:  entry.ChangedBy,
		OldValue:   oldValue,
		NewValue:   newValue,
		Details:    entry.Details,
		CreatedAt:  r.now(),
	}
	if err := r.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func toJSON(v any) (datatypes.JSON, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case datatypes.JSON:
		if !hasValue(val) {
			return nil, nil
		}
		return val, nil
	case json.RawMessage:
		if !hasValue(datatypes.JSON(val)) {
			return nil, nil
		}
		return datatypes.JSON(val), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return datatypes.JSON(b), nil
	}
}
