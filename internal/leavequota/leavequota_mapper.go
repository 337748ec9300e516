package leavequota

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func newChange(quotaID uuid.UUID, by *uuid.UUID, field string, before, after Snapshot, at time.Time) (*LeaveQuotaChange, error) {
	oldValue, err := json.Marshal(before)
	if err != nil {
		return nil, err
	}
	newValue, err := json.Marshal(after)
	if err != nil {
		return nil, err
	}
	return &LeaveQuotaChange{
		ID:           uuid.New(),
		LeaveQuotaID: quotaID,
		ChangedBy:    by,
		Field:        field,
		OldValue:     datatypes.JSON(oldValue),
		NewValue:     datatypes.JSON(newValue),
		CreatedAt:    at,
	}, nil
}

func mapToResponse(q LeaveQuota) QuotaResponse {
	return QuotaResponse{
		ID:          q.ID.String(),
		UserID:      q.UserID.String(),
		LeaveTypeID: q.LeaveTypeID.String(),
		Year:        q.Year,
		Allocated:   q.Allocated.InexactFloat64(),
		CarriedOver: q.CarriedOver.InexactFloat64(),
		Used:        q.Used.InexactFloat64(),
		Remaining:   q.Remaining().InexactFloat64(),
		CreatedAt:   q.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   q.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapChangeToResponse(c LeaveQuotaChange) ChangeResponse {
	resp := ChangeResponse{
		Field:     c.Field,
		Timestamp: c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if c.ChangedBy != nil {
		v := c.ChangedBy.String()
		resp.ChangedBy = &v
	}
	if len(c.OldValue) > 0 {
		resp.OldValue = json.RawMessage(c.OldValue)
	}
	if len(c.NewValue) > 0 {
		resp.NewValue = json.RawMessage(c.NewValue)
	}
	return resp
}
