package leaverequest

import (
	"math"
	"time"

	leaverequesterrors "go-oms/internal/leaverequest/errors"

	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	dayMillis  = 24 * 60 * 60 * 1000
)

var halfDay = decimal.RequireFromString("0.5")

// CountDays returns the inclusive number of leave days between start and end.
// A half-day request is always 0.5 whatever the range.
func CountDays(start, end time.Time, isHalfDay bool) decimal.Decimal {
	if isHalfDay {
		return halfDay
	}
	ms := float64(end.Sub(start).Milliseconds())
	return decimal.NewFromInt(int64(math.Ceil(ms/dayMillis)) + 1)
}

// ParseDate accepts a plain calendar date or a full RFC3339 timestamp.
func ParseDate(v string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, leaverequesterrors.ErrInvalidDateFormat
	}
	return t.UTC(), nil
}
