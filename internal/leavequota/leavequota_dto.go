package leavequota

import "encoding/json"

type CreateQuotaRequest struct {
	UserID      string   `json:"user" binding:"required,uuid"`
	LeaveTypeID string   `json:"leaveType" binding:"required,uuid"`
	Year        int      `json:"year" binding:"required"`
	Allocated   float64  `json:"allocated" binding:"gte=0"`
	CarriedOver *float64 `json:"carriedOver" binding:"omitempty,gte=0"`
}

// AdjustQuotaRequest is a partial update. No arithmetic checks are applied.
type AdjustQuotaRequest struct {
	Allocated   *float64 `json:"allocated"`
	Used        *float64 `json:"used"`
	CarriedOver *float64 `json:"carriedOver"`
}

type ListQuotasQuery struct {
	UserID      string `form:"user"`
	LeaveTypeID string `form:"leaveType"`
	Year        int    `form:"year"`
}

type MatrixQuery struct {
	Year        int    `form:"year"`
	Department  string `form:"department"`
	Role        string `form:"role"`
	Status      string `form:"status"`
	LeaveTypeID string `form:"leaveType"`
	Search      string `form:"search"`
}

type QuotaResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user"`
	LeaveTypeID string  `json:"leaveType"`
	Year        int     `json:"year"`
	Allocated   float64 `json:"allocated"`
	CarriedOver float64 `json:"carriedOver"`
	Used        float64 `json:"used"`
	Remaining   float64 `json:"remaining"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type ChangeResponse struct {
	ChangedBy *string         `json:"changedBy"`
	Field     string          `json:"field"`
	OldValue  json.RawMessage `json:"oldValue,omitempty"`
	NewValue  json.RawMessage `json:"newValue,omitempty"`
	Timestamp string          `json:"timestamp"`
}

type QuotaDetailResponse struct {
	QuotaResponse
	ChangeHistory []ChangeResponse `json:"changeHistory"`
}

// BalanceItem reports remaining as total minus used. Carried-over days are
// exposed separately and are not part of remaining.
type BalanceItem struct {
	Type        string  `json:"type"`
	Total       float64 `json:"total"`
	Used        float64 `json:"used"`
	Remaining   float64 `json:"remaining"`
	CarriedOver float64 `json:"carriedOver"`
	LeaveTypeID string  `json:"leaveTypeId"`
}

type BalanceResponse struct {
	Year    int           `json:"year"`
	Balance []BalanceItem `json:"balance"`
}

type MatrixUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type MatrixLeaveType struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DefaultQuota float64 `json:"defaultQuota"`
}

type MatrixResponse struct {
	Year       int                                 `json:"year"`
	Users      []MatrixUser                        `json:"users"`
	LeaveTypes []MatrixLeaveType                   `json:"leaveTypes"`
	Matrix     map[string]map[string]QuotaResponse `json:"matrix"`
}

type ImportResult struct {
	Line    int    `json:"line"`
	QuotaID string `json:"quotaId"`
	UserID  string `json:"user"`
	Type    string `json:"leaveType"`
	Year    int    `json:"year"`
}

type RowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type ImportResponse struct {
	Message string         `json:"message"`
	Results []ImportResult `json:"results"`
	Errors  []RowError     `json:"errors"`
}

type UnitError struct {
	UserID      string `json:"user"`
	LeaveTypeID string `json:"leaveType"`
	Error       string `json:"error"`
}

// BatchResponse reports a best-effort loop over users and leave types.
type BatchResponse struct {
	Message   string      `json:"message"`
	Year      int         `json:"year"`
	Processed int         `json:"processed"`
	Created   int         `json:"created"`
	Errors    []UnitError `json:"errors"`
}
