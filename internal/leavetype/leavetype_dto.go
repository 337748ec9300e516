package leavetype

type CreateLeaveTypeRequest struct {
	Name            string   `json:"name" binding:"required,max=100"`
	Description     string   `json:"description"`
	DefaultDays     float64  `json:"defaultDays" binding:"gte=0"`
	MaxCarryover    *float64 `json:"maxCarryover" binding:"omitempty,gte=0"`
	CarryoverExpiry string   `json:"carryoverExpiry"`
}

type UpdateLeaveTypeRequest struct {
	Name            *string  `json:"name" binding:"omitempty,max=100"`
	Description     *string  `json:"description"`
	IsActive        *bool    `json:"isActive"`
	DefaultDays     *float64 `json:"defaultDays" binding:"omitempty,gte=0"`
	MaxCarryover    *float64 `json:"maxCarryover" binding:"omitempty,gte=0"`
	CarryoverExpiry *string  `json:"carryoverExpiry"`
}

type LeaveTypeResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DefaultQuota    float64 `json:"defaultQuota"`
	MaxCarryover    float64 `json:"maxCarryover"`
	CarryoverExpiry string  `json:"carryoverExpiry"`
	IsActive        bool    `json:"isActive"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}
