package leaverequest

type ApplyLeaveRequest struct {
	LeaveTypeID string `json:"leaveTypeId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Reason      string `json:"reason" binding:"max=1000"`
	IsHalfDay   bool   `json:"isHalfDay"`
}

type CommentRequest struct {
	Comment string `json:"comment" binding:"max=1000"`
}

type ListLeaveRequestsQuery struct {
	Status      string `form:"status"`
	UserID      string `form:"user"`
	LeaveTypeID string `form:"leaveType"`
	StartDate   string `form:"startDate"`
	EndDate     string `form:"endDate"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type CommentResponse struct {
	By   string `json:"by"`
	Text string `json:"text"`
	Date string `json:"date"`
}

type LeaveRequestResponse struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user"`
	UserName      string            `json:"userName,omitempty"`
	LeaveTypeID   string            `json:"leaveType"`
	LeaveTypeName string            `json:"leaveTypeName,omitempty"`
	StartDate     string            `json:"startDate"`
	EndDate       string            `json:"endDate"`
	Days          float64           `json:"days"`
	Reason        string            `json:"reason"`
	IsHalfDay     bool              `json:"isHalfDay"`
	Status        string            `json:"status"`
	ApproverID    *string           `json:"approver,omitempty"`
	Comments      []CommentResponse `json:"comments"`
	CreatedAt     string            `json:"createdAt"`
	UpdatedAt     string            `json:"updatedAt"`
}

type ApplyResponse struct {
	Message      string               `json:"message"`
	LeaveRequest LeaveRequestResponse `json:"leaveRequest"`
}

type ActionResponse struct {
	Message string               `json:"message"`
	Leave   LeaveRequestResponse `json:"leave"`
}

type HistoryResponse struct {
	History []LeaveRequestResponse `json:"history"`
}

type PageResponse struct {
	Results []LeaveRequestResponse `json:"results"`
	Total   int64                  `json:"total"`
	Page    int                    `json:"page"`
	Limit   int                    `json:"limit"`
}
