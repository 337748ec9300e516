package leaverequest

import (
	"time"

	"github.com/google/uuid"
)

func mapToResponse(lr LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:          lr.ID.String(),
		UserID:      lr.UserID.String(),
		LeaveTypeID: lr.LeaveTypeID.String(),
		StartDate:   lr.StartDate.Format(dateLayout),
		EndDate:     lr.EndDate.Format(dateLayout),
		Days:        lr.Days.InexactFloat64(),
		Reason:      lr.Reason,
		IsHalfDay:   lr.IsHalfDay,
		Status:      lr.Status,
		Comments:    make([]CommentResponse, 0, len(lr.Comments)),
		CreatedAt:   lr.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   lr.UpdatedAt.Format(time.RFC3339),
	}
	if lr.ApproverID != nil {
		v := lr.ApproverID.String()
		resp.ApproverID = &v
	}
	for _, c := range lr.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{
			By:   c.AuthorID.String(),
			Text: c.Text,
			Date: c.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}

func mapToListResponse(requests []LeaveRequest, userNames, typeNames map[uuid.UUID]string) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(requests))
	for i, lr := range requests {
		resp[i] = mapToResponse(lr)
		resp[i].UserName = userNames[lr.UserID]
		resp[i].LeaveTypeName = typeNames[lr.LeaveTypeID]
	}
	return resp
}
