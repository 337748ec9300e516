package leavereport

type Summary struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Cancelled int64 `json:"cancelled"`
}

// GroupRow is one leave type or one user with its request counts.
type GroupRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Total     int64  `json:"total"`
	Approved  int64  `json:"approved"`
	Pending   int64  `json:"pending"`
	Rejected  int64  `json:"rejected"`
	Cancelled int64  `json:"cancelled"`
}

type ReportResponse struct {
	Summary Summary    `json:"summary"`
	ByType  []GroupRow `json:"byType"`
	ByUser  []GroupRow `json:"byUser"`
}
