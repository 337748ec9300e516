package leavereport

import (
	"context"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -source=leavereport_service.go -destination=mock/leavereport_service_mock.go -package=mock
type Service interface {
	Report(ctx context.Context) (ReportResponse, error)
	Export(ctx context.Context, format string) ([]byte, string, error)
}

type service struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavereport.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavereport.service")
	}
	return &service{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		logger: l,
	}
}

func (s *service) Report(ctx context.Context) (ReportResponse, error) {
	s.logger.Debug("leave report requested")

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("leave report count by status failed", zap.Error(err))
		return ReportResponse{}, err
	}
	byType, err := s.repo.GroupByType(ctx)
	if err != nil {
		s.logger.Error("leave report group by type failed", zap.Error(err))
		return ReportResponse{}, err
	}
	byUser, err := s.repo.GroupByUser(ctx)
	if err != nil {
		s.logger.Error("leave report group by user failed", zap.Error(err))
		return ReportResponse{}, err
	}

	return ReportResponse{
		Summary: summarize(counts),
		ByType:  mapGroups(byType),
		ByUser:  mapGroups(byUser),
	}, nil
}

func summarize(counts []StatusCount) Summary {
	var sum Summary
	for _, c := range counts {
		sum.Total += c.Count
		switch c.Status {
		case "pending":
			sum.Pending += c.Count
		case "approved":
			sum.Approved += c.Count
		case "rejected":
			sum.Rejected += c.Count
		case "cancelled":
			sum.Cancelled += c.Count
		}
	}
	return sum
}

func mapGroups(groups []GroupCount) []GroupRow {
	rows := make([]GroupRow, len(groups))
	for i, g := range groups {
		rows[i] = GroupRow{
			ID:        g.ID.String(),
			Name:      g.Name,
			Total:     g.Total,
			Approved:  g.Approved,
			Pending:   g.Pending,
			Rejected:  g.Rejected,
			Cancelled: g.Cancelled,
		}
	}
	return rows
}
