package leaverequest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-oms/internal/actor"
	"go-oms/internal/events"
	"go-oms/internal/leavequota"
	leaverequesterrors "go-oms/internal/leaverequest/errors"
	"go-oms/internal/leavetype"
	leavetypeerrors "go-oms/internal/leavetype/errors"
	"go-oms/internal/messaging/kafka"
	"go-oms/internal/shared/contextutil"
	"go-oms/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

//go:generate mockgen -source=leaverequest_service.go -destination=mock/leaverequest_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, by actor.Actor, req ApplyLeaveRequest) (ApplyResponse, error)
	Cancel(ctx context.Context, by actor.Actor, id string, req CommentRequest) (ActionResponse, error)
	Approve(ctx context.Context, by actor.Actor, id string, req CommentRequest) (ActionResponse, error)
	Reject(ctx context.Context, by actor.Actor, id string, req CommentRequest) (ActionResponse, error)
	AdminCancel(ctx context.Context, by actor.Actor, id string, req CommentRequest) (ActionResponse, error)
	History(ctx context.Context, by actor.Actor) (HistoryResponse, error)
	Team(ctx context.Context, by actor.Actor, query ListLeaveRequestsQuery) (PageResponse, error)
	List(ctx context.Context, query ListLeaveRequestsQuery) (PageResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	quotas leavequota.Repository
	types  leavetype.Repository
	users  user.Repository
	outbox kafka.OutboxRepository
	topic  string
	now    func() time.Time
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	quotas leavequota.Repository,
	types leavetype.Repository,
	users user.Repository,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, quotas, types, users, nil, "", logger...)
}

// NewServiceWithOutbox writes a status-changed event in the same transaction as each transition.
// An empty topic falls back to events.LeaveRequestTopic.
func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	quotas leavequota.Repository,
	types leavetype.Repository,
	users user.Repository,
	outboxRepo kafka.OutboxRepository,
	topic string,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leaverequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.service")
	}
	if topic == "" {
		topic = events.LeaveRequestTopic
	}
	return &service{
		db:     db,
		repo:   repo,
		quotas: quotas,
		types:  types,
		users:  users,
		outbox: outboxRepo,
		topic:  topic,
		now:    func() time.Time { return time.Now().UTC() },
		logger: l,
	}
}

func (s *service) Apply(ctx context.Context, by actor.Actor, req ApplyLeaveRequest) (ApplyResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("apply leave requested",
		zap.String("request_id", rid),
		zap.String("actor_id", by.ID.String()),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Bool("is_half_day", req.IsHalfDay),
	)

	if req.LeaveTypeID == "" || req.StartDate == "" || req.EndDate == "" {
		return ApplyResponse{}, leaverequesterrors.ErrMissingFields
	}
	typeID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return ApplyResponse{}, leaverequesterrors.ErrInvalidLeaveTypeID
	}
	start, err := ParseDate(req.StartDate)
	if err != nil {
		return ApplyResponse{}, err
	}
	end, err := ParseDate(req.EndDate)
	if err != nil {
		return ApplyResponse{}, err
	}

	if _, err := s.types.FindByID(ctx, typeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplyResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		s.logger.Error("apply leave resolve leave type failed", zap.String("request_id", rid), zap.Error(err))
		return ApplyResponse{}, err
	}

	key := leavequota.Key{UserID: by.ID, LeaveTypeID: typeID, Year: start.Year()}
	quota, err := s.quotas.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("apply leave rejected, no quota",
				zap.String("request_id", rid),
				zap.String("actor_id", by.ID.String()),
				zap.String("leave_type_id", typeID.String()),
				zap.Int("year", key.Year),
			)
			return ApplyResponse{}, leaverequesterrors.ErrNoQuotaSet
		}
		s.logger.Error("apply leave resolve quota failed", zap.String("request_id", rid), zap.Error(err))
		return ApplyResponse{}, err
	}

	days := CountDays(start, end, req.IsHalfDay)
	if !days.IsPositive() {
		return ApplyResponse{}, leaverequesterrors.ErrInvalidDays
	}
	// Carried-over days are not counted here; the check is also not atomic with the later debit.
	if quota.Used.Add(days).GreaterThan(quota.Allocated) {
		s.logger.Warn("apply leave rejected, not enough balance",
			zap.String("request_id", rid),
			zap.String("actor_id", by.ID.String()),
			zap.String("days", days.String()),
			zap.String("used", quota.Used.String()),
			zap.String("allocated", quota.Allocated.String()),
		)
		return ApplyResponse{}, leaverequesterrors.ErrNotEnoughBalance
	}

	now := s.now()
	lr := &LeaveRequest{
		ID:          uuid.New(),
		UserID:      by.ID,
		LeaveTypeID: typeID,
		StartDate:   start,
		EndDate:     end,
		Days:        days,
		Reason:      req.Reason,
		IsHalfDay:   req.IsHalfDay,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("apply leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ApplyResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, lr); err != nil {
		s.logger.Error("apply leave persist failed", zap.String("request_id", rid), zap.Error(err))
		return ApplyResponse{}, err
	}
	if err := s.enqueue(ctx, tx, *lr, "", by, ""); err != nil {
		s.logger.Error("apply leave outbox persist failed", zap.String("request_id", rid), zap.Error(err))
		return ApplyResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("apply leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return ApplyResponse{}, err
	}
	s.logger.Info("apply leave success",
		zap.String("request_id", rid),
		zap.String("leave_request_id", lr.ID.String()),
		zap.String("actor_id", by.ID.String()),
		zap.String("days", days.String()),
	)

	return ApplyResponse{Message: "Leave applied", LeaveRequest: mapToResponse(*lr)}, nil
}

// Cancel is the owner's self-service cancel. It never credits the quota, even for an approved request.
func (s *service) Cancel(ctx context.Context, by actor.Actor, id string, req CommentRequest) (ActionResponse, error) {
	return s.transition(ctx, by, id, req.Comment, StatusCancelled, func(lr *LeaveRequest, _ leavequota.Repository) error {
		if lr.UserID != by.ID {
			return leaverequesterrors.ErrLeaveRequestNotFound
		}
		if lr.Status != StatusPending && lr.Status != StatusApproved {
			return leaverequesterrors.ErrCannotCancel
		}
		return nil
	}, "Leave cancelled")
}

func (s *service) Approve(ctx context.Context, by actor.Actor, id string, req CommentRequest) (ActionResponse, error) {
	return s.transition(ctx, by, id, req.Comment, StatusApproved, func(lr *LeaveRequest, quotas leavequota.Repository) error {
		if lr.Status != StatusPending {
			return leaverequesterrors.ErrNotPending
		}
		lr.ApproverID = by.UserID()
		key := leavequota.Key{UserID: lr.UserID, LeaveTypeID: lr.LeaveTypeID, Year: lr.Year()}
		if err := quotas.Debit(ctx, key, lr.Days); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaverequesterrors.ErrQuotaMissingOnApprove
			}
			return err
		}
		return nil
	}, "Leave approved")
}

func (s *service) Reject(ctx context.Context, by actor.Actor, id string, req CommentRequest) (ActionResponse, error) {
	return s.transition(ctx, by, id, req.Comment, StatusRejected, func(lr *LeaveRequest, _ leavequota.Repository) error {
		if lr.Status != StatusPending {
			return leaverequesterrors.ErrNotPending
		}
		lr.ApproverID = by.UserID()
		return nil
	}, "Leave rejected")
}

// AdminCancel cancels from any live status and gives an approved request's days back to the quota.
func (s *service) AdminCancel(ctx context.Context, by actor.Actor, id string, req CommentRequest) (ActionResponse, error) {
	return s.transition(ctx, by, id, req.Comment, StatusCancelled, func(lr *LeaveRequest, quotas leavequota.Repository) error {
		if lr.Status == StatusCancelled {
			return leaverequesterrors.ErrAlreadyCancelled
		}
		if lr.Status != StatusApproved {
			return nil
		}
		key := leavequota.Key{UserID: lr.UserID, LeaveTypeID: lr.LeaveTypeID, Year: lr.Year()}
		if err := quotas.Credit(ctx, key, lr.Days); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("admin cancel quota missing, nothing to credit",
					zap.String("leave_request_id", lr.ID.String()),
					zap.Int("year", key.Year),
				)
				return nil
			}
			return err
		}
		return nil
	}, "Leave cancelled by admin")
}

// transition loads the request inside a transaction, lets guard check and apply side effects,
// then stores the new status, the optional comment and the outbox event atomically.
func (s *service) transition(
	ctx context.Context,
	by actor.Actor,
	id string,
	comment string,
	target string,
	guard func(lr *LeaveRequest, quotas leavequota.Repository) error,
	message string,
) (ActionResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("leave transition requested",
		zap.String("request_id", rid),
		zap.String("leave_request_id", id),
		zap.String("actor_id", by.ID.String()),
		zap.String("target_status", target),
	)

	requestID, err := uuid.Parse(id)
	if err != nil {
		return ActionResponse{}, leaverequesterrors.ErrInvalidLeaveRequestID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("leave transition begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ActionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	lr, err := qtx.FindByIDForUpdate(ctx, requestID)
	if err != nil {
		return ActionResponse{}, mapRepositoryError(err)
	}

	from := lr.Status
	if err := guard(lr, s.quotas.WithTx(tx)); err != nil {
		s.logger.Warn("leave transition rejected",
			zap.String("request_id", rid),
			zap.String("leave_request_id", id),
			zap.String("from_status", from),
			zap.String("to_status", target),
			zap.Error(err),
		)
		return ActionResponse{}, err
	}

	now := s.now()
	lr.Status = target
	lr.UpdatedAt = now
	if err := qtx.Update(ctx, lr); err != nil {
		s.logger.Error("leave transition persist failed",
			zap.String("request_id", rid),
			zap.String("leave_request_id", id),
			zap.Error(err),
		)
		return ActionResponse{}, err
	}

	if comment != "" {
		c := Comment{
			ID:             uuid.New(),
			LeaveRequestID: lr.ID,
			AuthorID:       by.ID,
			Text:           comment,
			CreatedAt:      now,
		}
		if err := qtx.AddComment(ctx, &c); err != nil {
			s.logger.Error("leave transition comment persist failed",
				zap.String("request_id", rid),
				zap.String("leave_request_id", id),
				zap.Error(err),
			)
			return ActionResponse{}, err
		}
		lr.Comments = append(lr.Comments, c)
	}

	if err := s.enqueue(ctx, tx, *lr, from, by, comment); err != nil {
		s.logger.Error("leave transition outbox persist failed", zap.String("request_id", rid), zap.Error(err))
		return ActionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("leave transition commit failed", zap.String("request_id", rid), zap.Error(err))
		return ActionResponse{}, err
	}
	s.logger.Info("leave transition success",
		zap.String("request_id", rid),
		zap.String("leave_request_id", id),
		zap.String("from_status", from),
		zap.String("to_status", target),
	)

	return ActionResponse{Message: message, Leave: mapToResponse(*lr)}, nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, lr LeaveRequest, from string, by actor.Actor, comment string) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.LeaveRequestStatusChangedEvent{
		EventType:      events.LeaveRequestStatusChangedType,
		RequestID:      rid,
		LeaveRequestID: lr.ID.String(),
		UserID:         lr.UserID.String(),
		LeaveTypeID:    lr.LeaveTypeID.String(),
		FromStatus:     from,
		ToStatus:       lr.Status,
		Days:           lr.Days.String(),
		ActorID:        by.ID.String(),
		Comment:        comment,
		OccurredAt:     s.now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: kafka.AggregateLeaveRequest,
		AggregateID:   lr.ID.String(),
		EventType:     event.EventType,
		Topic:         s.topic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) History(ctx context.Context, by actor.Actor) (HistoryResponse, error) {
	requests, err := s.repo.ListByUser(ctx, by.ID)
	if err != nil {
		s.logger.Error("leave history failed", zap.String("actor_id", by.ID.String()), zap.Error(err))
		return HistoryResponse{}, err
	}

	typeNames, err := s.typeNames(ctx, requests)
	if err != nil {
		return HistoryResponse{}, err
	}
	return HistoryResponse{History: mapToListResponse(requests, nil, typeNames)}, nil
}

// Team lists requests of the manager's team members only.
func (s *service) Team(ctx context.Context, by actor.Actor, query ListLeaveRequestsQuery) (PageResponse, error) {
	members, err := s.users.FindTeamMemberIDs(ctx, by.ID)
	if err != nil {
		s.logger.Error("team leave resolve members failed", zap.String("actor_id", by.ID.String()), zap.Error(err))
		return PageResponse{}, err
	}
	if members == nil {
		members = []uuid.UUID{}
	}

	filter, page, limit, err := buildFilter(query)
	if err != nil {
		return PageResponse{}, err
	}
	if filter.UserIDs != nil {
		filter.UserIDs = intersect(filter.UserIDs, members)
	} else {
		filter.UserIDs = members
	}
	return s.page(ctx, filter, page, limit)
}

func (s *service) List(ctx context.Context, query ListLeaveRequestsQuery) (PageResponse, error) {
	filter, page, limit, err := buildFilter(query)
	if err != nil {
		return PageResponse{}, err
	}
	return s.page(ctx, filter, page, limit)
}

func (s *service) page(ctx context.Context, filter Filter, page, limit int) (PageResponse, error) {
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list leave requests failed", zap.Error(err))
		return PageResponse{}, err
	}

	typeNames, err := s.typeNames(ctx, requests)
	if err != nil {
		return PageResponse{}, err
	}
	userNames, err := s.userNames(ctx, requests)
	if err != nil {
		return PageResponse{}, err
	}

	return PageResponse{
		Results: mapToListResponse(requests, userNames, typeNames),
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

func (s *service) typeNames(ctx context.Context, requests []LeaveRequest) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string)
	if len(requests) == 0 {
		return names, nil
	}
	types, err := s.types.FindByIDs(ctx, distinct(requests, func(lr LeaveRequest) uuid.UUID { return lr.LeaveTypeID }))
	if err != nil {
		s.logger.Error("resolve leave type names failed", zap.Error(err))
		return nil, err
	}
	for _, t := range types {
		names[t.ID] = t.Name
	}
	return names, nil
}

func (s *service) userNames(ctx context.Context, requests []LeaveRequest) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string)
	if len(requests) == 0 {
		return names, nil
	}
	users, err := s.users.FindByIDs(ctx, distinct(requests, func(lr LeaveRequest) uuid.UUID { return lr.UserID }))
	if err != nil {
		s.logger.Error("resolve user names failed", zap.Error(err))
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

func buildFilter(query ListLeaveRequestsQuery) (Filter, int, int, error) {
	page := query.Page
	if page < 1 {
		page = defaultPage
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	filter := Filter{Offset: (page - 1) * limit, Limit: limit}
	if query.Status != "" {
		if !ValidStatus(query.Status) {
			return Filter{}, 0, 0, leaverequesterrors.ErrInvalidStatus
		}
		filter.Status = query.Status
	}
	if query.UserID != "" {
		id, err := uuid.Parse(query.UserID)
		if err != nil {
			return Filter{}, 0, 0, leaverequesterrors.ErrInvalidUserID
		}
		filter.UserIDs = []uuid.UUID{id}
	}
	if query.LeaveTypeID != "" {
		id, err := uuid.Parse(query.LeaveTypeID)
		if err != nil {
			return Filter{}, 0, 0, leaverequesterrors.ErrInvalidLeaveTypeID
		}
		filter.LeaveTypeID = &id
	}
	if query.StartDate != "" {
		t, err := ParseDate(query.StartDate)
		if err != nil {
			return Filter{}, 0, 0, err
		}
		filter.StartFrom = &t
	}
	if query.EndDate != "" {
		t, err := ParseDate(query.EndDate)
		if err != nil {
			return Filter{}, 0, 0, err
		}
		filter.EndTo = &t
	}
	return filter, page, limit, nil
}

func distinct(requests []LeaveRequest, field func(LeaveRequest) uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(requests))
	ids := make([]uuid.UUID, 0, len(requests))
	for _, lr := range requests {
		id := field(lr)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func intersect(a, b []uuid.UUID) []uuid.UUID {
	in := make(map[uuid.UUID]struct{}, len(b))
	for _, id := range b {
		in[id] = struct{}{}
	}
	out := []uuid.UUID{}
	for _, id := range a {
		if _, ok := in[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
