package leavequota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"go-oms/internal/actor"
	"go-oms/internal/audit"
	leavequotaerrors "go-oms/internal/leavequota/errors"
	"go-oms/internal/leavetype"
	leavetypeerrors "go-oms/internal/leavetype/errors"
	"go-oms/internal/shared/apperror"
	"go-oms/internal/shared/contextutil"
	"go-oms/internal/user"
	usererrors "go-oms/internal/user/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leavequota_service.go -destination=mock/leavequota_service_mock.go -package=mock
type Service interface {
	GetBalance(ctx context.Context, by actor.Actor, year int) (BalanceResponse, error)
	Create(ctx context.Context, by actor.Actor, req CreateQuotaRequest) (QuotaResponse, error)
	Adjust(ctx context.Context, by actor.Actor, id string, req AdjustQuotaRequest) (QuotaResponse, error)
	GetByID(ctx context.Context, id string) (QuotaDetailResponse, error)
	List(ctx context.Context, query ListQuotasQuery) ([]QuotaResponse, error)
	Matrix(ctx context.Context, query MatrixQuery) (MatrixResponse, error)
	Import(ctx context.Context, by actor.Actor, r io.Reader) (ImportResponse, error)
	YearlyReset(ctx context.Context, year int) (BatchResponse, error)
	Sync(ctx context.Context, by actor.Actor, year int) (BatchResponse, error)
	SyncUser(ctx context.Context, userID uuid.UUID, year int) (BatchResponse, error)
	SeedForType(ctx context.Context, t leavetype.LeaveType, year int) (int, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	types    leavetype.Repository
	users    user.Repository
	recorder audit.Recorder
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	types leavetype.Repository,
	users user.Repository,
	recorder audit.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leavequota.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavequota.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		types:    types,
		users:    users,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   l,
	}
}

func (s *service) GetBalance(ctx context.Context, by actor.Actor, year int) (BalanceResponse, error) {
	if year == 0 {
		year = s.now().Year()
	}
	s.logger.Debug("get balance requested",
		zap.String("actor_id", by.ID.String()),
		zap.Int("year", year),
	)
	if !validYear(year) {
		return BalanceResponse{}, leavequotaerrors.ErrInvalidYear
	}

	quotas, err := s.repo.List(ctx, Filter{UserID: &by.ID, Year: year})
	if err != nil {
		s.logger.Error("get balance failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	names, err := s.typeNames(ctx, quotas)
	if err != nil {
		s.logger.Error("get balance resolve leave types failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	resp := BalanceResponse{Year: year, Balance: make([]BalanceItem, 0, len(quotas))}
	for _, q := range quotas {
		resp.Balance = append(resp.Balance, BalanceItem{
			Type:        names[q.LeaveTypeID],
			Total:       q.Allocated.InexactFloat64(),
			Used:        q.Used.InexactFloat64(),
			Remaining:   q.Allocated.Sub(q.Used).InexactFloat64(),
			CarriedOver: q.CarriedOver.InexactFloat64(),
			LeaveTypeID: q.LeaveTypeID.String(),
		})
	}
	return resp, nil
}

func (s *service) Create(ctx context.Context, by actor.Actor, req CreateQuotaRequest) (QuotaResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create quota requested",
		zap.String("request_id", rid),
		zap.String("actor_id", by.ID.String()),
		zap.String("user_id", req.UserID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.Int("year", req.Year),
	)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return QuotaResponse{}, leavequotaerrors.ErrInvalidUserID
	}
	typeID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return QuotaResponse{}, leavequotaerrors.ErrInvalidLeaveTypeID
	}
	if !validYear(req.Year) {
		return QuotaResponse{}, leavequotaerrors.ErrInvalidYear
	}
	carried := decimal.Zero
	if req.CarriedOver != nil {
		carried = decimal.NewFromFloat(*req.CarriedOver)
	}
	allocated := decimal.NewFromFloat(req.Allocated)
	if allocated.IsNegative() || carried.IsNegative() {
		return QuotaResponse{}, leavequotaerrors.ErrNegativeDays
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return QuotaResponse{}, usererrors.ErrUserNotFound
		}
		s.logger.Error("create quota resolve user failed", zap.Error(err))
		return QuotaResponse{}, err
	}
	if _, err := s.types.FindByID(ctx, typeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return QuotaResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		s.logger.Error("create quota resolve leave type failed", zap.Error(err))
		return QuotaResponse{}, err
	}

	q := s.newQuota(Key{UserID: userID, LeaveTypeID: typeID, Year: req.Year}, allocated, carried)
	if err := s.insertAudited(ctx, q, by.UserID(), audit.ActionCreate, "Created leave quota"); err != nil {
		if errors.Is(err, leavequotaerrors.ErrQuotaExists) {
			s.logger.Warn("create quota duplicate key",
				zap.String("user_id", req.UserID),
				zap.String("leave_type_id", req.LeaveTypeID),
				zap.Int("year", req.Year),
			)
		} else {
			s.logger.Error("create quota failed", zap.Error(err))
		}
		return QuotaResponse{}, err
	}

	s.logger.Info("create quota success",
		zap.String("request_id", rid),
		zap.String("leave_quota_id", q.ID.String()),
	)
	return mapToResponse(*q), nil
}

func (s *service) Adjust(ctx context.Context, by actor.Actor, id string, req AdjustQuotaRequest) (QuotaResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("adjust quota requested",
		zap.String("request_id", rid),
		zap.String("actor_id", by.ID.String()),
		zap.String("leave_quota_id", id),
	)

	quotaID, err := uuid.Parse(id)
	if err != nil {
		return QuotaResponse{}, leavequotaerrors.ErrInvalidQuotaID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("adjust quota begin tx failed", zap.Error(err))
		return QuotaResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	q, err := qtx.FindByID(ctx, quotaID)
	if err != nil {
		s.logger.Warn("adjust quota fetch existing failed", zap.String("leave_quota_id", id), zap.Error(err))
		return QuotaResponse{}, mapRepositoryError(err)
	}
	before := q.Snapshot()

	if req.Allocated != nil {
		q.Allocated = decimal.NewFromFloat(*req.Allocated)
	}
	if req.Used != nil {
		q.Used = decimal.NewFromFloat(*req.Used)
	}
	if req.CarriedOver != nil {
		q.CarriedOver = decimal.NewFromFloat(*req.CarriedOver)
	}
	q.UpdatedAt = s.now()
	after := q.Snapshot()

	if err := qtx.Update(ctx, q); err != nil {
		s.logger.Error("adjust quota persist failed", zap.Error(err))
		return QuotaResponse{}, mapRepositoryError(err)
	}

	change, err := newChange(q.ID, by.UserID(), ChangeFieldAdjust, before, after, s.now())
	if err != nil {
		return QuotaResponse{}, err
	}
	if err := qtx.CreateChange(ctx, change); err != nil {
		s.logger.Error("adjust quota change history failed", zap.Error(err))
		return QuotaResponse{}, err
	}

	if _, err := s.recorder.WithTx(tx).Record(ctx, audit.Entry{
		Action:    audit.ActionUpdate,
		Entity:    audit.QuotaRef(q.ID),
		ChangedBy: by.UserID(),
		OldValue:  before,
		NewValue:  after,
		Details:   "Adjusted leave quota",
	}); err != nil {
		s.logger.Error("adjust quota audit failed", zap.Error(err))
		return QuotaResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("adjust quota commit failed", zap.Error(err))
		return QuotaResponse{}, err
	}

	s.logger.Info("adjust quota success",
		zap.String("request_id", rid),
		zap.String("leave_quota_id", id),
	)
	return mapToResponse(*q), nil
}

func (s *service) GetByID(ctx context.Context, id string) (QuotaDetailResponse, error) {
	s.logger.Debug("get quota by id requested", zap.String("leave_quota_id", id))

	quotaID, err := uuid.Parse(id)
	if err != nil {
		return QuotaDetailResponse{}, leavequotaerrors.ErrInvalidQuotaID
	}

	q, err := s.repo.FindByID(ctx, quotaID)
	if err != nil {
		return QuotaDetailResponse{}, mapRepositoryError(err)
	}

	changes, err := s.repo.ListChanges(ctx, quotaID)
	if err != nil {
		s.logger.Error("get quota change history failed", zap.Error(err))
		return QuotaDetailResponse{}, err
	}

	resp := QuotaDetailResponse{
		QuotaResponse: mapToResponse(*q),
		ChangeHistory: make([]ChangeResponse, len(changes)),
	}
	for i, c := range changes {
		resp.ChangeHistory[i] = mapChangeToResponse(c)
	}
	return resp, nil
}

func (s *service) List(ctx context.Context, query ListQuotasQuery) ([]QuotaResponse, error) {
	filter := Filter{Year: query.Year}
	if query.UserID != "" {
		id, err := uuid.Parse(query.UserID)
		if err != nil {
			return nil, leavequotaerrors.ErrInvalidUserID
		}
		filter.UserID = &id
	}
	if query.LeaveTypeID != "" {
		id, err := uuid.Parse(query.LeaveTypeID)
		if err != nil {
			return nil, leavequotaerrors.ErrInvalidLeaveTypeID
		}
		filter.LeaveTypeID = &id
	}

	quotas, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list quotas failed", zap.Error(err))
		return nil, err
	}

	resp := make([]QuotaResponse, len(quotas))
	for i, q := range quotas {
		resp[i] = mapToResponse(q)
	}
	return resp, nil
}

func (s *service) Matrix(ctx context.Context, query MatrixQuery) (MatrixResponse, error) {
	year := query.Year
	if year == 0 {
		year = s.now().Year()
	}
	s.logger.Debug("quota matrix requested", zap.Int("year", year))
	if !validYear(year) {
		return MatrixResponse{}, leavequotaerrors.ErrInvalidYear
	}

	users, err := s.users.Search(ctx, user.Filter{
		Department: query.Department,
		Role:       query.Role,
		Status:     query.Status,
		Search:     query.Search,
	})
	if err != nil {
		s.logger.Error("quota matrix search users failed", zap.Error(err))
		return MatrixResponse{}, err
	}

	var types []leavetype.LeaveType
	if query.LeaveTypeID != "" {
		typeID, err := uuid.Parse(query.LeaveTypeID)
		if err != nil {
			return MatrixResponse{}, leavequotaerrors.ErrInvalidLeaveTypeID
		}
		types, err = s.types.FindByIDs(ctx, []uuid.UUID{typeID})
		if err != nil {
			return MatrixResponse{}, err
		}
	} else {
		types, err = s.types.List(ctx, true)
		if err != nil {
			s.logger.Error("quota matrix list leave types failed", zap.Error(err))
			return MatrixResponse{}, err
		}
	}

	userIDs := make([]uuid.UUID, len(users))
	resp := MatrixResponse{
		Year:       year,
		Users:      make([]MatrixUser, len(users)),
		LeaveTypes: make([]MatrixLeaveType, len(types)),
		Matrix:     make(map[string]map[string]QuotaResponse, len(users)),
	}
	for i, u := range users {
		userIDs[i] = u.ID
		resp.Users[i] = MatrixUser{
			ID:         u.ID.String(),
			Name:       u.Name,
			Email:      u.Email,
			Role:       string(u.Role),
			Department: u.Department,
		}
		resp.Matrix[u.ID.String()] = map[string]QuotaResponse{}
	}
	typeIDs := make([]uuid.UUID, len(types))
	for i, t := range types {
		typeIDs[i] = t.ID
		resp.LeaveTypes[i] = MatrixLeaveType{
			ID:           t.ID.String(),
			Name:         t.Name,
			DefaultQuota: t.DefaultQuota.InexactFloat64(),
		}
	}

	quotas, err := s.repo.FindByYear(ctx, year, userIDs, typeIDs)
	if err != nil {
		s.logger.Error("quota matrix load quotas failed", zap.Error(err))
		return MatrixResponse{}, err
	}
	for _, q := range quotas {
		row, ok := resp.Matrix[q.UserID.String()]
		if !ok {
			continue
		}
		row[q.LeaveTypeID.String()] = mapToResponse(q)
	}

	return resp, nil
}

// Import inserts every parsed row independently. Existing keys and failed
// inserts are reported per line and never abort the batch.
func (s *service) Import(ctx context.Context, by actor.Actor, r io.Reader) (ImportResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("import quotas requested",
		zap.String("request_id", rid),
		zap.String("actor_id", by.ID.String()),
	)

	rows, rowErrs, err := ParseImportCSV(r)
	if err != nil {
		s.logger.Warn("import quotas invalid file", zap.Error(err))
		return ImportResponse{}, err
	}

	resp := ImportResponse{
		Results: []ImportResult{},
		Errors:  append([]RowError{}, rowErrs...),
	}
	for _, row := range rows {
		key := Key{UserID: row.UserID, LeaveTypeID: row.LeaveTypeID, Year: row.Year}

		exists, err := s.repo.ExistsByKey(ctx, key)
		if err != nil {
			resp.Errors = append(resp.Errors, RowError{Line: row.Line, Error: "lookup failed"})
			s.logger.Error("import quotas lookup failed", zap.Int("line", row.Line), zap.Error(err))
			continue
		}
		if exists {
			resp.Errors = append(resp.Errors, RowError{Line: row.Line, Error: leavequotaerrors.ErrQuotaExists.Message})
			continue
		}

		q := s.newQuota(key, row.Allocated, row.CarriedOver)
		if err := s.insertAudited(ctx, q, by.UserID(), audit.ActionImport, fmt.Sprintf("Imported leave quota from CSV line %d", row.Line)); err != nil {
			resp.Errors = append(resp.Errors, RowError{Line: row.Line, Error: rowErrorMessage(err)})
			s.logger.Warn("import quotas row failed", zap.Int("line", row.Line), zap.Error(err))
			continue
		}

		resp.Results = append(resp.Results, ImportResult{
			Line:    row.Line,
			QuotaID: q.ID.String(),
			UserID:  q.UserID.String(),
			Type:    q.LeaveTypeID.String(),
			Year:    q.Year,
		})
	}

	resp.Message = fmt.Sprintf("Imported %d quotas with %d errors", len(resp.Results), len(resp.Errors))
	s.logger.Info("import quotas finished",
		zap.String("request_id", rid),
		zap.Int("imported", len(resp.Results)),
		zap.Int("errors", len(resp.Errors)),
	)
	return resp, nil
}

// YearlyReset rebuilds every (user, active type) row for year from year-1.
// Each unit runs in its own transaction; failures are collected.
func (s *service) YearlyReset(ctx context.Context, year int) (BatchResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("yearly reset requested", zap.String("request_id", rid), zap.Int("year", year))
	if !validYear(year) {
		return BatchResponse{}, leavequotaerrors.ErrInvalidYear
	}

	types, err := s.types.List(ctx, true)
	if err != nil {
		s.logger.Error("yearly reset list leave types failed", zap.Error(err))
		return BatchResponse{}, err
	}
	users, err := s.users.FindAll(ctx)
	if err != nil {
		s.logger.Error("yearly reset list users failed", zap.Error(err))
		return BatchResponse{}, err
	}

	resp := BatchResponse{Year: year, Errors: []UnitError{}}
	for _, t := range types {
		for _, u := range users {
			if err := s.resetOne(ctx, t, u.ID, year); err != nil {
				s.logger.Warn("yearly reset unit failed",
					zap.String("user_id", u.ID.String()),
					zap.String("leave_type_id", t.ID.String()),
					zap.Error(err),
				)
				resp.Errors = append(resp.Errors, UnitError{
					UserID:      u.ID.String(),
					LeaveTypeID: t.ID.String(),
					Error:       rowErrorMessage(err),
				})
				continue
			}
			resp.Processed++
		}
	}

	resp.Message = fmt.Sprintf("Yearly reset for %d completed", year)
	s.logger.Info("yearly reset finished",
		zap.String("request_id", rid),
		zap.Int("year", year),
		zap.Int("processed", resp.Processed),
		zap.Int("errors", len(resp.Errors)),
	)
	return resp, nil
}

func (s *service) resetOne(ctx context.Context, t leavetype.LeaveType, userID uuid.UUID, year int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	key := Key{UserID: userID, LeaveTypeID: t.ID, Year: year}

	carried := decimal.Zero
	prev, err := qtx.FindByKey(ctx, Key{UserID: userID, LeaveTypeID: t.ID, Year: year - 1})
	switch {
	case err == nil:
		carried = CarryOver(*prev, t.MaxCarryover)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	var before any
	if current, err := qtx.FindByKey(ctx, key); err == nil {
		before = current.Snapshot()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	q := s.newQuota(key, t.DefaultQuota, carried)
	if err := qtx.Upsert(ctx, q); err != nil {
		return mapRepositoryError(err)
	}
	saved, err := qtx.FindByKey(ctx, key)
	if err != nil {
		return err
	}

	if _, err := s.recorder.WithTx(tx).Record(ctx, audit.Entry{
		Action:   audit.ActionReset,
		Entity:   audit.QuotaRef(saved.ID),
		OldValue: before,
		NewValue: saved.Snapshot(),
		Details:  fmt.Sprintf("Yearly reset %d", year),
	}); err != nil {
		return err
	}

	return tx.Commit()
}

// CarryOver is min(maxCarryover, max(0, allocated+carriedOver-used)) of the prior year row.
func CarryOver(prev LeaveQuota, maxCarryover decimal.Decimal) decimal.Decimal {
	left := decimal.Max(decimal.Zero, prev.Remaining())
	return decimal.Min(maxCarryover, left)
}

func (s *service) Sync(ctx context.Context, by actor.Actor, year int) (BatchResponse, error) {
	if year == 0 {
		year = s.now().Year()
	}
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("sync quotas requested",
		zap.String("request_id", rid),
		zap.String("actor_id", by.ID.String()),
		zap.Int("year", year),
	)
	if !validYear(year) {
		return BatchResponse{}, leavequotaerrors.ErrInvalidYear
	}

	users, err := s.users.FindNonAdmin(ctx)
	if err != nil {
		s.logger.Error("sync quotas list users failed", zap.Error(err))
		return BatchResponse{}, err
	}
	types, err := s.types.List(ctx, true)
	if err != nil {
		s.logger.Error("sync quotas list leave types failed", zap.Error(err))
		return BatchResponse{}, err
	}

	resp := s.syncMissing(ctx, by, users, types, year)
	s.logger.Info("sync quotas finished",
		zap.String("request_id", rid),
		zap.Int("year", year),
		zap.Int("created", resp.Created),
		zap.Int("errors", len(resp.Errors)),
	)
	return resp, nil
}

// SyncUser provisions missing quotas of one user for every active type.
// Admin users never hold quotas.
func (s *service) SyncUser(ctx context.Context, userID uuid.UUID, year int) (BatchResponse, error) {
	if year == 0 {
		year = s.now().Year()
	}
	s.logger.Debug("sync user quotas requested", zap.String("user_id", userID.String()), zap.Int("year", year))

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BatchResponse{}, usererrors.ErrUserNotFound
		}
		return BatchResponse{}, err
	}
	if u.Role == actor.RoleAdmin {
		s.logger.Info("sync user quotas skipped admin", zap.String("user_id", userID.String()))
		return BatchResponse{Year: year, Message: "Admin users have no quotas", Errors: []UnitError{}}, nil
	}

	types, err := s.types.List(ctx, true)
	if err != nil {
		return BatchResponse{}, err
	}

	resp := s.syncMissing(ctx, actor.System, []user.User{*u}, types, year)
	s.logger.Info("sync user quotas finished",
		zap.String("user_id", userID.String()),
		zap.Int("created", resp.Created),
	)
	return resp, nil
}

func (s *service) syncMissing(ctx context.Context, by actor.Actor, users []user.User, types []leavetype.LeaveType, year int) BatchResponse {
	resp := BatchResponse{Year: year, Errors: []UnitError{}}
	for _, u := range users {
		for _, t := range types {
			resp.Processed++
			key := Key{UserID: u.ID, LeaveTypeID: t.ID, Year: year}

			exists, err := s.repo.ExistsByKey(ctx, key)
			if err == nil && exists {
				continue
			}
			if err == nil {
				q := s.newQuota(key, t.DefaultQuota, decimal.Zero)
				err = s.insertAudited(ctx, q, by.UserID(), audit.ActionCreate, fmt.Sprintf("Synced leave quota for %d", year))
				if errors.Is(err, leavequotaerrors.ErrQuotaExists) {
					continue
				}
			}
			if err != nil {
				s.logger.Warn("sync quota unit failed",
					zap.String("user_id", u.ID.String()),
					zap.String("leave_type_id", t.ID.String()),
					zap.Error(err),
				)
				resp.Errors = append(resp.Errors, UnitError{
					UserID:      u.ID.String(),
					LeaveTypeID: t.ID.String(),
					Error:       rowErrorMessage(err),
				})
				continue
			}
			resp.Created++
		}
	}
	resp.Message = fmt.Sprintf("Created %d missing quotas for %d", resp.Created, year)
	return resp
}

// SeedForType provisions a quota for every non-admin user. The batch is
// all-or-nothing; callers treat a failure as non-fatal.
func (s *service) SeedForType(ctx context.Context, t leavetype.LeaveType, year int) (int, error) {
	users, err := s.users.FindNonAdmin(ctx)
	if err != nil {
		return 0, err
	}

	existing, err := s.repo.FindByYear(ctx, year, nil, []uuid.UUID{t.ID})
	if err != nil {
		return 0, err
	}
	has := make(map[uuid.UUID]bool, len(existing))
	for _, q := range existing {
		has[q.UserID] = true
	}

	quotas := make([]LeaveQuota, 0, len(users))
	for _, u := range users {
		if has[u.ID] {
			continue
		}
		quotas = append(quotas, *s.newQuota(Key{UserID: u.ID, LeaveTypeID: t.ID, Year: year}, t.DefaultQuota, decimal.Zero))
	}
	if len(quotas) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).CreateBatch(ctx, quotas); err != nil {
		return 0, mapRepositoryError(err)
	}
	rec := s.recorder.WithTx(tx)
	for _, q := range quotas {
		if _, err := rec.Record(ctx, audit.Entry{
			Action:   audit.ActionCreate,
			Entity:   audit.QuotaRef(q.ID),
			NewValue: q.Snapshot(),
			Details:  "Seeded for new leave type " + t.Name,
		}); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(quotas), nil
}

func (s *service) newQuota(key Key, allocated, carried decimal.Decimal) *LeaveQuota {
	now := s.now()
	return &LeaveQuota{
		ID:          uuid.New(),
		UserID:      key.UserID,
		LeaveTypeID: key.LeaveTypeID,
		Year:        key.Year,
		Allocated:   allocated,
		CarriedOver: carried,
		Used:        decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// insertAudited stores a new quota and its audit entry in one transaction.
func (s *service) insertAudited(ctx context.Context, q *LeaveQuota, by *uuid.UUID, action audit.Action, details string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, q); err != nil {
		return mapRepositoryError(err)
	}
	if _, err := s.recorder.WithTx(tx).Record(ctx, audit.Entry{
		Action:    action,
		Entity:    audit.QuotaRef(q.ID),
		ChangedBy: by,
		NewValue:  q.Snapshot(),
		Details:   details,
	}); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *service) typeNames(ctx context.Context, quotas []LeaveQuota) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(quotas))
	for _, q := range quotas {
		ids = append(ids, q.LeaveTypeID)
	}
	types, err := s.types.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}
	return names, nil
}

// rowErrorMessage keeps per-unit errors free of persistence details.
func rowErrorMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return apperror.ErrInternal.Message
}
