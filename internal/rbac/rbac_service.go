package rbac

import (
	"context"
	"sync"

	"go-oms/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

// DefaultPolicies mirrors the role_permissions seed and is used when the table is empty.
var DefaultPolicies = []RolePermissionRow{
	{Role: "Employee", Resource: "leave", Action: "self"},
	{Role: "Manager", Resource: "leave", Action: "self"},
	{Role: "HR", Resource: "leave", Action: "self"},
	{Role: "Admin", Resource: "leave", Action: "self"},
	{Role: "Manager", Resource: "leave", Action: "team"},
	{Role: "HR", Resource: "leave", Action: "manage"},
	{Role: "Admin", Resource: "leave", Action: "manage"},
	{Role: "HR", Resource: "quota", Action: "manage"},
	{Role: "Admin", Resource: "quota", Action: "manage"},
	{Role: "Employee", Resource: "type", Action: "read"},
	{Role: "Manager", Resource: "type", Action: "read"},
	{Role: "HR", Resource: "type", Action: "read"},
	{Role: "Admin", Resource: "type", Action: "read"},
	{Role: "HR", Resource: "type", Action: "manage"},
	{Role: "Admin", Resource: "type", Action: "manage"},
	{Role: "HR", Resource: "audit", Action: "manage"},
	{Role: "Admin", Resource: "audit", Action: "manage"},
	{Role: "HR", Resource: "report", Action: "read"},
	{Role: "Admin", Resource: "report", Action: "read"},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(ctx context.Context) error
	Enforce(req EnforceRequest) (bool, error)
	PermissionsForRole(role string) []domain.PermissionResponse
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	rows     []RolePermissionRow
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadPolicy(ctx context.Context) error {
	rows, err := s.repo.GetRolePermissions(ctx)
	if err != nil {
		s.logger.Error("load role permissions failed", zap.Error(err))
		return err
	}
	if len(rows) == 0 {
		s.logger.Warn("role_permissions is empty, using default policies")
		rows = DefaultPolicies
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()
	for _, rp := range rows {
		if _, err := s.enforcer.AddPolicy(rp.Role, rp.Resource, rp.Action); err != nil {
			return err
		}
	}
	s.rows = rows

	s.logger.Info("rbac policy loaded", zap.Int("policies", len(rows)))
	return nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) PermissionsForRole(role string) []domain.PermissionResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perms := make([]domain.PermissionResponse, 0)
	for _, rp := range s.rows {
		if rp.Role == role {
			perms = append(perms, domain.PermissionResponse{Resource: rp.Resource, Action: rp.Action})
		}
	}
	return perms
}
