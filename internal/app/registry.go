package app

import (
	"context"
	"database/sql"

	"go-oms/internal/audit"
	"go-oms/internal/config"
	"go-oms/internal/leavequota"
	"go-oms/internal/leavereport"
	"go-oms/internal/leaverequest"
	"go-oms/internal/leavetype"
	"go-oms/internal/messaging/kafka"
	"go-oms/internal/middleware"
	"go-oms/internal/rbac"
	"go-oms/internal/rbac/infra"
	"go-oms/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	leaveQuotaRepo := leavequota.NewRepository(gormDB)
	leaveRequestRepo := leaverequest.NewRepository(gormDB)
	leaveReportRepo := leavereport.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db, cfg.Kafka.MaxRetries)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)
	if err := rbacService.LoadPolicy(context.Background()); err != nil {
		return err
	}

	// --- Services ---
	recorder := audit.NewRecorder(auditRepo)
	leaveQuotaService := leavequota.NewService(db, leaveQuotaRepo, leaveTypeRepo, userRepo, recorder, logger)
	leaveTypeService := leavetype.NewService(db, leaveTypeRepo, recorder, leaveQuotaService, rdb, cfg.Leave.TypeCacheTTL, logger)

	restorers := audit.NewRegistry()
	restorers.Register(audit.KindLeaveQuota, leavequota.NewRestorer(leaveQuotaRepo, logger))
	restorers.Register(audit.KindLeaveType, leavetype.NewRestorer(leaveTypeRepo, rdb, logger))
	auditService := audit.NewService(db, auditRepo, restorers, cfg.Leave.AuditListLimit, logger)

	leaveRequestService := leaverequest.NewServiceWithOutbox(
		db,
		leaveRequestRepo,
		leaveQuotaRepo,
		leaveTypeRepo,
		userRepo,
		outboxRepo,
		cfg.Kafka.LeaveTopic,
		logger,
	)
	leaveReportService := leavereport.NewService(leaveReportRepo, logger)

	// --- Handlers ---
	rbacHandler := rbac.NewHandler(rbacService, logger)
	auditHandler := audit.NewHandler(auditService, logger)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService, logger)
	leaveQuotaHandler := leavequota.NewHandler(leaveQuotaService, cfg.Leave.ImportMaxBytes, logger)
	leaveRequestHandler := leaverequest.NewHandler(leaveRequestService, logger)
	leaveReportHandler := leavereport.NewHandler(leaveReportService, logger)

	// --- Routes Registration ---
	authConfig := middleware.AuthConfig{JWTSecret: cfg.Auth.JWTSecret}
	applyLimit := middleware.RateLimitByUser(rate.Limit(cfg.Leave.RateLimitPerSec), cfg.Leave.RateLimitBurst)

	api := router.Group("/api/v1")
	{
		leavetype.RegisterRoutes(api, leaveTypeHandler, rbacService, authConfig)
		leavequota.RegisterRoutes(api, leaveQuotaHandler, rbacService, authConfig, rdb)
		leaverequest.RegisterRoutes(api, leaveRequestHandler, rbacService, authConfig, rdb, applyLimit)
		leavereport.RegisterRoutes(api, leaveReportHandler, rbacService, authConfig)
		audit.RegisterRoutes(api, auditHandler, rbacService, authConfig)
		rbac.RegisterRoutes(api, rbacHandler, authConfig)
	}

	return nil
}
