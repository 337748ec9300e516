package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-oms/internal/audit"
	"go-oms/internal/config"
	"go-oms/internal/leavequota"
	"go-oms/internal/leavetype"
	"go-oms/internal/messaging/kafka/consumer"
	"go-oms/internal/shared/connection"
	"go-oms/internal/user"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer provisions leave quotas for users announced on the user lifecycle
// topic until SIGINT or SIGTERM.
func RunConsumer(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}

	quotaService := leavequota.NewService(
		sqlDB,
		leavequota.NewRepository(gormDB),
		leavetype.NewRepository(gormDB),
		user.NewRepository(gormDB),
		audit.NewRecorder(audit.NewRepository(gormDB)),
		logger,
	)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.UserLifecycleTopic,
		GroupID:        cfg.Kafka.GroupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.ConsumeUserLifecycle(ctx, reader, quotaService, logger, consumer.DefaultRetryPolicy)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("consumer shutting down")
	cancel()
	<-done

	return nil
}
