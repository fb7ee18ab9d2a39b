package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/peteywee/fresh-schedules/internal/alert"
	"github.com/peteywee/fresh-schedules/internal/bootstrap"
	"github.com/peteywee/fresh-schedules/internal/ledger"
	"github.com/peteywee/fresh-schedules/internal/messaging/kafka"
	"github.com/peteywee/fresh-schedules/internal/messaging/kafka/producer"
	"github.com/peteywee/fresh-schedules/internal/reconcile"
	"github.com/peteywee/fresh-schedules/internal/secrets"
	"github.com/peteywee/fresh-schedules/internal/shared/config"
	"github.com/peteywee/fresh-schedules/internal/shared/connection"
	"github.com/peteywee/fresh-schedules/internal/shift"
	"github.com/peteywee/fresh-schedules/internal/timesheet"
)

func RunWorker() error {
	logger := zap.L().Named("app.worker")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DB.Host,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Name,
		cfg.DB.Port,
		cfg.DB.SSLMode,
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	saltSource, err := secrets.SaltSource(ctx, cfg.SaltSSMParam)
	if err != nil {
		return err
	}

	shiftSvc := shift.NewService(shift.NewRepository(gormDB), rdb)
	timesheetRepo := timesheet.NewRepository(gormDB, sqlDB)
	ledgerRepo := ledger.NewRepository(gormDB, sqlDB)
	alertRepo := alert.NewRepository(sqlDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	committer := reconcile.NewCommitter(
		sqlDB, timesheetRepo, ledgerRepo, alertRepo, outboxRepo, cfg.BatchMaxOps,
	)
	worker := reconcile.NewWorker(
		timesheetRepo, shiftSvc, committer, saltSource,
		reconcile.Config{
			GraceMinutes:   cfg.GraceMinutes,
			PageSize:       cfg.PageSize,
			OrganizationID: cfg.OrganizationID,
		},
		nil,
	)

	auditLogger := bootstrap.NewStdoutAuditLogger()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)
	go runReconcileLoop(ctx, worker, auditLogger, cfg.Interval, logger)

	server := bootstrap.StartHTTPServer(
		bootstrap.NewRouter(worker),
		bootstrap.ServerConfig{
			Port:         cfg.HTTPPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("worker shutting down", zap.String("signal", sig.String()))
	cancel()
	bootstrap.ShutdownHTTPServer(server, auditLogger, sig.String())

	return nil
}

// runReconcileLoop runs one pass immediately and then on every tick. A run
// that fails mid-way keeps its committed groups; the next tick retries the
// remainder, so there is no catch-up state to carry here.
func runReconcileLoop(
	ctx context.Context,
	worker *reconcile.Worker,
	auditLogger bootstrap.AuditLogger,
	interval time.Duration,
	logger *zap.Logger,
) {
	log := logger.Named("reconcile.loop")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("reconcile loop started", zap.Duration("interval", interval))

	runOnce := func() {
		report, err := worker.Run(ctx)
		if err != nil {
			log.Error("reconciliation run failed",
				zap.Error(err),
				zap.Int("closed_before_failure", report.Closed),
			)
		}
		if report.Closed > 0 {
			auditLogger.Log(ctx, bootstrap.AuditLog{
				Action:  "AUTO_CLOCKOUT_RUN",
				Message: "reconciliation run closed open timesheets",
				Meta: map[string]any{
					"scanned": report.Scanned,
					"skipped": report.Skipped,
					"closed":  report.Closed,
				},
			})
		}
	}

	runOnce()
	for {
		select {
		case <-ctx.Done():
			log.Info("reconcile loop stopped")
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
