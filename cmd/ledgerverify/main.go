// ledgerverify audits the attendance ledger: it recomputes every entry's
// keyed digest against the configured salt and reports entries whose stored
// hash no longer matches. Exits non-zero when any entry fails, so it can run
// from CI or cron.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/peteywee/fresh-schedules/internal/ledger"
	"github.com/peteywee/fresh-schedules/internal/secrets"
	"github.com/peteywee/fresh-schedules/internal/shared/connection"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	orgID := flag.String("org", "", "verify only this organization's entries")
	pageSize := flag.Int("page-size", 500, "entries fetched per page")
	flag.Parse()

	log := logger.Named("ledgerverify")

	ctx := context.Background()
	saltSource, err := secrets.SaltSource(ctx, os.Getenv("LEDGER_HASH_SALT_SSM_PARAM"))
	if err != nil {
		log.Fatal("resolve salt source failed", zap.Error(err))
	}
	salt, err := saltSource.Resolve(ctx)
	if err != nil {
		log.Fatal("resolve salt failed", zap.Error(err))
	}

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		1,
	)
	if err != nil {
		log.Fatal("connect database failed", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("get sql.DB failed", zap.Error(err))
	}
	defer sqlDB.Close()

	repo := ledger.NewRepository(gormDB, sqlDB)

	var verified, failed int
	for offset := 0; ; offset += *pageSize {
		entries, err := repo.List(ctx, *orgID, *pageSize, offset)
		if err != nil {
			log.Fatal("ledger scan failed", zap.Error(err))
		}
		if len(entries) == 0 {
			break
		}

		for _, e := range entries {
			ok, err := ledger.Verify(e, salt)
			if err != nil {
				log.Fatal("hash recomputation failed",
					zap.String("entry_id", e.ID.String()),
					zap.Error(err),
				)
			}
			if !ok {
				failed++
				log.Error("ledger entry failed verification",
					zap.String("entry_id", e.ID.String()),
					zap.String("shift_id", e.ShiftID.String()),
					zap.String("worker_id", e.WorkerID.String()),
					zap.Time("recorded_at", e.RecordedAt),
				)
				continue
			}
			verified++
		}
	}

	log.Info("ledger verification finished",
		zap.Int("verified", verified),
		zap.Int("failed", failed),
	)
	if failed > 0 {
		os.Exit(1)
	}
}
