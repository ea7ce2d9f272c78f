// Command roi_sweep runs the daily ROI accrual once and exits. It is meant for
// an external cron or a manual catch-up; pass -date to backfill a past
// business day.
package main

import (
	"context"
	"flag"
	"time"

	"investa/internal/config"
	"investa/internal/logger"
	"investa/internal/repositories"
	"investa/internal/repositories/cache"
	"investa/internal/services/interest"
	"investa/internal/services/roi"
	"investa/internal/utils"

	"go.uber.org/zap"
)

func main() {
	date := flag.String("date", "", "business day to accrue (YYYY-MM-DD); defaults to today")
	flag.Parse()

	config.LoadEnv()
	cfg := config.Load()

	log := logger.Must(cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := repositories.InitDB(cfg); err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if repositories.CacheService != nil {
			_ = repositories.CacheService.Close()
		}
	}()

	var locker roi.Locker
	if repositories.CacheService != nil {
		locker = cache.NewLocker(repositories.CacheService.Client())
	}
	engine := roi.NewEngine(
		repositories.NewLedgerRepository(repositories.DB),
		interest.NewService(repositories.NewInterestRepository(repositories.DB)),
		locker,
		roi.Config{Location: cfg.Location()},
		nil,
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	var (
		result *roi.SweepResult
		err    error
	)
	if *date == "" {
		result, err = engine.RunDaily(ctx)
	} else {
		day, perr := utils.ParseDate(*date, cfg.Location())
		if perr != nil {
			log.Fatal("invalid -date", zap.String("date", *date), zap.Error(perr))
		}
		result, err = engine.Generate(ctx, day)
	}
	if err != nil {
		log.Fatal("roi sweep failed", zap.Error(err))
	}

	log.Info("roi sweep finished",
		zap.String("date", utils.Date(result.Date)),
		zap.String("skip_reason", result.SkipReason),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.String("total", utils.Money(result.Total)),
	)
}
