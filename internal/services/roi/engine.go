package roi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"investa/internal/models"
	"investa/internal/repositories"
	"investa/internal/repositories/cache"
	keys "investa/internal/utils/cache"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	defaultLockTTL = 30 * time.Minute
	dateLayout     = "2006-01-02"
)

var hundred = decimal.NewFromInt(100)

type Engine struct {
	ledger  repositories.LedgerRepository
	rates   RateSource
	locker  Locker
	cfg     Config
	metrics MetricsCollector
	logger  *zap.Logger
	now     func() time.Time
}

// NewEngine wires the accrual engine. locker may be nil for single-instance
// deployments.
func NewEngine(
	ledger repositories.LedgerRepository,
	rates RateSource,
	locker Locker,
	cfg Config,
	metrics MetricsCollector,
	logger *zap.Logger,
) *Engine {
	if ledger == nil {
		panic("ledger repository is required")
	}
	if rates == nil {
		panic("rate source is required")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockTTL == 0 {
		cfg.LockTTL = defaultLockTTL
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		ledger:  ledger,
		rates:   rates,
		locker:  locker,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.Named("roi"),
		now:     time.Now,
	}
}

// SetClock overrides the time source.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Today is the current calendar day in the engine location.
func (e *Engine) Today() time.Time {
	return midnight(e.now().In(e.cfg.Location))
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// RunDaily sweeps today's date. Weekends and a missing rate end the run early
// without writes and without an error.
func (e *Engine) RunDaily(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	date := e.Today()
	result := &SweepResult{Date: date, Total: decimal.Zero}

	if isWeekend(date) {
		result.SkipReason = SkipWeekend
		e.logger.Info("skipping roi sweep on weekend", zap.String("date", date.Format(dateLayout)))
		e.metrics.RecordSweep("scheduled", time.Since(start), result)
		return result, nil
	}

	release, err := e.lock(ctx, date)
	if err != nil {
		return nil, err
	}
	defer release()

	rate, found, err := e.rates.ActiveRate(ctx, models.InterestDailyInvestment)
	if err != nil {
		return e.failed("scheduled", start, fmt.Errorf("load daily investment rate: %w", err))
	}
	if !found {
		result.SkipReason = SkipNoActiveRate
		e.logger.Warn("no active daily investment rate, skipping roi sweep", zap.String("date", date.Format(dateLayout)))
		e.metrics.RecordSweep("scheduled", time.Since(start), result)
		return result, nil
	}

	deposits, err := e.ledger.ListCompletedDeposits(ctx)
	if err != nil {
		return e.failed("scheduled", start, fmt.Errorf("load completed deposits: %w", err))
	}

	e.sweep(ctx, date, rate, deposits, result)
	e.metrics.RecordSweep("scheduled", time.Since(start), result)
	return result, nil
}

// Generate runs the sweep for an explicit past or current business day that
// has no entries yet.
func (e *Engine) Generate(ctx context.Context, date time.Time) (*SweepResult, error) {
	start := time.Now()
	date = midnight(date.In(e.cfg.Location))

	if date.After(e.Today()) {
		return nil, ErrFutureDate
	}
	if isWeekend(date) {
		return nil, ErrWeekend
	}

	release, err := e.lock(ctx, date)
	if err != nil {
		return nil, err
	}
	defer release()

	exists, err := e.ledger.AnyDailyROIOn(ctx, date)
	if err != nil {
		return e.failed("manual", start, fmt.Errorf("check roi for %s: %w", date.Format(dateLayout), err))
	}
	if exists {
		return nil, ErrAlreadyGenerated.WithMessage("ROI has already been generated for %s.", date.Format(dateLayout))
	}

	rate, found, err := e.rates.ActiveRate(ctx, models.InterestDailyInvestment)
	if err != nil {
		return e.failed("manual", start, fmt.Errorf("load daily investment rate: %w", err))
	}
	if !found {
		return nil, ErrNoActiveRate
	}

	deposits, err := e.ledger.ListCompletedDeposits(ctx)
	if err != nil {
		return e.failed("manual", start, fmt.Errorf("load completed deposits: %w", err))
	}
	if len(deposits) == 0 {
		return nil, ErrNoCompletedDeposits
	}

	result := &SweepResult{Date: date, Total: decimal.Zero}
	e.sweep(ctx, date, rate, deposits, result)
	e.metrics.RecordSweep("manual", time.Since(start), result)
	return result, nil
}

// failed records a sweep that stopped on an infrastructure error.
func (e *Engine) failed(trigger string, start time.Time, err error) (*SweepResult, error) {
	e.metrics.RecordSweep(trigger, time.Since(start), nil)
	return nil, err
}

// lock takes the per-date sweep lock. Only a lock held elsewhere stops the
// sweep; an unreachable redis is logged and the sweep runs unlocked.
func (e *Engine) lock(ctx context.Context, date time.Time) (func(), error) {
	noop := func() {}
	if e.locker == nil {
		return noop, nil
	}

	key := keys.SweepLockKey(date.Format(dateLayout))
	release, err := e.locker.Acquire(ctx, key, e.cfg.LockTTL)
	if errors.Is(err, cache.ErrLockHeld) {
		return nil, ErrSweepInProgress
	}
	if err != nil {
		e.logger.Warn("sweep lock unavailable, running without it", zap.String("key", key), zap.Error(err))
		return noop, nil
	}

	return func() {
		// the sweep ctx may already be done; release on a fresh one
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := release(rctx); err != nil {
			e.logger.Warn("failed to release sweep lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (e *Engine) sweep(ctx context.Context, date time.Time, rate decimal.Decimal, deposits []models.Deposit, result *SweepResult) {
	result.Rate = rate
	day := date.Format(dateLayout)

	for i := range deposits {
		dep := &deposits[i]
		result.Processed++

		created, amount, err := e.accrue(ctx, dep, date, rate)
		switch {
		case err != nil:
			result.Failed++
			e.metrics.RecordROIEntry(OutcomeFailed, decimal.Zero)
			e.logger.Error("failed to accrue roi",
				zap.Uint("deposit_id", dep.ID),
				zap.Uint("user_id", dep.UserID),
				zap.String("date", day),
				zap.Error(err),
			)
		case created:
			result.Created++
			result.Total = result.Total.Add(amount)
			e.metrics.RecordROIEntry(OutcomeCreated, amount)
		default:
			result.Skipped++
			e.metrics.RecordROIEntry(OutcomeSkipped, decimal.Zero)
		}
	}

	e.logger.Info("roi sweep finished",
		zap.String("date", day),
		zap.String("rate", rate.String()),
		zap.Int("processed", result.Processed),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.String("total", result.Total.StringFixed(2)),
	)
}

// accrue records one deposit's entry. A lost unique-index race reports
// created=false without error.
func (e *Engine) accrue(ctx context.Context, dep *models.Deposit, date time.Time, rate decimal.Decimal) (bool, decimal.Decimal, error) {
	exists, err := e.ledger.DailyROIExists(ctx, dep.ID, date)
	if err != nil {
		return false, decimal.Zero, err
	}
	if exists {
		return false, decimal.Zero, nil
	}

	amount := Accrual(dep.Amount, rate)
	entry := &models.DailyROI{
		UserID:    dep.UserID,
		DepositID: dep.ID,
		Amount:    amount,
		Rate:      rate,
		Date:      datatypes.Date(date),
	}
	if err := e.ledger.CreateDailyROI(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return false, decimal.Zero, nil
		}
		return false, decimal.Zero, err
	}
	return true, amount, nil
}

// Accrual is amount * rate / 100 rounded to the ledger's eight decimals.
func Accrual(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).Round(8)
}
