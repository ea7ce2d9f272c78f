package roi

import (
	"context"
	"errors"
	"testing"
	"time"

	"investa/internal/models"
	"investa/internal/repositories/cache"
	"investa/internal/repositories/memstore"
	"investa/internal/services/interest"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	monday   = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	saturday = time.Date(2024, time.March, 9, 9, 0, 0, 0, time.UTC)
)

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordROIEntry(outcome string, amount decimal.Decimal) {
	m.Called(outcome, amount.String())
}

func (m *MockMetrics) RecordSweep(trigger string, d time.Duration, r *SweepResult) {
	if r == nil {
		m.Called(trigger, -1)
		return
	}
	m.Called(trigger, r.Created)
}

type failingRates struct{}

func (failingRates) ActiveRate(context.Context, string) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, errors.New("database is down")
}

type fixture struct {
	store  *memstore.Store
	engine *Engine
	user   models.User
}

func newFixture(t *testing.T, now time.Time, rate string) *fixture {
	t.Helper()
	store := memstore.New()
	if rate != "" {
		store.SeedInterest(models.CompanyInterest{
			Type:       models.InterestDailyInvestment,
			Percentage: decimal.RequireFromString(rate),
			Status:     models.InterestActive,
		})
	}
	engine := NewEngine(store.Ledger(), interest.NewService(store.Interests()), nil, Config{}, nil, zap.NewNop())
	engine.SetClock(func() time.Time { return now })

	user := store.SeedUser(models.User{FirstName: "Ada", Email: "ada@example.com", Promocode: "REF_ADA00001"})
	return &fixture{store: store, engine: engine, user: user}
}

func (f *fixture) deposit(amount, status string) models.Deposit {
	return f.store.SeedDeposit(models.Deposit{
		UserID:  f.user.ID,
		Amount:  decimal.RequireFromString(amount),
		Status:  status,
		Network: "TRC20",
	})
}

func TestEngine_RunDaily_AccruesOncePerDay(t *testing.T) {
	f := newFixture(t, monday, "1.5")
	dep := f.deposit("1000.00", models.StatusCompleted)
	f.deposit("500.00", models.StatusPending)
	f.deposit("700.00", models.StatusFailed)
	ctx := context.Background()

	result, err := f.engine.RunDaily(ctx)
	require.NoError(t, err)
	assert.True(t, result.Ran())
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, "15.00", result.Total.StringFixed(2))

	rois := f.store.DailyROIs()
	require.Len(t, rois, 1)
	assert.Equal(t, dep.ID, rois[0].DepositID)
	assert.Equal(t, f.user.ID, rois[0].UserID)
	assert.Equal(t, "15.00", rois[0].Amount.StringFixed(2))
	assert.Equal(t, "2024-03-04", time.Time(rois[0].Date).Format("2006-01-02"))

	again, err := f.engine.RunDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 1, again.Skipped)
	assert.Len(t, f.store.DailyROIs(), 1)
}

func TestEngine_RunDaily_Weekend(t *testing.T) {
	f := newFixture(t, saturday, "1.5")
	f.deposit("1000.00", models.StatusCompleted)

	metrics := new(MockMetrics)
	metrics.On("RecordSweep", "scheduled", 0).Return()
	f.engine.metrics = metrics

	result, err := f.engine.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SkipWeekend, result.SkipReason)
	assert.Zero(t, result.Processed)
	assert.Empty(t, f.store.DailyROIs())
	metrics.AssertExpectations(t)
	metrics.AssertNotCalled(t, "RecordROIEntry", mock.Anything, mock.Anything)
}

func TestEngine_RunDaily_WeekendInConfiguredZone(t *testing.T) {
	// Friday 23:30 UTC is already Saturday in UTC+9.
	now := time.Date(2024, time.March, 8, 23, 30, 0, 0, time.UTC)
	f := newFixture(t, now, "1.5")
	f.engine.cfg.Location = time.FixedZone("UTC+9", 9*3600)
	f.deposit("1000.00", models.StatusCompleted)

	result, err := f.engine.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SkipWeekend, result.SkipReason)
	assert.Empty(t, f.store.DailyROIs())
}

func TestEngine_RunDaily_NoActiveRate(t *testing.T) {
	f := newFixture(t, monday, "")
	f.deposit("1000.00", models.StatusCompleted)

	result, err := f.engine.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SkipNoActiveRate, result.SkipReason)
	assert.Empty(t, f.store.DailyROIs())
}

func TestEngine_RunDaily_FailureDoesNotAbortSweep(t *testing.T) {
	f := newFixture(t, monday, "2")
	bad := f.deposit("100.00", models.StatusCompleted)
	f.deposit("250.00", models.StatusCompleted)

	f.store.OnCreateDailyROI = func(r *models.DailyROI) error {
		if r.DepositID == bad.ID {
			return errors.New("connection reset")
		}
		return nil
	}

	metrics := new(MockMetrics)
	metrics.On("RecordROIEntry", OutcomeFailed, "0").Return().Once()
	metrics.On("RecordROIEntry", OutcomeCreated, "5").Return().Once()
	metrics.On("RecordSweep", "scheduled", 1).Return()
	f.engine.metrics = metrics

	result, err := f.engine.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, "5.00", result.Total.StringFixed(2))
	metrics.AssertExpectations(t)

	// the next run repairs the gap
	f.store.OnCreateDailyROI = nil
	repair := new(MockMetrics)
	repair.On("RecordROIEntry", OutcomeCreated, "2").Return().Once()
	repair.On("RecordROIEntry", OutcomeSkipped, "0").Return().Once()
	repair.On("RecordSweep", "scheduled", 1).Return().Once()
	f.engine.metrics = repair

	result, err = f.engine.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, f.store.DailyROIs(), 2)
	repair.AssertExpectations(t)
}

func TestEngine_RunDaily_RecordsFailedSweep(t *testing.T) {
	f := newFixture(t, monday, "1.5")
	f.deposit("1000.00", models.StatusCompleted)
	f.engine.rates = failingRates{}

	metrics := new(MockMetrics)
	metrics.On("RecordSweep", "scheduled", -1).Return().Once()
	f.engine.metrics = metrics

	result, err := f.engine.RunDaily(context.Background())
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, f.store.DailyROIs())
	metrics.AssertExpectations(t)
}

func TestEngine_RunDaily_LostRaceCountsAsSkipped(t *testing.T) {
	f := newFixture(t, monday, "1")
	dep := f.deposit("100.00", models.StatusCompleted)

	f.store.OnCreateDailyROI = func(r *models.DailyROI) error {
		f.store.SeedDailyROI(models.DailyROI{UserID: r.UserID, DepositID: r.DepositID, Amount: r.Amount, Rate: r.Rate, Date: r.Date})
		return nil
	}

	result, err := f.engine.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, result.Skipped)

	rois := f.store.DailyROIs()
	require.Len(t, rois, 1)
	assert.Equal(t, dep.ID, rois[0].DepositID)
}

func TestEngine_RunDaily_LockHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := newFixture(t, monday, "1.5")
	f.deposit("1000.00", models.StatusCompleted)
	f.engine.locker = cache.NewLocker(client)

	require.NoError(t, mr.Set("roi:sweep:2024-03-04", "other-replica"))
	_, err := f.engine.RunDaily(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)
	assert.Empty(t, f.store.DailyROIs())

	mr.Del("roi:sweep:2024-03-04")
	result, err := f.engine.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.False(t, mr.Exists("roi:sweep:2024-03-04"))
}

func TestEngine_RunDaily_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	f := newFixture(t, monday, "1.5")
	f.deposit("1000.00", models.StatusCompleted)
	f.engine.locker = cache.NewLocker(client)

	result, err := f.engine.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, "15.00", result.Total.StringFixed(2))
	assert.Len(t, f.store.DailyROIs(), 1)
}

func TestEngine_Generate(t *testing.T) {
	friday := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("future date", func(t *testing.T) {
		f := newFixture(t, monday, "1.5")
		_, err := f.engine.Generate(context.Background(), monday.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, ErrFutureDate)
	})

	t.Run("weekend", func(t *testing.T) {
		f := newFixture(t, monday, "1.5")
		_, err := f.engine.Generate(context.Background(), time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, ErrWeekend)
	})

	t.Run("no rate", func(t *testing.T) {
		f := newFixture(t, monday, "")
		f.deposit("1000.00", models.StatusCompleted)
		_, err := f.engine.Generate(context.Background(), friday)
		assert.ErrorIs(t, err, ErrNoActiveRate)
	})

	t.Run("no completed deposits", func(t *testing.T) {
		f := newFixture(t, monday, "1.5")
		f.deposit("1000.00", models.StatusPending)
		_, err := f.engine.Generate(context.Background(), friday)
		assert.ErrorIs(t, err, ErrNoCompletedDeposits)
	})

	t.Run("backfill then reject", func(t *testing.T) {
		f := newFixture(t, monday, "1.5")
		f.deposit("1000.00", models.StatusCompleted)
		f.deposit("200.00", models.StatusCompleted)

		result, err := f.engine.Generate(context.Background(), friday)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Created)
		assert.Equal(t, "18.00", result.Total.StringFixed(2))

		_, err = f.engine.Generate(context.Background(), friday)
		assert.ErrorIs(t, err, ErrAlreadyGenerated)
		assert.Contains(t, err.Error(), "2024-03-01")
		assert.Len(t, f.store.DailyROIs(), 2)
	})
}

func TestAccrual(t *testing.T) {
	tests := []struct {
		amount string
		rate   string
		want   string
	}{
		{"1000", "1.5", "15"},
		{"250.50", "2", "5.01"},
		{"0.01", "0.5", "0.00005"},
		{"1", "0.000000001", "0"},
	}
	for _, tt := range tests {
		got := Accrual(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.rate))
		assert.Equal(t, tt.want, got.String(), "%s at %s%%", tt.amount, tt.rate)
	}
}
