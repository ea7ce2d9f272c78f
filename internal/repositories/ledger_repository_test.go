package repositories

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"investa/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newMockLedger(t *testing.T) (LedgerRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewLedgerRepository(db), mock
}

func TestWithdrawalSchema_OnePendingPerUser(t *testing.T) {
	s, err := schema.Parse(&models.Withdrawal{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	idx := s.LookIndex("idx_withdrawals_one_pending")
	require.NotNil(t, idx)
	assert.Equal(t, "UNIQUE", idx.Class)
	assert.Equal(t, "status = 'pending'", idx.Where)
	require.Len(t, idx.Fields, 1)
	assert.Equal(t, "user_id", idx.Fields[0].DBName)
}

func TestDailyROISchema_OnePerDepositAndDate(t *testing.T) {
	s, err := schema.Parse(&models.DailyROI{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	idx := s.LookIndex("idx_daily_roi_deposit_date")
	require.NotNil(t, idx)
	assert.Equal(t, "UNIQUE", idx.Class)
	require.Len(t, idx.Fields, 2)
	assert.Equal(t, "deposit_id", idx.Fields[0].DBName)
	assert.Equal(t, "date", idx.Fields[1].DBName)
}

func TestLedgerRepository_SumDailyROI(t *testing.T) {
	repo, mock := newMockLedger(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(amount), 0) FROM "daily_rois" WHERE user_id = $1`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("112.50000000"))

	total, err := repo.SumDailyROI(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("112.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_SumReferralFeesEmpty(t *testing.T) {
	repo, mock := newMockLedger(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(fee_amount), 0) FROM "referral_fees" WHERE referrer_id = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("0"))

	total, err := repo.SumReferralFees(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_DepositsAwaitingReferralFee(t *testing.T) {
	repo, mock := newMockLedger(t)

	mock.ExpectQuery(`SELECT \* FROM "deposits" WHERE \(user_id = \$1 AND status = \$2 AND transaction_id IS NOT NULL\) ` +
		`AND NOT EXISTS \(SELECT 1 FROM referral_fees rf WHERE rf.transaction_id = deposits.transaction_id\) ORDER BY id`).
		WithArgs(2, models.StatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "status", "transaction_id"}).
			AddRow(11, 2, "400", models.StatusCompleted, 31))

	deposits, err := repo.DepositsAwaitingReferralFee(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, uint(11), deposits[0].ID)
	require.NotNil(t, deposits[0].TransactionID)
	assert.Equal(t, uint(31), *deposits[0].TransactionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_LockUser(t *testing.T) {
	repo, mock := newMockLedger(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(5, "ada@example.com"))

	user, err := repo.LockUser(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_LockUserNotFound(t *testing.T) {
	repo, mock := newMockLedger(t)

	mock.ExpectQuery(`FROM "users" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.LockUser(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_CreateWithdrawalDuplicatePending(t *testing.T) {
	repo, mock := newMockLedger(t)

	mock.ExpectQuery(`INSERT INTO "withdrawals"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_withdrawals_one_pending"})

	err := repo.CreateWithdrawal(context.Background(), &models.Withdrawal{
		UserID:  1,
		Amount:  decimal.NewFromInt(30),
		Status:  models.StatusPending,
		Network: "TRC20",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
