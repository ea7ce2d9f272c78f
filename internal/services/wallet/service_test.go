package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "investa/internal/errors"
	"investa/internal/models"
	"investa/internal/repositories/memstore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordWithdrawal(event string, amount decimal.Decimal) {
	m.Called(event, amount.StringFixed(2))
}

func (m *MockMetrics) RecordError(operation, errType string) {
	m.Called(operation, errType)
}

var (
	admin  = models.Actor{UserID: 99, Role: models.RoleAdmin}
	member = models.Actor{UserID: 1, Role: models.RoleClient}
	today  = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newFunded returns a store whose member has ROI 100, fees 20 and 50 withdrawn.
func newFunded(t *testing.T) (*memstore.Store, *Service, models.User) {
	t.Helper()
	store := memstore.New()
	user := store.SeedUser(models.User{FirstName: "Ada", Email: "ada@example.com", Promocode: "REF_ADA00001"})
	referred := store.SeedUser(models.User{FirstName: "Bob", Email: "bob@example.com", Promocode: "REF_BOB00001", ReferredBy: &user.ID})

	store.SeedDailyROI(models.DailyROI{UserID: user.ID, DepositID: 1, Amount: d("60"), Rate: d("1.5"), Date: memstore.DateOf(2024, time.March, 1)})
	store.SeedDailyROI(models.DailyROI{UserID: user.ID, DepositID: 1, Amount: d("40"), Rate: d("1.5"), Date: memstore.DateOf(2024, time.March, 4)})
	store.SeedReferralFee(models.ReferralFee{ReferrerID: user.ID, ReferredUserID: referred.ID, TransactionID: 10, DepositAmount: d("400"), FeeAmount: d("20"), Rate: d("5")})
	store.SeedTransaction(models.Transaction{UserID: user.ID, Amount: d("50"), Type: models.TransactionTypeWithdrawal, Status: models.StatusCompleted})
	// neither of these debit the balance
	store.SeedTransaction(models.Transaction{UserID: user.ID, Amount: d("1000"), Type: models.TransactionTypeDeposit, Status: models.StatusCompleted})
	store.SeedTransaction(models.Transaction{UserID: user.ID, Amount: d("30"), Type: models.TransactionTypeWithdrawal, Status: models.StatusFailed})

	svc := NewService(store.Ledger(), WalletConfig{}, nil, zap.NewNop())
	svc.SetClock(func() time.Time { return today })
	return store, svc, user
}

func TestWalletService_Balance(t *testing.T) {
	_, svc, user := newFunded(t)

	b, err := svc.BalanceBreakdown(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", b.ROI.StringFixed(2))
	assert.Equal(t, "20.00", b.ReferralFees.StringFixed(2))
	assert.Equal(t, "50.00", b.Withdrawn.StringFixed(2))
	assert.Equal(t, "70.00", b.Available.StringFixed(2))
}

func TestWalletService_BalanceClampsAtZero(t *testing.T) {
	store := memstore.New()
	user := store.SeedUser(models.User{Email: "c@example.com", Promocode: "REF_C0000001"})
	store.SeedDailyROI(models.DailyROI{UserID: user.ID, DepositID: 1, Amount: d("100"), Date: memstore.DateOf(2024, time.March, 1)})
	store.SeedTransaction(models.Transaction{UserID: user.ID, Amount: d("200"), Type: models.TransactionTypeWithdrawal, Status: models.StatusCompleted})
	svc := NewService(store.Ledger(), WalletConfig{}, nil, nil)

	balance, err := svc.Balance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestWalletService_RequestWithdrawal(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		network string
		wantErr error
		field   string
	}{
		{name: "within balance", amount: "70", network: "TRC20"},
		{name: "exceeds balance", amount: "80", network: "TRC20", wantErr: ErrInsufficientBalance},
		{name: "below minimum", amount: "9.99", network: "TRC20", field: "amount"},
		{name: "missing network", amount: "20", network: " ", field: "network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, svc, user := newFunded(t)

			w, err := svc.RequestWithdrawal(context.Background(), user.ID, d(tt.amount), tt.network)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, store.Withdrawals())
			case tt.field != "":
				ve, ok := apperrors.AsValidation(err)
				require.True(t, ok, "expected validation error, got %v", err)
				assert.Contains(t, ve.Fields, tt.field)
				assert.Empty(t, store.Withdrawals())
			default:
				require.NoError(t, err)
				assert.Equal(t, models.StatusPending, w.Status)
				assert.Regexp(t, `^WDR-[0-9A-F]{12}$`, w.ReferenceNumber)
				assert.Len(t, store.Withdrawals(), 1)
			}
		})
	}
}

func TestWalletService_InsufficientBalanceMessage(t *testing.T) {
	_, svc, user := newFunded(t)

	_, err := svc.RequestWithdrawal(context.Background(), user.ID, d("80"), "TRC20")
	require.Error(t, err)
	assert.Equal(t, "Insufficient balance. Available: 70.00", err.Error())
}

func TestWalletService_SinglePendingWithdrawal(t *testing.T) {
	_, svc, user := newFunded(t)
	ctx := context.Background()

	_, err := svc.RequestWithdrawal(ctx, user.ID, d("10"), "TRC20")
	require.NoError(t, err)

	_, err = svc.RequestWithdrawal(ctx, user.ID, d("10"), "TRC20")
	assert.ErrorIs(t, err, ErrPendingWithdrawalExists)
}

func TestWalletService_ConcurrentRequestsLeaveOnePending(t *testing.T) {
	store, svc, user := newFunded(t)

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RequestWithdrawal(context.Background(), user.ID, d("10"), "TRC20")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrPendingWithdrawalExists):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)

	pending := 0
	for _, w := range store.Withdrawals() {
		if w.UserID == user.ID && w.Status == models.StatusPending {
			pending++
		}
	}
	assert.Equal(t, 1, pending)
}

func TestWalletService_ProcessWithdrawal(t *testing.T) {
	t.Run("completed mirrors a transaction", func(t *testing.T) {
		store, svc, user := newFunded(t)
		ctx := context.Background()
		w, err := svc.RequestWithdrawal(ctx, user.ID, d("30"), "TRC20")
		require.NoError(t, err)

		done, err := svc.ProcessWithdrawal(ctx, admin, w.ID, models.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, done.Status)
		require.NotNil(t, done.TransactionID)
		assert.Equal(t, admin.UserID, *done.ProcessedBy)
		assert.Equal(t, today, *done.ProcessedAt)

		var mirrored *models.Transaction
		for _, txn := range store.Transactions() {
			if txn.ID == *done.TransactionID {
				txn := txn
				mirrored = &txn
			}
		}
		require.NotNil(t, mirrored)
		assert.Equal(t, models.TransactionTypeWithdrawal, mirrored.Type)
		assert.Equal(t, w.ReferenceNumber, mirrored.ReferenceNumber)

		balance, err := svc.Balance(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "40.00", balance.StringFixed(2))

		_, err = svc.ProcessWithdrawal(ctx, admin, w.ID, models.StatusFailed)
		assert.ErrorIs(t, err, ErrWithdrawalProcessed)
	})

	t.Run("failed leaves balance untouched", func(t *testing.T) {
		store, svc, user := newFunded(t)
		ctx := context.Background()
		before := len(store.Transactions())
		w, err := svc.RequestWithdrawal(ctx, user.ID, d("30"), "TRC20")
		require.NoError(t, err)

		done, err := svc.ProcessWithdrawal(ctx, admin, w.ID, models.StatusFailed)
		require.NoError(t, err)
		assert.Nil(t, done.TransactionID)
		assert.Len(t, store.Transactions(), before)

		// a failed request frees the pending slot
		_, err = svc.RequestWithdrawal(ctx, user.ID, d("70"), "TRC20")
		assert.NoError(t, err)
	})

	t.Run("rejects non admin", func(t *testing.T) {
		_, svc, user := newFunded(t)
		w, err := svc.RequestWithdrawal(context.Background(), user.ID, d("30"), "TRC20")
		require.NoError(t, err)

		_, err = svc.ProcessWithdrawal(context.Background(), member, w.ID, models.StatusCompleted)
		assert.ErrorIs(t, err, apperrors.ErrAdminOnly)
	})

	t.Run("rejects unknown status and id", func(t *testing.T) {
		_, svc, _ := newFunded(t)

		_, err := svc.ProcessWithdrawal(context.Background(), admin, 1, models.StatusPending)
		_, ok := apperrors.AsValidation(err)
		assert.True(t, ok)

		_, err = svc.ProcessWithdrawal(context.Background(), admin, 404, models.StatusCompleted)
		assert.ErrorIs(t, err, ErrWithdrawalNotFound)
	})

	t.Run("transaction failure rolls back", func(t *testing.T) {
		store, svc, user := newFunded(t)
		ctx := context.Background()
		w, err := svc.RequestWithdrawal(ctx, user.ID, d("30"), "TRC20")
		require.NoError(t, err)
		before := len(store.Transactions())

		store.OnCreateTransaction = func(*models.Transaction) error { return errors.New("disk full") }
		_, err = svc.ProcessWithdrawal(ctx, admin, w.ID, models.StatusCompleted)
		require.Error(t, err)

		assert.Len(t, store.Transactions(), before)
		ws := store.Withdrawals()
		require.Len(t, ws, 1)
		assert.Equal(t, models.StatusPending, ws[0].Status)
	})
}

func TestWalletService_RecordWithdrawal(t *testing.T) {
	t.Run("completed debits immediately", func(t *testing.T) {
		store, svc, user := newFunded(t)
		ctx := context.Background()

		w, err := svc.RecordWithdrawal(ctx, admin, RecordInput{UserID: user.ID, Amount: d("20"), Network: "ERC20", Status: models.StatusCompleted})
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, w.Status)
		require.NotNil(t, w.TransactionID)
		assert.Len(t, store.Withdrawals(), 1)

		balance, err := svc.Balance(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "50.00", balance.StringFixed(2))
	})

	t.Run("guards apply to pending and completed", func(t *testing.T) {
		_, svc, user := newFunded(t)
		ctx := context.Background()

		_, err := svc.RecordWithdrawal(ctx, admin, RecordInput{UserID: user.ID, Amount: d("500"), Network: "ERC20", Status: models.StatusCompleted})
		assert.ErrorIs(t, err, ErrInsufficientBalance)

		_, err = svc.RecordWithdrawal(ctx, admin, RecordInput{UserID: user.ID, Amount: d("20"), Network: "ERC20", Status: models.StatusPending})
		require.NoError(t, err)

		_, err = svc.RecordWithdrawal(ctx, admin, RecordInput{UserID: user.ID, Amount: d("20"), Network: "ERC20", Status: models.StatusPending})
		assert.ErrorIs(t, err, ErrPendingWithdrawalExists)

		// failed records are history only
		w, err := svc.RecordWithdrawal(ctx, admin, RecordInput{UserID: user.ID, Amount: d("500"), Network: "ERC20", Status: models.StatusFailed})
		require.NoError(t, err)
		assert.Nil(t, w.TransactionID)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, svc, _ := newFunded(t)
		_, err := svc.RecordWithdrawal(context.Background(), admin, RecordInput{UserID: 404, Amount: d("20"), Network: "ERC20", Status: models.StatusFailed})
		ve, ok := apperrors.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "user_id")
	})
}

func TestWalletService_Metrics(t *testing.T) {
	store, _, user := newFunded(t)
	metrics := new(MockMetrics)
	svc := NewService(store.Ledger(), WalletConfig{}, metrics, nil)

	metrics.On("RecordWithdrawal", EventRequested, "30.00").Return().Once()
	metrics.On("RecordWithdrawal", EventRejected, "0.00").Return().Once()
	metrics.On("RecordError", "request_withdrawal", "PENDING_WITHDRAWAL_EXISTS").Return().Once()

	metrics.On("RecordWithdrawal", EventCompleted, "30.00").Return().Once()
	metrics.On("RecordWithdrawal", EventRequested, "10.00").Return().Once()
	metrics.On("RecordWithdrawal", EventFailed, "10.00").Return().Once()
	ctx := context.Background()

	first, err := svc.RequestWithdrawal(ctx, user.ID, d("30"), "TRC20")
	require.NoError(t, err)
	_, err = svc.RequestWithdrawal(ctx, user.ID, d("30"), "TRC20")
	require.Error(t, err)
	_, err = svc.ProcessWithdrawal(ctx, admin, first.ID, models.StatusCompleted)
	require.NoError(t, err)

	second, err := svc.RequestWithdrawal(ctx, user.ID, d("10"), "TRC20")
	require.NoError(t, err)
	_, err = svc.ProcessWithdrawal(ctx, admin, second.ID, models.StatusFailed)
	require.NoError(t, err)

	metrics.AssertExpectations(t)
}

func TestWalletService_PendingTotal(t *testing.T) {
	store, svc, user := newFunded(t)
	other := store.SeedUser(models.User{Email: "eve@example.com", Promocode: "REF_EVE00001"})
	store.SeedDailyROI(models.DailyROI{UserID: other.ID, DepositID: 2, Amount: d("500"), Date: memstore.DateOf(2024, time.March, 1)})
	ctx := context.Background()

	_, err := svc.RequestWithdrawal(ctx, user.ID, d("25.50"), "TRC20")
	require.NoError(t, err)
	_, err = svc.RequestWithdrawal(ctx, other.ID, d("100"), "TRC20")
	require.NoError(t, err)

	total, err := svc.PendingTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "125.50", total.StringFixed(2))
}
