package memstore

import (
	"context"
	"fmt"
	"time"

	"investa/internal/models"
	"investa/internal/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ledger struct {
	s    *Store
	inTx bool
}

// WithTx serializes transactions and restores the pre-transaction state when
// fn fails, which is stricter than row locking but preserves the same outcomes.
func (l *ledger) WithTx(ctx context.Context, fn func(repositories.LedgerRepository) error) error {
	if l.inTx {
		return fn(l)
	}
	if err := ctxErr(ctx); err != nil {
		return err
	}

	l.s.txMu.Lock()
	defer l.s.txMu.Unlock()

	var snapshot *data
	l.s.locked(func(d *data) { snapshot = d.clone() })

	if err := fn(&ledger{s: l.s, inTx: true}); err != nil {
		l.s.locked(func(d *data) { l.s.d = snapshot })
		return err
	}
	return nil
}

func (l *ledger) LockUser(ctx context.Context, userID uint) (*models.User, error) {
	var (
		u  models.User
		ok bool
	)
	l.s.locked(func(d *data) { u, ok = d.users[userID] })
	if !ok {
		return nil, fmt.Errorf("failed to lock user %d: %w", userID, repositories.ErrNotFound)
	}
	return &u, nil
}

// Deposits

func (l *ledger) CreateDeposit(ctx context.Context, dep *models.Deposit) error {
	l.s.locked(func(d *data) {
		dep.ID = d.next("deposits")
		dep.CreatedAt = l.s.Now()
		dep.UpdatedAt = dep.CreatedAt
		stored := *dep
		stored.User = nil
		d.deposits[dep.ID] = stored
	})
	return nil
}

func (l *ledger) getDeposit(id uint) (*models.Deposit, error) {
	var (
		dep models.Deposit
		ok  bool
	)
	l.s.locked(func(d *data) {
		dep, ok = d.deposits[id]
		dep.User = d.owner(dep.UserID)
	})
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &dep, nil
}

func (l *ledger) GetDeposit(ctx context.Context, id uint) (*models.Deposit, error) {
	return l.getDeposit(id)
}

func (l *ledger) GetDepositForUpdate(ctx context.Context, id uint) (*models.Deposit, error) {
	return l.getDeposit(id)
}

func (l *ledger) UpdateDeposit(ctx context.Context, dep *models.Deposit) error {
	var err error
	l.s.locked(func(d *data) {
		stored, ok := d.deposits[dep.ID]
		if !ok {
			err = repositories.ErrNotFound
			return
		}
		stored.Status = dep.Status
		stored.ReferenceNumber = dep.ReferenceNumber
		stored.TransactionID = dep.TransactionID
		stored.UpdatedAt = l.s.Now()
		d.deposits[dep.ID] = stored
	})
	return err
}

func (l *ledger) ListCompletedDeposits(ctx context.Context) ([]models.Deposit, error) {
	var out []models.Deposit
	l.s.locked(func(d *data) {
		for _, dep := range sortedValues(d.deposits, func(x models.Deposit) uint { return x.ID }) {
			if dep.Status == models.StatusCompleted {
				out = append(out, dep)
			}
		}
	})
	return out, nil
}

func (d *data) filterDeposits(f repositories.DepositFilter) []models.Deposit {
	return newestFirst(d.deposits, func(x models.Deposit) uint { return x.ID }, func(x models.Deposit) bool {
		return (f.UserID == 0 || x.UserID == f.UserID) &&
			(f.Status == "" || x.Status == f.Status) &&
			d.matches(x.UserID, f.Search, x.ReferenceNumber, x.Network)
	})
}

func (l *ledger) ListDeposits(ctx context.Context, f repositories.DepositFilter, p repositories.Page) ([]models.Deposit, int64, error) {
	var (
		out   []models.Deposit
		total int64
	)
	l.s.locked(func(d *data) {
		rows := d.filterDeposits(f)
		total = int64(len(rows))
		for _, dep := range paginate(rows, p) {
			dep.User = d.owner(dep.UserID)
			out = append(out, dep)
		}
	})
	return out, total, nil
}

func (l *ledger) SumDeposits(ctx context.Context, f repositories.DepositFilter) (decimal.Decimal, error) {
	var total decimal.Decimal
	l.s.locked(func(d *data) {
		total = sum(d.filterDeposits(f), func(x models.Deposit) decimal.Decimal { return x.Amount })
	})
	return total, nil
}

func (l *ledger) DepositsAwaitingReferralFee(ctx context.Context, userID uint) ([]models.Deposit, error) {
	var out []models.Deposit
	l.s.locked(func(d *data) {
		paid := map[uint]bool{}
		for _, f := range d.fees {
			paid[f.TransactionID] = true
		}
		for _, dep := range sortedValues(d.deposits, func(x models.Deposit) uint { return x.ID }) {
			if dep.UserID == userID && dep.Status == models.StatusCompleted &&
				dep.TransactionID != nil && !paid[*dep.TransactionID] {
				out = append(out, dep)
			}
		}
	})
	return out, nil
}

// Transactions

func (l *ledger) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if l.s.OnCreateTransaction != nil {
		if err := l.s.OnCreateTransaction(t); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
	}
	l.s.locked(func(d *data) {
		t.ID = d.next("transactions")
		t.CreatedAt = l.s.Now()
		t.UpdatedAt = t.CreatedAt
		stored := *t
		stored.User = nil
		d.transactions[t.ID] = stored
	})
	return nil
}

func (l *ledger) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var (
		t  models.Transaction
		ok bool
	)
	l.s.locked(func(d *data) { t, ok = d.transactions[id] })
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (d *data) filterTransactions(f repositories.TransactionFilter) []models.Transaction {
	return newestFirst(d.transactions, func(x models.Transaction) uint { return x.ID }, func(x models.Transaction) bool {
		return (f.UserID == 0 || x.UserID == f.UserID) &&
			(f.Type == "" || x.Type == f.Type) &&
			(f.Status == "" || x.Status == f.Status) &&
			d.matches(x.UserID, f.Search, x.ReferenceNumber, x.Network)
	})
}

func (l *ledger) ListTransactions(ctx context.Context, f repositories.TransactionFilter, p repositories.Page) ([]models.Transaction, int64, error) {
	var (
		out   []models.Transaction
		total int64
	)
	l.s.locked(func(d *data) {
		rows := d.filterTransactions(f)
		total = int64(len(rows))
		for _, t := range paginate(rows, p) {
			t.User = d.owner(t.UserID)
			out = append(out, t)
		}
	})
	return out, total, nil
}

func (l *ledger) SumTransactions(ctx context.Context, f repositories.TransactionFilter) (decimal.Decimal, error) {
	var total decimal.Decimal
	l.s.locked(func(d *data) {
		total = sum(d.filterTransactions(f), func(x models.Transaction) decimal.Decimal { return x.Amount })
	})
	return total, nil
}

// Withdrawals

func (l *ledger) CreateWithdrawal(ctx context.Context, w *models.Withdrawal) error {
	var err error
	l.s.locked(func(d *data) {
		if w.Status == models.StatusPending {
			for _, other := range d.withdrawals {
				if other.UserID == w.UserID && other.Status == models.StatusPending {
					err = fmt.Errorf("failed to create withdrawal: %w", repositories.ErrDuplicate)
					return
				}
			}
		}
		w.ID = d.next("withdrawals")
		w.CreatedAt = l.s.Now()
		w.UpdatedAt = w.CreatedAt
		stored := *w
		stored.User = nil
		d.withdrawals[w.ID] = stored
	})
	return err
}

func (l *ledger) GetWithdrawalForUpdate(ctx context.Context, id uint) (*models.Withdrawal, error) {
	var (
		w  models.Withdrawal
		ok bool
	)
	l.s.locked(func(d *data) { w, ok = d.withdrawals[id] })
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &w, nil
}

func (l *ledger) UpdateWithdrawal(ctx context.Context, w *models.Withdrawal) error {
	var err error
	l.s.locked(func(d *data) {
		stored, ok := d.withdrawals[w.ID]
		if !ok {
			err = repositories.ErrNotFound
			return
		}
		stored.Status = w.Status
		stored.TransactionID = w.TransactionID
		stored.ProcessedBy = w.ProcessedBy
		stored.ProcessedAt = w.ProcessedAt
		stored.UpdatedAt = l.s.Now()
		d.withdrawals[w.ID] = stored
	})
	return err
}

func (l *ledger) FindPendingWithdrawal(ctx context.Context, userID uint) (*models.Withdrawal, error) {
	var found *models.Withdrawal
	l.s.locked(func(d *data) {
		for _, w := range d.withdrawals {
			if w.UserID == userID && w.Status == models.StatusPending {
				w := w
				found = &w
				return
			}
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (d *data) filterWithdrawals(f repositories.WithdrawalFilter) []models.Withdrawal {
	return newestFirst(d.withdrawals, func(x models.Withdrawal) uint { return x.ID }, func(x models.Withdrawal) bool {
		return (f.UserID == 0 || x.UserID == f.UserID) &&
			(f.Status == "" || x.Status == f.Status) &&
			d.matches(x.UserID, f.Search, x.ReferenceNumber, x.Network)
	})
}

func (l *ledger) ListWithdrawals(ctx context.Context, f repositories.WithdrawalFilter, p repositories.Page) ([]models.Withdrawal, int64, error) {
	var (
		out   []models.Withdrawal
		total int64
	)
	l.s.locked(func(d *data) {
		rows := d.filterWithdrawals(f)
		total = int64(len(rows))
		for _, w := range paginate(rows, p) {
			w.User = d.owner(w.UserID)
			out = append(out, w)
		}
	})
	return out, total, nil
}

func (l *ledger) SumWithdrawals(ctx context.Context, f repositories.WithdrawalFilter) (decimal.Decimal, error) {
	var total decimal.Decimal
	l.s.locked(func(d *data) {
		total = sum(d.filterWithdrawals(f), func(x models.Withdrawal) decimal.Decimal { return x.Amount })
	})
	return total, nil
}

// Daily ROI

func (l *ledger) DailyROIExists(ctx context.Context, depositID uint, date time.Time) (bool, error) {
	var found bool
	l.s.locked(func(d *data) {
		for _, r := range d.rois {
			if r.DepositID == depositID && sameDate(time.Time(r.Date), date) {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (l *ledger) AnyDailyROIOn(ctx context.Context, date time.Time) (bool, error) {
	var found bool
	l.s.locked(func(d *data) {
		for _, r := range d.rois {
			if sameDate(time.Time(r.Date), date) {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (l *ledger) CreateDailyROI(ctx context.Context, roi *models.DailyROI) error {
	if l.s.OnCreateDailyROI != nil {
		if err := l.s.OnCreateDailyROI(roi); err != nil {
			return fmt.Errorf("failed to create daily roi: %w", err)
		}
	}
	var err error
	l.s.locked(func(d *data) {
		for _, r := range d.rois {
			if r.DepositID == roi.DepositID && sameDate(time.Time(r.Date), time.Time(roi.Date)) {
				err = fmt.Errorf("failed to create daily roi: %w", repositories.ErrDuplicate)
				return
			}
		}
		roi.ID = d.next("rois")
		roi.CreatedAt = l.s.Now()
		roi.UpdatedAt = roi.CreatedAt
		stored := *roi
		stored.User, stored.Deposit = nil, nil
		d.rois[roi.ID] = stored
	})
	return err
}

func (l *ledger) SumDailyROI(ctx context.Context, userID uint) (decimal.Decimal, error) {
	total := decimal.Zero
	l.s.locked(func(d *data) {
		for _, r := range d.rois {
			if r.UserID == userID {
				total = total.Add(r.Amount)
			}
		}
	})
	return total, nil
}

func (l *ledger) ListDailyROIs(ctx context.Context, f repositories.ROIFilter, p repositories.Page) ([]models.DailyROI, int64, error) {
	var (
		out   []models.DailyROI
		total int64
	)
	l.s.locked(func(d *data) {
		rows := newestFirst(d.rois, func(x models.DailyROI) uint { return x.ID }, func(x models.DailyROI) bool {
			return (f.UserID == 0 || x.UserID == f.UserID) && d.matches(x.UserID, f.Search)
		})
		total = int64(len(rows))
		for _, r := range paginate(rows, p) {
			r.User = d.owner(r.UserID)
			if dep, ok := d.deposits[r.DepositID]; ok {
				r.Deposit = &dep
			}
			out = append(out, r)
		}
	})
	return out, total, nil
}

// Referral fees

func (l *ledger) ReferralFeeExists(ctx context.Context, transactionID uint) (bool, error) {
	var found bool
	l.s.locked(func(d *data) {
		for _, f := range d.fees {
			if f.TransactionID == transactionID {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (l *ledger) CreateReferralFee(ctx context.Context, fee *models.ReferralFee) error {
	if l.s.OnCreateReferralFee != nil {
		if err := l.s.OnCreateReferralFee(fee); err != nil {
			return fmt.Errorf("failed to create referral fee: %w", err)
		}
	}
	var err error
	l.s.locked(func(d *data) {
		for _, f := range d.fees {
			if f.TransactionID == fee.TransactionID {
				err = fmt.Errorf("failed to create referral fee: %w", repositories.ErrDuplicate)
				return
			}
		}
		fee.ID = d.next("fees")
		fee.CreatedAt = l.s.Now()
		fee.UpdatedAt = fee.CreatedAt
		d.fees[fee.ID] = *fee
	})
	return err
}

func (l *ledger) SumReferralFees(ctx context.Context, referrerID uint) (decimal.Decimal, error) {
	total := decimal.Zero
	l.s.locked(func(d *data) {
		for _, f := range d.fees {
			if f.ReferrerID == referrerID {
				total = total.Add(f.FeeAmount)
			}
		}
	})
	return total, nil
}

func (l *ledger) ListReferralFees(ctx context.Context, referrerID uint) ([]models.ReferralFee, error) {
	var out []models.ReferralFee
	l.s.locked(func(d *data) {
		for _, f := range sortedValues(d.fees, func(x models.ReferralFee) uint { return x.ID }) {
			if f.ReferrerID == referrerID {
				out = append(out, f)
			}
		}
	})
	return out, nil
}

// DateOf is a convenience for building datatypes.Date values in tests.
func DateOf(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}
