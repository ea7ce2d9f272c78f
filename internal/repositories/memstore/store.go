// Package memstore is an in-memory implementation of the repository
// interfaces. It enforces the same unique constraints as the database schema
// and is used by service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"investa/internal/models"
	"investa/internal/repositories"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type data struct {
	users         map[uint]models.User
	deposits      map[uint]models.Deposit
	transactions  map[uint]models.Transaction
	withdrawals   map[uint]models.Withdrawal
	rois          map[uint]models.DailyROI
	fees          map[uint]models.ReferralFee
	interests     map[uint]models.CompanyInterest
	wallets       map[uint]models.CompanyWallet
	memberships   map[uint]models.MembershipFee
	notifications map[uint]models.Notification
	recipients    []models.NotificationRecipient
	seq           map[string]uint
}

func newData() *data {
	return &data{
		users:         map[uint]models.User{},
		deposits:      map[uint]models.Deposit{},
		transactions:  map[uint]models.Transaction{},
		withdrawals:   map[uint]models.Withdrawal{},
		rois:          map[uint]models.DailyROI{},
		fees:          map[uint]models.ReferralFee{},
		interests:     map[uint]models.CompanyInterest{},
		wallets:       map[uint]models.CompanyWallet{},
		memberships:   map[uint]models.MembershipFee{},
		notifications: map[uint]models.Notification{},
		seq:           map[string]uint{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *data) clone() *data {
	return &data{
		users:         cloneMap(d.users),
		deposits:      cloneMap(d.deposits),
		transactions:  cloneMap(d.transactions),
		withdrawals:   cloneMap(d.withdrawals),
		rois:          cloneMap(d.rois),
		fees:          cloneMap(d.fees),
		interests:     cloneMap(d.interests),
		wallets:       cloneMap(d.wallets),
		memberships:   cloneMap(d.memberships),
		notifications: cloneMap(d.notifications),
		recipients:    append([]models.NotificationRecipient(nil), d.recipients...),
		seq:           cloneMap(d.seq),
	}
}

func (d *data) next(table string) uint {
	d.seq[table]++
	return d.seq[table]
}

// Store holds every table in memory. The zero value is not usable; call New.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	d    *data

	// Hooks run before the matching insert; a non-nil error aborts it.
	OnCreateDailyROI    func(*models.DailyROI) error
	OnCreateTransaction func(*models.Transaction) error
	OnCreateReferralFee func(*models.ReferralFee) error

	Now func() time.Time
}

func New() *Store {
	return &Store{d: newData(), Now: time.Now}
}

func (s *Store) Ledger() repositories.LedgerRepository {
	return &ledger{s: s}
}

func (s *Store) Users() repositories.UserRepository {
	return &users{s: s}
}

func (s *Store) Interests() repositories.InterestRepository {
	return &interests{s: s}
}

func (s *Store) CompanyWallets() repositories.CompanyWalletRepository {
	return &companyWallets{s: s}
}

func (s *Store) Memberships() repositories.MembershipRepository {
	return &memberships{s: s}
}

func (s *Store) Notifications() repositories.NotificationRepository {
	return &notifications{s: s}
}

func (s *Store) locked(fn func(d *data)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.d)
}

// Seed helpers for tests. They bypass hooks and return the stored row.

func (s *Store) SeedUser(u models.User) models.User {
	s.locked(func(d *data) {
		if u.ID == 0 {
			u.ID = d.next("users")
		} else if u.ID > d.seq["users"] {
			d.seq["users"] = u.ID
		}
		if u.Role == "" {
			u.Role = models.RoleClient
		}
		if u.TokenVersion == 0 {
			u.TokenVersion = 1
		}
		u.CreatedAt = s.Now()
		d.users[u.ID] = u
	})
	return u
}

func (s *Store) SeedDeposit(dep models.Deposit) models.Deposit {
	s.locked(func(d *data) {
		dep.ID = d.next("deposits")
		dep.CreatedAt = s.Now()
		d.deposits[dep.ID] = dep
	})
	return dep
}

func (s *Store) SeedTransaction(t models.Transaction) models.Transaction {
	s.locked(func(d *data) {
		t.ID = d.next("transactions")
		t.CreatedAt = s.Now()
		d.transactions[t.ID] = t
	})
	return t
}

func (s *Store) SeedDailyROI(r models.DailyROI) models.DailyROI {
	s.locked(func(d *data) {
		r.ID = d.next("rois")
		d.rois[r.ID] = r
	})
	return r
}

func (s *Store) SeedReferralFee(f models.ReferralFee) models.ReferralFee {
	s.locked(func(d *data) {
		f.ID = d.next("fees")
		d.fees[f.ID] = f
	})
	return f
}

func (s *Store) SeedInterest(ci models.CompanyInterest) models.CompanyInterest {
	s.locked(func(d *data) {
		ci.ID = d.next("interests")
		d.interests[ci.ID] = ci
	})
	return ci
}

func (s *Store) SeedCompanyWallet(w models.CompanyWallet) models.CompanyWallet {
	s.locked(func(d *data) {
		w.ID = d.next("wallets")
		d.wallets[w.ID] = w
	})
	return w
}

// Snapshot accessors for assertions.

func (s *Store) DailyROIs() []models.DailyROI {
	var out []models.DailyROI
	s.locked(func(d *data) { out = sortedValues(d.rois, func(r models.DailyROI) uint { return r.ID }) })
	return out
}

func (s *Store) ReferralFees() []models.ReferralFee {
	var out []models.ReferralFee
	s.locked(func(d *data) { out = sortedValues(d.fees, func(f models.ReferralFee) uint { return f.ID }) })
	return out
}

func (s *Store) Withdrawals() []models.Withdrawal {
	var out []models.Withdrawal
	s.locked(func(d *data) { out = sortedValues(d.withdrawals, func(w models.Withdrawal) uint { return w.ID }) })
	return out
}

func (s *Store) Transactions() []models.Transaction {
	var out []models.Transaction
	s.locked(func(d *data) { out = sortedValues(d.transactions, func(t models.Transaction) uint { return t.ID }) })
	return out
}

func (s *Store) Deposit(id uint) (models.Deposit, bool) {
	var dep models.Deposit
	var ok bool
	s.locked(func(d *data) { dep, ok = d.deposits[id] })
	return dep, ok
}

func (s *Store) User(id uint) (models.User, bool) {
	var u models.User
	var ok bool
	s.locked(func(d *data) { u, ok = d.users[id] })
	return u, ok
}

func sortedValues[V any](m map[uint]V, id func(V) uint) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

// newestFirst orders by id descending, which matches insertion order reversed.
func newestFirst[V any](m map[uint]V, id func(V) uint, keep func(V) bool) []V {
	out := make([]V, 0)
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) > id(out[j]) })
	return out
}

func paginate[V any](rows []V, p repositories.Page) []V {
	if p.Offset >= len(rows) {
		return []V{}
	}
	rows = rows[p.Offset:]
	if p.Limit > 0 && p.Limit < len(rows) {
		rows = rows[:p.Limit]
	}
	return rows
}

func sameDate(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// matches reports whether the owner or one of refs contains term.
func (d *data) matches(userID uint, term string, refs ...string) bool {
	if term == "" {
		return true
	}
	if u, ok := d.users[userID]; ok {
		if contains(u.FirstName, term) || contains(u.LastName, term) || contains(u.Email, term) {
			return true
		}
	}
	for _, r := range refs {
		if contains(r, term) {
			return true
		}
	}
	return false
}

func (d *data) owner(userID uint) *models.User {
	u, ok := d.users[userID]
	if !ok {
		return nil
	}
	return &u
}

func sum[V any](rows []V, amount func(V) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(amount(r))
	}
	return total
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
