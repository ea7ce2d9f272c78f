package memstore

import (
	"context"
	"sort"
	"time"

	"investa/internal/models"
	"investa/internal/repositories"
)

type users struct{ s *Store }

func (u *users) Create(ctx context.Context, user *models.User) error {
	var err error
	u.s.locked(func(d *data) {
		for _, other := range d.users {
			if other.Email == user.Email || other.Promocode == user.Promocode {
				err = repositories.ErrDuplicate
				return
			}
		}
		user.ID = d.next("users")
		user.CreatedAt = u.s.Now()
		user.UpdatedAt = user.CreatedAt
		if user.TokenVersion == 0 {
			user.TokenVersion = 1
		}
		d.users[user.ID] = *user
	})
	return err
}

func (u *users) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return u.find(func(x models.User) bool { return x.ID == id })
}

func (u *users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.find(func(x models.User) bool { return x.Email == email })
}

func (u *users) GetByPromocode(ctx context.Context, code string) (*models.User, error) {
	return u.find(func(x models.User) bool { return x.Promocode == code })
}

func (u *users) find(match func(models.User) bool) (*models.User, error) {
	var found *models.User
	u.s.locked(func(d *data) {
		for _, x := range d.users {
			if match(x) {
				x := x
				found = &x
				return
			}
		}
	})
	if found == nil {
		return nil, repositories.ErrUserNotFound
	}
	return found, nil
}

func (u *users) mutate(userID uint, fn func(*models.User)) error {
	var err error
	u.s.locked(func(d *data) {
		x, ok := d.users[userID]
		if !ok {
			err = repositories.ErrUserNotFound
			return
		}
		fn(&x)
		x.UpdatedAt = u.s.Now()
		d.users[userID] = x
	})
	return err
}

func (u *users) Update(ctx context.Context, user *models.User) error {
	return u.mutate(user.ID, func(x *models.User) {
		x.FirstName = user.FirstName
		x.LastName = user.LastName
		x.PhoneNumber = user.PhoneNumber
		x.Network = user.Network
		x.NetworkAddress = user.NetworkAddress
	})
}

func (u *users) IncrementTokenVersion(ctx context.Context, userID uint) error {
	return u.mutate(userID, func(x *models.User) { x.TokenVersion++ })
}

func (u *users) UpdatePassword(ctx context.Context, userID uint, hashedPassword string) error {
	return u.mutate(userID, func(x *models.User) { x.Password = hashedPassword })
}

func (u *users) MarkMembershipPaid(ctx context.Context, userID uint) error {
	return u.mutate(userID, func(x *models.User) { x.MembershipFeePaid = true })
}

func (u *users) ListIDsByRole(ctx context.Context, role string) ([]uint, error) {
	var ids []uint
	u.s.locked(func(d *data) {
		for id, x := range d.users {
			if x.Role == role {
				ids = append(ids, id)
			}
		}
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (u *users) ListReferred(ctx context.Context, referrerID uint) ([]models.User, error) {
	var out []models.User
	u.s.locked(func(d *data) {
		for _, x := range sortedValues(d.users, func(x models.User) uint { return x.ID }) {
			if x.ReferredBy != nil && *x.ReferredBy == referrerID {
				out = append(out, x)
			}
		}
	})
	return out, nil
}

func (u *users) CountByRole(ctx context.Context, role string) (int64, error) {
	ids, _ := u.ListIDsByRole(ctx, role)
	return int64(len(ids)), nil
}

type interests struct{ s *Store }

func (r *interests) List(ctx context.Context) ([]models.CompanyInterest, error) {
	var out []models.CompanyInterest
	r.s.locked(func(d *data) {
		out = sortedValues(d.interests, func(x models.CompanyInterest) uint { return x.ID })
	})
	return out, nil
}

func (r *interests) Get(ctx context.Context, id uint) (*models.CompanyInterest, error) {
	var (
		ci models.CompanyInterest
		ok bool
	)
	r.s.locked(func(d *data) { ci, ok = d.interests[id] })
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &ci, nil
}

func (r *interests) typeTaken(d *data, ci *models.CompanyInterest) bool {
	for _, other := range d.interests {
		if other.Type == ci.Type && other.ID != ci.ID {
			return true
		}
	}
	return false
}

func (r *interests) Create(ctx context.Context, ci *models.CompanyInterest) error {
	var err error
	r.s.locked(func(d *data) {
		if r.typeTaken(d, ci) {
			err = repositories.ErrDuplicate
			return
		}
		ci.ID = d.next("interests")
		ci.CreatedAt = r.s.Now()
		ci.UpdatedAt = ci.CreatedAt
		d.interests[ci.ID] = *ci
	})
	return err
}

func (r *interests) Update(ctx context.Context, ci *models.CompanyInterest) error {
	var err error
	r.s.locked(func(d *data) {
		if _, ok := d.interests[ci.ID]; !ok {
			err = repositories.ErrNotFound
			return
		}
		if r.typeTaken(d, ci) {
			err = repositories.ErrDuplicate
			return
		}
		ci.UpdatedAt = r.s.Now()
		d.interests[ci.ID] = *ci
	})
	return err
}

func (r *interests) Delete(ctx context.Context, id uint) error {
	var err error
	r.s.locked(func(d *data) {
		if _, ok := d.interests[id]; !ok {
			err = repositories.ErrNotFound
			return
		}
		delete(d.interests, id)
	})
	return err
}

func (r *interests) FirstActive(ctx context.Context, interestType string) (*models.CompanyInterest, error) {
	var found *models.CompanyInterest
	r.s.locked(func(d *data) {
		for _, ci := range sortedValues(d.interests, func(x models.CompanyInterest) uint { return x.ID }) {
			if ci.Type == interestType && ci.IsActive() {
				ci := ci
				found = &ci
				return
			}
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

type companyWallets struct{ s *Store }

func (r *companyWallets) List(ctx context.Context, search string, p repositories.Page) ([]models.CompanyWallet, int64, error) {
	var (
		out   []models.CompanyWallet
		total int64
	)
	r.s.locked(func(d *data) {
		var rows []models.CompanyWallet
		for _, w := range sortedValues(d.wallets, func(x models.CompanyWallet) uint { return x.ID }) {
			if search == "" || contains(w.Network, search) || contains(w.Address, search) {
				rows = append(rows, w)
			}
		}
		total = int64(len(rows))
		out = paginate(rows, p)
	})
	return out, total, nil
}

func (r *companyWallets) Get(ctx context.Context, id uint) (*models.CompanyWallet, error) {
	var (
		w  models.CompanyWallet
		ok bool
	)
	r.s.locked(func(d *data) { w, ok = d.wallets[id] })
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &w, nil
}

func (r *companyWallets) Create(ctx context.Context, w *models.CompanyWallet) error {
	r.s.locked(func(d *data) {
		w.ID = d.next("wallets")
		w.CreatedAt = r.s.Now()
		w.UpdatedAt = w.CreatedAt
		d.wallets[w.ID] = *w
	})
	return nil
}

func (r *companyWallets) Update(ctx context.Context, w *models.CompanyWallet) error {
	var err error
	r.s.locked(func(d *data) {
		if _, ok := d.wallets[w.ID]; !ok {
			err = repositories.ErrNotFound
			return
		}
		w.UpdatedAt = r.s.Now()
		d.wallets[w.ID] = *w
	})
	return err
}

func (r *companyWallets) Networks(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	r.s.locked(func(d *data) {
		for _, w := range d.wallets {
			if !seen[w.Network] {
				seen[w.Network] = true
				out = append(out, w.Network)
			}
		}
	})
	sort.Strings(out)
	return out, nil
}

func (r *companyWallets) FindByNetwork(ctx context.Context, network string) (*models.CompanyWallet, error) {
	var found *models.CompanyWallet
	r.s.locked(func(d *data) {
		for _, w := range sortedValues(d.wallets, func(x models.CompanyWallet) uint { return x.ID }) {
			if w.Network == network {
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

type memberships struct{ s *Store }

func (r *memberships) Create(ctx context.Context, fee *models.MembershipFee) error {
	r.s.locked(func(d *data) {
		fee.ID = d.next("memberships")
		fee.CreatedAt = r.s.Now()
		fee.UpdatedAt = fee.CreatedAt
		d.memberships[fee.ID] = *fee
	})
	return nil
}

func (r *memberships) LatestForUser(ctx context.Context, userID uint) (*models.MembershipFee, error) {
	var found *models.MembershipFee
	r.s.locked(func(d *data) {
		for _, f := range d.memberships {
			if f.UserID == userID && (found == nil || f.ID > found.ID) {
				f := f
				found = &f
			}
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

type notifications struct{ s *Store }

func (r *notifications) CreateWithRecipients(ctx context.Context, n *models.Notification, userIDs []uint) error {
	r.s.locked(func(d *data) {
		n.ID = d.next("notifications")
		n.CreatedAt = r.s.Now()
		n.UpdatedAt = n.CreatedAt
		stored := *n
		stored.Sender = nil
		d.notifications[n.ID] = stored
		for _, id := range userIDs {
			d.recipients = append(d.recipients, models.NotificationRecipient{
				NotificationID: n.ID,
				UserID:         id,
				CreatedAt:      n.CreatedAt,
				UpdatedAt:      n.CreatedAt,
			})
		}
	})
	return nil
}

func (d *data) hydrate(row models.NotificationRecipient) models.NotificationRecipient {
	if n, ok := d.notifications[row.NotificationID]; ok {
		n.Sender = d.owner(n.SenderID)
		row.Notification = &n
	}
	return row
}

func (r *notifications) ListForUser(ctx context.Context, userID uint, p repositories.Page) ([]models.NotificationRecipient, int64, error) {
	var (
		out   []models.NotificationRecipient
		total int64
	)
	r.s.locked(func(d *data) {
		var rows []models.NotificationRecipient
		for _, row := range d.recipients {
			if row.UserID == userID {
				rows = append(rows, row)
			}
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].NotificationID > rows[j].NotificationID })
		total = int64(len(rows))
		for _, row := range paginate(rows, p) {
			out = append(out, d.hydrate(row))
		}
	})
	return out, total, nil
}

func (r *notifications) GetForUser(ctx context.Context, userID, notificationID uint) (*models.NotificationRecipient, error) {
	var found *models.NotificationRecipient
	r.s.locked(func(d *data) {
		for _, row := range d.recipients {
			if row.UserID == userID && row.NotificationID == notificationID {
				row = d.hydrate(row)
				found = &row
				return
			}
		}
	})
	if found == nil {
		return nil, repositories.ErrNotFound
	}
	return found, nil
}

func (r *notifications) MarkRead(ctx context.Context, userID, notificationID uint, at time.Time) error {
	r.s.locked(func(d *data) {
		for i, row := range d.recipients {
			if row.UserID == userID && row.NotificationID == notificationID && !row.IsRead {
				d.recipients[i].IsRead = true
				d.recipients[i].ReadAt = &at
			}
		}
	})
	return nil
}

func (r *notifications) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	r.s.locked(func(d *data) {
		for _, row := range d.recipients {
			if row.UserID == userID && !row.IsRead {
				count++
			}
		}
	})
	return count, nil
}
