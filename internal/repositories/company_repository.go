package repositories

import (
	"context"
	"fmt"

	"investa/internal/models"

	"gorm.io/gorm"
)

// InterestRepository stores the configured company interest rates.
type InterestRepository interface {
	List(ctx context.Context) ([]models.CompanyInterest, error)
	Get(ctx context.Context, id uint) (*models.CompanyInterest, error)
	Create(ctx context.Context, ci *models.CompanyInterest) error
	Update(ctx context.Context, ci *models.CompanyInterest) error
	Delete(ctx context.Context, id uint) error
	// FirstActive returns the lowest-id active row of type, or ErrNotFound.
	FirstActive(ctx context.Context, interestType string) (*models.CompanyInterest, error)
}

// CompanyWalletRepository stores the deposit destinations per network.
type CompanyWalletRepository interface {
	List(ctx context.Context, search string, p Page) ([]models.CompanyWallet, int64, error)
	Get(ctx context.Context, id uint) (*models.CompanyWallet, error)
	Create(ctx context.Context, w *models.CompanyWallet) error
	Update(ctx context.Context, w *models.CompanyWallet) error
	Networks(ctx context.Context) ([]string, error)
	FindByNetwork(ctx context.Context, network string) (*models.CompanyWallet, error)
}

type interestRepository struct {
	db *gorm.DB
}

func NewInterestRepository(db *gorm.DB) InterestRepository {
	return &interestRepository{db: db}
}

func (r *interestRepository) List(ctx context.Context) ([]models.CompanyInterest, error) {
	var rows []models.CompanyInterest
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list company interests: %w", err)
	}
	return rows, nil
}

func (r *interestRepository) Get(ctx context.Context, id uint) (*models.CompanyInterest, error) {
	var ci models.CompanyInterest
	if err := r.db.WithContext(ctx).First(&ci, id).Error; err != nil {
		return nil, translate(err)
	}
	return &ci, nil
}

func (r *interestRepository) Create(ctx context.Context, ci *models.CompanyInterest) error {
	if err := r.db.WithContext(ctx).Create(ci).Error; err != nil {
		return fmt.Errorf("failed to create company interest: %w", translate(err))
	}
	return nil
}

func (r *interestRepository) Update(ctx context.Context, ci *models.CompanyInterest) error {
	err := r.db.WithContext(ctx).Model(ci).Select("Type", "Percentage", "Status").Updates(ci).Error
	if err != nil {
		return fmt.Errorf("failed to update company interest %d: %w", ci.ID, translate(err))
	}
	return nil
}

func (r *interestRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CompanyInterest{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete company interest %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *interestRepository) FirstActive(ctx context.Context, interestType string) (*models.CompanyInterest, error) {
	var ci models.CompanyInterest
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ?", interestType, models.InterestActive).
		Order("id").
		First(&ci).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ci, nil
}

type companyWalletRepository struct {
	db *gorm.DB
}

func NewCompanyWalletRepository(db *gorm.DB) CompanyWalletRepository {
	return &companyWalletRepository{db: db}
}

func (r *companyWalletRepository) query(ctx context.Context, search string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.CompanyWallet{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("network ILIKE ? OR address ILIKE ?", like, like)
	}
	return q
}

func (r *companyWalletRepository) List(ctx context.Context, search string, p Page) ([]models.CompanyWallet, int64, error) {
	var total int64
	if err := r.query(ctx, search).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count company wallets: %w", err)
	}
	var rows []models.CompanyWallet
	if err := p.apply(r.query(ctx, search).Order("id")).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list company wallets: %w", err)
	}
	return rows, total, nil
}

func (r *companyWalletRepository) Get(ctx context.Context, id uint) (*models.CompanyWallet, error) {
	var w models.CompanyWallet
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *companyWalletRepository) Create(ctx context.Context, w *models.CompanyWallet) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("failed to create company wallet: %w", translate(err))
	}
	return nil
}

func (r *companyWalletRepository) Update(ctx context.Context, w *models.CompanyWallet) error {
	if err := r.db.WithContext(ctx).Model(w).Select("Network", "Address").Updates(w).Error; err != nil {
		return fmt.Errorf("failed to update company wallet %d: %w", w.ID, translate(err))
	}
	return nil
}

func (r *companyWalletRepository) Networks(ctx context.Context) ([]string, error) {
	var networks []string
	err := r.db.WithContext(ctx).Model(&models.CompanyWallet{}).
		Distinct("network").
		Order("network").
		Pluck("network", &networks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	return networks, nil
}

func (r *companyWalletRepository) FindByNetwork(ctx context.Context, network string) (*models.CompanyWallet, error) {
	var w models.CompanyWallet
	if err := r.db.WithContext(ctx).Where("network = ?", network).Order("id").First(&w).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}
