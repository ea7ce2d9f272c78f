package repositories

import (
	"context"
	"fmt"

	"investa/internal/models"

	"gorm.io/gorm"
)

type MembershipRepository interface {
	Create(ctx context.Context, fee *models.MembershipFee) error
	// LatestForUser returns ErrNotFound when the user never paid.
	LatestForUser(ctx context.Context, userID uint) (*models.MembershipFee, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, fee *models.MembershipFee) error {
	if err := r.db.WithContext(ctx).Create(fee).Error; err != nil {
		return fmt.Errorf("failed to create membership fee: %w", translate(err))
	}
	return nil
}

func (r *membershipRepository) LatestForUser(ctx context.Context, userID uint) (*models.MembershipFee, error) {
	var fee models.MembershipFee
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		First(&fee).Error
	if err != nil {
		return nil, translate(err)
	}
	return &fee, nil
}
