package repositories

import (
	"context"
	"errors"

	"investa/internal/models"
	"investa/internal/repositories/cache"
	keys "investa/internal/utils/cache"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type userRepository struct {
	db     *gorm.DB
	cache  *cache.CacheService
	logger *zap.Logger
}

// NewUserRepository creates a new instance of UserRepository. cache may be nil.
func NewUserRepository(db *gorm.DB, cache *cache.CacheService, logger *zap.Logger) UserRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userRepository{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return ErrDatabaseOperation
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if r.cache != nil {
		key := keys.GenerateKey(keys.EntityUser, keys.KeyID, id)
		if user, err := r.cache.GetUser(ctx, key); err == nil {
			return user, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Warn("user cache read failed", zap.Uint("user_id", id), zap.Error(err))
		}
	}

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	r.remember(ctx, &user)
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) GetByPromocode(ctx context.Context, code string) (*models.User, error) {
	return r.findOne(ctx, "promocode = ?", code)
}

func (r *userRepository) findOne(ctx context.Context, cond string, arg interface{}) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where(cond, arg).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrDatabaseOperation
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(user).
		Select("FirstName", "LastName", "PhoneNumber", "Network", "NetworkAddress").
		Updates(user)
	if result.Error != nil {
		return ErrDatabaseOperation
	}
	r.forget(ctx, user.ID)
	return nil
}

func (r *userRepository) updateColumn(ctx context.Context, userID uint, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update(column, value)
	if result.Error != nil {
		return ErrDatabaseOperation
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	r.forget(ctx, userID)
	return nil
}

func (r *userRepository) IncrementTokenVersion(ctx context.Context, userID uint) error {
	return r.updateColumn(ctx, userID, "token_version", gorm.Expr("token_version + 1"))
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uint, hashedPassword string) error {
	return r.updateColumn(ctx, userID, "password", hashedPassword)
}

func (r *userRepository) MarkMembershipPaid(ctx context.Context, userID uint) error {
	return r.updateColumn(ctx, userID, "membership_fee_paid", true)
}

func (r *userRepository) ListIDsByRole(ctx context.Context, role string) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", role).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, ErrDatabaseOperation
	}
	return ids, nil
}

func (r *userRepository) ListReferred(ctx context.Context, referrerID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("referred_by = ?", referrerID).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, ErrDatabaseOperation
	}
	return users, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return 0, ErrDatabaseOperation
	}
	return count, nil
}

func (r *userRepository) remember(ctx context.Context, user *models.User) {
	if r.cache == nil {
		return
	}
	if err := r.cache.CacheUser(ctx, user); err != nil {
		r.logger.Warn("failed to cache user", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

// forget drops cached copies; the email key needs the stored row.
func (r *userRepository) forget(ctx context.Context, userID uint) {
	if r.cache == nil {
		return
	}
	var user models.User
	if err := r.db.WithContext(ctx).Select("id", "email").First(&user, userID).Error; err != nil {
		return
	}
	if err := r.cache.InvalidateUser(ctx, &user); err != nil {
		r.logger.Warn("failed to invalidate user cache", zap.Uint("user_id", userID), zap.Error(err))
	}
}
