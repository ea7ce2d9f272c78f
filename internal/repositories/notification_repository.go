package repositories

import (
	"context"
	"fmt"
	"time"

	"investa/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	// CreateWithRecipients stores n and one unread recipient row per user id.
	CreateWithRecipients(ctx context.Context, n *models.Notification, userIDs []uint) error
	ListForUser(ctx context.Context, userID uint, p Page) ([]models.NotificationRecipient, int64, error)
	GetForUser(ctx context.Context, userID, notificationID uint) (*models.NotificationRecipient, error)
	MarkRead(ctx context.Context, userID, notificationID uint, at time.Time) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateWithRecipients(ctx context.Context, n *models.Notification, userIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		if len(userIDs) == 0 {
			return nil
		}
		rows := make([]models.NotificationRecipient, 0, len(userIDs))
		for _, id := range userIDs {
			rows = append(rows, models.NotificationRecipient{NotificationID: n.ID, UserID: id})
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("failed to attach notification recipients: %w", err)
		}
		return nil
	})
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID uint, p Page) ([]models.NotificationRecipient, int64, error) {
	q := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.NotificationRecipient{}).Where("user_id = ?", userID)
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var rows []models.NotificationRecipient
	err := p.apply(q().Preload("Notification.Sender").Order("notification_id DESC")).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return rows, total, nil
}

func (r *notificationRepository) GetForUser(ctx context.Context, userID, notificationID uint) (*models.NotificationRecipient, error) {
	var row models.NotificationRecipient
	err := r.db.WithContext(ctx).
		Preload("Notification.Sender").
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, notificationID uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.NotificationRecipient{}).
		Where("user_id = ? AND notification_id = ? AND is_read = ?", userID, notificationID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NotificationRecipient{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
