// Package notification broadcasts admin announcements to members and tracks
// per-member read state.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "investa/internal/errors"
	"investa/internal/models"
	"investa/internal/repositories"
	"investa/internal/validation"

	"go.uber.org/zap"
)

var ErrNotificationNotFound = apperrors.NotFound("NOTIFICATION_NOT_FOUND", "Notification not found or you do not have access to it.")

// BroadcastInput is an announcement sent to every member.
type BroadcastInput struct {
	Title   string
	Message string
	Image   string
}

type Service struct {
	repo   repositories.NotificationRepository
	users  repositories.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo repositories.NotificationRepository, users repositories.UserRepository, logger *zap.Logger) *Service {
	if repo == nil || users == nil {
		panic("notification service requires notifications and users")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger.Named("notification"),
		now:    time.Now,
	}
}

// Broadcast stores the notification with an unread row for each user_client.
func (s *Service) Broadcast(ctx context.Context, admin models.Actor, in BroadcastInput) (*models.Notification, int, error) {
	if !admin.IsAdmin() {
		return nil, 0, apperrors.ErrAdminOnly
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	in.Image = strings.TrimSpace(in.Image)

	v := validation.New()
	v.Required("title", in.Title)
	v.MaxLength("title", in.Title, validation.MaxNameLength)
	v.Required("message", in.Message)
	v.MaxLength("image", in.Image, 2048)
	if err := v.Err(); err != nil {
		return nil, 0, err
	}

	members, err := s.users.ListIDsByRole(ctx, models.RoleClient)
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}

	n := &models.Notification{
		Title:    in.Title,
		Message:  in.Message,
		SenderID: admin.UserID,
		Image:    in.Image,
	}
	if err := s.repo.CreateWithRecipients(ctx, n, members); err != nil {
		return nil, 0, err
	}
	s.logger.Info("notification broadcast",
		zap.Uint("notification_id", n.ID),
		zap.Uint("sender_id", admin.UserID),
		zap.Int("recipients", len(members)),
	)
	return n, len(members), nil
}

// List pages the member's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uint, p repositories.Page) ([]models.NotificationRecipient, int64, error) {
	return s.repo.ListForUser(ctx, userID, p)
}

// Show returns one notification and marks it read.
func (s *Service) Show(ctx context.Context, userID, notificationID uint) (*models.NotificationRecipient, error) {
	row, err := s.repo.GetForUser(ctx, userID, notificationID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	if !row.IsRead {
		at := s.now()
		if err := s.repo.MarkRead(ctx, userID, notificationID, at); err != nil {
			return nil, fmt.Errorf("mark notification read: %w", err)
		}
		row.IsRead = true
		row.ReadAt = &at
	}
	return row, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
