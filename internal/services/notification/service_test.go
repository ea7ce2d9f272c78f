package notification

import (
	"context"
	"testing"

	apperrors "investa/internal/errors"
	"investa/internal/models"
	"investa/internal/repositories"
	"investa/internal/repositories/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	admin := store.SeedUser(models.User{FirstName: "Root", Email: "admin@example.com", Promocode: "REF_ADMIN001", Role: models.RoleAdmin})
	ada := store.SeedUser(models.User{Email: "ada@example.com", Promocode: "REF_ADA00001"})
	bob := store.SeedUser(models.User{Email: "bob@example.com", Promocode: "REF_BOB00001"})
	svc := NewService(store.Notifications(), store.Users(), zap.NewNop())
	adminActor := models.Actor{UserID: admin.ID, Role: models.RoleAdmin}

	_, _, err := svc.Broadcast(ctx, models.Actor{UserID: ada.ID, Role: models.RoleClient}, BroadcastInput{Title: "x", Message: "y"})
	assert.ErrorIs(t, err, apperrors.ErrAdminOnly)

	_, _, err = svc.Broadcast(ctx, adminActor, BroadcastInput{Title: "Maintenance"})
	ve, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "message")

	first, recipients, err := svc.Broadcast(ctx, adminActor, BroadcastInput{Title: "Welcome", Message: "Hello members"})
	require.NoError(t, err)
	assert.Equal(t, 2, recipients)
	second, _, err := svc.Broadcast(ctx, adminActor, BroadcastInput{Title: "Maintenance", Message: "Sunday 02:00"})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	count, err = svc.UnreadCount(ctx, admin.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	rows, total, err := svc.List(ctx, ada.ID, repositories.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].NotificationID)
	require.NotNil(t, rows[0].Notification)
	require.NotNil(t, rows[0].Notification.Sender)
	assert.Equal(t, "Root", rows[0].Notification.Sender.FirstName)

	row, err := svc.Show(ctx, ada.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, row.IsRead)
	assert.NotNil(t, row.ReadAt)

	count, err = svc.UnreadCount(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	count, err = svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = svc.Show(ctx, admin.ID, first.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}
