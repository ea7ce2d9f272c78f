package cache

import (
	"context"
	"testing"
	"time"

	"investa/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestLocker_AcquireRelease(t *testing.T) {
	mr, client := newTestClient(t)
	locker := NewLocker(client)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "roi:sweep:2024-03-04", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("roi:sweep:2024-03-04"))

	_, err = locker.Acquire(ctx, "roi:sweep:2024-03-04", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("roi:sweep:2024-03-04"))

	release, err = locker.Acquire(ctx, "roi:sweep:2024-03-04", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestLocker_ReleaseDoesNotDropForeignLock(t *testing.T) {
	mr, client := newTestClient(t)
	locker := NewLocker(client)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	_, err = locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	require.NoError(t, release(ctx))
	assert.True(t, mr.Exists("k"))
}

func TestCacheService_UserRoundTrip(t *testing.T) {
	_, client := newTestClient(t)
	svc := NewCacheService(client, time.Hour)
	ctx := context.Background()

	_, err := svc.GetUser(ctx, "user:id:1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	user := &models.User{FirstName: "Ada", Email: "ada@example.com", Promocode: "REF_ABCDEFGH"}
	user.ID = 1
	require.NoError(t, svc.CacheUser(ctx, user))

	got, err := svc.GetUser(ctx, "user:email:ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "REF_ABCDEFGH", got.Promocode)

	require.NoError(t, svc.InvalidateUser(ctx, user))
	_, err = svc.GetUser(ctx, "user:id:1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	require.NoError(t, svc.HealthCheck(ctx))
}
