package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
)

func TestNotificationRepository_CreateAndList(t *testing.T) {
	repo := NewPersistence(t.TempDir()).NotificationRepository()
	ctx := context.Background()

	notification := &models.Notification{
		UserID:   "user-1",
		Title:    "Contract ready",
		Message:  "Your contract is ready for signature",
		Priority: models.PriorityHigh,
	}

	err := repo.CreateNotification(ctx, notification)
	require.NoError(t, err)

	assert.NotEmpty(t, notification.ID)
	assert.False(t, notification.CreatedAt.IsZero())

	feed, err := repo.NotificationsByUserID(ctx, "user-1", false)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "Contract ready", feed[0].Title)
	assert.False(t, feed[0].Read)
}

func TestNotificationRepository_NewestFirst(t *testing.T) {
	repo := NewPersistence(t.TempDir()).NotificationRepository()
	ctx := context.Background()

	older := &models.Notification{
		UserID:    "user-1",
		Title:     "older",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	newer := &models.Notification{
		UserID:    "user-1",
		Title:     "newer",
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.CreateNotification(ctx, older))
	require.NoError(t, repo.CreateNotification(ctx, newer))

	feed, err := repo.NotificationsByUserID(ctx, "user-1", false)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "newer", feed[0].Title)
	assert.Equal(t, "older", feed[1].Title)
}

func TestNotificationRepository_UnreadFilter(t *testing.T) {
	repo := NewPersistence(t.TempDir()).NotificationRepository()
	ctx := context.Background()

	read := &models.Notification{UserID: "user-1", Title: "seen"}
	unread := &models.Notification{UserID: "user-1", Title: "fresh"}

	require.NoError(t, repo.CreateNotification(ctx, read))
	require.NoError(t, repo.CreateNotification(ctx, unread))
	require.NoError(t, repo.MarkNotificationRead(ctx, read.ID))

	feed, err := repo.NotificationsByUserID(ctx, "user-1", true)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "fresh", feed[0].Title)
}

func TestNotificationRepository_MarkNotificationRead(t *testing.T) {
	repo := NewPersistence(t.TempDir()).NotificationRepository()
	ctx := context.Background()

	notification := &models.Notification{UserID: "user-1", Title: "hello"}
	require.NoError(t, repo.CreateNotification(ctx, notification))

	require.NoError(t, repo.MarkNotificationRead(ctx, notification.ID))

	feed, err := repo.NotificationsByUserID(ctx, "user-1", false)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].Read)
	require.NotNil(t, feed[0].ReadAt)
}

func TestNotificationRepository_MarkNotificationRead_NotFound(t *testing.T) {
	repo := NewPersistence(t.TempDir()).NotificationRepository()

	err := repo.MarkNotificationRead(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsNotificationNotFound(err))
}

func TestNotificationRepository_MarkAllNotificationsRead(t *testing.T) {
	repo := NewPersistence(t.TempDir()).NotificationRepository()
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		require.NoError(t, repo.CreateNotification(ctx, &models.Notification{
			UserID: "user-1",
			Title:  title,
		}))
	}

	require.NoError(t, repo.MarkAllNotificationsRead(ctx, "user-1"))

	unread, err := repo.NotificationsByUserID(ctx, "user-1", true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestNotificationRepository_EmptyFeed(t *testing.T) {
	repo := NewPersistence(t.TempDir()).NotificationRepository()

	feed, err := repo.NotificationsByUserID(context.Background(), "nobody", false)
	require.NoError(t, err)
	assert.Empty(t, feed)
}
