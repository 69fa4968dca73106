package inapp

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractpulse/pulse/pkg/channels"
	"github.com/contractpulse/pulse/pkg/models"
)

type feedStore struct {
	created []*models.Notification
}

func (f *feedStore) CreateNotification(_ context.Context, notification *models.Notification) error {
	f.created = append(f.created, notification)

	return nil
}

func (f *feedStore) NotificationsByUserID(_ context.Context, userID string, _ bool) ([]*models.Notification, error) {
	var result []*models.Notification

	for _, n := range f.created {
		if n.UserID == userID {
			result = append(result, n)
		}
	}

	return result, nil
}

func (f *feedStore) MarkNotificationRead(_ context.Context, notificationID string) error {
	now := time.Now().UTC()

	for _, n := range f.created {
		if n.ID == notificationID {
			n.Read = true
			n.ReadAt = &now

			return nil
		}
	}

	return nil
}

func (f *feedStore) MarkAllNotificationsRead(_ context.Context, _ string) error {
	return nil
}

func TestSenderSend(t *testing.T) {
	store := &feedStore{}
	sender := NewSender(store, slog.Default())

	messageID, err := sender.Send(context.Background(), models.Recipient{
		UserID: "user-1",
	}, models.Content{
		Title:    "Task assigned",
		Message:  "You have a new onboarding task",
		Priority: models.PriorityMedium,
		Category: "onboarding",
	})

	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, messageID, store.created[0].ID)
	assert.Equal(t, "user-1", store.created[0].UserID)
	assert.Equal(t, "Task assigned", store.created[0].Title)
	assert.False(t, store.created[0].Read)
}

func TestSenderSendMissingUserID(t *testing.T) {
	sender := NewSender(&feedStore{}, slog.Default())

	_, err := sender.Send(context.Background(), models.Recipient{Email: "a@b.com"}, models.Content{
		Message: "hello",
	})

	require.ErrorIs(t, err, channels.ErrMissingUserID)
}

func TestSenderAlwaysConfigured(t *testing.T) {
	sender := NewSender(&feedStore{}, slog.Default())

	assert.True(t, sender.Configured())
	assert.Equal(t, models.ChannelInApp, sender.Channel())
}
