package file

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
)

const notificationCollection = "notifications"

// NotificationRepository stores one JSON document per user holding that
// user's notification feed.
type NotificationRepository struct {
	persistence *Persistence
}

func (r *NotificationRepository) CreateNotification(_ context.Context, notification *models.Notification) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	if notification.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate notification ID: %w", err)
		}

		notification.ID = id.String()
	}

	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	feed, err := r.readFeed(notification.UserID)
	if err != nil {
		return err
	}

	feed = append(feed, notification)

	return r.persistence.writeDocument(notificationCollection, notification.UserID, feed)
}

func (r *NotificationRepository) NotificationsByUserID(_ context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	feed, err := r.readFeed(userID)
	if err != nil {
		return nil, err
	}

	notifications := make([]*models.Notification, 0, len(feed))

	for _, notification := range feed {
		if unreadOnly && notification.Read {
			continue
		}

		notifications = append(notifications, notification)
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	return notifications, nil
}

func (r *NotificationRepository) MarkNotificationRead(_ context.Context, id string) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	userIDs, err := r.persistence.listDocuments(notificationCollection)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		feed, err := r.readFeed(userID)
		if err != nil {
			return err
		}

		for _, notification := range feed {
			if notification.ID != id {
				continue
			}

			now := time.Now().UTC()
			notification.Read = true
			notification.ReadAt = &now

			return r.persistence.writeDocument(notificationCollection, userID, feed)
		}
	}

	return persistence.NewStoreError("MarkNotificationRead", id, persistence.ErrNotificationNotFound)
}

func (r *NotificationRepository) MarkAllNotificationsRead(_ context.Context, userID string) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	feed, err := r.readFeed(userID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	for _, notification := range feed {
		if !notification.Read {
			notification.Read = true
			notification.ReadAt = &now
		}
	}

	return r.persistence.writeDocument(notificationCollection, userID, feed)
}

func (r *NotificationRepository) readFeed(userID string) ([]*models.Notification, error) {
	var feed []*models.Notification

	err := r.persistence.readDocument(notificationCollection, userID, &feed)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Notification{}, nil
		}

		return nil, err
	}

	return feed, nil
}
