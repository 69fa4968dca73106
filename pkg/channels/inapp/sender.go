// Package inapp persists notifications to the user's in-app feed.
package inapp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/contractpulse/pulse/pkg/channels"
	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
)

// Sender writes notification rows to the feed store. It is always configured;
// delivery only requires a user ID on the recipient.
type Sender struct {
	notifications persistence.NotificationRepository
	logger        *slog.Logger
}

func NewSender(notifications persistence.NotificationRepository, logger *slog.Logger) *Sender {
	return &Sender{
		notifications: notifications,
		logger:        logger.With("module", "inapp_sender"),
	}
}

func (s *Sender) Channel() models.Channel {
	return models.ChannelInApp
}

func (s *Sender) Configured() bool {
	return true
}

func (s *Sender) Send(ctx context.Context, recipient models.Recipient, content models.Content) (string, error) {
	if recipient.UserID == "" {
		return "", channels.ErrMissingUserID
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate notification ID: %w", err)
	}

	notification := &models.Notification{
		ID:        id.String(),
		UserID:    recipient.UserID,
		Title:     content.Title,
		Message:   content.Message,
		Priority:  content.Priority,
		Category:  content.Category,
		ActionURL: content.ActionURL,
		Metadata:  content.Metadata,
		CreatedAt: time.Now().UTC(),
	}

	err = s.notifications.CreateNotification(ctx, notification)
	if err != nil {
		return "", fmt.Errorf("failed to persist notification: %w", err)
	}

	return notification.ID, nil
}
