package cmd

import (
	"context"
	"log/slog"

	"github.com/contractpulse/pulse/pkg/channels/email"
	"github.com/contractpulse/pulse/pkg/channels/inapp"
	"github.com/contractpulse/pulse/pkg/channels/sms"
	"github.com/contractpulse/pulse/pkg/channels/whatsapp"
	"github.com/contractpulse/pulse/pkg/notification"
	"github.com/contractpulse/pulse/pkg/persistence"
	"github.com/contractpulse/pulse/pkg/steps"
	"github.com/contractpulse/pulse/pkg/steps/condition"
	"github.com/contractpulse/pulse/pkg/steps/dataupdate"
	"github.com/contractpulse/pulse/pkg/steps/delay"
	"github.com/contractpulse/pulse/pkg/steps/notify"
	"github.com/contractpulse/pulse/pkg/steps/webhook"
)

// NewDispatcher wires the four channel senders from the environment.
func NewDispatcher(ctx context.Context, store persistence.Persistence, logger *slog.Logger) *notification.Dispatcher {
	return notification.NewDispatcher(logger,
		email.NewSender(ctx, logger),
		sms.NewSender(logger),
		whatsapp.NewSender(logger),
		inapp.NewSender(store.NotificationRepository(), logger),
	)
}

// NewStepRegistry registers every native step executor.
func NewStepRegistry(dispatcher *notification.Dispatcher, store persistence.Persistence, logger *slog.Logger) *steps.Registry {
	registry := steps.NewRegistry(logger)

	registry.Register(notify.NewExecutor(dispatcher, store.DirectoryRepository(), logger))
	registry.Register(dataupdate.NewExecutor(store.DirectoryRepository(), logger))
	registry.Register(condition.NewExecutor(store.DirectoryRepository(), logger))
	registry.Register(delay.NewExecutor(logger))
	registry.Register(webhook.NewExecutor(logger))

	return registry
}
