// Package notify is the step executor that hands a notification off to the
// multi-channel dispatcher.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
	"github.com/contractpulse/pulse/pkg/steps"
	"github.com/contractpulse/pulse/pkg/template"
)

// Dispatcher is the slice of the notification dispatcher this executor needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, recipients []models.Recipient, content models.Content, requestedChannels []models.Channel) models.DispatchResult
}

// DefaultChannels applies when the step configuration names none.
var DefaultChannels = []models.Channel{models.ChannelEmail, models.ChannelInApp}

type Executor struct {
	dispatcher Dispatcher
	directory  persistence.DirectoryRepository
	logger     *slog.Logger
}

func NewExecutor(dispatcher Dispatcher, directory persistence.DirectoryRepository, logger *slog.Logger) *Executor {
	return &Executor{
		dispatcher: dispatcher,
		directory:  directory,
		logger:     logger.With("module", "notification_step"),
	}
}

func (e *Executor) Type() models.StepType {
	return models.StepTypeNotification
}

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recipients": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
					"enum": []string{models.RoleEmployee, models.RoleEmployer},
				},
			},
			"title": map[string]any{
				"type": "string",
			},
			"message": map[string]any{
				"type": "string",
			},
			"priority": map[string]any{
				"type": "string",
				"enum": []string{"low", "medium", "high", "urgent"},
			},
			"channels": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
					"enum": []string{"email", "sms", "whatsapp", "in_app"},
				},
			},
		},
	}
}

// Execute resolves recipients from profile IDs found in the execution
// context, builds the content from configuration with context fallbacks, and
// delegates to the dispatcher. It fails when no recipients resolve.
func (e *Executor) Execute(ctx context.Context, step *models.WorkflowStep, executionID string, data map[string]any) steps.Result {
	recipients := e.resolveRecipients(ctx, step, data)
	if len(recipients) == 0 {
		return steps.Failure("no recipients found")
	}

	content, err := e.buildContent(step, data)
	if err != nil {
		return steps.Failure(err.Error())
	}

	result := e.dispatcher.Dispatch(ctx, recipients, content, requestedChannels(step))

	e.logger.Info("Notification step dispatched",
		"execution_id", executionID,
		"sent", result.Sent.Total(),
		"failed", result.Failed.Total())

	if !result.Success {
		message := "notification delivery failed"
		if len(result.Errors) > 0 {
			message = result.Errors[0]
		}

		return steps.Failure(message)
	}

	return steps.Result{
		Success: true,
		Data: map[string]any{
			"notification_sent":   result.Sent.Total(),
			"notification_failed": result.Failed.Total(),
		},
	}
}

// resolveRecipients looks up employee/employer profiles by the IDs the
// trigger placed in the context. Missing profiles are skipped, not fatal.
func (e *Executor) resolveRecipients(ctx context.Context, step *models.WorkflowStep, data map[string]any) []models.Recipient {
	roles := configuredRoles(step)

	var recipients []models.Recipient

	for _, role := range roles {
		profileID, _ := data[role+"_id"].(string)
		if profileID == "" {
			continue
		}

		profile, err := e.directory.ProfileByID(ctx, profileID)
		if err != nil {
			if !errors.Is(err, persistence.ErrProfileNotFound) {
				e.logger.Warn("Failed to resolve profile", "role", role, "profile_id", profileID, "error", err)
			}

			continue
		}

		recipients = append(recipients, profile.Recipient())
	}

	return recipients
}

func (e *Executor) buildContent(step *models.WorkflowStep, data map[string]any) (models.Content, error) {
	title, _ := step.Configuration["title"].(string)
	if title == "" {
		title, _ = data["title"].(string)
	}

	message, _ := step.Configuration["message"].(string)
	if message == "" {
		message, _ = data["message"].(string)
	}

	title, err := template.RenderWithContext(title, data)
	if err != nil {
		return models.Content{}, fmt.Errorf("failed to render title: %w", err)
	}

	message, err = template.RenderWithContext(message, data)
	if err != nil {
		return models.Content{}, fmt.Errorf("failed to render message: %w", err)
	}

	priority, _ := step.Configuration["priority"].(string)
	if priority == "" {
		priority = string(models.PriorityMedium)
	}

	category, _ := step.Configuration["category"].(string)
	actionURL, _ := step.Configuration["action_url"].(string)

	return models.Content{
		Title:     title,
		Message:   message,
		Priority:  models.Priority(priority),
		Category:  category,
		ActionURL: actionURL,
	}, nil
}

func configuredRoles(step *models.WorkflowStep) []string {
	raw, ok := step.Configuration["recipients"].([]any)
	if !ok || len(raw) == 0 {
		return []string{models.RoleEmployee, models.RoleEmployer}
	}

	roles := make([]string, 0, len(raw))

	for _, entry := range raw {
		if role, ok := entry.(string); ok {
			roles = append(roles, role)
		}
	}

	return roles
}

func requestedChannels(step *models.WorkflowStep) []models.Channel {
	raw, ok := step.Configuration["channels"].([]any)
	if !ok || len(raw) == 0 {
		return DefaultChannels
	}

	requested := make([]models.Channel, 0, len(raw))

	for _, entry := range raw {
		if channel, ok := entry.(string); ok {
			requested = append(requested, models.Channel(channel))
		}
	}

	return requested
}
