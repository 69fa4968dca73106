// Package dataupdate mutates the store through a small fixed set of named
// actions.
package dataupdate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
	"github.com/contractpulse/pulse/pkg/steps"
)

const (
	ActionCreateOnboardingTasks = "create_onboarding_tasks"
	ActionUpdateDocumentStatus  = "update_document_status"
)

type Executor struct {
	directory persistence.DirectoryRepository
	logger    *slog.Logger
}

func NewExecutor(directory persistence.DirectoryRepository, logger *slog.Logger) *Executor {
	return &Executor{
		directory: directory,
		logger:    logger.With("module", "data_update_step"),
	}
}

func (e *Executor) Type() models.StepType {
	return models.StepTypeDataUpdate
}

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"action"},
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []string{ActionCreateOnboardingTasks, ActionUpdateDocumentStatus},
			},
			"tasks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"title"},
				},
			},
			"status": map[string]any{
				"type": "string",
			},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, step *models.WorkflowStep, executionID string, data map[string]any) steps.Result {
	action, _ := step.Configuration["action"].(string)

	e.logger.Info("Applying data update", "execution_id", executionID, "action", action)

	switch action {
	case ActionCreateOnboardingTasks:
		return e.createOnboardingTasks(ctx, step, data)
	case ActionUpdateDocumentStatus:
		return e.updateDocumentStatus(ctx, step, data)
	default:
		return steps.Failure(fmt.Sprintf("unknown action: %s", action))
	}
}

func (e *Executor) createOnboardingTasks(ctx context.Context, step *models.WorkflowStep, data map[string]any) steps.Result {
	employeeID := stringValue(step.Configuration, data, "employee_id")
	if employeeID == "" {
		return steps.Failure("employee_id not found in configuration or context")
	}

	rawTasks, _ := step.Configuration["tasks"].([]any)
	if len(rawTasks) == 0 {
		return steps.Failure("no tasks configured")
	}

	now := time.Now().UTC()
	tasks := make([]*models.OnboardingTask, 0, len(rawTasks))

	for _, raw := range rawTasks {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		title, _ := entry["title"].(string)
		if title == "" {
			continue
		}

		task := &models.OnboardingTask{
			EmployeeID: employeeID,
			Title:      title,
			Status:     "pending",
			CreatedAt:  now,
		}

		if days, ok := entry["due_in_days"].(float64); ok {
			dueDate := now.AddDate(0, 0, int(days))
			task.DueDate = &dueDate
		}

		tasks = append(tasks, task)
	}

	if len(tasks) == 0 {
		return steps.Failure("no valid tasks configured")
	}

	err := e.directory.CreateOnboardingTasks(ctx, tasks)
	if err != nil {
		return steps.Failure(fmt.Sprintf("failed to create onboarding tasks: %s", err.Error()))
	}

	return steps.Result{
		Success: true,
		Data:    map[string]any{"created_tasks": len(tasks)},
	}
}

func (e *Executor) updateDocumentStatus(ctx context.Context, step *models.WorkflowStep, data map[string]any) steps.Result {
	documentID := stringValue(step.Configuration, data, "document_id")
	if documentID == "" {
		return steps.Failure("document_id not found in configuration or context")
	}

	status, _ := step.Configuration["status"].(string)
	if status == "" {
		return steps.Failure("status not configured")
	}

	err := e.directory.UpdateDocumentStatus(ctx, documentID, status)
	if err != nil {
		return steps.Failure(fmt.Sprintf("failed to update document status: %s", err.Error()))
	}

	return steps.Result{
		Success: true,
		Data: map[string]any{
			"document_id":     documentID,
			"document_status": status,
		},
	}
}

// stringValue reads a key from step configuration first, falling back to the
// execution context.
func stringValue(config, data map[string]any, key string) string {
	if value, ok := config[key].(string); ok && value != "" {
		return value
	}

	value, _ := data[key].(string)

	return value
}
