// Package condition runs named read-only checks against the store and feeds
// the result back into the execution context.
package condition

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
	"github.com/contractpulse/pulse/pkg/steps"
)

const CheckOverdueTasks = "overdue_tasks"

type Executor struct {
	directory persistence.DirectoryRepository
	logger    *slog.Logger
}

func NewExecutor(directory persistence.DirectoryRepository, logger *slog.Logger) *Executor {
	return &Executor{
		directory: directory,
		logger:    logger.With("module", "condition_step"),
	}
}

func (e *Executor) Type() models.StepType {
	return models.StepTypeCondition
}

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"condition"},
		"properties": map[string]any{
			"condition": map[string]any{
				"type": "string",
				"enum": []string{CheckOverdueTasks},
			},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, step *models.WorkflowStep, executionID string, _ map[string]any) steps.Result {
	name, _ := step.Configuration["condition"].(string)

	e.logger.Info("Evaluating condition", "execution_id", executionID, "condition", name)

	switch name {
	case CheckOverdueTasks:
		return e.overdueTasks(ctx)
	default:
		return steps.Failure(fmt.Sprintf("unknown condition: %s", name))
	}
}

func (e *Executor) overdueTasks(ctx context.Context) steps.Result {
	tasks, err := e.directory.OverdueTasks(ctx, time.Now().UTC())
	if err != nil {
		return steps.Failure(fmt.Sprintf("failed to query overdue tasks: %s", err.Error()))
	}

	return steps.Result{
		Success: true,
		Data: map[string]any{
			"overdue_tasks": tasks,
			"overdue_count": len(tasks),
		},
	}
}
