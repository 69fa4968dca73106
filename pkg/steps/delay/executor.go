// Package delay suspends a workflow run for a configured number of seconds.
package delay

import (
	"context"
	"log/slog"
	"time"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/steps"
)

type Executor struct {
	logger *slog.Logger
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger.With("module", "delay_step")}
}

func (e *Executor) Type() models.StepType {
	return models.StepTypeDelay
}

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"delay_seconds": map[string]any{
				"type":    "number",
				"minimum": 0,
			},
		},
	}
}

// Execute waits for delay_seconds, honoring context cancellation. A zero or
// missing delay returns immediately with no data.
func (e *Executor) Execute(ctx context.Context, step *models.WorkflowStep, executionID string, _ map[string]any) steps.Result {
	seconds, _ := step.Configuration["delay_seconds"].(float64)
	if seconds <= 0 {
		return steps.Result{Success: true}
	}

	duration := time.Duration(seconds * float64(time.Second))

	e.logger.Info("Delaying execution", "execution_id", executionID, "duration", duration)

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return steps.Failure(ctx.Err().Error())
	case <-timer.C:
		return steps.Result{Success: true}
	}
}
