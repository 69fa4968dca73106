// Package steps defines the step executor protocol and the registry that
// maps step types to executors.
package steps

import (
	"context"

	"github.com/contractpulse/pulse/pkg/models"
)

// Result is the outcome of one executor invocation. Errors never escape an
// executor as Go errors; they are carried here as data.
type Result struct {
	Success  bool
	Data     map[string]any
	Error    string
	NextStep string
}

// Failure builds a failed Result from an error message.
func Failure(message string) Result {
	return Result{Error: message}
}

// Executor handles one step type. Execute receives the step, the ID of the
// running execution and the accumulated execution data, and must not panic
// or return Go errors.
type Executor interface {
	Type() models.StepType
	Execute(ctx context.Context, step *models.WorkflowStep, executionID string, data map[string]any) Result

	// Schema returns the JSON schema of the step configuration, used to
	// validate definitions before they run.
	Schema() map[string]any
}
