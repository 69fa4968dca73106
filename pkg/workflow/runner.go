// Package workflow implements the sequential step runner that turns a
// workflow definition into a persisted execution with per-step history.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/otelhelper"
	"github.com/contractpulse/pulse/pkg/persistence"
	"github.com/contractpulse/pulse/pkg/steps"
)

// DefaultMaxStepInvocations caps total step invocations per run. Jump targets
// may point backward, so a misconfigured workflow could otherwise loop
// forever.
const DefaultMaxStepInvocations = 100

// RunResult is the outcome of one workflow run.
type RunResult struct {
	Success     bool   `json:"success"`
	ExecutionID string `json:"execution_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Runner executes workflows. All collaborators are injected so tests can
// substitute fake stores and executors.
type Runner struct {
	persistence        persistence.Persistence
	registry           *steps.Registry
	logger             *slog.Logger
	tracer             trace.Tracer
	maxStepInvocations int
}

func NewRunner(store persistence.Persistence, registry *steps.Registry, logger *slog.Logger) *Runner {
	return &Runner{
		persistence:        store,
		registry:           registry,
		logger:             logger.With("module", "workflow_runner"),
		maxStepInvocations: DefaultMaxStepInvocations,
	}
}

// WithTracer enables span emission around runs and steps.
func (r *Runner) WithTracer(tracer trace.Tracer) *Runner {
	r.tracer = tracer

	return r
}

// WithMaxStepInvocations overrides the per-run step invocation cap.
func (r *Runner) WithMaxStepInvocations(limit int) *Runner {
	if limit > 0 {
		r.maxStepInvocations = limit
	}

	return r
}

// Run executes the workflow identified by workflowID. The trigger data seeds
// the running execution context. No error ever escapes as a panic; any
// unexpected failure is converted into a RunResult.
func (r *Runner) Run(ctx context.Context, workflowID string, triggerData map[string]any, triggeredBy string) (result RunResult) {
	var execution *models.WorkflowExecution

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Workflow run panicked", "workflow_id", workflowID, "panic", rec)

			message := fmt.Sprintf("workflow execution panic: %v", rec)

			// An execution row that was already created must still reach a
			// terminal status.
			if execution != nil {
				result = r.fail(ctx, execution, message)

				return
			}

			result = RunResult{Error: message}
		}
	}()

	logger := r.logger.With("workflow_id", workflowID)

	wf, err := r.persistence.WorkflowRepository().WorkflowByID(ctx, workflowID)
	if err != nil {
		return RunResult{Error: fmt.Sprintf("failed to load workflow: %s", err.Error())}
	}

	if !wf.Active {
		return RunResult{Error: "workflow is not active"}
	}

	stepList, err := r.persistence.WorkflowRepository().StepsByWorkflowID(ctx, workflowID)
	if err != nil {
		return RunResult{Error: fmt.Sprintf("failed to load workflow steps: %s", err.Error())}
	}

	if len(stepList) == 0 {
		return RunResult{Error: "workflow has no steps"}
	}

	row := &models.WorkflowExecution{
		WorkflowID:  workflowID,
		TriggeredBy: triggeredBy,
		TriggerData: triggerData,
		Status:      models.ExecutionStatusRunning,
		StartedAt:   time.Now().UTC(),
		Data:        seedData(triggerData),
	}

	err = r.persistence.ExecutionRepository().CreateExecution(ctx, row)
	if err != nil {
		return RunResult{Error: fmt.Sprintf("failed to create execution: %s", err.Error())}
	}

	execution = row

	if r.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, r.tracer, "workflow.run",
			attribute.String(otelhelper.WorkflowIDKey, workflowID),
			attribute.String(otelhelper.WorkflowNameKey, wf.Name),
			attribute.String(otelhelper.ExecutionIDKey, execution.ID),
		)
		defer span.End()
	}

	logger = logger.With("execution_id", execution.ID)
	logger.Info("Workflow run started", "steps", len(stepList), "triggered_by", triggeredBy)

	return r.runSteps(ctx, logger, execution, stepList)
}

// runSteps drives the cursor over the ordered step list.
func (r *Runner) runSteps(ctx context.Context, logger *slog.Logger, execution *models.WorkflowExecution, stepList []*models.WorkflowStep) RunResult {
	indexByID := make(map[string]int, len(stepList))
	for i, step := range stepList {
		indexByID[step.ID] = i
	}

	invocations := 0

	for cursor := 0; cursor >= 0 && cursor < len(stepList); {
		invocations++
		if invocations > r.maxStepInvocations {
			return r.fail(ctx, execution, "step limit exceeded")
		}

		step := stepList[cursor]

		if !models.EvaluateConditions(step.Conditions, execution.Data) {
			logger.Info("Step skipped by guard conditions", "step_id", step.ID, "step_name", step.Name)

			r.recordStep(ctx, logger, execution, step, models.StepStatusSkipped, map[string]any{"skipped": true}, "")

			// A skip is non-fatal; the failure action only redirects.
			if target, ok := indexByID[step.OnFailure]; ok {
				cursor = target
			} else {
				cursor++
			}

			continue
		}

		result := r.executeStep(ctx, logger, execution, step)

		status := models.StepStatusCompleted
		if !result.Success {
			status = models.StepStatusFailed
		}

		r.recordStep(ctx, logger, execution, step, status, result.Data, result.Error)

		if !result.Success {
			switch step.OnFailure {
			case models.StepActionStop:
				return r.fail(ctx, execution, result.Error)
			case models.StepActionRetry:
				// Retry is declared in the model but not performed; a step
				// that asks for it still terminates the run as failed.
				return r.fail(ctx, execution, result.Error)
			default:
				if target, ok := indexByID[step.OnFailure]; ok {
					cursor = target
				} else {
					cursor++
				}
			}

			continue
		}

		if len(result.Data) > 0 {
			if execution.Data == nil {
				execution.Data = make(map[string]any, len(result.Data))
			}

			maps.Copy(execution.Data, result.Data)
		}

		if result.NextStep != "" {
			if target, ok := indexByID[result.NextStep]; ok {
				cursor = target

				continue
			}
			// Unknown jump target falls through to the normal advance.
		}

		switch step.OnSuccess {
		case models.StepActionStop:
			return r.complete(ctx, execution)
		default:
			if target, ok := indexByID[step.OnSuccess]; ok {
				cursor = target
			} else {
				cursor++
			}
		}
	}

	return r.complete(ctx, execution)
}

// executeStep resolves the executor and invokes it, converting an unknown
// step type into an ordinary failure result.
func (r *Runner) executeStep(ctx context.Context, logger *slog.Logger, execution *models.WorkflowExecution, step *models.WorkflowStep) steps.Result {
	executor, err := r.registry.Executor(step.Type)
	if err != nil {
		return steps.Failure(err.Error())
	}

	var span trace.Span

	if r.tracer != nil {
		ctx, span = otelhelper.StartSpan(ctx, r.tracer, "workflow.step",
			attribute.String(otelhelper.StepIDKey, step.ID),
			attribute.String(otelhelper.StepNameKey, step.Name),
			attribute.String(otelhelper.StepTypeKey, string(step.Type)),
			attribute.String(otelhelper.ExecutionIDKey, execution.ID),
		)
		defer span.End()
	}

	logger.Info("Executing step", "step_id", step.ID, "step_name", step.Name, "step_type", step.Type)

	result := executor.Execute(ctx, step, execution.ID, execution.Data)

	if span != nil && !result.Success {
		otelhelper.SetError(span, errors.New(result.Error),
			attribute.String(otelhelper.StepIDKey, step.ID),
		)
	}

	return result
}

// recordStep appends one step execution row. A persistence failure is logged
// but does not abort the run.
func (r *Runner) recordStep(ctx context.Context, logger *slog.Logger, execution *models.WorkflowExecution, step *models.WorkflowStep, status models.StepExecutionStatus, resultData map[string]any, errorMessage string) {
	now := time.Now().UTC()

	row := &models.WorkflowStepExecution{
		ExecutionID:  execution.ID,
		StepID:       step.ID,
		StepOrder:    step.Order,
		Status:       status,
		StartedAt:    now,
		CompletedAt:  &now,
		Result:       resultData,
		ErrorMessage: errorMessage,
	}

	err := r.persistence.ExecutionRepository().CreateStepExecution(ctx, row)
	if err != nil {
		logger.Error("Failed to persist step execution", "step_id", step.ID, "error", err)
	}
}

func (r *Runner) fail(ctx context.Context, execution *models.WorkflowExecution, message string) RunResult {
	r.finalize(ctx, execution, models.ExecutionStatusFailed, message)

	return RunResult{ExecutionID: execution.ID, Error: message}
}

func (r *Runner) complete(ctx context.Context, execution *models.WorkflowExecution) RunResult {
	r.finalize(ctx, execution, models.ExecutionStatusCompleted, "")

	return RunResult{Success: true, ExecutionID: execution.ID}
}

func (r *Runner) finalize(ctx context.Context, execution *models.WorkflowExecution, status models.ExecutionStatus, errorMessage string) {
	now := time.Now().UTC()

	execution.Status = status
	execution.CompletedAt = &now
	execution.ErrorMessage = errorMessage

	err := r.persistence.ExecutionRepository().UpdateExecution(ctx, execution)
	if err != nil {
		r.logger.Error("Failed to finalize execution", "execution_id", execution.ID, "error", err)
	}
}

func seedData(triggerData map[string]any) map[string]any {
	data := make(map[string]any, len(triggerData))
	maps.Copy(data, triggerData)

	return data
}
