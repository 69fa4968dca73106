package models

import "time"

// ExecutionStatus is the lifecycle state of one workflow run.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
	ExecutionStatusPaused    ExecutionStatus = "paused"
)

// StepExecutionStatus is the terminal state of one step attempt.
type StepExecutionStatus string

const (
	StepStatusCompleted StepExecutionStatus = "completed"
	StepStatusFailed    StepExecutionStatus = "failed"
	StepStatusSkipped   StepExecutionStatus = "skipped"
)

// WorkflowExecution is one row per workflow invocation. Created with status
// running and mutated exactly once more at the end of the run.
type WorkflowExecution struct {
	ID           string          `json:"id"`
	WorkflowID   string          `json:"workflow_id" validate:"required"`
	TriggeredBy  string          `json:"triggered_by"`
	TriggerData  map[string]any  `json:"trigger_data,omitempty"`
	Status       ExecutionStatus `json:"status"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Data         map[string]any  `json:"data,omitempty"`
}

// WorkflowStepExecution is one append-only row per step attempt.
type WorkflowStepExecution struct {
	ID           string              `json:"id"`
	ExecutionID  string              `json:"execution_id" validate:"required"`
	StepID       string              `json:"step_id"      validate:"required"`
	StepOrder    int                 `json:"step_order"`
	Status       StepExecutionStatus `json:"status"`
	StartedAt    time.Time           `json:"started_at"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	Result       map[string]any      `json:"result,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
}
