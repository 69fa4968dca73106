package models

// StepType identifies the executor handling a step.
type StepType string

const (
	StepTypeNotification StepType = "notification"
	StepTypeDataUpdate   StepType = "data_update"
	StepTypeCondition    StepType = "condition"
	StepTypeDelay        StepType = "delay"
	StepTypeWebhook      StepType = "webhook"
)

// Step action tokens. Any other value is interpreted as the ID of the step
// to jump to.
const (
	StepActionStop     = "stop"
	StepActionContinue = "continue"
	StepActionRetry    = "retry"
)

// WorkflowStep is one unit of work within a workflow. Order defines strict
// sequential execution, ties broken by insertion order. RetryCount,
// RetryDelaySeconds and TimeoutSeconds are declared but not consulted by the
// runner; a failed step whose OnFailure action is "retry" still terminates
// the run.
type WorkflowStep struct {
	ID                string         `json:"id"`
	WorkflowID        string         `json:"workflow_id" validate:"required"`
	Name              string         `json:"name"        validate:"required"`
	Order             int            `json:"order"`
	Type              StepType       `json:"type"        validate:"required,oneof=notification data_update condition delay webhook"`
	Configuration     map[string]any `json:"configuration"`
	Conditions        []Condition    `json:"conditions,omitempty"`
	OnSuccess         string         `json:"on_success,omitempty"`
	OnFailure         string         `json:"on_failure,omitempty"`
	RetryCount        int            `json:"retry_count"`
	RetryDelaySeconds int            `json:"retry_delay_seconds"`
	TimeoutSeconds    int            `json:"timeout_seconds"`
}
