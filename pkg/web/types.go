package web

import (
	"github.com/contractpulse/pulse/pkg/models"
)

// SendNotificationRequest is the POST /notifications/send payload.
type SendNotificationRequest struct {
	Recipients []models.Recipient `json:"recipients" validate:"required,min=1"`
	Content    models.Content     `json:"content"    validate:"required"`
	Channels   []models.Channel   `json:"channels"   validate:"omitempty,dive,oneof=email sms whatsapp in_app"`
}

// RunWorkflowRequest is the POST /workflows/:id/run payload.
type RunWorkflowRequest struct {
	TriggerData map[string]any `json:"trigger_data"`
	TriggeredBy string         `json:"triggered_by"`
}

// WorkflowResponse bundles a workflow with its ordered steps.
type WorkflowResponse struct {
	Workflow *models.Workflow       `json:"workflow"`
	Steps    []*models.WorkflowStep `json:"steps"`
}

// ExecutionResponse bundles an execution with its per-step history.
type ExecutionResponse struct {
	Execution *models.WorkflowExecution       `json:"execution"`
	Steps     []*models.WorkflowStepExecution `json:"steps"`
}
