// Package persistence provides the data storage abstraction layer for
// workflows, executions, in-app notifications and the people directory.
package persistence

import (
	"context"
	"time"

	"github.com/contractpulse/pulse/pkg/models"
)

// WorkflowRepository stores workflow definitions and their ordered steps.
type WorkflowRepository interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error

	// StepsByWorkflowID returns steps ordered by declared order, ties broken
	// by insertion order.
	StepsByWorkflowID(ctx context.Context, workflowID string) ([]*models.WorkflowStep, error)
	SaveStep(ctx context.Context, step *models.WorkflowStep) error
}

// ExecutionRepository stores workflow runs and their per-step history. Step
// execution rows are append-only.
type ExecutionRepository interface {
	CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error
	UpdateExecution(ctx context.Context, execution *models.WorkflowExecution) error
	ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error)
	ExecutionsByWorkflowID(ctx context.Context, workflowID string) ([]*models.WorkflowExecution, error)

	CreateStepExecution(ctx context.Context, stepExecution *models.WorkflowStepExecution) error
	StepExecutionsByExecutionID(ctx context.Context, executionID string) ([]*models.WorkflowStepExecution, error)
}

// NotificationRepository stores in-app notification rows.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	NotificationsByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
}

// DirectoryRepository exposes the profile, task and document stores consumed
// by step executors.
type DirectoryRepository interface {
	ProfileByID(ctx context.Context, id string) (*models.Profile, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error

	CreateOnboardingTasks(ctx context.Context, tasks []*models.OnboardingTask) error
	OverdueTasks(ctx context.Context, before time.Time) ([]*models.OnboardingTask, error)

	DocumentByID(ctx context.Context, id string) (*models.Document, error)
	SaveDocument(ctx context.Context, document *models.Document) error
	UpdateDocumentStatus(ctx context.Context, id, status string) error
}

// Persistence bundles the repositories behind one connection lifecycle.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	NotificationRepository() NotificationRepository
	DirectoryRepository() DirectoryRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
