package dataupdate

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractpulse/pulse/pkg/models"
)

type fakeDirectory struct {
	tasks          []*models.OnboardingTask
	statusUpdates  map[string]string
	createTasksErr error
}

func (f *fakeDirectory) ProfileByID(_ context.Context, _ string) (*models.Profile, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDirectory) SaveProfile(_ context.Context, _ *models.Profile) error {
	return nil
}

func (f *fakeDirectory) CreateOnboardingTasks(_ context.Context, tasks []*models.OnboardingTask) error {
	if f.createTasksErr != nil {
		return f.createTasksErr
	}

	f.tasks = append(f.tasks, tasks...)

	return nil
}

func (f *fakeDirectory) OverdueTasks(_ context.Context, _ time.Time) ([]*models.OnboardingTask, error) {
	return nil, nil
}

func (f *fakeDirectory) DocumentByID(_ context.Context, _ string) (*models.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDirectory) SaveDocument(_ context.Context, _ *models.Document) error {
	return nil
}

func (f *fakeDirectory) UpdateDocumentStatus(_ context.Context, id, status string) error {
	if f.statusUpdates == nil {
		f.statusUpdates = make(map[string]string)
	}

	f.statusUpdates[id] = status

	return nil
}

func TestExecuteCreateOnboardingTasks(t *testing.T) {
	directory := &fakeDirectory{}
	executor := NewExecutor(directory, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{
			"action": ActionCreateOnboardingTasks,
			"tasks": []any{
				map[string]any{"title": "Sign contract", "due_in_days": 3.0},
				map[string]any{"title": "Upload documents"},
			},
		},
	}, "exec-1", map[string]any{"employee_id": "emp-1"})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 2, result.Data["created_tasks"])
	require.Len(t, directory.tasks, 2)
	assert.Equal(t, "emp-1", directory.tasks[0].EmployeeID)
	assert.Equal(t, "pending", directory.tasks[0].Status)
	assert.NotNil(t, directory.tasks[0].DueDate)
	assert.Nil(t, directory.tasks[1].DueDate)
}

func TestExecuteCreateOnboardingTasksMissingEmployee(t *testing.T) {
	executor := NewExecutor(&fakeDirectory{}, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{
			"action": ActionCreateOnboardingTasks,
			"tasks":  []any{map[string]any{"title": "Sign contract"}},
		},
	}, "exec-1", map[string]any{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "employee_id not found")
}

func TestExecuteUpdateDocumentStatus(t *testing.T) {
	directory := &fakeDirectory{}
	executor := NewExecutor(directory, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{
			"action": ActionUpdateDocumentStatus,
			"status": "signed",
		},
	}, "exec-1", map[string]any{"document_id": "doc-9"})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "signed", directory.statusUpdates["doc-9"])
	assert.Equal(t, "doc-9", result.Data["document_id"])
}

func TestExecuteUnknownAction(t *testing.T) {
	executor := NewExecutor(&fakeDirectory{}, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{"action": "drop_all_tables"},
	}, "exec-1", nil)

	assert.False(t, result.Success)
	assert.Equal(t, "unknown action: drop_all_tables", result.Error)
}
