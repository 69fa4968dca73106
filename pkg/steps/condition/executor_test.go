package condition

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
	overdue    []*models.OnboardingTask
	overdueErr error
}

func (f *fakeDirectory) ProfileByID(_ context.Context, _ string) (*models.Profile, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDirectory) SaveProfile(_ context.Context, _ *models.Profile) error {
	return nil
}

func (f *fakeDirectory) CreateOnboardingTasks(_ context.Context, _ []*models.OnboardingTask) error {
	return nil
}

func (f *fakeDirectory) OverdueTasks(_ context.Context, _ time.Time) ([]*models.OnboardingTask, error) {
	return f.overdue, f.overdueErr
}

func (f *fakeDirectory) DocumentByID(_ context.Context, _ string) (*models.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDirectory) SaveDocument(_ context.Context, _ *models.Document) error {
	return nil
}

func (f *fakeDirectory) UpdateDocumentStatus(_ context.Context, _, _ string) error {
	return nil
}

func TestExecuteOverdueTasks(t *testing.T) {
	directory := &fakeDirectory{
		overdue: []*models.OnboardingTask{
			{ID: "task-1", EmployeeID: "emp-1", Title: "Sign contract"},
		},
	}
	executor := NewExecutor(directory, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{"condition": CheckOverdueTasks},
	}, "exec-1", nil)

	require.True(t, result.Success)
	assert.Equal(t, 1, result.Data["overdue_count"])
}

func TestExecuteUnknownCondition(t *testing.T) {
	executor := NewExecutor(&fakeDirectory{}, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{"condition": "contract_signed"},
	}, "exec-1", nil)

	assert.False(t, result.Success)
	assert.Equal(t, "unknown condition: contract_signed", result.Error)
}

func TestExecuteQueryError(t *testing.T) {
	executor := NewExecutor(&fakeDirectory{overdueErr: errors.New("connection refused")}, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{"condition": CheckOverdueTasks},
	}, "exec-1", nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "connection refused")
}
