package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
)

func TestExecutionRepository_CreateAndFetch(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()
	ctx := context.Background()

	execution := &models.WorkflowExecution{
		WorkflowID:  "wf-1",
		TriggeredBy: "api",
		Status:      models.ExecutionStatusRunning,
		Data:        map[string]any{"contract_id": "C-42"},
	}

	err := repo.CreateExecution(ctx, execution)
	require.NoError(t, err)

	assert.NotEmpty(t, execution.ID)
	assert.False(t, execution.StartedAt.IsZero())

	fetched, err := repo.ExecutionByID(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, "wf-1", fetched.WorkflowID)
	assert.Equal(t, models.ExecutionStatusRunning, fetched.Status)
	assert.Equal(t, "C-42", fetched.Data["contract_id"])
}

func TestExecutionRepository_UpdateExecution(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()
	ctx := context.Background()

	execution := &models.WorkflowExecution{
		WorkflowID: "wf-1",
		Status:     models.ExecutionStatusRunning,
	}
	require.NoError(t, repo.CreateExecution(ctx, execution))

	completedAt := time.Now().UTC()
	execution.Status = models.ExecutionStatusCompleted
	execution.CompletedAt = &completedAt
	require.NoError(t, repo.UpdateExecution(ctx, execution))

	fetched, err := repo.ExecutionByID(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, fetched.Status)
	require.NotNil(t, fetched.CompletedAt)
}

func TestExecutionRepository_ExecutionByID_NotFound(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()

	_, err := repo.ExecutionByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsExecutionNotFound(err))
}

func TestExecutionRepository_ExecutionsByWorkflowID_FiltersAndSorts(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()
	ctx := context.Background()

	older := &models.WorkflowExecution{
		WorkflowID: "wf-1",
		Status:     models.ExecutionStatusCompleted,
		StartedAt:  time.Now().UTC().Add(-time.Hour),
	}
	newer := &models.WorkflowExecution{
		WorkflowID: "wf-1",
		Status:     models.ExecutionStatusFailed,
		StartedAt:  time.Now().UTC(),
	}
	other := &models.WorkflowExecution{
		WorkflowID: "wf-2",
		Status:     models.ExecutionStatusCompleted,
	}

	for _, execution := range []*models.WorkflowExecution{older, newer, other} {
		require.NoError(t, repo.CreateExecution(ctx, execution))
	}

	executions, err := repo.ExecutionsByWorkflowID(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, executions, 2)

	// Most recent first.
	assert.Equal(t, newer.ID, executions[0].ID)
	assert.Equal(t, older.ID, executions[1].ID)
}

func TestExecutionRepository_StepExecutions_AppendOnly(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()
	ctx := context.Background()

	execution := &models.WorkflowExecution{
		WorkflowID: "wf-1",
		Status:     models.ExecutionStatusRunning,
	}
	require.NoError(t, repo.CreateExecution(ctx, execution))

	first := &models.WorkflowStepExecution{
		ExecutionID: execution.ID,
		StepID:      "step-1",
		StepOrder:   1,
		Status:      models.StepStatusCompleted,
	}
	require.NoError(t, repo.CreateStepExecution(ctx, first))

	// A second attempt for the same step gets its own row.
	second := &models.WorkflowStepExecution{
		ExecutionID: execution.ID,
		StepID:      "step-1",
		StepOrder:   1,
		Status:      models.StepStatusFailed,
	}
	require.NoError(t, repo.CreateStepExecution(ctx, second))

	rows, err := repo.StepExecutionsByExecutionID(ctx, execution.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
	assert.Equal(t, models.StepStatusCompleted, rows[0].Status)
	assert.Equal(t, models.StepStatusFailed, rows[1].Status)
}

func TestExecutionRepository_CreateStepExecution_UnknownExecution(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()

	err := repo.CreateStepExecution(context.Background(), &models.WorkflowStepExecution{
		ExecutionID: "missing",
		StepID:      "step-1",
	})
	require.Error(t, err)
	assert.True(t, persistence.IsExecutionNotFound(err))
}
