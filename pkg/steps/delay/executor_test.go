package delay

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/contractpulse/pulse/pkg/models"
)

func TestExecuteZeroDelay(t *testing.T) {
	executor := NewExecutor(slog.Default())

	start := time.Now()
	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{"delay_seconds": 0.0},
	}, "exec-1", nil)

	assert.True(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestExecuteMissingDelay(t *testing.T) {
	executor := NewExecutor(slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{},
	}, "exec-1", nil)

	assert.True(t, result.Success)
}

func TestExecuteWaits(t *testing.T) {
	executor := NewExecutor(slog.Default())

	start := time.Now()
	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{"delay_seconds": 0.05},
	}, "exec-1", nil)

	assert.True(t, result.Success)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestExecuteCancelled(t *testing.T) {
	executor := NewExecutor(slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := executor.Execute(ctx, &models.WorkflowStep{
		Configuration: map[string]any{"delay_seconds": 60.0},
	}, "exec-1", nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "context canceled")
}
