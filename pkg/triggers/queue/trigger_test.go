package queue

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrigger(t *testing.T) {
	trigger, err := NewTrigger(map[string]any{
		"queue":       "pulse:triggers",
		"workflow_id": "wf-1",
		"connection":  map[string]any{"addr": "localhost:6379"},
	}, slog.Default())

	require.NoError(t, err)
	assert.Equal(t, "pulse:triggers", trigger.Queue)
	assert.Equal(t, "localhost:6379", trigger.Connection["addr"])
}

func TestNewTriggerMissingQueue(t *testing.T) {
	_, err := NewTrigger(map[string]any{"workflow_id": "wf-1"}, slog.Default())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue name is required")
}

func TestNewTriggerMissingWorkflow(t *testing.T) {
	_, err := NewTrigger(map[string]any{"queue": "pulse:triggers"}, slog.Default())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow_id is required")
}
