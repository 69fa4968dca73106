package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractpulse/pulse/pkg/models"
)

func TestExecute(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pdf_url":"https://files.example.com/contract.pdf"}`))
	}))
	defer server.Close()

	executor := NewExecutor(slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{
			"url":     server.URL,
			"headers": map[string]any{"X-Api-Key": "secret"},
			"body":    map[string]any{"template": "contract-v2"},
		},
	}, "exec-1", map[string]any{"contract_id": "C-42"})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "C-42", received["contract_id"])
	assert.Equal(t, "contract-v2", received["template"])
	assert.Equal(t, "exec-1", received["execution_id"])

	response, ok := result.Data[ResponseKey].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://files.example.com/contract.pdf", response["pdf_url"])
}

func TestExecuteNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	executor := NewExecutor(slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{"url": server.URL},
	}, "exec-1", nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "502")
}

func TestExecuteMissingURL(t *testing.T) {
	executor := NewExecutor(slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{},
	}, "exec-1", nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "url not configured")
}

func TestExecuteTemplatedURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contracts/C-42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	executor := NewExecutor(slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{
			"url":    server.URL + "/contracts/{{.contract_id}}",
			"method": "PUT",
		},
	}, "exec-1", map[string]any{"contract_id": "C-42"})

	require.True(t, result.Success, result.Error)
}
