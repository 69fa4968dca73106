// Package webhook performs one outbound HTTP call with the merged execution
// context as payload.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/steps"
	"github.com/contractpulse/pulse/pkg/template"
)

const defaultTimeout = 30 * time.Second

// ResponseKey is the execution-data key the parsed response body is merged
// under on success.
const ResponseKey = "webhook_response"

type Executor struct {
	client *http.Client
	logger *slog.Logger
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger.With("module", "webhook_step"),
	}
}

func (e *Executor) Type() models.StepType {
	return models.StepTypeWebhook
}

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"url"},
		"properties": map[string]any{
			"url": map[string]any{
				"type":   "string",
				"format": "uri",
			},
			"method": map[string]any{
				"type": "string",
				"enum": []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			},
			"headers": map[string]any{
				"type": "object",
			},
			"body": map[string]any{
				"type": "object",
			},
		},
	}
}

// Execute POSTs the execution data merged with configured body fields to the
// configured URL. A non-2xx response fails the step with the status text; a
// JSON response body is returned under ResponseKey.
func (e *Executor) Execute(ctx context.Context, step *models.WorkflowStep, executionID string, data map[string]any) steps.Result {
	rawURL, _ := step.Configuration["url"].(string)
	if rawURL == "" {
		return steps.Failure("webhook url not configured")
	}

	endpoint, err := template.RenderWithContext(rawURL, data)
	if err != nil {
		return steps.Failure(err.Error())
	}

	method, _ := step.Configuration["method"].(string)
	if method == "" {
		method = http.MethodPost
	}

	payload := map[string]any{
		"execution_id": executionID,
	}
	for key, value := range data {
		payload[key] = value
	}

	if extra, ok := step.Configuration["body"].(map[string]any); ok {
		for key, value := range extra {
			payload[key] = value
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return steps.Failure(fmt.Sprintf("failed to encode webhook payload: %s", err.Error()))
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), endpoint, bytes.NewReader(body))
	if err != nil {
		return steps.Failure(fmt.Sprintf("failed to create webhook request: %s", err.Error()))
	}

	req.Header.Set("Content-Type", "application/json")

	if headers, ok := step.Configuration["headers"].(map[string]any); ok {
		for key, value := range headers {
			if text, ok := value.(string); ok {
				req.Header.Set(key, text)
			}
		}
	}

	e.logger.Info("Calling webhook", "execution_id", executionID, "method", method, "url", endpoint)

	resp, err := e.client.Do(req)
	if err != nil {
		return steps.Failure(fmt.Sprintf("webhook request failed: %s", err.Error()))
	}

	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			e.logger.Error("Failed to close webhook response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return steps.Failure(fmt.Sprintf("webhook returned %s", resp.Status))
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return steps.Failure(fmt.Sprintf("failed to read webhook response: %s", err.Error()))
	}

	var parsed any
	if len(responseBody) > 0 {
		err = json.Unmarshal(responseBody, &parsed)
		if err != nil {
			parsed = string(responseBody)
		}
	}

	return steps.Result{
		Success: true,
		Data:    map[string]any{ResponseKey: parsed},
	}
}
