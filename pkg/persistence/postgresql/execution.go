package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
)

// ExecutionRepository handles workflow execution history.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// CreateExecution inserts a new execution row.
func (r *ExecutionRepository) CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	if execution.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate execution ID: %w", err)
		}

		execution.ID = id.String()
	}

	if execution.StartedAt.IsZero() {
		execution.StartedAt = time.Now().UTC()
	}

	triggerDataJSON, err := json.Marshal(orEmptyMap(execution.TriggerData))
	if err != nil {
		return fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	executionDataJSON, err := json.Marshal(orEmptyMap(execution.Data))
	if err != nil {
		return fmt.Errorf("failed to marshal execution data: %w", err)
	}

	query := `
		INSERT INTO workflow_executions (id, workflow_id, triggered_by, trigger_data, status, started_at,
			completed_at, error_message, execution_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.TriggeredBy,
		triggerDataJSON,
		execution.Status,
		execution.StartedAt,
		execution.CompletedAt,
		execution.ErrorMessage,
		executionDataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workflow execution: %w", err)
	}

	return nil
}

// UpdateExecution persists the terminal state of an execution.
func (r *ExecutionRepository) UpdateExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	executionDataJSON, err := json.Marshal(orEmptyMap(execution.Data))
	if err != nil {
		return fmt.Errorf("failed to marshal execution data: %w", err)
	}

	query := `
		UPDATE workflow_executions
		SET status = $2, completed_at = $3, error_message = $4, execution_data = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		execution.ID,
		execution.Status,
		execution.CompletedAt,
		execution.ErrorMessage,
		executionDataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update workflow execution: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return persistence.NewStoreError("UpdateExecution", execution.ID, persistence.ErrExecutionNotFound)
	}

	return nil
}

// ExecutionByID returns one execution row.
func (r *ExecutionRepository) ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	query := `
		SELECT
			id
		  , workflow_id
		  , triggered_by
		  , trigger_data
		  , status
		  , started_at
		  , completed_at
		  , error_message
		  , execution_data
		FROM workflow_executions
		WHERE id = $1
	`

	execution, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("ExecutionByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow execution: %w", err)
	}

	return execution, nil
}

// ExecutionsByWorkflowID returns the executions of a workflow, newest first.
func (r *ExecutionRepository) ExecutionsByWorkflowID(ctx context.Context, workflowID string) ([]*models.WorkflowExecution, error) {
	query := `
		SELECT
			id
		  , workflow_id
		  , triggered_by
		  , trigger_data
		  , status
		  , started_at
		  , completed_at
		  , error_message
		  , execution_data
		FROM workflow_executions
		WHERE workflow_id = $1
		ORDER BY started_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.WorkflowExecution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow execution: %w", err)
		}

		executions = append(executions, execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflow executions: %w", err)
	}

	return executions, nil
}

// CreateStepExecution appends one step execution row. Rows are never updated
// afterwards.
func (r *ExecutionRepository) CreateStepExecution(ctx context.Context, stepExecution *models.WorkflowStepExecution) error {
	if stepExecution.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate step execution ID: %w", err)
		}

		stepExecution.ID = id.String()
	}

	if stepExecution.StartedAt.IsZero() {
		stepExecution.StartedAt = time.Now().UTC()
	}

	resultJSON, err := json.Marshal(orEmptyMap(stepExecution.Result))
	if err != nil {
		return fmt.Errorf("failed to marshal step result: %w", err)
	}

	query := `
		INSERT INTO workflow_step_executions (id, execution_id, step_id, step_order, status, started_at,
			completed_at, result, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		stepExecution.ID,
		stepExecution.ExecutionID,
		stepExecution.StepID,
		stepExecution.StepOrder,
		stepExecution.Status,
		stepExecution.StartedAt,
		stepExecution.CompletedAt,
		resultJSON,
		stepExecution.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert step execution: %w", err)
	}

	return nil
}

// StepExecutionsByExecutionID returns the step rows of one run in attempt order.
func (r *ExecutionRepository) StepExecutionsByExecutionID(ctx context.Context, executionID string) ([]*models.WorkflowStepExecution, error) {
	query := `
		SELECT
			id
		  , execution_id
		  , step_id
		  , step_order
		  , status
		  , started_at
		  , completed_at
		  , result
		  , error_message
		FROM workflow_step_executions
		WHERE execution_id = $1
		ORDER BY started_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query step executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	stepExecutions := make([]*models.WorkflowStepExecution, 0)

	for rows.Next() {
		var (
			stepExecution models.WorkflowStepExecution
			resultJSON    []byte
		)

		err := rows.Scan(
			&stepExecution.ID,
			&stepExecution.ExecutionID,
			&stepExecution.StepID,
			&stepExecution.StepOrder,
			&stepExecution.Status,
			&stepExecution.StartedAt,
			&stepExecution.CompletedAt,
			&resultJSON,
			&stepExecution.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step execution: %w", err)
		}

		err = json.Unmarshal(resultJSON, &stepExecution.Result)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal step result: %w", err)
		}

		stepExecutions = append(stepExecutions, &stepExecution)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating step executions: %w", err)
	}

	return stepExecutions, nil
}

func scanExecution(row rowScanner) (*models.WorkflowExecution, error) {
	var (
		execution         models.WorkflowExecution
		triggerDataJSON   []byte
		executionDataJSON []byte
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.TriggeredBy,
		&triggerDataJSON,
		&execution.Status,
		&execution.StartedAt,
		&execution.CompletedAt,
		&execution.ErrorMessage,
		&executionDataJSON,
	)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(triggerDataJSON, &execution.TriggerData)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
	}

	err = json.Unmarshal(executionDataJSON, &execution.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution data: %w", err)
	}

	return &execution, nil
}
