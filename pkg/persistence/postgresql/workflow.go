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

// WorkflowRepository handles workflow and step database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// Workflows returns all workflows ordered by creation time.
func (r *WorkflowRepository) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , version
		  , trigger_type
		  , trigger_config
		  , active
		  , created_at
		  , updated_at
		FROM workflows
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// WorkflowByID returns a workflow by its ID.
func (r *WorkflowRepository) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , version
		  , trigger_type
		  , trigger_config
		  , active
		  , created_at
		  , updated_at
		FROM workflows
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// SaveWorkflow inserts or updates a workflow.
func (r *WorkflowRepository) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow ID: %w", err)
		}

		workflow.ID = id.String()
	}

	if workflow.Version == 0 {
		workflow.Version = 1
	}

	triggerConfigJSON, err := json.Marshal(orEmptyMap(workflow.TriggerConfig))
	if err != nil {
		return fmt.Errorf("failed to marshal trigger config: %w", err)
	}

	query := `
		INSERT INTO workflows (id, name, description, version, trigger_type, trigger_config, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			version = EXCLUDED.version,
			trigger_type = EXCLUDED.trigger_type,
			trigger_config = EXCLUDED.trigger_config,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		workflow.Version,
		workflow.TriggerType,
		triggerConfigJSON,
		workflow.Active,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	return nil
}

// StepsByWorkflowID returns steps ordered by declared order, ties broken by
// insertion order.
func (r *WorkflowRepository) StepsByWorkflowID(ctx context.Context, workflowID string) ([]*models.WorkflowStep, error) {
	query := `
		SELECT
			id
		  , workflow_id
		  , name
		  , step_order
		  , step_type
		  , configuration
		  , conditions
		  , on_success
		  , on_failure
		  , retry_count
		  , retry_delay_seconds
		  , timeout_seconds
		FROM workflow_steps
		WHERE workflow_id = $1
		ORDER BY step_order ASC, inserted_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow steps: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	steps := make([]*models.WorkflowStep, 0)

	for rows.Next() {
		var (
			step              models.WorkflowStep
			configurationJSON []byte
			conditionsJSON    []byte
		)

		err := rows.Scan(
			&step.ID,
			&step.WorkflowID,
			&step.Name,
			&step.Order,
			&step.Type,
			&configurationJSON,
			&conditionsJSON,
			&step.OnSuccess,
			&step.OnFailure,
			&step.RetryCount,
			&step.RetryDelaySeconds,
			&step.TimeoutSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow step: %w", err)
		}

		err = json.Unmarshal(configurationJSON, &step.Configuration)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal step configuration: %w", err)
		}

		err = json.Unmarshal(conditionsJSON, &step.Conditions)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal step conditions: %w", err)
		}

		steps = append(steps, &step)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflow steps: %w", err)
	}

	return steps, nil
}

// SaveStep inserts or updates one workflow step.
func (r *WorkflowRepository) SaveStep(ctx context.Context, step *models.WorkflowStep) error {
	if step.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate step ID: %w", err)
		}

		step.ID = id.String()
	}

	configurationJSON, err := json.Marshal(orEmptyMap(step.Configuration))
	if err != nil {
		return fmt.Errorf("failed to marshal step configuration: %w", err)
	}

	conditions := step.Conditions
	if conditions == nil {
		conditions = []models.Condition{}
	}

	conditionsJSON, err := json.Marshal(conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal step conditions: %w", err)
	}

	query := `
		INSERT INTO workflow_steps (id, workflow_id, name, step_order, step_type, configuration, conditions,
			on_success, on_failure, retry_count, retry_delay_seconds, timeout_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			step_order = EXCLUDED.step_order,
			step_type = EXCLUDED.step_type,
			configuration = EXCLUDED.configuration,
			conditions = EXCLUDED.conditions,
			on_success = EXCLUDED.on_success,
			on_failure = EXCLUDED.on_failure,
			retry_count = EXCLUDED.retry_count,
			retry_delay_seconds = EXCLUDED.retry_delay_seconds,
			timeout_seconds = EXCLUDED.timeout_seconds
	`

	_, err = r.db.ExecContext(ctx, query,
		step.ID,
		step.WorkflowID,
		step.Name,
		step.Order,
		step.Type,
		configurationJSON,
		conditionsJSON,
		step.OnSuccess,
		step.OnFailure,
		step.RetryCount,
		step.RetryDelaySeconds,
		step.TimeoutSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow step: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow          models.Workflow
		triggerConfigJSON []byte
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&workflow.Version,
		&workflow.TriggerType,
		&triggerConfigJSON,
		&workflow.Active,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(triggerConfigJSON, &workflow.TriggerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger config: %w", err)
	}

	return &workflow, nil
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return m
}
