package file

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
)

const executionCollection = "executions"

// executionDocument holds one run and its append-only step history.
type executionDocument struct {
	Execution      *models.WorkflowExecution       `json:"execution"`
	StepExecutions []*models.WorkflowStepExecution `json:"step_executions"`
}

// ExecutionRepository stores runs as JSON documents, step rows embedded.
type ExecutionRepository struct {
	persistence *Persistence
}

func (r *ExecutionRepository) CreateExecution(_ context.Context, execution *models.WorkflowExecution) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

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

	doc := &executionDocument{
		Execution:      execution,
		StepExecutions: []*models.WorkflowStepExecution{},
	}

	return r.persistence.writeDocument(executionCollection, execution.ID, doc)
}

func (r *ExecutionRepository) UpdateExecution(_ context.Context, execution *models.WorkflowExecution) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	doc, err := r.readExecutionDocument(execution.ID)
	if err != nil {
		return err
	}

	doc.Execution = execution

	return r.persistence.writeDocument(executionCollection, execution.ID, doc)
}

func (r *ExecutionRepository) ExecutionByID(_ context.Context, id string) (*models.WorkflowExecution, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	doc, err := r.readExecutionDocument(id)
	if err != nil {
		return nil, err
	}

	return doc.Execution, nil
}

func (r *ExecutionRepository) ExecutionsByWorkflowID(_ context.Context, workflowID string) ([]*models.WorkflowExecution, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	ids, err := r.persistence.listDocuments(executionCollection)
	if err != nil {
		return nil, err
	}

	executions := make([]*models.WorkflowExecution, 0)

	for _, id := range ids {
		doc, err := r.readExecutionDocument(id)
		if err != nil {
			return nil, err
		}

		if doc.Execution.WorkflowID == workflowID {
			executions = append(executions, doc.Execution)
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	return executions, nil
}

func (r *ExecutionRepository) CreateStepExecution(_ context.Context, stepExecution *models.WorkflowStepExecution) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

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

	doc, err := r.readExecutionDocument(stepExecution.ExecutionID)
	if err != nil {
		return err
	}

	doc.StepExecutions = append(doc.StepExecutions, stepExecution)

	return r.persistence.writeDocument(executionCollection, stepExecution.ExecutionID, doc)
}

func (r *ExecutionRepository) StepExecutionsByExecutionID(_ context.Context, executionID string) ([]*models.WorkflowStepExecution, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	doc, err := r.readExecutionDocument(executionID)
	if err != nil {
		return nil, err
	}

	stepExecutions := make([]*models.WorkflowStepExecution, len(doc.StepExecutions))
	copy(stepExecutions, doc.StepExecutions)

	return stepExecutions, nil
}

func (r *ExecutionRepository) readExecutionDocument(id string) (*executionDocument, error) {
	var doc executionDocument

	err := r.persistence.readDocument(executionCollection, id, &doc)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewStoreError("ExecutionByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, err
	}

	return &doc, nil
}
