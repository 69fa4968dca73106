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

const (
	workflowCollection = "workflows"
)

// workflowDocument is the on-disk shape: a workflow and its steps in one file.
type workflowDocument struct {
	Workflow *models.Workflow       `json:"workflow"`
	Steps    []*models.WorkflowStep `json:"steps"`
}

// WorkflowRepository stores workflows as JSON documents, steps embedded.
type WorkflowRepository struct {
	persistence *Persistence
}

func (r *WorkflowRepository) Workflows(_ context.Context) ([]*models.Workflow, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	ids, err := r.persistence.listDocuments(workflowCollection)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		var doc workflowDocument

		err := r.persistence.readDocument(workflowCollection, id, &doc)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, doc.Workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (r *WorkflowRepository) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	doc, err := r.readWorkflowDocument(id)
	if err != nil {
		return nil, err
	}

	return doc.Workflow, nil
}

func (r *WorkflowRepository) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

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

	doc, err := r.readWorkflowDocument(workflow.ID)
	if err != nil {
		if !persistence.IsWorkflowNotFound(err) {
			return err
		}

		doc = &workflowDocument{Steps: []*models.WorkflowStep{}}
	}

	doc.Workflow = workflow

	return r.persistence.writeDocument(workflowCollection, workflow.ID, doc)
}

func (r *WorkflowRepository) StepsByWorkflowID(_ context.Context, workflowID string) ([]*models.WorkflowStep, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	doc, err := r.readWorkflowDocument(workflowID)
	if err != nil {
		return nil, err
	}

	steps := make([]*models.WorkflowStep, len(doc.Steps))
	copy(steps, doc.Steps)

	// Stable sort preserves insertion order for equal step orders.
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})

	return steps, nil
}

func (r *WorkflowRepository) SaveStep(_ context.Context, step *models.WorkflowStep) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	doc, err := r.readWorkflowDocument(step.WorkflowID)
	if err != nil {
		return err
	}

	if step.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate step ID: %w", err)
		}

		step.ID = id.String()
	}

	replaced := false

	for i, existing := range doc.Steps {
		if existing.ID == step.ID {
			doc.Steps[i] = step
			replaced = true

			break
		}
	}

	if !replaced {
		doc.Steps = append(doc.Steps, step)
	}

	return r.persistence.writeDocument(workflowCollection, step.WorkflowID, doc)
}

func (r *WorkflowRepository) readWorkflowDocument(id string) (*workflowDocument, error) {
	var doc workflowDocument

	err := r.persistence.readDocument(workflowCollection, id, &doc)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewStoreError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, err
	}

	return &doc, nil
}
