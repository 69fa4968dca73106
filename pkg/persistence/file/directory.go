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
	profileCollection  = "profiles"
	taskCollection     = "onboarding_tasks"
	documentCollection = "documents"
)

// DirectoryRepository stores profiles, tasks and documents as JSON files.
type DirectoryRepository struct {
	persistence *Persistence
}

func (r *DirectoryRepository) ProfileByID(_ context.Context, id string) (*models.Profile, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	var profile models.Profile

	err := r.persistence.readDocument(profileCollection, id, &profile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewStoreError("ProfileByID", id, persistence.ErrProfileNotFound)
		}

		return nil, err
	}

	return &profile, nil
}

func (r *DirectoryRepository) SaveProfile(_ context.Context, profile *models.Profile) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	return r.persistence.writeDocument(profileCollection, profile.ID, profile)
}

func (r *DirectoryRepository) CreateOnboardingTasks(_ context.Context, tasks []*models.OnboardingTask) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	for _, task := range tasks {
		if task.ID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate task ID: %w", err)
			}

			task.ID = id.String()
		}

		if task.CreatedAt.IsZero() {
			task.CreatedAt = time.Now().UTC()
		}

		if task.Status == "" {
			task.Status = "pending"
		}

		err := r.persistence.writeDocument(taskCollection, task.ID, task)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *DirectoryRepository) OverdueTasks(_ context.Context, before time.Time) ([]*models.OnboardingTask, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	ids, err := r.persistence.listDocuments(taskCollection)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.OnboardingTask, 0)

	for _, id := range ids {
		var task models.OnboardingTask

		err := r.persistence.readDocument(taskCollection, id, &task)
		if err != nil {
			return nil, err
		}

		if task.Status == "pending" && task.DueDate != nil && task.DueDate.Before(before) {
			tasks = append(tasks, &task)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})

	return tasks, nil
}

func (r *DirectoryRepository) DocumentByID(_ context.Context, id string) (*models.Document, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	return r.readDocumentRow(id)
}

func (r *DirectoryRepository) SaveDocument(_ context.Context, document *models.Document) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	document.UpdatedAt = time.Now().UTC()

	return r.persistence.writeDocument(documentCollection, document.ID, document)
}

func (r *DirectoryRepository) UpdateDocumentStatus(_ context.Context, id, status string) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	document, err := r.readDocumentRow(id)
	if err != nil {
		return err
	}

	document.Status = status
	document.UpdatedAt = time.Now().UTC()

	return r.persistence.writeDocument(documentCollection, id, document)
}

func (r *DirectoryRepository) readDocumentRow(id string) (*models.Document, error) {
	var document models.Document

	err := r.persistence.readDocument(documentCollection, id, &document)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewStoreError("DocumentByID", id, persistence.ErrDocumentNotFound)
		}

		return nil, err
	}

	return &document, nil
}
