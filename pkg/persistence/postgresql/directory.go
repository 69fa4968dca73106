package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
)

// DirectoryRepository handles profiles, onboarding tasks and documents.
type DirectoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDirectoryRepository creates a new directory repository.
func NewDirectoryRepository(db *sql.DB, logger *slog.Logger) *DirectoryRepository {
	return &DirectoryRepository{db: db, logger: logger}
}

// ProfileByID returns one profile row.
func (r *DirectoryRepository) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT id, role, full_name, email, phone FROM profiles WHERE id = $1`

	var profile models.Profile

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.Role,
		&profile.FullName,
		&profile.Email,
		&profile.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("ProfileByID", id, persistence.ErrProfileNotFound)
		}

		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	return &profile, nil
}

// SaveProfile inserts or updates a profile.
func (r *DirectoryRepository) SaveProfile(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, role, full_name, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			role = EXCLUDED.role,
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.Role,
		profile.FullName,
		profile.Email,
		profile.Phone,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// CreateOnboardingTasks bulk-inserts task rows. Each insert is an independent
// statement; there is no surrounding transaction.
func (r *DirectoryRepository) CreateOnboardingTasks(ctx context.Context, tasks []*models.OnboardingTask) error {
	query := `
		INSERT INTO onboarding_tasks (id, employee_id, title, status, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

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

		_, err := r.db.ExecContext(ctx, query,
			task.ID,
			task.EmployeeID,
			task.Title,
			task.Status,
			task.DueDate,
			task.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert onboarding task: %w", err)
		}
	}

	return nil
}

// OverdueTasks returns pending tasks whose due date is before the cutoff.
func (r *DirectoryRepository) OverdueTasks(ctx context.Context, before time.Time) ([]*models.OnboardingTask, error) {
	query := `
		SELECT
			id
		  , employee_id
		  , title
		  , status
		  , due_date
		  , created_at
		FROM onboarding_tasks
		WHERE status = 'pending' AND due_date IS NOT NULL AND due_date < $1
		ORDER BY due_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue tasks: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	tasks := make([]*models.OnboardingTask, 0)

	for rows.Next() {
		var task models.OnboardingTask

		err := rows.Scan(
			&task.ID,
			&task.EmployeeID,
			&task.Title,
			&task.Status,
			&task.DueDate,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan onboarding task: %w", err)
		}

		tasks = append(tasks, &task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating onboarding tasks: %w", err)
	}

	return tasks, nil
}

// DocumentByID returns one document row.
func (r *DirectoryRepository) DocumentByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT id, name, status, updated_at FROM documents WHERE id = $1`

	var document models.Document

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&document.ID,
		&document.Name,
		&document.Status,
		&document.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("DocumentByID", id, persistence.ErrDocumentNotFound)
		}

		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	return &document, nil
}

// SaveDocument inserts or updates a document.
func (r *DirectoryRepository) SaveDocument(ctx context.Context, document *models.Document) error {
	document.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO documents (id, name, status, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		document.ID,
		document.Name,
		document.Status,
		document.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// UpdateDocumentStatus flips the status field of one document.
func (r *DirectoryRepository) UpdateDocumentStatus(ctx context.Context, id, status string) error {
	query := `UPDATE documents SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return persistence.NewStoreError("UpdateDocumentStatus", id, persistence.ErrDocumentNotFound)
	}

	return nil
}
