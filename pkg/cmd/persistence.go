// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/contractpulse/pulse/pkg/persistence"
	"github.com/contractpulse/pulse/pkg/persistence/file"
	"github.com/contractpulse/pulse/pkg/persistence/postgresql"
)

// NewPersistence selects the backend from the database URL scheme. Postgres
// URLs get the SQL store; anything else falls back to file persistence.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	}

	return file.NewPersistence(databaseURL), nil
}
