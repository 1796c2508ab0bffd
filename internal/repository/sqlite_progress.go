package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/avelardo/infratrack/internal/db"
	"github.com/google/uuid"
)

// SQLiteProgressRepo implements ProgressRepo using a SQLite database.
type SQLiteProgressRepo struct {
	db db.DBTX
}

// NewSQLiteProgressRepo creates a new SQLiteProgressRepo.
func NewSQLiteProgressRepo(conn db.DBTX) *SQLiteProgressRepo {
	return &SQLiteProgressRepo{db: conn}
}

func (r *SQLiteProgressRepo) Create(ctx context.Context, projectID string, pct float64, note, reportedBy string) error {
	query := `INSERT INTO progress_updates (id, project_id, progress_pct, note, reported_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(),
		projectID,
		pct,
		note,
		reportedBy,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting progress update: %w", err)
	}
	return nil
}
