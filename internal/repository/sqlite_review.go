package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelardo/infratrack/internal/db"
	"github.com/avelardo/infratrack/internal/domain"
)

// SQLiteReviewRepo implements ReviewRepo using a SQLite database.
type SQLiteReviewRepo struct {
	db db.DBTX
}

// NewSQLiteReviewRepo creates a new SQLiteReviewRepo.
func NewSQLiteReviewRepo(conn db.DBTX) *SQLiteReviewRepo {
	return &SQLiteReviewRepo{db: conn}
}

func (r *SQLiteReviewRepo) Upsert(ctx context.Context, rev *domain.DecisionReview) error {
	query := `INSERT INTO decision_reviews (project_id, decision_status, decision_note, decided_by, decided_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			decision_status = excluded.decision_status,
			decision_note   = excluded.decision_note,
			decided_by      = excluded.decided_by,
			decided_at      = excluded.decided_at`
	_, err := r.db.ExecContext(ctx, query,
		rev.ProjectID,
		string(rev.Status),
		rev.Note,
		rev.DecidedBy,
		rev.DecidedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting decision review: %w", err)
	}
	return nil
}

func (r *SQLiteReviewRepo) GetByProject(ctx context.Context, projectID string) (*domain.DecisionReview, error) {
	query := `SELECT project_id, decision_status, decision_note, decided_by, decided_at
		FROM decision_reviews WHERE project_id = ?`
	row := r.db.QueryRowContext(ctx, query, projectID)

	var rev domain.DecisionReview
	var statusStr, decidedAtStr string
	err := row.Scan(&rev.ProjectID, &statusStr, &rev.Note, &rev.DecidedBy, &decidedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("decision review: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning decision review: %w", err)
	}
	rev.Status = domain.DecisionStatus(statusStr)
	rev.DecidedAt, err = time.Parse(time.RFC3339, decidedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing decided_at: %w", err)
	}
	return &rev, nil
}
