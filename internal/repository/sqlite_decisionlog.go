package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/avelardo/infratrack/internal/db"
	"github.com/avelardo/infratrack/internal/domain"
)

// SQLiteDecisionLogRepo implements DecisionLogRepo using a SQLite database.
// The table is append-only: this repo exposes no update or delete.
type SQLiteDecisionLogRepo struct {
	db db.DBTX
}

// NewSQLiteDecisionLogRepo creates a new SQLiteDecisionLogRepo.
func NewSQLiteDecisionLogRepo(conn db.DBTX) *SQLiteDecisionLogRepo {
	return &SQLiteDecisionLogRepo{db: conn}
}

func (r *SQLiteDecisionLogRepo) Append(ctx context.Context, l *domain.DecisionLog) error {
	query := `INSERT INTO decision_logs (id, project_id, decision_type, notes, decided_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		l.ID,
		l.ProjectID,
		l.Type,
		l.Notes,
		l.DecidedBy,
		l.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending decision log: %w", err)
	}
	return nil
}

func (r *SQLiteDecisionLogRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.DecisionLog, error) {
	query := `SELECT id, project_id, decision_type, notes, decided_by, created_at
		FROM decision_logs WHERE project_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing decision logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.DecisionLog
	for rows.Next() {
		var l domain.DecisionLog
		var createdAtStr string
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.Type, &l.Notes, &l.DecidedBy, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning decision log: %w", err)
		}
		l.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decision logs: %w", err)
	}
	return logs, nil
}

func (r *SQLiteDecisionLogRepo) ListRecent(ctx context.Context, limit int) ([]DecisionLogView, error) {
	if limit <= 0 {
		limit = 100
	}
	// LEFT JOINs: the trail outlives deleted projects and employees.
	query := `SELECT l.id, l.project_id, l.decision_type, l.notes, l.decided_by, l.created_at,
			COALESCE(p.code, ''), COALESCE(p.name, ''), COALESCE(e.full_name, '')
		FROM decision_logs l
		LEFT JOIN projects p ON p.id = l.project_id
		LEFT JOIN employees e ON e.id = l.decided_by
		ORDER BY l.created_at DESC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent decision logs: %w", err)
	}
	defer rows.Close()

	var views []DecisionLogView
	for rows.Next() {
		var v DecisionLogView
		var createdAtStr string
		if err := rows.Scan(&v.Log.ID, &v.Log.ProjectID, &v.Log.Type, &v.Log.Notes,
			&v.Log.DecidedBy, &createdAtStr, &v.ProjectCode, &v.ProjectName, &v.DeciderName); err != nil {
			return nil, fmt.Errorf("scanning decision log view: %w", err)
		}
		v.Log.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decision log views: %w", err)
	}
	return views, nil
}
