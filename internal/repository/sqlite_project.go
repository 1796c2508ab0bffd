package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelardo/infratrack/internal/db"
	"github.com/avelardo/infratrack/internal/domain"
)

// projectColumns is the canonical SELECT column list for projects.
const projectColumns = `id, code, name, description, status, priority, budget,
		district, barangay, approved_by, approved_at, rejection_reason,
		start_date, end_date, created_by, created_at, updated_at`

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Code,
		p.Name,
		p.Description,
		string(p.Status),
		string(p.Priority),
		p.Budget,
		p.District,
		p.Barangay,
		nullableString(p.ApprovedBy),
		nullableTimeToString(p.ApprovedAt, time.RFC3339),
		p.RejectionReason,
		nullableTimeToString(p.StartDate, dateLayout),
		nullableTimeToString(p.EndDate, dateLayout),
		p.CreatedBy,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	return scanProjectRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteProjectRepo) GetByCode(ctx context.Context, code string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE UPPER(code) = UPPER(?)`
	return scanProjectRow(r.db.QueryRowContext(ctx, query, code))
}

func (r *SQLiteProjectRepo) ListByStatus(ctx context.Context, status domain.ProjectStatus) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE status = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProjectRows(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) ListQueue(ctx context.Context, mode QueueMode, search string) ([]QueueRow, error) {
	query := `SELECT ` + aliasProjectColumns("p") + `,
			dr.decision_status, dr.decision_note, dr.decided_by, dr.decided_at
		FROM projects p
		LEFT JOIN decision_reviews dr ON dr.project_id = p.id`

	var where []string
	var args []any
	switch mode {
	case QueueReviewed:
		where = append(where, `dr.decision_status IN ('Approved','Rejected')`)
	default:
		// Pending: submitted for approval with no final verdict yet.
		where = append(where, `p.status = 'For Approval'`)
		where = append(where, `(dr.decision_status IS NULL OR dr.decision_status = 'Pending')`)
	}
	if search != "" {
		where = append(where, `(p.name LIKE ? OR p.code LIKE ? OR p.barangay LIKE ?)`)
		like := "%" + search + "%"
		args = append(args, like, like, like)
	}
	query += " WHERE " + joinAnd(where) + " ORDER BY p.created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing review queue: %w", err)
	}
	defer rows.Close()

	var out []QueueRow
	for rows.Next() {
		var qr QueueRow
		var p domain.Project
		var statusStr, priorityStr, createdAtStr, updatedAtStr string
		var approvedBy, approvedAt, startDate, endDate sql.NullString
		var decStatus, decNote, decBy, decAt sql.NullString

		err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.Description, &statusStr, &priorityStr, &p.Budget,
			&p.District, &p.Barangay, &approvedBy, &approvedAt, &p.RejectionReason,
			&startDate, &endDate, &p.CreatedBy, &createdAtStr, &updatedAtStr,
			&decStatus, &decNote, &decBy, &decAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning queue row: %w", err)
		}
		if err := finishProjectScan(&p, statusStr, priorityStr, approvedBy, approvedAt, startDate, endDate, createdAtStr, updatedAtStr); err != nil {
			return nil, err
		}
		qr.Project = p
		if decStatus.Valid {
			ds := domain.DecisionStatus(decStatus.String)
			qr.DecisionStatus = &ds
			qr.DecisionNote = decNote.String
			qr.DecidedBy = decBy.String
			qr.DecidedAt = parseNullableTime(decAt, time.RFC3339)
		}
		out = append(out, qr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating queue rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET code = ?, name = ?, description = ?, status = ?, priority = ?,
			budget = ?, district = ?, barangay = ?, approved_by = ?, approved_at = ?,
			rejection_reason = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		p.Code,
		p.Name,
		p.Description,
		string(p.Status),
		string(p.Priority),
		p.Budget,
		p.District,
		p.Barangay,
		nullableString(p.ApprovedBy),
		nullableTimeToString(p.ApprovedAt, time.RFC3339),
		p.RejectionReason,
		nullableTimeToString(p.StartDate, dateLayout),
		nullableTimeToString(p.EndDate, dateLayout),
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) SetPriorityIfApproved(ctx context.Context, projectID string, level domain.PriorityLevel) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `UPDATE projects SET priority = ?, updated_at = ?
		WHERE id = ? AND LOWER(status) = 'approved'`
	res, err := r.db.ExecContext(ctx, query, string(level), now, projectID)
	if err != nil {
		return 0, fmt.Errorf("setting project priority: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return affected, nil
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

// scanProjectRow scans a single project row from a *sql.Row.
func scanProjectRow(row *sql.Row) (*domain.Project, error) {
	var p domain.Project
	var statusStr, priorityStr, createdAtStr, updatedAtStr string
	var approvedBy, approvedAt, startDate, endDate sql.NullString

	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &statusStr, &priorityStr, &p.Budget,
		&p.District, &p.Barangay, &approvedBy, &approvedAt, &p.RejectionReason,
		&startDate, &endDate, &p.CreatedBy, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	if err := finishProjectScan(&p, statusStr, priorityStr, approvedBy, approvedAt, startDate, endDate, createdAtStr, updatedAtStr); err != nil {
		return nil, err
	}
	return &p, nil
}

// scanProjectRows scans a single project row from *sql.Rows.
func scanProjectRows(rows *sql.Rows) (*domain.Project, error) {
	var p domain.Project
	var statusStr, priorityStr, createdAtStr, updatedAtStr string
	var approvedBy, approvedAt, startDate, endDate sql.NullString

	err := rows.Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &statusStr, &priorityStr, &p.Budget,
		&p.District, &p.Barangay, &approvedBy, &approvedAt, &p.RejectionReason,
		&startDate, &endDate, &p.CreatedBy, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning project row: %w", err)
	}
	if err := finishProjectScan(&p, statusStr, priorityStr, approvedBy, approvedAt, startDate, endDate, createdAtStr, updatedAtStr); err != nil {
		return nil, err
	}
	return &p, nil
}

func finishProjectScan(p *domain.Project, statusStr, priorityStr string,
	approvedBy, approvedAt, startDate, endDate sql.NullString,
	createdAtStr, updatedAtStr string) error {

	p.Status = domain.ProjectStatus(statusStr)
	p.Priority = domain.PriorityLevel(priorityStr)

	if approvedBy.Valid && approvedBy.String != "" {
		s := approvedBy.String
		p.ApprovedBy = &s
	}
	p.ApprovedAt = parseNullableTime(approvedAt, time.RFC3339)
	p.StartDate = parseNullableTime(startDate, dateLayout)
	p.EndDate = parseNullableTime(endDate, dateLayout)

	var parseErr error
	p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return fmt.Errorf("parsing created_at: %w", parseErr)
	}
	p.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return nil
}

// aliasProjectColumns prefixes the canonical project column list for joins.
func aliasProjectColumns(alias string) string {
	return alias + `.id, ` + alias + `.code, ` + alias + `.name, ` + alias + `.description, ` +
		alias + `.status, ` + alias + `.priority, ` + alias + `.budget, ` +
		alias + `.district, ` + alias + `.barangay, ` + alias + `.approved_by, ` +
		alias + `.approved_at, ` + alias + `.rejection_reason, ` + alias + `.start_date, ` +
		alias + `.end_date, ` + alias + `.created_by, ` + alias + `.created_at, ` + alias + `.updated_at`
}

func joinAnd(conds []string) string {
	out := ""
	for i, c := range conds {
		if i > 0 {
			out += " AND "
		}
		out += c
	}
	return out
}
