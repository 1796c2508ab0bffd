package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelardo/infratrack/internal/db"
	"github.com/avelardo/infratrack/internal/domain"
)

// SQLiteMonitoringRepo implements the read-only monitoring projection.
// The join shape is decided once, from the SchemaCapabilities resolved at
// startup: deployments without the optional progress or assignment modules
// get NULL placeholder columns instead of failed queries.
type SQLiteMonitoringRepo struct {
	db   db.DBTX
	caps db.SchemaCapabilities
}

// NewSQLiteMonitoringRepo creates a new SQLiteMonitoringRepo.
func NewSQLiteMonitoringRepo(conn db.DBTX, caps db.SchemaCapabilities) *SQLiteMonitoringRepo {
	return &SQLiteMonitoringRepo{db: conn, caps: caps}
}

const latestProgressExpr = `(SELECT pu.progress_pct FROM progress_updates pu
		WHERE pu.project_id = p.id ORDER BY pu.created_at DESC, pu.id DESC LIMIT 1)`

const engineerNameExpr = `(SELECT e.full_name FROM project_assignments a
		JOIN engineers e ON e.id = a.engineer_id WHERE a.project_id = p.id LIMIT 1)`

const contractorNameExpr = `(SELECT c.company_name FROM project_assignments a
		JOIN contractors c ON c.id = a.contractor_id WHERE a.project_id = p.id LIMIT 1)`

func (r *SQLiteMonitoringRepo) progressColumn() string {
	if r.caps.HasProgressUpdates {
		return latestProgressExpr
	}
	return "NULL"
}

func (r *SQLiteMonitoringRepo) engineerColumn() string {
	if r.caps.HasAssignments && r.caps.HasEngineers {
		return engineerNameExpr
	}
	return "NULL"
}

func (r *SQLiteMonitoringRepo) contractorColumn() string {
	if r.caps.HasAssignments && r.caps.HasContractors {
		return contractorNameExpr
	}
	return "NULL"
}

func (r *SQLiteMonitoringRepo) List(ctx context.Context, f MonitoringFilter, now time.Time) ([]MonitoringRow, error) {
	query := `SELECT p.id, p.code, p.name, p.status, p.priority, p.budget,
			p.district, p.barangay, p.start_date, p.end_date,
			` + r.progressColumn() + `,
			` + r.engineerColumn() + `,
			` + r.contractorColumn() + `
		FROM projects p`

	where := []string{"1 = 1"}
	var args []any
	if f.Search != "" {
		where = append(where, `(p.name LIKE ? OR p.code LIKE ? OR p.barangay LIKE ?)`)
		like := "%" + f.Search + "%"
		args = append(args, like, like, like)
	}
	if f.Status != "" {
		where = append(where, `LOWER(p.status) = LOWER(?)`)
		args = append(args, f.Status)
	}
	if f.District != "" {
		where = append(where, `p.district = ?`)
		args = append(args, f.District)
	}
	if f.Barangay != "" {
		where = append(where, `p.barangay = ?`)
		args = append(args, f.Barangay)
	}
	if f.Priority != "" {
		where = append(where, `LOWER(p.priority) = LOWER(?)`)
		args = append(args, f.Priority)
	}
	if f.Engineer != "" && r.caps.HasAssignments && r.caps.HasEngineers {
		where = append(where, engineerNameExpr+` LIKE ?`)
		args = append(args, "%"+f.Engineer+"%")
	}
	if f.Contractor != "" && r.caps.HasAssignments && r.caps.HasContractors {
		where = append(where, contractorNameExpr+` LIKE ?`)
		args = append(args, "%"+f.Contractor+"%")
	}
	query += " WHERE " + joinAnd(where) + " ORDER BY p.created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying monitoring projection: %w", err)
	}
	defer rows.Close()

	var out []MonitoringRow
	for rows.Next() {
		var m MonitoringRow
		var statusStr, priorityStr string
		var startDate, endDate sql.NullString
		var progress sql.NullFloat64
		var engineer, contractor sql.NullString

		err := rows.Scan(&m.ProjectID, &m.Code, &m.Name, &statusStr, &priorityStr, &m.Budget,
			&m.District, &m.Barangay, &startDate, &endDate, &progress, &engineer, &contractor)
		if err != nil {
			return nil, fmt.Errorf("scanning monitoring row: %w", err)
		}

		m.Status = domain.ProjectStatus(statusStr)
		m.Priority = domain.PriorityLevel(priorityStr)
		m.StartDate = parseNullableTime(startDate, dateLayout)
		m.EndDate = parseNullableTime(endDate, dateLayout)
		if progress.Valid {
			pct := progress.Float64
			m.ProgressPct = &pct
		}
		if engineer.Valid && engineer.String != "" {
			name := engineer.String
			m.EngineerName = &name
		}
		if contractor.Valid && contractor.String != "" {
			name := contractor.String
			m.ContractorName = &name
		}
		m.IsDelayed = m.EndDate != nil && m.EndDate.Before(now) && !m.Status.IsTerminal()

		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monitoring rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteMonitoringRepo) SummaryByStatus(ctx context.Context) ([]StatusCount, error) {
	return r.summary(ctx, `SELECT status, COUNT(*), COALESCE(SUM(budget), 0) FROM projects GROUP BY status ORDER BY status`)
}

func (r *SQLiteMonitoringRepo) SummaryByDistrict(ctx context.Context) ([]StatusCount, error) {
	return r.summary(ctx, `SELECT district, COUNT(*), COALESCE(SUM(budget), 0) FROM projects GROUP BY district ORDER BY district`)
}

func (r *SQLiteMonitoringRepo) SummaryByPriority(ctx context.Context) ([]StatusCount, error) {
	return r.summary(ctx, `SELECT priority, COUNT(*), COALESCE(SUM(budget), 0) FROM projects GROUP BY priority ORDER BY priority`)
}

func (r *SQLiteMonitoringRepo) summary(ctx context.Context, query string) ([]StatusCount, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying summary: %w", err)
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Key, &c.Count, &c.Budget); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary rows: %w", err)
	}
	return out, nil
}
