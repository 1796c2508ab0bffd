package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name     TEXT NOT NULL,
		role          TEXT NOT NULL
		              CHECK(role IN ('employee','department_head','department_admin','admin','super_admin')),
		active        INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		token       TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		csrf_token  TEXT NOT NULL,
		expires_at  TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_employee ON sessions(employee_id)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id               TEXT PRIMARY KEY,
		code             TEXT NOT NULL UNIQUE,
		name             TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT 'Draft'
		                 CHECK(status IN ('Draft','For Approval','Approved','Ongoing','Delayed','On-hold','Completed','Cancelled')),
		priority         TEXT NOT NULL DEFAULT 'Medium'
		                 CHECK(priority IN ('Low','Medium','High','Critical')),
		budget           REAL NOT NULL DEFAULT 0 CHECK(budget >= 0),
		district         TEXT NOT NULL DEFAULT '',
		barangay         TEXT NOT NULL DEFAULT '',
		approved_by      TEXT,
		approved_at      TEXT,
		rejection_reason TEXT NOT NULL DEFAULT '',
		start_date       TEXT,
		end_date         TEXT,
		created_by       TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_district ON projects(district)`,

	// One review row per project: the PRIMARY KEY makes upsert semantics
	// deterministic (last writer wins).
	`CREATE TABLE IF NOT EXISTS decision_reviews (
		project_id      TEXT PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		decision_status TEXT NOT NULL DEFAULT 'Pending'
		                CHECK(decision_status IN ('Pending','Approved','Rejected')),
		decision_note   TEXT NOT NULL DEFAULT '',
		decided_by      TEXT NOT NULL,
		decided_at      TEXT NOT NULL
	)`,

	// Append-only audit trail. project_id intentionally has no foreign key:
	// decision history must survive project deletion.
	`CREATE TABLE IF NOT EXISTS decision_logs (
		id            TEXT PRIMARY KEY,
		project_id    TEXT NOT NULL,
		decision_type TEXT NOT NULL,
		notes         TEXT NOT NULL DEFAULT '',
		decided_by    TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_decision_logs_project ON decision_logs(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_decision_logs_created ON decision_logs(created_at)`,

	// Optional satellite tables. The monitoring projection probes for these
	// at startup and degrades gracefully when a deployment lacks them.
	`CREATE TABLE IF NOT EXISTS progress_updates (
		id           TEXT PRIMARY KEY,
		project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		progress_pct REAL NOT NULL CHECK(progress_pct >= 0 AND progress_pct <= 100),
		note         TEXT NOT NULL DEFAULT '',
		reported_by  TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_progress_updates_project ON progress_updates(project_id)`,

	`CREATE TABLE IF NOT EXISTS engineers (
		id        TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		license   TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS contractors (
		id           TEXT PRIMARY KEY,
		company_name TEXT NOT NULL,
		contact      TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS project_assignments (
		project_id    TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		engineer_id   TEXT REFERENCES engineers(id) ON DELETE SET NULL,
		contractor_id TEXT REFERENCES contractors(id) ON DELETE SET NULL,
		PRIMARY KEY (project_id)
	)`,
}
