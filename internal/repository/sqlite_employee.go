package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelardo/infratrack/internal/db"
	"github.com/avelardo/infratrack/internal/domain"
)

const employeeColumns = `id, username, password_hash, full_name, role, active, created_at, updated_at`

// SQLiteEmployeeRepo implements EmployeeRepo using a SQLite database.
type SQLiteEmployeeRepo struct {
	db db.DBTX
}

// NewSQLiteEmployeeRepo creates a new SQLiteEmployeeRepo.
func NewSQLiteEmployeeRepo(conn db.DBTX) *SQLiteEmployeeRepo {
	return &SQLiteEmployeeRepo{db: conn}
}

func (r *SQLiteEmployeeRepo) Create(ctx context.Context, e *domain.Employee) error {
	query := `INSERT INTO employees (` + employeeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.Username,
		e.PasswordHash,
		e.FullName,
		string(e.Role),
		boolToInt(e.Active),
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting employee: %w", err)
	}
	return nil
}

func (r *SQLiteEmployeeRepo) Update(ctx context.Context, e *domain.Employee) error {
	query := `UPDATE employees SET username = ?, password_hash = ?, full_name = ?, role = ?,
			active = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		e.Username,
		e.PasswordHash,
		e.FullName,
		string(e.Role),
		boolToInt(e.Active),
		e.UpdatedAt.Format(time.RFC3339),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating employee: %w", err)
	}
	return nil
}

func (r *SQLiteEmployeeRepo) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ?`
	return r.scanEmployee(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteEmployeeRepo) GetByUsername(ctx context.Context, username string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE username = ?`
	return r.scanEmployee(r.db.QueryRowContext(ctx, query, username))
}

func (r *SQLiteEmployeeRepo) scanEmployee(row *sql.Row) (*domain.Employee, error) {
	var e domain.Employee
	var roleStr, createdAtStr, updatedAtStr string
	var active int

	err := row.Scan(&e.ID, &e.Username, &e.PasswordHash, &e.FullName, &roleStr, &active, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("employee: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning employee: %w", err)
	}

	e.Role = domain.Role(roleStr)
	e.Active = active != 0

	var parseErr error
	e.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	e.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &e, nil
}
