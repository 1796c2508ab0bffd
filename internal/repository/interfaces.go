package repository

import (
	"context"
	"time"

	"github.com/avelardo/infratrack/internal/domain"
)

// QueueMode selects which review queue to load.
type QueueMode string

const (
	QueuePending  QueueMode = "pending"
	QueueReviewed QueueMode = "reviewed"
)

// QueueRow is a project joined with its current decision, as shown in the
// department-head review queue.
type QueueRow struct {
	Project        domain.Project
	DecisionStatus *domain.DecisionStatus
	DecisionNote   string
	DecidedBy      string
	DecidedAt      *time.Time
}

// DecisionLogView is a decision log entry joined with display names.
// Deleted projects and employees show up with empty names; the log row
// itself is never lost.
type DecisionLogView struct {
	Log         domain.DecisionLog
	ProjectCode string
	ProjectName string
	DeciderName string
}

// MonitoringRow is the read-only projection row for dashboards and risk
// scans. Pointer fields are nil when the optional satellite module that
// produces them is absent.
type MonitoringRow struct {
	ProjectID      string
	Code           string
	Name           string
	Status         domain.ProjectStatus
	Priority       domain.PriorityLevel
	Budget         float64
	District       string
	Barangay       string
	StartDate      *time.Time
	EndDate        *time.Time
	ProgressPct    *float64
	EngineerName   *string
	ContractorName *string
	IsDelayed      bool
}

// MonitoringFilter narrows the projection. Empty fields match everything.
type MonitoringFilter struct {
	Search     string
	Status     string
	District   string
	Barangay   string
	Engineer   string
	Contractor string
	Priority   string
}

// StatusCount is one aggregate bucket for report summaries.
type StatusCount struct {
	Key    string
	Count  int
	Budget float64
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByCode(ctx context.Context, code string) (*domain.Project, error)
	ListByStatus(ctx context.Context, status domain.ProjectStatus) ([]*domain.Project, error)
	ListQueue(ctx context.Context, mode QueueMode, search string) ([]QueueRow, error)
	Update(ctx context.Context, p *domain.Project) error
	// SetPriorityIfApproved updates priority only when the current status is
	// Approved (case-insensitive) and returns the number of rows affected.
	// Zero rows means the guard condition was not met.
	SetPriorityIfApproved(ctx context.Context, projectID string, level domain.PriorityLevel) (int64, error)
	Delete(ctx context.Context, id string) error
}

type ReviewRepo interface {
	// Upsert inserts or replaces the single review row for the project.
	// Last decision wins; prior verdicts live only in the decision log.
	Upsert(ctx context.Context, r *domain.DecisionReview) error
	GetByProject(ctx context.Context, projectID string) (*domain.DecisionReview, error)
}

type DecisionLogRepo interface {
	// Append adds one log entry. The log is append-only: there is no
	// update or delete.
	Append(ctx context.Context, l *domain.DecisionLog) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.DecisionLog, error)
	ListRecent(ctx context.Context, limit int) ([]DecisionLogView, error)
}

type EmployeeRepo interface {
	Create(ctx context.Context, e *domain.Employee) error
	Update(ctx context.Context, e *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	GetByUsername(ctx context.Context, username string) (*domain.Employee, error)
}

type SessionRepo interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) error
}

type ProgressRepo interface {
	Create(ctx context.Context, projectID string, pct float64, note, reportedBy string) error
}

type MonitoringRepo interface {
	List(ctx context.Context, f MonitoringFilter, now time.Time) ([]MonitoringRow, error)
	SummaryByStatus(ctx context.Context) ([]StatusCount, error)
	SummaryByDistrict(ctx context.Context) ([]StatusCount, error)
	SummaryByPriority(ctx context.Context) ([]StatusCount, error)
}
