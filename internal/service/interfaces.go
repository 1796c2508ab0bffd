package service

import (
	"context"
	"time"

	"github.com/avelardo/infratrack/internal/auth"
	"github.com/avelardo/infratrack/internal/domain"
	"github.com/avelardo/infratrack/internal/repository"
)

// DecideProjectRequest carries a department-head verdict on a project.
type DecideProjectRequest struct {
	ProjectID    string
	Decision     string // "Approved" or "Rejected", case-insensitive
	Note         string
	BudgetAmount float64
	ActorID      string
}

// SetPriorityRequest changes an approved project's priority level.
// SetUrgent is sugar for Level = Critical.
type SetPriorityRequest struct {
	ProjectID string
	Level     string
	SetUrgent bool
	ActorID   string
}

type WorkflowService interface {
	RegisterProject(ctx context.Context, p *domain.Project) error
	DecideProject(ctx context.Context, req DecideProjectRequest) error
	SetPriority(ctx context.Context, req SetPriorityRequest) (int64, error)
	ChangeStatus(ctx context.Context, projectID, requestedStatus, actorID string) error
	ListQueue(ctx context.Context, mode repository.QueueMode, search string) ([]repository.QueueRow, error)
	ListPriorityProjects(ctx context.Context) ([]*domain.Project, error)
	ListDecisionLogs(ctx context.Context, limit int) ([]repository.DecisionLogView, error)
	SubmitProgress(ctx context.Context, projectID string, pct float64, note, actorID string) error
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.Session, *auth.Identity, error)
	Logout(ctx context.Context, token string) error
	// Resolve validates the session token and rebuilds the caller identity
	// from the employees table. Role comes from the database, never from
	// the session row.
	Resolve(ctx context.Context, token string) (*auth.Identity, error)
	// EnsureBootstrapAdmin creates the initial super_admin account when no
	// employee with that username exists yet.
	EnsureBootstrapAdmin(ctx context.Context, username, password string) error
}

// RiskAlert is one computed dashboard alert.
type RiskAlert struct {
	ProjectID string
	Code      string
	Name      string
	Type      string
	Severity  string
	Message   string
}

type MonitoringService interface {
	Monitor(ctx context.Context, f repository.MonitoringFilter) ([]repository.MonitoringRow, error)
	RiskAlerts(ctx context.Context, now time.Time) ([]RiskAlert, error)
}

// ReportSummary aggregates project counts and budgets for dashboards.
type ReportSummary struct {
	GeneratedAt time.Time
	TotalCount  int
	TotalBudget float64
	ByStatus    []repository.StatusCount
	ByDistrict  []repository.StatusCount
	ByPriority  []repository.StatusCount
}

// Export is a rendered report ready to serve.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ReportService interface {
	Summary(ctx context.Context) (*ReportSummary, error)
	Export(ctx context.Context, reportType, format string) (*Export, error)
}
