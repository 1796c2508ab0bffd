package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/avelardo/infratrack/internal/domain"
	"github.com/google/uuid"
)

var testCodeCounter atomic.Int64

// ProjectOption mutates a test project before it is returned.
type ProjectOption func(*domain.Project)

func WithStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithBudget(b float64) ProjectOption {
	return func(p *domain.Project) {
		p.Budget = b
	}
}

func WithPriority(level domain.PriorityLevel) ProjectOption {
	return func(p *domain.Project) {
		p.Priority = level
	}
}

func WithDistrict(district, barangay string) ProjectOption {
	return func(p *domain.Project) {
		p.District = district
		p.Barangay = barangay
	}
}

func WithSchedule(start, end time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.StartDate = &start
		p.EndDate = &end
	}
}

// NewTestProject builds a valid project in Draft with a unique code.
func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        uuid.New().String(),
		Code:      fmt.Sprintf("TEST-2025-%03d", testCodeCounter.Add(1)),
		Name:      name,
		Status:    domain.StatusDraft,
		Priority:  domain.PriorityMedium,
		District:  "District I",
		Barangay:  "Poblacion",
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var testUserCounter atomic.Int64

// NewTestEmployee builds an active employee with the given role. The
// password hash is not usable for login; tests that need login use
// bcrypt-hashed fixtures of their own.
func NewTestEmployee(role domain.Role) *domain.Employee {
	now := time.Now().UTC()
	n := testUserCounter.Add(1)
	return &domain.Employee{
		ID:           uuid.New().String(),
		Username:     fmt.Sprintf("user%03d", n),
		PasswordHash: "x",
		FullName:     fmt.Sprintf("Test User %03d", n),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
