package domain

import "time"

// DecisionReview is the current department-head verdict for a project.
// There is at most one row per project; re-deciding supersedes it (the
// history lives in DecisionLog, not here).
type DecisionReview struct {
	ProjectID string
	Status    DecisionStatus
	Note      string
	DecidedBy string
	DecidedAt time.Time
}

// DecisionLog is one append-only audit trail entry. Rows are never mutated
// or deleted, and deliberately carry no foreign key to projects so the
// trail survives project deletion.
type DecisionLog struct {
	ID        string
	ProjectID string
	Type      string
	Notes     string
	DecidedBy string
	CreatedAt time.Time
}
