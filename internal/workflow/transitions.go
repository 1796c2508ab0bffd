// Package workflow holds the project lifecycle state machine: a fixed
// adjacency table of legal status transitions and the pure validation
// function the orchestrator consults before any status write.
package workflow

import (
	"fmt"

	"github.com/avelardo/infratrack/internal/domain"
)

// transitions is the closed adjacency table: current status -> statuses it
// may move to. Completed and Cancelled are terminal. Self-transitions are
// handled separately (always legal, idempotent no-op).
var transitions = map[domain.ProjectStatus][]domain.ProjectStatus{
	domain.StatusDraft:       {domain.StatusForApproval, domain.StatusApproved, domain.StatusCancelled},
	domain.StatusForApproval: {domain.StatusDraft, domain.StatusApproved, domain.StatusCancelled},
	domain.StatusApproved:    {domain.StatusOngoing, domain.StatusDelayed, domain.StatusOnHold, domain.StatusCompleted, domain.StatusCancelled},
	domain.StatusOngoing:     {domain.StatusDelayed, domain.StatusOnHold, domain.StatusCompleted, domain.StatusCancelled},
	domain.StatusDelayed:     {domain.StatusOngoing, domain.StatusOnHold, domain.StatusCompleted, domain.StatusCancelled},
	domain.StatusOnHold:      {domain.StatusOngoing, domain.StatusDelayed, domain.StatusCompleted, domain.StatusCancelled},
	domain.StatusCompleted:   {},
	domain.StatusCancelled:   {},
}

// CanTransition reports whether moving from current to next is legal.
// current == next is always legal.
func CanTransition(current, next domain.ProjectStatus) bool {
	if current == next {
		return true
	}
	for _, allowed := range transitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedNext returns the statuses reachable from current, excluding the
// implicit self-transition. The returned slice is a copy.
func AllowedNext(current domain.ProjectStatus) []domain.ProjectStatus {
	next := transitions[current]
	out := make([]domain.ProjectStatus, len(next))
	copy(out, next)
	return out
}

// ValidateTransition normalizes both statuses and checks the requested move
// against the adjacency table. It returns the canonical target status on
// success. Pure: no I/O, no side effects.
func ValidateTransition(currentRaw, requestedRaw string) (domain.ProjectStatus, error) {
	current, ok := domain.NormalizeStatus(currentRaw)
	if !ok {
		return "", fmt.Errorf("invalid status value %q: %w", currentRaw, domain.ErrValidation)
	}
	requested, ok := domain.NormalizeStatus(requestedRaw)
	if !ok {
		return "", fmt.Errorf("invalid status value %q: %w", requestedRaw, domain.ErrValidation)
	}
	if !CanTransition(current, requested) {
		return "", fmt.Errorf("invalid status transition: %s -> %s: %w", current, requested, domain.ErrValidation)
	}
	return requested, nil
}
