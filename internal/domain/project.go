package domain

import (
	"fmt"
	"regexp"
	"time"
)

var projectCodePattern = regexp.MustCompile(`^[A-Z]{2,6}-[0-9]{4}-[0-9]{3,5}$`)

// Project is a municipal infrastructure project. Its ID is immutable; its
// status is mutated only through validated workflow transitions.
type Project struct {
	ID              string
	Code            string
	Name            string
	Description     string
	Status          ProjectStatus
	Priority        PriorityLevel
	Budget          float64
	District        string
	Barangay        string
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason string
	StartDate       *time.Time
	EndDate         *time.Time
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidateCode checks that Code is non-empty and matches the municipal
// numbering format: department prefix, year, sequence (e.g. ROAD-2025-014).
func (p *Project) ValidateCode() error {
	if p.Code == "" {
		return fmt.Errorf("project code is required: %w", ErrValidation)
	}
	if !projectCodePattern.MatchString(p.Code) {
		return fmt.Errorf("project code %q must look like ROAD-2025-014 (prefix-year-sequence): %w", p.Code, ErrValidation)
	}
	return nil
}

// Validate checks the fields project registration is responsible for.
// Status and budget are owned by the workflow and checked there.
func (p *Project) Validate() error {
	if err := p.ValidateCode(); err != nil {
		return err
	}
	if p.Name == "" {
		return fmt.Errorf("project name is required: %w", ErrValidation)
	}
	if p.Budget < 0 {
		return fmt.Errorf("budget must not be negative: %w", ErrValidation)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return fmt.Errorf("end date precedes start date: %w", ErrValidation)
	}
	return nil
}

// IsDelayed reports whether the project is past its end date while still in
// a non-terminal status. Completed and cancelled projects are never delayed.
func (p *Project) IsDelayed(now time.Time) bool {
	if p.EndDate == nil || p.Status.IsTerminal() {
		return false
	}
	return p.EndDate.Before(now)
}
