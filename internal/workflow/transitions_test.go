package workflow

import (
	"fmt"
	"testing"

	"github.com/avelardo/infratrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectedEdges mirrors the adjacency table independently so a typo in one
// place fails the exhaustive pair check below.
var expectedEdges = map[domain.ProjectStatus]map[domain.ProjectStatus]bool{
	domain.StatusDraft:       {domain.StatusForApproval: true, domain.StatusApproved: true, domain.StatusCancelled: true},
	domain.StatusForApproval: {domain.StatusDraft: true, domain.StatusApproved: true, domain.StatusCancelled: true},
	domain.StatusApproved:    {domain.StatusOngoing: true, domain.StatusDelayed: true, domain.StatusOnHold: true, domain.StatusCompleted: true, domain.StatusCancelled: true},
	domain.StatusOngoing:     {domain.StatusDelayed: true, domain.StatusOnHold: true, domain.StatusCompleted: true, domain.StatusCancelled: true},
	domain.StatusDelayed:     {domain.StatusOngoing: true, domain.StatusOnHold: true, domain.StatusCompleted: true, domain.StatusCancelled: true},
	domain.StatusOnHold:      {domain.StatusOngoing: true, domain.StatusDelayed: true, domain.StatusCompleted: true, domain.StatusCancelled: true},
	domain.StatusCompleted:   {},
	domain.StatusCancelled:   {},
}

func TestCanTransition_ExhaustivePairs(t *testing.T) {
	for _, from := range domain.AllStatuses {
		for _, to := range domain.AllStatuses {
			want := from == to || expectedEdges[from][to]
			got := CanTransition(from, to)
			assert.Equal(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestCanTransition_SelfIsAlwaysLegal(t *testing.T) {
	for _, s := range domain.AllStatuses {
		assert.True(t, CanTransition(s, s), "self-transition for %s", s)
	}
}

func TestValidateTransition_LegalMove(t *testing.T) {
	got, err := ValidateTransition("For Approval", "Approved")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got)
}

func TestValidateTransition_NormalizesLegacySpellings(t *testing.T) {
	got, err := ValidateTransition("approved", "in progress")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOngoing, got)
}

func TestValidateTransition_IllegalMove(t *testing.T) {
	_, err := ValidateTransition("Draft", "Ongoing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "invalid status transition: Draft -> Ongoing")
}

func TestValidateTransition_TerminalStates(t *testing.T) {
	for _, terminal := range []string{"Completed", "Cancelled"} {
		for _, to := range domain.AllStatuses {
			if string(to) == terminal {
				continue
			}
			_, err := ValidateTransition(terminal, string(to))
			assert.Error(t, err, "%s -> %s should be rejected", terminal, to)
		}
	}
}

func TestValidateTransition_UnrecognizedStatus(t *testing.T) {
	_, err := ValidateTransition("Draft", "bogus")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "invalid status value")

	_, err = ValidateTransition("nonsense", "Approved")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status value")
}

func TestAllowedNext(t *testing.T) {
	next := AllowedNext(domain.StatusOngoing)
	assert.ElementsMatch(t, []domain.ProjectStatus{
		domain.StatusDelayed, domain.StatusOnHold, domain.StatusCompleted, domain.StatusCancelled,
	}, next)

	assert.Empty(t, AllowedNext(domain.StatusCompleted))

	// Mutating the returned slice must not affect the table.
	if len(next) > 0 {
		next[0] = domain.StatusDraft
	}
	fresh := AllowedNext(domain.StatusOngoing)
	assert.NotContains(t, fresh, domain.StatusDraft)
}

func TestValidateTransition_ErrorMessageFormat(t *testing.T) {
	_, err := ValidateTransition("Ongoing", "Draft")
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("%s -> %s", domain.StatusOngoing, domain.StatusDraft))
}
