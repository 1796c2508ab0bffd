package domain

import "strings"

// statusSynonyms maps lowercase legacy/free-form status spellings to their
// canonical value. The portal accumulated several spellings over the years
// ("in progress", "on hold", "pending") and imports still carry them.
var statusSynonyms = map[string]ProjectStatus{
	"draft": StatusDraft,

	"for approval":     StatusForApproval,
	"for_approval":     StatusForApproval,
	"forapproval":      StatusForApproval,
	"pending":          StatusForApproval,
	"pending approval": StatusForApproval,

	"approved": StatusApproved,

	"ongoing":     StatusOngoing,
	"in progress": StatusOngoing,
	"in-progress": StatusOngoing,
	"inprogress":  StatusOngoing,
	"active":      StatusOngoing,

	"delayed": StatusDelayed,
	"overdue": StatusDelayed,

	"on-hold":   StatusOnHold,
	"on hold":   StatusOnHold,
	"onhold":    StatusOnHold,
	"hold":      StatusOnHold,
	"suspended": StatusOnHold,

	"completed": StatusCompleted,
	"complete":  StatusCompleted,
	"done":      StatusCompleted,
	"finished":  StatusCompleted,

	"cancelled":  StatusCancelled,
	"canceled":   StatusCancelled,
	"terminated": StatusCancelled,
}

// NormalizeStatus maps an arbitrary status string to its canonical value.
// Matching is case-insensitive and whitespace-tolerant. The second return
// is false when the input is unrecognized; callers must handle that case,
// there is no error and no fallback value.
func NormalizeStatus(raw string) (ProjectStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	s, ok := statusSynonyms[key]
	return s, ok
}
