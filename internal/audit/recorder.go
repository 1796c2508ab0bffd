// Package audit is the side-channel audit subsystem. Recording is
// best-effort: a failed or missing recorder never affects the workflow
// transaction that produced the event.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is one audit record: who did what to which entity.
type Event struct {
	ID         string
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Detail     map[string]any
	At         time.Time
}

// NewEvent stamps an event with a ULID and timestamp. ULIDs sort
// lexicographically by creation time, which keeps downstream audit sinks
// ordered without a separate sequence.
func NewEvent(actor, action, entityType, entityID string, detail map[string]any) Event {
	return Event{
		ID:         ulid.Make().String(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		At:         time.Now().UTC(),
	}
}

// Recorder receives audit events.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// NoopRecorder ignores all events.
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, Event) {}

type slogRecorder struct {
	logger *slog.Logger
}

// NewSlogRecorder writes audit events to the given structured logger.
func NewSlogRecorder(logger *slog.Logger) Recorder {
	if logger == nil {
		return NoopRecorder{}
	}
	return &slogRecorder{logger: logger}
}

func (r *slogRecorder) Record(ctx context.Context, e Event) {
	attrs := make([]any, 0, 12+len(e.Detail)*2)
	attrs = append(attrs,
		"audit_id", e.ID,
		"actor", e.Actor,
		"action", e.Action,
		"entity_type", e.EntityType,
		"entity_id", e.EntityID,
		"at", e.At.Format(time.RFC3339),
	)
	for k, v := range e.Detail {
		attrs = append(attrs, k, v)
	}
	r.logger.InfoContext(ctx, "audit_event", attrs...)
}
