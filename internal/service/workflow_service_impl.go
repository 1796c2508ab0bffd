package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avelardo/infratrack/internal/audit"
	"github.com/avelardo/infratrack/internal/db"
	"github.com/avelardo/infratrack/internal/domain"
	"github.com/avelardo/infratrack/internal/repository"
	"github.com/avelardo/infratrack/internal/workflow"
	"github.com/google/uuid"
)

type workflowService struct {
	projects repository.ProjectRepo
	logs     repository.DecisionLogRepo
	progress repository.ProgressRepo
	uow      db.UnitOfWork
	caps     db.SchemaCapabilities
	audit    audit.Recorder
	observer UseCaseObserver
}

// NewWorkflowService wires the workflow orchestrator. Every mutating
// operation runs inside one UnitOfWork transaction; the decision log entry
// is written inside that transaction, the audit event after commit.
func NewWorkflowService(
	projects repository.ProjectRepo,
	logs repository.DecisionLogRepo,
	progress repository.ProgressRepo,
	uow db.UnitOfWork,
	caps db.SchemaCapabilities,
	recorder audit.Recorder,
	observers ...UseCaseObserver,
) WorkflowService {
	if recorder == nil {
		recorder = audit.NoopRecorder{}
	}
	return &workflowService{
		projects: projects,
		logs:     logs,
		progress: progress,
		uow:      uow,
		caps:     caps,
		audit:    recorder,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *workflowService) RegisterProject(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = domain.StatusDraft
	}
	if p.Status != domain.StatusDraft {
		return fmt.Errorf("projects are registered in Draft: %w", domain.ErrValidation)
	}
	if p.Priority == "" {
		p.Priority = domain.PriorityMedium
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.NewEvent(p.CreatedBy, "register_project", "project", p.ID, map[string]any{
		"code": p.Code,
	}))
	return nil
}

// parseDecision maps a raw decision string to the two allowed verdicts.
func parseDecision(raw string) (domain.DecisionStatus, error) {
	switch {
	case strings.EqualFold(raw, string(domain.DecisionApproved)):
		return domain.DecisionApproved, nil
	case strings.EqualFold(raw, string(domain.DecisionRejected)):
		return domain.DecisionRejected, nil
	default:
		return "", fmt.Errorf("decision must be Approved or Rejected, got %q: %w", raw, domain.ErrValidation)
	}
}

func (s *workflowService) DecideProject(ctx context.Context, req DecideProjectRequest) error {
	started := time.Now()
	err := s.decideProject(ctx, req)
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "decide_project",
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		Fields:    map[string]any{"project_id": req.ProjectID, "decision": req.Decision},
		StartedAt: started,
	})
	return err
}

func (s *workflowService) decideProject(ctx context.Context, req DecideProjectRequest) error {
	decision, err := parseDecision(req.Decision)
	if err != nil {
		return err
	}
	if decision == domain.DecisionApproved && req.BudgetAmount <= 0 {
		return fmt.Errorf("an approved project requires a budget greater than zero: %w", domain.ErrValidation)
	}

	now := time.Now().UTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		txReviews := repository.NewSQLiteReviewRepo(tx)
		txLogs := repository.NewSQLiteDecisionLogRepo(tx)

		p, err := txProjects.GetByID(ctx, req.ProjectID)
		if err != nil {
			return err
		}

		if err := txReviews.Upsert(ctx, &domain.DecisionReview{
			ProjectID: p.ID,
			Status:    decision,
			Note:      req.Note,
			DecidedBy: req.ActorID,
			DecidedAt: now,
		}); err != nil {
			return err
		}

		if decision == domain.DecisionApproved {
			actor := req.ActorID
			p.Status = domain.StatusApproved
			p.Budget = req.BudgetAmount
			p.ApprovedBy = &actor
			p.ApprovedAt = &now
			p.RejectionReason = ""
		} else {
			// A rejected project goes back to Draft for rework; the
			// verdict itself lives in the review row and the log.
			p.Status = domain.StatusDraft
			p.Budget = 0
			p.ApprovedBy = nil
			p.ApprovedAt = nil
			p.RejectionReason = req.Note
		}
		p.UpdatedAt = now
		if err := txProjects.Update(ctx, p); err != nil {
			return err
		}

		return txLogs.Append(ctx, &domain.DecisionLog{
			ID:        uuid.New().String(),
			ProjectID: p.ID,
			Type:      strings.ToLower(string(decision)),
			Notes:     req.Note,
			DecidedBy: req.ActorID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.NewEvent(req.ActorID, "decide_project", "project", req.ProjectID, map[string]any{
		"decision": string(decision),
		"budget":   req.BudgetAmount,
	}))
	return nil
}

// normalizePriority maps a raw priority string to the closed level set.
func normalizePriority(raw string) (domain.PriorityLevel, error) {
	for level := range domain.ValidPriorityLevels {
		if strings.EqualFold(raw, string(level)) {
			return level, nil
		}
	}
	return "", fmt.Errorf("priority must be Low, Medium, High or Critical, got %q: %w", raw, domain.ErrValidation)
}

func (s *workflowService) SetPriority(ctx context.Context, req SetPriorityRequest) (int64, error) {
	level := domain.PriorityCritical
	if !req.SetUrgent {
		var err error
		level, err = normalizePriority(req.Level)
		if err != nil {
			return 0, err
		}
	}

	now := time.Now().UTC()
	var affected int64
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		txLogs := repository.NewSQLiteDecisionLogRepo(tx)

		n, err := txProjects.SetPriorityIfApproved(ctx, req.ProjectID, level)
		if err != nil {
			return err
		}
		if n == 0 {
			// Distinguish a missing project from an unmet guard.
			if _, getErr := txProjects.GetByID(ctx, req.ProjectID); getErr != nil {
				return getErr
			}
			return fmt.Errorf("only approved projects can be prioritized: %w", domain.ErrValidation)
		}
		affected = n

		return txLogs.Append(ctx, &domain.DecisionLog{
			ID:        uuid.New().String(),
			ProjectID: req.ProjectID,
			Type:      domain.LogTypePriorityChange,
			Notes:     fmt.Sprintf("priority set to %s", level),
			DecidedBy: req.ActorID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return 0, err
	}

	s.audit.Record(ctx, audit.NewEvent(req.ActorID, "set_project_priority", "project", req.ProjectID, map[string]any{
		"priority": string(level),
	}))
	return affected, nil
}

func (s *workflowService) ChangeStatus(ctx context.Context, projectID, requestedStatus, actorID string) error {
	now := time.Now().UTC()
	var from, to domain.ProjectStatus
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		txLogs := repository.NewSQLiteDecisionLogRepo(tx)

		p, err := txProjects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}

		target, err := workflow.ValidateTransition(string(p.Status), requestedStatus)
		if err != nil {
			return err
		}
		from, to = p.Status, target
		if from == to {
			// Idempotent no-op: nothing to write.
			return nil
		}

		p.Status = target
		p.UpdatedAt = now
		if err := txProjects.Update(ctx, p); err != nil {
			return err
		}

		return txLogs.Append(ctx, &domain.DecisionLog{
			ID:        uuid.New().String(),
			ProjectID: p.ID,
			Type:      domain.LogTypeStatusChange,
			Notes:     fmt.Sprintf("%s -> %s", from, to),
			DecidedBy: actorID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return err
	}

	if from != to {
		s.audit.Record(ctx, audit.NewEvent(actorID, "change_status", "project", projectID, map[string]any{
			"from": string(from),
			"to":   string(to),
		}))
	}
	return nil
}

func (s *workflowService) ListQueue(ctx context.Context, mode repository.QueueMode, search string) ([]repository.QueueRow, error) {
	return s.projects.ListQueue(ctx, mode, search)
}

func (s *workflowService) ListPriorityProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.ListByStatus(ctx, domain.StatusApproved)
}

func (s *workflowService) ListDecisionLogs(ctx context.Context, limit int) ([]repository.DecisionLogView, error) {
	return s.logs.ListRecent(ctx, limit)
}

func (s *workflowService) SubmitProgress(ctx context.Context, projectID string, pct float64, note, actorID string) error {
	if !s.caps.HasProgressUpdates {
		return fmt.Errorf("progress tracking is not enabled in this deployment: %w", domain.ErrValidation)
	}
	if pct < 0 || pct > 100 {
		return fmt.Errorf("progress must be between 0 and 100, got %v: %w", pct, domain.ErrValidation)
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return err
	}
	if err := s.progress.Create(ctx, projectID, pct, note, actorID); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.NewEvent(actorID, "submit_progress", "project", projectID, map[string]any{
		"progress_pct": pct,
	}))
	return nil
}
