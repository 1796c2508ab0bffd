package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avelardo/infratrack/internal/domain"
	"github.com/avelardo/infratrack/internal/repository"
)

type monitoringService struct {
	monitoring repository.MonitoringRepo
	projects   repository.ProjectRepo
}

// NewMonitoringService wires the read-only dashboard projection and the
// risk-alert scan. Nothing here mutates state.
func NewMonitoringService(monitoring repository.MonitoringRepo, projects repository.ProjectRepo) MonitoringService {
	return &monitoringService{monitoring: monitoring, projects: projects}
}

func (s *monitoringService) Monitor(ctx context.Context, f repository.MonitoringFilter) ([]repository.MonitoringRow, error) {
	// Legacy status spellings in the filter are normalized; unrecognized
	// values pass through and simply match nothing.
	if f.Status != "" {
		if canonical, ok := domain.NormalizeStatus(f.Status); ok {
			f.Status = string(canonical)
		}
	}
	return s.monitoring.List(ctx, f, time.Now().UTC())
}

// Low-progress threshold: ongoing work under this completion percentage
// past half of its schedule raises an alert.
const lowProgressPct = 25.0

func (s *monitoringService) RiskAlerts(ctx context.Context, now time.Time) ([]RiskAlert, error) {
	rows, err := s.monitoring.List(ctx, repository.MonitoringFilter{}, now)
	if err != nil {
		return nil, err
	}

	var alerts []RiskAlert
	for _, row := range rows {
		if row.IsDelayed {
			alerts = append(alerts, RiskAlert{
				ProjectID: row.ProjectID,
				Code:      row.Code,
				Name:      row.Name,
				Type:      "delay",
				Severity:  "high",
				Message:   fmt.Sprintf("past end date %s with status %s", row.EndDate.Format("2006-01-02"), row.Status),
			})
			if progressOf(row) < 100 {
				alerts = append(alerts, RiskAlert{
					ProjectID: row.ProjectID,
					Code:      row.Code,
					Name:      row.Name,
					Type:      "overrun",
					Severity:  "critical",
					Message:   "schedule exhausted with work incomplete; budget overrun likely",
				})
			}
			continue
		}

		if (row.Status == domain.StatusOngoing || row.Status == domain.StatusDelayed) &&
			row.StartDate != nil && row.EndDate != nil {
			elapsed := scheduleElapsed(*row.StartDate, *row.EndDate, now)
			if elapsed >= 0.5 && progressOf(row) < lowProgressPct {
				alerts = append(alerts, RiskAlert{
					ProjectID: row.ProjectID,
					Code:      row.Code,
					Name:      row.Name,
					Type:      "low_progress",
					Severity:  "medium",
					Message:   fmt.Sprintf("%.0f%% of schedule elapsed but progress is %.0f%%", elapsed*100, progressOf(row)),
				})
			}
		}
	}

	// Rejected deliverables come from the review queue, not the projection.
	reviewed, err := s.projects.ListQueue(ctx, repository.QueueReviewed, "")
	if err != nil {
		return nil, err
	}
	for _, qr := range reviewed {
		if qr.DecisionStatus != nil && *qr.DecisionStatus == domain.DecisionRejected {
			alerts = append(alerts, RiskAlert{
				ProjectID: qr.Project.ID,
				Code:      qr.Project.Code,
				Name:      qr.Project.Name,
				Type:      "rejection",
				Severity:  "medium",
				Message:   fmt.Sprintf("rejected by department head: %s", qr.DecisionNote),
			})
		}
	}

	return alerts, nil
}

func progressOf(row repository.MonitoringRow) float64 {
	if row.ProgressPct == nil {
		return 0
	}
	return *row.ProgressPct
}

// scheduleElapsed returns the fraction of the start..end window that has
// passed at now, clamped to [0, 1].
func scheduleElapsed(start, end time.Time, now time.Time) float64 {
	total := end.Sub(start)
	if total <= 0 {
		return 1
	}
	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= total {
		return 1
	}
	return float64(elapsed) / float64(total)
}
