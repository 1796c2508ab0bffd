package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/avelardo/infratrack/internal/domain"
	"github.com/avelardo/infratrack/internal/repository"
	"github.com/avelardo/infratrack/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type monitoringFixture struct {
	db       *sql.DB
	projects *repository.SQLiteProjectRepo
	reviews  *repository.SQLiteReviewRepo
	svc      MonitoringService
}

func setupMonitoring(t *testing.T) *monitoringFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	projects := repository.NewSQLiteProjectRepo(database)
	reviews := repository.NewSQLiteReviewRepo(database)
	monitoring := repository.NewSQLiteMonitoringRepo(database, testutil.FullCapabilities())
	return &monitoringFixture{
		db:       database,
		projects: projects,
		reviews:  reviews,
		svc:      NewMonitoringService(monitoring, projects),
	}
}

func (f *monitoringFixture) createProject(t *testing.T, name string, opts ...testutil.ProjectOption) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject(name, opts...)
	require.NoError(t, f.projects.Create(context.Background(), p))
	return p
}

func (f *monitoringFixture) recordProgress(t *testing.T, projectID string, pct float64) {
	t.Helper()
	_, err := f.db.Exec(
		`INSERT INTO progress_updates (id, project_id, progress_pct, created_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), projectID, pct, time.Now().UTC().Format(time.RFC3339),
	)
	require.NoError(t, err)
}

func alertTypes(alerts []RiskAlert, projectID string) []string {
	var types []string
	for _, a := range alerts {
		if a.ProjectID == projectID {
			types = append(types, a.Type)
		}
	}
	return types
}

func TestMonitor_NormalizesStatusFilter(t *testing.T) {
	f := setupMonitoring(t)
	f.createProject(t, "Running road", testutil.WithStatus(domain.StatusOngoing))
	f.createProject(t, "Paused road", testutil.WithStatus(domain.StatusOnHold))

	// "in progress" is a legacy spelling of Ongoing.
	rows, err := f.svc.Monitor(context.Background(), repository.MonitoringFilter{Status: "in progress"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Running road", rows[0].Name)
}

func TestRiskAlerts_DelayedProject(t *testing.T) {
	f := setupMonitoring(t)
	now := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	start := now.AddDate(0, -6, 0)
	pastEnd := now.AddDate(0, 0, -10)

	delayed := f.createProject(t, "Overdue road",
		testutil.WithStatus(domain.StatusOngoing), testutil.WithSchedule(start, pastEnd))
	f.recordProgress(t, delayed.ID, 60)

	alerts, err := f.svc.RiskAlerts(context.Background(), now)
	require.NoError(t, err)

	types := alertTypes(alerts, delayed.ID)
	assert.Contains(t, types, "delay")
	assert.Contains(t, types, "overrun", "incomplete work past the end date is a likely overrun")
}

func TestRiskAlerts_DelayedButCompleteWorkSkipsOverrun(t *testing.T) {
	f := setupMonitoring(t)
	now := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	delayed := f.createProject(t, "Late paperwork road",
		testutil.WithStatus(domain.StatusOngoing),
		testutil.WithSchedule(now.AddDate(0, -6, 0), now.AddDate(0, 0, -10)))
	f.recordProgress(t, delayed.ID, 100)

	alerts, err := f.svc.RiskAlerts(context.Background(), now)
	require.NoError(t, err)

	types := alertTypes(alerts, delayed.ID)
	assert.Contains(t, types, "delay")
	assert.NotContains(t, types, "overrun")
}

func TestRiskAlerts_LowProgress(t *testing.T) {
	f := setupMonitoring(t)
	now := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	// 75% of the schedule elapsed, 10% done.
	start := now.AddDate(0, -3, 0)
	end := now.AddDate(0, 1, 0)

	slow := f.createProject(t, "Crawling road",
		testutil.WithStatus(domain.StatusOngoing), testutil.WithSchedule(start, end))
	f.recordProgress(t, slow.ID, 10)

	healthy := f.createProject(t, "Healthy road",
		testutil.WithStatus(domain.StatusOngoing), testutil.WithSchedule(start, end))
	f.recordProgress(t, healthy.ID, 80)

	alerts, err := f.svc.RiskAlerts(context.Background(), now)
	require.NoError(t, err)

	assert.Contains(t, alertTypes(alerts, slow.ID), "low_progress")
	assert.Empty(t, alertTypes(alerts, healthy.ID))
}

func TestRiskAlerts_RejectedProject(t *testing.T) {
	f := setupMonitoring(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rejected := f.createProject(t, "Bounced road")
	require.NoError(t, f.reviews.Upsert(ctx, &domain.DecisionReview{
		ProjectID: rejected.ID,
		Status:    domain.DecisionRejected,
		Note:      "no right-of-way clearance",
		DecidedBy: "head-1",
		DecidedAt: now,
	}))

	alerts, err := f.svc.RiskAlerts(ctx, now)
	require.NoError(t, err)

	types := alertTypes(alerts, rejected.ID)
	require.Contains(t, types, "rejection")
	for _, a := range alerts {
		if a.ProjectID == rejected.ID && a.Type == "rejection" {
			assert.Contains(t, a.Message, "no right-of-way clearance")
		}
	}
}

func TestRiskAlerts_QuietPortfolio(t *testing.T) {
	f := setupMonitoring(t)
	now := time.Now().UTC()

	f.createProject(t, "Fresh draft")
	f.createProject(t, "Done road", testutil.WithStatus(domain.StatusCompleted))

	alerts, err := f.svc.RiskAlerts(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
