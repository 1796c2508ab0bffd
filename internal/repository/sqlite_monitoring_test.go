package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/avelardo/infratrack/internal/db"
	"github.com/avelardo/infratrack/internal/domain"
	"github.com/avelardo/infratrack/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertProgress(t *testing.T, database *sql.DB, projectID string, pct float64, at time.Time) {
	t.Helper()
	_, err := database.Exec(
		`INSERT INTO progress_updates (id, project_id, progress_pct, created_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), projectID, pct, at.Format(time.RFC3339),
	)
	require.NoError(t, err)
}

func TestSQLiteMonitoringRepo_DelayFlag(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	monitoring := NewSQLiteMonitoringRepo(database, testutil.FullCapabilities())
	ctx := context.Background()

	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	past := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	overdue := testutil.NewTestProject("Overdue road",
		testutil.WithStatus(domain.StatusOngoing), testutil.WithSchedule(past.AddDate(0, -3, 0), past))
	finished := testutil.NewTestProject("Finished road",
		testutil.WithStatus(domain.StatusCompleted), testutil.WithSchedule(past.AddDate(0, -3, 0), past))
	onTrack := testutil.NewTestProject("On-track road",
		testutil.WithStatus(domain.StatusOngoing), testutil.WithSchedule(past, future))
	require.NoError(t, projects.Create(ctx, overdue))
	require.NoError(t, projects.Create(ctx, finished))
	require.NoError(t, projects.Create(ctx, onTrack))

	rows, err := monitoring.List(ctx, MonitoringFilter{}, now)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byID := map[string]MonitoringRow{}
	for _, r := range rows {
		byID[r.ProjectID] = r
	}
	assert.True(t, byID[overdue.ID].IsDelayed, "past end date and non-terminal status is delayed")
	assert.False(t, byID[finished.ID].IsDelayed, "completed projects are never delayed")
	assert.False(t, byID[onTrack.ID].IsDelayed)
}

func TestSQLiteMonitoringRepo_LatestProgressWins(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	monitoring := NewSQLiteMonitoringRepo(database, testutil.FullCapabilities())
	ctx := context.Background()

	p := testutil.NewTestProject("Progressing road", testutil.WithStatus(domain.StatusOngoing))
	require.NoError(t, projects.Create(ctx, p))

	base := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	insertProgress(t, database, p.ID, 10, base)
	insertProgress(t, database, p.ID, 45, base.Add(48*time.Hour))
	insertProgress(t, database, p.ID, 30, base.Add(24*time.Hour))

	rows, err := monitoring.List(ctx, MonitoringFilter{}, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].ProgressPct)
	assert.Equal(t, 45.0, *rows[0].ProgressPct, "newest update wins regardless of insert order")
}

func TestSQLiteMonitoringRepo_CapabilityDegradation(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	p := testutil.NewTestProject("Plain deployment road", testutil.WithStatus(domain.StatusOngoing))
	require.NoError(t, projects.Create(ctx, p))
	insertProgress(t, database, p.ID, 80, time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC))

	// No optional modules: the projection still answers, with NULL columns.
	monitoring := NewSQLiteMonitoringRepo(database, db.SchemaCapabilities{})

	rows, err := monitoring.List(ctx, MonitoringFilter{}, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].ProgressPct)
	assert.Nil(t, rows[0].EngineerName)
	assert.Nil(t, rows[0].ContractorName)

	// Filters over absent modules are ignored rather than erroring.
	rows, err = monitoring.List(ctx, MonitoringFilter{Engineer: "anyone"}, time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSQLiteMonitoringRepo_AssignmentNames(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	monitoring := NewSQLiteMonitoringRepo(database, testutil.FullCapabilities())
	ctx := context.Background()

	p := testutil.NewTestProject("Assigned road", testutil.WithStatus(domain.StatusOngoing))
	require.NoError(t, projects.Create(ctx, p))

	_, err := database.Exec(`INSERT INTO engineers (id, full_name) VALUES ('eng-1', 'Elena Reyes')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO contractors (id, company_name) VALUES ('con-1', 'Buildwell Corp')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO project_assignments (project_id, engineer_id, contractor_id) VALUES (?, 'eng-1', 'con-1')`, p.ID)
	require.NoError(t, err)

	rows, err := monitoring.List(ctx, MonitoringFilter{}, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].EngineerName)
	assert.Equal(t, "Elena Reyes", *rows[0].EngineerName)
	require.NotNil(t, rows[0].ContractorName)
	assert.Equal(t, "Buildwell Corp", *rows[0].ContractorName)

	// The engineer filter matches by name.
	rows, err = monitoring.List(ctx, MonitoringFilter{Engineer: "Reyes"}, time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = monitoring.List(ctx, MonitoringFilter{Engineer: "Nobody"}, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteMonitoringRepo_FiltersAndSummaries(t *testing.T) {
	database := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(database)
	monitoring := NewSQLiteMonitoringRepo(database, testutil.FullCapabilities())
	ctx := context.Background()

	require.NoError(t, projects.Create(ctx, testutil.NewTestProject("North road",
		testutil.WithStatus(domain.StatusOngoing), testutil.WithDistrict("District I", "Bagong Silang"), testutil.WithBudget(100))))
	require.NoError(t, projects.Create(ctx, testutil.NewTestProject("South road",
		testutil.WithStatus(domain.StatusDraft), testutil.WithDistrict("District II", "Malanday"), testutil.WithBudget(200))))

	rows, err := monitoring.List(ctx, MonitoringFilter{Status: "Ongoing"}, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "North road", rows[0].Name)

	rows, err = monitoring.List(ctx, MonitoringFilter{District: "District II"}, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "South road", rows[0].Name)

	rows, err = monitoring.List(ctx, MonitoringFilter{Search: "Malanday"}, time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	byStatus, err := monitoring.SummaryByStatus(ctx)
	require.NoError(t, err)
	total := 0.0
	for _, c := range byStatus {
		total += c.Budget
	}
	assert.Equal(t, 300.0, total)

	byDistrict, err := monitoring.SummaryByDistrict(ctx)
	require.NoError(t, err)
	assert.Len(t, byDistrict, 2)
}
