package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/avelardo/infratrack/internal/audit"
	"github.com/avelardo/infratrack/internal/domain"
	"github.com/avelardo/infratrack/internal/repository"
	"github.com/avelardo/infratrack/internal/testutil"
	"github.com/stretchr/testify/require"
)

type workflowFixture struct {
	db       *sql.DB
	projects *repository.SQLiteProjectRepo
	reviews  *repository.SQLiteReviewRepo
	logs     *repository.SQLiteDecisionLogRepo
	svc      WorkflowService
}

func setupWorkflow(t *testing.T) *workflowFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	projects := repository.NewSQLiteProjectRepo(database)
	reviews := repository.NewSQLiteReviewRepo(database)
	logs := repository.NewSQLiteDecisionLogRepo(database)
	progress := repository.NewSQLiteProgressRepo(database)
	uow := testutil.NewTestUoW(database)
	svc := NewWorkflowService(projects, logs, progress, uow, testutil.FullCapabilities(), audit.NoopRecorder{})
	return &workflowFixture{
		db:       database,
		projects: projects,
		reviews:  reviews,
		logs:     logs,
		svc:      svc,
	}
}

func (f *workflowFixture) createProject(t *testing.T, name string, opts ...testutil.ProjectOption) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject(name, opts...)
	require.NoError(t, f.projects.Create(context.Background(), p))
	return p
}

func (f *workflowFixture) logCount(t *testing.T, projectID string) int {
	t.Helper()
	logs, err := f.logs.ListByProject(context.Background(), projectID)
	require.NoError(t, err)
	return len(logs)
}
