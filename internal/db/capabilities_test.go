package db_test

import (
	"context"
	"testing"

	"github.com/avelardo/infratrack/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCapabilities_FullSchema(t *testing.T) {
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	caps, err := db.ResolveCapabilities(context.Background(), database)
	require.NoError(t, err)
	assert.True(t, caps.HasProgressUpdates)
	assert.True(t, caps.HasAssignments)
	assert.True(t, caps.HasEngineers)
	assert.True(t, caps.HasContractors)
}

func TestResolveCapabilities_PartialSchema(t *testing.T) {
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec(`DROP TABLE progress_updates`)
	require.NoError(t, err)
	_, err = database.Exec(`DROP TABLE project_assignments`)
	require.NoError(t, err)

	caps, err := db.ResolveCapabilities(context.Background(), database)
	require.NoError(t, err)
	assert.False(t, caps.HasProgressUpdates)
	assert.False(t, caps.HasAssignments)
	assert.True(t, caps.HasEngineers)
	assert.True(t, caps.HasContractors)
}
