package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaCapabilities records which optional satellite tables exist in this
// deployment. Resolved once at startup instead of probing table metadata on
// every monitoring query; the projection builds its joins from this.
type SchemaCapabilities struct {
	HasProgressUpdates bool
	HasAssignments     bool
	HasEngineers       bool
	HasContractors     bool
}

// ResolveCapabilities probes sqlite_master for the optional tables.
func ResolveCapabilities(ctx context.Context, db *sql.DB) (SchemaCapabilities, error) {
	caps := SchemaCapabilities{}
	probes := []struct {
		table string
		flag  *bool
	}{
		{"progress_updates", &caps.HasProgressUpdates},
		{"project_assignments", &caps.HasAssignments},
		{"engineers", &caps.HasEngineers},
		{"contractors", &caps.HasContractors},
	}
	for _, p := range probes {
		exists, err := tableExists(ctx, db, p.table)
		if err != nil {
			return SchemaCapabilities{}, err
		}
		*p.flag = exists
	}
	return caps, nil
}

func tableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("probing table %s: %w", name, err)
	}
	return count > 0, nil
}
