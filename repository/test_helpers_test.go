package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ar-model-dashboard/db"
)

// newSQLiteRepository returns a repository over a fresh in-memory database
// with a clock that advances one second per call.
func newSQLiteRepository(t *testing.T) (*VariantStateRepository, *sql.DB) {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	repo := NewVariantStateRepository(conn, db.SQLite)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo, conn
}

func countRows(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM variant_states`).Scan(&n))
	return n
}

// dumpRows renders every row as text so two snapshots can be compared byte for byte
func dumpRows(t *testing.T, conn *sql.DB) []string {
	t.Helper()
	rows, err := conn.Query(`
		SELECT variant_id || '|' || group_id || '|' ||
		       COALESCE(ios_asset_url, '<null>') || '|' || COALESCE(android_asset_url, '<null>') || '|' ||
		       human_verified || '|' || manual_incorrect || '|' || COALESCE(notes, '<null>') || '|' ||
		       CAST(created_at AS TEXT) || '|' || CAST(updated_at AS TEXT)
		FROM variant_states ORDER BY variant_id`)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var line string
		require.NoError(t, rows.Scan(&line))
		out = append(out, line)
	}
	require.NoError(t, rows.Err())
	return out
}
