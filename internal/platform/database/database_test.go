package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterweight/internal/platform/config"
)

func TestOpenSQLite(t *testing.T) {
	db, err := OpenSQLite(context.Background(), config.SQLite{Path: filepath.Join(t.TempDir(), "ledger.db")})
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestOpenPostgresUnknownDriver(t *testing.T) {
	_, err := OpenPostgres(context.Background(), config.Postgres{Driver: "mysql", URL: "x"})
	assert.ErrorContains(t, err, "open mysql")
}
