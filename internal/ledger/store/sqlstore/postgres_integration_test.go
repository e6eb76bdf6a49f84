//go:build integration

package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"voterweight/internal/ledger"
	"voterweight/internal/ledger/storetest"
	"voterweight/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	require.NoError(t, ApplyMigrations(context.Background(), pg.DB, Postgres))

	storetest.Run(t, func(t *testing.T) ledger.Store {
		require.NoError(t, pg.TruncateTables(context.Background(), "ledger_accounts"))
		return New(pg.DB, Postgres)
	})
}
