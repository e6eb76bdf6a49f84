package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"voterweight/internal/ledger"
	"voterweight/internal/ledger/storetest"
	"voterweight/pkg/domain"
	"voterweight/pkg/platform/sentinel"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=busy_timeout(5000)&_txlock=immediate")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, ApplyMigrations(context.Background(), db, SQLite))
	return db
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ledger.Store {
		return New(openSQLite(t), SQLite)
	})
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, ApplyMigrations(context.Background(), db, SQLite))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	require.Equal(t, 1, count)
}

func TestTwoLedgersCannotSpendOneSnapshot(t *testing.T) {
	ctx := context.Background()
	store := New(openSQLite(t), SQLite)
	clock := ledger.NewManualClock(1, 1)
	first, err := ledger.New(store, clock)
	require.NoError(t, err)
	second, err := ledger.New(store, clock)
	require.NoError(t, err)

	vault := ledger.Account{Address: domain.NewUniquePubkey(), Owner: domain.NewUniquePubkey(), Data: []byte{10}}
	require.NoError(t, first.Seed(ctx, vault))

	withdraw := func(destination domain.Pubkey, between func() error) func(ctx context.Context, uow *ledger.UnitOfWork) error {
		return func(ctx context.Context, uow *ledger.UnitOfWork) error {
			got, err := uow.Get(ctx, vault.Address)
			if err != nil {
				return err
			}
			if between != nil {
				if err := between(); err != nil {
					return err
				}
			}
			paid := got.Data[0]
			got.Data = []byte{0}
			uow.Put(*got)
			uow.Put(ledger.Account{Address: destination, Owner: vault.Owner, Data: []byte{paid}})
			return nil
		}
	}

	d1, d2 := domain.NewUniquePubkey(), domain.NewUniquePubkey()
	err = first.Update(ctx, []domain.Pubkey{vault.Address}, withdraw(d1, func() error {
		return second.Update(ctx, []domain.Pubkey{vault.Address}, withdraw(d2, nil))
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrConflict))

	_, err = store.Get(ctx, d1)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	got, err := store.Get(ctx, d2)
	require.NoError(t, err)
	assert.Equal(t, []byte{10}, got.Data)
}
