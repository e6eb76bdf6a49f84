// Package storetest is the behavioural contract every ledger.Store must meet.
// Backend packages run it against their own store.
package storetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterweight/internal/ledger"
	"voterweight/pkg/domain"
	"voterweight/pkg/platform/sentinel"
)

func read(acc *ledger.Account, address domain.Pubkey) ledger.Read {
	if acc == nil {
		return ledger.Read{Address: address}
	}
	return ledger.Read{Address: address, Found: true, Digest: acc.Digest()}
}

func account(data ...byte) ledger.Account {
	return ledger.Account{
		Address: domain.NewUniquePubkey(),
		Owner:   domain.NewUniquePubkey(),
		Data:    data,
	}
}

// Run exercises store. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) ledger.Store) {
	ctx := context.Background()

	t.Run("missing account is not found", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(ctx, domain.NewUniquePubkey())
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	t.Run("create then get", func(t *testing.T) {
		store := newStore(t)
		acc := account(1, 2, 3)
		require.NoError(t, store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangeCreate, Account: acc}}))

		got, err := store.Get(ctx, acc.Address)
		require.NoError(t, err)
		assert.Equal(t, acc.Owner, got.Owner)
		assert.Equal(t, []byte{1, 2, 3}, got.Data)
	})

	t.Run("second create is rejected", func(t *testing.T) {
		store := newStore(t)
		acc := account(1)
		require.NoError(t, store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangeCreate, Account: acc}}))

		err := store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangeCreate, Account: acc}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentinel.ErrAlreadyUsed))
	})

	t.Run("rejected batch writes nothing", func(t *testing.T) {
		store := newStore(t)
		taken := account(1)
		require.NoError(t, store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangeCreate, Account: taken}}))

		fresh := account(9)
		err := store.Apply(ctx, nil, []ledger.Change{
			{Kind: ledger.ChangePut, Account: fresh},
			{Kind: ledger.ChangeCreate, Account: taken},
		})
		require.Error(t, err)

		_, err = store.Get(ctx, fresh.Address)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound), "put staged before the failed create must roll back")
	})

	t.Run("put overwrites and delete removes", func(t *testing.T) {
		store := newStore(t)
		acc := account(1)
		require.NoError(t, store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangePut, Account: acc}}))

		acc.Data = []byte{7, 7}
		require.NoError(t, store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangePut, Account: acc}}))
		got, err := store.Get(ctx, acc.Address)
		require.NoError(t, err)
		assert.Equal(t, []byte{7, 7}, got.Data)

		require.NoError(t, store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangeDelete, Account: ledger.Account{Address: acc.Address}}}))
		_, err = store.Get(ctx, acc.Address)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	t.Run("concurrent creates of one address admit exactly one", func(t *testing.T) {
		store := newStore(t)
		acc := account(1)
		const goroutines = 20

		var wg sync.WaitGroup
		var successes, conflicts atomic.Int32
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangeCreate, Account: acc}})
				switch {
				case err == nil:
					successes.Add(1)
				case errors.Is(err, sentinel.ErrAlreadyUsed):
					conflicts.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), successes.Load(), "exactly one create should succeed")
		assert.Equal(t, int32(goroutines-1), conflicts.Load(), "all others should see the address taken")
	})

	t.Run("matching reads commit", func(t *testing.T) {
		store := newStore(t)
		acc := account(1)
		require.NoError(t, store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangePut, Account: acc}}))
		missing := domain.NewUniquePubkey()

		reads := []ledger.Read{read(&acc, acc.Address), read(nil, missing)}
		acc.Data = []byte{2}
		require.NoError(t, store.Apply(ctx, reads, []ledger.Change{{Kind: ledger.ChangePut, Account: acc}}))

		got, err := store.Get(ctx, acc.Address)
		require.NoError(t, err)
		assert.Equal(t, []byte{2}, got.Data)
	})

	t.Run("stale read rejects the batch", func(t *testing.T) {
		store := newStore(t)
		vault := account(10)
		require.NoError(t, store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangePut, Account: vault}}))
		seen, err := store.Get(ctx, vault.Address)
		require.NoError(t, err)

		drained := vault
		drained.Data = []byte{0}
		require.NoError(t, store.Apply(ctx, []ledger.Read{read(seen, vault.Address)}, []ledger.Change{{Kind: ledger.ChangePut, Account: drained}}))

		payout := account(10)
		err = store.Apply(ctx, []ledger.Read{read(seen, vault.Address)}, []ledger.Change{
			{Kind: ledger.ChangePut, Account: drained},
			{Kind: ledger.ChangePut, Account: payout},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentinel.ErrConflict))

		_, err = store.Get(ctx, payout.Address)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound), "nothing from a stale batch is written")
	})

	t.Run("address read as absent and since written rejects the batch", func(t *testing.T) {
		store := newStore(t)
		slot := account(1)
		other := account(2)
		require.NoError(t, store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangePut, Account: slot}}))

		err := store.Apply(ctx, []ledger.Read{read(nil, slot.Address)}, []ledger.Change{{Kind: ledger.ChangePut, Account: other}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentinel.ErrConflict))
	})

	t.Run("concurrent read-modify-write loses no update", func(t *testing.T) {
		store := newStore(t)
		counter := account(0)
		require.NoError(t, store.Apply(ctx, nil, []ledger.Change{{Kind: ledger.ChangePut, Account: counter}}))
		const goroutines = 10

		var wg sync.WaitGroup
		var committed atomic.Int32
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				seen, err := store.Get(ctx, counter.Address)
				if err != nil {
					return
				}
				next := seen.Clone()
				next.Data = []byte{seen.Data[0] + 1}
				if store.Apply(ctx, []ledger.Read{read(seen, counter.Address)}, []ledger.Change{{Kind: ledger.ChangePut, Account: next}}) == nil {
					committed.Add(1)
				}
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, counter.Address)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, committed.Load(), int32(1))
		assert.Equal(t, byte(committed.Load()), got.Data[0], "every committed increment is visible")
	})
}
