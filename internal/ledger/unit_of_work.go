package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"voterweight/pkg/domain"
	"voterweight/pkg/platform/sentinel"
)

// maxParallelLoads bounds concurrent store reads issued by LoadMany.
const maxParallelLoads = 8

type stagedChange struct {
	kind    ChangeKind
	account Account
}

// UnitOfWork is a snapshot view of the ledger plus the writes staged by one
// operation. Reads observe staged writes. Nothing is persisted until Commit.
type UnitOfWork struct {
	store  Store
	now    Instant
	staged map[domain.Pubkey]*stagedChange
	order  []domain.Pubkey
	done   bool

	readsMu sync.Mutex
	reads   map[domain.Pubkey]Read
}

func newUnitOfWork(store Store, now Instant) *UnitOfWork {
	return &UnitOfWork{
		store:  store,
		now:    now,
		staged: make(map[domain.Pubkey]*stagedChange),
		reads:  make(map[domain.Pubkey]Read),
	}
}

// Slot is the slot the whole unit of work executes in.
func (u *UnitOfWork) Slot() domain.Slot { return u.now.Slot }

// Timestamp is the unix time the whole unit of work executes at.
func (u *UnitOfWork) Timestamp() domain.UnixTimestamp { return u.now.Timestamp }

// Get returns the account at address as seen by this unit of work.
func (u *UnitOfWork) Get(ctx context.Context, address domain.Pubkey) (*Account, error) {
	if st, ok := u.staged[address]; ok {
		if st.kind == ChangeDelete {
			return nil, fmt.Errorf("get account %s: %w", address, sentinel.ErrNotFound)
		}
		acc := st.account.Clone()
		return &acc, nil
	}
	acc, err := u.store.Get(ctx, address)
	if errors.Is(err, sentinel.ErrNotFound) {
		u.observe(Read{Address: address})
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	u.observe(Read{Address: address, Found: true, Digest: acc.Digest()})
	return acc, nil
}

// observe keeps the first store read of each address.
func (u *UnitOfWork) observe(r Read) {
	u.readsMu.Lock()
	defer u.readsMu.Unlock()
	if _, seen := u.reads[r.Address]; !seen {
		u.reads[r.Address] = r
	}
}

// Reads returns what this unit of work loaded from the store, sorted by address.
func (u *UnitOfWork) Reads() []Read {
	u.readsMu.Lock()
	reads := make([]Read, 0, len(u.reads))
	for _, r := range u.reads {
		reads = append(reads, r)
	}
	u.readsMu.Unlock()
	slices.SortFunc(reads, func(a, b Read) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	return reads
}

// Exists reports whether address holds an account in this unit of work.
func (u *UnitOfWork) Exists(ctx context.Context, address domain.Pubkey) (bool, error) {
	_, err := u.Get(ctx, address)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LoadMany fetches several accounts concurrently, preserving input order.
// Any missing account fails the whole load.
func (u *UnitOfWork) LoadMany(ctx context.Context, addresses []domain.Pubkey) ([]*Account, error) {
	out := make([]*Account, len(addresses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, addr := range addresses {
		g.Go(func() error {
			acc, err := u.Get(gctx, addr)
			if err != nil {
				return err
			}
			out[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create stages a create-if-absent write. It fails eagerly with an error
// wrapping sentinel.ErrAlreadyUsed when the address is already taken; Commit
// re-checks atomically against concurrent writers.
func (u *UnitOfWork) Create(ctx context.Context, acc Account) error {
	exists, err := u.Exists(ctx, acc.Address)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("create account %s: %w", acc.Address, sentinel.ErrAlreadyUsed)
	}
	if st, ok := u.staged[acc.Address]; ok && st.kind == ChangeDelete {
		// The account existed before this unit of work; re-creating it is an overwrite.
		st.kind = ChangePut
		st.account = acc.Clone()
		return nil
	}
	u.stage(ChangeCreate, acc.Clone())
	return nil
}

// Put stages an upsert.
func (u *UnitOfWork) Put(acc Account) {
	if st, ok := u.staged[acc.Address]; ok && st.kind == ChangeCreate {
		st.account = acc.Clone()
		return
	}
	u.stage(ChangePut, acc.Clone())
}

// Delete stages removal of address.
func (u *UnitOfWork) Delete(address domain.Pubkey) {
	if st, ok := u.staged[address]; ok && st.kind == ChangeCreate {
		delete(u.staged, address)
		return
	}
	u.stage(ChangeDelete, Account{Address: address})
}

func (u *UnitOfWork) stage(kind ChangeKind, acc Account) {
	if st, ok := u.staged[acc.Address]; ok {
		st.kind = kind
		st.account = acc
		return
	}
	u.staged[acc.Address] = &stagedChange{kind: kind, account: acc}
	u.order = append(u.order, acc.Address)
}

// Changes returns the staged writes in first-touch order.
func (u *UnitOfWork) Changes() []Change {
	changes := make([]Change, 0, len(u.staged))
	for _, addr := range u.order {
		st, ok := u.staged[addr]
		if !ok {
			continue
		}
		changes = append(changes, Change{Kind: st.kind, Account: st.account})
	}
	return changes
}

// Commit applies every staged write atomically, provided every account read
// from the store is unchanged. A unit of work commits at most once.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.done {
		return fmt.Errorf("commit: %w", sentinel.ErrInvalidState)
	}
	u.done = true
	changes := u.Changes()
	if len(changes) == 0 {
		return nil
	}
	// A create already demands absence and reports the clash as ErrAlreadyUsed.
	reads := slices.DeleteFunc(u.Reads(), func(r Read) bool {
		st, ok := u.staged[r.Address]
		return ok && st.kind == ChangeCreate
	})
	return u.store.Apply(ctx, reads, changes)
}
