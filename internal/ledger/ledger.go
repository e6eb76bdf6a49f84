package ledger

import (
	"context"
	"errors"
	"log/slog"

	"voterweight/pkg/domain"
)

// Ledger runs operations as atomic units of work over a Store.
type Ledger struct {
	store  Store
	clock  Clock
	locker *Locker
	logger *slog.Logger
}

type Option func(*Ledger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithLocker shares one in-process Locker between ledgers over the same store.
func WithLocker(locker *Locker) Option {
	return func(l *Ledger) {
		if locker != nil {
			l.locker = locker
		}
	}
}

// New constructs a Ledger.
func New(store Store, clock Clock, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	if clock == nil {
		return nil, errors.New("ledger clock is required")
	}
	l := &Ledger{
		store:  store,
		clock:  clock,
		locker: NewLocker(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Now returns the current ledger instant.
func (l *Ledger) Now() Instant {
	return l.clock.Now()
}

// Get reads one committed account.
func (l *Ledger) Get(ctx context.Context, address domain.Pubkey) (*Account, error) {
	return l.store.Get(ctx, address)
}

// Update runs fn in a fresh unit of work while holding the locks for
// lockKeys, then commits the staged writes. If fn fails nothing is written.
// The locks only cover this process; the commit itself is rejected with an
// error wrapping sentinel.ErrConflict when another writer changed any account
// fn read.
func (l *Ledger) Update(ctx context.Context, lockKeys []domain.Pubkey, fn func(ctx context.Context, uow *UnitOfWork) error) error {
	unlock := l.locker.Lock(lockKeys...)
	defer unlock()

	uow := newUnitOfWork(l.store, l.clock.Now())
	if err := fn(ctx, uow); err != nil {
		return err
	}
	if err := uow.Commit(ctx); err != nil {
		l.logger.WarnContext(ctx, "ledger commit failed",
			"slot", uow.Slot(),
			"changes", len(uow.Changes()),
			"error", err,
		)
		return err
	}
	return nil
}

// View runs fn against a read-only snapshot. Staged writes are discarded.
func (l *Ledger) View(ctx context.Context, fn func(ctx context.Context, uow *UnitOfWork) error) error {
	return fn(ctx, newUnitOfWork(l.store, l.clock.Now()))
}

// Seed upserts accounts directly. Used by fixtures and by the external
// collaborators' side of tests.
func (l *Ledger) Seed(ctx context.Context, accounts ...Account) error {
	changes := make([]Change, 0, len(accounts))
	for _, acc := range accounts {
		changes = append(changes, Change{Kind: ChangePut, Account: acc.Clone()})
	}
	return l.store.Apply(ctx, nil, changes)
}
