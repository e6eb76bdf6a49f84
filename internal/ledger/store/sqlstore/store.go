// Package sqlstore persists ledger accounts in a SQL database. The same store
// serves Postgres (lib/pq or pgx driver) and SQLite (modernc driver); only
// placeholders, column types and the migration set differ.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"voterweight/internal/ledger"
	"voterweight/pkg/domain"
	"voterweight/pkg/platform/sentinel"
	txcontext "voterweight/pkg/platform/tx"
)

// Dialect captures what differs between the supported databases.
type Dialect struct {
	Name          string
	MigrationsDir string
	placeholder   func(n int) string
	timeValue     func(t time.Time) any
	// rowLock is appended to the reads check so it holds the rows until commit.
	// SQLite has no row locks; its transactions already take the database
	// write lock up front (see database.OpenSQLite).
	rowLock string
}

var (
	Postgres = Dialect{
		Name:          "postgres",
		MigrationsDir: "postgres",
		placeholder:   func(n int) string { return "$" + strconv.Itoa(n) },
		timeValue:     func(t time.Time) any { return t.UTC() },
		rowLock:       " FOR UPDATE",
	}
	SQLite = Dialect{
		Name:          "sqlite",
		MigrationsDir: "sqlite",
		placeholder:   func(int) string { return "?" },
		timeValue:     func(t time.Time) any { return t.UTC().UnixMilli() },
	}
)

// Store implements ledger.Store on database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	clock   func() time.Time

	getQuery    string
	lockQuery   string
	createQuery string
	putQuery    string
	deleteQuery string
}

type Option func(*Store)

// WithClock sets the clock used for updated_at bookkeeping.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a SQL-backed ledger store. The schema must already exist
// (see ApplyMigrations).
func New(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	p := dialect.placeholder
	s := &Store{
		db:      db,
		dialect: dialect,
		clock:   time.Now,
	}
	s.getQuery = `SELECT owner, data FROM ledger_accounts WHERE address = ` + p(1)
	s.lockQuery = s.getQuery + dialect.rowLock
	s.createQuery = `INSERT INTO ledger_accounts (address, owner, data, updated_at)
		VALUES (` + p(1) + `, ` + p(2) + `, ` + p(3) + `, ` + p(4) + `)
		ON CONFLICT (address) DO NOTHING`
	s.putQuery = `INSERT INTO ledger_accounts (address, owner, data, updated_at)
		VALUES (` + p(1) + `, ` + p(2) + `, ` + p(3) + `, ` + p(4) + `)
		ON CONFLICT (address) DO UPDATE SET
			owner = EXCLUDED.owner,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`
	s.deleteQuery = `DELETE FROM ledger_accounts WHERE address = ` + p(1)
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Get(ctx context.Context, address domain.Pubkey) (*ledger.Account, error) {
	return s.get(ctx, s.querier(ctx), s.getQuery, address)
}

func (s *Store) get(ctx context.Context, q dbQuerier, query string, address domain.Pubkey) (*ledger.Account, error) {
	var owner, data []byte
	err := q.QueryRowContext(ctx, query, address.Bytes()).Scan(&owner, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get account %s: %w", address, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get account %s: %w", address, err)
	}
	ownerKey, err := domain.PubkeyFromBytes(owner)
	if err != nil {
		return nil, fmt.Errorf("decode owner of %s: %w", address, sentinel.ErrInvalidState)
	}
	return &ledger.Account{Address: address, Owner: ownerKey, Data: data}, nil
}

// Apply checks reads and writes all changes in one transaction. When ctx
// already carries a transaction (see pkg/platform/tx) the changes join it and
// the caller commits.
func (s *Store) Apply(ctx context.Context, reads []ledger.Read, changes []ledger.Change) error {
	if tx, ok := txcontext.From(ctx); ok {
		return s.apply(ctx, tx, reads, changes)
	}

	return txcontext.Run(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.apply(ctx, tx, reads, changes)
	})
}

// checkReads locks every read row (in the order given, which callers keep
// sorted) and compares it with what the unit of work saw. It returns the
// addresses that were read as absent.
func (s *Store) checkReads(ctx context.Context, tx *sql.Tx, reads []ledger.Read) (map[domain.Pubkey]bool, error) {
	absent := make(map[domain.Pubkey]bool)
	for _, r := range reads {
		current, err := s.get(ctx, tx, s.lockQuery, r.Address)
		if errors.Is(err, sentinel.ErrNotFound) {
			current, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		if !r.Matches(current) {
			return nil, fmt.Errorf("account %s changed since read: %w", r.Address, sentinel.ErrConflict)
		}
		if !r.Found {
			absent[r.Address] = true
		}
	}
	return absent, nil
}

func (s *Store) apply(ctx context.Context, tx *sql.Tx, reads []ledger.Read, changes []ledger.Change) error {
	absent, err := s.checkReads(ctx, tx, reads)
	if err != nil {
		return err
	}
	now := s.dialect.timeValue(s.clock())
	for _, ch := range changes {
		acc := ch.Account
		switch ch.Kind {
		case ledger.ChangePut:
			if !absent[acc.Address] {
				if _, err := tx.ExecContext(ctx, s.putQuery, acc.Address.Bytes(), acc.Owner.Bytes(), acc.Data, now); err != nil {
					return fmt.Errorf("put account %s: %w", acc.Address, err)
				}
				continue
			}
			// An empty row cannot be locked, so a put over an address read as
			// absent must still find it absent.
			n, err := s.exec(ctx, tx, s.createQuery, acc.Address.Bytes(), acc.Owner.Bytes(), acc.Data, now)
			if err != nil {
				return fmt.Errorf("put account %s: %w", acc.Address, err)
			}
			if n == 0 {
				return fmt.Errorf("account %s changed since read: %w", acc.Address, sentinel.ErrConflict)
			}
		case ledger.ChangeCreate:
			n, err := s.exec(ctx, tx, s.createQuery, acc.Address.Bytes(), acc.Owner.Bytes(), acc.Data, now)
			if err != nil {
				return fmt.Errorf("create account %s: %w", acc.Address, err)
			}
			if n == 0 {
				return fmt.Errorf("create account %s: %w", acc.Address, sentinel.ErrAlreadyUsed)
			}
		case ledger.ChangeDelete:
			if _, err := tx.ExecContext(ctx, s.deleteQuery, acc.Address.Bytes()); err != nil {
				return fmt.Errorf("delete account %s: %w", acc.Address, err)
			}
		default:
			return fmt.Errorf("apply change %s: %w", ch.Kind, sentinel.ErrInvalidState)
		}
	}
	return nil
}

func (s *Store) exec(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
