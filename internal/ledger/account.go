// Package ledger is the account substrate every plugin operation runs against.
//
// All state (registrars, output records, dedup ledgers and the external
// accounts plugins read) lives in addressable accounts. An operation reads a
// snapshot through a UnitOfWork, stages its writes, and commits them with a
// single atomic Store.Apply. A failed check returns before Commit, so no
// partial effect survives.
package ledger

import (
	"context"

	"golang.org/x/crypto/blake2b"

	"voterweight/pkg/domain"
)

// Account is one addressable piece of ledger state. Owner is the program
// that is allowed to write it; readers use it to verify provenance.
type Account struct {
	Address domain.Pubkey
	Owner   domain.Pubkey
	Data    []byte
}

// Clone returns a deep copy so callers never alias stored bytes.
func (a Account) Clone() Account {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return Account{Address: a.Address, Owner: a.Owner, Data: data}
}

// Digest fingerprints an account's owner and data.
type Digest [blake2b.Size256]byte

func (a Account) Digest() Digest {
	h, _ := blake2b.New256(nil)
	h.Write(a.Owner[:])
	h.Write(a.Data)
	var d Digest
	h.Sum(d[:0])
	return d
}

// Read is what a unit of work saw at an address the first time it loaded it
// from the store. Found is false when the address was empty.
type Read struct {
	Address domain.Pubkey
	Found   bool
	Digest  Digest
}

// Matches reports whether acc (nil when absent) still equals the read.
func (r Read) Matches(acc *Account) bool {
	if acc == nil {
		return !r.Found
	}
	return r.Found && acc.Digest() == r.Digest
}

// ChangeKind is the kind of a staged write.
type ChangeKind uint8

const (
	// ChangeCreate writes an account that must not exist yet.
	ChangeCreate ChangeKind = iota + 1
	// ChangePut writes an account whether or not it exists.
	ChangePut
	// ChangeDelete removes an account; deleting an absent account is a no-op.
	ChangeDelete
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCreate:
		return "create"
	case ChangePut:
		return "put"
	case ChangeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is one staged write. Delete only uses Account.Address.
type Change struct {
	Kind    ChangeKind
	Account Account
}

// Store persists accounts.
//
// Get returns sentinel.ErrNotFound for absent accounts.
// Apply is atomic and all-or-nothing:
//   - when any stored account no longer matches its entry in reads the batch is
//     rejected with an error wrapping sentinel.ErrConflict
//   - when any ChangeCreate targets an existing address the batch is rejected
//     with an error wrapping sentinel.ErrAlreadyUsed
//
// The reads check and the writes must happen under the same isolation, so
// two instances sharing a store cannot both commit over the same snapshot.
type Store interface {
	Get(ctx context.Context, address domain.Pubkey) (*Account, error)
	Apply(ctx context.Context, reads []Read, changes []Change) error
}
