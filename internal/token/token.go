// Package token reads token program mints and token accounts in their
// canonical fixed-size layouts.
package token

import (
	"errors"
	"fmt"

	"voterweight/internal/ledger"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

// ProgramID owns every mint and token account.
var ProgramID = domain.MustParsePubkey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

const (
	MintSize    = 82
	AccountSize = 165
)

var (
	ErrInvalidAccountOwner = errors.New("account is not owned by the token program")
	ErrInvalidAccountSize  = errors.New("invalid token program account size")
	ErrUninitialized       = errors.New("token program account is not initialized")
)

// Mint is a fungible asset class.
type Mint struct {
	MintAuthority   *domain.Pubkey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *domain.Pubkey
}

func (m *Mint) Encode() []byte {
	w := codec.NewWriter(MintSize)
	w.COptionPubkey(m.MintAuthority)
	w.U64(m.Supply)
	w.U8(m.Decimals)
	w.Bool(m.IsInitialized)
	w.COptionPubkey(m.FreezeAuthority)
	return w.Bytes()
}

func DecodeMint(data []byte) (*Mint, error) {
	if len(data) != MintSize {
		return nil, fmt.Errorf("%w: mint is %d bytes", ErrInvalidAccountSize, len(data))
	}
	r := codec.NewReader(data)
	m := &Mint{
		MintAuthority:   r.COptionPubkey(),
		Supply:          r.U64(),
		Decimals:        r.U8(),
		IsInitialized:   r.Bool(),
		FreezeAuthority: r.COptionPubkey(),
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode mint: %w", err)
	}
	if !m.IsInitialized {
		return nil, ErrUninitialized
	}
	return m, nil
}

// AccountState is the lifecycle state of a token account.
type AccountState uint8

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Account is a balance of one mint held by one owner.
type Account struct {
	Mint            domain.Pubkey
	Owner           domain.Pubkey
	Amount          uint64
	Delegate        *domain.Pubkey
	State           AccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *domain.Pubkey
}

func (a *Account) IsFrozen() bool { return a.State == AccountStateFrozen }

func (a *Account) Encode() []byte {
	w := codec.NewWriter(AccountSize)
	w.Pubkey(a.Mint)
	w.Pubkey(a.Owner)
	w.U64(a.Amount)
	w.COptionPubkey(a.Delegate)
	w.U8(uint8(a.State))
	if a.IsNative == nil {
		w.U32(0)
		w.U64(0)
	} else {
		w.U32(1)
		w.U64(*a.IsNative)
	}
	w.U64(a.DelegatedAmount)
	w.COptionPubkey(a.CloseAuthority)
	return w.Bytes()
}

func DecodeAccount(data []byte) (*Account, error) {
	if len(data) != AccountSize {
		return nil, fmt.Errorf("%w: token account is %d bytes", ErrInvalidAccountSize, len(data))
	}
	r := codec.NewReader(data)
	a := &Account{
		Mint:     r.Pubkey(),
		Owner:    r.Pubkey(),
		Amount:   r.U64(),
		Delegate: r.COptionPubkey(),
		State:    AccountState(r.U8()),
	}
	nativeTag := r.U32()
	native := r.U64()
	if nativeTag == 1 {
		a.IsNative = &native
	}
	a.DelegatedAmount = r.U64()
	a.CloseAuthority = r.COptionPubkey()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode token account: %w", err)
	}
	if a.State == AccountStateUninitialized || a.State > AccountStateFrozen {
		return nil, ErrUninitialized
	}
	return a, nil
}

// GetMint decodes a mint owned by the token program.
func GetMint(acc *ledger.Account) (*Mint, error) {
	if acc.Owner != ProgramID {
		return nil, ErrInvalidAccountOwner
	}
	return DecodeMint(acc.Data)
}

// GetAccount decodes a token account owned by the token program.
func GetAccount(acc *ledger.Account) (*Account, error) {
	if acc.Owner != ProgramID {
		return nil, ErrInvalidAccountOwner
	}
	return DecodeAccount(acc.Data)
}
