// Package staking reads the token staking program's pools and deposit
// receipts. A receipt is proof that its owner locked an amount of the pool's
// mint until deposit_timestamp + lockup_duration.
package staking

import (
	"errors"
	"fmt"

	"voterweight/internal/ledger"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

// ProgramID owns every stake pool and deposit receipt.
var ProgramID = domain.MustParsePubkey("STAKEkKzbdeKkqzKpLkNQD3SUuLgshDKCD7U8duxAbB")

var (
	StakePoolDiscriminator           = codec.AccountDiscriminator("StakePool")
	StakeDepositReceiptDiscriminator = codec.AccountDiscriminator("StakeDepositReceipt")

	ErrInvalidAccountOwner = errors.New("account is not owned by the staking program")
)

type StakePool struct {
	Authority   domain.Pubkey
	Mint        domain.Pubkey
	StakeMint   domain.Pubkey
	MinDuration uint64
	MaxDuration uint64
}

func (p *StakePool) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + 3*domain.PubkeySize + 16)
	w.Raw(StakePoolDiscriminator[:])
	w.Pubkey(p.Authority)
	w.Pubkey(p.Mint)
	w.Pubkey(p.StakeMint)
	w.U64(p.MinDuration)
	w.U64(p.MaxDuration)
	return w.Bytes()
}

func DecodeStakePool(data []byte) (*StakePool, error) {
	r := codec.NewReader(data)
	r.Discriminator(StakePoolDiscriminator)
	p := &StakePool{
		Authority:   r.Pubkey(),
		Mint:        r.Pubkey(),
		StakeMint:   r.Pubkey(),
		MinDuration: r.U64(),
		MaxDuration: r.U64(),
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode stake pool: %w", err)
	}
	return p, nil
}

type StakeDepositReceipt struct {
	Owner            domain.Pubkey
	Payer            domain.Pubkey
	StakePool        domain.Pubkey
	LockupDuration   uint64
	DepositTimestamp domain.UnixTimestamp
	DepositAmount    uint64
}

// LockupEnd is when the deposit unlocks. ok is false when the sum overflows.
func (r *StakeDepositReceipt) LockupEnd() (end domain.UnixTimestamp, ok bool) {
	if r.LockupDuration > uint64(1<<63-1)-uint64(max(r.DepositTimestamp, 0)) {
		return 0, false
	}
	return r.DepositTimestamp + domain.UnixTimestamp(r.LockupDuration), true
}

func (r *StakeDepositReceipt) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + 3*domain.PubkeySize + 24)
	w.Raw(StakeDepositReceiptDiscriminator[:])
	w.Pubkey(r.Owner)
	w.Pubkey(r.Payer)
	w.Pubkey(r.StakePool)
	w.U64(r.LockupDuration)
	w.I64(int64(r.DepositTimestamp))
	w.U64(r.DepositAmount)
	return w.Bytes()
}

func DecodeStakeDepositReceipt(data []byte) (*StakeDepositReceipt, error) {
	r := codec.NewReader(data)
	r.Discriminator(StakeDepositReceiptDiscriminator)
	rec := &StakeDepositReceipt{
		Owner:            r.Pubkey(),
		Payer:            r.Pubkey(),
		StakePool:        r.Pubkey(),
		LockupDuration:   r.U64(),
		DepositTimestamp: domain.UnixTimestamp(r.I64()),
		DepositAmount:    r.U64(),
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode stake deposit receipt: %w", err)
	}
	return rec, nil
}

func GetStakePool(acc *ledger.Account) (*StakePool, error) {
	if acc.Owner != ProgramID {
		return nil, ErrInvalidAccountOwner
	}
	return DecodeStakePool(acc.Data)
}

func GetStakeDepositReceipt(acc *ledger.Account) (*StakeDepositReceipt, error) {
	if acc.Owner != ProgramID {
		return nil, ErrInvalidAccountOwner
	}
	return DecodeStakeDepositReceipt(acc.Data)
}
