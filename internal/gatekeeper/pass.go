// Package gatekeeper reads gateway passes: attestations issued by a
// gatekeeper network that their owner passed its checks.
package gatekeeper

import (
	"errors"
	"fmt"

	"voterweight/internal/ledger"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

// ProgramID owns every gateway pass.
var ProgramID = domain.MustParsePubkey("gatem74V238djXdzWnJf94Wo1DcnuGkfijbf3AuBhfs")

var ErrInvalidAccountOwner = errors.New("account is not owned by the gatekeeper program")

const passVersion uint8 = 1

type PassState uint8

const (
	PassStateActive PassState = iota
	PassStateRevoked
	PassStateFrozen
)

// Pass is a gateway token held by Owner and issued under GatekeeperNetwork.
type Pass struct {
	Owner             domain.Pubkey
	GatekeeperNetwork domain.Pubkey
	Issuer            domain.Pubkey
	State             PassState
	ExpireTime        *domain.UnixTimestamp
}

// IsValid reports whether the pass is active and unexpired at now.
func (p *Pass) IsValid(now domain.UnixTimestamp) bool {
	if p.State != PassStateActive {
		return false
	}
	return p.ExpireTime == nil || *p.ExpireTime > now
}

func (p *Pass) Encode() []byte {
	w := codec.NewWriter(1 + 3*domain.PubkeySize + 1 + 9)
	w.U8(passVersion)
	w.Pubkey(p.Owner)
	w.Pubkey(p.GatekeeperNetwork)
	w.Pubkey(p.Issuer)
	w.U8(uint8(p.State))
	if p.ExpireTime == nil {
		w.U8(0)
	} else {
		w.U8(1)
		w.I64(int64(*p.ExpireTime))
	}
	return w.Bytes()
}

func DecodePass(data []byte) (*Pass, error) {
	r := codec.NewReader(data)
	if v := r.U8(); r.Err() == nil && v != passVersion {
		return nil, fmt.Errorf("decode gateway pass: unsupported version %d", v)
	}
	p := &Pass{
		Owner:             r.Pubkey(),
		GatekeeperNetwork: r.Pubkey(),
		Issuer:            r.Pubkey(),
		State:             PassState(r.U8()),
	}
	if expires := r.OptionU64(); expires != nil {
		ts := domain.UnixTimestamp(*expires)
		p.ExpireTime = &ts
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode gateway pass: %w", err)
	}
	return p, nil
}

func GetPass(acc *ledger.Account) (*Pass, error) {
	if acc.Owner != ProgramID {
		return nil, ErrInvalidAccountOwner
	}
	return DecodePass(acc.Data)
}
