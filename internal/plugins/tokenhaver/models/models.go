// Package models holds the token haver registrar: the mints whose locked
// holdings make someone a voter.
package models

import (
	"fmt"
	"slices"

	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

// WeightPerMint is what each distinct locked mint adds to a voter's weight.
const WeightPerMint uint64 = 1_000_000

// MaxMints bounds the mint list so its length fits the encoded u8 count.
const MaxMints = 255

type Registrar struct {
	vwmodels.RegistrarIdentity
	Mints []domain.Pubkey
}

// Accepts reports whether mint is one of the configured mints.
func (r *Registrar) Accepts(mint domain.Pubkey) bool {
	return slices.Contains(r.Mints, mint)
}

// Encode sizes the account to the current mint list; configuring mints
// reallocates it.
func (r *Registrar) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + 4*domain.PubkeySize + 1 + 1 + len(r.Mints)*domain.PubkeySize)
	r.RegistrarIdentity.EncodeTo(w)
	w.U8(uint8(len(r.Mints)))
	for _, m := range r.Mints {
		w.Pubkey(m)
	}
	return w.Bytes()
}

func DecodeRegistrar(data []byte) (*Registrar, error) {
	r := codec.NewReader(data)
	reg := &Registrar{RegistrarIdentity: vwmodels.DecodeRegistrarIdentity(r)}
	n := int(r.U8())
	reg.Mints = make([]domain.Pubkey, 0, n)
	for range n {
		reg.Mints = append(reg.Mints, r.Pubkey())
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode token haver registrar: %w", err)
	}
	return reg, nil
}
