// Package models holds the token voter accounts: the registrar with its
// voting mint configs and the per-voter deposit arena.
package models

import (
	"fmt"
	"slices"

	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

// Registrar keeps room for MaxMints configs so that voter arenas sized from
// it stay addressable by mint index.
type Registrar struct {
	vwmodels.RegistrarIdentity
	VotingMintConfigs []VotingMintConfig
	MaxMints          uint8
	Reserved          [127]byte
}

// MintIndex is the position of mint's config, or -1 when it is not configured.
func (r *Registrar) MintIndex(mint domain.Pubkey) int {
	return slices.IndexFunc(r.VotingMintConfigs, func(c VotingMintConfig) bool { return c.Mint == mint })
}

// Upsert replaces the config of cfg.Mint or appends it. It returns false when
// the registrar is full.
func (r *Registrar) Upsert(cfg VotingMintConfig) bool {
	if i := r.MintIndex(cfg.Mint); i >= 0 {
		r.VotingMintConfigs[i] = cfg
		return true
	}
	if len(r.VotingMintConfigs) >= int(r.MaxMints) {
		return false
	}
	r.VotingMintConfigs = append(r.VotingMintConfigs, cfg)
	return true
}

// MaxVoteWeight sums the digit-shifted supplies of every configured mint.
func (r *Registrar) MaxVoteWeight() (uint64, bool) {
	var sum uint64
	for _, c := range r.VotingMintConfigs {
		if !c.InUse() {
			continue
		}
		w, ok := c.DigitShiftNative(c.MintSupply)
		if !ok || sum+w < sum {
			return 0, false
		}
		sum += w
	}
	return sum, true
}

func (r *Registrar) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + 3*domain.PubkeySize + 33 + 4 +
		int(r.MaxMints)*votingMintConfigSize + 1 + len(r.Reserved))
	r.RegistrarIdentity.EncodeTo(w)
	w.U32(uint32(len(r.VotingMintConfigs)))
	for _, c := range r.VotingMintConfigs {
		w.Pubkey(c.Mint)
		w.I8(c.DigitShift)
		w.U64(c.MintSupply)
		w.Raw(c.Reserved[:])
	}
	if free := int(r.MaxMints) - len(r.VotingMintConfigs); free > 0 {
		w.Zeros(free * votingMintConfigSize)
	}
	w.U8(r.MaxMints)
	w.Raw(r.Reserved[:])
	return w.Bytes()
}

func DecodeRegistrar(data []byte) (*Registrar, error) {
	r := codec.NewReader(data)
	reg := &Registrar{RegistrarIdentity: vwmodels.DecodeRegistrarIdentity(r)}
	n := int(r.U32())
	if r.Err() == nil && n > 255 {
		return nil, fmt.Errorf("decode token voter registrar: %d mint configs", n)
	}
	reg.VotingMintConfigs = make([]VotingMintConfig, 0, n)
	for range n {
		c := VotingMintConfig{Mint: r.Pubkey(), DigitShift: r.I8(), MintSupply: r.U64()}
		r.Skip(len(c.Reserved))
		reg.VotingMintConfigs = append(reg.VotingMintConfigs, c)
	}
	// The arena padding sits before MaxMints, so its size is only known from
	// what is left: MaxMints and the reserved tail follow it.
	pad := r.Remaining() - 1 - len(reg.Reserved)
	if pad < 0 || pad%votingMintConfigSize != 0 {
		return nil, fmt.Errorf("decode token voter registrar: malformed mint arena")
	}
	r.Skip(pad)
	reg.MaxMints = r.U8()
	r.Skip(len(reg.Reserved))
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode token voter registrar: %w", err)
	}
	if n > int(reg.MaxMints) {
		return nil, fmt.Errorf("decode token voter registrar: %d mint configs exceed capacity %d", n, reg.MaxMints)
	}
	return reg, nil
}
