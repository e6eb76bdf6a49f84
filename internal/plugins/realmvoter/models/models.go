// Package models holds the realm voter registrar: the governance programs
// whose realms' members get a fixed weight in this realm.
package models

import (
	"fmt"
	"slices"
	"strings"

	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

const governanceProgramConfigSize = domain.PubkeySize + 8

// ChangeType says whether a configure call adds or removes an entry.
type ChangeType uint8

const (
	ChangeUpsert ChangeType = iota
	ChangeRemove
)

func (c ChangeType) String() string {
	switch c {
	case ChangeUpsert:
		return "upsert"
	case ChangeRemove:
		return "remove"
	default:
		return fmt.Sprintf("ChangeType(%d)", uint8(c))
	}
}

func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ChangeType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "upsert":
		*c = ChangeUpsert
	case "remove":
		*c = ChangeRemove
	default:
		return fmt.Errorf("unknown change type %q", text)
	}
	return nil
}

type GovernanceProgramConfig struct {
	ProgramID domain.Pubkey
	Reserved  [8]byte
}

// Registrar grants RealmMemberVoterWeight to members of any realm run by one
// of the configured governance programs.
type Registrar struct {
	vwmodels.RegistrarIdentity
	MaxGovernancePrograms    uint8
	GovernanceProgramConfigs []GovernanceProgramConfig
	RealmMemberVoterWeight   uint64
	MaxVoterWeight           uint64
	Reserved                 [128]byte
}

// IsConfigured reports whether program is one of the accepted governance programs.
func (r *Registrar) IsConfigured(program domain.Pubkey) bool {
	return r.index(program) >= 0
}

func (r *Registrar) index(program domain.Pubkey) int {
	return slices.IndexFunc(r.GovernanceProgramConfigs, func(c GovernanceProgramConfig) bool { return c.ProgramID == program })
}

// Upsert adds program unless present. It returns false when the arena is full.
func (r *Registrar) Upsert(program domain.Pubkey) bool {
	if i := r.index(program); i >= 0 {
		r.GovernanceProgramConfigs[i] = GovernanceProgramConfig{ProgramID: program}
		return true
	}
	if len(r.GovernanceProgramConfigs) >= int(r.MaxGovernancePrograms) {
		return false
	}
	r.GovernanceProgramConfigs = append(r.GovernanceProgramConfigs, GovernanceProgramConfig{ProgramID: program})
	return true
}

// Remove drops program. It returns false when program was not configured.
func (r *Registrar) Remove(program domain.Pubkey) bool {
	i := r.index(program)
	if i < 0 {
		return false
	}
	r.GovernanceProgramConfigs = slices.Delete(r.GovernanceProgramConfigs, i, i+1)
	return true
}

func (r *Registrar) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + 4*domain.PubkeySize + 1 + 2 +
		int(r.MaxGovernancePrograms)*governanceProgramConfigSize + 16 + len(r.Reserved))
	r.RegistrarIdentity.EncodeTo(w)
	w.U8(r.MaxGovernancePrograms)
	w.U8(uint8(len(r.GovernanceProgramConfigs)))
	for _, c := range r.GovernanceProgramConfigs {
		w.Pubkey(c.ProgramID)
		w.Raw(c.Reserved[:])
	}
	if free := int(r.MaxGovernancePrograms) - len(r.GovernanceProgramConfigs); free > 0 {
		w.Zeros(free * governanceProgramConfigSize)
	}
	w.U64(r.RealmMemberVoterWeight)
	w.U64(r.MaxVoterWeight)
	w.Raw(r.Reserved[:])
	return w.Bytes()
}

func DecodeRegistrar(data []byte) (*Registrar, error) {
	r := codec.NewReader(data)
	reg := &Registrar{RegistrarIdentity: vwmodels.DecodeRegistrarIdentity(r)}
	reg.MaxGovernancePrograms = r.U8()
	n := int(r.U8())
	if r.Err() == nil && n > int(reg.MaxGovernancePrograms) {
		return nil, fmt.Errorf("decode realm voter registrar: %d programs exceed capacity %d", n, reg.MaxGovernancePrograms)
	}
	reg.GovernanceProgramConfigs = make([]GovernanceProgramConfig, 0, n)
	for range n {
		c := GovernanceProgramConfig{ProgramID: r.Pubkey()}
		r.Skip(len(c.Reserved))
		reg.GovernanceProgramConfigs = append(reg.GovernanceProgramConfigs, c)
	}
	r.Skip((int(reg.MaxGovernancePrograms) - n) * governanceProgramConfigSize)
	reg.RealmMemberVoterWeight = r.U64()
	reg.MaxVoterWeight = r.U64()
	r.Skip(len(reg.Reserved))
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode realm voter registrar: %w", err)
	}
	return reg, nil
}
