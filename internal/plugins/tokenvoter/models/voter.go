package models

import (
	"fmt"

	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

var VoterDiscriminator = codec.AccountDiscriminator("Voter")

const depositEntrySize = 8 + 1 + 8 + 1 + 38

// DepositEntry tracks one voter's deposit of the mint at VotingMintConfigIdx.
type DepositEntry struct {
	AmountDepositedNative uint64
	VotingMintConfigIdx   uint8
	// DepositSlotHash is the slot of the last deposit. Zero marks a free entry.
	DepositSlotHash domain.Slot
	IsUsed          bool
	Reserved        [38]byte
}

func (d DepositEntry) Active() bool { return d.DepositSlotHash != 0 }

// Voter is the deposit arena of one voter under one registrar. Entry i holds
// deposits of the registrar's i-th mint.
type Voter struct {
	VoterAuthority domain.Pubkey
	Registrar      domain.Pubkey
	Deposits       []DepositEntry
	Reserved       [94]byte
}

// NewVoter sizes the arena to the registrar's capacity.
func NewVoter(authority, registrar domain.Pubkey, maxMints uint8) *Voter {
	return &Voter{
		VoterAuthority: authority,
		Registrar:      registrar,
		Deposits:       make([]DepositEntry, maxMints),
	}
}

// VoterAddress is the arena of authority under registrar.
func VoterAddress(program, registrar, authority domain.Pubkey) domain.Pubkey {
	return domain.DeriveAddress(program, registrar.Bytes(), []byte("voter"), authority.Bytes())
}

// Grow extends the arena after the registrar was resized.
func (v *Voter) Grow(maxMints uint8) {
	if n := int(maxMints) - len(v.Deposits); n > 0 {
		v.Deposits = append(v.Deposits, make([]DepositEntry, n)...)
	}
}

// Weight sums the vote weight of every used entry.
func (v *Voter) Weight(reg *Registrar) (uint64, bool) {
	var sum uint64
	for _, d := range v.Deposits {
		if !d.IsUsed {
			continue
		}
		if int(d.VotingMintConfigIdx) >= len(reg.VotingMintConfigs) {
			return 0, false
		}
		w, ok := reg.VotingMintConfigs[d.VotingMintConfigIdx].DigitShiftNative(d.AmountDepositedNative)
		if !ok || sum+w < sum {
			return 0, false
		}
		sum += w
	}
	return sum, true
}

// TotalDeposited reports false when the sum overflows.
func (v *Voter) TotalDeposited() (uint64, bool) {
	var sum uint64
	for _, d := range v.Deposits {
		if sum+d.AmountDepositedNative < sum {
			return 0, false
		}
		sum += d.AmountDepositedNative
	}
	return sum, true
}

func (v *Voter) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + 2*domain.PubkeySize + 4 + len(v.Deposits)*depositEntrySize + len(v.Reserved))
	w.Raw(VoterDiscriminator[:])
	w.Pubkey(v.VoterAuthority)
	w.Pubkey(v.Registrar)
	w.U32(uint32(len(v.Deposits)))
	for _, d := range v.Deposits {
		w.U64(d.AmountDepositedNative)
		w.U8(d.VotingMintConfigIdx)
		w.U64(uint64(d.DepositSlotHash))
		w.Bool(d.IsUsed)
		w.Raw(d.Reserved[:])
	}
	w.Raw(v.Reserved[:])
	return w.Bytes()
}

func DecodeVoter(data []byte) (*Voter, error) {
	r := codec.NewReader(data)
	r.Discriminator(VoterDiscriminator)
	v := &Voter{VoterAuthority: r.Pubkey(), Registrar: r.Pubkey()}
	n := int(r.U32())
	if r.Err() == nil && n > 255 {
		return nil, fmt.Errorf("decode voter: %d deposit entries", n)
	}
	v.Deposits = make([]DepositEntry, 0, n)
	for range n {
		d := DepositEntry{
			AmountDepositedNative: r.U64(),
			VotingMintConfigIdx:   r.U8(),
			DepositSlotHash:       domain.Slot(r.U64()),
			IsUsed:                r.Bool(),
		}
		r.Skip(len(d.Reserved))
		v.Deposits = append(v.Deposits, d)
	}
	r.Skip(len(v.Reserved))
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode voter: %w", err)
	}
	return v, nil
}
