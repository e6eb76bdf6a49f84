// Package models holds the output records every plugin writes and the
// registrar identity every plugin shares.
package models

import (
	"fmt"

	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

const reservedSize = 8

var (
	VoterWeightRecordDiscriminator    = codec.AccountDiscriminator("VoterWeightRecord")
	MaxVoterWeightRecordDiscriminator = codec.AccountDiscriminator("MaxVoterWeightRecord")
)

// VoterWeightRecord is the per-owner output record the governance engine
// reads in the same unit of work as the vote or proposal instruction.
//
// Invariant: after any update VoterWeightExpiry is the slot of that update,
// so the record is only usable within it.
type VoterWeightRecord struct {
	Realm               domain.Pubkey
	GoverningTokenMint  domain.Pubkey
	GoverningTokenOwner domain.Pubkey
	VoterWeight         uint64
	VoterWeightExpiry   *domain.Slot
	WeightAction        *domain.VoterWeightAction
	WeightActionTarget  *domain.Pubkey
	Reserved            [reservedSize]byte
}

// NewVoterWeightRecord returns a record that grants nothing: weight 0 and an
// expiry that is already in the past.
func NewVoterWeightRecord(realm, mint, owner domain.Pubkey) *VoterWeightRecord {
	return &VoterWeightRecord{
		Realm:               realm,
		GoverningTokenMint:  mint,
		GoverningTokenOwner: owner,
		VoterWeightExpiry:   domain.Some(domain.Slot(0)),
	}
}

// ScopedTo reports whether the record was last computed for exactly this
// action and target.
func (r *VoterWeightRecord) ScopedTo(action domain.VoterWeightAction, target *domain.Pubkey) bool {
	if r.WeightAction == nil || *r.WeightAction != action {
		return false
	}
	return optionEqual(r.WeightActionTarget, target)
}

// IsExpired reports whether the record can no longer be used at slot.
func (r *VoterWeightRecord) IsExpired(slot domain.Slot) bool {
	return r.VoterWeightExpiry != nil && *r.VoterWeightExpiry < slot
}

// Reset withdraws all weight, leaving an already expired record.
func (r *VoterWeightRecord) Reset() {
	r.VoterWeight = 0
	r.VoterWeightExpiry = domain.Some(domain.Slot(0))
	r.WeightActionTarget = nil
}

func (r *VoterWeightRecord) Encode() []byte {
	w := codec.NewWriter(VoterWeightRecordSize)
	w.Raw(VoterWeightRecordDiscriminator[:])
	w.Pubkey(r.Realm)
	w.Pubkey(r.GoverningTokenMint)
	w.Pubkey(r.GoverningTokenOwner)
	w.U64(r.VoterWeight)
	w.OptionSlot(r.VoterWeightExpiry)
	w.OptionAction(r.WeightAction)
	w.OptionPubkey(r.WeightActionTarget)
	w.Raw(r.Reserved[:])
	return w.Bytes()
}

// VoterWeightRecordSize is the encoded size with every option set.
const VoterWeightRecordSize = codec.DiscriminatorSize + 3*domain.PubkeySize + 8 + 9 + 2 + 33 + reservedSize

func DecodeVoterWeightRecord(data []byte) (*VoterWeightRecord, error) {
	r := codec.NewReader(data)
	r.Discriminator(VoterWeightRecordDiscriminator)
	rec := &VoterWeightRecord{
		Realm:               r.Pubkey(),
		GoverningTokenMint:  r.Pubkey(),
		GoverningTokenOwner: r.Pubkey(),
		VoterWeight:         r.U64(),
		VoterWeightExpiry:   r.OptionSlot(),
		WeightAction:        r.OptionAction(),
		WeightActionTarget:  r.OptionPubkey(),
	}
	r.Skip(reservedSize)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode voter weight record: %w", err)
	}
	return rec, nil
}

// MaxVoterWeightRecord is the realm-wide ceiling for one governing mint.
// A nil expiry marks an administrator-declared ceiling that never goes stale.
type MaxVoterWeightRecord struct {
	Realm                domain.Pubkey
	GoverningTokenMint   domain.Pubkey
	MaxVoterWeight       uint64
	MaxVoterWeightExpiry *domain.Slot
	Reserved             [reservedSize]byte
}

func NewMaxVoterWeightRecord(realm, mint domain.Pubkey) *MaxVoterWeightRecord {
	return &MaxVoterWeightRecord{Realm: realm, GoverningTokenMint: mint}
}

func (r *MaxVoterWeightRecord) Encode() []byte {
	w := codec.NewWriter(MaxVoterWeightRecordSize)
	w.Raw(MaxVoterWeightRecordDiscriminator[:])
	w.Pubkey(r.Realm)
	w.Pubkey(r.GoverningTokenMint)
	w.U64(r.MaxVoterWeight)
	w.OptionSlot(r.MaxVoterWeightExpiry)
	w.Raw(r.Reserved[:])
	return w.Bytes()
}

// MaxVoterWeightRecordSize is the encoded size with the expiry set.
const MaxVoterWeightRecordSize = codec.DiscriminatorSize + 2*domain.PubkeySize + 8 + 9 + reservedSize

func DecodeMaxVoterWeightRecord(data []byte) (*MaxVoterWeightRecord, error) {
	r := codec.NewReader(data)
	r.Discriminator(MaxVoterWeightRecordDiscriminator)
	rec := &MaxVoterWeightRecord{
		Realm:                r.Pubkey(),
		GoverningTokenMint:   r.Pubkey(),
		MaxVoterWeight:       r.U64(),
		MaxVoterWeightExpiry: r.OptionSlot(),
	}
	r.Skip(reservedSize)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode max voter weight record: %w", err)
	}
	return rec, nil
}

// NextExpiry applies the freshness rule for values derived from an upstream
// record: the result is never fresher than the input, but is always stamped
// with at least the current slot.
func NextExpiry(input *domain.Slot, slot domain.Slot) *domain.Slot {
	if input == nil {
		return domain.Some(slot)
	}
	return domain.Some(max(*input, slot))
}

func VoterWeightRecordAddress(program, realm, mint, owner domain.Pubkey) domain.Pubkey {
	return domain.DeriveAddress(program, []byte("voter-weight-record"), realm.Bytes(), mint.Bytes(), owner.Bytes())
}

func MaxVoterWeightRecordAddress(program, realm, mint domain.Pubkey) domain.Pubkey {
	return domain.DeriveAddress(program, []byte("max-voter-weight-record"), realm.Bytes(), mint.Bytes())
}

func optionEqual(a, b *domain.Pubkey) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
