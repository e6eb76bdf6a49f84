// Package models holds the stake plugin's registrar and its per-record
// ledger of consumed stake deposit receipts.
package models

import (
	"fmt"
	"slices"

	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

// MaxDeposits is the most receipts one StakeDepositRecord can hold.
const MaxDeposits = 255

// InitialDepositCapacity is the arena size a fresh StakeDepositRecord gets.
const InitialDepositCapacity = 8

var StakeDepositRecordDiscriminator = codec.AccountDiscriminator("StakeDepositRecord")

// Registrar binds a realm's governing mint to one stake pool.
type Registrar struct {
	vwmodels.RegistrarIdentity
	RealmAuthority domain.Pubkey
	StakePool      domain.Pubkey
	Reserved       [8]byte
}

func (r *Registrar) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + 5*domain.PubkeySize + 1 + 8)
	r.RegistrarIdentity.EncodeTo(w)
	w.Pubkey(r.RealmAuthority)
	w.Pubkey(r.StakePool)
	w.Raw(r.Reserved[:])
	return w.Bytes()
}

func DecodeRegistrar(data []byte) (*Registrar, error) {
	r := codec.NewReader(data)
	reg := &Registrar{RegistrarIdentity: vwmodels.DecodeRegistrarIdentity(r)}
	reg.RealmAuthority = r.Pubkey()
	reg.StakePool = r.Pubkey()
	r.Skip(len(reg.Reserved))
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode stake registrar: %w", err)
	}
	return reg, nil
}

// StakeDepositRecord lists the receipts already counted towards the current
// action and target of one voter weight record. Capacity is the arena size;
// it only ever grows and never exceeds MaxDeposits.
type StakeDepositRecord struct {
	VoterWeightRecord   domain.Pubkey
	Deposits            []domain.Pubkey
	Capacity            uint8
	WeightAction        *domain.VoterWeightAction
	WeightActionTarget  *domain.Pubkey
	PreviousVoterWeight uint64
}

// NewStakeDepositRecord returns an empty ledger for the record at voterWeightRecord.
func NewStakeDepositRecord(voterWeightRecord domain.Pubkey) *StakeDepositRecord {
	return &StakeDepositRecord{
		VoterWeightRecord: voterWeightRecord,
		Capacity:          InitialDepositCapacity,
	}
}

// Contains reports whether receipt was already counted.
func (d *StakeDepositRecord) Contains(receipt domain.Pubkey) bool {
	return slices.Contains(d.Deposits, receipt)
}

// Resize grows the arena so it can hold required entries. It returns false
// when required is beyond MaxDeposits.
func (d *StakeDepositRecord) Resize(required int) bool {
	if required > MaxDeposits {
		return false
	}
	if required > int(d.Capacity) {
		d.Capacity = uint8(required)
	}
	return true
}

// Encode writes the fixed header followed by the arena. Unused arena slots
// are zeroed so the encoded size tracks Capacity.
func (d *StakeDepositRecord) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + domain.PubkeySize + 1 + 1 + 2 + 33 + 8 + int(d.Capacity)*domain.PubkeySize)
	w.Raw(StakeDepositRecordDiscriminator[:])
	w.Pubkey(d.VoterWeightRecord)
	w.U8(d.Capacity)
	w.U8(uint8(len(d.Deposits)))
	w.OptionAction(d.WeightAction)
	w.OptionPubkey(d.WeightActionTarget)
	w.U64(d.PreviousVoterWeight)
	for _, dep := range d.Deposits {
		w.Pubkey(dep)
	}
	if free := int(d.Capacity) - len(d.Deposits); free > 0 {
		w.Zeros(free * domain.PubkeySize)
	}
	return w.Bytes()
}

func DecodeStakeDepositRecord(data []byte) (*StakeDepositRecord, error) {
	r := codec.NewReader(data)
	r.Discriminator(StakeDepositRecordDiscriminator)
	d := &StakeDepositRecord{
		VoterWeightRecord: r.Pubkey(),
		Capacity:          r.U8(),
	}
	n := int(r.U8())
	d.WeightAction = r.OptionAction()
	d.WeightActionTarget = r.OptionPubkey()
	d.PreviousVoterWeight = r.U64()
	if r.Err() == nil && n > int(d.Capacity) {
		return nil, fmt.Errorf("decode stake deposit record: %d deposits exceed capacity %d", n, d.Capacity)
	}
	d.Deposits = make([]domain.Pubkey, 0, n)
	for range n {
		d.Deposits = append(d.Deposits, r.Pubkey())
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode stake deposit record: %w", err)
	}
	return d, nil
}

// StakeDepositRecordAddress derives the ledger address for a voter weight record.
func StakeDepositRecordAddress(program, voterWeightRecord domain.Pubkey) domain.Pubkey {
	return domain.DeriveAddress(program, []byte("stake-deposit-record"), voterWeightRecord.Bytes())
}
