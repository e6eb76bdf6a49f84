package resolver

import (
	"voterweight/internal/governance"
	"voterweight/internal/token"
	"voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

// WeightView is the uniform view over every account kind that can feed a
// plugin. The set of kinds is closed: the unexported marker method keeps
// implementations inside this package.
type WeightView interface {
	Weight() uint64
	Owner() domain.Pubkey
	Mint() domain.Pubkey
	Realm() domain.Pubkey
	Expiry() *domain.Slot
	Action() *domain.VoterWeightAction
	Target() *domain.Pubkey

	weightView()
}

// TokenOwnerRecordView is a raw deposit in the governance engine. It never
// carries an action, a target or an expiry.
type TokenOwnerRecordView struct {
	Record *governance.TokenOwnerRecord
}

func (v TokenOwnerRecordView) Weight() uint64 { return v.Record.GoverningTokenDepositAmount }
func (v TokenOwnerRecordView) Owner() domain.Pubkey { return v.Record.GoverningTokenOwner }
func (v TokenOwnerRecordView) Mint() domain.Pubkey { return v.Record.GoverningTokenMint }
func (v TokenOwnerRecordView) Realm() domain.Pubkey { return v.Record.Realm }
func (v TokenOwnerRecordView) Expiry() *domain.Slot { return nil }
func (v TokenOwnerRecordView) Action() *domain.VoterWeightAction { return nil }
func (v TokenOwnerRecordView) Target() *domain.Pubkey { return nil }
func (TokenOwnerRecordView) weightView() {}

// VoterWeightRecordView is a predecessor plugin's output, passed through verbatim.
type VoterWeightRecordView struct {
	Record *models.VoterWeightRecord
}

func (v VoterWeightRecordView) Weight() uint64 { return v.Record.VoterWeight }
func (v VoterWeightRecordView) Owner() domain.Pubkey { return v.Record.GoverningTokenOwner }
func (v VoterWeightRecordView) Mint() domain.Pubkey { return v.Record.GoverningTokenMint }
func (v VoterWeightRecordView) Realm() domain.Pubkey { return v.Record.Realm }
func (v VoterWeightRecordView) Expiry() *domain.Slot { return v.Record.VoterWeightExpiry }
func (v VoterWeightRecordView) Action() *domain.VoterWeightAction { return v.Record.WeightAction }
func (v VoterWeightRecordView) Target() *domain.Pubkey { return v.Record.WeightActionTarget }
func (VoterWeightRecordView) weightView() {}

// MintView is a fungible supply used as a max weight. Its mint is the
// account's own address and it is not bound to any realm or owner.
type MintView struct {
	Address domain.Pubkey
	Account *token.Mint
}

func (v MintView) Weight() uint64 { return v.Account.Supply }
func (v MintView) Owner() domain.Pubkey { return domain.Pubkey{} }
func (v MintView) Mint() domain.Pubkey { return v.Address }
func (v MintView) Realm() domain.Pubkey { return domain.Pubkey{} }
func (v MintView) Expiry() *domain.Slot { return nil }
func (v MintView) Action() *domain.VoterWeightAction { return nil }
func (v MintView) Target() *domain.Pubkey { return nil }
func (MintView) weightView() {}

// MaxVoterWeightRecordView is a predecessor plugin's max output.
type MaxVoterWeightRecordView struct {
	Record *models.MaxVoterWeightRecord
}

func (v MaxVoterWeightRecordView) Weight() uint64 { return v.Record.MaxVoterWeight }
func (v MaxVoterWeightRecordView) Owner() domain.Pubkey { return domain.Pubkey{} }
func (v MaxVoterWeightRecordView) Mint() domain.Pubkey { return v.Record.GoverningTokenMint }
func (v MaxVoterWeightRecordView) Realm() domain.Pubkey { return v.Record.Realm }
func (v MaxVoterWeightRecordView) Expiry() *domain.Slot { return v.Record.MaxVoterWeightExpiry }
func (v MaxVoterWeightRecordView) Action() *domain.VoterWeightAction { return nil }
func (v MaxVoterWeightRecordView) Target() *domain.Pubkey { return nil }
func (MaxVoterWeightRecordView) weightView() {}
