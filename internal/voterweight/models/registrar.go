package models

import (
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

var RegistrarDiscriminator = codec.AccountDiscriminator("Registrar")

// RegistrarIdentity is the part every plugin registrar shares. Realm and mint
// are fixed at creation; only chaining plugins may re-point the predecessor.
type RegistrarIdentity struct {
	GovernanceProgramID domain.Pubkey
	Realm               domain.Pubkey
	GoverningTokenMint  domain.Pubkey
	// PreviousVoterWeightPluginProgramID is set when this plugin consumes
	// another plugin's output instead of the raw token owner record.
	PreviousVoterWeightPluginProgramID *domain.Pubkey
}

// HasPredecessor reports whether the plugin is chained after another one.
func (id RegistrarIdentity) HasPredecessor() bool {
	return id.PreviousVoterWeightPluginProgramID != nil
}

// EncodeTo writes the discriminator and the identity fields.
func (id RegistrarIdentity) EncodeTo(w *codec.Writer) {
	w.Raw(RegistrarDiscriminator[:])
	w.Pubkey(id.GovernanceProgramID)
	w.Pubkey(id.Realm)
	w.Pubkey(id.GoverningTokenMint)
	w.OptionPubkey(id.PreviousVoterWeightPluginProgramID)
}

// DecodeRegistrarIdentity reads what EncodeTo wrote. Errors stay on r.
func DecodeRegistrarIdentity(r *codec.Reader) RegistrarIdentity {
	r.Discriminator(RegistrarDiscriminator)
	return RegistrarIdentity{
		GovernanceProgramID:                r.Pubkey(),
		Realm:                              r.Pubkey(),
		GoverningTokenMint:                 r.Pubkey(),
		PreviousVoterWeightPluginProgramID: r.OptionPubkey(),
	}
}

// RegistrarAddress is the one registrar a plugin program keeps per realm and mint.
func RegistrarAddress(program, realm, mint domain.Pubkey) domain.Pubkey {
	return domain.DeriveAddress(program, []byte("registrar"), realm.Bytes(), mint.Bytes())
}
