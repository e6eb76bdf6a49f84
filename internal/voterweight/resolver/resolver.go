// Package resolver implements the plugin composition protocol: it decides
// what kind of account a plugin was given as input, decodes it, and checks
// that its identity lines up with the record being updated. A plugin never
// has to trust how its predecessor computed a weight, only that realm, mint
// and owner match.
package resolver

import (
	"voterweight/internal/governance"
	"voterweight/internal/ledger"
	"voterweight/internal/token"
	"voterweight/internal/voterweight/models"
	dErrors "voterweight/pkg/domain-errors"
)

var (
	ErrInvalidPredecessorTokenOwnerRecord = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_predecessor_token_owner_record", "input is not a valid token owner record")
	ErrInvalidPredecessorVoterWeightRecord = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_predecessor_voter_weight_record", "input is not a voter weight record of the predecessor plugin")
	ErrInvalidPredecessorVoterWeightRecordGovTokenMint = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_predecessor_voter_weight_record_gov_token_mint", "predecessor record governing token mint mismatch")
	ErrInvalidPredecessorVoterWeightRecordGovTokenOwner = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_predecessor_voter_weight_record_gov_token_owner", "predecessor record governing token owner mismatch")
	ErrInvalidPredecessorVoterWeightRecordRealm = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_predecessor_voter_weight_record_realm", "predecessor record realm mismatch")
)

// ResolveInputVoterWeight decodes input according to the registrar's chain
// position and checks it against the record being updated.
//
// Without a predecessor input must be the owner's token owner record in the
// registrar's realm and mint. With one, input must be a voter weight record
// owned by the predecessor program; its fields pass through unchanged.
func ResolveInputVoterWeight(input *ledger.Account, registrar models.RegistrarIdentity, local *models.VoterWeightRecord) (WeightView, error) {
	view, err := decodeInputVoterWeight(input, registrar)
	if err != nil {
		return nil, err
	}
	if view.Mint() != local.GoverningTokenMint {
		return nil, ErrInvalidPredecessorVoterWeightRecordGovTokenMint
	}
	if view.Owner() != local.GoverningTokenOwner {
		return nil, ErrInvalidPredecessorVoterWeightRecordGovTokenOwner
	}
	if view.Realm() != registrar.Realm {
		return nil, ErrInvalidPredecessorVoterWeightRecordRealm
	}
	return view, nil
}

func decodeInputVoterWeight(input *ledger.Account, registrar models.RegistrarIdentity) (WeightView, error) {
	if !registrar.HasPredecessor() {
		rec, err := governance.GetTokenOwnerRecordForRealmAndMint(input,
			registrar.GovernanceProgramID, registrar.Realm, registrar.GoverningTokenMint)
		if err != nil {
			return nil, ErrInvalidPredecessorTokenOwnerRecord.WithCause(err)
		}
		return TokenOwnerRecordView{Record: rec}, nil
	}

	if input.Owner != *registrar.PreviousVoterWeightPluginProgramID {
		return nil, ErrInvalidPredecessorVoterWeightRecord
	}
	rec, err := models.DecodeVoterWeightRecord(input.Data)
	if err != nil {
		return nil, ErrInvalidPredecessorVoterWeightRecord.WithCause(err)
	}
	return VoterWeightRecordView{Record: rec}, nil
}

// ResolveInputMaxVoterWeight decodes the input of a max weight update.
//
// Without a predecessor input must be a mint and the weight is its supply.
// With one, a max voter weight record owned by the predecessor is preferred
// and a mint is accepted as fallback. Only the mint identity is checked: a
// mint is not bound to a realm.
func ResolveInputMaxVoterWeight(input *ledger.Account, registrar models.RegistrarIdentity, local *models.MaxVoterWeightRecord) (WeightView, error) {
	view, err := decodeInputMaxVoterWeight(input, registrar)
	if err != nil {
		return nil, err
	}
	if view.Mint() != local.GoverningTokenMint {
		return nil, ErrInvalidPredecessorVoterWeightRecordGovTokenMint
	}
	return view, nil
}

func decodeInputMaxVoterWeight(input *ledger.Account, registrar models.RegistrarIdentity) (WeightView, error) {
	if registrar.HasPredecessor() && input.Owner == *registrar.PreviousVoterWeightPluginProgramID {
		if rec, err := models.DecodeMaxVoterWeightRecord(input.Data); err == nil {
			return MaxVoterWeightRecordView{Record: rec}, nil
		}
	}
	mint, err := token.GetMint(input)
	if err != nil {
		return nil, ErrInvalidPredecessorTokenOwnerRecord.WithCause(err)
	}
	return MintView{Address: input.Address, Account: mint}, nil
}
