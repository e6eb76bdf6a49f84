package handler

import (
	"voterweight/internal/plugins/nft/service"
	"voterweight/internal/voterweight/httpapi"
	"voterweight/pkg/domain"
	dErrors "voterweight/pkg/domain-errors"
)

type CreateRegistrarRequest struct {
	GovernanceProgramID domain.Pubkey `json:"governance_program_id"`
	Realm               domain.Pubkey `json:"realm"`
	GoverningTokenMint  domain.Pubkey `json:"governing_token_mint"`
	MaxCollections      uint8         `json:"max_collections"`
}

func (r *CreateRegistrarRequest) Validate() error {
	if err := httpapi.RequireKeys(
		httpapi.Key{Name: "governance_program_id", Value: r.GovernanceProgramID},
		httpapi.Key{Name: "realm", Value: r.Realm},
		httpapi.Key{Name: "governing_token_mint", Value: r.GoverningTokenMint},
	); err != nil {
		return err
	}
	if r.MaxCollections == 0 {
		return dErrors.New(dErrors.CodeValidation, "max_collections must be greater than zero")
	}
	return nil
}

type ConfigureCollectionRequest struct {
	Registrar            domain.Pubkey `json:"registrar"`
	MaxVoterWeightRecord domain.Pubkey `json:"max_voter_weight_record"`
	Collection           domain.Pubkey `json:"collection"`
	Weight               uint64        `json:"weight"`
	Size                 uint32        `json:"size"`
}

func (r *ConfigureCollectionRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "max_voter_weight_record", Value: r.MaxVoterWeightRecord},
		httpapi.Key{Name: "collection", Value: r.Collection},
	)
}

type CreateVoterWeightRecordRequest struct {
	Registrar           domain.Pubkey `json:"registrar"`
	GoverningTokenOwner domain.Pubkey `json:"governing_token_owner"`
}

func (r *CreateVoterWeightRecordRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "governing_token_owner", Value: r.GoverningTokenOwner},
	)
}

type RegistrarRequest struct {
	Registrar domain.Pubkey `json:"registrar"`
}

func (r *RegistrarRequest) Validate() error {
	return httpapi.RequireKeys(httpapi.Key{Name: "registrar", Value: r.Registrar})
}

type UpdateMaxVoterWeightRecordRequest struct {
	Registrar            domain.Pubkey `json:"registrar"`
	MaxVoterWeightRecord domain.Pubkey `json:"max_voter_weight_record"`
}

func (r *UpdateMaxVoterWeightRecordRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "max_voter_weight_record", Value: r.MaxVoterWeightRecord},
	)
}

type UpdateVoterWeightRecordRequest struct {
	Registrar         domain.Pubkey             `json:"registrar"`
	VoterWeightRecord domain.Pubkey             `json:"voter_weight_record"`
	Action            *domain.VoterWeightAction `json:"action"`
	Assets            []domain.Pubkey           `json:"assets"`
}

func (r *UpdateVoterWeightRecordRequest) Validate() error {
	if err := httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "voter_weight_record", Value: r.VoterWeightRecord},
	); err != nil {
		return err
	}
	return httpapi.RequireAction(r.Action)
}

type CastNftVoteRequest struct {
	Registrar         domain.Pubkey   `json:"registrar"`
	VoterWeightRecord domain.Pubkey   `json:"voter_weight_record"`
	TokenOwnerRecord  domain.Pubkey   `json:"token_owner_record"`
	Proposal          domain.Pubkey   `json:"proposal"`
	Assets            []domain.Pubkey `json:"assets"`
}

func (r *CastNftVoteRequest) Validate() error {
	if err := httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "voter_weight_record", Value: r.VoterWeightRecord},
		httpapi.Key{Name: "token_owner_record", Value: r.TokenOwnerRecord},
		httpapi.Key{Name: "proposal", Value: r.Proposal},
	); err != nil {
		return err
	}
	if len(r.Assets) == 0 {
		return dErrors.New(dErrors.CodeValidation, "assets are required")
	}
	return nil
}

func (r *CastNftVoteRequest) command(signer domain.Pubkey) service.CastNftVoteCommand {
	return service.CastNftVoteCommand{
		Registrar:         r.Registrar,
		VoterWeightRecord: r.VoterWeightRecord,
		TokenOwnerRecord:  r.TokenOwnerRecord,
		Proposal:          r.Proposal,
		Assets:            r.Assets,
		Signer:            signer,
	}
}

type RelinquishNftVoteRequest struct {
	Registrar         domain.Pubkey   `json:"registrar"`
	VoterWeightRecord domain.Pubkey   `json:"voter_weight_record"`
	TokenOwnerRecord  domain.Pubkey   `json:"token_owner_record"`
	Proposal          domain.Pubkey   `json:"proposal"`
	VoteRecord        domain.Pubkey   `json:"vote_record"`
	AssetVoteRecords  []domain.Pubkey `json:"asset_vote_records"`
}

func (r *RelinquishNftVoteRequest) Validate() error {
	if err := httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "voter_weight_record", Value: r.VoterWeightRecord},
		httpapi.Key{Name: "token_owner_record", Value: r.TokenOwnerRecord},
		httpapi.Key{Name: "proposal", Value: r.Proposal},
		httpapi.Key{Name: "vote_record", Value: r.VoteRecord},
	); err != nil {
		return err
	}
	if len(r.AssetVoteRecords) == 0 {
		return dErrors.New(dErrors.CodeValidation, "asset_vote_records are required")
	}
	return nil
}

func (r *RelinquishNftVoteRequest) command(signer domain.Pubkey) service.RelinquishNftVoteCommand {
	return service.RelinquishNftVoteCommand{
		Registrar:         r.Registrar,
		VoterWeightRecord: r.VoterWeightRecord,
		TokenOwnerRecord:  r.TokenOwnerRecord,
		Proposal:          r.Proposal,
		VoteRecord:        r.VoteRecord,
		AssetVoteRecords:  r.AssetVoteRecords,
		Signer:            signer,
	}
}
