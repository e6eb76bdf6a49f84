package handler

import (
	"voterweight/internal/plugins/realmvoter/models"
	"voterweight/internal/voterweight/httpapi"
	"voterweight/pkg/domain"
	dErrors "voterweight/pkg/domain-errors"
)

type CreateRegistrarRequest struct {
	GovernanceProgramID   domain.Pubkey `json:"governance_program_id"`
	Realm                 domain.Pubkey `json:"realm"`
	GoverningTokenMint    domain.Pubkey `json:"governing_token_mint"`
	MaxGovernancePrograms uint8         `json:"max_governance_programs"`
}

func (r *CreateRegistrarRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "governance_program_id", Value: r.GovernanceProgramID},
		httpapi.Key{Name: "realm", Value: r.Realm},
		httpapi.Key{Name: "governing_token_mint", Value: r.GoverningTokenMint},
	)
}

type ConfigureGovernanceProgramRequest struct {
	Registrar         domain.Pubkey      `json:"registrar"`
	GovernanceProgram domain.Pubkey      `json:"governance_program"`
	Change            *models.ChangeType `json:"change"`
}

func (r *ConfigureGovernanceProgramRequest) Validate() error {
	if err := httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "governance_program", Value: r.GovernanceProgram},
	); err != nil {
		return err
	}
	if r.Change == nil {
		return dErrors.New(dErrors.CodeValidation, "change is required")
	}
	return nil
}

type ConfigureVoterWeightsRequest struct {
	Registrar              domain.Pubkey `json:"registrar"`
	MaxVoterWeightRecord   domain.Pubkey `json:"max_voter_weight_record"`
	RealmMemberVoterWeight uint64        `json:"realm_member_voter_weight"`
	MaxVoterWeight         uint64        `json:"max_voter_weight"`
}

func (r *ConfigureVoterWeightsRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "max_voter_weight_record", Value: r.MaxVoterWeightRecord},
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

type UpdateVoterWeightRecordRequest struct {
	Registrar         domain.Pubkey `json:"registrar"`
	VoterWeightRecord domain.Pubkey `json:"voter_weight_record"`
	TokenOwnerRecord  domain.Pubkey `json:"token_owner_record"`
}

func (r *UpdateVoterWeightRecordRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "voter_weight_record", Value: r.VoterWeightRecord},
		httpapi.Key{Name: "token_owner_record", Value: r.TokenOwnerRecord},
	)
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
