package handler

import (
	"voterweight/internal/voterweight/httpapi"
	"voterweight/pkg/domain"
)

type CreateRegistrarRequest struct {
	GovernanceProgramID domain.Pubkey   `json:"governance_program_id"`
	Realm               domain.Pubkey   `json:"realm"`
	GoverningTokenMint  domain.Pubkey   `json:"governing_token_mint"`
	Mints               []domain.Pubkey `json:"mints"`
}

func (r *CreateRegistrarRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "governance_program_id", Value: r.GovernanceProgramID},
		httpapi.Key{Name: "realm", Value: r.Realm},
		httpapi.Key{Name: "governing_token_mint", Value: r.GoverningTokenMint},
	)
}

type ConfigureMintsRequest struct {
	Registrar domain.Pubkey   `json:"registrar"`
	Mints     []domain.Pubkey `json:"mints"`
}

func (r *ConfigureMintsRequest) Validate() error {
	return httpapi.RequireKeys(httpapi.Key{Name: "registrar", Value: r.Registrar})
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

type UpdateVoterWeightRecordRequest struct {
	Registrar         domain.Pubkey   `json:"registrar"`
	VoterWeightRecord domain.Pubkey   `json:"voter_weight_record"`
	TokenAccounts     []domain.Pubkey `json:"token_accounts"`
}

func (r *UpdateVoterWeightRecordRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "voter_weight_record", Value: r.VoterWeightRecord},
	)
}
