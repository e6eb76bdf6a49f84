package handler

import (
	"voterweight/internal/voterweight/httpapi"
	"voterweight/pkg/domain"
)

type CreateRegistrarRequest struct {
	GovernanceProgramID domain.Pubkey `json:"governance_program_id"`
	Realm               domain.Pubkey `json:"realm"`
	GoverningTokenMint  domain.Pubkey `json:"governing_token_mint"`
	MaxMints            uint8         `json:"max_mints"`
}

func (r *CreateRegistrarRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "governance_program_id", Value: r.GovernanceProgramID},
		httpapi.Key{Name: "realm", Value: r.Realm},
		httpapi.Key{Name: "governing_token_mint", Value: r.GoverningTokenMint},
	)
}

type ResizeRegistrarRequest struct {
	Registrar domain.Pubkey `json:"registrar"`
	MaxMints  uint8         `json:"max_mints"`
}

func (r *ResizeRegistrarRequest) Validate() error {
	return httpapi.RequireKeys(httpapi.Key{Name: "registrar", Value: r.Registrar})
}

type ConfigureMintConfigRequest struct {
	Registrar            domain.Pubkey `json:"registrar"`
	MaxVoterWeightRecord domain.Pubkey `json:"max_voter_weight_record"`
	Mint                 domain.Pubkey `json:"mint"`
	DigitShift           int8          `json:"digit_shift"`
}

func (r *ConfigureMintConfigRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "max_voter_weight_record", Value: r.MaxVoterWeightRecord},
		httpapi.Key{Name: "mint", Value: r.Mint},
	)
}

type RegistrarRequest struct {
	Registrar domain.Pubkey `json:"registrar"`
}

func (r *RegistrarRequest) Validate() error {
	return httpapi.RequireKeys(httpapi.Key{Name: "registrar", Value: r.Registrar})
}

type DepositRequest struct {
	Registrar         domain.Pubkey `json:"registrar"`
	VoterWeightRecord domain.Pubkey `json:"voter_weight_record"`
	TokenOwnerRecord  domain.Pubkey `json:"token_owner_record"`
	DepositToken      domain.Pubkey `json:"deposit_token"`
	DepositEntryIndex uint8         `json:"deposit_entry_index"`
	Amount            uint64        `json:"amount"`
}

func (r *DepositRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "voter_weight_record", Value: r.VoterWeightRecord},
		httpapi.Key{Name: "token_owner_record", Value: r.TokenOwnerRecord},
		httpapi.Key{Name: "deposit_token", Value: r.DepositToken},
	)
}

type WithdrawRequest struct {
	Registrar         domain.Pubkey `json:"registrar"`
	VoterWeightRecord domain.Pubkey `json:"voter_weight_record"`
	TokenOwnerRecord  domain.Pubkey `json:"token_owner_record"`
	Destination       domain.Pubkey `json:"destination"`
	DepositEntryIndex uint8         `json:"deposit_entry_index"`
	Amount            uint64        `json:"amount"`
}

func (r *WithdrawRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "voter_weight_record", Value: r.VoterWeightRecord},
		httpapi.Key{Name: "token_owner_record", Value: r.TokenOwnerRecord},
		httpapi.Key{Name: "destination", Value: r.Destination},
	)
}

type CloseVoterRequest struct {
	Registrar         domain.Pubkey `json:"registrar"`
	VoterWeightRecord domain.Pubkey `json:"voter_weight_record"`
}

func (r *CloseVoterRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "voter_weight_record", Value: r.VoterWeightRecord},
	)
}
