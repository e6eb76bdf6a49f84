package handler

import (
	"voterweight/internal/plugins/quadratic/models"
	"voterweight/internal/plugins/quadratic/service"
	"voterweight/internal/voterweight/httpapi"
	"voterweight/pkg/domain"
	dErrors "voterweight/pkg/domain-errors"
)

type CreateRegistrarRequest struct {
	GovernanceProgramID                domain.Pubkey        `json:"governance_program_id"`
	Realm                              domain.Pubkey        `json:"realm"`
	GoverningTokenMint                 domain.Pubkey        `json:"governing_token_mint"`
	PreviousVoterWeightPluginProgramID *domain.Pubkey       `json:"previous_voter_weight_plugin_program_id"`
	Coefficients                       *models.Coefficients `json:"coefficients"`
}

func (r *CreateRegistrarRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "governance_program_id", Value: r.GovernanceProgramID},
		httpapi.Key{Name: "realm", Value: r.Realm},
		httpapi.Key{Name: "governing_token_mint", Value: r.GoverningTokenMint},
	)
}

// command falls back to square root voting when no coefficients were sent.
func (r *CreateRegistrarRequest) command(signer domain.Pubkey) service.CreateRegistrarCommand {
	coeffs := models.DefaultCoefficients()
	if r.Coefficients != nil {
		coeffs = *r.Coefficients
	}
	return service.CreateRegistrarCommand{
		GovernanceProgramID:                r.GovernanceProgramID,
		Realm:                              r.Realm,
		GoverningTokenMint:                 r.GoverningTokenMint,
		Coefficients:                       coeffs,
		PreviousVoterWeightPluginProgramID: r.PreviousVoterWeightPluginProgramID,
		Signer:                             signer,
	}
}

type ConfigureRegistrarRequest struct {
	Registrar                          domain.Pubkey        `json:"registrar"`
	Coefficients                       *models.Coefficients `json:"coefficients"`
	UsePreviousVoterWeightPlugin       bool                 `json:"use_previous_voter_weight_plugin"`
	PreviousVoterWeightPluginProgramID *domain.Pubkey       `json:"previous_voter_weight_plugin_program_id"`
}

func (r *ConfigureRegistrarRequest) Validate() error {
	if err := httpapi.RequireKeys(httpapi.Key{Name: "registrar", Value: r.Registrar}); err != nil {
		return err
	}
	if r.Coefficients == nil {
		return dErrors.New(dErrors.CodeValidation, "coefficients are required")
	}
	return nil
}

func (r *ConfigureRegistrarRequest) command(signer domain.Pubkey) service.ConfigureRegistrarCommand {
	return service.ConfigureRegistrarCommand{
		Registrar:                          r.Registrar,
		Coefficients:                       *r.Coefficients,
		UsePreviousVoterWeightPlugin:       r.UsePreviousVoterWeightPlugin,
		PreviousVoterWeightPluginProgramID: r.PreviousVoterWeightPluginProgramID,
		Signer:                             signer,
	}
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
	Input             domain.Pubkey `json:"input"`
	VoterWeightRecord domain.Pubkey `json:"voter_weight_record"`
}

func (r *UpdateVoterWeightRecordRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "input", Value: r.Input},
		httpapi.Key{Name: "voter_weight_record", Value: r.VoterWeightRecord},
	)
}

type UpdateMaxVoterWeightRecordRequest struct {
	Registrar            domain.Pubkey `json:"registrar"`
	Input                domain.Pubkey `json:"input"`
	MaxVoterWeightRecord domain.Pubkey `json:"max_voter_weight_record"`
}

func (r *UpdateMaxVoterWeightRecordRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "input", Value: r.Input},
		httpapi.Key{Name: "max_voter_weight_record", Value: r.MaxVoterWeightRecord},
	)
}
