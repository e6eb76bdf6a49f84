package handler

import (
	"voterweight/internal/plugins/gateway/service"
	"voterweight/internal/voterweight/httpapi"
	"voterweight/pkg/domain"
)

type CreateRegistrarRequest struct {
	GovernanceProgramID                domain.Pubkey  `json:"governance_program_id"`
	Realm                              domain.Pubkey  `json:"realm"`
	GoverningTokenMint                 domain.Pubkey  `json:"governing_token_mint"`
	GatekeeperNetwork                  domain.Pubkey  `json:"gatekeeper_network"`
	PreviousVoterWeightPluginProgramID *domain.Pubkey `json:"previous_voter_weight_plugin_program_id"`
}

func (r *CreateRegistrarRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "governance_program_id", Value: r.GovernanceProgramID},
		httpapi.Key{Name: "realm", Value: r.Realm},
		httpapi.Key{Name: "governing_token_mint", Value: r.GoverningTokenMint},
		httpapi.Key{Name: "gatekeeper_network", Value: r.GatekeeperNetwork},
	)
}

func (r *CreateRegistrarRequest) command(signer domain.Pubkey) service.CreateRegistrarCommand {
	return service.CreateRegistrarCommand{
		GovernanceProgramID:                r.GovernanceProgramID,
		Realm:                              r.Realm,
		GoverningTokenMint:                 r.GoverningTokenMint,
		GatekeeperNetwork:                  r.GatekeeperNetwork,
		PreviousVoterWeightPluginProgramID: r.PreviousVoterWeightPluginProgramID,
		Signer:                             signer,
	}
}

type ConfigureRegistrarRequest struct {
	Registrar                          domain.Pubkey  `json:"registrar"`
	GatekeeperNetwork                  domain.Pubkey  `json:"gatekeeper_network"`
	UsePreviousVoterWeightPlugin       bool           `json:"use_previous_voter_weight_plugin"`
	PreviousVoterWeightPluginProgramID *domain.Pubkey `json:"previous_voter_weight_plugin_program_id"`
}

func (r *ConfigureRegistrarRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "gatekeeper_network", Value: r.GatekeeperNetwork},
	)
}

func (r *ConfigureRegistrarRequest) command(signer domain.Pubkey) service.ConfigureRegistrarCommand {
	return service.ConfigureRegistrarCommand{
		Registrar:                          r.Registrar,
		GatekeeperNetwork:                  r.GatekeeperNetwork,
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

// UpdateVoterWeightRecordRequest names the input weight and the voter's pass.
type UpdateVoterWeightRecordRequest struct {
	Registrar         domain.Pubkey `json:"registrar"`
	Input             domain.Pubkey `json:"input"`
	GatewayToken      domain.Pubkey `json:"gateway_token"`
	VoterWeightRecord domain.Pubkey `json:"voter_weight_record"`
}

func (r *UpdateVoterWeightRecordRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "input", Value: r.Input},
		httpapi.Key{Name: "gateway_token", Value: r.GatewayToken},
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
