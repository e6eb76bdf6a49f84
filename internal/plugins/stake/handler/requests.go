package handler

import (
	"voterweight/internal/plugins/stake/service"
	"voterweight/internal/voterweight/httpapi"
	"voterweight/pkg/domain"
	dErrors "voterweight/pkg/domain-errors"
)

type CreateRegistrarRequest struct {
	GovernanceProgramID                domain.Pubkey  `json:"governance_program_id"`
	Realm                              domain.Pubkey  `json:"realm"`
	GoverningTokenMint                 domain.Pubkey  `json:"governing_token_mint"`
	StakePool                          domain.Pubkey  `json:"stake_pool"`
	PreviousVoterWeightPluginProgramID *domain.Pubkey `json:"previous_voter_weight_plugin_program_id,omitempty"`
}

func (r *CreateRegistrarRequest) Validate() error {
	return httpapi.RequireKeys(
		httpapi.Key{Name: "governance_program_id", Value: r.GovernanceProgramID},
		httpapi.Key{Name: "realm", Value: r.Realm},
		httpapi.Key{Name: "governing_token_mint", Value: r.GoverningTokenMint},
		httpapi.Key{Name: "stake_pool", Value: r.StakePool},
	)
}

func (r *CreateRegistrarRequest) command(signer domain.Pubkey) service.CreateRegistrarCommand {
	return service.CreateRegistrarCommand{
		GovernanceProgramID:                r.GovernanceProgramID,
		Realm:                              r.Realm,
		GoverningTokenMint:                 r.GoverningTokenMint,
		StakePool:                          r.StakePool,
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

// UpdateVoterWeightRecordRequest carries the receipts to count. ReceiptsCount
// must repeat the number of receipts so a truncated batch is caught.
type UpdateVoterWeightRecordRequest struct {
	Registrar         domain.Pubkey             `json:"registrar"`
	Input             domain.Pubkey             `json:"input"`
	VoterWeightRecord domain.Pubkey             `json:"voter_weight_record"`
	TokenOwnerRecord  domain.Pubkey             `json:"token_owner_record"`
	Proposal          *domain.Pubkey            `json:"proposal,omitempty"`
	Receipts          []domain.Pubkey           `json:"receipts"`
	ReceiptsCount     int                       `json:"receipts_count"`
	Action            *domain.VoterWeightAction `json:"action"`
	ActionTarget      domain.Pubkey             `json:"action_target"`
}

func (r *UpdateVoterWeightRecordRequest) Validate() error {
	if err := httpapi.RequireKeys(
		httpapi.Key{Name: "registrar", Value: r.Registrar},
		httpapi.Key{Name: "input", Value: r.Input},
		httpapi.Key{Name: "voter_weight_record", Value: r.VoterWeightRecord},
		httpapi.Key{Name: "token_owner_record", Value: r.TokenOwnerRecord},
	); err != nil {
		return err
	}
	if r.ReceiptsCount < 0 {
		return dErrors.New(dErrors.CodeValidation, "receipts_count cannot be negative")
	}
	return httpapi.RequireAction(r.Action)
}

func (r *UpdateVoterWeightRecordRequest) command(signer domain.Pubkey) service.UpdateCommand {
	return service.UpdateCommand{
		Registrar:         r.Registrar,
		Input:             r.Input,
		VoterWeightRecord: r.VoterWeightRecord,
		TokenOwnerRecord:  r.TokenOwnerRecord,
		Proposal:          r.Proposal,
		Receipts:          r.Receipts,
		ReceiptsCount:     r.ReceiptsCount,
		Action:            *r.Action,
		ActionTarget:      r.ActionTarget,
		Signer:            signer,
	}
}
