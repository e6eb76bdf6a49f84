// Package handler exposes the realm voter plugin over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voterweight/internal/plugins/realmvoter/models"
	"voterweight/internal/plugins/realmvoter/service"
	"voterweight/internal/voterweight/httpapi"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

type Service interface {
	CreateRegistrar(ctx context.Context, cmd service.CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error)
	ConfigureGovernanceProgram(ctx context.Context, cmd service.ConfigureGovernanceProgramCommand) (*models.Registrar, error)
	ConfigureVoterWeights(ctx context.Context, cmd service.ConfigureVoterWeightsCommand) (*models.Registrar, *vwmodels.MaxVoterWeightRecord, error)
	CreateVoterWeightRecord(ctx context.Context, registrar, owner domain.Pubkey) (domain.Pubkey, error)
	CreateMaxVoterWeightRecord(ctx context.Context, registrar domain.Pubkey) (domain.Pubkey, error)
	UpdateVoterWeightRecord(ctx context.Context, cmd service.UpdateCommand) (*vwmodels.VoterWeightRecord, error)
	UpdateMaxVoterWeightRecord(ctx context.Context, registrar, maxRecord domain.Pubkey) (*vwmodels.MaxVoterWeightRecord, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/realm-voter", func(r chi.Router) {
		r.Post("/registrars", h.handleCreateRegistrar)
		r.Post("/governance-programs", h.handleConfigureGovernanceProgram)
		r.Post("/voter-weights", h.handleConfigureVoterWeights)
		r.Post("/voter-weight-records", h.handleCreateVoterWeightRecord)
		r.Post("/voter-weight-records/update", h.handleUpdateVoterWeightRecord)
		r.Post("/max-voter-weight-records", h.handleCreateMaxVoterWeightRecord)
		r.Post("/max-voter-weight-records/update", h.handleUpdateMaxVoterWeightRecord)
	})
}

// RegistrarResponse is the JSON view of a realm voter registrar.
type RegistrarResponse struct {
	Address                *domain.Pubkey  `json:"address,omitempty"`
	GovernanceProgramID    domain.Pubkey   `json:"governance_program_id"`
	Realm                  domain.Pubkey   `json:"realm"`
	GoverningTokenMint     domain.Pubkey   `json:"governing_token_mint"`
	MaxGovernancePrograms  uint8           `json:"max_governance_programs"`
	GovernancePrograms     []domain.Pubkey `json:"governance_programs"`
	RealmMemberVoterWeight uint64          `json:"realm_member_voter_weight"`
	MaxVoterWeight         uint64          `json:"max_voter_weight"`
}

func toRegistrarResponse(address *domain.Pubkey, reg *models.Registrar) *RegistrarResponse {
	programs := make([]domain.Pubkey, 0, len(reg.GovernanceProgramConfigs))
	for _, c := range reg.GovernanceProgramConfigs {
		programs = append(programs, c.ProgramID)
	}
	return &RegistrarResponse{
		Address:                address,
		GovernanceProgramID:    reg.GovernanceProgramID,
		Realm:                  reg.Realm,
		GoverningTokenMint:     reg.GoverningTokenMint,
		MaxGovernancePrograms:  reg.MaxGovernancePrograms,
		GovernancePrograms:     programs,
		RealmMemberVoterWeight: reg.RealmMemberVoterWeight,
		MaxVoterWeight:         reg.MaxVoterWeight,
	}
}

type ConfigureVoterWeightsResponse struct {
	Registrar            *RegistrarResponse                    `json:"registrar"`
	MaxVoterWeightRecord *httpapi.MaxVoterWeightRecordResponse `json:"max_voter_weight_record"`
}

func (h *Handler) handleCreateRegistrar(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "create_registrar", http.StatusCreated,
		func(ctx context.Context, signer domain.Pubkey, req *CreateRegistrarRequest) (any, error) {
			address, reg, err := h.service.CreateRegistrar(ctx, service.CreateRegistrarCommand{
				GovernanceProgramID:   req.GovernanceProgramID,
				Realm:                 req.Realm,
				GoverningTokenMint:    req.GoverningTokenMint,
				MaxGovernancePrograms: req.MaxGovernancePrograms,
				Signer:                signer,
			})
			if err != nil {
				return nil, err
			}
			return toRegistrarResponse(&address, reg), nil
		},
	)(w, r)
}

func (h *Handler) handleConfigureGovernanceProgram(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "configure_governance_program", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *ConfigureGovernanceProgramRequest) (any, error) {
			reg, err := h.service.ConfigureGovernanceProgram(ctx, service.ConfigureGovernanceProgramCommand{
				Registrar:         req.Registrar,
				GovernanceProgram: req.GovernanceProgram,
				Change:            *req.Change,
				Signer:            signer,
			})
			if err != nil {
				return nil, err
			}
			return toRegistrarResponse(&req.Registrar, reg), nil
		},
	)(w, r)
}

func (h *Handler) handleConfigureVoterWeights(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "configure_voter_weights", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *ConfigureVoterWeightsRequest) (any, error) {
			reg, maxRec, err := h.service.ConfigureVoterWeights(ctx, service.ConfigureVoterWeightsCommand{
				Registrar:              req.Registrar,
				MaxVoterWeightRecord:   req.MaxVoterWeightRecord,
				RealmMemberVoterWeight: req.RealmMemberVoterWeight,
				MaxVoterWeight:         req.MaxVoterWeight,
				Signer:                 signer,
			})
			if err != nil {
				return nil, err
			}
			return &ConfigureVoterWeightsResponse{
				Registrar:            toRegistrarResponse(&req.Registrar, reg),
				MaxVoterWeightRecord: httpapi.FromMaxVoterWeightRecord(&req.MaxVoterWeightRecord, maxRec),
			}, nil
		},
	)(w, r)
}

func (h *Handler) handleCreateVoterWeightRecord(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "create_voter_weight_record", http.StatusCreated,
		func(ctx context.Context, _ domain.Pubkey, req *CreateVoterWeightRecordRequest) (any, error) {
			address, err := h.service.CreateVoterWeightRecord(ctx, req.Registrar, req.GoverningTokenOwner)
			if err != nil {
				return nil, err
			}
			return &httpapi.AddressResponse{Address: address}, nil
		},
	)(w, r)
}

func (h *Handler) handleCreateMaxVoterWeightRecord(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "create_max_voter_weight_record", http.StatusCreated,
		func(ctx context.Context, _ domain.Pubkey, req *RegistrarRequest) (any, error) {
			address, err := h.service.CreateMaxVoterWeightRecord(ctx, req.Registrar)
			if err != nil {
				return nil, err
			}
			return &httpapi.AddressResponse{Address: address}, nil
		},
	)(w, r)
}

func (h *Handler) handleUpdateVoterWeightRecord(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "update_voter_weight_record", http.StatusOK,
		func(ctx context.Context, _ domain.Pubkey, req *UpdateVoterWeightRecordRequest) (any, error) {
			rec, err := h.service.UpdateVoterWeightRecord(ctx, service.UpdateCommand{
				Registrar:         req.Registrar,
				VoterWeightRecord: req.VoterWeightRecord,
				TokenOwnerRecord:  req.TokenOwnerRecord,
			})
			if err != nil {
				return nil, err
			}
			return httpapi.FromVoterWeightRecord(&req.VoterWeightRecord, rec), nil
		},
	)(w, r)
}

func (h *Handler) handleUpdateMaxVoterWeightRecord(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "update_max_voter_weight_record", http.StatusOK,
		func(ctx context.Context, _ domain.Pubkey, req *UpdateMaxVoterWeightRecordRequest) (any, error) {
			maxRec, err := h.service.UpdateMaxVoterWeightRecord(ctx, req.Registrar, req.MaxVoterWeightRecord)
			if err != nil {
				return nil, err
			}
			return httpapi.FromMaxVoterWeightRecord(&req.MaxVoterWeightRecord, maxRec), nil
		},
	)(w, r)
}
