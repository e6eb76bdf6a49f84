// Package handler exposes the stake plugin over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voterweight/internal/plugins/stake/models"
	"voterweight/internal/plugins/stake/service"
	"voterweight/internal/voterweight/httpapi"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

// Service defines the stake operations the handler drives.
type Service interface {
	CreateRegistrar(ctx context.Context, cmd service.CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error)
	CreateVoterWeightRecord(ctx context.Context, registrar, owner domain.Pubkey) (domain.Pubkey, error)
	UpdateVoterWeightRecord(ctx context.Context, cmd service.UpdateCommand) (*vwmodels.VoterWeightRecord, error)
}

// Handler handles the stake plugin endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new stake Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the stake routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/stake", func(r chi.Router) {
		r.Post("/registrars", h.handleCreateRegistrar)
		r.Post("/voter-weight-records", h.handleCreateVoterWeightRecord)
		r.Post("/voter-weight-records/update", h.handleUpdateVoterWeightRecord)
	})
}

// RegistrarResponse is the JSON view of a stake registrar.
type RegistrarResponse struct {
	Address                            domain.Pubkey  `json:"address"`
	GovernanceProgramID                domain.Pubkey  `json:"governance_program_id"`
	Realm                              domain.Pubkey  `json:"realm"`
	GoverningTokenMint                 domain.Pubkey  `json:"governing_token_mint"`
	RealmAuthority                     domain.Pubkey  `json:"realm_authority"`
	StakePool                          domain.Pubkey  `json:"stake_pool"`
	PreviousVoterWeightPluginProgramID *domain.Pubkey `json:"previous_voter_weight_plugin_program_id,omitempty"`
}

func (h *Handler) handleCreateRegistrar(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "create_registrar", http.StatusCreated,
		func(ctx context.Context, signer domain.Pubkey, req *CreateRegistrarRequest) (any, error) {
			address, reg, err := h.service.CreateRegistrar(ctx, req.command(signer))
			if err != nil {
				return nil, err
			}
			return &RegistrarResponse{
				Address:                            address,
				GovernanceProgramID:                reg.GovernanceProgramID,
				Realm:                              reg.Realm,
				GoverningTokenMint:                 reg.GoverningTokenMint,
				RealmAuthority:                     reg.RealmAuthority,
				StakePool:                          reg.StakePool,
				PreviousVoterWeightPluginProgramID: reg.PreviousVoterWeightPluginProgramID,
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

func (h *Handler) handleUpdateVoterWeightRecord(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "update_voter_weight_record", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *UpdateVoterWeightRecordRequest) (any, error) {
			rec, err := h.service.UpdateVoterWeightRecord(ctx, req.command(signer))
			if err != nil {
				return nil, err
			}
			return httpapi.FromVoterWeightRecord(&req.VoterWeightRecord, rec), nil
		},
	)(w, r)
}
