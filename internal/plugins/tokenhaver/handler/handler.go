// Package handler exposes the token haver plugin over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voterweight/internal/plugins/tokenhaver/models"
	"voterweight/internal/plugins/tokenhaver/service"
	"voterweight/internal/voterweight/httpapi"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

type Service interface {
	CreateRegistrar(ctx context.Context, cmd service.CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error)
	ConfigureMints(ctx context.Context, cmd service.ConfigureMintsCommand) (*models.Registrar, error)
	CreateVoterWeightRecord(ctx context.Context, registrar, owner domain.Pubkey) (domain.Pubkey, error)
	UpdateVoterWeightRecord(ctx context.Context, cmd service.UpdateCommand) (*vwmodels.VoterWeightRecord, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/token-haver", func(r chi.Router) {
		r.Post("/registrars", h.handleCreateRegistrar)
		r.Post("/mints", h.handleConfigureMints)
		r.Post("/voter-weight-records", h.handleCreateVoterWeightRecord)
		r.Post("/voter-weight-records/update", h.handleUpdateVoterWeightRecord)
	})
}

type RegistrarResponse struct {
	Address             *domain.Pubkey  `json:"address,omitempty"`
	GovernanceProgramID domain.Pubkey   `json:"governance_program_id"`
	Realm               domain.Pubkey   `json:"realm"`
	GoverningTokenMint  domain.Pubkey   `json:"governing_token_mint"`
	Mints               []domain.Pubkey `json:"mints"`
}

func toRegistrarResponse(address *domain.Pubkey, reg *models.Registrar) *RegistrarResponse {
	mints := reg.Mints
	if mints == nil {
		mints = []domain.Pubkey{}
	}
	return &RegistrarResponse{
		Address:             address,
		GovernanceProgramID: reg.GovernanceProgramID,
		Realm:               reg.Realm,
		GoverningTokenMint:  reg.GoverningTokenMint,
		Mints:               mints,
	}
}

func (h *Handler) handleCreateRegistrar(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "create_registrar", http.StatusCreated,
		func(ctx context.Context, signer domain.Pubkey, req *CreateRegistrarRequest) (any, error) {
			address, reg, err := h.service.CreateRegistrar(ctx, service.CreateRegistrarCommand{
				GovernanceProgramID: req.GovernanceProgramID,
				Realm:               req.Realm,
				GoverningTokenMint:  req.GoverningTokenMint,
				Mints:               req.Mints,
				Signer:              signer,
			})
			if err != nil {
				return nil, err
			}
			return toRegistrarResponse(&address, reg), nil
		},
	)(w, r)
}

func (h *Handler) handleConfigureMints(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "configure_mints", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *ConfigureMintsRequest) (any, error) {
			reg, err := h.service.ConfigureMints(ctx, service.ConfigureMintsCommand{
				Registrar: req.Registrar,
				Mints:     req.Mints,
				Signer:    signer,
			})
			if err != nil {
				return nil, err
			}
			return toRegistrarResponse(&req.Registrar, reg), nil
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
		func(ctx context.Context, _ domain.Pubkey, req *UpdateVoterWeightRecordRequest) (any, error) {
			rec, err := h.service.UpdateVoterWeightRecord(ctx, service.UpdateCommand{
				Registrar:         req.Registrar,
				VoterWeightRecord: req.VoterWeightRecord,
				TokenAccounts:     req.TokenAccounts,
			})
			if err != nil {
				return nil, err
			}
			return httpapi.FromVoterWeightRecord(&req.VoterWeightRecord, rec), nil
		},
	)(w, r)
}
