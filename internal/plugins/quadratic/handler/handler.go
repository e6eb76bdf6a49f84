// Package handler exposes the quadratic plugin over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voterweight/internal/plugins/quadratic/models"
	"voterweight/internal/plugins/quadratic/service"
	"voterweight/internal/voterweight/httpapi"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

// Service defines the quadratic operations the handler drives.
type Service interface {
	CreateRegistrar(ctx context.Context, cmd service.CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error)
	ConfigureRegistrar(ctx context.Context, cmd service.ConfigureRegistrarCommand) (*models.Registrar, error)
	CreateVoterWeightRecord(ctx context.Context, registrar, owner domain.Pubkey) (domain.Pubkey, error)
	CreateMaxVoterWeightRecord(ctx context.Context, registrar domain.Pubkey) (domain.Pubkey, error)
	UpdateVoterWeightRecord(ctx context.Context, cmd service.UpdateCommand) (*vwmodels.VoterWeightRecord, error)
	UpdateMaxVoterWeightRecord(ctx context.Context, cmd service.UpdateMaxCommand) (*vwmodels.MaxVoterWeightRecord, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the quadratic routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/quadratic", func(r chi.Router) {
		r.Post("/registrars", h.handleCreateRegistrar)
		r.Post("/registrars/configure", h.handleConfigureRegistrar)
		r.Post("/voter-weight-records", h.handleCreateVoterWeightRecord)
		r.Post("/voter-weight-records/update", h.handleUpdateVoterWeightRecord)
		r.Post("/max-voter-weight-records", h.handleCreateMaxVoterWeightRecord)
		r.Post("/max-voter-weight-records/update", h.handleUpdateMaxVoterWeightRecord)
	})
}

// RegistrarResponse is the JSON view of a quadratic registrar.
type RegistrarResponse struct {
	Address                            *domain.Pubkey      `json:"address,omitempty"`
	GovernanceProgramID                domain.Pubkey       `json:"governance_program_id"`
	Realm                              domain.Pubkey       `json:"realm"`
	GoverningTokenMint                 domain.Pubkey       `json:"governing_token_mint"`
	PreviousVoterWeightPluginProgramID *domain.Pubkey      `json:"previous_voter_weight_plugin_program_id"`
	Coefficients                       models.Coefficients `json:"coefficients"`
}

func toRegistrarResponse(address *domain.Pubkey, reg *models.Registrar) *RegistrarResponse {
	return &RegistrarResponse{
		Address:                            address,
		GovernanceProgramID:                reg.GovernanceProgramID,
		Realm:                              reg.Realm,
		GoverningTokenMint:                 reg.GoverningTokenMint,
		PreviousVoterWeightPluginProgramID: reg.PreviousVoterWeightPluginProgramID,
		Coefficients:                       reg.Coefficients,
	}
}

func (h *Handler) handleCreateRegistrar(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "create_registrar", http.StatusCreated,
		func(ctx context.Context, signer domain.Pubkey, req *CreateRegistrarRequest) (any, error) {
			address, reg, err := h.service.CreateRegistrar(ctx, req.command(signer))
			if err != nil {
				return nil, err
			}
			return toRegistrarResponse(&address, reg), nil
		},
	)(w, r)
}

func (h *Handler) handleConfigureRegistrar(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "configure_registrar", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *ConfigureRegistrarRequest) (any, error) {
			reg, err := h.service.ConfigureRegistrar(ctx, req.command(signer))
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
				Input:             req.Input,
				VoterWeightRecord: req.VoterWeightRecord,
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
			maxRec, err := h.service.UpdateMaxVoterWeightRecord(ctx, service.UpdateMaxCommand{
				Registrar:            req.Registrar,
				Input:                req.Input,
				MaxVoterWeightRecord: req.MaxVoterWeightRecord,
			})
			if err != nil {
				return nil, err
			}
			return httpapi.FromMaxVoterWeightRecord(&req.MaxVoterWeightRecord, maxRec), nil
		},
	)(w, r)
}
