// Package handler exposes the nft plugin over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voterweight/internal/plugins/nft/models"
	"voterweight/internal/plugins/nft/service"
	"voterweight/internal/voterweight/httpapi"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

// Service defines the nft operations the handler drives.
type Service interface {
	CreateRegistrar(ctx context.Context, cmd service.CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error)
	ConfigureCollection(ctx context.Context, cmd service.ConfigureCollectionCommand) (*models.Registrar, *vwmodels.MaxVoterWeightRecord, error)
	CreateVoterWeightRecord(ctx context.Context, registrar, owner domain.Pubkey) (domain.Pubkey, error)
	CreateMaxVoterWeightRecord(ctx context.Context, registrar domain.Pubkey) (domain.Pubkey, error)
	UpdateVoterWeightRecord(ctx context.Context, cmd service.UpdateCommand) (*vwmodels.VoterWeightRecord, error)
	UpdateMaxVoterWeightRecord(ctx context.Context, registrar, maxRecord domain.Pubkey) (*vwmodels.MaxVoterWeightRecord, error)
	CastNftVote(ctx context.Context, cmd service.CastNftVoteCommand) (*vwmodels.VoterWeightRecord, error)
	RelinquishNftVote(ctx context.Context, cmd service.RelinquishNftVoteCommand) (*vwmodels.VoterWeightRecord, error)
}

// Handler handles the nft plugin endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new nft Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the nft routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/nft", func(r chi.Router) {
		r.Post("/registrars", h.handleCreateRegistrar)
		r.Post("/collections", h.handleConfigureCollection)
		r.Post("/voter-weight-records", h.handleCreateVoterWeightRecord)
		r.Post("/voter-weight-records/update", h.handleUpdateVoterWeightRecord)
		r.Post("/max-voter-weight-records", h.handleCreateMaxVoterWeightRecord)
		r.Post("/max-voter-weight-records/update", h.handleUpdateMaxVoterWeightRecord)
		r.Post("/votes", h.handleCastNftVote)
		r.Post("/votes/relinquish", h.handleRelinquishNftVote)
	})
}

type CollectionConfigResponse struct {
	Collection domain.Pubkey `json:"collection"`
	Size       uint32        `json:"size"`
	Weight     uint64        `json:"weight"`
}

// RegistrarResponse is the JSON view of an nft registrar.
type RegistrarResponse struct {
	Address             *domain.Pubkey             `json:"address,omitempty"`
	GovernanceProgramID domain.Pubkey              `json:"governance_program_id"`
	Realm               domain.Pubkey              `json:"realm"`
	GoverningTokenMint  domain.Pubkey              `json:"governing_token_mint"`
	MaxCollections      uint8                      `json:"max_collections"`
	CollectionConfigs   []CollectionConfigResponse `json:"collection_configs"`
}

func toRegistrarResponse(address *domain.Pubkey, reg *models.Registrar) *RegistrarResponse {
	out := &RegistrarResponse{
		Address:             address,
		GovernanceProgramID: reg.GovernanceProgramID,
		Realm:               reg.Realm,
		GoverningTokenMint:  reg.GoverningTokenMint,
		MaxCollections:      reg.MaxCollections,
		CollectionConfigs:   make([]CollectionConfigResponse, 0, len(reg.CollectionConfigs)),
	}
	for _, c := range reg.CollectionConfigs {
		out.CollectionConfigs = append(out.CollectionConfigs, CollectionConfigResponse{
			Collection: c.Collection,
			Size:       c.Size,
			Weight:     c.Weight,
		})
	}
	return out
}

// ConfigureCollectionResponse carries the updated registrar and ceiling.
type ConfigureCollectionResponse struct {
	Registrar            *RegistrarResponse                    `json:"registrar"`
	MaxVoterWeightRecord *httpapi.MaxVoterWeightRecordResponse `json:"max_voter_weight_record"`
}

func (h *Handler) handleCreateRegistrar(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "create_registrar", http.StatusCreated,
		func(ctx context.Context, signer domain.Pubkey, req *CreateRegistrarRequest) (any, error) {
			address, reg, err := h.service.CreateRegistrar(ctx, service.CreateRegistrarCommand{
				GovernanceProgramID: req.GovernanceProgramID,
				Realm:               req.Realm,
				GoverningTokenMint:  req.GoverningTokenMint,
				MaxCollections:      req.MaxCollections,
				Signer:              signer,
			})
			if err != nil {
				return nil, err
			}
			return toRegistrarResponse(&address, reg), nil
		},
	)(w, r)
}

func (h *Handler) handleConfigureCollection(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "configure_collection", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *ConfigureCollectionRequest) (any, error) {
			reg, maxRec, err := h.service.ConfigureCollection(ctx, service.ConfigureCollectionCommand{
				Registrar:            req.Registrar,
				MaxVoterWeightRecord: req.MaxVoterWeightRecord,
				Collection:           req.Collection,
				Weight:               req.Weight,
				Size:                 req.Size,
				Signer:               signer,
			})
			if err != nil {
				return nil, err
			}
			return &ConfigureCollectionResponse{
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
				Action:            *req.Action,
				Assets:            req.Assets,
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

func (h *Handler) handleCastNftVote(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "cast_nft_vote", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *CastNftVoteRequest) (any, error) {
			rec, err := h.service.CastNftVote(ctx, req.command(signer))
			if err != nil {
				return nil, err
			}
			return httpapi.FromVoterWeightRecord(&req.VoterWeightRecord, rec), nil
		},
	)(w, r)
}

func (h *Handler) handleRelinquishNftVote(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "relinquish_nft_vote", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *RelinquishNftVoteRequest) (any, error) {
			rec, err := h.service.RelinquishNftVote(ctx, req.command(signer))
			if err != nil {
				return nil, err
			}
			return httpapi.FromVoterWeightRecord(&req.VoterWeightRecord, rec), nil
		},
	)(w, r)
}
