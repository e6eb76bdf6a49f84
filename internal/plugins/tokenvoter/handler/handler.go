// Package handler exposes the token voter plugin over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voterweight/internal/plugins/tokenvoter/models"
	"voterweight/internal/plugins/tokenvoter/service"
	"voterweight/internal/voterweight/httpapi"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

type Service interface {
	CreateRegistrar(ctx context.Context, cmd service.CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error)
	ResizeRegistrar(ctx context.Context, cmd service.ResizeRegistrarCommand) (*models.Registrar, error)
	ConfigureMintConfig(ctx context.Context, cmd service.ConfigureMintConfigCommand) (*models.Registrar, *vwmodels.MaxVoterWeightRecord, error)
	CreateVoterWeightRecord(ctx context.Context, registrar, signer domain.Pubkey) (domain.Pubkey, error)
	CreateMaxVoterWeightRecord(ctx context.Context, registrar domain.Pubkey) (domain.Pubkey, error)
	Deposit(ctx context.Context, cmd service.DepositCommand) (*vwmodels.VoterWeightRecord, error)
	Withdraw(ctx context.Context, cmd service.WithdrawCommand) (*vwmodels.VoterWeightRecord, error)
	CloseVoter(ctx context.Context, cmd service.CloseVoterCommand) error
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/token-voter", func(r chi.Router) {
		r.Post("/registrars", h.handleCreateRegistrar)
		r.Post("/registrars/resize", h.handleResizeRegistrar)
		r.Post("/mint-configs", h.handleConfigureMintConfig)
		r.Post("/voter-weight-records", h.handleCreateVoterWeightRecord)
		r.Post("/max-voter-weight-records", h.handleCreateMaxVoterWeightRecord)
		r.Post("/deposits", h.handleDeposit)
		r.Post("/withdrawals", h.handleWithdraw)
		r.Post("/voters/close", h.handleCloseVoter)
	})
}

type MintConfigResponse struct {
	Mint       domain.Pubkey `json:"mint"`
	DigitShift int8          `json:"digit_shift"`
	MintSupply uint64        `json:"mint_supply"`
}

type RegistrarResponse struct {
	Address             *domain.Pubkey       `json:"address,omitempty"`
	GovernanceProgramID domain.Pubkey        `json:"governance_program_id"`
	Realm               domain.Pubkey        `json:"realm"`
	GoverningTokenMint  domain.Pubkey        `json:"governing_token_mint"`
	MaxMints            uint8                `json:"max_mints"`
	MintConfigs         []MintConfigResponse `json:"mint_configs"`
}

func toRegistrarResponse(address *domain.Pubkey, reg *models.Registrar) *RegistrarResponse {
	configs := make([]MintConfigResponse, 0, len(reg.VotingMintConfigs))
	for _, c := range reg.VotingMintConfigs {
		configs = append(configs, MintConfigResponse{Mint: c.Mint, DigitShift: c.DigitShift, MintSupply: c.MintSupply})
	}
	return &RegistrarResponse{
		Address:             address,
		GovernanceProgramID: reg.GovernanceProgramID,
		Realm:               reg.Realm,
		GoverningTokenMint:  reg.GoverningTokenMint,
		MaxMints:            reg.MaxMints,
		MintConfigs:         configs,
	}
}

type ConfigureMintConfigResponse struct {
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
				MaxMints:            req.MaxMints,
				Signer:              signer,
			})
			if err != nil {
				return nil, err
			}
			return toRegistrarResponse(&address, reg), nil
		},
	)(w, r)
}

func (h *Handler) handleResizeRegistrar(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "resize_registrar", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *ResizeRegistrarRequest) (any, error) {
			reg, err := h.service.ResizeRegistrar(ctx, service.ResizeRegistrarCommand{
				Registrar: req.Registrar,
				MaxMints:  req.MaxMints,
				Signer:    signer,
			})
			if err != nil {
				return nil, err
			}
			return toRegistrarResponse(&req.Registrar, reg), nil
		},
	)(w, r)
}

func (h *Handler) handleConfigureMintConfig(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "configure_mint_config", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *ConfigureMintConfigRequest) (any, error) {
			reg, maxRec, err := h.service.ConfigureMintConfig(ctx, service.ConfigureMintConfigCommand{
				Registrar:            req.Registrar,
				MaxVoterWeightRecord: req.MaxVoterWeightRecord,
				Mint:                 req.Mint,
				DigitShift:           req.DigitShift,
				Signer:               signer,
			})
			if err != nil {
				return nil, err
			}
			return &ConfigureMintConfigResponse{
				Registrar:            toRegistrarResponse(&req.Registrar, reg),
				MaxVoterWeightRecord: httpapi.FromMaxVoterWeightRecord(&req.MaxVoterWeightRecord, maxRec),
			}, nil
		},
	)(w, r)
}

// The voter weight record and its arena belong to the signer, so the
// request names only the registrar.
func (h *Handler) handleCreateVoterWeightRecord(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "create_voter_weight_record", http.StatusCreated,
		func(ctx context.Context, signer domain.Pubkey, req *RegistrarRequest) (any, error) {
			address, err := h.service.CreateVoterWeightRecord(ctx, req.Registrar, signer)
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

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "deposit", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *DepositRequest) (any, error) {
			rec, err := h.service.Deposit(ctx, service.DepositCommand{
				Registrar:         req.Registrar,
				VoterWeightRecord: req.VoterWeightRecord,
				TokenOwnerRecord:  req.TokenOwnerRecord,
				DepositToken:      req.DepositToken,
				DepositEntryIndex: req.DepositEntryIndex,
				Amount:            req.Amount,
				Signer:            signer,
			})
			if err != nil {
				return nil, err
			}
			return httpapi.FromVoterWeightRecord(&req.VoterWeightRecord, rec), nil
		},
	)(w, r)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "withdraw", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *WithdrawRequest) (any, error) {
			rec, err := h.service.Withdraw(ctx, service.WithdrawCommand{
				Registrar:         req.Registrar,
				VoterWeightRecord: req.VoterWeightRecord,
				TokenOwnerRecord:  req.TokenOwnerRecord,
				Destination:       req.Destination,
				DepositEntryIndex: req.DepositEntryIndex,
				Amount:            req.Amount,
				Signer:            signer,
			})
			if err != nil {
				return nil, err
			}
			return httpapi.FromVoterWeightRecord(&req.VoterWeightRecord, rec), nil
		},
	)(w, r)
}

func (h *Handler) handleCloseVoter(w http.ResponseWriter, r *http.Request) {
	httpapi.Operation(h.logger, "close_voter", http.StatusOK,
		func(ctx context.Context, signer domain.Pubkey, req *CloseVoterRequest) (any, error) {
			return nil, h.service.CloseVoter(ctx, service.CloseVoterCommand{
				Registrar:         req.Registrar,
				VoterWeightRecord: req.VoterWeightRecord,
				Signer:            signer,
			})
		},
	)(w, r)
}
