// Package httpapi holds the JSON shapes and handler plumbing shared by every
// plugin's HTTP handler.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
	"voterweight/pkg/platform/httputil"
	"voterweight/pkg/requestcontext"
)

// VoterWeightRecordResponse is the JSON view of a voter weight record.
type VoterWeightRecordResponse struct {
	Address             *domain.Pubkey            `json:"address,omitempty"`
	Realm               domain.Pubkey             `json:"realm"`
	GoverningTokenMint  domain.Pubkey             `json:"governing_token_mint"`
	GoverningTokenOwner domain.Pubkey             `json:"governing_token_owner"`
	VoterWeight         uint64                    `json:"voter_weight"`
	VoterWeightExpiry   *domain.Slot              `json:"voter_weight_expiry"`
	WeightAction        *domain.VoterWeightAction `json:"weight_action"`
	WeightActionTarget  *domain.Pubkey            `json:"weight_action_target"`
}

func FromVoterWeightRecord(address *domain.Pubkey, rec *models.VoterWeightRecord) *VoterWeightRecordResponse {
	return &VoterWeightRecordResponse{
		Address:             address,
		Realm:               rec.Realm,
		GoverningTokenMint:  rec.GoverningTokenMint,
		GoverningTokenOwner: rec.GoverningTokenOwner,
		VoterWeight:         rec.VoterWeight,
		VoterWeightExpiry:   rec.VoterWeightExpiry,
		WeightAction:        rec.WeightAction,
		WeightActionTarget:  rec.WeightActionTarget,
	}
}

// MaxVoterWeightRecordResponse is the JSON view of a max voter weight record.
type MaxVoterWeightRecordResponse struct {
	Address              *domain.Pubkey `json:"address,omitempty"`
	Realm                domain.Pubkey  `json:"realm"`
	GoverningTokenMint   domain.Pubkey  `json:"governing_token_mint"`
	MaxVoterWeight       uint64         `json:"max_voter_weight"`
	MaxVoterWeightExpiry *domain.Slot   `json:"max_voter_weight_expiry"`
}

func FromMaxVoterWeightRecord(address *domain.Pubkey, rec *models.MaxVoterWeightRecord) *MaxVoterWeightRecordResponse {
	return &MaxVoterWeightRecordResponse{
		Address:              address,
		Realm:                rec.Realm,
		GoverningTokenMint:   rec.GoverningTokenMint,
		MaxVoterWeight:       rec.MaxVoterWeight,
		MaxVoterWeightExpiry: rec.MaxVoterWeightExpiry,
	}
}

// AddressResponse answers a create with the address of the new account.
type AddressResponse struct {
	Address domain.Pubkey `json:"address"`
}

// Operation builds a handler that decodes and validates a T, runs call and
// writes its result with status. signer is the zero key when the request
// carried no verified signature; services reject it where one is required.
func Operation[T any, PT interface {
	*T
	httputil.Validatable
}](logger *slog.Logger, name string, status int, call func(ctx context.Context, signer domain.Pubkey, req *T) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		req, ok := httputil.DecodeAndPrepare[T, PT](w, r, logger, ctx, requestID)
		if !ok {
			return
		}
		signer, _ := requestcontext.Signer(ctx)
		res, err := call(ctx, signer, req)
		if err != nil {
			logger.WarnContext(ctx, "operation failed",
				"request_id", requestID,
				"operation", name,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		if res == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		httputil.WriteJSON(w, status, res)
	}
}
