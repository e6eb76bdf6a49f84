package httptransport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voterweight/internal/ledger"
	"voterweight/internal/voterweight/httpapi"
	"voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
	dErrors "voterweight/pkg/domain-errors"
	"voterweight/pkg/platform/httputil"
	"voterweight/pkg/platform/sentinel"
	"voterweight/pkg/requestcontext"
)

// RecordReader reads committed accounts.
type RecordReader interface {
	Get(ctx context.Context, address domain.Pubkey) (*ledger.Account, error)
}

var (
	errRecordNotFound = dErrors.Define(dErrors.CodeNotFound, "record_not_found", "record not found")
	errNotARecord     = dErrors.Define(dErrors.CodeInvalidInput,
		"not_a_weight_record", "account is not a voter weight or max voter weight record")
)

const (
	kindVoterWeightRecord    = "voter_weight_record"
	kindMaxVoterWeightRecord = "max_voter_weight_record"
)

// RecordResponse is a decoded output record together with the program that
// owns it, which is how the governance engine tells plugins apart.
type RecordResponse struct {
	Address              domain.Pubkey                         `json:"address"`
	Owner                domain.Pubkey                         `json:"owner"`
	Kind                 string                                `json:"kind"`
	VoterWeightRecord    *httpapi.VoterWeightRecordResponse    `json:"voter_weight_record,omitempty"`
	MaxVoterWeightRecord *httpapi.MaxVoterWeightRecordResponse `json:"max_voter_weight_record,omitempty"`
}

func decodeRecord(acc *ledger.Account) (*RecordResponse, error) {
	resp := &RecordResponse{Address: acc.Address, Owner: acc.Owner}
	switch {
	case bytes.HasPrefix(acc.Data, models.VoterWeightRecordDiscriminator[:]):
		rec, err := models.DecodeVoterWeightRecord(acc.Data)
		if err != nil {
			return nil, errNotARecord.WithCause(err)
		}
		resp.Kind = kindVoterWeightRecord
		resp.VoterWeightRecord = httpapi.FromVoterWeightRecord(nil, rec)
	case bytes.HasPrefix(acc.Data, models.MaxVoterWeightRecordDiscriminator[:]):
		rec, err := models.DecodeMaxVoterWeightRecord(acc.Data)
		if err != nil {
			return nil, errNotARecord.WithCause(err)
		}
		resp.Kind = kindMaxVoterWeightRecord
		resp.MaxVoterWeightRecord = httpapi.FromMaxVoterWeightRecord(nil, rec)
	default:
		return nil, errNotARecord
	}
	return resp, nil
}

func recordHandler(records RecordReader, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		address, err := domain.ParsePubkey(chi.URLParam(r, "address"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		acc, err := records.Get(ctx, address)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				httputil.WriteError(w, errRecordNotFound)
				return
			}
			logger.ErrorContext(ctx, "failed to read record",
				"request_id", requestcontext.RequestID(ctx),
				"address", address.String(),
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		resp, err := decodeRecord(acc)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}
