package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"voterweight/pkg/domain"
	"voterweight/pkg/requestcontext"
)

type validatorFunc func(string) (domain.Pubkey, error)

func (f validatorFunc) ValidateToken(token string) (domain.Pubkey, error) { return f(token) }

func TestSigner(t *testing.T) {
	signer := domain.NewUniquePubkey()
	validator := validatorFunc(func(token string) (domain.Pubkey, error) {
		if token == "good" {
			return signer, nil
		}
		return domain.Pubkey{}, errors.New("bad signature")
	})
	var seen *domain.Pubkey
	handler := Signer(validator, slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := requestcontext.Signer(r.Context()); ok {
				seen = &s
			}
			w.WriteHeader(http.StatusNoContent)
		}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantSigner *domain.Pubkey
		wantDesc   string
	}{
		{name: "no header", wantStatus: http.StatusNoContent},
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusNoContent, wantSigner: &signer},
		{
			name:       "invalid token",
			header:     "Bearer forged",
			wantStatus: http.StatusUnauthorized,
			wantDesc:   "Invalid or expired token",
		},
		{
			name:       "not a bearer token",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
			wantDesc:   "Missing or invalid Authorization header",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantSigner, seen)
			if tt.wantDesc != "" {
				assert.JSONEq(t, `{"error":"unauthorized","error_description":"`+tt.wantDesc+`"}`, rr.Body.String())
			}
		})
	}
}
