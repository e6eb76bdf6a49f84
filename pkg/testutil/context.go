package testutil

import (
	"net/http"

	"voterweight/pkg/domain"
	"voterweight/pkg/requestcontext"
)

// WithSigner marks the request as signed by signer, as the auth middleware
// does for a verified token.
func WithSigner(req *http.Request, signer domain.Pubkey) *http.Request {
	return req.WithContext(requestcontext.WithSigner(req.Context(), signer))
}
