package httptransport

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/suite"

	jwttoken "voterweight/internal/jwt_token"
	"voterweight/internal/ledger"
	"voterweight/internal/ledger/store/memory"
	ratelimit "voterweight/internal/ratelimit/middleware"
	"voterweight/internal/ratelimit/store/bucket"
	"voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
	"voterweight/pkg/platform/httputil"
	"voterweight/pkg/requestcontext"
	"voterweight/pkg/testutil"
)

// whoami answers with the verified signer, or 401 without one.
type whoami struct{}

func (whoami) Register(r chi.Router) {
	r.Get("/v1/whoami", func(w http.ResponseWriter, r *http.Request) {
		signer, ok := requestcontext.Signer(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"signer": signer.String()})
	})
}

type RouterSuite struct {
	suite.Suite
	ledger  *ledger.Ledger
	tokens  *jwttoken.JWTService
	healthy error
	router  http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	var err error
	s.ledger, err = ledger.New(memory.New(), ledger.NewManualClock(1, 1))
	s.Require().NoError(err)
	s.tokens = jwttoken.NewJWTService("voterweight", time.Minute)
	s.healthy = nil

	s.router = NewRouter(Deps{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:  s.tokens,
		Records: s.ledger,
		Metrics: promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
		Health: map[string]HealthCheck{
			"ledger": func(context.Context) error { return s.healthy },
		},
		Plugins: []Routes{whoami{}},
	})
}

func (s *RouterSuite) TestHealth() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
	testutil.AssertStatusOK(s.T(), rr)
	s.NotEmpty(rr.Header().Get("X-Request-ID"))

	s.healthy = errors.New("connection refused")
	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
	testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
	testutil.AssertJSONContains(s.T(), rr, "status", "degraded")
}

func (s *RouterSuite) TestMetrics() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *RouterSuite) TestSignerToken() {
	pub, key, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	signer, err := domain.PubkeyFromBytes(pub)
	s.Require().NoError(err)
	token, err := s.tokens.GenerateSignerToken(key, time.Minute)
	s.Require().NoError(err)

	s.Run("verified signer reaches the handler", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/v1/whoami")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "signer", signer.String())
	})

	s.Run("forged token is rejected", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/v1/whoami")
		req.Header.Set("Authorization", "Bearer "+token+"x")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *RouterSuite) TestRecordLookup() {
	program := domain.NewUniquePubkey()
	rec := models.NewVoterWeightRecord(domain.NewUniquePubkey(), domain.NewUniquePubkey(), domain.NewUniquePubkey())
	rec.VoterWeight = 77
	recAddr := domain.NewUniquePubkey()
	maxRec := models.NewMaxVoterWeightRecord(rec.Realm, rec.GoverningTokenMint)
	maxRec.MaxVoterWeight = 1_000
	maxAddr := domain.NewUniquePubkey()
	other := domain.NewUniquePubkey()
	s.Require().NoError(s.ledger.Seed(context.Background(),
		ledger.Account{Address: recAddr, Owner: program, Data: rec.Encode()},
		ledger.Account{Address: maxAddr, Owner: program, Data: maxRec.Encode()},
		ledger.Account{Address: other, Owner: program, Data: []byte{1, 2, 3}},
	))

	s.Run("voter weight record", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/v1/records/"+recAddr.String()))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[RecordResponse](s.T(), rr)
		s.Equal(kindVoterWeightRecord, resp.Kind)
		s.Equal(program, resp.Owner)
		s.Require().NotNil(resp.VoterWeightRecord)
		s.Equal(uint64(77), resp.VoterWeightRecord.VoterWeight)
		s.Nil(resp.MaxVoterWeightRecord)
	})

	s.Run("max voter weight record", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/v1/records/"+maxAddr.String()))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[RecordResponse](s.T(), rr)
		s.Equal(kindMaxVoterWeightRecord, resp.Kind)
		s.Equal(uint64(1_000), resp.MaxVoterWeightRecord.MaxVoterWeight)
	})

	s.Run("other account", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/v1/records/"+other.String()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("missing account", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/v1/records/"+domain.NewUniquePubkey().String()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed address", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/v1/records/0OIl"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *RouterSuite) TestRateLimitGuardsSignedRoutes() {
	limiter := ratelimit.New(bucket.New(), ratelimit.Limits{Read: 2, Write: 2, Window: time.Minute},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := NewRouter(Deps{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:    s.tokens,
		Records:   s.ledger,
		Plugins:   []Routes{whoami{}},
		RateLimit: limiter.RateLimit,
	})

	for range 2 {
		rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/v1/whoami"))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	}
	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/v1/whoami"))
	testutil.AssertStatus(s.T(), rr, http.StatusTooManyRequests)

	rr = testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
	testutil.AssertStatusOK(s.T(), rr)
}
