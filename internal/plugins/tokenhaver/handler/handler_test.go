package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"voterweight/internal/plugins/tokenhaver/handler/mocks"
	"voterweight/internal/plugins/tokenhaver/models"
	"voterweight/internal/plugins/tokenhaver/service"
	"voterweight/internal/voterweight/httpapi"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
	"voterweight/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type TokenHaverHandlerSuite struct {
	suite.Suite
	router  http.Handler
	service *mocks.MockService
	signer  domain.Pubkey
}

func TestTokenHaverHandlerSuite(t *testing.T) {
	suite.Run(t, new(TokenHaverHandlerSuite))
}

func (s *TokenHaverHandlerSuite) SetupTest() {
	s.service = mocks.NewMockService(gomock.NewController(s.T()))
	r := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	s.router = r
	s.signer = domain.NewUniquePubkey()
}

func (s *TokenHaverHandlerSuite) post(path string, body any) *http.Request {
	return testutil.WithSigner(testutil.NewJSONRequest(s.T(), http.MethodPost, path, body), s.signer)
}

func (s *TokenHaverHandlerSuite) TestCreateRegistrar() {
	req := CreateRegistrarRequest{
		GovernanceProgramID: domain.NewUniquePubkey(),
		Realm:               domain.NewUniquePubkey(),
		GoverningTokenMint:  domain.NewUniquePubkey(),
		Mints:               []domain.Pubkey{domain.NewUniquePubkey()},
	}
	address := domain.NewUniquePubkey()
	s.service.EXPECT().CreateRegistrar(gomock.Any(), service.CreateRegistrarCommand{
		GovernanceProgramID: req.GovernanceProgramID,
		Realm:               req.Realm,
		GoverningTokenMint:  req.GoverningTokenMint,
		Mints:               req.Mints,
		Signer:              s.signer,
	}).Return(address, &models.Registrar{
		RegistrarIdentity: vwmodels.RegistrarIdentity{Realm: req.Realm},
		Mints:             req.Mints,
	}, nil)

	rr := testutil.DoRequest(s.router, s.post("/v1/token-haver/registrars", req))

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[RegistrarResponse](s.T(), rr)
	s.Equal(address, *resp.Address)
	s.Equal(req.Mints, resp.Mints)
}

func (s *TokenHaverHandlerSuite) TestConfigureMints() {
	s.Run("empty list clears the mints", func() {
		registrar := domain.NewUniquePubkey()
		s.service.EXPECT().ConfigureMints(gomock.Any(), service.ConfigureMintsCommand{
			Registrar: registrar,
			Signer:    s.signer,
		}).Return(&models.Registrar{}, nil)

		rr := testutil.DoRequest(s.router, s.post("/v1/token-haver/mints", ConfigureMintsRequest{Registrar: registrar}))

		testutil.AssertStatusOK(s.T(), rr)
		s.Empty(testutil.UnmarshalResponse[RegistrarResponse](s.T(), rr).Mints)
	})

	s.Run("duplicate mints", func() {
		mint := domain.NewUniquePubkey()
		s.service.EXPECT().ConfigureMints(gomock.Any(), gomock.Any()).Return(nil, service.ErrDuplicateMint)

		rr := testutil.DoRequest(s.router, s.post("/v1/token-haver/mints", ConfigureMintsRequest{
			Registrar: domain.NewUniquePubkey(),
			Mints:     []domain.Pubkey{mint, mint},
		}))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("registrar is required", func() {
		rr := testutil.DoRequest(s.router, s.post("/v1/token-haver/mints", ConfigureMintsRequest{}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *TokenHaverHandlerSuite) TestUpdateVoterWeightRecord() {
	req := UpdateVoterWeightRecordRequest{
		Registrar:         domain.NewUniquePubkey(),
		VoterWeightRecord: domain.NewUniquePubkey(),
		TokenAccounts:     []domain.Pubkey{domain.NewUniquePubkey(), domain.NewUniquePubkey()},
	}

	s.Run("returns the record", func() {
		slot := domain.Slot(42)
		s.service.EXPECT().UpdateVoterWeightRecord(gomock.Any(), service.UpdateCommand{
			Registrar:         req.Registrar,
			VoterWeightRecord: req.VoterWeightRecord,
			TokenAccounts:     req.TokenAccounts,
		}).Return(&vwmodels.VoterWeightRecord{VoterWeight: 2 * models.WeightPerMint, VoterWeightExpiry: &slot}, nil)

		rr := testutil.DoRequest(s.router, s.post("/v1/token-haver/voter-weight-records/update", req))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[httpapi.VoterWeightRecordResponse](s.T(), rr)
		s.Equal(2*models.WeightPerMint, resp.VoterWeight)
	})

	s.Run("unlocked tokens", func() {
		s.service.EXPECT().UpdateVoterWeightRecord(gomock.Any(), gomock.Any()).Return(nil, service.ErrTokenAccountNotLocked)

		rr := testutil.DoRequest(s.router, s.post("/v1/token-haver/voter-weight-records/update", req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
		testutil.AssertReason(s.T(), rr, "token_account_not_locked")
	})
}
