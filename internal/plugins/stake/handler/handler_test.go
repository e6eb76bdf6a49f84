package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"voterweight/internal/plugins/stake/handler/mocks"
	"voterweight/internal/plugins/stake/models"
	"voterweight/internal/plugins/stake/service"
	"voterweight/internal/voterweight/httpapi"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
	"voterweight/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type StakeHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *StakeHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestStakeHandlerSuite(t *testing.T) {
	suite.Run(t, new(StakeHandlerSuite))
}

func newTestHandler(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, logger).Register(r)
	return r, mockService
}

func (s *StakeHandlerSuite) TestCreateRegistrar() {
	router, mockService := newTestHandler(s.T())
	signer := domain.NewUniquePubkey()
	req := CreateRegistrarRequest{
		GovernanceProgramID: domain.NewUniquePubkey(),
		Realm:               domain.NewUniquePubkey(),
		GoverningTokenMint:  domain.NewUniquePubkey(),
		StakePool:           domain.NewUniquePubkey(),
	}
	address := domain.NewUniquePubkey()

	s.Run("signer is passed to the service", func() {
		mockService.EXPECT().CreateRegistrar(gomock.Any(), req.command(signer)).Return(address, &models.Registrar{
			RegistrarIdentity: vwmodels.RegistrarIdentity{
				GovernanceProgramID: req.GovernanceProgramID,
				Realm:               req.Realm,
				GoverningTokenMint:  req.GoverningTokenMint,
			},
			RealmAuthority: signer,
			StakePool:      req.StakePool,
		}, nil)

		httpReq := testutil.WithSigner(testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/stake/registrars", req), signer)
		rr := testutil.DoRequest(router, httpReq)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[RegistrarResponse](s.T(), rr)
		assert.Equal(s.T(), address, resp.Address)
		assert.Equal(s.T(), signer, resp.RealmAuthority)
		assert.Equal(s.T(), req.StakePool, resp.StakePool)
	})

	s.Run("missing stake pool is rejected before the service", func() {
		body := req
		body.StakePool = domain.Pubkey{}
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/stake/registrars", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("malformed pubkey", func() {
		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/v1/stake/registrars", `{"realm":"not-base58-0OIl"}`))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *StakeHandlerSuite) TestCreateVoterWeightRecord() {
	router, mockService := newTestHandler(s.T())
	registrar := domain.NewUniquePubkey()
	owner := domain.NewUniquePubkey()
	address := domain.NewUniquePubkey()
	mockService.EXPECT().CreateVoterWeightRecord(gomock.Any(), registrar, owner).Return(address, nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/stake/voter-weight-records",
		CreateVoterWeightRecordRequest{Registrar: registrar, GoverningTokenOwner: owner}))

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[httpapi.AddressResponse](s.T(), rr)
	assert.Equal(s.T(), address, resp.Address)
}

func (s *StakeHandlerSuite) TestUpdateVoterWeightRecord() {
	signer := domain.NewUniquePubkey()
	proposal := domain.NewUniquePubkey()
	req := UpdateVoterWeightRecordRequest{
		Registrar:         domain.NewUniquePubkey(),
		Input:             domain.NewUniquePubkey(),
		VoterWeightRecord: domain.NewUniquePubkey(),
		TokenOwnerRecord:  domain.NewUniquePubkey(),
		Proposal:          &proposal,
		Receipts:          []domain.Pubkey{domain.NewUniquePubkey()},
		ReceiptsCount:     1,
		Action:            domain.Some(domain.ActionCastVote),
		ActionTarget:      proposal,
	}

	s.Run("returns the updated record", func() {
		router, mockService := newTestHandler(s.T())
		rec := vwmodels.NewVoterWeightRecord(domain.NewUniquePubkey(), domain.NewUniquePubkey(), signer)
		rec.VoterWeight = 100
		rec.VoterWeightExpiry = domain.Some(domain.Slot(42))
		rec.WeightAction = domain.Some(domain.ActionCastVote)
		rec.WeightActionTarget = &proposal
		mockService.EXPECT().UpdateVoterWeightRecord(gomock.Any(), req.command(signer)).Return(rec, nil)

		httpReq := testutil.WithSigner(testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/stake/voter-weight-records/update", req), signer)
		rr := testutil.DoRequest(router, httpReq)

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[httpapi.VoterWeightRecordResponse](s.T(), rr)
		require.NotNil(s.T(), resp.Address)
		assert.Equal(s.T(), req.VoterWeightRecord, *resp.Address)
		assert.Equal(s.T(), uint64(100), resp.VoterWeight)
		assert.Equal(s.T(), domain.Some(domain.Slot(42)), resp.VoterWeightExpiry)
		assert.Equal(s.T(), domain.Some(domain.ActionCastVote), resp.WeightAction)
	})

	s.Run("duplicate receipt maps to conflict with its reason", func() {
		router, mockService := newTestHandler(s.T())
		mockService.EXPECT().UpdateVoterWeightRecord(gomock.Any(), gomock.Any()).Return(nil, service.ErrDuplicatedReceiptDetected)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/stake/voter-weight-records/update", req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "duplicate_use")
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		assert.Equal(s.T(), "duplicated_receipt_detected", body["reason"])
	})

	s.Run("action is required", func() {
		router, _ := newTestHandler(s.T())
		body := req
		body.Action = nil
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/stake/voter-weight-records/update", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown action name", func() {
		router, _ := newTestHandler(s.T())
		raw := testutil.MustMarshal(s.T(), req)
		raw = strings.Replace(raw, `"action":"CastVote"`, `"action":"Teleport"`, 1)
		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/v1/stake/voter-weight-records/update", raw))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}
