package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"voterweight/internal/plugins/tokenvoter/handler/mocks"
	"voterweight/internal/plugins/tokenvoter/models"
	"voterweight/internal/plugins/tokenvoter/service"
	"voterweight/internal/voterweight/httpapi"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
	"voterweight/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type TokenVoterHandlerSuite struct {
	suite.Suite
	router  http.Handler
	service *mocks.MockService
	signer  domain.Pubkey
}

func TestTokenVoterHandlerSuite(t *testing.T) {
	suite.Run(t, new(TokenVoterHandlerSuite))
}

func (s *TokenVoterHandlerSuite) SetupTest() {
	s.service = mocks.NewMockService(gomock.NewController(s.T()))
	r := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	s.router = r
	s.signer = domain.NewUniquePubkey()
}

func (s *TokenVoterHandlerSuite) post(path string, body any) *http.Request {
	return testutil.WithSigner(testutil.NewJSONRequest(s.T(), http.MethodPost, path, body), s.signer)
}

func (s *TokenVoterHandlerSuite) TestConfigureMintConfig() {
	req := ConfigureMintConfigRequest{
		Registrar:            domain.NewUniquePubkey(),
		MaxVoterWeightRecord: domain.NewUniquePubkey(),
		Mint:                 domain.NewUniquePubkey(),
		DigitShift:           -2,
	}
	s.service.EXPECT().ConfigureMintConfig(gomock.Any(), service.ConfigureMintConfigCommand{
		Registrar:            req.Registrar,
		MaxVoterWeightRecord: req.MaxVoterWeightRecord,
		Mint:                 req.Mint,
		DigitShift:           -2,
		Signer:               s.signer,
	}).Return(
		&models.Registrar{MaxMints: 1, VotingMintConfigs: []models.VotingMintConfig{{Mint: req.Mint, DigitShift: -2, MintSupply: 900}}},
		&vwmodels.MaxVoterWeightRecord{MaxVoterWeight: 9},
		nil,
	)

	rr := testutil.DoRequest(s.router, s.post("/v1/token-voter/mint-configs", req))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[ConfigureMintConfigResponse](s.T(), rr)
	s.Require().Len(resp.Registrar.MintConfigs, 1)
	s.Equal(int8(-2), resp.Registrar.MintConfigs[0].DigitShift)
	s.Equal(uint64(9), resp.MaxVoterWeightRecord.MaxVoterWeight)
}

func (s *TokenVoterHandlerSuite) TestResizeRegistrar() {
	registrar := domain.NewUniquePubkey()
	s.service.EXPECT().ResizeRegistrar(gomock.Any(), service.ResizeRegistrarCommand{
		Registrar: registrar,
		MaxMints:  1,
		Signer:    s.signer,
	}).Return(nil, service.ErrInvalidResizeMaxMints)

	rr := testutil.DoRequest(s.router, s.post("/v1/token-voter/registrars/resize", ResizeRegistrarRequest{Registrar: registrar, MaxMints: 1}))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	testutil.AssertReason(s.T(), rr, "invalid_resize_max_mints")
}

func (s *TokenVoterHandlerSuite) TestCreateVoterWeightRecordUsesSigner() {
	registrar := domain.NewUniquePubkey()
	address := domain.NewUniquePubkey()
	s.service.EXPECT().CreateVoterWeightRecord(gomock.Any(), registrar, s.signer).Return(address, nil)

	rr := testutil.DoRequest(s.router, s.post("/v1/token-voter/voter-weight-records", RegistrarRequest{Registrar: registrar}))

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	s.Equal(address, testutil.UnmarshalResponse[httpapi.AddressResponse](s.T(), rr).Address)
}

func (s *TokenVoterHandlerSuite) TestDepositAndWithdraw() {
	deposit := DepositRequest{
		Registrar:         domain.NewUniquePubkey(),
		VoterWeightRecord: domain.NewUniquePubkey(),
		TokenOwnerRecord:  domain.NewUniquePubkey(),
		DepositToken:      domain.NewUniquePubkey(),
		DepositEntryIndex: 1,
		Amount:            50,
	}

	s.Run("deposit returns the reweighed record", func() {
		s.service.EXPECT().Deposit(gomock.Any(), service.DepositCommand{
			Registrar:         deposit.Registrar,
			VoterWeightRecord: deposit.VoterWeightRecord,
			TokenOwnerRecord:  deposit.TokenOwnerRecord,
			DepositToken:      deposit.DepositToken,
			DepositEntryIndex: 1,
			Amount:            50,
			Signer:            s.signer,
		}).Return(&vwmodels.VoterWeightRecord{VoterWeight: 500}, nil)

		rr := testutil.DoRequest(s.router, s.post("/v1/token-voter/deposits", deposit))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[httpapi.VoterWeightRecordResponse](s.T(), rr)
		s.Equal(uint64(500), resp.VoterWeight)
		s.Nil(resp.VoterWeightExpiry)
	})

	s.Run("deposit token is required", func() {
		body := deposit
		body.DepositToken = domain.Pubkey{}
		rr := testutil.DoRequest(s.router, s.post("/v1/token-voter/deposits", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("same slot withdrawal", func() {
		s.service.EXPECT().Withdraw(gomock.Any(), gomock.Any()).Return(nil, service.ErrCannotWithdraw)

		rr := testutil.DoRequest(s.router, s.post("/v1/token-voter/withdrawals", WithdrawRequest{
			Registrar:         deposit.Registrar,
			VoterWeightRecord: deposit.VoterWeightRecord,
			TokenOwnerRecord:  deposit.TokenOwnerRecord,
			Destination:       deposit.DepositToken,
			DepositEntryIndex: 1,
			Amount:            50,
		}))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})
}

func (s *TokenVoterHandlerSuite) TestCloseVoter() {
	req := CloseVoterRequest{Registrar: domain.NewUniquePubkey(), VoterWeightRecord: domain.NewUniquePubkey()}

	s.Run("closed", func() {
		s.service.EXPECT().CloseVoter(gomock.Any(), service.CloseVoterCommand{
			Registrar:         req.Registrar,
			VoterWeightRecord: req.VoterWeightRecord,
			Signer:            s.signer,
		}).Return(nil)

		rr := testutil.DoRequest(s.router, s.post("/v1/token-voter/voters/close", req))
		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	})

	s.Run("tokens left", func() {
		s.service.EXPECT().CloseVoter(gomock.Any(), gomock.Any()).Return(service.ErrVotingTokenNonZero)

		rr := testutil.DoRequest(s.router, s.post("/v1/token-voter/voters/close", req))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})
}
