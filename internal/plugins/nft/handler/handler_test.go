package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"voterweight/internal/plugins/nft/handler/mocks"
	"voterweight/internal/plugins/nft/models"
	"voterweight/internal/plugins/nft/service"
	"voterweight/internal/voterweight/httpapi"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
	"voterweight/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type NftHandlerSuite struct {
	suite.Suite
	router  http.Handler
	service *mocks.MockService
	signer  domain.Pubkey
}

func TestNftHandlerSuite(t *testing.T) {
	suite.Run(t, new(NftHandlerSuite))
}

func (s *NftHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	r := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	s.router = r
	s.signer = domain.NewUniquePubkey()
}

func (s *NftHandlerSuite) post(path string, body any) *http.Request {
	return testutil.WithSigner(testutil.NewJSONRequest(s.T(), http.MethodPost, path, body), s.signer)
}

func (s *NftHandlerSuite) TestConfigureCollection() {
	req := ConfigureCollectionRequest{
		Registrar:            domain.NewUniquePubkey(),
		MaxVoterWeightRecord: domain.NewUniquePubkey(),
		Collection:           domain.NewUniquePubkey(),
		Weight:               3,
		Size:                 10,
	}
	reg := &models.Registrar{
		MaxCollections:    4,
		CollectionConfigs: []models.CollectionConfig{{Collection: req.Collection, Size: 10, Weight: 3}},
	}
	maxRec := &vwmodels.MaxVoterWeightRecord{MaxVoterWeight: 30}
	s.service.EXPECT().ConfigureCollection(gomock.Any(), service.ConfigureCollectionCommand{
		Registrar:            req.Registrar,
		MaxVoterWeightRecord: req.MaxVoterWeightRecord,
		Collection:           req.Collection,
		Weight:               3,
		Size:                 10,
		Signer:               s.signer,
	}).Return(reg, maxRec, nil)

	rr := testutil.DoRequest(s.router, s.post("/v1/nft/collections", req))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[ConfigureCollectionResponse](s.T(), rr)
	s.Require().Len(resp.Registrar.CollectionConfigs, 1)
	assert.Equal(s.T(), uint64(3), resp.Registrar.CollectionConfigs[0].Weight)
	assert.Equal(s.T(), uint64(30), resp.MaxVoterWeightRecord.MaxVoterWeight)
	assert.Nil(s.T(), resp.MaxVoterWeightRecord.MaxVoterWeightExpiry)
}

func (s *NftHandlerSuite) TestCastNftVote() {
	proposal := domain.NewUniquePubkey()
	req := CastNftVoteRequest{
		Registrar:         domain.NewUniquePubkey(),
		VoterWeightRecord: domain.NewUniquePubkey(),
		TokenOwnerRecord:  domain.NewUniquePubkey(),
		Proposal:          proposal,
		Assets:            []domain.Pubkey{domain.NewUniquePubkey()},
	}

	s.Run("already voted asset is a conflict", func() {
		s.service.EXPECT().CastNftVote(gomock.Any(), req.command(s.signer)).Return(nil, service.ErrNftAlreadyVoted)
		rr := testutil.DoRequest(s.router, s.post("/v1/nft/votes", req))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "duplicate_use")
		testutil.AssertReason(s.T(), rr, "nft_already_voted")
	})

	s.Run("returns the record", func() {
		rec := &vwmodels.VoterWeightRecord{
			VoterWeight:        10,
			VoterWeightExpiry:  domain.Some(domain.Slot(7)),
			WeightAction:       domain.Some(domain.ActionCastVote),
			WeightActionTarget: &proposal,
		}
		s.service.EXPECT().CastNftVote(gomock.Any(), req.command(s.signer)).Return(rec, nil)
		rr := testutil.DoRequest(s.router, s.post("/v1/nft/votes", req))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[httpapi.VoterWeightRecordResponse](s.T(), rr)
		assert.Equal(s.T(), &proposal, resp.WeightActionTarget)
	})

	s.Run("assets are required", func() {
		body := req
		body.Assets = nil
		rr := testutil.DoRequest(s.router, s.post("/v1/nft/votes", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *NftHandlerSuite) TestRelinquishNftVote() {
	req := RelinquishNftVoteRequest{
		Registrar:         domain.NewUniquePubkey(),
		VoterWeightRecord: domain.NewUniquePubkey(),
		TokenOwnerRecord:  domain.NewUniquePubkey(),
		Proposal:          domain.NewUniquePubkey(),
		VoteRecord:        domain.NewUniquePubkey(),
		AssetVoteRecords:  []domain.Pubkey{domain.NewUniquePubkey()},
	}
	s.service.EXPECT().RelinquishNftVote(gomock.Any(), req.command(s.signer)).Return(nil, service.ErrVoterWeightRecordMustBeExpired)

	rr := testutil.DoRequest(s.router, s.post("/v1/nft/votes/relinquish", req))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
}

func (s *NftHandlerSuite) TestRelinquishNftVoteNeedsAssetVoteRecords() {
	rr := testutil.DoRequest(s.router, s.post("/v1/nft/votes/relinquish", RelinquishNftVoteRequest{
		Registrar:         domain.NewUniquePubkey(),
		VoterWeightRecord: domain.NewUniquePubkey(),
		TokenOwnerRecord:  domain.NewUniquePubkey(),
		Proposal:          domain.NewUniquePubkey(),
		VoteRecord:        domain.NewUniquePubkey(),
	}))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
}

func (s *NftHandlerSuite) TestUpdateVoterWeightRecordNeedsAction() {
	rr := testutil.DoRequest(s.router, s.post("/v1/nft/voter-weight-records/update", UpdateVoterWeightRecordRequest{
		Registrar:         domain.NewUniquePubkey(),
		VoterWeightRecord: domain.NewUniquePubkey(),
	}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
}

func (s *NftHandlerSuite) TestCreateMaxVoterWeightRecord() {
	registrar := domain.NewUniquePubkey()
	address := domain.NewUniquePubkey()
	s.service.EXPECT().CreateMaxVoterWeightRecord(gomock.Any(), registrar).Return(address, nil)

	rr := testutil.DoRequest(s.router, s.post("/v1/nft/max-voter-weight-records", RegistrarRequest{Registrar: registrar}))

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	assert.Equal(s.T(), address, testutil.UnmarshalResponse[httpapi.AddressResponse](s.T(), rr).Address)
}
