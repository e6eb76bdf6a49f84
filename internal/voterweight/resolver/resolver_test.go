package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"voterweight/internal/governance"
	"voterweight/internal/ledger"
	"voterweight/internal/token"
	"voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

type ResolverSuite struct {
	suite.Suite
	governanceProgram domain.Pubkey
	predecessor       domain.Pubkey
	realm             domain.Pubkey
	mint              domain.Pubkey
	owner             domain.Pubkey
	local             *models.VoterWeightRecord
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.governanceProgram = domain.NewUniquePubkey()
	s.predecessor = domain.NewUniquePubkey()
	s.realm = domain.NewUniquePubkey()
	s.mint = domain.NewUniquePubkey()
	s.owner = domain.NewUniquePubkey()
	s.local = models.NewVoterWeightRecord(s.realm, s.mint, s.owner)
}

func (s *ResolverSuite) identity(chained bool) models.RegistrarIdentity {
	id := models.RegistrarIdentity{
		GovernanceProgramID: s.governanceProgram,
		Realm:               s.realm,
		GoverningTokenMint:  s.mint,
	}
	if chained {
		id.PreviousVoterWeightPluginProgramID = &s.predecessor
	}
	return id
}

func (s *ResolverSuite) tokenOwnerRecord(amount uint64) *ledger.Account {
	rec := &governance.TokenOwnerRecord{
		Realm:                       s.realm,
		GoverningTokenMint:          s.mint,
		GoverningTokenOwner:         s.owner,
		GoverningTokenDepositAmount: amount,
	}
	return &ledger.Account{Address: domain.NewUniquePubkey(), Owner: s.governanceProgram, Data: rec.Encode()}
}

func (s *ResolverSuite) predecessorRecord(mutate func(*models.VoterWeightRecord)) *ledger.Account {
	rec := models.NewVoterWeightRecord(s.realm, s.mint, s.owner)
	if mutate != nil {
		mutate(rec)
	}
	return &ledger.Account{Address: domain.NewUniquePubkey(), Owner: s.predecessor, Data: rec.Encode()}
}

func (s *ResolverSuite) TestTokenOwnerRecordInput() {
	s.Run("deposit amount becomes the weight", func() {
		view, err := ResolveInputVoterWeight(s.tokenOwnerRecord(250), s.identity(false), s.local)
		s.Require().NoError(err)
		s.IsType(TokenOwnerRecordView{}, view)
		s.Equal(uint64(250), view.Weight())
		s.Nil(view.Action())
		s.Nil(view.Target())
		s.Nil(view.Expiry())
	})

	s.Run("predecessor output is refused when no predecessor is configured", func() {
		_, err := ResolveInputVoterWeight(s.predecessorRecord(nil), s.identity(false), s.local)
		s.ErrorIs(err, ErrInvalidPredecessorTokenOwnerRecord)
	})

	s.Run("record of another owner is refused", func() {
		other := models.NewVoterWeightRecord(s.realm, s.mint, domain.NewUniquePubkey())
		_, err := ResolveInputVoterWeight(s.tokenOwnerRecord(1), s.identity(false), other)
		s.ErrorIs(err, ErrInvalidPredecessorVoterWeightRecordGovTokenOwner)
	})
}

func (s *ResolverSuite) TestPredecessorRecordInput() {
	s.Run("fields pass through verbatim", func() {
		target := domain.NewUniquePubkey()
		input := s.predecessorRecord(func(r *models.VoterWeightRecord) {
			r.VoterWeight = 900
			r.VoterWeightExpiry = domain.Some(domain.Slot(12))
			r.WeightAction = domain.Some(domain.ActionCastVote)
			r.WeightActionTarget = &target
		})

		view, err := ResolveInputVoterWeight(input, s.identity(true), s.local)
		s.Require().NoError(err)
		s.IsType(VoterWeightRecordView{}, view)
		s.Equal(uint64(900), view.Weight())
		s.Equal(domain.Slot(12), *view.Expiry())
		s.Equal(domain.ActionCastVote, *view.Action())
		s.Equal(target, *view.Target())
	})

	s.Run("record owned by another program is refused", func() {
		input := s.predecessorRecord(nil)
		input.Owner = domain.NewUniquePubkey()
		_, err := ResolveInputVoterWeight(input, s.identity(true), s.local)
		s.ErrorIs(err, ErrInvalidPredecessorVoterWeightRecord)
	})

	s.Run("token owner record is refused when chained", func() {
		_, err := ResolveInputVoterWeight(s.tokenOwnerRecord(1), s.identity(true), s.local)
		s.ErrorIs(err, ErrInvalidPredecessorVoterWeightRecord)
	})

	s.Run("identity mismatches are reported per field", func() {
		cases := []struct {
			mutate func(*models.VoterWeightRecord)
			want   error
		}{
			{func(r *models.VoterWeightRecord) { r.GoverningTokenMint = domain.NewUniquePubkey() }, ErrInvalidPredecessorVoterWeightRecordGovTokenMint},
			{func(r *models.VoterWeightRecord) { r.GoverningTokenOwner = domain.NewUniquePubkey() }, ErrInvalidPredecessorVoterWeightRecordGovTokenOwner},
			{func(r *models.VoterWeightRecord) { r.Realm = domain.NewUniquePubkey() }, ErrInvalidPredecessorVoterWeightRecordRealm},
		}
		for _, tc := range cases {
			_, err := ResolveInputVoterWeight(s.predecessorRecord(tc.mutate), s.identity(true), s.local)
			s.True(errors.Is(err, tc.want), "got %v, want %v", err, tc.want)
		}
	})
}

func (s *ResolverSuite) TestMaxVoterWeightInput() {
	mintAccount := func(address domain.Pubkey, supply uint64) *ledger.Account {
		m := &token.Mint{Supply: supply, Decimals: 6, IsInitialized: true}
		return &ledger.Account{Address: address, Owner: token.ProgramID, Data: m.Encode()}
	}
	local := models.NewMaxVoterWeightRecord(s.realm, s.mint)

	s.Run("mint supply without predecessor", func() {
		view, err := ResolveInputMaxVoterWeight(mintAccount(s.mint, 10_000), s.identity(false), local)
		s.Require().NoError(err)
		s.IsType(MintView{}, view)
		s.Equal(uint64(10_000), view.Weight())
		s.Nil(view.Expiry())
	})

	s.Run("predecessor max record preferred", func() {
		rec := models.NewMaxVoterWeightRecord(s.realm, s.mint)
		rec.MaxVoterWeight = 77
		rec.MaxVoterWeightExpiry = domain.Some(domain.Slot(5))
		input := &ledger.Account{Address: domain.NewUniquePubkey(), Owner: s.predecessor, Data: rec.Encode()}

		view, err := ResolveInputMaxVoterWeight(input, s.identity(true), local)
		s.Require().NoError(err)
		s.IsType(MaxVoterWeightRecordView{}, view)
		s.Equal(uint64(77), view.Weight())
		s.Equal(domain.Slot(5), *view.Expiry())
	})

	s.Run("mint accepted as fallback when chained", func() {
		view, err := ResolveInputMaxVoterWeight(mintAccount(s.mint, 3), s.identity(true), local)
		s.Require().NoError(err)
		s.Equal(uint64(3), view.Weight())
	})

	s.Run("other mint refused", func() {
		_, err := ResolveInputMaxVoterWeight(mintAccount(domain.NewUniquePubkey(), 3), s.identity(false), local)
		s.ErrorIs(err, ErrInvalidPredecessorVoterWeightRecordGovTokenMint)
	})

	s.Run("garbage refused", func() {
		input := &ledger.Account{Address: s.mint, Owner: token.ProgramID, Data: []byte{1, 2}}
		_, err := ResolveInputMaxVoterWeight(input, s.identity(false), local)
		s.ErrorIs(err, ErrInvalidPredecessorTokenOwnerRecord)
	})
}
