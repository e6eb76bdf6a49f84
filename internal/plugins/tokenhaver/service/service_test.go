package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"voterweight/internal/plugins/tokenhaver/models"
	"voterweight/internal/plugins/tokenhaver/service"
	"voterweight/internal/token"
	"voterweight/internal/voterweight/core"
	"voterweight/internal/voterweight/plugintest"
	"voterweight/pkg/domain"
)

type TokenHaverServiceSuite struct {
	suite.Suite
	ctx       context.Context
	world     *plugintest.World
	service   *service.Service
	registrar domain.Pubkey
	owner     domain.Pubkey
	record    domain.Pubkey
	mintA     domain.Pubkey
	mintB     domain.Pubkey
}

func TestTokenHaverServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenHaverServiceSuite))
}

func (s *TokenHaverServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.world = plugintest.NewWorld(s.T())
	s.service = service.New(s.world.Runtime(service.PluginName, domain.NewUniquePubkey()))
	s.mintA = domain.NewUniquePubkey()
	s.mintB = domain.NewUniquePubkey()

	var err error
	s.registrar, _, err = s.service.CreateRegistrar(s.ctx, service.CreateRegistrarCommand{
		GovernanceProgramID: s.world.Governance,
		Realm:               s.world.Realm,
		GoverningTokenMint:  s.world.Mint,
		Mints:               []domain.Pubkey{s.mintA, s.mintB},
		Signer:              s.world.Authority,
	})
	s.Require().NoError(err)

	s.owner = domain.NewUniquePubkey()
	s.record, err = s.service.CreateVoterWeightRecord(s.ctx, s.registrar, s.owner)
	s.Require().NoError(err)
}

func (s *TokenHaverServiceSuite) update(accounts ...domain.Pubkey) (uint64, error) {
	rec, err := s.service.UpdateVoterWeightRecord(s.ctx, service.UpdateCommand{
		Registrar:         s.registrar,
		VoterWeightRecord: s.record,
		TokenAccounts:     accounts,
	})
	if err != nil {
		return 0, err
	}
	return rec.VoterWeight, nil
}

func (s *TokenHaverServiceSuite) frozen(mint domain.Pubkey, amount uint64) domain.Pubkey {
	return s.world.SeedTokenAccount(mint, s.owner, amount, token.AccountStateFrozen)
}

func (s *TokenHaverServiceSuite) TestWeightCountsFrozenMints() {
	weight, err := s.update(s.frozen(s.mintA, 10), s.frozen(s.mintB, 1))
	s.Require().NoError(err)
	s.Equal(2*models.WeightPerMint, weight)

	rec := s.world.VoterWeightRecord(s.record)
	s.Equal(plugintest.StartSlot, *rec.VoterWeightExpiry)
	s.Nil(rec.WeightAction)
	s.Nil(rec.WeightActionTarget)
}

func (s *TokenHaverServiceSuite) TestEmptyAccountsAreIgnored() {
	unlocked := s.world.SeedTokenAccount(domain.NewUniquePubkey(), domain.NewUniquePubkey(), 0, token.AccountStateInitialized)

	weight, err := s.update(s.frozen(s.mintA, 3), unlocked, s.frozen(s.mintA, 0))
	s.Require().NoError(err)
	s.Equal(models.WeightPerMint, weight)

	weight, err = s.update()
	s.Require().NoError(err)
	s.Zero(weight)
}

func (s *TokenHaverServiceSuite) TestUpdateRejections() {
	tests := []struct {
		name     string
		accounts func() []domain.Pubkey
		want     error
	}{
		{
			name: "someone else's tokens",
			accounts: func() []domain.Pubkey {
				return []domain.Pubkey{s.world.SeedTokenAccount(s.mintA, domain.NewUniquePubkey(), 1, token.AccountStateFrozen)}
			},
			want: service.ErrTokenAccountWrongOwner,
		},
		{
			name:     "same mint twice",
			accounts: func() []domain.Pubkey { return []domain.Pubkey{s.frozen(s.mintA, 1), s.frozen(s.mintA, 2)} },
			want:     service.ErrTokenAccountDuplicateMint,
		},
		{
			name:     "mint not accepted",
			accounts: func() []domain.Pubkey { return []domain.Pubkey{s.frozen(domain.NewUniquePubkey(), 1)} },
			want:     service.ErrTokenAccountWrongMint,
		},
		{
			name: "not frozen",
			accounts: func() []domain.Pubkey {
				return []domain.Pubkey{s.world.SeedTokenAccount(s.mintB, s.owner, 1, token.AccountStateInitialized)}
			},
			want: service.ErrTokenAccountNotLocked,
		},
		{
			name:     "missing account",
			accounts: func() []domain.Pubkey { return []domain.Pubkey{domain.NewUniquePubkey()} },
			want:     core.ErrAccountNotFound,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.update(tt.accounts()...)
			s.ErrorIs(err, tt.want)
			s.Nil(s.world.VoterWeightRecord(s.record).VoterWeightExpiry)
		})
	}
}

func (s *TokenHaverServiceSuite) TestConfigureMints() {
	_, err := s.service.ConfigureMints(s.ctx, service.ConfigureMintsCommand{
		Registrar: s.registrar,
		Mints:     []domain.Pubkey{s.mintB},
		Signer:    domain.NewUniquePubkey(),
	})
	s.ErrorIs(err, core.ErrInvalidRealmAuthority)

	_, err = s.service.ConfigureMints(s.ctx, service.ConfigureMintsCommand{
		Registrar: s.registrar,
		Mints:     []domain.Pubkey{s.mintB, s.mintB},
		Signer:    s.world.Authority,
	})
	s.ErrorIs(err, service.ErrDuplicateMint)

	reg, err := s.service.ConfigureMints(s.ctx, service.ConfigureMintsCommand{
		Registrar: s.registrar,
		Mints:     []domain.Pubkey{s.mintB},
		Signer:    s.world.Authority,
	})
	s.Require().NoError(err)
	s.Equal([]domain.Pubkey{s.mintB}, reg.Mints)

	_, err = s.update(s.frozen(s.mintA, 1))
	s.ErrorIs(err, service.ErrTokenAccountWrongMint)
}

func (s *TokenHaverServiceSuite) TestCreateRegistrarRequiresAuthority() {
	_, _, err := s.service.CreateRegistrar(s.ctx, service.CreateRegistrarCommand{
		GovernanceProgramID: s.world.Governance,
		Realm:               s.world.Realm,
		GoverningTokenMint:  s.world.Mint,
		Signer:              domain.NewUniquePubkey(),
	})
	s.ErrorIs(err, core.ErrInvalidRealmAuthority)
}
