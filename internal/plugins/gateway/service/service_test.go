package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"voterweight/internal/gatekeeper"
	"voterweight/internal/ledger"
	"voterweight/internal/plugins/gateway/service"
	"voterweight/internal/voterweight/core"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/internal/voterweight/plugintest"
	"voterweight/pkg/domain"
)

type GatewayServiceSuite struct {
	suite.Suite
	ctx         context.Context
	world       *plugintest.World
	service     *service.Service
	network     domain.Pubkey
	predecessor domain.Pubkey
	registrar   domain.Pubkey
	owner       domain.Pubkey
	record      domain.Pubkey
}

func TestGatewayServiceSuite(t *testing.T) {
	suite.Run(t, new(GatewayServiceSuite))
}

func (s *GatewayServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.world = plugintest.NewWorld(s.T())
	s.service = service.New(s.world.Runtime(service.PluginName, domain.NewUniquePubkey()))
	s.network = domain.NewUniquePubkey()
	s.predecessor = domain.NewUniquePubkey()

	var err error
	s.registrar, _, err = s.service.CreateRegistrar(s.ctx, service.CreateRegistrarCommand{
		GovernanceProgramID:                s.world.Governance,
		Realm:                              s.world.Realm,
		GoverningTokenMint:                 s.world.Mint,
		GatekeeperNetwork:                  s.network,
		PreviousVoterWeightPluginProgramID: &s.predecessor,
		Signer:                             s.world.Authority,
	})
	s.Require().NoError(err)
	s.owner = domain.NewUniquePubkey()
	s.record, err = s.service.CreateVoterWeightRecord(s.ctx, s.registrar, s.owner)
	s.Require().NoError(err)
}

func (s *GatewayServiceSuite) seedPass(pass *gatekeeper.Pass) domain.Pubkey {
	address := domain.NewUniquePubkey()
	s.world.Seed(ledger.Account{Address: address, Owner: gatekeeper.ProgramID, Data: pass.Encode()})
	return address
}

func (s *GatewayServiceSuite) validPass() *gatekeeper.Pass {
	return &gatekeeper.Pass{
		Owner:             s.owner,
		GatekeeperNetwork: s.network,
		Issuer:            domain.NewUniquePubkey(),
		State:             gatekeeper.PassStateActive,
	}
}

func (s *GatewayServiceSuite) seedInput(weight uint64) domain.Pubkey {
	target := domain.NewUniquePubkey()
	input := vwmodels.NewVoterWeightRecord(s.world.Realm, s.world.Mint, s.owner)
	input.VoterWeight = weight
	input.WeightAction = domain.Some(domain.ActionCreateProposal)
	input.WeightActionTarget = &target
	return s.world.SeedPredecessorRecord(s.predecessor, input)
}

func (s *GatewayServiceSuite) update(input, pass domain.Pubkey) (*vwmodels.VoterWeightRecord, error) {
	return s.service.UpdateVoterWeightRecord(s.ctx, service.UpdateCommand{
		Registrar:         s.registrar,
		Input:             input,
		GatewayToken:      pass,
		VoterWeightRecord: s.record,
	})
}

func (s *GatewayServiceSuite) TestValidPassPassesWeightThrough() {
	input := s.seedInput(42)

	rec, err := s.update(input, s.seedPass(s.validPass()))
	s.Require().NoError(err)
	s.Equal(uint64(42), rec.VoterWeight)
	s.Equal(domain.ActionCreateProposal, *rec.WeightAction)
	s.NotNil(rec.WeightActionTarget)
	s.Equal(plugintest.StartSlot, *rec.VoterWeightExpiry)
}

func (s *GatewayServiceSuite) TestInvalidPasses() {
	expired := domain.UnixTimestamp(plugintest.StartTimestamp)
	tests := []struct {
		name   string
		mutate func(p *gatekeeper.Pass)
	}{
		{name: "other network", mutate: func(p *gatekeeper.Pass) { p.GatekeeperNetwork = domain.NewUniquePubkey() }},
		{name: "other holder", mutate: func(p *gatekeeper.Pass) { p.Owner = domain.NewUniquePubkey() }},
		{name: "revoked", mutate: func(p *gatekeeper.Pass) { p.State = gatekeeper.PassStateRevoked }},
		{name: "frozen", mutate: func(p *gatekeeper.Pass) { p.State = gatekeeper.PassStateFrozen }},
		{name: "expired", mutate: func(p *gatekeeper.Pass) { p.ExpireTime = &expired }},
	}
	input := s.seedInput(42)
	for _, tt := range tests {
		s.Run(tt.name, func() {
			pass := s.validPass()
			tt.mutate(pass)
			_, err := s.update(input, s.seedPass(pass))
			s.ErrorIs(err, service.ErrInvalidGatewayToken)
			s.Zero(s.world.VoterWeightRecord(s.record).VoterWeight)
		})
	}

	s.Run("not a gatekeeper account", func() {
		forged := domain.NewUniquePubkey()
		s.world.Seed(ledger.Account{Address: forged, Owner: domain.NewUniquePubkey(), Data: s.validPass().Encode()})
		_, err := s.update(input, forged)
		s.ErrorIs(err, service.ErrInvalidGatewayToken)
	})
	s.Run("missing pass", func() {
		_, err := s.update(input, domain.NewUniquePubkey())
		s.ErrorIs(err, core.ErrAccountNotFound)
	})
}

func (s *GatewayServiceSuite) TestConfigureRegistrar() {
	network := domain.NewUniquePubkey()
	_, err := s.service.ConfigureRegistrar(s.ctx, service.ConfigureRegistrarCommand{
		Registrar:                    s.registrar,
		GatekeeperNetwork:            network,
		UsePreviousVoterWeightPlugin: true,
		Signer:                       s.world.Authority,
	})
	s.ErrorIs(err, service.ErrMissingPreviousVoterWeightPlugin)

	reg, err := s.service.ConfigureRegistrar(s.ctx, service.ConfigureRegistrarCommand{
		Registrar:         s.registrar,
		GatekeeperNetwork: network,
		Signer:            s.world.Authority,
	})
	s.Require().NoError(err)
	s.Equal(network, reg.GatekeeperNetwork)
	s.False(reg.HasPredecessor())

	pass := s.validPass()
	pass.GatekeeperNetwork = network
	tor := s.world.SeedTokenOwnerRecord(s.owner, nil, 9)
	rec, err := s.update(tor, s.seedPass(pass))
	s.Require().NoError(err)
	s.Equal(uint64(9), rec.VoterWeight)
	s.Nil(rec.WeightAction)
}

func (s *GatewayServiceSuite) TestUpdateMaxVoterWeightRecord() {
	maxRecord, err := s.service.CreateMaxVoterWeightRecord(s.ctx, s.registrar)
	s.Require().NoError(err)
	input := vwmodels.NewMaxVoterWeightRecord(s.world.Realm, s.world.Mint)
	input.MaxVoterWeight = 1_000
	input.MaxVoterWeightExpiry = domain.Some(plugintest.StartSlot + 10)

	maxRec, err := s.service.UpdateMaxVoterWeightRecord(s.ctx, service.UpdateMaxCommand{
		Registrar:            s.registrar,
		Input:                s.world.SeedPredecessorMaxRecord(s.predecessor, input),
		MaxVoterWeightRecord: maxRecord,
	})
	s.Require().NoError(err)
	s.Equal(uint64(1_000), maxRec.MaxVoterWeight)
	s.Equal(plugintest.StartSlot+10, *maxRec.MaxVoterWeightExpiry)
}
