package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"voterweight/internal/governance"
	"voterweight/internal/ledger"
	"voterweight/internal/plugins/tokenvoter/models"
	"voterweight/internal/plugins/tokenvoter/service"
	"voterweight/internal/token"
	"voterweight/internal/voterweight/core"
	"voterweight/internal/voterweight/plugintest"
	"voterweight/pkg/domain"
)

type TokenVoterServiceSuite struct {
	suite.Suite
	ctx       context.Context
	world     *plugintest.World
	program   domain.Pubkey
	service   *service.Service
	registrar domain.Pubkey
	maxRecord domain.Pubkey
	usdc      domain.Pubkey
	gov       domain.Pubkey
	voter     domain.Pubkey
	record    domain.Pubkey
	tor       domain.Pubkey
	wallet    domain.Pubkey
}

func TestTokenVoterServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenVoterServiceSuite))
}

func (s *TokenVoterServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.world = plugintest.NewWorld(s.T())
	s.program = domain.NewUniquePubkey()
	s.service = service.New(s.world.Runtime(service.PluginName, s.program))

	var err error
	s.registrar, _, err = s.service.CreateRegistrar(s.ctx, service.CreateRegistrarCommand{
		GovernanceProgramID: s.world.Governance,
		Realm:               s.world.Realm,
		GoverningTokenMint:  s.world.Mint,
		MaxMints:            2,
		Signer:              s.world.Authority,
	})
	s.Require().NoError(err)
	s.maxRecord, err = s.service.CreateMaxVoterWeightRecord(s.ctx, s.registrar)
	s.Require().NoError(err)

	s.usdc = domain.NewUniquePubkey()
	s.gov = domain.NewUniquePubkey()
	s.world.SeedMint(s.usdc, 1_000, 6)
	s.world.SeedMint(s.gov, 500, 0)
	s.configure(s.usdc, -1)
	s.configure(s.gov, 1)

	s.voter = domain.NewUniquePubkey()
	s.record, err = s.service.CreateVoterWeightRecord(s.ctx, s.registrar, s.voter)
	s.Require().NoError(err)
	s.tor = s.world.SeedTokenOwnerRecord(s.voter, nil, 0)
	s.wallet = s.world.SeedTokenAccount(s.gov, s.voter, 100, token.AccountStateInitialized)
}

func (s *TokenVoterServiceSuite) configure(mint domain.Pubkey, shift int8) {
	_, _, err := s.service.ConfigureMintConfig(s.ctx, service.ConfigureMintConfigCommand{
		Registrar:            s.registrar,
		MaxVoterWeightRecord: s.maxRecord,
		Mint:                 mint,
		DigitShift:           shift,
		Signer:               s.world.Authority,
	})
	s.Require().NoError(err)
}

func (s *TokenVoterServiceSuite) deposit(index uint8, amount uint64) error {
	_, err := s.service.Deposit(s.ctx, service.DepositCommand{
		Registrar:         s.registrar,
		VoterWeightRecord: s.record,
		TokenOwnerRecord:  s.tor,
		DepositToken:      s.wallet,
		DepositEntryIndex: index,
		Amount:            amount,
		Signer:            s.voter,
	})
	return err
}

func (s *TokenVoterServiceSuite) withdraw(index uint8, amount uint64) error {
	_, err := s.service.Withdraw(s.ctx, service.WithdrawCommand{
		Registrar:         s.registrar,
		VoterWeightRecord: s.record,
		TokenOwnerRecord:  s.tor,
		Destination:       s.wallet,
		DepositEntryIndex: index,
		Amount:            amount,
		Signer:            s.voter,
	})
	return err
}

func (s *TokenVoterServiceSuite) balance(address domain.Pubkey) uint64 {
	ta, err := token.GetAccount(s.world.Account(address))
	s.Require().NoError(err)
	return ta.Amount
}

func (s *TokenVoterServiceSuite) nextSlot() {
	s.world.Clock.Set(plugintest.StartSlot+1, plugintest.StartTimestamp+1)
}

func (s *TokenVoterServiceSuite) TestMaxVoterWeightSumsShiftedSupplies() {
	maxRec := s.world.MaxVoterWeightRecord(s.maxRecord)
	s.Equal(uint64(100+5000), maxRec.MaxVoterWeight)
	s.Nil(maxRec.MaxVoterWeightExpiry)

	s.configure(s.usdc, 0)
	s.Equal(uint64(1000+5000), s.world.MaxVoterWeightRecord(s.maxRecord).MaxVoterWeight)
}

func (s *TokenVoterServiceSuite) TestConfigureMintConfigWhenFull() {
	extra := domain.NewUniquePubkey()
	s.world.SeedMint(extra, 1, 0)
	_, _, err := s.service.ConfigureMintConfig(s.ctx, service.ConfigureMintConfigCommand{
		Registrar:            s.registrar,
		MaxVoterWeightRecord: s.maxRecord,
		Mint:                 extra,
		Signer:               s.world.Authority,
	})
	s.ErrorIs(err, service.ErrMaxMintsReached)

	_, err = s.service.ResizeRegistrar(s.ctx, service.ResizeRegistrarCommand{Registrar: s.registrar, MaxMints: 2, Signer: s.world.Authority})
	s.ErrorIs(err, service.ErrInvalidResizeMaxMints)
	_, err = s.service.ResizeRegistrar(s.ctx, service.ResizeRegistrarCommand{Registrar: s.registrar, MaxMints: 3, Signer: domain.NewUniquePubkey()})
	s.ErrorIs(err, core.ErrInvalidRealmAuthority)

	reg, err := s.service.ResizeRegistrar(s.ctx, service.ResizeRegistrarCommand{Registrar: s.registrar, MaxMints: 3, Signer: s.world.Authority})
	s.Require().NoError(err)
	s.Equal(uint8(3), reg.MaxMints)
	s.configure(extra, 0)
	s.Equal(uint64(100+5000+1), s.world.MaxVoterWeightRecord(s.maxRecord).MaxVoterWeight)
}

func (s *TokenVoterServiceSuite) TestDepositWeighsShiftedAmount() {
	s.Require().NoError(s.deposit(1, 40))

	rec := s.world.VoterWeightRecord(s.record)
	s.Equal(uint64(400), rec.VoterWeight)
	s.Nil(rec.VoterWeightExpiry)
	s.Nil(rec.WeightAction)
	s.Equal(uint64(60), s.balance(s.wallet))

	s.Require().NoError(s.deposit(1, 2))
	s.Equal(uint64(420), s.world.VoterWeightRecord(s.record).VoterWeight)

	v, err := s.service.Voter(s.ctx, s.registrar, s.voter)
	s.Require().NoError(err)
	s.Equal(uint64(42), v.Deposits[1].AmountDepositedNative)
	s.Equal(plugintest.StartSlot, v.Deposits[1].DepositSlotHash)
}

func (s *TokenVoterServiceSuite) TestDepositRejections() {
	s.Run("zero amount is a no-op", func() {
		s.Require().NoError(s.deposit(1, 0))
		s.Equal(uint64(100), s.balance(s.wallet))
	})
	s.Run("entry index must match the mint", func() {
		s.ErrorIs(s.deposit(0, 1), service.ErrOutOfBoundsDepositEntryIndex)
	})
	s.Run("more than the balance", func() {
		s.ErrorIs(s.deposit(1, 101), service.ErrInsufficientFunds)
	})
	s.Run("unconfigured mint", func() {
		s.wallet = s.world.SeedTokenAccount(domain.NewUniquePubkey(), s.voter, 5, token.AccountStateInitialized)
		s.ErrorIs(s.deposit(0, 1), service.ErrMintNotFound)
	})
	s.Run("someone else's tokens", func() {
		s.wallet = s.world.SeedTokenAccount(s.gov, domain.NewUniquePubkey(), 5, token.AccountStateInitialized)
		s.ErrorIs(s.deposit(1, 1), service.ErrInvalidAuthority)
	})
	s.Run("someone else's token owner record", func() {
		s.wallet = s.world.SeedTokenAccount(s.gov, s.voter, 5, token.AccountStateInitialized)
		s.tor = s.world.SeedTokenOwnerRecord(domain.NewUniquePubkey(), nil, 0)
		s.ErrorIs(s.deposit(1, 1), service.ErrGoverningTokenOwnerMustMatch)
	})
	s.Zero(s.world.VoterWeightRecord(s.record).VoterWeight)
}

func (s *TokenVoterServiceSuite) TestWithdraw() {
	s.Require().NoError(s.deposit(1, 40))

	s.ErrorIs(s.withdraw(1, 10), service.ErrCannotWithdraw)

	s.nextSlot()
	s.ErrorIs(s.withdraw(1, 41), service.ErrInsufficientDeposit)
	s.ErrorIs(s.withdraw(0, 1), service.ErrDepositEntryInactive)
	s.ErrorIs(s.withdraw(7, 1), service.ErrOutOfBoundsDepositEntryIndex)

	s.Require().NoError(s.withdraw(1, 10))
	s.Equal(uint64(300), s.world.VoterWeightRecord(s.record).VoterWeight)
	s.Equal(uint64(70), s.balance(s.wallet))

	s.Require().NoError(s.withdraw(1, 30))
	s.Zero(s.world.VoterWeightRecord(s.record).VoterWeight)
	s.ErrorIs(s.withdraw(1, 1), service.ErrDepositEntryInactive, "an emptied entry is freed")
}

func (s *TokenVoterServiceSuite) TestWithdrawWithUnrelinquishedVotes() {
	s.Require().NoError(s.deposit(1, 40))
	s.nextSlot()
	s.world.Seed(ledger.Account{Address: s.tor, Owner: s.world.Governance, Data: (&governance.TokenOwnerRecord{
		Realm:                    s.world.Realm,
		GoverningTokenMint:       s.world.Mint,
		GoverningTokenOwner:      s.voter,
		UnrelinquishedVotesCount: 1,
	}).Encode()})

	s.ErrorIs(s.withdraw(1, 10), service.ErrUnrelinquishedVotes)
}

func (s *TokenVoterServiceSuite) TestCloseVoter() {
	closeCmd := service.CloseVoterCommand{Registrar: s.registrar, VoterWeightRecord: s.record, Signer: s.voter}
	s.Require().NoError(s.deposit(1, 5))

	s.ErrorIs(s.service.CloseVoter(s.ctx, closeCmd), service.ErrVotingTokenNonZero)

	s.nextSlot()
	s.Require().NoError(s.withdraw(1, 5))
	s.Require().NoError(s.service.CloseVoter(s.ctx, closeCmd))
	s.False(s.world.Exists(s.record))
	s.False(s.world.Exists(models.VoterAddress(s.program, s.registrar, s.voter)))
}

func (s *TokenVoterServiceSuite) TestVoterArenaGrowsAfterResize() {
	v, err := s.service.Voter(s.ctx, s.registrar, s.voter)
	s.Require().NoError(err)
	s.Len(v.Deposits, 2)

	_, err = s.service.ResizeRegistrar(s.ctx, service.ResizeRegistrarCommand{Registrar: s.registrar, MaxMints: 3, Signer: s.world.Authority})
	s.Require().NoError(err)
	extra := domain.NewUniquePubkey()
	s.world.SeedMint(extra, 10, 0)
	s.configure(extra, 0)

	s.wallet = s.world.SeedTokenAccount(extra, s.voter, 10, token.AccountStateInitialized)
	s.Require().NoError(s.deposit(2, 10))
	s.Equal(uint64(10), s.world.VoterWeightRecord(s.record).VoterWeight)
}

func (s *TokenVoterServiceSuite) TestCreateVoterWeightRecordTwice() {
	_, err := s.service.CreateVoterWeightRecord(s.ctx, s.registrar, s.voter)
	s.ErrorIs(err, core.ErrVoterWeightRecordExists)
}
