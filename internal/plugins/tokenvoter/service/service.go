// Package service implements the token voter plugin: voters deposit tokens of
// configured mints into a per-voter arena and vote with the digit-shifted sum.
package service

import (
	"context"

	"voterweight/internal/governance"
	"voterweight/internal/ledger"
	"voterweight/internal/plugins/tokenvoter/models"
	"voterweight/internal/token"
	"voterweight/internal/voterweight/core"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

const PluginName = "token-voter"

type Service struct {
	rt *core.Runtime
}

func New(rt *core.Runtime) *Service {
	return &Service{rt: rt}
}

type CreateRegistrarCommand struct {
	GovernanceProgramID domain.Pubkey
	Realm               domain.Pubkey
	GoverningTokenMint  domain.Pubkey
	MaxMints            uint8
	Signer              domain.Pubkey
}

func (s *Service) CreateRegistrar(ctx context.Context, cmd CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error) {
	reg := &models.Registrar{
		RegistrarIdentity: vwmodels.RegistrarIdentity{
			GovernanceProgramID: cmd.GovernanceProgramID,
			Realm:               cmd.Realm,
			GoverningTokenMint:  cmd.GoverningTokenMint,
		},
		MaxMints: cmd.MaxMints,
	}
	address := vwmodels.RegistrarAddress(s.rt.ProgramID(), cmd.Realm, cmd.GoverningTokenMint)

	err := s.rt.Execute(ctx, "create_registrar", []domain.Pubkey{address}, func(ctx context.Context, op *core.Op) error {
		if _, err := core.RequireRealmAuthority(ctx, op, cmd.GovernanceProgramID, cmd.Realm, cmd.GoverningTokenMint, cmd.Signer); err != nil {
			return err
		}
		if _, err := op.CreateRegistrar(ctx, reg.RegistrarIdentity, reg.Encode()); err != nil {
			return err
		}
		op.Audit("realm", cmd.Realm.String(), "max_mints", cmd.MaxMints)
		return nil
	})
	if err != nil {
		return domain.Pubkey{}, nil, err
	}
	return address, reg, nil
}

func (s *Service) Registrar(ctx context.Context, address domain.Pubkey) (*models.Registrar, error) {
	var reg *models.Registrar
	err := s.rt.View(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		var err error
		reg, err = s.loadRegistrar(ctx, uow, address)
		return err
	})
	return reg, err
}

func (s *Service) loadRegistrar(ctx context.Context, r core.Reader, address domain.Pubkey) (*models.Registrar, error) {
	return core.LoadOwned(ctx, r, s.rt.ProgramID(), address, "registrar", models.DecodeRegistrar)
}

func (s *Service) loadVoter(ctx context.Context, r core.Reader, address domain.Pubkey) (*models.Voter, error) {
	return core.LoadOwned(ctx, r, s.rt.ProgramID(), address, "voter", models.DecodeVoter)
}

// Voter reads the deposit arena of authority under registrar.
func (s *Service) Voter(ctx context.Context, registrar, authority domain.Pubkey) (*models.Voter, error) {
	var v *models.Voter
	err := s.rt.View(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		var err error
		v, err = s.loadVoter(ctx, uow, models.VoterAddress(s.rt.ProgramID(), registrar, authority))
		return err
	})
	return v, err
}

// configure loads the registrar, checks the signer is the realm authority and
// stores the registrar once fn succeeds.
func (s *Service) configure(ctx context.Context, name string, registrar, signer domain.Pubkey, lockKeys []domain.Pubkey, fn func(ctx context.Context, op *core.Op, reg *models.Registrar) error) (*models.Registrar, error) {
	var reg *models.Registrar
	err := s.rt.Execute(ctx, name, append([]domain.Pubkey{registrar}, lockKeys...), func(ctx context.Context, op *core.Op) error {
		var err error
		if reg, err = s.loadRegistrar(ctx, op, registrar); err != nil {
			return err
		}
		if _, err := core.RequireRealmAuthority(ctx, op, reg.GovernanceProgramID, reg.Realm, reg.GoverningTokenMint, signer); err != nil {
			return err
		}
		if err := fn(ctx, op, reg); err != nil {
			return err
		}
		op.PutRegistrar(registrar, reg.RegistrarIdentity, reg.Encode())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

type ResizeRegistrarCommand struct {
	Registrar domain.Pubkey
	MaxMints  uint8
	Signer    domain.Pubkey
}

// ResizeRegistrar grows the mint capacity. Existing voter arenas grow on
// their next deposit.
func (s *Service) ResizeRegistrar(ctx context.Context, cmd ResizeRegistrarCommand) (*models.Registrar, error) {
	return s.configure(ctx, "resize_registrar", cmd.Registrar, cmd.Signer, nil,
		func(_ context.Context, op *core.Op, reg *models.Registrar) error {
			if cmd.MaxMints <= reg.MaxMints {
				return ErrInvalidResizeMaxMints
			}
			op.Audit("max_mints", cmd.MaxMints, "previous_max_mints", reg.MaxMints)
			reg.MaxMints = cmd.MaxMints
			return nil
		})
}

type ConfigureMintConfigCommand struct {
	Registrar            domain.Pubkey
	MaxVoterWeightRecord domain.Pubkey
	Mint                 domain.Pubkey
	DigitShift           int8
	Signer               domain.Pubkey
}

// ConfigureMintConfig accepts deposits of a mint, or changes its digit shift,
// and rewrites the max voter weight from every configured supply.
func (s *Service) ConfigureMintConfig(ctx context.Context, cmd ConfigureMintConfigCommand) (*models.Registrar, *vwmodels.MaxVoterWeightRecord, error) {
	var maxRec *vwmodels.MaxVoterWeightRecord
	reg, err := s.configure(ctx, "configure_mint_config", cmd.Registrar, cmd.Signer, []domain.Pubkey{cmd.MaxVoterWeightRecord},
		func(ctx context.Context, op *core.Op, reg *models.Registrar) error {
			acc, err := core.LoadAccount(ctx, op, cmd.Mint, "mint")
			if err != nil {
				return err
			}
			mint, err := token.GetMint(acc)
			if err != nil {
				return core.AccountError("mint", cmd.Mint, err)
			}
			if maxRec, err = op.LoadMaxVoterWeightRecord(ctx, cmd.MaxVoterWeightRecord); err != nil {
				return err
			}
			if err := core.CheckMaxVoterWeightRecordIdentity(reg.RegistrarIdentity, maxRec); err != nil {
				return err
			}
			if !reg.Upsert(models.VotingMintConfig{Mint: cmd.Mint, DigitShift: cmd.DigitShift, MintSupply: mint.Supply}) {
				return ErrMaxMintsReached
			}
			weight, ok := reg.MaxVoteWeight()
			if !ok {
				return ErrVoterWeightOverflow
			}
			maxRec.MaxVoterWeight = weight
			maxRec.MaxVoterWeightExpiry = nil
			op.PutMaxVoterWeightRecord(cmd.MaxVoterWeightRecord, maxRec)
			op.Audit("mint", cmd.Mint.String(), "digit_shift", cmd.DigitShift, "max_voter_weight", weight)
			return nil
		})
	if err != nil {
		return nil, nil, err
	}
	return reg, maxRec, nil
}

// CreateVoterWeightRecord creates the signer's record together with the
// deposit arena behind it.
func (s *Service) CreateVoterWeightRecord(ctx context.Context, registrar, signer domain.Pubkey) (domain.Pubkey, error) {
	if err := core.RequireSigner(signer); err != nil {
		return domain.Pubkey{}, err
	}
	voterAddress := models.VoterAddress(s.rt.ProgramID(), registrar, signer)
	var address domain.Pubkey
	err := s.rt.Execute(ctx, "create_voter_weight_record", []domain.Pubkey{voterAddress}, func(ctx context.Context, op *core.Op) error {
		reg, err := s.loadRegistrar(ctx, op, registrar)
		if err != nil {
			return err
		}
		if address, _, err = op.CreateVoterWeightRecord(ctx, reg.RegistrarIdentity, signer); err != nil {
			return err
		}
		voter := models.NewVoter(signer, registrar, reg.MaxMints)
		if err := op.CreateAccount(ctx, voterAddress, voter.Encode(), ErrVoterExists); err != nil {
			return err
		}
		op.Audit("record", address.String(), "voter", voterAddress.String(), "owner", signer.String())
		return nil
	})
	if err != nil {
		return domain.Pubkey{}, err
	}
	return address, nil
}

func (s *Service) CreateMaxVoterWeightRecord(ctx context.Context, registrar domain.Pubkey) (domain.Pubkey, error) {
	reg, err := s.Registrar(ctx, registrar)
	if err != nil {
		return domain.Pubkey{}, err
	}
	return s.rt.CreateMaxVoterWeightRecord(ctx, reg.RegistrarIdentity)
}

// voterState is what deposit, withdraw and close share: the registrar, the
// signer's arena and the record it backs.
type voterState struct {
	reg          *models.Registrar
	voter        *models.Voter
	voterAddress domain.Pubkey
	rec          *vwmodels.VoterWeightRecord
}

func (s *Service) loadVoterState(ctx context.Context, op *core.Op, registrar, record, signer domain.Pubkey) (*voterState, error) {
	if err := core.RequireSigner(signer); err != nil {
		return nil, err
	}
	st := &voterState{voterAddress: models.VoterAddress(s.rt.ProgramID(), registrar, signer)}
	var err error
	if st.reg, err = s.loadRegistrar(ctx, op, registrar); err != nil {
		return nil, err
	}
	if st.voter, err = s.loadVoter(ctx, op, st.voterAddress); err != nil {
		return nil, err
	}
	if st.rec, err = op.LoadVoterWeightRecord(ctx, record); err != nil {
		return nil, err
	}
	if err := core.CheckVoterWeightRecordIdentity(st.reg.RegistrarIdentity, st.rec); err != nil {
		return nil, err
	}
	if st.rec.GoverningTokenOwner != signer {
		return nil, core.ErrInvalidTokenOwnerForVoterWeightRecord
	}
	return st, nil
}

// reweigh writes the arena and the record with the arena's current weight.
// Deposits never expire.
func (st *voterState) reweigh(op *core.Op, record domain.Pubkey) error {
	weight, ok := st.voter.Weight(st.reg)
	if !ok {
		return ErrVoterWeightOverflow
	}
	st.rec.VoterWeight = weight
	st.rec.VoterWeightExpiry = nil
	st.rec.WeightAction = nil
	st.rec.WeightActionTarget = nil
	op.PutAccount(st.voterAddress, st.voter.Encode())
	op.PutVoterWeightRecord(record, st.rec)
	return nil
}

func loadTokenAccount(ctx context.Context, op *core.Op, address domain.Pubkey) (*token.Account, error) {
	acc, err := core.LoadAccount(ctx, op, address, "token account")
	if err != nil {
		return nil, err
	}
	ta, err := token.GetAccount(acc)
	if err != nil {
		return nil, core.AccountError("token account", address, err)
	}
	return ta, nil
}

func putTokenAccount(op *core.Op, address domain.Pubkey, ta *token.Account) {
	op.Put(ledger.Account{Address: address, Owner: token.ProgramID, Data: ta.Encode()})
}

type DepositCommand struct {
	Registrar         domain.Pubkey
	VoterWeightRecord domain.Pubkey
	TokenOwnerRecord  domain.Pubkey
	DepositToken      domain.Pubkey
	DepositEntryIndex uint8
	Amount            uint64
	Signer            domain.Pubkey
}

// Deposit moves amount from the signer's token account into the arena entry
// of its mint and reweighs the record. A zero amount changes nothing.
func (s *Service) Deposit(ctx context.Context, cmd DepositCommand) (*vwmodels.VoterWeightRecord, error) {
	lockKeys := []domain.Pubkey{
		models.VoterAddress(s.rt.ProgramID(), cmd.Registrar, cmd.Signer),
		cmd.VoterWeightRecord,
		cmd.DepositToken,
	}
	var rec *vwmodels.VoterWeightRecord
	err := s.rt.Execute(ctx, "deposit", lockKeys, func(ctx context.Context, op *core.Op) error {
		st, err := s.loadVoterState(ctx, op, cmd.Registrar, cmd.VoterWeightRecord, cmd.Signer)
		if err != nil {
			return err
		}
		rec = st.rec
		if cmd.Amount == 0 {
			return nil
		}

		source, err := loadTokenAccount(ctx, op, cmd.DepositToken)
		if err != nil {
			return err
		}
		if source.Owner != cmd.Signer {
			return ErrInvalidAuthority
		}
		if source.IsFrozen() {
			return ErrTokenAccountFrozen
		}
		if source.Amount < cmd.Amount {
			return ErrInsufficientFunds
		}
		mintIdx := st.reg.MintIndex(source.Mint)
		if mintIdx < 0 {
			return ErrMintNotFound
		}
		if mintIdx != int(cmd.DepositEntryIndex) {
			return ErrOutOfBoundsDepositEntryIndex
		}

		torAcc, err := core.LoadAccount(ctx, op, cmd.TokenOwnerRecord, "token owner record")
		if err != nil {
			return err
		}
		tor, err := governance.GetTokenOwnerRecordForRealmAndMint(torAcc, st.reg.GovernanceProgramID, st.reg.Realm, st.reg.GoverningTokenMint)
		if err != nil {
			return core.AccountError("token owner record", cmd.TokenOwnerRecord, err)
		}
		if tor.GoverningTokenOwner != st.rec.GoverningTokenOwner {
			return ErrGoverningTokenOwnerMustMatch
		}

		st.voter.Grow(st.reg.MaxMints)
		entry := &st.voter.Deposits[mintIdx]
		amount, err := core.CheckedAdd(entry.AmountDepositedNative, cmd.Amount)
		if err != nil {
			return ErrTokenAmountOverflow
		}
		*entry = models.DepositEntry{
			AmountDepositedNative: amount,
			VotingMintConfigIdx:   uint8(mintIdx),
			DepositSlotHash:       op.Slot(),
			IsUsed:                true,
		}
		source.Amount -= cmd.Amount
		putTokenAccount(op, cmd.DepositToken, source)

		if err := st.reweigh(op, cmd.VoterWeightRecord); err != nil {
			return err
		}
		op.CountAssets(1)
		op.Audit("record", cmd.VoterWeightRecord.String(),
			"mint", source.Mint.String(),
			"amount", cmd.Amount,
			"weight", st.rec.VoterWeight,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type WithdrawCommand struct {
	Registrar         domain.Pubkey
	VoterWeightRecord domain.Pubkey
	TokenOwnerRecord  domain.Pubkey
	Destination       domain.Pubkey
	DepositEntryIndex uint8
	Amount            uint64
	Signer            domain.Pubkey
}

// Withdraw moves amount from the arena entry back to a token account of the
// same mint. Tokens deposited in the current slot stay put, as do tokens
// backing votes that are not relinquished yet.
func (s *Service) Withdraw(ctx context.Context, cmd WithdrawCommand) (*vwmodels.VoterWeightRecord, error) {
	lockKeys := []domain.Pubkey{
		models.VoterAddress(s.rt.ProgramID(), cmd.Registrar, cmd.Signer),
		cmd.VoterWeightRecord,
		cmd.Destination,
	}
	var rec *vwmodels.VoterWeightRecord
	err := s.rt.Execute(ctx, "withdraw", lockKeys, func(ctx context.Context, op *core.Op) error {
		st, err := s.loadVoterState(ctx, op, cmd.Registrar, cmd.VoterWeightRecord, cmd.Signer)
		if err != nil {
			return err
		}
		rec = st.rec

		destination, err := loadTokenAccount(ctx, op, cmd.Destination)
		if err != nil {
			return err
		}
		mintIdx := st.reg.MintIndex(destination.Mint)
		if mintIdx < 0 {
			return ErrMintNotFound
		}

		torAcc, err := core.LoadAccount(ctx, op, cmd.TokenOwnerRecord, "token owner record")
		if err != nil {
			return err
		}
		tor, err := governance.GetTokenOwnerRecordForRealmAndMint(torAcc, st.reg.GovernanceProgramID, st.reg.Realm, st.reg.GoverningTokenMint)
		if err != nil {
			return core.AccountError("token owner record", cmd.TokenOwnerRecord, err)
		}
		if tor.GoverningTokenOwner != cmd.Signer {
			return ErrGoverningTokenOwnerMustMatch
		}
		if tor.UnrelinquishedVotesCount > 0 {
			return ErrUnrelinquishedVotes
		}

		if int(cmd.DepositEntryIndex) >= len(st.voter.Deposits) {
			return ErrOutOfBoundsDepositEntryIndex
		}
		entry := &st.voter.Deposits[cmd.DepositEntryIndex]
		if !entry.Active() {
			return ErrDepositEntryInactive
		}
		if int(entry.VotingMintConfigIdx) != mintIdx {
			return ErrMintNotFound
		}
		if entry.AmountDepositedNative < cmd.Amount {
			return ErrInsufficientDeposit
		}
		if entry.DepositSlotHash == op.Slot() {
			return ErrCannotWithdraw
		}
		credited, err := core.CheckedAdd(destination.Amount, cmd.Amount)
		if err != nil {
			return ErrTokenAmountOverflow
		}

		entry.AmountDepositedNative -= cmd.Amount
		if entry.AmountDepositedNative == 0 {
			*entry = models.DepositEntry{}
		}
		destination.Amount = credited
		putTokenAccount(op, cmd.Destination, destination)

		if err := st.reweigh(op, cmd.VoterWeightRecord); err != nil {
			return err
		}
		op.Audit("record", cmd.VoterWeightRecord.String(),
			"mint", destination.Mint.String(),
			"amount", cmd.Amount,
			"weight", st.rec.VoterWeight,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type CloseVoterCommand struct {
	Registrar         domain.Pubkey
	VoterWeightRecord domain.Pubkey
	Signer            domain.Pubkey
}

// CloseVoter deletes an emptied arena together with its record.
func (s *Service) CloseVoter(ctx context.Context, cmd CloseVoterCommand) error {
	lockKeys := []domain.Pubkey{
		models.VoterAddress(s.rt.ProgramID(), cmd.Registrar, cmd.Signer),
		cmd.VoterWeightRecord,
	}
	return s.rt.Execute(ctx, "close_voter", lockKeys, func(ctx context.Context, op *core.Op) error {
		st, err := s.loadVoterState(ctx, op, cmd.Registrar, cmd.VoterWeightRecord, cmd.Signer)
		if err != nil {
			return err
		}
		total, ok := st.voter.TotalDeposited()
		if !ok {
			return ErrTokenAmountOverflow
		}
		if total != 0 {
			return ErrVotingTokenNonZero
		}
		op.Delete(st.voterAddress)
		op.Delete(cmd.VoterWeightRecord)
		op.Audit("record", cmd.VoterWeightRecord.String(), "voter", st.voterAddress.String())
		return nil
	})
}
