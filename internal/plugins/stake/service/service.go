// Package service implements the stake plugin: voting weight is the sum of
// the voter's stake deposit receipts that stay locked past the action they
// are used for, each receipt counted at most once per action and target.
package service

import (
	"context"

	"voterweight/internal/governance"
	"voterweight/internal/ledger"
	"voterweight/internal/plugins/stake/models"
	"voterweight/internal/staking"
	"voterweight/internal/voterweight/core"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/internal/voterweight/resolver"
	"voterweight/pkg/domain"
)

const PluginName = "stake"

// Service runs the stake plugin's operations.
type Service struct {
	rt *core.Runtime
}

func New(rt *core.Runtime) *Service {
	return &Service{rt: rt}
}

// CreateRegistrarCommand configures the plugin for one realm and mint.
type CreateRegistrarCommand struct {
	GovernanceProgramID                domain.Pubkey
	Realm                              domain.Pubkey
	GoverningTokenMint                 domain.Pubkey
	StakePool                          domain.Pubkey
	PreviousVoterWeightPluginProgramID *domain.Pubkey
	Signer                             domain.Pubkey
}

// CreateRegistrar creates the registrar. The signer must be the realm
// authority and the stake pool must stake the realm's governing mint.
func (s *Service) CreateRegistrar(ctx context.Context, cmd CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error) {
	id := vwmodels.RegistrarIdentity{
		GovernanceProgramID:                cmd.GovernanceProgramID,
		Realm:                              cmd.Realm,
		GoverningTokenMint:                 cmd.GoverningTokenMint,
		PreviousVoterWeightPluginProgramID: cmd.PreviousVoterWeightPluginProgramID,
	}
	address := vwmodels.RegistrarAddress(s.rt.ProgramID(), cmd.Realm, cmd.GoverningTokenMint)
	reg := &models.Registrar{
		RegistrarIdentity: id,
		RealmAuthority:    cmd.Signer,
		StakePool:         cmd.StakePool,
	}

	err := s.rt.Execute(ctx, "create_registrar", []domain.Pubkey{address}, func(ctx context.Context, op *core.Op) error {
		if _, err := core.RequireRealmAuthority(ctx, op, cmd.GovernanceProgramID, cmd.Realm, cmd.GoverningTokenMint, cmd.Signer); err != nil {
			return err
		}
		acc, err := core.LoadAccount(ctx, op, cmd.StakePool, "stake pool")
		if err != nil {
			return err
		}
		pool, err := staking.GetStakePool(acc)
		if err != nil {
			return core.AccountError("stake pool", cmd.StakePool, err)
		}
		if pool.Mint != cmd.GoverningTokenMint {
			return ErrInvalidGoverningToken
		}
		if _, err := op.CreateRegistrar(ctx, id, reg.Encode()); err != nil {
			return err
		}
		op.Audit("realm", cmd.Realm.String(), "stake_pool", cmd.StakePool.String())
		return nil
	})
	if err != nil {
		return domain.Pubkey{}, nil, err
	}
	return address, reg, nil
}

// Registrar reads a committed registrar.
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

// CreateVoterWeightRecord creates owner's voter weight record together with
// its empty stake deposit ledger.
func (s *Service) CreateVoterWeightRecord(ctx context.Context, registrar, owner domain.Pubkey) (domain.Pubkey, error) {
	reg, err := s.Registrar(ctx, registrar)
	if err != nil {
		return domain.Pubkey{}, err
	}
	program := s.rt.ProgramID()
	address := vwmodels.VoterWeightRecordAddress(program, reg.Realm, reg.GoverningTokenMint, owner)
	depositAddress := models.StakeDepositRecordAddress(program, address)

	err = s.rt.Execute(ctx, "create_voter_weight_record", []domain.Pubkey{address, depositAddress}, func(ctx context.Context, op *core.Op) error {
		if _, _, err := op.CreateVoterWeightRecord(ctx, reg.RegistrarIdentity, owner); err != nil {
			return err
		}
		deposits := models.NewStakeDepositRecord(address)
		if err := op.CreateAccount(ctx, depositAddress, deposits.Encode(), core.ErrVoterWeightRecordExists); err != nil {
			return err
		}
		op.Audit("record", address.String(), "owner", owner.String())
		return nil
	})
	if err != nil {
		return domain.Pubkey{}, err
	}
	return address, nil
}

// UpdateCommand names every account an update reads.
type UpdateCommand struct {
	Registrar         domain.Pubkey
	Input             domain.Pubkey
	VoterWeightRecord domain.Pubkey
	TokenOwnerRecord  domain.Pubkey
	Proposal          *domain.Pubkey
	Receipts          []domain.Pubkey
	ReceiptsCount     int
	Action            domain.VoterWeightAction
	ActionTarget      domain.Pubkey
	Signer            domain.Pubkey
}

// UpdateVoterWeightRecord adds the weight of fresh receipts for the given
// action and target. Receipts already counted for the same action and target
// are rejected; switching to another action or target starts over.
func (s *Service) UpdateVoterWeightRecord(ctx context.Context, cmd UpdateCommand) (*vwmodels.VoterWeightRecord, error) {
	if !cmd.Action.IsValid() {
		return nil, ErrInvalidAction
	}
	program := s.rt.ProgramID()
	depositAddress := models.StakeDepositRecordAddress(program, cmd.VoterWeightRecord)

	var rec *vwmodels.VoterWeightRecord
	err := s.rt.Execute(ctx, "update_voter_weight_record", []domain.Pubkey{cmd.VoterWeightRecord, depositAddress}, func(ctx context.Context, op *core.Op) error {
		reg, err := s.loadRegistrar(ctx, op, cmd.Registrar)
		if err != nil {
			return err
		}
		rec, err = op.LoadVoterWeightRecord(ctx, cmd.VoterWeightRecord)
		if err != nil {
			return err
		}
		if err := core.CheckVoterWeightRecordIdentity(reg.RegistrarIdentity, rec); err != nil {
			return err
		}
		deposits, err := core.LoadOwned(ctx, op, program, depositAddress, "stake deposit record", models.DecodeStakeDepositRecord)
		if err != nil {
			return err
		}
		owner, err := core.ResolveGoverningTokenOwner(ctx, op, reg.RegistrarIdentity, cmd.TokenOwnerRecord, cmd.Signer, rec)
		if err != nil {
			return err
		}

		sameScope := rec.ScopedTo(cmd.Action, &cmd.ActionTarget)
		if !sameScope {
			deposits.Deposits = nil
		}
		if cmd.ReceiptsCount != len(cmd.Receipts) {
			return ErrReceiptsCountMismatch
		}

		input, err := core.LoadAccount(ctx, op, cmd.Input, "input voter weight")
		if err != nil {
			return err
		}
		view, err := resolver.ResolveInputVoterWeight(input, reg.RegistrarIdentity, rec)
		if err != nil {
			return err
		}
		weight := view.Weight()

		deposits.Resize(min(len(deposits.Deposits)+len(cmd.Receipts), models.MaxDeposits))

		receipts, err := op.LoadAccounts(ctx, cmd.Receipts, "stake deposit receipt")
		if err != nil {
			return err
		}
		counter := depositCounter{
			registrar: reg,
			owner:     owner,
			deposits:  deposits,
			action:    cmd.Action,
			target:    cmd.ActionTarget,
			proposal:  cmd.Proposal,
			now:       op.Timestamp(),
		}
		for _, acc := range receipts {
			amount, err := counter.count(ctx, op, acc)
			if err != nil {
				return err
			}
			if weight, err = core.CheckedAdd(weight, amount); err != nil {
				return err
			}
		}

		if sameScope {
			base, err := core.CheckedSub(rec.VoterWeight, deposits.PreviousVoterWeight)
			if err != nil {
				return err
			}
			if rec.VoterWeight, err = core.CheckedAdd(base, weight); err != nil {
				return err
			}
		} else {
			rec.VoterWeight = weight
		}
		target := cmd.ActionTarget
		rec.VoterWeightExpiry = domain.Some(op.Slot())
		rec.WeightAction = domain.Some(cmd.Action)
		rec.WeightActionTarget = &target

		deposits.WeightAction = domain.Some(cmd.Action)
		deposits.WeightActionTarget = &target
		deposits.PreviousVoterWeight = view.Weight()

		op.PutVoterWeightRecord(cmd.VoterWeightRecord, rec)
		op.PutAccount(depositAddress, deposits.Encode())
		op.CountAssets(len(cmd.Receipts))
		op.Audit("record", cmd.VoterWeightRecord.String(),
			"owner", owner.String(),
			"action", cmd.Action.String(),
			"weight", rec.VoterWeight,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// depositCounter validates receipts one at a time against the ledger of
// receipts already counted.
type depositCounter struct {
	registrar *models.Registrar
	owner     domain.Pubkey
	deposits  *models.StakeDepositRecord
	action    domain.VoterWeightAction
	target    domain.Pubkey
	proposal  *domain.Pubkey
	now       domain.UnixTimestamp

	proposalEnd *domain.UnixTimestamp
}

func (c *depositCounter) count(ctx context.Context, r core.Reader, acc *ledger.Account) (uint64, error) {
	if len(c.deposits.Deposits) >= models.MaxDeposits {
		return 0, ErrMaximumDepositsReached
	}
	receipt, err := staking.GetStakeDepositReceipt(acc)
	if err != nil {
		return 0, core.AccountError("stake deposit receipt", acc.Address, err)
	}
	if receipt.Owner != c.owner {
		return 0, ErrVoterDoesNotOwnDepositReceipt
	}
	if receipt.StakePool != c.registrar.StakePool {
		return 0, ErrInvalidStakePool
	}
	if c.deposits.Contains(acc.Address) {
		return 0, ErrDuplicatedReceiptDetected
	}
	c.deposits.Deposits = append(c.deposits.Deposits, acc.Address)

	end, ok := receipt.LockupEnd()
	if !ok {
		return 0, core.ErrArithmeticOverflow
	}
	if end <= c.now {
		return 0, ErrExpiredStakeDepositReceipt
	}

	if c.action == domain.ActionCastVote {
		if c.proposal == nil {
			return 0, ErrProposalAccountIsRequired
		}
		if *c.proposal != c.target {
			return 0, ErrActionTargetMismatch
		}
		proposalEnd, err := c.resolveProposalEnd(ctx, r)
		if err != nil {
			return 0, err
		}
		if end <= proposalEnd {
			return 0, ErrInvalidStakeDuration
		}
	}
	return receipt.DepositAmount, nil
}

// resolveProposalEnd reads the proposal once per update.
func (c *depositCounter) resolveProposalEnd(ctx context.Context, r core.Reader) (domain.UnixTimestamp, error) {
	if c.proposalEnd != nil {
		return *c.proposalEnd, nil
	}
	acc, err := core.LoadAccount(ctx, r, *c.proposal, "proposal")
	if err != nil {
		return 0, err
	}
	proposal, err := governance.GetProposalForMint(acc, c.registrar.GovernanceProgramID, c.registrar.GoverningTokenMint)
	if err != nil {
		return 0, core.AccountError("proposal", acc.Address, err)
	}
	end := proposal.VotingEnd()
	c.proposalEnd = &end
	return end, nil
}
