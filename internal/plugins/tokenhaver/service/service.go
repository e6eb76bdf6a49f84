// Package service implements the token haver plugin: a voter gets a fixed
// weight for every accepted mint they hold frozen.
package service

import (
	"context"

	"voterweight/internal/ledger"
	"voterweight/internal/plugins/tokenhaver/models"
	"voterweight/internal/token"
	"voterweight/internal/voterweight/core"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

const PluginName = "token-haver"

type Service struct {
	rt *core.Runtime
}

func New(rt *core.Runtime) *Service {
	return &Service{rt: rt}
}

func validateMints(mints []domain.Pubkey) error {
	if len(mints) > models.MaxMints {
		return ErrTooManyMints
	}
	seen := make(map[domain.Pubkey]struct{}, len(mints))
	for _, m := range mints {
		if _, dup := seen[m]; dup {
			return ErrDuplicateMint
		}
		seen[m] = struct{}{}
	}
	return nil
}

type CreateRegistrarCommand struct {
	GovernanceProgramID domain.Pubkey
	Realm               domain.Pubkey
	GoverningTokenMint  domain.Pubkey
	Mints               []domain.Pubkey
	Signer              domain.Pubkey
}

func (s *Service) CreateRegistrar(ctx context.Context, cmd CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error) {
	if err := validateMints(cmd.Mints); err != nil {
		return domain.Pubkey{}, nil, err
	}
	reg := &models.Registrar{
		RegistrarIdentity: vwmodels.RegistrarIdentity{
			GovernanceProgramID: cmd.GovernanceProgramID,
			Realm:               cmd.Realm,
			GoverningTokenMint:  cmd.GoverningTokenMint,
		},
		Mints: cmd.Mints,
	}
	address := vwmodels.RegistrarAddress(s.rt.ProgramID(), cmd.Realm, cmd.GoverningTokenMint)

	err := s.rt.Execute(ctx, "create_registrar", []domain.Pubkey{address}, func(ctx context.Context, op *core.Op) error {
		if _, err := core.RequireRealmAuthority(ctx, op, cmd.GovernanceProgramID, cmd.Realm, cmd.GoverningTokenMint, cmd.Signer); err != nil {
			return err
		}
		if _, err := op.CreateRegistrar(ctx, reg.RegistrarIdentity, reg.Encode()); err != nil {
			return err
		}
		op.Audit("realm", cmd.Realm.String(), "mints", len(cmd.Mints))
		return nil
	})
	if err != nil {
		return domain.Pubkey{}, nil, err
	}
	return address, reg, nil
}

type ConfigureMintsCommand struct {
	Registrar domain.Pubkey
	Mints     []domain.Pubkey
	Signer    domain.Pubkey
}

// ConfigureMints replaces the accepted mint list.
func (s *Service) ConfigureMints(ctx context.Context, cmd ConfigureMintsCommand) (*models.Registrar, error) {
	if err := validateMints(cmd.Mints); err != nil {
		return nil, err
	}
	var reg *models.Registrar
	err := s.rt.Execute(ctx, "configure_mints", []domain.Pubkey{cmd.Registrar}, func(ctx context.Context, op *core.Op) error {
		var err error
		if reg, err = s.loadRegistrar(ctx, op, cmd.Registrar); err != nil {
			return err
		}
		if _, err := core.RequireRealmAuthority(ctx, op, reg.GovernanceProgramID, reg.Realm, reg.GoverningTokenMint, cmd.Signer); err != nil {
			return err
		}
		reg.Mints = cmd.Mints
		op.PutRegistrar(cmd.Registrar, reg.RegistrarIdentity, reg.Encode())
		op.Audit("mints", len(cmd.Mints))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
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

func (s *Service) CreateVoterWeightRecord(ctx context.Context, registrar, owner domain.Pubkey) (domain.Pubkey, error) {
	reg, err := s.Registrar(ctx, registrar)
	if err != nil {
		return domain.Pubkey{}, err
	}
	return s.rt.CreateVoterWeightRecord(ctx, reg.RegistrarIdentity, owner)
}

type UpdateCommand struct {
	Registrar         domain.Pubkey
	VoterWeightRecord domain.Pubkey
	TokenAccounts     []domain.Pubkey
}

// UpdateVoterWeightRecord counts the distinct accepted mints the record owner
// holds in frozen token accounts. Empty accounts are ignored.
func (s *Service) UpdateVoterWeightRecord(ctx context.Context, cmd UpdateCommand) (*vwmodels.VoterWeightRecord, error) {
	var rec *vwmodels.VoterWeightRecord
	err := s.rt.Execute(ctx, "update_voter_weight_record", []domain.Pubkey{cmd.VoterWeightRecord}, func(ctx context.Context, op *core.Op) error {
		reg, err := s.loadRegistrar(ctx, op, cmd.Registrar)
		if err != nil {
			return err
		}
		if rec, err = op.LoadVoterWeightRecord(ctx, cmd.VoterWeightRecord); err != nil {
			return err
		}
		if err := core.CheckVoterWeightRecordIdentity(reg.RegistrarIdentity, rec); err != nil {
			return err
		}
		accs, err := op.LoadAccounts(ctx, cmd.TokenAccounts, "token account")
		if err != nil {
			return err
		}

		held := make(map[domain.Pubkey]struct{}, len(accs))
		for _, acc := range accs {
			ta, err := token.GetAccount(acc)
			if err != nil {
				return core.AccountError("token account", acc.Address, err)
			}
			if ta.Amount == 0 {
				continue
			}
			if ta.Owner != rec.GoverningTokenOwner {
				return ErrTokenAccountWrongOwner
			}
			if _, dup := held[ta.Mint]; dup {
				return ErrTokenAccountDuplicateMint
			}
			if !reg.Accepts(ta.Mint) {
				return ErrTokenAccountWrongMint
			}
			if !ta.IsFrozen() {
				return ErrTokenAccountNotLocked
			}
			held[ta.Mint] = struct{}{}
		}

		weight, err := core.CheckedMul(uint64(len(held)), models.WeightPerMint)
		if err != nil {
			return err
		}
		rec.VoterWeight = weight
		rec.VoterWeightExpiry = domain.Some(op.Slot())
		rec.WeightAction = nil
		rec.WeightActionTarget = nil
		op.PutVoterWeightRecord(cmd.VoterWeightRecord, rec)
		op.CountAssets(len(held))
		op.Audit("record", cmd.VoterWeightRecord.String(), "mints_held", len(held), "weight", weight)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}
