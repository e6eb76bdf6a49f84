// Package service implements the realm voter plugin: members of other realms
// run by a configured governance program get one fixed weight here.
package service

import (
	"context"

	"voterweight/internal/governance"
	"voterweight/internal/ledger"
	"voterweight/internal/plugins/realmvoter/models"
	"voterweight/internal/voterweight/core"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

const PluginName = "realm-voter"

type Service struct {
	rt *core.Runtime
}

func New(rt *core.Runtime) *Service {
	return &Service{rt: rt}
}

type CreateRegistrarCommand struct {
	GovernanceProgramID   domain.Pubkey
	Realm                 domain.Pubkey
	GoverningTokenMint    domain.Pubkey
	MaxGovernancePrograms uint8
	Signer                domain.Pubkey
}

func (s *Service) CreateRegistrar(ctx context.Context, cmd CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error) {
	reg := &models.Registrar{
		RegistrarIdentity: vwmodels.RegistrarIdentity{
			GovernanceProgramID: cmd.GovernanceProgramID,
			Realm:               cmd.Realm,
			GoverningTokenMint:  cmd.GoverningTokenMint,
		},
		MaxGovernancePrograms: cmd.MaxGovernancePrograms,
	}
	address := vwmodels.RegistrarAddress(s.rt.ProgramID(), cmd.Realm, cmd.GoverningTokenMint)

	err := s.rt.Execute(ctx, "create_registrar", []domain.Pubkey{address}, func(ctx context.Context, op *core.Op) error {
		if _, err := core.RequireRealmAuthority(ctx, op, cmd.GovernanceProgramID, cmd.Realm, cmd.GoverningTokenMint, cmd.Signer); err != nil {
			return err
		}
		if _, err := op.CreateRegistrar(ctx, reg.RegistrarIdentity, reg.Encode()); err != nil {
			return err
		}
		op.Audit("realm", cmd.Realm.String(), "max_governance_programs", cmd.MaxGovernancePrograms)
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

// configure runs fn against the registrar after checking the signer is the
// realm authority, then stores the registrar.
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

type ConfigureGovernanceProgramCommand struct {
	Registrar         domain.Pubkey
	GovernanceProgram domain.Pubkey
	Change            models.ChangeType
	Signer            domain.Pubkey
}

// ConfigureGovernanceProgram adds or removes an accepted governance program.
func (s *Service) ConfigureGovernanceProgram(ctx context.Context, cmd ConfigureGovernanceProgramCommand) (*models.Registrar, error) {
	return s.configure(ctx, "configure_governance_program", cmd.Registrar, cmd.Signer, nil,
		func(_ context.Context, op *core.Op, reg *models.Registrar) error {
			switch cmd.Change {
			case models.ChangeUpsert:
				if !reg.Upsert(cmd.GovernanceProgram) {
					return ErrMaxGovernanceProgramsReached
				}
			case models.ChangeRemove:
				if !reg.Remove(cmd.GovernanceProgram) {
					return ErrGovernanceProgramNotConfigured
				}
			default:
				return ErrInvalidChangeType
			}
			op.Audit("governance_program", cmd.GovernanceProgram.String(), "change", cmd.Change.String())
			return nil
		})
}

type ConfigureVoterWeightsCommand struct {
	Registrar              domain.Pubkey
	MaxVoterWeightRecord   domain.Pubkey
	RealmMemberVoterWeight uint64
	MaxVoterWeight         uint64
	Signer                 domain.Pubkey
}

// ConfigureVoterWeights sets the member weight and the realm's ceiling. The
// max record takes the ceiling at once and never expires.
func (s *Service) ConfigureVoterWeights(ctx context.Context, cmd ConfigureVoterWeightsCommand) (*models.Registrar, *vwmodels.MaxVoterWeightRecord, error) {
	var maxRec *vwmodels.MaxVoterWeightRecord
	reg, err := s.configure(ctx, "configure_voter_weights", cmd.Registrar, cmd.Signer, []domain.Pubkey{cmd.MaxVoterWeightRecord},
		func(ctx context.Context, op *core.Op, reg *models.Registrar) error {
			var err error
			if maxRec, err = op.LoadMaxVoterWeightRecord(ctx, cmd.MaxVoterWeightRecord); err != nil {
				return err
			}
			if err := core.CheckMaxVoterWeightRecordIdentity(reg.RegistrarIdentity, maxRec); err != nil {
				return err
			}
			reg.RealmMemberVoterWeight = cmd.RealmMemberVoterWeight
			reg.MaxVoterWeight = cmd.MaxVoterWeight
			maxRec.MaxVoterWeight = cmd.MaxVoterWeight
			maxRec.MaxVoterWeightExpiry = nil
			op.PutMaxVoterWeightRecord(cmd.MaxVoterWeightRecord, maxRec)
			op.Audit("realm_member_voter_weight", cmd.RealmMemberVoterWeight, "max_voter_weight", cmd.MaxVoterWeight)
			return nil
		})
	if err != nil {
		return nil, nil, err
	}
	return reg, maxRec, nil
}

func (s *Service) CreateVoterWeightRecord(ctx context.Context, registrar, owner domain.Pubkey) (domain.Pubkey, error) {
	reg, err := s.Registrar(ctx, registrar)
	if err != nil {
		return domain.Pubkey{}, err
	}
	return s.rt.CreateVoterWeightRecord(ctx, reg.RegistrarIdentity, owner)
}

func (s *Service) CreateMaxVoterWeightRecord(ctx context.Context, registrar domain.Pubkey) (domain.Pubkey, error) {
	reg, err := s.Registrar(ctx, registrar)
	if err != nil {
		return domain.Pubkey{}, err
	}
	return s.rt.CreateMaxVoterWeightRecord(ctx, reg.RegistrarIdentity)
}

type UpdateCommand struct {
	Registrar         domain.Pubkey
	VoterWeightRecord domain.Pubkey
	TokenOwnerRecord  domain.Pubkey
}

// UpdateVoterWeightRecord grants the member weight to the owner of a token
// owner record in another realm run by a configured governance program.
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
		acc, err := core.LoadAccount(ctx, op, cmd.TokenOwnerRecord, "token owner record")
		if err != nil {
			return err
		}
		if !reg.IsConfigured(acc.Owner) {
			return ErrGovernanceProgramNotConfigured
		}
		tor, err := governance.GetTokenOwnerRecord(acc, acc.Owner)
		if err != nil {
			return core.AccountError("token owner record", acc.Address, err)
		}
		if tor.GoverningTokenOwner != rec.GoverningTokenOwner {
			return ErrGoverningTokenOwnerMustMatch
		}
		if tor.Realm == reg.Realm {
			return ErrTokenOwnerRecordFromOwnRealmNotAllowed
		}

		rec.VoterWeight = reg.RealmMemberVoterWeight
		rec.VoterWeightExpiry = domain.Some(op.Slot())
		rec.WeightAction = nil
		rec.WeightActionTarget = nil
		op.PutVoterWeightRecord(cmd.VoterWeightRecord, rec)
		op.Audit("record", cmd.VoterWeightRecord.String(),
			"owner", rec.GoverningTokenOwner.String(),
			"member_of", tor.Realm.String(),
			"weight", rec.VoterWeight,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateMaxVoterWeightRecord rewrites the configured ceiling into the max record.
func (s *Service) UpdateMaxVoterWeightRecord(ctx context.Context, registrar, maxRecord domain.Pubkey) (*vwmodels.MaxVoterWeightRecord, error) {
	var maxRec *vwmodels.MaxVoterWeightRecord
	err := s.rt.Execute(ctx, "update_max_voter_weight_record", []domain.Pubkey{maxRecord}, func(ctx context.Context, op *core.Op) error {
		reg, err := s.loadRegistrar(ctx, op, registrar)
		if err != nil {
			return err
		}
		if maxRec, err = op.LoadMaxVoterWeightRecord(ctx, maxRecord); err != nil {
			return err
		}
		if err := core.CheckMaxVoterWeightRecordIdentity(reg.RegistrarIdentity, maxRec); err != nil {
			return err
		}
		maxRec.MaxVoterWeight = reg.MaxVoterWeight
		maxRec.MaxVoterWeightExpiry = nil
		op.PutMaxVoterWeightRecord(maxRecord, maxRec)
		op.Audit("record", maxRecord.String(), "max_voter_weight", maxRec.MaxVoterWeight)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return maxRec, nil
}
