// Package service implements the gateway plugin: it passes the input weight
// through unchanged for voters holding a valid pass of the registrar's
// gatekeeper network.
package service

import (
	"context"
	"fmt"

	"voterweight/internal/gatekeeper"
	"voterweight/internal/ledger"
	"voterweight/internal/plugins/gateway/models"
	"voterweight/internal/voterweight/core"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/internal/voterweight/resolver"
	"voterweight/pkg/domain"
)

const PluginName = "gateway"

type Service struct {
	rt *core.Runtime
}

func New(rt *core.Runtime) *Service {
	return &Service{rt: rt}
}

type CreateRegistrarCommand struct {
	GovernanceProgramID                domain.Pubkey
	Realm                              domain.Pubkey
	GoverningTokenMint                 domain.Pubkey
	GatekeeperNetwork                  domain.Pubkey
	PreviousVoterWeightPluginProgramID *domain.Pubkey
	Signer                             domain.Pubkey
}

func (s *Service) CreateRegistrar(ctx context.Context, cmd CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error) {
	reg := &models.Registrar{
		RegistrarIdentity: vwmodels.RegistrarIdentity{
			GovernanceProgramID:                cmd.GovernanceProgramID,
			Realm:                              cmd.Realm,
			GoverningTokenMint:                 cmd.GoverningTokenMint,
			PreviousVoterWeightPluginProgramID: cmd.PreviousVoterWeightPluginProgramID,
		},
		GatekeeperNetwork: cmd.GatekeeperNetwork,
	}
	address := vwmodels.RegistrarAddress(s.rt.ProgramID(), cmd.Realm, cmd.GoverningTokenMint)

	err := s.rt.Execute(ctx, "create_registrar", []domain.Pubkey{address}, func(ctx context.Context, op *core.Op) error {
		if _, err := core.RequireRealmAuthority(ctx, op, cmd.GovernanceProgramID, cmd.Realm, cmd.GoverningTokenMint, cmd.Signer); err != nil {
			return err
		}
		if _, err := op.CreateRegistrar(ctx, reg.RegistrarIdentity, reg.Encode()); err != nil {
			return err
		}
		op.Audit("realm", cmd.Realm.String(),
			"gatekeeper_network", cmd.GatekeeperNetwork.String(),
			"chained", reg.HasPredecessor(),
		)
		return nil
	})
	if err != nil {
		return domain.Pubkey{}, nil, err
	}
	return address, reg, nil
}

// ConfigureRegistrarCommand points the registrar at a gatekeeper network.
// Without UsePreviousVoterWeightPlugin the predecessor is dropped.
type ConfigureRegistrarCommand struct {
	Registrar                          domain.Pubkey
	GatekeeperNetwork                  domain.Pubkey
	UsePreviousVoterWeightPlugin       bool
	PreviousVoterWeightPluginProgramID *domain.Pubkey
	Signer                             domain.Pubkey
}

func (s *Service) ConfigureRegistrar(ctx context.Context, cmd ConfigureRegistrarCommand) (*models.Registrar, error) {
	var predecessor *domain.Pubkey
	if cmd.UsePreviousVoterWeightPlugin {
		if cmd.PreviousVoterWeightPluginProgramID == nil {
			return nil, ErrMissingPreviousVoterWeightPlugin
		}
		p := *cmd.PreviousVoterWeightPluginProgramID
		predecessor = &p
	}

	var reg *models.Registrar
	err := s.rt.Execute(ctx, "configure_registrar", []domain.Pubkey{cmd.Registrar}, func(ctx context.Context, op *core.Op) error {
		var err error
		if reg, err = s.loadRegistrar(ctx, op, cmd.Registrar); err != nil {
			return err
		}
		if _, err := core.RequireRealmAuthority(ctx, op, reg.GovernanceProgramID, reg.Realm, reg.GoverningTokenMint, cmd.Signer); err != nil {
			return err
		}
		reg.GatekeeperNetwork = cmd.GatekeeperNetwork
		reg.PreviousVoterWeightPluginProgramID = predecessor
		op.PutRegistrar(cmd.Registrar, reg.RegistrarIdentity, reg.Encode())
		op.Audit("registrar", cmd.Registrar.String(),
			"gatekeeper_network", cmd.GatekeeperNetwork.String(),
			"chained", reg.HasPredecessor(),
		)
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

func (s *Service) CreateMaxVoterWeightRecord(ctx context.Context, registrar domain.Pubkey) (domain.Pubkey, error) {
	reg, err := s.Registrar(ctx, registrar)
	if err != nil {
		return domain.Pubkey{}, err
	}
	return s.rt.CreateMaxVoterWeightRecord(ctx, reg.RegistrarIdentity)
}

// checkPass accepts a pass of network held by owner that is valid at now.
func checkPass(acc *ledger.Account, network, owner domain.Pubkey, now domain.UnixTimestamp) error {
	pass, err := gatekeeper.GetPass(acc)
	if err != nil {
		return ErrInvalidGatewayToken.WithCause(fmt.Errorf("gateway token %s: %w", acc.Address, err))
	}
	if pass.GatekeeperNetwork != network || pass.Owner != owner || !pass.IsValid(now) {
		return ErrInvalidGatewayToken
	}
	return nil
}

type UpdateCommand struct {
	Registrar         domain.Pubkey
	Input             domain.Pubkey
	GatewayToken      domain.Pubkey
	VoterWeightRecord domain.Pubkey
}

// UpdateVoterWeightRecord copies the input weight, action and target once the
// record owner shows a valid pass.
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
		passAcc, err := core.LoadAccount(ctx, op, cmd.GatewayToken, "gateway token")
		if err != nil {
			return err
		}
		if err := checkPass(passAcc, reg.GatekeeperNetwork, rec.GoverningTokenOwner, op.Timestamp()); err != nil {
			return err
		}
		input, err := core.LoadAccount(ctx, op, cmd.Input, "input voter weight")
		if err != nil {
			return err
		}
		view, err := resolver.ResolveInputVoterWeight(input, reg.RegistrarIdentity, rec)
		if err != nil {
			return err
		}

		rec.VoterWeight = view.Weight()
		rec.WeightAction = view.Action()
		rec.WeightActionTarget = view.Target()
		rec.VoterWeightExpiry = vwmodels.NextExpiry(view.Expiry(), op.Slot())
		op.PutVoterWeightRecord(cmd.VoterWeightRecord, rec)
		op.Audit("record", cmd.VoterWeightRecord.String(),
			"owner", rec.GoverningTokenOwner.String(),
			"gateway_token", cmd.GatewayToken.String(),
			"weight", rec.VoterWeight,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type UpdateMaxCommand struct {
	Registrar            domain.Pubkey
	Input                domain.Pubkey
	MaxVoterWeightRecord domain.Pubkey
}

// UpdateMaxVoterWeightRecord copies the mint supply or the predecessor's max.
func (s *Service) UpdateMaxVoterWeightRecord(ctx context.Context, cmd UpdateMaxCommand) (*vwmodels.MaxVoterWeightRecord, error) {
	var maxRec *vwmodels.MaxVoterWeightRecord
	err := s.rt.Execute(ctx, "update_max_voter_weight_record", []domain.Pubkey{cmd.MaxVoterWeightRecord}, func(ctx context.Context, op *core.Op) error {
		reg, err := s.loadRegistrar(ctx, op, cmd.Registrar)
		if err != nil {
			return err
		}
		if maxRec, err = op.LoadMaxVoterWeightRecord(ctx, cmd.MaxVoterWeightRecord); err != nil {
			return err
		}
		if err := core.CheckMaxVoterWeightRecordIdentity(reg.RegistrarIdentity, maxRec); err != nil {
			return err
		}
		input, err := core.LoadAccount(ctx, op, cmd.Input, "input max voter weight")
		if err != nil {
			return err
		}
		view, err := resolver.ResolveInputMaxVoterWeight(input, reg.RegistrarIdentity, maxRec)
		if err != nil {
			return err
		}
		maxRec.MaxVoterWeight = view.Weight()
		maxRec.MaxVoterWeightExpiry = vwmodels.NextExpiry(view.Expiry(), op.Slot())
		op.PutMaxVoterWeightRecord(cmd.MaxVoterWeightRecord, maxRec)
		op.Audit("record", cmd.MaxVoterWeightRecord.String(), "max_voter_weight", maxRec.MaxVoterWeight)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return maxRec, nil
}
