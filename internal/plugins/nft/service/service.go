// Package service implements the nft plugin: every asset of a configured,
// verified collection carries that collection's weight, and an asset can
// vote on a proposal once until the vote is relinquished.
package service

import (
	"context"
	"errors"

	"voterweight/internal/asset"
	"voterweight/internal/governance"
	"voterweight/internal/ledger"
	"voterweight/internal/plugins/nft/models"
	"voterweight/internal/voterweight/core"
	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
	"voterweight/pkg/platform/sentinel"
)

const PluginName = "nft"

// Service runs the nft plugin's operations.
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
	MaxCollections      uint8
	Signer              domain.Pubkey
}

// CreateRegistrar creates a registrar with room for MaxCollections
// collections. The signer must be the realm authority.
func (s *Service) CreateRegistrar(ctx context.Context, cmd CreateRegistrarCommand) (domain.Pubkey, *models.Registrar, error) {
	reg := &models.Registrar{
		RegistrarIdentity: vwmodels.RegistrarIdentity{
			GovernanceProgramID: cmd.GovernanceProgramID,
			Realm:               cmd.Realm,
			GoverningTokenMint:  cmd.GoverningTokenMint,
		},
		MaxCollections: cmd.MaxCollections,
	}
	address := vwmodels.RegistrarAddress(s.rt.ProgramID(), cmd.Realm, cmd.GoverningTokenMint)

	err := s.rt.Execute(ctx, "create_registrar", []domain.Pubkey{address}, func(ctx context.Context, op *core.Op) error {
		if _, err := core.RequireRealmAuthority(ctx, op, cmd.GovernanceProgramID, cmd.Realm, cmd.GoverningTokenMint, cmd.Signer); err != nil {
			return err
		}
		if _, err := op.CreateRegistrar(ctx, reg.RegistrarIdentity, reg.Encode()); err != nil {
			return err
		}
		op.Audit("realm", cmd.Realm.String(), "max_collections", cmd.MaxCollections)
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

type ConfigureCollectionCommand struct {
	Registrar            domain.Pubkey
	MaxVoterWeightRecord domain.Pubkey
	Collection           domain.Pubkey
	Weight               uint64
	Size                 uint32
	Signer               domain.Pubkey
}

// ConfigureCollection sets the weight and size of one collection and
// recomputes the realm's max voter weight from every configured collection.
func (s *Service) ConfigureCollection(ctx context.Context, cmd ConfigureCollectionCommand) (*models.Registrar, *vwmodels.MaxVoterWeightRecord, error) {
	if cmd.Size == 0 {
		return nil, nil, ErrInvalidCollectionSize
	}
	var (
		reg    *models.Registrar
		maxRec *vwmodels.MaxVoterWeightRecord
	)
	err := s.rt.Execute(ctx, "configure_collection", []domain.Pubkey{cmd.Registrar, cmd.MaxVoterWeightRecord}, func(ctx context.Context, op *core.Op) error {
		var err error
		if reg, err = s.loadRegistrar(ctx, op, cmd.Registrar); err != nil {
			return err
		}
		if _, err := core.RequireRealmAuthority(ctx, op, reg.GovernanceProgramID, reg.Realm, reg.GoverningTokenMint, cmd.Signer); err != nil {
			return err
		}
		if maxRec, err = op.LoadMaxVoterWeightRecord(ctx, cmd.MaxVoterWeightRecord); err != nil {
			return err
		}
		if err := core.CheckMaxVoterWeightRecordIdentity(reg.RegistrarIdentity, maxRec); err != nil {
			return err
		}
		if !reg.Upsert(models.CollectionConfig{Collection: cmd.Collection, Size: cmd.Size, Weight: cmd.Weight}) {
			return ErrMaxCollectionsReached
		}
		if maxRec.MaxVoterWeight, err = maxVoterWeight(reg); err != nil {
			return err
		}
		maxRec.MaxVoterWeightExpiry = nil

		op.PutRegistrar(cmd.Registrar, reg.RegistrarIdentity, reg.Encode())
		op.PutMaxVoterWeightRecord(cmd.MaxVoterWeightRecord, maxRec)
		op.Audit("collection", cmd.Collection.String(),
			"weight", cmd.Weight,
			"size", cmd.Size,
			"max_voter_weight", maxRec.MaxVoterWeight,
		)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return reg, maxRec, nil
}

// CreateVoterWeightRecord creates owner's voter weight record.
func (s *Service) CreateVoterWeightRecord(ctx context.Context, registrar, owner domain.Pubkey) (domain.Pubkey, error) {
	reg, err := s.Registrar(ctx, registrar)
	if err != nil {
		return domain.Pubkey{}, err
	}
	return s.rt.CreateVoterWeightRecord(ctx, reg.RegistrarIdentity, owner)
}

// CreateMaxVoterWeightRecord creates the realm's max voter weight record.
func (s *Service) CreateMaxVoterWeightRecord(ctx context.Context, registrar domain.Pubkey) (domain.Pubkey, error) {
	reg, err := s.Registrar(ctx, registrar)
	if err != nil {
		return domain.Pubkey{}, err
	}
	return s.rt.CreateMaxVoterWeightRecord(ctx, reg.RegistrarIdentity)
}

// UpdateMaxVoterWeightRecord recomputes the max record from the configured
// collections. The ceiling only changes with the configuration, so it never
// expires.
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
		if maxRec.MaxVoterWeight, err = maxVoterWeight(reg); err != nil {
			return err
		}
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

func maxVoterWeight(reg *models.Registrar) (uint64, error) {
	var total uint64
	for _, c := range reg.CollectionConfigs {
		w, ok := c.MaxWeight()
		if !ok {
			return 0, core.ErrArithmeticOverflow
		}
		var err error
		if total, err = core.CheckedAdd(total, w); err != nil {
			return 0, err
		}
	}
	return total, nil
}

type UpdateCommand struct {
	Registrar         domain.Pubkey
	VoterWeightRecord domain.Pubkey
	Action            domain.VoterWeightAction
	Assets            []domain.Pubkey
}

// UpdateVoterWeightRecord computes the weight of the record owner's assets
// for any action but CastVote, which needs the per-proposal guard of
// CastNftVote.
func (s *Service) UpdateVoterWeightRecord(ctx context.Context, cmd UpdateCommand) (*vwmodels.VoterWeightRecord, error) {
	if !cmd.Action.IsValid() {
		return nil, ErrInvalidAction
	}
	if cmd.Action == domain.ActionCastVote {
		return nil, ErrCastVoteIsNotAllowed
	}
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
		weights, err := s.assetWeights(ctx, op, reg, rec.GoverningTokenOwner, cmd.Assets)
		if err != nil {
			return err
		}
		var weight uint64
		for _, w := range weights {
			if weight, err = core.CheckedAdd(weight, w.weight); err != nil {
				return err
			}
		}

		rec.VoterWeight = weight
		rec.VoterWeightExpiry = domain.Some(op.Slot())
		rec.WeightAction = domain.Some(cmd.Action)
		rec.WeightActionTarget = nil

		op.PutVoterWeightRecord(cmd.VoterWeightRecord, rec)
		op.CountAssets(len(cmd.Assets))
		op.Audit("record", cmd.VoterWeightRecord.String(),
			"owner", rec.GoverningTokenOwner.String(),
			"action", cmd.Action.String(),
			"weight", weight,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type CastNftVoteCommand struct {
	Registrar         domain.Pubkey
	VoterWeightRecord domain.Pubkey
	TokenOwnerRecord  domain.Pubkey
	Proposal          domain.Pubkey
	Assets            []domain.Pubkey
	Signer            domain.Pubkey
}

// CastNftVote records each asset's vote on the proposal and credits its
// weight. Batches for the same proposal accumulate; a different proposal
// replaces the previous weight.
func (s *Service) CastNftVote(ctx context.Context, cmd CastNftVoteCommand) (*vwmodels.VoterWeightRecord, error) {
	program := s.rt.ProgramID()
	lockKeys := []domain.Pubkey{cmd.VoterWeightRecord}
	for _, a := range cmd.Assets {
		lockKeys = append(lockKeys, models.AssetVoteRecordAddress(program, cmd.Proposal, a))
	}

	var rec *vwmodels.VoterWeightRecord
	err := s.rt.Execute(ctx, "cast_nft_vote", lockKeys, func(ctx context.Context, op *core.Op) error {
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
		owner, err := core.ResolveGoverningTokenOwner(ctx, op, reg.RegistrarIdentity, cmd.TokenOwnerRecord, cmd.Signer, rec)
		if err != nil {
			return err
		}
		weights, err := s.assetWeights(ctx, op, reg, owner, cmd.Assets)
		if err != nil {
			return err
		}

		var weight uint64
		for _, w := range weights {
			vote := &models.AssetVoteRecord{Proposal: cmd.Proposal, Asset: w.asset, GoverningTokenOwner: owner}
			address := models.AssetVoteRecordAddress(program, cmd.Proposal, w.asset)
			if err := op.CreateAccount(ctx, address, vote.Encode(), ErrNftAlreadyVoted); err != nil {
				return err
			}
			if weight, err = core.CheckedAdd(weight, w.weight); err != nil {
				return err
			}
		}

		if rec.ScopedTo(domain.ActionCastVote, &cmd.Proposal) {
			if rec.VoterWeight, err = core.CheckedAdd(rec.VoterWeight, weight); err != nil {
				return err
			}
		} else {
			rec.VoterWeight = weight
		}
		proposal := cmd.Proposal
		rec.VoterWeightExpiry = domain.Some(op.Slot())
		rec.WeightAction = domain.Some(domain.ActionCastVote)
		rec.WeightActionTarget = &proposal

		op.PutVoterWeightRecord(cmd.VoterWeightRecord, rec)
		op.CountAssets(len(cmd.Assets))
		op.Audit("record", cmd.VoterWeightRecord.String(),
			"owner", owner.String(),
			"proposal", cmd.Proposal.String(),
			"weight", rec.VoterWeight,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type assetWeight struct {
	asset  domain.Pubkey
	weight uint64
}

// assetWeights checks every asset belongs to owner and to a configured,
// verified collection, and returns the weight each one carries.
func (s *Service) assetWeights(ctx context.Context, op *core.Op, reg *models.Registrar, owner domain.Pubkey, assets []domain.Pubkey) ([]assetWeight, error) {
	accs, err := op.LoadAccounts(ctx, assets, "asset")
	if err != nil {
		return nil, err
	}
	seen := make(map[domain.Pubkey]struct{}, len(accs))
	out := make([]assetWeight, 0, len(accs))
	for _, acc := range accs {
		a, err := asset.GetAsset(acc)
		if err != nil {
			return nil, core.AccountError("asset", acc.Address, err)
		}
		if a.Owner != owner {
			return nil, ErrVoterDoesNotOwnNft
		}
		if _, dup := seen[acc.Address]; dup {
			return nil, ErrDuplicatedNftDetected
		}
		seen[acc.Address] = struct{}{}
		if a.Collection == nil {
			return nil, ErrMissingMetadataCollection
		}
		if !a.Collection.Verified {
			return nil, ErrCollectionMustBeVerified
		}
		cfg, ok := reg.CollectionConfig(a.Collection.Key)
		if !ok {
			return nil, ErrCollectionNotFound
		}
		out = append(out, assetWeight{asset: acc.Address, weight: cfg.Weight})
	}
	return out, nil
}

type RelinquishNftVoteCommand struct {
	Registrar         domain.Pubkey
	VoterWeightRecord domain.Pubkey
	TokenOwnerRecord  domain.Pubkey
	Proposal          domain.Pubkey
	VoteRecord        domain.Pubkey
	AssetVoteRecords  []domain.Pubkey
	Signer            domain.Pubkey
}

// RelinquishNftVote deletes the listed asset vote records of a proposal once
// the engine vote is withdrawn or voting is over, and resets the voter weight
// record so it cannot be used again.
//
// The reset zeroes the whole weight even when only some of the proposal's
// asset vote records are listed. Records left out survive, and their assets
// stay spent on the proposal until a later relinquish names them.
func (s *Service) RelinquishNftVote(ctx context.Context, cmd RelinquishNftVoteCommand) (*vwmodels.VoterWeightRecord, error) {
	if len(cmd.AssetVoteRecords) == 0 {
		return nil, ErrNftVoteRecordsRequired
	}
	lockKeys := append([]domain.Pubkey{cmd.VoterWeightRecord}, cmd.AssetVoteRecords...)

	var rec *vwmodels.VoterWeightRecord
	err := s.rt.Execute(ctx, "relinquish_nft_vote", lockKeys, func(ctx context.Context, op *core.Op) error {
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
		owner, err := core.ResolveGoverningTokenOwner(ctx, op, reg.RegistrarIdentity, cmd.TokenOwnerRecord, cmd.Signer, rec)
		if err != nil {
			return err
		}

		acc, err := core.LoadAccount(ctx, op, cmd.Proposal, "proposal")
		if err != nil {
			return err
		}
		proposal, err := governance.GetProposalForMint(acc, reg.GovernanceProgramID, reg.GoverningTokenMint)
		if err != nil {
			return core.AccountError("proposal", cmd.Proposal, err)
		}
		if proposal.State == governance.ProposalStateVoting {
			if err := s.requireVoteWithdrawn(ctx, op, reg, cmd, owner); err != nil {
				return err
			}
		}

		// A record still valid in this slot may already back a vote cast
		// through a chained plugin.
		if rec.VoterWeightExpiry != nil && *rec.VoterWeightExpiry >= op.Slot() {
			return ErrVoterWeightRecordMustBeExpired
		}

		votes, err := op.LoadAccounts(ctx, cmd.AssetVoteRecords, "nft vote record")
		if err != nil {
			return err
		}
		for _, acc := range votes {
			vote, err := core.DecodeOwned(acc, op.ProgramID(), "nft vote record", models.DecodeAssetVoteRecord)
			if err != nil {
				return err
			}
			if vote.Proposal != cmd.Proposal {
				return ErrInvalidProposalForNftVoteRecord
			}
			if vote.GoverningTokenOwner != owner {
				return ErrInvalidTokenOwnerForNftVoteRecord
			}
			op.Delete(acc.Address)
		}

		rec.Reset()
		op.PutVoterWeightRecord(cmd.VoterWeightRecord, rec)
		op.CountAssets(len(votes))
		op.Audit("record", cmd.VoterWeightRecord.String(),
			"owner", owner.String(),
			"proposal", cmd.Proposal.String(),
			"relinquished", len(votes),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// requireVoteWithdrawn checks the engine vote record of owner on a proposal
// that is still voting is gone or relinquished.
func (s *Service) requireVoteWithdrawn(ctx context.Context, op *core.Op, reg *models.Registrar, cmd RelinquishNftVoteCommand, owner domain.Pubkey) error {
	expected := governance.VoteRecordAddress(reg.GovernanceProgramID, cmd.Proposal, cmd.TokenOwnerRecord)
	if cmd.VoteRecord != expected {
		return ErrInvalidVoteRecordForNftVoteRecord
	}
	acc, err := op.Get(ctx, cmd.VoteRecord)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	vote, err := governance.GetVoteRecord(acc, reg.GovernanceProgramID)
	if err != nil {
		return core.AccountError("vote record", cmd.VoteRecord, err)
	}
	if vote.Proposal != cmd.Proposal || vote.GoverningTokenOwner != owner {
		return ErrInvalidVoteRecordForNftVoteRecord
	}
	if !vote.IsRelinquished {
		return ErrVoteRecordMustBeWithdrawn
	}
	return nil
}
