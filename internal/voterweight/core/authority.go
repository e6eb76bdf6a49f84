package core

import (
	"context"

	"voterweight/internal/governance"
	"voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

// RequireSigner rejects operations that arrived without a signer.
func RequireSigner(signer domain.Pubkey) error {
	if signer.IsZero() {
		return ErrSignerRequired
	}
	return nil
}

// RequireRealmAuthority loads the realm at realmAddress from the governance
// program, checks mint is one of its governing mints and that signer is its
// authority. It returns the decoded realm.
func RequireRealmAuthority(ctx context.Context, r Reader, governanceProgram, realmAddress, mint, signer domain.Pubkey) (*governance.Realm, error) {
	if err := RequireSigner(signer); err != nil {
		return nil, err
	}
	acc, err := LoadAccount(ctx, r, realmAddress, "realm")
	if err != nil {
		return nil, err
	}
	realm, err := governance.GetRealmForGoverningTokenMint(acc, governanceProgram, mint)
	if err != nil {
		return nil, err
	}
	if realm.Authority == nil || *realm.Authority != signer {
		return nil, ErrInvalidRealmAuthority
	}
	return realm, nil
}

// ResolveGoverningTokenOwner returns the owner of the registrar's token owner
// record at torAddress after checking that signer is that owner or its
// delegate and that it owns rec.
func ResolveGoverningTokenOwner(ctx context.Context, r Reader, id models.RegistrarIdentity, torAddress, signer domain.Pubkey, rec *models.VoterWeightRecord) (domain.Pubkey, error) {
	if err := RequireSigner(signer); err != nil {
		return domain.Pubkey{}, err
	}
	acc, err := LoadAccount(ctx, r, torAddress, "token owner record")
	if err != nil {
		return domain.Pubkey{}, err
	}
	tor, err := governance.GetTokenOwnerRecordForRealmAndMint(acc, id.GovernanceProgramID, id.Realm, id.GoverningTokenMint)
	if err != nil {
		return domain.Pubkey{}, err
	}
	if !tor.IsOwnerOrDelegate(signer) {
		return domain.Pubkey{}, governance.ErrGoverningTokenOwnerOrDelegateMustSign
	}
	if tor.GoverningTokenOwner != rec.GoverningTokenOwner {
		return domain.Pubkey{}, ErrInvalidTokenOwnerForVoterWeightRecord
	}
	return tor.GoverningTokenOwner, nil
}
