package governance

import (
	"fmt"

	"voterweight/internal/ledger"
	"voterweight/pkg/domain"
)

func checkOwner(acc *ledger.Account, program domain.Pubkey) error {
	if acc.Owner != program {
		return fmt.Errorf("%w: %s owned by %s", ErrInvalidAccountOwner, acc.Address, acc.Owner)
	}
	return nil
}

// GetRealm decodes a realm owned by program.
func GetRealm(acc *ledger.Account, program domain.Pubkey) (*Realm, error) {
	if err := checkOwner(acc, program); err != nil {
		return nil, err
	}
	return DecodeRealm(acc.Data)
}

// GetRealmForGoverningTokenMint decodes a realm and checks mint is one of its
// governing mints.
func GetRealmForGoverningTokenMint(acc *ledger.Account, program, mint domain.Pubkey) (*Realm, error) {
	realm, err := GetRealm(acc, program)
	if err != nil {
		return nil, err
	}
	if !realm.HasGoverningMint(mint) {
		return nil, ErrInvalidGoverningTokenMint
	}
	return realm, nil
}

// GetTokenOwnerRecord decodes a token owner record owned by program, in any
// realm.
func GetTokenOwnerRecord(acc *ledger.Account, program domain.Pubkey) (*TokenOwnerRecord, error) {
	if err := checkOwner(acc, program); err != nil {
		return nil, err
	}
	return DecodeTokenOwnerRecord(acc.Data)
}

// GetTokenOwnerRecordForRealmAndMint decodes a token owner record and checks
// it belongs to realm and mint.
func GetTokenOwnerRecordForRealmAndMint(acc *ledger.Account, program, realm, mint domain.Pubkey) (*TokenOwnerRecord, error) {
	rec, err := GetTokenOwnerRecord(acc, program)
	if err != nil {
		return nil, err
	}
	if rec.Realm != realm {
		return nil, ErrInvalidRealmForTokenOwnerRecord
	}
	if rec.GoverningTokenMint != mint {
		return nil, ErrInvalidGoverningMintForTokenOwnerRecord
	}
	return rec, nil
}

// GetProposalForMint decodes a proposal owned by program and voted with mint.
func GetProposalForMint(acc *ledger.Account, program, mint domain.Pubkey) (*Proposal, error) {
	if err := checkOwner(acc, program); err != nil {
		return nil, err
	}
	p, err := DecodeProposal(acc.Data)
	if err != nil {
		return nil, err
	}
	if p.GoverningTokenMint != mint {
		return nil, ErrInvalidProposalForMint
	}
	return p, nil
}

// GetVoteRecord decodes a vote record owned by program.
func GetVoteRecord(acc *ledger.Account, program domain.Pubkey) (*VoteRecord, error) {
	if err := checkOwner(acc, program); err != nil {
		return nil, err
	}
	return DecodeVoteRecord(acc.Data)
}
