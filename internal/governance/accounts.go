// Package governance reads the governance engine's accounts. The engine owns
// and writes them; plugins only read realms, token owner records, proposals
// and vote records to validate their inputs.
package governance

import (
	"fmt"

	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

// AccountType is the one-byte tag at the start of every governance account.
type AccountType uint8

const (
	AccountTypeVoteRecord       AccountType = 12
	AccountTypeProposal         AccountType = 14
	AccountTypeRealm            AccountType = 16
	AccountTypeTokenOwnerRecord AccountType = 17
)

// Realm is the top level governance namespace.
type Realm struct {
	CommunityMint domain.Pubkey
	CouncilMint   *domain.Pubkey
	Authority     *domain.Pubkey
	Name          string
}

func (r *Realm) Encode() []byte {
	w := codec.NewWriter(128)
	w.U8(uint8(AccountTypeRealm))
	w.Pubkey(r.CommunityMint)
	w.OptionPubkey(r.CouncilMint)
	w.OptionPubkey(r.Authority)
	w.Text(r.Name)
	return w.Bytes()
}

func DecodeRealm(data []byte) (*Realm, error) {
	r := codec.NewReader(data)
	if err := expectType(r, AccountTypeRealm); err != nil {
		return nil, err
	}
	realm := &Realm{
		CommunityMint: r.Pubkey(),
		CouncilMint:   r.OptionPubkey(),
		Authority:     r.OptionPubkey(),
		Name:          r.Text(),
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode realm: %w", err)
	}
	return realm, nil
}

// HasGoverningMint reports whether mint is the community or council mint.
func (r *Realm) HasGoverningMint(mint domain.Pubkey) bool {
	if r.CommunityMint == mint {
		return true
	}
	return r.CouncilMint != nil && *r.CouncilMint == mint
}

// TokenOwnerRecord is a member's deposit of governing tokens in a realm.
type TokenOwnerRecord struct {
	Realm                       domain.Pubkey
	GoverningTokenMint          domain.Pubkey
	GoverningTokenOwner         domain.Pubkey
	GoverningTokenDepositAmount uint64
	UnrelinquishedVotesCount    uint64
	GovernanceDelegate          *domain.Pubkey
}

func (t *TokenOwnerRecord) Encode() []byte {
	w := codec.NewWriter(1 + 3*domain.PubkeySize + 16 + 33)
	w.U8(uint8(AccountTypeTokenOwnerRecord))
	w.Pubkey(t.Realm)
	w.Pubkey(t.GoverningTokenMint)
	w.Pubkey(t.GoverningTokenOwner)
	w.U64(t.GoverningTokenDepositAmount)
	w.U64(t.UnrelinquishedVotesCount)
	w.OptionPubkey(t.GovernanceDelegate)
	return w.Bytes()
}

func DecodeTokenOwnerRecord(data []byte) (*TokenOwnerRecord, error) {
	r := codec.NewReader(data)
	if err := expectType(r, AccountTypeTokenOwnerRecord); err != nil {
		return nil, err
	}
	rec := &TokenOwnerRecord{
		Realm:                       r.Pubkey(),
		GoverningTokenMint:          r.Pubkey(),
		GoverningTokenOwner:         r.Pubkey(),
		GoverningTokenDepositAmount: r.U64(),
		UnrelinquishedVotesCount:    r.U64(),
		GovernanceDelegate:          r.OptionPubkey(),
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode token owner record: %w", err)
	}
	return rec, nil
}

// IsOwnerOrDelegate reports whether signer may act for the record's owner.
func (t *TokenOwnerRecord) IsOwnerOrDelegate(signer domain.Pubkey) bool {
	if signer == t.GoverningTokenOwner {
		return true
	}
	return t.GovernanceDelegate != nil && *t.GovernanceDelegate == signer
}

// ProposalState mirrors the engine's proposal lifecycle.
type ProposalState uint8

const (
	ProposalStateDraft ProposalState = iota
	ProposalStateSigningOff
	ProposalStateVoting
	ProposalStateSucceeded
	ProposalStateExecuting
	ProposalStateCompleted
	ProposalStateCancelled
	ProposalStateDefeated
	ProposalStateExecutingWithErrors
	ProposalStateVetoed
)

func (s ProposalState) String() string {
	switch s {
	case ProposalStateDraft:
		return "Draft"
	case ProposalStateSigningOff:
		return "SigningOff"
	case ProposalStateVoting:
		return "Voting"
	case ProposalStateSucceeded:
		return "Succeeded"
	case ProposalStateExecuting:
		return "Executing"
	case ProposalStateCompleted:
		return "Completed"
	case ProposalStateCancelled:
		return "Cancelled"
	case ProposalStateDefeated:
		return "Defeated"
	case ProposalStateExecutingWithErrors:
		return "ExecutingWithErrors"
	case ProposalStateVetoed:
		return "Vetoed"
	default:
		return "Unknown"
	}
}

// Proposal carries the fields plugins need: the governing mint it is voted
// with, its state and when voting ends.
type Proposal struct {
	Governance         domain.Pubkey
	Realm              domain.Pubkey
	GoverningTokenMint domain.Pubkey
	State              ProposalState
	VotingBaseEnd      domain.UnixTimestamp
	VotingCoolOffTime  uint32
}

func (p *Proposal) Encode() []byte {
	w := codec.NewWriter(1 + 3*domain.PubkeySize + 1 + 8 + 4)
	w.U8(uint8(AccountTypeProposal))
	w.Pubkey(p.Governance)
	w.Pubkey(p.Realm)
	w.Pubkey(p.GoverningTokenMint)
	w.U8(uint8(p.State))
	w.I64(int64(p.VotingBaseEnd))
	w.U32(p.VotingCoolOffTime)
	return w.Bytes()
}

func DecodeProposal(data []byte) (*Proposal, error) {
	r := codec.NewReader(data)
	if err := expectType(r, AccountTypeProposal); err != nil {
		return nil, err
	}
	p := &Proposal{
		Governance:         r.Pubkey(),
		Realm:              r.Pubkey(),
		GoverningTokenMint: r.Pubkey(),
		State:              ProposalState(r.U8()),
		VotingBaseEnd:      domain.UnixTimestamp(r.I64()),
		VotingCoolOffTime:  r.U32(),
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode proposal: %w", err)
	}
	return p, nil
}

// VotingEnd is the moment no vote can be cast or withdrawn any more,
// including the cool-off period.
func (p *Proposal) VotingEnd() domain.UnixTimestamp {
	return p.VotingBaseEnd + domain.UnixTimestamp(p.VotingCoolOffTime)
}

// VoteRecord is the engine's record of one owner's vote on one proposal.
type VoteRecord struct {
	Proposal            domain.Pubkey
	GoverningTokenOwner domain.Pubkey
	IsRelinquished      bool
	VoterWeight         uint64
}

func (v *VoteRecord) Encode() []byte {
	w := codec.NewWriter(1 + 2*domain.PubkeySize + 1 + 8)
	w.U8(uint8(AccountTypeVoteRecord))
	w.Pubkey(v.Proposal)
	w.Pubkey(v.GoverningTokenOwner)
	w.Bool(v.IsRelinquished)
	w.U64(v.VoterWeight)
	return w.Bytes()
}

func DecodeVoteRecord(data []byte) (*VoteRecord, error) {
	r := codec.NewReader(data)
	if err := expectType(r, AccountTypeVoteRecord); err != nil {
		return nil, err
	}
	v := &VoteRecord{
		Proposal:            r.Pubkey(),
		GoverningTokenOwner: r.Pubkey(),
		IsRelinquished:      r.Bool(),
		VoterWeight:         r.U64(),
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode vote record: %w", err)
	}
	return v, nil
}

func expectType(r *codec.Reader, want AccountType) error {
	got := AccountType(r.U8())
	if err := r.Err(); err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: account type %d, want %d", ErrInvalidAccountType, got, want)
	}
	return nil
}

// TokenOwnerRecordAddress derives a member's token owner record address.
func TokenOwnerRecordAddress(program, realm, mint, owner domain.Pubkey) domain.Pubkey {
	return domain.DeriveAddress(program, []byte("governance"), realm.Bytes(), mint.Bytes(), owner.Bytes())
}

// VoteRecordAddress derives the engine's vote record for a proposal and token owner record.
func VoteRecordAddress(program, proposal, tokenOwnerRecord domain.Pubkey) domain.Pubkey {
	return domain.DeriveAddress(program, []byte("governance"), proposal.Bytes(), tokenOwnerRecord.Bytes())
}
