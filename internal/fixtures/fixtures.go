// Package fixtures reads external accounts (realms, token accounts, stake
// receipts, assets, passes) from YAML so a fresh ledger has something to
// compute weight from.
package fixtures

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"voterweight/internal/asset"
	"voterweight/internal/gatekeeper"
	"voterweight/internal/governance"
	"voterweight/internal/ledger"
	"voterweight/internal/staking"
	"voterweight/internal/token"
	"voterweight/pkg/domain"
)

// File is the YAML document. Accounts owned by the governance engine need
// governance_program; token owner and vote record addresses are derived when
// left out.
type File struct {
	GovernanceProgram    domain.Pubkey         `yaml:"governance_program"`
	Realms               []Realm               `yaml:"realms"`
	TokenOwnerRecords    []TokenOwnerRecord    `yaml:"token_owner_records"`
	Proposals            []Proposal            `yaml:"proposals"`
	VoteRecords          []VoteRecord          `yaml:"vote_records"`
	Mints                []Mint                `yaml:"mints"`
	TokenAccounts        []TokenAccount        `yaml:"token_accounts"`
	StakePools           []StakePool           `yaml:"stake_pools"`
	StakeDepositReceipts []StakeDepositReceipt `yaml:"stake_deposit_receipts"`
	Assets               []Asset               `yaml:"assets"`
	GatewayPasses        []GatewayPass         `yaml:"gateway_passes"`
}

type Realm struct {
	Address       domain.Pubkey  `yaml:"address"`
	Name          string         `yaml:"name"`
	CommunityMint domain.Pubkey  `yaml:"community_mint"`
	CouncilMint   *domain.Pubkey `yaml:"council_mint"`
	Authority     *domain.Pubkey `yaml:"authority"`
}

type TokenOwnerRecord struct {
	Address             domain.Pubkey  `yaml:"address"`
	Realm               domain.Pubkey  `yaml:"realm"`
	GoverningTokenMint  domain.Pubkey  `yaml:"governing_token_mint"`
	GoverningTokenOwner domain.Pubkey  `yaml:"governing_token_owner"`
	DepositAmount       uint64         `yaml:"deposit_amount"`
	UnrelinquishedVotes uint64         `yaml:"unrelinquished_votes"`
	GovernanceDelegate  *domain.Pubkey `yaml:"governance_delegate"`
}

type Proposal struct {
	Address            domain.Pubkey `yaml:"address"`
	Governance         domain.Pubkey `yaml:"governance"`
	Realm              domain.Pubkey `yaml:"realm"`
	GoverningTokenMint domain.Pubkey `yaml:"governing_token_mint"`
	State              string        `yaml:"state"`
	VotingBaseEnd      int64         `yaml:"voting_base_end"`
	VotingCoolOffTime  uint32        `yaml:"voting_cool_off_time"`
}

type VoteRecord struct {
	Address             domain.Pubkey `yaml:"address"`
	Proposal            domain.Pubkey `yaml:"proposal"`
	TokenOwnerRecord    domain.Pubkey `yaml:"token_owner_record"`
	GoverningTokenOwner domain.Pubkey `yaml:"governing_token_owner"`
	Relinquished        bool          `yaml:"relinquished"`
	VoterWeight         uint64        `yaml:"voter_weight"`
}

type Mint struct {
	Address  domain.Pubkey `yaml:"address"`
	Supply   uint64        `yaml:"supply"`
	Decimals uint8         `yaml:"decimals"`
}

type TokenAccount struct {
	Address domain.Pubkey `yaml:"address"`
	Mint    domain.Pubkey `yaml:"mint"`
	Owner   domain.Pubkey `yaml:"owner"`
	Amount  uint64        `yaml:"amount"`
	Frozen  bool          `yaml:"frozen"`
}

type StakePool struct {
	Address     domain.Pubkey `yaml:"address"`
	Authority   domain.Pubkey `yaml:"authority"`
	Mint        domain.Pubkey `yaml:"mint"`
	StakeMint   domain.Pubkey `yaml:"stake_mint"`
	MinDuration uint64        `yaml:"min_duration"`
	MaxDuration uint64        `yaml:"max_duration"`
}

type StakeDepositReceipt struct {
	Address          domain.Pubkey `yaml:"address"`
	Owner            domain.Pubkey `yaml:"owner"`
	StakePool        domain.Pubkey `yaml:"stake_pool"`
	LockupDuration   uint64        `yaml:"lockup_duration"`
	DepositTimestamp int64         `yaml:"deposit_timestamp"`
	DepositAmount    uint64        `yaml:"deposit_amount"`
}

type Asset struct {
	Address    domain.Pubkey  `yaml:"address"`
	Owner      domain.Pubkey  `yaml:"owner"`
	Name       string         `yaml:"name"`
	Collection *domain.Pubkey `yaml:"collection"`
	Verified   bool           `yaml:"verified"`
}

type GatewayPass struct {
	Address           domain.Pubkey `yaml:"address"`
	Owner             domain.Pubkey `yaml:"owner"`
	GatekeeperNetwork domain.Pubkey `yaml:"gatekeeper_network"`
	Issuer            domain.Pubkey `yaml:"issuer"`
	State             string        `yaml:"state"`
	ExpireTime        *int64        `yaml:"expire_time"`
}

var (
	proposalStates = map[string]governance.ProposalState{}
	passStates     = map[string]gatekeeper.PassState{
		"":        gatekeeper.PassStateActive,
		"active":  gatekeeper.PassStateActive,
		"revoked": gatekeeper.PassStateRevoked,
		"frozen":  gatekeeper.PassStateFrozen,
	}
)

func init() {
	for s := governance.ProposalStateDraft; s <= governance.ProposalStateVetoed; s++ {
		proposalStates[s.String()] = s
	}
}

// LoadFile reads and decodes the fixture file at path.
func LoadFile(path string) ([]ledger.Account, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a fixture document into ledger accounts.
func Load(r io.Reader) ([]ledger.Account, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return file.Accounts()
}

// Accounts encodes every fixture in the account formats plugins read.
func (f *File) Accounts() ([]ledger.Account, error) {
	gov := f.GovernanceProgram
	needsGov := len(f.Realms)+len(f.TokenOwnerRecords)+len(f.Proposals)+len(f.VoteRecords) > 0
	if needsGov && gov.IsZero() {
		return nil, errors.New("governance_program is required for governance accounts")
	}

	var out []ledger.Account
	add := func(kind string, i int, address, owner domain.Pubkey, data []byte) error {
		if address.IsZero() {
			return fmt.Errorf("%s[%d]: address is required", kind, i)
		}
		out = append(out, ledger.Account{Address: address, Owner: owner, Data: data})
		return nil
	}

	for i, r := range f.Realms {
		realm := &governance.Realm{CommunityMint: r.CommunityMint, CouncilMint: r.CouncilMint, Authority: r.Authority, Name: r.Name}
		if err := add("realms", i, r.Address, gov, realm.Encode()); err != nil {
			return nil, err
		}
	}
	for i, t := range f.TokenOwnerRecords {
		address := t.Address
		if address.IsZero() {
			address = governance.TokenOwnerRecordAddress(gov, t.Realm, t.GoverningTokenMint, t.GoverningTokenOwner)
		}
		tor := &governance.TokenOwnerRecord{
			Realm:                       t.Realm,
			GoverningTokenMint:          t.GoverningTokenMint,
			GoverningTokenOwner:         t.GoverningTokenOwner,
			GoverningTokenDepositAmount: t.DepositAmount,
			UnrelinquishedVotesCount:    t.UnrelinquishedVotes,
			GovernanceDelegate:          t.GovernanceDelegate,
		}
		if err := add("token_owner_records", i, address, gov, tor.Encode()); err != nil {
			return nil, err
		}
	}
	for i, p := range f.Proposals {
		state, ok := proposalStates[p.State]
		if !ok {
			return nil, fmt.Errorf("proposals[%d]: unknown state %q", i, p.State)
		}
		proposal := &governance.Proposal{
			Governance:         p.Governance,
			Realm:              p.Realm,
			GoverningTokenMint: p.GoverningTokenMint,
			State:              state,
			VotingBaseEnd:      domain.UnixTimestamp(p.VotingBaseEnd),
			VotingCoolOffTime:  p.VotingCoolOffTime,
		}
		if err := add("proposals", i, p.Address, gov, proposal.Encode()); err != nil {
			return nil, err
		}
	}
	for i, v := range f.VoteRecords {
		address := v.Address
		if address.IsZero() {
			address = governance.VoteRecordAddress(gov, v.Proposal, v.TokenOwnerRecord)
		}
		vote := &governance.VoteRecord{Proposal: v.Proposal, GoverningTokenOwner: v.GoverningTokenOwner, IsRelinquished: v.Relinquished, VoterWeight: v.VoterWeight}
		if err := add("vote_records", i, address, gov, vote.Encode()); err != nil {
			return nil, err
		}
	}
	for i, m := range f.Mints {
		mint := &token.Mint{Supply: m.Supply, Decimals: m.Decimals, IsInitialized: true}
		if err := add("mints", i, m.Address, token.ProgramID, mint.Encode()); err != nil {
			return nil, err
		}
	}
	for i, a := range f.TokenAccounts {
		state := token.AccountStateInitialized
		if a.Frozen {
			state = token.AccountStateFrozen
		}
		acc := &token.Account{Mint: a.Mint, Owner: a.Owner, Amount: a.Amount, State: state}
		if err := add("token_accounts", i, a.Address, token.ProgramID, acc.Encode()); err != nil {
			return nil, err
		}
	}
	for i, p := range f.StakePools {
		pool := &staking.StakePool{
			Authority:   p.Authority,
			Mint:        p.Mint,
			StakeMint:   p.StakeMint,
			MinDuration: p.MinDuration,
			MaxDuration: p.MaxDuration,
		}
		if err := add("stake_pools", i, p.Address, staking.ProgramID, pool.Encode()); err != nil {
			return nil, err
		}
	}
	for i, d := range f.StakeDepositReceipts {
		receipt := &staking.StakeDepositReceipt{
			Owner:            d.Owner,
			Payer:            d.Owner,
			StakePool:        d.StakePool,
			LockupDuration:   d.LockupDuration,
			DepositTimestamp: domain.UnixTimestamp(d.DepositTimestamp),
			DepositAmount:    d.DepositAmount,
		}
		if err := add("stake_deposit_receipts", i, d.Address, staking.ProgramID, receipt.Encode()); err != nil {
			return nil, err
		}
	}
	for i, a := range f.Assets {
		nft := &asset.Asset{Owner: a.Owner, Name: a.Name}
		if a.Collection != nil {
			nft.Collection = &asset.Collection{Key: *a.Collection, Verified: a.Verified}
		}
		if err := add("assets", i, a.Address, asset.ProgramID, nft.Encode()); err != nil {
			return nil, err
		}
	}
	for i, p := range f.GatewayPasses {
		state, ok := passStates[p.State]
		if !ok {
			return nil, fmt.Errorf("gateway_passes[%d]: unknown state %q", i, p.State)
		}
		pass := &gatekeeper.Pass{Owner: p.Owner, GatekeeperNetwork: p.GatekeeperNetwork, Issuer: p.Issuer, State: state}
		if p.ExpireTime != nil {
			expires := domain.UnixTimestamp(*p.ExpireTime)
			pass.ExpireTime = &expires
		}
		if err := add("gateway_passes", i, p.Address, gatekeeper.ProgramID, pass.Encode()); err != nil {
			return nil, err
		}
	}
	return out, nil
}
