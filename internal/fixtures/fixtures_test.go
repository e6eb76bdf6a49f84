package fixtures

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterweight/internal/asset"
	"voterweight/internal/gatekeeper"
	"voterweight/internal/governance"
	"voterweight/internal/ledger"
	"voterweight/internal/staking"
	"voterweight/internal/token"
	"voterweight/pkg/domain"
)

func byAddress(accounts []ledger.Account) map[domain.Pubkey]ledger.Account {
	out := make(map[domain.Pubkey]ledger.Account, len(accounts))
	for _, acc := range accounts {
		out[acc.Address] = acc
	}
	return out
}

func TestLoad(t *testing.T) {
	gov := domain.NewUniquePubkey()
	realm := domain.NewUniquePubkey()
	mint := domain.NewUniquePubkey()
	owner := domain.NewUniquePubkey()
	proposal := domain.NewUniquePubkey()
	holding := domain.NewUniquePubkey()
	pool := domain.NewUniquePubkey()
	receipt := domain.NewUniquePubkey()
	nft := domain.NewUniquePubkey()
	collection := domain.NewUniquePubkey()
	pass := domain.NewUniquePubkey()
	network := domain.NewUniquePubkey()

	doc := strings.NewReplacer(
		"$GOV", gov.String(),
		"$REALM", realm.String(),
		"$MINT", mint.String(),
		"$OWNER", owner.String(),
		"$PROPOSAL", proposal.String(),
		"$HOLDING", holding.String(),
		"$POOL", pool.String(),
		"$RECEIPT", receipt.String(),
		"$NFT", nft.String(),
		"$COLLECTION", collection.String(),
		"$PASS", pass.String(),
		"$NETWORK", network.String(),
	).Replace(`
governance_program: $GOV
realms:
  - address: $REALM
    name: Example DAO
    community_mint: $MINT
token_owner_records:
  - realm: $REALM
    governing_token_mint: $MINT
    governing_token_owner: $OWNER
    deposit_amount: 10
proposals:
  - address: $PROPOSAL
    realm: $REALM
    governing_token_mint: $MINT
    state: Voting
    voting_base_end: 1700000000
vote_records:
  - proposal: $PROPOSAL
    token_owner_record: $OWNER
    governing_token_owner: $OWNER
    voter_weight: 4
mints:
  - address: $MINT
    supply: 1000
    decimals: 6
token_accounts:
  - address: $HOLDING
    mint: $MINT
    owner: $OWNER
    amount: 250
    frozen: true
stake_pools:
  - address: $POOL
    mint: $MINT
    stake_mint: $MINT
    max_duration: 100
stake_deposit_receipts:
  - address: $RECEIPT
    owner: $OWNER
    stake_pool: $POOL
    lockup_duration: 50
    deposit_amount: 20
assets:
  - address: $NFT
    owner: $OWNER
    name: Badge
    collection: $COLLECTION
    verified: true
gateway_passes:
  - address: $PASS
    owner: $OWNER
    gatekeeper_network: $NETWORK
    state: revoked
    expire_time: 1800000000
`)

	accounts, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, accounts, 10)
	got := byAddress(accounts)

	realmAcc := got[realm]
	assert.Equal(t, gov, realmAcc.Owner)
	r, err := governance.GetRealm(&realmAcc, gov)
	require.NoError(t, err)
	assert.Equal(t, "Example DAO", r.Name)

	torAcc, ok := got[governance.TokenOwnerRecordAddress(gov, realm, mint, owner)]
	require.True(t, ok, "token owner record address is derived")
	tor, err := governance.GetTokenOwnerRecord(&torAcc, gov)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), tor.GoverningTokenDepositAmount)

	p, err := governance.DecodeProposal(got[proposal].Data)
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalStateVoting, p.State)

	vote, err := governance.DecodeVoteRecord(got[governance.VoteRecordAddress(gov, proposal, owner)].Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), vote.VoterWeight)

	assert.Equal(t, token.ProgramID, got[mint].Owner)
	m, err := token.DecodeMint(got[mint].Data)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), m.Decimals)

	acc, err := token.DecodeAccount(got[holding].Data)
	require.NoError(t, err)
	assert.True(t, acc.IsFrozen())
	assert.Equal(t, uint64(250), acc.Amount)

	receiptAcc := got[receipt]
	dep, err := staking.GetStakeDepositReceipt(&receiptAcc)
	require.NoError(t, err)
	assert.Equal(t, pool, dep.StakePool)

	nftAcc := got[nft]
	a, err := asset.GetAsset(&nftAcc)
	require.NoError(t, err)
	require.NotNil(t, a.Collection)
	assert.True(t, a.Collection.Verified)

	passAcc := got[pass]
	gp, err := gatekeeper.GetPass(&passAcc)
	require.NoError(t, err)
	assert.Equal(t, gatekeeper.PassStateRevoked, gp.State)
	require.NotNil(t, gp.ExpireTime)
	assert.Equal(t, domain.UnixTimestamp(1800000000), *gp.ExpireTime)
}

func TestLoadRejects(t *testing.T) {
	key := domain.NewUniquePubkey().String()
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "governance accounts without a program",
			doc:  "realms:\n  - address: " + key + "\n    community_mint: " + key + "\n",
			want: "governance_program is required",
		},
		{
			name: "unknown proposal state",
			doc:  "governance_program: " + key + "\nproposals:\n  - address: " + key + "\n    state: Pending\n",
			want: `unknown state "Pending"`,
		},
		{
			name: "missing address",
			doc:  "mints:\n  - supply: 1\n",
			want: "mints[0]: address is required",
		},
		{
			name: "unknown field",
			doc:  "mintz: []\n",
			want: "decode fixtures",
		},
		{
			name: "bad pubkey",
			doc:  "mints:\n  - address: not-a-key\n",
			want: "decode fixtures",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("empty document seeds nothing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		accounts, err := LoadFile(path)
		require.NoError(t, err)
		assert.Empty(t, accounts)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
