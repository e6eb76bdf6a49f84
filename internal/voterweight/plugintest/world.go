// Package plugintest builds ledgers populated with governance, token and
// collaborator accounts for plugin tests.
package plugintest

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"voterweight/internal/events"
	"voterweight/internal/governance"
	"voterweight/internal/ledger"
	"voterweight/internal/ledger/store/memory"
	"voterweight/internal/platform/metrics"
	"voterweight/internal/token"
	"voterweight/internal/voterweight/core"
	"voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

// Genesis instant of every world.
const (
	StartSlot      domain.Slot          = 100
	StartTimestamp domain.UnixTimestamp = 1_000
)

// World is one realm with a single governing mint over an in-memory ledger.
type World struct {
	t testing.TB

	Store      *memory.InMemoryStore
	Clock      *ledger.ManualClock
	Ledger     *ledger.Ledger
	Events     *events.MemoryPublisher
	Metrics    *metrics.Metrics
	Registry   *prometheus.Registry
	Governance domain.Pubkey
	Realm      domain.Pubkey
	Mint       domain.Pubkey
	Authority  domain.Pubkey
}

// NewWorld seeds a realm whose community mint is Mint and whose authority
// is Authority.
func NewWorld(t testing.TB) *World {
	t.Helper()
	store := memory.New()
	clock := ledger.NewManualClock(StartSlot, StartTimestamp)
	l, err := ledger.New(store, clock)
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	w := &World{
		t:          t,
		Store:      store,
		Clock:      clock,
		Ledger:     l,
		Events:     events.NewMemoryPublisher(),
		Metrics:    metrics.New(reg),
		Registry:   reg,
		Governance: domain.NewUniquePubkey(),
		Realm:      domain.NewUniquePubkey(),
		Mint:       domain.NewUniquePubkey(),
		Authority:  domain.NewUniquePubkey(),
	}
	w.SeedRealm(w.Realm, &governance.Realm{
		CommunityMint: w.Mint,
		Authority:     &w.Authority,
		Name:          "test realm",
	})
	return w
}

// Runtime returns a runtime for a plugin wired to the world's ledger,
// metrics and event recorder.
func (w *World) Runtime(name string, program domain.Pubkey) *core.Runtime {
	w.t.Helper()
	rt, err := core.NewRuntime(core.Plugin{Name: name, ProgramID: program}, w.Ledger,
		core.WithMetrics(w.Metrics),
		core.WithPublisher(w.Events),
	)
	require.NoError(w.t, err)
	return rt
}

// Replica returns a runtime for the plugin on a second ledger over the world's
// store, the way another instance of the service would run it. The two ledgers
// share no locks.
func (w *World) Replica(name string, program domain.Pubkey) *core.Runtime {
	w.t.Helper()
	l, err := ledger.New(w.Store, w.Clock)
	require.NoError(w.t, err)
	rt, err := core.NewRuntime(core.Plugin{Name: name, ProgramID: program}, l, core.WithMetrics(w.Metrics))
	require.NoError(w.t, err)
	return rt
}

// Identity returns the registrar identity for the world's realm and mint.
func (w *World) Identity(predecessor *domain.Pubkey) models.RegistrarIdentity {
	return models.RegistrarIdentity{
		GovernanceProgramID:                w.Governance,
		Realm:                              w.Realm,
		GoverningTokenMint:                 w.Mint,
		PreviousVoterWeightPluginProgramID: predecessor,
	}
}

// Seed writes raw accounts.
func (w *World) Seed(accounts ...ledger.Account) {
	w.t.Helper()
	require.NoError(w.t, w.Ledger.Seed(context.Background(), accounts...))
}

func (w *World) SeedRealm(address domain.Pubkey, realm *governance.Realm) {
	w.Seed(ledger.Account{Address: address, Owner: w.Governance, Data: realm.Encode()})
}

// SeedTokenOwnerRecord seeds owner's token owner record for the world's
// realm and mint and returns its address.
func (w *World) SeedTokenOwnerRecord(owner domain.Pubkey, delegate *domain.Pubkey, deposit uint64) domain.Pubkey {
	address := governance.TokenOwnerRecordAddress(w.Governance, w.Realm, w.Mint, owner)
	w.Seed(ledger.Account{Address: address, Owner: w.Governance, Data: (&governance.TokenOwnerRecord{
		Realm:                       w.Realm,
		GoverningTokenMint:          w.Mint,
		GoverningTokenOwner:         owner,
		GoverningTokenDepositAmount: deposit,
		GovernanceDelegate:          delegate,
	}).Encode()})
	return address
}

// SeedProposal seeds a proposal voted with the world's mint.
func (w *World) SeedProposal(state governance.ProposalState, votingEnd domain.UnixTimestamp) domain.Pubkey {
	address := domain.NewUniquePubkey()
	w.Seed(ledger.Account{Address: address, Owner: w.Governance, Data: (&governance.Proposal{
		Governance:         domain.NewUniquePubkey(),
		Realm:              w.Realm,
		GoverningTokenMint: w.Mint,
		State:              state,
		VotingBaseEnd:      votingEnd,
	}).Encode()})
	return address
}

// SeedVoteRecord seeds the engine's vote record of tokenOwnerRecord on proposal.
func (w *World) SeedVoteRecord(proposal, tokenOwnerRecord, owner domain.Pubkey, relinquished bool) domain.Pubkey {
	address := governance.VoteRecordAddress(w.Governance, proposal, tokenOwnerRecord)
	w.Seed(ledger.Account{Address: address, Owner: w.Governance, Data: (&governance.VoteRecord{
		Proposal:            proposal,
		GoverningTokenOwner: owner,
		IsRelinquished:      relinquished,
	}).Encode()})
	return address
}

// SeedMint seeds a token mint with supply.
func (w *World) SeedMint(address domain.Pubkey, supply uint64, decimals uint8) {
	w.Seed(ledger.Account{Address: address, Owner: token.ProgramID, Data: (&token.Mint{
		Supply:        supply,
		Decimals:      decimals,
		IsInitialized: true,
	}).Encode()})
}

// SeedTokenAccount seeds a token account of mint held by owner.
func (w *World) SeedTokenAccount(mint, owner domain.Pubkey, amount uint64, state token.AccountState) domain.Pubkey {
	address := domain.NewUniquePubkey()
	w.Seed(ledger.Account{Address: address, Owner: token.ProgramID, Data: (&token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  state,
	}).Encode()})
	return address
}

// SeedPredecessorRecord seeds a voter weight record written by a predecessor plugin.
func (w *World) SeedPredecessorRecord(program domain.Pubkey, rec *models.VoterWeightRecord) domain.Pubkey {
	address := models.VoterWeightRecordAddress(program, rec.Realm, rec.GoverningTokenMint, rec.GoverningTokenOwner)
	w.Seed(ledger.Account{Address: address, Owner: program, Data: rec.Encode()})
	return address
}

// SeedPredecessorMaxRecord seeds a max voter weight record written by a predecessor plugin.
func (w *World) SeedPredecessorMaxRecord(program domain.Pubkey, rec *models.MaxVoterWeightRecord) domain.Pubkey {
	address := models.MaxVoterWeightRecordAddress(program, rec.Realm, rec.GoverningTokenMint)
	w.Seed(ledger.Account{Address: address, Owner: program, Data: rec.Encode()})
	return address
}

// VoterWeightRecord reads a committed voter weight record.
func (w *World) VoterWeightRecord(address domain.Pubkey) *models.VoterWeightRecord {
	w.t.Helper()
	acc, err := w.Ledger.Get(context.Background(), address)
	require.NoError(w.t, err)
	rec, err := models.DecodeVoterWeightRecord(acc.Data)
	require.NoError(w.t, err)
	return rec
}

// MaxVoterWeightRecord reads a committed max voter weight record.
func (w *World) MaxVoterWeightRecord(address domain.Pubkey) *models.MaxVoterWeightRecord {
	w.t.Helper()
	acc, err := w.Ledger.Get(context.Background(), address)
	require.NoError(w.t, err)
	rec, err := models.DecodeMaxVoterWeightRecord(acc.Data)
	require.NoError(w.t, err)
	return rec
}

// Account reads a committed account.
func (w *World) Account(address domain.Pubkey) *ledger.Account {
	w.t.Helper()
	acc, err := w.Ledger.Get(context.Background(), address)
	require.NoError(w.t, err)
	return acc
}

// Exists reports whether address has committed state.
func (w *World) Exists(address domain.Pubkey) bool {
	w.t.Helper()
	_, err := w.Ledger.Get(context.Background(), address)
	return err == nil
}
