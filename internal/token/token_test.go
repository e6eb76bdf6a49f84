package token

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterweight/internal/ledger"
	"voterweight/pkg/domain"
)

func TestMintLayout(t *testing.T) {
	authority := domain.NewUniquePubkey()
	m := &Mint{MintAuthority: &authority, Supply: 1_000_000, Decimals: 6, IsInitialized: true}

	data := m.Encode()
	require.Len(t, data, MintSize)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(data[36:44]))
	assert.Equal(t, byte(6), data[44])

	got, err := GetMint(&ledger.Account{Owner: ProgramID, Data: data})
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), got.Supply)
	assert.Nil(t, got.FreezeAuthority)
}

func TestGetMintRejects(t *testing.T) {
	m := &Mint{Supply: 5, IsInitialized: true}

	_, err := GetMint(&ledger.Account{Owner: domain.NewUniquePubkey(), Data: m.Encode()})
	assert.ErrorIs(t, err, ErrInvalidAccountOwner)

	_, err = GetMint(&ledger.Account{Owner: ProgramID, Data: make([]byte, AccountSize)})
	assert.ErrorIs(t, err, ErrInvalidAccountSize)

	m.IsInitialized = false
	_, err = GetMint(&ledger.Account{Owner: ProgramID, Data: m.Encode()})
	assert.ErrorIs(t, err, ErrUninitialized)
}

func TestTokenAccountLayout(t *testing.T) {
	mint, owner := domain.NewUniquePubkey(), domain.NewUniquePubkey()
	a := &Account{Mint: mint, Owner: owner, Amount: 42, State: AccountStateFrozen}

	data := a.Encode()
	require.Len(t, data, AccountSize)
	assert.Equal(t, mint[:], data[0:32])
	assert.Equal(t, owner[:], data[32:64])
	assert.Equal(t, byte(AccountStateFrozen), data[108])

	got, err := GetAccount(&ledger.Account{Owner: ProgramID, Data: data})
	require.NoError(t, err)
	assert.True(t, got.IsFrozen())
	assert.Equal(t, uint64(42), got.Amount)
	assert.Nil(t, got.IsNative)
}
