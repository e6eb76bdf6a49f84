package staking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterweight/internal/ledger"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

func TestLockupEnd(t *testing.T) {
	r := &StakeDepositReceipt{DepositTimestamp: 50, LockupDuration: 1000}
	end, ok := r.LockupEnd()
	require.True(t, ok)
	assert.Equal(t, domain.UnixTimestamp(1050), end)

	r = &StakeDepositReceipt{DepositTimestamp: 10, LockupDuration: math.MaxUint64}
	_, ok = r.LockupEnd()
	assert.False(t, ok)
}

func TestGetStakeDepositReceipt(t *testing.T) {
	owner, pool := domain.NewUniquePubkey(), domain.NewUniquePubkey()
	receipt := &StakeDepositReceipt{Owner: owner, StakePool: pool, LockupDuration: 1000, DepositTimestamp: 50, DepositAmount: 100}

	got, err := GetStakeDepositReceipt(&ledger.Account{Owner: ProgramID, Data: receipt.Encode()})
	require.NoError(t, err)
	assert.Equal(t, receipt, got)

	_, err = GetStakeDepositReceipt(&ledger.Account{Owner: domain.NewUniquePubkey(), Data: receipt.Encode()})
	assert.ErrorIs(t, err, ErrInvalidAccountOwner)

	pool2 := &StakePool{Mint: domain.NewUniquePubkey()}
	_, err = GetStakeDepositReceipt(&ledger.Account{Owner: ProgramID, Data: pool2.Encode()})
	assert.ErrorIs(t, err, codec.ErrBadDiscriminator)
}
