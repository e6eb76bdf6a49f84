package gatekeeper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterweight/internal/ledger"
	"voterweight/pkg/domain"
)

func TestPassValidity(t *testing.T) {
	expires := domain.UnixTimestamp(1_000)
	pass := &Pass{Owner: domain.NewUniquePubkey(), GatekeeperNetwork: domain.NewUniquePubkey(), ExpireTime: &expires}

	got, err := GetPass(&ledger.Account{Owner: ProgramID, Data: pass.Encode()})
	require.NoError(t, err)
	assert.Equal(t, pass, got)

	assert.True(t, got.IsValid(999))
	assert.False(t, got.IsValid(1_000))

	got.State = PassStateFrozen
	assert.False(t, got.IsValid(0))
}

func TestGetPassRejectsForeignAccounts(t *testing.T) {
	pass := &Pass{}
	_, err := GetPass(&ledger.Account{Owner: domain.NewUniquePubkey(), Data: pass.Encode()})
	assert.ErrorIs(t, err, ErrInvalidAccountOwner)

	_, err = GetPass(&ledger.Account{Owner: ProgramID, Data: []byte{9}})
	assert.Error(t, err)
}
