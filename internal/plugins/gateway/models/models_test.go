package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
)

func TestDecodeRegistrar(t *testing.T) {
	prev := domain.NewUniquePubkey()
	reg := &Registrar{
		RegistrarIdentity: vwmodels.RegistrarIdentity{
			Realm:                              domain.NewUniquePubkey(),
			PreviousVoterWeightPluginProgramID: &prev,
		},
		GatekeeperNetwork: domain.NewUniquePubkey(),
	}

	got, err := DecodeRegistrar(reg.Encode())
	require.NoError(t, err)
	assert.Equal(t, reg.GatekeeperNetwork, got.GatekeeperNetwork)
	assert.True(t, got.HasPredecessor())

	_, err = DecodeRegistrar(reg.Encode()[:40])
	assert.Error(t, err)
}
