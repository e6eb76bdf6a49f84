package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterweight/pkg/domain"
)

func TestEventJSONUsesTextForms(t *testing.T) {
	record := domain.NewUniquePubkey()
	e := Event{
		Kind:   KindMaxVoterWeightUpdated,
		Record: record,
		Weight: 10,
		Action: domain.Some(domain.ActionCreateProposal),
	}

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, record.String(), fields["record"])
	assert.Equal(t, "CreateProposal", fields["action"])
	assert.NotContains(t, fields, "expiry", "administrator ceilings carry no expiry")
	assert.NotContains(t, fields, "governing_token_owner")
}
