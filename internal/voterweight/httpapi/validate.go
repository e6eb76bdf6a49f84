package httpapi

import (
	"fmt"

	"voterweight/pkg/domain"
	dErrors "voterweight/pkg/domain-errors"
)

// Key pairs a request field name with its decoded value.
type Key struct {
	Name  string
	Value domain.Pubkey
}

// RequireKeys fails on the first key left unset.
func RequireKeys(keys ...Key) error {
	for _, k := range keys {
		if k.Value.IsZero() {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s is required", k.Name))
		}
	}
	return nil
}

// RequireAction fails when action is absent. The zero action is CastVote,
// so requests carry it as a pointer.
func RequireAction(action *domain.VoterWeightAction) error {
	if action == nil {
		return dErrors.New(dErrors.CodeValidation, "action is required")
	}
	if !action.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "action is invalid")
	}
	return nil
}
