package service

import dErrors "voterweight/pkg/domain-errors"

var (
	ErrGovernanceProgramNotConfigured = dErrors.Define(dErrors.CodeNotFound,
		"governance_program_not_configured", "governance program not configured")
	ErrGoverningTokenOwnerMustMatch = dErrors.Define(dErrors.CodeIdentityMismatch,
		"governing_token_owner_must_match", "governing token owner must match")
	ErrTokenOwnerRecordFromOwnRealmNotAllowed = dErrors.Define(dErrors.CodeIdentityMismatch,
		"token_owner_record_from_own_realm_not_allowed", "token owner record from own realm is not allowed")
	ErrMaxGovernanceProgramsReached = dErrors.Define(dErrors.CodeCapacityExceeded,
		"max_governance_programs_reached", "max governance programs reached")
	ErrInvalidChangeType = dErrors.Define(dErrors.CodeInvalidInput,
		"invalid_change_type", "change type must be upsert or remove")
)
