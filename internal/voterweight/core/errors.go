package core

import dErrors "voterweight/pkg/domain-errors"

var (
	ErrSignerRequired = dErrors.Define(dErrors.CodeUnauthorized,
		"signer_required", "a signed request is required")
	ErrInvalidRealmAuthority = dErrors.Define(dErrors.CodeUnauthorized,
		"invalid_realm_authority", "signer is not the realm authority")
	ErrInvalidTokenOwnerForVoterWeightRecord = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_token_owner_for_voter_weight_record", "token owner record and voter weight record owners differ")
	ErrInvalidVoterWeightRecordRealm = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_voter_weight_record_realm", "voter weight record belongs to another realm")
	ErrInvalidVoterWeightRecordMint = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_voter_weight_record_mint", "voter weight record is for another governing mint")
	ErrInvalidMaxVoterWeightRecordRealm = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_max_voter_weight_record_realm", "max voter weight record belongs to another realm")
	ErrInvalidMaxVoterWeightRecordMint = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_max_voter_weight_record_mint", "max voter weight record is for another governing mint")
	ErrVoterWeightRecordExists = dErrors.Define(dErrors.CodeConflict,
		"voter_weight_record_exists", "voter weight record already exists")
	ErrMaxVoterWeightRecordExists = dErrors.Define(dErrors.CodeConflict,
		"max_voter_weight_record_exists", "max voter weight record already exists")
	ErrRegistrarExists = dErrors.Define(dErrors.CodeConflict,
		"registrar_exists", "registrar already exists for this realm and mint")
	ErrAccountNotFound = dErrors.Define(dErrors.CodeNotFound,
		"account_not_found", "account not found")
	ErrInvalidAccountOwner = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_account_owner", "account is not owned by the expected program")
	ErrInvalidAccountData = dErrors.Define(dErrors.CodeInvalidInput,
		"invalid_account_data", "account data could not be decoded")
	ErrArithmeticOverflow = dErrors.Define(dErrors.CodeOverflow,
		"arithmetic_overflow", "weight arithmetic overflowed")
	ErrConcurrentCreate = dErrors.Define(dErrors.CodeDuplicateUse,
		"concurrent_create", "account was created by a concurrent operation")
	ErrConcurrentUpdate = dErrors.Define(dErrors.CodeConflict,
		"concurrent_update", "accounts changed under a concurrent operation; retry")
	ErrLedgerUnavailable = dErrors.Define(dErrors.CodeInternal,
		"ledger_unavailable", "ledger unavailable")
)
