package service

import dErrors "voterweight/pkg/domain-errors"

var (
	ErrTokenAccountWrongOwner = dErrors.Define(dErrors.CodeIdentityMismatch,
		"token_account_wrong_owner", "all token accounts must be owned by the governing token owner")
	ErrTokenAccountWrongMint = dErrors.Define(dErrors.CodeIdentityMismatch,
		"token_account_wrong_mint", "all token accounts' mints must be included in the registrar")
	ErrTokenAccountNotLocked = dErrors.Define(dErrors.CodeInvalidInput,
		"token_account_not_locked", "all token accounts must be locked")
	ErrTokenAccountDuplicateMint = dErrors.Define(dErrors.CodeDuplicateUse,
		"token_account_duplicate_mint", "all token accounts' mints must be unique")
	ErrDuplicateMint = dErrors.Define(dErrors.CodeInvalidInput,
		"duplicate_mint", "mints must be unique")
	ErrTooManyMints = dErrors.Define(dErrors.CodeCapacityExceeded,
		"too_many_mints", "too many mints")
)
