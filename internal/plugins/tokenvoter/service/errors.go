package service

import dErrors "voterweight/pkg/domain-errors"

var (
	ErrInvalidResizeMaxMints = dErrors.Define(dErrors.CodeInvalidInput,
		"invalid_resize_max_mints", "resizing max mints must grow the registrar")
	ErrMaxMintsReached = dErrors.Define(dErrors.CodeCapacityExceeded,
		"max_mints_reached", "registrar has no room for another mint")
	ErrMintNotFound = dErrors.Define(dErrors.CodeNotFound,
		"mint_not_found", "mint not found in mint configs")
	ErrVoterWeightOverflow = dErrors.Define(dErrors.CodeOverflow,
		"voter_weight_overflow", "math overflow in voter weight")
	ErrTokenAmountOverflow = dErrors.Define(dErrors.CodeOverflow,
		"token_amount_overflow", "math overflow in token amount")
	ErrOutOfBoundsDepositEntryIndex = dErrors.Define(dErrors.CodeInvalidInput,
		"out_of_bounds_deposit_entry_index", "index is out of deposit entry bounds")
	ErrDepositEntryInactive = dErrors.Define(dErrors.CodeNotFound,
		"deposit_entry_inactive", "deposit entry is not in use")
	ErrInsufficientDeposit = dErrors.Define(dErrors.CodeInvalidInput,
		"insufficient_deposit", "withdrawal exceeds the deposited amount")
	ErrInsufficientFunds = dErrors.Define(dErrors.CodeInvalidInput,
		"insufficient_funds", "deposit exceeds the token account balance")
	ErrCannotWithdraw = dErrors.Define(dErrors.CodeConflict,
		"cannot_withdraw", "cannot withdraw in the same slot as the deposit")
	ErrVotingTokenNonZero = dErrors.Define(dErrors.CodeConflict,
		"voting_token_non_zero", "voting tokens are not withdrawn")
	ErrUnrelinquishedVotes = dErrors.Define(dErrors.CodeConflict,
		"unrelinquished_votes", "cannot withdraw while votes are unrelinquished")
	ErrInvalidAuthority = dErrors.Define(dErrors.CodeUnauthorized,
		"invalid_authority", "invalid voter token authority")
	ErrGoverningTokenOwnerMustMatch = dErrors.Define(dErrors.CodeIdentityMismatch,
		"governing_token_owner_must_match", "governing token owner must match")
	ErrVoterExists = dErrors.Define(dErrors.CodeDuplicateUse,
		"voter_exists", "voter already exists")
)

var ErrTokenAccountFrozen = dErrors.Define(dErrors.CodeConflict,
	"token_account_frozen", "token account is frozen")
