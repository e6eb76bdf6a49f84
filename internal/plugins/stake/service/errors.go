package service

import dErrors "voterweight/pkg/domain-errors"

var (
	ErrInvalidGoverningToken = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_governing_token", "the mint of the stake pool is different from the realm")
	ErrInvalidStakePool = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_stake_pool", "stake deposit receipt belongs to another stake pool")
	ErrVoterDoesNotOwnDepositReceipt = dErrors.Define(dErrors.CodeIdentityMismatch,
		"voter_does_not_own_deposit_receipt", "the owner of the receipt does not match")
	ErrDuplicatedReceiptDetected = dErrors.Define(dErrors.CodeDuplicateUse,
		"duplicated_receipt_detected", "the deposit receipt was already provided")
	ErrExpiredStakeDepositReceipt = dErrors.Define(dErrors.CodeExpired,
		"expired_stake_deposit_receipt", "the stake deposit receipt has already expired")
	ErrInvalidStakeDuration = dErrors.Define(dErrors.CodeExpired,
		"invalid_stake_duration", "the stake deposit receipt will expire before the proposal")
	ErrReceiptsCountMismatch = dErrors.Define(dErrors.CodeInvalidInput,
		"receipts_count_mismatch", "the stake deposit receipts count does not match")
	ErrProposalAccountIsRequired = dErrors.Define(dErrors.CodeInvalidInput,
		"proposal_account_is_required", "proposal account is required for the cast vote action")
	ErrActionTargetMismatch = dErrors.Define(dErrors.CodeIdentityMismatch,
		"action_target_mismatch", "action target is different from the proposal")
	ErrMaximumDepositsReached = dErrors.Define(dErrors.CodeCapacityExceeded,
		"maximum_deposits_reached", "maximum deposits length reached")
	ErrInvalidAction = dErrors.Define(dErrors.CodeInvalidInput,
		"invalid_action", "unknown voter weight action")
)
