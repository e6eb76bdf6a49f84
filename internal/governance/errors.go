package governance

import dErrors "voterweight/pkg/domain-errors"

var (
	ErrInvalidAccountOwner = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_governance_account_owner", "account is not owned by the governance program")
	ErrInvalidAccountType = dErrors.Define(dErrors.CodeInvalidInput,
		"invalid_governance_account_type", "invalid governance account type")
	ErrInvalidGoverningTokenMint = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_governing_token_mint", "mint is neither the realm's community nor council mint")
	ErrInvalidRealmForTokenOwnerRecord = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_realm_for_token_owner_record", "token owner record belongs to another realm")
	ErrInvalidGoverningMintForTokenOwnerRecord = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_governing_mint_for_token_owner_record", "token owner record is for another governing mint")
	ErrGoverningTokenOwnerOrDelegateMustSign = dErrors.Define(dErrors.CodeUnauthorized,
		"governing_token_owner_or_delegate_must_sign", "governing token owner or delegate must sign")
	ErrInvalidProposalForMint = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_governing_mint_for_proposal", "proposal is voted with another governing mint")
)
