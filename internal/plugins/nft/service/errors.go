package service

import dErrors "voterweight/pkg/domain-errors"

var (
	ErrInvalidCollectionSize = dErrors.Define(dErrors.CodeInvalidInput,
		"invalid_collection_size", "collection size must be greater than zero")
	ErrMaxCollectionsReached = dErrors.Define(dErrors.CodeCapacityExceeded,
		"max_collections_reached", "the registrar holds its maximum number of collections")
	ErrCastVoteIsNotAllowed = dErrors.Define(dErrors.CodeInvalidInput,
		"cast_vote_is_not_allowed", "cast vote weight must be computed by casting an nft vote")
	ErrVoterDoesNotOwnNft = dErrors.Define(dErrors.CodeIdentityMismatch,
		"voter_does_not_own_nft", "the voter does not own the nft")
	ErrDuplicatedNftDetected = dErrors.Define(dErrors.CodeDuplicateUse,
		"duplicated_nft_detected", "the same nft was provided more than once")
	ErrMissingMetadataCollection = dErrors.Define(dErrors.CodeInvalidInput,
		"missing_metadata_collection", "the nft is not part of a collection")
	ErrCollectionMustBeVerified = dErrors.Define(dErrors.CodeIdentityMismatch,
		"collection_must_be_verified", "the nft collection claim is not verified")
	ErrCollectionNotFound = dErrors.Define(dErrors.CodeNotFound,
		"collection_not_found", "the collection is not configured for the registrar")
	ErrNftAlreadyVoted = dErrors.Define(dErrors.CodeDuplicateUse,
		"nft_already_voted", "the nft already voted on the proposal")
	ErrVoteRecordMustBeWithdrawn = dErrors.Define(dErrors.CodeConflict,
		"vote_record_must_be_withdrawn", "the vote must be withdrawn from the proposal first")
	ErrInvalidVoteRecordForNftVoteRecord = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_vote_record_for_nft_vote_record", "the vote record is not the voter's vote on the proposal")
	ErrVoterWeightRecordMustBeExpired = dErrors.Define(dErrors.CodeConflict,
		"voter_weight_record_must_be_expired", "the voter weight record is still in use")
	ErrInvalidProposalForNftVoteRecord = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_proposal_for_nft_vote_record", "the nft vote record is for another proposal")
	ErrInvalidTokenOwnerForNftVoteRecord = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_token_owner_for_nft_vote_record", "the nft vote record belongs to another owner")
	ErrNftVoteRecordsRequired = dErrors.Define(dErrors.CodeInvalidInput,
		"nft_vote_records_required", "at least one nft vote record must be relinquished")
	ErrInvalidAction = dErrors.Define(dErrors.CodeInvalidInput,
		"invalid_action", "unknown voter weight action")
)
