package service

import dErrors "voterweight/pkg/domain-errors"

var (
	ErrMissingPreviousVoterWeightPlugin = dErrors.Define(dErrors.CodeInvalidInput,
		"missing_previous_voter_weight_plugin", "previous voter weight plugin required but not provided")
	ErrInvalidGatewayToken = dErrors.Define(dErrors.CodeIdentityMismatch,
		"invalid_gateway_token", "invalid gateway token")
)
