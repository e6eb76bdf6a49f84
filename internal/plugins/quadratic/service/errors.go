package service

import dErrors "voterweight/pkg/domain-errors"

var (
	ErrMissingPreviousVoterWeightPlugin = dErrors.Define(dErrors.CodeInvalidInput,
		"missing_previous_voter_weight_plugin", "previous voter weight plugin required but not provided")
	ErrInvalidCoefficients = dErrors.Define(dErrors.CodeInvalidInput,
		"invalid_coefficients", "quadratic coefficients must be finite numbers")
)
