package domain

import dErrors "voterweight/pkg/domain-errors"

// VoterWeightAction scopes a computed weight to one governance action.
// The numeric values are part of the binary record contract.
type VoterWeightAction uint8

const (
	ActionCastVote VoterWeightAction = iota
	ActionCommentProposal
	ActionCreateGovernance
	ActionCreateProposal
	ActionSignOffProposal
)

var actionNames = map[VoterWeightAction]string{
	ActionCastVote:         "CastVote",
	ActionCommentProposal:  "CommentProposal",
	ActionCreateGovernance: "CreateGovernance",
	ActionCreateProposal:   "CreateProposal",
	ActionSignOffProposal:  "SignOffProposal",
}

// ParseVoterWeightAction constructs an action from its name.
//
// Errors: CodeInvalidInput when the name is empty or unknown.
func ParseVoterWeightAction(s string) (VoterWeightAction, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "action cannot be empty")
	}
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid voter weight action")
}

func (a VoterWeightAction) IsValid() bool {
	_, ok := actionNames[a]
	return ok
}

func (a VoterWeightAction) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

func (a VoterWeightAction) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid voter weight action")
	}
	return []byte(a.String()), nil
}

func (a *VoterWeightAction) UnmarshalText(text []byte) error {
	parsed, err := ParseVoterWeightAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
