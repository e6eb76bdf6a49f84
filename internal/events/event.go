// Package events publishes a notification for every committed change to a
// voter weight output record, keyed by the record address so consumers see
// the updates of one record in order.
package events

import (
	"context"
	"time"

	"voterweight/pkg/domain"
)

// Kind names what happened to the record.
type Kind string

const (
	KindVoterWeightRecordCreated    Kind = "voter_weight_record_created"
	KindVoterWeightUpdated          Kind = "voter_weight_updated"
	KindMaxVoterWeightRecordCreated Kind = "max_voter_weight_record_created"
	KindMaxVoterWeightUpdated       Kind = "max_voter_weight_updated"
	KindRegistrarConfigured         Kind = "registrar_configured"
)

// Event is the JSON payload of a weight notification. Expiry is omitted
// when the record carries no expiry.
type Event struct {
	ID                  string                    `json:"id"`
	Kind                Kind                      `json:"kind"`
	Plugin              string                    `json:"plugin"`
	Operation           string                    `json:"operation"`
	Record              domain.Pubkey             `json:"record"`
	Realm               domain.Pubkey             `json:"realm"`
	GoverningTokenMint  domain.Pubkey             `json:"governing_token_mint"`
	GoverningTokenOwner *domain.Pubkey            `json:"governing_token_owner,omitempty"`
	Weight              uint64                    `json:"weight"`
	Expiry              *domain.Slot              `json:"expiry,omitempty"`
	Action              *domain.VoterWeightAction `json:"action,omitempty"`
	Target              *domain.Pubkey            `json:"target,omitempty"`
	Slot                domain.Slot               `json:"slot"`
	RequestID           string                    `json:"request_id,omitempty"`
	OccurredAt          time.Time                 `json:"occurred_at"`
}

// Publisher delivers events after the ledger commit that produced them.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}
