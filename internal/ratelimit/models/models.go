// Package models holds the rate limiting result shared by the bucket stores
// and the HTTP middleware.
package models

import "time"

// Class groups endpoints that share one budget.
type Class string

const (
	// ClassRead covers record lookups.
	ClassRead Class = "read"
	// ClassWrite covers every plugin operation.
	ClassWrite Class = "write"
)

// Result is the outcome of one bucket check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is in whole seconds and only set when Allowed is false.
	RetryAfter int
}

// ExceededResponse is the 429 body.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Key builds the bucket key for one client within one class.
func Key(class Class, client string) string {
	return "vw:ratelimit:" + string(class) + ":" + client
}
