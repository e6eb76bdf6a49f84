package domain

// Slot is the ledger-wide monotonically increasing sequence number used as a
// coarse clock for freshness checks.
type Slot uint64

// UnixTimestamp is a wall-clock time in seconds, as reported by the ledger clock.
type UnixTimestamp int64
