package ledger

import (
	"sync"
	"time"

	"voterweight/pkg/domain"
)

// Instant is the ledger clock as observed by one unit of work.
type Instant struct {
	Slot      domain.Slot
	Timestamp domain.UnixTimestamp
}

// Clock reports the current slot and unix timestamp.
type Clock interface {
	Now() Instant
}

// ManualClock is a Clock moved explicitly by tests and fixtures.
type ManualClock struct {
	mu  sync.Mutex
	now Instant
}

func NewManualClock(slot domain.Slot, ts domain.UnixTimestamp) *ManualClock {
	return &ManualClock{now: Instant{Slot: slot, Timestamp: ts}}
}

func (c *ManualClock) Now() Instant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to an exact instant.
func (c *ManualClock) Set(slot domain.Slot, ts domain.UnixTimestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Instant{Slot: slot, Timestamp: ts}
}

// Advance moves the clock forward by slots, keeping the timestamp in step
// with the given slot duration.
func (c *ManualClock) Advance(slots uint64, slotDuration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now.Slot += domain.Slot(slots)
	c.now.Timestamp += domain.UnixTimestamp((time.Duration(slots) * slotDuration) / time.Second)
}

// WallClock derives slots from elapsed wall time since genesis.
type WallClock struct {
	genesis      time.Time
	slotDuration time.Duration
	now          func() time.Time
}

// NewWallClock builds a clock ticking one slot per slotDuration since genesis.
func NewWallClock(genesis time.Time, slotDuration time.Duration) *WallClock {
	if slotDuration <= 0 {
		slotDuration = 400 * time.Millisecond
	}
	return &WallClock{genesis: genesis, slotDuration: slotDuration, now: time.Now}
}

func (c *WallClock) Now() Instant {
	now := c.now()
	elapsed := now.Sub(c.genesis)
	if elapsed < 0 {
		elapsed = 0
	}
	return Instant{
		Slot:      domain.Slot(elapsed / c.slotDuration),
		Timestamp: domain.UnixTimestamp(now.Unix()),
	}
}
