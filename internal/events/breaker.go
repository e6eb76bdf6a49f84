package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is shedding events.
var ErrCircuitOpen = errors.New("event publisher circuit open")

// circuitBreaker stops calls to an unhealthy broker. After threshold
// consecutive failures it opens for cooldown, then lets one call through.
type circuitBreaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration
	now       func() time.Time

	failures  int
	openUntil time.Time
	isOpen    bool
}

func newCircuitBreaker(threshold int, cooldown time.Duration) *circuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &circuitBreaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (cb *circuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if !cb.isOpen {
		return true
	}
	if cb.now().After(cb.openUntil) {
		// half-open: the next result decides
		cb.isOpen = false
		cb.failures = cb.threshold - 1
		return true
	}
	return false
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.isOpen = false
}

// recordFailure returns true when this failure opened the circuit.
func (cb *circuitBreaker) recordFailure() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	if !cb.isOpen && cb.failures >= cb.threshold {
		cb.isOpen = true
		cb.openUntil = cb.now().Add(cb.cooldown)
		return true
	}
	return false
}

// BreakerPublisher guards a Publisher with a circuit breaker. Events are
// notifications derived from committed ledger state, so shedding them while
// the broker is down never loses a weight; consumers re-read the record.
type BreakerPublisher struct {
	next    Publisher
	breaker *circuitBreaker
	logger  *slog.Logger
}

func NewBreakerPublisher(next Publisher, threshold int, cooldown time.Duration, logger *slog.Logger) *BreakerPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &BreakerPublisher{next: next, breaker: newCircuitBreaker(threshold, cooldown), logger: logger}
}

func (p *BreakerPublisher) Publish(ctx context.Context, events ...Event) error {
	if !p.breaker.allow() {
		return ErrCircuitOpen
	}
	if err := p.next.Publish(ctx, events...); err != nil {
		if p.breaker.recordFailure() {
			p.logger.WarnContext(ctx, "event publisher circuit opened", "error", err)
		}
		return err
	}
	p.breaker.recordSuccess()
	return nil
}

func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}
