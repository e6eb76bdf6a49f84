package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerPublisher(t *testing.T) {
	ctx := context.Background()
	brokerDown := errors.New("broker down")

	inner := NewMemoryPublisher()
	p := NewBreakerPublisher(inner, 2, time.Minute, nil)
	now := time.Unix(1_700_000_000, 0)
	p.breaker.now = func() time.Time { return now }

	inner.FailWith(brokerDown)
	assert.ErrorIs(t, p.Publish(ctx, Event{ID: "1"}), brokerDown)
	assert.ErrorIs(t, p.Publish(ctx, Event{ID: "2"}), brokerDown)

	inner.FailWith(nil)
	assert.ErrorIs(t, p.Publish(ctx, Event{ID: "3"}), ErrCircuitOpen, "open circuit sheds events")
	assert.Empty(t, inner.Events())

	now = now.Add(2 * time.Minute)
	require.NoError(t, p.Publish(ctx, Event{ID: "4"}), "half-open lets one call through")
	require.NoError(t, p.Publish(ctx, Event{ID: "5"}))
	assert.Len(t, inner.Events(), 2)
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryPublisher()
	p := NewBreakerPublisher(inner, 3, time.Minute, nil)
	now := time.Unix(1_700_000_000, 0)
	p.breaker.now = func() time.Time { return now }

	inner.FailWith(errors.New("down"))
	for i := 0; i < 3; i++ {
		_ = p.Publish(ctx, Event{})
	}
	now = now.Add(2 * time.Minute)
	assert.Error(t, p.Publish(ctx, Event{}))

	inner.FailWith(nil)
	assert.ErrorIs(t, p.Publish(ctx, Event{}), ErrCircuitOpen)
}
