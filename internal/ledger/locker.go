package ledger

import (
	"bytes"
	"slices"
	"sync"

	"voterweight/pkg/domain"
)

// Locker serialises units of work that write the same accounts in this
// process. Keys are always acquired in sorted order so two operations with
// overlapping key sets cannot deadlock.
type Locker struct {
	mu    sync.Mutex
	locks map[domain.Pubkey]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[domain.Pubkey]*keyLock)}
}

// Lock acquires every key and returns the matching unlock func.
func (l *Locker) Lock(keys ...domain.Pubkey) func() {
	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, func(a, b domain.Pubkey) int {
		return bytes.Compare(a[:], b[:])
	})
	sorted = slices.Compact(sorted)

	held := make([]*keyLock, 0, len(sorted))
	for _, key := range sorted {
		l.mu.Lock()
		kl, ok := l.locks[key]
		if !ok {
			kl = &keyLock{}
			l.locks[key] = kl
		}
		kl.refs++
		l.mu.Unlock()

		kl.mu.Lock()
		held = append(held, kl)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			kl := held[i]
			kl.mu.Unlock()
			l.mu.Lock()
			kl.refs--
			if kl.refs == 0 {
				delete(l.locks, sorted[i])
			}
			l.mu.Unlock()
		}
	}
}
