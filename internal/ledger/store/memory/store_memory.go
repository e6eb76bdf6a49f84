package memory

import (
	"context"
	"fmt"
	"sync"

	"voterweight/internal/ledger"
	"voterweight/pkg/domain"
	"voterweight/pkg/platform/sentinel"
)

// InMemoryStore is a ledger.Store for tests and single-process deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[domain.Pubkey]ledger.Account
}

func New() *InMemoryStore {
	return &InMemoryStore{accounts: make(map[domain.Pubkey]ledger.Account)}
}

func (s *InMemoryStore) Get(_ context.Context, address domain.Pubkey) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[address]
	if !ok {
		return nil, fmt.Errorf("get account %s: %w", address, sentinel.ErrNotFound)
	}
	clone := acc.Clone()
	return &clone, nil
}

// Apply validates reads and creates before writing anything.
func (s *InMemoryStore) Apply(_ context.Context, reads []ledger.Read, changes []ledger.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range reads {
		var current *ledger.Account
		if acc, ok := s.accounts[r.Address]; ok {
			current = &acc
		}
		if !r.Matches(current) {
			return fmt.Errorf("account %s changed since read: %w", r.Address, sentinel.ErrConflict)
		}
	}
	for _, ch := range changes {
		switch ch.Kind {
		case ledger.ChangeCreate:
			if _, exists := s.accounts[ch.Account.Address]; exists {
				return fmt.Errorf("create account %s: %w", ch.Account.Address, sentinel.ErrAlreadyUsed)
			}
		case ledger.ChangePut, ledger.ChangeDelete:
		default:
			return fmt.Errorf("apply change %s: %w", ch.Kind, sentinel.ErrInvalidState)
		}
	}

	for _, ch := range changes {
		switch ch.Kind {
		case ledger.ChangeCreate, ledger.ChangePut:
			s.accounts[ch.Account.Address] = ch.Account.Clone()
		case ledger.ChangeDelete:
			delete(s.accounts, ch.Account.Address)
		}
	}
	return nil
}

// Len reports the number of stored accounts.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
