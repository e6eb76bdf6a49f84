package memory

import (
	"testing"

	"voterweight/internal/ledger"
	"voterweight/internal/ledger/storetest"
)

func TestInMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ledger.Store {
		return New()
	})
}
