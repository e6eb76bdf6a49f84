//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"voterweight/internal/ledger"
	"voterweight/internal/ledger/storetest"
	"voterweight/pkg/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)

	storetest.Run(t, func(t *testing.T) ledger.Store {
		require.NoError(t, rc.FlushAll(context.Background()))
		return New(rc.Client)
	})
}
