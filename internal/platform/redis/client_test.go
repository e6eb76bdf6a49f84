package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voterweight/internal/platform/config"
)

func TestNew(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		client, err := New(context.Background(), config.Redis{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("malformed url", func(t *testing.T) {
		_, err := New(context.Background(), config.Redis{URL: "http://localhost:6379"})
		assert.ErrorContains(t, err, "parse redis URL")
	})
}
