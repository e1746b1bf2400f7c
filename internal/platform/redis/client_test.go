package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/platform/config"
)

func TestNewRejectsBadConfig(t *testing.T) {
	t.Run("empty URL", func(t *testing.T) {
		_, err := New(context.Background(), config.RedisConfig{})
		require.Error(t, err)
	})

	t.Run("unparseable URL", func(t *testing.T) {
		_, err := New(context.Background(), config.RedisConfig{URL: "not-a-redis-url"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse redis URL")
	})
}
