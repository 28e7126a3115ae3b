package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/souqly/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown JTI is not revoked", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()

		revoked, err := blacklist.IsRevoked(ctx, "jti-unknown")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revoked JTI is reported revoked", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()

		err := blacklist.Revoke(ctx, "jti-1", time.Hour)
		require.NoError(t, err)

		revoked, err := blacklist.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("revocation lapses with the token TTL", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()

		err := blacklist.Revoke(ctx, "jti-2", -time.Second)
		require.NoError(t, err)

		revoked, err := blacklist.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revocations are independent per JTI", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()

		require.NoError(t, blacklist.Revoke(ctx, "jti-a", time.Hour))

		revoked, err := blacklist.IsRevoked(ctx, "jti-b")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
