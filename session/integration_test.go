//go:build integration

package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("DASHCTL_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewRedisStore(ctx, RedisConfig{
		Addr:      addr,
		KeyPrefix: "dashctl:test:" + t.Name() + ":",
		TTL:       time.Minute,
	}, zerolog.Nop())
	if err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLStore_Postgres_Integration(t *testing.T) {
	dsn := os.Getenv("DASHCTL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("DASHCTL_TEST_POSTGRES_DSN not set")
	}

	s, err := OpenSQL(context.Background(), BackendPostgres, dsn, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	for _, key := range []string{KeyAccessToken, KeyResetEmail, KeyResetToken} {
		require.NoError(t, s.Delete(context.Background(), key))
	}
	exerciseStore(t, s)
}
