package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

func setupTestRedis(t *testing.T, namespace string) (*Storage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), Options{Addr: mr.Addr()}, namespace)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStorage_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s, mr := setupTestRedis(t, "dev1")

	_, err := s.GetItem(ctx, domain.CartStorageKey)
	require.ErrorIs(t, err, domain.ErrStorageKeyNotFound)

	require.NoError(t, s.SetItem(ctx, domain.CartStorageKey, `[{"foodId":1,"quantity":2}]`))

	raw, err := mr.Get("unieats:dev1:foodOrderCart")
	require.NoError(t, err)
	require.Equal(t, `[{"foodId":1,"quantity":2}]`, raw)
	require.Zero(t, mr.TTL("unieats:dev1:foodOrderCart"))

	got, err := s.GetItem(ctx, domain.CartStorageKey)
	require.NoError(t, err)
	require.Equal(t, raw, got)

	require.NoError(t, s.RemoveItem(ctx, domain.CartStorageKey))
	require.False(t, mr.Exists("unieats:dev1:foodOrderCart"))
}

func TestStorage_ServerDown(t *testing.T) {
	ctx := context.Background()
	s, mr := setupTestRedis(t, "dev1")
	mr.Close()

	_, err := s.GetItem(ctx, "k")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrStorageKeyNotFound)
	require.Error(t, s.Ping(ctx))
}

func TestOpen_RequiresAddr(t *testing.T) {
	_, err := Open(context.Background(), Options{}, "x")
	require.Error(t, err)
}
