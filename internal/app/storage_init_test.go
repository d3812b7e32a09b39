package app

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return log.NewEntry(logger)
}

func TestOpenStorage_Memory(t *testing.T) {
	t.Parallel()

	st, err := openStorage(context.Background(), Config{StorageDriver: StorageDriverMemory}, quietLogger())
	if err != nil {
		t.Fatalf("openStorage(memory) failed: %v", err)
	}
	defer st.Close()

	if _, err := st.GetItem(context.Background(), "missing"); !errors.Is(err, domain.ErrStorageKeyNotFound) {
		t.Fatalf("expected ErrStorageKeyNotFound, got %v", err)
	}
}

func TestOpenStorage_SQLite(t *testing.T) {
	t.Parallel()

	cfg := Config{
		StorageDriver: StorageDriverSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "nested", "unieats.db"),
		Namespace:     "test",
	}
	st, err := openStorage(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("openStorage(sqlite) failed: %v", err)
	}
	defer st.Close()

	if err := st.SetItem(context.Background(), "k", "v"); err != nil {
		t.Fatalf("set item: %v", err)
	}
	if _, ok := st.(domain.Pinger); !ok {
		t.Fatal("sqlite storage should implement Pinger")
	}
}

func TestOpenStorage_Redis(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)
	st, err := openStorage(context.Background(), Config{
		StorageDriver: StorageDriverRedis,
		RedisAddr:     srv.Addr(),
		Namespace:     "test",
	}, quietLogger())
	if err != nil {
		t.Fatalf("openStorage(redis) failed: %v", err)
	}
	defer st.Close()

	if err := st.SetItem(context.Background(), domain.CartStorageKey, "[]"); err != nil {
		t.Fatalf("set item: %v", err)
	}
	if !srv.Exists("unieats:test:" + domain.CartStorageKey) {
		t.Fatal("expected namespaced key in redis")
	}
}

func TestOpenStorage_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := openStorage(context.Background(), Config{
		StorageDriver: StorageDriverPostgres,
	}, quietLogger())
	if err == nil {
		t.Fatal("expected error when postgres driver is selected without DSN")
	}
}

func TestOpenStorage_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := openStorage(context.Background(), Config{
		StorageDriver: "mongo",
	}, quietLogger())
	if err == nil {
		t.Fatal("expected error for unsupported storage driver")
	}
}
