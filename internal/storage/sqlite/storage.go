package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

const (
	opTimeout = 3 * time.Second

	schemaDDL = `
CREATE TABLE IF NOT EXISTS client_storage (
    namespace  TEXT NOT NULL,
    item_key   TEXT NOT NULL,
    item_value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (namespace, item_key)
)`
)

// Storage: локальное файловое хранилище клиента на SQLite.
// Используется по умолчанию: переживает перезапуски CLI так же, как localStorage переживает перезагрузку страницы.
type Storage struct {
	db        *sql.DB
	namespace string
}

// Open открывает (или создаёт) базу по пути path и применяет схему.
func Open(ctx context.Context, path, namespace string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite не любит конкурентных писателей.
	db.SetMaxOpenConns(1)

	initCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := db.PingContext(initCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(initCtx, schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return &Storage{db: db, namespace: namespace}, nil
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT item_value FROM client_storage WHERE namespace = ? AND item_key = ?`,
		s.namespace, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrStorageKeyNotFound
		}
		return "", fmt.Errorf("select storage item: %w", err)
	}
	return value, nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO client_storage (namespace, item_key, item_value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (namespace, item_key)
		DO UPDATE SET item_value = excluded.item_value, updated_at = CURRENT_TIMESTAMP
	`, s.namespace, key, value); err != nil {
		return fmt.Errorf("upsert storage item: %w", err)
	}
	return nil
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM client_storage WHERE namespace = ? AND item_key = ?`,
		s.namespace, key,
	); err != nil {
		return fmt.Errorf("delete storage item: %w", err)
	}
	return nil
}

// Ping проверяет, что файл базы доступен.
func (s *Storage) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite storage is not initialized")
	}
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var (
	_ domain.Storage = (*Storage)(nil)
	_ domain.Pinger  = (*Storage)(nil)
)
