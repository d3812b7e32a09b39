package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

// Storage хранит ключи клиента в таблице client_storage в пределах namespace.
type Storage struct {
	store     *Store
	namespace string
}

// NewStorage создаёт PostgreSQL-реализацию domain.Storage.
// Несколько клиентов с одним namespace видят одну и ту же корзину.
func NewStorage(store *Store, namespace string) *Storage {
	return &Storage{store: store, namespace: namespace}
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var value string
	err := s.store.db.QueryRowContext(ctx, `
		SELECT item_value FROM client_storage
		WHERE namespace = $1 AND item_key = $2
	`, s.namespace, key).Scan(&value)
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

	if _, err := s.store.db.ExecContext(ctx, `
		INSERT INTO client_storage (namespace, item_key, item_value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, item_key)
		DO UPDATE SET item_value = EXCLUDED.item_value, updated_at = NOW()
	`, s.namespace, key, value); err != nil {
		return fmt.Errorf("upsert storage item: %w", err)
	}
	return nil
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.store.db.ExecContext(ctx, `
		DELETE FROM client_storage WHERE namespace = $1 AND item_key = $2
	`, s.namespace, key); err != nil {
		return fmt.Errorf("delete storage item: %w", err)
	}
	return nil
}

// Ping проверяет подключение к базе.
func (s *Storage) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close закрывает подключение.
func (s *Storage) Close() error {
	return s.store.Close()
}

var (
	_ domain.Storage = (*Storage)(nil)
	_ domain.Pinger  = (*Storage)(nil)
)
