package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

// storageInMemory: простая in-memory реализация Storage.
type storageInMemory struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewStorage возвращает in-memory хранилище для тестов и одноразовых сессий.
func NewStorage() domain.Storage {
	return &storageInMemory{
		items: make(map[string]string),
	}
}

// GetItem возвращает значение или ErrStorageKeyNotFound, если ключа нет.
func (s *storageInMemory) GetItem(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return "", domain.ErrStorageKeyNotFound
	}
	return value, nil
}

// SetItem перезаписывает значение ключа.
func (s *storageInMemory) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
	return nil
}

// RemoveItem удаляет ключ.
func (s *storageInMemory) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

func (s *storageInMemory) Close() error { return nil }

var _ domain.Storage = (*storageInMemory)(nil)
