package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

// Storage хранит ключи клиента в Redis под префиксом unieats:<namespace>:.
// TTL не выставляется: корзина живёт, пока её не очистят явно.
type Storage struct {
	client    goredis.UniversalClient
	namespace string
}

// Options: параметры подключения.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Open подключается к Redis и проверяет соединение.
func Open(ctx context.Context, opts Options, namespace string) (*Storage, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewStorage(client, namespace), nil
}

// NewStorage оборачивает готовый клиент.
func NewStorage(client goredis.UniversalClient, namespace string) *Storage {
	return &Storage{client: client, namespace: namespace}
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", domain.ErrStorageKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return value, nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) key(name string) string {
	return fmt.Sprintf("unieats:%s:%s", s.namespace, name)
}

var (
	_ domain.Storage = (*Storage)(nil)
	_ domain.Pinger  = (*Storage)(nil)
)
