package domain

import "context"

// Storage: постоянное key/value хранилище клиента (аналог localStorage).
type Storage interface {
	// GetItem возвращает значение или ErrStorageKeyNotFound.
	GetItem(ctx context.Context, key string) (string, error)
	// SetItem перезаписывает значение ключа.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem удаляет ключ; отсутствие ключа ошибкой не считается.
	RemoveItem(ctx context.Context, key string) error
	// Close освобождает ресурсы хранилища.
	Close() error
}

// Pinger реализуется хранилищами с сетевым подключением.
type Pinger interface {
	Ping(ctx context.Context) error
}

// FoodLookup получает актуальную карточку блюда по идентификатору.
type FoodLookup interface {
	GetFood(ctx context.Context, id int64) (Food, error)
}

// Notifier показывает пользователю короткие сообщения.
type Notifier interface {
	Success(text string)
	Error(text string)
	Warning(text string)
	Info(text string)
}

// Confirmer запрашивает у пользователя подтверждение действия.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc адаптирует функцию к интерфейсу Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm вызывает f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// CartEventPublisher публикует события изменения корзины; должен быть неблокирующим для UI.
type CartEventPublisher interface {
	PublishCartEvent(ctx context.Context, event CartEvent) error
}
