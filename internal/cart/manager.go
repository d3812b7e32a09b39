// Package cart хранит клиентскую корзину и синхронизирует её с постоянным хранилищем.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/metrics"
)

const (
	opAdd    = "add"
	opRemove = "remove"
	opSet    = "set"
	opClear  = "clear"
)

// Manager: единственный владелец состояния корзины.
// Каждая мутация сохраняет снапшот целиком, уведомляет подписчиков и публикует событие.
type Manager struct {
	storage   domain.Storage
	prices    *PriceCache
	publisher domain.CartEventPublisher
	metrics   *metrics.ClientMetrics
	logger    *log.Entry
	namespace string
	now       func() time.Time

	// writeMu упорядочивает мутации вместе с записью снапшота в хранилище.
	writeMu sync.Mutex

	mu        sync.Mutex
	items     []domain.CartItem
	observers []func(domain.CartSummary)
}

// Option настраивает Manager.
type Option func(*Manager)

// WithPublisher подключает публикацию событий корзины.
func WithPublisher(p domain.CartEventPublisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithMetrics подключает метрики.
func WithMetrics(cm *metrics.ClientMetrics) Option {
	return func(m *Manager) { m.metrics = cm }
}

// WithNamespace задаёт namespace, который попадает в события.
func WithNamespace(ns string) Option {
	return func(m *Manager) { m.namespace = ns }
}

// WithClock подменяет источник времени для AddedAt и событий.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager создаёт пустую корзину. Сохранённое состояние подтягивается через Load.
func NewManager(storage domain.Storage, prices *PriceCache, logger *log.Entry, opts ...Option) *Manager {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	m := &Manager{
		storage: storage,
		prices:  prices,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnChange регистрирует обработчик обновления бейджа корзины.
func (m *Manager) OnChange(fn func(domain.CartSummary)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// Load читает снапшот из хранилища. Повреждённые данные не считаются ошибкой:
// корзина становится пустой, в лог пишется предупреждение.
func (m *Manager) Load(ctx context.Context) {
	raw, err := m.storage.GetItem(ctx, domain.CartStorageKey)
	var items []domain.CartItem
	switch {
	case errors.Is(err, domain.ErrStorageKeyNotFound):
	case err != nil:
		m.logger.WithError(err).Warn("failed to read saved cart, starting empty")
	default:
		if decodeErr := json.Unmarshal([]byte(raw), &items); decodeErr != nil {
			m.logger.WithError(decodeErr).Warn("saved cart is corrupted, starting empty")
			items = nil
		}
	}

	m.mu.Lock()
	m.items = domain.NormalizeCart(items)
	summary, observers := m.summaryLocked()
	m.mu.Unlock()

	m.metrics.SetCartItems(summary.Count)
	m.logger.WithField("items", summary.Count).Debug("cart loaded")
	notify(observers, summary)
}

// Add добавляет одну порцию блюда.
func (m *Manager) Add(ctx context.Context, foodID int64) error {
	return m.AddToCart(ctx, foodID, 1)
}

// AddToCart увеличивает количество существующей позиции или добавляет новую.
func (m *Manager) AddToCart(ctx context.Context, foodID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrQuantityInvalid, quantity)
	}

	return m.mutate(ctx, opAdd, func(items []domain.CartItem) ([]domain.CartItem, *domain.CartEvent) {
		event := &domain.CartEvent{Type: domain.CartEventItemAdded, FoodID: foodID, Quantity: quantity}
		for i := range items {
			if items[i].FoodID == foodID {
				items[i].Quantity += quantity
				return items, event
			}
		}
		return append(items, domain.CartItem{FoodID: foodID, Quantity: quantity, AddedAt: m.now()}), event
	})
}

// RemoveFromCart удаляет позицию; отсутствие позиции ошибкой не считается.
func (m *Manager) RemoveFromCart(ctx context.Context, foodID int64) error {
	return m.mutate(ctx, opRemove, func(items []domain.CartItem) ([]domain.CartItem, *domain.CartEvent) {
		return removeItem(items, foodID), &domain.CartEvent{Type: domain.CartEventItemRemoved, FoodID: foodID}
	})
}

// UpdateCartQuantity выставляет количество. quantity<=0 удаляет позицию,
// неизвестный foodID оставляет корзину без изменений.
func (m *Manager) UpdateCartQuantity(ctx context.Context, foodID int64, quantity int) error {
	m.mu.Lock()
	found := indexOf(m.items, foodID) >= 0
	m.mu.Unlock()
	if !found {
		return nil
	}
	if quantity <= 0 {
		return m.RemoveFromCart(ctx, foodID)
	}

	return m.mutate(ctx, opSet, func(items []domain.CartItem) ([]domain.CartItem, *domain.CartEvent) {
		i := indexOf(items, foodID)
		if i < 0 {
			return items, nil
		}
		items[i].Quantity = quantity
		return items, &domain.CartEvent{Type: domain.CartEventQuantitySet, FoodID: foodID, Quantity: quantity}
	})
}

// ClearCart очищает корзину.
func (m *Manager) ClearCart(ctx context.Context) error {
	return m.mutate(ctx, opClear, func([]domain.CartItem) ([]domain.CartItem, *domain.CartEvent) {
		return nil, &domain.CartEvent{Type: domain.CartEventCleared}
	})
}

// Items возвращает копию позиций.
func (m *Manager) Items() []domain.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CartItem(nil), m.items...)
}

// ItemCount: сумма количеств по всем позициям.
func (m *Manager) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CountItems(m.items)
}

// Summary: текущее состояние бейджа.
func (m *Manager) Summary() domain.CartSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary, _ := m.summaryLocked()
	return summary
}

// Total считает сумму корзины в центах по актуальным ценам бэкенда.
// Если хотя бы одну цену получить не удалось, возвращается ошибка с ErrPriceUnavailable.
func (m *Manager) Total(ctx context.Context) (int64, error) {
	items := m.Items()
	if len(items) == 0 {
		return 0, nil
	}
	if m.prices == nil {
		return 0, fmt.Errorf("%w: price source is not configured", domain.ErrPriceUnavailable)
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.FoodID)
	}
	prices, err := m.prices.Prices(ctx, ids)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, item := range items {
		total += prices[item.FoodID] * int64(item.Quantity)
	}
	return total, nil
}

// mutate применяет изменение к копии, сохраняет её и только после успешной записи
// подменяет состояние, оповещает подписчиков и публикует событие.
// При ошибке записи корзина в памяти остаётся прежней.
func (m *Manager) mutate(ctx context.Context, op string, apply func([]domain.CartItem) ([]domain.CartItem, *domain.CartEvent)) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	next, event := apply(m.Items())
	if err := m.persist(ctx, next); err != nil {
		m.logger.WithError(err).WithField("op", op).Warn("failed to persist cart, change discarded")
		return fmt.Errorf("persist cart: %w", err)
	}

	m.mu.Lock()
	m.items = next
	summary, observers := m.summaryLocked()
	m.mu.Unlock()

	m.metrics.RecordCartMutation(op, summary.Count)
	m.logger.WithFields(log.Fields{"op": op, "items": summary.Count}).Debug("cart updated")
	notify(observers, summary)

	if event != nil {
		m.publish(ctx, *event)
	}
	return nil
}

func (m *Manager) persist(ctx context.Context, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return m.storage.SetItem(ctx, domain.CartStorageKey, string(payload))
}

func (m *Manager) publish(ctx context.Context, event domain.CartEvent) {
	if m.publisher == nil {
		return
	}
	event.Namespace = m.namespace
	event.OccurredAt = m.now().UTC()

	err := m.publisher.PublishCartEvent(ctx, event)
	m.metrics.RecordCartEvent(err)
	if err != nil {
		m.logger.WithError(err).WithField("event_type", string(event.Type)).Warn("failed to publish cart event")
	}
}

func (m *Manager) summaryLocked() (domain.CartSummary, []func(domain.CartSummary)) {
	count := domain.CountItems(m.items)
	observers := make([]func(domain.CartSummary), len(m.observers))
	copy(observers, m.observers)
	return domain.CartSummary{Count: count, Visible: count > 0}, observers
}

func notify(observers []func(domain.CartSummary), summary domain.CartSummary) {
	for _, fn := range observers {
		fn(summary)
	}
}

func indexOf(items []domain.CartItem, foodID int64) int {
	for i := range items {
		if items[i].FoodID == foodID {
			return i
		}
	}
	return -1
}

func removeItem(items []domain.CartItem, foodID int64) []domain.CartItem {
	out := items[:0]
	for _, item := range items {
		if item.FoodID != foodID {
			out = append(out, item)
		}
	}
	return out
}
