// Package shop реализует список заведений для покупателя: загрузка, поиск, фильтр по городу и сортировка.
package shop

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/api"
	"github.com/vladislavdragonenkov/unieats/internal/debounce"
	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/metrics"
)

const (
	msgLoadFailed  = "Failed to load shops. Please try again."
	msgLoadNetwork = "Error loading shops. Please check your connection."
)

// Lister получает список магазинов с бэкенда.
type Lister interface {
	ListShops(ctx context.Context) ([]domain.Shop, error)
}

// Browser хранит загруженные магазины и текущую выборку.
type Browser struct {
	notifier domain.Notifier
	source   Lister
	logger   *log.Entry
	metrics  *metrics.ClientMetrics
	debounce *debounce.Debouncer

	mu        sync.Mutex
	all       []domain.Shop
	filtered  []domain.Shop
	query     Query
	loaded    bool
	observers []func([]domain.Shop)
}

// NewBrowser создаёт пустой Browser. searchDelay<=0: стандартные 300 мс.
func NewBrowser(source Lister, notifier domain.Notifier, logger *log.Entry, m *metrics.ClientMetrics, searchDelay time.Duration) *Browser {
	if logger == nil {
		logger = log.New().WithField("component", "shop")
	}
	return &Browser{
		notifier: notifier,
		source:   source,
		logger:   logger,
		metrics:  m,
		debounce: debounce.New(searchDelay),
	}
}

// Load выполняет ровно один запрос списка магазинов.
// При ошибке показывается одно сообщение, прежнее состояние не меняется.
func (b *Browser) Load(ctx context.Context) error {
	shops, err := b.source.ListShops(ctx)
	if err != nil {
		if api.StatusCode(err) > 0 {
			b.notifier.Error(msgLoadFailed)
		} else {
			b.notifier.Error(msgLoadNetwork)
		}
		b.logger.WithError(err).Warn("failed to load shops")
		return fmt.Errorf("load shops: %w", err)
	}

	b.mu.Lock()
	b.all = append([]domain.Shop(nil), shops...)
	b.loaded = true
	filtered, observers := b.recomputeLocked()
	b.mu.Unlock()

	b.logger.WithField("shops", len(shops)).Debug("shops loaded")
	notifyObservers(observers, filtered)
	return nil
}

// Search задаёт текстовый фильтр (без учёта регистра, по названию и описанию).
// Пустой запрос сбрасывает все измерения: город, сортировку и текст,
// и показывает полный список в исходном порядке.
func (b *Browser) Search(query string) {
	text := strings.TrimSpace(query)
	b.update(func(q *Query) {
		if text == "" {
			*q = Query{}
			return
		}
		q.Text = text
	})
}

// SearchDebounced откладывает Search до паузы во вводе; срабатывает только последний вызов.
func (b *Browser) SearchDebounced(query string) {
	b.debounce.Call(func() { b.Search(query) })
}

// FlushSearch немедленно применяет отложенный поиск.
func (b *Browser) FlushSearch() {
	b.debounce.Flush()
}

// FilterByCity оставляет магазины указанного города; пустая строка снимает фильтр.
func (b *Browser) FilterByCity(city string) {
	b.update(func(q *Query) { q.City = city })
}

// SortBy меняет порядок отображения.
func (b *Browser) SortBy(key SortKey) error {
	if _, err := ParseSortKey(string(key)); err != nil {
		return err
	}
	b.update(func(q *Query) { q.Sort = key })
	return nil
}

// Apply выставляет все измерения запроса разом.
func (b *Browser) Apply(q Query) error {
	key, err := ParseSortKey(string(q.Sort))
	if err != nil {
		return err
	}
	q.Sort = key
	q.Text = strings.TrimSpace(q.Text)
	b.update(func(current *Query) { *current = q })
	return nil
}

// OnChange регистрирует обработчик перерисовки списка.
func (b *Browser) OnChange(fn func([]domain.Shop)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.observers = append(b.observers, fn)
	b.mu.Unlock()
}

// Filtered возвращает копию текущей выборки.
func (b *Browser) Filtered() []domain.Shop {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Shop(nil), b.filtered...)
}

// All возвращает копию всех загруженных магазинов в порядке бэкенда.
func (b *Browser) All() []domain.Shop {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Shop(nil), b.all...)
}

// Query возвращает активные параметры выборки.
func (b *Browser) Query() Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Loaded сообщает, был ли хоть один успешный Load.
func (b *Browser) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// Cities: варианты для фильтра по городу.
func (b *Browser) Cities() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Cities(b.all)
}

// CountLabel: подпись количества в текущей выборке.
func (b *Browser) CountLabel() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return CountLabel(len(b.filtered))
}

// Find ищет магазин среди всех загруженных.
func (b *Browser) Find(id int64) (domain.Shop, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.all {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Shop{}, fmt.Errorf("%w: id %d", domain.ErrShopNotFound, id)
}

// Close отменяет отложенный поиск.
func (b *Browser) Close() {
	b.debounce.Stop()
}

func (b *Browser) update(change func(*Query)) {
	b.mu.Lock()
	change(&b.query)
	filtered, observers := b.recomputeLocked()
	b.mu.Unlock()

	notifyObservers(observers, filtered)
}

func (b *Browser) recomputeLocked() ([]domain.Shop, []func([]domain.Shop)) {
	b.filtered = Select(b.all, b.query)
	b.metrics.RecordShopRecompute()

	observers := make([]func([]domain.Shop), len(b.observers))
	copy(observers, b.observers)
	return append([]domain.Shop(nil), b.filtered...), observers
}

func notifyObservers(observers []func([]domain.Shop), shops []domain.Shop) {
	for _, fn := range observers {
		fn(shops)
	}
}
