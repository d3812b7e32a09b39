package cart

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/storage/memory"
)

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return log.NewEntry(logger)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.CartEvent
	err    error
}

func (p *recordingPublisher) PublishCartEvent(_ context.Context, event domain.CartEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type failingStorage struct {
	domain.Storage
	getErr error
	setErr error
}

func (s failingStorage) GetItem(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.Storage.GetItem(ctx, key)
}

func (s failingStorage) SetItem(ctx context.Context, key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.Storage.SetItem(ctx, key, value)
}

func newTestManager(t *testing.T, storage domain.Storage, opts ...Option) *Manager {
	t.Helper()
	m := NewManager(storage, nil, testLogger(), opts...)
	m.Load(context.Background())
	return m
}

func TestAddToCart_MergesSameFood(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, memory.NewStorage())

	require.NoError(t, m.AddToCart(ctx, 42, 2))
	require.NoError(t, m.AddToCart(ctx, 42, 3))

	items := m.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(42), items[0].FoodID)
	require.Equal(t, 5, items[0].Quantity)
	require.Equal(t, 5, m.ItemCount())
}

func TestAdd_DefaultsToOne(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, memory.NewStorage())

	require.NoError(t, m.Add(ctx, 1))
	require.NoError(t, m.Add(ctx, 2))
	require.NoError(t, m.Add(ctx, 1))

	items := m.Items()
	require.Len(t, items, 2)
	require.Equal(t, 2, items[0].Quantity)
	require.Equal(t, int64(2), items[1].FoodID)
}

func TestAddToCart_RejectsNonPositiveQuantity(t *testing.T) {
	m := newTestManager(t, memory.NewStorage())

	err := m.AddToCart(context.Background(), 1, 0)
	require.ErrorIs(t, err, domain.ErrQuantityInvalid)
	require.ErrorIs(t, m.AddToCart(context.Background(), 1, -3), domain.ErrQuantityInvalid)
	require.Empty(t, m.Items())
}

func TestUpdateCartQuantity(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, memory.NewStorage())

	require.NoError(t, m.AddToCart(ctx, 1, 2))
	require.NoError(t, m.AddToCart(ctx, 2, 1))

	require.NoError(t, m.UpdateCartQuantity(ctx, 1, 7))
	require.Equal(t, 8, m.ItemCount())

	require.NoError(t, m.UpdateCartQuantity(ctx, 1, 0))
	require.Len(t, m.Items(), 1)
	require.Equal(t, 1, m.ItemCount())

	// неизвестный id ничего не меняет
	require.NoError(t, m.UpdateCartQuantity(ctx, 99, 4))
	require.Equal(t, 1, m.ItemCount())
}

func TestRemoveFromCart_AbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, memory.NewStorage())

	require.NoError(t, m.AddToCart(ctx, 1, 1))
	require.NoError(t, m.RemoveFromCart(ctx, 2))
	require.NoError(t, m.RemoveFromCart(ctx, 1))
	require.Empty(t, m.Items())
}

func TestClearCart_ThenReloadIsEmpty(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	m := newTestManager(t, storage)

	require.NoError(t, m.AddToCart(ctx, 1, 3))
	require.NoError(t, m.ClearCart(ctx))

	raw, err := storage.GetItem(ctx, domain.CartStorageKey)
	require.NoError(t, err)
	require.Equal(t, "[]", raw)

	reloaded := newTestManager(t, storage)
	require.Empty(t, reloaded.Items())
	require.Zero(t, reloaded.ItemCount())
}

func TestLoad_RestoresPersistedSnapshot(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	added := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first := newTestManager(t, storage, WithClock(func() time.Time { return added }))
	require.NoError(t, first.AddToCart(ctx, 10, 2))
	require.NoError(t, first.AddToCart(ctx, 11, 1))

	second := newTestManager(t, storage)
	items := second.Items()
	require.Len(t, items, 2)
	require.Equal(t, int64(10), items[0].FoodID)
	require.True(t, items[0].AddedAt.Equal(added))
	require.Equal(t, 3, second.ItemCount())
}

func TestLoad_CorruptedDataStartsEmpty(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"not json":      "{{{",
		"wrong schema":  `{"foodId":1}`,
		"wrong type":    `[{"foodId":"abc","quantity":1}]`,
		"empty payload": ``,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			storage := memory.NewStorage()
			require.NoError(t, storage.SetItem(ctx, domain.CartStorageKey, raw))

			m := newTestManager(t, storage)
			require.Empty(t, m.Items())
		})
	}
}

func TestLoad_NormalizesDuplicates(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	require.NoError(t, storage.SetItem(ctx, domain.CartStorageKey,
		`[{"foodId":1,"quantity":2},{"foodId":2,"quantity":0},{"foodId":1,"quantity":1}]`))

	m := newTestManager(t, storage)
	items := m.Items()
	require.Len(t, items, 1)
	require.Equal(t, 3, items[0].Quantity)
}

func TestLoad_StorageErrorStartsEmpty(t *testing.T) {
	storage := failingStorage{Storage: memory.NewStorage(), getErr: errors.New("disk unavailable")}
	m := newTestManager(t, storage)
	require.Empty(t, m.Items())
}

func TestMutation_PersistFailureLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	storage := failingStorage{Storage: memory.NewStorage(), setErr: errors.New("read-only")}
	pub := &recordingPublisher{}
	m := newTestManager(t, storage, WithPublisher(pub))

	var notified int
	m.OnChange(func(domain.CartSummary) { notified++ })

	for attempt := 0; attempt < 2; attempt++ {
		err := m.AddToCart(ctx, 7, 2)
		require.Error(t, err)
		require.Contains(t, err.Error(), "persist cart")
		require.Equal(t, 0, m.ItemCount())
	}

	require.Empty(t, pub.events)
	require.Zero(t, notified)
}

func TestMutation_RetryAfterPersistFailure(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStorage()
	m := newTestManager(t, failingStorage{Storage: base, setErr: errors.New("redis down")})
	require.Error(t, m.AddToCart(ctx, 7, 2))

	// тот же объект хранилища, запись снова работает
	m.storage = base
	require.NoError(t, m.AddToCart(ctx, 7, 2))
	require.Equal(t, 2, m.ItemCount())

	raw, err := base.GetItem(ctx, domain.CartStorageKey)
	require.NoError(t, err)
	require.Contains(t, raw, `"quantity":2`)
}

func TestOnChange_ReceivesSummary(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memory.NewStorage(), nil, testLogger())

	var got []domain.CartSummary
	m.OnChange(func(s domain.CartSummary) { got = append(got, s) })

	m.Load(ctx)
	require.NoError(t, m.AddToCart(ctx, 1, 2))
	require.NoError(t, m.UpdateCartQuantity(ctx, 1, 0))

	require.Equal(t, []domain.CartSummary{
		{Count: 0, Visible: false},
		{Count: 2, Visible: true},
		{Count: 0, Visible: false},
	}, got)
}

func TestMutations_PublishEvents(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	pub := &recordingPublisher{}
	m := newTestManager(t, memory.NewStorage(),
		WithPublisher(pub),
		WithNamespace("device-1"),
		WithClock(func() time.Time { return now }),
	)

	require.NoError(t, m.AddToCart(ctx, 5, 2))
	require.NoError(t, m.UpdateCartQuantity(ctx, 5, 4))
	require.NoError(t, m.RemoveFromCart(ctx, 5))
	require.NoError(t, m.ClearCart(ctx))

	require.Len(t, pub.events, 4)
	require.Equal(t, domain.CartEventItemAdded, pub.events[0].Type)
	require.Equal(t, 2, pub.events[0].Quantity)
	require.Equal(t, domain.CartEventQuantitySet, pub.events[1].Type)
	require.Equal(t, domain.CartEventItemRemoved, pub.events[2].Type)
	require.Equal(t, domain.CartEventCleared, pub.events[3].Type)
	for _, e := range pub.events {
		require.Equal(t, "device-1", e.Namespace)
		require.True(t, e.OccurredAt.Equal(now))
	}
}

func TestMutations_PublishFailureDoesNotFail(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker unavailable")}
	m := newTestManager(t, memory.NewStorage(), WithPublisher(pub))

	require.NoError(t, m.AddToCart(context.Background(), 1, 1))
	require.Equal(t, 1, m.ItemCount())
	require.Len(t, pub.events, 1)
}

func TestManager_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, memory.NewStorage())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Add(ctx, 3)
		}()
	}
	wg.Wait()

	items := m.Items()
	require.Len(t, items, 1)
	require.Equal(t, 50, items[0].Quantity)
}
