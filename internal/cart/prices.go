package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

const (
	defaultPriceTTL        = time.Minute
	defaultPriceFetchLimit = 4
)

type cachedFood struct {
	food      domain.Food
	fetchedAt time.Time
}

// PriceCache держит карточки блюд, а с ними и цены в центах, чтобы итог корзины
// не ходил в бэкенд на каждый пересчёт.
// Одновременные запросы одной и той же цены схлопываются через singleflight.
type PriceCache struct {
	lookup domain.FoodLookup
	ttl    time.Duration
	limit  int
	now    func() time.Time

	group singleflight.Group

	mu    sync.RWMutex
	foods map[int64]cachedFood
}

// NewPriceCache создаёт кэш поверх lookup; ttl<=0: минута.
func NewPriceCache(lookup domain.FoodLookup, ttl time.Duration) *PriceCache {
	if ttl <= 0 {
		ttl = defaultPriceTTL
	}
	return &PriceCache{
		lookup: lookup,
		ttl:    ttl,
		limit:  defaultPriceFetchLimit,
		now:    time.Now,
		foods:  make(map[int64]cachedFood),
	}
}

// Price возвращает цену одной позиции в центах.
func (p *PriceCache) Price(ctx context.Context, foodID int64) (int64, error) {
	food, err := p.Food(ctx, foodID)
	if err != nil {
		return 0, err
	}
	return food.UnitPriceMinor(), nil
}

// Food возвращает карточку блюда из кэша или с бэкенда.
// Общий запрос к бэкенду не зависит от отмены ctx отдельного вызывающего:
// отменённый вызов возвращает ошибку сразу, остальные дожидаются ответа.
func (p *PriceCache) Food(ctx context.Context, foodID int64) (domain.Food, error) {
	if food, ok := p.cached(foodID); ok {
		return food, nil
	}

	lookupCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(strconv.FormatInt(foodID, 10), func() (any, error) {
		food, err := p.lookup.GetFood(lookupCtx, foodID)
		if err != nil {
			return domain.Food{}, err
		}
		p.mu.Lock()
		p.foods[foodID] = cachedFood{food: food, fetchedAt: p.now()}
		p.mu.Unlock()
		return food, nil
	})

	select {
	case <-ctx.Done():
		return domain.Food{}, fmt.Errorf("%w: food %d: %w", domain.ErrPriceUnavailable, foodID, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Food{}, fmt.Errorf("%w: food %d: %w", domain.ErrPriceUnavailable, foodID, res.Err)
		}
		return res.Val.(domain.Food), nil
	}
}

// Prices параллельно получает цены для набора блюд.
// Все неудачи собираются через errors.Join; успешные цены тоже возвращаются.
func (p *PriceCache) Prices(ctx context.Context, ids []int64) (map[int64]int64, error) {
	result := make(map[int64]int64, len(ids))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			minor, err := p.Price(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			result[id] = minor
			return nil
		})
	}
	_ = g.Wait()

	return result, errors.Join(errs...)
}

// Invalidate сбрасывает кэш (например, после изменения блюд в админке).
func (p *PriceCache) Invalidate() {
	p.mu.Lock()
	p.foods = make(map[int64]cachedFood)
	p.mu.Unlock()
}

func (p *PriceCache) cached(foodID int64) (domain.Food, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.foods[foodID]
	if !ok || p.now().Sub(entry.fetchedAt) >= p.ttl {
		return domain.Food{}, false
	}
	return entry.food, true
}
