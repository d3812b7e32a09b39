package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/unieats/internal/api"
	"github.com/vladislavdragonenkov/unieats/internal/cart"
	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/food"
	"github.com/vladislavdragonenkov/unieats/internal/health"
	"github.com/vladislavdragonenkov/unieats/internal/metrics"
	"github.com/vladislavdragonenkov/unieats/internal/notify"
	"github.com/vladislavdragonenkov/unieats/internal/render"
	"github.com/vladislavdragonenkov/unieats/internal/shop"
	"github.com/vladislavdragonenkov/unieats/internal/storage/memory"
)

type stubLister struct {
	shops []domain.Shop
	err   error
	calls int
}

func (s *stubLister) ListShops(context.Context) ([]domain.Shop, error) {
	s.calls++
	return s.shops, s.err
}

type stubFoods struct {
	foods []domain.Food
	err   error
}

func (s *stubFoods) ListFoods(context.Context) ([]domain.Food, error) { return s.foods, s.err }
func (s *stubFoods) CreateFood(_ context.Context, f domain.Food) (domain.Food, error) {
	return f, nil
}
func (s *stubFoods) UpdateFood(_ context.Context, _ int64, f domain.Food) (domain.Food, error) {
	return f, nil
}
func (s *stubFoods) DeleteFood(context.Context, int64) error         { return nil }
func (s *stubFoods) ToggleAvailability(context.Context, int64) error { return nil }
func (s *stubFoods) ToggleFeatured(context.Context, int64) error     { return nil }

type stubLookup map[int64]float64

func (l stubLookup) GetFood(_ context.Context, id int64) (domain.Food, error) {
	price, ok := l[id]
	if !ok {
		return domain.Food{}, domain.ErrFoodNotFound
	}
	return domain.Food{ID: id, Price: price}, nil
}

type fixture struct {
	handler  http.Handler
	lister   *stubLister
	foods    *stubFoods
	cart     *cart.Manager
	notifier *notify.Center
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := log.New()
	logger.SetOutput(io.Discard)
	entry := log.NewEntry(logger)

	registry := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(registry)

	rating := 4.5
	lister := &stubLister{shops: []domain.Shop{
		{ID: 1, ShopName: "Pizza Place", City: "Springfield", Rating: &rating, Description: "Wood-fired pizza"},
		{ID: 2, ShopName: "Burger Barn", City: "Shelbyville"},
	}}
	foods := &stubFoods{foods: []domain.Food{{ID: 7, Name: "Margherita", Price: 9.5, IsAvailable: true}}}

	notifier := notify.NewCenter(entry, notify.WithMetrics(m))
	t.Cleanup(notifier.Close)

	browser := shop.NewBrowser(lister, notifier, entry, m, 0)
	t.Cleanup(browser.Close)

	manager := cart.NewManager(memory.NewStorage(), cart.NewPriceCache(stubLookup{7: 9.5, 8: 2.25}, 0), entry, cart.WithMetrics(m))
	manager.Load(context.Background())

	views, err := render.NewHTML()
	require.NoError(t, err)

	healthHandler := health.NewHandler("test")
	healthHandler.RegisterChecker("storage", health.NewSimpleChecker("storage", func(context.Context) error { return nil }))

	return &fixture{
		handler: NewRouter(Deps{
			Cart:     manager,
			Shops:    browser,
			Foods:    food.NewAdmin(foods, notifier, nil, entry),
			Notifier: notifier,
			Views:    views,
			Health:   healthHandler,
			Gatherer: registry,
			Logger:   entry,
		}),
		lister:   lister,
		foods:    foods,
		cart:     manager,
		notifier: notifier,
	}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestListShops_RendersFilteredGrid(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/shops?q=PIZZA&city=Springfield&sort=rating", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	require.Contains(t, body, "Pizza Place")
	require.NotContains(t, body, "Burger Barn")
	require.Contains(t, body, "1 shop")
	require.Contains(t, body, `<option value="Shelbyville">`)

	// повторный запрос не перезагружает список
	f.do(t, http.MethodGet, "/shops", nil)
	require.Equal(t, 1, f.lister.calls)
}

func TestListShops_InvalidSort(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/shops?sort=price", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListShops_LoadFailureShowsAlert(t *testing.T) {
	f := newFixture(t)
	f.lister.err = &api.StatusError{Code: http.StatusInternalServerError, Message: "boom"}

	rec := f.do(t, http.MethodGet, "/shops", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Failed to load shops. Please try again.")
	require.Contains(t, rec.Body.String(), "No shops found")
}

func TestShopDetail(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/shops/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Pizza Place")

	rec = f.do(t, http.MethodGet, "/shops/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/shops/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReloadShops_Redirects(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/shops/reload", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/shops", rec.Header().Get("Location"))
	require.Equal(t, 1, f.lister.calls)

	// второе нажатие внутри окна не ходит в бэкенд, но редирект тот же
	rec = f.do(t, http.MethodPost, "/shops/reload", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, 1, f.lister.calls)
}

func TestListFoods(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/foods", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Margherita")
	require.Contains(t, rec.Body.String(), "$9.50")

	f.foods.err = errors.New("down")
	rec = f.do(t, http.MethodGet, "/foods", nil)
	require.Contains(t, rec.Body.String(), food.MsgLoadError)
}

func TestCartLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/cart/items", map[string]any{"foodId": 7, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeCart(t, rec)
	require.Equal(t, 2, resp.Count)
	require.True(t, resp.Visible)
	require.Equal(t, "$19.00", resp.Total)

	rec = f.do(t, http.MethodPost, "/cart/items", map[string]any{"foodId": 8})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp = decodeCart(t, rec)
	require.Equal(t, 3, resp.Count)
	require.NotNil(t, resp.TotalMinor)
	require.Equal(t, int64(2125), *resp.TotalMinor)

	rec = f.do(t, http.MethodPut, "/cart/items/7", map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	require.Equal(t, int64(8), resp.Items[0].FoodID)

	rec = f.do(t, http.MethodDelete, "/cart/items/8", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, decodeCart(t, rec).Count)

	rec = f.do(t, http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeCart(t, rec)
	require.False(t, resp.Visible)
	require.Empty(t, resp.Items)
}

func TestCart_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/cart/items", map[string]any{"foodId": 7, "quantity": -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/cart/items", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/cart/items/0", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_TotalErrorIsReported(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/cart/items", map[string]any{"foodId": 404})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeCart(t, rec)
	require.Equal(t, 1, resp.Count)
	require.Nil(t, resp.TotalMinor)
	require.Contains(t, resp.TotalError, domain.ErrPriceUnavailable.Error())
}

func TestCartBadge(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/cart/badge", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `style="display: none"`)

	require.NoError(t, f.cart.AddToCart(context.Background(), 7, 1))
	rec = f.do(t, http.MethodGet, "/cart/badge", nil)
	require.NotContains(t, rec.Body.String(), "display: none")
	require.Contains(t, rec.Body.String(), "$9.50")
}

func TestOperationalEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/livez", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, f.cart.AddToCart(context.Background(), 7, 1))
	rec = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "unieats_cart_mutations_total")

	rec = f.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
}
