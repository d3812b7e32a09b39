package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/render"
	"github.com/vladislavdragonenkov/unieats/internal/shop"
)

// ensureShops загружает список при первом обращении. Ошибка уже показана уведомлением.
func (s *server) ensureShops(r *http.Request) {
	if s.shops.Loaded() {
		return
	}
	if err := s.shops.Load(r.Context()); err != nil {
		s.logger.WithError(err).Debug("initial shop load failed")
	}
}

func (s *server) listShops(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	sortKey, err := shop.ParseSortKey(values.Get("sort"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_sort", err.Error())
		return
	}
	q := shop.Query{
		Text: strings.TrimSpace(values.Get("q")),
		City: values.Get("city"),
		Sort: sortKey,
	}

	s.ensureShops(r)
	all := s.shops.All()
	selected := shop.Select(all, q)

	view := render.ShopGridView{
		Shops:      render.NewShopCards(selected),
		CountLabel: shop.CountLabel(len(selected)),
		Cities:     shop.Cities(all),
		Search:     q.Text,
		City:       q.City,
		Sort:       string(q.Sort),
		Cart:       s.badge(r),
		Messages:   s.alerts(),
	}
	s.renderHTML(w, http.StatusOK, func(w http.ResponseWriter) error {
		return s.views.ShopGrid(w, view)
	})
}

func (s *server) shopDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_shop_id", "shop id must be a positive integer")
		return
	}

	s.ensureShops(r)
	found, err := s.shops.Find(id)
	if errors.Is(err, domain.ErrShopNotFound) {
		respondError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	s.renderHTML(w, http.StatusOK, func(w http.ResponseWriter) error {
		return s.views.ShopDetail(w, render.NewShopDetail(found))
	})
}

// reloadShops перезапрашивает список и возвращает на страницу магазинов.
// Частые повторные нажатия отбрасываются throttler'ом.
func (s *server) reloadShops(w http.ResponseWriter, r *http.Request) {
	ran := s.reload.Do(func() {
		if err := s.shops.Load(r.Context()); err != nil {
			s.logger.WithError(err).Debug("shop reload failed")
		}
	})
	if !ran {
		s.logger.Debug("shop reload throttled")
	}
	http.Redirect(w, r, "/shops", http.StatusSeeOther)
}

func (s *server) listFoods(w http.ResponseWriter, r *http.Request) {
	// Таблица перезагружается при каждом открытии страницы.
	if err := s.foods.Load(r.Context()); err != nil {
		s.logger.WithError(err).Debug("food load failed")
	}

	view := render.FoodTableView{
		Foods:    render.NewFoodRows(s.foods.Foods()),
		Messages: s.alerts(),
	}
	s.renderHTML(w, http.StatusOK, func(w http.ResponseWriter) error {
		return s.views.FoodTable(w, view)
	})
}
