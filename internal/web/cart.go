package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/render"
)

type addItemRequest struct {
	FoodID   int64 `json:"foodId"`
	Quantity *int  `json:"quantity,omitempty"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartItemResponse struct {
	FoodID   int64     `json:"foodId"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

type cartResponse struct {
	Items      []cartItemResponse `json:"items"`
	Count      int                `json:"count"`
	Visible    bool               `json:"visible"`
	TotalMinor *int64             `json:"totalMinor,omitempty"`
	Total      string             `json:"total,omitempty"`
	TotalError string             `json:"totalError,omitempty"`
}

func (s *server) cartState(r *http.Request) cartResponse {
	items := s.cart.Items()
	summary := s.cart.Summary()

	resp := cartResponse{
		Items:   make([]cartItemResponse, 0, len(items)),
		Count:   summary.Count,
		Visible: summary.Visible,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, cartItemResponse(item))
	}

	total, err := s.cart.Total(r.Context())
	if err != nil {
		resp.TotalError = err.Error()
		return resp
	}
	resp.TotalMinor = &total
	resp.Total = render.Currency(total)
	return resp
}

func (s *server) badge(r *http.Request) render.CartBadgeView {
	summary := s.cart.Summary()
	view := render.CartBadgeView{Count: summary.Count, Visible: summary.Visible}
	if !summary.Visible {
		return view
	}
	total, err := s.cart.Total(r.Context())
	if err != nil {
		s.logger.WithError(err).Debug("cart total unavailable")
		return view
	}
	view.Total = render.Currency(total)
	return view
}

func (s *server) getCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.cartState(r))
}

func (s *server) cartBadge(w http.ResponseWriter, r *http.Request) {
	view := s.badge(r)
	s.renderHTML(w, http.StatusOK, func(w http.ResponseWriter) error {
		return s.views.CartBadge(w, view)
	})
}

func (s *server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.FoodID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_food_id", "foodId must be positive")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if err := s.cart.AddToCart(r.Context(), req.FoodID, quantity); err != nil {
		s.handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.cartState(r))
}

func (s *server) updateItem(w http.ResponseWriter, r *http.Request) {
	foodID, ok := foodIDParam(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.cart.UpdateCartQuantity(r.Context(), foodID, req.Quantity); err != nil {
		s.handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.cartState(r))
}

func (s *server) removeItem(w http.ResponseWriter, r *http.Request) {
	foodID, ok := foodIDParam(w, r)
	if !ok {
		return
	}
	if err := s.cart.RemoveFromCart(r.Context(), foodID); err != nil {
		s.handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.cartState(r))
}

func (s *server) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := s.cart.ClearCart(r.Context()); err != nil {
		s.handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.cartState(r))
}

func (s *server) handleCartError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrQuantityInvalid) {
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
		return
	}
	s.logger.WithError(err).Error("cart mutation failed")
	respondError(w, http.StatusInternalServerError, "storage_error", err.Error())
}

func foodIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "foodID"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_food_id", "food id must be a positive integer")
		return 0, false
	}
	return id, true
}
