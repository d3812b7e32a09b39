// Package web реализует локальный HTML-дашборд поверх клиентских компонентов.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/cart"
	"github.com/vladislavdragonenkov/unieats/internal/debounce"
	"github.com/vladislavdragonenkov/unieats/internal/food"
	"github.com/vladislavdragonenkov/unieats/internal/health"
	"github.com/vladislavdragonenkov/unieats/internal/notify"
	"github.com/vladislavdragonenkov/unieats/internal/render"
	"github.com/vladislavdragonenkov/unieats/internal/shop"
)

// DefaultRequestTimeout ограничивает обработку одного запроса дашборда.
const DefaultRequestTimeout = 30 * time.Second

// DefaultReloadWindow: повторные нажатия "обновить" внутри окна не ходят в бэкенд.
const DefaultReloadWindow = 2 * time.Second

// Deps: компоненты, которые обслуживает дашборд.
type Deps struct {
	Cart     *cart.Manager
	Shops    *shop.Browser
	Foods    *food.Admin
	Notifier *notify.Center
	Views    *render.HTML
	Health   *health.Handler
	Gatherer prometheus.Gatherer
	Logger   *log.Entry
	Timeout  time.Duration
	// ReloadWindow ограничивает частоту POST /shops/reload; 0: DefaultReloadWindow.
	ReloadWindow time.Duration
}

type server struct {
	cart     *cart.Manager
	shops    *shop.Browser
	foods    *food.Admin
	notifier *notify.Center
	views    *render.HTML
	logger   *log.Entry
	reload   *debounce.Throttler
}

// NewRouter собирает chi-роутер дашборда.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = log.New().WithField("component", "web")
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	reloadWindow := d.ReloadWindow
	if reloadWindow <= 0 {
		reloadWindow = DefaultReloadWindow
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &server{
		cart:     d.Cart,
		shops:    d.Shops,
		foods:    d.Foods,
		notifier: d.Notifier,
		views:    d.Views,
		logger:   logger,
		reload:   debounce.NewThrottler(reloadWindow),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/livez", health.LivenessHandler)
	if d.Health != nil {
		r.Handle("/healthz", d.Health)
		r.Get("/readyz", d.Health.ReadinessHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/shops", http.StatusSeeOther)
		})

		r.Route("/shops", func(r chi.Router) {
			r.Get("/", s.listShops)
			r.Post("/reload", s.reloadShops)
			r.Get("/{id}", s.shopDetail)
		})

		r.Get("/foods", s.listFoods)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.getCart)
			r.Delete("/", s.clearCart)
			r.Get("/badge", s.cartBadge)
			r.Post("/items", s.addItem)
			r.Put("/items/{foodID}", s.updateItem)
			r.Delete("/items/{foodID}", s.removeItem)
		})
	})

	return r
}

// requestLogger пишет по строке на запрос через logrus.
func requestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.WithFields(log.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"request_id":  middleware.GetReqID(r.Context()),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Debug("http request")
		})
	}
}

func (s *server) alerts() []render.AlertView {
	if s.notifier == nil {
		return nil
	}
	active := s.notifier.Active()
	views := make([]render.AlertView, 0, len(active))
	for _, m := range active {
		views = append(views, render.AlertView{ID: m.ID, Level: string(m.Level), Text: m.Text})
	}
	return views
}

func (s *server) renderHTML(w http.ResponseWriter, status int, fn func(http.ResponseWriter) error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := fn(w); err != nil {
		s.logger.WithError(err).Error("render page")
	}
}
