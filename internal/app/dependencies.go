package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/api"
	"github.com/vladislavdragonenkov/unieats/internal/cart"
	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/food"
	"github.com/vladislavdragonenkov/unieats/internal/health"
	"github.com/vladislavdragonenkov/unieats/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/unieats/internal/metrics"
	"github.com/vladislavdragonenkov/unieats/internal/notify"
	"github.com/vladislavdragonenkov/unieats/internal/shop"
	"github.com/vladislavdragonenkov/unieats/internal/version"
)

// SessionStorageKey: ключ Storage, под которым лежит cookie сессии между запусками CLI.
const SessionStorageKey = "session"

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Config   Config
	Logger   *log.Entry
	Registry *prometheus.Registry
	Metrics  *metrics.ClientMetrics
	Storage  domain.Storage
	API      *api.Client
	Notifier *notify.Center
	Prices   *cart.PriceCache
	Cart     *cart.Manager
	Shops    *shop.Browser
	Foods    *food.Admin
	Health   *health.Handler

	producer *kafka.Producer
}

// Option настраивает NewDependencies.
type Option func(*depOptions)

type depOptions struct {
	confirmer domain.Confirmer
	storage   domain.Storage
	transport http.RoundTripper
}

// WithConfirmer задаёт подтверждение удаления блюд.
func WithConfirmer(c domain.Confirmer) Option {
	return func(o *depOptions) { o.confirmer = c }
}

// WithStorage подставляет готовое хранилище вместо драйвера из конфига.
func WithStorage(s domain.Storage) Option {
	return func(o *depOptions) { o.storage = s }
}

// WithTransport подменяет HTTP-транспорт клиента бэкенда.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *depOptions) { o.transport = rt }
}

// NewLogger создаёт logrus-логгер с уровнем из конфига.
func NewLogger(level string, out io.Writer) *log.Entry {
	logger := log.New()
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger.WithField("app", "unieats")
}

// NewDependencies открывает хранилище, восстанавливает сессию и корзину и связывает компоненты.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry, opts ...Option) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	var o depOptions
	for _, opt := range opts {
		opt(&o)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewClientMetrics(registry)

	storage := o.storage
	if storage == nil {
		var err error
		storage, err = openStorage(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	client, err := api.New(api.Config{
		BaseURL:   cfg.BackendURL,
		Timeout:   cfg.HTTPTimeout,
		Transport: o.transport,
	}, logger.WithField("component", "api"), m)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("create api client: %w", err)
	}

	d := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Metrics:  m,
		Storage:  storage,
		API:      client,
	}
	d.restoreSession(ctx)

	d.Notifier = notify.NewCenter(logger.WithField("component", "notify"),
		notify.WithTTL(cfg.NotificationTTL),
		notify.WithMetrics(m),
	)

	cartOpts := []cart.Option{cart.WithMetrics(m), cart.WithNamespace(cfg.Namespace)}
	if producer, err := initKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger); err == nil && producer != nil {
		d.producer = producer
		cartOpts = append(cartOpts, cart.WithPublisher(producer))
	}

	d.Prices = cart.NewPriceCache(client, cfg.PriceCacheTTL)
	d.Cart = cart.NewManager(storage, d.Prices, logger.WithField("component", "cart"), cartOpts...)
	d.Cart.Load(ctx)

	d.Shops = shop.NewBrowser(client, d.Notifier, logger.WithField("component", "shop"), m, cfg.SearchDelay)
	d.Foods = food.NewAdmin(client, d.Notifier, o.confirmer, logger.WithField("component", "food"))
	// Таблица блюд перезагружается после каждой правки, цены в корзине могли измениться.
	d.Foods.OnChange(func([]domain.Food) { d.Prices.Invalidate() })

	d.Health = health.NewHandler(version.GetVersion())
	if pinger, ok := storage.(domain.Pinger); ok {
		d.Health.RegisterChecker("storage", health.NewSimpleChecker("storage", pinger.Ping))
	}
	d.Health.RegisterChecker("backend", health.NewOptionalChecker("backend", client.Ping))

	return d, nil
}

func (d *Dependencies) restoreSession(ctx context.Context) {
	id, err := d.Storage.GetItem(ctx, SessionStorageKey)
	switch {
	case errors.Is(err, domain.ErrStorageKeyNotFound):
	case err != nil:
		d.Logger.WithError(err).Warn("failed to restore session")
	default:
		d.API.RestoreSession(id)
	}
}

// SaveSession сохраняет текущую cookie сессии; пустая сессия удаляет ключ.
func (d *Dependencies) SaveSession(ctx context.Context) error {
	id := d.API.SessionID()
	if id == "" {
		return d.Storage.RemoveItem(ctx, SessionStorageKey)
	}
	return d.Storage.SetItem(ctx, SessionStorageKey, id)
}

// Close освобождает ресурсы в обратном порядке создания.
func (d *Dependencies) Close() error {
	closeKafka(d.producer, d.Logger)
	if d.Shops != nil {
		d.Shops.Close()
	}
	if d.Notifier != nil {
		d.Notifier.Close()
	}
	if d.Storage != nil {
		if err := d.Storage.Close(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	return nil
}
