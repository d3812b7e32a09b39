package shop

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/metrics"
)

// DefaultRefreshInterval: период фонового обновления списка в дашборде.
const DefaultRefreshInterval = 5 * time.Minute

// Loader: то, что умеет перезагрузить список магазинов.
type Loader interface {
	Load(ctx context.Context) error
}

// RefreshOption настраивает Refresher.
type RefreshOption func(*Refresher)

// WithRefreshLogger задаёт logger.
func WithRefreshLogger(logger *log.Entry) RefreshOption {
	return func(r *Refresher) {
		r.logger = logger
	}
}

// WithRefreshMetrics подключает метрики.
func WithRefreshMetrics(m *metrics.ClientMetrics) RefreshOption {
	return func(r *Refresher) {
		r.metrics = m
	}
}

// Refresher периодически перезагружает список магазинов, пока открыт дашборд.
type Refresher struct {
	loader   Loader
	interval time.Duration
	logger   *log.Entry
	metrics  *metrics.ClientMetrics
}

// NewRefresher создаёт воркер; interval<=0 отключает обновление.
func NewRefresher(loader Loader, interval time.Duration, options ...RefreshOption) *Refresher {
	r := &Refresher{loader: loader, interval: interval}
	for _, option := range options {
		option(r)
	}
	if r.logger == nil {
		r.logger = log.WithField("component", "shop-refresher")
	}
	return r
}

// Run перезагружает список каждые interval до отмены ctx.
// Первая загрузка делается вызывающим, поэтому здесь сразу ждём тик.
func (r *Refresher) Run(ctx context.Context) {
	if r.loader == nil || r.interval <= 0 {
		r.logger.Debug("shop refresher is disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh выполняет одно обновление. Ошибку уже показал Load, здесь только учёт.
func (r *Refresher) Refresh(ctx context.Context) {
	err := r.loader.Load(ctx)
	if errors.Is(err, context.Canceled) {
		return
	}
	r.metrics.RecordShopRefresh(err)
	if err != nil {
		r.logger.WithError(err).Warn("shop refresh failed")
		return
	}
	r.logger.Debug("shop list refreshed")
}
