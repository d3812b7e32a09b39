package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/render"
	"github.com/vladislavdragonenkov/unieats/internal/shop"
	"github.com/vladislavdragonenkov/unieats/internal/web"
)

const shutdownTimeout = 5 * time.Second

// Run поднимает дашборд (`unieats serve`) и блокируется до отмены ctx.
func Run(ctx context.Context, deps *Dependencies) error {
	logger := deps.Logger.WithField("component", "serve")

	handler, err := newHandler(deps)
	if err != nil {
		return err
	}

	// Первая загрузка; при ошибке пользователь увидит уведомление на странице.
	if err := deps.Shops.Load(ctx); err != nil {
		logger.WithError(err).Warn("initial shop load failed")
	}

	refresher := shop.NewRefresher(deps.Shops, deps.Config.ShopRefresh,
		shop.WithRefreshLogger(deps.Logger.WithField("component", "shop-refresher")),
		shop.WithRefreshMetrics(deps.Metrics))

	lis, err := net.Listen("tcp", deps.Config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", deps.Config.HTTPAddr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	go refresher.Run(refreshCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("дашборд слушает %s", lis.Addr())
		logger.Infof("метрики: %s/metrics, health checks: /healthz /livez /readyz", lis.Addr())
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(srv, logger)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newHandler(deps *Dependencies) (http.Handler, error) {
	views, err := render.NewHTML()
	if err != nil {
		return nil, err
	}
	return web.NewRouter(web.Deps{
		Cart:     deps.Cart,
		Shops:    deps.Shops,
		Foods:    deps.Foods,
		Notifier: deps.Notifier,
		Views:    views,
		Health:   deps.Health,
		Gatherer: deps.Registry,
		Logger:   deps.Logger.WithField("component", "web"),
	}), nil
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
