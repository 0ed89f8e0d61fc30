// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"quote_backend/internal/feature/candlesticks/adapters"
	"quote_backend/internal/feature/candlesticks/adapters/binance"
	"quote_backend/internal/feature/candlesticks/adapters/gateway"
	"quote_backend/internal/feature/candlesticks/usecase"
	"quote_backend/internal/platform/config"
	"quote_backend/internal/platform/db"
	platformhttp "quote_backend/internal/platform/http"
)

// sessionPingTimeout bounds the connectivity check made when a session opens.
const sessionPingTimeout = 10 * time.Second

// Provider is a history source that can also report whether it is reachable.
type Provider interface {
	usecase.HistoryProvider
	Ping(ctx context.Context) error
}

// OpenSession builds the provider selected by cfg.Provider and checks that it
// answers. The returned cleanup must be called once the provider is no longer used.
// Any failure is reported as usecase.ErrSessionUnavailable.
func OpenSession(ctx context.Context, cfg *config.Config) (Provider, func(), error) {
	p, cleanup, err := newProvider(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", usecase.ErrSessionUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, sessionPingTimeout)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("%w: %v", usecase.ErrSessionUnavailable, err)
	}

	slog.Info("provider session opened", "provider", cfg.Provider)
	return p, cleanup, nil
}

func newProvider(cfg *config.Config) (Provider, func(), error) {
	noop := func() {}

	switch cfg.Provider {
	case config.ProviderGateway:
		gc := gateway.Config{
			BaseURL:     cfg.Gateway.URL,
			AccessToken: cfg.Gateway.AccessToken,
			Timeout:     cfg.Gateway.Timeout,
		}
		if err := gc.Validate(); err != nil {
			return nil, nil, err
		}
		return gateway.NewClient(gc, platformhttp.NewHTTPClient(gc.Timeout)), noop, nil

	case config.ProviderBinance:
		bc := binance.Config{BaseURL: cfg.Binance.URL, Timeout: cfg.Binance.Timeout}
		return binance.NewProvider(bc, platformhttp.NewHTTPClient(cfg.Binance.Timeout)), noop, nil

	case config.ProviderSQLite:
		gdb, err := db.OpenDB(cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		return adapters.NewCandlestickStore(gdb), closeDB(gdb), nil
	}
	return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func closeDB(gdb *gorm.DB) func() {
	return func() {
		sqlDB, err := gdb.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}
}
