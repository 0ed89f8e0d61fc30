package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"quote_backend/internal/app/di"
	"quote_backend/internal/app/router"
	"quote_backend/internal/feature/candlesticks/transport/handler"
	"quote_backend/internal/feature/candlesticks/usecase"
	"quote_backend/internal/platform/config"
	"quote_backend/internal/platform/logger"
	"quote_backend/internal/platform/metrics"
)

func main() {
	cfgPath := flag.String("config", "", "optional config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	logger.Init("quote-server", cfg.Log.Level, cfg.Log.Format, os.Stderr)

	// JWT_SECRETチェック（未設定では認証付きルートが全て500になる）
	if cfg.JWT.Secret == "" {
		log.Println("[WARN] QUOTE_JWT_SECRET is not set. Set a strong secret in production.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Provider
	provider, cleanup, err := di.OpenSession(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	// Usecase
	uc := usecase.NewHistoryUsecase(provider, cfg.HTTP.RequestTimeout)

	// Handler
	m := metrics.NewMetrics(cfg.Provider)
	candlesH := handler.NewCandlesticksHandler(uc, m)

	// ルータ生成
	r := router.NewRouter(candlesH, provider, m, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on %s (provider=%s)", cfg.HTTP.Addr, cfg.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Println("[ERROR] server stopped:", err)
		cleanup()
		os.Exit(1)
	}
	log.Println("server stopped")
}
