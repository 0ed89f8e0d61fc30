package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"quote_backend/internal/app/di"
	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/transport/handler"
	"quote_backend/internal/feature/candlesticks/usecase"
	"quote_backend/internal/platform/config"
	"quote_backend/internal/platform/logger"
)

func main() {
	symbol := flag.String("symbol", "700.HK", "exchange-qualified symbol")
	period := flag.String("period", "day", "candlestick period (1m..240m, day, week, month, quarter, year)")
	adjust := flag.String("adjust", "no_adjust", "price adjustment (no_adjust, forward_adjust)")
	overnight := flag.Bool("overnight", false, "include overnight session bars")
	at := flag.String("time", "2025-08-01T00:00:00", "reference time (RFC3339, 2006-01-02T15:04:05 or 2006-01-02; UTC when no zone)")
	count := flag.Int("count", 10, "number of candlesticks")
	sessions := flag.String("sessions", "all", "trade sessions (intraday, all)")
	direction := flag.String("direction", "backward", "backward or forward from the reference time")
	cfgPath := flag.String("config", "", "optional config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create quote context: %v\n", err)
		os.Exit(1)
	}
	logger.Init("history", cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, cleanup, err := di.OpenSession(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create quote context: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	q, err := buildQuery(*symbol, *period, *adjust, *overnight, *at, *count, *sessions, *direction)
	if err != nil {
		fail(err, cleanup)
	}

	uc := usecase.NewHistoryUsecase(provider, usecase.DefaultTimeout)

	type result struct {
		candles []entity.Candlestick
		err     error
	}
	done := make(chan result, 1)
	uc.HistoryByOffsetFunc(ctx, q, func(cs []entity.Candlestick, err error) {
		done <- result{candles: cs, err: err}
	})

	r := <-done
	if r.err != nil {
		fail(r.err, cleanup)
	}

	for _, a := range usecase.Inspect(r.candles, q.Count) {
		slog.Warn("provider returned unexpected data", "anomaly", a.String())
	}
	for _, c := range r.candles {
		fmt.Printf(" close=%s open=%s low=%s high=%s volume=%d turnover=%s timestamp=%d\n",
			c.Close, c.Open, c.Low, c.High, c.Volume, c.Turnover, c.Timestamp)
	}
}

func fail(err error, cleanup func()) {
	fmt.Fprintf(os.Stderr, "failed to request history candlesticks: %v\n", err)
	cleanup()
	os.Exit(1)
}

func buildQuery(symbol, period, adjust string, overnight bool, at string, count int, sessions, direction string) (entity.HistoryQuery, error) {
	q := entity.HistoryQuery{
		Symbol:           symbol,
		IncludeOvernight: overnight,
		Count:            count,
	}
	var err error
	if q.Period, err = entity.ParsePeriod(period); err != nil {
		return q, &usecase.ValidationError{Field: "period", Reason: err.Error()}
	}
	if q.AdjustType, err = entity.ParseAdjustType(adjust); err != nil {
		return q, &usecase.ValidationError{Field: "adjust_type", Reason: err.Error()}
	}
	if q.TradeSessions, err = entity.ParseTradeSessions(sessions); err != nil {
		return q, &usecase.ValidationError{Field: "trade_sessions", Reason: err.Error()}
	}
	if q.Direction, err = entity.ParseDirection(direction); err != nil {
		return q, &usecase.ValidationError{Field: "direction", Reason: err.Error()}
	}
	if q.ReferenceTime, err = handler.ParseTime(at); err != nil {
		return q, &usecase.ValidationError{Field: "time", Reason: err.Error()}
	}
	return q, nil
}
