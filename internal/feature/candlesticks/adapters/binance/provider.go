package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"
)

// calendarIntervals covers periods of a day or longer.
var calendarIntervals = map[entity.Period]string{
	entity.PeriodDay:   "1d",
	entity.PeriodWeek:  "1w",
	entity.PeriodMonth: "1M",
}

// intradayIntervals lists the minute and hour klines served by Binance.
var intradayIntervals = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true,
}

// klineInterval returns the Binance kline interval for p.
func klineInterval(p entity.Period) (string, bool) {
	if code, ok := calendarIntervals[p]; ok {
		return code, true
	}
	m := p.Minutes()
	if m == 0 {
		return "", false
	}
	code := fmt.Sprintf("%dm", m)
	if m%60 == 0 {
		code = fmt.Sprintf("%dh", m/60)
	}
	return code, intradayIntervals[code]
}

// Provider fetches klines through the go-binance SDK.
type Provider struct {
	cfg    Config
	client *gobinance.Client
}

var _ usecase.HistoryProvider = (*Provider)(nil)

// NewProvider builds a Provider. A nil httpClient gets one with cfg.Timeout.
func NewProvider(cfg Config, httpClient *http.Client) *Provider {
	final := cfg.withDefaults()
	client := gobinance.NewClient("", "")
	client.BaseURL = final.BaseURL
	if httpClient == nil {
		httpClient = &http.Client{Timeout: final.Timeout}
	}
	client.HTTPClient = httpClient
	return &Provider{cfg: final, client: client}
}

// HistoryByOffset maps the query onto the klines endpoint. Backward queries
// end at the reference time, forward queries start at it.
func (p *Provider) HistoryByOffset(ctx context.Context, q entity.HistoryQuery) ([]entity.Candlestick, error) {
	interval, ok := klineInterval(q.Period)
	if !ok {
		return nil, &usecase.ProviderError{Message: fmt.Sprintf("period %s is not supported by binance", q.Period)}
	}
	if q.AdjustType != entity.NoAdjust {
		return nil, &usecase.ProviderError{Message: fmt.Sprintf("adjust type %s is not supported by binance", q.AdjustType)}
	}

	svc := p.client.NewKlinesService().
		Symbol(exchangeSymbol(q.Symbol)).
		Interval(interval).
		Limit(q.Count)
	ref := q.ReferenceTime.UnixMilli()
	if q.Direction == entity.Forward {
		svc = svc.StartTime(ref)
	} else {
		svc = svc.EndTime(ref)
	}

	kls, err := svc.Do(ctx)
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]entity.Candlestick, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		c, err := toCandlestick(kl)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Ping checks that the REST endpoint answers.
func (p *Provider) Ping(ctx context.Context) error {
	if err := p.client.NewPingService().Do(ctx); err != nil {
		return translateError(err)
	}
	return nil
}

func toCandlestick(kl *gobinance.Kline) (entity.Candlestick, error) {
	var (
		c   entity.Candlestick
		err error
	)
	if c.Open, err = decimal.NewFromString(kl.Open); err != nil {
		return c, fmt.Errorf("parse open %q: %w", kl.Open, err)
	}
	if c.High, err = decimal.NewFromString(kl.High); err != nil {
		return c, fmt.Errorf("parse high %q: %w", kl.High, err)
	}
	if c.Low, err = decimal.NewFromString(kl.Low); err != nil {
		return c, fmt.Errorf("parse low %q: %w", kl.Low, err)
	}
	if c.Close, err = decimal.NewFromString(kl.Close); err != nil {
		return c, fmt.Errorf("parse close %q: %w", kl.Close, err)
	}
	vol, err := decimal.NewFromString(kl.Volume)
	if err != nil {
		return c, fmt.Errorf("parse volume %q: %w", kl.Volume, err)
	}
	c.Volume = vol.IntPart()
	if c.Turnover, err = decimal.NewFromString(kl.QuoteAssetVolume); err != nil {
		return c, fmt.Errorf("parse quote volume %q: %w", kl.QuoteAssetVolume, err)
	}
	c.Timestamp = kl.OpenTime / 1000
	c.TradeSession = entity.SessionIntraday
	return c, nil
}

func translateError(err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return &usecase.ProviderError{Code: int(apiErr.Code), Message: apiErr.Message, Err: err}
	}
	return err
}

// exchangeSymbol converts "BTC/USDT", "btc-usdt" or "BTCUSDT.BN" to "BTCUSDT".
func exchangeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.LastIndex(s, "."); i > 0 {
		s = s[:i]
	}
	return strings.NewReplacer("/", "", "-", "", "_", "").Replace(s)
}
