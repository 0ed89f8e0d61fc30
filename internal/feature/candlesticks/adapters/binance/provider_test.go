package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"
)

const klinesBody = `[
	[1753747200000, "117800.10", "118900.00", "117500.00", "118500.50", "1234.5678", 1753833599999, "145678901.23", 120345, "600.1", "70000000.1", "0"],
	[1753833600000, "118500.50", "119200.00", "117900.00", "118100.00", "987.6543", 1753919999999, "116543210.98", 110234, "500.2", "60000000.2", "0"]
]`

func baseQuery() entity.HistoryQuery {
	return entity.HistoryQuery{
		Symbol:        "BTC/USDT",
		Period:        entity.PeriodDay,
		AdjustType:    entity.NoAdjust,
		ReferenceTime: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Count:         2,
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	got := Config{BaseURL: " https://example.test/ "}.withDefaults()
	assert.Equal(t, "https://example.test", got.BaseURL)
	assert.Equal(t, 15*time.Second, got.Timeout)

	got = Config{}.withDefaults()
	assert.Equal(t, "https://api.binance.com", got.BaseURL)
}

func TestProvider_HistoryByOffset_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		direction entity.Direction
		wantParam string
		absent    string
	}{
		{name: "backward sets endTime", direction: entity.Backward, wantParam: "endTime", absent: "startTime"},
		{name: "forward sets startTime", direction: entity.Forward, wantParam: "startTime", absent: "endTime"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := baseQuery()
			q.Direction = tt.direction

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v3/klines", r.URL.Path)
				query := r.URL.Query()
				assert.Equal(t, "BTCUSDT", query.Get("symbol"))
				assert.Equal(t, "1d", query.Get("interval"))
				assert.Equal(t, "2", query.Get("limit"))
				assert.Equal(t, strconv.FormatInt(q.ReferenceTime.UnixMilli(), 10), query.Get(tt.wantParam))
				assert.Empty(t, query.Get(tt.absent))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(klinesBody))
			}))
			defer server.Close()

			p := NewProvider(Config{BaseURL: server.URL}, server.Client())
			got, err := p.HistoryByOffset(context.Background(), q)

			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, int64(1753747200), got[0].Timestamp)
			assert.Equal(t, "117800.1", got[0].Open.String())
			assert.Equal(t, "118900", got[0].High.String())
			assert.Equal(t, "117500", got[0].Low.String())
			assert.Equal(t, "118500.5", got[0].Close.String())
			assert.Equal(t, int64(1234), got[0].Volume)
			assert.Equal(t, "145678901.23", got[0].Turnover.String())
			assert.Equal(t, entity.SessionIntraday, got[0].TradeSession)
			assert.Equal(t, int64(1753833600), got[1].Timestamp)
			assert.Empty(t, usecase.Inspect(got, q.Count))
		})
	}
}

func TestProvider_HistoryByOffset_Errors(t *testing.T) {
	t.Parallel()

	t.Run("api error becomes provider error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		}))
		defer server.Close()

		p := NewProvider(Config{BaseURL: server.URL}, server.Client())
		_, err := p.HistoryByOffset(context.Background(), baseQuery())

		require.Error(t, err)
		var pe *usecase.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, -1121, pe.Code)
		assert.Equal(t, "Invalid symbol.", pe.Error())
	})

	t.Run("malformed price", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[[1753747200000, "abc", "1", "1", "1", "1", 1753833599999, "1", 1, "1", "1", "0"]]`))
		}))
		defer server.Close()

		p := NewProvider(Config{BaseURL: server.URL}, server.Client())
		_, err := p.HistoryByOffset(context.Background(), baseQuery())

		require.Error(t, err)
		assert.Contains(t, err.Error(), `parse open "abc"`)
	})

	unsupported := []struct {
		name   string
		mutate func(q *entity.HistoryQuery)
		want   string
	}{
		{name: "quarter period", mutate: func(q *entity.HistoryQuery) { q.Period = entity.PeriodQuarter }, want: "period quarter is not supported by binance"},
		{name: "45m period", mutate: func(q *entity.HistoryQuery) { q.Period = entity.PeriodMin45 }, want: "period 45m is not supported by binance"},
		{name: "forward adjust", mutate: func(q *entity.HistoryQuery) { q.AdjustType = entity.ForwardAdjust }, want: "adjust type forward_adjust is not supported by binance"},
	}
	for _, tt := range unsupported {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
			}))
			defer server.Close()

			q := baseQuery()
			tt.mutate(&q)
			p := NewProvider(Config{BaseURL: server.URL}, server.Client())
			_, err := p.HistoryByOffset(context.Background(), q)

			var pe *usecase.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.want, pe.Message)
			assert.Equal(t, 0, calls)
		})
	}
}

func TestProvider_Ping(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ping", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL}, nil)
	assert.NoError(t, p.Ping(context.Background()))
}

func TestExchangeSymbol(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"BTC/USDT":   "BTCUSDT",
		"eth-usdt":   "ETHUSDT",
		"BTCUSDT.BN": "BTCUSDT",
		" solusdt ":  "SOLUSDT",
	}
	for in, want := range tests {
		assert.Equal(t, want, exchangeSymbol(in), in)
	}
}

func TestKlineInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		period entity.Period
		want   string
		ok     bool
	}{
		{entity.PeriodMin1, "1m", true},
		{entity.PeriodMin3, "3m", true},
		{entity.PeriodMin30, "30m", true},
		{entity.PeriodMin60, "1h", true},
		{entity.PeriodMin120, "2h", true},
		{entity.PeriodMin240, "4h", true},
		{entity.PeriodDay, "1d", true},
		{entity.PeriodWeek, "1w", true},
		{entity.PeriodMonth, "1M", true},
		{entity.PeriodMin2, "2m", false},
		{entity.PeriodMin45, "45m", false},
		{entity.PeriodMin180, "3h", false},
		{entity.PeriodQuarter, "", false},
		{entity.PeriodYear, "", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.period.String(), func(t *testing.T) {
			t.Parallel()

			got, ok := klineInterval(tt.period)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
