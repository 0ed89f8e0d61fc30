package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/transport/handler"
	"quote_backend/internal/feature/candlesticks/usecase"
	jwtmw "quote_backend/internal/platform/jwt"
	"quote_backend/internal/platform/metrics"
)

const testSecret = "router-test-secret"

type stubProvider struct {
	pingErr error
}

func (s *stubProvider) HistoryByOffset(ctx context.Context, q entity.HistoryQuery) ([]entity.Candlestick, error) {
	return []entity.Candlestick{{
		Close:        decimal.RequireFromString("10.5"),
		Open:         decimal.RequireFromString("10"),
		Low:          decimal.RequireFromString("9.5"),
		High:         decimal.RequireFromString("11"),
		Volume:       100,
		Turnover:     decimal.RequireFromString("1050"),
		Timestamp:    q.ReferenceTime.Unix(),
		TradeSession: entity.SessionIntraday,
	}}, nil
}

func (s *stubProvider) Ping(context.Context) error { return s.pingErr }

func newTestRouter(t *testing.T, p *stubProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uc := usecase.NewHistoryUsecase(p, time.Second)
	m := metrics.NewMetrics("stub")
	return NewRouter(handler.NewCandlesticksHandler(uc, m), p, m, testSecret)
}

func token(t *testing.T, scopes ...string) string {
	t.Helper()
	signed, err := jwtmw.NewGenerator(testSecret, time.Hour).GenerateToken("router-test", scopes)
	require.NoError(t, err)
	return signed
}

func TestNewRouter_Health(t *testing.T) {
	r := newTestRouter(t, &stubProvider{})

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodHead, http.StatusOK},
		{http.MethodOptions, http.StatusNoContent},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))
		assert.Equal(t, tt.want, w.Code, tt.method)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	}
}

func TestNewRouter_Ready(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(t, &stubProvider{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())

	w = httptest.NewRecorder()
	newTestRouter(t, &stubProvider{pingErr: errors.New("db down")}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"db down"}`, w.Body.String())
}

func TestNewRouter_HistoryRequiresAuth(t *testing.T) {
	const path = "/candlesticks/700.HK/history/offset?time=2025-08-01&count=1"

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no token", header: "", want: http.StatusUnauthorized},
		{name: "token without scope", header: "Bearer " + token(t), want: http.StatusForbidden},
		{name: "token with scope", header: "Bearer " + token(t, jwtmw.ScopeCandlesticksRead), want: http.StatusOK},
	}

	r := newTestRouter(t, &stubProvider{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestNewRouter_MetricsCountsRequests(t *testing.T) {
	r := newTestRouter(t, &stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/candlesticks/700.HK/history/offset?time=2025-08-01&count=1", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, jwtmw.ScopeCandlesticksRead))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"symbol":"700.HK","period":"day","candlesticks":[{"close":"10.5","open":"10","low":"9.5","high":"11","volume":100,"turnover":"1050","timestamp":1754006400,"trade_session":"intraday"}]}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `quote_history_requests_total{outcome="ok",provider="stub"} 1`)
}
