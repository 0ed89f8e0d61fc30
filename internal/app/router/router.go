package router

import (
	"github.com/gin-gonic/gin"

	"quote_backend/internal/feature/candlesticks/transport/handler"
	platformhandler "quote_backend/internal/platform/http/handler"
	"quote_backend/internal/platform/http/middleware"
	jwtmw "quote_backend/internal/platform/jwt"
	"quote_backend/internal/platform/metrics"
)

func NewRouter(candles *handler.CandlesticksHandler, ready platformhandler.Pinger,
	m *metrics.Metrics, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", platformhandler.Health)
	r.HEAD("/healthz", platformhandler.Health)
	r.OPTIONS("/healthz", platformhandler.Health)
	// プロバイダへの疎通確認
	r.GET("/readyz", platformhandler.Ready(ready))
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// 認証必須のルート
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT と candlesticks:read スコープが必要になる
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(jwtSecret), jwtmw.RequireScope(jwtmw.ScopeCandlesticksRead))
	{
		auth.GET("/candlesticks/:symbol/history/offset", candles.GetHistoryByOffset)
	}

	return r
}
