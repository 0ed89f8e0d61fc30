// Package handler はcandlesticksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/transport/http/dto"
	"quote_backend/internal/feature/candlesticks/usecase"
)

// StatusClientClosedRequest はクライアントが応答前に切断した場合のステータスです。
const StatusClientClosedRequest = 499

// timeLayouts は time パラメータとして受け付ける書式です。タイムゾーンがない場合はUTCとみなします。
var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// HistoryUsecase はローソク足履歴取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type HistoryUsecase interface {
	HistoryByOffset(ctx context.Context, q entity.HistoryQuery) ([]entity.Candlestick, error)
}

// Recorder はリクエスト結果のメトリクスを記録します。
type Recorder interface {
	ObserveHistory(outcome string, elapsed time.Duration, records int)
}

type noopRecorder struct{}

func (noopRecorder) ObserveHistory(string, time.Duration, int) {}

// CandlesticksHandler はローソク足履歴のHTTPリクエストを処理します。
type CandlesticksHandler struct {
	uc  HistoryUsecase
	rec Recorder
}

// NewCandlesticksHandler はCandlesticksHandlerの新しいインスタンスを生成します。
// recがnilの場合、メトリクスは記録しません。
func NewCandlesticksHandler(uc HistoryUsecase, rec Recorder) *CandlesticksHandler {
	if rec == nil {
		rec = noopRecorder{}
	}
	return &CandlesticksHandler{uc: uc, rec: rec}
}

// GetHistoryByOffset は基準時刻を起点としたローソク足をJSONで返します。
//
// エンドポイント例:
// GET /candlesticks/700.HK/history/offset?period=day&time=2025-08-01&count=10&trade_sessions=all
func (h *CandlesticksHandler) GetHistoryByOffset(c *gin.Context) {
	start := time.Now()

	q, err := parseQuery(c)
	if err != nil {
		h.rec.ObserveHistory("invalid", time.Since(start), 0)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	candles, err := h.uc.HistoryByOffset(c.Request.Context(), q)
	if err != nil {
		status, outcome, code := classify(err)
		h.rec.ObserveHistory(outcome, time.Since(start), 0)
		_ = c.Error(err)
		c.JSON(status, dto.ErrorResponse{Error: err.Error(), Code: code})
		return
	}
	h.rec.ObserveHistory("ok", time.Since(start), len(candles))

	// データをフォーマット
	out := make([]dto.CandlestickResponse, 0, len(candles))
	for _, x := range candles {
		out = append(out, dto.CandlestickResponse{
			Close:        x.Close,
			Open:         x.Open,
			Low:          x.Low,
			High:         x.High,
			Volume:       x.Volume,
			Turnover:     x.Turnover,
			Timestamp:    x.Timestamp,
			TradeSession: x.TradeSession.String(),
		})
	}

	c.JSON(http.StatusOK, dto.HistoryResponse{
		Symbol:       q.Symbol,
		Period:       q.Period.String(),
		Candlesticks: out,
	})
}

func parseQuery(c *gin.Context) (entity.HistoryQuery, error) {
	var (
		q   entity.HistoryQuery
		err error
	)
	q.Symbol = strings.TrimSpace(c.Param("symbol"))

	// 未指定の場合はデフォルト値を使用
	if q.Period, err = entity.ParsePeriod(c.DefaultQuery("period", "day")); err != nil {
		return q, &usecase.ValidationError{Field: "period", Reason: err.Error()}
	}
	if q.AdjustType, err = entity.ParseAdjustType(c.DefaultQuery("adjust_type", "no_adjust")); err != nil {
		return q, &usecase.ValidationError{Field: "adjust_type", Reason: err.Error()}
	}
	if q.IncludeOvernight, err = strconv.ParseBool(c.DefaultQuery("include_overnight", "false")); err != nil {
		return q, &usecase.ValidationError{Field: "include_overnight", Reason: "must be a boolean"}
	}
	if q.TradeSessions, err = entity.ParseTradeSessions(c.Query("trade_sessions")); err != nil {
		return q, &usecase.ValidationError{Field: "trade_sessions", Reason: err.Error()}
	}
	if q.Direction, err = entity.ParseDirection(c.DefaultQuery("direction", "backward")); err != nil {
		return q, &usecase.ValidationError{Field: "direction", Reason: err.Error()}
	}

	raw := c.Query("count")
	if raw == "" {
		return q, &usecase.ValidationError{Field: "count", Reason: "is required"}
	}
	if q.Count, err = strconv.Atoi(raw); err != nil {
		return q, &usecase.ValidationError{Field: "count", Reason: "must be an integer"}
	}

	if q.ReferenceTime, err = ParseTime(c.Query("time")); err != nil {
		return q, &usecase.ValidationError{Field: "time", Reason: err.Error()}
	}
	return q, nil
}

// ParseTime は RFC3339、"2006-01-02T15:04:05"、"2006-01-02" のいずれかを受け付けます。
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("is required")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("must be RFC3339, 2006-01-02T15:04:05 or 2006-01-02")
}

// classify はエラーをHTTPステータス、メトリクス用の結果名、エラーコードに変換します。
func classify(err error) (status int, outcome string, code int) {
	var pe *usecase.ProviderError
	switch {
	case errors.Is(err, usecase.ErrInvalidQuery):
		return http.StatusBadRequest, "invalid", 0
	case errors.As(err, &pe):
		return http.StatusBadGateway, "provider_error", pe.Code
	case errors.Is(err, usecase.ErrTimeout):
		return http.StatusGatewayTimeout, "timeout", 0
	case errors.Is(err, usecase.ErrCancelled):
		return StatusClientClosedRequest, "cancelled", 0
	case errors.Is(err, usecase.ErrSessionUnavailable):
		return http.StatusServiceUnavailable, "unavailable", 0
	}
	return http.StatusInternalServerError, "error", 0
}
