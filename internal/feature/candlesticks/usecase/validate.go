package usecase

import (
	"fmt"
	"strings"

	"quote_backend/internal/feature/candlesticks/domain/entity"
)

// Validate はプロバイダへ送る前にクエリを検証します。
// 最初に見つかった問題を*ValidationErrorとして返します。
func Validate(q entity.HistoryQuery) error {
	switch {
	case strings.TrimSpace(q.Symbol) == "":
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	case q.Count <= 0:
		return &ValidationError{Field: "count", Reason: "must be positive"}
	case q.Count > MaxCount:
		return &ValidationError{Field: "count", Reason: fmt.Sprintf("must not exceed %d", MaxCount)}
	case !q.Period.Valid():
		return &ValidationError{Field: "period", Reason: "is not a known period"}
	case !q.AdjustType.Valid():
		return &ValidationError{Field: "adjust_type", Reason: "is not a known adjust type"}
	case !q.TradeSessions.Valid():
		return &ValidationError{Field: "trade_sessions", Reason: "is not a known session filter"}
	case !q.Direction.Valid():
		return &ValidationError{Field: "direction", Reason: "is not a known direction"}
	case q.ReferenceTime.IsZero():
		return &ValidationError{Field: "time", Reason: "must be set"}
	}
	return nil
}
