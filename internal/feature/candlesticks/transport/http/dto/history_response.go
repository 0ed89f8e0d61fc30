package dto

import "github.com/shopspring/decimal"

// HistoryResponse はオフセット指定のローソク足履歴レスポンスDTOです。
type HistoryResponse struct {
	Symbol       string                `json:"symbol"`       // 銘柄コード
	Period       string                `json:"period"`       // 足の種類
	Candlesticks []CandlestickResponse `json:"candlesticks"` // 時刻の昇順
}

// CandlestickResponse はローソク足1本のレスポンスDTOです。
// 価格と売買代金は精度を保つため文字列で表現します。
type CandlestickResponse struct {
	Close        decimal.Decimal `json:"close"`         // 終値
	Open         decimal.Decimal `json:"open"`          // 始値
	Low          decimal.Decimal `json:"low"`           // 安値
	High         decimal.Decimal `json:"high"`          // 高値
	Volume       int64           `json:"volume"`        // 出来高
	Turnover     decimal.Decimal `json:"turnover"`      // 売買代金
	Timestamp    int64           `json:"timestamp"`     // 期間開始（UNIX秒）
	TradeSession string          `json:"trade_session"` // 取引セッション
}

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}
