// Package entity defines the domain models for the candlesticks feature.
package entity

import "github.com/shopspring/decimal"

// Candlestick represents one OHLCV bar returned by a market-data provider.
type Candlestick struct {
	Close        decimal.Decimal // Closing price
	Open         decimal.Decimal // Opening price
	Low          decimal.Decimal // Lowest price during this period
	High         decimal.Decimal // Highest price during this period
	Volume       int64           // Traded quantity
	Turnover     decimal.Decimal // Traded value
	Timestamp    int64           // Period start, epoch seconds
	TradeSession TradeSession    // Session the bar belongs to
}

// TradeSession identifies the trading session a single bar belongs to.
type TradeSession int

const (
	SessionIntraday TradeSession = iota
	SessionPre
	SessionPost
	SessionOvernight
)

var tradeSessionCodes = map[TradeSession]string{
	SessionIntraday:  "intraday",
	SessionPre:       "pre",
	SessionPost:      "post",
	SessionOvernight: "overnight",
}

func (s TradeSession) String() string {
	if code, ok := tradeSessionCodes[s]; ok {
		return code
	}
	return "unknown"
}

// Valid reports whether s is one of the defined sessions.
func (s TradeSession) Valid() bool {
	_, ok := tradeSessionCodes[s]
	return ok
}

// ParseTradeSession accepts the codes produced by TradeSession.String.
func ParseTradeSession(s string) (TradeSession, error) {
	return parseCode(s, tradeSessionCodes, "trade session")
}
