package entity

import "time"

// HistoryQuery describes one request for candlesticks anchored at a
// reference time. It is passed by value and never modified after submission.
type HistoryQuery struct {
	Symbol           string        // Exchange-qualified symbol (e.g., "700.HK", "AAPL.US")
	Period           Period        // Bar length
	AdjustType       AdjustType    // Price adjustment mode
	IncludeOvernight bool          // Include overnight-session bars
	ReferenceTime    time.Time     // Anchor of the offset query
	Count            int           // Maximum number of bars to return
	TradeSessions    TradeSessions // Session filter; unspecified means all
	Direction        Direction     // Side of the anchor to read
}
