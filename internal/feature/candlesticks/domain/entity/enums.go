package entity

import (
	"fmt"
	"strings"
)

// Period is the time span covered by one candlestick.
type Period int

const (
	PeriodUnknown Period = iota
	PeriodMin1
	PeriodMin2
	PeriodMin3
	PeriodMin5
	PeriodMin10
	PeriodMin15
	PeriodMin20
	PeriodMin30
	PeriodMin45
	PeriodMin60
	PeriodMin120
	PeriodMin180
	PeriodMin240
	PeriodDay
	PeriodWeek
	PeriodMonth
	PeriodQuarter
	PeriodYear
)

var periodCodes = map[Period]string{
	PeriodMin1:    "1m",
	PeriodMin2:    "2m",
	PeriodMin3:    "3m",
	PeriodMin5:    "5m",
	PeriodMin10:   "10m",
	PeriodMin15:   "15m",
	PeriodMin20:   "20m",
	PeriodMin30:   "30m",
	PeriodMin45:   "45m",
	PeriodMin60:   "60m",
	PeriodMin120:  "120m",
	PeriodMin180:  "180m",
	PeriodMin240:  "240m",
	PeriodDay:     "day",
	PeriodWeek:    "week",
	PeriodMonth:   "month",
	PeriodQuarter: "quarter",
	PeriodYear:    "year",
}

var periodMinutes = map[Period]int{
	PeriodMin1:   1,
	PeriodMin2:   2,
	PeriodMin3:   3,
	PeriodMin5:   5,
	PeriodMin10:  10,
	PeriodMin15:  15,
	PeriodMin20:  20,
	PeriodMin30:  30,
	PeriodMin45:  45,
	PeriodMin60:  60,
	PeriodMin120: 120,
	PeriodMin180: 180,
	PeriodMin240: 240,
}

func (p Period) String() string {
	if code, ok := periodCodes[p]; ok {
		return code
	}
	return "unknown"
}

// Valid reports whether p is a defined period other than PeriodUnknown.
func (p Period) Valid() bool {
	_, ok := periodCodes[p]
	return ok
}

// Minutes returns the length of an intraday period in minutes, or 0 for
// day and longer periods.
func (p Period) Minutes() int {
	return periodMinutes[p]
}

// ParsePeriod accepts the codes produced by Period.String.
func ParsePeriod(s string) (Period, error) {
	return parseCode(s, periodCodes, "period")
}

// AdjustType selects how prices are corrected for corporate actions.
type AdjustType int

const (
	NoAdjust AdjustType = iota
	ForwardAdjust
)

var adjustTypeCodes = map[AdjustType]string{
	NoAdjust:      "no_adjust",
	ForwardAdjust: "forward_adjust",
}

func (a AdjustType) String() string {
	if code, ok := adjustTypeCodes[a]; ok {
		return code
	}
	return "unknown"
}

func (a AdjustType) Valid() bool {
	_, ok := adjustTypeCodes[a]
	return ok
}

func ParseAdjustType(s string) (AdjustType, error) {
	return parseCode(s, adjustTypeCodes, "adjust type")
}

// TradeSessions filters which sessions a query covers. The zero value
// TradeSessionsUnspecified behaves like TradeSessionsAll.
type TradeSessions int

const (
	TradeSessionsUnspecified TradeSessions = iota
	TradeSessionsIntraday
	TradeSessionsAll
)

var tradeSessionsCodes = map[TradeSessions]string{
	TradeSessionsUnspecified: "",
	TradeSessionsIntraday:    "intraday",
	TradeSessionsAll:         "all",
}

func (t TradeSessions) String() string {
	if code, ok := tradeSessionsCodes[t]; ok {
		return code
	}
	return "unknown"
}

func (t TradeSessions) Valid() bool {
	_, ok := tradeSessionsCodes[t]
	return ok
}

// Effective resolves TradeSessionsUnspecified to TradeSessionsAll.
func (t TradeSessions) Effective() TradeSessions {
	if t == TradeSessionsUnspecified {
		return TradeSessionsAll
	}
	return t
}

// ParseTradeSessions accepts "intraday", "all" or an empty string.
func ParseTradeSessions(s string) (TradeSessions, error) {
	return parseCode(s, tradeSessionsCodes, "trade sessions")
}

// Direction selects which side of the reference time a query reads.
type Direction int

const (
	// Backward returns the bars at or before the reference time.
	Backward Direction = iota
	// Forward returns the bars at or after the reference time.
	Forward
)

var directionCodes = map[Direction]string{
	Backward: "backward",
	Forward:  "forward",
}

func (d Direction) String() string {
	if code, ok := directionCodes[d]; ok {
		return code
	}
	return "unknown"
}

func (d Direction) Valid() bool {
	_, ok := directionCodes[d]
	return ok
}

func ParseDirection(s string) (Direction, error) {
	return parseCode(s, directionCodes, "direction")
}

func parseCode[T comparable](s string, codes map[T]string, kind string) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v, code := range codes {
		if code == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", kind, s)
}
