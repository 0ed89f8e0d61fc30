package usecase

import (
	"fmt"

	"quote_backend/internal/feature/candlesticks/domain/entity"
)

// AnomalyKind はプロバイダ契約違反の種類です。
type AnomalyKind string

const (
	AnomalyExceedsCount     AnomalyKind = "exceeds_count"
	AnomalyOutOfOrder       AnomalyKind = "out_of_order"
	AnomalyPriceRange       AnomalyKind = "price_range"
	AnomalyNegativeVolume   AnomalyKind = "negative_volume"
	AnomalyNegativeTurnover AnomalyKind = "negative_turnover"
)

// Anomaly は検出された1件の違反です。系列全体に関するものはIndexが-1になります。
type Anomaly struct {
	Kind   AnomalyKind
	Index  int
	Detail string
}

func (a Anomaly) String() string {
	if a.Index < 0 {
		return fmt.Sprintf("%s: %s", a.Kind, a.Detail)
	}
	return fmt.Sprintf("%s at %d: %s", a.Kind, a.Index, a.Detail)
}

// Inspect は取得結果がプロバイダ契約を満たしているかを調べます。
// データは一切変更せず、違反を報告するだけです。
func Inspect(cs []entity.Candlestick, count int) []Anomaly {
	var out []Anomaly
	if count > 0 && len(cs) > count {
		out = append(out, Anomaly{
			Kind:   AnomalyExceedsCount,
			Index:  -1,
			Detail: fmt.Sprintf("got %d records, requested %d", len(cs), count),
		})
	}
	for i, c := range cs {
		if i > 0 && c.Timestamp < cs[i-1].Timestamp {
			out = append(out, Anomaly{
				Kind:   AnomalyOutOfOrder,
				Index:  i,
				Detail: fmt.Sprintf("timestamp %d after %d", c.Timestamp, cs[i-1].Timestamp),
			})
		}
		if c.Low.GreaterThan(c.High) ||
			c.Open.LessThan(c.Low) || c.Open.GreaterThan(c.High) ||
			c.Close.LessThan(c.Low) || c.Close.GreaterThan(c.High) {
			out = append(out, Anomaly{
				Kind:   AnomalyPriceRange,
				Index:  i,
				Detail: fmt.Sprintf("open=%s close=%s outside low=%s high=%s", c.Open, c.Close, c.Low, c.High),
			})
		}
		if c.Volume < 0 {
			out = append(out, Anomaly{Kind: AnomalyNegativeVolume, Index: i, Detail: fmt.Sprintf("volume=%d", c.Volume)})
		}
		if c.Turnover.IsNegative() {
			out = append(out, Anomaly{Kind: AnomalyNegativeTurnover, Index: i, Detail: "turnover=" + c.Turnover.String()})
		}
	}
	return out
}
