package adapters

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"quote_backend/internal/feature/candlesticks/domain/entity"
)

// CSVHeader is the column layout accepted by ImportCSV.
var CSVHeader = []string{
	"symbol", "period", "adjust_type", "timestamp",
	"open", "high", "low", "close", "volume", "turnover", "trade_session",
}

// ImportCSV reads fixture rows and upserts them grouped by series.
// It returns the number of rows stored.
func (r *candlestickStore) ImportCSV(ctx context.Context, src io.Reader) (int, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = len(CSVHeader)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	for i, name := range CSVHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != name {
			return 0, fmt.Errorf("csv column %d: expected %q, got %q", i+1, name, header[i])
		}
	}

	// a row repeated within one file replaces the earlier one
	type rowKey struct {
		series  SeriesKey
		ts      int64
		session entity.TradeSession
	}
	series := make(map[SeriesKey][]entity.Candlestick)
	seen := make(map[rowKey]int)
	var order []SeriesKey
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return 0, fmt.Errorf("read csv line %d: %w", line, err)
		}
		key, c, err := parseRecord(rec)
		if err != nil {
			return 0, fmt.Errorf("csv line %d: %w", line, err)
		}
		if _, ok := series[key]; !ok {
			order = append(order, key)
		}
		rk := rowKey{series: key, ts: c.Timestamp, session: c.TradeSession}
		if i, ok := seen[rk]; ok {
			series[key][i] = c
			continue
		}
		seen[rk] = len(series[key])
		series[key] = append(series[key], c)
	}

	total := 0
	for _, key := range order {
		cs := series[key]
		if err := r.UpsertBatch(ctx, key, cs); err != nil {
			return total, fmt.Errorf("upsert %s %s: %w", key.Symbol, key.Period, err)
		}
		slog.Info("imported candlesticks", "symbol", key.Symbol, "period", key.Period.String(), "adjust_type", key.AdjustType.String(), "rows", len(cs))
		total += len(cs)
	}
	return total, nil
}

func parseRecord(rec []string) (SeriesKey, entity.Candlestick, error) {
	var (
		key SeriesKey
		c   entity.Candlestick
		err error
	)
	key.Symbol = strings.TrimSpace(rec[0])
	if key.Symbol == "" {
		return key, c, errors.New("empty symbol")
	}
	if key.Period, err = entity.ParsePeriod(rec[1]); err != nil {
		return key, c, err
	}
	if key.AdjustType, err = entity.ParseAdjustType(rec[2]); err != nil {
		return key, c, err
	}
	if c.Timestamp, err = strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64); err != nil {
		return key, c, fmt.Errorf("parse timestamp %q: %w", rec[3], err)
	}
	if c.Open, err = decimal.NewFromString(strings.TrimSpace(rec[4])); err != nil {
		return key, c, fmt.Errorf("parse open %q: %w", rec[4], err)
	}
	if c.High, err = decimal.NewFromString(strings.TrimSpace(rec[5])); err != nil {
		return key, c, fmt.Errorf("parse high %q: %w", rec[5], err)
	}
	if c.Low, err = decimal.NewFromString(strings.TrimSpace(rec[6])); err != nil {
		return key, c, fmt.Errorf("parse low %q: %w", rec[6], err)
	}
	if c.Close, err = decimal.NewFromString(strings.TrimSpace(rec[7])); err != nil {
		return key, c, fmt.Errorf("parse close %q: %w", rec[7], err)
	}
	if c.Volume, err = strconv.ParseInt(strings.TrimSpace(rec[8]), 10, 64); err != nil {
		return key, c, fmt.Errorf("parse volume %q: %w", rec[8], err)
	}
	if c.Turnover, err = decimal.NewFromString(strings.TrimSpace(rec[9])); err != nil {
		return key, c, fmt.Errorf("parse turnover %q: %w", rec[9], err)
	}
	if c.TradeSession, err = entity.ParseTradeSession(rec[10]); err != nil {
		return key, c, err
	}
	return key, c, nil
}
