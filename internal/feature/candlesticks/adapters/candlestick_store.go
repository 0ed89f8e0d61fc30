package adapters

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"
)

// candlestickStore serves offset queries from candlesticks stored in a SQL database.
type candlestickStore struct {
	db *gorm.DB
}

var _ usecase.HistoryProvider = (*candlestickStore)(nil)

func NewCandlestickStore(db *gorm.DB) *candlestickStore {
	return &candlestickStore{db: db}
}

// SeriesKey identifies one stored candlestick series.
type SeriesKey struct {
	Symbol     string
	Period     entity.Period
	AdjustType entity.AdjustType
}

type CandlestickModel struct {
	ID           uint   `gorm:"primaryKey"`
	Symbol       string `gorm:"size:32;not null;uniqueIndex:candlestick_series_ts,priority:1;index:candlestick_symbol"`
	Period       string `gorm:"size:16;not null;uniqueIndex:candlestick_series_ts,priority:2"`
	AdjustType   string `gorm:"size:16;not null;uniqueIndex:candlestick_series_ts,priority:3"`
	Timestamp    int64  `gorm:"column:ts;not null;uniqueIndex:candlestick_series_ts,priority:4"`
	TradeSession string `gorm:"size:16;not null;uniqueIndex:candlestick_series_ts,priority:5"`

	Open     decimalColumn `gorm:"precision:20;scale:6;not null"`
	High     decimalColumn `gorm:"precision:20;scale:6;not null"`
	Low      decimalColumn `gorm:"precision:20;scale:6;not null"`
	Close    decimalColumn `gorm:"precision:20;scale:6;not null"`
	Volume   int64         `gorm:"not null;default:0"`
	Turnover decimalColumn `gorm:"precision:24;scale:4;not null"`
}

// decimalColumn stores a decimal exactly. SQLite would convert a NUMERIC
// column to REAL, so there the value is kept as text.
type decimalColumn struct {
	decimal.Decimal
}

func (decimalColumn) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text"
	}
	if field.Precision > 0 {
		return fmt.Sprintf("numeric(%d,%d)", field.Precision, field.Scale)
	}
	return "numeric"
}

func (CandlestickModel) TableName() string {
	return "candlesticks"
}

func toModel(key SeriesKey, e entity.Candlestick) CandlestickModel {
	return CandlestickModel{
		Symbol:       key.Symbol,
		Period:       key.Period.String(),
		AdjustType:   key.AdjustType.String(),
		Timestamp:    e.Timestamp,
		TradeSession: e.TradeSession.String(),
		Open:         decimalColumn{e.Open},
		High:         decimalColumn{e.High},
		Low:          decimalColumn{e.Low},
		Close:        decimalColumn{e.Close},
		Volume:       e.Volume,
		Turnover:     decimalColumn{e.Turnover},
	}
}

func toEntity(m CandlestickModel) (entity.Candlestick, error) {
	session, err := entity.ParseTradeSession(m.TradeSession)
	if err != nil {
		return entity.Candlestick{}, fmt.Errorf("row %d: %w", m.ID, err)
	}
	return entity.Candlestick{
		Close:        m.Close.Decimal,
		Open:         m.Open.Decimal,
		Low:          m.Low.Decimal,
		High:         m.High.Decimal,
		Volume:       m.Volume,
		Turnover:     m.Turnover.Decimal,
		Timestamp:    m.Timestamp,
		TradeSession: session,
	}, nil
}

// UpsertBatch inserts the candlesticks of one series, updating rows that
// already exist for the same timestamp and session.
func (r *candlestickStore) UpsertBatch(ctx context.Context, key SeriesKey, candles []entity.Candlestick) error {
	if len(candles) == 0 {
		return nil
	}
	ms := make([]CandlestickModel, 0, len(candles))
	for _, e := range candles {
		ms = append(ms, toModel(key, e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "symbol"}, {Name: "period"}, {Name: "adjust_type"}, {Name: "ts"}, {Name: "trade_session"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "turnover"}),
	}).Create(&ms).Error
}

// HistoryByOffset reads up to q.Count bars on the requested side of the
// reference time and returns them in ascending timestamp order.
func (r *candlestickStore) HistoryByOffset(ctx context.Context, q entity.HistoryQuery) ([]entity.Candlestick, error) {
	var known int64
	if err := r.db.WithContext(ctx).Model(&CandlestickModel{}).
		Where("symbol = ?", q.Symbol).
		Count(&known).Error; err != nil {
		return nil, err
	}
	if known == 0 {
		return nil, &usecase.ProviderError{Code: 404, Message: "symbol not found"}
	}

	ref := q.ReferenceTime.Unix()
	tx := r.db.WithContext(ctx).
		Where("symbol = ? AND period = ? AND adjust_type = ?", q.Symbol, q.Period.String(), q.AdjustType.String()).
		Where("trade_session IN ?", sessionCodes(q))
	if q.Direction == entity.Forward {
		tx = tx.Where("ts >= ?", ref).Order("ts ASC").Order("id ASC")
	} else {
		tx = tx.Where("ts <= ?", ref).Order("ts DESC").Order("id DESC")
	}

	var rows []CandlestickModel
	if err := tx.Limit(q.Count).Find(&rows).Error; err != nil {
		return nil, err
	}
	if q.Direction != entity.Forward {
		slices.Reverse(rows)
	}

	out := make([]entity.Candlestick, 0, len(rows))
	for _, m := range rows {
		c, err := toEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Ping checks that the underlying database is reachable.
func (r *candlestickStore) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// sessionCodes maps the query's session filter to stored trade_session values.
// Overnight bars are only part of the "all" filter when IncludeOvernight is set.
func sessionCodes(q entity.HistoryQuery) []string {
	if q.TradeSessions.Effective() == entity.TradeSessionsIntraday {
		return []string{entity.SessionIntraday.String()}
	}
	codes := []string{
		entity.SessionIntraday.String(),
		entity.SessionPre.String(),
		entity.SessionPost.String(),
	}
	if q.IncludeOvernight {
		codes = append(codes, entity.SessionOvernight.String())
	}
	return codes
}
