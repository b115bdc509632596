package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"NQFlow/internal/domain/models"
	domrepo "NQFlow/internal/domain/repository"
)

// SummaryTable holds the per-day rollups.
const SummaryTable = "nqflow.daily_summary"

// CHSummaryStore implements SummaryStore backed by ClickHouse.
type CHSummaryStore struct {
	db    *sql.DB
	table string
}

func NewCHSummaryStore(db *sql.DB) domrepo.SummaryStore {
	return &CHSummaryStore{db: db, table: SummaryTable}
}

func (s *CHSummaryStore) ReplaceRange(ctx context.Context, from, to time.Time, summaries []models.DailySummary) error {
	del := fmt.Sprintf("ALTER TABLE %s DELETE WHERE trade_date >= ? AND trade_date < ?", s.table)
	if _, err := s.db.ExecContext(ctx, del, from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return fmt.Errorf("clear summary range: %w", err)
	}
	if len(summaries) == 0 {
		return nil
	}

	values := make([]string, 0, len(summaries))
	args := make([]interface{}, 0, len(summaries)*14)
	for _, row := range summaries {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			row.TradingDate, row.Symbol, row.MarketOpenTime, row.MarketCloseTime,
			row.Open, row.High, row.Low, row.Close, row.Volume,
			row.MinutesTraded, row.PriceVolatility, row.SMA10, row.SMA20, row.SMA50,
		)
	}
	q := fmt.Sprintf("INSERT INTO %s (trade_date, symbol, market_open_time, market_close_time, open, high, low, close, volume, minutes_traded, price_volatility, sma_10, sma_20, sma_50) VALUES %s",
		s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert summaries: %w", err)
	}
	return nil
}

func (s *CHSummaryStore) Query(ctx context.Context, symbol string, from, to time.Time) ([]models.DailySummary, error) {
	q := fmt.Sprintf(`
        SELECT trade_date, symbol, market_open_time, market_close_time, open, high, low, close, volume, minutes_traded, price_volatility, sma_10, sma_20, sma_50
        FROM %s
        WHERE trade_date >= ? AND trade_date < ?%s
        ORDER BY trade_date ASC`, s.table, symbolFilter(symbol))
	args := []interface{}{from.Format("2006-01-02"), to.Format("2006-01-02")}
	if symbol != "" {
		args = append(args, symbol)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	out := make([]models.DailySummary, 0, 64)
	for rows.Next() {
		var row models.DailySummary
		if err := rows.Scan(&row.TradingDate, &row.Symbol, &row.MarketOpenTime, &row.MarketCloseTime,
			&row.Open, &row.High, &row.Low, &row.Close, &row.Volume,
			&row.MinutesTraded, &row.PriceVolatility, &row.SMA10, &row.SMA20, &row.SMA50); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		row.MarketOpenTime = row.MarketOpenTime.UTC()
		row.MarketCloseTime = row.MarketCloseTime.UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}
