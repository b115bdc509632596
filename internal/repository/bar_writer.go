package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"NQFlow/internal/domain/models"
	"NQFlow/internal/domain/repository"
)

// ClickHouseBarWriter implements BarWriter for the raw minute-bar table.
type ClickHouseBarWriter struct {
	db    *sql.DB
	table string
}

// NewClickHouseBarWriter creates ClickHouse bar storage.
func NewClickHouseBarWriter(db *sql.DB, table string) repository.BarWriter {
	return &ClickHouseBarWriter{db: db, table: table}
}

func (s *ClickHouseBarWriter) Store(ctx context.Context, b *models.Bar) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, instrument_id, symbol, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		b.EventTime, b.InstrumentID, b.Symbol,
		b.Open, b.High, b.Low, b.Close, b.Volume,
	)
	return err
}

func (s *ClickHouseBarWriter) StoreBatch(ctx context.Context, bars []*models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	// Multi-row VALUES insert to reduce round-trips. Chunked at 2000 rows.
	const chunkSize = 2000
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, b := range bars[start:end] {
			if b == nil || b.Symbol == "" || b.EventTime.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				b.EventTime, b.InstrumentID, b.Symbol,
				b.Open, b.High, b.Low, b.Close, b.Volume,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, instrument_id, symbol, open, high, low, close, volume) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseBarWriter) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseBarWriter) Close() error {
	return nil // pool managed by pkg
}
