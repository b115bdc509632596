package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"NQFlow/internal/domain/models"
	pkgch "NQFlow/pkg/clickhouse"
	applogger "NQFlow/pkg/logger"
)

// BarsTable is the raw minute-bar table the pipeline reads from.
const BarsTable = "nqflow.ohlcv_1m"

// CHBarStore implements BarStore backed by ClickHouse.
type CHBarStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client) *CHBarStore {
	return &CHBarStore{db: ch.DB(), table: BarsTable}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHBarStore) GetBars(ctx context.Context, from, to time.Time) ([]models.Bar, error) {
	const qtpl = `
        SELECT ts, instrument_id, symbol, open, high, low, close, volume
        FROM %s
        WHERE ts >= ? AND ts < ?
        ORDER BY instrument_id ASC, ts ASC
    `
	return s.query(ctx, fmt.Sprintf(qtpl, s.table), from, to)
}

func (s *CHBarStore) GetBarsBySymbol(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	const qtpl = `
        SELECT ts, instrument_id, symbol, open, high, low, close, volume
        FROM %s
        WHERE symbol = ? AND ts >= ? AND ts < ?
        ORDER BY ts ASC
    `
	return s.query(ctx, fmt.Sprintf(qtpl, s.table), symbol, from, to)
}

func (s *CHBarStore) query(ctx context.Context, q string, args ...interface{}) ([]models.Bar, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_bars query error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 4096)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.EventTime, &b.InstrumentID, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_bars scan error",
					applogger.String("table", s.table),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.EventTime = b.EventTime.UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_bars ok",
			applogger.String("table", s.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}
