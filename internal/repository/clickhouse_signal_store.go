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

// SignalsTable holds the pipeline's emitted signals.
const SignalsTable = "nqflow.signals"

// CHSignalStore implements SignalStore backed by ClickHouse.
type CHSignalStore struct {
	db    *sql.DB
	table string
}

func NewCHSignalStore(db *sql.DB) domrepo.SignalStore {
	return &CHSignalStore{db: db, table: SignalsTable}
}

// ReplaceRange clears the range and rewrites it. The pipeline recomputes
// ranges in full, so replace keeps reruns idempotent.
func (s *CHSignalStore) ReplaceRange(ctx context.Context, from, to time.Time, signals []models.Signal) error {
	del := fmt.Sprintf("ALTER TABLE %s DELETE WHERE ts >= ? AND ts < ?", s.table)
	if _, err := s.db.ExecContext(ctx, del, from, to); err != nil {
		return fmt.Errorf("clear signal range: %w", err)
	}
	if len(signals) == 0 {
		return nil
	}

	const chunkSize = 1000
	for start := 0; start < len(signals); start += chunkSize {
		end := start + chunkSize
		if end > len(signals) {
			end = len(signals)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*12)
		for _, sig := range signals[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				sig.EventTime, sig.Symbol, sig.Close, string(sig.Direction),
				voteString(sig.MACrossover), voteString(sig.Breakout),
				voteString(sig.MeanReversion), voteString(sig.Momentum),
				sig.BullishCount, sig.BearishCount, sig.RiskRatio, string(sig.Session),
			)
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, close, direction, ma_crossover, breakout, mean_reversion, momentum, bullish_count, bearish_count, risk_ratio, session) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert signals: %w", err)
		}
	}
	return nil
}

func (s *CHSignalStore) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.Signal, error) {
	q := fmt.Sprintf(`
        SELECT ts, symbol, close, direction, ma_crossover, breakout, mean_reversion, momentum, bullish_count, bearish_count, risk_ratio, session
        FROM %s
        WHERE ts >= ? AND ts < ?%s
        ORDER BY ts DESC
        LIMIT ?`, s.table, symbolFilter(symbol))
	args := []interface{}{from, to}
	if symbol != "" {
		args = append(args, symbol)
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.Signal, 0, limit)
	for rows.Next() {
		var sig models.Signal
		var direction, session string
		var ma, br, mr, mo sql.NullString
		if err := rows.Scan(&sig.EventTime, &sig.Symbol, &sig.Close, &direction,
			&ma, &br, &mr, &mo,
			&sig.BullishCount, &sig.BearishCount, &sig.RiskRatio, &session); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.EventTime = sig.EventTime.UTC()
		sig.Direction = models.Direction(direction)
		sig.Session = models.Session(session)
		sig.MACrossover = nullVote(ma)
		sig.Breakout = nullVote(br)
		sig.MeanReversion = nullVote(mr)
		sig.Momentum = nullVote(mo)
		out = append(out, sig)
	}
	return out, rows.Err()
}

func symbolFilter(symbol string) string {
	if symbol == "" {
		return ""
	}
	return " AND symbol = ?"
}

func voteString(v *models.Vote) interface{} {
	if v == nil {
		return nil
	}
	return string(*v)
}

func nullVote(s sql.NullString) *models.Vote {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := models.Vote(s.String)
	return &v
}
