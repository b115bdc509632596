package repository

import (
	"context"
	"time"

	"NQFlow/internal/domain/models"
)

// BarStream is a live market-data connection delivering minute bars.
type BarStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Bar, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// BarStore provides read access to raw minute bars. Bars come back ordered
// by (instrument_id, event time) so the pipeline can partition and sort.
type BarStore interface {
	GetBars(ctx context.Context, from, to time.Time) ([]models.Bar, error)
	GetBarsBySymbol(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
}

// BarWriter persists ingested bars.
type BarWriter interface {
	Store(ctx context.Context, b *models.Bar) error
	StoreBatch(ctx context.Context, bars []*models.Bar) error
	Health(ctx context.Context) error
	Close() error
}

// SignalStore persists and serves generated signals.
type SignalStore interface {
	ReplaceRange(ctx context.Context, from, to time.Time, signals []models.Signal) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.Signal, error)
}

// SummaryStore persists and serves daily summaries.
type SummaryStore interface {
	ReplaceRange(ctx context.Context, from, to time.Time, rows []models.DailySummary) error
	Query(ctx context.Context, symbol string, from, to time.Time) ([]models.DailySummary, error)
}

// SignalPublisher pushes emitted signals to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, s *models.Signal) error
	PublishBatch(ctx context.Context, signals []models.Signal) error
	Close() error
}

type Metrics interface {
	RecordBarsIngested(source string, n int)
	RecordInvalidBar(reason string)
	RecordSignal(direction string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
