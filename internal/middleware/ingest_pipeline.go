package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NQFlow/internal/domain/models"
	domrepo "NQFlow/internal/domain/repository"
)

// BarSink is the minimal downstream the ingest pipeline needs.
type BarSink interface {
	Store(ctx context.Context, b *models.Bar) error
}

// IngestPipeline sits between a bar source (feed or Kafka) and storage.
// It rejects malformed bars before they can poison the volume rankings,
// throttles per symbol, and buffers when storage is unavailable.
type IngestPipeline struct {
	sink     BarSink
	metrics  domrepo.Metrics
	maxBPS   int
	bufSize  int
	bufCh    chan *models.Bar
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-symbol last accepted time
}

type PipelineOption func(*IngestPipeline)

// WithMaxBarsPerSecond sets the max accepted bars per second per symbol.
func WithMaxBarsPerSecond(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.maxBPS = n
		}
	}
}

// WithBufferSize sets the retry buffer size used when storage is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewIngestPipeline creates a new pipeline.
func NewIngestPipeline(sink BarSink, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		sink:     sink,
		metrics:  metrics,
		maxBPS:   20,
		bufSize:  1000,
		bufCh:    make(chan *models.Bar, 1000),
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.Bar, p.bufSize)
	}
	return p
}

// Start launches background flushing of buffered bars.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case b := <-p.bufCh:
				if b == nil {
					continue
				}
				if err := p.sink.Store(ctx, b); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("ingest_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- b:
					default:
						p.metrics.RecordError("ingest_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards a bar to storage, buffering on
// downstream errors. Invalid bars are counted and rejected with a typed
// error so callers can tell rejection from infrastructure failure.
func (p *IngestPipeline) Process(ctx context.Context, b *models.Bar) error {
	start := time.Now()
	if err := validateBar(b); err != nil {
		p.metrics.RecordInvalidBar(err.Reason)
		return err
	}
	if !p.allow(b.Symbol, start) {
		p.metrics.RecordError("ingest_throttle")
		return nil
	}

	if err := p.sink.Store(ctx, b); err != nil {
		p.metrics.RecordError("ingest_store")
		select {
		case p.bufCh <- b:
		default:
			p.metrics.RecordError("ingest_buffer_full")
		}
		return fmt.Errorf("ingest downstream: %w", err)
	}
	p.metrics.RecordBarsIngested("pipeline", 1)
	p.metrics.RecordLastPrice(b.Symbol, b.Close)
	p.metrics.RecordLatency("ingest_store", time.Since(start).Seconds())
	return nil
}

func validateBar(b *models.Bar) *models.InvalidBarError {
	if b == nil {
		return &models.InvalidBarError{Reason: "nil bar"}
	}
	if b.Symbol == "" {
		return &models.InvalidBarError{TradeDate: b.TradeDate(), Reason: "empty symbol"}
	}
	if b.EventTime.IsZero() {
		return &models.InvalidBarError{Symbol: b.Symbol, Reason: "zero timestamp"}
	}
	if !b.Valid() {
		return &models.InvalidBarError{Symbol: b.Symbol, TradeDate: b.TradeDate(), Reason: "ohlc ordering violated"}
	}
	return nil
}

func (p *IngestPipeline) allow(symbol string, now time.Time) bool {
	if p.maxBPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[symbol]
	if !last.IsZero() && now.Sub(last) < time.Second/time.Duration(p.maxBPS) {
		return false
	}
	p.lastSeen[symbol] = now
	return true
}
