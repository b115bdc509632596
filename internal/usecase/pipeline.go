package usecase

import (
	"context"
	"fmt"
	"time"

	domrepo "NQFlow/internal/domain/repository"
	svcmetrics "NQFlow/internal/service/metrics"
	"NQFlow/internal/services/continuous"
	"NQFlow/internal/services/indicators"
	"NQFlow/internal/services/signals"
	"NQFlow/internal/services/summary"
	"NQFlow/pkg/cache"
	applogger "NQFlow/pkg/logger"
)

// PipelineUseCase runs the full batch over a date range: raw bars →
// continuous series → indicator frame → {signals, daily summaries} →
// stores and Kafka. Every stage is a pure function of the previous one,
// so a rerun over the same range reproduces the same outputs.
type PipelineUseCase struct {
	bars      domrepo.BarStore
	sigStore  domrepo.SignalStore
	sumStore  domrepo.SummaryStore
	publisher domrepo.SignalPublisher
	metrics   domrepo.Metrics
	cache     cache.Service
	l         *applogger.Logger

	builder    *continuous.Builder
	indicators *indicators.Engine
	signals    *signals.Engine
	summary    *summary.Aggregator
}

func NewPipelineUseCase(
	bars domrepo.BarStore,
	sigStore domrepo.SignalStore,
	sumStore domrepo.SummaryStore,
	publisher domrepo.SignalPublisher,
	metrics domrepo.Metrics,
) *PipelineUseCase {
	svcmetrics.Register()
	return &PipelineUseCase{
		bars:       bars,
		sigStore:   sigStore,
		sumStore:   sumStore,
		publisher:  publisher,
		metrics:    metrics,
		builder:    continuous.NewBuilder(),
		indicators: indicators.NewEngine(),
		signals:    signals.NewEngine(),
		summary:    summary.NewAggregator(),
	}
}

// SetCache injects a cache whose signal/summary entries are invalidated
// after a run rewrites their backing ranges.
func (uc *PipelineUseCase) SetCache(c cache.Service) { uc.cache = c }

// SetLogger injects a structured logger.
func (uc *PipelineUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

type RunParams struct {
	From string
	To   string
	// Symbols restricts the contract universe considered for rolling.
	// Empty means all contracts in the range.
	Symbols []string
}

type RunResult struct {
	From        string
	To          string
	InputBars   int
	InvalidBars int
	OutputBars  int
	Rolls       int
	Signals     int
	Summaries   int
	Elapsed     time.Duration
}

func (uc *PipelineUseCase) Run(ctx context.Context, p RunParams) (*RunResult, error) {
	started := time.Now()
	rng, err := domrepo.ParseDateRange(p.From, p.To)
	if err != nil {
		return nil, err
	}

	stage := time.Now()
	bars, err := uc.bars.GetBars(ctx, rng.From, rng.End())
	if err != nil {
		svcmetrics.StageErrors.WithLabelValues("load").Inc()
		return nil, fmt.Errorf("load bars: %w", err)
	}
	svcmetrics.StageLatency.WithLabelValues("load").Observe(time.Since(stage).Seconds())

	if len(p.Symbols) > 0 {
		allowed := make(map[string]struct{}, len(p.Symbols))
		for _, s := range p.Symbols {
			allowed[s] = struct{}{}
		}
		kept := bars[:0]
		for _, b := range bars {
			if _, ok := allowed[b.Symbol]; ok {
				kept = append(kept, b)
			}
		}
		bars = kept
	}

	stage = time.Now()
	series, stats, err := uc.builder.BuildRange(bars, p.From, p.To)
	if err != nil {
		svcmetrics.StageErrors.WithLabelValues("continuous").Inc()
		svcmetrics.RunsTotal.WithLabelValues("data_gap").Inc()
		return nil, err
	}
	svcmetrics.StageLatency.WithLabelValues("continuous").Observe(time.Since(stage).Seconds())
	for i := 0; i < stats.InvalidBars; i++ {
		uc.metrics.RecordInvalidBar("ohlc")
	}

	stage = time.Now()
	frame := uc.indicators.Compute(series)
	svcmetrics.StageLatency.WithLabelValues("indicators").Observe(time.Since(stage).Seconds())

	stage = time.Now()
	sigs := uc.signals.Generate(frame)
	svcmetrics.StageLatency.WithLabelValues("signals").Observe(time.Since(stage).Seconds())

	stage = time.Now()
	sums := uc.summary.Aggregate(frame)
	svcmetrics.StageLatency.WithLabelValues("summary").Observe(time.Since(stage).Seconds())

	if err := uc.sigStore.ReplaceRange(ctx, rng.From, rng.End(), sigs); err != nil {
		svcmetrics.StageErrors.WithLabelValues("persist").Inc()
		return nil, fmt.Errorf("persist signals: %w", err)
	}
	if err := uc.sumStore.ReplaceRange(ctx, rng.From, rng.End(), sums); err != nil {
		svcmetrics.StageErrors.WithLabelValues("persist").Inc()
		return nil, fmt.Errorf("persist summaries: %w", err)
	}

	if uc.publisher != nil && len(sigs) > 0 {
		if err := uc.publisher.PublishBatch(ctx, sigs); err != nil {
			// signals are persisted; publish failure is degraded, not fatal
			uc.metrics.RecordError("signal_publish")
			if uc.l != nil {
				uc.l.Warn("signal publish failed", applogger.Error(err))
			}
		}
	}

	for _, s := range sigs {
		uc.metrics.RecordSignal(string(s.Direction))
	}
	if uc.cache != nil {
		_ = uc.cache.DeleteByPattern(ctx, "signals:*")
		_ = uc.cache.DeleteByPattern(ctx, "summary:*")
	}

	res := &RunResult{
		From:        p.From,
		To:          p.To,
		InputBars:   stats.InputBars,
		InvalidBars: stats.InvalidBars,
		OutputBars:  stats.OutputBars,
		Rolls:       stats.Rolls,
		Signals:     len(sigs),
		Summaries:   len(sums),
		Elapsed:     time.Since(started),
	}
	svcmetrics.RunsTotal.WithLabelValues("ok").Inc()
	if uc.l != nil {
		uc.l.Info("pipeline run complete",
			applogger.String("range", rng.String()),
			applogger.Int("input_bars", res.InputBars),
			applogger.Int("invalid_bars", res.InvalidBars),
			applogger.Int("signals", res.Signals),
			applogger.Int("summaries", res.Summaries),
			applogger.Duration("elapsed_ms", res.Elapsed),
		)
	}
	return res, nil
}
