package usecase

import (
	"context"
	"fmt"

	"NQFlow/internal/domain/models"
	domrepo "NQFlow/internal/domain/repository"
	"NQFlow/internal/services/continuous"
	"NQFlow/internal/services/indicators"
)

// ContinuousUseCase computes the continuous contract series (optionally
// annotated) on the fly for inspection; nothing is persisted here.
type ContinuousUseCase struct {
	bars       domrepo.BarStore
	builder    *continuous.Builder
	indicators *indicators.Engine
}

func NewContinuousUseCase(bars domrepo.BarStore) *ContinuousUseCase {
	return &ContinuousUseCase{
		bars:       bars,
		builder:    continuous.NewBuilder(),
		indicators: indicators.NewEngine(),
	}
}

type GetContinuousParams struct {
	From       string
	To         string
	Indicators bool
	Limit      int
}

type GetContinuousResult struct {
	From        string
	To          string
	Count       int
	InvalidBars int
	Rolls       int
	Series      models.ContinuousSeries `json:",omitempty"`
	Frame       models.IndicatorFrame   `json:",omitempty"`
}

func (uc *ContinuousUseCase) GetContinuous(ctx context.Context, p GetContinuousParams) (*GetContinuousResult, error) {
	rng, err := domrepo.ParseDateRange(p.From, p.To)
	if err != nil {
		return nil, err
	}
	if p.Limit <= 0 {
		p.Limit = 5000
	}

	bars, err := uc.bars.GetBars(ctx, rng.From, rng.End())
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	series, stats, err := uc.builder.BuildRange(bars, p.From, p.To)
	if err != nil {
		return nil, err
	}

	res := &GetContinuousResult{
		From:        p.From,
		To:          p.To,
		InvalidBars: stats.InvalidBars,
		Rolls:       stats.Rolls,
	}
	if p.Indicators {
		frame := uc.indicators.Compute(series)
		if len(frame) > p.Limit {
			frame = frame[:p.Limit]
		}
		res.Frame = frame
		res.Count = len(frame)
	} else {
		if len(series) > p.Limit {
			series = series[:p.Limit]
		}
		res.Series = series
		res.Count = len(series)
	}
	return res, nil
}
