package usecase

import (
	"context"
	"fmt"
	"time"

	"NQFlow/internal/domain/models"
	domrepo "NQFlow/internal/domain/repository"
	"NQFlow/pkg/cache"
)

const summaryCacheTTL = 5 * time.Minute

// SummaryUseCase serves the daily rollups.
type SummaryUseCase struct {
	store domrepo.SummaryStore
	cache cache.Service
	ttl   time.Duration
}

func NewSummaryUseCase(store domrepo.SummaryStore) *SummaryUseCase {
	return &SummaryUseCase{store: store, ttl: summaryCacheTTL}
}

// SetCache injects a cache for repeated queries.
func (uc *SummaryUseCase) SetCache(c cache.Service) { uc.cache = c }

// SetCacheTTL overrides the default entry lifetime from config.
func (uc *SummaryUseCase) SetCacheTTL(d time.Duration) {
	if d > 0 {
		uc.ttl = d
	}
}

type GetSummaryParams struct {
	Symbol string
	From   string
	To     string
}

type GetSummaryResult struct {
	Symbol string
	From   string
	To     string
	Count  int
	Days   []models.DailySummary
}

func (uc *SummaryUseCase) GetSummary(ctx context.Context, p GetSummaryParams) (*GetSummaryResult, error) {
	rng, err := domrepo.ParseDateRange(p.From, p.To)
	if err != nil {
		return nil, err
	}

	key := cache.GenerateKeyWithParams("summary", p.Symbol, p.From, p.To)
	if uc.cache != nil {
		var cached GetSummaryResult
		if err := uc.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	days, err := uc.store.Query(ctx, p.Symbol, rng.From, rng.End())
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}

	res := &GetSummaryResult{
		Symbol: p.Symbol,
		From:   p.From,
		To:     p.To,
		Count:  len(days),
		Days:   days,
	}
	if uc.cache != nil {
		_ = uc.cache.Set(ctx, key, res, uc.ttl)
	}
	return res, nil
}
