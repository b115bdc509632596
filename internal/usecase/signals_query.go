package usecase

import (
	"context"
	"fmt"
	"time"

	"NQFlow/internal/domain/models"
	domrepo "NQFlow/internal/domain/repository"
	"NQFlow/pkg/cache"
)

const signalsCacheTTL = 30 * time.Second

// SignalsUseCase serves stored signals with date-range/symbol filtering.
type SignalsUseCase struct {
	store domrepo.SignalStore
	cache cache.Service
	ttl   time.Duration
}

func NewSignalsUseCase(store domrepo.SignalStore) *SignalsUseCase {
	return &SignalsUseCase{store: store, ttl: signalsCacheTTL}
}

// SetCache injects a cache for repeated queries.
func (uc *SignalsUseCase) SetCache(c cache.Service) { uc.cache = c }

// SetCacheTTL overrides the default entry lifetime from config.
func (uc *SignalsUseCase) SetCacheTTL(d time.Duration) {
	if d > 0 {
		uc.ttl = d
	}
}

type GetSignalsParams struct {
	Symbol string
	From   string
	To     string
	Limit  int
}

type GetSignalsResult struct {
	Symbol  string
	From    string
	To      string
	Count   int
	Signals []models.Signal
}

func (uc *SignalsUseCase) GetSignals(ctx context.Context, p GetSignalsParams) (*GetSignalsResult, error) {
	rng, err := domrepo.ParseDateRange(p.From, p.To)
	if err != nil {
		return nil, err
	}
	if p.Limit <= 0 {
		p.Limit = 500
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}

	key := cache.GenerateKeyWithParams("signals", p.Symbol, p.From, p.To, p.Limit)
	if uc.cache != nil {
		var cached GetSignalsResult
		if err := uc.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	sigs, err := uc.store.Query(ctx, p.Symbol, rng.From, rng.End(), p.Limit)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}

	res := &GetSignalsResult{
		Symbol:  p.Symbol,
		From:    p.From,
		To:      p.To,
		Count:   len(sigs),
		Signals: sigs,
	}
	if uc.cache != nil {
		_ = uc.cache.Set(ctx, key, res, uc.ttl)
	}
	return res, nil
}
