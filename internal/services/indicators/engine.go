// Package indicators annotates the continuous series with rolling derived
// fields. Computations are partitioned by symbol: each maximal run of
// same-symbol bars carries its own windows, and a roll resets all of them,
// so prior-contract bars never leak into a new contract's averages.
//
// Every field is computable in one causal left-to-right pass over its
// partition. Partial windows at a partition start use however many bars
// exist; the three lagged price changes instead stay nil until the
// partition is deep enough.
package indicators

import (
	"sync"

	"NQFlow/internal/domain/models"
)

const (
	smaShort = 10
	smaMid   = 20
	smaLong  = 50

	rangeWindow  = 20
	volumeWindow = 10

	maxLag = 15

	trendBand    = 0.001 // dead band around sma_20 for SIDEWAYS
	highVolRatio = 1.5
	lowVolRatio  = 0.5
)

// Engine computes an IndicatorFrame from a ContinuousSeries.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Compute returns one IndicatorRow per input bar, in input order. Symbol
// runs are independent by construction, so they are computed concurrently;
// each run writes only its own index range, keeping the output order
// deterministic.
func (e *Engine) Compute(series models.ContinuousSeries) models.IndicatorFrame {
	frame := make(models.IndicatorFrame, len(series))
	if len(series) == 0 {
		return frame
	}

	var wg sync.WaitGroup
	start := 0
	for i := 1; i <= len(series); i++ {
		if i < len(series) && series[i].Symbol == series[start].Symbol {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			computeRun(series[lo:hi], frame[lo:hi])
		}(start, i)
		start = i
	}
	wg.Wait()
	return frame
}

func computeRun(run models.ContinuousSeries, out models.IndicatorFrame) {
	sma10 := newRollingMean(smaShort)
	sma20 := newRollingMean(smaMid)
	sma50 := newRollingMean(smaLong)
	ranges := newRollingMean(rangeWindow)
	volumes := newRollingMean(volumeWindow)
	closes := newLagBuffer(maxLag)

	for i, bar := range run {
		sma10.Push(bar.Close)
		sma20.Push(bar.Close)
		sma50.Push(bar.Close)

		priceRange := bar.High - bar.Low
		ranges.Push(priceRange)
		volumes.Push(float64(bar.Volume))
		closes.Push(bar.Close)

		row := models.IndicatorRow{
			ContinuousBar: bar,
			SMA10:         sma10.Mean(),
			SMA20:         sma20.Mean(),
			SMA50:         sma50.Mean(),
			PriceRange:    priceRange,
			AvgRange20:    ranges.Mean(),
			AvgVolume10:   volumes.Mean(),
			TypicalPrice:  (bar.High + bar.Low + bar.Close) / 3,
		}

		row.PriceChange1 = priceChange(closes, bar.Close, 1)
		row.PriceChange5 = priceChange(closes, bar.Close, 5)
		row.PriceChange15 = priceChange(closes, bar.Close, 15)

		if bar.High == bar.Low {
			row.ClosePosition = 0.5
		} else {
			row.ClosePosition = (bar.Close - bar.Low) / (bar.High - bar.Low)
		}

		row.Trend = classifyTrend(bar.Close, row.SMA20)
		row.Momentum = classifyMomentum(row.PriceChange1, row.PriceChange5)
		row.Volatility = classifyVolatility(priceRange, row.AvgRange20)

		out[i] = row
	}
}

func priceChange(closes *lagBuffer, cur float64, k int) *float64 {
	prev, ok := closes.Lag(k)
	if !ok {
		return nil
	}
	d := cur - prev
	return &d
}

func classifyTrend(close, sma20 float64) models.TrendDirection {
	switch {
	case close > sma20*(1+trendBand):
		return models.TrendUp
	case close < sma20*(1-trendBand):
		return models.TrendDown
	default:
		return models.TrendSideways
	}
}

func classifyMomentum(c1, c5 *float64) models.MomentumClass {
	v1, v5 := deref(c1), deref(c5)
	switch {
	case v1 > 0 && v5 > 0:
		return models.MomentumStrongUp
	case v1 > 0:
		return models.MomentumWeakUp
	case v1 < 0 && v5 < 0:
		return models.MomentumStrongDown
	case v1 < 0:
		return models.MomentumWeakDown
	default:
		return models.MomentumNeutral
	}
}

func classifyVolatility(priceRange, avgRange float64) models.VolatilityClass {
	if avgRange <= 0 {
		return models.VolatilityNormal
	}
	switch {
	case priceRange > avgRange*highVolRatio:
		return models.VolatilityHigh
	case priceRange < avgRange*lowVolRatio:
		return models.VolatilityLow
	default:
		return models.VolatilityNormal
	}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
