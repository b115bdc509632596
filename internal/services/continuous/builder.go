// Package continuous builds the front-contract bar series. For every trading
// day exactly one raw symbol survives: the one with the highest summed
// volume, ties going to the lexicographically smallest symbol so that roll
// selection is reproducible across runs.
package continuous

import (
	"sort"

	"NQFlow/internal/domain/models"
)

// Builder constructs a ContinuousSeries from raw bars.
type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

// dailyVolume keys summed volume by (trade date, symbol).
type dailyVolume struct {
	date   string
	symbol string
}

// Build validates the input bars, ranks symbols per trading day by summed
// volume, keeps only each day's winner, and returns the winner bars sorted
// ascending by event time. Days with no bars are simply absent. Invalid
// bars are dropped and counted in the returned stats.
func (b *Builder) Build(bars []models.Bar) (models.ContinuousSeries, models.BuildStats, error) {
	stats := models.BuildStats{InputBars: len(bars)}

	clean := make([]models.Bar, 0, len(bars))
	for _, bar := range bars {
		if !bar.Valid() {
			stats.InvalidBars++
			continue
		}
		clean = append(clean, bar)
	}
	if len(clean) == 0 {
		return nil, stats, nil
	}

	volumes := make(map[dailyVolume]int64)
	for _, bar := range clean {
		volumes[dailyVolume{bar.TradeDate(), bar.Symbol}] += bar.Volume
	}

	winners := make(map[string]string) // trade date -> winning symbol
	for k, vol := range volumes {
		cur, ok := winners[k.date]
		if !ok {
			winners[k.date] = k.symbol
			continue
		}
		curVol := volumes[dailyVolume{k.date, cur}]
		if vol > curVol || (vol == curVol && k.symbol < cur) {
			winners[k.date] = k.symbol
		}
	}

	series := make(models.ContinuousSeries, 0, len(clean))
	for _, bar := range clean {
		date := bar.TradeDate()
		if winners[date] != bar.Symbol {
			continue
		}
		series = append(series, models.ContinuousBar{Bar: bar, TradingDate: date})
	}

	sort.SliceStable(series, func(i, j int) bool {
		if !series[i].EventTime.Equal(series[j].EventTime) {
			return series[i].EventTime.Before(series[j].EventTime)
		}
		return series[i].Symbol < series[j].Symbol
	})

	stats.OutputBars = len(series)
	for i := 1; i < len(series); i++ {
		if series[i].Symbol != series[i-1].Symbol {
			stats.Rolls++
		}
	}
	return series, stats, nil
}

// BuildRange behaves like Build but enforces that the requested range holds
// at least one usable bar, returning DataGapError otherwise. Callers that
// process day by day pass the same date for both bounds.
func (b *Builder) BuildRange(bars []models.Bar, from, to string) (models.ContinuousSeries, models.BuildStats, error) {
	series, stats, err := b.Build(bars)
	if err != nil {
		return nil, stats, err
	}
	if len(series) == 0 {
		return nil, stats, &models.DataGapError{From: from, To: to}
	}
	return series, stats, nil
}
