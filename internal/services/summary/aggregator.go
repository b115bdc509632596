// Package summary rolls the indicator frame up to one row per trading day.
package summary

import (
	"math"

	"NQFlow/internal/domain/models"
)

// MinMinutesTraded is the floor below which a daily row is suppressed;
// thinner days are almost always holiday stubs or feed fragments.
const MinMinutesTraded = 100

// Aggregator produces daily summaries from an ascending indicator frame.
type Aggregator struct{}

func NewAggregator() *Aggregator { return &Aggregator{} }

// Aggregate groups contiguous same-date rows and rolls each group into one
// DailySummary, carrying the last row's moving averages as the end-of-day
// snapshot. Days with fewer than MinMinutesTraded rows are dropped.
func (a *Aggregator) Aggregate(frame models.IndicatorFrame) []models.DailySummary {
	out := make([]models.DailySummary, 0)

	start := 0
	for i := 1; i <= len(frame); i++ {
		if i < len(frame) && frame[i].TradingDate == frame[start].TradingDate {
			continue
		}
		if row, ok := rollup(frame[start:i]); ok {
			out = append(out, row)
		}
		start = i
	}
	return out
}

func rollup(day models.IndicatorFrame) (models.DailySummary, bool) {
	if len(day) < MinMinutesTraded {
		return models.DailySummary{}, false
	}

	first, last := day[0], day[len(day)-1]
	s := models.DailySummary{
		TradingDate:     first.TradingDate,
		Symbol:          first.Symbol,
		MarketOpenTime:  first.EventTime,
		MarketCloseTime: last.EventTime,
		Open:            first.Open,
		High:            first.High,
		Low:             first.Low,
		Close:           last.Close,
		MinutesTraded:   len(day),
		SMA10:           last.SMA10,
		SMA20:           last.SMA20,
		SMA50:           last.SMA50,
	}

	var sum, sum2 float64
	for _, row := range day {
		if row.High > s.High {
			s.High = row.High
		}
		if row.Low < s.Low {
			s.Low = row.Low
		}
		s.Volume += row.Volume
		sum += row.Close
		sum2 += row.Close * row.Close
	}

	n := float64(len(day))
	variance := (sum2 - sum*sum/n) / (n - 1)
	if variance > 0 {
		s.PriceVolatility = math.Sqrt(variance)
	}
	return s, true
}
