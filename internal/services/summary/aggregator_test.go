package summary

import (
	"math"
	"testing"
	"time"

	"NQFlow/internal/domain/models"
)

func day(date string, sym string, minutes int, baseClose float64) models.IndicatorFrame {
	d, _ := time.Parse("2006-01-02", date)
	frame := make(models.IndicatorFrame, 0, minutes)
	for i := 0; i < minutes; i++ {
		c := baseClose + float64(i%5)
		frame = append(frame, models.IndicatorRow{
			ContinuousBar: models.ContinuousBar{
				Bar: models.Bar{
					EventTime: d.Add(14*time.Hour + time.Duration(i)*time.Minute),
					Symbol:    sym,
					Open:      c, High: c + 2, Low: c - 2, Close: c, Volume: 10,
				},
				TradingDate: date,
			},
			SMA10: c, SMA20: c, SMA50: c,
		})
	}
	return frame
}

func TestAggregateRollsUpOneRowPerDay(t *testing.T) {
	frame := append(day("2024-12-02", "NQZ4", 120, 100), day("2024-12-03", "NQZ4", 150, 110)...)
	rows := NewAggregator().Aggregate(frame)
	if len(rows) != 2 {
		t.Fatalf("expected 2 daily rows, got %d", len(rows))
	}

	first := rows[0]
	if first.TradingDate != "2024-12-02" || first.Symbol != "NQZ4" {
		t.Fatalf("unexpected keys: %+v", first)
	}
	if first.MinutesTraded != 120 {
		t.Fatalf("minutes = %d, want 120", first.MinutesTraded)
	}
	if first.Volume != 120*10 {
		t.Fatalf("volume = %d, want %d", first.Volume, 120*10)
	}
	if first.Open != frame[0].Open || first.Close != frame[119].Close {
		t.Fatalf("open/close mismatch: %+v", first)
	}
	if first.High != 104+2 || first.Low != 100-2 {
		t.Fatalf("high/low mismatch: %+v", first)
	}
	if !first.MarketOpenTime.Equal(frame[0].EventTime) || !first.MarketCloseTime.Equal(frame[119].EventTime) {
		t.Fatalf("session times mismatch: %+v", first)
	}
}

func TestAggregateSuppressesThinDays(t *testing.T) {
	frame := append(day("2024-12-02", "NQZ4", 99, 100), day("2024-12-03", "NQZ4", 100, 100)...)
	rows := NewAggregator().Aggregate(frame)
	if len(rows) != 1 || rows[0].TradingDate != "2024-12-03" {
		t.Fatalf("99-minute day must be suppressed, got %+v", rows)
	}
}

func TestAggregateVolatilityIsSampleStddev(t *testing.T) {
	frame := day("2024-12-02", "NQZ4", 100, 100) // closes cycle 100..104
	rows := NewAggregator().Aggregate(frame)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row")
	}

	var sum, sum2 float64
	for _, r := range frame {
		sum += r.Close
		sum2 += r.Close * r.Close
	}
	n := float64(len(frame))
	want := math.Sqrt((sum2 - sum*sum/n) / (n - 1))
	if math.Abs(rows[0].PriceVolatility-want) > 1e-9 {
		t.Fatalf("volatility = %v, want %v", rows[0].PriceVolatility, want)
	}
}

func TestAggregateCarriesEndOfDaySMASnapshot(t *testing.T) {
	frame := day("2024-12-02", "NQZ4", 100, 100)
	last := frame[len(frame)-1]
	rows := NewAggregator().Aggregate(frame)
	if rows[0].SMA10 != last.SMA10 || rows[0].SMA20 != last.SMA20 || rows[0].SMA50 != last.SMA50 {
		t.Fatalf("snapshot should come from the last row of the day")
	}
}
