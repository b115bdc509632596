package indicators

import (
	"math"
	"testing"
	"time"

	"NQFlow/internal/domain/models"
)

func cbar(sym string, minute int, o, h, l, c float64, vol int64) models.ContinuousBar {
	ts := time.Date(2024, 12, 2, 14, 0, 0, 0, time.UTC).Add(time.Duration(minute) * time.Minute)
	return models.ContinuousBar{
		Bar: models.Bar{
			EventTime: ts, Symbol: sym,
			Open: o, High: h, Low: l, Close: c, Volume: vol,
		},
		TradingDate: "2024-12-02",
	}
}

func flat(sym string, minute int, close float64) models.ContinuousBar {
	return cbar(sym, minute, close, close+1, close-1, close, 100)
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSMAIsTrailingMean(t *testing.T) {
	series := models.ContinuousSeries{}
	closes := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120}
	for i, c := range closes {
		series = append(series, flat("NQZ4", i, c))
	}
	frame := NewEngine().Compute(series)

	// row 11: trailing 10 closes are 30..120
	want := (30.0 + 40 + 50 + 60 + 70 + 80 + 90 + 100 + 110 + 120) / 10
	if !almostEqual(frame[11].SMA10, want) {
		t.Fatalf("sma10 = %v, want %v", frame[11].SMA10, want)
	}
	// row 11 sma20: partial window over all 12 closes
	var sum float64
	for _, c := range closes {
		sum += c
	}
	if !almostEqual(frame[11].SMA20, sum/12) {
		t.Fatalf("sma20 partial = %v, want %v", frame[11].SMA20, sum/12)
	}
}

func TestPartialWindowUsesAvailableBars(t *testing.T) {
	series := models.ContinuousSeries{flat("NQZ4", 0, 40), flat("NQZ4", 1, 60)}
	frame := NewEngine().Compute(series)
	if !almostEqual(frame[0].SMA50, 40) {
		t.Fatalf("first-row sma50 = %v, want 40", frame[0].SMA50)
	}
	if !almostEqual(frame[1].SMA50, 50) {
		t.Fatalf("second-row sma50 = %v, want 50", frame[1].SMA50)
	}
}

func TestRollResetsWindows(t *testing.T) {
	series := models.ContinuousSeries{
		flat("NQZ4", 0, 1000),
		flat("NQZ4", 1, 1000),
		flat("NQH5", 2, 10),
	}
	frame := NewEngine().Compute(series)
	if !almostEqual(frame[2].SMA20, 10) {
		t.Fatalf("new symbol window leaked prior bars: sma20 = %v", frame[2].SMA20)
	}
	if frame[2].PriceChange1 != nil {
		t.Fatalf("price change must reset at roll, got %v", *frame[2].PriceChange1)
	}
}

func TestPriceChangesNilBeforeDepth(t *testing.T) {
	series := models.ContinuousSeries{}
	for i := 0; i < 20; i++ {
		series = append(series, flat("NQZ4", i, 100+float64(i)))
	}
	frame := NewEngine().Compute(series)

	if frame[0].PriceChange1 != nil {
		t.Fatalf("row 0 change1 should be nil")
	}
	if frame[4].PriceChange5 != nil || frame[5].PriceChange5 == nil {
		t.Fatalf("change5 should appear exactly at row 5")
	}
	if frame[14].PriceChange15 != nil || frame[15].PriceChange15 == nil {
		t.Fatalf("change15 should appear exactly at row 15")
	}
	if got := *frame[15].PriceChange15; !almostEqual(got, 15) {
		t.Fatalf("change15 = %v, want 15", got)
	}
}

func TestClosePositionBoundsAndZeroRange(t *testing.T) {
	series := models.ContinuousSeries{
		cbar("NQZ4", 0, 100, 110, 90, 105, 10),
		cbar("NQZ4", 1, 100, 100, 100, 100, 10), // zero-range bar
	}
	frame := NewEngine().Compute(series)
	if p := frame[0].ClosePosition; p < 0 || p > 1 {
		t.Fatalf("close position out of [0,1]: %v", p)
	}
	if !almostEqual(frame[0].ClosePosition, 0.75) {
		t.Fatalf("close position = %v, want 0.75", frame[0].ClosePosition)
	}
	if frame[1].ClosePosition != 0.5 {
		t.Fatalf("zero-range bar must yield exactly 0.5, got %v", frame[1].ClosePosition)
	}
}

func TestMomentumClassification(t *testing.T) {
	series := models.ContinuousSeries{}
	// rising for 6 bars, then one sharp drop
	for i := 0; i < 6; i++ {
		series = append(series, flat("NQZ4", i, 100+float64(i)*2))
	}
	series = append(series, flat("NQZ4", 6, 90))
	frame := NewEngine().Compute(series)

	if frame[5].Momentum != models.MomentumStrongUp {
		t.Fatalf("expected STRONG_UP, got %s", frame[5].Momentum)
	}
	// last row: 1m change negative, 5m change negative
	if frame[6].Momentum != models.MomentumStrongDown {
		t.Fatalf("expected STRONG_DOWN, got %s", frame[6].Momentum)
	}
	if frame[0].Momentum != models.MomentumNeutral {
		t.Fatalf("first row has no changes, expected NEUTRAL, got %s", frame[0].Momentum)
	}
}

func TestVolatilityClassification(t *testing.T) {
	series := models.ContinuousSeries{}
	for i := 0; i < 10; i++ {
		series = append(series, cbar("NQZ4", i, 100, 101, 99, 100, 10)) // range 2
	}
	series = append(series, cbar("NQZ4", 10, 100, 103, 97, 100, 10)) // range 6 > 1.5x avg
	series = append(series, cbar("NQZ4", 11, 100, 100.4, 100, 100.2, 10))
	frame := NewEngine().Compute(series)

	if frame[5].Volatility != models.VolatilityNormal {
		t.Fatalf("expected NORMAL, got %s", frame[5].Volatility)
	}
	if frame[10].Volatility != models.VolatilityHigh {
		t.Fatalf("expected HIGH, got %s", frame[10].Volatility)
	}
	if frame[11].Volatility != models.VolatilityLow {
		t.Fatalf("expected LOW, got %s", frame[11].Volatility)
	}
}

func TestTrendDeadBand(t *testing.T) {
	series := models.ContinuousSeries{}
	for i := 0; i < 25; i++ {
		series = append(series, flat("NQZ4", i, 100))
	}
	series = append(series, flat("NQZ4", 25, 110))
	frame := NewEngine().Compute(series)
	if frame[20].Trend != models.TrendSideways {
		t.Fatalf("flat tape should be SIDEWAYS, got %s", frame[20].Trend)
	}
	if frame[25].Trend != models.TrendUp {
		t.Fatalf("jump above sma20 should be UPTREND, got %s", frame[25].Trend)
	}
}

func TestCausality(t *testing.T) {
	series := models.ContinuousSeries{}
	for i := 0; i < 40; i++ {
		series = append(series, flat("NQZ4", i, 100+float64(i)))
	}
	base := NewEngine().Compute(series)

	// mutating a bar after row 20 must not change row 20
	mutated := make(models.ContinuousSeries, len(series))
	copy(mutated, series)
	mutated[30] = flat("NQZ4", 30, 9999)
	changed := NewEngine().Compute(mutated)

	if base[20].SMA20 != changed[20].SMA20 || base[20].AvgRange20 != changed[20].AvgRange20 {
		t.Fatalf("row 20 depends on a later row")
	}
	// and a bar outside the trailing window must not change the mean
	mutated2 := make(models.ContinuousSeries, len(series))
	copy(mutated2, series)
	mutated2[5] = flat("NQZ4", 5, 9999)
	changed2 := NewEngine().Compute(mutated2)
	if base[39].SMA10 != changed2[39].SMA10 {
		t.Fatalf("sma10 at row 39 depends on row 5, outside its window")
	}
}

func TestComputePreservesOrderAcrossPartitions(t *testing.T) {
	series := models.ContinuousSeries{}
	for i := 0; i < 30; i++ {
		sym := "NQZ4"
		if i >= 10 && i < 20 {
			sym = "NQH5"
		}
		series = append(series, flat(sym, i, 100+float64(i)))
	}
	frame := NewEngine().Compute(series)
	if len(frame) != len(series) {
		t.Fatalf("frame length %d != series length %d", len(frame), len(series))
	}
	for i := range frame {
		if !frame[i].EventTime.Equal(series[i].EventTime) || frame[i].Symbol != series[i].Symbol {
			t.Fatalf("row %d out of order after parallel compute", i)
		}
	}
}
