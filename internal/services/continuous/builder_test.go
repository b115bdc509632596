package continuous

import (
	"errors"
	"testing"
	"time"

	"NQFlow/internal/domain/models"
)

func bar(sym string, day int, minute int, close float64, vol int64) models.Bar {
	ts := time.Date(2024, 12, day, 14, 0, 0, 0, time.UTC).Add(time.Duration(minute) * time.Minute)
	return models.Bar{
		EventTime: ts,
		Symbol:    sym,
		Open:      close,
		High:      close + 1,
		Low:       close - 1,
		Close:     close,
		Volume:    vol,
	}
}

func TestBuildKeepsHighestVolumeSymbolPerDay(t *testing.T) {
	bars := []models.Bar{
		bar("NQZ4", 2, 0, 100, 250_000),
		bar("NQZ4", 2, 1, 101, 250_000),
		bar("NQH5", 2, 0, 100, 300_000),
	}
	series, stats, err := NewBuilder().Build(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.OutputBars != 2 {
		t.Fatalf("expected 2 bars, got %d", stats.OutputBars)
	}
	for _, b := range series {
		if b.Symbol != "NQZ4" {
			t.Fatalf("expected NQZ4 bars only, got %s", b.Symbol)
		}
	}
}

func TestBuildTieBreaksLexicographically(t *testing.T) {
	bars := []models.Bar{
		bar("NQZ4", 2, 0, 100, 100),
		bar("NQH5", 2, 0, 100, 100),
	}
	series, _, err := NewBuilder().Build(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 || series[0].Symbol != "NQH5" {
		t.Fatalf("expected NQH5 to win the tie, got %+v", series)
	}
}

func TestBuildDropsInvalidBars(t *testing.T) {
	bad := bar("NQZ4", 2, 0, 100, 10)
	bad.High = bad.Low - 5 // ordering violated
	neg := bar("NQZ4", 2, 1, 0, 10)
	neg.Close = -1
	bars := []models.Bar{bad, neg, bar("NQZ4", 2, 2, 100, 10)}

	series, stats, err := NewBuilder().Build(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.InvalidBars != 2 {
		t.Fatalf("expected 2 invalid bars, got %d", stats.InvalidBars)
	}
	if len(series) != 1 {
		t.Fatalf("expected 1 surviving bar, got %d", len(series))
	}
}

func TestBuildSortsByEventTime(t *testing.T) {
	bars := []models.Bar{
		bar("NQZ4", 2, 5, 103, 10),
		bar("NQZ4", 2, 1, 101, 10),
		bar("NQZ4", 2, 3, 102, 10),
	}
	series, _, err := NewBuilder().Build(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(series); i++ {
		if series[i].EventTime.Before(series[i-1].EventTime) {
			t.Fatalf("series not sorted at index %d", i)
		}
	}
}

func TestBuildRollAcrossDates(t *testing.T) {
	bars := []models.Bar{
		bar("NQZ4", 2, 0, 100, 500),
		bar("NQH5", 2, 0, 100, 100),
		bar("NQZ4", 3, 0, 100, 100),
		bar("NQH5", 3, 0, 100, 500),
	}
	series, stats, err := NewBuilder().Build(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Rolls != 1 {
		t.Fatalf("expected 1 roll, got %d", stats.Rolls)
	}
	if series[0].Symbol != "NQZ4" || series[1].Symbol != "NQH5" {
		t.Fatalf("unexpected roll order: %s -> %s", series[0].Symbol, series[1].Symbol)
	}
}

func TestBuildEmptyDayAbsentNotError(t *testing.T) {
	bars := []models.Bar{
		bar("NQZ4", 2, 0, 100, 10),
		// nothing on the 3rd
		bar("NQZ4", 4, 0, 100, 10),
	}
	series, _, err := NewBuilder().Build(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dates := map[string]bool{}
	for _, b := range series {
		dates[b.TradingDate] = true
	}
	if dates["2024-12-03"] {
		t.Fatalf("empty day must be absent")
	}
	if !dates["2024-12-02"] || !dates["2024-12-04"] {
		t.Fatalf("expected both traded days present, got %v", dates)
	}
}

func TestBuildRangeDataGap(t *testing.T) {
	_, _, err := NewBuilder().BuildRange(nil, "2024-12-02", "2024-12-02")
	var gap *models.DataGapError
	if !errors.As(err, &gap) {
		t.Fatalf("expected DataGapError, got %v", err)
	}
	if gap.From != "2024-12-02" {
		t.Fatalf("unexpected gap bounds: %+v", gap)
	}
}

func TestBuildDeterministic(t *testing.T) {
	bars := []models.Bar{
		bar("NQZ4", 2, 0, 100, 500),
		bar("NQH5", 2, 0, 101, 300),
		bar("NQZ4", 2, 1, 102, 400),
	}
	a, _, _ := NewBuilder().Build(bars)
	b, _, _ := NewBuilder().Build(bars)
	if len(a) != len(b) {
		t.Fatalf("length mismatch")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic output at %d", i)
		}
	}
}
