package usecase

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"NQFlow/internal/domain/models"
)

type fakeBarStore struct {
	bars []models.Bar
}

func (f *fakeBarStore) GetBars(_ context.Context, from, to time.Time) ([]models.Bar, error) {
	out := []models.Bar{}
	for _, b := range f.bars {
		if !b.EventTime.Before(from) && b.EventTime.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBarStore) GetBarsBySymbol(_ context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	out := []models.Bar{}
	for _, b := range f.bars {
		if b.Symbol == symbol && !b.EventTime.Before(from) && b.EventTime.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeSignalStore struct {
	stored []models.Signal
}

func (f *fakeSignalStore) ReplaceRange(_ context.Context, _, _ time.Time, sigs []models.Signal) error {
	f.stored = append([]models.Signal{}, sigs...)
	return nil
}

func (f *fakeSignalStore) Query(_ context.Context, _ string, _, _ time.Time, limit int) ([]models.Signal, error) {
	if len(f.stored) > limit {
		return f.stored[:limit], nil
	}
	return f.stored, nil
}

type fakeSummaryStore struct {
	stored []models.DailySummary
}

func (f *fakeSummaryStore) ReplaceRange(_ context.Context, _, _ time.Time, rows []models.DailySummary) error {
	f.stored = append([]models.DailySummary{}, rows...)
	return nil
}

func (f *fakeSummaryStore) Query(_ context.Context, _ string, _, _ time.Time) ([]models.DailySummary, error) {
	return f.stored, nil
}

type fakePublisher struct {
	published int
}

func (f *fakePublisher) Publish(_ context.Context, _ *models.Signal) error { return nil }
func (f *fakePublisher) PublishBatch(_ context.Context, sigs []models.Signal) error {
	f.published += len(sigs)
	return nil
}
func (f *fakePublisher) Close() error { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordBarsIngested(string, int)  {}
func (noopMetrics) RecordInvalidBar(string)         {}
func (noopMetrics) RecordSignal(string)             {}
func (noopMetrics) RecordError(string)              {}
func (noopMetrics) RecordLastPrice(string, float64) {}
func (noopMetrics) RecordLatency(string, float64)   {}

// testBars builds two trading days of minute bars for two contracts, with
// the front month carrying the volume both days and a trending tape that
// triggers at least one breakout.
func testBars() []models.Bar {
	bars := []models.Bar{}
	for day := 2; day <= 3; day++ {
		base := time.Date(2024, 12, day, 14, 0, 0, 0, time.UTC)
		for i := 0; i < 120; i++ {
			c := 21000 + 3*math.Sin(float64(i)/7) + float64(i)/4
			vol := int64(100)
			if i%17 == 0 {
				vol = 400 // volume bursts so breakout volume gates can pass
			}
			bars = append(bars, models.Bar{
				EventTime: base.Add(time.Duration(i) * time.Minute),
				Symbol:    "NQZ4",
				Open:      c - 0.5, High: c + 2, Low: c - 2, Close: c,
				Volume: vol,
			})
			// thin back-month bars that must be filtered out
			if i%10 == 0 {
				bars = append(bars, models.Bar{
					EventTime: base.Add(time.Duration(i) * time.Minute),
					Symbol:    "NQH5",
					Open:      c, High: c + 1, Low: c - 1, Close: c,
					Volume: 5,
				})
			}
		}
	}
	return bars
}

func newTestPipeline(store *fakeBarStore, sigs *fakeSignalStore, sums *fakeSummaryStore, pub *fakePublisher) *PipelineUseCase {
	return NewPipelineUseCase(store, sigs, sums, pub, noopMetrics{})
}

func TestPipelineRunEndToEnd(t *testing.T) {
	store := &fakeBarStore{bars: testBars()}
	sigs := &fakeSignalStore{}
	sums := &fakeSummaryStore{}
	pub := &fakePublisher{}
	uc := newTestPipeline(store, sigs, sums, pub)

	res, err := uc.Run(context.Background(), RunParams{From: "2024-12-02", To: "2024-12-03"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.OutputBars != 240 {
		t.Fatalf("continuous series should carry only NQZ4 bars, got %d", res.OutputBars)
	}
	if res.Rolls != 0 {
		t.Fatalf("same winner both days, expected 0 rolls, got %d", res.Rolls)
	}
	if len(sums.stored) != 2 {
		t.Fatalf("expected 2 daily summaries, got %d", len(sums.stored))
	}
	for _, s := range sums.stored {
		if s.Symbol != "NQZ4" || s.MinutesTraded != 120 {
			t.Fatalf("unexpected summary row: %+v", s)
		}
	}
	if len(sigs.stored) != res.Signals {
		t.Fatalf("stored %d signals, result says %d", len(sigs.stored), res.Signals)
	}
	if pub.published != res.Signals {
		t.Fatalf("published %d signals, want %d", pub.published, res.Signals)
	}
	for _, s := range sigs.stored {
		if s.BullishCount == 0 && s.BearishCount == 0 {
			t.Fatalf("HOLD row leaked into output: %+v", s)
		}
		if s.Direction == models.Hold {
			t.Fatalf("HOLD direction emitted")
		}
	}
}

func TestPipelineIdempotent(t *testing.T) {
	store := &fakeBarStore{bars: testBars()}
	sigs := &fakeSignalStore{}
	sums := &fakeSummaryStore{}
	uc := newTestPipeline(store, sigs, sums, &fakePublisher{})

	p := RunParams{From: "2024-12-02", To: "2024-12-03"}
	if _, err := uc.Run(context.Background(), p); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstSigs := append([]models.Signal{}, sigs.stored...)
	firstSums := append([]models.DailySummary{}, sums.stored...)

	if _, err := uc.Run(context.Background(), p); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(signalKeys(firstSigs), signalKeys(sigs.stored)) {
		t.Fatalf("signal output differs between identical runs")
	}
	if !reflect.DeepEqual(firstSums, sums.stored) {
		t.Fatalf("summary output differs between identical runs")
	}
}

// signalKeys projects signals to comparable values (pointers differ per run).
func signalKeys(sigs []models.Signal) []string {
	keys := make([]string, 0, len(sigs))
	for _, s := range sigs {
		keys = append(keys, s.EventTime.Format(time.RFC3339)+"|"+s.Symbol+"|"+string(s.Direction))
	}
	return keys
}

func TestPipelineDataGap(t *testing.T) {
	uc := newTestPipeline(&fakeBarStore{}, &fakeSignalStore{}, &fakeSummaryStore{}, &fakePublisher{})
	_, err := uc.Run(context.Background(), RunParams{From: "2024-12-02", To: "2024-12-02"})
	var gap *models.DataGapError
	if !errors.As(err, &gap) {
		t.Fatalf("expected DataGapError, got %v", err)
	}
}

func TestPipelineRejectsBadRange(t *testing.T) {
	uc := newTestPipeline(&fakeBarStore{}, &fakeSignalStore{}, &fakeSummaryStore{}, &fakePublisher{})
	if _, err := uc.Run(context.Background(), RunParams{From: "2024-12-05", To: "2024-12-02"}); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}
