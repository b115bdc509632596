package signals

import (
	"testing"
	"time"

	"NQFlow/internal/domain/models"
)

func row(sym string, minute int, close float64) models.IndicatorRow {
	ts := time.Date(2024, 12, 2, 14, 0, 0, 0, time.UTC).Add(time.Duration(minute) * time.Minute)
	return models.IndicatorRow{
		ContinuousBar: models.ContinuousBar{
			Bar: models.Bar{
				EventTime: ts, Symbol: sym,
				Open: close, High: close + 1, Low: close - 1, Close: close, Volume: 100,
			},
			TradingDate: "2024-12-02",
		},
		SMA10: close, SMA20: close, SMA50: close,
		AvgRange20: 2, AvgVolume10: 100, PriceRange: 2,
		ClosePosition: 0.5,
		Trend:         models.TrendSideways,
		Momentum:      models.MomentumNeutral,
		Volatility:    models.VolatilityNormal,
	}
}

func TestBreakoutBuyExample(t *testing.T) {
	// closes 100,101,99,102,105 with a prior 5-bar high of 103 and
	// current volume at 2x the 10-bar average: breakout-up fires alone.
	closes := []float64{103, 100, 101, 99, 102, 105}
	frame := models.IndicatorFrame{}
	for i, c := range closes {
		r := row("NQZ4", i, c)
		r.High = c
		r.Low = c - 1
		r.Open = c - 0.5
		frame = append(frame, r)
	}
	last := &frame[5]
	last.Volume = 200
	last.AvgVolume10 = 100
	last.High = 105.5
	last.Low = 104
	last.Open = 104.5
	last.ClosePosition = 0.6 // keep momentum family quiet

	sigs := NewEngine().Generate(frame)
	if len(sigs) == 0 {
		t.Fatalf("expected a signal")
	}
	sig := sigs[0]
	if sig.Breakout == nil || *sig.Breakout != models.VoteUp {
		t.Fatalf("breakout should vote UP, got %+v", sig.Breakout)
	}
	if sig.BullishCount != 1 || sig.BearishCount != 0 {
		t.Fatalf("counts = %d/%d, want 1/0", sig.BullishCount, sig.BearishCount)
	}
	if sig.Direction != models.Buy {
		t.Fatalf("direction = %s, want BUY", sig.Direction)
	}
}

func TestMACrossoverStrictFlip(t *testing.T) {
	prev := row("NQZ4", 0, 100)
	prev.SMA10, prev.SMA20 = 99, 100
	cur := row("NQZ4", 1, 100)
	cur.SMA10, cur.SMA20 = 101, 100

	frame := models.IndicatorFrame{prev, cur}
	sigs := NewEngine().Generate(frame)
	if len(sigs) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(sigs))
	}
	if sigs[0].MACrossover == nil || *sigs[0].MACrossover != models.VoteUp {
		t.Fatalf("expected UP crossover, got %+v", sigs[0].MACrossover)
	}

	// equal legs do not fire: no strict flip
	flat := row("NQZ4", 1, 100)
	flat.SMA10, flat.SMA20 = 100, 100
	if got := NewEngine().Generate(models.IndicatorFrame{prev, flat}); len(got) != 0 {
		t.Fatalf("non-strict flip must not fire, got %d signals", len(got))
	}
}

func TestMeanReversionRequiresHighVolAndRecovery(t *testing.T) {
	r := row("NQZ4", 1, 99.4) // 0.6% below sma20=100
	r.SMA20 = 100
	r.Volatility = models.VolatilityHigh
	up := 0.2
	r.PriceChange1 = &up

	frame := models.IndicatorFrame{row("NQZ4", 0, 100), r}
	sigs := NewEngine().Generate(frame)
	if len(sigs) != 1 || sigs[0].MeanReversion == nil || *sigs[0].MeanReversion != models.VoteUp {
		t.Fatalf("expected mean-reversion UP, got %+v", sigs)
	}

	// same setup without high volatility stays silent
	r.Volatility = models.VolatilityNormal
	if got := NewEngine().Generate(models.IndicatorFrame{row("NQZ4", 0, 100), r}); len(got) != 0 {
		t.Fatalf("mean reversion must require HIGH volatility")
	}
}

func TestMomentumRule(t *testing.T) {
	r := row("NQZ4", 0, 100)
	r.Momentum = models.MomentumStrongUp
	r.ClosePosition = 0.8
	r.Volume = 150
	r.AvgVolume10 = 100

	sigs := NewEngine().Generate(models.IndicatorFrame{r})
	if len(sigs) != 1 || sigs[0].Momentum == nil || *sigs[0].Momentum != models.VoteUp {
		t.Fatalf("expected momentum UP, got %+v", sigs)
	}

	r.ClosePosition = 0.5
	if got := NewEngine().Generate(models.IndicatorFrame{r}); len(got) != 0 {
		t.Fatalf("momentum needs close position beyond 0.7")
	}
}

func TestHoldRowsNeverEmitted(t *testing.T) {
	frame := models.IndicatorFrame{}
	for i := 0; i < 50; i++ {
		frame = append(frame, row("NQZ4", i, 100)) // nothing ever fires
	}
	sigs := NewEngine().Generate(frame)
	if len(sigs) != 0 {
		t.Fatalf("quiet tape should produce no signals, got %d", len(sigs))
	}
	for _, s := range sigs {
		if s.BullishCount == 0 && s.BearishCount == 0 {
			t.Fatalf("zero-count signal leaked: %+v", s)
		}
	}
}

func TestStrongBuyNeedsTwoFamiliesAndNoOpposition(t *testing.T) {
	r := row("NQZ4", 1, 100)
	r.Momentum = models.MomentumStrongUp
	r.ClosePosition = 0.8
	r.Volume = 200
	r.AvgVolume10 = 100
	prev := row("NQZ4", 0, 100)
	prev.SMA10, prev.SMA20 = 99, 100
	r.SMA10, r.SMA20 = 101, 100

	sigs := NewEngine().Generate(models.IndicatorFrame{prev, r})
	if len(sigs) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(sigs))
	}
	if sigs[0].Direction != models.StrongBuy {
		t.Fatalf("two bullish families should yield STRONG_BUY, got %s", sigs[0].Direction)
	}
}

func TestOutputMostRecentFirst(t *testing.T) {
	frame := models.IndicatorFrame{}
	for i := 0; i < 3; i++ {
		r := row("NQZ4", i, 100)
		r.Momentum = models.MomentumStrongUp
		r.ClosePosition = 0.8
		r.Volume = 200
		r.AvgVolume10 = 100
		frame = append(frame, r)
	}
	sigs := NewEngine().Generate(frame)
	for i := 1; i < len(sigs); i++ {
		if sigs[i].EventTime.After(sigs[i-1].EventTime) {
			t.Fatalf("signals not ordered most recent first")
		}
	}
}

func TestInvalidRowsExcluded(t *testing.T) {
	r := row("NQZ4", 0, 100)
	r.Momentum = models.MomentumStrongUp
	r.ClosePosition = 0.8
	r.Volume = 200
	r.AvgVolume10 = 100
	r.High = r.Low - 1 // corrupt OHLC
	if got := NewEngine().Generate(models.IndicatorFrame{r}); len(got) != 0 {
		t.Fatalf("invalid OHLC rows must never emit signals")
	}
}

func TestSessionClassification(t *testing.T) {
	rth := row("NQZ4", 0, 100) // 14:00 UTC
	rth.Momentum = models.MomentumStrongUp
	rth.ClosePosition = 0.8
	rth.Volume = 200
	rth.AvgVolume10 = 100

	eth := rth
	eth.EventTime = time.Date(2024, 12, 2, 22, 0, 0, 0, time.UTC)

	sigs := NewEngine().Generate(models.IndicatorFrame{rth})
	if sigs[0].Session != models.SessionRegular {
		t.Fatalf("14:00 UTC should be REGULAR, got %s", sigs[0].Session)
	}
	sigs = NewEngine().Generate(models.IndicatorFrame{eth})
	if sigs[0].Session != models.SessionExtended {
		t.Fatalf("22:00 UTC should be EXTENDED, got %s", sigs[0].Session)
	}
}
