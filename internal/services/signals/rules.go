package signals

import "NQFlow/internal/domain/models"

// RowContext gives a rule the current row plus the partition-local lookback
// it may need. Prev and Lag5 are nil when the symbol run is too shallow.
type RowContext struct {
	Row  models.IndicatorRow
	Prev *models.IndicatorRow // previous row in the same symbol run
	Lag5 *models.IndicatorRow // row five bars back in the same symbol run
}

// Rule is one independent family of entry conditions. Eval returns UP, DOWN
// or nil; families never see each other's votes.
type Rule struct {
	Name string
	Eval func(rc RowContext) *models.Vote
}

// DefaultRules returns the four rule families in their documented order:
// MA crossover, breakout, mean reversion, momentum.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "ma_crossover", Eval: maCrossover},
		{Name: "breakout", Eval: breakout},
		{Name: "mean_reversion", Eval: meanReversion},
		{Name: "momentum", Eval: momentum},
	}
}

// maCrossover fires when sma_10 crosses sma_20 between the previous row and
// this one, both legs strict.
func maCrossover(rc RowContext) *models.Vote {
	if rc.Prev == nil {
		return nil
	}
	if rc.Prev.SMA10 < rc.Prev.SMA20 && rc.Row.SMA10 > rc.Row.SMA20 {
		return vote(models.VoteUp)
	}
	if rc.Prev.SMA10 > rc.Prev.SMA20 && rc.Row.SMA10 < rc.Row.SMA20 {
		return vote(models.VoteDown)
	}
	return nil
}

// breakout fires when the close escapes the 5-bar-prior high/low on volume
// above 1.5x the trailing 10-bar average.
func breakout(rc RowContext) *models.Vote {
	if rc.Lag5 == nil {
		return nil
	}
	if float64(rc.Row.Volume) <= breakoutVolumeRatio*rc.Row.AvgVolume10 {
		return nil
	}
	if rc.Row.Close > rc.Lag5.High {
		return vote(models.VoteUp)
	}
	if rc.Row.Close < rc.Lag5.Low {
		return vote(models.VoteDown)
	}
	return nil
}

// meanReversion fires when price is displaced at least 0.5% from sma_20,
// 1-minute momentum is already recovering toward it, and volatility is HIGH.
func meanReversion(rc RowContext) *models.Vote {
	if rc.Row.Volatility != models.VolatilityHigh || rc.Row.PriceChange1 == nil {
		return nil
	}
	c1 := *rc.Row.PriceChange1
	if rc.Row.Close <= rc.Row.SMA20*(1-reversionDisplacement) && c1 > 0 {
		return vote(models.VoteUp)
	}
	if rc.Row.Close >= rc.Row.SMA20*(1+reversionDisplacement) && c1 < 0 {
		return vote(models.VoteDown)
	}
	return nil
}

// momentum fires on a STRONG classification confirmed by close position and
// above-average volume.
func momentum(rc RowContext) *models.Vote {
	if float64(rc.Row.Volume) <= rc.Row.AvgVolume10 {
		return nil
	}
	if rc.Row.Momentum == models.MomentumStrongUp && rc.Row.ClosePosition > momentumUpperBand {
		return vote(models.VoteUp)
	}
	if rc.Row.Momentum == models.MomentumStrongDown && rc.Row.ClosePosition < momentumLowerBand {
		return vote(models.VoteDown)
	}
	return nil
}

const (
	breakoutVolumeRatio   = 1.5
	reversionDisplacement = 0.005
	momentumUpperBand     = 0.7
	momentumLowerBand     = 0.3
)

func vote(v models.Vote) *models.Vote { return &v }
