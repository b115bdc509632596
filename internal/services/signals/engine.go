// Package signals evaluates the rule families against an indicator frame
// and aggregates their votes into directional calls. Bullish and bearish
// counts are independent; a row may contribute to both. Rows resolving to
// HOLD are dropped, never emitted.
package signals

import "NQFlow/internal/domain/models"

// CME Globex regular trading hours for the equity index session, in UTC.
const (
	rthOpenMinute  = 13*60 + 30 // 13:30
	rthCloseMinute = 20 * 60    // 20:00
)

// Engine turns an IndicatorFrame into Signals.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine with the default rule families.
func NewEngine() *Engine { return &Engine{rules: DefaultRules()} }

// NewEngineWithRules builds an engine with a custom rule chain, evaluated
// in the order given.
func NewEngineWithRules(rules []Rule) *Engine { return &Engine{rules: rules} }

// Generate evaluates every frame row and returns the non-HOLD signals,
// ordered most recent event time first.
func (e *Engine) Generate(frame models.IndicatorFrame) []models.Signal {
	out := make([]models.Signal, 0, len(frame)/8)

	runStart := 0
	for i := range frame {
		if i > 0 && frame[i].Symbol != frame[i-1].Symbol {
			runStart = i
		}
		row := frame[i]
		if !row.Bar.Valid() {
			continue
		}

		rc := RowContext{Row: row}
		if i > runStart {
			rc.Prev = &frame[i-1]
		}
		if i-runStart >= 5 {
			rc.Lag5 = &frame[i-5]
		}

		sig := models.Signal{
			EventTime: row.EventTime,
			Symbol:    row.Symbol,
			Close:     row.Close,
			Session:   classifySession(row),
		}
		if row.AvgRange20 > 0 {
			sig.RiskRatio = row.PriceRange / row.AvgRange20
		}

		for _, rule := range e.rules {
			v := rule.Eval(rc)
			if v == nil {
				continue
			}
			switch rule.Name {
			case "ma_crossover":
				sig.MACrossover = v
			case "breakout":
				sig.Breakout = v
			case "mean_reversion":
				sig.MeanReversion = v
			case "momentum":
				sig.Momentum = v
			}
			if *v == models.VoteUp {
				sig.BullishCount++
			} else {
				sig.BearishCount++
			}
		}

		sig.Direction = aggregate(sig.BullishCount, sig.BearishCount)
		if sig.Direction == models.Hold {
			continue
		}
		out = append(out, sig)
	}

	// most recent first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func aggregate(bullish, bearish int) models.Direction {
	switch {
	case bullish >= 2 && bearish == 0:
		return models.StrongBuy
	case bullish >= 1 && bearish == 0:
		return models.Buy
	case bearish >= 2 && bullish == 0:
		return models.StrongSell
	case bearish >= 1 && bullish == 0:
		return models.Sell
	default:
		return models.Hold
	}
}

func classifySession(row models.IndicatorRow) models.Session {
	t := row.EventTime.UTC()
	minute := t.Hour()*60 + t.Minute()
	if minute >= rthOpenMinute && minute < rthCloseMinute {
		return models.SessionRegular
	}
	return models.SessionExtended
}
