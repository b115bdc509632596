package models

import (
	"time"

	"NQFlow/pkg/util"
)

// Bar is one instrument-minute OHLCV observation. Immutable once ingested.
type Bar struct {
	EventTime    time.Time // UTC, minute granularity
	InstrumentID int64
	Symbol       string // raw contract symbol, e.g. "NQZ4"
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       int64
}

// TradeDate returns the bar's trading date as "2006-01-02" in UTC.
// Dates compare correctly as strings, which keeps map keys cheap.
func (b Bar) TradeDate() string {
	return util.DateOf(b.EventTime)
}

// Valid reports whether the bar satisfies the OHLC ordering contract:
// positive prices, low <= {open, close} <= high, non-negative volume.
func (b Bar) Valid() bool {
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return false
	}
	if b.High < b.Low {
		return false
	}
	if b.Open < b.Low || b.Open > b.High {
		return false
	}
	if b.Close < b.Low || b.Close > b.High {
		return false
	}
	return b.Volume >= 0
}

// ContinuousBar is a Bar tagged with the trading date whose volume ranking
// it won. Within one date every bar carries the same symbol; the symbol may
// change only at a date boundary (a roll).
type ContinuousBar struct {
	Bar
	TradingDate string
}

// ContinuousSeries is the front-contract bar sequence, ordered by event time.
type ContinuousSeries []ContinuousBar

// BuildStats reports what the continuous contract builder did with its input.
type BuildStats struct {
	InputBars   int
	InvalidBars int
	OutputBars  int
	Rolls       int
}
