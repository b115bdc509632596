package models

import "time"

// Vote is one rule family's directional opinion on a single row.
type Vote string

const (
	VoteUp   Vote = "UP"
	VoteDown Vote = "DOWN"
)

// Direction is the aggregated trading call.
type Direction string

const (
	StrongBuy  Direction = "STRONG_BUY"
	Buy        Direction = "BUY"
	StrongSell Direction = "STRONG_SELL"
	Sell       Direction = "SELL"
	Hold       Direction = "HOLD" // never emitted; filtered before output
)

// Session classifies a bar's trading hour.
type Session string

const (
	SessionRegular  Session = "REGULAR"
	SessionExtended Session = "EXTENDED"
)

// Signal is a pure projection of one IndicatorFrame row where at least one
// rule family fired and the aggregate call is not HOLD.
type Signal struct {
	EventTime time.Time
	Symbol    string
	Close     float64

	// Component votes; nil when the family did not fire.
	MACrossover   *Vote
	Breakout      *Vote
	MeanReversion *Vote
	Momentum      *Vote

	BullishCount int
	BearishCount int
	Direction    Direction
	RiskRatio    float64 // bar range relative to its trailing 20-bar average
	Session      Session
}

// DailySummary rolls the indicator frame up to one row per trading day.
type DailySummary struct {
	TradingDate     string
	Symbol          string
	MarketOpenTime  time.Time
	MarketCloseTime time.Time
	Open            float64
	High            float64
	Low             float64
	Close           float64
	Volume          int64
	MinutesTraded   int
	PriceVolatility float64 // sample stddev of minute closes
	SMA10           float64 // end-of-day snapshots
	SMA20           float64
	SMA50           float64
}
