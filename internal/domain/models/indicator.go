package models

// TrendDirection classifies close relative to the 20-bar moving average.
type TrendDirection string

const (
	TrendUp       TrendDirection = "UPTREND"
	TrendDown     TrendDirection = "DOWNTREND"
	TrendSideways TrendDirection = "SIDEWAYS"
)

// MomentumClass is a joint sign test of the 1m and 5m price changes.
type MomentumClass string

const (
	MomentumStrongUp   MomentumClass = "STRONG_UP"
	MomentumWeakUp     MomentumClass = "WEAK_UP"
	MomentumStrongDown MomentumClass = "STRONG_DOWN"
	MomentumWeakDown   MomentumClass = "WEAK_DOWN"
	MomentumNeutral    MomentumClass = "NEUTRAL"
)

// VolatilityClass compares the bar range to its trailing 20-bar average.
type VolatilityClass string

const (
	VolatilityHigh   VolatilityClass = "HIGH"
	VolatilityLow    VolatilityClass = "LOW"
	VolatilityNormal VolatilityClass = "NORMAL"
)

// IndicatorRow is a ContinuousBar extended with rolling derived fields.
// Every derived field is a function of the current and prior rows of the
// same symbol partition only; nothing looks ahead.
type IndicatorRow struct {
	ContinuousBar

	SMA10 float64
	SMA20 float64
	SMA50 float64

	// Price changes are nil until the partition has k prior bars.
	PriceChange1  *float64
	PriceChange5  *float64
	PriceChange15 *float64

	PriceRange    float64
	AvgRange20    float64
	AvgVolume10   float64
	ClosePosition float64 // (close-low)/(high-low), 0.5 on zero-range bars
	TypicalPrice  float64

	Trend      TrendDirection
	Momentum   MomentumClass
	Volatility VolatilityClass
}

// IndicatorFrame holds one IndicatorRow per input bar, in input order.
type IndicatorFrame []IndicatorRow
