package models

import "fmt"

// DataGapError reports a requested range with no usable bars for any symbol.
// Distinguishes "nothing traded here at all" from "valid day, no signals".
type DataGapError struct {
	From string
	To   string
}

func (e *DataGapError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("no bars for any symbol on %s", e.From)
	}
	return fmt.Sprintf("no bars for any symbol in [%s, %s]", e.From, e.To)
}

// InvalidBarError describes one bar rejected by OHLC validation. Invalid
// bars are counted and dropped, not fatal; the type exists so ingest paths
// can surface the reason for a rejection.
type InvalidBarError struct {
	Symbol    string
	TradeDate string
	Reason    string
}

func (e *InvalidBarError) Error() string {
	return fmt.Sprintf("invalid bar %s %s: %s", e.Symbol, e.TradeDate, e.Reason)
}
