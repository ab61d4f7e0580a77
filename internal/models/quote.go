package models

import (
	"math"
	"time"
)

// FlatThreshold is the percent-change band treated as unchanged. A move must
// exceed +0.05% to count as advancing or fall below -0.05% to count as
// declining, for both breadth counting and report coloring.
const FlatThreshold = 0.05

// Direction classifies a percent change against FlatThreshold.
type Direction int

const (
	DirectionFlat Direction = iota
	DirectionUp
	DirectionDown
)

// Classify buckets a percent change as up, down, or flat.
func Classify(pct float64) Direction {
	switch {
	case pct > FlatThreshold:
		return DirectionUp
	case pct < -FlatThreshold:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// RealTimeQuote is the raw quote returned by the market-data provider.
type RealTimeQuote struct {
	Ticker    string    `json:"ticker"`
	Close     float64   `json:"close"`
	PrevClose float64   `json:"previous_close"`
	Timestamp time.Time `json:"timestamp"`
}

// Quote is a successfully fetched quote with its percent change computed at
// fetch time. Tickers whose fetch failed have no Quote at all (Missing) and
// are excluded from every aggregate.
type Quote struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	PercentChange float64 `json:"percent_change"`
}

// NewQuote builds a Quote from a raw provider quote. Percent change is
// (price - prevClose) / prevClose * 100 rounded to 2 decimal places, or 0
// when prevClose is 0.
func NewQuote(rt *RealTimeQuote) Quote {
	pct := 0.0
	if rt.PrevClose != 0 {
		pct = Round2((rt.Close - rt.PrevClose) / rt.PrevClose * 100)
	}
	return Quote{
		Ticker:        rt.Ticker,
		Price:         rt.Close,
		PercentChange: pct,
	}
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
