// Package interfaces defines service contracts for Daybrief
package interfaces

import (
	"context"

	"github.com/bobmcallan/daybrief/internal/models"
)

// QuoteClient provides access to the market-data provider.
type QuoteClient interface {
	// GetRealTimeQuote retrieves the current price and prior close for a ticker
	GetRealTimeQuote(ctx context.Context, ticker string) (*models.RealTimeQuote, error)
}

// InsightClient generates natural-language commentary from a plain numeric
// dataset. It never receives rendered markup.
type InsightClient interface {
	// GenerateInsights produces commentary for a report slot's dataset
	GenerateInsights(ctx context.Context, dataset string, slot models.Slot) (string, error)
}
