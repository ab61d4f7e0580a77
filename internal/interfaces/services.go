package interfaces

import (
	"context"

	"github.com/bobmcallan/daybrief/internal/models"
)

// WatchlistService loads the categorized ticker watchlist.
type WatchlistService interface {
	// Load reads and validates the watchlist. Called once per run; the
	// returned watchlist is read-only thereafter.
	Load(ctx context.Context) (*models.Watchlist, error)
}

// ReportService assembles the structured report model for a slot.
type ReportService interface {
	// Assemble combines the current run's aggregates with earlier same-day
	// slot averages into the final report model.
	Assemble(slot models.Slot, aggs []models.CategoryAggregate, summary models.RunSummary, progression map[models.ProgressionKey]float64) *models.MarketReport
}

// MailService delivers a rendered report via the email transport.
type MailService interface {
	// Send delivers the report to the configured recipients
	Send(ctx context.Context, subject, htmlBody, textBody string, attachments []models.Attachment) error
}
