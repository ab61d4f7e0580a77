package interfaces

import (
	"context"

	"github.com/bobmcallan/daybrief/internal/models"
)

// ProgressionStore is the day-scoped, append-only log of per-category slot
// averages shared across the day's independent report runs.
type ProgressionStore interface {
	// AppendProgression appends one record. Appends never update in place;
	// duplicate (day, category, slot) keys are resolved at load time.
	AppendProgression(ctx context.Context, rec *models.ProgressionRecord) error

	// LoadDay scans all records for a local date and returns the latest value
	// per (category, slot), last-write-wins by append order.
	LoadDay(ctx context.Context, day string) (map[models.ProgressionKey]float64, error)

	// Close releases the underlying store.
	Close() error
}
