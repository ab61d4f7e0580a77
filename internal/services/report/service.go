// Package report assembles and renders the per-slot market report.
package report

import (
	"time"

	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/interfaces"
	"github.com/bobmcallan/daybrief/internal/models"
)

// Compile-time interface check
var _ interfaces.ReportService = (*Service)(nil)

// Service builds the structured report model from a run's aggregates and the
// day's recorded progression.
type Service struct {
	logger *common.Logger
	now    func() time.Time
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new report service
func NewService(logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assemble combines the current run's aggregates with the earlier same-day
// slot averages. The indices category is split out of the ranked category
// list; everything else keeps watchlist order.
func (s *Service) Assemble(slot models.Slot, aggs []models.CategoryAggregate, summary models.RunSummary, progression map[models.ProgressionKey]float64) *models.MarketReport {
	now := s.now()
	report := &models.MarketReport{
		Slot:        slot,
		Day:         now.Format("2006-01-02"),
		GeneratedAt: now,
		Summary:     summary,
	}

	prior := slot.PriorSlots()
	for _, agg := range aggs {
		rc := models.ReportCategory{
			CategoryAggregate: agg,
			Progression:       progressionLines(agg.Category, prior, progression),
		}
		if agg.Category == models.IndicesCategory {
			indices := rc
			report.Indices = &indices
			continue
		}
		report.Categories = append(report.Categories, rc)
	}

	s.logger.Debug().
		Str("slot", string(slot)).
		Str("day", report.Day).
		Int("categories", len(report.Categories)).
		Bool("indices", report.Indices != nil).
		Msg("Report assembled")

	return report
}

// progressionLines looks up the recorded averages for the earlier slots, in
// the reverse-chronological order the report displays them. Slots with no
// recorded value for the category are simply absent.
func progressionLines(category string, prior []models.Slot, progression map[models.ProgressionKey]float64) []models.ProgressionLine {
	if len(prior) == 0 || len(progression) == 0 {
		return nil
	}
	var lines []models.ProgressionLine
	for _, slot := range prior {
		if avg, ok := progression[models.ProgressionKey{Category: category, Slot: slot}]; ok {
			lines = append(lines, models.ProgressionLine{Slot: slot, AveragePercent: avg})
		}
	}
	return lines
}
