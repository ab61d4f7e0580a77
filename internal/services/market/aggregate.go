// Package market computes per-category and global statistics for a single
// report run.
package market

import (
	"math"
	"sort"

	"github.com/bobmcallan/daybrief/internal/models"
)

// Aggregate computes category aggregates and the run summary from a watchlist
// and the quotes fetched this run. It is a pure function of its inputs:
// re-running on the same data yields identical results.
//
// Tickers absent from the quote map (or mapped to nil) were not fetched this
// run and are excluded from every statistic; they are never treated as zero.
// A category with no fetched tickers produces no aggregate at all.
func Aggregate(wl *models.Watchlist, quotes map[string]*models.Quote) ([]models.CategoryAggregate, models.RunSummary) {
	aggs := make([]models.CategoryAggregate, 0, len(wl.Categories))
	var summary models.RunSummary

	for _, cat := range wl.Categories {
		present := make([]models.Quote, 0, len(cat.Tickers))
		var missing []string

		for _, ticker := range cat.Tickers {
			q, ok := quotes[ticker]
			if !ok || q == nil {
				missing = append(missing, ticker)
				continue
			}
			present = append(present, *q)
		}

		// Breadth and ticker extremes span every fetched ticker, INDICES
		// included.
		for _, q := range present {
			tallyBreadth(&summary, q.PercentChange)
			trackTickerExtremes(&summary, q)
		}

		if len(present) == 0 {
			continue
		}

		// Stable sort keeps watchlist order for equal percent changes.
		sort.SliceStable(present, func(i, j int) bool {
			return present[i].PercentChange > present[j].PercentChange
		})

		sum := 0.0
		for _, q := range present {
			sum += q.PercentChange
		}
		avg := sum / float64(len(present))

		agg := models.CategoryAggregate{
			Category:       cat.Name,
			Tickers:        present,
			AveragePercent: avg,
			MemberCount:    len(present),
			Missing:        missing,
		}
		aggs = append(aggs, agg)

		// INDICES is ranked nowhere as a category; it gets its own table.
		if cat.Name != models.IndicesCategory {
			trackCategoryExtremes(&summary, agg)
		}
	}

	finalizeBreadth(&summary)
	return aggs, summary
}

// tallyBreadth classifies one percent change into the advancing, declining,
// or unchanged bucket.
func tallyBreadth(s *models.RunSummary, pct float64) {
	switch models.Classify(pct) {
	case models.DirectionUp:
		s.Advancers++
	case models.DirectionDown:
		s.Decliners++
	default:
		s.Unchanged++
	}
}

// trackTickerExtremes updates the best/worst single ticker. Comparison is
// strict, so the first ticker encountered in watchlist order wins ties.
func trackTickerExtremes(s *models.RunSummary, q models.Quote) {
	if !s.HasTickerExtremes {
		s.HasTickerExtremes = true
		s.BestTicker, s.BestTickerPct = q.Ticker, q.PercentChange
		s.WorstTicker, s.WorstTickerPct = q.Ticker, q.PercentChange
		return
	}
	if q.PercentChange > s.BestTickerPct {
		s.BestTicker, s.BestTickerPct = q.Ticker, q.PercentChange
	}
	if q.PercentChange < s.WorstTickerPct {
		s.WorstTicker, s.WorstTickerPct = q.Ticker, q.PercentChange
	}
}

// trackCategoryExtremes updates the best/worst category with the same
// strict-comparison tie rule.
func trackCategoryExtremes(s *models.RunSummary, agg models.CategoryAggregate) {
	if !s.HasCategoryExtremes {
		s.HasCategoryExtremes = true
		s.BestCategory, s.BestCategoryPct = agg.Category, agg.AveragePercent
		s.WorstCategory, s.WorstCategoryPct = agg.Category, agg.AveragePercent
		return
	}
	if agg.AveragePercent > s.BestCategoryPct {
		s.BestCategory, s.BestCategoryPct = agg.Category, agg.AveragePercent
	}
	if agg.AveragePercent < s.WorstCategoryPct {
		s.WorstCategory, s.WorstCategoryPct = agg.Category, agg.AveragePercent
	}
}

// finalizeBreadth converts the counters into percentages that always sum to
// exactly 100, with rounding error absorbed by the flat bucket.
func finalizeBreadth(s *models.RunSummary) {
	total := s.Advancers + s.Decliners + s.Unchanged
	if total == 0 {
		return
	}
	s.BreadthUpPct = int(math.Round(100 * float64(s.Advancers) / float64(total)))
	s.BreadthDownPct = int(math.Round(100 * float64(s.Decliners) / float64(total)))
	s.BreadthFlatPct = 100 - s.BreadthUpPct - s.BreadthDownPct
}
