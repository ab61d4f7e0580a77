package models

import (
	"fmt"
	"time"
)

// Slot identifies one of the three scheduled report types per trading day.
type Slot string

const (
	SlotOpen   Slot = "open"
	SlotMidday Slot = "midday"
	SlotClose  Slot = "close"
)

// ParseSlot validates a slot name from the CLI.
func ParseSlot(s string) (Slot, error) {
	switch Slot(s) {
	case SlotOpen, SlotMidday, SlotClose:
		return Slot(s), nil
	}
	return "", fmt.Errorf("invalid slot '%s' (want open, midday, or close)", s)
}

// Label returns the human-readable report title for the slot.
func (s Slot) Label() string {
	switch s {
	case SlotOpen:
		return "Market Open"
	case SlotMidday:
		return "Midday"
	case SlotClose:
		return "Market Close"
	}
	return string(s)
}

// PriorSlots returns the earlier same-day slots whose recorded averages a
// report for this slot displays, in reverse-chronological order.
func (s Slot) PriorSlots() []Slot {
	switch s {
	case SlotMidday:
		return []Slot{SlotOpen}
	case SlotClose:
		return []Slot{SlotMidday, SlotOpen}
	}
	return nil
}

// CategoryAggregate holds one category's per-run statistics, computed only
// from tickers whose quotes were successfully fetched.
type CategoryAggregate struct {
	Category       string   `json:"category"`
	Tickers        []Quote  `json:"tickers"` // sorted by percent change, descending
	AveragePercent float64  `json:"average_percent"`
	MemberCount    int      `json:"member_count"`
	Missing        []string `json:"missing,omitempty"`
}

// RunSummary holds the global statistics derived from all category
// aggregates in a single run.
type RunSummary struct {
	BestTicker       string  `json:"best_ticker"`
	BestTickerPct    float64 `json:"best_ticker_pct"`
	WorstTicker      string  `json:"worst_ticker"`
	WorstTickerPct   float64 `json:"worst_ticker_pct"`
	BestCategory     string  `json:"best_category"`
	BestCategoryPct  float64 `json:"best_category_pct"`
	WorstCategory    string  `json:"worst_category"`
	WorstCategoryPct float64 `json:"worst_category_pct"`

	Advancers int `json:"advancers"`
	Decliners int `json:"decliners"`
	Unchanged int `json:"unchanged"`

	BreadthUpPct   int `json:"breadth_up_pct"`
	BreadthDownPct int `json:"breadth_down_pct"`
	BreadthFlatPct int `json:"breadth_flat_pct"`

	// HasTickerExtremes is false when no quote was fetched at all.
	// HasCategoryExtremes is false when no non-INDICES category produced an
	// aggregate. Callers render N/A instead of best/worst values.
	HasTickerExtremes   bool `json:"has_ticker_extremes"`
	HasCategoryExtremes bool `json:"has_category_extremes"`
}

// ProgressionLine is one earlier-slot average shown under a category in a
// later-slot report.
type ProgressionLine struct {
	Slot           Slot    `json:"slot"`
	AveragePercent float64 `json:"average_percent"`
}

// ReportCategory is a category aggregate plus its same-day progression.
type ReportCategory struct {
	CategoryAggregate
	Progression []ProgressionLine `json:"progression,omitempty"`
}

// MarketReport is the complete assembled model handed to the renderer and,
// as a plain numeric dataset, to the insight generator.
type MarketReport struct {
	Slot        Slot             `json:"slot"`
	Day         string           `json:"day"`
	GeneratedAt time.Time        `json:"generated_at"`
	RunID       string           `json:"run_id"`
	Indices     *ReportCategory  `json:"indices,omitempty"`
	Categories  []ReportCategory `json:"categories"`
	Summary     RunSummary       `json:"summary"`
	Insights    string           `json:"insights"`
}

// Attachment is a file attached to the delivered report email.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}
