package models

import "time"

// ProgressionRecord is one appended (day, category, slot) average in the
// day-scoped progression log. Records are append-only: Seq is assigned by the
// store and later records for the same logical key shadow earlier ones when a
// day is loaded (last-write-wins).
type ProgressionRecord struct {
	Seq            uint64    `json:"seq" badgerhold:"key"`
	Day            string    `json:"day" badgerhold:"index"` // local date, 2006-01-02
	Category       string    `json:"category"`
	Slot           Slot      `json:"slot"`
	AveragePercent float64   `json:"average_percent"`
	RunID          string    `json:"run_id"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// ProgressionKey identifies a logical progression entry within a day.
type ProgressionKey struct {
	Category string
	Slot     Slot
}
