package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/interfaces"
	"github.com/bobmcallan/daybrief/internal/models"
)

// Compile-time interface check
var _ interfaces.ProgressionStore = (*progressionStorage)(nil)

type progressionStorage struct {
	store  *Store
	logger *common.Logger
}

// NewProgressionStorage creates a ProgressionStore backed by BadgerHold.
// Records are append-only; a re-run for a slot appends fresh records that
// shadow the earlier ones at read time.
func NewProgressionStorage(store *Store, logger *common.Logger) *progressionStorage {
	return &progressionStorage{store: store, logger: logger}
}

func (s *progressionStorage) AppendProgression(_ context.Context, record *models.ProgressionRecord) error {
	if record.Day == "" || record.Category == "" || record.Slot == "" {
		return fmt.Errorf("progression record is missing day, category, or slot")
	}

	if err := s.store.db.Insert(badgerhold.NextSequence(), record); err != nil {
		return fmt.Errorf("failed to append progression record: %w", err)
	}

	s.logger.Debug().
		Str("day", record.Day).
		Str("category", record.Category).
		Str("slot", string(record.Slot)).
		Float64("average_percent", record.AveragePercent).
		Msg("Progression record appended")
	return nil
}

// LoadDay replays the full log for one day in append order. Later records for
// the same (category, slot) shadow earlier ones, so a re-run simply wins.
func (s *progressionStorage) LoadDay(_ context.Context, day string) (map[models.ProgressionKey]float64, error) {
	var records []models.ProgressionRecord
	query := badgerhold.Where("Day").Eq(day).Index("Day")
	if err := s.store.db.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to load progression for %s: %w", day, err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})

	result := make(map[models.ProgressionKey]float64, len(records))
	for _, r := range records {
		result[models.ProgressionKey{Category: r.Category, Slot: r.Slot}] = r.AveragePercent
	}
	return result, nil
}

func (s *progressionStorage) Close() error {
	return s.store.Close()
}
