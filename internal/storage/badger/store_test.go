package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/models"
)

// --- Test helpers ---

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), filepath.Join(t.TempDir(), "badger"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(day, category string, slot models.Slot, avg float64) *models.ProgressionRecord {
	return &models.ProgressionRecord{
		Day:            day,
		Category:       category,
		Slot:           slot,
		AveragePercent: avg,
		RunID:          "run-1",
		RecordedAt:     time.Now(),
	}
}

// --- Store tests ---

func TestStore_OpenClose(t *testing.T) {
	store, err := NewStore(common.NewSilentLogger(), filepath.Join(t.TempDir(), "badger"))
	require.NoError(t, err)
	require.NotNil(t, store.DB())
	require.NoError(t, store.Close())
}

func TestStore_CloseNilDB(t *testing.T) {
	store := &Store{}
	assert.NoError(t, store.Close())
}

// --- Progression storage tests ---

func TestProgressionStorage_RoundTrip(t *testing.T) {
	ps := NewProgressionStorage(newTestStore(t), common.NewSilentLogger())
	ctx := context.Background()

	require.NoError(t, ps.AppendProgression(ctx, record("2026-08-21", "TECH", models.SlotOpen, 0.42)))
	require.NoError(t, ps.AppendProgression(ctx, record("2026-08-21", "ENERGY", models.SlotOpen, -1.10)))

	day, err := ps.LoadDay(ctx, "2026-08-21")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, 0.42, day[models.ProgressionKey{Category: "TECH", Slot: models.SlotOpen}])
	assert.Equal(t, -1.10, day[models.ProgressionKey{Category: "ENERGY", Slot: models.SlotOpen}])
}

func TestProgressionStorage_RerunShadowsEarlier(t *testing.T) {
	ps := NewProgressionStorage(newTestStore(t), common.NewSilentLogger())
	ctx := context.Background()

	require.NoError(t, ps.AppendProgression(ctx, record("2026-08-21", "TECH", models.SlotOpen, 0.42)))
	require.NoError(t, ps.AppendProgression(ctx, record("2026-08-21", "TECH", models.SlotOpen, 0.55)))

	day, err := ps.LoadDay(ctx, "2026-08-21")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, 0.55, day[models.ProgressionKey{Category: "TECH", Slot: models.SlotOpen}])
}

func TestProgressionStorage_DayIsolation(t *testing.T) {
	ps := NewProgressionStorage(newTestStore(t), common.NewSilentLogger())
	ctx := context.Background()

	require.NoError(t, ps.AppendProgression(ctx, record("2026-08-20", "TECH", models.SlotClose, 1.00)))
	require.NoError(t, ps.AppendProgression(ctx, record("2026-08-21", "TECH", models.SlotOpen, 0.25)))

	yesterday, err := ps.LoadDay(ctx, "2026-08-20")
	require.NoError(t, err)
	today, err := ps.LoadDay(ctx, "2026-08-21")
	require.NoError(t, err)

	assert.Len(t, yesterday, 1)
	assert.Len(t, today, 1)
	assert.Equal(t, 1.00, yesterday[models.ProgressionKey{Category: "TECH", Slot: models.SlotClose}])
}

func TestProgressionStorage_EmptyDay(t *testing.T) {
	ps := NewProgressionStorage(newTestStore(t), common.NewSilentLogger())

	day, err := ps.LoadDay(context.Background(), "2026-01-01")
	require.NoError(t, err)
	assert.Empty(t, day)
}

func TestProgressionStorage_RejectsIncompleteRecord(t *testing.T) {
	ps := NewProgressionStorage(newTestStore(t), common.NewSilentLogger())

	err := ps.AppendProgression(context.Background(), &models.ProgressionRecord{Category: "TECH", Slot: models.SlotOpen})
	assert.Error(t, err)
}

func TestProgressionStorage_SlotsAccumulateAcrossRuns(t *testing.T) {
	ps := NewProgressionStorage(newTestStore(t), common.NewSilentLogger())
	ctx := context.Background()

	require.NoError(t, ps.AppendProgression(ctx, record("2026-08-21", "TECH", models.SlotOpen, 0.42)))
	require.NoError(t, ps.AppendProgression(ctx, record("2026-08-21", "TECH", models.SlotMidday, 0.80)))

	day, err := ps.LoadDay(ctx, "2026-08-21")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, 0.42, day[models.ProgressionKey{Category: "TECH", Slot: models.SlotOpen}])
	assert.Equal(t, 0.80, day[models.ProgressionKey{Category: "TECH", Slot: models.SlotMidday}])
}
