package run

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/interfaces"
	"github.com/bobmcallan/daybrief/internal/models"
	"github.com/bobmcallan/daybrief/internal/services/report"
)

// --- Fakes ---

type fakeWatchlist struct {
	wl    *models.Watchlist
	err   error
	calls int
}

func (f *fakeWatchlist) Load(_ context.Context) (*models.Watchlist, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.wl, nil
}

type fakeQuotes struct {
	mu     sync.Mutex
	quotes map[string]*models.RealTimeQuote
	calls  int
}

func (f *fakeQuotes) GetRealTimeQuote(_ context.Context, ticker string) (*models.RealTimeQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if q, ok := f.quotes[ticker]; ok {
		return q, nil
	}
	return nil, fmt.Errorf("no quote for %s", ticker)
}

type fakeInsights struct {
	text string
	err  error
}

func (f *fakeInsights) GenerateInsights(_ context.Context, _ string, _ models.Slot) (string, error) {
	return f.text, f.err
}

type fakeMail struct {
	calls    int
	failures int // fail the first N sends
	subjects []string
}

func (f *fakeMail) Send(_ context.Context, subject, _, _ string, _ []models.Attachment) error {
	f.calls++
	f.subjects = append(f.subjects, subject)
	if f.calls <= f.failures {
		return fmt.Errorf("smtp unavailable")
	}
	return nil
}

type fakeStore struct {
	records []models.ProgressionRecord
	seeded  map[models.ProgressionKey]float64
}

func (f *fakeStore) AppendProgression(_ context.Context, rec *models.ProgressionRecord) error {
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeStore) LoadDay(_ context.Context, _ string) (map[models.ProgressionKey]float64, error) {
	result := make(map[models.ProgressionKey]float64)
	for k, v := range f.seeded {
		result[k] = v
	}
	for _, r := range f.records {
		result[models.ProgressionKey{Category: r.Category, Slot: r.Slot}] = r.AveragePercent
	}
	return result, nil
}

func (f *fakeStore) Close() error { return nil }

// --- Fixture ---

type fixture struct {
	runner    *Runner
	watchlist *fakeWatchlist
	quotes    *fakeQuotes
	mail      *fakeMail
	store     *fakeStore
	sleeps    []time.Duration
}

// fridayClock is a regular trading day.
var fridayClock = func() time.Time {
	return time.Date(2026, 8, 21, 9, 40, 0, 0, time.UTC)
}

func newFixture(t *testing.T, opts ...RunnerOption) *fixture {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Run.MaxRetries = 3
	config.Run.FetchWorkers = 2
	config.Run.FetchPacing = "0s"

	f := &fixture{
		watchlist: &fakeWatchlist{wl: &models.Watchlist{Categories: []models.Category{
			{Name: models.IndicesCategory, Tickers: []string{"SPY.US"}},
			{Name: "TECH", Tickers: []string{"AAPL.US", "MSFT.US"}},
		}}},
		quotes: &fakeQuotes{quotes: map[string]*models.RealTimeQuote{
			"SPY.US":  {Ticker: "SPY.US", Close: 640, PrevClose: 636},
			"AAPL.US": {Ticker: "AAPL.US", Close: 150, PrevClose: 148},
			"MSFT.US": {Ticker: "MSFT.US", Close: 300, PrevClose: 305},
		}},
		mail:  &fakeMail{},
		store: &fakeStore{},
	}

	base := []RunnerOption{
		WithClock(fridayClock),
		WithHolidayCheck(func(time.Time) bool { return false }),
		WithSleep(func(d time.Duration) { f.sleeps = append(f.sleeps, d) }),
	}

	f.runner = NewRunner(
		config,
		common.NewSilentLogger(),
		f.watchlist,
		f.quotes,
		&fakeInsights{text: "A quiet session."},
		report.NewService(common.NewSilentLogger(), report.WithClock(fridayClock)),
		f.mail,
		f.store,
		append(base, opts...)...,
	)
	return f
}

var _ interfaces.ProgressionStore = (*fakeStore)(nil)

// --- Tests ---

func TestExecute_HappyPath(t *testing.T) {
	f := newFixture(t)

	err := f.runner.Execute(context.Background(), models.SlotOpen)
	require.NoError(t, err)

	assert.Equal(t, 1, f.mail.calls)
	assert.Equal(t, []string{"Market Open Report — 2026-08-21"}, f.mail.subjects)

	// One progression record per category, indices included
	require.Len(t, f.store.records, 2)
	assert.Equal(t, "2026-08-21", f.store.records[0].Day)
	assert.Equal(t, models.SlotOpen, f.store.records[0].Slot)
	assert.NotEmpty(t, f.store.records[0].RunID)
}

func TestExecute_SkipsWeekend(t *testing.T) {
	saturday := func() time.Time { return time.Date(2026, 8, 22, 9, 40, 0, 0, time.UTC) }
	f := newFixture(t, WithClock(saturday))

	err := f.runner.Execute(context.Background(), models.SlotOpen)
	require.NoError(t, err)

	assert.Zero(t, f.watchlist.calls)
	assert.Zero(t, f.mail.calls)
	assert.Empty(t, f.store.records)
}

func TestExecute_SkipsHoliday(t *testing.T) {
	f := newFixture(t, WithHolidayCheck(func(time.Time) bool { return true }))

	err := f.runner.Execute(context.Background(), models.SlotOpen)
	require.NoError(t, err)

	assert.Zero(t, f.watchlist.calls)
	assert.Zero(t, f.mail.calls)
}

func TestExecute_TotalDataFailureRetriesAndFails(t *testing.T) {
	f := newFixture(t)
	f.quotes.quotes = nil // every fetch fails

	err := f.runner.Execute(context.Background(), models.SlotOpen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, f.watchlist.calls)
	assert.Zero(t, f.mail.calls)
}

func TestExecute_PartialDataProceeds(t *testing.T) {
	f := newFixture(t)
	delete(f.quotes.quotes, "MSFT.US")

	err := f.runner.Execute(context.Background(), models.SlotOpen)
	require.NoError(t, err)
	assert.Equal(t, 1, f.mail.calls)
}

func TestExecute_WatchlistFailureRetried(t *testing.T) {
	f := newFixture(t)
	f.watchlist.err = fmt.Errorf("file missing")

	err := f.runner.Execute(context.Background(), models.SlotOpen)
	require.Error(t, err)
	// An unreadable watchlist means no data at all, which consumes the whole
	// retry budget like any other total-data failure.
	assert.Equal(t, 3, f.watchlist.calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Zero(t, f.mail.calls)
}

func TestExecute_NoTransportFailsLiveRun(t *testing.T) {
	f := newFixture(t)
	f.runner.mail = nil

	err := f.runner.Execute(context.Background(), models.SlotOpen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no mail transport configured")
}

func TestExecute_DeliveryFailureRetried(t *testing.T) {
	f := newFixture(t)
	f.mail.failures = 1

	err := f.runner.Execute(context.Background(), models.SlotOpen)
	require.NoError(t, err)
	assert.Equal(t, 2, f.mail.calls)
	// The retry slept the configured delay
	assert.Contains(t, f.sleeps, f.runner.config.Run.GetRetryDelay())
}

func TestExecute_DeliveryFailureExhaustsRetries(t *testing.T) {
	f := newFixture(t)
	f.mail.failures = 10

	err := f.runner.Execute(context.Background(), models.SlotOpen)
	require.Error(t, err)
	assert.Equal(t, 3, f.mail.calls)
}

func TestExecuteTest_NoGateNoPersistNoDeliver(t *testing.T) {
	saturday := func() time.Time { return time.Date(2026, 8, 22, 9, 40, 0, 0, time.UTC) }
	f := newFixture(t, WithClock(saturday))

	rpt, err := f.runner.ExecuteTest(context.Background(), models.SlotMidday)
	require.NoError(t, err)
	require.NotNil(t, rpt)

	assert.Zero(t, f.mail.calls)
	assert.Empty(t, f.store.records)
	assert.Equal(t, models.SlotMidday, rpt.Slot)
	assert.NotNil(t, rpt.Indices)
	require.Len(t, rpt.Categories, 1)
}

func TestExecute_LaterSlotSeesEarlierProgression(t *testing.T) {
	f := newFixture(t)
	f.store.seeded = map[models.ProgressionKey]float64{
		{Category: "TECH", Slot: models.SlotOpen}: 0.42,
	}

	rpt, err := f.runner.ExecuteTest(context.Background(), models.SlotMidday)
	require.NoError(t, err)

	require.Len(t, rpt.Categories[0].Progression, 1)
	assert.Equal(t, models.SlotOpen, rpt.Categories[0].Progression[0].Slot)
	assert.Equal(t, 0.42, rpt.Categories[0].Progression[0].AveragePercent)
}

func TestExecute_InsightFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.runner.insights = &fakeInsights{err: fmt.Errorf("quota exceeded")}

	rpt, err := f.runner.ExecuteTest(context.Background(), models.SlotOpen)
	require.NoError(t, err)
	assert.Equal(t, insightsUnavailable, rpt.Insights)
}

func TestExecute_NilInsightClient(t *testing.T) {
	f := newFixture(t)
	f.runner.insights = nil

	rpt, err := f.runner.ExecuteTest(context.Background(), models.SlotOpen)
	require.NoError(t, err)
	assert.Equal(t, insightsUnavailable, rpt.Insights)
}

func TestPrintReport(t *testing.T) {
	f := newFixture(t)
	rpt, err := f.runner.ExecuteTest(context.Background(), models.SlotClose)
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintReport(&buf, rpt)

	out := buf.String()
	assert.Contains(t, out, "Market Close Report — 2026-08-21")
	assert.Contains(t, out, "AAPL.US")
	assert.Contains(t, out, "SUMMARY")
	assert.Contains(t, out, "A quiet session.")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&TotalDataError{Tickers: 5}))
	assert.True(t, isRetryable(&TotalDataError{Err: fmt.Errorf("failed to load watchlist")}))
	assert.True(t, isRetryable(&DeliveryError{Err: fmt.Errorf("x")}))
	assert.True(t, isRetryable(fmt.Errorf("wrapped: %w", &DeliveryError{Err: fmt.Errorf("x")})))
	assert.False(t, isRetryable(fmt.Errorf("plain failure")))
	assert.False(t, isRetryable(ErrNonTradingDay))
}
