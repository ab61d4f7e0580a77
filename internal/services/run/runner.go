// Package run orchestrates a single report run end to end: gate, fetch,
// aggregate, persist, assemble, deliver.
package run

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/daybrief/internal/calendar"
	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/interfaces"
	"github.com/bobmcallan/daybrief/internal/models"
	"github.com/bobmcallan/daybrief/internal/services/market"
	"github.com/bobmcallan/daybrief/internal/services/report"
)

// insightsUnavailable is the placeholder used when commentary generation is
// disabled or fails. The run still succeeds.
const insightsUnavailable = "Automated commentary is unavailable for this report."

// Runner executes report runs. Each of the day's three runs is independent:
// state is shared only through the progression store.
type Runner struct {
	config    *common.Config
	logger    *common.Logger
	watchlist interfaces.WatchlistService
	quotes    interfaces.QuoteClient
	insights  interfaces.InsightClient // nil disables commentary
	reports   interfaces.ReportService
	mail      interfaces.MailService // nil disables delivery
	store     interfaces.ProgressionStore

	now       func() time.Time
	isHoliday func(time.Time) bool
	sleep     func(time.Duration)
}

// RunnerOption configures the runner
type RunnerOption func(*Runner)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// WithHolidayCheck overrides the market holiday predicate, for tests.
func WithHolidayCheck(fn func(time.Time) bool) RunnerOption {
	return func(r *Runner) {
		r.isHoliday = fn
	}
}

// WithSleep overrides the retry/pacing sleep, for tests.
func WithSleep(fn func(time.Duration)) RunnerOption {
	return func(r *Runner) {
		r.sleep = fn
	}
}

// NewRunner creates a report runner.
func NewRunner(
	config *common.Config,
	logger *common.Logger,
	watchlistSvc interfaces.WatchlistService,
	quoteClient interfaces.QuoteClient,
	insightClient interfaces.InsightClient,
	reportSvc interfaces.ReportService,
	mailSvc interfaces.MailService,
	store interfaces.ProgressionStore,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		config:    config,
		logger:    logger,
		watchlist: watchlistSvc,
		quotes:    quoteClient,
		insights:  insightClient,
		reports:   reportSvc,
		mail:      mailSvc,
		store:     store,
		now:       time.Now,
		isHoliday: calendar.IsHoliday,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs one gated report run for the slot, retrying the whole run on
// retryable failures up to the configured attempt count. A non-trading day
// is a successful no-op.
func (r *Runner) Execute(ctx context.Context, slot models.Slot) error {
	if err := r.gate(); err != nil {
		r.logger.Info().Str("slot", string(slot)).Msg("Non-trading day, skipping run")
		return nil
	}

	attempts := r.config.Run.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		_, err := r.runOnce(ctx, slot, true)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			r.logger.Error().Err(err).Str("slot", string(slot)).Msg("Run failed, not retryable")
			return err
		}

		r.logger.Warn().
			Err(err).
			Str("slot", string(slot)).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("Run failed, will retry")

		if attempt < attempts {
			r.sleep(r.config.Run.GetRetryDelay())
		}
	}

	return fmt.Errorf("run for slot %s failed after %d attempts: %w", slot, attempts, lastErr)
}

// ExecuteTest runs one ungated run without persisting or delivering, and
// returns the assembled report for local inspection.
func (r *Runner) ExecuteTest(ctx context.Context, slot models.Slot) (*models.MarketReport, error) {
	return r.runOnce(ctx, slot, false)
}

// gate rejects weekends and market holidays.
func (r *Runner) gate() error {
	today := r.now()
	if wd := today.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return ErrNonTradingDay
	}
	if r.isHoliday(today) {
		return ErrNonTradingDay
	}
	return nil
}

// runOnce executes a single attempt. When live is false the gate, the
// progression append, and delivery are all skipped.
func (r *Runner) runOnce(ctx context.Context, slot models.Slot, live bool) (*models.MarketReport, error) {
	runID := uuid.NewString()
	day := r.now().Format("2006-01-02")
	logger := &common.Logger{Logger: r.logger.With().Str("run_id", runID).Str("slot", string(slot)).Logger()}

	wl, err := r.watchlist.Load(ctx)
	if err != nil {
		return nil, &TotalDataError{Err: fmt.Errorf("failed to load watchlist: %w", err)}
	}

	quotes := r.fetchQuotes(ctx, wl.AllTickers())
	if len(quotes) == 0 {
		return nil, &TotalDataError{Tickers: wl.TickerCount()}
	}
	logger.Info().Int("fetched", len(quotes)).Int("watchlist", wl.TickerCount()).Msg("Quotes fetched")

	aggs, summary := market.Aggregate(wl, quotes)

	if live {
		r.persist(ctx, day, slot, runID, aggs, logger)
	}

	progression, err := r.store.LoadDay(ctx, day)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load day progression, report omits earlier slots")
		progression = nil
	}

	rpt := r.reports.Assemble(slot, aggs, summary, progression)
	rpt.RunID = runID
	rpt.Insights = r.generateInsights(ctx, rpt, logger)

	if live {
		if err := r.deliver(ctx, rpt, logger); err != nil {
			return nil, &DeliveryError{Err: err}
		}
	}

	return rpt, nil
}

// fetchQuotes fetches all tickers with a bounded worker pool. Individual
// failures are logged and dropped; the aggregation layer treats the ticker
// as missing.
func (r *Runner) fetchQuotes(ctx context.Context, tickers []string) map[string]*models.Quote {
	if r.quotes == nil {
		r.logger.Error().Msg("No quote client configured")
		return nil
	}

	workers := r.config.Run.FetchWorkers
	if workers < 1 {
		workers = 1
	}
	pacing := r.config.Run.GetFetchPacing()

	jobs := make(chan string)
	var mu sync.Mutex
	quotes := make(map[string]*models.Quote, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range jobs {
				rt, err := r.quotes.GetRealTimeQuote(ctx, ticker)
				if err != nil {
					r.logger.Warn().Err(err).Str("ticker", ticker).Msg("Quote fetch failed")
				} else {
					q := models.NewQuote(rt)
					mu.Lock()
					quotes[ticker] = &q
					mu.Unlock()
				}
				if pacing > 0 {
					r.sleep(pacing)
				}
			}
		}()
	}

	for _, ticker := range tickers {
		select {
		case jobs <- ticker:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return quotes
		}
	}
	close(jobs)
	wg.Wait()

	return quotes
}

// persist appends one progression record per category. Append failures are
// logged and swallowed: the progression log is display-only context and must
// never block delivery.
func (r *Runner) persist(ctx context.Context, day string, slot models.Slot, runID string, aggs []models.CategoryAggregate, logger *common.Logger) {
	recordedAt := r.now()
	for _, agg := range aggs {
		rec := &models.ProgressionRecord{
			Day:            day,
			Category:       agg.Category,
			Slot:           slot,
			AveragePercent: agg.AveragePercent,
			RunID:          runID,
			RecordedAt:     recordedAt,
		}
		if err := r.store.AppendProgression(ctx, rec); err != nil {
			logger.Warn().Err(err).Str("category", agg.Category).Msg("Failed to append progression record")
		}
	}
}

// generateInsights produces commentary, degrading to a placeholder when the
// client is absent or fails.
func (r *Runner) generateInsights(ctx context.Context, rpt *models.MarketReport, logger *common.Logger) string {
	if r.insights == nil {
		return insightsUnavailable
	}

	text, err := r.insights.GenerateInsights(ctx, report.FormatDataset(rpt), rpt.Slot)
	if err != nil {
		logger.Warn().Err(err).Msg("Insight generation failed, using placeholder")
		return insightsUnavailable
	}
	return text
}

// deliver renders and sends the report, attaching the category chart when one
// can be drawn.
func (r *Runner) deliver(ctx context.Context, rpt *models.MarketReport, logger *common.Logger) error {
	if r.mail == nil {
		return fmt.Errorf("no mail transport configured")
	}

	var attachments []models.Attachment
	if png, err := report.RenderCategoryChart(rpt); err != nil {
		logger.Warn().Err(err).Msg("Chart render failed, delivering without attachment")
	} else {
		attachments = append(attachments, models.Attachment{
			Filename:    fmt.Sprintf("daybrief-%s-%s.png", rpt.Day, rpt.Slot),
			ContentType: "image/png",
			Content:     png,
		})
	}

	return r.mail.Send(ctx, report.Subject(rpt), report.FormatHTML(rpt), report.FormatText(rpt), attachments)
}
