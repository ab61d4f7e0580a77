package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/daybrief/internal/models"
)

// Scheduler fires the three daily report runs on their configured cron
// schedules. Each fire is an independent gated run; the holiday gate inside
// the runner decides whether anything actually happens.
type Scheduler struct {
	app  *App
	cron *cron.Cron
}

// NewScheduler builds a scheduler from the app's schedule config.
func NewScheduler(a *App) (*Scheduler, error) {
	c := cron.New()

	slots := []struct {
		slot models.Slot
		expr string
	}{
		{models.SlotOpen, a.Config.Schedule.Open},
		{models.SlotMidday, a.Config.Schedule.Midday},
		{models.SlotClose, a.Config.Schedule.Close},
	}

	for _, s := range slots {
		slot := s.slot
		_, err := c.AddFunc(s.expr, func() {
			if err := a.Runner.Execute(context.Background(), slot); err != nil {
				a.Logger.Error().Err(err).Str("slot", string(slot)).Msg("Scheduled run failed")
			}
		})
		if err != nil {
			return nil, fmt.Errorf("invalid schedule for %s slot (%q): %w", slot, s.expr, err)
		}
		a.Logger.Info().Str("slot", string(slot)).Str("schedule", s.expr).Msg("Report run scheduled")
	}

	return &Scheduler{app: a, cron: c}, nil
}

// Start begins firing scheduled runs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
