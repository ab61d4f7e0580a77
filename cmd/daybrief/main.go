// Daybrief generates and delivers three time-gated market reports per
// trading day from a categorized ticker watchlist.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/daybrief/internal/app"
	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/models"
	"github.com/bobmcallan/daybrief/internal/services/run"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "daybrief",
		Short:         "Daily market report engine",
		Long:          "Daybrief fetches watchlist quotes, aggregates per-category moves, and delivers open, midday, and close reports by email.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default daybrief.toml)")

	for _, slot := range []models.Slot{models.SlotOpen, models.SlotMidday, models.SlotClose} {
		root.AddCommand(newSlotCommand(slot))
	}
	root.AddCommand(newTestCommand())
	root.AddCommand(newServeCommand())
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newSlotCommand runs one gated report run for a slot and exits.
func newSlotCommand(slot models.Slot) *cobra.Command {
	return &cobra.Command{
		Use:   string(slot),
		Short: fmt.Sprintf("Run the %s report", slot.Label()),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.NewApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Runner.Execute(cmd.Context(), slot)
		},
	}
}

// newTestCommand runs an ungated report run and prints the result to the
// terminal without persisting or delivering anything.
func newTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test [open|midday|close]",
		Short: "Run a report without gating, persisting, or delivering",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := resolveTestSlot(args)
			if err != nil {
				return err
			}

			a, err := app.NewApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Runner.ExecuteTest(cmd.Context(), slot)
			if err != nil {
				return err
			}
			run.PrintReport(os.Stdout, report)
			return nil
		},
	}
}

// resolveTestSlot picks the slot for a test run, defaulting to the open
// report when none is given.
func resolveTestSlot(args []string) (models.Slot, error) {
	if len(args) == 0 {
		return models.SlotOpen, nil
	}
	return models.ParseSlot(args[0])
}

// newServeCommand keeps the process alive firing scheduled runs.
func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run continuously, firing each report on its schedule",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := app.NewApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			scheduler, err := app.NewScheduler(a)
			if err != nil {
				return err
			}
			scheduler.Start()
			a.Logger.Info().Msg("Scheduler started")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			a.Logger.Info().Msg("Shutdown signal received")
			scheduler.Stop()
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(common.GetFullVersion())
		},
	}
}
