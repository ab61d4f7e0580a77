package run

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bobmcallan/daybrief/internal/models"
)

// PrintReport renders a test-mode report as terminal tables, one per
// category, with the summary underneath.
func PrintReport(w io.Writer, r *models.MarketReport) {
	fmt.Fprintln(w, text.Bold.Sprintf("%s Report — %s", r.Slot.Label(), r.Day))
	fmt.Fprintln(w)

	if r.Indices != nil {
		printCategoryTable(w, r.Indices)
	}
	for i := range r.Categories {
		printCategoryTable(w, &r.Categories[i])
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"SUMMARY", ""})
	if r.Summary.HasTickerExtremes {
		tw.AppendRow(table.Row{"Best ticker", fmt.Sprintf("%s %s", r.Summary.BestTicker, colorPct(r.Summary.BestTickerPct))})
		tw.AppendRow(table.Row{"Worst ticker", fmt.Sprintf("%s %s", r.Summary.WorstTicker, colorPct(r.Summary.WorstTickerPct))})
	} else {
		tw.AppendRow(table.Row{"Best ticker", "N/A"})
		tw.AppendRow(table.Row{"Worst ticker", "N/A"})
	}
	if r.Summary.HasCategoryExtremes {
		tw.AppendRow(table.Row{"Best category", fmt.Sprintf("%s %s", r.Summary.BestCategory, colorPct(r.Summary.BestCategoryPct))})
		tw.AppendRow(table.Row{"Worst category", fmt.Sprintf("%s %s", r.Summary.WorstCategory, colorPct(r.Summary.WorstCategoryPct))})
	} else {
		tw.AppendRow(table.Row{"Best category", "N/A"})
		tw.AppendRow(table.Row{"Worst category", "N/A"})
	}
	tw.AppendRow(table.Row{"Breadth", fmt.Sprintf("%d%% up / %d%% down / %d%% flat",
		r.Summary.BreadthUpPct, r.Summary.BreadthDownPct, r.Summary.BreadthFlatPct)})
	tw.Render()

	if r.Insights != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, text.Bold.Sprint("INSIGHTS"))
		fmt.Fprintln(w, r.Insights)
	}
}

func printCategoryTable(w io.Writer, c *models.ReportCategory) {
	header := fmt.Sprintf("%s  avg %s", strings.ToUpper(c.Category), colorPct(c.AveragePercent))
	for _, line := range c.Progression {
		header += fmt.Sprintf("  [%s %s]", line.Slot, colorPct(line.AveragePercent))
	}
	fmt.Fprintln(w, text.Bold.Sprint(header))

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"TICKER", "CHG%", "PRICE"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignRight},
	})
	for _, q := range c.Tickers {
		tw.AppendRow(table.Row{q.Ticker, colorPct(q.PercentChange), fmt.Sprintf("%.2f", q.Price)})
	}
	tw.Render()

	if len(c.Missing) > 0 {
		fmt.Fprintf(w, "no data: %s\n", strings.Join(c.Missing, ", "))
	}
	fmt.Fprintln(w)
}

// colorPct renders a signed percent, green for advancing and red for
// declining.
func colorPct(v float64) string {
	s := fmt.Sprintf("%+.2f%%", v)
	switch models.Classify(v) {
	case models.DirectionUp:
		return text.Colors{text.FgGreen}.Sprint(s)
	case models.DirectionDown:
		return text.Colors{text.FgRed}.Sprint(s)
	}
	return s
}
