package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/bobmcallan/daybrief/internal/models"
)

// Subject builds the delivery subject line for a report.
func Subject(r *models.MarketReport) string {
	return fmt.Sprintf("%s Report — %s", r.Slot.Label(), r.Day)
}

// formatPct renders a percent change with an explicit sign, two decimals.
func formatPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// pctColor maps a percent change to the display color used in HTML output.
func pctColor(v float64) string {
	switch models.Classify(v) {
	case models.DirectionUp:
		return "#16a34a" // green-600
	case models.DirectionDown:
		return "#dc2626" // red-600
	}
	return "#6b7280" // gray-500
}

// FormatText renders the plain-text alternative body.
func FormatText(r *models.MarketReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Report — %s\n", r.Slot.Label(), r.Day)
	fmt.Fprintf(&b, "Generated %s\n\n", r.GeneratedAt.Format("15:04 MST"))

	if r.Indices != nil {
		writeTextCategory(&b, r.Indices)
	}
	for i := range r.Categories {
		writeTextCategory(&b, &r.Categories[i])
	}

	b.WriteString("Summary\n")
	if r.Summary.HasTickerExtremes {
		fmt.Fprintf(&b, "  Best ticker:    %s %s\n", r.Summary.BestTicker, formatPct(r.Summary.BestTickerPct))
		fmt.Fprintf(&b, "  Worst ticker:   %s %s\n", r.Summary.WorstTicker, formatPct(r.Summary.WorstTickerPct))
	} else {
		b.WriteString("  Best ticker:    N/A\n")
		b.WriteString("  Worst ticker:   N/A\n")
	}
	if r.Summary.HasCategoryExtremes {
		fmt.Fprintf(&b, "  Best category:  %s %s\n", r.Summary.BestCategory, formatPct(r.Summary.BestCategoryPct))
		fmt.Fprintf(&b, "  Worst category: %s %s\n", r.Summary.WorstCategory, formatPct(r.Summary.WorstCategoryPct))
	} else {
		b.WriteString("  Best category:  N/A\n")
		b.WriteString("  Worst category: N/A\n")
	}
	fmt.Fprintf(&b, "  Breadth: %d%% up / %d%% down / %d%% flat (%d advancing, %d declining, %d unchanged)\n",
		r.Summary.BreadthUpPct, r.Summary.BreadthDownPct, r.Summary.BreadthFlatPct,
		r.Summary.Advancers, r.Summary.Decliners, r.Summary.Unchanged)

	if r.Insights != "" {
		b.WriteString("\nInsights\n")
		b.WriteString(r.Insights)
		b.WriteString("\n")
	}

	return b.String()
}

func writeTextCategory(b *strings.Builder, c *models.ReportCategory) {
	fmt.Fprintf(b, "%s  avg %s", c.Category, formatPct(c.AveragePercent))
	for _, line := range c.Progression {
		fmt.Fprintf(b, "  [%s %s]", line.Slot, formatPct(line.AveragePercent))
	}
	b.WriteString("\n")
	for _, q := range c.Tickers {
		fmt.Fprintf(b, "  %-12s %8s  %.2f\n", q.Ticker, formatPct(q.PercentChange), q.Price)
	}
	if len(c.Missing) > 0 {
		fmt.Fprintf(b, "  (no data: %s)\n", strings.Join(c.Missing, ", "))
	}
	b.WriteString("\n")
}

// FormatHTML renders the HTML body with inline styles for email clients.
func FormatHTML(r *models.MarketReport) string {
	var b strings.Builder

	b.WriteString(`<html><body style="font-family: -apple-system, Segoe UI, Arial, sans-serif; color: #111827; max-width: 720px; margin: 0 auto;">`)
	fmt.Fprintf(&b, `<h2 style="margin-bottom: 2px;">%s Report — %s</h2>`, html.EscapeString(r.Slot.Label()), r.Day)
	fmt.Fprintf(&b, `<p style="color: #6b7280; margin-top: 0;">Generated %s</p>`, r.GeneratedAt.Format("15:04 MST"))

	if r.Indices != nil {
		writeHTMLCategory(&b, r.Indices)
	}
	for i := range r.Categories {
		writeHTMLCategory(&b, &r.Categories[i])
	}

	b.WriteString(`<h3>Summary</h3><table style="border-collapse: collapse;">`)
	writeSummaryRow(&b, "Best ticker", r.Summary.BestTicker, r.Summary.BestTickerPct, r.Summary.HasTickerExtremes)
	writeSummaryRow(&b, "Worst ticker", r.Summary.WorstTicker, r.Summary.WorstTickerPct, r.Summary.HasTickerExtremes)
	writeSummaryRow(&b, "Best category", r.Summary.BestCategory, r.Summary.BestCategoryPct, r.Summary.HasCategoryExtremes)
	writeSummaryRow(&b, "Worst category", r.Summary.WorstCategory, r.Summary.WorstCategoryPct, r.Summary.HasCategoryExtremes)
	fmt.Fprintf(&b, `<tr><td style="padding: 2px 12px 2px 0; color: #6b7280;">Breadth</td><td style="padding: 2px 0;">%d%% up / %d%% down / %d%% flat</td></tr>`,
		r.Summary.BreadthUpPct, r.Summary.BreadthDownPct, r.Summary.BreadthFlatPct)
	b.WriteString(`</table>`)

	if r.Insights != "" {
		b.WriteString(`<h3>Insights</h3>`)
		for _, para := range strings.Split(r.Insights, "\n\n") {
			if para = strings.TrimSpace(para); para != "" {
				fmt.Fprintf(&b, `<p>%s</p>`, html.EscapeString(para))
			}
		}
	}

	b.WriteString(`</body></html>`)
	return b.String()
}

func writeHTMLCategory(b *strings.Builder, c *models.ReportCategory) {
	fmt.Fprintf(b, `<h3 style="margin-bottom: 4px;">%s <span style="color: %s; font-weight: normal;">%s</span></h3>`,
		html.EscapeString(c.Category), pctColor(c.AveragePercent), formatPct(c.AveragePercent))

	if len(c.Progression) > 0 {
		parts := make([]string, len(c.Progression))
		for i, line := range c.Progression {
			parts[i] = fmt.Sprintf(`%s <span style="color: %s;">%s</span>`,
				html.EscapeString(string(line.Slot)), pctColor(line.AveragePercent), formatPct(line.AveragePercent))
		}
		fmt.Fprintf(b, `<p style="color: #6b7280; margin: 0 0 6px 0; font-size: 13px;">earlier today: %s</p>`, strings.Join(parts, " &middot; "))
	}

	b.WriteString(`<table style="border-collapse: collapse; margin-bottom: 12px;">`)
	for _, q := range c.Tickers {
		fmt.Fprintf(b, `<tr><td style="padding: 2px 16px 2px 0;">%s</td><td style="padding: 2px 16px 2px 0; text-align: right; color: %s;">%s</td><td style="padding: 2px 0; text-align: right; color: #6b7280;">%.2f</td></tr>`,
			html.EscapeString(q.Ticker), pctColor(q.PercentChange), formatPct(q.PercentChange), q.Price)
	}
	b.WriteString(`</table>`)

	if len(c.Missing) > 0 {
		fmt.Fprintf(b, `<p style="color: #9ca3af; font-size: 12px; margin-top: -8px;">no data: %s</p>`, html.EscapeString(strings.Join(c.Missing, ", ")))
	}
}

func writeSummaryRow(b *strings.Builder, label, name string, pct float64, ok bool) {
	value := "N/A"
	if ok {
		value = fmt.Sprintf(`%s <span style="color: %s;">%s</span>`, html.EscapeString(name), pctColor(pct), formatPct(pct))
	}
	fmt.Fprintf(b, `<tr><td style="padding: 2px 12px 2px 0; color: #6b7280;">%s</td><td style="padding: 2px 0;">%s</td></tr>`, label, value)
}

// FormatDataset renders the plain numeric dataset handed to the insight
// generator. No markup, no commentary, just the figures.
func FormatDataset(r *models.MarketReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "slot: %s\nday: %s\n\n", r.Slot, r.Day)

	if r.Indices != nil {
		writeDatasetCategory(&b, r.Indices)
	}
	for i := range r.Categories {
		writeDatasetCategory(&b, &r.Categories[i])
	}

	if r.Summary.HasTickerExtremes {
		fmt.Fprintf(&b, "best ticker: %s %s\n", r.Summary.BestTicker, formatPct(r.Summary.BestTickerPct))
		fmt.Fprintf(&b, "worst ticker: %s %s\n", r.Summary.WorstTicker, formatPct(r.Summary.WorstTickerPct))
	}
	if r.Summary.HasCategoryExtremes {
		fmt.Fprintf(&b, "best category: %s %s\n", r.Summary.BestCategory, formatPct(r.Summary.BestCategoryPct))
		fmt.Fprintf(&b, "worst category: %s %s\n", r.Summary.WorstCategory, formatPct(r.Summary.WorstCategoryPct))
	}
	fmt.Fprintf(&b, "breadth: %d%% up, %d%% down, %d%% flat\n",
		r.Summary.BreadthUpPct, r.Summary.BreadthDownPct, r.Summary.BreadthFlatPct)

	return b.String()
}

func writeDatasetCategory(b *strings.Builder, c *models.ReportCategory) {
	fmt.Fprintf(b, "%s: avg %s", c.Category, formatPct(c.AveragePercent))
	for _, line := range c.Progression {
		fmt.Fprintf(b, ", %s %s", line.Slot, formatPct(line.AveragePercent))
	}
	b.WriteString("\n")
	for _, q := range c.Tickers {
		fmt.Fprintf(b, "  %s %s\n", q.Ticker, formatPct(q.PercentChange))
	}
}
