package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/daybrief/internal/models"
)

// RenderCategoryChart renders a PNG bar chart of category average percent
// changes, one bar per non-indices category, green for advancing and red for
// declining. Returns raw PNG bytes.
func RenderCategoryChart(r *models.MarketReport) ([]byte, error) {
	if len(r.Categories) == 0 {
		return nil, fmt.Errorf("no categories to chart")
	}

	values := make([]chart.Value, len(r.Categories))
	for i, c := range r.Categories {
		color := barColor(c.AveragePercent)
		values[i] = chart.Value{
			Label: c.Category,
			Value: c.AveragePercent,
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
			},
		}
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s — Category Averages", r.Slot.Label()),
		Width:    900,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%+.2f%%", f)
				}
				return ""
			},
		},
		Bars: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// barColor maps a category average to its bar color with the same flat-band
// thresholds used everywhere else.
func barColor(v float64) drawing.Color {
	switch models.Classify(v) {
	case models.DirectionUp:
		return drawing.ColorFromHex("16a34a") // green-600
	case models.DirectionDown:
		return drawing.ColorFromHex("dc2626") // red-600
	}
	return drawing.ColorFromHex("6b7280") // gray-500
}
