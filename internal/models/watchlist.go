// Package models defines data structures for Daybrief
package models

// IndicesCategory is the reserved category for broad market indices.
// Its tickers participate in breadth and best/worst-ticker tracking, but the
// category itself is excluded from best/worst-category ranking and rendered
// in its own fixed-position table.
const IndicesCategory = "INDICES"

// Watchlist is an ordered set of ticker categories, loaded once per run.
type Watchlist struct {
	Categories []Category `yaml:"watchlist"`
}

// Category is a named, ordered set of ticker symbols.
type Category struct {
	Name    string   `yaml:"category"`
	Tickers []string `yaml:"tickers"`
}

// TickerCount returns the total number of tickers across all categories.
func (w *Watchlist) TickerCount() int {
	n := 0
	for _, c := range w.Categories {
		n += len(c.Tickers)
	}
	return n
}

// AllTickers returns every ticker in watchlist order.
func (w *Watchlist) AllTickers() []string {
	tickers := make([]string, 0, w.TickerCount())
	for _, c := range w.Categories {
		tickers = append(tickers, c.Tickers...)
	}
	return tickers
}
