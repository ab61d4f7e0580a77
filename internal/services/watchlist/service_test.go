package watchlist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/models"
)

const sampleYAML = `
watchlist:
  - category: INDICES
    tickers: [SPY.US, QQQ.US, DIA.US]
  - category: TECH
    tickers:
      - AAPL.US
      - MSFT.US
  - category: ENERGY
    tickers: [XOM.US]
`

func TestParse_Valid(t *testing.T) {
	wl, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	require.Len(t, wl.Categories, 3)
	assert.Equal(t, models.IndicesCategory, wl.Categories[0].Name)
	assert.Equal(t, []string{"SPY.US", "QQQ.US", "DIA.US"}, wl.Categories[0].Tickers)
	assert.Equal(t, "TECH", wl.Categories[1].Name)
	assert.Equal(t, 6, wl.TickerCount())
	assert.Equal(t, "XOM.US", wl.AllTickers()[5])
}

func TestParse_OrderPreserved(t *testing.T) {
	wl, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	names := make([]string, len(wl.Categories))
	for i, c := range wl.Categories {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"INDICES", "TECH", "ENERGY"}, names)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ``},
		{"no_categories", `watchlist: []`},
		{"unnamed_category", "watchlist:\n  - tickers: [AAPL.US]"},
		{"reserved_pipe", "watchlist:\n  - category: \"A|B\"\n    tickers: [AAPL.US]"},
		{"reserved_comma", "watchlist:\n  - category: \"A,B\"\n    tickers: [AAPL.US]"},
		{"no_tickers", "watchlist:\n  - category: TECH\n    tickers: []"},
		{"blank_tickers", "watchlist:\n  - category: TECH\n    tickers: [\"  \"]"},
		{"not_yaml", `{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestService_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0644))

	svc := NewService(path, common.NewSilentLogger())
	wl, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, len(wl.Categories))
}

func TestService_Load_MissingFile(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "nope.yaml"), common.NewSilentLogger())
	_, err := svc.Load(context.Background())
	assert.Error(t, err)
}
