// Package watchlist loads the categorized ticker watchlist
package watchlist

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/interfaces"
	"github.com/bobmcallan/daybrief/internal/models"
)

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

// reservedChars are the delimiters used in progression log keys and report
// tables; category names must not contain them.
const reservedChars = "|,"

// Service implements WatchlistService over a YAML file.
type Service struct {
	path   string
	logger *common.Logger
}

// NewService creates a new watchlist service
func NewService(path string, logger *common.Logger) *Service {
	return &Service{
		path:   path,
		logger: logger,
	}
}

// Load reads and validates the watchlist file. The result is read-only for
// the remainder of the run.
func (s *Service) Load(_ context.Context) (*models.Watchlist, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist %s: %w", s.path, err)
	}

	wl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse watchlist %s: %w", s.path, err)
	}

	s.logger.Debug().
		Int("categories", len(wl.Categories)).
		Int("tickers", wl.TickerCount()).
		Msg("Watchlist loaded")

	return wl, nil
}

// Parse parses and validates watchlist YAML.
func Parse(data []byte) (*models.Watchlist, error) {
	var wl models.Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, err
	}

	if len(wl.Categories) == 0 {
		return nil, fmt.Errorf("watchlist has no categories")
	}

	for i := range wl.Categories {
		c := &wl.Categories[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("category %d has no name", i+1)
		}
		if strings.ContainsAny(c.Name, reservedChars) {
			return nil, fmt.Errorf("category '%s' contains a reserved delimiter character", c.Name)
		}

		tickers := make([]string, 0, len(c.Tickers))
		for _, t := range c.Tickers {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, t)
			}
		}
		if len(tickers) == 0 {
			return nil, fmt.Errorf("category '%s' has no tickers", c.Name)
		}
		c.Tickers = tickers
	}

	return &wl, nil
}
