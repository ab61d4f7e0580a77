// Package app wires configuration, clients, storage, and services into a
// runnable application core shared by every CLI command.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/daybrief/internal/clients/eodhd"
	"github.com/bobmcallan/daybrief/internal/clients/gemini"
	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/interfaces"
	"github.com/bobmcallan/daybrief/internal/services/mailer"
	"github.com/bobmcallan/daybrief/internal/services/report"
	"github.com/bobmcallan/daybrief/internal/services/run"
	"github.com/bobmcallan/daybrief/internal/services/watchlist"
	"github.com/bobmcallan/daybrief/internal/storage/badger"
)

// App holds all initialized services and clients.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Runner      *run.Runner
	StartupTime time.Time

	store interfaces.ProgressionStore
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and the runner.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupTime := time.Now()

	binDir := getBinaryDir()

	// Check provided path, DAYBRIEF_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("DAYBRIEF_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "daybrief.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/daybrief.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths to the binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		if _, err := os.Stat(config.Storage.Path); os.IsNotExist(err) {
			config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
		}
	}

	logger := common.NewLogger(config.Logging.Level)

	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	progressionStore := badger.NewProgressionStorage(store, logger)

	// Resolve API keys
	eodhdKey, err := common.ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - quote fetching will fail")
	}

	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - reports will omit commentary")
	}

	// Initialize API clients
	var quoteClient interfaces.QuoteClient
	if eodhdKey != "" {
		quoteClient = eodhd.NewClient(eodhdKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		)
	}

	var insightClient interfaces.InsightClient
	if geminiKey != "" {
		client, err := gemini.NewClient(context.Background(), geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			insightClient = client
		}
	}

	var mailService interfaces.MailService
	if config.Mail.IsConfigured() {
		mailService = mailer.NewService(config.Mail, logger)
	} else {
		logger.Warn().Msg("Mail not configured - reports will not be delivered")
	}

	watchlistService := watchlist.NewService(config.Watchlist.Path, logger)
	reportService := report.NewService(logger)

	runner := run.NewRunner(
		config,
		logger,
		watchlistService,
		quoteClient,
		insightClient,
		reportService,
		mailService,
		progressionStore,
	)

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Dur("startup", time.Since(startupTime)).
		Msg("Daybrief initialized")

	return &App{
		Config:      config,
		Logger:      logger,
		Runner:      runner,
		StartupTime: startupTime,
		store:       progressionStore,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close progression store")
		}
	}
}
