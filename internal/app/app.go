// Package app wires configuration, providers, routing, resolution and the
// MCP tool surface into one runnable unit.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/stockreport/internal/clients/aktools"
	"github.com/bobmcallan/stockreport/internal/clients/baostock"
	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/interfaces"
	"github.com/bobmcallan/stockreport/internal/services/analysis"
	"github.com/bobmcallan/stockreport/internal/services/financials"
	"github.com/bobmcallan/stockreport/internal/services/router"
	"github.com/bobmcallan/stockreport/internal/storage/surrealdb"
)

// App holds all initialized clients, services and the MCP server.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Baostock    *baostock.Client
	AKTools     *aktools.Client
	Router      *router.Router
	Resolver    *financials.Resolver
	Analysis    *analysis.Service
	Store       interfaces.ResolutionStore
	Searcher    interfaces.StockSearcher
	MCPServer   *server.MCPServer
	StartupTime time.Time

	cron *cron.Cron
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, STOCKREPORT_CONFIG, the binary
// directory, then the development fallback.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("STOCKREPORT_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "stockreport.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/stockreport.toml"
		}
	}
	return configPath
}

// NewApp loads .env and configuration, then builds the App.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	return New(ctx, config, common.NewLoggerFromConfig(config.Logging))
}

// New builds the App from a loaded config. The baostock session is opened
// here when routing uses baostock; a failed login aborts startup.
func New(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()
	names := config.Routing.ProviderNames()

	bs := baostock.NewClient(
		baostock.WithBaseURL(config.Clients.Baostock.BaseURL),
		baostock.WithCredentials(config.Clients.Baostock.UserID, config.Clients.Baostock.Password),
		baostock.WithLogger(logger),
		baostock.WithRateLimit(config.Clients.Baostock.RateLimit),
		baostock.WithTimeout(config.Clients.Baostock.GetTimeout()),
	)
	if slices.Contains(names, common.ProviderBaostock) {
		if err := bs.Login(ctx); err != nil {
			return nil, fmt.Errorf("baostock login: %w", err)
		}
	}

	classifier := router.NewClassifier(logger)
	ak := aktools.NewClient(classifier,
		aktools.WithBaseURL(config.Clients.AKTools.BaseURL),
		aktools.WithLogger(logger),
		aktools.WithRateLimit(config.Clients.AKTools.RateLimit),
		aktools.WithTimeout(config.Clients.AKTools.GetTimeout()),
	)

	table, err := router.TableFromConfig(config.Routing, map[string]interfaces.Provider{
		common.ProviderBaostock: bs,
		common.ProviderAKTools:  ak,
	})
	if err != nil {
		bs.Logout(ctx)
		return nil, fmt.Errorf("failed to build routing table: %w", err)
	}
	rt, err := router.New(table, classifier, logger)
	if err != nil {
		bs.Logout(ctx)
		return nil, err
	}

	resolver := financials.NewResolver(logger,
		financials.WithMaxAttempts(config.Fallback.MaxAttempts),
		financials.WithFloorYears(config.Fallback.FloorYears),
	)

	var store interfaces.ResolutionStore
	if config.Storage.Enabled() {
		mgr, err := surrealdb.NewManager(ctx, logger, &config.Storage)
		if err != nil {
			bs.Logout(ctx)
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		store = mgr
	} else {
		logger.Info().Msg("Storage address not configured - resolutions will not be persisted")
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		Baostock:    bs,
		AKTools:     ak,
		Router:      rt,
		Resolver:    resolver,
		Analysis:    analysis.NewService(rt, resolver, store, logger),
		Store:       store,
		Searcher:    ak,
		StartupTime: startupStart,
	}

	a.MCPServer = server.NewMCPServer(
		common.AppName,
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)
	a.registerTools()

	logger.Info().
		Strs("providers", names).
		Bool("storage", store != nil).
		Int64("startup_ms", time.Since(startupStart).Milliseconds()).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close the provider session, close storage.
func (a *App) Close() {
	a.StopWarmScheduler()
	if a.Baostock != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.Baostock.Logout(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("baostock logout failed")
		}
		cancel()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Storage close failed")
		}
		a.Store = nil
	}
}
