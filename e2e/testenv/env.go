// Package testenv provides the browser test environment.
//
// This package manages the complete E2E test environment including:
//   - The fixture site, served in-process (or an external BASE_URL)
//   - A lazily launched Chromium shared by all scenarios
//   - An optional PostgreSQL results store (external or testcontainers)
//
// Example usage:
//
//	func TestMain(m *testing.M) {
//	    env, err := testenv.Setup(context.Background(), testenv.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    code := m.Run()
//	    env.Teardown()
//	    os.Exit(code)
//	}
package testenv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gti/practice-automation-e2e/e2e/helpers"
	"github.com/gti/practice-automation-e2e/e2e/scenario"
	"github.com/gti/practice-automation-e2e/internal/config"
	"github.com/gti/practice-automation-e2e/internal/report"
	"go.uber.org/zap"
)

// TestEnv holds all resources for browser testing.
//
// Scenarios never share a page: each one gets a fresh incognito page from
// NewPage, so TestEnv is safe for use across parallel tests.
type TestEnv struct {
	// Site is the in-process fixture site (nil when BaseURL is external).
	Site *Site

	// SiteURL is the base URL every page navigates relative to.
	SiteURL string

	// HTTP fetches site pages without a browser.
	HTTP *helpers.SiteClient

	// Results is the results store (nil when result persistence is off).
	Results *report.Store

	// Postgres is the ephemeral results container, when one was started.
	Postgres *PostgresContainer

	// Config holds the environment configuration.
	Config EnvConfig

	logger *zap.Logger

	// mu protects browser lazy initialization.
	mu sync.Mutex

	// browser is lazily initialized.
	browser *helpers.Browser

	// cleanupFuncs holds cleanup functions in reverse order.
	cleanupFuncs []func()
}

// EnvConfig holds configuration for the test environment.
type EnvConfig struct {
	// BaseURL is an external site to test. When empty the fixture site is
	// started in-process.
	BaseURL string

	// Site holds fixture site configuration.
	Site SiteConfig

	// Headless, BrowserBin and DefaultTimeout configure the browser.
	Headless       bool
	BrowserBin     string
	DefaultTimeout time.Duration

	// ScenarioTimeout, Parallelism and SoftAssertions configure runners.
	ScenarioTimeout time.Duration
	Parallelism     int
	SoftAssertions  bool

	// ResultsDatabaseURL is an optional database for results. If set,
	// testcontainers will be skipped.
	ResultsDatabaseURL string

	// ResultsContainer starts an ephemeral PostgreSQL for results when no
	// ResultsDatabaseURL is given.
	ResultsContainer bool

	// Postgres holds PostgreSQL container configuration.
	Postgres PostgresConfig

	Logger *zap.Logger
}

// DefaultConfig returns the default test environment configuration.
func DefaultConfig() EnvConfig {
	return EnvConfig{
		Site:            DefaultSiteConfig(),
		Headless:        true,
		DefaultTimeout:  5 * time.Second,
		ScenarioTimeout: 60 * time.Second,
		Parallelism:     4,
		Postgres:        DefaultPostgresConfig(),
		Logger:          zap.NewNop(),
	}
}

// FromConfig maps application configuration onto an environment config.
func FromConfig(cfg *config.Config, logger *zap.Logger) EnvConfig {
	env := DefaultConfig()
	env.BaseURL = cfg.BaseURL
	env.Site.LiftoffDelay = cfg.LiftoffDelay
	env.Site.Logger = logger
	env.Headless = cfg.Headless
	env.BrowserBin = cfg.BrowserBin
	env.DefaultTimeout = cfg.DefaultTimeout
	env.ScenarioTimeout = cfg.ScenarioTimeout
	env.Parallelism = cfg.Parallelism
	env.SoftAssertions = cfg.SoftAssertions
	env.ResultsDatabaseURL = cfg.ResultsDatabaseURL
	env.Logger = logger
	return env
}

// Setup initializes the test environment.
//
// This function:
//  1. Starts the fixture site (or uses the external BaseURL)
//  2. Waits until the site answers over HTTP
//  3. Connects the results store, if configured
//
// The browser is started on first use. Always call Teardown() when done:
//
//	env, err := testenv.Setup(ctx, testenv.DefaultConfig())
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer env.Teardown()
func Setup(ctx context.Context, cfg EnvConfig) (*TestEnv, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	env := &TestEnv{
		Config:       cfg,
		logger:       cfg.Logger.Named("testenv"),
		cleanupFuncs: make([]func(), 0),
	}

	if cfg.BaseURL == "" {
		site, cleanup, err := StartSite(ctx, cfg.Site)
		if err != nil {
			return nil, fmt.Errorf("failed to start fixture site: %w", err)
		}
		env.addCleanup(cleanup)
		env.Site = site
		env.SiteURL = site.URL
	} else {
		env.SiteURL = cfg.BaseURL
	}

	env.HTTP = helpers.NewSiteClient(env.SiteURL)
	readyCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := env.HTTP.WaitReady(readyCtx, "/", 250*time.Millisecond); err != nil {
		env.Teardown()
		return nil, err
	}

	switch {
	case cfg.ResultsDatabaseURL != "":
		store, closePool, err := report.Connect(ctx, cfg.ResultsDatabaseURL, cfg.Logger)
		if err != nil {
			env.Teardown()
			return nil, fmt.Errorf("failed to connect to results database: %w", err)
		}
		env.addCleanup(closePool)
		env.Results = store
	case cfg.ResultsContainer:
		pg, cleanup, err := StartPostgres(ctx, cfg.Postgres, cfg.Logger)
		if err != nil {
			env.Teardown()
			return nil, fmt.Errorf("failed to start postgres: %w", err)
		}
		env.addCleanup(cleanup)
		env.Postgres = pg
		env.Results = pg.Store
	}

	env.logger.Info("environment ready",
		zap.String("site_url", env.SiteURL),
		zap.Bool("fixture", env.Site != nil),
		zap.Bool("results_store", env.Results != nil),
	)
	return env, nil
}

// Teardown releases all test resources in reverse order.
//
// This function:
//  1. Closes the browser (if started)
//  2. Closes the results store and terminates its container
//  3. Stops the fixture site
func (env *TestEnv) Teardown() {
	env.mu.Lock()
	if env.browser != nil {
		if err := env.browser.Close(); err != nil {
			env.logger.Warn("failed to close browser", zap.Error(err))
		}
		env.browser = nil
	}
	env.mu.Unlock()

	for i := len(env.cleanupFuncs) - 1; i >= 0; i-- {
		env.cleanupFuncs[i]()
	}
	env.cleanupFuncs = nil
}

// Browser returns the browser helper, initializing it lazily.
//
// The browser is shared across scenarios and closed during Teardown.
func (env *TestEnv) Browser() (*helpers.Browser, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	if env.browser != nil {
		return env.browser, nil
	}

	opts := helpers.DefaultBrowserOptions(env.SiteURL)
	opts.Headless = env.Config.Headless
	opts.Bin = env.Config.BrowserBin
	opts.Logger = env.Config.Logger
	if env.Config.DefaultTimeout > 0 {
		opts.Timeout = env.Config.DefaultTimeout
	}

	browser, err := helpers.NewBrowser(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	env.browser = browser
	return browser, nil
}

// NewPage opens a fresh isolated page on the shared browser.
func (env *TestEnv) NewPage(ctx context.Context) (*helpers.Page, error) {
	browser, err := env.Browser()
	if err != nil {
		return nil, err
	}
	return browser.NewPage(ctx)
}

// Reporter returns the log reporter, fanned out to the results store when
// one is connected.
func (env *TestEnv) Reporter() scenario.Reporter {
	logRep := report.NewLogReporter(env.Config.Logger)
	if env.Results == nil {
		return logRep
	}
	return report.Multi{logRep, env.Results}
}

// NewRunner returns a scenario runner whose scenarios each get a new page.
func (env *TestEnv) NewRunner() *scenario.Runner[*helpers.Page] {
	return scenario.NewRunner(env.NewPage, scenario.Options{
		Parallelism:    env.Config.Parallelism,
		Timeout:        env.Config.ScenarioTimeout,
		SoftAssertions: env.Config.SoftAssertions,
		Reporter:       env.Reporter(),
		Logger:         env.Config.Logger,
	})
}

// addCleanup adds a cleanup function to be called during Teardown.
func (env *TestEnv) addCleanup(fn func()) {
	env.cleanupFuncs = append(env.cleanupFuncs, fn)
}
