package testenv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gti/practice-automation-e2e/internal/config"
	"github.com/gti/practice-automation-e2e/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStartSite(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultSiteConfig()
	cfg.LiftoffDelay = time.Second

	site, cleanup, err := StartSite(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.NotZero(t, site.Port)

	resp, err := http.Get(site.URL + "/javascript-delays/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSetupWithFixtureSite(t *testing.T) {
	env, err := Setup(context.Background(), DefaultConfig())
	require.NoError(t, err)
	defer env.Teardown()

	require.NotNil(t, env.Site)
	assert.Equal(t, env.Site.URL, env.SiteURL)
	assert.Nil(t, env.Results)

	resp, err := env.HTTP.Get(context.Background(), "/popups/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, isLog := env.Reporter().(*report.LogReporter)
	assert.True(t, isLog, "without a store only the log reporter is used")
}

func TestSetupWithExternalSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL

	env, err := Setup(context.Background(), cfg)
	require.NoError(t, err)
	defer env.Teardown()

	assert.Nil(t, env.Site)
	assert.Equal(t, srv.URL, env.SiteURL)
	assert.NotNil(t, env.NewRunner())
}

func TestSetupFailsWhenSiteNeverAnswers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL

	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()

	_, err := Setup(ctx, cfg)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		BaseURL:            "https://practice-automation.com",
		DefaultTimeout:     3 * time.Second,
		ScenarioTimeout:    45 * time.Second,
		Parallelism:        2,
		Headless:           false,
		BrowserBin:         "/usr/bin/chromium",
		SoftAssertions:     true,
		ResultsDatabaseURL: "postgres://localhost/results",
		LiftoffDelay:       2 * time.Second,
	}
	logger := zap.NewNop()

	env := FromConfig(cfg, logger)

	assert.Equal(t, cfg.BaseURL, env.BaseURL)
	assert.Equal(t, 3*time.Second, env.DefaultTimeout)
	assert.Equal(t, 45*time.Second, env.ScenarioTimeout)
	assert.Equal(t, 2, env.Parallelism)
	assert.False(t, env.Headless)
	assert.Equal(t, "/usr/bin/chromium", env.BrowserBin)
	assert.True(t, env.SoftAssertions)
	assert.Equal(t, cfg.ResultsDatabaseURL, env.ResultsDatabaseURL)
	assert.Equal(t, 2*time.Second, env.Site.LiftoffDelay)
	assert.False(t, env.ResultsContainer)
	assert.Equal(t, DefaultPostgresConfig(), env.Postgres)
}
