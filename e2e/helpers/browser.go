// Package helpers provides narrowly-scoped utilities for E2E testing.
package helpers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// BrowserOptions configures NewBrowser.
type BrowserOptions struct {
	// BaseURL is prefixed to relative paths passed to Page.Navigate.
	BaseURL string

	// Headless runs Chromium without a window. Defaults to true in DefaultBrowserOptions.
	Headless bool

	// Bin is an explicit Chromium binary. When empty the launcher looks one
	// up on the system or downloads it.
	Bin string

	// Timeout is the default bounded wait for every page operation.
	Timeout time.Duration

	// Logger receives page-level diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultBrowserOptions returns headless options with a 5 second wait window.
func DefaultBrowserOptions(baseURL string) BrowserOptions {
	return BrowserOptions{
		BaseURL:  baseURL,
		Headless: true,
		Timeout:  5 * time.Second,
		Logger:   zap.NewNop(),
	}
}

// Browser owns one Chromium process. Pages opened from it are isolated from
// each other: every page lives in its own incognito browser context, so no
// cookies, storage or dialog handlers are shared between scenarios.
//
//	browser, err := NewBrowser(DefaultBrowserOptions(siteURL))
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer browser.Close()
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	opts     BrowserOptions
}

// NewBrowser launches Chromium and connects to it.
func NewBrowser(opts BrowserOptions) (*Browser, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	l := launcher.New().Headless(opts.Headless)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	} else if path, found := launcher.LookPath(); found {
		l = l.Bin(path)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	opts.Logger.Debug("browser launched", zap.String("control_url", url), zap.Bool("headless", opts.Headless))

	return &Browser{
		browser:  browser,
		launcher: l,
		opts:     opts,
	}, nil
}

// NewPage opens a blank page in a fresh incognito context.
//
// Close the page when the scenario is done; closing disposes the context.
func (b *Browser) NewPage(ctx context.Context) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The incognito context is deliberately not bound to ctx: it must stay
	// closable after a scenario deadline has passed.
	incognito, err := b.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	pg, err := incognito.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return newPage(pg, incognito, b.opts), nil
}

// Close shuts the browser down and removes its temporary profile.
//
// Always call Close() when done with the browser, typically using defer.
func (b *Browser) Close() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Cleanup()
	}
	return err
}
