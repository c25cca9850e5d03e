package testenv

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gti/practice-automation-e2e/e2e/helpers"
	"github.com/gti/practice-automation-e2e/internal/fixturesite"
	"go.uber.org/zap"
)

// Site is an in-process fixture site listening on a random local port.
type Site struct {
	// URL is the base URL of the running site.
	URL string

	// Port is the port the site is listening on.
	Port int

	site *fixturesite.Site
	done chan error
}

// SiteConfig holds configuration for starting the fixture site.
type SiteConfig struct {
	// LiftoffDelay is the JavaScript delays countdown duration.
	LiftoffDelay time.Duration

	// ReadyTimeout bounds the wait for the first successful health check.
	ReadyTimeout time.Duration

	Logger *zap.Logger
}

// DefaultSiteConfig returns default fixture site configuration.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		LiftoffDelay: 10 * time.Second,
		ReadyTimeout: 10 * time.Second,
		Logger:       zap.NewNop(),
	}
}

// StartSite serves the fixture site on 127.0.0.1 and waits until it answers.
//
// Returns the site and a cleanup function. Always call cleanup when done:
//
//	site, cleanup, err := StartSite(ctx, DefaultSiteConfig())
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer cleanup()
func StartSite(ctx context.Context, cfg SiteConfig) (*Site, func(), error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 10 * time.Second
	}

	fs, err := fixturesite.New(fixturesite.Options{
		LiftoffDelay: cfg.LiftoffDelay,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build fixture site: %w", err)
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find available port: %w", err)
	}
	port := l.Addr().(*net.TCPAddr).Port

	s := &Site{
		URL:  fmt.Sprintf("http://127.0.0.1:%d", port),
		Port: port,
		site: fs,
		done: make(chan error, 1),
	}
	go func() { s.done <- fs.Serve(l) }()

	readyCtx, cancel := context.WithTimeout(ctx, cfg.ReadyTimeout)
	defer cancel()
	if err := helpers.NewSiteClient(s.URL).WaitReady(readyCtx, "/", 50*time.Millisecond); err != nil {
		_ = s.Stop()
		return nil, nil, fmt.Errorf("fixture site failed to become ready: %w", err)
	}

	return s, func() { _ = s.Stop() }, nil
}

// Stop gracefully stops the site.
func (s *Site) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.site.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down fixture site: %w", err)
	}
	return <-s.done
}
