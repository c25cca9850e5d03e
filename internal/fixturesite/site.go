// Package fixturesite serves a local copy of the practice website the
// browser suites run against: form fields, popups, a slider, a delayed
// countdown and a homepage of navigation buttons.
package fixturesite

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configures a Site.
type Options struct {
	// LiftoffDelay is how long the JavaScript delays countdown runs before
	// writing "Liftoff!". Defaults to 10s.
	LiftoffDelay time.Duration

	// SliderInitial is the initial slider value. Defaults to 25.
	SliderInitial int

	// Links are the homepage buttons. Defaults to DefaultLinks().
	Links []Link

	Logger *zap.Logger
}

// Site is the fixture website.
type Site struct {
	echo   *echo.Echo
	logger *zap.Logger
}

// New builds the site and registers its routes.
func New(opts Options) (*Site, error) {
	if opts.LiftoffDelay <= 0 {
		opts.LiftoffDelay = 10 * time.Second
	}
	if opts.SliderInitial == 0 {
		opts.SliderInitial = 25
	}
	if opts.SliderInitial < 0 || opts.SliderInitial > 100 {
		return nil, fmt.Errorf("slider initial value %d out of range [0, 100]", opts.SliderInitial)
	}
	if opts.Links == nil {
		opts.Links = DefaultLinks()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	logger := opts.Logger.Named("fixturesite")
	h := newPageHandler(templates, opts)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	e.GET("/", h.Home)
	e.GET("/form-fields/", h.FormFields)
	e.GET("/popups/", h.Popups)
	e.GET("/slider/", h.Slider)
	e.GET("/javascript-delays/", h.JavaScriptDelays)
	e.GET("/:slug/", h.Placeholder)

	return &Site{echo: e, logger: logger}, nil
}

// ServeHTTP makes the site usable with httptest.
func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Serve accepts connections on l until Shutdown is called.
func (s *Site) Serve(l net.Listener) error {
	s.echo.Listener = l
	s.logger.Info("serving fixture site", zap.String("addr", l.Addr().String()))
	if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("fixture site stopped: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Site) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}
	return template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
}
