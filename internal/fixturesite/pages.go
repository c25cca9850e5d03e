package fixturesite

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Link is a homepage navigation button.
type Link struct {
	Label string
	Path  string
}

// DefaultLinks returns the homepage buttons of the practice site.
func DefaultLinks() []Link {
	labels := []string{
		"JavaScript Delays", "Form Fields", "Popups", "Sliders", "Calendars",
		"Modals", "Tables", "Window Operations", "Hover", "Gestures",
		"Click Events", "File Upload", "Accordions", "Carousels", "Iframes",
	}
	links := make([]Link, len(labels))
	for i, l := range labels {
		links[i] = Link{Label: l, Path: "/" + Slug(l) + "/"}
	}
	return links
}

// Slug is the path segment of a homepage label: lower case, spaces as
// dashes. Plural widget families live on a singular page.
func Slug(label string) string {
	switch label {
	case "Sliders":
		return "slider"
	case "Carousels":
		return "carousel"
	}
	return strings.ToLower(strings.ReplaceAll(label, " ", "-"))
}

type pageHandler struct {
	templates     *template.Template
	links         []Link
	placeholders  map[string]string
	delayMillis   int64
	sliderInitial int
}

func newPageHandler(templates *template.Template, opts Options) *pageHandler {
	h := &pageHandler{
		templates:     templates,
		links:         opts.Links,
		placeholders:  make(map[string]string),
		delayMillis:   opts.LiftoffDelay.Milliseconds(),
		sliderInitial: opts.SliderInitial,
	}
	for _, l := range opts.Links {
		h.placeholders[strings.Trim(l.Path, "/")] = l.Label
	}
	return h
}

func (h *pageHandler) render(c echo.Context, name string, data map[string]interface{}) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return h.templates.ExecuteTemplate(c.Response().Writer, name, data)
}

// Home renders the navigation buttons.
func (h *pageHandler) Home(c echo.Context) error {
	return h.render(c, "home", map[string]interface{}{
		"Title": "Learn and Practice Automation",
		"Links": h.links,
	})
}

func (h *pageHandler) FormFields(c echo.Context) error {
	return h.render(c, "form_fields", map[string]interface{}{
		"Title":  "Form Fields",
		"Drinks": []string{"Water", "Milk", "Coffee", "Wine", "Ctrl-Alt-Delight"},
		"Colors": []string{"Red", "Blue", "Yellow", "Green", "#FFC0CB"},
	})
}

func (h *pageHandler) Popups(c echo.Context) error {
	return h.render(c, "popups", map[string]interface{}{"Title": "Popups"})
}

func (h *pageHandler) Slider(c echo.Context) error {
	return h.render(c, "slider", map[string]interface{}{
		"Title":   "Slider",
		"Initial": h.sliderInitial,
	})
}

func (h *pageHandler) JavaScriptDelays(c echo.Context) error {
	return h.render(c, "javascript_delays", map[string]interface{}{
		"Title":       "JavaScript Delays",
		"DelayMillis": h.delayMillis,
	})
}

// Placeholder renders an empty page for homepage links without widgets.
func (h *pageHandler) Placeholder(c echo.Context) error {
	label, ok := h.placeholders[c.Param("slug")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "page not found")
	}
	return h.render(c, "placeholder", map[string]interface{}{"Title": label})
}
