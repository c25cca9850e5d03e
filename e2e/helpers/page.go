package helpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Page is one isolated browser tab plus the actions a scenario can perform
// on it. Every operation resolves its target afresh and is bounded by the
// page timeout; use WithTimeout for a longer or shorter window.
//
// Page is not safe for concurrent use: a scenario drives its page from a
// single goroutine.
type Page struct {
	page      *rod.Page
	incognito *rod.Browser
	baseURL   string
	timeout   time.Duration
	logger    *zap.Logger
	dialogs   *DialogInterceptor
}

func newPage(pg *rod.Page, incognito *rod.Browser, opts BrowserOptions) *Page {
	return &Page{
		page:      pg,
		incognito: incognito,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		timeout:   opts.Timeout,
		logger:    opts.Logger,
		dialogs:   NewDialogInterceptor(rodDialogs{page: pg}, opts.Timeout, opts.Logger),
	}
}

// WithTimeout returns a view of the page whose operations wait up to d.
// The view shares the tab and its dialog interceptor with the original.
func (p *Page) WithTimeout(d time.Duration) *Page {
	clone := *p
	clone.timeout = d
	return &clone
}

// Timeout returns the bounded wait window of this view.
func (p *Page) Timeout() time.Duration {
	return p.timeout
}

// Dialogs returns the page's dialog interceptor.
func (p *Page) Dialogs() *DialogInterceptor {
	return p.dialogs
}

// bound returns the rod page limited to the page timeout.
func (p *Page) bound(ctx context.Context) (*rod.Page, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	return p.page.Context(ctx), ctx, cancel
}

// Navigate loads path relative to the base URL (absolute URLs are used as
// is) and waits for the load event.
//
//	err := page.Navigate(ctx, "/form-fields/")
func (p *Page) Navigate(ctx context.Context, path string) error {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = p.baseURL + path
	}

	pg, _, cancel := p.bound(ctx)
	defer cancel()

	if err := pg.Navigate(url); err != nil {
		return asTimeout("navigate to "+url, p.timeout, fmt.Errorf("failed to navigate to %s: %w", url, err))
	}
	if err := pg.WaitLoad(); err != nil {
		return asTimeout("load "+url, p.timeout, fmt.Errorf("failed to wait for page load: %w", err))
	}
	p.logger.Debug("navigated", zap.String("url", url))
	return nil
}

// Resolve returns the single element matching ref, waiting up to the page
// timeout for it to appear.
func (p *Page) Resolve(ctx context.Context, ref Ref) (*rod.Element, error) {
	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	el, err := resolveOne(bctx, pg, ref, p.timeout)
	if err != nil {
		return nil, err
	}
	return el.Context(ctx), nil
}

// ResolveAll returns every element matching ref, waiting for at least one.
func (p *Page) ResolveAll(ctx context.Context, ref Ref) (rod.Elements, error) {
	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	els, err := resolveAll(bctx, pg, ref, p.timeout)
	if err != nil {
		return nil, err
	}
	out := make(rod.Elements, len(els))
	for i, el := range els {
		out[i] = el.Context(ctx)
	}
	return out, nil
}

// interactable resolves ref and waits until it is visible and enabled.
func (p *Page) interactable(ctx context.Context, pg *rod.Page, ref Ref, action string) (*rod.Element, error) {
	el, err := resolveOne(ctx, pg, ref, p.timeout)
	if err != nil {
		return nil, err
	}
	if err := el.WaitVisible(); err != nil {
		return nil, &InteractionError{Ref: ref, Action: action, Err: fmt.Errorf("not visible: %w", err)}
	}
	if err := el.WaitEnabled(); err != nil {
		return nil, &InteractionError{Ref: ref, Action: action, Err: fmt.Errorf("not enabled: %w", err)}
	}
	return el, nil
}

// Fill replaces the value of a text input or textarea.
//
//	err := page.Fill(ctx, helpers.ID("email"), "john@example.com")
func (p *Page) Fill(ctx context.Context, ref Ref, text string) error {
	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	el, err := p.interactable(bctx, pg, ref, "fill")
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return &InteractionError{Ref: ref, Action: "fill", Err: fmt.Errorf("failed to select text: %w", err)}
	}
	if err := el.Input(text); err != nil {
		return &InteractionError{Ref: ref, Action: "fill", Err: err}
	}
	return nil
}

// Click clicks the centre of the element with the left button.
func (p *Page) Click(ctx context.Context, ref Ref) error {
	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	el, err := p.interactable(bctx, pg, ref, "click")
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return &InteractionError{Ref: ref, Action: "click", Err: err}
	}
	return nil
}

const selectOptionJS = `function (value) {
	if (this.tagName !== 'SELECT') {
		throw new Error('element is not a <select>');
	}
	const option = Array.from(this.options).find(
		(o) => o.value === value || o.label.trim() === value || o.text.trim() === value);
	if (!option) {
		return false;
	}
	this.value = option.value;
	option.selected = true;
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

// SelectOption selects the option of a <select> whose value or visible
// label equals value.
//
//	err := page.SelectOption(ctx, helpers.ID("siblings"), "Yes")
func (p *Page) SelectOption(ctx context.Context, ref Ref, value string) error {
	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	el, err := p.interactable(bctx, pg, ref, "select option in")
	if err != nil {
		return err
	}
	res, err := el.Eval(selectOptionJS, value)
	if err != nil {
		return &InteractionError{Ref: ref, Action: "select option in", Err: err}
	}
	if !res.Value.Bool() {
		return &InteractionError{Ref: ref, Action: "select option in", Err: fmt.Errorf("no option matches %q", value)}
	}
	return nil
}

// Check ticks a checkbox or radio. Checking an already checked control is a
// no-op.
func (p *Page) Check(ctx context.Context, ref Ref) error {
	return p.setChecked(ctx, ref, true)
}

// Uncheck clears a checkbox. Unchecking an unchecked control is a no-op.
func (p *Page) Uncheck(ctx context.Context, ref Ref) error {
	return p.setChecked(ctx, ref, false)
}

func (p *Page) setChecked(ctx context.Context, ref Ref, want bool) error {
	action := "check"
	if !want {
		action = "uncheck"
	}

	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	el, err := p.interactable(bctx, pg, ref, action)
	if err != nil {
		return err
	}
	checked, err := el.Property("checked")
	if err != nil {
		return &InteractionError{Ref: ref, Action: action, Err: err}
	}
	if checked.Bool() == want {
		return nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return &InteractionError{Ref: ref, Action: action, Err: err}
	}
	return nil
}

// Value returns the current value property of a form control.
func (p *Page) Value(ctx context.Context, ref Ref) (string, error) {
	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	el, err := resolveOne(bctx, pg, ref, p.timeout)
	if err != nil {
		return "", err
	}
	v, err := el.Property("value")
	if err != nil {
		return "", fmt.Errorf("failed to read value of %s: %w", ref, err)
	}
	return v.Str(), nil
}

// Text returns the rendered text of the element.
func (p *Page) Text(ctx context.Context, ref Ref) (string, error) {
	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	el, err := resolveOne(bctx, pg, ref, p.timeout)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("failed to get text from %s: %w", ref, err)
	}
	return text, nil
}

// InnerTexts returns the rendered text of every element matching ref.
func (p *Page) InnerTexts(ctx context.Context, ref Ref) ([]string, error) {
	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	els, err := resolveAll(bctx, pg, ref, p.timeout)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("failed to get text from %s: %w", ref, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// IsChecked reports the checked property of a checkbox or radio.
func (p *Page) IsChecked(ctx context.Context, ref Ref) (bool, error) {
	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	el, err := resolveOne(bctx, pg, ref, p.timeout)
	if err != nil {
		return false, err
	}
	checked, err := el.Property("checked")
	if err != nil {
		return false, fmt.Errorf("failed to read checked state of %s: %w", ref, err)
	}
	return checked.Bool(), nil
}

// IsVisible reports whether the element is rendered and visible.
func (p *Page) IsVisible(ctx context.Context, ref Ref) (bool, error) {
	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	el, err := resolveOne(bctx, pg, ref, p.timeout)
	if err != nil {
		return false, err
	}
	visible, err := el.Visible()
	if err != nil {
		return false, fmt.Errorf("failed to read visibility of %s: %w", ref, err)
	}
	return visible, nil
}

// Title returns the document title.
func (p *Page) Title(ctx context.Context) (string, error) {
	pg, _, cancel := p.bound(ctx)
	defer cancel()

	info, err := pg.Info()
	if err != nil {
		return "", asTimeout("read page title", p.timeout, fmt.Errorf("failed to read page info: %w", err))
	}
	return info.Title, nil
}

// URL returns the current document URL.
func (p *Page) URL(ctx context.Context) (string, error) {
	pg, _, cancel := p.bound(ctx)
	defer cancel()

	info, err := pg.Info()
	if err != nil {
		return "", asTimeout("read page url", p.timeout, fmt.Errorf("failed to read page info: %w", err))
	}
	return info.URL, nil
}

// BoundingBox returns the element's rectangle in viewport coordinates. ok is
// false when the element has no layout box (detached or display:none).
func (p *Page) BoundingBox(ctx context.Context, ref Ref) (box Rect, ok bool, err error) {
	pg, bctx, cancel := p.bound(ctx)
	defer cancel()

	el, err := resolveOne(bctx, pg, ref, p.timeout)
	if err != nil {
		return Rect{}, false, err
	}
	shape, err := el.Shape()
	if err != nil {
		return Rect{}, false, nil
	}
	r := shape.Box()
	if r == nil {
		return Rect{}, false, nil
	}
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}, true, nil
}

// Close closes the tab and disposes its incognito context.
func (p *Page) Close() error {
	var err error
	if p.page != nil {
		err = p.page.Close()
	}
	if p.incognito != nil {
		if cerr := p.incognito.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
