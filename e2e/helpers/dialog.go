package helpers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// DialogKind is the type of a native browser dialog.
type DialogKind string

const (
	DialogAlert        DialogKind = "alert"
	DialogConfirm      DialogKind = "confirm"
	DialogPrompt       DialogKind = "prompt"
	DialogBeforeUnload DialogKind = "beforeunload"
)

// DialogEvent is a dialog the page opened.
type DialogEvent struct {
	Kind          DialogKind
	Message       string
	DefaultPrompt string
}

// Resolution says how an expected dialog is closed.
type Resolution struct {
	accept bool
	text   string
}

// Accept presses OK. A prompt is accepted with an empty answer.
func Accept() Resolution { return Resolution{accept: true} }

// AcceptWith answers a prompt with text and presses OK.
func AcceptWith(text string) Resolution { return Resolution{accept: true, text: text} }

// Dismiss presses Cancel (or closes an alert).
func Dismiss() Resolution { return Resolution{} }

func (r Resolution) String() string {
	switch {
	case !r.accept:
		return "dismiss"
	case r.text != "":
		return fmt.Sprintf("accept(%q)", r.text)
	default:
		return "accept"
	}
}

// DialogExpectation describes the next dialog a scenario expects. Message
// is compared exactly.
type DialogExpectation struct {
	Kind       DialogKind
	Message    string
	Resolution Resolution
}

// DialogState is the state of a DialogInterceptor.
type DialogState int

const (
	DialogIdle DialogState = iota
	DialogArmed
)

func (s DialogState) String() string {
	if s == DialogArmed {
		return "armed"
	}
	return "idle"
}

var (
	// ErrDialogArmed is returned by Expect while a previous expectation is
	// still pending. Overlapping dialogs are not supported.
	ErrDialogArmed = errors.New("dialog interceptor is already armed")

	// ErrDialogIdle is returned by Await when nothing was expected.
	ErrDialogIdle = errors.New("no dialog expectation is armed")

	errTriggerFailed = errors.New("dialog trigger failed")
	errDisarmed      = errors.New("dialog expectation disarmed")
)

// dialogDriver subscribes to the next dialog of one page. arm must subscribe
// before it returns so a dialog opened right after is not missed. wait
// blocks until the dialog opens or ctx ends.
type dialogDriver interface {
	arm(ctx context.Context) (wait func() (*DialogEvent, error), resolve func(accept bool, text string) error)
}

type pendingDialog struct {
	exp     DialogExpectation
	ctx     context.Context
	cancel  context.CancelCauseFunc
	stop    context.CancelFunc
	wait    func() (*DialogEvent, error)
	resolve func(accept bool, text string) error
}

// DialogInterceptor implements expect-then-act dialog handling for a single
// page: Expect arms it, the scenario performs the triggering action, and
// Await checks and resolves the dialog, returning the interceptor to idle.
//
// A dialog that does not match the expectation is dismissed so the page is
// not left blocked, and Await reports an AssertionError. A dialog that never
// opens fails with a TimeoutError once the wait window elapses.
type DialogInterceptor struct {
	driver  dialogDriver
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	pending *pendingDialog
}

// NewDialogInterceptor returns an idle interceptor.
func NewDialogInterceptor(driver dialogDriver, timeout time.Duration, logger *zap.Logger) *DialogInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DialogInterceptor{
		driver:  driver,
		timeout: timeout,
		logger:  logger.Named("dialogs"),
	}
}

// State reports whether an expectation is pending.
func (d *DialogInterceptor) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		return DialogArmed
	}
	return DialogIdle
}

// Expect arms the interceptor. The wait window starts now.
func (d *DialogInterceptor) Expect(ctx context.Context, exp DialogExpectation) error {
	switch exp.Kind {
	case DialogAlert, DialogConfirm, DialogPrompt, DialogBeforeUnload:
	default:
		return fmt.Errorf("unknown dialog kind %q", exp.Kind)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		return ErrDialogArmed
	}

	tctx, stop := context.WithTimeout(ctx, d.timeout)
	actx, cancel := context.WithCancelCause(tctx)
	wait, resolve := d.driver.arm(actx)

	d.pending = &pendingDialog{
		exp:     exp,
		ctx:     actx,
		cancel:  cancel,
		stop:    stop,
		wait:    wait,
		resolve: resolve,
	}
	d.logger.Debug("armed", zap.String("kind", string(exp.Kind)), zap.String("message", exp.Message))
	return nil
}

// Await blocks until the expected dialog opens, verifies it and applies the
// resolution. The interceptor is idle again when Await returns, whatever
// the outcome.
func (d *DialogInterceptor) Await(ctx context.Context) (*DialogEvent, error) {
	d.mu.Lock()
	p := d.pending
	d.mu.Unlock()

	if p == nil {
		return nil, ErrDialogIdle
	}
	defer d.release(p)

	unwatch := context.AfterFunc(ctx, func() { p.cancel(ctx.Err()) })
	defer unwatch()

	ev, err := p.wait()
	if err != nil {
		cause := context.Cause(p.ctx)
		switch {
		case errors.Is(cause, errTriggerFailed), errors.Is(cause, errDisarmed):
			return nil, cause
		case errors.Is(cause, context.DeadlineExceeded):
			return nil, &TimeoutError{Op: fmt.Sprintf("open %s dialog", p.exp.Kind), After: d.timeout, Err: err}
		}
		return nil, fmt.Errorf("failed to wait for %s dialog: %w", p.exp.Kind, err)
	}

	log := d.logger.With(zap.String("kind", string(ev.Kind)), zap.String("message", ev.Message))

	if ev.Kind != p.exp.Kind || ev.Message != p.exp.Message {
		if rerr := p.resolve(false, ""); rerr != nil {
			log.Warn("failed to dismiss unexpected dialog", zap.Error(rerr))
		}
		log.Debug("unexpected dialog dismissed")
		return ev, &AssertionError{
			Subject:  "dialog",
			Expected: fmt.Sprintf("%s %q", p.exp.Kind, p.exp.Message),
			Actual:   fmt.Sprintf("%s %q", ev.Kind, ev.Message),
		}
	}

	res := p.exp.Resolution
	if err := p.resolve(res.accept, res.text); err != nil {
		return ev, fmt.Errorf("failed to %s %s dialog: %w", res, ev.Kind, err)
	}
	log.Debug("dialog resolved", zap.Stringer("resolution", res))
	return ev, nil
}

// Disarm drops a pending expectation. A concurrent Await returns an error.
func (d *DialogInterceptor) Disarm() {
	d.fail(errDisarmed)
}

// fail aborts the pending wait with cause.
func (d *DialogInterceptor) fail(cause error) {
	d.mu.Lock()
	p := d.pending
	d.mu.Unlock()

	if p != nil {
		p.cancel(cause)
	}
}

func (d *DialogInterceptor) release(p *pendingDialog) {
	p.cancel(nil)
	p.stop()

	d.mu.Lock()
	if d.pending == p {
		d.pending = nil
	}
	d.mu.Unlock()
}

// ExpectDialog arms the page's interceptor, runs trigger and waits for the
// dialog. trigger runs on its own goroutine because the browser does not
// acknowledge the triggering input until the dialog is closed.
//
//	ev, err := page.ExpectDialog(ctx, helpers.DialogExpectation{
//	    Kind:       helpers.DialogAlert,
//	    Message:    "Hi there, pal!",
//	    Resolution: helpers.Accept(),
//	}, func(ctx context.Context) error {
//	    return page.Click(ctx, helpers.ExactRole("button", "Alert Popup"))
//	})
func (p *Page) ExpectDialog(ctx context.Context, exp DialogExpectation, trigger func(ctx context.Context) error) (*DialogEvent, error) {
	if err := p.dialogs.Expect(ctx, exp); err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		err := trigger(ctx)
		if err != nil {
			p.dialogs.fail(fmt.Errorf("%w: %w", errTriggerFailed, err))
		}
		done <- err
	}()

	ev, err := p.dialogs.Await(ctx)
	triggerErr := <-done
	if triggerErr != nil {
		return ev, triggerErr
	}
	return ev, err
}

// rodDialogs drives dialogs of a rod page.
type rodDialogs struct {
	page *rod.Page
}

func (r rodDialogs) arm(ctx context.Context) (func() (*DialogEvent, error), func(bool, string) error) {
	pg := r.page.Context(ctx)
	wait, handle := pg.HandleDialog()

	return func() (*DialogEvent, error) {
			e := wait()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return &DialogEvent{
				Kind:          DialogKind(e.Type),
				Message:       e.Message,
				DefaultPrompt: e.DefaultPrompt,
			}, nil
		}, func(accept bool, text string) error {
			return handle(&proto.PageHandleJavaScriptDialog{Accept: accept, PromptText: text})
		}
}
