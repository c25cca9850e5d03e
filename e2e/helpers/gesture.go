package helpers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Point is a viewport coordinate in CSS pixels.
type Point struct {
	X, Y float64
}

// Rect is an element's bounding box in viewport coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// ErrPercentOutOfRange is returned for drag positions outside [0, 100].
var ErrPercentOutOfRange = errors.New("percent must be within [0, 100]")

// AxisPoint returns the point at pct percent of the box width, on its
// vertical centre line.
func AxisPoint(box Rect, pct float64) Point {
	return Point{
		X: box.X + box.Width*pct/100,
		Y: box.Y + box.Height/2,
	}
}

// DragPoints returns the press and release points of a horizontal drag
// across box from one percentage of its width to another.
func DragPoints(box Rect, from, to float64) (start, end Point, err error) {
	if from < 0 || from > 100 || to < 0 || to > 100 {
		return Point{}, Point{}, fmt.Errorf("%w: got %v -> %v", ErrPercentOutOfRange, from, to)
	}
	return AxisPoint(box, from), AxisPoint(box, to), nil
}

// pointer is the mouse of one page.
type pointer interface {
	MoveTo(p Point) error
	Down() error
	Up() error
}

// dragWith performs move, press, move, release. The end point is reached in
// a single move. If anything fails after the press the button is released so
// the page is not left mid-drag.
func dragWith(ptr pointer, start, end Point) (err error) {
	if err := ptr.MoveTo(start); err != nil {
		return fmt.Errorf("failed to move to drag start: %w", err)
	}
	if err := ptr.Down(); err != nil {
		return fmt.Errorf("failed to press pointer: %w", err)
	}
	defer func() {
		if err != nil {
			_ = ptr.Up()
		}
	}()

	if err := ptr.MoveTo(end); err != nil {
		return fmt.Errorf("failed to move to drag end: %w", err)
	}
	if err := ptr.Up(); err != nil {
		return fmt.Errorf("failed to release pointer: %w", err)
	}
	return nil
}

// rodPointer dispatches raw CDP mouse events. The pressed button is carried
// on move events so the page sees a drag rather than a hover. rod's
// page.Mouse is not used: Page.Context does not rebind Mouse to the new
// page, so its calls would ignore the bounded context.
type rodPointer struct {
	page    *rod.Page
	at      Point
	pressed bool
}

func (m *rodPointer) dispatch(typ proto.InputDispatchMouseEventType, button proto.InputMouseButton, clicks int) error {
	buttons := 0
	if m.pressed {
		buttons = 1
	}
	return proto.InputDispatchMouseEvent{
		Type:       typ,
		X:          m.at.X,
		Y:          m.at.Y,
		Button:     button,
		Buttons:    &buttons,
		ClickCount: clicks,
	}.Call(m.page)
}

func (m *rodPointer) MoveTo(p Point) error {
	m.at = p
	button := proto.InputMouseButtonNone
	if m.pressed {
		button = proto.InputMouseButtonLeft
	}
	return m.dispatch(proto.InputDispatchMouseEventTypeMouseMoved, button, 0)
}

func (m *rodPointer) Down() error {
	m.pressed = true
	if err := m.dispatch(proto.InputDispatchMouseEventTypeMousePressed, proto.InputMouseButtonLeft, 1); err != nil {
		m.pressed = false
		return err
	}
	return nil
}

func (m *rodPointer) Up() error {
	m.pressed = false
	return m.dispatch(proto.InputDispatchMouseEventTypeMouseReleased, proto.InputMouseButtonLeft, 1)
}

// DragAlongAxis drags a horizontal control such as a range input from one
// percentage of its width to another. The resulting control value is not
// checked here; its relation to the percentage is control specific.
//
// When the control has no bounding box (it is detached or not rendered) the
// drag is skipped with a warning and nil is returned.
//
//	err := page.DragAlongAxis(ctx, helpers.ID("slideMe"), 25, 80)
func (p *Page) DragAlongAxis(ctx context.Context, ref Ref, from, to float64) error {
	if _, _, err := DragPoints(Rect{}, from, to); err != nil {
		return err
	}

	box, ok, err := p.BoundingBox(ctx, ref)
	if err != nil {
		return err
	}
	if !ok {
		p.logger.Warn("drag skipped: control has no bounding box", zap.Stringer("ref", ref))
		return nil
	}

	start, end, err := DragPoints(box, from, to)
	if err != nil {
		return err
	}

	pg, _, cancel := p.bound(ctx)
	defer cancel()

	if err := dragWith(&rodPointer{page: pg}, start, end); err != nil {
		return asTimeout("drag "+ref.String(), p.timeout, &InteractionError{Ref: ref, Action: "drag", Err: err})
	}
	p.logger.Debug("dragged",
		zap.Stringer("ref", ref),
		zap.Float64("from_pct", from),
		zap.Float64("to_pct", to),
	)
	return nil
}
