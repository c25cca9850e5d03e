package helpers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDragPoints(t *testing.T) {
	box := Rect{X: 100, Y: 40, Width: 200, Height: 20}

	tests := []struct {
		name      string
		from, to  float64
		wantStart Point
		wantEnd   Point
	}{
		{"left to right edge", 0, 100, Point{100, 50}, Point{300, 50}},
		{"increase", 25, 80, Point{150, 50}, Point{260, 50}},
		{"decrease", 25, 10, Point{150, 50}, Point{120, 50}},
		{"no movement", 50, 50, Point{200, 50}, Point{200, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := DragPoints(box, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantStart.X, start.X, 1e-9)
			assert.InDelta(t, tt.wantStart.Y, start.Y, 1e-9)
			assert.InDelta(t, tt.wantEnd.X, end.X, 1e-9)
			assert.InDelta(t, tt.wantEnd.Y, end.Y, 1e-9)
		})
	}
}

func TestDragPointsMonotonic(t *testing.T) {
	box := Rect{X: 8, Y: 300, Width: 129, Height: 16}
	prev := AxisPoint(box, 0).X
	for pct := 1.0; pct <= 100; pct++ {
		x := AxisPoint(box, pct).X
		assert.Greater(t, x, prev, "x must grow with percent at %v", pct)
		prev = x
	}
}

func TestDragPointsRejectsOutOfRange(t *testing.T) {
	for _, pair := range [][2]float64{{-1, 50}, {50, 100.5}, {101, -3}} {
		_, _, err := DragPoints(Rect{Width: 10, Height: 10}, pair[0], pair[1])
		assert.ErrorIs(t, err, ErrPercentOutOfRange, "from=%v to=%v", pair[0], pair[1])
	}
}

type recordingPointer struct {
	calls   []string
	at      []Point
	failOn  string
	pressed bool
}

func (r *recordingPointer) MoveTo(p Point) error {
	r.calls = append(r.calls, "move")
	r.at = append(r.at, p)
	if r.failOn == "move" && r.pressed {
		return errors.New("target closed")
	}
	return nil
}

func (r *recordingPointer) Down() error {
	r.calls = append(r.calls, "down")
	if r.failOn == "down" {
		return errors.New("target closed")
	}
	r.pressed = true
	return nil
}

func (r *recordingPointer) Up() error {
	r.calls = append(r.calls, "up")
	r.pressed = false
	return nil
}

func TestDragWithSequence(t *testing.T) {
	ptr := &recordingPointer{}
	start, end := Point{10, 5}, Point{90, 5}

	require.NoError(t, dragWith(ptr, start, end))
	assert.Equal(t, []string{"move", "down", "move", "up"}, ptr.calls)
	assert.Equal(t, []Point{start, end}, ptr.at)
	assert.False(t, ptr.pressed)
}

func TestDragWithReleasesAfterFailedMove(t *testing.T) {
	ptr := &recordingPointer{failOn: "move"}

	err := dragWith(ptr, Point{1, 1}, Point{2, 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drag end")
	assert.Equal(t, []string{"move", "down", "move", "up"}, ptr.calls)
	assert.False(t, ptr.pressed, "button must not stay pressed")
}

func TestDragWithNoReleaseWhenPressFails(t *testing.T) {
	ptr := &recordingPointer{failOn: "down"}

	err := dragWith(ptr, Point{1, 1}, Point{2, 1})
	require.Error(t, err)
	assert.Equal(t, []string{"move", "down"}, ptr.calls)
}
