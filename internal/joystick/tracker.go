package joystick

import (
	"errors"
	"math"
	"sync"
)

var ErrNoGeometry = errors.New("joystick: control has not been measured")

// State is the drag state of a Tracker.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Tracker turns a drag gesture on the control into normalized positions.
// Begin/Update/End may be called from any goroutine; onChange runs outside
// the tracker's lock, so it may call back into the tracker.
type Tracker struct {
	onChange func(x, y int)

	mu       sync.Mutex
	bounds   Rect
	measured float64 // width the current geometry was derived from
	geom     Geometry
	state    State
	knob     Point
	pos      Position
}

// NewTracker creates an idle tracker. onChange may be nil.
func NewTracker(onChange func(x, y int)) *Tracker {
	return &Tracker{onChange: onChange}
}

// SetBounds records the control's bounding box. Geometry is rebuilt on the
// next use, and only if the width changed.
func (t *Tracker) SetBounds(r Rect) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bounds = r
	if t.state == Idle {
		t.knob = t.geometryLocked().Center()
	}
}

// Bounds returns the last recorded bounding box.
func (t *Tracker) Bounds() Rect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bounds
}

func (t *Tracker) geometryLocked() Geometry {
	if t.bounds.Width != t.measured {
		t.geom = GeometryFor(t.bounds)
		t.measured = t.bounds.Width
	}
	return t.geom
}

// Geometry returns the current track geometry.
func (t *Tracker) Geometry() Geometry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.geometryLocked()
}

// TryBegin starts a drag at page position p and emits the resulting position.
// It fails with ErrNoGeometry while the control has no size.
func (t *Tracker) TryBegin(p Pointer) error {
	t.mu.Lock()
	if !t.geometryLocked().Valid() {
		t.mu.Unlock()
		return ErrNoGeometry
	}
	t.state = Dragging
	pos := t.moveLocked(p)
	t.mu.Unlock()

	t.emit(pos)
	return nil
}

// Begin is TryBegin without the error; an unmeasured control is a no-op.
func (t *Tracker) Begin(p Pointer) {
	_ = t.TryBegin(p)
}

// Update moves the knob while a drag is active and is ignored otherwise.
func (t *Tracker) Update(p Pointer) {
	t.mu.Lock()
	if t.state != Dragging {
		t.mu.Unlock()
		return
	}
	pos := t.moveLocked(p)
	t.mu.Unlock()

	t.emit(pos)
}

// End releases the knob back to the center and emits (0, 0).
func (t *Tracker) End() {
	t.mu.Lock()
	t.state = Idle
	t.knob = t.geometryLocked().Center()
	t.pos = Position{}
	t.mu.Unlock()

	t.emit(Position{})
}

// Dispatch routes an event from any input modality. Start and move events
// without a usable pointer are dropped; end never needs one.
func (t *Tracker) Dispatch(phase Phase, ev Event) {
	if phase == PhaseEnd {
		t.End()
		return
	}
	if ev == nil {
		return
	}
	p, ok := ev.Pointer()
	if !ok {
		return
	}
	switch phase {
	case PhaseStart:
		t.Begin(p)
	case PhaseMove:
		t.Update(p)
	}
}

// moveLocked keeps the last position for non-finite pointer coordinates.
func (t *Tracker) moveLocked(p Pointer) Position {
	cx, cy := p.ClientPos()
	if !finite(cx) || !finite(cy) {
		return t.pos
	}
	pos, knob := t.geometryLocked().Normalize(cx-t.bounds.Left, cy-t.bounds.Top)
	t.knob = knob
	t.pos = pos
	return pos
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (t *Tracker) emit(pos Position) {
	if t.onChange != nil {
		t.onChange(pos.X, pos.Y)
	}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Knob returns the visual knob position relative to the control's top-left.
func (t *Tracker) Knob() Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.knob
}

func (t *Tracker) Position() Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}
