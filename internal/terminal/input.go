package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/xtding233/joystick-backend/internal/joystick"
)

// cellHeight is how many control units one terminal row spans. Cells are
// roughly twice as tall as they are wide.
const cellHeight = 2

// cellToUnits maps a screen cell to the centre of that cell in control units.
func cellToUnits(col, row int) (float64, float64) {
	return float64(col) + 0.5, (float64(row) + 0.5) * cellHeight
}

// MouseInput turns tcell mouse events into tracker phases. A press that
// lands outside the control is ignored until the button is released. It is
// not safe for concurrent use; feed it from the event loop only.
type MouseInput struct {
	tracker *joystick.Tracker
	pressed bool // dragging the knob
	outside bool // button held since a press outside the control
}

func NewMouseInput(t *joystick.Tracker) *MouseInput {
	return &MouseInput{tracker: t}
}

// Handle reports whether the event was consumed by the joystick.
func (m *MouseInput) Handle(ev *tcell.EventMouse) bool {
	col, row := ev.Position()
	x, y := cellToUnits(col, row)
	down := ev.Buttons()&tcell.Button1 != 0

	if !down {
		m.outside = false
		if !m.pressed {
			return false
		}
		m.pressed = false
		m.tracker.Dispatch(joystick.PhaseEnd, nil)
		return true
	}

	switch {
	case m.pressed:
		m.tracker.Dispatch(joystick.PhaseMove, joystick.MouseEvent{ClientX: x, ClientY: y})
	case m.outside:
		return false
	case !m.tracker.Bounds().Contains(x, y):
		m.outside = true
		return false
	default:
		m.pressed = true
		m.tracker.Dispatch(joystick.PhaseStart, joystick.MouseEvent{ClientX: x, ClientY: y})
	}
	return true
}

// Dragging reports whether the primary button is held on the control.
func (m *MouseInput) Dragging() bool { return m.pressed }
