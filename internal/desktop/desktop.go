// Package desktop drives the joystick from the system-wide mouse. The
// control is a virtual circle in the middle of the primary screen.
package desktop

import (
	"context"
	"log"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"

	"github.com/xtding233/joystick-backend/internal/joystick"
)

var leftButton = hook.MouseMap["left"]

// ScreenBounds centres the control on a w x h screen. Its diameter is half
// the shorter side.
func ScreenBounds(w, h int) joystick.Rect {
	d := min(w, h) / 2
	return joystick.Rect{
		Left:   float64(w-d) / 2,
		Top:    float64(h-d) / 2,
		Width:  float64(d),
		Height: float64(d),
	}
}

// PrimaryBounds measures the primary screen through robotgo.
func PrimaryBounds() joystick.Rect {
	w, h := robotgo.GetScreenSize()
	return ScreenBounds(w, h)
}

// handle maps one hook event onto the tracker. A left press only starts a
// drag inside the control's box. It returns false for events it ignores.
func handle(t *joystick.Tracker, ev hook.Event) bool {
	p := joystick.MouseEvent{ClientX: float64(ev.X), ClientY: float64(ev.Y)}
	switch ev.Kind {
	case hook.MouseDown:
		if ev.Button != leftButton {
			return false
		}
		if !t.Bounds().Contains(p.ClientX, p.ClientY) {
			return false
		}
		t.Dispatch(joystick.PhaseStart, p)
	case hook.MouseDrag:
		if t.State() != joystick.Dragging {
			return false
		}
		t.Dispatch(joystick.PhaseMove, p)
	case hook.MouseUp:
		if t.State() != joystick.Dragging {
			return false
		}
		t.Dispatch(joystick.PhaseEnd, p)
	default:
		return false
	}
	return true
}

// Listen sets the tracker's bounds from the primary screen and feeds it
// global mouse events. It blocks until ctx ends.
func Listen(ctx context.Context, t *joystick.Tracker) error {
	t.SetBounds(PrimaryBounds())

	evChan := hook.Start()
	defer hook.End()
	log.Printf("desktop: listening for mouse events, control at %+v", t.Bounds())

	for {
		select {
		case <-ctx.Done():
			log.Println("desktop: hook stopped")
			return nil
		case ev, ok := <-evChan:
			if !ok {
				return nil
			}
			handle(t, ev)
		}
	}
}
