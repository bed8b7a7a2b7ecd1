package joystick

// Pointer is anything that can report a page position, whatever device produced it.
type Pointer interface {
	ClientPos() (x, y float64)
}

// Event is a raw input event from one modality. Pointer returns false when
// the event carries no usable position.
type Event interface {
	Pointer() (Pointer, bool)
}

// Phase is the gesture step an event belongs to.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMove
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseMove:
		return "move"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// MouseEvent is a mouse or pen event in page coordinates.
type MouseEvent struct {
	ClientX, ClientY float64
}

func (m MouseEvent) ClientPos() (float64, float64) { return m.ClientX, m.ClientY }

func (m MouseEvent) Pointer() (Pointer, bool) { return m, true }

// TouchPoint is one contact of a touch event.
type TouchPoint struct {
	ID               int
	ClientX, ClientY float64
}

func (t TouchPoint) ClientPos() (float64, float64) { return t.ClientX, t.ClientY }

// TouchEvent carries the active contacts. Only the first one steers the knob.
type TouchEvent struct {
	Touches []TouchPoint
}

func (t TouchEvent) Pointer() (Pointer, bool) {
	if len(t.Touches) == 0 {
		return nil, false
	}
	return t.Touches[0], true
}
