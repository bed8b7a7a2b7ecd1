package terminal

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/joystick-backend/internal/history"
	"github.com/xtding233/joystick-backend/internal/joystick"
	"github.com/xtding233/joystick-backend/internal/possync"
)

type fakeSource struct {
	x, y    int
	entries []history.Entry
	online  bool
}

func (f fakeSource) Current() (int, int) { return f.x, f.y }
func (f fakeSource) History() []history.Entry { return f.entries }
func (f fakeSource) Stats() history.Stats { return history.Summarize(f.entries) }
func (f fakeSource) Connected() bool { return f.online }

var _ possync.Notifier = (*View)(nil)

func TestFormatCoord(t *testing.T) {
	cases := map[int]string{
		0:     "    0",
		42:    "   42",
		-7:    "   -7",
		1000:  " 1000",
		-1000: "-1000",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatCoord(in), "formatCoord(%d)", in)
	}
}

func TestHistoryRowsNewestFirst(t *testing.T) {
	now := time.Now()
	entries := []history.Entry{
		{X: 1, Y: -1, CreatedAt: now},
		{X: 2, Y: -2, CreatedAt: now},
		{X: 3, Y: -3, CreatedAt: now},
	}

	rows := historyRows(entries, 0)
	require.Len(t, rows, 3)
	assert.Equal(t, "    3      3     -3", rows[0])
	assert.Equal(t, "    1      1     -1", rows[2])

	rows = historyRows(entries, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, "    2      2     -2", rows[1])

	assert.Empty(t, historyRows(nil, 5))
}

func newTestView(t *testing.T) (*View, *joystick.Tracker, tcell.SimulationScreen, *[]joystick.Position) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	var got []joystick.Position
	tr := joystick.NewTracker(func(x, y int) {
		got = append(got, joystick.Position{X: x, Y: y})
	})
	v := NewView(screen, tr, nil, 10)
	v.Layout()
	return v, tr, screen, &got
}

func TestMouseInputDrag(t *testing.T) {
	_, tr, _, got := newTestView(t)
	in := NewMouseInput(tr)

	// cell (11,5) sits at local (9.5, 9) on a 10-unit track
	require.True(t, in.Handle(tcell.NewEventMouse(11, 5, tcell.Button1, tcell.ModNone)))
	assert.Equal(t, joystick.Dragging, tr.State())
	assert.Equal(t, joystick.Position{X: -50, Y: 100}, tr.Position())

	require.True(t, in.Handle(tcell.NewEventMouse(21, 5, tcell.Button1, tcell.ModNone)))
	assert.Equal(t, joystick.Position{X: 950, Y: 100}, tr.Position())

	// far outside the box while dragging still tracks, clamped to the rim
	require.True(t, in.Handle(tcell.NewEventMouse(70, 5, tcell.Button1, tcell.ModNone)))
	assert.InDelta(t, 1000, tr.Position().X, 5)

	require.True(t, in.Handle(tcell.NewEventMouse(70, 5, tcell.ButtonNone, tcell.ModNone)))
	assert.Equal(t, joystick.Idle, tr.State())
	assert.False(t, in.Dragging())
	require.NotEmpty(t, *got)
	assert.Equal(t, joystick.Position{}, (*got)[len(*got)-1])
}

func TestMouseInputIgnoresOutsidePress(t *testing.T) {
	_, tr, _, got := newTestView(t)
	in := NewMouseInput(tr)

	assert.False(t, in.Handle(tcell.NewEventMouse(60, 5, tcell.Button1, tcell.ModNone)))
	assert.Equal(t, joystick.Idle, tr.State())
	assert.False(t, in.Handle(tcell.NewEventMouse(11, 5, tcell.ButtonNone, tcell.ModNone)), "hover")
	assert.Empty(t, *got)
}

func TestMouseInputPressOutsideThenEnter(t *testing.T) {
	_, tr, _, got := newTestView(t)
	in := NewMouseInput(tr)

	assert.False(t, in.Handle(tcell.NewEventMouse(60, 5, tcell.Button1, tcell.ModNone)))
	// sliding into the control with the button still held does not grab the knob
	assert.False(t, in.Handle(tcell.NewEventMouse(11, 5, tcell.Button1, tcell.ModNone)))
	assert.Equal(t, joystick.Idle, tr.State())
	assert.False(t, in.Handle(tcell.NewEventMouse(11, 5, tcell.ButtonNone, tcell.ModNone)))
	assert.Empty(t, *got)

	require.True(t, in.Handle(tcell.NewEventMouse(11, 5, tcell.Button1, tcell.ModNone)))
	assert.Equal(t, joystick.Dragging, tr.State())
}

func TestViewDrawAndNotify(t *testing.T) {
	v, _, screen, _ := newTestView(t)

	_, ok := v.LastNotice()
	assert.False(t, ok)
	v.Notify(possync.Notice{Level: possync.LevelError, Title: "Connection Error", Message: "Could not connect to database"})
	n, ok := v.LastNotice()
	require.True(t, ok)
	assert.Equal(t, "Connection Error", n.Title)

	v.SetSource(fakeSource{x: 12, y: -40, online: true, entries: []history.Entry{{X: 12, Y: -40}}})
	v.Draw()

	// idle knob sits at the centre: local (10,10) -> cell (12,6)
	r, _, _, _ := screen.GetContent(12, 6)
	assert.Equal(t, '●', r)

	r, _, _, _ = screen.GetContent(originCol+20+panelGap, originRow)
	assert.Equal(t, 'X', r)
}
