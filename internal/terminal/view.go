// Package terminal renders the joystick and its history in a tcell screen
// and feeds terminal mouse input back into the tracker.
package terminal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/xtding233/joystick-backend/internal/history"
	"github.com/xtding233/joystick-backend/internal/joystick"
	"github.com/xtding233/joystick-backend/internal/possync"
)

// Source is the read side of possync.Sync that the view draws.
type Source interface {
	Current() (x, y int)
	History() []history.Entry
	Stats() history.Stats
	Connected() bool
}

const (
	originCol   = 2
	originRow   = 1
	panelGap    = 4
	historyRowN = 10
)

var (
	styleTrack  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleKnob   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLabel  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleOnline = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleError  = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// View draws the control and the coordinate panel. It also stands in for
// the toast: notices are kept and shown until the next one arrives.
type View struct {
	screen  tcell.Screen
	tracker *joystick.Tracker
	src     Source
	radius  int // in cells

	mu        sync.Mutex
	notice    possync.Notice
	hasNotice bool
}

func NewView(screen tcell.Screen, tracker *joystick.Tracker, src Source, radius int) *View {
	if radius < 2 {
		radius = 2
	}
	return &View{screen: screen, tracker: tracker, src: src, radius: radius}
}

// SetSource swaps the data the panel reads from.
func (v *View) SetSource(src Source) {
	v.mu.Lock()
	v.src = src
	v.mu.Unlock()
}

// Bounds is the control's box in control units. The width spans 2*radius
// columns and the height radius rows.
func (v *View) Bounds() joystick.Rect {
	d := float64(2 * v.radius)
	return joystick.Rect{
		Left:   originCol,
		Top:    originRow * cellHeight,
		Width:  d,
		Height: d,
	}
}

// Layout records the control's bounds on the tracker. Call it on start and
// after every resize.
func (v *View) Layout() {
	v.tracker.SetBounds(v.Bounds())
}

// Notify implements possync.Notifier.
func (v *View) Notify(n possync.Notice) {
	v.mu.Lock()
	v.notice = n
	v.hasNotice = true
	v.mu.Unlock()
}

// LastNotice returns the most recent notice, if any.
func (v *View) LastNotice() (possync.Notice, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.notice, v.hasNotice
}

// Draw repaints the whole screen and shows it.
func (v *View) Draw() {
	v.screen.Clear()
	v.drawTrack()
	v.drawKnob()
	v.drawPanel()
	v.screen.Show()
}

func (v *View) drawTrack() {
	g := joystick.GeometryFor(v.Bounds())
	for row := 0; row < v.radius; row++ {
		for col := 0; col < 2*v.radius; col++ {
			x, y := cellToUnits(col, row)
			d := math.Hypot(x-g.CenterX, y-g.CenterY)
			switch {
			case math.Abs(d-g.Radius) < 0.8:
				v.screen.SetContent(originCol+col, originRow+row, '·', nil, styleTrack)
			case col == v.radius && row == v.radius/2:
				v.screen.SetContent(originCol+col, originRow+row, '+', nil, styleDim)
			}
		}
	}
}

func (v *View) drawKnob() {
	k := v.tracker.Knob()
	col := originCol + min(int(k.X), 2*v.radius-1)
	row := originRow + min(int(k.Y/cellHeight), v.radius-1)
	v.screen.SetContent(col, row, '●', nil, styleKnob)
}

func (v *View) drawPanel() {
	v.mu.Lock()
	src := v.src
	notice, hasNotice := v.notice, v.hasNotice
	v.mu.Unlock()

	col := originCol + 2*v.radius + panelGap
	row := originRow

	var (
		x, y      int
		connected bool
		entries   []history.Entry
		st        history.Stats
	)
	if src != nil {
		x, y = src.Current()
		connected = src.Connected()
		entries = src.History()
		st = src.Stats()
	}

	v.text(col, row, "X: "+formatCoord(x)+"   Y: "+formatCoord(y), styleLabel)
	row++
	if connected {
		v.text(col, row, "store: connected", styleOnline)
	} else {
		v.text(col, row, "store: offline", styleError)
	}
	row++
	v.text(col, row, formatStats(st), styleDim)
	row++
	if hasNotice {
		s := styleLabel
		if notice.Level == possync.LevelError {
			s = styleError
		}
		v.text(col, row, notice.Title+": "+notice.Message, s)
	}
	row += 2

	v.text(col, row, fmt.Sprintf("history (%d)", len(entries)), styleLabel)
	row++
	v.text(col, row, "    #      X      Y", styleDim)
	row++
	for _, line := range historyRows(entries, historyRowN) {
		v.text(col, row, line, styleLabel)
		row++
	}
}

func (v *View) text(col, row int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(col, row, r, nil, style)
		col++
	}
}

// formatCoord right-aligns v in five columns, enough for "-1000".
func formatCoord(v int) string {
	s := strconv.Itoa(v)
	if len(s) >= 5 {
		return s
	}
	return strings.Repeat(" ", 5-len(s)) + s
}

// historyRows renders at most limit entries newest first. Each row is
// numbered by its 1-based position in the chronological window, so the
// newest entry carries the highest number. limit <= 0 shows all.
func historyRows(entries []history.Entry, limit int) []string {
	n := len(entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	rows := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		e := entries[n-1-i]
		rows = append(rows, fmt.Sprintf("%5d  %s  %s", n-i, formatCoord(e.X), formatCoord(e.Y)))
	}
	return rows
}

func formatStats(s history.Stats) string {
	if s.Count == 0 {
		return "no samples"
	}
	return fmt.Sprintf("n=%d mean=(%.0f,%.0f) |v| p50=%.0f p90=%.0f p99=%.0f",
		s.Count, s.MeanX, s.MeanY, s.P50, s.P90, s.P99)
}
