package joystick

import "math"

// Scale is the magnitude reported at the edge of the track.
const Scale = 1000

// Rect is the control's rendered bounding box in page coordinates.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Contains reports whether the page point (x, y) falls inside the box.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Left+r.Width && y >= r.Top && y < r.Top+r.Height
}

// Point is a knob position relative to the control's top-left corner.
type Point struct {
	X, Y float64
}

// Position is the normalized deflection; both axes lie in [-Scale, Scale].
type Position struct {
	X, Y int
}

// Geometry describes the circular track, relative to the control's top-left.
type Geometry struct {
	CenterX float64
	CenterY float64
	Radius  float64
}

// GeometryFor treats the control as a circle inscribed in its box, sized by width.
func GeometryFor(r Rect) Geometry {
	radius := r.Width / 2
	if radius < 0 {
		radius = 0
	}
	return Geometry{CenterX: radius, CenterY: radius, Radius: radius}
}

// Valid reports whether the geometry has been measured.
func (g Geometry) Valid() bool {
	return g.Radius > 0
}

// Center returns the track's center as a Point.
func (g Geometry) Center() Point {
	return Point{X: g.CenterX, Y: g.CenterY}
}

// Clamp keeps (x, y) on or inside the track. A point outside the circle is
// projected onto the boundary at the same angle.
func (g Geometry) Clamp(x, y float64) Point {
	dx := x - g.CenterX
	dy := y - g.CenterY
	if math.Sqrt(dx*dx+dy*dy) <= g.Radius {
		return Point{X: x, Y: y}
	}
	angle := math.Atan2(dy, dx)
	return Point{
		X: g.CenterX + g.Radius*math.Cos(angle),
		Y: g.CenterY + g.Radius*math.Sin(angle),
	}
}

// Normalize clamps (x, y) and scales its offset from the center to
// [-Scale, Scale]. The vertical axis is inverted so up is positive.
// The zero geometry maps everything to the origin.
func (g Geometry) Normalize(x, y float64) (Position, Point) {
	if !g.Valid() {
		return Position{}, g.Center()
	}
	p := g.Clamp(x, y)
	nx := math.Round((p.X - g.CenterX) / g.Radius * Scale)
	ny := math.Round((g.CenterY - p.Y) / g.Radius * Scale)
	return Position{X: clampAxis(nx), Y: clampAxis(ny)}, p
}

// clampAxis guards against float drift at the boundary (cos/sin of the projected point).
// NaN maps to the centre.
func clampAxis(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if v > Scale {
		return Scale
	}
	if v < -Scale {
		return -Scale
	}
	return int(v)
}
