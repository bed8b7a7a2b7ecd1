package joystick

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometryFor(t *testing.T) {
	g := GeometryFor(Rect{Left: 40, Top: 15, Width: 200, Height: 200})
	assert.Equal(t, Geometry{CenterX: 100, CenterY: 100, Radius: 100}, g)
	assert.True(t, g.Valid())

	assert.False(t, GeometryFor(Rect{}).Valid())
}

func TestNormalizeScenarios(t *testing.T) {
	g := Geometry{CenterX: 100, CenterY: 100, Radius: 100}

	cases := []struct {
		name string
		x, y float64
		want Position
		knob Point
	}{
		{"center", 100, 100, Position{0, 0}, Point{100, 100}},
		{"top edge", 100, 0, Position{0, 1000}, Point{100, 0}},
		{"bottom edge", 100, 200, Position{0, -1000}, Point{100, 200}},
		{"outside right", 300, 100, Position{1000, 0}, Point{200, 100}},
		{"outside left", -50, 100, Position{-1000, 0}, Point{0, 100}},
		{"half right", 150, 100, Position{500, 0}, Point{150, 100}},
		{"up left inside", 70, 60, Position{-300, 400}, Point{70, 60}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, knob := g.Normalize(tc.x, tc.y)
			assert.Equal(t, tc.want, got)
			assert.InDelta(t, tc.knob.X, knob.X, 1e-9)
			assert.InDelta(t, tc.knob.Y, knob.Y, 1e-9)
		})
	}
}

func TestNormalizeInsideMatchesFormula(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 0))
	g := Geometry{CenterX: 160, CenterY: 160, Radius: 160}

	for i := 0; i < 5000; i++ {
		x := rng.Float64() * 320
		y := rng.Float64() * 320
		dx, dy := x-g.CenterX, y-g.CenterY
		if math.Sqrt(dx*dx+dy*dy) > g.Radius {
			continue
		}
		got, _ := g.Normalize(x, y)
		want := Position{
			X: int(math.Round((x - g.CenterX) / g.Radius * 1000)),
			Y: int(math.Round((g.CenterY - y) / g.Radius * 1000)),
		}
		require.Equal(t, want, got, "point (%f, %f)", x, y)
	}
}

func TestNormalizeOutsideLandsOnBoundary(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 0))
	g := Geometry{CenterX: 50, CenterY: 50, Radius: 50}

	for i := 0; i < 5000; i++ {
		x := rng.Float64()*1000 - 500
		y := rng.Float64()*1000 - 500
		dx, dy := x-g.CenterX, y-g.CenterY
		if math.Sqrt(dx*dx+dy*dy) <= g.Radius {
			continue
		}
		got, knob := g.Normalize(x, y)

		kx, ky := knob.X-g.CenterX, knob.Y-g.CenterY
		require.InDelta(t, g.Radius, math.Hypot(kx, ky), 1e-9)
		require.InDelta(t, math.Atan2(dy, dx), math.Atan2(ky, kx), 1e-9)

		// rounding each axis moves the magnitude by at most ~0.71
		require.InDelta(t, 1000, math.Hypot(float64(got.X), float64(got.Y)), 1)
		require.LessOrEqual(t, abs(got.X), 1000)
		require.LessOrEqual(t, abs(got.Y), 1000)
	}
}

func TestNormalizeUnmeasured(t *testing.T) {
	got, knob := Geometry{}.Normalize(30, 40)
	assert.Equal(t, Position{}, got)
	assert.Equal(t, Point{}, knob)
}

func TestRectContains(t *testing.T) {
	r := Rect{Left: 10, Top: 10, Width: 20, Height: 20}
	assert.True(t, r.Contains(10, 10))
	assert.True(t, r.Contains(29.5, 29.5))
	assert.False(t, r.Contains(30, 15))
	assert.False(t, r.Contains(5, 15))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestNormalizeNaN(t *testing.T) {
	g := Geometry{CenterX: 100, CenterY: 100, Radius: 100}
	got, _ := g.Normalize(math.NaN(), 50)
	assert.LessOrEqual(t, abs(got.X), Scale)
	assert.LessOrEqual(t, abs(got.Y), Scale)
	assert.Equal(t, 0, clampAxis(math.NaN()))
}
