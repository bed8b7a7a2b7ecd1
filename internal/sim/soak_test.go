package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/joystick-backend/internal/store"
)

func TestSeededRNGReproducible(t *testing.T) {
	a, b := NewSeededRNG(7), NewSeededRNG(7)
	for i := 0; i < 100; i++ {
		va := a.Float64()
		require.Equal(t, va, b.Float64())
		require.True(t, va >= 0 && va < 1)
	}
	v := DefaultRNG().Float64()
	assert.True(t, v >= 0 && v < 1)
}

func TestRunBoundsStore(t *testing.T) {
	mem := store.NewMemory(0)
	p := Params{Drags: 5, Steps: 20, MaxStep: 15, Radius: 50}

	rep, err := Run(context.Background(), mem, p, NewSeededRNG(1))
	require.NoError(t, err)

	assert.Equal(t, 5, rep.Drags)
	assert.Equal(t, 5*(20+2), rep.Uploads)
	assert.Zero(t, rep.Failures)
	assert.Equal(t, 100, rep.Stored, "retention keeps the newest 100")
	assert.Equal(t, 100, rep.Positions.Count)
	// per-axis rounding can push the magnitude just past 1000
	assert.LessOrEqual(t, rep.Positions.P99, 1000.0+1)
	assert.LessOrEqual(t, rep.Latency.P50, rep.Latency.P99)

	all, err := mem.Recent(context.Background(), 0)
	require.NoError(t, err)
	for _, r := range all {
		require.LessOrEqual(t, abs(r.X), 1000)
		require.LessOrEqual(t, abs(r.Y), 1000)
	}

	// the last gesture ends centred
	recs, err := mem.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 0, recs[0].X)
	assert.Equal(t, 0, recs[0].Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestRunDeterministic(t *testing.T) {
	p := Params{Drags: 3, Steps: 10, MaxStep: 20, Radius: 40, HistorySize: 50}
	a, err := Run(context.Background(), store.NewMemory(0), p, NewSeededRNG(99))
	require.NoError(t, err)
	b, err := Run(context.Background(), store.NewMemory(0), p, NewSeededRNG(99))
	require.NoError(t, err)
	assert.Equal(t, a.Positions, b.Positions)
	assert.Equal(t, 36, a.Stored)
}

func TestRunInvalidParams(t *testing.T) {
	for _, p := range []Params{
		{Drags: 0, Steps: 1, MaxStep: 1, Radius: 1},
		{Drags: 1, Steps: -1, MaxStep: 1, Radius: 1},
		{Drags: 1, Steps: 1, MaxStep: 0, Radius: 1},
		{Drags: 1, Steps: 1, MaxStep: 1, Radius: 0},
	} {
		_, err := Run(context.Background(), store.NewMemory(0), p, nil)
		assert.True(t, errors.Is(err, ErrInvalidParams), "%+v", p)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, store.NewMemory(0), Params{Drags: 1, Steps: 1, MaxStep: 1, Radius: 1}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarizeLatency(t *testing.T) {
	assert.Equal(t, LatencyStats{}, summarizeLatency(nil))

	s := summarizeLatency([]time.Duration{1 * time.Millisecond, 3 * time.Millisecond})
	assert.Equal(t, 2*time.Millisecond, s.Mean)
	assert.Equal(t, time.Millisecond, s.StdDev)
	assert.Equal(t, 2*time.Millisecond, s.P50)
}
