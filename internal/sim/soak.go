// Package sim drives a joystick with random drags against a position store
// and measures how the upload path behaves.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/xtding233/joystick-backend/internal/history"
	"github.com/xtding233/joystick-backend/internal/joystick"
	"github.com/xtding233/joystick-backend/internal/possync"
	"github.com/xtding233/joystick-backend/internal/store"
)

var ErrInvalidParams = errors.New("sim: invalid params")

// Params describes one soak run.
type Params struct {
	Drags   int     // number of press-move-release gestures
	Steps   int     // moves per drag
	MaxStep float64 // largest pointer step per move, in control units
	Radius  float64 // control radius, in control units

	HistorySize int // 0 = history.DefaultSize
}

func (p Params) validate() error {
	switch {
	case p.Drags <= 0:
		return fmt.Errorf("%w: drags must be > 0", ErrInvalidParams)
	case p.Steps < 0:
		return fmt.Errorf("%w: steps must be >= 0", ErrInvalidParams)
	case p.MaxStep <= 0:
		return fmt.Errorf("%w: max step must be > 0", ErrInvalidParams)
	case p.Radius <= 0:
		return fmt.Errorf("%w: radius must be > 0", ErrInvalidParams)
	}
	return nil
}

// LatencyStats summarizes upload round trips.
type LatencyStats struct {
	Mean   time.Duration
	StdDev time.Duration
	P50    time.Duration
	P90    time.Duration
	P99    time.Duration
}

type Report struct {
	Drags     int
	Uploads   int
	Failures  int
	Latency   LatencyStats
	Positions history.Stats // over the local window at the end of the run
	Stored    int           // store row count at the end of the run
}

// Run performs p.Drags random-walk drags through a real tracker and sync,
// uploading every emitted position with the spacing guard disabled.
func Run(ctx context.Context, st store.Store, p Params, rng RandomSource) (Report, error) {
	if err := p.validate(); err != nil {
		return Report{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	sy := possync.New(st, possync.Options{HistorySize: p.HistorySize, MinUploadSpacing: -1})
	tr := joystick.NewTracker(sy.SetPosition)
	tr.SetBounds(joystick.Rect{Width: 2 * p.Radius, Height: 2 * p.Radius})

	var (
		rep  Report
		lats []time.Duration
	)
	upload := func(pos joystick.Position) {
		start := time.Now()
		if err := sy.Persist(ctx, pos.X, pos.Y); err != nil {
			rep.Failures++
			return
		}
		rep.Uploads++
		lats = append(lats, time.Since(start))
	}

	// the walk may leave the track but is kept within one radius of it
	lo, hi := -p.Radius, 3*p.Radius
	for d := 0; d < p.Drags; d++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		x, y := p.Radius, p.Radius
		tr.Dispatch(joystick.PhaseStart, joystick.MouseEvent{ClientX: x, ClientY: y})
		upload(tr.Position())
		for s := 0; s < p.Steps; s++ {
			x = clamp(x+(rng.Float64()*2-1)*p.MaxStep, lo, hi)
			y = clamp(y+(rng.Float64()*2-1)*p.MaxStep, lo, hi)
			tr.Dispatch(joystick.PhaseMove, joystick.MouseEvent{ClientX: x, ClientY: y})
			upload(tr.Position())
		}
		tr.Dispatch(joystick.PhaseEnd, nil)
		upload(tr.Position())
		rep.Drags++
	}

	rep.Latency = summarizeLatency(lats)
	rep.Positions = sy.Stats()
	n, err := st.Count(ctx)
	if err != nil {
		return rep, fmt.Errorf("count: %w", err)
	}
	rep.Stored = n
	return rep, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// summarizeLatency uses population variance and interpolated percentiles.
func summarizeLatency(ds []time.Duration) LatencyStats {
	n := len(ds)
	if n == 0 {
		return LatencyStats{}
	}
	xs := make([]float64, n)
	var sum float64
	for i, d := range ds {
		xs[i] = float64(d)
		sum += xs[i]
	}
	mean := sum / float64(n)

	var acc float64
	for _, v := range xs {
		acc += (v - mean) * (v - mean)
	}
	sort.Float64s(xs)

	return LatencyStats{
		Mean:   time.Duration(mean),
		StdDev: time.Duration(math.Sqrt(acc / float64(n))),
		P50:    time.Duration(history.Percentile(xs, 0.50)),
		P90:    time.Duration(history.Percentile(xs, 0.90)),
		P99:    time.Duration(history.Percentile(xs, 0.99)),
	}
}
