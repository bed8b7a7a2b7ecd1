package history

import (
	"math"
	"sort"
)

// Stats summarizes a history window.
type Stats struct {
	Count int
	MeanX float64
	MeanY float64

	// magnitude = sqrt(x^2 + y^2), 0..1000
	MeanMag float64
	P50     float64
	P90     float64
	P99     float64
}

// Summarize computes means and magnitude percentiles over entries.
func Summarize(entries []Entry) Stats {
	n := len(entries)
	if n == 0 {
		return Stats{}
	}

	var sx, sy, sm float64
	mags := make([]float64, n)
	for i, e := range entries {
		sx += float64(e.X)
		sy += float64(e.Y)
		mags[i] = math.Hypot(float64(e.X), float64(e.Y))
		sm += mags[i]
	}
	sort.Float64s(mags)

	return Stats{
		Count:   n,
		MeanX:   sx / float64(n),
		MeanY:   sy / float64(n),
		MeanMag: sm / float64(n),
		P50:     Percentile(mags, 0.50),
		P90:     Percentile(mags, 0.90),
		P99:     Percentile(mags, 0.99),
	}
}

// Percentile interpolates linearly between the closest ranks of sorted.
// sorted must be ascending; an empty slice yields 0.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	pos := p * float64(n-1)
	i := int(math.Floor(pos))
	f := pos - float64(i)
	if i+1 >= n {
		return sorted[i]
	}
	return sorted[i]*(1-f) + sorted[i+1]*f
}
