package ephem

import (
	"math"
	"time"
)

// crossing is the sense of a threshold crossing.
type crossing int

const (
	upward crossing = iota
	downward
)

// altitudeFunc returns an altitude in degrees at t.
type altitudeFunc func(t time.Time) float64

// grid describes how a crossing is searched: gridPoints samples over span,
// then bisection down to tolerance.
type grid struct {
	points    int
	span      time.Duration
	tolerance time.Duration
}

// find returns the crossing of threshold by f nearest to from in direction
// dir, within g.span. A bracketing pair of grid samples is located first and
// refined by bisection.
func (g grid) find(f altitudeFunc, from time.Time, threshold float64, sense crossing, dir Direction) (time.Time, bool) {
	n := g.points
	if n < 2 {
		n = 2
	}
	step := g.span / time.Duration(n-1)

	origin := from
	if dir == Previous {
		origin = from.Add(-g.span)
	}
	times := make([]time.Time, n)
	values := make([]float64, n)
	for i := range times {
		times[i] = origin.Add(time.Duration(i) * step)
		values[i] = f(times[i]) - threshold
	}

	match := func(i int) bool {
		a, b := values[i], values[i+1]
		if sense == upward {
			return a < 0 && b >= 0
		}
		return a >= 0 && b < 0
	}

	if dir == Previous {
		for i := n - 2; i >= 0; i-- {
			if match(i) {
				return g.bisect(f, times[i], times[i+1], threshold, values[i]), true
			}
		}
		return time.Time{}, false
	}
	for i := 0; i < n-1; i++ {
		if match(i) {
			return g.bisect(f, times[i], times[i+1], threshold, values[i]), true
		}
	}
	return time.Time{}, false
}

// bisect narrows [lo, hi] around the sign change of f - threshold.
func (g grid) bisect(f altitudeFunc, lo, hi time.Time, threshold, loValue float64) time.Time {
	loNeg := loValue < 0
	for hi.Sub(lo) > g.tolerance {
		mid := lo.Add(hi.Sub(lo) / 2)
		v := f(mid) - threshold
		if (v < 0) == loNeg {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo.Add(hi.Sub(lo) / 2)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
