package timeline

import (
	"sort"
	"time"
)

// Segment is the classification of one tick interval.
type Segment struct {
	Start   time.Time
	End     time.Time
	Bright  bool // inside the data span
	Dark    bool // inside a night
	Above   bool // target above the altitude threshold
	Vetoed  bool // inside a confirmed moon veto
	Visible bool
}

type mergeOptions struct {
	coalesce bool
	trace    func(Segment)
}

// MergeOption configures Merge.
type MergeOption func(*mergeOptions)

// WithCoalesce joins touching visible segments into one window.
func WithCoalesce() MergeOption {
	return func(o *mergeOptions) { o.coalesce = true }
}

// WithTrace calls fn for every tick interval, visible or not.
func WithTrace(fn func(Segment)) MergeOption {
	return func(o *mergeOptions) { o.trace = fn }
}

// EffectiveStop returns the end of the analysed span: stop itself when it
// falls before the end of the last night, otherwise the end of that night.
func EffectiveStop(stop time.Time, nights Windows) time.Time {
	last, ok := nights.Last()
	if !ok || last.OpenEnd {
		return stop
	}
	if stop.Before(last.End) {
		return stop
	}
	return last.End
}

// Merge sweeps the sorted endpoints of every list and returns the
// [t1, t2] tick intervals whose midpoint lies in span, in a night, in an
// above-horizon window and outside every veto window. span must be bounded.
func Merge(span Window, nights, above, veto Windows, opts ...MergeOption) Windows {
	var o mergeOptions
	for _, opt := range opts {
		opt(&o)
	}

	ticks := make([]time.Time, 0, 2+2*(len(nights)+len(above)+len(veto)))
	ticks = append(ticks, span.Start, span.End)
	for _, list := range []Windows{nights, above, veto} {
		for _, w := range list {
			if !w.OpenStart {
				ticks = append(ticks, w.Start)
			}
			if !w.OpenEnd {
				ticks = append(ticks, w.End)
			}
		}
	}
	sort.Slice(ticks, func(i, j int) bool {
		return ticks[i].Before(ticks[j])
	})

	var visible Windows
	for i := 0; i+1 < len(ticks); i++ {
		t1, t2 := ticks[i], ticks[i+1]
		if t1.Equal(t2) {
			continue
		}
		tm := Midpoint(t1, t2)
		seg := Segment{
			Start:  t1,
			End:    t2,
			Bright: span.Contains(tm),
			Dark:   nights.Contains(tm),
			Above:  above.Contains(tm),
			Vetoed: veto.Contains(tm),
		}
		seg.Visible = seg.Bright && seg.Dark && seg.Above && !seg.Vetoed
		if o.trace != nil {
			o.trace(seg)
		}
		if seg.Visible {
			visible = append(visible, Bounded(t1, t2))
		}
	}

	if o.coalesce {
		return visible.Coalesce()
	}
	return visible
}
