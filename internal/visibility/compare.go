package visibility

import (
	"fmt"
	"time"
)

// DefaultTolerance is the allowed difference on window endpoints in Compare.
const DefaultTolerance = 5 * time.Second

// Comparison is the outcome of Compare.
type Comparison struct {
	Matching bool
	Reasons  []string
}

func (c *Comparison) fail(format string, args ...any) {
	c.Matching = false
	c.Reasons = append(c.Reasons, fmt.Sprintf(format, args...))
}

// Compare checks got against a reference result. The flags must agree and got
// must have at most one visible window; when both are visible tonight the
// first visible windows must agree within tolerance.
func Compare(got, ref *Result, tolerance time.Duration) Comparison {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	c := Comparison{Matching: true}

	if got.EverAboveHorizon() != ref.EverAboveHorizon() {
		c.fail("ever above horizon: %v, reference %v", got.EverAboveHorizon(), ref.EverAboveHorizon())
	}
	if got.VisibleTonight() != ref.VisibleTonight() {
		c.fail("visible tonight: %v, reference %v", got.VisibleTonight(), ref.VisibleTonight())
	}
	if got.VisibleAtTrigger() != ref.VisibleAtTrigger() {
		c.fail("visible at trigger: %v, reference %v", got.VisibleAtTrigger(), ref.VisibleAtTrigger())
	}
	if n := len(got.visible); n > 1 {
		c.fail("%d visible windows, expected at most one", n)
	}
	if !c.Matching || !got.EverAboveHorizon() || !got.VisibleTonight() {
		return c
	}

	w, _ := got.visible.First()
	wref, _ := ref.visible.First()
	if !endpointMatch(w.Start, w.OpenStart, wref.Start, wref.OpenStart, tolerance) ||
		!endpointMatch(w.End, w.OpenEnd, wref.End, wref.OpenEnd, tolerance) {
		c.fail("visible window %s, reference %s", w, wref)
	}
	return c
}

func endpointMatch(t time.Time, open bool, ref time.Time, refOpen bool, tolerance time.Duration) bool {
	if open || refOpen {
		return open == refOpen
	}
	d := t.Sub(ref)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
