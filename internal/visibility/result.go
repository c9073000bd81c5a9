package visibility

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-visibility/internal/astro"
	"github.com/litescript/ls-visibility/internal/timeline"
)

// ErrInconsistent is returned for malformed windows or flags that disagree
// with them.
var ErrInconsistent = errors.New("inconsistent visibility result")

// Origin records how a Result was built.
type Origin int

const (
	OriginComputed Origin = iota // from the ephemeris
	OriginForced                 // force_visible bypass or unconstrained default
	OriginPreset                 // windows supplied by an input file
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginComputed:
		return "computed"
	case OriginForced:
		return "forced"
	case OriginPreset:
		return "preset"
	default:
		return "unknown"
	}
}

// ParseOrigin parses an origin name.
func ParseOrigin(s string) (Origin, error) {
	switch s {
	case "computed":
		return OriginComputed, nil
	case "forced":
		return OriginForced, nil
	case "preset":
		return OriginPreset, nil
	default:
		return 0, fmt.Errorf("unknown origin %q", s)
	}
}

// Result is the immutable outcome of a visibility computation. Accessors
// return copies.
type Result struct {
	name   string
	site   astro.Site
	target Target
	cfg    Config
	origin Origin

	start, stop time.Time

	nights  timeline.Windows
	above   timeline.Windows
	moon    MoonPeriods
	visible timeline.Windows

	nightAtStart bool
	aboveAtStart bool

	everAbove bool
	tonight   bool
	atTrigger bool
}

// resultParts carries everything needed to assemble a Result.
type resultParts struct {
	name         string
	site         astro.Site
	target       Target
	cfg          Config
	origin       Origin
	start, stop  time.Time
	nights       timeline.Windows
	above        timeline.Windows
	moon         MoonPeriods
	visible      timeline.Windows
	nightAtStart bool
	aboveAtStart bool
}

// newResult assembles a Result and derives its flags.
func newResult(p resultParts) *Result {
	r := &Result{
		name:         p.name,
		site:         p.site,
		target:       p.target,
		cfg:          p.cfg,
		origin:       p.origin,
		start:        p.start,
		stop:         p.stop,
		nights:       p.nights.Clone(),
		above:        p.above.Clone(),
		moon:         p.moon.Clone(),
		visible:      p.visible.Clone(),
		nightAtStart: p.nightAtStart,
		aboveAtStart: p.aboveAtStart,
	}
	r.everAbove, r.tonight, r.atTrigger = deriveFlags(r.start, r.above, r.visible)
	return r
}

// deriveFlags is the single place flags are computed.
func deriveFlags(start time.Time, above, visible timeline.Windows) (everAbove, tonight, atTrigger bool) {
	everAbove = !above.Empty()
	tonight = !visible.Empty()
	if first, ok := visible.First(); ok {
		atTrigger = first.Contains(start)
	}
	return everAbove, tonight, atTrigger
}

// Name identifies the result, usually "<target>_<site>".
func (r *Result) Name() string { return r.name }

func (r *Result) Site() astro.Site { return r.site }
func (r *Result) Target() Target   { return r.target }
func (r *Result) Config() Config   { return r.cfg }
func (r *Result) Origin() Origin   { return r.origin }

// Start is the beginning of the data window.
func (r *Result) Start() time.Time { return r.start }

// Stop is the effective end of the data window.
func (r *Result) Stop() time.Time { return r.stop }

// Nights returns the astronomical night windows.
func (r *Result) Nights() timeline.Windows { return r.nights.Clone() }

// AboveHorizon returns the windows with the target above the minimum altitude.
func (r *Result) AboveHorizon() timeline.Windows { return r.above.Clone() }

// MoonPeriods returns every Moon altitude candidate with its verdicts.
func (r *Result) MoonPeriods() MoonPeriods { return r.moon.Clone() }

// MoonUp returns the windows with the Moon above its altitude threshold.
func (r *Result) MoonUp() timeline.Windows { return r.moon.Windows() }

// MoonVeto returns the confirmed Moon veto windows.
func (r *Result) MoonVeto() timeline.Windows { return r.moon.Vetoes() }

// Visible returns the true-visibility windows.
func (r *Result) Visible() timeline.Windows { return r.visible.Clone() }

// NightAtStart reports whether the data window opens during a night.
func (r *Result) NightAtStart() bool { return r.nightAtStart }

// AboveAtStart reports whether the target is above the minimum altitude at
// the start of the data window.
func (r *Result) AboveAtStart() bool { return r.aboveAtStart }

// EverAboveHorizon reports whether the target rises above the minimum
// altitude at all.
func (r *Result) EverAboveHorizon() bool { return r.everAbove }

// VisibleTonight reports whether at least one true-visibility window exists.
// Simulations are run only when it holds.
func (r *Result) VisibleTonight() bool { return r.tonight }

// VisibleAtTrigger reports whether the start instant lies in the first
// true-visibility window.
func (r *Result) VisibleAtTrigger() bool { return r.atTrigger }

// Validate checks that every list is well formed.
func (r *Result) Validate() error {
	lists := []struct {
		name string
		ws   timeline.Windows
	}{
		{"nights", r.nights},
		{"above", r.above},
		{"moon", r.moon.Windows()},
		{"visible", r.visible},
	}
	for _, l := range lists {
		if err := l.ws.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInconsistent, l.name, err)
		}
	}
	if r.stop.Before(r.start) {
		return fmt.Errorf("%w: stop %s before start %s", ErrInconsistent, r.stop, r.start)
	}
	return nil
}
