package visibility

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-visibility/internal/ephem"
	"github.com/litescript/ls-visibility/internal/timeline"
)

// Source is one way of obtaining a Result. The set of implementations is
// closed: Computed, Recorded, Preset and Default.
type Source interface {
	build(svc ephem.Service, opts []Option) (*Result, error)
}

// Computed runs the finders against the ephemeris.
type Computed struct {
	Request Request
}

func (s Computed) build(svc ephem.Service, opts []Option) (*Result, error) {
	if svc == nil {
		return nil, errors.New("computed visibility needs an ephemeris")
	}
	return Compute(svc, s.Request, opts...)
}

// Recorded rebuilds a stored result.
type Recorded struct {
	Record Record
}

func (s Recorded) build(ephem.Service, []Option) (*Result, error) {
	return s.Record.Result()
}

// Preset takes the windows from an external input. The Moon is not
// considered; the flags are derived from the windows as usual.
type Preset struct {
	Request Request
	Nights  timeline.Windows
	Above   timeline.Windows
	Visible timeline.Windows
}

func (s Preset) build(ephem.Service, []Option) (*Result, error) {
	if err := s.Request.validate(); err != nil {
		return nil, err
	}
	start, stop := s.Request.span()
	r := newResult(resultParts{
		name:         s.Request.ResultName(),
		site:         s.Request.Site,
		target:       s.Request.Target,
		cfg:          s.Request.Config,
		origin:       OriginPreset,
		start:        start,
		stop:         stop,
		nights:       s.Nights,
		above:        s.Above,
		visible:      s.Visible,
		nightAtStart: s.Nights.Contains(start),
		aboveAtStart: s.Above.Contains(start),
	})
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("preset %q: %w", r.Name(), err)
	}
	return r, nil
}

// Default is the unconstrained result: visible over the whole data window.
type Default struct {
	Request Request
}

func (s Default) build(ephem.Service, []Option) (*Result, error) {
	if s.Request.Stop.Before(s.Request.Start) {
		return nil, fmt.Errorf("%w: %s < %s", ErrInvalidSpan,
			s.Request.Stop.Format(time.RFC3339), s.Request.Start.Format(time.RFC3339))
	}
	start, stop := s.Request.span()
	return forced(s.Request, start, stop), nil
}

// Build obtains a Result from src. svc is only used by Computed and may be
// nil otherwise.
func Build(src Source, svc ephem.Service, opts ...Option) (*Result, error) {
	if src == nil {
		return nil, errors.New("nil visibility source")
	}
	return src.build(svc, opts)
}
