package visibility

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/litescript/ls-visibility/internal/astro"
	"github.com/litescript/ls-visibility/internal/ephem"
	"github.com/litescript/ls-visibility/internal/logging"
	"github.com/litescript/ls-visibility/internal/timeline"
)

// Request describes one visibility computation. Stop is the end of the
// available data; Config.Depth may shorten it.
type Request struct {
	Name   string
	Site   astro.Site
	Target Target
	Start  time.Time
	Stop   time.Time
	Config Config
}

// ResultName returns Name, or "<target>_<site>" when Name is empty.
func (req Request) ResultName() string {
	if req.Name != "" {
		return req.Name
	}
	return req.Target.Name + "_" + req.Site.Name
}

// span returns the data window after the depth cap.
func (req Request) span() (time.Time, time.Time) {
	stop := req.Stop
	if d := req.Config.DepthDuration(); d > 0 {
		if capped := req.Start.Add(d); capped.Before(stop) {
			stop = capped
		}
	}
	return req.Start, stop
}

func (req Request) validate() error {
	if err := req.Config.Validate(); err != nil {
		return err
	}
	if err := req.Target.Validate(); err != nil {
		return err
	}
	if req.Stop.Before(req.Start) {
		return fmt.Errorf("%w: %s < %s", ErrInvalidSpan,
			req.Stop.Format(time.RFC3339), req.Start.Format(time.RFC3339))
	}
	return nil
}

type computeOptions struct {
	logger *slog.Logger
}

// Option configures Compute.
type Option func(*computeOptions)

// WithLogger sets the logger that receives the tick table at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *computeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Compute finds the nights, above-horizon windows and Moon vetoes for req and
// merges them into the true-visibility windows.
func Compute(svc ephem.Service, req Request, opts ...Option) (*Result, error) {
	o := computeOptions{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	start, stop := req.span()
	if req.Config.ForceVisible {
		return forced(req, start, stop), nil
	}

	cfg := req.Config
	log := o.logger.With("name", req.ResultName())

	nightAtStart, nights, err := FindNights(svc, req.Site, start, stop, cfg.Skip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.ResultName(), err)
	}

	moon, err := FindMoonVeto(svc, req.Site, req.Target, start, stop, MoonCriteria{
		MaxAlt:        cfg.MoonMaxAlt,
		MinDist:       cfg.MoonMinDist,
		MaxLight:      cfg.MoonMaxLight,
		HaloThreshold: cfg.HaloThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.ResultName(), err)
	}

	aboveAtStart, above, err := FindAboveHorizon(svc, req.Site, req.Target, start, stop, cfg.AltMin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.ResultName(), err)
	}

	stop = timeline.EffectiveStop(stop, nights)

	mergeOpts := []timeline.MergeOption{}
	if cfg.Coalesce {
		mergeOpts = append(mergeOpts, timeline.WithCoalesce())
	}
	if log.Enabled(context.Background(), slog.LevelDebug) {
		mergeOpts = append(mergeOpts, timeline.WithTrace(func(s timeline.Segment) {
			log.Debug("tick",
				"t1", s.Start.UTC().Format(timeline.TimeFormat),
				"t2", s.End.UTC().Format(timeline.TimeFormat),
				"bright", s.Bright, "dark", s.Dark, "above", s.Above,
				"moon", s.Vetoed, "visible", s.Visible)
		}))
	}
	visible := timeline.Merge(timeline.Bounded(start, stop), nights, above, moon.Vetoes(), mergeOpts...)

	r := newResult(resultParts{
		name:         req.ResultName(),
		site:         req.Site,
		target:       req.Target,
		cfg:          cfg,
		origin:       OriginComputed,
		start:        start,
		stop:         stop,
		nights:       nights,
		above:        above,
		moon:         moon,
		visible:      visible,
		nightAtStart: nightAtStart,
		aboveAtStart: aboveAtStart,
	})
	log.Debug("visibility computed",
		"nights", len(nights), "above", len(above), "moon", len(moon),
		"vetoes", len(moon.Vetoes()), "visible", len(visible),
		"tonight", r.VisibleTonight(), "at_trigger", r.VisibleAtTrigger())
	return r, nil
}

// forced returns a result where every constraint is lifted over [start, stop].
func forced(req Request, start, stop time.Time) *Result {
	all := timeline.Single(start, stop)
	return newResult(resultParts{
		name:         req.ResultName(),
		site:         req.Site,
		target:       req.Target,
		cfg:          req.Config,
		origin:       OriginForced,
		start:        start,
		stop:         stop,
		nights:       all,
		above:        all,
		visible:      all,
		nightAtStart: true,
		aboveAtStart: true,
	})
}
