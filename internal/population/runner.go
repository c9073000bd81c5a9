package population

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/litescript/ls-visibility/internal/astro"
	"github.com/litescript/ls-visibility/internal/ephem"
	"github.com/litescript/ls-visibility/internal/logging"
	"github.com/litescript/ls-visibility/internal/metrics"
	"github.com/litescript/ls-visibility/internal/visibility"
)

// DefaultDuration is the data window following each trigger date.
const DefaultDuration = 3 * 24 * time.Hour

// Runner computes the visibility of every (source, site) pair.
type Runner struct {
	Ephemeris ephem.Service

	// Duration is the data window after each trigger; zero means
	// DefaultDuration.
	Duration time.Duration

	// Workers bounds the parallel computations; <= 0 means one per CPU.
	Workers int

	// UnitTimeout discards a computation running longer; zero disables it.
	UnitTimeout time.Duration

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// UnitName returns the name of the unit for source id at site loc.
func UnitName(id int, loc string) string {
	return strconv.Itoa(id) + "_" + loc
}

// Run computes every unit with cfg and returns them in source then site
// order. Failed units are recorded in the catalog, not returned as errors;
// Run itself only fails when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, sources []Source, sites []astro.Site, cfg visibility.Config) (*Catalog, error) {
	if r.Ephemeris == nil {
		return nil, errors.New("population runner needs an ephemeris")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := r.Logger
	if log == nil {
		log = logging.Discard()
	}
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	duration := r.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}

	entries := make([]Entry, len(sources)*len(sites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, src := range sources {
		for j, site := range sites {
			slot := &entries[i*len(sites)+j]
			req := visibility.Request{
				Name:   UnitName(src.ID, site.Name),
				Site:   site,
				Target: visibility.Target{Name: strconv.Itoa(src.ID), RADeg: src.RADeg, DecDeg: src.DecDeg},
				Start:  src.Date,
				Stop:   src.Date.Add(duration),
				Config: cfg,
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				*slot = r.runUnit(gctx, log, src.ID, req)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("population run: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("population run: %w", err)
	}

	cat := NewCatalog()
	cat.Entries = entries
	log.Info("population done", "run_id", cat.RunID, "units", len(entries), "outcomes", cat.Counts())
	return cat, nil
}

type unitResult struct {
	res *visibility.Result
	err error
}

func (r *Runner) runUnit(ctx context.Context, log *slog.Logger, id int, req visibility.Request) Entry {
	entry := Entry{Name: req.Name, Source: id, Site: req.Site.Name}
	start := time.Now()

	if r.UnitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.UnitTimeout)
		defer cancel()
	}

	// The computation cannot be interrupted; on timeout its result is dropped.
	done := make(chan unitResult, 1)
	go func() {
		res, err := visibility.Compute(r.Ephemeris, req)
		done <- unitResult{res, err}
	}()

	var out unitResult
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}
	elapsed := time.Since(start)

	switch {
	case out.err == nil:
		entry.Outcome = metrics.OutcomeOK
		entry.Result = out.res
	case errors.Is(out.err, visibility.ErrNoNight):
		entry.Outcome = metrics.OutcomeNoNight
	case errors.Is(out.err, context.DeadlineExceeded):
		entry.Outcome = metrics.OutcomeTimeout
	default:
		entry.Outcome = metrics.OutcomeError
	}
	if out.err != nil {
		entry.Error = out.err.Error()
	}
	r.Metrics.Observe(entry.Outcome, elapsed, len(entry.visible()))

	attrs := []any{"unit", entry.Name, "outcome", entry.Outcome, "elapsed", elapsed}
	switch entry.Outcome {
	case metrics.OutcomeOK:
		log.Debug("unit computed", append(attrs, "visible_tonight", out.res.VisibleTonight())...)
	case metrics.OutcomeError:
		log.Error("unit failed", append(attrs, "error", out.err)...)
	default:
		log.Warn("unit skipped", append(attrs, "error", out.err)...)
	}
	return entry
}
