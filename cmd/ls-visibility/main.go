// Command ls-visibility computes when a transient source can be observed from
// a ground-based site: night, altitude and Moon constraints over a few days
// after the trigger.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/litescript/ls-visibility/internal/astro"
	"github.com/litescript/ls-visibility/internal/config"
	"github.com/litescript/ls-visibility/internal/ephem"
	"github.com/litescript/ls-visibility/internal/logging"
	"github.com/litescript/ls-visibility/internal/metrics"
	"github.com/litescript/ls-visibility/internal/population"
	"github.com/litescript/ls-visibility/internal/ui"
	"github.com/litescript/ls-visibility/internal/version"
	"github.com/litescript/ls-visibility/internal/visibility"
)

const usage = `usage: ls-visibility <command> [flags]

commands:
  compute      visibility of one source at one site
  population   visibilities of a generated population at every site
  show         browse a catalog or print a stored result
  version      print the version
`

// errMismatch reports a computed result that disagrees with its reference.
var errMismatch = errors.New("result does not match reference")

// common holds the flags shared by every command.
type common struct {
	configPath  string
	logLevel    string
	logFormat   string
	metricsAddr string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file (built-in sites and presets if empty)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	fs.StringVar(&c.logFormat, "log-format", "auto", "Log format (text, json, auto)")
	fs.StringVar(&c.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}

// env is what a command needs once its flags are parsed.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func (c *common) setup() (*env, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	format := logging.ParseFormat(c.logFormat)
	if c.logFormat == "auto" && !term.IsTerminal(int(os.Stderr.Fd())) {
		format = logging.FormatJSON
	}

	reg := prometheus.NewRegistry()
	return &env{
		cfg:      cfg,
		logger:   logging.New(logging.ParseLevel(level), logging.WithFormat(format)),
		registry: reg,
		metrics:  metrics.New(reg),
	}, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "compute":
		err = runCompute(ctx, os.Args[2:])
	case "population":
		err = runPopulation(ctx, os.Args[2:])
	case "show":
		err = runShow(os.Args[2:])
	case "version":
		fmt.Println("ls-visibility", version.Version)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// serveMetrics starts the metrics endpoint when addr is set. The returned
// function shuts it down.
func serveMetrics(addr string, e *env) func() {
	if addr == "" {
		return func() {}
	}
	srv := &http.Server{Addr: addr, Handler: metrics.Handler(e.registry), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("metrics server failed", "addr", addr, "err", err)
		}
	}()
	e.logger.Info("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// Time layouts accepted on the command line, all read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

func runCompute(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("compute", flag.ContinueOnError)
	var c common
	c.register(fs)
	obs := fs.String("obs", "", "Observatory (configured default if empty)")
	loc := fs.String("loc", "North", "Site within the observatory")
	name := fs.String("name", "target", "Target name")
	ra := fs.Float64("ra", 0, "Right ascension in degrees")
	dec := fs.Float64("dec", 0, "Declination in degrees")
	startStr := fs.String("start", "", "Trigger time (UTC, e.g. 2028-03-10 12:00:00); now if empty")
	stopStr := fs.String("stop", "", "End of the data window (UTC); start + duration if empty")
	duration := fs.Duration("duration", population.DefaultDuration, "Data window length when -stop is not given")
	preset := fs.String("preset", "default", "Visibility preset")
	force := fs.Bool("force", false, "Skip every constraint and report the whole window as visible")
	outDir := fs.String("out", "", "Write the result into this directory")
	format := fs.String("format", "json", "Output file format (json, yaml)")
	refPath := fs.String("ref", "", "Compare against a stored reference result")
	tolerance := fs.Duration("tolerance", visibility.DefaultTolerance, "Window endpoint tolerance for -ref")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := c.setup()
	if err != nil {
		return err
	}
	defer serveMetrics(c.metricsAddr, e)()
	log := e.logger

	site, err := e.cfg.Site(*obs, *loc)
	if err != nil {
		return err
	}
	vcfg, err := e.cfg.Preset(*preset)
	if err != nil {
		return err
	}
	if *force {
		vcfg.ForceVisible = true
	}

	start := time.Now().UTC().Truncate(time.Second)
	if *startStr != "" {
		if start, err = parseTime(*startStr); err != nil {
			return err
		}
	}
	stop := start.Add(*duration)
	if *stopStr != "" {
		if stop, err = parseTime(*stopStr); err != nil {
			return err
		}
	}

	req := visibility.Request{
		Site:   site,
		Target: visibility.Target{Name: *name, RADeg: *ra, DecDeg: *dec},
		Start:  start,
		Stop:   stop,
		Config: vcfg,
	}
	eph := ephem.New(e.cfg.Ephemeris.Options()...)

	began := time.Now()
	res, err := computeWithContext(ctx, eph, req, log)
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, visibility.ErrNoNight):
		outcome = metrics.OutcomeNoNight
	case err != nil:
		outcome = metrics.OutcomeError
	}
	visible := 0
	if res != nil {
		visible = len(res.Visible())
	}
	e.metrics.Observe(outcome, time.Since(began), visible)
	if err != nil {
		log.Error("compute failed", "target", *name, "site", site.Name, "err", err)
		return err
	}

	if err := printResult(os.Stdout, res); err != nil {
		return err
	}
	if *outDir != "" {
		path, err := visibility.WriteFile(*outDir, res, *format)
		if err != nil {
			return err
		}
		log.Info("result written", "path", path)
	}

	if *refPath != "" {
		ref, err := visibility.ReadFile(*refPath)
		if err != nil {
			return err
		}
		cmp := visibility.Compare(res, ref, *tolerance)
		if !cmp.Matching {
			for _, reason := range cmp.Reasons {
				fmt.Fprintf(os.Stdout, " mismatch: %s\n", reason)
			}
			return fmt.Errorf("%w %s", errMismatch, *refPath)
		}
		fmt.Fprintf(os.Stdout, " matches %s\n", *refPath)
	}
	return nil
}

// computeWithContext runs a single computation, giving up when ctx ends.
func computeWithContext(ctx context.Context, svc ephem.Service, req visibility.Request, log *slog.Logger) (*visibility.Result, error) {
	type outcome struct {
		res *visibility.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := visibility.Build(visibility.Computed{Request: req}, svc, visibility.WithLogger(log))
		done <- outcome{res, err}
	}()
	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// printResult renders r for a terminal, or as the plain report otherwise.
func printResult(w io.Writer, r *visibility.Result) error {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		width, _, err := term.GetSize(int(f.Fd()))
		if err != nil || width < 20 {
			width = 80
		}
		_, err = fmt.Fprintf(w, "%s\n%s\n", ui.RenderResult(r), ui.RenderTimeline(r, width-8))
		return err
	}
	return visibility.WriteReport(w, r)
}

func runPopulation(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("population", flag.ContinueOnError)
	var c common
	c.register(fs)
	obs := fs.String("obs", "", "Observatory (configured default if empty)")
	n := fs.Int("n", 10, "Number of sources")
	first := fs.Int("first", 1, "Identifier of the first source")
	year1 := fs.Int("year1", time.Now().Year()+2, "First year of the trigger dates")
	nyears := fs.Int("nyears", 1, "Number of years")
	seed := fs.Int64("seed", 0, "Random seed (configured seed if 0)")
	preset := fs.String("preset", "strictmoonveto", "Visibility preset")
	workers := fs.Int("workers", 0, "Parallel computations (configured value if 0)")
	timeout := fs.Duration("timeout", 0, "Per-unit timeout (configured value if 0)")
	duration := fs.Duration("duration", population.DefaultDuration, "Data window after each trigger")
	skyPath := fs.String("sky", "", "Recompute from a stored sky file instead of generating one")
	outDir := fs.String("out", ".", "Output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := c.setup()
	if err != nil {
		return err
	}
	defer serveMetrics(c.metricsAddr, e)()
	log := e.logger

	var sky population.Sky
	if *skyPath != "" {
		f, err := os.Open(*skyPath)
		if err != nil {
			return fmt.Errorf("open sky file: %w", err)
		}
		sky, err = population.ReadSky(f)
		f.Close()
		if err != nil {
			return err
		}
	} else {
		s := *seed
		if s == 0 {
			s = e.cfg.Population.Seed
		}
		sky = population.NewSky(s, *n, *first, *year1, *nyears, *preset, *duration)
		if err := writeSky(*outDir, sky); err != nil {
			return err
		}
	}

	vcfg, err := e.cfg.Preset(sky.Preset)
	if err != nil {
		return err
	}
	sites := e.cfg.Locations(*obs)
	if len(sites) == 0 {
		return fmt.Errorf("%w: observatory %q", config.ErrUnknownSite, *obs)
	}
	runSites := make([]astro.Site, 0, len(sites))
	for _, loc := range sites {
		site, err := e.cfg.Site(*obs, loc)
		if err != nil {
			return err
		}
		runSites = append(runSites, site)
	}

	r := &population.Runner{
		Ephemeris:   ephem.New(e.cfg.Ephemeris.Options()...),
		Duration:    sky.Duration,
		Workers:     e.cfg.Population.Workers,
		UnitTimeout: e.cfg.Population.UnitTimeout,
		Metrics:     e.metrics,
		Logger:      log,
	}
	if *workers > 0 {
		r.Workers = *workers
	}
	if *timeout > 0 {
		r.UnitTimeout = *timeout
	}

	log.Info("population start", "sources", len(sky.Sources), "sites", sites, "preset", sky.Preset)
	cat, err := r.Run(ctx, sky.Sources, runSites, vcfg)
	if err != nil {
		return err
	}

	path := filepath.Join(*outDir, catalogName(sky))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create catalog: %w", err)
	}
	defer f.Close()
	if err := cat.WriteJSON(f); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	both := 0
	for _, src := range sky.Sources {
		if cat.Both(src.ID) {
			both++
		}
	}
	log.Info("catalog written", "path", path, "visible_tonight", cat.VisibleTonight(), "all_sites", both)
	fmt.Fprintf(os.Stdout, "%d units, %d visible tonight, %d sources visible at every site -> %s\n",
		len(cat.Entries), cat.VisibleTonight(), both, path)
	return nil
}

func writeSky(dir string, sky population.Sky) error {
	path := filepath.Join(dir, sky.FileName())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sky file: %w", err)
	}
	defer f.Close()
	return population.WriteSky(f, sky)
}

// catalogName mirrors the sky file name: VIS_<preset>_<year1>_<nyears>.json.
func catalogName(sky population.Sky) string {
	return fmt.Sprintf("VIS_%s_%d_%d.json", sky.Preset, sky.Year1, sky.Year2-sky.Year1+1)
}

func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	plain := fs.Bool("plain", false, "Print text even on a terminal")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("show needs one catalog or result file")
	}
	path := fs.Arg(0)
	tty := !*plain && term.IsTerminal(int(os.Stdout.Fd()))

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.HasSuffix(base, "_vis") {
		res, err := visibility.ReadFile(path)
		if err != nil {
			return err
		}
		if tty {
			return printResult(os.Stdout, res)
		}
		return visibility.WriteReport(os.Stdout, res)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	cat, err := population.ReadCatalog(f)
	f.Close()
	if err != nil {
		return err
	}

	if tty {
		p := tea.NewProgram(ui.NewBrowser(cat), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running TUI: %w", err)
		}
		return nil
	}
	for _, entry := range cat.Entries {
		if entry.Result == nil {
			fmt.Fprintf(os.Stdout, "%s: %s %s\n", entry.Name, entry.Outcome, entry.Error)
			continue
		}
		if err := visibility.WriteReport(os.Stdout, entry.Result); err != nil {
			return err
		}
	}
	return nil
}
