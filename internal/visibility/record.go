package visibility

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-visibility/internal/astro"
	"github.com/litescript/ls-visibility/internal/timeline"
)

// Record is the serializable form of a Result.
type Record struct {
	Name   string     `json:"name" yaml:"name"`
	Origin string     `json:"origin" yaml:"origin"`
	Site   SiteRecord `json:"site" yaml:"site"`
	Target Target     `json:"target" yaml:"target"`
	Config Config     `json:"config" yaml:"config"`

	Start time.Time `json:"start" yaml:"start"`
	Stop  time.Time `json:"stop" yaml:"stop"`

	NightAtStart     bool `json:"night_at_start" yaml:"night_at_start"`
	AboveAtStart     bool `json:"above_at_start" yaml:"above_at_start"`
	EverAboveHorizon bool `json:"ever_above_horizon" yaml:"ever_above_horizon"`
	VisibleTonight   bool `json:"visible_tonight" yaml:"visible_tonight"`
	VisibleAtTrigger bool `json:"visible_at_trigger" yaml:"visible_at_trigger"`

	Nights       []WindowRecord     `json:"nights" yaml:"nights"`
	AboveHorizon []WindowRecord     `json:"above_horizon" yaml:"above_horizon"`
	MoonPeriods  []MoonPeriodRecord `json:"moon_periods" yaml:"moon_periods"`
	Visible      []WindowRecord     `json:"visible" yaml:"visible"`
}

// SiteRecord is a JSON-friendly site.
type SiteRecord struct {
	Name    string  `json:"name" yaml:"name"`
	LatDeg  float64 `json:"lat" yaml:"lat"`
	LonDeg  float64 `json:"lon" yaml:"lon"`
	HeightM float64 `json:"height" yaml:"height"`
}

// WindowRecord is a window; a null endpoint is unbounded.
type WindowRecord struct {
	Start *time.Time `json:"start" yaml:"start"`
	End   *time.Time `json:"end" yaml:"end"`
}

// MoonPeriodRecord is a Moon period with its B(right) and D(istance) verdicts.
type MoonPeriodRecord struct {
	WindowRecord `yaml:",inline"`
	TooBright    bool `json:"too_bright" yaml:"too_bright"`
	TooClose     bool `json:"too_close" yaml:"too_close"`
}

// Record converts r to its serializable form.
func (r *Result) Record() Record {
	rec := Record{
		Name:   r.name,
		Origin: r.origin.String(),
		Site: SiteRecord{
			Name:    r.site.Name,
			LatDeg:  r.site.LatDeg,
			LonDeg:  r.site.LonDeg,
			HeightM: r.site.HeightM,
		},
		Target:           r.target,
		Config:           r.cfg,
		Start:            canonical(r.start),
		Stop:             canonical(r.stop),
		NightAtStart:     r.nightAtStart,
		AboveAtStart:     r.aboveAtStart,
		EverAboveHorizon: r.everAbove,
		VisibleTonight:   r.tonight,
		VisibleAtTrigger: r.atTrigger,
		Nights:           windowRecords(r.nights),
		AboveHorizon:     windowRecords(r.above),
		Visible:          windowRecords(r.visible),
		MoonPeriods:      make([]MoonPeriodRecord, 0, len(r.moon)),
	}
	for _, p := range r.moon {
		rec.MoonPeriods = append(rec.MoonPeriods, MoonPeriodRecord{
			WindowRecord: windowRecord(p.Window),
			TooBright:    p.TooBright,
			TooClose:     p.TooClose,
		})
	}
	return rec
}

// Result rebuilds a Result. The stored flags must match the ones derived
// from the windows.
func (rec Record) Result() (*Result, error) {
	origin, err := ParseOrigin(rec.Origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInconsistent, err)
	}

	moon := make(MoonPeriods, 0, len(rec.MoonPeriods))
	for _, p := range rec.MoonPeriods {
		moon = append(moon, MoonPeriod{
			Window:    p.WindowRecord.window(),
			TooBright: p.TooBright,
			TooClose:  p.TooClose,
		})
	}

	r := newResult(resultParts{
		name:         rec.Name,
		site:         astro.SiteFromGeodetic(rec.Site.Name, rec.Site.LatDeg, rec.Site.LonDeg, rec.Site.HeightM),
		target:       rec.Target,
		cfg:          rec.Config,
		origin:       origin,
		start:        rec.Start,
		stop:         rec.Stop,
		nights:       windowsFromRecords(rec.Nights),
		above:        windowsFromRecords(rec.AboveHorizon),
		moon:         moon,
		visible:      windowsFromRecords(rec.Visible),
		nightAtStart: rec.NightAtStart,
		aboveAtStart: rec.AboveAtStart,
	})
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("record %q: %w", rec.Name, err)
	}
	if r.everAbove != rec.EverAboveHorizon || r.tonight != rec.VisibleTonight || r.atTrigger != rec.VisibleAtTrigger {
		return nil, fmt.Errorf("%w: record %q flags (%v, %v, %v) do not match windows (%v, %v, %v)",
			ErrInconsistent, rec.Name,
			rec.EverAboveHorizon, rec.VisibleTonight, rec.VisibleAtTrigger,
			r.everAbove, r.tonight, r.atTrigger)
	}
	return r, nil
}

// canonical strips the location and monotonic reading so that decoded
// instants compare equal to encoded ones.
func canonical(t time.Time) time.Time {
	return t.UTC().Round(0)
}

func windowRecord(w timeline.Window) WindowRecord {
	var rec WindowRecord
	if !w.OpenStart {
		s := canonical(w.Start)
		rec.Start = &s
	}
	if !w.OpenEnd {
		e := canonical(w.End)
		rec.End = &e
	}
	return rec
}

func windowRecords(ws timeline.Windows) []WindowRecord {
	out := make([]WindowRecord, 0, len(ws))
	for _, w := range ws {
		out = append(out, windowRecord(w))
	}
	return out
}

func (rec WindowRecord) window() timeline.Window {
	var w timeline.Window
	if rec.Start == nil {
		w.OpenStart = true
	} else {
		w.Start = *rec.Start
	}
	if rec.End == nil {
		w.OpenEnd = true
	} else {
		w.End = *rec.End
	}
	return w
}

func windowsFromRecords(recs []WindowRecord) timeline.Windows {
	var ws timeline.Windows
	for _, rec := range recs {
		ws = append(ws, rec.window())
	}
	return ws
}

// WriteJSON writes the record as indented JSON.
func (rec Record) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

// WriteYAML writes the record as YAML.
func (rec Record) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	return enc.Close()
}

// ReadJSON decodes one record.
func ReadJSON(r io.Reader) (Record, error) {
	var rec Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("decode visibility record: %w", err)
	}
	return rec, nil
}

// ReadYAML decodes one record.
func ReadYAML(r io.Reader) (Record, error) {
	var rec Record
	if err := yaml.NewDecoder(r).Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("decode visibility record: %w", err)
	}
	return rec, nil
}

// FileName returns the file name used for a stored result.
func FileName(name, ext string) string {
	return name + "_vis." + ext
}

// WriteFile stores r in dir as JSON or YAML, chosen by ext ("json" or "yaml").
func WriteFile(dir string, r *Result, ext string) (string, error) {
	rec := r.Record()
	var write func(io.Writer) error
	switch ext {
	case "json":
		write = rec.WriteJSON
	case "yaml", "yml":
		write = rec.WriteYAML
	default:
		return "", fmt.Errorf("unknown visibility file format %q", ext)
	}

	path := filepath.Join(dir, FileName(r.Name(), ext))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create visibility file: %w", err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ReadFile loads a stored result; the format follows the file extension.
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open visibility file: %w", err)
	}
	defer f.Close()

	var rec Record
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		rec, err = ReadYAML(f)
	default:
		rec, err = ReadJSON(f)
	}
	if err != nil {
		return nil, err
	}
	return Build(Recorded{Record: rec}, nil)
}
