// Package population runs visibility computations for a population of
// transient sources: random dates and sky positions, computed at every site
// of an observatory.
package population

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Source is one transient: a trigger date and an ICRS position in degrees.
type Source struct {
	ID     int       `yaml:"id" json:"id"`
	Date   time.Time `yaml:"date" json:"date"`
	RADeg  float64   `yaml:"ra" json:"ra"`
	DecDeg float64   `yaml:"dec" json:"dec"`
}

// Generate draws n sources numbered from first. Positions are isotropic and
// dates uniform from January 1st of year1 at midnight to December 31st of
// the last year at 23:59:59 UTC. The same seed gives the same sources.
func Generate(seed int64, n, first, year1, nyears int) []Source {
	if n <= 0 {
		return nil
	}
	if nyears < 1 {
		nyears = 1
	}
	rng := rand.New(rand.NewSource(seed))

	ra := make([]float64, n)
	dec := make([]float64, n)
	for i := range ra {
		ra[i] = 360 * rng.Float64()
	}
	for i := range dec {
		dec[i] = math.Asin(2*rng.Float64()-1) * 180 / math.Pi
	}

	tstart := time.Date(year1, 1, 1, 0, 0, 0, 0, time.UTC)
	tstop := time.Date(year1+nyears-1, 12, 31, 23, 59, 59, 0, time.UTC)
	span := float64(tstop.Sub(tstart))

	sources := make([]Source, n)
	for i := range sources {
		offset := time.Duration(rng.Float64() * span).Truncate(time.Millisecond)
		sources[i] = Source{
			ID:     first + i,
			Date:   tstart.Add(offset),
			RADeg:  ra[i],
			DecDeg: dec[i],
		}
	}
	return sources
}

// Sky is the dates-and-positions ("DP") dump of a generated population. It
// is enough to regenerate the visibilities later.
type Sky struct {
	RunID    string        `yaml:"run_id"`
	Created  time.Time     `yaml:"created"`
	Seed     int64         `yaml:"seed"`
	First    int           `yaml:"id1"`
	Year1    int           `yaml:"start"`
	Year2    int           `yaml:"stop"`
	Preset   string        `yaml:"key"`
	Duration time.Duration `yaml:"duration"`
	Sources  []Source      `yaml:"sources"`
}

// NewSky generates a population and wraps it with its parameters.
func NewSky(seed int64, n, first, year1, nyears int, preset string, duration time.Duration) Sky {
	if nyears < 1 {
		nyears = 1
	}
	return Sky{
		RunID:    uuid.NewString(),
		Created:  time.Now().UTC().Truncate(time.Second),
		Seed:     seed,
		First:    first,
		Year1:    year1,
		Year2:    year1 + nyears - 1,
		Preset:   preset,
		Duration: duration,
		Sources:  Generate(seed, n, first, year1, nyears),
	}
}

// FileName returns "DP_<preset>_<year1>_<nyears>.yaml".
func (s Sky) FileName() string {
	return fmt.Sprintf("DP_%s_%d_%d.yaml", s.Preset, s.Year1, s.Year2-s.Year1+1)
}

// WriteSky writes s as YAML.
func WriteSky(w io.Writer, s Sky) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode sky: %w", err)
	}
	return enc.Close()
}

// ReadSky reads a YAML sky dump.
func ReadSky(r io.Reader) (Sky, error) {
	var s Sky
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return Sky{}, fmt.Errorf("decode sky: %w", err)
	}
	for i, src := range s.Sources {
		if src.DecDeg < -90 || src.DecDeg > 90 {
			return Sky{}, fmt.Errorf("sky source %d (#%d): declination %.4f out of range", src.ID, i, src.DecDeg)
		}
	}
	return s, nil
}
