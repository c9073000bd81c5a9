package population

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-visibility/internal/metrics"
	"github.com/litescript/ls-visibility/internal/timeline"
	"github.com/litescript/ls-visibility/internal/visibility"
)

// Entry is the outcome of one (source, site) unit. Result is nil unless
// Outcome is "ok".
type Entry struct {
	Name    string
	Source  int
	Site    string
	Outcome string
	Error   string
	Result  *visibility.Result
}

func (e Entry) visible() timeline.Windows {
	if e.Result == nil {
		return nil
	}
	return e.Result.Visible()
}

// Catalog holds the entries of a population run in unit order.
type Catalog struct {
	RunID   string
	Created time.Time
	Entries []Entry
}

// NewCatalog returns an empty catalog with a fresh run id.
func NewCatalog() *Catalog {
	return &Catalog{
		RunID:   uuid.NewString(),
		Created: time.Now().UTC().Truncate(time.Second),
	}
}

// Lookup returns the result of the unit called name.
func (c *Catalog) Lookup(name string) (*visibility.Result, bool) {
	for _, e := range c.Entries {
		if e.Name == name && e.Result != nil {
			return e.Result, true
		}
	}
	return nil, false
}

// Both reports whether source id is visible tonight at every site it was
// computed for.
func (c *Catalog) Both(id int) bool {
	n := 0
	for _, e := range c.Entries {
		if e.Source != id {
			continue
		}
		if e.Result == nil || !e.Result.VisibleTonight() {
			return false
		}
		n++
	}
	return n > 0
}

// Counts returns the number of entries per outcome.
func (c *Catalog) Counts() map[string]int {
	counts := make(map[string]int)
	for _, e := range c.Entries {
		counts[e.Outcome]++
	}
	return counts
}

// VisibleTonight returns the number of units visible tonight.
func (c *Catalog) VisibleTonight() int {
	n := 0
	for _, e := range c.Entries {
		if e.Result != nil && e.Result.VisibleTonight() {
			n++
		}
	}
	return n
}

type catalogFile struct {
	RunID    string              `json:"run_id"`
	Created  time.Time           `json:"created"`
	Results  []visibility.Record `json:"results"`
	Failures []failureRecord     `json:"failures"`
}

type failureRecord struct {
	Name    string `json:"name"`
	Source  int    `json:"source"`
	Site    string `json:"site"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes every successful result as a visibility record and every
// other unit as a failure line.
func (c *Catalog) WriteJSON(w io.Writer) error {
	f := catalogFile{
		RunID:    c.RunID,
		Created:  c.Created,
		Results:  []visibility.Record{},
		Failures: []failureRecord{},
	}
	for _, e := range c.Entries {
		if e.Result != nil {
			f.Results = append(f.Results, e.Result.Record())
			continue
		}
		f.Failures = append(f.Failures, failureRecord{
			Name: e.Name, Source: e.Source, Site: e.Site, Outcome: e.Outcome, Error: e.Error,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// ReadCatalog reads a catalog written by WriteJSON. Failures follow the
// results in the rebuilt entry list.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &Catalog{RunID: f.RunID, Created: f.Created}
	for _, rec := range f.Results {
		res, err := visibility.Build(visibility.Recorded{Record: rec}, nil)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", rec.Name, err)
		}
		c.Entries = append(c.Entries, Entry{
			Name:    rec.Name,
			Source:  sourceID(rec.Target.Name),
			Site:    rec.Site.Name,
			Outcome: metrics.OutcomeOK,
			Result:  res,
		})
	}
	for _, fr := range f.Failures {
		c.Entries = append(c.Entries, Entry{
			Name: fr.Name, Source: fr.Source, Site: fr.Site, Outcome: fr.Outcome, Error: fr.Error,
		})
	}
	return c, nil
}

// sourceID parses a target name written by Runner; other names map to -1.
func sourceID(name string) int {
	id, err := strconv.Atoi(name)
	if err != nil {
		return -1
	}
	return id
}
