// Package timeline provides time windows, window lists and the tick sweep
// that intersects them.
package timeline

import (
	"errors"
	"fmt"
	"time"
)

// TimeFormat is the layout used when windows are printed.
const TimeFormat = "2006-01-02 15:04:05.000"

// Errors returned by Validate.
var (
	ErrInvertedWindow = errors.New("window ends before it starts")
	ErrUnsorted       = errors.New("windows not sorted by start")
	ErrOverlap        = errors.New("windows overlap")
	ErrOpenInterior   = errors.New("unbounded endpoint inside a window list")
)

// Window is a closed time interval. OpenStart and OpenEnd mark an endpoint
// that extends to minus or plus infinity; the matching time field is then
// ignored.
type Window struct {
	Start     time.Time
	End       time.Time
	OpenStart bool
	OpenEnd   bool
}

// Bounded returns the window [start, end].
func Bounded(start, end time.Time) Window {
	return Window{Start: start, End: end}
}

// From returns the window [start, +inf).
func From(start time.Time) Window {
	return Window{Start: start, OpenEnd: true}
}

// IsBounded reports whether both endpoints are finite.
func (w Window) IsBounded() bool {
	return !w.OpenStart && !w.OpenEnd
}

// Contains reports whether t lies in the window, endpoints included.
func (w Window) Contains(t time.Time) bool {
	if !w.OpenStart && t.Before(w.Start) {
		return false
	}
	if !w.OpenEnd && t.After(w.End) {
		return false
	}
	return true
}

// Duration returns End - Start, or false when an endpoint is unbounded.
func (w Window) Duration() (time.Duration, bool) {
	if !w.IsBounded() {
		return 0, false
	}
	return w.End.Sub(w.Start), true
}

// Midpoint returns the instant halfway between two instants.
func Midpoint(t1, t2 time.Time) time.Time {
	return t1.Add(t2.Sub(t1) / 2)
}

func (w Window) String() string {
	start, end := "-inf", "+inf"
	if !w.OpenStart {
		start = w.Start.UTC().Format(TimeFormat)
	}
	if !w.OpenEnd {
		end = w.End.UTC().Format(TimeFormat)
	}
	return start + " * " + end
}

// Windows is an ordered list of windows. A list of length zero is the one
// and only representation of "no window".
type Windows []Window

// Single returns the list holding exactly [start, end].
func Single(start, end time.Time) Windows {
	return Windows{Bounded(start, end)}
}

// Empty reports whether the list holds no window.
func (ws Windows) Empty() bool {
	return len(ws) == 0
}

// Contains reports whether t lies in any window of the list.
func (ws Windows) Contains(t time.Time) bool {
	for _, w := range ws {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// First returns the earliest window.
func (ws Windows) First() (Window, bool) {
	if len(ws) == 0 {
		return Window{}, false
	}
	return ws[0], true
}

// Last returns the latest window.
func (ws Windows) Last() (Window, bool) {
	if len(ws) == 0 {
		return Window{}, false
	}
	return ws[len(ws)-1], true
}

// Clone returns a copy that shares no storage with ws. Empty lists clone to nil.
func (ws Windows) Clone() Windows {
	if len(ws) == 0 {
		return nil
	}
	out := make(Windows, len(ws))
	copy(out, ws)
	return out
}

// Validate checks that windows are individually ordered, sorted by start and
// pairwise non-overlapping. Touching windows are allowed. Only the first
// window may have an open start and only the last an open end.
func (ws Windows) Validate() error {
	for i, w := range ws {
		if w.IsBounded() && w.End.Before(w.Start) {
			return fmt.Errorf("window %d [%s]: %w", i, w, ErrInvertedWindow)
		}
		if w.OpenStart && i > 0 {
			return fmt.Errorf("window %d [%s]: %w", i, w, ErrOpenInterior)
		}
		if w.OpenEnd && i < len(ws)-1 {
			return fmt.Errorf("window %d [%s]: %w", i, w, ErrOpenInterior)
		}
		if i == 0 {
			continue
		}
		prev := ws[i-1]
		if w.Start.Before(prev.Start) {
			return fmt.Errorf("window %d [%s]: %w", i, w, ErrUnsorted)
		}
		if w.Start.Before(prev.End) {
			return fmt.Errorf("window %d [%s] and %d [%s]: %w", i-1, prev, i, w, ErrOverlap)
		}
	}
	return nil
}

// Coalesce merges windows that touch or overlap. The input must be sorted.
func (ws Windows) Coalesce() Windows {
	if len(ws) == 0 {
		return nil
	}
	out := Windows{ws[0]}
	for _, w := range ws[1:] {
		last := &out[len(out)-1]
		if last.OpenEnd || !w.Start.After(last.End) {
			if w.OpenEnd {
				last.OpenEnd = true
			} else if !last.OpenEnd && w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		out = append(out, w)
	}
	return out
}
