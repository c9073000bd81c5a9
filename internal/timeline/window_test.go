package timeline

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)

func at(h float64) time.Time {
	return t0.Add(time.Duration(h * float64(time.Hour)))
}

func TestWindowContains(t *testing.T) {
	w := Bounded(at(1), at(3))

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"before", at(0.5), false},
		{"start inclusive", at(1), true},
		{"inside", at(2), true},
		{"end inclusive", at(3), true},
		{"after", at(3.5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestWindowContainsOpen(t *testing.T) {
	w := From(at(1))
	if !w.Contains(at(1000)) {
		t.Error("open-ended window should contain far future")
	}
	if w.Contains(at(0)) {
		t.Error("open-ended window should not contain instants before its start")
	}
	if _, ok := w.Duration(); ok {
		t.Error("Duration() of open window should not be ok")
	}

	w = Window{End: at(2), OpenStart: true}
	if !w.Contains(at(-1000)) {
		t.Error("open-start window should contain far past")
	}
}

func TestWindowsEmpty(t *testing.T) {
	var none Windows
	if !none.Empty() {
		t.Error("nil list should be empty")
	}
	if none.Contains(t0) {
		t.Error("empty list contains nothing")
	}

	zero := Single(t0, t0)
	if zero.Empty() {
		t.Error("list with one zero-length window is not empty")
	}
	if !zero.Contains(t0) {
		t.Error("zero-length window should contain its instant")
	}
}

func TestMidpoint(t *testing.T) {
	got := Midpoint(at(1), at(2))
	if !got.Equal(at(1.5)) {
		t.Errorf("Midpoint = %v, want %v", got, at(1.5))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		ws   Windows
		want error
	}{
		{"empty", nil, nil},
		{"sorted", Windows{Bounded(at(0), at(1)), Bounded(at(2), at(3))}, nil},
		{"touching", Windows{Bounded(at(0), at(1)), Bounded(at(1), at(3))}, nil},
		{"inverted", Windows{Bounded(at(1), at(0))}, ErrInvertedWindow},
		{"unsorted", Windows{Bounded(at(2), at(3)), Bounded(at(0), at(1))}, ErrUnsorted},
		{"overlap", Windows{Bounded(at(0), at(2)), Bounded(at(1), at(3))}, ErrOverlap},
		{"open end last", Windows{Bounded(at(0), at(1)), From(at(2))}, nil},
		{"open end first", Windows{From(at(0)), Bounded(at(2), at(3))}, ErrOpenInterior},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ws.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCoalesce(t *testing.T) {
	ws := Windows{
		Bounded(at(0), at(1)),
		Bounded(at(1), at(2)),
		Bounded(at(3), at(4)),
		Bounded(at(4), at(5)),
	}
	got := ws.Coalesce()
	want := Windows{Bounded(at(0), at(2)), Bounded(at(3), at(5))}

	if len(got) != len(want) {
		t.Fatalf("Coalesce() returned %d windows, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Errorf("window %d = %v, want %v", i, got[i], want[i])
		}
	}

	if Windows(nil).Coalesce() != nil {
		t.Error("coalescing an empty list should give nil")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ws := Single(at(0), at(1))
	c := ws.Clone()
	c[0].End = at(5)
	if !ws[0].End.Equal(at(1)) {
		t.Error("Clone() shares storage with the original")
	}
}

func TestWindowString(t *testing.T) {
	w := From(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	want := "2024-01-02 03:04:05.000 * +inf"
	if got := w.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
