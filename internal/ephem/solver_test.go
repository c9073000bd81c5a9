package ephem

import (
	"math"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// sine has period 24h, crosses zero upward at 00:00 and downward at 12:00.
func sine(t time.Time) float64 {
	h := t.Sub(epoch).Hours()
	return 30 * math.Sin(2*math.Pi*h/24)
}

func TestGridFind(t *testing.T) {
	g := grid{points: 150, span: 24 * time.Hour, tolerance: time.Second}

	tests := []struct {
		name  string
		from  time.Time
		sense crossing
		dir   Direction
		want  time.Time
	}{
		{"next downward", epoch.Add(3 * time.Hour), downward, Next, epoch.Add(12 * time.Hour)},
		{"next upward", epoch.Add(3 * time.Hour), upward, Next, epoch.Add(24 * time.Hour)},
		{"previous upward", epoch.Add(3 * time.Hour), upward, Previous, epoch},
		{"previous downward", epoch.Add(3 * time.Hour), downward, Previous, epoch.Add(-12 * time.Hour)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := g.find(sine, tc.from, 0, tc.sense, tc.dir)
			if !ok {
				t.Fatal("find() found no crossing")
			}
			if d := got.Sub(tc.want); d > 2*time.Second || d < -2*time.Second {
				t.Errorf("find() = %v, want %v (±2s)", got, tc.want)
			}
		})
	}
}

func TestGridFindThreshold(t *testing.T) {
	g := grid{points: 150, span: 24 * time.Hour, tolerance: time.Second}

	// 30*sin(x) = 15 at x = 30°, i.e. 2h after the upward zero.
	got, ok := g.find(sine, epoch.Add(-time.Hour), 15, upward, Next)
	if !ok {
		t.Fatal("find() found no crossing")
	}
	want := epoch.Add(2 * time.Hour)
	if d := got.Sub(want); d > 2*time.Second || d < -2*time.Second {
		t.Errorf("find() = %v, want %v", got, want)
	}
}

func TestGridFindNoCrossing(t *testing.T) {
	g := grid{points: 150, span: 24 * time.Hour, tolerance: time.Second}

	// The curve never reaches 40.
	if _, ok := g.find(sine, epoch, 40, upward, Next); ok {
		t.Error("find() reported a crossing above the curve maximum")
	}
	// The curve is always above -40.
	if _, ok := g.find(sine, epoch, -40, downward, Previous); ok {
		t.Error("find() reported a crossing below the curve minimum")
	}
}
