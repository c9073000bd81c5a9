package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-visibility/internal/timeline"
	"github.com/litescript/ls-visibility/internal/visibility"
)

// Panel colors
const (
	colorVisible = "#7CFC00" // Lawn green - true visibility
	colorNight   = "#5F87FF" // Blue - astronomical night
	colorAbove   = "#FFD700" // Gold - target above horizon
	colorMoon    = "#FF6347" // Tomato - moon veto
	colorNone    = "#444444" // Dark gray
)

const panelTimeFormat = "2006-01-02 15:04:05"

// RenderResult renders the window lists of r, one line per window:
//
//	Event   2024-03-10 22:00:00 → 2024-03-11 10:00:00   12h00m
//	Twil.   2024-03-10 18:00:00 → 2024-03-11 06:00:00   12h00m
//	Moon    2024-03-11 02:00:00 → 2024-03-11 08:00:00   B:F D:T
//	True    2024-03-10 22:00:00 → 2024-03-11 02:00:00    4h00m
func RenderResult(r *visibility.Result) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Name()))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s  %s  ra %.3f° dec %.3f°",
		r.Origin(), r.Site().Name, r.Target().RADeg, r.Target().DecDeg)))
	b.WriteString("\n")
	b.WriteString(renderFlags(r))
	b.WriteString("\n")

	rows := []struct {
		label string
		ws    timeline.Windows
		color string
	}{
		{"Event", r.AboveHorizon(), colorAbove},
		{"Twil.", r.Nights(), colorNight},
		{"Moon", r.MoonUp(), colorMoon},
		{"True", r.Visible(), colorVisible},
	}
	moon := r.MoonPeriods()
	for _, row := range rows {
		label := labelStyle.Render(fmt.Sprintf("%-7s", row.label))
		if row.ws.Empty() {
			b.WriteString(label + dimStyle.Render("--") + "\n")
			continue
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(row.color))
		for i, w := range row.ws {
			line := formatWindow(w)
			if row.label == "Moon" {
				line += fmt.Sprintf("   B:%s D:%s", flagLetter(moon[i].TooBright), flagLetter(moon[i].TooClose))
			} else if d, ok := w.Duration(); ok {
				line += fmt.Sprintf("   %6s", formatDuration(d))
			}
			b.WriteString(label + style.Render(line) + "\n")
		}
	}
	return b.String()
}

func renderFlags(r *visibility.Result) string {
	flags := []struct {
		name string
		on   bool
	}{
		{"above horizon", r.EverAboveHorizon()},
		{"tonight", r.VisibleTonight()},
		{"at trigger", r.VisibleAtTrigger()},
	}
	onStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorVisible))
	offStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorNone))

	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		if f.on {
			parts = append(parts, onStyle.Render("● "+f.name))
		} else {
			parts = append(parts, offStyle.Render("○ "+f.name))
		}
	}
	return strings.Join(parts, "   ")
}

func formatWindow(w timeline.Window) string {
	start, end := "-inf", "+inf"
	if !w.OpenStart {
		start = w.Start.UTC().Format(panelTimeFormat)
	}
	if !w.OpenEnd {
		end = w.End.UTC().Format(panelTimeFormat)
	}
	return fmt.Sprintf("%-19s → %-19s", start, end)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

func flagLetter(v bool) string {
	if v {
		return "T"
	}
	return "F"
}

// RenderTimeline renders one bar per category over the data window of r,
// width cells wide. A cell is filled when its midpoint lies in a window.
//
//	Night ░░░░████████░░░░░░████████░░
//	Above ░░░░░░██████████░░░░░░██████
//	Veto  ░░░░░░░░██░░░░░░░░░░░░░░░░░░
//	True  ░░░░░░██░░░░░░░░░░░░████░░░░
func RenderTimeline(r *visibility.Result, width int) string {
	if width < 1 {
		width = 1
	}
	span := r.Stop().Sub(r.Start())
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	rows := []struct {
		label string
		ws    timeline.Windows
		color string
	}{
		{"Night", r.Nights(), colorNight},
		{"Above", r.AboveHorizon(), colorAbove},
		{"Veto", r.MoonVeto(), colorMoon},
		{"True", r.Visible(), colorVisible},
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		bar := timelineBar(r.Start(), span, width, row.ws)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(row.color))
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-6s", row.label))+style.Render(bar))
	}
	return strings.Join(lines, "\n")
}

// timelineBar converts a window list into width cells of █ and ░.
func timelineBar(start time.Time, span time.Duration, width int, ws timeline.Windows) string {
	var b strings.Builder
	for i := 0; i < width; i++ {
		mid := start.Add(time.Duration((float64(i) + 0.5) / float64(width) * float64(span)))
		if span > 0 && ws.Contains(mid) {
			b.WriteString("█")
		} else {
			b.WriteString("░")
		}
	}
	return b.String()
}
