package visibility

import (
	"fmt"
	"io"
	"strings"

	"github.com/litescript/ls-visibility/internal/timeline"
)

const reportRule = "+----------------------------------------------------------------+"

// WriteReport prints r in plain text: a header with the flags, then one row
// per window for the Event (above horizon), Twil. (night), Moon and True
// (visible) lists. Moon rows carry the B(right) and D(istance) verdicts.
func WriteReport(w io.Writer, r *Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "=================   %-10s   %-10s   ================\n", r.Name(), r.Origin())
	fmt.Fprintf(&b, " Visible : %v - tonight, prompt : %v, %v\n",
		r.EverAboveHorizon(), r.VisibleTonight(), r.VisibleAtTrigger())
	fmt.Fprintf(&b, " Altitude : Horizon > %3.1f - Moon > %4.2f\n", r.cfg.AltMin, r.cfg.MoonMaxAlt)

	if r.VisibleTonight() || r.Origin() == OriginPreset {
		b.WriteString(reportRule + "\n")
		reportRows(&b, "Event", r.above, nil)
		reportRows(&b, "Twil.", r.nights, nil)
		reportRows(&b, "Moon", r.moon.Windows(), r.moon)
		reportRows(&b, "True", r.visible, nil)
		b.WriteString(reportRule + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func reportRows(b *strings.Builder, label string, ws timeline.Windows, moon MoonPeriods) {
	if ws.Empty() {
		fmt.Fprintf(b, " %-6s : %-23s * %-23s\n", label, "--", "--")
		return
	}
	for i, w := range ws {
		fmt.Fprintf(b, " %-6s : %s", label, w)
		if moon != nil {
			fmt.Fprintf(b, " B:%s D:%s", initial(moon[i].TooBright), initial(moon[i].TooClose))
		}
		b.WriteByte('\n')
	}
}

func initial(v bool) string {
	if v {
		return "T"
	}
	return "F"
}
