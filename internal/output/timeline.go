package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var categoryColors = map[string]lipgloss.Style{
	"SEC":  badStyle,
	"MEM":  warnStyle,
	"NET":  warnStyle,
	"EXIT": dimStyle,
	"LOAD": dimStyle,
}

// writeTimeline renders the checkpoint log chronologically. Entries keep
// insertion order, which the log guarantees matches event order.
func (w *HumanWriter) writeTimeline(r *Report) {
	if len(r.Checkpoints) == 0 {
		return
	}
	fmt.Fprintln(w.out, sectionStyle.Render(fmt.Sprintf("Timeline (%d checkpoints)", len(r.Checkpoints))))
	for _, cp := range r.Checkpoints {
		category := fmt.Sprintf("%-7s", cp.Category)
		if style, ok := categoryColors[cp.Category]; ok {
			category = style.Render(category)
		}
		line := fmt.Sprintf("  %8.3fs  %s  %s", cp.OffsetSecs, category, cp.ID)
		if cp.Context != "" {
			line += dimStyle.Render("  (" + cp.Context + ")")
		}
		if cp.TriggerFired {
			line += warnStyle.Render("  [trigger]")
		}
		fmt.Fprintln(w.out, line)
	}
	fmt.Fprintln(w.out)
}
