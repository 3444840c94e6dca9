package report

import (
	"fmt"

	"github.com/michkochris/rune-analyze/internal/checkpoint"
)

// Summarize returns a human-readable one-line summary for a checkpoint,
// used by the HTML timeline and anywhere else a terse caption is needed.
func Summarize(cp checkpoint.Checkpoint) string {
	switch cp.Category {
	case checkpoint.CategorySec:
		return "Security: " + firstNonEmpty(cp.Context, cp.ID)
	case checkpoint.CategoryMem:
		return "Memory: " + firstNonEmpty(cp.Context, cp.ID)
	case checkpoint.CategoryNet:
		return "Network: " + firstNonEmpty(cp.Context, cp.ID)
	case checkpoint.CategoryExec:
		return "Execution: " + firstNonEmpty(cp.Context, cp.ID)
	case checkpoint.CategoryLoad:
		return "Startup: " + cp.ID
	case checkpoint.CategoryExit:
		return "Shutdown: " + cp.ID
	}
	if cp.Context != "" {
		return fmt.Sprintf("%s (%s)", cp.ID, cp.Context)
	}
	return cp.ID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
