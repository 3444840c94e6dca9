// Package checkpoint implements the execution timeline: an append-only,
// bounded log of categorized events, plus a registry of pattern-matched
// triggers that fire synchronously on every append.
package checkpoint

import "time"

// Well-known checkpoint categories.
const (
	CategoryLoad    = "LOAD"
	CategoryFunc    = "FUNC"
	CategorySyscall = "SYSCALL"
	CategoryMem     = "MEM"
	CategoryNet     = "NET"
	CategorySec     = "SEC"
	CategoryPerf    = "PERF"
	CategoryExec    = "EXEC"
	CategoryExit    = "EXIT"
	CategoryMisc    = "MISC"
)

// Storage limits. Overflow beyond MaxEntries drops new entries after a single
// "LOG: overflow" meta record.
const (
	MaxEntries    = 1024
	maxIDLen      = 64
	maxContextLen = 256
)

// Checkpoint is a single timeline record. Immutable once stored.
type Checkpoint struct {
	ID           string        `json:"id"`
	Wallclock    string        `json:"timestamp"`
	Category     string        `json:"category"`
	Context      string        `json:"context,omitempty"`
	Offset       time.Duration `json:"-"`
	OffsetSecs   float64       `json:"time_offset"`
	TriggerFired bool          `json:"trigger_fired"`
}
