package analysis

import (
	"context"
	"os/exec"
	"path/filepath"
)

// runCommandFunc abstracts the external helpers the enrichment passes shell
// out to (nm, objdump, readelf, gdb, runtime version probes) so tests can
// substitute canned output.
type runCommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Target is what the enrichment passes inspect: the analyzed executable, its
// arguments, and the checkpoint sink for pass-level events.
type Target struct {
	Path string
	Args []string

	log        appender
	runCommand runCommandFunc
}

// appender is the slice of the checkpoint log the passes need.
type appender interface {
	Append(id, category, context string)
}

// NewTarget builds a Target backed by real subprocess execution.
func NewTarget(path string, args []string, log appender) *Target {
	return &Target{Path: path, Args: args, log: log, runCommand: execRunCommand}
}

// Basename returns the target's file name without directories.
func (t *Target) Basename() string {
	return filepath.Base(t.Path)
}

// Dir returns the directory containing the target.
func (t *Target) Dir() string {
	return filepath.Dir(t.Path)
}

func (t *Target) checkpoint(id, category, context string) {
	if t.log != nil {
		t.log.Append(id, category, context)
	}
}
