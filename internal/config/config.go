// Package config holds the immutable run parameters and the executable
// validation gate that runs before anything is allowed to fork.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error kinds. Callers map these to process exit codes with errors.Is.
var (
	ErrConfig     = errors.New("invalid configuration")
	ErrValidation = errors.New("target validation failed")
)

// Verbosity levels.
type Verbosity int

const (
	VerbosityQuiet Verbosity = iota
	VerbosityNormal
	VerbosityVerbose
	VerbosityVeryVerbose
)

// OutputFormat selects the report renderers.
type OutputFormat int

const (
	FormatHuman OutputFormat = iota
	FormatJSON
	FormatBoth
)

// Mode is the execution shape of a run. Exactly one applies.
type Mode int

const (
	// ModeDirect forks and execs the target directly.
	ModeDirect Mode = iota
	// ModeMonitor runs an arbitrary command string through the shell.
	ModeMonitor
	// ModeDryRun parses and simulates without forking.
	ModeDryRun
	// ModeSafe runs static enrichment only, never forking the target.
	ModeSafe
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct-exec"
	case ModeMonitor:
		return "shell-monitor"
	case ModeDryRun:
		return "dry-run"
	case ModeSafe:
		return "safe-analyze"
	}
	return "unknown"
}

// Executes reports whether the mode actually runs the target.
func (m Mode) Executes() bool {
	return m == ModeDirect || m == ModeMonitor
}

// Feature flags toggling individual analysis concerns.
type Feature string

const (
	FeatureMemory      Feature = "memory"
	FeatureIO          Feature = "io"
	FeatureSecurity    Feature = "security"
	FeaturePerformance Feature = "performance"
	FeatureNetwork     Feature = "network"
	FeatureDeep        Feature = "deep"
)

// FeatureSet is the set of enabled features.
type FeatureSet map[Feature]bool

// Config is built once from the CLI and treated as immutable afterwards.
type Config struct {
	TargetPath     string
	TargetArgs     []string
	MonitorCommand string

	Verbosity    Verbosity
	OutputFormat OutputFormat
	Features     FeatureSet
	Mode         Mode

	// ForceExecution is the explicit opt-in required for any mode that
	// actually runs the target.
	ForceExecution bool

	// Timeout is the wall-clock ceiling for the supervised child.
	// Zero means effectively unlimited.
	Timeout time.Duration

	SQLitePath string
	CSVPath    string
	HTMLPath   string
	RulesPath  string
}

// Normalize applies the implication rules: very-verbose turns on deep,
// performance, security and network analysis.
func (c *Config) Normalize() {
	if c.Features == nil {
		c.Features = FeatureSet{}
	}
	if c.Verbosity >= VerbosityVeryVerbose {
		c.Features[FeatureDeep] = true
		c.Features[FeaturePerformance] = true
		c.Features[FeatureSecurity] = true
		c.Features[FeatureNetwork] = true
	}
}

// Validate enforces the configuration invariants. It never touches the
// filesystem; ValidateExecutable covers that separately.
func (c *Config) Validate() error {
	if c.Mode == ModeMonitor {
		if strings.TrimSpace(c.MonitorCommand) == "" {
			return fmt.Errorf("%w: --monitor requires a command to run", ErrConfig)
		}
	} else if c.TargetPath == "" {
		return fmt.Errorf("%w: no target executable specified", ErrConfig)
	}

	if c.Mode.Executes() && !c.ForceExecution {
		return fmt.Errorf("%w: %s mode executes code on your system and requires -f/--force; "+
			"safe alternatives: --dry-run or --safe-analyze", ErrConfig, c.Mode)
	}
	return nil
}
