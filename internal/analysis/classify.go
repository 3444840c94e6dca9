package analysis

import (
	"context"
	"strings"

	"github.com/michkochris/rune-analyze/internal/models"
)

// Tool classes.
const (
	ClassCompiler      = "compiler"
	ClassTextProcessor = "text_processor"
	ClassFileUtility   = "file_utility"
	ClassDataProcessor = "data_processor"
	ClassArchiver      = "archiver"
	ClassInterpreter   = "interpreter"
	ClassReportingTool = "reporting_tool"
	ClassHeavyProc     = "heavy_processor"
	ClassSystemUtility = "system_utility"
	ClassUnknown       = "unknown"
)

var classBuckets = []struct {
	class string
	names []string
}{
	{ClassCompiler, []string{"gcc", "clang", "g++", "rustc", "javac"}},
	{ClassTextProcessor, []string{"grep", "awk", "sed"}},
	{ClassFileUtility, []string{"find", "ls", "cp", "mv"}},
	{ClassDataProcessor, []string{"sort", "uniq", "head", "tail"}},
	{ClassArchiver, []string{"tar", "zip", "gzip"}},
	{ClassInterpreter, []string{"python", "node", "ruby", "perl"}},
}

// classifyPass buckets the tool by its basename, falling back to behavioral
// cues when the name is unfamiliar.
type classifyPass struct{}

func (p *classifyPass) Name() string { return "tool_classification" }

func (p *classifyPass) Analyze(_ context.Context, t *Target, r *models.Result) error {
	deep := r.EnsureDeep()
	base := t.Basename()

	for _, bucket := range classBuckets {
		for _, name := range bucket.names {
			if strings.Contains(base, name) {
				deep.ToolClassification = bucket.class
				return nil
			}
		}
	}

	switch {
	case r.IO.StdoutBytes > 1000 && r.Intelligence.VerboseMessages > 0:
		deep.ToolClassification = ClassReportingTool
	case r.Execution.ExecutionTime > 1.0 && r.Memory.PeakKB > 10000:
		deep.ToolClassification = ClassHeavyProc
	default:
		deep.ToolClassification = ClassSystemUtility
	}
	return nil
}

// timingPass applies the heuristic startup/processing/cleanup partition for
// the recognized class. The split is decoration and is labeled as such.
type timingPass struct{}

func (p *timingPass) Name() string { return "performance_timing" }

func (p *timingPass) Analyze(_ context.Context, _ *Target, r *models.Result) error {
	deep := r.EnsureDeep()
	total := r.Execution.ExecutionTime

	startup, processing, cleanup := 0.10, 0.80, 0.10
	switch deep.ToolClassification {
	case ClassCompiler:
		startup, processing, cleanup = 0.05, 0.90, 0.05
	case ClassInterpreter:
		startup, processing, cleanup = 0.30, 0.60, 0.10
	}

	deep.Timing = models.TimingBreakdown{
		StartupSeconds:    total * startup,
		ProcessingSeconds: total * processing,
		CleanupSeconds:    total * cleanup,
		Heuristic:         true,
	}
	return nil
}

// complexityPass scores output complexity 1-10, monotone in stdout volume
// and the intelligence counters.
type complexityPass struct{}

func (p *complexityPass) Name() string { return "output_complexity" }

func (p *complexityPass) Analyze(_ context.Context, _ *Target, r *models.Result) error {
	score := 1
	switch {
	case r.IO.StdoutBytes > 100000:
		score += 3
	case r.IO.StdoutBytes > 10000:
		score += 2
	case r.IO.StdoutBytes > 1000:
		score += 1
	}
	if r.Intelligence.VerboseMessages > 5 {
		score += 2
	}
	if r.Intelligence.ErrorMessages > 0 {
		score++
	}
	if r.Intelligence.WarningMessages > 0 {
		score++
	}
	if score > 10 {
		score = 10
	}
	r.EnsureDeep().OutputComplexityScore = score
	return nil
}

// behaviorPass composes the '+'-joined behavior tag from base speed plus
// output and memory modifiers.
type behaviorPass struct{}

func (p *behaviorPass) Name() string { return "behavior_pattern" }

func (p *behaviorPass) Analyze(_ context.Context, _ *Target, r *models.Result) error {
	base := "standard_execution"
	if r.Execution.ExecutionTime < 0.1 {
		base = "fast_execution"
	} else if r.Execution.ExecutionTime > 5.0 {
		base = "long_running"
	}

	parts := []string{base}
	if r.IO.StdoutBytes > 50000 {
		parts = append(parts, "verbose_output")
	}
	if r.Memory.PeakKB > 100000 {
		parts = append(parts, "memory_intensive")
	}
	r.EnsureDeep().BehaviorPattern = strings.Join(parts, "+")
	return nil
}

// efficiencyPass buckets peak memory per output byte into 1/3/5/7/10 and
// names the wall-time performance category.
type efficiencyPass struct{}

func (p *efficiencyPass) Name() string { return "resource_efficiency" }

func (p *efficiencyPass) Analyze(_ context.Context, _ *Target, r *models.Result) error {
	deep := r.EnsureDeep()

	score := 10
	if r.Memory.PeakKB > 0 {
		perByte := float64(r.Memory.PeakKB) / float64(r.IO.StdoutBytes+1)
		switch {
		case perByte > 10.0:
			score = 3
		case perByte > 5.0:
			score = 5
		case perByte > 1.0:
			score = 7
		}
	}
	deep.ResourceEfficiencyScore = score

	switch {
	case r.Execution.ExecutionTime < 0.05:
		deep.PerformanceCategory = "Excellent"
	case r.Execution.ExecutionTime < 0.5:
		deep.PerformanceCategory = "Good"
	case r.Execution.ExecutionTime < 2.0:
		deep.PerformanceCategory = "Average"
	default:
		deep.PerformanceCategory = "Slow"
	}
	return nil
}
