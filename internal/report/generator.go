// Package report renders a self-contained HTML page for one analyzed run,
// suitable for attaching to a ticket or archiving next to the binary.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/michkochris/rune-analyze/internal/models"
	"github.com/michkochris/rune-analyze/internal/output"
)

//go:embed report_template.html
var templateFS embed.FS

// RiskRow is one vulnerability-class score in the security table.
type RiskRow struct {
	Name  string
	Score int
	Level string
}

// TimelineRow is one checkpoint formatted for the template.
type TimelineRow struct {
	Offset       string
	Category     string
	ID           string
	Context      string
	TriggerFired bool
}

// ReportData is the data model passed to the HTML template.
type ReportData struct {
	Version     string
	RunID       string
	GeneratedAt string

	Hostname     string
	OS           string
	Platform     string
	Kernel       string
	Architecture string
	NumCPUs      int

	Target      string
	Args        string
	ExitCode    int
	ExitMeaning string
	Success     bool
	Duration    string
	TimedOut    bool

	PeakMemoryKB int64
	StdoutBytes  int64
	StderrBytes  int64

	VerboseMessages int
	ErrorMessages   int
	WarningMessages int

	ToolClass           string
	BehaviorPattern     string
	PerformanceCategory string
	ComplexityScore     int
	EfficiencyScore     int

	HasSecurity    bool
	SecurityScore  int
	Classification string
	Risks          []RiskRow
	DangerousFuncs string
	CrashLocation  string
	StackTrace     []string

	Language   string
	Runtime    string
	Frameworks string

	Timeline []TimelineRow
}

// GenerateHTMLReport writes the run report to outputPath.
func GenerateHTMLReport(outputPath string, r *output.Report) error {
	tmpl, err := template.ParseFS(templateFS, "report_template.html")
	if err != nil {
		return fmt.Errorf("parsing report template: %w", err)
	}

	data := buildData(r)

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

func riskRows(s *models.SecurityAnalysis) []RiskRow {
	rows := []RiskRow{
		{Name: "Buffer overflow", Score: s.BufferOverflowRisk},
		{Name: "Use after free", Score: s.UseAfterFreeRisk},
		{Name: "Format string", Score: s.FormatStringRisk},
		{Name: "Null pointer", Score: s.NullPointerRisk},
		{Name: "Integer overflow", Score: s.IntegerOverflowRisk},
		{Name: "Uninitialized memory", Score: s.UninitializedMemoryRisk},
		{Name: "Memory leaks", Score: s.MemoryLeakIndicators},
	}
	out := rows[:0]
	for _, row := range rows {
		if row.Score == 0 {
			continue
		}
		switch {
		case row.Score >= 4:
			row.Level = "fail"
		case row.Score >= 2:
			row.Level = "warn"
		default:
			row.Level = "dim"
		}
		out = append(out, row)
	}
	return out
}

func buildData(r *output.Report) ReportData {
	data := ReportData{
		Version:     r.Version,
		RunID:       r.RunID,
		GeneratedAt: r.Timestamp.Format(time.RFC1123),

		Hostname:     r.Host.Hostname,
		OS:           r.Host.OS,
		Platform:     r.Host.Platform,
		Kernel:       r.Host.KernelVersion,
		Architecture: r.Host.Arch,
		NumCPUs:      r.Host.NumCPU,

		Target:      r.TargetPath,
		Args:        strings.Join(r.TargetArgs, " "),
		ExitCode:    r.Execution.ExitCode,
		ExitMeaning: r.Execution.ExitMeaning,
		Success:     r.Execution.Success,
		Duration:    fmt.Sprintf("%.3fs", r.Execution.ExecutionTime),
		TimedOut:    r.Execution.TimedOut,

		PeakMemoryKB: r.Memory.PeakKB,
		StdoutBytes:  r.IO.StdoutBytes,
		StderrBytes:  r.IO.StderrBytes,

		VerboseMessages: r.Intelligence.VerboseMessages,
		ErrorMessages:   r.Intelligence.ErrorMessages,
		WarningMessages: r.Intelligence.WarningMessages,
	}

	if d := r.Deep; d != nil {
		data.ToolClass = d.ToolClassification
		data.BehaviorPattern = d.BehaviorPattern
		data.PerformanceCategory = d.PerformanceCategory
		data.ComplexityScore = d.OutputComplexityScore
		data.EfficiencyScore = d.ResourceEfficiencyScore

		if s := d.Security; s != nil {
			data.HasSecurity = true
			data.SecurityScore = s.OverallSecurityScore
			data.Classification = s.Classification
			data.Risks = riskRows(s)
			data.DangerousFuncs = strings.Join(s.VulnerableFunctions, ", ")
			data.StackTrace = s.StackTrace
			if s.CrashFunction != "" {
				data.CrashLocation = s.CrashFunction
				if s.SourceFile != "" {
					data.CrashLocation += fmt.Sprintf(" at %s:%d", s.SourceFile, s.CrashLine)
				}
			}
		}
		if l := d.Language; l != nil {
			data.Language = l.DetectedLanguage
			data.Runtime = l.RuntimeVersion
			data.Frameworks = strings.Join(l.Frameworks, ", ")
		}
	}

	for _, cp := range r.Checkpoints {
		data.Timeline = append(data.Timeline, TimelineRow{
			Offset:       fmt.Sprintf("%.3fs", cp.OffsetSecs),
			Category:     cp.Category,
			ID:           cp.ID,
			Context:      cp.Context,
			TriggerFired: cp.TriggerFired,
		})
	}
	return data
}
