package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/michkochris/rune-analyze/internal/config"
	"github.com/michkochris/rune-analyze/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(24)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// HumanWriter renders the report for a terminal. Section depth follows the
// run's verbosity: quiet prints the verdict line only, very-verbose adds the
// checkpoint timeline.
type HumanWriter struct {
	out       io.Writer
	verbosity config.Verbosity
}

// compile-time interface check
var _ Writer = (*HumanWriter)(nil)

// NewHumanWriter creates a human-readable writer targeting out.
func NewHumanWriter(out io.Writer, verbosity config.Verbosity) *HumanWriter {
	return &HumanWriter{out: out, verbosity: verbosity}
}

func (w *HumanWriter) WriteReport(r *Report) error {
	if w.verbosity == config.VerbosityQuiet {
		return w.writeVerdict(r)
	}

	fmt.Fprintln(w.out, titleStyle.Render("rune-analyze report"))
	fmt.Fprintln(w.out, dimStyle.Render(fmt.Sprintf("run %s on %s (%s)", r.RunID, r.Host.Hostname, r.Host.OS)))
	fmt.Fprintln(w.out)

	w.writeExecution(r)
	w.writeResources(r)
	w.writeIntelligence(r)
	if r.Deep != nil {
		w.writeDeep(r.Deep)
	}
	if w.verbosity >= config.VerbosityVeryVerbose {
		w.writeTimeline(r)
	}
	return w.writeVerdict(r)
}

func (w *HumanWriter) field(label, value string) {
	fmt.Fprintf(w.out, "  %s %s\n", labelStyle.Render(label), value)
}

func (w *HumanWriter) writeExecution(r *Report) {
	fmt.Fprintln(w.out, sectionStyle.Render("Execution"))
	w.field("target", r.TargetPath)
	if len(r.TargetArgs) > 0 {
		w.field("arguments", strings.Join(r.TargetArgs, " "))
	}
	status := okStyle.Render(fmt.Sprintf("exit %d", r.Execution.ExitCode))
	if !r.Execution.Success {
		status = badStyle.Render(fmt.Sprintf("exit %d (%s)", r.Execution.ExitCode, r.Execution.ExitMeaning))
	}
	w.field("status", status)
	w.field("wall time", fmt.Sprintf("%.3fs", r.Execution.ExecutionTime))
	if r.Execution.TimedOut {
		w.field("timeout", badStyle.Render("deadline exceeded, target terminated"))
	}
	if r.Execution.ChildPID != 0 {
		w.field("pid", fmt.Sprintf("%d", r.Execution.ChildPID))
	}
	fmt.Fprintln(w.out)
}

func (w *HumanWriter) writeResources(r *Report) {
	fmt.Fprintln(w.out, sectionStyle.Render("Resources"))
	w.field("peak memory", fmt.Sprintf("%d KB", r.Memory.PeakKB))
	w.field("stdout", fmt.Sprintf("%d bytes", r.IO.StdoutBytes))
	w.field("stderr", fmt.Sprintf("%d bytes", r.IO.StderrBytes))
	fmt.Fprintln(w.out)
}

func (w *HumanWriter) writeIntelligence(r *Report) {
	i := r.Intelligence
	if i.VerboseMessages == 0 && i.ErrorMessages == 0 && i.WarningMessages == 0 {
		return
	}
	fmt.Fprintln(w.out, sectionStyle.Render("Output classification"))
	w.field("verbose messages", fmt.Sprintf("%d", i.VerboseMessages))
	if i.ErrorMessages > 0 {
		w.field("error messages", badStyle.Render(fmt.Sprintf("%d", i.ErrorMessages)))
	}
	if i.WarningMessages > 0 {
		w.field("warning messages", warnStyle.Render(fmt.Sprintf("%d", i.WarningMessages)))
	}
	fmt.Fprintln(w.out)
}

func (w *HumanWriter) writeDeep(d *models.DeepAnalysis) {
	fmt.Fprintln(w.out, sectionStyle.Render("Deep analysis"))
	w.field("tool class", d.ToolClassification)
	w.field("behavior", d.BehaviorPattern)
	w.field("performance", d.PerformanceCategory)
	w.field("output complexity", scoreBar(d.OutputComplexityScore))
	w.field("resource efficiency", scoreBar(d.ResourceEfficiencyScore))
	if d.Timing.Heuristic {
		w.field("timing (heuristic)", fmt.Sprintf("startup %.3fs / processing %.3fs / cleanup %.3fs",
			d.Timing.StartupSeconds, d.Timing.ProcessingSeconds, d.Timing.CleanupSeconds))
	}
	fmt.Fprintln(w.out)

	if d.Security != nil {
		w.writeSecurity(d.Security)
	}
	if d.Language != nil && d.Language.DetectedLanguage != "Unknown" {
		w.writeLanguage(d.Language)
	}
	if d.Network != nil {
		w.writeNetwork(d.Network)
	}
}

func (w *HumanWriter) writeSecurity(s *models.SecurityAnalysis) {
	fmt.Fprintln(w.out, sectionStyle.Render("Security"))
	score := okStyle
	if s.OverallSecurityScore <= 3 {
		score = badStyle
	} else if s.OverallSecurityScore <= 6 {
		score = warnStyle
	}
	w.field("security score", score.Render(fmt.Sprintf("%d/10", s.OverallSecurityScore)))
	if s.Classification != "" {
		w.field("classification", s.Classification)
	}
	risks := []struct {
		name string
		val  int
	}{
		{"buffer overflow", s.BufferOverflowRisk},
		{"use after free", s.UseAfterFreeRisk},
		{"format string", s.FormatStringRisk},
		{"null pointer", s.NullPointerRisk},
		{"integer overflow", s.IntegerOverflowRisk},
		{"uninitialized memory", s.UninitializedMemoryRisk},
		{"memory leaks", s.MemoryLeakIndicators},
	}
	for _, risk := range risks {
		if risk.val > 0 {
			w.field(risk.name+" risk", riskLevel(risk.val))
		}
	}
	if s.DangerousFunctionCount > 0 {
		w.field("dangerous functions", badStyle.Render(
			fmt.Sprintf("%d (%s)", s.DangerousFunctionCount, strings.Join(s.VulnerableFunctions, ", "))))
	}
	if s.CrashFunction != "" {
		loc := s.CrashFunction
		if s.SourceFile != "" {
			loc += fmt.Sprintf(" at %s:%d", s.SourceFile, s.CrashLine)
		}
		w.field("crash location", badStyle.Render(loc))
	}
	for _, frame := range s.StackTrace {
		fmt.Fprintf(w.out, "    %s\n", dimStyle.Render(frame))
	}
	fmt.Fprintln(w.out)
}

func (w *HumanWriter) writeLanguage(l *models.LanguageAnalysis) {
	fmt.Fprintln(w.out, sectionStyle.Render("Language"))
	w.field("language", l.DetectedLanguage)
	if l.RuntimeVersion != "" {
		w.field("runtime", l.RuntimeVersion)
	}
	if l.DependencyManager != "" {
		w.field("dependency manager", l.DependencyManager)
	}
	if len(l.Frameworks) > 0 {
		w.field("frameworks", strings.Join(l.Frameworks, ", "))
	}
	fmt.Fprintln(w.out)
}

func (w *HumanWriter) writeNetwork(n *models.NetworkAnalysis) {
	fmt.Fprintln(w.out, sectionStyle.Render("Network"))
	w.field("network score", fmt.Sprintf("%d/10", n.NetworkScore))
	if n.ConnectionsDetected > 0 {
		w.field("connections", fmt.Sprintf("%d", n.ConnectionsDetected))
	}
	if len(n.ExternalHosts) > 0 {
		w.field("external hosts", strings.Join(n.ExternalHosts, ", "))
	}
	for _, repo := range n.RepositoryURLs {
		w.field("repository", repo)
	}
	if n.Suspicious {
		w.field("verdict", badStyle.Render("SUSPICIOUS: "+n.Summary))
	} else if n.Summary != "" {
		w.field("note", n.Summary)
	}
	fmt.Fprintln(w.out)
}

func (w *HumanWriter) writeVerdict(r *Report) error {
	verdict := okStyle.Render("PASS")
	if !r.Execution.Success {
		verdict = badStyle.Render(fmt.Sprintf("FAIL (%s)", r.Execution.ExitMeaning))
	}
	_, err := fmt.Fprintf(w.out, "%s %s in %.3fs\n", verdict, r.TargetPath, r.Execution.ExecutionTime)
	return err
}

// Close is a no-op; the writer does not own its destination.
func (w *HumanWriter) Close() error { return nil }

func scoreBar(score int) string {
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return fmt.Sprintf("%s%s %d/10", strings.Repeat("█", score), strings.Repeat("░", 10-score), score)
}

func riskLevel(v int) string {
	switch {
	case v >= 4:
		return badStyle.Render(fmt.Sprintf("high (%d/5)", v))
	case v >= 2:
		return warnStyle.Render(fmt.Sprintf("moderate (%d/5)", v))
	default:
		return fmt.Sprintf("low (%d/5)", v)
	}
}
