package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michkochris/rune-analyze/internal/config"
)

func TestHumanWriterQuietIsOneLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewHumanWriter(&buf, config.VerbosityQuiet)
	require.NoError(t, w.WriteReport(sampleReport()))

	out := strings.TrimRight(buf.String(), "\n")
	assert.NotContains(t, out, "\n", "quiet mode prints the verdict line only")
	assert.Contains(t, out, "/bin/echo")
	assert.Contains(t, out, "PASS")
}

func TestHumanWriterNormalSections(t *testing.T) {
	var buf bytes.Buffer
	w := NewHumanWriter(&buf, config.VerbosityNormal)
	require.NoError(t, w.WriteReport(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Execution")
	assert.Contains(t, out, "Resources")
	assert.Contains(t, out, "/bin/echo")
	assert.Contains(t, out, "1536 KB")
	assert.NotContains(t, out, "Timeline", "timeline only appears at very-verbose")
}

func TestHumanWriterFailureVerdict(t *testing.T) {
	rep := sampleReport()
	rep.Execution.ExitCode = 139
	rep.Execution.Success = false
	rep.Execution.ExitMeaning = "SIGSEGV - Segmentation Fault (Memory Corruption)"

	var buf bytes.Buffer
	w := NewHumanWriter(&buf, config.VerbosityNormal)
	require.NoError(t, w.WriteReport(rep))

	out := buf.String()
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "SIGSEGV")
}

func TestHumanWriterTimelineAtVeryVerbose(t *testing.T) {
	var buf bytes.Buffer
	w := NewHumanWriter(&buf, config.VerbosityVeryVerbose)
	require.NoError(t, w.WriteReport(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Timeline (2 checkpoints)")
	assert.Contains(t, out, "EXEC: target_completed")
}

func TestHumanWriterDeepSections(t *testing.T) {
	rep := sampleReport()
	deep := rep.Result.EnsureDeep()
	deep.ToolClassification = "file_utility"
	deep.BehaviorPattern = "fast_execution"
	deep.PerformanceCategory = "Excellent"
	sec := rep.Result.EnsureSecurity()
	sec.OverallSecurityScore = 1
	sec.Classification = "critical_memory_corruption"
	sec.CrashFunction = "copy_input"
	sec.SourceFile = "demo.c"
	sec.CrashLine = 42
	lang := rep.Result.EnsureLanguage()
	lang.DetectedLanguage = "C"

	var buf bytes.Buffer
	w := NewHumanWriter(&buf, config.VerbosityNormal)
	require.NoError(t, w.WriteReport(rep))

	out := buf.String()
	assert.Contains(t, out, "file_utility")
	assert.Contains(t, out, "critical_memory_corruption")
	assert.Contains(t, out, "copy_input at demo.c:42")
	assert.Contains(t, out, "Language")
}
