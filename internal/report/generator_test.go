package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michkochris/rune-analyze/internal/checkpoint"
	"github.com/michkochris/rune-analyze/internal/models"
	"github.com/michkochris/rune-analyze/internal/output"
)

func sampleRun() *output.Report {
	rep := &output.Report{
		Version:   output.Version,
		RunID:     "test-run",
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Host:      output.HostInfo{Hostname: "buildbox", OS: "linux", Arch: "amd64", NumCPU: 4},
		Result: models.Result{
			TargetPath: "/tmp/crasher",
			Execution: models.ExecutionInfo{
				ExitCode:      139,
				ExitMeaning:   "SIGSEGV - Segmentation Fault (Memory Corruption)",
				ExecutionTime: 0.12,
			},
		},
		Checkpoints: []checkpoint.Checkpoint{
			{ID: "EXEC: target_started", Category: checkpoint.CategoryExec, OffsetSecs: 0.001},
			{ID: "SEC: crash_signal_analyzed", Category: checkpoint.CategorySec, OffsetSecs: 0.130, TriggerFired: true},
		},
	}
	sec := rep.Result.EnsureSecurity()
	sec.OverallSecurityScore = 1
	sec.Classification = "critical_memory_corruption"
	sec.BufferOverflowRisk = 5
	sec.CrashFunction = "copy_input"
	sec.SourceFile = "demo.c"
	sec.CrashLine = 42
	return rep
}

func TestGenerateHTMLReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, GenerateHTMLReport(path, sampleRun()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "/tmp/crasher")
	assert.Contains(t, html, "SIGSEGV")
	assert.Contains(t, html, "critical_memory_corruption")
	assert.Contains(t, html, "copy_input at demo.c:42")
	assert.Contains(t, html, "Buffer overflow")
	assert.Contains(t, html, "SEC: crash_signal_analyzed")
	assert.Contains(t, html, "buildbox")
}

func TestGenerateHTMLReportBadPath(t *testing.T) {
	assert.Error(t, GenerateHTMLReport("/no/such/dir/report.html", sampleRun()))
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		cp   checkpoint.Checkpoint
		want string
	}{
		{checkpoint.Checkpoint{ID: "SEC: x", Category: checkpoint.CategorySec, Context: "strcpy found"}, "Security: strcpy found"},
		{checkpoint.Checkpoint{ID: "MEM: new_peak", Category: checkpoint.CategoryMem, Context: "2048 KB"}, "Memory: 2048 KB"},
		{checkpoint.Checkpoint{ID: "SYSTEM: checkpoint_system_initialized", Category: checkpoint.CategoryLoad}, "Startup: SYSTEM: checkpoint_system_initialized"},
		{checkpoint.Checkpoint{ID: "FUNC: step", Category: checkpoint.CategoryFunc, Context: "detail"}, "FUNC: step (detail)"},
		{checkpoint.Checkpoint{ID: "FUNC: bare", Category: checkpoint.CategoryFunc}, "FUNC: bare"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Summarize(tt.cp))
	}
}
