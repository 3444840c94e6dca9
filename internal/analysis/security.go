package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/michkochris/rune-analyze/internal/checkpoint"
	"github.com/michkochris/rune-analyze/internal/models"
	"github.com/michkochris/rune-analyze/internal/runner"
)

// securityPass derives the vulnerability risk profile from the exit outcome
// and cheap filename heuristics. Exit-derived impacts dominate; the filename
// only nudges risks upward for obviously-labeled test binaries.
type securityPass struct{}

func (p *securityPass) Name() string { return "security_assessment" }

func (p *securityPass) Analyze(_ context.Context, t *Target, r *models.Result) error {
	sec := r.EnsureSecurity()

	outcome := runner.Decode(r.Execution.ExitCode)
	applyImpact(sec, outcome.Impact)

	name := strings.ToLower(t.Basename())
	if strings.Contains(name, "overflow") || strings.Contains(name, "buffer") {
		raise(&sec.BufferOverflowRisk, 4)
	}
	if strings.Contains(name, "free") || strings.Contains(name, "uaf") {
		raise(&sec.UseAfterFreeRisk, 4)
	}
	if strings.Contains(name, "format") || strings.Contains(name, "printf") {
		raise(&sec.FormatStringRisk, 4)
	}
	if strings.Contains(name, "vulnerable") || strings.Contains(name, "vuln") {
		raise(&sec.BufferOverflowRisk, 3)
		raise(&sec.FormatStringRisk, 3)
		lower(&sec.OverallSecurityScore, 5)
	}

	clampRisks(sec)

	if sec.OverallSecurityScore <= 3 {
		t.checkpoint("SEC: low_security_score", checkpoint.CategorySec,
			fmt.Sprintf("score=%d class=%s", sec.OverallSecurityScore, sec.Classification))
	}
	if outcome.Tag != runner.TagSuccess && r.Execution.ExitCode >= 128 {
		t.checkpoint("SEC: crash_signal_analyzed", checkpoint.CategorySec, outcome.Meaning)
	}
	return nil
}

func applyImpact(sec *models.SecurityAnalysis, imp runner.SecurityImpact) {
	raise(&sec.BufferOverflowRisk, imp.BufferOverflow)
	raise(&sec.UseAfterFreeRisk, imp.UseAfterFree)
	raise(&sec.FormatStringRisk, imp.FormatString)
	raise(&sec.NullPointerRisk, imp.NullPointer)
	raise(&sec.IntegerOverflowRisk, imp.IntegerOverflow)
	raise(&sec.UninitializedMemoryRisk, imp.UninitializedMemory)
	raise(&sec.MemoryLeakIndicators, imp.MemoryLeak)
	if imp.Score != 0 {
		sec.OverallSecurityScore = imp.Score
	}
	if imp.Classification != "" {
		sec.Classification = imp.Classification
	}
}

func raise(dst *int, to int) {
	if to > *dst {
		*dst = to
	}
}

func lower(dst *int, to int) {
	if to < *dst {
		*dst = to
	}
}

// clampRisks bounds the per-class risks to 0..5 and the overall score to
// 1..10. A clean run reports zero risk, never a floor of one.
func clampRisks(sec *models.SecurityAnalysis) {
	for _, p := range []*int{
		&sec.BufferOverflowRisk, &sec.UseAfterFreeRisk, &sec.FormatStringRisk,
		&sec.NullPointerRisk, &sec.IntegerOverflowRisk,
		&sec.UninitializedMemoryRisk, &sec.MemoryLeakIndicators,
	} {
		if *p < 0 {
			*p = 0
		}
		if *p > 5 {
			*p = 5
		}
	}
	if sec.OverallSecurityScore < 1 {
		sec.OverallSecurityScore = 1
	}
	if sec.OverallSecurityScore > 10 {
		sec.OverallSecurityScore = 10
	}
}
