// Package analysis is the post-execution enrichment pipeline: a fixed,
// ordered list of passes that inspect the target and the run outcome and
// fill in the deep-analysis portion of the Result. Every pass is
// best-effort; a missing external helper degrades to an empty contribution.
package analysis

import (
	"context"
	"log/slog"

	"github.com/michkochris/rune-analyze/internal/checkpoint"
	"github.com/michkochris/rune-analyze/internal/config"
	"github.com/michkochris/rune-analyze/internal/models"
	"github.com/michkochris/rune-analyze/internal/progress"
)

// Pass inspects the target and enriches the result. Later passes may read
// fields earlier ones wrote, so order matters.
type Pass interface {
	Name() string
	Analyze(ctx context.Context, t *Target, r *models.Result) error
}

// Pipeline runs passes in order against one result.
type Pipeline struct {
	passes  []Pass
	log     *checkpoint.Log
	tracker *progress.Tracker
}

// NewPipeline assembles the pass list for the configured features. The
// ordering is fixed: classification and timing feed the scoring passes,
// which feed security; language feeds frameworks.
func NewPipeline(cfg *config.Config, rules *Rules, log *checkpoint.Log) *Pipeline {
	passes := []Pass{
		&classifyPass{},
		&timingPass{},
		&complexityPass{},
		&behaviorPass{},
		&efficiencyPass{},
	}
	if cfg.Features[config.FeatureSecurity] {
		passes = append(passes,
			&securityPass{},
			&symbolsPass{rules: rules},
			&debugInfoPass{},
			&backtracePass{},
		)
	}
	passes = append(passes,
		&languagePass{},
		&frameworksPass{rules: rules},
	)
	if cfg.Features[config.FeatureNetwork] {
		passes = append(passes, &networkPass{rules: rules})
	}
	return &Pipeline{passes: passes, log: log}
}

// NewStaticPipeline assembles the non-executing subset used by safe-analyze:
// only passes that read the binary and its surroundings, never the run.
func NewStaticPipeline(rules *Rules, log *checkpoint.Log) *Pipeline {
	return &Pipeline{
		passes: []Pass{
			&symbolsPass{rules: rules},
			&debugInfoPass{},
			&languagePass{},
			&frameworksPass{rules: rules},
		},
		log: log,
	}
}

// Len reports how many passes the pipeline will run.
func (p *Pipeline) Len() int { return len(p.passes) }

// WithTracker attaches per-pass progress reporting.
func (p *Pipeline) WithTracker(t *progress.Tracker) *Pipeline {
	p.tracker = t
	return p
}

// Run executes every pass. Pass failures are recorded as checkpoints and
// swallowed; enrichment never aborts the run.
func (p *Pipeline) Run(ctx context.Context, t *Target, r *models.Result) {
	for _, pass := range p.passes {
		if p.tracker != nil {
			p.tracker.Start(pass.Name())
		}
		if err := pass.Analyze(ctx, t, r); err != nil {
			slog.Debug("enrichment pass unavailable", "pass", pass.Name(), "err", err)
			p.log.Append("PASS: "+pass.Name()+" unavailable", checkpoint.CategoryMisc, err.Error())
			if p.tracker != nil {
				p.tracker.Fail(pass.Name(), err)
			}
			continue
		}
		if p.tracker != nil {
			p.tracker.Success(pass.Name())
		}
	}
	if p.tracker != nil {
		p.tracker.Finish()
	}
}
