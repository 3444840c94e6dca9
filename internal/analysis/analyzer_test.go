package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michkochris/rune-analyze/internal/checkpoint"
	"github.com/michkochris/rune-analyze/internal/config"
	"github.com/michkochris/rune-analyze/internal/models"
)

type recordingPass struct {
	name string
	ran  *[]string
	err  error
}

func (p *recordingPass) Name() string { return p.name }
func (p *recordingPass) Analyze(context.Context, *Target, *models.Result) error {
	*p.ran = append(*p.ran, p.name)
	return p.err
}

func TestPipelineRunsAllPassesDespiteFailures(t *testing.T) {
	var ran []string
	log := checkpoint.NewLog(nil)
	p := &Pipeline{
		passes: []Pass{
			&recordingPass{name: "one", ran: &ran},
			&recordingPass{name: "two", ran: &ran, err: errors.New("tool missing")},
			&recordingPass{name: "three", ran: &ran},
		},
		log: log,
	}

	p.Run(context.Background(), newTestTarget("/bin/true"), &models.Result{})

	assert.Equal(t, []string{"one", "two", "three"}, ran,
		"a failed pass never stops the pipeline")

	var recorded bool
	for _, cp := range log.Snapshot() {
		if cp.ID == "PASS: two unavailable" {
			recorded = true
		}
	}
	assert.True(t, recorded, "failures land on the timeline")
}

func TestNewPipelineFeatureGating(t *testing.T) {
	log := checkpoint.NewLog(nil)
	rules := DefaultRules()

	base := NewPipeline(&config.Config{Features: config.FeatureSet{}}, rules, log)
	withSec := NewPipeline(&config.Config{
		Features: config.FeatureSet{config.FeatureSecurity: true},
	}, rules, log)
	withAll := NewPipeline(&config.Config{
		Features: config.FeatureSet{
			config.FeatureSecurity: true,
			config.FeatureNetwork:  true,
		},
	}, rules, log)

	assert.Greater(t, withSec.Len(), base.Len(), "security adds passes")
	assert.Greater(t, withAll.Len(), withSec.Len(), "network adds a pass")
}

func TestNewStaticPipelineNeverExecutes(t *testing.T) {
	log := checkpoint.NewLog(nil)
	p := NewStaticPipeline(DefaultRules(), log)
	require.NotZero(t, p.Len())

	// Static passes tolerate a nonexistent target; nothing must panic and
	// nothing must fork the target itself.
	target := newTestTarget("/no/such/binary")
	target.runCommand = fakeRunner("", errors.New("no tools"))
	p.Run(context.Background(), target, &models.Result{})
}
