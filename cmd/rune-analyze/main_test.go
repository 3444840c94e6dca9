package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michkochris/rune-analyze/internal/config"
	"github.com/michkochris/rune-analyze/internal/runner"
)

func TestBuildConfigRejectsConflictingModes(t *testing.T) {
	tests := []struct {
		name  string
		flags cliFlags
	}{
		{"monitor+dry-run", cliFlags{monitor: "echo ok", dryRun: true, force: true}},
		{"monitor+safe-analyze", cliFlags{monitor: "echo ok", safeAnalyze: true, force: true}},
		{"dry-run+safe-analyze", cliFlags{dryRun: true, safeAnalyze: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildConfig(&tt.flags, []string{"/bin/echo"})
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrConfig)
			assert.Contains(t, err.Error(), "mutually exclusive")
		})
	}
}

func TestBuildConfigModes(t *testing.T) {
	cfg, err := buildConfig(&cliFlags{dryRun: true}, []string{"/bin/echo", "hi"})
	require.NoError(t, err)
	assert.Equal(t, config.ModeDryRun, cfg.Mode)
	assert.Equal(t, "/bin/echo", cfg.TargetPath)
	assert.Equal(t, []string{"hi"}, cfg.TargetArgs)

	cfg, err = buildConfig(&cliFlags{monitor: "echo ok", force: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, config.ModeMonitor, cfg.Mode)
	assert.Equal(t, "echo ok", cfg.MonitorCommand)

	cfg, err = buildConfig(&cliFlags{force: true, all: true, timeout: time.Second}, []string{"/bin/echo"})
	require.NoError(t, err)
	assert.Equal(t, config.ModeDirect, cfg.Mode)
	assert.True(t, cfg.Features[config.FeatureDeep])
	assert.Equal(t, time.Second, cfg.Timeout)
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, exitTargetFailure, exitCodeFor(errTargetFailed))
	assert.Equal(t, exitIOSetup, exitCodeFor(runner.ErrIOSetup))
	assert.Equal(t, exitConfig, exitCodeFor(config.ErrConfig))
}
