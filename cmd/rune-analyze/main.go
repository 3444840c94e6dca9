// Command rune-analyze supervises an executable, records a checkpoint
// timeline of the run, and reports on its behavior, resources, and
// security posture.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/michkochris/rune-analyze/internal/analysis"
	"github.com/michkochris/rune-analyze/internal/checkpoint"
	"github.com/michkochris/rune-analyze/internal/config"
	"github.com/michkochris/rune-analyze/internal/models"
	"github.com/michkochris/rune-analyze/internal/output"
	"github.com/michkochris/rune-analyze/internal/progress"
	"github.com/michkochris/rune-analyze/internal/report"
	"github.com/michkochris/rune-analyze/internal/runner"
)

// Analyzer exit codes. Target failure is mirrored as 3 so scripts can tell
// "analyzer broke" from "target broke".
const (
	exitOK            = 0
	exitConfig        = 1
	exitIOSetup       = 2
	exitTargetFailure = 3
)

type cliFlags struct {
	quiet       bool
	verbose     int
	jsonOut     bool
	humanOut    bool
	bothOut     bool
	memory      bool
	ioStats     bool
	security    bool
	performance bool
	network     bool
	all         bool
	monitor     string
	dryRun      bool
	safeAnalyze bool
	force       bool
	timeout     time.Duration
	sqlitePath  string
	csvPath     string
	htmlPath    string
	rulesPath   string
}

func main() {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:   "rune-analyze [flags] <executable> [args...]",
		Short: "Dynamic executable analyzer with a checkpoint timeline",
		Long: `rune-analyze runs a target executable under supervision, capturing its
output, memory profile, and termination cause, then enriches the run with
best-effort static and dynamic analysis passes.

Executing unknown code is dangerous. Any mode that actually runs the target
requires -f/--force; --dry-run and --safe-analyze never fork the target.

Exit codes: 0 target succeeded, 1 configuration or validation error,
2 could not set up output capture, 3 target failed.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags, args)
		},
	}
	root.Version = output.Version

	fs := root.Flags()
	fs.SetInterspersed(false)

	fs.BoolVarP(&flags.quiet, "quiet", "q", false, "suppress everything except the verdict line")
	fs.CountVarP(&flags.verbose, "verbose", "v", "increase verbosity (-v info, -vv full deep analysis)")
	fs.BoolVar(&flags.jsonOut, "json", false, "machine readable JSON report")
	fs.BoolVar(&flags.humanOut, "human", false, "human readable report (default)")
	fs.BoolVar(&flags.bothOut, "both", false, "human report plus JSON")
	fs.BoolVar(&flags.memory, "memory", false, "memory analysis")
	fs.BoolVar(&flags.ioStats, "io", false, "I/O analysis")
	fs.BoolVar(&flags.security, "security", false, "security analysis")
	fs.BoolVar(&flags.performance, "performance", false, "performance analysis")
	fs.BoolVar(&flags.network, "network", false, "network analysis")
	fs.BoolVar(&flags.all, "all", false, "enable every analysis feature")
	fs.StringVar(&flags.monitor, "monitor", "", "run an arbitrary command line through the shell")
	fs.BoolVar(&flags.dryRun, "dry-run", false, "validate and show the plan without executing")
	fs.BoolVar(&flags.safeAnalyze, "safe-analyze", false, "static analysis only, never executes the target")
	fs.BoolVarP(&flags.force, "force", "f", false, "confirm that executing the target is intended")
	fs.DurationVar(&flags.timeout, "timeout", 0, "kill the target after this duration (0 = unlimited)")
	fs.StringVar(&flags.sqlitePath, "sqlite", "", "also persist the run to a SQLite database")
	fs.StringVar(&flags.csvPath, "csv", "", "also export the checkpoint timeline as CSV")
	fs.StringVar(&flags.htmlPath, "html", "", "also write a standalone HTML report")
	fs.StringVar(&flags.rulesPath, "rules", "", "YAML file extending the built-in detection rules")

	root.SetArgs(os.Args[1:])
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rune-analyze:", err)
		os.Exit(exitCodeFor(err))
	}
}

// errTargetFailed carries the mirror bit out of run without being a real
// analyzer error.
var errTargetFailed = errors.New("target failed")

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, errTargetFailed):
		return exitTargetFailure
	case errors.Is(err, runner.ErrIOSetup):
		return exitIOSetup
	default:
		return exitConfig
	}
}

func run(flags *cliFlags, args []string) error {
	cfg, err := buildConfig(flags, args)
	if err != nil {
		return err
	}
	setupLogging(cfg.Verbosity)

	if cfg.Mode != config.ModeMonitor {
		execBit, err := config.ValidateExecutable(cfg.TargetPath)
		if err != nil {
			return err
		}
		if !execBit {
			slog.Warn("target has no execute permission, exec will likely fail",
				"target", cfg.TargetPath)
		}
	}

	rules, err := analysis.LoadRules(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrConfig, err)
	}

	if cfg.Mode == config.ModeDryRun {
		return dryRun(cfg)
	}

	registry := checkpoint.NewRegistry()
	registerBuiltinTriggers(registry)
	log := checkpoint.NewLog(registry)
	if cfg.Mode != config.ModeMonitor {
		log.Append("VALIDATION: executable_validated", checkpoint.CategoryLoad, cfg.TargetPath)
	}

	res := &models.Result{TargetPath: cfg.TargetPath, TargetArgs: cfg.TargetArgs}
	target := analysis.NewTarget(cfg.TargetPath, cfg.TargetArgs, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Mode == config.ModeSafe {
		pipeline := analysis.NewStaticPipeline(rules, log)
		if cfg.Verbosity >= config.VerbosityVerbose {
			pipeline = pipeline.WithTracker(progress.NewTracker(pipeline.Len(), false))
		}
		pipeline.Run(ctx, target, res)
		res.Execution.ExitMeaning = "not executed (safe analysis)"
		res.Execution.Success = true
		log.Cleanup()
		return writeReports(cfg, res, log)
	}

	sup := runner.New(cfg, log)
	if err := sup.Run(ctx, res); err != nil {
		return err
	}

	if wantDeep(cfg) {
		pipeline := analysis.NewPipeline(cfg, rules, log)
		if cfg.Verbosity >= config.VerbosityVerbose {
			pipeline = pipeline.WithTracker(progress.NewTracker(pipeline.Len(), false))
		}
		pipeline.Run(ctx, target, res)
	}
	log.Cleanup()

	if err := writeReports(cfg, res, log); err != nil {
		return err
	}
	if !res.Execution.Success {
		return fmt.Errorf("%w: %s exited %d (%s)", errTargetFailed,
			cfg.TargetPath, res.Execution.ExitCode, res.Execution.ExitMeaning)
	}
	return nil
}

func buildConfig(flags *cliFlags, args []string) (*config.Config, error) {
	cfg := &config.Config{
		Timeout:    flags.timeout,
		SQLitePath: flags.sqlitePath,
		CSVPath:    flags.csvPath,
		HTMLPath:   flags.htmlPath,
		RulesPath:  flags.rulesPath,
		Features:   config.FeatureSet{},
	}

	switch {
	case flags.quiet:
		cfg.Verbosity = config.VerbosityQuiet
	case flags.verbose >= 2:
		cfg.Verbosity = config.VerbosityVeryVerbose
	case flags.verbose == 1:
		cfg.Verbosity = config.VerbosityVerbose
	default:
		cfg.Verbosity = config.VerbosityNormal
	}

	switch {
	case flags.bothOut:
		cfg.OutputFormat = config.FormatBoth
	case flags.jsonOut && flags.humanOut:
		cfg.OutputFormat = config.FormatBoth
	case flags.jsonOut:
		cfg.OutputFormat = config.FormatJSON
	default:
		cfg.OutputFormat = config.FormatHuman
	}

	for feature, on := range map[config.Feature]bool{
		config.FeatureMemory:      flags.memory || flags.all,
		config.FeatureIO:          flags.ioStats || flags.all,
		config.FeatureSecurity:    flags.security || flags.all,
		config.FeaturePerformance: flags.performance || flags.all,
		config.FeatureNetwork:     flags.network || flags.all,
		config.FeatureDeep:        flags.all,
	} {
		if on {
			cfg.Features[feature] = true
		}
	}

	modeFlags := 0
	for _, set := range []bool{flags.monitor != "", flags.dryRun, flags.safeAnalyze} {
		if set {
			modeFlags++
		}
	}
	if modeFlags > 1 {
		return nil, fmt.Errorf("%w: --monitor, --dry-run and --safe-analyze are mutually exclusive",
			config.ErrConfig)
	}

	switch {
	case flags.monitor != "":
		cfg.Mode = config.ModeMonitor
		cfg.MonitorCommand = flags.monitor
		cfg.TargetPath = "/bin/sh"
	case flags.dryRun:
		cfg.Mode = config.ModeDryRun
	case flags.safeAnalyze:
		cfg.Mode = config.ModeSafe
	default:
		cfg.Mode = config.ModeDirect
	}
	if cfg.Mode != config.ModeMonitor {
		if len(args) > 0 {
			cfg.TargetPath = args[0]
			cfg.TargetArgs = args[1:]
		}
	}
	cfg.ForceExecution = flags.force

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(v config.Verbosity) {
	level := slog.LevelWarn
	switch v {
	case config.VerbosityQuiet:
		level = slog.LevelError
	case config.VerbosityVerbose:
		level = slog.LevelInfo
	case config.VerbosityVeryVerbose:
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// registerBuiltinTriggers wires the default trigger set. They are logging
// hooks; user-visible behavior does not depend on them.
func registerBuiltinTriggers(r *checkpoint.Registry) {
	_ = r.Register("SEC:*", "builtin-security", func(cp checkpoint.Checkpoint) {
		slog.Warn("security checkpoint", "id", cp.ID, "context", cp.Context)
	})
	_ = r.Register("MEM: new_peak", "builtin-memory", func(cp checkpoint.Checkpoint) {
		slog.Debug("memory peak", "context", cp.Context)
	})
	_ = r.Register("EXEC: target_completed", "builtin-completion", func(cp checkpoint.Checkpoint) {
		slog.Info("target completed", "context", cp.Context)
	})
}

func dryRun(cfg *config.Config) error {
	fmt.Println("dry run: nothing will be executed")
	fmt.Printf("  target:   %s\n", cfg.TargetPath)
	if len(cfg.TargetArgs) > 0 {
		fmt.Printf("  args:     %v\n", cfg.TargetArgs)
	}
	fmt.Printf("  mode:     %s\n", cfg.Mode)
	fmt.Printf("  features: %s\n", featureList(cfg))
	if cfg.Timeout > 0 {
		fmt.Printf("  timeout:  %s\n", cfg.Timeout)
	}
	fmt.Println("re-run with -f/--force to execute")
	return nil
}

func featureList(cfg *config.Config) string {
	s := ""
	for _, f := range []config.Feature{
		config.FeatureMemory, config.FeatureIO, config.FeatureSecurity,
		config.FeaturePerformance, config.FeatureNetwork, config.FeatureDeep,
	} {
		if cfg.Features[f] {
			if s != "" {
				s += ","
			}
			s += string(f)
		}
	}
	if s == "" {
		return "core"
	}
	return s
}

func wantDeep(cfg *config.Config) bool {
	return len(cfg.Features) > 0 || cfg.Verbosity >= config.VerbosityVerbose
}

func writeReports(cfg *config.Config, res *models.Result, log *checkpoint.Log) error {
	rep := output.NewReport(res, log.Snapshot())

	var writers []output.Writer
	switch cfg.OutputFormat {
	case config.FormatJSON:
		writers = append(writers, output.NewJSONWriter(os.Stdout, cfg.Verbosity))
	case config.FormatBoth:
		writers = append(writers,
			output.NewHumanWriter(os.Stdout, cfg.Verbosity),
			output.NewJSONWriter(os.Stdout, cfg.Verbosity))
	default:
		writers = append(writers, output.NewHumanWriter(os.Stdout, cfg.Verbosity))
	}
	if cfg.SQLitePath != "" {
		w, err := output.NewSQLiteWriter(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("sqlite sink: %w", err)
		}
		writers = append(writers, w)
	}
	if cfg.CSVPath != "" {
		w, err := output.NewCSVWriter(cfg.CSVPath)
		if err != nil {
			return fmt.Errorf("csv sink: %w", err)
		}
		writers = append(writers, w)
	}

	mw := output.NewMultiWriter(writers...)
	if err := mw.WriteReport(rep); err != nil {
		mw.Close()
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	if cfg.HTMLPath != "" {
		if err := report.GenerateHTMLReport(cfg.HTMLPath, rep); err != nil {
			return fmt.Errorf("html report: %w", err)
		}
		slog.Info("html report written", "path", cfg.HTMLPath)
	}
	return nil
}
