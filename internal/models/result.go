// Package models defines the analysis result record accumulated over a run.
package models

// Result is the single mutable accumulator for one analyzed run. The run
// owns it exclusively; enrichment passes observe and mutate it in a defined
// order, and the reporters treat it as read-only.
type Result struct {
	TargetPath string   `json:"target_executable"`
	TargetArgs []string `json:"target_args,omitempty"`

	Execution    ExecutionInfo    `json:"execution"`
	Memory       MemoryInfo       `json:"memory"`
	IO           IOInfo           `json:"io"`
	Intelligence IntelligenceInfo `json:"intelligence"`

	// Deep is populated only when deep analysis is enabled.
	Deep *DeepAnalysis `json:"deep_analysis,omitempty"`
}

// ExecutionInfo describes how the child ran and terminated.
type ExecutionInfo struct {
	ExitCode      int     `json:"exit_code"`
	ExitMeaning   string  `json:"exit_meaning,omitempty"`
	Success       bool    `json:"success"`
	ExecutionTime float64 `json:"execution_time"`
	ChildPID      int     `json:"child_pid,omitempty"`
	TimedOut      bool    `json:"timed_out,omitempty"`
}

// MemoryInfo holds the sampled memory profile.
type MemoryInfo struct {
	PeakKB int64 `json:"peak_kb"`
}

// IOInfo holds raw byte totals per stream.
type IOInfo struct {
	StdoutBytes int64 `json:"stdout_bytes"`
	StderrBytes int64 `json:"stderr_bytes"`
}

// IntelligenceInfo holds the output classifier counters. Counts are
// best-effort across chunk boundaries; only "at least one seen" is
// contractual.
type IntelligenceInfo struct {
	VerboseMessages int `json:"verbose_messages"`
	ErrorMessages   int `json:"error_messages"`
	WarningMessages int `json:"warning_messages"`
}

// DeepAnalysis aggregates everything the enrichment pipeline derives.
type DeepAnalysis struct {
	ToolClassification      string          `json:"tool_classification"`
	BehaviorPattern         string          `json:"behavior_pattern"`
	PerformanceCategory     string          `json:"performance_category"`
	OutputComplexityScore   int             `json:"output_complexity_score"`
	ResourceEfficiencyScore int             `json:"resource_efficiency_score"`
	Timing                  TimingBreakdown `json:"timing_breakdown"`

	Language *LanguageAnalysis `json:"language_analysis,omitempty"`
	Security *SecurityAnalysis `json:"security_analysis,omitempty"`
	Network  *NetworkAnalysis  `json:"network_analysis,omitempty"`
}

// TimingBreakdown is a heuristic partition of total execution time keyed on
// tool class. It is decoration, not measurement, and is labeled as such in
// every report.
type TimingBreakdown struct {
	StartupSeconds    float64 `json:"startup_time_seconds"`
	ProcessingSeconds float64 `json:"processing_time_seconds"`
	CleanupSeconds    float64 `json:"cleanup_time_seconds"`
	Heuristic         bool    `json:"timing_is_heuristic"`
}

// SecurityAnalysis holds per-class risk scores (0-5), the overall score
// (1-10, lower is worse), and crash pinpoint data when a backtrace was
// obtainable.
type SecurityAnalysis struct {
	BufferOverflowRisk      int `json:"buffer_overflow_risk"`
	UseAfterFreeRisk        int `json:"use_after_free_risk"`
	FormatStringRisk        int `json:"format_string_risk"`
	NullPointerRisk         int `json:"null_pointer_risk"`
	IntegerOverflowRisk     int `json:"integer_overflow_risk"`
	UninitializedMemoryRisk int `json:"uninitialized_memory_risk"`
	MemoryLeakIndicators    int `json:"memory_leak_indicators"`

	DangerousFunctionCount int      `json:"dangerous_function_count"`
	OverallSecurityScore   int      `json:"overall_security_score"`
	Classification         string   `json:"security_classification"`
	VulnerableFunctions    []string `json:"vulnerable_functions,omitempty"`

	HasDebugSymbols bool     `json:"has_debug_symbols"`
	CrashFunction   string   `json:"crash_function,omitempty"`
	CrashLine       int      `json:"crash_line,omitempty"`
	SourceFile      string   `json:"source_file,omitempty"`
	StackTrace      []string `json:"stack_trace,omitempty"`
	Details         string   `json:"vulnerability_details,omitempty"`
}

// LanguageAnalysis describes the detected language and runtime of the target.
type LanguageAnalysis struct {
	DetectedLanguage  string   `json:"detected_language"`
	RuntimeVersion    string   `json:"runtime_version,omitempty"`
	DependencyManager string   `json:"dependency_manager,omitempty"`
	ManagedMemory     bool     `json:"uses_managed_memory"`
	UnsafeCode        bool     `json:"uses_unsafe_code"`
	Frameworks        []string `json:"detected_frameworks,omitempty"`
}

// NetworkAnalysis summarizes observed and inferred network behavior.
type NetworkAnalysis struct {
	ConnectionsDetected int      `json:"connections_detected"`
	HTTPRequests        int      `json:"http_requests"`
	DNSQueries          int      `json:"dns_queries"`
	ExternalHosts       []string `json:"external_hosts,omitempty"`
	RepositoryURLs      []string `json:"repository_urls,omitempty"`
	PackageDownloads    bool     `json:"package_downloads"`
	DataUpload          bool     `json:"data_upload"`
	NetworkScore        int      `json:"network_score"`
	Suspicious          bool     `json:"suspicious"`
	Summary             string   `json:"summary,omitempty"`
}

// EnsureDeep returns the deep-analysis block, allocating it on first use.
func (r *Result) EnsureDeep() *DeepAnalysis {
	if r.Deep == nil {
		r.Deep = &DeepAnalysis{}
	}
	return r.Deep
}

// EnsureSecurity returns the security block, allocating as needed.
func (r *Result) EnsureSecurity() *SecurityAnalysis {
	d := r.EnsureDeep()
	if d.Security == nil {
		d.Security = &SecurityAnalysis{OverallSecurityScore: 10}
	}
	return d.Security
}

// EnsureLanguage returns the language block, allocating as needed.
func (r *Result) EnsureLanguage() *LanguageAnalysis {
	d := r.EnsureDeep()
	if d.Language == nil {
		d.Language = &LanguageAnalysis{DetectedLanguage: "Unknown"}
	}
	return d.Language
}

// EnsureNetwork returns the network block, allocating as needed.
func (r *Result) EnsureNetwork() *NetworkAnalysis {
	d := r.EnsureDeep()
	if d.Network == nil {
		d.Network = &NetworkAnalysis{NetworkScore: 10}
	}
	return d.Network
}
