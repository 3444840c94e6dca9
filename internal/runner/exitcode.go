package runner

// Outcome tags for decoded exit codes.
const (
	TagSuccess            = "success"
	TagGenericError       = "generic-error"
	TagNotExecutable      = "not-executable"
	TagNotFound           = "not-found"
	TagInterrupted        = "interrupted"
	TagCodeCorruption     = "code-corruption"
	TagDebugTrap          = "debug-trap"
	TagHeapCorruption     = "heap-corruption"
	TagMemoryAlignment    = "memory-alignment"
	TagArithmeticOverflow = "arithmetic-overflow"
	TagResourceExhaustion = "resource-exhaustion"
	TagMemoryCorruption   = "memory-corruption"
	TagSignalOther        = "signal-other"
	TagUnknown            = "unknown"
)

// SecurityImpact is the deterministic security contribution of an exit code.
// Risk fields raise the matching per-class risk to at least the given value;
// Score, when non-zero, sets the overall security score outright.
type SecurityImpact struct {
	BufferOverflow      int
	UseAfterFree        int
	FormatString        int
	NullPointer         int
	IntegerOverflow     int
	UninitializedMemory int
	MemoryLeak          int

	Score          int
	Classification string
}

// Outcome is the semantic decoding of a raw child exit code.
type Outcome struct {
	Code    int
	Tag     string
	Meaning string
	Impact  SecurityImpact
}

// Decode maps a raw exit code to its tagged outcome. Pure and total: every
// input yields a known tag, and the security impact depends only on the code.
func Decode(code int) Outcome {
	switch code {
	case 0:
		return Outcome{code, TagSuccess, "Success",
			SecurityImpact{Score: 9, Classification: "execution_success"}}
	case 1:
		return Outcome{code, TagGenericError, "General Error",
			SecurityImpact{Score: 7, Classification: "standard_error"}}
	case 2:
		return Outcome{code, TagGenericError, "Misuse of Shell Builtin",
			SecurityImpact{Score: 7, Classification: "standard_error"}}
	case 126:
		return Outcome{code, TagNotExecutable, "Command Cannot Execute", SecurityImpact{}}
	case 127:
		return Outcome{code, TagNotFound, "Command Not Found", SecurityImpact{}}
	case 130:
		return Outcome{code, TagInterrupted, "Terminated by Ctrl-C", SecurityImpact{}}
	case 132:
		return Outcome{code, TagCodeCorruption, "SIGILL - Illegal Instruction (Code Corruption)",
			SecurityImpact{BufferOverflow: 4, Score: 2, Classification: "code_corruption"}}
	case 133:
		return Outcome{code, TagDebugTrap, "SIGTRAP - Trace/Breakpoint Trap",
			SecurityImpact{Score: 6, Classification: "debug_trap"}}
	case 134:
		return Outcome{code, TagHeapCorruption, "SIGABRT - Abort Signal (Heap Corruption/Double Free)",
			SecurityImpact{UseAfterFree: 5, MemoryLeak: 4, Score: 1, Classification: "critical_heap_corruption"}}
	case 135:
		return Outcome{code, TagMemoryAlignment, "SIGBUS - Bus Error (Memory Alignment Violation)",
			SecurityImpact{BufferOverflow: 4, UninitializedMemory: 3, Score: 2, Classification: "memory_alignment_error"}}
	case 136:
		return Outcome{code, TagArithmeticOverflow, "SIGFPE - Floating Point Exception (Integer Overflow)",
			SecurityImpact{IntegerOverflow: 5, Score: 2, Classification: "arithmetic_error"}}
	case 137:
		return Outcome{code, TagResourceExhaustion, "SIGKILL - Killed by System (Resource Exhaustion)",
			SecurityImpact{MemoryLeak: 3, Score: 4, Classification: "resource_exhaustion"}}
	case 139:
		return Outcome{code, TagMemoryCorruption, "SIGSEGV - Segmentation Fault (Memory Corruption)",
			SecurityImpact{BufferOverflow: 5, UseAfterFree: 5, NullPointer: 5, Score: 1, Classification: "critical_memory_corruption"}}
	case 140:
		return Outcome{code, TagSignalOther, "SIGPIPE - Broken Pipe", SecurityImpact{}}
	case 141:
		return Outcome{code, TagSignalOther, "SIGALRM - Alarm Clock", SecurityImpact{}}
	case 142:
		return Outcome{code, TagSignalOther, "SIGTERM - Termination Signal", SecurityImpact{}}
	}

	if code > 128 && code < 192 {
		return Outcome{code, TagSignalOther, "Signal-based termination", SecurityImpact{}}
	}
	return Outcome{code, TagUnknown, "Unknown error code", SecurityImpact{}}
}
