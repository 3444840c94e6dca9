package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michkochris/rune-analyze/internal/models"
)

const gdbWithDebug = `Program received signal SIGSEGV, Segmentation fault.
#0  0x0000555555555149 in copy_input (dst=0x0) at demo.c:42
#1  0x0000555555555178 in main (argc=1, argv=0x7fffffffe3a8) at demo.c:57
`

const gdbStripped = `Program received signal SIGSEGV, Segmentation fault.
#0  0x0000555555555149 in copy_input ()
#1  0x0000555555555178 in main ()
`

func TestBacktracePassLocatesCrash(t *testing.T) {
	target := newTestTarget("/tmp/crasher")
	target.runCommand = fakeRunner(gdbWithDebug, nil)

	res := &models.Result{Execution: models.ExecutionInfo{ExitCode: 139}}
	res.EnsureSecurity().HasDebugSymbols = true
	require.NoError(t, (&backtracePass{}).Analyze(context.Background(), target, res))

	sec := res.Deep.Security
	assert.Equal(t, "copy_input", sec.CrashFunction)
	assert.Equal(t, "demo.c", sec.SourceFile)
	assert.Equal(t, 42, sec.CrashLine)
	assert.Len(t, sec.StackTrace, 2)
}

func TestBacktracePassRunsWithoutDebugSymbols(t *testing.T) {
	target := newTestTarget("/tmp/crasher")
	target.runCommand = fakeRunner(gdbStripped, nil)

	res := &models.Result{Execution: models.ExecutionInfo{ExitCode: 139}}
	require.NoError(t, (&backtracePass{}).Analyze(context.Background(), target, res))

	sec := res.Deep.Security
	assert.Equal(t, "copy_input", sec.CrashFunction, "frame names come back even when DWARF is absent")
	assert.Empty(t, sec.SourceFile)
	assert.Zero(t, sec.CrashLine)
	assert.Len(t, sec.StackTrace, 2)
}

func TestBacktracePassSkipsNonSignalExits(t *testing.T) {
	target := newTestTarget("/tmp/clean")
	target.runCommand = fakeRunner("should not run", nil)

	res := &models.Result{Execution: models.ExecutionInfo{ExitCode: 0}}
	require.NoError(t, (&backtracePass{}).Analyze(context.Background(), target, res))
	assert.Nil(t, res.Deep, "no security block is allocated for a clean exit")
}
