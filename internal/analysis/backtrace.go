package analysis

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/michkochris/rune-analyze/internal/checkpoint"
	"github.com/michkochris/rune-analyze/internal/models"
)

const (
	gdbTimeout    = 10 * time.Second
	maxStackLines = 5
)

// frameRE matches gdb backtrace frames like
// "#0  0x0000555555555149 in crash_here () at demo.c:12".
var frameRE = regexp.MustCompile(`#\d+\s+(?:0x[0-9a-f]+ in )?([\w:~<>]+)\s*\([^)]*\)(?:\s+at\s+(\S+):(\d+))?`)

// backtracePass re-runs a crashed target under gdb to recover the faulting
// function and source location. It only fires for signal exits. Without
// debug symbols gdb still names frames; file and line stay empty.
type backtracePass struct{}

func (p *backtracePass) Name() string { return "crash_backtrace" }

func (p *backtracePass) Analyze(ctx context.Context, t *Target, r *models.Result) error {
	if r.Execution.ExitCode < 128 {
		return nil
	}
	sec := r.EnsureSecurity()

	ctx, cancel := context.WithTimeout(ctx, gdbTimeout)
	defer cancel()

	args := []string{"-quiet", "-batch",
		"-ex", "run",
		"-ex", "bt",
		"--args", t.Path}
	args = append(args, t.Args...)
	out, err := t.runCommand(ctx, "gdb", args...)
	if err != nil && len(out) == 0 {
		return err
	}

	frames := parseBacktrace(out)
	if len(frames) == 0 {
		return nil
	}
	sec.StackTrace = frames
	if m := frameRE.FindStringSubmatch(frames[0]); m != nil {
		sec.CrashFunction = m[1]
		if m[2] != "" {
			sec.SourceFile = m[2]
			if line, err := strconv.Atoi(m[3]); err == nil {
				sec.CrashLine = line
			}
		}
	}
	if sec.CrashFunction != "" {
		detail := sec.CrashFunction
		if sec.SourceFile != "" {
			detail += " at " + sec.SourceFile + ":" + strconv.Itoa(sec.CrashLine)
		}
		sec.Details = "crash in " + detail
		t.checkpoint("SEC: crash_located", checkpoint.CategorySec, detail)
	}
	return nil
}

func parseBacktrace(out []byte) []string {
	var frames []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "#") {
			continue
		}
		frames = append(frames, line)
		if len(frames) == maxStackLines {
			break
		}
	}
	return frames
}
