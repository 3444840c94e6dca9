// Package runner supervises the target child process: it captures stdout and
// stderr through pipes, samples resident memory while the child lives,
// decodes termination, and feeds the checkpoint timeline along the way.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"github.com/michkochris/rune-analyze/internal/checkpoint"
	"github.com/michkochris/rune-analyze/internal/config"
	"github.com/michkochris/rune-analyze/internal/models"
)

// ErrIOSetup marks pipe or spawn failures. Fatal to the run.
var ErrIOSetup = errors.New("i/o setup failed")

// Sampling cadence for the memory watcher and the threshold (in KB) a new
// peak must clear before it earns its own MEM checkpoint.
const (
	sampleInterval = 10 * time.Millisecond
	memStepKB      = 1024
	termGrace      = 2 * time.Second
	intGrace       = 5 * time.Second
)

// Supervisor runs one child and fills in the execution, memory, IO and
// intelligence groups of the Result.
type Supervisor struct {
	cfg     *config.Config
	log     *checkpoint.Log
	scanner *Scanner

	// Forwarding destinations for the child's output, normally the
	// inherited terminal. Overridable in tests.
	Stdout io.Writer
	Stderr io.Writer
}

// New builds a supervisor for the configured target.
func New(cfg *config.Config, log *checkpoint.Log) *Supervisor {
	return &Supervisor{
		cfg:     cfg,
		log:     log,
		scanner: NewScanner(),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run executes the target and populates res. A child that fails or dies by
// signal is not an error here; only setup problems are. The caller decides
// what the analyzer's own exit code should mirror.
func (s *Supervisor) Run(ctx context.Context, res *models.Result) error {
	var cancel context.CancelFunc
	if s.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	cmd := s.command(ctx)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return s.setupFailed("stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return s.setupFailed("stderr pipe", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return s.setupFailed("spawn", err)
	}

	pid := cmd.Process.Pid
	res.Execution.ChildPID = pid
	s.log.Append("EXEC: target_started", checkpoint.CategoryExec, fmt.Sprintf("pid %d", pid))
	slog.Debug("child started", "pid", pid, "mode", s.cfg.Mode.String())

	var stdoutBytes, stderrBytes atomic.Int64
	var readers sync.WaitGroup
	readers.Add(2)
	go s.readLoop(&readers, StreamStdout, stdout, s.Stdout, &stdoutBytes)
	go s.readLoop(&readers, StreamStderr, stderr, s.Stderr, &stderrBytes)

	samplerDone := make(chan struct{})
	peakKB := s.startSampler(pid, samplerDone)

	intStop := s.forwardInterrupt(cmd)

	readers.Wait()
	waitErr := cmd.Wait()
	close(samplerDone)
	intStop()

	res.Execution.ExecutionTime = time.Since(start).Seconds()
	res.Execution.ExitCode = decodeWait(waitErr)
	res.Execution.Success = res.Execution.ExitCode == 0
	res.Execution.ExitMeaning = Decode(res.Execution.ExitCode).Meaning
	if ctx.Err() == context.DeadlineExceeded {
		res.Execution.TimedOut = true
		res.Execution.ExitMeaning = "Terminated by analyzer timeout"
	}

	res.Memory.PeakKB = peakKB.Load()
	res.IO.StdoutBytes = stdoutBytes.Load()
	res.IO.StderrBytes = stderrBytes.Load()
	res.Intelligence.VerboseMessages, res.Intelligence.ErrorMessages, res.Intelligence.WarningMessages = s.scanner.Counts()

	s.log.Append("EXEC: target_completed", checkpoint.CategoryExec,
		fmt.Sprintf("exit %d after %.3fs", res.Execution.ExitCode, res.Execution.ExecutionTime))
	return nil
}

func (s *Supervisor) command(ctx context.Context) *exec.Cmd {
	if s.cfg.Mode == config.ModeMonitor {
		cmd := exec.CommandContext(ctx, "/bin/sh", "-c", s.cfg.MonitorCommand)
		s.escalate(cmd)
		return cmd
	}
	cmd := exec.CommandContext(ctx, s.cfg.TargetPath, s.cfg.TargetArgs...)
	s.escalate(cmd)
	return cmd
}

// escalate makes context cancellation terminate the child gently first:
// SIGTERM, a short grace period, then the default SIGKILL.
func (s *Supervisor) escalate(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = termGrace
}

func (s *Supervisor) setupFailed(what string, err error) error {
	s.log.Append("SYSTEM: io_setup_failed", checkpoint.CategoryMisc, what)
	return fmt.Errorf("%w: %s: %v", ErrIOSetup, what, err)
}

// readLoop drains one pipe: tee to the inherited terminal, feed the scanner,
// bump the byte counter. A read of zero (EOF) ends the loop for the rest of
// the run.
func (s *Supervisor) readLoop(wg *sync.WaitGroup, stream Stream, r io.Reader, tee io.Writer, total *atomic.Int64) {
	defer wg.Done()
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			total.Add(int64(n))
			if tee != nil {
				_, _ = tee.Write(buf[:n])
			}
			s.scanner.Scan(stream, buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// startSampler watches the child's RSS until done is closed, tracking the
// peak and emitting a MEM checkpoint whenever it grows by at least memStepKB.
func (s *Supervisor) startSampler(pid int, done <-chan struct{}) *atomic.Int64 {
	peak := &atomic.Int64{}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return peak
	}

	go func() {
		ticker := time.NewTicker(sampleInterval)
		defer ticker.Stop()
		var lastReported int64
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				mi, err := proc.MemoryInfo()
				if err != nil || mi == nil {
					continue
				}
				rssKB := int64(mi.RSS / 1024)
				if rssKB > peak.Load() {
					peak.Store(rssKB)
					if rssKB-lastReported >= memStepKB {
						lastReported = rssKB
						s.log.Append("MEM: new_peak", checkpoint.CategoryMem, fmt.Sprintf("%d KB", rssKB))
					}
				}
			}
		}
	}()
	return peak
}

// forwardInterrupt passes the first SIGINT through to the child and arms
// a kill timer; the returned func tears the handler down.
func (s *Supervisor) forwardInterrupt(cmd *exec.Cmd) func() {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, os.Interrupt)

	go func() {
		select {
		case <-done:
			return
		case <-ch:
			s.log.Append("EXEC: interrupt_forwarded", checkpoint.CategoryExec, "")
			_ = cmd.Process.Signal(os.Interrupt)
			select {
			case <-done:
			case <-time.After(intGrace):
				_ = cmd.Process.Kill()
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// decodeWait turns cmd.Wait's result into the 128+signum convention.
func decodeWait(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(waitErr, &ee) {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return ee.ExitCode()
	}
	return -1
}
