// Package progress renders enrichment pass progress on stderr. A live bar
// is drawn when stderr is a TTY; plain lines otherwise. Stdout is left
// untouched so machine-readable reports stay clean.
package progress

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// Tracker follows the lifecycle of a fixed number of analysis passes.
type Tracker struct {
	mu      sync.Mutex
	total   int
	done    int
	failed  int
	current string
	isTTY   bool
	quiet   bool
}

// NewTracker creates a tracker for the given number of passes. When quiet
// is set nothing is printed at all.
func NewTracker(total int, quiet bool) *Tracker {
	return &Tracker{
		total: total,
		isTTY: isTerminal(),
		quiet: quiet,
	}
}

func isTerminal() bool {
	_, err := unix.IoctlGetWinsize(int(os.Stderr.Fd()), unix.TIOCGWINSZ)
	return err == nil
}

// Start announces the pass about to run.
func (t *Tracker) Start(pass string) {
	if t == nil || t.quiet {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = pass
	if t.isTTY {
		t.render()
	} else {
		fmt.Fprintf(os.Stderr, "  [*] %s\n", pass)
	}
}

// Success marks the current pass as complete.
func (t *Tracker) Success(pass string) {
	if t == nil || t.quiet {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done++
	if t.isTTY {
		t.render()
	} else {
		fmt.Fprintf(os.Stderr, "  [+] %s done\n", pass)
	}
}

// Fail marks the current pass as failed. Failures are informational; the
// pipeline continues regardless.
func (t *Tracker) Fail(pass string, err error) {
	if t == nil || t.quiet {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done++
	t.failed++
	if t.isTTY {
		t.render()
	} else {
		fmt.Fprintf(os.Stderr, "  [!] %s unavailable: %v\n", pass, err)
	}
}

// Finish clears the progress line in TTY mode.
func (t *Tracker) Finish() {
	if t == nil || t.quiet {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isTTY {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
}

func (t *Tracker) render() {
	const barWidth = 30
	if t.total == 0 {
		return
	}
	filled := (t.done * barWidth) / t.total
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("=", filled)
	if filled < barWidth {
		bar += ">" + strings.Repeat(" ", barWidth-filled-1)
	}

	failStr := ""
	if t.failed > 0 {
		failStr = fmt.Sprintf(" | %d unavailable", t.failed)
	}
	line := fmt.Sprintf("\r  [%s] %d/%d %s%s", bar, t.done, t.total, t.current, failStr)
	if len(line) > 100 {
		line = line[:100]
	}
	fmt.Fprint(os.Stderr, "\033[K"+line)
}
