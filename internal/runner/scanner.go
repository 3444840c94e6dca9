package runner

import (
	"bytes"
	"sync"
)

// Stream identifies which child pipe a chunk came from.
type Stream int

const (
	StreamStdout Stream = iota
	StreamStderr
)

// carryLen is the per-stream carry-over window used to catch tokens split
// across read boundaries. It comfortably exceeds the longest token.
const carryLen = 32

var (
	verboseTokens = [][]byte{[]byte("verbose"), []byte("VERBOSE"), []byte("==>"), []byte("<==")}
	errorTokens   = [][]byte{[]byte("error"), []byte("ERROR")}
	warningTokens = [][]byte{[]byte("warning"), []byte("WARNING")}
)

// Scanner is a streaming classifier over the child's output. It never
// buffers whole streams: each chunk is scanned once together with a small
// carry-over window from the previous chunk of the same stream. Counts are
// best-effort across boundaries; only the "at least one seen" property is
// contractual.
type Scanner struct {
	mu      sync.Mutex
	verbose int
	errors  int
	warning int
	carry   [2][]byte
}

// NewScanner returns a ready classifier.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan classifies one chunk from the given stream.
func (s *Scanner) Scan(stream Stream, chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.carry[stream]
	window := chunk
	if len(prev) > 0 {
		window = append(append(make([]byte, 0, len(prev)+len(chunk)), prev...), chunk...)
	}

	// Matches that end inside the carried prefix were already counted on
	// the previous call.
	s.verbose += countAfter(window, verboseTokens, len(prev))
	s.errors += countAfter(window, errorTokens, len(prev))
	s.warning += countAfter(window, warningTokens, len(prev))

	tail := window
	if len(tail) > carryLen {
		tail = tail[len(tail)-carryLen:]
	}
	s.carry[stream] = append(s.carry[stream][:0], tail...)
}

// countAfter counts occurrences of any token that end past the first `skip`
// bytes of the window.
func countAfter(window []byte, tokens [][]byte, skip int) int {
	n := 0
	for _, tok := range tokens {
		from := 0
		for {
			i := bytes.Index(window[from:], tok)
			if i < 0 {
				break
			}
			end := from + i + len(tok)
			if end > skip {
				n++
			}
			from += i + 1
		}
	}
	return n
}

// Counts returns the classifier totals.
func (s *Scanner) Counts() (verbose, errors, warnings int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verbose, s.errors, s.warning
}
