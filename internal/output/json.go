package output

import (
	"encoding/json"
	"io"

	"github.com/michkochris/rune-analyze/internal/config"
)

// JSONWriter emits one pretty-printed JSON report. The checkpoint timeline
// is included only at very-verbose level.
type JSONWriter struct {
	out       io.Writer
	verbosity config.Verbosity
}

// compile-time interface check
var _ Writer = (*JSONWriter)(nil)

// NewJSONWriter creates a JSON writer targeting out.
func NewJSONWriter(out io.Writer, verbosity config.Verbosity) *JSONWriter {
	return &JSONWriter{out: out, verbosity: verbosity}
}

// WriteReport marshals the report. Field order is fixed by the envelope
// struct, so output is diffable across runs.
func (w *JSONWriter) WriteReport(r *Report) error {
	if w.verbosity < config.VerbosityVeryVerbose {
		trimmed := *r
		trimmed.Checkpoints = nil
		r = &trimmed
	}
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Close is a no-op; the writer does not own its destination.
func (w *JSONWriter) Close() error { return nil }
