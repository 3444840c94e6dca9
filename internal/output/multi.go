package output

// MultiWriter fans a report out to all active writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a MultiWriter from the given writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteReport writes the report to every writer, stopping on the first error.
func (mw *MultiWriter) WriteReport(r *Report) error {
	for _, w := range mw.writers {
		if err := w.WriteReport(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all writers and returns the first error seen.
func (mw *MultiWriter) Close() error {
	var firstErr error
	for _, w := range mw.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// compile-time interface check
var _ Writer = (*MultiWriter)(nil)
