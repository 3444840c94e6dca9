package output

import (
	"encoding/csv"
	"fmt"
	"os"
)

// CSVWriter exports the checkpoint timeline as a flat CSV, one row per
// checkpoint, for spreadsheet or Timesketch-style triage.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// compile-time interface check
var _ Writer = (*CSVWriter)(nil)

// NewCSVWriter creates a CSV writer at outputPath.
func NewCSVWriter(outputPath string) (*CSVWriter, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(file)
	header := []string{
		"run_id", "target", "seq", "time_offset", "timestamp",
		"category", "checkpoint_id", "context", "trigger_fired",
	}
	if err := w.Write(header); err != nil {
		file.Close()
		return nil, err
	}
	return &CSVWriter{file: file, writer: w}, nil
}

// WriteReport appends one row per checkpoint.
func (cw *CSVWriter) WriteReport(r *Report) error {
	for i, cp := range r.Checkpoints {
		row := []string{
			r.RunID,
			r.TargetPath,
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%.6f", cp.OffsetSecs),
			cp.Wallclock,
			cp.Category,
			cp.ID,
			cp.Context,
			fmt.Sprintf("%t", cp.TriggerFired),
		}
		if err := cw.writer.Write(row); err != nil {
			return err
		}
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close flushes and closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return err
	}
	return cw.file.Close()
}
