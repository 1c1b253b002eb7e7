// Package skiplog writes per-stage audit files of skipped rows. Each load
// stage gets one CSV listing the source line number, the skip reason, and
// the raw row, so rejected input can be inspected and replayed after a run.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Writer appends skipped-row entries to one stage's audit CSV.
type Writer struct {
	f *os.File
	w *csv.Writer
}

// New creates dir (if needed) and opens <dir>/<stage>_skipped.csv for
// writing, truncating any previous audit. The returned cleanup function
// flushes and closes the file.
func New(dir, stage string) (*Writer, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create skip dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, stage+"_skipped.csv")
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	_ = w.Write([]string{"line_number", "reason", "raw_row"})
	sw := &Writer{f: f, w: w}
	return sw, func() {
		w.Flush()
		_ = f.Close()
	}, nil
}

// Add appends one skipped row. Write errors are deliberately swallowed: the
// audit trail must never fail a load that is otherwise succeeding.
func (s *Writer) Add(line int, reason, raw string) {
	if s == nil {
		return
	}
	_ = s.w.Write([]string{strconv.Itoa(line), reason, raw})
}
