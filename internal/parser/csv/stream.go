package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"peopleetl/pkg/records"
)

// Row is one parsed CSV record with its 1-based physical line number (the
// header, when present, is line 1). The line number travels with the record
// so that downstream skip reporting can point at the source row.
type Row struct {
	Line   int
	Record records.Record
}

// StreamRecords reads CSV rows from src and emits one Row per record on out,
// keyed by the canonical column names derived from the header. It closes src
// before returning but never closes out; the caller owns the channel.
//
// Recoverable problems (a malformed row, a width mismatch) are reported
// through onErr(line, err) and the row is dropped; the stream continues. A
// header read failure is unrecoverable and returned as an error.
//
// Cancellation: the function returns ctx.Err() as soon as the context is
// done, both between reads and while blocked sending on out.
func StreamRecords(
	ctx context.Context,
	src io.ReadCloser,
	opt Options,
	out chan<- Row,
	onErr func(line int, err error),
) error {
	defer src.Close()

	cr := csv.NewReader(newBOMReader(src))
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.ReuseRecord = true
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1 // tolerant read; width enforced against the header

	line := 0
	read := func() ([]string, error) { line++; return cr.Read() }

	var headers []string
	if opt.HasHeader {
		h, err := read()
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		headers = normalizeHeaders(h, opt)
	} else if opt.ExpectedFields > 0 {
		headers = make([]string, opt.ExpectedFields)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
	}

	const logEveryN = 50_000
	emitted := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("csv read: %w", err))
			}
			continue
		}
		if len(headers) > 0 && len(rec) != len(headers) {
			if onErr != nil {
				onErr(line, fmt.Errorf("incorrect number of fields (expected %d, got %d)", len(headers), len(rec)))
			}
			continue
		}

		r := make(records.Record, len(rec))
		for i, val := range rec {
			if opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			r[keyFor(i, headers)] = emptyToNil(val)
		}

		select {
		case out <- Row{Line: line, Record: r}:
			emitted++
			if emitted%logEveryN == 0 {
				log.Printf("reader: line=%d emitted=%d", line, emitted)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
