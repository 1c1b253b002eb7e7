package csv

import (
	"context"
	"io"
	"strings"
	"testing"
)

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

func collect(t *testing.T, in string, opt Options) ([]Row, []int, error) {
	t.Helper()
	out := make(chan Row, 64)
	var badLines []int
	err := StreamRecords(context.Background(), nopCloser{strings.NewReader(in)}, opt,
		out, func(line int, err error) { badLines = append(badLines, line) })
	close(out)
	var rows []Row
	for r := range out {
		rows = append(rows, r)
	}
	return rows, badLines, err
}

func TestStreamRecordsLineNumbers(t *testing.T) {
	in := "city,county,country\nSpringfield,Hampden,USA\nBoston,,\n"
	rows, bad, err := collect(t, in, Options{HasHeader: true, TrimSpace: true})
	if err != nil {
		t.Fatalf("StreamRecords: %v", err)
	}
	if len(bad) != 0 {
		t.Fatalf("unexpected row errors on lines %v", bad)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Line != 2 || rows[1].Line != 3 {
		t.Errorf("lines = %d,%d, want 2,3", rows[0].Line, rows[1].Line)
	}
	if rows[0].Record.String("city") != "Springfield" {
		t.Errorf("city = %q", rows[0].Record.String("city"))
	}
}

func TestStreamRecordsReportsWidthMismatch(t *testing.T) {
	in := "city,county,country\nLondon\nParis,,France\n"
	rows, bad, err := collect(t, in, Options{HasHeader: true})
	if err != nil {
		t.Fatalf("StreamRecords: %v", err)
	}
	if len(bad) != 1 || bad[0] != 2 {
		t.Fatalf("bad lines = %v, want [2]", bad)
	}
	if len(rows) != 1 || rows[0].Record.String("city") != "Paris" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestStreamRecordsHeaderError(t *testing.T) {
	// An unterminated quote in the header is unrecoverable.
	in := "\"city\nLondon\n"
	_, _, err := collect(t, in, Options{HasHeader: true})
	if err == nil {
		t.Fatal("expected header error, got nil")
	}
}

func TestStreamRecordsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := make(chan Row) // unbuffered; sends would block
	err := StreamRecords(ctx, nopCloser{strings.NewReader("city\nLondon\nParis\n")},
		Options{HasHeader: true}, out, nil)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
