package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeRepo struct {
	rows    []map[string]any
	gotSQL  string
	gotArgs []any
}

func (f *fakeRepo) BulkUpsert(ctx context.Context, rows []map[string]any, keyColumns []string, dateColumn string) (int64, error) {
	return 0, nil
}
func (f *fakeRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	return 0, nil
}
func (f *fakeRepo) Exec(ctx context.Context, sqlText string) error { return nil }
func (f *fakeRepo) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	f.gotSQL = sqlText
	f.gotArgs = args
	return f.rows, nil
}
func (f *fakeRepo) Close() {}

func strPtrRow(first, last string, dob any, city, county, country any) map[string]any {
	return map[string]any{
		"first_name": first, "last_name": last, "date_of_birth": dob,
		"city": city, "county": county, "country": country,
	}
}

func TestExport(t *testing.T) {
	repo := &fakeRepo{rows: []map[string]any{
		strPtrRow("Kateřina", "Čapková", time.Date(1986, 4, 12, 0, 0, 0, 0, time.UTC),
			"Plzeň", nil, "Czech Republic"),
		strPtrRow("John", "Smith", "1990-01-02", nil, nil, nil),
	}}
	path := filepath.Join(t.TempDir(), "output.json")

	n, err := Export(context.Background(), repo, path)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}

	if !strings.Contains(repo.gotSQL, "LEFT JOIN places") {
		t.Errorf("query must LEFT JOIN places:\n%s", repo.gotSQL)
	}
	if !strings.Contains(repo.gotSQL, "ORDER BY p.last_name, p.first_name") {
		t.Errorf("query must order by last then first name:\n%s", repo.gotSQL)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	got := string(out)

	// Non-ASCII must stay literal, not \u-escaped.
	if !strings.Contains(got, "Kateřina") || !strings.Contains(got, "Plzeň") {
		t.Errorf("non-ASCII text was escaped:\n%s", got)
	}
	if strings.Contains(got, `\u`) {
		t.Errorf("output contains escape sequences:\n%s", got)
	}
	// Two-space pretty printing.
	if !strings.Contains(got, "  {\n    \"first_name\"") {
		t.Errorf("output not indented with two spaces:\n%s", got)
	}
	// time.Time and stored-text dates both render as YYYY-MM-DD.
	if !strings.Contains(got, `"date_of_birth": "1986-04-12"`) ||
		!strings.Contains(got, `"date_of_birth": "1990-01-02"`) {
		t.Errorf("dates not normalized:\n%s", got)
	}
	// NULL place columns export as null fields, not omitted ones.
	if !strings.Contains(got, `"city": null`) {
		t.Errorf("unresolved place must export null fields:\n%s", got)
	}
}

func TestExportRejectsMalformedStoredDate(t *testing.T) {
	repo := &fakeRepo{rows: []map[string]any{
		strPtrRow("A", "B", "02/01/1990", nil, nil, nil),
	}}
	_, err := Export(context.Background(), repo, filepath.Join(t.TempDir(), "out.json"))
	if err == nil {
		t.Fatal("expected error for malformed stored date")
	}
}

func TestExportEmptyTableWritesEmptyArray(t *testing.T) {
	repo := &fakeRepo{}
	path := filepath.Join(t.TempDir(), "out.json")
	n, err := Export(context.Background(), repo, path)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}
	out, _ := os.ReadFile(path)
	if strings.TrimSpace(string(out)) != "[]" {
		t.Errorf("empty export = %q, want []", out)
	}
}
