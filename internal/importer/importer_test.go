package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

// stringSource serves a fixed CSV body as a datasource.Source.
type stringSource string

func (s stringSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(s))), nil
}

// fakeRepo records every call the loaders make.
type fakeRepo struct {
	upsertRows [][]map[string]any
	upsertKeys []string
	copyCalls  [][][]any
	queryRows  []map[string]any
	copyErr    error
}

func (f *fakeRepo) BulkUpsert(ctx context.Context, rows []map[string]any, keyColumns []string, dateColumn string) (int64, error) {
	f.upsertRows = append(f.upsertRows, rows)
	f.upsertKeys = keyColumns
	return int64(len(rows)), nil
}

func (f *fakeRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.copyCalls = append(f.copyCalls, rows)
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(ctx context.Context, sqlText string) error { return nil }

func (f *fakeRepo) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	return f.queryRows, nil
}

func (f *fakeRepo) Close() {}

func TestLoadPlaces(t *testing.T) {
	src := stringSource(
		"city,county,country\n" +
			"Brixton,Lambeth,United Kingdom\n" +
			"Brixton,Other,Elsewhere\n" + // duplicate city: still sent, store keeps first
			",NoCity,Nowhere\n" + // required city missing: skipped
			"Boston,,USA\n")
	repo := &fakeRepo{}

	sum, err := LoadPlaces(context.Background(), src, repo, nil)
	if err != nil {
		t.Fatalf("LoadPlaces: %v", err)
	}

	if sum.Read != 4 || sum.Skipped != 1 || sum.Dups != 1 {
		t.Errorf("summary = %+v, want read=4 skipped=1 dups=1", sum)
	}
	if len(repo.upsertRows) != 1 {
		t.Fatalf("got %d BulkUpsert calls, want the single EOF commit", len(repo.upsertRows))
	}
	rows := repo.upsertRows[0]
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (dup included, empty-city dropped): %v", len(rows), rows)
	}
	if len(repo.upsertKeys) != 1 || repo.upsertKeys[0] != "city" {
		t.Errorf("key columns = %v, want [city]", repo.upsertKeys)
	}
	if rows[2]["county"] != nil {
		t.Errorf("empty county should load as nil, got %v", rows[2]["county"])
	}
}

func TestLoadPeopleBatching(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("given_name,family_name,date_of_birth,place_of_birth\n")
	for i := 0; i < 2500; i++ {
		fmt.Fprintf(&sb, "First%d,Last%d,1990-01-02,Brixton\n", i, i)
	}
	repo := &fakeRepo{}

	sum, err := LoadPeople(context.Background(), stringSource(sb.String()), repo,
		map[string]int64{"Brixton": 7}, nil)
	if err != nil {
		t.Fatalf("LoadPeople: %v", err)
	}

	if sum.Loaded != 2500 || sum.Skipped != 0 {
		t.Errorf("summary = %+v, want loaded=2500", sum)
	}
	if len(repo.copyCalls) != 3 {
		t.Fatalf("got %d CopyFrom calls, want 3 (1000+1000+500)", len(repo.copyCalls))
	}
	if n := len(repo.copyCalls[0]); n != 1000 {
		t.Errorf("first batch = %d rows, want 1000", n)
	}
	if n := len(repo.copyCalls[2]); n != 500 {
		t.Errorf("final batch = %d rows, want 500", n)
	}
}

func TestLoadPeopleExactBatchMultiple(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("given_name,family_name,date_of_birth,place_of_birth\n")
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&sb, "First%d,Last%d,1990-01-02,\n", i, i)
	}
	repo := &fakeRepo{}

	sum, err := LoadPeople(context.Background(), stringSource(sb.String()), repo, nil, nil)
	if err != nil {
		t.Fatalf("LoadPeople: %v", err)
	}
	if sum.Loaded != 2000 {
		t.Errorf("loaded = %d, want 2000", sum.Loaded)
	}
	// 2000 rows at cadence 1000: exactly two flushes, no empty trailing one.
	if len(repo.copyCalls) != 2 {
		t.Errorf("got %d CopyFrom calls, want 2", len(repo.copyCalls))
	}
}

func TestLoadPeopleRowHandling(t *testing.T) {
	src := stringSource(
		"given_name,family_name,date_of_birth,place_of_birth\n" +
			"Ada,Lovelace,1815-12-10,London\n" +
			"Bad,Date,10-12-1815,London\n" + // not YYYY-MM-DD: skipped
			"Also,Bad,1815-13-41,London\n" + // impossible date: skipped
			"No,Place,1900-01-01,Atlantis\n" + // unknown city: NULL place
			"Empty,Place,1900-01-01,\n") // empty city: NULL place
	repo := &fakeRepo{}

	sum, err := LoadPeople(context.Background(), src, repo,
		map[string]int64{"London": 42}, nil)
	if err != nil {
		t.Fatalf("LoadPeople: %v", err)
	}

	if sum.Read != 5 || sum.Loaded != 3 || sum.Skipped != 2 {
		t.Errorf("summary = %+v, want read=5 loaded=3 skipped=2", sum)
	}
	if len(repo.copyCalls) != 1 {
		t.Fatalf("got %d CopyFrom calls, want 1", len(repo.copyCalls))
	}
	rows := repo.copyCalls[0]

	ada := rows[0]
	if ada[0] != "Ada" || ada[3] != int64(42) {
		t.Errorf("Ada row = %v, want place id 42", ada)
	}
	if dob, ok := ada[2].(time.Time); !ok || dob.Format("2006-01-02") != "1815-12-10" {
		t.Errorf("Ada date = %v, want 1815-12-10", ada[2])
	}
	for _, row := range rows[1:] {
		if row[3] != nil {
			t.Errorf("row %v: unresolved place should be nil", row)
		}
	}
}

func TestPreloadPlaces(t *testing.T) {
	repo := &fakeRepo{queryRows: []map[string]any{
		{"id": int64(1), "city": "London"},
		{"id": int32(2), "city": "Paris"},
		{"id": int64(3), "city": ""}, // unusable, dropped
	}}

	got, err := PreloadPlaces(context.Background(), repo)
	if err != nil {
		t.Fatalf("PreloadPlaces: %v", err)
	}
	if len(got) != 2 || got["London"] != 1 || got["Paris"] != 2 {
		t.Errorf("map = %v", got)
	}
}

func TestLoadPeopleCopyFailureIsFatal(t *testing.T) {
	src := stringSource(
		"given_name,family_name,date_of_birth,place_of_birth\n" +
			"Ada,Lovelace,1815-12-10,London\n")
	repo := &fakeRepo{copyErr: fmt.Errorf("connection lost")}

	_, err := LoadPeople(context.Background(), src, repo, nil, nil)
	if err == nil {
		t.Fatal("expected error when CopyFrom fails")
	}
	if !strings.Contains(err.Error(), "connection lost") {
		t.Errorf("err = %v, want wrapped copy error", err)
	}
}
