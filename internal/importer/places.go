package importer

import (
	"context"
	"fmt"
	"log"
	"sync"

	"peopleetl/internal/datasource"
	"peopleetl/internal/metrics"
	"peopleetl/internal/parser/csv"
	"peopleetl/internal/schema"
	"peopleetl/internal/skiplog"
	"peopleetl/internal/storage"
	"peopleetl/internal/transformer"
	"peopleetl/internal/transformer/builtin"
	"peopleetl/pkg/records"
)

// LoadPlaces streams the places CSV from src into repo. The whole file is
// collected and upserted in one call, so it commits as a single transaction
// at EOF. Rows that fail validation are logged, audited via skips, and
// dropped; a city already present in the file or the store is a silent
// no-op that keeps the first row.
func LoadPlaces(
	ctx context.Context,
	src datasource.Source,
	repo storage.Repository,
	skips *skiplog.Writer,
) (Summary, error) {
	var sum Summary

	rc, err := src.Open(ctx)
	if err != nil {
		return sum, fmt.Errorf("open places input: %w", err)
	}

	validate := &builtin.Validate{Contract: schema.PlacesContract()}
	seen := builtin.NewSeenTracker()
	prepare := transformer.Chain{builtin.Normalize{}}

	// The parse-error callback fires on the reader goroutine; the summary and
	// the audit writer are shared with the consumer loop below.
	var mu sync.Mutex

	rowCh := make(chan csv.Row, 256)
	streamErr := make(chan error, 1)
	go func() {
		defer close(rowCh)
		streamErr <- csv.StreamRecords(ctx, rc, csv.Options{HasHeader: true, TrimSpace: true}, rowCh,
			func(line int, err error) {
				mu.Lock()
				sum.addSkip(ReasonParse)
				skips.Add(line, err.Error(), "")
				mu.Unlock()
			})
	}()

	rows := make([]map[string]any, 0, 1024)
	for row := range rowCh {
		sum.Read++
		rec := row.Record
		prepare.Apply([]records.Record{rec})

		if ok, reason := validate.Check(rec); !ok {
			mu.Lock()
			sum.addSkip(reason)
			skips.Add(row.Line, reason, rawRow(rec))
			mu.Unlock()
			continue
		}
		if city, _ := rec[schema.ColCity].(string); seen.Seen(city) {
			sum.Dups++
		}
		rows = append(rows, rec)
	}
	if err := <-streamErr; err != nil {
		return sum, fmt.Errorf("read places: %w", err)
	}

	inserted, err := repo.BulkUpsert(ctx, rows, []string{schema.ColCity}, "")
	if err != nil {
		return sum, fmt.Errorf("upsert places: %w", err)
	}
	sum.Loaded = inserted

	metrics.RecordRow("load_places", "inserted", sum.Loaded)
	metrics.RecordRow("load_places", "skipped", sum.Skipped)
	log.Printf("places: %s", sum.String())
	return sum, nil
}
