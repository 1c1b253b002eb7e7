package importer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"peopleetl/internal/datasource"
	"peopleetl/internal/domain"
	"peopleetl/internal/metrics"
	"peopleetl/internal/parser/csv"
	"peopleetl/internal/schema"
	"peopleetl/internal/skiplog"
	"peopleetl/internal/storage"
	"peopleetl/internal/transformer"
	"peopleetl/internal/transformer/builtin"
	"peopleetl/pkg/records"
)

// PeopleBatchSize is the commit cadence for the people load: every full
// batch is one CopyFrom call, which each backend runs as one transaction.
const PeopleBatchSize = 1000

// PeopleColumns is the column order people rows are loaded in. It must match
// the row slices the transform stage emits.
func PeopleColumns() []string {
	return []string{schema.ColFirstName, schema.ColLastName, schema.ColDOB, schema.ColPlaceID}
}

// PreloadPlaces reads the places table into a city -> id map used to resolve
// each person's place_of_birth. One lookup map instead of one query per row.
func PreloadPlaces(ctx context.Context, repo storage.Repository) (map[string]int64, error) {
	rows, err := repo.Query(ctx, fmt.Sprintf("SELECT %s, %s FROM %s",
		schema.ColID, schema.ColCity, schema.TablePlaces))
	if err != nil {
		return nil, fmt.Errorf("preload places: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		city, _ := r[schema.ColCity].(string)
		id, ok := asInt64(r[schema.ColID])
		if !ok || city == "" {
			continue
		}
		out[city] = id
	}
	log.Printf("places: preloaded %d cities", len(out))
	return out, nil
}

// LoadPeople streams the people CSV from src into repo in batches of
// PeopleBatchSize rows. Each row is normalized, its birth date strictly
// parsed, and its place_of_birth resolved against placeIDs; an unknown or
// empty place loads as NULL. Invalid rows are logged, audited via skips, and
// dropped without stopping the load.
func LoadPeople(
	ctx context.Context,
	src datasource.Source,
	repo storage.Repository,
	placeIDs map[string]int64,
	skips *skiplog.Writer,
) (Summary, error) {
	var sum Summary
	var mu sync.Mutex

	rc, err := src.Open(ctx)
	if err != nil {
		return sum, fmt.Errorf("open people input: %w", err)
	}

	reject := func(line int, reason string, rec records.Record) {
		mu.Lock()
		sum.addSkip(reason)
		skips.Add(line, reason, rawRow(rec))
		mu.Unlock()
	}

	validate := &builtin.Validate{Contract: schema.PeopleContract()}
	prepare := transformer.Chain{
		builtin.Normalize{},
		builtin.Coerce{
			Types:  map[string]string{schema.CSVDateOfBirth: "date"},
			Layout: domain.DateLayout,
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	rowCh := make(chan csv.Row, 1024)
	g.Go(func() error {
		defer close(rowCh)
		return csv.StreamRecords(ctx, rc, csv.Options{HasHeader: true, TrimSpace: true}, rowCh,
			func(line int, err error) { reject(line, ReasonParse, nil) })
	})

	outCh := make(chan []any, 1024)
	g.Go(func() error {
		defer close(outCh)
		for row := range rowCh {
			mu.Lock()
			sum.Read++
			mu.Unlock()

			rec := row.Record
			prepare.Apply([]records.Record{rec})

			if ok, reason := validate.Check(rec); !ok {
				reject(row.Line, reason, rec)
				continue
			}

			dob, ok := rec[schema.CSVDateOfBirth].(time.Time)
			if !ok {
				// Coerce leaves unparsable dates as strings and Validate
				// rejects those, so this only guards type drift upstream.
				reject(row.Line, "invalid date", rec)
				continue
			}

			var placeID *int64
			if city, _ := rec[schema.CSVPlaceOfBirth].(string); city != "" {
				if id, found := placeIDs[city]; found {
					v := id
					placeID = &v
				}
			}

			out := []any{
				rec[schema.CSVGivenName],
				rec[schema.CSVFamilyName],
				dob,
				nilOrInt64(placeID),
			}
			select {
			case outCh <- out:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var loaded int64
	g.Go(func() error {
		n, err := storage.LoadBatches(ctx, PeopleColumns(), outCh, PeopleBatchSize, repo.CopyFrom)
		loaded = n
		return err
	})

	if err := g.Wait(); err != nil {
		return sum, fmt.Errorf("load people: %w", err)
	}
	sum.Loaded = loaded

	metrics.RecordRow("load_people", "inserted", sum.Loaded)
	metrics.RecordRow("load_people", "skipped", sum.Skipped)
	log.Printf("people: %s", sum.String())
	return sum, nil
}

// nilOrInt64 flattens a *int64 into a driver-friendly value: nil stays nil
// so it stores as NULL.
func nilOrInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// asInt64 converts the id values the different drivers hand back.
func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case uint64:
		return int64(t), true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}
