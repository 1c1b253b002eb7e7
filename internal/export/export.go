// Package export writes the people/places join as a JSON document. The
// output is an array of person objects, each nesting its resolved place of
// birth, ordered by last then first name.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"peopleetl/internal/domain"
	"peopleetl/internal/metrics"
	"peopleetl/internal/schema"
	"peopleetl/internal/storage"
)

// joinSQL is the export query. A LEFT JOIN keeps people whose place never
// resolved; their place fields come back NULL and export as a null-field
// object.
var joinSQL = fmt.Sprintf(`SELECT
  p.%s, p.%s, p.%s,
  pl.%s, pl.%s, pl.%s
FROM %s p
LEFT JOIN %s pl ON p.%s = pl.%s
ORDER BY p.%s, p.%s`,
	schema.ColFirstName, schema.ColLastName, schema.ColDOB,
	schema.ColCity, schema.ColCounty, schema.ColCountry,
	schema.TablePeople,
	schema.TablePlaces, schema.ColPlaceID, schema.ColID,
	schema.ColLastName, schema.ColFirstName)

// Export queries the join through repo and writes the JSON document to path.
// It returns the number of exported people.
func Export(ctx context.Context, repo storage.Repository, path string) (int, error) {
	rows, err := repo.Query(ctx, joinSQL)
	if err != nil {
		return 0, fmt.Errorf("export query: %w", err)
	}

	people := make([]domain.PersonExport, 0, len(rows))
	for i, r := range rows {
		dob, err := dateString(r[schema.ColDOB])
		if err != nil {
			return 0, fmt.Errorf("export row %d: %w", i, err)
		}
		people = append(people, domain.PersonExport{
			FirstName:   asString(r[schema.ColFirstName]),
			LastName:    asString(r[schema.ColLastName]),
			DateOfBirth: dob,
			PlaceOfBirth: domain.PlaceExport{
				City:    asStringPtr(r[schema.ColCity]),
				County:  asStringPtr(r[schema.ColCounty]),
				Country: asStringPtr(r[schema.ColCountry]),
			},
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, people); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}

	metrics.RecordRow("export", "exported", int64(len(people)))
	log.Printf("export: wrote %d people to %s", len(people), path)
	return len(people), nil
}

// Write encodes people to w: pretty-printed with two-space indentation, and
// with HTML escaping off so non-ASCII and punctuation stay literal UTF-8.
func Write(w io.Writer, people []domain.PersonExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(people); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// dateString renders the date_of_birth column, which arrives as time.Time
// from drivers with native dates and as text from SQLite.
func dateString(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		return t.Format(domain.DateLayout), nil
	case string:
		if _, err := time.Parse(domain.DateLayout, t); err != nil {
			return "", fmt.Errorf("malformed stored date %q: %w", t, err)
		}
		return t, nil
	default:
		return "", fmt.Errorf("unexpected date type %T", v)
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asStringPtr maps NULL columns to nil pointers so they encode as JSON null.
func asStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	s := fmt.Sprint(v)
	return &s
}
