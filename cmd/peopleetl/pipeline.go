package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"peopleetl/internal/config"
	"peopleetl/internal/datasource"
	"peopleetl/internal/datasource/file"
	"peopleetl/internal/datasource/httpds"
	"peopleetl/internal/export"
	"peopleetl/internal/importer"
	"peopleetl/internal/metrics"
	"peopleetl/internal/schema"
	"peopleetl/internal/skiplog"
	"peopleetl/internal/storage"
	"peopleetl/internal/storage/mysql"
)

// metricsJob labels every step and row counter this binary emits.
const metricsJob = "peopleetl"

// Test seams; tests swap these to avoid real connections.
var (
	newRepositoryFn = storage.New
	initSchemaFn    = storage.InitSchema
)

// Run executes the whole pipeline: connect, rebuild the schema, load places,
// load people, export. A places-load failure is downgraded to a warning (the
// people load then resolves no places and stores NULLs); every other stage
// failure aborts the run.
func Run(ctx context.Context, cfg *config.Config) error {
	dsn, err := dsnFor(cfg)
	if err != nil {
		return err
	}

	step := func(name string, start time.Time, err error) {
		metrics.RecordStep(metricsJob, name, err, time.Since(start))
	}

	// Connect one repository per target table; both share the connection
	// parameters and differ only in load shape.
	start := time.Now()
	placesRepo, err := newRepositoryFn(ctx, storage.Config{
		Kind:       cfg.Backend,
		DSN:        dsn,
		Table:      schema.TablePlaces,
		Columns:    []string{schema.ColCity, schema.ColCounty, schema.ColCountry},
		KeyColumns: []string{schema.ColCity},
	})
	step("connect", start, err)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Backend, err)
	}
	defer placesRepo.Close()

	peopleRepo, err := newRepositoryFn(ctx, storage.Config{
		Kind:    cfg.Backend,
		DSN:     dsn,
		Table:   schema.TablePeople,
		Columns: importer.PeopleColumns(),
	})
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Backend, err)
	}
	defer peopleRepo.Close()

	start = time.Now()
	err = initSchemaFn(ctx, cfg.Backend, placesRepo, storage.DDLOptions{
		Charset:   cfg.DB.Charset,
		Collation: cfg.DB.Collation,
	})
	step("schema", start, err)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	start = time.Now()
	_, err = loadPlaces(ctx, cfg, placesRepo)
	step("load_places", start, err)
	if err != nil {
		// Non-fatal: people still load, their places just resolve to NULL.
		log.Printf("WARN: places load failed, continuing without places: %v", err)
	}

	placeIDs, err := importer.PreloadPlaces(ctx, peopleRepo)
	if err != nil {
		return err
	}

	start = time.Now()
	_, err = loadPeople(ctx, cfg, peopleRepo, placeIDs)
	step("load_people", start, err)
	if err != nil {
		return err
	}

	start = time.Now()
	_, err = export.Export(ctx, peopleRepo, cfg.OutputPath)
	step("export", start, err)
	if err != nil {
		return err
	}
	return nil
}

func loadPlaces(ctx context.Context, cfg *config.Config, repo storage.Repository) (importer.Summary, error) {
	skips, closeSkips, err := openSkips(cfg, "places")
	if err != nil {
		return importer.Summary{}, err
	}
	defer closeSkips()
	return importer.LoadPlaces(ctx, sourceFor(cfg.PlacesCSV), repo, skips)
}

func loadPeople(ctx context.Context, cfg *config.Config, repo storage.Repository, placeIDs map[string]int64) (importer.Summary, error) {
	skips, closeSkips, err := openSkips(cfg, "people")
	if err != nil {
		return importer.Summary{}, err
	}
	defer closeSkips()
	return importer.LoadPeople(ctx, sourceFor(cfg.PeopleCSV), repo, placeIDs, skips)
}

// openSkips opens the per-stage audit writer, or returns a nil writer (whose
// Add is a no-op) when auditing is disabled.
func openSkips(cfg *config.Config, stage string) (*skiplog.Writer, func(), error) {
	if cfg.SkipDir == "" {
		return nil, func() {}, nil
	}
	w, closeFn, err := skiplog.New(cfg.SkipDir, stage)
	if err != nil {
		return nil, nil, fmt.Errorf("open skip audit: %w", err)
	}
	return w, closeFn, nil
}

// sourceFor picks the datasource for a configured input: local file by
// default, HTTP(S) download when the path is a URL.
func sourceFor(path string) datasource.Source {
	if datasource.IsURL(path) {
		return httpds.NewSource(path, nil)
	}
	return file.NewLocal(path)
}

// dsnFor renders the backend-specific connection string from the shared
// connection parameters.
func dsnFor(cfg *config.Config) (string, error) {
	switch cfg.Backend {
	case "mysql":
		return mysql.FormatDSN(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password,
			cfg.DB.Database, cfg.DB.Charset, cfg.DB.Collation), nil
	case "sqlite":
		// Database doubles as the file path.
		return cfg.DB.Database, nil
	case "postgres":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.DB.User, cfg.DB.Password),
			Host:   fmt.Sprintf("%s:%d", cfg.DB.Host, cfg.DB.Port),
			Path:   "/" + cfg.DB.Database,
		}
		return u.String(), nil
	case "mssql":
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.DB.User, cfg.DB.Password),
			Host:     fmt.Sprintf("%s:%d", cfg.DB.Host, cfg.DB.Port),
			RawQuery: url.Values{"database": []string{cfg.DB.Database}}.Encode(),
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
