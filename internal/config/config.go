// Package config centralizes pipeline configuration. All tunables are
// sourced from command-line flags with environment-variable fallbacks
// (12-factor friendly); a .env file, when present, is loaded by the caller
// before flags are parsed.
//
// Typical usage:
//
//	cfg := config.Load() // reads os.Args and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg := config.LoadFromArgs(fs, getenv, []string{"-db-host=db1"})
package config

import (
	"flag"
	"os"
	"strconv"
)

// DB holds the connection parameters for the backing store. For the MySQL
// backend these map directly onto the driver DSN; other backends interpret
// them analogously (sqlite uses only Database as the file path).
type DB struct {
	Host      string
	Port      int
	User      string
	Password  string
	Database  string
	Charset   string
	Collation string
}

// Config holds all process configuration derived from flags and environment
// variables. All fields are plain values so the struct can be safely copied
// after construction.
type Config struct {
	DB      DB
	Backend string // storage backend kind: mysql, sqlite, postgres, mssql

	// Input/output locations. The CSV paths also accept http(s):// URLs.
	PlacesCSV  string
	PeopleCSV  string
	OutputPath string

	// SkipDir, when non-empty, receives one CSV audit file per load stage
	// listing skipped rows with reasons.
	SkipDir string

	// Metrics backend selection.
	MetricsBackend string // "pushgateway", "datadog", or "none"
	PushgatewayURL string
	StatsdAddr     string
}

// LoadFromArgs builds a Config by defining flags on fs, wiring each flag to
// an environment-variable fallback via getenv, and then parsing args.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) *Config {
	cfg := &Config{}

	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOrDefaultFn := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}

	fs.StringVar(&cfg.DB.Host, "db-host", envOrDefaultFn("DB_HOST", "localhost"), "store host")
	fs.IntVar(&cfg.DB.Port, "db-port", intEnvOrDefaultFn("DB_PORT", 3306), "store port")
	fs.StringVar(&cfg.DB.User, "db-user", envOrDefaultFn("DB_USER", "codetest"), "store user")
	fs.StringVar(&cfg.DB.Password, "db-password", envOrDefaultFn("DB_PASSWORD", "swordfish"), "store password")
	fs.StringVar(&cfg.DB.Database, "db-name", envOrDefaultFn("DB_NAME", "codetest"), "database name (file path for sqlite)")
	fs.StringVar(&cfg.DB.Charset, "db-charset", envOrDefaultFn("DB_CHARSET", "utf8mb4"), "character set")
	fs.StringVar(&cfg.DB.Collation, "db-collation", envOrDefaultFn("DB_COLLATION", "utf8mb4_unicode_ci"), "collation")

	fs.StringVar(&cfg.Backend, "backend", envOrDefaultFn("STORAGE_BACKEND", "mysql"), "storage backend kind")

	fs.StringVar(&cfg.PlacesCSV, "places-csv", envOrDefaultFn("PLACES_CSV", "data/places.csv"), "places CSV path or URL")
	fs.StringVar(&cfg.PeopleCSV, "people-csv", envOrDefaultFn("PEOPLE_CSV", "data/people.csv"), "people CSV path or URL")
	fs.StringVar(&cfg.OutputPath, "out", envOrDefaultFn("OUTPUT_JSON", "output.json"), "JSON export path")

	fs.StringVar(&cfg.SkipDir, "skip-dir", getenv("SKIP_DIR"), "directory for skipped-row audit CSVs (empty disables)")

	fs.StringVar(&cfg.MetricsBackend, "metrics-backend", envOrDefaultFn("METRICS_BACKEND", "none"), "metrics backend: pushgateway, datadog, none")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway-url", getenv("PUSHGATEWAY_URL"), "Prometheus Pushgateway base URL")
	fs.StringVar(&cfg.StatsdAddr, "statsd-addr", getenv("STATSD_ADDR"), "DogStatsD address, e.g. 127.0.0.1:8125")

	if args == nil {
		args = []string{}
	}
	_ = fs.Parse(args)
	return cfg
}

// Load is the production entry point. It wires the loader to the process
// flag set (flag.CommandLine), reads environment variables via os.Getenv,
// and parses os.Args[1:] as the CLI arguments.
func Load() *Config {
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}
