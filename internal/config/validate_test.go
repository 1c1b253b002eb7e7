package config

import (
	"flag"
	"strings"
	"testing"
)

func defaultConfig() *Config {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	return LoadFromArgs(fs, func(string) string { return "" }, nil)
}

// TestValidateCleanDefaults ensures the shipped defaults validate without
// errors.
func TestValidateCleanDefaults(t *testing.T) {
	t.Parallel()

	issues := Validate(defaultConfig())
	if HasErrors(issues) {
		t.Fatalf("default config should have no errors: %v", issues)
	}
}

// TestValidateFindsErrors exercises the individual error paths.
func TestValidateFindsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Config)
		wantPath string
	}{
		{"empty backend", func(c *Config) { c.Backend = "" }, "backend"},
		{"empty database", func(c *Config) { c.DB.Database = "" }, "db.name"},
		{"bad port", func(c *Config) { c.DB.Port = 0 }, "db.port"},
		{"empty user", func(c *Config) { c.DB.User = "" }, "db.user"},
		{"empty people path", func(c *Config) { c.PeopleCSV = "" }, "people-csv"},
		{"empty output path", func(c *Config) { c.OutputPath = "" }, "out"},
		{"pushgateway without url", func(c *Config) { c.MetricsBackend = "pushgateway" }, "pushgateway-url"},
		{"datadog without addr", func(c *Config) { c.MetricsBackend = "datadog" }, "statsd-addr"},
		{"unknown metrics backend", func(c *Config) { c.MetricsBackend = "statsite" }, "metrics-backend"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tc.mutate(cfg)
			issues := Validate(cfg)
			if !HasErrors(issues) {
				t.Fatalf("expected an error issue, got %v", issues)
			}
			found := false
			for _, iss := range issues {
				if iss.Severity == SeverityError && iss.Path == tc.wantPath {
					found = true
				}
			}
			if !found {
				t.Fatalf("no error at path %q in %v", tc.wantPath, issues)
			}
		})
	}
}

// TestValidateSQLiteRelaxesNetworkFields verifies sqlite skips host/port/user
// requirements; only the database path matters.
func TestValidateSQLiteRelaxesNetworkFields(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Backend = "sqlite"
	cfg.DB.Host = ""
	cfg.DB.Port = 0
	cfg.DB.User = ""
	cfg.DB.Database = "etl.db"

	if issues := Validate(cfg); HasErrors(issues) {
		t.Fatalf("sqlite config should not require network fields: %v", issues)
	}
}

// TestValidateWarnsUnknownBackend verifies unknown storage kinds warn rather
// than error (the factory is the authority).
func TestValidateWarnsUnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Backend = "oracle"
	issues := Validate(cfg)
	if HasErrors(issues) {
		t.Fatalf("unknown backend should only warn: %v", issues)
	}
	found := false
	for _, iss := range issues {
		if iss.Severity == SeverityWarning && strings.Contains(iss.Message, "oracle") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning naming the backend, got %v", issues)
	}
}

// TestIssueString pins the rendering used when printing findings to stderr.
func TestIssueString(t *testing.T) {
	t.Parallel()

	iss := Issue{SeverityError, "db.port", "port 0 out of range"}
	if got := iss.String(); got != "error: db.port: port 0 out of range" {
		t.Fatalf("unexpected rendering: %q", got)
	}
}
