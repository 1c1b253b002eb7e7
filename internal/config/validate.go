package config

import (
	"fmt"
	"strings"
)

// IssueSeverity classifies a validation finding.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted locator into the
// configuration (e.g. "db.port") so findings are actionable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// knownBackends lists the storage kinds this build registers. An unknown
// value is only a warning here; the storage factory is the authority and
// will fail hard if the kind is truly absent.
var knownBackends = map[string]struct{}{
	"mysql":    {},
	"sqlite":   {},
	"postgres": {},
	"mssql":    {},
}

var knownMetricsBackends = map[string]struct{}{
	"none":        {},
	"pushgateway": {},
	"datadog":     {},
}

// Validate checks the configuration for problems a run would hit immediately
// and returns all findings. Errors make the configuration unusable; warnings
// are advisory.
func Validate(cfg *Config) []Issue {
	var issues []Issue

	errf := func(path, format string, args ...any) {
		issues = append(issues, Issue{SeverityError, path, fmt.Sprintf(format, args...)})
	}
	warnf := func(path, format string, args ...any) {
		issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf(format, args...)})
	}

	if cfg.Backend == "" {
		errf("backend", "storage backend must not be empty")
	} else if _, ok := knownBackends[cfg.Backend]; !ok {
		warnf("backend", "unknown storage backend %q (known: mysql, sqlite, postgres, mssql)", cfg.Backend)
	}

	if cfg.DB.Database == "" {
		errf("db.name", "database name must not be empty")
	}
	// Network backends need host/port/user; sqlite only needs the file path.
	if cfg.Backend != "sqlite" {
		if cfg.DB.Host == "" {
			errf("db.host", "host must not be empty")
		}
		if cfg.DB.Port <= 0 || cfg.DB.Port > 65535 {
			errf("db.port", "port %d out of range", cfg.DB.Port)
		}
		if cfg.DB.User == "" {
			errf("db.user", "user must not be empty")
		}
	}
	if cfg.Backend == "mysql" && cfg.DB.Charset == "" {
		warnf("db.charset", "empty charset; the server default will apply")
	}

	if cfg.PlacesCSV == "" {
		warnf("places-csv", "empty places path; the places stage will be skipped with a warning")
	}
	if cfg.PeopleCSV == "" {
		errf("people-csv", "people path must not be empty")
	}
	if cfg.OutputPath == "" {
		errf("out", "output path must not be empty")
	}

	switch {
	case cfg.MetricsBackend == "":
		// treated as "none"
	case hasKnownMetricsBackend(cfg.MetricsBackend):
		if cfg.MetricsBackend == "pushgateway" && cfg.PushgatewayURL == "" {
			errf("pushgateway-url", "required when metrics-backend=pushgateway")
		}
		if cfg.MetricsBackend == "datadog" && cfg.StatsdAddr == "" {
			errf("statsd-addr", "required when metrics-backend=datadog")
		}
	default:
		errf("metrics-backend", "unknown metrics backend %q (known: %s)",
			cfg.MetricsBackend, strings.Join(metricsBackendNames(), ", "))
	}

	return issues
}

// HasErrors reports whether any issue in the list is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

func hasKnownMetricsBackend(name string) bool {
	_, ok := knownMetricsBackends[name]
	return ok
}

func metricsBackendNames() []string {
	return []string{"none", "pushgateway", "datadog"}
}
