// Command peopleetl runs the batch pipeline end to end: it rebuilds the
// places and people tables, loads both CSV inputs, and exports the joined
// result as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"peopleetl/internal/config"
	"peopleetl/internal/metrics"
	"peopleetl/internal/metrics/datadog"
	"peopleetl/internal/metrics/prompush"

	// register all backends with the storage factory; config picks one.
	_ "peopleetl/internal/storage/all"
)

func main() {
	validate := flag.Bool("validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	// A .env file, when present, seeds the environment before flags read it.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fatalf("load .env: %v", err)
		}
	}

	cfg := config.Load()

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintln(os.Stderr, iss)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid")
	}
	if *validate {
		log.Printf("configuration is valid")
		return
	}

	runID := uuid.NewString()
	setupMetrics(cfg, runID, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()
	log.Printf("run=%s backend=%s places=%s people=%s out=%s",
		runID, cfg.Backend, cfg.PlacesCSV, cfg.PeopleCSV, cfg.OutputPath)

	if err := Run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("run=%s completed in %s", runID, time.Since(start).Truncate(time.Millisecond))
}

// setupMetrics installs the configured metrics backend; the nop backend
// remains when metrics are disabled or initialization fails.
func setupMetrics(cfg *config.Config, runID string, verbose bool) {
	switch cfg.MetricsBackend {
	case "pushgateway":
		gwURL := cfg.PushgatewayURL
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(metricsJob, gwURL)
		if err != nil {
			log.Printf("metrics: pushgateway init failed: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=pushgateway url=%s", gwURL)
		metrics.SetBackend(b)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.StatsdAddr,
			Namespace:  metricsJob,
			GlobalTags: []string{"run:" + runID},
		})
		if err != nil {
			log.Printf("metrics: datadog init failed: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=datadog addr=%s", cfg.StatsdAddr)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", cfg.MetricsBackend)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
