// Command csvprobe sniffs a CSV file or URL and prints what the pipeline
// would make of it: delimiter, header presence, and the canonical column
// names. Run it against a new input before pointing the loader at it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"peopleetl/internal/datasource"
	"peopleetl/internal/datasource/file"
	"peopleetl/internal/datasource/httpds"
	"peopleetl/internal/probe"
)

var (
	flagInput = flag.String("input", "", "CSV path or http(s) URL to sniff")
	flagBytes = flag.Int("bytes", 64*1024, "number of bytes to sample from the start")
)

func main() {
	flag.Parse()
	if *flagInput == "" {
		fmt.Fprintln(os.Stderr, "csvprobe: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	rep, err := run(context.Background(), *flagInput, *flagBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "csvprobe: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rep); err != nil {
		fmt.Fprintf(os.Stderr, "csvprobe: %v\n", err)
		os.Exit(1)
	}
}

// run opens the input through the matching datasource and sniffs it.
func run(ctx context.Context, input string, maxBytes int) (probe.Report, error) {
	var src datasource.Source
	if datasource.IsURL(input) {
		src = httpds.NewSource(input, nil)
	} else {
		src = file.NewLocal(input)
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return probe.Report{}, err
	}
	defer rc.Close()

	return probe.Sniff(rc, maxBytes)
}
