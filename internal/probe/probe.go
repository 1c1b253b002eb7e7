// Package probe sniffs a CSV sample before a load: it guesses the delimiter,
// decides whether the first row is a header, and reports the canonical column
// names the pipeline would derive from it. It exists so a new input file can
// be checked without running the loaders against a live database.
package probe

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Report is the result of sniffing one CSV sample.
type Report struct {
	Delimiter string   `json:"delimiter"`
	HasHeader bool     `json:"has_header"`
	Fields    int      `json:"fields"`
	Headers   []string `json:"headers,omitempty"` // folded canonical names
	DataRows  int      `json:"data_rows"`         // rows sampled after the header
}

// candidate delimiters, tried in order.
var delimiters = []rune{',', ';', '\t', '|'}

// Sniff reads at most maxBytes from r and derives a Report. It returns an
// error when the sample is empty or no candidate delimiter yields a
// consistent field count across the sampled lines.
func Sniff(r io.Reader, maxBytes int) (Report, error) {
	if maxBytes <= 0 {
		maxBytes = 64 * 1024
	}
	sample, err := io.ReadAll(io.LimitReader(r, int64(maxBytes)))
	if err != nil {
		return Report{}, fmt.Errorf("read sample: %w", err)
	}
	if len(strings.TrimSpace(string(sample))) == 0 {
		return Report{}, fmt.Errorf("empty sample")
	}

	delim, rows, err := bestDelimiter(string(sample))
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		Delimiter: string(delim),
		Fields:    len(rows[0]),
	}
	rep.HasHeader = looksLikeHeader(rows)
	if rep.HasHeader {
		rep.Headers = make([]string, len(rows[0]))
		for i, h := range rows[0] {
			rep.Headers[i] = FoldHeader(h)
		}
		rep.DataRows = len(rows) - 1
	} else {
		rep.DataRows = len(rows)
	}
	return rep, nil
}

// bestDelimiter parses the sample with each candidate and keeps the one that
// splits the most fields while staying consistent across rows.
func bestDelimiter(sample string) (rune, [][]string, error) {
	var (
		best     rune
		bestRows [][]string
	)
	for _, d := range delimiters {
		cr := csv.NewReader(strings.NewReader(sample))
		cr.Comma = d
		cr.LazyQuotes = true
		cr.FieldsPerRecord = 0 // demand consistency with the first row
		rows, err := cr.ReadAll()
		if err != nil || len(rows) == 0 || len(rows[0]) < 2 {
			continue
		}
		if bestRows == nil || len(rows[0]) > len(bestRows[0]) {
			best, bestRows = d, rows
		}
	}
	if bestRows == nil {
		return 0, nil, fmt.Errorf("no delimiter yields a consistent multi-column split")
	}
	return best, bestRows, nil
}

// looksLikeHeader reports whether the first sampled row reads as column names:
// every cell non-empty and none of them a number or a date. With a single row
// there is nothing to compare against and the answer defaults to true.
func looksLikeHeader(rows [][]string) bool {
	for _, cell := range rows[0] {
		c := strings.TrimSpace(cell)
		if c == "" {
			return false
		}
		if _, err := strconv.ParseFloat(c, 64); err == nil {
			return false
		}
		if _, err := time.Parse("2006-01-02", c); err == nil {
			return false
		}
	}
	return true
}

// foldTransform strips combining marks: NFD decomposition, drop the marks,
// recompose. "Plzeň" folds to "plzen" rather than dropping the rune.
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldHeader converts one raw header cell to the canonical form the pipeline
// keys records by: accents stripped, lowercased, spaces and dashes collapsed
// to single underscores.
func FoldHeader(s string) string {
	folded, _, err := transform.String(foldTransform, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && sb.Len() > 0 {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}
