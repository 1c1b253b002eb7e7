package csv

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// newBOMReader wraps r so that a leading UTF-8/UTF-16 byte order mark is
// consumed transparently and UTF-16 input is decoded to UTF-8. Files without
// a BOM pass through unchanged.
func newBOMReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// StripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
// Kept for callers that read headers outside the BOM-aware reader.
func StripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	if strings.HasPrefix(headers[0], utf8BOM) {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	return headers
}
