// Package datasource abstracts where input bytes come from. The pipeline
// reads its CSV inputs through a Source so that local files and HTTP(S)
// downloads are interchangeable.
package datasource

import (
	"context"
	"io"
	"strings"
)

// Source yields a readable stream of input bytes. Open may be called once
// per pipeline stage; the caller closes the returned ReadCloser.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// IsURL reports whether path names an HTTP(S) resource rather than a local
// file.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
