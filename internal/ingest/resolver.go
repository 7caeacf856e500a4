package ingest

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Source holds a resolved input ready for reading.
type Source struct {
	// Name is the original filename (no directory), used to name the
	// library copy.
	Name string
	// Size is the byte count if known in advance (-1 if unknown).
	Size int64
	// Open returns a new ReadCloser. May be called once.
	Open func() (io.ReadCloser, error)
}

// Resolve determines the type of input and returns a Source.
// Supported formats:
//
//	/path/to/book.bloomd          — local file
//	https://example.com/b.bloomd  — HTTP URL
func Resolve(input string) (*Source, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return resolveHTTP(input)
	}
	return resolveFile(input)
}

func resolveFile(path string) (*Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}
	return &Source{
		Name: filepath.Base(path),
		Size: fi.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func resolveHTTP(url string) (*Source, error) {
	// HEAD the URL to try to get Content-Length and filename.
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Head(url)
	size := int64(-1)
	if err == nil && resp.StatusCode == http.StatusOK {
		if cl := resp.ContentLength; cl > 0 {
			size = cl
		}
		resp.Body.Close()
	}

	return &Source{
		Name: guessFilenameFromURL(url),
		Size: size,
		Open: func() (io.ReadCloser, error) {
			r, err := client.Get(url)
			if err != nil {
				return nil, err
			}
			if r.StatusCode != http.StatusOK {
				r.Body.Close()
				return nil, fmt.Errorf("GET %s: status %d", url, r.StatusCode)
			}
			return r.Body, nil
		},
	}, nil
}

func guessFilenameFromURL(rawURL string) string {
	// Strip query string.
	if idx := strings.Index(rawURL, "?"); idx >= 0 {
		rawURL = rawURL[:idx]
	}
	base := filepath.Base(rawURL)
	if base == "" || base == "." || base == "/" {
		return "download"
	}
	return base
}
