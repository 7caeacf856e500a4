package scan

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bloombooks/bloomshelf/internal/book"
)

// WalkRoot scans a directory tree given direct filesystem paths,
// depth-first, reporting every book, shelf and bundle it finds. Files
// carrying the base64 transport marker are decoded in place (the marker
// extension is stripped) before being reported. Per-file trouble is
// reported as Skipped and never aborts the walk; only an unreadable
// root ends it early.
//
// Exactly one SearchComplete is sent before returning.
func WalkRoot(root string, events chan<- Event) {
	err := walkDir(root, events)
	events <- SearchComplete{Err: err}
}

func walkDir(dir string, events chan<- Event) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if err := walkDir(path, events); err != nil {
				events <- Skipped{Path: path, Reason: err.Error()}
			}
			continue
		}
		kind := book.Classify(e.Name())
		if kind == book.KindIgnored {
			continue
		}
		if book.IsEncoded(e.Name()) {
			decoded, err := decodeInPlace(path)
			if err != nil {
				events <- Skipped{Path: path, Reason: fmt.Sprintf("decoding: %v", err)}
				continue
			}
			path = decoded
		}
		switch kind {
		case book.KindBook:
			events <- FoundBook{Path: path}
		case book.KindShelf:
			events <- FoundShelf{Path: path}
		case book.KindBundle:
			events <- FoundBundle{Path: path}
		}
	}
	return nil
}

// decodeInPlace base64-decodes a transport-wrapped file to its bare
// name and removes the wrapped original, so later scans see only the
// usable payload. Returns the decoded file's path.
func decodeInPlace(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dest := strings.TrimSuffix(path, book.EncodedExt)
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	dec := base64.NewDecoder(base64.StdEncoding, in)
	if _, err := io.Copy(out, dec); err != nil {
		out.Close()
		os.Remove(dest)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", err
	}
	return dest, nil
}
