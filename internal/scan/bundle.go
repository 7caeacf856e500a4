package scan

import (
	"archive/tar"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bloombooks/bloomshelf/internal/book"
	"github.com/bloombooks/bloomshelf/internal/ingest"
)

// ImportBundle unpacks a tar bundle of book archives into libraryDir,
// reporting each entry by name and each resulting file as found. A
// base64 transport marker on the bundle is handled transparently.
//
// skip, when non-nil, is consulted with each entry's sha256; a true
// result drops the entry (already in the library). Corruption partway
// through keeps everything already extracted and surfaces the error in
// SearchComplete. Cancellation is checked between entries; entries
// already written stay.
func ImportBundle(ctx context.Context, path, libraryDir string, skip func(sha256 string) bool, events chan<- Event) {
	err := importBundle(ctx, path, libraryDir, skip, events)
	events <- SearchComplete{Err: err}
}

func importBundle(ctx context.Context, path, libraryDir string, skip func(string) bool, events chan<- Event) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening bundle: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if book.IsEncoded(path) {
		r = base64.NewDecoder(base64.StdEncoding, f)
	}

	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("bundle stream: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := filepath.Base(hdr.Name)
		if book.Classify(name) == book.KindIgnored {
			events <- Skipped{Path: name, Reason: "not a library file"}
			continue
		}
		events <- EntryProgress{Name: book.DisplayName(name)}

		dest, err := extractEntry(tr, libraryDir, name, skip)
		if err != nil {
			return fmt.Errorf("extracting %s: %w", name, err)
		}
		if dest == "" {
			events <- Skipped{Path: name, Reason: "identical copy already in library"}
			continue
		}
		switch book.Classify(name) {
		case book.KindBook:
			events <- FoundBook{Path: dest}
		case book.KindShelf:
			events <- FoundShelf{Path: dest}
		}
	}
}

// extractEntry writes one tar entry into libraryDir. Returns "" when the
// dedupe callback rejected it. The write goes through a temp file so a
// torn stream never leaves a half-written book under a live name.
func extractEntry(r io.Reader, libraryDir, name string, skip func(string) bool) (string, error) {
	dest := filepath.Join(libraryDir, name)
	tmp := dest + ".part"

	out, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	counted := ingest.NewReader(r)
	_, copyErr := io.Copy(out, counted)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp)
		if copyErr != nil {
			return "", copyErr
		}
		return "", closeErr
	}
	if skip != nil && skip(counted.SHA256()) {
		os.Remove(tmp)
		return "", nil
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return dest, nil
}
