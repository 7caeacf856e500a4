// Package meta reads the structured metadata bundled inside book
// archives and shelf descriptor files: meta.json, questions.json,
// version.txt and the shelf JSON. It works against an archive.Accessor
// and does not care which backing mode the accessor is in.
package meta

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bloombooks/bloomshelf/internal/archive"
)

// ErrParse is returned for malformed or missing metadata. Callers are
// expected to substitute defaults rather than surface it; the sentinel
// exists so the substitution is a visible decision at each call site.
var ErrParse = errors.New("malformed book metadata")

// shelfTagPrefix marks the tags in meta.json that express shelf
// membership. Other tags ("Animals") are topical and ignored here.
const shelfTagPrefix = "bookshelf:"

// Meta is the subset of a book's meta.json this system uses.
type Meta struct {
	Tags                []string `json:"tags"`
	BrandingProjectName string   `json:"brandingProjectName"`
}

// Read extracts and parses meta.json from the archive.
func Read(a *archive.Accessor) (Meta, error) {
	path, ok := a.Entry("meta.json")
	if !ok {
		return Meta{}, fmt.Errorf("meta.json: %w", ErrParse)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, fmt.Errorf("meta.json: %w", ErrParse)
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return Meta{}, fmt.Errorf("meta.json: %w", errors.Join(ErrParse, err))
	}
	return m, nil
}

// Shelves extracts the shelf ids from the book's tags.
func (m Meta) Shelves() []string {
	return shelvesFromTags(m.Tags)
}

// shelvesFromTags picks the shelf ids out of a tag list:
// "bookshelf:Level 2" contributes "Level 2", anything without the prefix
// is skipped.
func shelvesFromTags(tags []string) []string {
	var ids []string
	for _, tag := range tags {
		if strings.HasPrefix(tag, shelfTagPrefix) {
			if id := tag[len(shelfTagPrefix):]; id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// RootHTML resolves the archive's root HTML entry. Resolution tries, in
// order: index.htm, <base>.htm (the archive's own base name), then the
// first .htm entry anywhere. A book with no HTML at all cannot be read,
// so that is a hard error rather than a default.
func RootHTML(a *archive.Accessor, base string) (string, error) {
	if p, ok := a.Entry("index.htm"); ok {
		return p, nil
	}
	if base != "" {
		if p, ok := a.Entry(base + ".htm"); ok {
			return p, nil
		}
	}
	if p, ok := a.FindFirst(func(name string) bool {
		return strings.HasSuffix(name, ".htm")
	}); ok {
		return p, nil
	}
	return "", fmt.Errorf("no root HTML entry in book %q", base)
}
