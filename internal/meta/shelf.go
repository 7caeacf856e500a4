package meta

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ShelfDescriptor is the parsed content of a .bloomshelf file.
type ShelfDescriptor struct {
	ID    string              `json:"id"`
	Color string              `json:"color"`
	Label []map[string]string `json:"label"`
	// Tags lets a shelf live inside another shelf, with the same
	// "bookshelf:" prefix convention books use.
	Tags []string `json:"tags"`
}

// Shelves extracts the parent shelf ids from the descriptor's tags.
func (d ShelfDescriptor) Shelves() []string {
	return shelvesFromTags(d.Tags)
}

// ReadShelf parses the shelf descriptor file at path.
func ReadShelf(path string) (ShelfDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ShelfDescriptor{}, fmt.Errorf("shelf %s: %w", path, ErrParse)
	}
	var d ShelfDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return ShelfDescriptor{}, fmt.Errorf("shelf %s: %w", path, errors.Join(ErrParse, err))
	}
	return d, nil
}

// DisplayName resolves the shelf label for the given UI language,
// falling back to English, then to the empty string (the caller then
// falls back to the filename).
func (d ShelfDescriptor) DisplayName(lang string) string {
	if s := d.labelFor(lang); s != "" {
		return s
	}
	return d.labelFor("en")
}

func (d ShelfDescriptor) labelFor(lang string) string {
	if lang == "" {
		return ""
	}
	for _, entry := range d.Label {
		if s, ok := entry[lang]; ok && s != "" {
			return s
		}
	}
	return ""
}
