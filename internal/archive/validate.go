package archive

import (
	"archive/zip"
	"fmt"
)

// Validate checks that the file at path is a structurally sound zip with
// at least one entry. It reads only the central directory, so it is
// cheap enough to run on every file a scan discovers.
func Validate(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return errorCorrupt(path, err)
	}
	defer zr.Close()
	if len(zr.File) == 0 {
		return fmt.Errorf("%s has no entries: %w", path, ErrCorrupt)
	}
	return nil
}
