package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/krolaw/zipstream"

	"github.com/bloombooks/bloomshelf/internal/util"
)

// extractAll pulls every entry of a zip stream into the scratch
// directory. Used for sources that cannot seek, where lazy per-entry
// extraction is impossible.
func extractAll(r io.Reader, scratch *Scratch) error {
	zr := zipstream.NewReader(r)
	extracted := 0
	for {
		hdr, err := zr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading archive stream: %w", errors.Join(ErrCorrupt, err))
		}
		name, err := safeEntryName(hdr.Name)
		if err != nil {
			return err
		}
		if strings.HasSuffix(hdr.Name, "/") {
			if err := util.EnsureDir(scratch.Path(name)); err != nil {
				return err
			}
			continue
		}
		if err := writeEntry(zr, scratch.Path(name)); err != nil {
			return fmt.Errorf("extracting %s: %w", hdr.Name, err)
		}
		extracted++
	}
	if extracted == 0 {
		return fmt.Errorf("empty archive stream: %w", ErrCorrupt)
	}
	return nil
}

func writeEntry(r io.Reader, dest string) error {
	if err := util.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, r)
	return err
}

// safeEntryName rejects entry names that would escape the scratch
// directory.
func safeEntryName(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction root", name)
	}
	return filepath.ToSlash(clean), nil
}
