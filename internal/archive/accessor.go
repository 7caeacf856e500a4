// Package archive provides lazy, cached access to the contents of one
// book archive, whether it is a seekable zip file on disk or an opaque
// stream that can only be read once.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bloombooks/bloomshelf/internal/util"
)

// ErrCorrupt is returned when a source cannot be opened as a zip archive.
var ErrCorrupt = errors.New("archive is not a readable zip")

// Accessor presents "get me this named entry as a local file" over one
// archive. In seekable mode entries are extracted into the scratch
// directory one at a time, on first request; in stream mode everything
// was extracted when the accessor was opened.
//
// The accessor owns its Scratch: Close empties the directory and returns
// it to the pool.
type Accessor struct {
	scratch *Scratch
	zr      *zip.ReadCloser // nil in stream mode
	closed  bool
}

// Open opens a seekable zip archive at path, extracting nothing yet.
func Open(path string, scratch *Scratch) (*Accessor, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		scratch.Release()
		return nil, errorCorrupt(path, err)
	}
	return &Accessor{scratch: scratch, zr: zr}, nil
}

// OpenStream extracts an entire archive from a one-shot reader into the
// scratch directory. Random access over r is impossible, so everything
// is pulled up front.
func OpenStream(r io.Reader, scratch *Scratch) (*Accessor, error) {
	if err := extractAll(r, scratch); err != nil {
		scratch.Release()
		return nil, err
	}
	return &Accessor{scratch: scratch}, nil
}

// Entry returns the local path of the named entry, extracting it on
// first request. ok is false when the archive has no such entry; I/O
// trouble extracting one entry also reports as not-found.
func (a *Accessor) Entry(name string) (path string, ok bool) {
	safe, err := safeEntryName(name)
	if err != nil {
		return "", false
	}
	cached := a.scratch.Path(safe)
	if _, err := os.Stat(cached); err == nil {
		return cached, true
	}
	if a.zr == nil {
		// Stream mode: everything already on disk, so a miss is a miss.
		return "", false
	}
	for _, zf := range a.zr.File {
		if zf.Name == name {
			if err := extractOne(zf, cached); err != nil {
				return "", false
			}
			return cached, true
		}
	}
	return "", false
}

// FindFirst returns the first entry whose name satisfies pred, extracted
// and cached under its own name.
func (a *Accessor) FindFirst(pred func(name string) bool) (path string, ok bool) {
	if a.zr == nil {
		return a.findExtracted(pred)
	}
	for _, zf := range a.zr.File {
		if zf.FileInfo().IsDir() || !pred(zf.Name) {
			continue
		}
		name, err := safeEntryName(zf.Name)
		if err != nil {
			// A hostile entry name must never be written outside scratch.
			continue
		}
		cached := a.scratch.Path(name)
		if _, err := os.Stat(cached); err != nil {
			if err := extractOne(zf, cached); err != nil {
				return "", false
			}
		}
		return cached, true
	}
	return "", false
}

// FindFirstWithExtension finds the first top-level entry ending in ext
// and caches it under renameTo.
func (a *Accessor) FindFirstWithExtension(ext, renameTo string) (path string, ok bool) {
	found, ok := a.FindFirst(func(name string) bool {
		return !strings.Contains(name, "/") && strings.HasSuffix(name, ext)
	})
	if !ok {
		return "", false
	}
	dest := a.scratch.Path(renameTo)
	if found == dest {
		return dest, true
	}
	if err := util.CopyFile(found, dest); err != nil {
		return "", false
	}
	return dest, true
}

// HasEntryUnder reports whether any entry lives under the given path
// prefix (slash-separated, e.g. "audio/").
func (a *Accessor) HasEntryUnder(prefix string) bool {
	if a.zr == nil {
		fi, err := os.Stat(filepath.Join(a.scratch.Dir(), filepath.FromSlash(prefix)))
		return err == nil && fi.IsDir()
	}
	for _, zf := range a.zr.File {
		if strings.HasPrefix(zf.Name, prefix) && !zf.FileInfo().IsDir() {
			return true
		}
	}
	return false
}

// Close releases the archive handle and empties the scratch directory.
// Safe to call more than once.
func (a *Accessor) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if a.zr != nil {
		a.zr.Close()
	}
	return a.scratch.Release()
}

// findExtracted walks the scratch directory for stream-mode archives.
func (a *Accessor) findExtracted(pred func(string) bool) (string, bool) {
	var match string
	root := a.scratch.Dir()
	filepath.Walk(root, func(p string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() || match != "" {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		if pred(filepath.ToSlash(rel)) {
			match = p
		}
		return nil
	})
	return match, match != ""
}

func extractOne(zf *zip.File, dest string) error {
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := util.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, rc)
	return err
}

func errorCorrupt(path string, err error) error {
	if os.IsNotExist(err) || os.IsPermission(err) {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return fmt.Errorf("opening %s: %w", path, errors.Join(ErrCorrupt, err))
}
