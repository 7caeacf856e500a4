// Package thumbs caches per-book derived artifacts: a small preview
// image extracted from the archive and a has-narration flag. Artifacts
// are keyed by book name and invalidated when the source file's
// modification time moves past them.
package thumbs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bloombooks/bloomshelf/internal/archive"
	"github.com/bloombooks/bloomshelf/internal/book"
	"github.com/bloombooks/bloomshelf/internal/meta"
	"github.com/bloombooks/bloomshelf/internal/util"
)

// audioMarker appears in the root HTML of books that carry recorded
// narration. The flag also requires at least one clip under audio/,
// since the marker can survive in books whose recordings were stripped.
const audioMarker = "audio-sentence"

const (
	thumbScratch = "thumb"
	audioScratch = "audio"
)

// Cache manages the thumbs directory. Thumbnail and HasAudio each open
// their own archive accessor on a scratch purpose disjoint from the
// reading session's, so they can run concurrently with it.
type Cache struct {
	baseDir string
	pool    *archive.Pool
}

// New creates a Cache rooted at baseDir.
func New(baseDir string, pool *archive.Pool) *Cache {
	return &Cache{baseDir: baseDir, pool: pool}
}

// Thumbnail returns the path of the cached preview image for the book,
// or "" if the book has none. A stale cached image is deleted and
// regenerated; a book known to lack a preview is remembered with a
// sentinel file so the archive is not reopened on every call.
func (c *Cache) Thumbnail(it *book.Item) (string, error) {
	src, err := os.Stat(it.Path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", it.Path, err)
	}

	for _, ext := range []string{".png", ".jpg"} {
		cached := c.artifactPath(it, ext)
		fi, err := os.Stat(cached)
		if err != nil {
			continue
		}
		if fi.ModTime().After(src.ModTime()) {
			return cached, nil
		}
		_ = os.Remove(cached)
	}

	sentinel := c.artifactPath(it, ".none")
	if fi, err := os.Stat(sentinel); err == nil {
		if fi.ModTime().After(src.ModTime()) {
			return "", nil
		}
		_ = os.Remove(sentinel)
	}

	return c.generate(it)
}

// generate extracts the thumbnail entry from the archive into the
// thumbs directory, or writes the no-thumbnail sentinel.
func (c *Cache) generate(it *book.Item) (string, error) {
	if err := util.EnsureDir(c.baseDir); err != nil {
		return "", fmt.Errorf("create thumbs dir: %w", err)
	}

	s, err := c.pool.Acquire(thumbScratch)
	if err != nil {
		return "", err
	}
	a, err := archive.Open(it.Path, s)
	if err != nil {
		return "", err
	}
	defer a.Close()

	for _, name := range []string{"thumbnail.png", "thumbnail.jpg"} {
		extracted, ok := a.Entry(name)
		if !ok {
			continue
		}
		dest := c.artifactPath(it, filepath.Ext(name))
		if err := util.CopyFile(extracted, dest); err != nil {
			return "", fmt.Errorf("caching thumbnail: %w", err)
		}
		return dest, nil
	}

	// Remember the absence so the next call is a stat, not an unzip.
	if err := os.WriteFile(c.artifactPath(it, ".none"), nil, 0644); err != nil {
		return "", fmt.Errorf("writing sentinel: %w", err)
	}
	return "", nil
}

// HasAudio reports whether the book carries recorded narration: the
// root HTML must contain the audio marker and the archive must hold at
// least one entry under audio/. Any failure along the way means false,
// never an error, since narration is a nice-to-have badge.
func (c *Cache) HasAudio(it *book.Item) bool {
	s, err := c.pool.Acquire(audioScratch)
	if err != nil {
		return false
	}
	a, err := archive.Open(it.Path, s)
	if err != nil {
		return false
	}
	defer a.Close()

	htmlPath, err := meta.RootHTML(a, it.Name)
	if err != nil {
		return false
	}
	html, err := os.ReadFile(htmlPath)
	if err != nil {
		return false
	}
	if !strings.Contains(string(html), audioMarker) {
		return false
	}
	return a.HasEntryUnder("audio/")
}

// Remove deletes any cached artifacts for the book. Called when the
// book itself is removed from the library.
func (c *Cache) Remove(it *book.Item) error {
	for _, ext := range []string{".png", ".jpg", ".none"} {
		err := os.Remove(c.artifactPath(it, ext))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (c *Cache) artifactPath(it *book.Item, ext string) string {
	return filepath.Join(c.baseDir, it.Name+ext)
}
