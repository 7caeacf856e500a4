package app

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bloombooks/bloomshelf/internal/archive"
	"github.com/bloombooks/bloomshelf/internal/book"
	"github.com/bloombooks/bloomshelf/internal/meta"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <path or name>",
		Short: "Show metadata for a book or shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := loadCatalog(); err != nil {
				return err
			}
			it, err := findItem(args[0])
			if err != nil {
				return err
			}
			if it.IsShelf() {
				return shelfInfo(it)
			}
			return bookInfo(it)
		},
	}
}

func shelfInfo(it *book.Item) error {
	header("Shelf: %s", it.Name)
	printField("path", it.Path)
	printField("id", it.ShelfID)
	printField("color", "#"+it.BackgroundColor)
	books := cat.ItemsWithinShelf(it)
	printField("books", fmt.Sprintf("%d", len(books)-1))
	return nil
}

func bookInfo(it *book.Item) error {
	fi, err := os.Stat(it.Path)
	if err != nil {
		return err
	}

	s, err := pool.Acquire("reader")
	if err != nil {
		return err
	}
	a, err := archive.Open(it.Path, s)
	if err != nil {
		return err
	}
	defer a.Close()

	header("Book: %s", it.Name)
	printField("path", it.Path)
	printField("size", humanBytes(fi.Size()))
	if it.BrandingProjectName != "" {
		printField("branding", it.BrandingProjectName)
	}
	if len(it.Shelves) > 0 {
		tags := make([]string, 0, len(it.Shelves))
		for id := range it.Shelves {
			tags = append(tags, id)
		}
		sort.Strings(tags)
		printField("shelves", strings.Join(tags, ", "))
	}
	if token := meta.ReadVersion(a); token != "" {
		printField("version", token)
	}

	if groups, err := meta.ReadQuiz(a); err == nil && len(groups) > 0 {
		parts := make([]string, 0, len(groups))
		for _, g := range groups {
			parts = append(parts, fmt.Sprintf("%s (%d questions)", g.Lang, len(g.Questions)))
		}
		printField("quiz", strings.Join(parts, ", "))
	}

	// The reader accessor must be closed before the derived-artifact
	// checks run: they open their own accessors on other purposes, but
	// the underlying file handle should not be held twice.
	a.Close()

	if thumbPath, err := thumbCache.Thumbnail(it); err == nil {
		if thumbPath != "" {
			printField("thumbnail", thumbPath)
		} else {
			printField("thumbnail", color.YellowString("none"))
		}
	}
	audio := color.RedString("no")
	if thumbCache.HasAudio(it) {
		audio = color.GreenString("yes")
	}
	printField("audio", audio)
	return nil
}

func printField(label, value string) {
	fmt.Printf("  %-12s %s\n", color.CyanString(label+":"), value)
}
