package app

import (
	"testing"

	"github.com/bloombooks/bloomshelf/internal/archive"
	"github.com/bloombooks/bloomshelf/internal/catalog"
)

func TestHumanBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}
	for _, c := range cases {
		got := humanBytes(c.in)
		if got != c.want {
			t.Errorf("humanBytes(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFindItem_EmptyCatalog(t *testing.T) {
	cat = catalog.New(archive.NewPool(t.TempDir()), "en")
	if _, err := findItem("anything"); err == nil {
		t.Error("findItem on empty catalog should fail")
	}
}
