package ingest_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bloombooks/bloomshelf/internal/ingest"
)

func TestReader_SHA256AndSize(t *testing.T) {
	data := "hello, bloomshelf"
	r := ingest.NewReader(strings.NewReader(data))

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != data {
		t.Errorf("content mismatch: got %q", string(out))
	}
	if r.Size() != int64(len(data)) {
		t.Errorf("Size() = %d, want %d", r.Size(), len(data))
	}
	if len(r.SHA256()) != 64 {
		t.Errorf("SHA256() length = %d, want 64", len(r.SHA256()))
	}
}

func TestReader_EmptyInput(t *testing.T) {
	r := ingest.NewReader(strings.NewReader(""))
	io.ReadAll(r) //nolint:errcheck
	if r.Size() != 0 {
		t.Errorf("Size() = %d, want 0", r.Size())
	}
	// sha256 of empty string is well-known
	const emptySHA = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if r.SHA256() != emptySHA {
		t.Errorf("SHA256('') = %q, want %q", r.SHA256(), emptySHA)
	}
}

func TestReader_LooksLikeZip(t *testing.T) {
	zipped := ingest.NewReader(strings.NewReader("PK\x03\x04rest of archive"))
	io.ReadAll(zipped) //nolint:errcheck
	if !zipped.LooksLikeZip() {
		t.Error("zip-signed payload not recognized")
	}

	// Signature split across tiny reads still registers.
	split := ingest.NewReader(strings.NewReader("PK\x03\x04more"))
	buf := make([]byte, 1)
	for {
		if _, err := split.Read(buf); err == io.EOF {
			break
		}
	}
	if !split.LooksLikeZip() {
		t.Error("signature missed across split reads")
	}

	plain := ingest.NewReader(strings.NewReader("<html>not a zip</html>"))
	io.ReadAll(plain) //nolint:errcheck
	if plain.LooksLikeZip() {
		t.Error("html payload recognized as zip")
	}
}

func TestResolve_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moon.bloomd")
	if err := os.WriteFile(path, []byte("book bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := ingest.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.Name != "moon.bloomd" {
		t.Errorf("Name = %q", src.Name)
	}
	if src.Size != int64(len("book bytes")) {
		t.Errorf("Size = %d", src.Size)
	}
	rc, err := src.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "book bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestResolve_LocalFile_NotFound(t *testing.T) {
	if _, err := ingest.Resolve("/no/such/file.bloomd"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestResolve_Directory(t *testing.T) {
	if _, err := ingest.Resolve(t.TempDir()); err == nil {
		t.Error("expected error for directory, got nil")
	}
}

func TestResolve_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("served book"))
	}))
	defer srv.Close()

	src, err := ingest.Resolve(srv.URL + "/books/river.bloomd?dl=1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.Name != "river.bloomd" {
		t.Errorf("Name = %q, want filename without query", src.Name)
	}
	rc, err := src.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "served book" {
		t.Errorf("content = %q", data)
	}
}

func TestResolve_HTTP_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	src, err := ingest.Resolve(srv.URL + "/gone.bloomd")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := src.Open(); err == nil {
		t.Error("Open succeeded on a 404")
	}
}
