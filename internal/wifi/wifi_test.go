package wifi

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bloombooks/bloomshelf/internal/archive"
	"github.com/bloombooks/bloomshelf/internal/book"
)

func TestParseAdvertisement(t *testing.T) {
	data := []byte(`{"title":"The Moon","version":"abc123","protocolVersion":"2.0","sender":"Pat's laptop"}`)
	adv, err := ParseAdvertisement(data)
	if err != nil {
		t.Fatalf("ParseAdvertisement: %v", err)
	}
	if adv.Title != "The Moon" || adv.Version != "abc123" || adv.Sender != "Pat's laptop" {
		t.Errorf("adv = %+v", adv)
	}

	if _, err := ParseAdvertisement([]byte("junk")); err == nil {
		t.Error("junk datagram accepted")
	}
	if _, err := ParseAdvertisement([]byte(`{"version":"x"}`)); err == nil {
		t.Error("titleless datagram accepted")
	}
}

func TestCheckProtocol(t *testing.T) {
	cases := []struct {
		version string
		want    error
	}{
		{"1.5", ErrSenderTooOld},
		{"2.0", nil},
		{"2.9", nil},
		{"3.0", ErrSenderTooNew},
		{"4.2", ErrSenderTooNew},
	}
	for _, c := range cases {
		err := Advertisement{Title: "t", ProtocolVersion: c.version}.CheckProtocol()
		if !errors.Is(err, c.want) {
			t.Errorf("CheckProtocol(%q) = %v, want %v", c.version, err, c.want)
		}
	}
	if err := (Advertisement{Title: "t", ProtocolVersion: "beta"}).CheckProtocol(); err == nil {
		t.Error("unparseable protocolVersion accepted")
	}
}

func TestTimeoutReader_PassesDataThrough(t *testing.T) {
	tr := NewTimeoutReader(strings.NewReader("hello world"), time.Second)
	defer tr.Close()
	data, err := io.ReadAll(tr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("data = %q", data)
	}
}

// stallReader produces a little data, then hangs forever.
type stallReader struct{ sent bool }

func (s *stallReader) Read(p []byte) (int, error) {
	if !s.sent {
		s.sent = true
		return copy(p, []byte("partial")), nil
	}
	select {} // block forever
}

func TestTimeoutReader_Stall(t *testing.T) {
	tr := NewTimeoutReader(&stallReader{}, 50*time.Millisecond)
	defer tr.Close()
	data, err := io.ReadAll(tr)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
	if string(data) != "partial" {
		t.Errorf("data before stall = %q", data)
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startReceiver(t *testing.T, dir string) (*Receiver, string) {
	t.Helper()
	rc := NewReceiver(dir)
	if err := rc.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		rc.Stop(ctx)
	})
	return rc, "http://" + rc.Addr().String()
}

func TestReceiver_PutFile(t *testing.T) {
	dir := t.TempDir()
	var gotPath, gotSHA string
	rc, base := startReceiver(t, dir)
	rc.OnFile = func(path, sha string) { gotPath, gotSHA = path, sha }

	body := bytes.NewReader([]byte("book bytes"))
	req, _ := http.NewRequest(http.MethodPut, base+"/putfile?path=moon.bloomd", body)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	defer resp.Body.Close()
	text, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(text) != "success" {
		t.Fatalf("response = %d %q", resp.StatusCode, text)
	}

	data, err := os.ReadFile(filepath.Join(dir, "moon.bloomd"))
	if err != nil || string(data) != "book bytes" {
		t.Errorf("stored file = %q, %v", data, err)
	}
	if gotPath == "" || gotSHA == "" {
		t.Error("OnFile not invoked with path and checksum")
	}
}

func TestReceiver_RejectsEscapingPath(t *testing.T) {
	dir := t.TempDir()
	_, base := startReceiver(t, dir)

	for _, rel := range []string{"", "../evil.bloomd", "/abs.bloomd"} {
		req, _ := http.NewRequest(http.MethodPut, base+"/putfile?path="+rel, strings.NewReader("x"))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("PUT %q: %v", rel, err)
		}
		text, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			t.Errorf("path %q accepted: %s", rel, text)
		}
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "evil.bloomd")); !os.IsNotExist(err) {
		t.Error("escaping path wrote outside the library")
	}
}

func TestReceiver_StalledBodyDiscardsPartial(t *testing.T) {
	dir := t.TempDir()
	rc, base := startReceiver(t, dir)
	rc.chunkTimeout = 100 * time.Millisecond

	// Stream a body that sends a few bytes and then stops, keeping the
	// connection open.
	pr, pw := io.Pipe()
	go func() {
		pw.Write([]byte("beginning of a book"))
		time.Sleep(time.Second)
		pw.Close()
	}()
	req, _ := http.NewRequest(http.MethodPut, base+"/putfile?path=stall.bloomd", pr)
	resp, err := http.DefaultClient.Do(req)
	// The server may cut the connection while the client is still
	// writing; an error here is the failure path too.
	if err == nil {
		if resp.StatusCode == http.StatusOK {
			t.Error("stalled transfer reported success")
		}
		resp.Body.Close()
	}
	eventually(t, "partial file cleanup", func() bool {
		_, mainErr := os.Stat(filepath.Join(dir, "stall.bloomd"))
		_, partErr := os.Stat(filepath.Join(dir, "stall.bloomd.part"))
		return os.IsNotExist(mainErr) && os.IsNotExist(partErr)
	})
}

func TestReceiver_Notify(t *testing.T) {
	dir := t.TempDir()
	rc, base := startReceiver(t, dir)
	done := make(chan struct{}, 1)
	rc.OnDone = func() { done <- struct{}{} }

	resp, err := http.Get(base + "/notify")
	if err != nil {
		t.Fatalf("GET /notify: %v", err)
	}
	text, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(text) != "success" {
		t.Errorf("notify response = %q", text)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("OnDone not invoked")
	}
}

func writeBookWithVersion(t *testing.T, dir, title, version string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("index.htm")
	w.Write([]byte("<html/>"))
	w, _ = zw.Create("version.txt")
	w.Write([]byte(version))
	zw.Close()
	path := filepath.Join(dir, title+book.BookExt)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestListener(t *testing.T, dir string) (*Listener, *[]string) {
	t.Helper()
	l := NewListener(Config{LibraryDir: dir, DeviceName: "test device"}, archive.NewPool(t.TempDir()))
	var lines []string
	l.Logf = func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}
	return l, &lines
}

func TestListener_UpToDate(t *testing.T) {
	dir := t.TempDir()
	writeBookWithVersion(t, dir, "The Moon", "abc123")
	l, _ := newTestListener(t, dir)

	if !l.upToDate(Advertisement{Title: "The Moon", Version: "abc123"}) {
		t.Error("identical version not recognized as up to date")
	}
	if !l.upToDate(Advertisement{Title: "The Moon", Version: "\uFEFFabc123"}) {
		t.Error("BOM-prefixed advertised version not recognized as equal")
	}
	if l.upToDate(Advertisement{Title: "The Moon", Version: "xyz789"}) {
		t.Error("changed version reported up to date")
	}
	if l.upToDate(Advertisement{Title: "Not Installed", Version: "abc123"}) {
		t.Error("missing book reported up to date")
	}
}

func TestListener_AnnouncesOncePerTitle(t *testing.T) {
	dir := t.TempDir()
	writeBookWithVersion(t, dir, "The Moon", "v1")
	l, lines := newTestListener(t, dir)

	adv := []byte(`{"title":"The Moon","version":"v1","protocolVersion":"2.2","sender":"desk"}`)
	l.HandleAdvertisement(adv, nil)
	l.HandleAdvertisement(adv, nil)
	l.HandleAdvertisement(adv, nil)

	count := 0
	for _, line := range *lines {
		if strings.Contains(line, "up to date") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("up-to-date announced %d times, want once", count)
	}
}

func TestListener_ProtocolGripeOncePerDirection(t *testing.T) {
	l, lines := newTestListener(t, t.TempDir())

	old := []byte(`{"title":"A","version":"v","protocolVersion":"1.5","sender":"desk"}`)
	l.HandleAdvertisement(old, nil)
	l.HandleAdvertisement(old, nil)
	tooNew := []byte(`{"title":"B","version":"v","protocolVersion":"3.0","sender":"desk"}`)
	l.HandleAdvertisement(tooNew, nil)
	l.HandleAdvertisement(tooNew, nil)

	if got := len(*lines); got != 2 {
		t.Errorf("protocol gripes logged %d times, want 2 (once per direction): %v", got, *lines)
	}
}

func TestListener_DropsWhileGettingBook(t *testing.T) {
	l, _ := newTestListener(t, t.TempDir())
	l.mu.Lock()
	l.gettingBook = true
	l.skipTitle = "Wanted"
	l.addsToSkip = 2
	l.mu.Unlock()

	// Other titles are dropped outright while a transfer is in flight.
	other := []byte(`{"title":"Other","version":"v","protocolVersion":"2.2","sender":"desk"}`)
	l.HandleAdvertisement(other, nil)
	l.mu.Lock()
	if !l.gettingBook || l.addsToSkip != 2 {
		t.Errorf("other-title advertisement disturbed session: skip=%d", l.addsToSkip)
	}
	l.mu.Unlock()

	// Repeats of the requested title burn down the countdown.
	same := []byte(`{"title":"Wanted","version":"v","protocolVersion":"2.2","sender":"desk"}`)
	l.HandleAdvertisement(same, nil)
	l.mu.Lock()
	if l.addsToSkip != 1 {
		t.Errorf("addsToSkip = %d after one repeat, want 1", l.addsToSkip)
	}
	l.mu.Unlock()
}
