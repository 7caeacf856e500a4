package wifi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloombooks/bloomshelf/internal/ingest"
	"github.com/bloombooks/bloomshelf/internal/util"
)

// DefaultChunkTimeout is how long one body read may stall before the
// transfer is abandoned and the partial file deleted.
const DefaultChunkTimeout = time.Second

// Receiver is the small HTTP server the device opens for the pull
// phase. The desktop PUTs file content to /putfile?path=<relative path>
// and then hits /notify to signal the transfer is complete.
type Receiver struct {
	libraryDir   string
	chunkTimeout time.Duration

	// OnFile is called with the destination path and sha256 of each
	// fully received file.
	OnFile func(path, sha256 string)
	// OnDone is called when the sender signals completion.
	OnDone func()
	// Logf receives transfer progress lines.
	Logf func(format string, args ...interface{})

	srv    *http.Server
	ln     net.Listener
	active atomic.Bool
}

// Active reports whether a file body is currently being received. The
// listener consults it before declaring a transfer stalled.
func (rc *Receiver) Active() bool {
	return rc.active.Load()
}

// NewReceiver creates a Receiver writing into libraryDir.
func NewReceiver(libraryDir string) *Receiver {
	return &Receiver{
		libraryDir:   libraryDir,
		chunkTimeout: DefaultChunkTimeout,
		Logf:         func(string, ...interface{}) {},
	}
}

// Start listens on addr in the background. Returns once the listener is
// bound, so the request datagram is only sent when the sender can
// actually connect.
func (rc *Receiver) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.PUT("/putfile", rc.handlePutFile)
	router.GET("/notify", rc.handleNotify)
	router.POST("/notify", rc.handleNotify)

	rc.srv = &http.Server{Addr: addr, Handler: router}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding receive server: %w", err)
	}
	rc.ln = ln
	go rc.srv.Serve(ln) //nolint:errcheck
	return nil
}

// Addr returns the bound listen address, useful when Start was given
// port 0.
func (rc *Receiver) Addr() net.Addr {
	if rc.ln == nil {
		return nil
	}
	return rc.ln.Addr()
}

// Stop shuts the server down.
func (rc *Receiver) Stop(ctx context.Context) error {
	if rc.srv == nil {
		return nil
	}
	return rc.srv.Shutdown(ctx)
}

func (rc *Receiver) handlePutFile(c *gin.Context) {
	rc.active.Store(true)
	defer rc.active.Store(false)

	rel := c.Query("path")
	dest, err := rc.destPath(rel)
	if err != nil {
		rc.Logf("rejected putfile %q: %v", rel, err)
		c.String(http.StatusBadRequest, "failure")
		return
	}

	tr := NewTimeoutReader(c.Request.Body, rc.chunkTimeout)
	defer tr.Close()
	counted := ingest.NewReader(tr)

	tmp := dest + ".part"
	if err := util.EnsureDir(filepath.Dir(tmp)); err != nil {
		c.String(http.StatusInternalServerError, "failure")
		return
	}
	out, err := os.Create(tmp)
	if err != nil {
		c.String(http.StatusInternalServerError, "failure")
		return
	}
	_, copyErr := io.Copy(out, counted)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		// A stalled or broken transfer leaves nothing behind.
		os.Remove(tmp)
		if errors.Is(copyErr, ErrTimeout) {
			rc.Logf("transfer of %s stalled, partial file discarded", rel)
			c.String(http.StatusRequestTimeout, "failure")
			return
		}
		rc.Logf("receiving %s: %v", rel, firstErr(copyErr, closeErr))
		c.String(http.StatusInternalServerError, "failure")
		return
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		c.String(http.StatusInternalServerError, "failure")
		return
	}

	rc.Logf("received %s (%d bytes)", filepath.Base(dest), counted.Size())
	if rc.OnFile != nil {
		rc.OnFile(dest, counted.SHA256())
	}
	c.String(http.StatusOK, "success")
}

func (rc *Receiver) handleNotify(c *gin.Context) {
	if rc.OnDone != nil {
		rc.OnDone()
	}
	c.String(http.StatusOK, "success")
}

// destPath maps the sender-supplied relative path into the library
// directory, refusing anything that would land outside it.
func (rc *Receiver) destPath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty path")
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes library: %q", rel)
	}
	return filepath.Join(rc.libraryDir, clean), nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
