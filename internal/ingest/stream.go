package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// zipMagic is the local-file-header signature every zip (and therefore
// every book archive) starts with.
var zipMagic = []byte("PK\x03\x04")

// Reader wraps an io.Reader and accumulates, in flight: total byte
// count, sha256, and the first few bytes for format sniffing. Used while
// receiving books over the network and while unpacking bundles, so a
// payload can be fingerprinted without a second pass over the file.
type Reader struct {
	r    io.Reader
	h    hash.Hash
	size int64
	head []byte
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, h: sha256.New()}
}

func (r *Reader) Read(p []byte) (n int, err error) {
	n, err = r.r.Read(p)
	if n > 0 {
		r.h.Write(p[:n]) //nolint:errcheck
		r.size += int64(n)
		if len(r.head) < len(zipMagic) {
			take := len(zipMagic) - len(r.head)
			if take > n {
				take = n
			}
			r.head = append(r.head, p[:take]...)
		}
	}
	return
}

// SHA256 returns the hex-encoded sha256 of all bytes read so far.
func (r *Reader) SHA256() string {
	return hex.EncodeToString(r.h.Sum(nil))
}

// Size returns the total bytes read so far.
func (r *Reader) Size() int64 { return r.size }

// LooksLikeZip reports whether the stream began with the zip signature.
// Only meaningful once at least four bytes have been read.
func (r *Reader) LooksLikeZip() bool {
	return bytes.Equal(r.head, zipMagic)
}
