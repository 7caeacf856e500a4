package wifi

import (
	"io"
	"time"
)

// TimeoutReader wraps a reader so each Read fails with ErrTimeout if no
// data arrives within the deadline. Network bodies sometimes just stop
// producing without the socket ever signalling closure; this is the
// cooperative guard around them.
type TimeoutReader struct {
	chunks  chan chunk
	done    chan struct{}
	timeout time.Duration

	pending []byte
	err     error
}

type chunk struct {
	data []byte
	err  error
}

// NewTimeoutReader starts pumping r in the background. Close the
// returned reader when done with it, on every path.
func NewTimeoutReader(r io.Reader, timeout time.Duration) *TimeoutReader {
	t := &TimeoutReader{
		chunks:  make(chan chunk, 1),
		done:    make(chan struct{}),
		timeout: timeout,
	}
	go t.pump(r)
	return t
}

func (t *TimeoutReader) pump(r io.Reader) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case t.chunks <- chunk{data: data, err: err}:
		case <-t.done:
			return
		}
		if err != nil {
			return
		}
	}
}

func (t *TimeoutReader) Read(p []byte) (int, error) {
	if len(t.pending) == 0 && t.err == nil {
		select {
		case c := <-t.chunks:
			t.pending, t.err = c.data, c.err
		case <-time.After(t.timeout):
			t.err = ErrTimeout
		}
	}
	if len(t.pending) > 0 {
		n := copy(p, t.pending)
		t.pending = t.pending[n:]
		return n, nil
	}
	return 0, t.err
}

// Close stops the pump goroutine. It does not close the underlying
// reader.
func (t *TimeoutReader) Close() error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	return nil
}
