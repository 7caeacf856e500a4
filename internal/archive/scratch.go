package archive

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bloombooks/bloomshelf/internal/util"
)

// Pool hands out scratch directories by purpose. Each purpose ("reader",
// "thumb", "audio", ...) maps to its own directory under the pool base,
// and at most one holder may have a purpose checked out at a time.
// Extraction into a directory is therefore never concurrent; separate
// purposes never contend with each other.
type Pool struct {
	base string

	mu   sync.Mutex
	busy map[string]bool
}

// NewPool creates a Pool with per-purpose directories under base.
func NewPool(base string) *Pool {
	return &Pool{base: base, busy: map[string]bool{}}
}

// Acquire checks out the scratch directory for purpose, emptying it
// before handing it over. Fails if the purpose is already checked out.
func (p *Pool) Acquire(purpose string) (*Scratch, error) {
	p.mu.Lock()
	if p.busy[purpose] {
		p.mu.Unlock()
		return nil, fmt.Errorf("scratch %q is already in use", purpose)
	}
	p.busy[purpose] = true
	p.mu.Unlock()

	dir := filepath.Join(p.base, purpose)
	if err := util.EmptyDir(dir); err != nil {
		p.release(purpose)
		return nil, fmt.Errorf("preparing scratch %q: %w", purpose, err)
	}
	return &Scratch{pool: p, purpose: purpose, dir: dir}, nil
}

func (p *Pool) release(purpose string) {
	p.mu.Lock()
	delete(p.busy, purpose)
	p.mu.Unlock()
}

// Scratch is a checked-out extraction directory. Release it on every
// exit path; Release is idempotent.
type Scratch struct {
	pool     *Pool
	purpose  string
	dir      string
	released bool
}

// Dir returns the scratch directory path.
func (s *Scratch) Dir() string { return s.dir }

// Path returns the location of the named entry inside the scratch
// directory.
func (s *Scratch) Path(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name))
}

// Release empties the directory and returns the purpose to the pool.
func (s *Scratch) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	err := util.EmptyDir(s.dir)
	s.pool.release(s.purpose)
	return err
}
