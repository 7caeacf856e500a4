// Package scan discovers candidate book, shelf and bundle files from
// the places they arrive: plain directory trees, opaque document trees
// where raw paths are unavailable, and tar bundles. Scanners report
// through typed events on a channel; the consumer (normally the app
// layer) feeds accepted discoveries into the catalog.
package scan

// Event is a discovery report from a scanner.
type Event interface {
	event()
}

// FoundBook reports a book archive. Path is the file's identity: a
// filesystem path for the walker and bundle scanners, a document id for
// the tree scanner.
type FoundBook struct{ Path string }

// FoundShelf reports a shelf descriptor file.
type FoundShelf struct{ Path string }

// FoundBundle reports a bundle that needs a separate import pass.
type FoundBundle struct{ Path string }

// EntryProgress reports one bundle entry by name as it is unpacked.
type EntryProgress struct{ Name string }

// Skipped reports a file the scanner recognized but declined, with the
// reason.
type Skipped struct {
	Path   string
	Reason string
}

// SearchComplete terminates one scanner's event stream. Err is non-nil
// when the scan ended early; discoveries reported before it remain
// valid.
type SearchComplete struct{ Err error }

func (FoundBook) event()      {}
func (FoundShelf) event()     {}
func (FoundBundle) event()    {}
func (EntryProgress) event()  {}
func (Skipped) event()        {}
func (SearchComplete) event() {}
