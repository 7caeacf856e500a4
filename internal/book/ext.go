package book

import "strings"

// File extensions understood by the library scanners.
const (
	// BookExt marks a zipped Bloom book archive.
	BookExt = ".bloomd"
	// ShelfExt marks a shelf descriptor (JSON).
	ShelfExt = ".bloomshelf"
	// BundleExt marks a tar bundle of book archives.
	BundleExt = ".bloombundle"
	// EncodedExt is appended to any of the above when the payload was
	// base64-wrapped for transport and must be decoded before use.
	EncodedExt = ".enc"
	// QuarantineSuffix is appended to files that failed archive
	// validation. The file is kept for recovery, but never loaded.
	QuarantineSuffix = "-BAD"
)

// Kind classifies a file by its name.
type Kind int

const (
	KindIgnored Kind = iota
	KindBook
	KindShelf
	KindBundle
)

// Classify maps a filename to its library Kind. An .enc marker is
// transparent: "a.bloomd.enc" classifies as a book.
func Classify(name string) Kind {
	name = strings.TrimSuffix(name, EncodedExt)
	switch {
	case strings.HasSuffix(name, QuarantineSuffix):
		return KindIgnored
	case strings.HasSuffix(name, BookExt):
		return KindBook
	case strings.HasSuffix(name, ShelfExt):
		return KindShelf
	case strings.HasSuffix(name, BundleExt):
		return KindBundle
	default:
		return KindIgnored
	}
}

// IsEncoded reports whether the file carries the base64 transport marker.
func IsEncoded(name string) bool {
	return strings.HasSuffix(name, EncodedExt)
}
