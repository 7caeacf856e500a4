package meta

import (
	"os"
	"strings"

	"github.com/bloombooks/bloomshelf/internal/archive"
)

// bom is the UTF-8 byte-order mark some publishing tools prepend to
// version.txt.
const bom = "\uFEFF"

// ReadVersion returns the book's embedded version token, or "" if the
// archive has none. The token is opaque: it is only ever compared for
// equality against an advertised token.
func ReadVersion(a *archive.Accessor) string {
	path, ok := a.Entry("version.txt")
	if !ok {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(string(data), bom))
}

// VersionsEqual compares two version tokens byte for byte, ignoring a
// leading byte-order mark on either side.
func VersionsEqual(a, b string) bool {
	return strings.TrimPrefix(a, bom) == strings.TrimPrefix(b, bom)
}
