package core

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// unsafeFilenameChars matches everything SecureFilename strips.
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces a client-supplied file name to a safe base name.
//
// Accents are decomposed and non-ASCII dropped, path separators and
// whitespace runs become a single underscore, any other character outside
// [A-Za-z0-9_.-] is removed, and leading or trailing dots and underscores are
// trimmed. The result may be empty.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range name {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	name = b.String()

	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// IsCSV reports whether name has a .csv extension, in any case.
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
