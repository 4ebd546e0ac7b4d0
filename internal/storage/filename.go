package storage

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AllowedExtensions are the upload types the classifier accepts.
var AllowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// SecureFilename reduces name to a flat ASCII filename safe to join with an
// upload directory. Only '/' separates path components; other characters
// outside [A-Za-z0-9_.-] are dropped. The result can be empty.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/':
			b.WriteByte(' ')
		case r < 0x80:
			b.WriteRune(r)
		}
	}

	joined := strings.Join(strings.Fields(b.String()), "_")

	b.Reset()
	for _, r := range joined {
		if r == '_' || r == '.' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "._")
}

// AllowedExtension reports whether name ends in a supported image extension,
// ignoring case.
func AllowedExtension(name string) bool {
	return AllowedExtensions[strings.ToLower(filepath.Ext(name))]
}
