package importer

import (
	"path/filepath"
	"strings"
)

// sanitizeFilename reduces an uploaded file name to a safe base name made of
// ASCII letters, digits, dots, dashes and underscores. Names that end up
// empty are replaced with fallback.
func sanitizeFilename(name, fallback string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}
