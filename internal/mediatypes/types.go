package mediatypes

import (
	"path/filepath"
	"sort"
	"strings"
)

// ImageExtensions is the fixed set of extensions the gallery treats as images.
// Keys are lowercase and include the leading dot.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// MimeTypes maps image extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// IsImage reports whether a filename carries a recognized image extension.
// The comparison is case-insensitive, so "COVER.JPG" is an image.
func IsImage(name string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(name))]
}

// GetMimeType returns the MIME type for a filename.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(name string) string {
	if mime, ok := MimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// FilterImages returns the image names from names, sorted.
func FilterImages(names []string) []string {
	images := make([]string, 0, len(names))
	for _, name := range names {
		if IsImage(name) {
			images = append(images, name)
		}
	}
	sort.Strings(images)
	return images
}
