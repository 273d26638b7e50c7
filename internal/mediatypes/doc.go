// Package mediatypes holds the image format rules shared across the gallery.
//
// It has no dependencies beyond the standard library so the archive, gallery
// and handlers packages can all import it without cycles.
//
// Only four formats are recognized: jpg, jpeg, png and gif. Matching is by
// extension and ignores case:
//
//	mediatypes.IsImage("cat01_1.JPG") // true
//	mediatypes.IsImage("notes.txt")   // false
//
// GetMimeType gives the Content-Type to serve a stored image with.
package mediatypes
