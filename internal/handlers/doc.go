// Package handlers provides the HTTP handlers of the comic gallery.
//
// It includes handlers for:
//   - The group listing, group and item pages
//   - Search and tag pages
//   - The upload form and the import it triggers
//   - Serving stored images
//   - The JSON API mirroring the pages plus import history and stats
//   - Health checks and version information
//
// Pages are rendered from templates embedded in the binary.
package handlers
