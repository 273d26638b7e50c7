package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"comic-gallery/internal/archive"
	"comic-gallery/internal/importer"
	"comic-gallery/internal/logging"
)

// Multipart parts beyond this size are spooled to temporary files.
const multipartMemory = 32 << 20

type uploadPage struct {
	MaxUploadSize string
}

type resultPage struct {
	Report   *importer.Report
	Duration string
}

// UploadForm shows the upload form.
func (h *Handlers) UploadForm(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "upload.html", uploadPage{
		MaxUploadSize: humanize.Bytes(uint64(h.maxUploadSize)),
	})
}

// Upload accepts the catalog (xml), the image archive (zip) and the group
// document (playlists) and replaces the gallery with them.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	report, status, err := h.runUpload(w, r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	h.render(w, http.StatusOK, "result.html", resultPage{
		Report:   report,
		Duration: report.Duration.Round(time.Millisecond).String(),
	})
}

// APIUpload is Upload answering with the import report as JSON.
func (h *Handlers) APIUpload(w http.ResponseWriter, r *http.Request) {
	report, status, err := h.runUpload(w, r)
	if err != nil {
		writeJSONError(w, err.Error(), status)
		return
	}
	writeJSONResponse(w, http.StatusOK, report)
}

// runUpload parses the multipart form and runs the import, returning the
// status code to answer with on failure.
func (h *Handlers) runUpload(w http.ResponseWriter, r *http.Request) (*importer.Report, int, error) {
	if h.maxUploadSize > 0 {
		if r.ContentLength > h.maxUploadSize {
			return nil, http.StatusRequestEntityTooLarge,
				fmt.Errorf("upload exceeds %s", humanize.Bytes(uint64(h.maxUploadSize)))
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge,
				fmt.Errorf("upload exceeds %s", humanize.Bytes(uint64(tooLarge.Limit)))
		}
		return nil, http.StatusBadRequest, fmt.Errorf("invalid upload form: %w", err)
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Warn("Failed to remove multipart temp files: %v", err)
		}
	}()

	var up importer.Upload
	var open []multipart.File
	defer func() {
		for _, f := range open {
			f.Close()
		}
	}()
	for _, part := range []struct {
		field string
		dst   *importer.File
	}{
		{"xml", &up.Catalog},
		{"zip", &up.Archive},
		{"playlists", &up.Groups},
	} {
		f, header, err := r.FormFile(part.field)
		if err != nil {
			return nil, http.StatusBadRequest,
				errors.New("xml, zip and playlists files are all required")
		}
		open = append(open, f)
		*part.dst = importer.File{Name: header.Filename, Reader: f}
	}

	report, err := h.importer.Import(r.Context(), up)
	if err != nil {
		var unsafe *archive.UnsafeEntryError
		var conflict *archive.ConflictingEntryError
		var extractErr *importer.ExtractError
		var missing *importer.MissingFileError
		switch {
		case errors.As(err, &unsafe):
			return nil, http.StatusBadRequest, fmt.Errorf("archive rejected: %w", unsafe)
		case errors.As(err, &conflict):
			return nil, http.StatusBadRequest, fmt.Errorf("archive rejected: %w", conflict)
		case errors.As(err, &extractErr):
			return nil, http.StatusBadRequest, extractErr
		case errors.As(err, &missing):
			return nil, http.StatusBadRequest, missing
		default:
			logging.Error("Upload failed: %v", err)
			return nil, http.StatusInternalServerError, errors.New("import failed")
		}
	}
	return report, http.StatusOK, nil
}
