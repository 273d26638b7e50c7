package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"comic-gallery/internal/archive"
	"comic-gallery/internal/catalog"
	"comic-gallery/internal/database"
	"comic-gallery/internal/filesystem"
	"comic-gallery/internal/logging"
	"comic-gallery/internal/mediatypes"
	"comic-gallery/internal/metrics"
	"comic-gallery/internal/workers"
)

// Directory layout under the data directory.
const (
	UploadsDirName   = "uploads"
	ExtractedDirName = "extracted"
	ImagesDirName    = "images"
)

// History records import runs. *database.Database implements it.
type History interface {
	BeginImport(ctx context.Context, id string, startedAt time.Time) error
	FinishImport(ctx context.Context, rec *database.ImportRecord) error
}

// lastImportRecorder is implemented by histories that also remember when
// the last successful import finished.
type lastImportRecorder interface {
	SetLastImport(ctx context.Context, t time.Time) error
}

// File is one uploaded document.
type File struct {
	Name   string
	Reader io.Reader
}

// Upload carries the three files of a gallery upload.
type Upload struct {
	Catalog File
	Archive File
	Groups  File
}

// MissingFileError reports an upload without one of its files.
type MissingFileError struct {
	Field string
}

func (e *MissingFileError) Error() string {
	return "missing upload file: " + e.Field
}

// ExtractError reports an archive that could not be unpacked. It wraps
// *archive.UnsafeEntryError for archives with escaping entries and
// *archive.ConflictingEntryError for entries that cannot all be written.
type ExtractError struct {
	Err error
}

func (e *ExtractError) Error() string {
	return "failed to extract archive: " + e.Err.Error()
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Report describes a finished import.
type Report struct {
	RunID         string        `json:"runId"`
	Lines         []string      `json:"lines"`
	Groups        []string      `json:"groups"`
	Items         int           `json:"items"`
	Images        int           `json:"images"`
	ImagesCopied  int           `json:"imagesCopied"`
	BytesUnpacked int64         `json:"bytesUnpacked"`
	Duration      time.Duration `json:"duration"`
	CatalogError  string        `json:"catalogError,omitempty"`
	GroupsError   string        `json:"groupsError,omitempty"`
}

func (r *Report) logf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	r.Lines = append(r.Lines, line)
	logging.Info("[import %s] %s", shortID(r.RunID), line)
}

// Config configures an Importer.
type Config struct {
	// DataDir holds the uploads and images directories.
	DataDir string
	// Workers bounds concurrent image copies. Zero picks workers.ForIO.
	Workers int
	// Throttle, if set, is consulted before every image copy.
	Throttle Throttle
}

// Throttle holds back import work, typically while memory is short.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Importer runs the upload pipeline. Imports are serialized; a second call
// waits for the first to finish.
type Importer struct {
	uploadsDir   string
	extractedDir string
	imagesDir    string
	workers      int
	throttle     Throttle

	store   *catalog.Store
	history History
	now     func() time.Time

	mu sync.Mutex
}

// New creates an importer writing under cfg.DataDir and publishing to store.
// history may be nil.
func New(cfg Config, store *catalog.Store, history History) *Importer {
	uploads := filepath.Join(cfg.DataDir, UploadsDirName)
	n := cfg.Workers
	if n <= 0 {
		n = workers.ForIO(8)
	}
	return &Importer{
		uploadsDir:   uploads,
		extractedDir: filepath.Join(uploads, ExtractedDirName),
		imagesDir:    filepath.Join(cfg.DataDir, ImagesDirName),
		workers:      n,
		throttle:     cfg.Throttle,
		store:        store,
		history:      history,
		now:          time.Now,
	}
}

// ImagesDir is the root of the per-group image directories.
func (im *Importer) ImagesDir() string {
	return im.imagesDir
}

// UploadsDir is where uploaded files are saved.
func (im *Importer) UploadsDir() string {
	return im.uploadsDir
}

// Import saves the upload, extracts the archive, parses both documents,
// swaps the catalog and repopulates the group image directories.
//
// An archive with an unsafe entry is rejected with *archive.UnsafeEntryError
// before the images directory or the catalog change. A document that fails
// to parse is reported and treated as empty; the import still succeeds.
func (im *Importer) Import(ctx context.Context, up Upload) (*Report, error) {
	if err := up.validate(); err != nil {
		return nil, err
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	metrics.ImportInProgress.Set(1)
	defer metrics.ImportInProgress.Set(0)

	started := im.now()
	report := &Report{RunID: uuid.NewString(), Lines: []string{}, Groups: []string{}}
	logging.Info("Starting import %s", report.RunID)

	if im.history != nil {
		if err := im.history.BeginImport(ctx, report.RunID, started); err != nil {
			logging.Warn("Could not record import %s: %v", report.RunID, err)
		}
	}

	images, err := im.run(ctx, up, report)
	report.Duration = im.now().Sub(started)

	status := database.ImportSucceeded
	var unsafe *archive.UnsafeEntryError
	var conflict *archive.ConflictingEntryError
	switch {
	case errors.As(err, &unsafe):
		status = database.ImportRejected
		metrics.ArchiveUnsafeEntries.Inc()
	case errors.As(err, &conflict):
		status = database.ImportRejected
	case err != nil:
		status = database.ImportFailed
	}

	metrics.ImportRunsTotal.WithLabelValues(string(status)).Inc()
	metrics.ImportDuration.Observe(report.Duration.Seconds())
	if status == database.ImportSucceeded {
		metrics.ImportLastTimestamp.Set(float64(im.now().Unix()))
	}

	im.record(ctx, report, status, images, err)

	if err != nil {
		logging.Error("Import %s %s after %v: %v", report.RunID, status, report.Duration, err)
		return report, err
	}
	logging.Info("Import %s finished in %v", report.RunID, report.Duration)
	return report, nil
}

func (up Upload) validate() error {
	for _, f := range []struct {
		field string
		file  File
	}{
		{"xml", up.Catalog},
		{"zip", up.Archive},
		{"playlists", up.Groups},
	} {
		if f.file.Reader == nil {
			return &MissingFileError{Field: f.field}
		}
	}
	return nil
}

func (im *Importer) run(ctx context.Context, up Upload, report *Report) (imageCount int, err error) {
	if err := filesystem.ResetDir(im.uploadsDir); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(im.extractedDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", im.extractedDir, err)
	}

	catalogPath, err := im.save("catalog", up.Catalog)
	if err != nil {
		return 0, err
	}
	archivePath, err := im.save("archive", up.Archive)
	if err != nil {
		return 0, err
	}
	groupsPath, err := im.save("groups", up.Groups)
	if err != nil {
		return 0, err
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	extracted, err := archive.Extract(archivePath, im.extractedDir)
	if err != nil {
		return 0, &ExtractError{Err: err}
	}
	metrics.ArchiveEntriesExtracted.Add(float64(extracted.Files))
	metrics.ArchiveBytesExtracted.Add(float64(extracted.Bytes))
	report.BytesUnpacked = extracted.Bytes
	report.logf("Extracted %d files (%s) from %s", extracted.Files,
		humanize.Bytes(uint64(extracted.Bytes)), displayName(up.Archive.Name, archivePath))

	if err := filesystem.ResetDir(im.imagesDir); err != nil {
		return 0, err
	}

	catalogResult := catalog.ParseCatalogFile(catalogPath)
	if !catalogResult.OK() {
		metrics.CatalogParseFailures.WithLabelValues("catalog").Inc()
		report.CatalogError = catalogResult.Failure.Error()
		report.logf("Catalog could not be parsed: %s", report.CatalogError)
	}
	report.Items = len(catalogResult.Items)
	report.logf("Loaded %d items", report.Items)

	groupsResult := catalog.ParseGroupsFile(groupsPath)
	if !groupsResult.OK() {
		metrics.CatalogParseFailures.WithLabelValues("groups").Inc()
		report.GroupsError = groupsResult.Failure.Error()
		report.logf("Groups could not be parsed: %s", report.GroupsError)
	}

	snap := im.store.Replace(catalogResult.Items, groupsResult.Groups)
	report.Groups = snap.GroupNames()
	report.logf("Loaded %d groups", len(report.Groups))
	for _, name := range report.Groups {
		report.logf("  - '%s': %s", name, strings.Join(snap.Groups[name], ", "))
	}

	images, err := findImages(im.extractedDir)
	if err != nil {
		return 0, err
	}
	report.Images = len(images)

	copied, err := im.populate(ctx, report, images)
	report.ImagesCopied = copied
	metrics.ImagesCopied.Add(float64(copied))
	if err != nil {
		return len(images), err
	}
	report.logf("Total images copied (including duplicates across groups): %d", copied)
	return len(images), nil
}

var defaultNames = map[string]string{
	"catalog": "catalog.xml",
	"archive": "archive.zip",
	"groups":  "groups.xml",
}

// save writes an uploaded file into the uploads directory under a sanitized
// name prefixed with its role.
func (im *Importer) save(role string, f File) (string, error) {
	dst := filepath.Join(im.uploadsDir, role+"-"+sanitizeFilename(f.Name, defaultNames[role]))
	n, err := filesystem.WriteFile(dst, f.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to save %s upload: %w", role, err)
	}
	logging.Debug("Saved %s upload %q to %s (%s)", role, f.Name, dst, humanize.Bytes(uint64(n)))
	return dst, nil
}

// findImages returns every image below root, sorted by path.
func findImages(root string) ([]string, error) {
	var images []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && mediatypes.IsImage(d.Name()) {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan extracted files: %w", err)
	}
	sort.Strings(images)
	return images, nil
}

type copyJob struct {
	src string
	dst string
}

// uniqueByBase keeps one source per base name. A later path wins, matching
// what sequential copies into a flat directory would leave behind.
func uniqueByBase(images []string) []string {
	index := make(map[string]int, len(images))
	var out []string
	for _, src := range images {
		base := filepath.Base(src)
		if i, ok := index[base]; ok {
			out[i] = src
			continue
		}
		index[base] = len(out)
		out = append(out, src)
	}
	return out
}

// populate copies every image into every group directory.
func (im *Importer) populate(ctx context.Context, report *Report, images []string) (int, error) {
	unique := uniqueByBase(images)
	var jobs []copyJob
	var populated []string

	for _, group := range report.Groups {
		dir, err := filesystem.ChildDir(im.imagesDir, group)
		if err != nil {
			report.logf("  - Skipping group '%s': not a usable directory name", group)
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create group directory %s: %w", dir, err)
		}
		for _, src := range unique {
			jobs = append(jobs, copyJob{src: src, dst: filepath.Join(dir, filepath.Base(src))})
		}
		populated = append(populated, group)
	}

	err := workers.Each(ctx, len(jobs), im.workers, func(ctx context.Context, i int) error {
		if im.throttle != nil {
			if err := im.throttle.Wait(ctx); err != nil {
				return err
			}
		}
		return filesystem.CopyFile(jobs[i].src, jobs[i].dst)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to copy images: %w", err)
	}

	for _, group := range populated {
		report.logf("  - Copied %d images into '%s'", len(unique), group)
	}
	return len(unique) * len(populated), nil
}

func (im *Importer) record(ctx context.Context, report *Report, status database.ImportStatus, images int, runErr error) {
	if im.history == nil {
		return
	}
	rec := &database.ImportRecord{
		ID:         report.RunID,
		Status:     status,
		FinishedAt: im.now(),
		Items:      report.Items,
		Groups:     len(report.Groups),
		Images:     images,
		Bytes:      report.BytesUnpacked,
		Log:        report.Lines,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	// The request context may already be cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := im.history.FinishImport(ctx, rec); err != nil {
		logging.Warn("Could not record result of import %s: %v", report.RunID, err)
	}
	if status != database.ImportSucceeded {
		return
	}
	if last, ok := im.history.(lastImportRecorder); ok {
		if err := last.SetLastImport(ctx, rec.FinishedAt); err != nil {
			logging.Warn("Could not record last import time: %v", err)
		}
	}
}

func displayName(name, fallback string) string {
	if name != "" {
		return name
	}
	return filepath.Base(fallback)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
