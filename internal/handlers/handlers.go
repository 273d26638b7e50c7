package handlers

import (
	"context"
	"time"

	"comic-gallery/internal/database"
	"comic-gallery/internal/gallery"
	"comic-gallery/internal/importer"
	"comic-gallery/internal/startup"
)

// Importer runs uploads. *importer.Importer implements it.
type Importer interface {
	Import(ctx context.Context, up importer.Upload) (*importer.Report, error)
}

// History reads recorded import runs. *database.Database implements it.
type History interface {
	RecentImports(ctx context.Context, limit int) ([]database.ImportRecord, error)
	CountImports(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

type Handlers struct {
	engine        *gallery.Engine
	importer      Importer
	history       History
	imagesDir     string
	maxUploadSize int64
	pages         *pageSet
	startTime     time.Time
}

func New(engine *gallery.Engine, imp Importer, history History, config *startup.Config) *Handlers {
	return &Handlers{
		engine:        engine,
		importer:      imp,
		history:       history,
		imagesDir:     config.ImagesDir,
		maxUploadSize: config.MaxUploadSize,
		pages:         mustLoadPages(),
		startTime:     time.Now(),
	}
}
