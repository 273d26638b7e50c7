package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"comic-gallery/internal/catalog"
	"comic-gallery/internal/database"
	"comic-gallery/internal/filesystem"
	"comic-gallery/internal/gallery"
	"comic-gallery/internal/handlers"
	"comic-gallery/internal/importer"
	"comic-gallery/internal/logging"
	"comic-gallery/internal/memory"
	"comic-gallery/internal/metrics"
	"comic-gallery/internal/middleware"
	"comic-gallery/internal/startup"
)

const (
	// Uploads can be large, so only the headers have a read deadline.
	readHeaderTimeout = 15 * time.Second
	idleTimeout       = 60 * time.Second

	metricsReadTimeout  = 5 * time.Second
	metricsWriteTimeout = 10 * time.Second

	metricsCollectInterval = time.Minute
	shutdownTimeout        = 30 * time.Second
)

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"uploads": config.UploadsDir,
		"images":  config.ImagesDir,
	}))

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart))
	logLastImport(db)

	memMonitor := memory.NewMonitor(memory.DefaultConfig())
	memMonitor.Start()

	// Catalog, engine and importer
	store := catalog.NewStore()
	engine := gallery.NewEngine(store, config.ImagesDir)
	imp := importer.New(importer.Config{
		DataDir:  config.DataDir,
		Workers:  config.CopyWorkers,
		Throttle: memMonitor,
	}, store, db)
	startup.LogStoreInit(config.ImagesDir, config.CopyWorkers)

	collector := metrics.NewCollector(&statsAdapter{engine: engine, db: db}, metricsCollectInterval)
	collector.Start()

	h := handlers.New(engine, imp, db, config)
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           wrapHandler(router, config),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector, memMonitor, db)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Pages
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/comics", h.RedirectComics).Methods("GET")
	r.HandleFunc("/comics/{group}", h.GroupPage).Methods("GET")
	r.HandleFunc("/comics/{group}/{item}", h.ItemPage).Methods("GET")
	r.HandleFunc("/search", h.SearchPage).Methods("GET")
	r.HandleFunc("/tags", h.TagsPage).Methods("GET")
	r.HandleFunc("/tags/{tag}", h.TagPage).Methods("GET")
	r.HandleFunc("/upload", h.UploadForm).Methods("GET")
	r.HandleFunc("/upload", h.Upload).Methods("POST")

	// Stored images
	r.HandleFunc("/images/{group}/{file}", h.ServeImage).Methods("GET", "HEAD")

	// JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/groups", h.ListGroups).Methods("GET")
	api.HandleFunc("/groups/{group}", h.GetGroup).Methods("GET")
	api.HandleFunc("/groups/{group}/items/{item}", h.GetItem).Methods("GET")
	api.HandleFunc("/search", h.Search).Methods("GET")
	api.HandleFunc("/tags", h.ListTags).Methods("GET")
	api.HandleFunc("/tags/{tag}", h.GetTag).Methods("GET")
	api.HandleFunc("/imports", h.ListImports).Methods("GET")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/upload", h.APIUpload).Methods("POST")

	return r
}

// wrapHandler applies access logging and compression around the router.
func wrapHandler(router http.Handler, config *startup.Config) http.Handler {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	return middleware.Compression(middleware.DefaultCompressionConfig())(loggedHandler)
}

func newMetricsServer(port string, h *handlers.Handlers) *http.Server {
	m := http.NewServeMux()
	m.Handle("/metrics", h.MetricsHandler())
	m.HandleFunc("/health", h.LivenessCheck)
	return &http.Server{
		Addr:         ":" + port,
		Handler:      m,
		ReadTimeout:  metricsReadTimeout,
		WriteTimeout: metricsWriteTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// logLastImport reports the previous successful import, if the history
// database remembers one. The catalog itself always starts empty.
func logLastImport(db *database.Database) {
	last, err := db.GetLastImport(context.Background())
	switch {
	case err != nil:
		logging.Warn("Could not read last import time: %v", err)
	case last.IsZero():
		logging.Info("  No previous imports recorded")
	default:
		metrics.ImportLastTimestamp.Set(float64(last.Unix()))
		logging.Info("  Last import finished %s; upload again to load the catalog",
			last.Local().Format(time.RFC1123))
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, memMonitor *memory.Monitor, db *database.Database) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping memory monitor")
	memMonitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Closing database")
	if err := db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}

	startup.LogShutdownComplete()
}
