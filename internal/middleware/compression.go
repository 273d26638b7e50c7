package middleware

import (
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// CompressionConfig controls which responses are gzipped.
type CompressionConfig struct {
	// MinSize is the smallest body, in bytes, worth compressing.
	MinSize int
	// Level is a gzip level from gzip.BestSpeed to gzip.BestCompression.
	Level int
	// CompressibleTypes lists the media types that are compressed.
	CompressibleTypes []string
	// SkipPrefixes are paths served without buffering, such as stored images.
	SkipPrefixes []string
}

// DefaultCompressionConfig compresses the gallery's pages, API responses and
// plain-text errors. Images are served as stored.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		CompressibleTypes: []string{
			"text/html",
			"text/plain",
			"text/css",
			"text/javascript",
			"application/json",
			"image/svg+xml",
		},
		SkipPrefixes: []string{"/images/"},
	}
}

// newGzipWriterPool returns a pool of writers at the given level. An
// invalid level falls back to the default.
func newGzipWriterPool(level int) *sync.Pool {
	return &sync.Pool{
		New: func() interface{} {
			w, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				w, _ = gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
			}
			return w
		},
	}
}

// deferredGzip holds the body back until MinSize bytes arrive or the
// handler returns, then either compresses or passes it through.
type deferredGzip struct {
	http.ResponseWriter
	config CompressionConfig
	pool   *sync.Pool

	status int
	held   []byte

	decided    bool
	compressed bool
	gz         *gzip.Writer
}

func newDeferredGzip(w http.ResponseWriter, config CompressionConfig, pool *sync.Pool) *deferredGzip {
	return &deferredGzip{
		ResponseWriter: w,
		config:         config,
		pool:           pool,
		status:         http.StatusOK,
		held:           make([]byte, 0, config.MinSize+1),
	}
}

// WriteHeader records the status; it is sent once the encoding is decided.
func (g *deferredGzip) WriteHeader(status int) {
	if !g.decided {
		g.status = status
	}
}

func (g *deferredGzip) Write(data []byte) (int, error) {
	if g.decided {
		if g.compressed {
			return g.gz.Write(data)
		}
		return g.ResponseWriter.Write(data)
	}

	g.held = append(g.held, data...)
	if len(g.held) > g.config.MinSize {
		g.decide()
	}
	return len(data), nil
}

func (g *deferredGzip) compressibleType() bool {
	mediaType, _, _ := strings.Cut(g.Header().Get("Content-Type"), ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	return mediaType != "" && slices.Contains(g.config.CompressibleTypes, mediaType)
}

// decide picks the encoding, sends the header and flushes the buffer.
func (g *deferredGzip) decide() {
	if g.decided {
		return
	}
	g.decided = true

	g.compressed = len(g.held) >= g.config.MinSize &&
		g.Header().Get("Content-Encoding") == "" &&
		g.compressibleType()

	if !g.compressed {
		g.ResponseWriter.WriteHeader(g.status)
		_, _ = g.ResponseWriter.Write(g.held)
		g.held = nil
		return
	}

	h := g.Header()
	h.Del("Content-Length")
	h.Set("Content-Encoding", "gzip")
	h.Add("Vary", "Accept-Encoding")

	g.gz = g.pool.Get().(*gzip.Writer)
	g.gz.Reset(g.ResponseWriter)
	g.ResponseWriter.WriteHeader(g.status)
	_, _ = g.gz.Write(g.held)
	g.held = nil
}

// Close finishes the response and returns the gzip writer to the pool.
func (g *deferredGzip) Close() error {
	g.decide()
	if g.gz == nil {
		return nil
	}
	err := g.gz.Close()
	g.pool.Put(g.gz)
	g.gz = nil
	return err
}

func (config CompressionConfig) skips(r *http.Request) bool {
	if r.Method == http.MethodHead || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		return true
	}
	return hasAnyPrefix(r.URL.Path, config.SkipPrefixes)
}

// Compression returns middleware that gzips text responses for clients that
// accept it.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	pool := newGzipWriterPool(config.Level)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.skips(r) {
				next.ServeHTTP(w, r)
				return
			}

			dw := newDeferredGzip(w, config, pool)
			defer dw.Close()
			next.ServeHTTP(dw, r)
		})
	}
}
