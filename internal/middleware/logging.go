package middleware

import (
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// statusRecorder captures the status code and body size of a response for
// the access log.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	size    int64
	written bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.written {
		return
	}
	rec.status, rec.written = code, true
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	rec.written = true
	n, err := rec.ResponseWriter.Write(b)
	rec.size += int64(n)
	return n, err
}

// ServiceName identifies the gallery in access log headers.
const ServiceName = "ComicGallery/1.0"

// w3cFields is the #Fields directive; logRequest writes values in this order.
const w3cFields = "date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes time-taken cs(Content-Encoding) cs(User-Agent) cs(Referer)"

// LoggingConfig selects which requests reach the access log.
type LoggingConfig struct {
	SkipPaths      []string
	SkipExtensions []string
	// StaticPrefixes are path prefixes treated as static files regardless
	// of extension.
	StaticPrefixes  []string
	LogStaticFiles  bool
	LogHealthChecks bool
	// Output receives log lines; nil means the standard logger.
	Output *log.Logger
}

// DefaultLoggingConfig logs pages, API calls and health checks, and leaves
// stored images out.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:       []string{},
		SkipExtensions:  []string{".css", ".js", ".ico", ".png", ".jpg", ".jpeg", ".gif", ".svg"},
		StaticPrefixes:  []string{"/images/"},
		LogHealthChecks: true,
	}
}

// accessLog writes entries in W3C Extended Log Format, preceded once by the
// #Software, #Version and #Fields directives.
type accessLog struct {
	software string
	out      *log.Logger
	once     sync.Once
}

func newAccessLog(out *log.Logger, software string) *accessLog {
	if out == nil {
		out = log.Default()
	}
	return &accessLog{software: software, out: out}
}

func (a *accessLog) directives() {
	a.once.Do(func() {
		a.out.Println("#Software: " + a.software)
		a.out.Println("#Version: 1.0")
		a.out.Println("#Fields: " + w3cFields)
	})
}

var healthCheckPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// sanitizeLogField drops control characters so a client cannot forge log
// lines or emit terminal escapes. Newlines become spaces; tabs are kept.
func sanitizeLogField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r < 0x20 && r != '\t', r == 0x7f:
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// orDash renders an empty W3C field as "-".
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Logger wraps a handler with the W3C access log. Requests matched by config
// are served without an entry.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	access := newAccessLog(config.Output, ServiceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkip(r.URL.Path, config) {
				next.ServeHTTP(w, r)
				return
			}
			began := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			access.record(r, rec, time.Since(began))
		})
	}
}

func (a *accessLog) record(r *http.Request, rec *statusRecorder, took time.Duration) {
	at := time.Now().UTC()
	agent := sanitizeLogField(r.Header.Get("User-Agent"))

	a.directives()
	a.out.Printf("%s %s %s %s %s %s %d %d %d %s %s %s",
		at.Format(time.DateOnly),
		at.Format(time.TimeOnly),
		sanitizeLogField(getClientIP(r)),
		sanitizeLogField(r.Method),
		sanitizeLogField(r.URL.Path),
		orDash(sanitizeLogField(r.URL.RawQuery)),
		rec.status,
		rec.size,
		took.Milliseconds(),
		orDash(rec.Header().Get("Content-Encoding")),
		orDash(escapeW3CField(agent)),
		orDash(sanitizeLogField(r.Header.Get("Referer"))),
	)
}

// shouldSkip reports whether path stays out of the access log.
func shouldSkip(path string, config LoggingConfig) bool {
	switch {
	case hasAnyPrefix(path, config.SkipPaths):
		return true
	case healthCheckPaths[path]:
		return !config.LogHealthChecks
	case config.LogStaticFiles:
		return false
	case hasAnyPrefix(path, config.StaticPrefixes):
		return true
	}
	lower := strings.ToLower(path)
	for _, ext := range config.SkipExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the connection address without its port.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// escapeW3CField quotes a value containing spaces, tabs or quotes, doubling
// embedded quotes.
func escapeW3CField(s string) string {
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
