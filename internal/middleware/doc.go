// Package middleware provides the HTTP middleware used by the gallery:
//   - W3C Extended Log Format access logging
//   - Configurable filtering for image requests and health checks
//   - gzip response compression for text responses
//   - Prometheus request metrics labelled by route template
package middleware
