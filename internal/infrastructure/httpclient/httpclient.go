package httpclient

import (
	"log/slog"
	"net/http"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// New returns an http.Client whose requests are logged at debug level.
func New() *http.Client {
	return &http.Client{
		Transport: NewLoggingTransport(http.DefaultTransport),
	}
}

// LoggingTransport logs method, path, status and latency of every round trip.
// Headers and bodies are never logged.
type LoggingTransport struct {
	next http.RoundTripper
}

func NewLoggingTransport(next http.RoundTripper) *LoggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &LoggingTransport{next: next}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	attrs := []any{
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		slog.Debug("http request failed", append(attrs, "error", err)...)
		return nil, err
	}

	attrs = append(attrs, "status", resp.StatusCode)
	if id := resp.Header.Get("request-id"); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	slog.Debug("http request", attrs...)
	return resp, nil
}
