package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/maifilter/pkg/metrics"
)

// route binds a path to its handler and the endpoint label used in metrics.
type route struct {
	pattern string
	name    string
	handler http.HandlerFunc
}

// instrument records request count, latency and, for 4xx/5xx answers, the
// error code the handler wrote. Handlers that fail without writeError (for
// example http.NotFound) are labelled from the status text.
func instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		elapsedMs := float64(time.Since(start).Microseconds()) / 1000
		metrics.RecordHTTPRequest(name, r.Method, strconv.Itoa(rec.status), elapsedMs)
		if rec.status < http.StatusBadRequest {
			return
		}
		code := rec.code
		if code == "" {
			code = codeForStatus(rec.status)
		}
		metrics.RecordErrorByEndpoint(name, r.Method, code)
		metrics.RecordErrorByType(code, severityForStatus(rec.status))
		metrics.RecordErrorLatency("http", code, elapsedMs)
	}
}

func codeForStatus(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "http_" + strconv.Itoa(status)
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}

// severityForStatus uses the same labels as metrics.SeverityOf.
func severityForStatus(status int) string {
	if status >= http.StatusInternalServerError {
		return "error"
	}
	return "warning"
}

// statusRecorder captures the status and error code of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	code   string
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

// setErrorCode tags w with code when w is instrumented.
func setErrorCode(w http.ResponseWriter, code string) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.code = code
	}
}
